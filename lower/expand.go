// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package lower

import (
	"github.com/FactorioDojo/fsmc/ast"
	"github.com/FactorioDojo/fsmc/ir"
)

// Expand runs pass 2 (spec.md §4.4) over g: every control-structure node
// (Branch or one of the loop shapes) gets a generated Block appended as
// its sole child, and the statements of its body — deferred by Lower —
// are lowered into that Block using the ordinary sequential-chain rule.
//
// Because lowering a nested body can itself contain further Branch/loop
// nodes, Expand must keep discovering and expanding newly-appended
// control nodes until none remain; it walks g.Preorder(g.Root()) and
// restarts whenever it finds one still unexpanded (has zero children).
// awaitName is forwarded to every nested lowering pass, matching the
// identifier Lower was called with.
func Expand(g *ir.Graph, awaitName string) error {
	for {
		progressed := false
		for _, n := range g.Preorder(g.Root()) {
			switch t := n.(type) {
			case *ir.Branch:
				if len(t.Children()) != 0 {
					continue
				}
				if err := expandBranch(g, t, awaitName); err != nil {
					return err
				}
				progressed = true
			case *ir.While, *ir.Repeat, *ir.ForNum, *ir.ForIn:
				if len(n.Children()) != 0 {
					continue
				}
				if err := expandLoop(g, n, awaitName); err != nil {
					return err
				}
				progressed = true
			}
			if progressed {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return checkReturns(g)
}

// expandBranch builds the elseif/else chain retained on b.Syntax() into
// a generated Block of Conditional arms (spec.md §4.4). The explicit
// else arm, if present, becomes a Conditional with Else set; there is no
// synthesized implicit-else arm here — that is pass 3's job
// (passes.Linearize), run only once a tail actually needs one
// (spec.md §9 "Implicit else bug").
func expandBranch(g *ir.Graph, b *ir.Branch, awaitName string) error {
	ifNode, ok := b.Syntax().(*ast.If)
	if !ok {
		return ir.Errorf(ir.KindInternalInvariant, b.Syntax(), "branch node missing its *ast.If syntax")
	}
	block := ir.NewBlock()
	g.AppendChild(b, block)

	for _, clause := range ifNode.Clauses {
		cond := ir.NewConditional(clause.Cond, false)
		g.AppendChild(block, cond)
		if err := lowerBodyUnder(g, cond, clause.Body, awaitName); err != nil {
			return err
		}
	}
	if ifNode.Else != nil {
		b.ElsePresent = true
		elseArm := ir.NewConditional(nil, true)
		g.AppendChild(block, elseArm)
		if err := lowerBodyUnder(g, elseArm, ifNode.Else, awaitName); err != nil {
			return err
		}
	}
	return nil
}

// expandLoop builds the single generated Block holding n's body
// (spec.md §4.4).
func expandLoop(g *ir.Graph, n ir.Node, awaitName string) error {
	var body *ast.Block
	switch t := n.Syntax().(type) {
	case *ast.While:
		body = t.Body
	case *ast.Repeat:
		body = t.Body
	case *ast.NumericFor:
		body = t.Body
	case *ast.GenericFor:
		body = t.Body
	default:
		return ir.Errorf(ir.KindInternalInvariant, n.Syntax(), "loop node missing its syntax body")
	}
	block := ir.NewBlock()
	g.AppendChild(n, block)
	return lowerBodyUnder(g, block, body, awaitName)
}

// lowerBodyUnder lowers b's statements as parent's descendant chain,
// reusing the same per-statement rules Lower used for the top-level
// function body (including the control-node cursor-reset rule, so
// branches/loops nested inside this body get their own tail siblings
// correctly).
func lowerBodyUnder(g *ir.Graph, parent ir.Node, b *ast.Block, awaitName string) error {
	saved := g.Cursor()
	g.SetCursor(parent)
	l := &lowering{g: g, awaitName: awaitName}
	err := l.block(b)
	g.SetCursor(saved)
	return err
}

// checkReturns rejects Return statements in a function that also
// contains an async node anywhere in its graph (spec.md §9 "Return
// statements ... should be rejected (UnsupportedConstruct) until a
// value-passing mechanism ... is designed").
func checkReturns(g *ir.Graph) error {
	var sawAsync, sawReturn bool
	var firstReturn ast.Node
	for _, n := range g.Preorder(g.Root()) {
		switch t := n.(type) {
		case *ir.AsyncCall, *ir.AsyncAssign:
			sawAsync = true
		case *ir.Return:
			sawReturn = true
			if firstReturn == nil {
				firstReturn = t.Syntax()
			}
		}
	}
	if sawAsync && sawReturn {
		return ir.Errorf(ir.KindUnsupportedConstruct, firstReturn,
			"return is not supported inside a function containing an await")
	}
	return nil
}
