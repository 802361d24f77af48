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

// Package lower implements the first two passes of the fsmc pipeline
// described in spec.md §4.3/§4.4: lowering the surface syntax tree into
// an IR graph (pass 1), then expanding every control-structure node's
// generated Block and Conditional arms (pass 2).
package lower

import (
	"github.com/FactorioDojo/fsmc/ast"
	"github.com/FactorioDojo/fsmc/ir"
)

// Lower walks chunk in source order and produces a single IR graph
// rooted at the chunk's one top-level Function (spec.md §4.3, §8
// scenario 6: more than one top-level function, or any top-level
// statement that is not a Function, is rejected). awaitName is the
// identifier recognized as the await marker (spec.md §4.1, §6 —
// fixed but configurable; emit.Config.AwaitName carries it alongside
// emission's own naming knobs).
func Lower(chunk *ast.Chunk, gs *ir.GraphSet, awaitName string) (*ir.Graph, error) {
	if chunk == nil || chunk.Body == nil {
		return nil, ir.Errorf(ir.KindMalformedInput, nil, "chunk has no body")
	}

	var fn *ast.Function
	for _, stmt := range chunk.Body.Stmts {
		f, ok := stmt.(*ast.Function)
		if !ok {
			return nil, ir.Errorf(ir.KindUnsupportedConstruct, stmt,
				"only a single top-level function definition is supported")
		}
		if fn != nil {
			return nil, ir.Errorf(ir.KindUnsupportedConstruct, stmt,
				"more than one top-level function definition")
		}
		fn = f
	}
	if fn == nil {
		return nil, ir.Errorf(ir.KindUnsupportedConstruct, nil, "chunk declares no top-level function")
	}

	g := gs.NewGraph()
	root := ir.NewFunction(fn)
	g.AddNode(root)

	l := &lowering{g: g, awaitName: awaitName}
	if err := l.block(fn.Body); err != nil {
		return nil, err
	}
	return g, nil
}

type lowering struct {
	g         *ir.Graph
	awaitName string
}

// block lowers every statement of b in order against the graph's
// current cursor.
func (l *lowering) block(b *ast.Block) error {
	if b == nil {
		return nil
	}
	for _, stmt := range b.Stmts {
		if err := l.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// stmt lowers a single statement. Control-structure statements (If and
// every loop shape) reset the cursor back to their own parent once
// added, so that whatever follows them in the same body becomes their
// sibling rather than their child — the device that later lets pass 3
// (passes.Linearize) find "a node P whose children contain a Branch B
// and a non-empty tail T" exactly as spec.md §4.5 describes. Regular and
// async nodes leave the cursor where AddNode put it, forming the
// ordinary sequential chain.
func (l *lowering) stmt(stmt ast.Node) error {
	switch s := stmt.(type) {
	case *ast.Function:
		return ir.Errorf(ir.KindUnsupportedConstruct, s, "nested function definitions are not supported")
	case *ast.LocalFunction:
		return ir.Errorf(ir.KindUnsupportedConstruct, s, "local function declarations are not supported")
	case *ast.Invoke:
		return ir.Errorf(ir.KindUnsupportedConstruct, s, "method invocation is not supported")

	case *ast.LocalAssign:
		if call, payload, ok := l.asyncPayload(s.Values); ok {
			l.g.AddNode(ir.NewAsyncAssign(call, append([]string(nil), s.Names...), payload))
			return nil
		}
		l.g.AddNode(ir.NewLocalAssign(s))
		return nil

	case *ast.Assign:
		if call, payload, ok := l.asyncPayload(s.Values); ok {
			// `x = await(f())` without `local`: lowered to the same
			// AsyncAssign as the local form. Only a single bare-name
			// target is accepted; any other target list is rejected as
			// UnsupportedConstruct.
			if len(s.Targets) != 1 {
				return ir.Errorf(ir.KindUnsupportedConstruct, s, "await assignment must have exactly one target")
			}
			name, ok := s.Targets[0].(*ast.Name)
			if !ok {
				return ir.Errorf(ir.KindUnsupportedConstruct, s, "await assignment target must be a name")
			}
			l.g.AddNode(ir.NewAsyncAssign(call, []string{name.Value}, payload))
			return nil
		}
		l.g.AddNode(ir.NewGlobalAssign(s))
		return nil

	case *ast.Return:
		l.g.AddNode(ir.NewReturn(s))
		return nil

	case ast.Break:
		l.g.AddNode(ir.NewBreak(s))
		return nil

	case ast.SemiColon:
		l.g.AddNode(ir.NewSemicolon(s))
		return nil

	case *ast.Label:
		l.g.AddNode(ir.NewLabel(s))
		return nil

	case *ast.Goto:
		l.g.AddNode(ir.NewGoto(s))
		return nil

	case *ast.Do:
		do := ir.NewDo(s)
		parent := l.g.Cursor()
		l.g.AddNode(do)
		l.g.SetCursor(do)
		if err := l.block(s.Body); err != nil {
			return err
		}
		l.g.SetCursor(parent)
		return nil

	case *ast.If:
		branch := ir.NewBranch(s)
		parent := l.g.Cursor()
		l.g.AddNode(branch)
		l.g.SetCursor(parent)
		return nil

	case *ast.While:
		return l.loop(ir.NewWhile(s))
	case *ast.Repeat:
		return l.loop(ir.NewRepeat(s))
	case *ast.NumericFor:
		return l.loop(ir.NewForNum(s))
	case *ast.GenericFor:
		return l.loop(ir.NewForIn(s))

	case *ast.Call:
		if call, payload, ok := l.asyncPayload([]ast.Node{s}); ok {
			l.g.AddNode(ir.NewAsyncCall(call, payload))
			return nil
		}
		l.g.AddNode(ir.NewCall(s))
		return nil

	default:
		return ir.Errorf(ir.KindUnsupportedConstruct, s, "unrecognized statement")
	}
}

// loop lowers a single loop-shaped node: attach it, reset the cursor
// back to its parent (so whatever follows the loop is its sibling), and
// defer body lowering to the expander (pass 2), exactly as Branch does
// for If.
func (l *lowering) loop(n ir.Node) error {
	parent := l.g.Cursor()
	l.g.AddNode(n)
	l.g.SetCursor(parent)
	return nil
}

// asyncPayload recognizes a single-expression value list whose sole
// expression is a call to l's configured await identifier, e.g.
// `await(foo())`. It returns the inner call node and the original
// await(...) call as payload/syntax per spec.md §4.3's "async nodes"
// bullet.
func (l *lowering) asyncPayload(values []ast.Node) (call ast.Node, payload ast.Node, ok bool) {
	if len(values) != 1 {
		return nil, nil, false
	}
	outer, isCall := values[0].(*ast.Call)
	if !isCall {
		return nil, nil, false
	}
	name, isName := outer.Func.(*ast.Name)
	if !isName || name.Value != l.awaitName {
		return nil, nil, false
	}
	if len(outer.Args) != 1 {
		return nil, nil, false
	}
	return outer, outer.Args[0], true
}
