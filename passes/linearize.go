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

// Package passes implements passes 3 through 5 of the fsmc pipeline:
// branch linearization (spec.md §4.5), async splitting (spec.md §4.6),
// the cross-graph recursion check that must run between them and pass
// 5, and continuation-pointer insertion (spec.md §4.7).
package passes

import (
	"golang.org/x/exp/slices"

	"github.com/FactorioDojo/fsmc/ir"
)

// Linearize runs pass 3 over every graph in gs, including continuation
// graphs created during the pass itself, until no Branch node has a
// non-empty tail left to hoist (spec.md §4.5).
//
// For a node P whose children are [..., B, T...] where B is a Branch and
// T is everything after it, linearization:
//  1. ensures B has an explicit else arm, synthesizing an ElseStub when
//     the source had none (spec.md §9 "Implicit else bug" — without
//     this, the implicit false path would never link back into T,
//     silently dropping control flow for any input that takes it);
//  2. creates a fresh continuation graph G and deep-copies T into it;
//  3. appends a synchronous Link targeting G to every cross-graph leaf
//     of B;
//  4. detaches T from P, leaving B as P's last child.
func Linearize(gs *ir.GraphSet) error {
	for {
		progressed, err := linearizeOnce(gs)
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
	}
}

func linearizeOnce(gs *ir.GraphSet) (bool, error) {
	for _, g := range gs.Graphs() {
		for _, p := range g.Postorder(g.Root()) {
			branch, idx := firstBranchChild(p)
			if branch == nil {
				continue
			}
			tail := p.Children()[idx+1:]
			if len(tail) == 0 {
				continue
			}
			if err := linearizeOne(gs, g, p, branch, tail); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func firstBranchChild(p ir.Node) (*ir.Branch, int) {
	idx := slices.IndexFunc(p.Children(), func(c ir.Node) bool {
		_, ok := c.(*ir.Branch)
		return ok
	})
	if idx < 0 {
		return nil, -1
	}
	return p.Children()[idx].(*ir.Branch), idx
}

func linearizeOne(gs *ir.GraphSet, g *ir.Graph, p ir.Node, b *ir.Branch, tail []ir.Node) error {
	if !b.ElsePresent {
		block, err := soleBlockChild(b)
		if err != nil {
			return err
		}
		g.AppendChild(block, ir.NewElseStub())
		b.ElsePresent = true
	}

	cg := gs.NewContinuationGraph()
	stub := cg.Root()
	for _, t := range tail {
		cg.CopyInto(stub, t)
	}

	for _, leaf := range g.CrossGraphLeaves(b) {
		leafGraph := leaf.Graph()
		link := ir.NewLink(cg, false, gs.Mint().FreshLinkName())
		leafGraph.AppendChild(leaf, link)
	}

	for _, t := range tail {
		g.RemoveNode(t)
	}
	return nil
}

func soleBlockChild(b *ir.Branch) (*ir.Block, error) {
	if len(b.Children()) != 1 {
		return nil, ir.Errorf(ir.KindInternalInvariant, b.Syntax(),
			"branch should have exactly one Block child before linearization")
	}
	block, ok := b.Children()[0].(*ir.Block)
	if !ok {
		return nil, ir.Errorf(ir.KindInternalInvariant, b.Syntax(), "branch's sole child is not a Block")
	}
	return block, nil
}
