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

package passes

import (
	"golang.org/x/exp/slices"

	"github.com/FactorioDojo/fsmc/ir"
)

// SplitAsync runs pass 4 over every graph in gs, including continuation
// graphs appended by this same pass (spec.md §4.6). For every
// AsyncCall/AsyncAssign node A:
//  1. if A's sole child is already an asynchronous Link, A has already
//     been split (this makes the pass idempotent on re-entry, and is the
//     only reading of spec.md's "if A has no further work to do, do
//     nothing" that keeps spec.md §8 property 5 — every async node ends
//     with exactly one asynchronous Link, even one with nothing
//     originally following it — true for a chain of awaits with nothing
//     after the last one);
//  2. otherwise, create a fresh continuation graph G, move A's existing
//     child (if any) into it, and attach a fresh asynchronous Link to G
//     as A's new sole child.
func SplitAsync(gs *ir.GraphSet) error {
	for {
		progressed, err := splitAsyncOnce(gs)
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
	}
}

func splitAsyncOnce(gs *ir.GraphSet) (bool, error) {
	for _, g := range gs.Graphs() {
		nodes := g.Preorder(g.Root())
		idx := slices.IndexFunc(nodes, needsSplit)
		if idx < 0 {
			continue
		}
		if err := splitOne(gs, g, nodes[idx]); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func isAsyncNode(n ir.Node) bool {
	switch n.(type) {
	case *ir.AsyncCall, *ir.AsyncAssign:
		return true
	default:
		return false
	}
}

// needsSplit reports whether n is an async node that has not yet been
// split: its sole child, if any, is not already an asynchronous Link.
// This makes the pass idempotent on re-entry.
func needsSplit(n ir.Node) bool {
	if !isAsyncNode(n) {
		return false
	}
	children := n.Children()
	if len(children) != 1 {
		return true
	}
	link, ok := children[0].(*ir.Link)
	return !ok || !link.Async
}

func splitOne(gs *ir.GraphSet, g *ir.Graph, a ir.Node) error {
	children := a.Children()
	if len(children) > 1 {
		return ir.Errorf(ir.KindInternalInvariant, a.Syntax(), "async node has more than one child")
	}

	cg := gs.NewContinuationGraph()
	if len(children) == 1 {
		cg.CopyInto(cg.Root(), children[0])
		g.RemoveNode(children[0])
	}
	link := ir.NewLink(cg, true, gs.Mint().FreshLinkName())
	g.AppendChild(a, link)
	return nil
}
