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

import "github.com/FactorioDojo/fsmc/ir"

// InsertEventPointers runs pass 5 over every graph in gs (spec.md §4.7).
// For every asynchronous Link L, let P be L's parent (the async node)
// and GP be P's parent: insert a SetEventPointer naming L's link
// identifier between GP and P, so that the event-pointer table entry is
// written immediately before control suspends at P (spec.md §8 property
// 6, "Event-pointer precedence").
//
// The pass is idempotent: once P's parent is already a SetEventPointer
// carrying L's own link identifier, nothing further is done for L.
func InsertEventPointers(gs *ir.GraphSet) error {
	for {
		progressed, err := insertEventPointersOnce(gs)
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
	}
}

func insertEventPointersOnce(gs *ir.GraphSet) (bool, error) {
	for _, g := range gs.Graphs() {
		for _, n := range g.Preorder(g.Root()) {
			link, ok := n.(*ir.Link)
			if !ok || !link.Async {
				continue
			}
			p := link.Parent()
			if p == nil {
				return false, ir.Errorf(ir.KindInternalInvariant, nil, "asynchronous link has no parent")
			}
			if sep, ok := p.Parent().(*ir.SetEventPointer); ok && sep.LinkID == link.LinkID {
				continue // already inserted
			}
			gp := p.Parent()
			if gp == nil {
				return false, ir.Errorf(ir.KindInternalInvariant, nil,
					"async node %q has no parent to insert a SetEventPointer before", p.Name())
			}
			setp := ir.NewSetEventPointer(link.LinkID)
			if err := g.InsertBetween(gp, p, setp); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}
