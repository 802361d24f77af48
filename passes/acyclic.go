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

// CheckAcyclic verifies that the relation induced by Link targets on
// graphs is acyclic (spec.md §4.6's "check between pass 4 and pass 5",
// §8 property: a recursive program must fail with RecursionDetected
// rather than hang or stack-overflow a later pass). It runs a standard
// three-color DFS over the graph set, following every Link (sync or
// async) as an edge to its target graph.
func CheckAcyclic(gs *ir.GraphSet) error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[*ir.Graph]int)

	var visit func(g *ir.Graph) error
	visit = func(g *ir.Graph) error {
		color[g] = gray
		for _, n := range g.Preorder(g.Root()) {
			link, ok := n.(*ir.Link)
			if !ok || link.Target == nil {
				continue
			}
			switch color[link.Target] {
			case gray:
				return ir.Errorf(ir.KindRecursionDetected, nil,
					"cycle detected through link %q", link.LinkID)
			case white:
				if err := visit(link.Target); err != nil {
					return err
				}
			}
		}
		color[g] = black
		return nil
	}

	for _, g := range gs.Graphs() {
		if color[g] == white {
			if err := visit(g); err != nil {
				return err
			}
		}
	}
	return nil
}
