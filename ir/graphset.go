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

package ir

// GraphSet is the collection of all IR graphs produced during a single
// compilation: the original program graph plus every continuation graph
// produced by branch linearization and async splitting (spec.md §3, §5).
//
// The node-id counter and the identifier mint are process-wide within a
// compilation and reset at the start of every new GraphSet, per spec.md
// §5's shared-resource policy.
type GraphSet struct {
	mint       *Mint
	nextNodeID int
	graphs     []*Graph
	entry      *Graph // the input program's top-level function graph
}

// NewGraphSet creates an empty graph set seeded for deterministic name
// generation (spec.md §4.1).
func NewGraphSet(seed int64) *GraphSet {
	return &GraphSet{mint: NewMint(seed)}
}

// Mint returns the identifier mint shared by every graph in the set.
func (gs *GraphSet) Mint() *Mint { return gs.mint }

// Graphs returns every graph currently registered in the set, in
// creation order.
func (gs *GraphSet) Graphs() []*Graph { return gs.graphs }

// Entry returns the graph built from the input program's top-level
// function (the root of the cross-graph Link forest, spec.md §3).
func (gs *GraphSet) Entry() *Graph { return gs.entry }

// NewGraph registers and returns a new, empty graph belonging to this
// set. The first graph ever created becomes the set's Entry.
func (gs *GraphSet) NewGraph() *Graph {
	g := &Graph{set: gs}
	gs.graphs = append(gs.graphs, g)
	if gs.entry == nil {
		gs.entry = g
	}
	return g
}

// NewContinuationGraph registers a new graph rooted at a fresh
// Function-stub, as produced by the branch linearizer (pass 3) and the
// async splitter (pass 4) every time they hoist a subtree into its own
// graph (spec.md §4.5, §4.6).
func (gs *GraphSet) NewContinuationGraph() *Graph {
	g := gs.NewGraph()
	stub := NewFunctionStub(gs.mint.FreshFunctionName())
	g.AddNode(stub)
	return g
}

// assign gives n a fresh monotonic id and attaches it to graph g. It is
// the only place node ids are minted, matching spec.md §3's "monotonically
// assigned on insertion into any graph."
func (gs *GraphSet) assign(n Node, g *Graph) {
	n.setID(gs.nextNodeID)
	gs.nextNodeID++
	n.setGraph(g)
}
