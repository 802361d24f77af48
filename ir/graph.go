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

import "golang.org/x/exp/slices"

// Graph is a rooted ordered tree of IR nodes with a mutable insertion
// cursor, as spec.md §3/§4.2. Every Graph belongs to exactly one
// GraphSet, which owns the shared monotonic node-id counter and the
// identifier mint.
type Graph struct {
	set    *GraphSet
	root   Node
	cursor Node
}

// Root returns the graph's root node, or nil if the graph is still
// empty (the "empty" cursor state of spec.md §4.9).
func (g *Graph) Root() Node { return g.root }

// Cursor returns the node the next AddNode call will attach under.
func (g *Graph) Cursor() Node { return g.cursor }

// SetCursor repositions the cursor to any node already belonging to
// this graph. Callers (the lowering visitor and expander) use this to
// descend into a freshly created Block or Conditional before lowering
// its body.
func (g *Graph) SetCursor(n Node) { g.cursor = n }

// AddNode attaches n as the root (if the graph is empty) or as the last
// child of the cursor, then advances the cursor to n (spec.md §4.2).
func (g *Graph) AddNode(n Node) {
	g.set.assign(n, g)
	if g.root == nil {
		g.root = n
		g.cursor = n
		return
	}
	g.attach(g.cursor, n)
	g.cursor = n
}

func (g *Graph) attach(parent, n Node) {
	n.setParent(parent)
	parent.appendChild(n)
}

// AppendChild attaches n as parent's last child without touching the
// graph's cursor, the direct-attach primitive mirroring
// original_source/IR_nodes.py's IRGraphNode.add_child. The lowering
// visitor and expander use this (rather than AddNode) whenever they need
// to build structure — a generated Block's Conditional arms, a Branch's
// generated Block itself — at a position other than the current cursor.
func (g *Graph) AppendChild(parent, n Node) {
	g.set.assign(n, g)
	g.attach(parent, n)
}

// ReplaceNode detaches old from its parent, attaches new in the same
// child slot, and reparents old's children under new (spec.md §4.2).
func (g *Graph) ReplaceNode(old, new Node) {
	parent := old.Parent()
	if parent == nil {
		g.root = new
	} else {
		parent.replaceChild(old, new)
	}
	new.setParent(parent)
	new.setChildren(old.Children())
	for _, c := range old.Children() {
		c.setParent(new)
	}
	if g.cursor == old {
		g.cursor = new
	}
	old.setParent(nil)
	old.setChildren(nil)
}

// InsertBetween makes new take child's slot under parent, and child a
// child of new (spec.md §4.2). child must be a direct child of parent.
func (g *Graph) InsertBetween(parent, child, new Node) error {
	if !slices.Contains(parent.Children(), child) {
		return Errorf(KindInternalInvariant, nil,
			"insert_between: %q is not a direct child of %q", child.Name(), parent.Name())
	}
	parent.replaceChild(child, new)
	new.setParent(parent)
	new.setChildren([]Node{child})
	child.setParent(new)
	g.set.assign(new, g)
	return nil
}

// RemoveNode detaches n (and its descendants) from its parent
// (spec.md §4.2).
func (g *Graph) RemoveNode(n Node) {
	if p := n.Parent(); p != nil {
		p.removeChild(n)
	}
	n.setParent(nil)
	if g.cursor == n {
		g.cursor = n.Parent()
	}
}

// Leaves returns every leaf (childless node) in the subtree rooted at
// from, within this graph only — it never follows a Link across a
// graph boundary (spec.md §4.2; contrast CrossGraphLeaves).
func (g *Graph) Leaves(from Node) []Node {
	if from == nil {
		return nil
	}
	if len(from.Children()) == 0 {
		return []Node{from}
	}
	var out []Node
	for _, c := range from.Children() {
		out = append(out, g.Leaves(c)...)
	}
	return out
}

// CrossGraphLeaves returns every leaf reachable from the subtree rooted
// at from, transparently following Link nodes into their target
// graphs' roots (spec.md §4.2). Results are deduplicated by identity,
// mirroring original_source/utils/graph_util.py's
// get_subgraph_leaf_nodes + remove_duplicates.
func (g *Graph) CrossGraphLeaves(from Node) []Node {
	seen := make(map[Node]struct{})
	var out []Node
	var walk func(n Node)
	walk = func(n Node) {
		if link, ok := n.(*Link); ok {
			if link.Target != nil {
				walk(link.Target.Root())
			}
			return
		}
		if len(n.Children()) == 0 {
			if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				out = append(out, n)
			}
			return
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	if from != nil {
		walk(from)
	}
	return out
}

// Preorder returns every node in the subtree rooted at from exactly
// once, in preorder, in current child order (spec.md §4.2). The slice
// is computed fresh on every call, so restarting a traversal after a
// structural mutation (spec.md §5 "Iterator invalidation") is simply
// calling Preorder again.
func (g *Graph) Preorder(from Node) []Node {
	var out []Node
	var walk func(Node)
	walk = func(n Node) {
		out = append(out, n)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	if from != nil {
		walk(from)
	}
	return out
}

// Postorder is Preorder's postorder counterpart.
func (g *Graph) Postorder(from Node) []Node {
	var out []Node
	var walk func(Node)
	walk = func(n Node) {
		for _, c := range n.Children() {
			walk(c)
		}
		out = append(out, n)
	}
	if from != nil {
		walk(from)
	}
	return out
}

// CopyInto deep-copies the subtree rooted at src into dst, attaching the
// copy as the last child of parent (or as dst's root if parent is nil
// and dst is empty). Every copied node receives a fresh id and dst as
// its graph; syntax-tree references are shared, never copied
// (spec.md §5 "Deep copy semantics").
func (dst *Graph) CopyInto(parent Node, src Node) Node {
	cp := src.clone()
	dst.set.assign(cp, dst)
	if parent == nil {
		dst.root = cp
	} else {
		dst.attach(parent, cp)
	}
	for _, c := range src.Children() {
		dst.CopyInto(cp, c)
	}
	return cp
}
