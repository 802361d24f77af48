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

import "testing"

func TestAddNodeRootAndCursor(t *testing.T) {
	gs := NewGraphSet(1)
	g := gs.NewGraph()
	if g.Root() != nil {
		t.Fatalf("fresh graph should have no root")
	}
	f := NewFunction(nil)
	g.AddNode(f)
	if g.Root() != f {
		t.Fatalf("first node added should become root")
	}
	if g.Cursor() != f {
		t.Fatalf("cursor should advance to the added node")
	}

	c1 := NewCall(nil)
	g.AddNode(c1)
	if f.Children()[0] != c1 {
		t.Fatalf("second node should attach under the cursor (root)")
	}
	if g.Cursor() != c1 {
		t.Fatalf("cursor should advance to c1")
	}

	c2 := NewCall(nil)
	g.AddNode(c2)
	if c1.Children()[0] != c2 {
		t.Fatalf("third node should attach under c1 (the new cursor)")
	}
}

func TestNodeIDsMonotonicAcrossGraphs(t *testing.T) {
	gs := NewGraphSet(1)
	g1 := gs.NewGraph()
	g2 := gs.NewGraph()

	a := NewCall(nil)
	g1.AddNode(a)
	b := NewCall(nil)
	g2.AddNode(b)
	c := NewCall(nil)
	g1.AddNode(c)

	if !(a.ID() < b.ID() && b.ID() < c.ID()) {
		t.Fatalf("ids should be monotonic across graphs, got %d %d %d", a.ID(), b.ID(), c.ID())
	}
}

func TestReplaceNodeReparentsChildren(t *testing.T) {
	gs := NewGraphSet(1)
	g := gs.NewGraph()
	root := NewFunction(nil)
	g.AddNode(root)
	old := NewCall(nil)
	g.AddNode(old)
	child := NewCall(nil)
	g.AddNode(child) // child of old

	replacement := NewBlock()
	g.ReplaceNode(old, replacement)

	if root.Children()[0] != replacement {
		t.Fatalf("replacement should take old's slot under root")
	}
	if replacement.Parent() != root {
		t.Fatalf("replacement's parent should be root")
	}
	if len(replacement.Children()) != 1 || replacement.Children()[0] != child {
		t.Fatalf("replacement should inherit old's children")
	}
	if child.Parent() != replacement {
		t.Fatalf("child's parent should be repointed to replacement")
	}
}

func TestInsertBetween(t *testing.T) {
	gs := NewGraphSet(1)
	g := gs.NewGraph()
	root := NewFunction(nil)
	g.AddNode(root)
	child := NewCall(nil)
	g.AddNode(child)

	setp := NewSetEventPointer("link_x")
	if err := g.InsertBetween(root, child, setp); err != nil {
		t.Fatalf("insert_between failed: %v", err)
	}
	if root.Children()[0] != setp {
		t.Fatalf("root should now point at the inserted node")
	}
	if setp.Children()[0] != child {
		t.Fatalf("inserted node should have child as its sole child")
	}
	if child.Parent() != setp {
		t.Fatalf("child's parent should now be the inserted node")
	}
}

func TestInsertBetweenRejectsNonChild(t *testing.T) {
	gs := NewGraphSet(1)
	g := gs.NewGraph()
	root := NewFunction(nil)
	g.AddNode(root)
	notAChild := NewCall(nil)

	err := g.InsertBetween(root, notAChild, NewBlock())
	if err == nil {
		t.Fatalf("expected an error inserting between a non-child")
	}
}

func TestRemoveNode(t *testing.T) {
	gs := NewGraphSet(1)
	g := gs.NewGraph()
	root := NewFunction(nil)
	g.AddNode(root)
	victim := NewCall(nil)
	g.AddNode(victim)

	g.RemoveNode(victim)
	if len(root.Children()) != 0 {
		t.Fatalf("root should have no children after removal")
	}
	if victim.Parent() != nil {
		t.Fatalf("removed node should have no parent")
	}
}

func TestLeavesDoesNotCrossLinks(t *testing.T) {
	gs := NewGraphSet(1)
	g := gs.NewGraph()
	root := NewFunction(nil)
	g.AddNode(root)

	target := gs.NewContinuationGraph()
	inner := NewCall(nil)
	target.AddNode(inner)

	link := NewLink(target, false, "link_a")
	g.AddNode(link)

	leaves := g.Leaves(root)
	if len(leaves) != 1 || leaves[0] != link {
		t.Fatalf("Leaves should stop at the Link node itself, got %v", leaves)
	}
}

func TestCrossGraphLeavesFollowsLinks(t *testing.T) {
	gs := NewGraphSet(1)
	g := gs.NewGraph()
	root := NewFunction(nil)
	g.AddNode(root)

	target := gs.NewContinuationGraph()
	inner := NewCall(nil)
	target.AddNode(inner)

	link := NewLink(target, false, "link_a")
	g.AddNode(link)

	leaves := g.CrossGraphLeaves(root)
	if len(leaves) != 1 || leaves[0] != inner {
		t.Fatalf("CrossGraphLeaves should descend into the target graph, got %v", leaves)
	}
}

func TestCrossGraphLeavesDedups(t *testing.T) {
	gs := NewGraphSet(1)
	g := gs.NewGraph()
	root := NewFunction(nil)
	g.AddNode(root)

	target := gs.NewContinuationGraph()
	stub := target.Root()

	linkA := NewLink(target, false, "link_a")
	root.appendChild(linkA)
	linkA.setParent(root)
	gs.assign(linkA, g)

	linkB := NewLink(target, false, "link_b")
	root.appendChild(linkB)
	linkB.setParent(root)
	gs.assign(linkB, g)

	leaves := g.CrossGraphLeaves(root)
	if len(leaves) != 1 || leaves[0] != stub {
		t.Fatalf("expected the shared target leaf exactly once, got %v", leaves)
	}
}

func TestPreorderPostorderOrder(t *testing.T) {
	gs := NewGraphSet(1)
	g := gs.NewGraph()
	root := NewFunction(nil)
	g.AddNode(root)
	a := NewCall(nil)
	root.appendChild(a)
	a.setParent(root)
	gs.assign(a, g)
	b := NewCall(nil)
	root.appendChild(b)
	b.setParent(root)
	gs.assign(b, g)

	pre := g.Preorder(root)
	if len(pre) != 3 || pre[0] != root || pre[1] != a || pre[2] != b {
		t.Fatalf("unexpected preorder: %v", pre)
	}

	post := g.Postorder(root)
	if len(post) != 3 || post[0] != a || post[1] != b || post[2] != root {
		t.Fatalf("unexpected postorder: %v", post)
	}
}

func TestCopyIntoDeepCopiesAndReassignsIDs(t *testing.T) {
	gs := NewGraphSet(1)
	src := gs.NewGraph()
	root := NewFunction(nil)
	src.AddNode(root)
	a := NewCall(nil)
	src.AddNode(a)
	b := NewCall(nil)
	src.AddNode(b) // child of a

	dst := gs.NewContinuationGraph()
	stub := dst.Root()
	copied := dst.CopyInto(stub, root)

	if copied == Node(root) {
		t.Fatalf("copy should be a distinct node from the source")
	}
	if copied.ID() == root.ID() {
		t.Fatalf("copy should receive a fresh id")
	}
	if copied.Graph() != dst {
		t.Fatalf("copy should belong to the destination graph")
	}
	if len(copied.Children()) != 1 {
		t.Fatalf("copy should preserve child structure, got %d children", len(copied.Children()))
	}
	childCopy := copied.Children()[0]
	if len(childCopy.Children()) != 1 {
		t.Fatalf("copy should preserve grandchild structure")
	}
	if root.Children()[0].ID() == childCopy.ID() {
		t.Fatalf("copy's descendant ids should differ from the originals")
	}
}
