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

// Package ir implements the closed IR node model, the IR graph, and the
// graph set described in spec.md §3. It has no dependency on the pass
// implementations in package passes; it only defines the data these
// passes mutate.
package ir

import (
	"golang.org/x/exp/slices"

	"github.com/FactorioDojo/fsmc/ast"
)

// Node is satisfied by every IR node variant. The method set is
// deliberately small and mirrors plan/pir.Step: callers go through
// Graph's structural operations rather than mutating a node's linkage
// fields directly.
type Node interface {
	ID() int
	Graph() *Graph
	Parent() Node
	Children() []Node
	Syntax() ast.Node
	Name() string

	setID(int)
	setGraph(*Graph)
	setParent(Node)
	setChildren([]Node)
	appendChild(Node)
	removeChild(Node)
	replaceChild(old, new Node)
	insertChildAt(idx int, n Node)

	// clone returns a fresh node of the same concrete type, carrying
	// the same syntax reference and display name but detached from any
	// graph (id, parent, children all zeroed). Used by deep-copy during
	// branch linearization and async splitting (spec.md §5, §9).
	clone() Node
}

// base implements the bookkeeping fields shared by all node variants.
// Concrete types embed it and add their own payload fields.
type base struct {
	id       int
	graph    *Graph
	parent   Node
	children []Node
	syntax   ast.Node
	name     string
}

func (b *base) ID() int          { return b.id }
func (b *base) Graph() *Graph    { return b.graph }
func (b *base) Parent() Node     { return b.parent }
func (b *base) Children() []Node { return b.children }
func (b *base) Syntax() ast.Node { return b.syntax }
func (b *base) Name() string     { return b.name }

func (b *base) setID(id int)           { b.id = id }
func (b *base) setGraph(g *Graph)      { b.graph = g }
func (b *base) setParent(p Node)       { b.parent = p }
func (b *base) setChildren(c []Node)   { b.children = c }
func (b *base) appendChild(n Node)     { b.children = append(b.children, n) }

func (b *base) removeChild(n Node) {
	if idx := slices.Index(b.children, n); idx >= 0 {
		b.children = slices.Delete(b.children, idx, idx+1)
	}
}

func (b *base) replaceChild(old, new Node) {
	if idx := slices.Index(b.children, old); idx >= 0 {
		b.children[idx] = new
	}
}

func (b *base) insertChildAt(idx int, n Node) {
	b.children = slices.Insert(b.children, idx, n)
}

// resetCopy returns a base carrying only the syntax reference and name,
// for use by each concrete type's clone(). Mirrors
// original_source/IR_nodes.py's IRGraphNode.__copy__, which resets
// IR_graph/id/parent/children but keeps lua_node and name.
func (b base) resetCopy() base {
	return base{syntax: b.syntax, name: b.name}
}

func newBase(syntax ast.Node, name string) base {
	return base{syntax: syntax, name: name}
}

// kindName returns syntax.Kind() if present, else the given default —
// used when a generated node has no originating syntax node.
func kindName(syntax ast.Node, def string) string {
	if syntax != nil {
		return syntax.Kind()
	}
	return def
}

// --- Regular (pass-through) nodes ---------------------------------------

type Function struct{ base }

func NewFunction(syntax ast.Node) *Function { return &Function{newBase(syntax, "Function")} }
func (n *Function) clone() Node             { c := *n; c.base = n.base.resetCopy(); return &c }

type LocalFunction struct{ base }

func NewLocalFunction(syntax ast.Node) *LocalFunction {
	return &LocalFunction{newBase(syntax, "LocalFunction")}
}
func (n *LocalFunction) clone() Node { c := *n; c.base = n.base.resetCopy(); return &c }

type LocalAssign struct{ base }

func NewLocalAssign(syntax ast.Node) *LocalAssign { return &LocalAssign{newBase(syntax, "LocalAssign")} }
func (n *LocalAssign) clone() Node                { c := *n; c.base = n.base.resetCopy(); return &c }

type GlobalAssign struct{ base }

func NewGlobalAssign(syntax ast.Node) *GlobalAssign {
	return &GlobalAssign{newBase(syntax, "GlobalAssign")}
}
func (n *GlobalAssign) clone() Node { c := *n; c.base = n.base.resetCopy(); return &c }

type Semicolon struct{ base }

func NewSemicolon(syntax ast.Node) *Semicolon { return &Semicolon{newBase(syntax, "Semicolon")} }
func (n *Semicolon) clone() Node              { c := *n; c.base = n.base.resetCopy(); return &c }

type Do struct{ base }

func NewDo(syntax ast.Node) *Do { return &Do{newBase(syntax, "Do")} }
func (n *Do) clone() Node       { c := *n; c.base = n.base.resetCopy(); return &c }

type Call struct{ base }

func NewCall(syntax ast.Node) *Call { return &Call{newBase(syntax, "Call")} }
func (n *Call) clone() Node         { c := *n; c.base = n.base.resetCopy(); return &c }

// --- Async nodes ----------------------------------------------------------

// AsyncCall is an `await(call())` used as a statement.
type AsyncCall struct {
	base
	// Payload is the inner call expression, retained for emission of
	// the eventual host invocation; see emit.Emit.
	Payload ast.Node
}

func NewAsyncCall(syntax ast.Node, payload ast.Node) *AsyncCall {
	return &AsyncCall{base: newBase(syntax, kindName(syntax, "AsyncCall")), Payload: payload}
}
func (n *AsyncCall) clone() Node {
	c := *n
	c.base = n.base.resetCopy()
	return &c
}

// AsyncAssign is `x = await(call())`.
type AsyncAssign struct {
	base
	Targets []string
	Payload ast.Node
}

func NewAsyncAssign(syntax ast.Node, targets []string, payload ast.Node) *AsyncAssign {
	return &AsyncAssign{base: newBase(syntax, kindName(syntax, "AsyncAssign")), Targets: targets, Payload: payload}
}
func (n *AsyncAssign) clone() Node {
	c := *n
	c.base = n.base.resetCopy()
	c.Targets = append([]string(nil), n.Targets...)
	return &c
}

// --- Control nodes ----------------------------------------------------------

// Conditional is one arm of a Branch: carries the arm's guard
// expression (the ast.IfClause's Cond) as Syntax(), nil for the else
// arm, and whether it is the else arm.
type Conditional struct {
	base
	Else bool
}

func NewConditional(syntax ast.Node, isElse bool) *Conditional {
	name := "Conditional"
	if isElse {
		name = "Conditional (else)"
	}
	return &Conditional{base: newBase(syntax, name), Else: isElse}
}
func (n *Conditional) clone() Node { c := *n; c.base = n.base.resetCopy(); return &c }

type Break struct{ base }

func NewBreak(syntax ast.Node) *Break { return &Break{newBase(syntax, "Break")} }
func (n *Break) clone() Node          { c := *n; c.base = n.base.resetCopy(); return &c }

type Return struct{ base }

func NewReturn(syntax ast.Node) *Return { return &Return{newBase(syntax, "Return")} }
func (n *Return) clone() Node           { c := *n; c.base = n.base.resetCopy(); return &c }

type Goto struct{ base }

func NewGoto(syntax ast.Node) *Goto { return &Goto{newBase(syntax, "Goto")} }
func (n *Goto) clone() Node         { c := *n; c.base = n.base.resetCopy(); return &c }

type Label struct{ base }

func NewLabel(syntax ast.Node) *Label { return &Label{newBase(syntax, "Label")} }
func (n *Label) clone() Node          { c := *n; c.base = n.base.resetCopy(); return &c }

// --- Loop nodes ----------------------------------------------------------

type While struct{ base }

func NewWhile(syntax ast.Node) *While { return &While{newBase(syntax, "While")} }
func (n *While) clone() Node          { c := *n; c.base = n.base.resetCopy(); return &c }

type Repeat struct{ base }

func NewRepeat(syntax ast.Node) *Repeat { return &Repeat{newBase(syntax, "Repeat")} }
func (n *Repeat) clone() Node           { c := *n; c.base = n.base.resetCopy(); return &c }

type ForIn struct{ base }

func NewForIn(syntax ast.Node) *ForIn { return &ForIn{newBase(syntax, "ForIn")} }
func (n *ForIn) clone() Node          { c := *n; c.base = n.base.resetCopy(); return &c }

type ForNum struct{ base }

func NewForNum(syntax ast.Node) *ForNum { return &ForNum{newBase(syntax, "ForNum")} }
func (n *ForNum) clone() Node           { c := *n; c.base = n.base.resetCopy(); return &c }

// --- Generated nodes ----------------------------------------------------------

// Block is the generated body wrapper appended by the expander (pass 2)
// to every control-structure node.
type Block struct{ base }

func NewBlock() *Block     { return &Block{newBase(nil, "Block (generated)")} }
func (n *Block) clone() Node { c := *n; c.base = n.base.resetCopy(); return &c }

// Branch stands in for an `if` statement after lowering; its Syntax()
// retains the original *ast.If so the expander can walk the elseif/else
// chain (spec.md §4.3, §4.4).
type Branch struct {
	base
	ElsePresent bool
}

func NewBranch(syntax ast.Node) *Branch { return &Branch{base: newBase(syntax, "Branch (generated)")} }
func (n *Branch) clone() Node           { c := *n; c.base = n.base.resetCopy(); return &c }

// Link crosses a graph boundary. Target is always the Function-stub root
// of another graph in the same graph set (spec.md §3 invariant).
type Link struct {
	base
	Target *Graph
	Async  bool
	// LinkID is this link's unique identifier, used by SetEventPointer
	// to name the key written into the event-pointer table.
	LinkID string
}

func NewLink(target *Graph, async bool, linkID string) *Link {
	kind := "Link"
	if async {
		kind = "Link (async)"
	}
	return &Link{base: newBase(nil, kind), Target: target, Async: async, LinkID: linkID}
}
func (n *Link) clone() Node { c := *n; c.base = n.base.resetCopy(); return &c }

// FunctionStub is the root of every continuation graph.
type FunctionStub struct {
	base
	FuncName string
}

func NewFunctionStub(funcName string) *FunctionStub {
	return &FunctionStub{base: newBase(nil, "Function-stub "+funcName), FuncName: funcName}
}
func (n *FunctionStub) clone() Node { c := *n; c.base = n.base.resetCopy(); return &c }

// ElseStub is the synthesized else arm inserted by the branch
// linearizer when a Branch has no explicit else (spec.md §4.5 edge
// cases, §9 "Implicit else bug"). It is distinct from a Conditional
// sourced from real syntax: it carries no guard expression at all.
type ElseStub struct{ base }

func NewElseStub() *ElseStub { return &ElseStub{newBase(nil, "Else (generated)")} }
func (n *ElseStub) clone() Node { c := *n; c.base = n.base.resetCopy(); return &c }

// SetEventPointer writes the name of the continuation function that the
// host must invoke into the event-pointer table, keyed by LinkID
// (spec.md §4.7).
type SetEventPointer struct {
	base
	LinkID string
}

func NewSetEventPointer(linkID string) *SetEventPointer {
	return &SetEventPointer{base: newBase(nil, "SetEventPointer "+linkID), LinkID: linkID}
}
func (n *SetEventPointer) clone() Node { c := *n; c.base = n.base.resetCopy(); return &c }
