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

// Package ast declares the surface-language syntax tree node variants
// consumed (as input) and produced (as output) by the fsmc core.
//
// The surface-language parser and unparser are external collaborators
// (see SPEC_FULL.md §1); this package only fixes the shape of the tree
// that passes between them and the core, modeled on the luaparser
// astnodes vocabulary named in spec.md §6.
package ast

// Node is implemented by every syntax tree node. It carries no behavior
// beyond identifying itself; the core never needs more than a type switch
// and, for constructs it does not specifically recognize, the generic
// recursive descent in Walk.
type Node interface {
	// Kind returns the node's kind name. It is the "kind" discriminator
	// of the JSON encoding and the display name of AsyncCall/AsyncAssign
	// IR nodes; the other IR node variants use fixed display names of
	// their own.
	Kind() string
}

// Chunk is the root of a parsed program.
type Chunk struct {
	Body *Block
}

func (*Chunk) Kind() string { return "Chunk" }

// Block is an ordered sequence of statements.
type Block struct {
	Stmts []Node
}

func (*Block) Kind() string { return "Block" }

// Function is a top-level function definition. The core rejects any
// chunk containing more than one of these (spec.md §4.3, §8 scenario 6).
type Function struct {
	Name   string
	Params []string
	Body   *Block
}

func (*Function) Kind() string { return "Function" }

// LocalFunction is a local function declaration. Always rejected
// (spec.md §4.3, Non-goals).
type LocalFunction struct {
	Name   string
	Params []string
	Body   *Block
}

func (*LocalFunction) Kind() string { return "LocalFunction" }

// Assign is a global assignment statement: Targets = Values.
type Assign struct {
	Targets []Node
	Values  []Node
}

func (*Assign) Kind() string { return "Assign" }

// LocalAssign is a local variable declaration/assignment.
type LocalAssign struct {
	Names  []string
	Values []Node
}

func (*LocalAssign) Kind() string { return "LocalAssign" }

// Return is a return statement. Rejected inside an async chain
// (spec.md §9 "Return statements").
type Return struct {
	Values []Node
}

func (*Return) Kind() string { return "Return" }

// Break is a loop break statement.
type Break struct{}

func (Break) Kind() string { return "Break" }

// SemiColon is a no-op separator statement, kept as an explicit node so
// that pass-through round-tripping (spec.md §8 property 9) has something
// to exercise even when it carries no payload.
type SemiColon struct{}

func (SemiColon) Kind() string { return "SemiColon" }

// Do is an explicit do...end block.
type Do struct {
	Body *Block
}

func (*Do) Kind() string { return "Do" }

// IfClause is one arm (the initial `if` or a subsequent `elseif`) of a
// chained conditional.
type IfClause struct {
	Cond Node
	Body *Block
}

// If is a chained if/elseif/.../else statement. The core retains the
// whole chain on the IR Branch node's syntax reference and expands it
// in pass 2 (spec.md §4.4).
type If struct {
	Clauses []IfClause
	Else    *Block // nil if no else arm was written
}

func (*If) Kind() string { return "If" }

// While is a pre-tested loop.
type While struct {
	Cond Node
	Body *Block
}

func (*While) Kind() string { return "While" }

// Repeat is a post-tested loop.
type Repeat struct {
	Body *Block
	Cond Node
}

func (*Repeat) Kind() string { return "Repeat" }

// NumericFor is a `for i = start, stop[, step] do ... end` loop.
type NumericFor struct {
	Var   string
	Start Node
	Stop  Node
	Step  Node // nil if not written
	Body  *Block
}

func (*NumericFor) Kind() string { return "Fornum" }

// GenericFor is a `for a, b in iter do ... end` loop.
type GenericFor struct {
	Names []string
	Exprs []Node
	Body  *Block
}

func (*GenericFor) Kind() string { return "Forin" }

// Label is a goto target. Accepted syntactically but rejected at emit
// time (spec.md §4.3).
type Label struct {
	Name string
}

func (*Label) Kind() string { return "Label" }

// Goto is a jump to a Label. Accepted syntactically but rejected at
// emit time (spec.md §4.3).
type Goto struct {
	Name string
}

func (*Goto) Kind() string { return "Goto" }

// Call is a plain function call expression/statement: Func(Args...).
type Call struct {
	Func Node
	Args []Node
}

func (*Call) Kind() string { return "Call" }

// Invoke is a method-style call `obj:method(args)`. Always rejected
// (spec.md §4.3, Non-goals).
type Invoke struct {
	Object Node
	Method string
	Args   []Node
}

func (*Invoke) Kind() string { return "Invoke" }

// Name is a bare identifier reference.
type Name struct {
	Value string
}

func (*Name) Kind() string { return "Name" }

// Index is a dotted field reference `obj.field`.
type Index struct {
	Object Node
	Field  string
}

func (*Index) Kind() string { return "Index" }

// String, Number and Bool are literal expressions. They carry no
// children and need no special handling beyond the generic visitor.
type String struct{ Value string }

func (String) Kind() string { return "String" }

type Number struct{ Value float64 }

func (Number) Kind() string { return "Number" }

type Bool struct{ Value bool }

func (Bool) Kind() string { return "Bool" }
