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

package ast

// Rewriter mirrors the teacher's expr.Rewriter: Rewrite is applied to
// every node in depth-first order and may substitute a new node;
// Walk selects (or suppresses) the Rewriter used for a node's children.
type Rewriter interface {
	Rewrite(Node) Node
	Walk(Node) Rewriter
}

// Rewrite recursively applies r to n in depth-first order, exactly like
// expr.Rewrite: children are rewritten first (if r.Walk(n) returns a
// non-nil Rewriter), then r.Rewrite is applied to the (possibly
// reconstructed) node itself.
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	if w := r.Walk(n); w != nil {
		n = rewriteChildren(w, n)
	}
	return r.Rewrite(n)
}

func rewriteList(w Rewriter, in []Node) []Node {
	if in == nil {
		return nil
	}
	out := make([]Node, len(in))
	for i, n := range in {
		out[i] = Rewrite(w, n)
	}
	return out
}

func rewriteChildren(w Rewriter, n Node) Node {
	switch t := n.(type) {
	case *Chunk:
		return &Chunk{Body: Rewrite(w, t.Body).(*Block)}
	case *Block:
		return &Block{Stmts: rewriteList(w, t.Stmts)}
	case *Function:
		return &Function{Name: t.Name, Params: t.Params, Body: Rewrite(w, t.Body).(*Block)}
	case *LocalFunction:
		return &LocalFunction{Name: t.Name, Params: t.Params, Body: Rewrite(w, t.Body).(*Block)}
	case *Assign:
		return &Assign{Targets: rewriteList(w, t.Targets), Values: rewriteList(w, t.Values)}
	case *LocalAssign:
		return &LocalAssign{Names: t.Names, Values: rewriteList(w, t.Values)}
	case *Return:
		return &Return{Values: rewriteList(w, t.Values)}
	case *Do:
		return &Do{Body: Rewrite(w, t.Body).(*Block)}
	case *If:
		clauses := make([]IfClause, len(t.Clauses))
		for i, c := range t.Clauses {
			clauses[i] = IfClause{Cond: Rewrite(w, c.Cond), Body: Rewrite(w, c.Body).(*Block)}
		}
		var elseBlock *Block
		if t.Else != nil {
			elseBlock = Rewrite(w, t.Else).(*Block)
		}
		return &If{Clauses: clauses, Else: elseBlock}
	case *While:
		return &While{Cond: Rewrite(w, t.Cond), Body: Rewrite(w, t.Body).(*Block)}
	case *Repeat:
		return &Repeat{Body: Rewrite(w, t.Body).(*Block), Cond: Rewrite(w, t.Cond)}
	case *NumericFor:
		var step Node
		if t.Step != nil {
			step = Rewrite(w, t.Step)
		}
		return &NumericFor{Var: t.Var, Start: Rewrite(w, t.Start), Stop: Rewrite(w, t.Stop), Step: step, Body: Rewrite(w, t.Body).(*Block)}
	case *GenericFor:
		return &GenericFor{Names: t.Names, Exprs: rewriteList(w, t.Exprs), Body: Rewrite(w, t.Body).(*Block)}
	case *Call:
		return &Call{Func: Rewrite(w, t.Func), Args: rewriteList(w, t.Args)}
	case *Invoke:
		return &Invoke{Object: Rewrite(w, t.Object), Method: t.Method, Args: rewriteList(w, t.Args)}
	case *Index:
		return &Index{Object: Rewrite(w, t.Object), Field: t.Field}
	default:
		// Leaves (Name, String, Number, Bool, Break, SemiColon, Label, Goto)
		// have no children to rewrite.
		return n
	}
}
