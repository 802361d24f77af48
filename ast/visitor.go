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

import "reflect"

// Visitor mirrors the expr.Visitor shape used by the teacher's expression
// package (golang.org/x/exp-flavored Walk/Rewrite convention): Visit is
// called for every node, and a non-nil returned Visitor is used to
// descend into children.
type Visitor interface {
	Visit(Node) Visitor
}

// Walk traverses n in depth-first, source order, exactly like Go's own
// ast.Walk or expr.Walk in the teacher. Nodes with a specifically known
// shape (Block, If, loops, etc.) are descended explicitly; anything else
// falls back to genericWalk, which visits every exported field that is a
// Node or a slice of Nodes — the analogue of
// original_source/translator-old.py's generic_visit, which walked every
// non-underscore attribute of the node. Nested structs, and slices of
// non-Node elements, are not searched.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	w := v.Visit(n)
	if w == nil {
		return
	}
	switch t := n.(type) {
	case *Chunk:
		Walk(w, t.Body)
	case *Block:
		for _, s := range t.Stmts {
			Walk(w, s)
		}
	case *Function:
		Walk(w, t.Body)
	case *LocalFunction:
		Walk(w, t.Body)
	case *Assign:
		for _, e := range t.Targets {
			Walk(w, e)
		}
		for _, e := range t.Values {
			Walk(w, e)
		}
	case *LocalAssign:
		for _, e := range t.Values {
			Walk(w, e)
		}
	case *Return:
		for _, e := range t.Values {
			Walk(w, e)
		}
	case *Do:
		Walk(w, t.Body)
	case *If:
		for _, c := range t.Clauses {
			Walk(w, c.Cond)
			Walk(w, c.Body)
		}
		if t.Else != nil {
			Walk(w, t.Else)
		}
	case *While:
		Walk(w, t.Cond)
		Walk(w, t.Body)
	case *Repeat:
		Walk(w, t.Body)
		Walk(w, t.Cond)
	case *NumericFor:
		Walk(w, t.Start)
		Walk(w, t.Stop)
		if t.Step != nil {
			Walk(w, t.Step)
		}
		Walk(w, t.Body)
	case *GenericFor:
		for _, e := range t.Exprs {
			Walk(w, e)
		}
		Walk(w, t.Body)
	case *Call:
		Walk(w, t.Func)
		for _, e := range t.Args {
			Walk(w, e)
		}
	case *Invoke:
		Walk(w, t.Object)
		for _, e := range t.Args {
			Walk(w, e)
		}
	case *Index:
		Walk(w, t.Object)
	default:
		genericWalk(w, n)
	}
	w.Visit(nil)
}

// genericWalk is the fallback for node shapes the core does not
// specifically know about: it inspects exported fields via reflection
// and descends into anything assignable to Node or []Node.
func genericWalk(v Visitor, n Node) {
	rv := reflect.ValueOf(n)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}
	nodeType := reflect.TypeOf((*Node)(nil)).Elem()
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" { // unexported
			continue
		}
		fv := rv.Field(i)
		switch fv.Kind() {
		case reflect.Slice:
			for j := 0; j < fv.Len(); j++ {
				elem := fv.Index(j)
				if elem.Type().Implements(nodeType) {
					if child, ok := elem.Interface().(Node); ok {
						Walk(v, child)
					}
				}
			}
		default:
			if fv.Type().Implements(nodeType) {
				if child, ok := fv.Interface().(Node); ok {
					Walk(v, child)
				}
			}
		}
	}
}

// inspector adapts a func(Node) bool to a Visitor, the same shortcut
// Go's own ast package provides via ast.Inspect.
type inspector func(Node) bool

func (f inspector) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect traverses n like Walk, calling f for each node. Traversal of a
// node's children stops if f returns false.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}
