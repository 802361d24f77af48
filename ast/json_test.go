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

import "testing"

func TestMarshalUnmarshalChunkRoundTrips(t *testing.T) {
	chunk := &Chunk{Body: &Block{Stmts: []Node{
		&Function{Name: "f", Body: &Block{Stmts: []Node{
			&LocalAssign{Names: []string{"v"}, Values: []Node{Number{Value: 1}}},
			&If{
				Clauses: []IfClause{{
					Cond: &Name{Value: "v"},
					Body: &Block{Stmts: []Node{&Call{Func: &Name{Value: "foo"}, Args: []Node{&Name{Value: "v"}}}}},
				}},
				Else: &Block{Stmts: []Node{Break{}}},
			},
			&Return{Values: []Node{String{Value: "done"}, Bool{Value: true}}},
		}}},
	}}}

	data, err := MarshalChunk(chunk)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalChunk(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	fn, ok := got.Body.Stmts[0].(*Function)
	if !ok || fn.Name != "f" {
		t.Fatalf("expected function %q to survive the round trip, got %#v", "f", got.Body.Stmts[0])
	}
	la, ok := fn.Body.Stmts[0].(*LocalAssign)
	if !ok || len(la.Names) != 1 || la.Names[0] != "v" {
		t.Fatalf("expected local assign to survive, got %#v", fn.Body.Stmts[0])
	}
	ifs, ok := fn.Body.Stmts[1].(*If)
	if !ok || len(ifs.Clauses) != 1 || ifs.Else == nil {
		t.Fatalf("expected if/else to survive, got %#v", fn.Body.Stmts[1])
	}
	if _, ok := ifs.Else.Stmts[0].(Break); !ok {
		t.Fatalf("expected the else arm's break to survive, got %#v", ifs.Else.Stmts[0])
	}
	ret, ok := fn.Body.Stmts[2].(*Return)
	if !ok || len(ret.Values) != 2 {
		t.Fatalf("expected return with two values to survive, got %#v", fn.Body.Stmts[2])
	}
}

func TestUnmarshalChunkRejectsUnknownKind(t *testing.T) {
	_, err := UnmarshalChunk([]byte(`{"kind":"NotARealKind"}`))
	if err == nil {
		t.Fatalf("expected an error for an unrecognized node kind")
	}
}
