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

import (
	"errors"
	"testing"
)

func TestCloneResetsLinkageButKeepsPayload(t *testing.T) {
	gs := NewGraphSet(1)
	g := gs.NewGraph()
	root := NewFunction(nil)
	g.AddNode(root)

	orig := NewAsyncAssign(nil, []string{"v"}, nil)
	g.AddNode(orig)

	cp := orig.clone().(*AsyncAssign)
	if cp.ID() != 0 {
		t.Fatalf("clone should start with a zero id before assignment, got %d", cp.ID())
	}
	if cp.Graph() != nil {
		t.Fatalf("clone should start detached from any graph")
	}
	if cp.Parent() != nil {
		t.Fatalf("clone should start with no parent")
	}
	if len(cp.Children()) != 0 {
		t.Fatalf("clone should start with no children")
	}
	if cp.Targets[0] != "v" {
		t.Fatalf("clone should preserve payload fields")
	}
	cp.Targets[0] = "mutated"
	if orig.Targets[0] != "v" {
		t.Fatalf("clone's payload slice should not alias the original")
	}
}

func TestErrorKindUnwrap(t *testing.T) {
	err := Errorf(KindUnsupportedConstruct, nil, "goto is not supported")
	if got := err.(*CompileError).Kind.String(); got != "UnsupportedConstruct" {
		t.Fatalf("unexpected kind string: %q", got)
	}
	if !errors.Is(err, ErrUnsupportedConstruct) {
		t.Fatalf("expected the error to unwrap to ErrUnsupportedConstruct, got %v", err)
	}
}
