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

package emit

import (
	"strings"
	"testing"

	"github.com/FactorioDojo/fsmc/ast"
	"github.com/FactorioDojo/fsmc/ir"
	"github.com/FactorioDojo/fsmc/lower"
	"github.com/FactorioDojo/fsmc/passes"
)

func chunkOf(fn *ast.Function) *ast.Chunk {
	return &ast.Chunk{Body: &ast.Block{Stmts: []ast.Node{fn}}}
}

func call(name string) *ast.Call { return &ast.Call{Func: &ast.Name{Value: name}} }

func await(inner ast.Node) *ast.Call {
	return &ast.Call{Func: &ast.Name{Value: "await"}, Args: []ast.Node{inner}}
}

func pipeline(t *testing.T, fn *ast.Function) *ir.GraphSet {
	t.Helper()
	gs := ir.NewGraphSet(1)
	g, err := lower.Lower(chunkOf(fn), gs, "await")
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if err := lower.Expand(g, "await"); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if err := passes.Linearize(gs); err != nil {
		t.Fatalf("linearize: %v", err)
	}
	if err := passes.SplitAsync(gs); err != nil {
		t.Fatalf("split async: %v", err)
	}
	if err := passes.CheckAcyclic(gs); err != nil {
		t.Fatalf("check acyclic: %v", err)
	}
	if err := passes.InsertEventPointers(gs); err != nil {
		t.Fatalf("insert event pointers: %v", err)
	}
	return gs
}

// findFunc returns the emitted top-level function with the given name.
func findFunc(t *testing.T, chunk *ast.Chunk, name string) *ast.Function {
	t.Helper()
	for _, s := range chunk.Body.Stmts {
		if fn, ok := s.(*ast.Function); ok && fn.Name == name {
			return fn
		}
	}
	return nil
}

// isEventPtrEntry reports whether n is an entry of the default
// event-pointer table keyed by a minted link id:
// global.event_ptrs.<link id>.
func isEventPtrEntry(n ast.Node) bool {
	idx, ok := n.(*ast.Index)
	if !ok || !strings.HasPrefix(idx.Field, "link_") {
		return false
	}
	tbl, ok := idx.Object.(*ast.Index)
	if !ok || tbl.Field != "event_ptrs" {
		return false
	}
	base, ok := tbl.Object.(*ast.Name)
	return ok && base.Value == "global"
}

func TestEmitStraightLineAwaitProducesTwoFunctions(t *testing.T) {
	fn := &ast.Function{Name: "f", Body: &ast.Block{Stmts: []ast.Node{
		call("bar"), await(call("foo")), call("bar"),
	}}}
	gs := pipeline(t, fn)

	chunk, err := Emit(gs, DefaultConfig())
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	entry := findFunc(t, chunk, "f")
	if entry == nil {
		t.Fatalf("expected a top-level function named %q", "f")
	}

	var sawAssign bool
	for _, s := range chunk.Body.Stmts {
		if as, ok := s.(*ast.Assign); ok {
			sawAssign = true
			if !isEventPtrEntry(as.Targets[0]) {
				t.Fatalf("expected event pointer table initialization target, got %#v", as.Targets[0])
			}
		}
	}
	if !sawAssign {
		t.Fatalf("expected an event-pointer table initialization statement")
	}

	var funcCount int
	for _, s := range chunk.Body.Stmts {
		if _, ok := s.(*ast.Function); ok {
			funcCount++
		}
	}
	if funcCount != 2 {
		t.Fatalf("expected 2 emitted functions, got %d", funcCount)
	}
}

// TestEmitEntryBodyWritesEventPointerBeforeSuspending guards against a
// SetEventPointer node reaching emitPassThrough's unhandled case: the
// entry function's own body must carry a locality table write naming
// the continuation, immediately before the statement that kicks off
// the suspended call (spec.md §4.8's "redundant with the
// initialization table" bullet).
func TestEmitEntryBodyWritesEventPointerBeforeSuspending(t *testing.T) {
	fn := &ast.Function{Name: "f", Body: &ast.Block{Stmts: []ast.Node{
		call("bar"), await(call("foo")),
	}}}
	gs := pipeline(t, fn)

	chunk, err := Emit(gs, DefaultConfig())
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	entry := findFunc(t, chunk, "f")
	if entry == nil {
		t.Fatalf("missing entry function")
	}

	var assignIdx = -1
	for i, s := range entry.Body.Stmts {
		as, ok := s.(*ast.Assign)
		if !ok {
			continue
		}
		if !isEventPtrEntry(as.Targets[0]) {
			continue
		}
		assignIdx = i
		if len(as.Values) != 1 {
			t.Fatalf("expected a single continuation name value, got %#v", as.Values)
		}
		if _, ok := as.Values[0].(*ast.Name); !ok {
			t.Fatalf("expected the event pointer value to be a bare function name, got %#v", as.Values[0])
		}
	}
	if assignIdx < 0 {
		t.Fatalf("expected the entry function body to carry an event-pointer table write, got %#v", entry.Body.Stmts)
	}
	if assignIdx != len(entry.Body.Stmts)-2 {
		t.Fatalf("expected the event-pointer write immediately before the suspending call, got stmts %#v", entry.Body.Stmts)
	}
}

func TestEmitLocalIsRehomedToLocalsTable(t *testing.T) {
	fn := &ast.Function{Name: "f", Body: &ast.Block{Stmts: []ast.Node{
		&ast.LocalAssign{Names: []string{"v"}, Values: []ast.Node{call("bar")}},
		call("baz"),
	}}}
	gs := ir.NewGraphSet(1)
	g, err := lower.Lower(chunkOf(fn), gs, "await")
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if err := lower.Expand(g, "await"); err != nil {
		t.Fatalf("expand: %v", err)
	}

	chunk, err := Emit(gs, DefaultConfig())
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	entry := findFunc(t, chunk, "f")
	if entry == nil {
		t.Fatalf("missing entry function")
	}
	assign, ok := entry.Body.Stmts[0].(*ast.Assign)
	if !ok {
		t.Fatalf("expected the local assign to survive as an Assign, got %T", entry.Body.Stmts[0])
	}
	idx, ok := assign.Targets[0].(*ast.Index)
	if !ok {
		t.Fatalf("expected the target to be rehomed through an Index, got %T", assign.Targets[0])
	}
	if idx.Field != "v" {
		t.Fatalf("expected field %q, got %q", "v", idx.Field)
	}
	outer, ok := idx.Object.(*ast.Index)
	if !ok || outer.Field != "locals" {
		t.Fatalf("expected the locals table reference, got %#v", idx.Object)
	}
}

func TestEmitBranchWithAwaitInOneArmProducesThreeFunctions(t *testing.T) {
	fn := &ast.Function{Name: "f", Body: &ast.Block{Stmts: []ast.Node{
		&ast.If{Clauses: []ast.IfClause{{
			Cond: &ast.Name{Value: "c"},
			Body: &ast.Block{Stmts: []ast.Node{await(call("foo"))}},
		}}, Else: &ast.Block{Stmts: []ast.Node{call("bar")}}},
		call("bar"),
	}}}
	gs := pipeline(t, fn)

	chunk, err := Emit(gs, DefaultConfig())
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	entry := findFunc(t, chunk, "f")
	if entry == nil {
		t.Fatalf("missing entry function")
	}
	var ifStmt *ast.If
	for _, s := range entry.Body.Stmts {
		if iff, ok := s.(*ast.If); ok {
			ifStmt = iff
		}
	}
	if ifStmt == nil {
		t.Fatalf("expected the entry function to retain its if statement")
	}
	if ifStmt.Else == nil {
		t.Fatalf("expected the else arm to survive emission")
	}

	var funcCount int
	for _, s := range chunk.Body.Stmts {
		if _, ok := s.(*ast.Function); ok {
			funcCount++
		}
	}
	if funcCount != 3 {
		t.Fatalf("expected 3 emitted functions, got %d", funcCount)
	}
}

func TestEmitRejectsGoto(t *testing.T) {
	fn := &ast.Function{Name: "f", Body: &ast.Block{Stmts: []ast.Node{
		&ast.Label{Name: "top"},
		&ast.Goto{Name: "top"},
	}}}
	gs := ir.NewGraphSet(1)
	g, err := lower.Lower(chunkOf(fn), gs, "await")
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if err := lower.Expand(g, "await"); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if _, err := Emit(gs, DefaultConfig()); err == nil {
		t.Fatalf("expected emission to reject goto/label")
	}
}

func TestTableRefBuildsNestedDottedIndex(t *testing.T) {
	n := tableRef("global.event_ptrs")
	idx, ok := n.(*ast.Index)
	if !ok || idx.Field != "event_ptrs" {
		t.Fatalf("expected outer field %q, got %#v", "event_ptrs", n)
	}
	name, ok := idx.Object.(*ast.Name)
	if !ok || name.Value != "global" {
		t.Fatalf("expected base name %q, got %#v", "global", idx.Object)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte("seed: 7\ndebugTrace: true\n"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Seed != 7 || !cfg.DebugTrace {
		t.Fatalf("expected overridden seed/debugTrace, got %+v", cfg)
	}
	if cfg.TableName != DefaultConfig().TableName {
		t.Fatalf("expected untouched fields to keep their default, got %q", cfg.TableName)
	}
	if !strings.Contains(DefaultConfig().LocalsTableName, "locals") {
		t.Fatalf("sanity check on default locals table name failed")
	}
}
