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

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/FactorioDojo/fsmc/ast"
	"github.com/FactorioDojo/fsmc/ir"
)

// Emit turns gs into a single surface-language Chunk: the event-pointer
// table initialization followed by one top-level function per graph in
// gs, in creation order (spec.md §4.8). Determinism (spec.md §8
// property 8) follows from gs.Graphs() being in deterministic creation
// order and from every pass upstream visiting nodes in a fixed order.
func Emit(gs *ir.GraphSet, cfg Config) (*ast.Chunk, error) {
	locals := collectLocals(gs)
	rw := &localRewriter{locals: locals, cfg: cfg}

	links, err := collectAsyncLinks(gs)
	if err != nil {
		return nil, err
	}

	stmts := make([]ast.Node, 0, len(links)+len(gs.Graphs()))
	stmts = append(stmts, initStmts(links, rw)...)

	e := &emitter{cfg: cfg, rw: rw}
	for _, g := range gs.Graphs() {
		fn, err := e.emitGraph(g)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, fn)
	}
	return &ast.Chunk{Body: &ast.Block{Stmts: stmts}}, nil
}

// collectLocals gathers every name ever bound by a LocalAssign or
// AsyncAssign, across every graph in the set (spec.md §9: "Name
// resolution must therefore run before emission, over the whole graph
// set, not per-graph").
func collectLocals(gs *ir.GraphSet) map[string]bool {
	locals := make(map[string]bool)
	for _, g := range gs.Graphs() {
		for _, n := range g.Preorder(g.Root()) {
			switch t := n.(type) {
			case *ir.LocalAssign:
				if la, ok := t.Syntax().(*ast.LocalAssign); ok {
					for _, name := range la.Names {
						locals[name] = true
					}
				}
			case *ir.AsyncAssign:
				for _, name := range t.Targets {
					locals[name] = true
				}
			}
		}
	}
	return locals
}

// LocalNames returns every name ever rehomed into the locals table by
// Emit, sorted for stable display (e.g. in cmd/fsmc's verbose banner).
// Map iteration order is randomized per process, so the sort is load
// bearing, not cosmetic.
func LocalNames(gs *ir.GraphSet) []string {
	names := maps.Keys(collectLocals(gs))
	slices.Sort(names)
	return names
}

// collectAsyncLinks returns every asynchronous Link in the graph set,
// sorted by link identifier for deterministic initialization order.
func collectAsyncLinks(gs *ir.GraphSet) ([]*ir.Link, error) {
	var out []*ir.Link
	for _, g := range gs.Graphs() {
		for _, n := range g.Preorder(g.Root()) {
			if link, ok := n.(*ir.Link); ok && link.Async {
				if link.Target == nil || link.Target.Root() == nil {
					return nil, ir.Errorf(ir.KindInternalInvariant, nil, "async link %q has no target graph", link.LinkID)
				}
				out = append(out, link)
			}
		}
	}
	slices.SortFunc(out, func(a, b *ir.Link) bool { return a.LinkID < b.LinkID })
	return out, nil
}

// initStmts builds the event-pointer table's initialization
// assignments: T[linkID] = <continuation function name>, one per
// asynchronous link (spec.md §4.7).
func initStmts(links []*ir.Link, rw *localRewriter) []ast.Node {
	out := make([]ast.Node, 0, len(links))
	for _, link := range links {
		out = append(out, &ast.Assign{
			Targets: []ast.Node{&ast.Index{Object: tableRef(rw.cfg.TableName), Field: link.LinkID}},
			Values:  []ast.Node{&ast.Name{Value: graphFuncName(link.Target)}},
		})
	}
	return out
}

// tableRef builds a nested dotted ast.Index chain out of a
// "global.event_ptrs"-shaped configuration string.
func tableRef(dotted string) ast.Node {
	segs := strings.Split(dotted, ".")
	var n ast.Node = &ast.Name{Value: segs[0]}
	for _, seg := range segs[1:] {
		n = &ast.Index{Object: n, Field: seg}
	}
	return n
}

// graphFuncName returns the name under which g's function is emitted:
// the original source name for the entry graph, the minted stub name
// for every continuation graph.
func graphFuncName(g *ir.Graph) string {
	switch root := g.Root().(type) {
	case *ir.Function:
		if fn, ok := root.Syntax().(*ast.Function); ok {
			return fn.Name
		}
		return root.Name()
	case *ir.FunctionStub:
		return root.FuncName
	default:
		return g.Root().Name()
	}
}

type emitter struct {
	cfg Config
	rw  *localRewriter
}

func (e *emitter) rewrite(n ast.Node) ast.Node {
	if n == nil {
		return nil
	}
	return ast.Rewrite(e.rw, n)
}

func (e *emitter) rewriteList(in []ast.Node) []ast.Node {
	out := make([]ast.Node, len(in))
	for i, n := range in {
		out[i] = e.rewrite(n)
	}
	return out
}

// emitGraph produces the top-level function declaration for g.
func (e *emitter) emitGraph(g *ir.Graph) (*ast.Function, error) {
	body, err := e.emitChain(g.Root())
	if err != nil {
		return nil, err
	}
	return &ast.Function{Name: graphFuncName(g), Body: &ast.Block{Stmts: body}}, nil
}

// emitChain walks the sequential chain starting at n, following the
// single "next statement" child of every regular node, and terminating
// at a Branch or a Link: linearization has already moved whatever
// followed a Branch into a continuation graph, and a Link is always a
// leaf. A loop node or a Do emits its own body and then continues with
// its next sibling, which is where lowering placed the statements that
// followed it in the source. A SetEventPointer is not terminal either:
// it emits its table write and falls through to its sole child, the
// async node it precedes.
func (e *emitter) emitChain(n ir.Node) ([]ast.Node, error) {
	var out []ast.Node
	for n != nil {
		switch t := n.(type) {
		case *ir.Branch:
			stmt, err := e.emitBranch(t)
			if err != nil {
				return nil, err
			}
			out = append(out, stmt)
			return out, nil
		case *ir.While, *ir.Repeat, *ir.ForNum, *ir.ForIn:
			stmt, err := e.emitLoop(n)
			if err != nil {
				return nil, err
			}
			out = append(out, stmt)
			n = nextSibling(n)
		case *ir.Do:
			body, err := e.emitChain(firstChild(t))
			if err != nil {
				return nil, err
			}
			out = append(out, &ast.Do{Body: &ast.Block{Stmts: body}})
			n = nextSibling(n)
		case *ir.Link:
			if !t.Async {
				out = append(out, &ast.Call{Func: &ast.Name{Value: graphFuncName(t.Target)}})
			}
			return out, nil
		case *ir.SetEventPointer:
			next := firstChild(n)
			name, err := e.continuationName(t, next)
			if err != nil {
				return nil, err
			}
			out = append(out, &ast.Assign{
				Targets: []ast.Node{&ast.Index{Object: tableRef(e.cfg.TableName), Field: t.LinkID}},
				Values:  []ast.Node{&ast.Name{Value: name}},
			})
			n = next
		case *ir.Goto, *ir.Label:
			return nil, ir.Errorf(ir.KindUnsupportedConstruct, n.Syntax(), "goto/label has no executable target")
		default:
			stmt, err := e.emitPassThrough(n)
			if err != nil {
				return nil, err
			}
			if stmt != nil {
				out = append(out, stmt)
			}
			n = firstChild(n)
		}
	}
	return out, nil
}

func firstChild(n ir.Node) ir.Node {
	if n == nil || len(n.Children()) == 0 {
		return nil
	}
	return n.Children()[0]
}

// nextSibling returns the child of n's parent that follows n, or nil.
func nextSibling(n ir.Node) ir.Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	sibs := p.Children()
	if i := slices.Index(sibs, n); i >= 0 && i+1 < len(sibs) {
		return sibs[i+1]
	}
	return nil
}

// emitBranch reconstructs an if/elseif/else chain from a Branch's
// generated Block of Conditional/ElseStub arms (spec.md §4.8).
func (e *emitter) emitBranch(b *ir.Branch) (ast.Node, error) {
	if len(b.Children()) != 1 {
		return nil, ir.Errorf(ir.KindInternalInvariant, b.Syntax(), "branch should have exactly one Block child at emit time")
	}
	block, ok := b.Children()[0].(*ir.Block)
	if !ok {
		return nil, ir.Errorf(ir.KindInternalInvariant, b.Syntax(), "branch's sole child is not a Block")
	}

	var clauses []ast.IfClause
	var elseBody *ast.Block
	for _, arm := range block.Children() {
		switch a := arm.(type) {
		case *ir.Conditional:
			body, err := e.emitChain(firstChild(a))
			if err != nil {
				return nil, err
			}
			if a.Else {
				elseBody = &ast.Block{Stmts: body}
				continue
			}
			clauses = append(clauses, ast.IfClause{Cond: e.rewrite(a.Syntax()), Body: &ast.Block{Stmts: body}})
		case *ir.ElseStub:
			body, err := e.emitChain(firstChild(a))
			if err != nil {
				return nil, err
			}
			elseBody = &ast.Block{Stmts: body}
		default:
			return nil, ir.Errorf(ir.KindInternalInvariant, b.Syntax(), "unexpected branch arm %T", a)
		}
	}
	return &ast.If{Clauses: clauses, Else: elseBody}, nil
}

// emitLoop reconstructs a loop statement from its retained syntax and
// its generated Block body (spec.md §4.8).
func (e *emitter) emitLoop(n ir.Node) (ast.Node, error) {
	if len(n.Children()) != 1 {
		return nil, ir.Errorf(ir.KindInternalInvariant, n.Syntax(), "loop should have exactly one Block child at emit time")
	}
	block, ok := n.Children()[0].(*ir.Block)
	if !ok {
		return nil, ir.Errorf(ir.KindInternalInvariant, n.Syntax(), "loop's sole child is not a Block")
	}
	body, err := e.emitChain(firstChild(block))
	if err != nil {
		return nil, err
	}
	astBody := &ast.Block{Stmts: body}

	switch t := n.Syntax().(type) {
	case *ast.While:
		return &ast.While{Cond: e.rewrite(t.Cond), Body: astBody}, nil
	case *ast.Repeat:
		return &ast.Repeat{Body: astBody, Cond: e.rewrite(t.Cond)}, nil
	case *ast.NumericFor:
		return &ast.NumericFor{
			Var: t.Var, Start: e.rewrite(t.Start), Stop: e.rewrite(t.Stop), Step: e.rewrite(t.Step), Body: astBody,
		}, nil
	case *ast.GenericFor:
		return &ast.GenericFor{Names: t.Names, Exprs: e.rewriteList(t.Exprs), Body: astBody}, nil
	default:
		return nil, ir.Errorf(ir.KindInternalInvariant, n.Syntax(), "unrecognized loop syntax %T", t)
	}
}

// emitPassThrough emits the single statement a regular or async node
// corresponds to, or nil for the nodes (Function, FunctionStub) that
// correspond to no statement of their own. A SetEventPointer reaching
// it is an InternalInvariant error, since emitChain handles that kind.
func (e *emitter) emitPassThrough(n ir.Node) (ast.Node, error) {
	switch t := n.(type) {
	case *ir.Function, *ir.FunctionStub:
		return nil, nil

	case *ir.LocalAssign:
		la, ok := t.Syntax().(*ast.LocalAssign)
		if !ok {
			return nil, ir.Errorf(ir.KindInternalInvariant, t.Syntax(), "local assign node missing its syntax")
		}
		targets := make([]ast.Node, len(la.Names))
		for i, name := range la.Names {
			targets[i] = e.localRef(name)
		}
		return &ast.Assign{Targets: targets, Values: e.rewriteList(la.Values)}, nil

	case *ir.GlobalAssign:
		as, ok := t.Syntax().(*ast.Assign)
		if !ok {
			return nil, ir.Errorf(ir.KindInternalInvariant, t.Syntax(), "global assign node missing its syntax")
		}
		return &ast.Assign{Targets: e.rewriteList(as.Targets), Values: e.rewriteList(as.Values)}, nil

	case *ir.Semicolon:
		return ast.SemiColon{}, nil

	case *ir.Call:
		return e.rewrite(t.Syntax()), nil

	case *ir.Break:
		return ast.Break{}, nil

	case *ir.Return:
		ret, ok := t.Syntax().(*ast.Return)
		if !ok {
			return &ast.Return{}, nil
		}
		return &ast.Return{Values: e.rewriteList(ret.Values)}, nil

	case *ir.AsyncCall:
		return e.rewrite(t.Payload), nil

	case *ir.AsyncAssign:
		targets := make([]ast.Node, len(t.Targets))
		for i, name := range t.Targets {
			targets[i] = e.localRef(name)
		}
		// The host places the resolved value at these targets before
		// invoking the continuation (spec.md §9 leaves value-passing on
		// return/assignment across a split unspecified); fsmc only
		// emits the call that kicks off the async operation.
		_ = targets
		return e.rewrite(t.Payload), nil

	case *ir.SetEventPointer:
		return nil, ir.Errorf(ir.KindInternalInvariant, nil, "SetEventPointer must be handled by emitChain, not emitPassThrough")

	default:
		return nil, ir.Errorf(ir.KindUnsupportedConstruct, n.Syntax(), "no emission rule for %T", n)
	}
}

func (e *emitter) localRef(name string) ast.Node {
	return &ast.Index{Object: tableRef(e.cfg.LocalsTableName), Field: name}
}

// continuationName resolves the function name a SetEventPointer's
// table write should point at: the target graph of the asynchronous
// Link it was inserted before (spec.md §4.7's "Event-pointer
// precedence" invariant guarantees async is that Link's direct
// parent).
func (e *emitter) continuationName(sep *ir.SetEventPointer, async ir.Node) (string, error) {
	if async != nil {
		for _, c := range async.Children() {
			if link, ok := c.(*ir.Link); ok && link.Async && link.LinkID == sep.LinkID {
				return graphFuncName(link.Target), nil
			}
		}
	}
	return "", ir.Errorf(ir.KindInternalInvariant, sep.Syntax(),
		"no matching asynchronous link for event pointer %q", sep.LinkID)
}

// localRewriter substitutes every Name reference bound as a local
// (spec.md §9) with its global.locals.<name> rehoming.
type localRewriter struct {
	locals map[string]bool
	cfg    Config
}

func (lr *localRewriter) Walk(ast.Node) ast.Rewriter { return lr }

func (lr *localRewriter) Rewrite(n ast.Node) ast.Node {
	name, ok := n.(*ast.Name)
	if !ok || !lr.locals[name.Value] {
		return n
	}
	return &ast.Index{Object: tableRef(lr.cfg.LocalsTableName), Field: name.Value}
}
