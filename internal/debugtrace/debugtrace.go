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

// Package debugtrace writes a textual, gzip-compressed preorder dump of
// every graph in a graph set. It stands in for the graphviz rendering
// original_source/utils/graph_util.py's render_visual_graph produced:
// this only lists node names, ids and edge kinds as text, it does not
// lay out or rasterize anything.
package debugtrace

import (
	"bufio"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/FactorioDojo/fsmc/ir"
)

// Write dumps every graph in gs to w as a gzip-compressed text stream,
// one line per node, indented by depth, annotated with id, display
// name, and (for a Link) its target graph and link identifier.
func Write(w io.Writer, gs *ir.GraphSet) error {
	gz := gzip.NewWriter(w)
	bw := bufio.NewWriter(gz)

	for i, g := range gs.Graphs() {
		fmt.Fprintf(bw, "graph %d (root=%s)\n", i, rootName(g))
		dump(bw, g.Root(), 0)
	}

	if err := bw.Flush(); err != nil {
		gz.Close()
		return fmt.Errorf("debugtrace: flushing text buffer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("debugtrace: closing gzip stream: %w", err)
	}
	return nil
}

func rootName(g *ir.Graph) string {
	if g.Root() == nil {
		return "<empty>"
	}
	return g.Root().Name()
}

func dump(w io.Writer, n ir.Node, depth int) {
	if n == nil {
		return
	}
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintf(w, "#%d %s", n.ID(), n.Name())
	if link, ok := n.(*ir.Link); ok {
		kind := "sync"
		if link.Async {
			kind = "async"
		}
		fmt.Fprintf(w, " -> %s link=%s (%s)", rootName(link.Target), link.LinkID, kind)
	}
	fmt.Fprintln(w)
	for _, c := range n.Children() {
		dump(w, c, depth+1)
	}
}
