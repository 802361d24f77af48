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

package debugtrace

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/FactorioDojo/fsmc/ir"
)

func TestWriteProducesReadableGzipText(t *testing.T) {
	gs := ir.NewGraphSet(1)
	g := gs.NewGraph()
	root := ir.NewFunction(nil)
	g.AddNode(root)
	g.AddNode(ir.NewCall(nil))

	var buf bytes.Buffer
	if err := Write(&buf, gs); err != nil {
		t.Fatalf("write: %v", err)
	}

	zr, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer zr.Close()
	text, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("reading decompressed trace: %v", err)
	}

	if !strings.Contains(string(text), "graph 0") {
		t.Fatalf("expected a graph header line, got:\n%s", text)
	}
	if !strings.Contains(string(text), "Function") {
		t.Fatalf("expected the root Function node to appear, got:\n%s", text)
	}
	if !strings.Contains(string(text), "Call") {
		t.Fatalf("expected the Call node to appear, got:\n%s", text)
	}
}

func TestWriteAnnotatesLinkTargets(t *testing.T) {
	gs := ir.NewGraphSet(1)
	g := gs.NewGraph()
	root := ir.NewFunction(nil)
	g.AddNode(root)
	cg := gs.NewContinuationGraph()
	g.AddNode(ir.NewLink(cg, true, "link_x"))

	var buf bytes.Buffer
	if err := Write(&buf, gs); err != nil {
		t.Fatalf("write: %v", err)
	}
	zr, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer zr.Close()
	text, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("reading decompressed trace: %v", err)
	}
	if !strings.Contains(string(text), "link_x") {
		t.Fatalf("expected the link id to appear, got:\n%s", text)
	}
	if !strings.Contains(string(text), "(async)") {
		t.Fatalf("expected the async annotation, got:\n%s", text)
	}
}
