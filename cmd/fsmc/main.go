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

// Command fsmc reads a JSON-serialized syntax tree (the output of an
// out-of-scope surface-language parser), runs it through the
// continuation-passing compiler, and writes the emitted tree back out
// as JSON (the input to an out-of-scope unparser).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/FactorioDojo/fsmc/ast"
	"github.com/FactorioDojo/fsmc/emit"
	"github.com/FactorioDojo/fsmc/internal/debugtrace"
	"github.com/FactorioDojo/fsmc/ir"
	"github.com/FactorioDojo/fsmc/lower"
	"github.com/FactorioDojo/fsmc/passes"
)

var (
	dasho          string
	dashconfig     string
	dashseed       int64
	dashdebugtrace string
	dashv          bool
)

func init() {
	flag.StringVar(&dasho, "o", "-", "output file (or - for stdout) for the emitted syntax tree")
	flag.StringVar(&dashconfig, "config", "", "YAML emission config (default: emit.DefaultConfig())")
	flag.Int64Var(&dashseed, "seed", 0, "identifier mint seed (overrides the config file's seed)")
	flag.StringVar(&dashdebugtrace, "debug-trace", "", "if set, write a gzip-compressed preorder dump of every graph in the final graph set to this path")
	flag.BoolVar(&dashv, "v", false, "verbose")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

func loadConfig() emit.Config {
	if dashconfig == "" {
		cfg := emit.DefaultConfig()
		cfg.Seed = dashseed
		return cfg
	}
	data, err := os.ReadFile(dashconfig)
	if err != nil {
		exitf("reading config %s: %s\n", dashconfig, err)
	}
	cfg, err := emit.LoadConfig(data)
	if err != nil {
		exitf("%s\n", err)
	}
	if flagSet("seed") {
		cfg.Seed = dashseed
	}
	return cfg
}

func flagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func compile(chunk *ast.Chunk, cfg emit.Config) (*ast.Chunk, *ir.GraphSet, error) {
	gs := ir.NewGraphSet(cfg.Seed)
	g, err := lower.Lower(chunk, gs, cfg.AwaitName)
	if err != nil {
		return nil, nil, fmt.Errorf("lowering: %w", err)
	}
	if err := lower.Expand(g, cfg.AwaitName); err != nil {
		return nil, nil, fmt.Errorf("expanding: %w", err)
	}
	if err := passes.Linearize(gs); err != nil {
		return nil, nil, fmt.Errorf("linearizing branches: %w", err)
	}
	if err := passes.SplitAsync(gs); err != nil {
		return nil, nil, fmt.Errorf("splitting async calls: %w", err)
	}
	if err := passes.CheckAcyclic(gs); err != nil {
		return nil, nil, fmt.Errorf("checking for recursion: %w", err)
	}
	if err := passes.InsertEventPointers(gs); err != nil {
		return nil, nil, fmt.Errorf("inserting event pointers: %w", err)
	}
	out, err := emit.Emit(gs, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("emitting: %w", err)
	}
	return out, gs, nil
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <input.json>\n", os.Args[0])
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitf("reading input: %s\n", err)
	}
	chunk, err := ast.UnmarshalChunk(data)
	if err != nil {
		exitf("parsing input: %s\n", err)
	}

	cfg := loadConfig()
	out, gs, err := compile(chunk, cfg)
	if err != nil {
		exitf("%s\n", err)
	}

	if dashdebugtrace != "" {
		f, err := os.Create(dashdebugtrace)
		if err != nil {
			exitf("creating debug trace: %s\n", err)
		}
		defer f.Close()
		if err := debugtrace.Write(f, gs); err != nil {
			exitf("writing debug trace: %s\n", err)
		}
	}

	outData, err := ast.MarshalChunk(out)
	if err != nil {
		exitf("serializing output: %s\n", err)
	}

	var w *os.File
	if dasho == "-" {
		w = os.Stdout
	} else {
		w, err = os.Create(dasho)
		if err != nil {
			exitf("creating output: %s\n", err)
		}
		defer w.Close()
	}
	if _, err := w.Write(outData); err != nil {
		exitf("writing output: %s\n", err)
	}

	if dashv {
		fp, err := emit.Fingerprint(out)
		if err != nil {
			exitf("%s\n", err)
		}
		banner := fmt.Sprintf("compiled %d graph(s) from %s, fingerprint %s, locals %v",
			len(gs.Graphs()), args[0], fp, emit.LocalNames(gs))
		if isTerminal(os.Stderr.Fd()) {
			logf("fsmc: %s", banner)
		} else {
			logf("%s", banner)
		}
	}
}
