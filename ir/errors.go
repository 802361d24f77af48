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
	"fmt"

	"github.com/FactorioDojo/fsmc/ast"
)

// Kind classifies a CompileError per spec.md §7.
type Kind int

const (
	// KindUnsupportedConstruct covers method definitions/invocations,
	// goto/label, local functions, multiple top-level functions, and
	// non-trivial Invoke targets.
	KindUnsupportedConstruct Kind = iota
	// KindRecursionDetected covers a cycle in the cross-graph Link forest.
	KindRecursionDetected
	// KindInternalInvariant covers a pass discovering a violation of a
	// documented invariant (compiler bug).
	KindInternalInvariant
	// KindMalformedInput covers a required syntax-tree field missing.
	KindMalformedInput
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedConstruct:
		return "UnsupportedConstruct"
	case KindRecursionDetected:
		return "RecursionDetected"
	case KindInternalInvariant:
		return "InternalInvariant"
	case KindMalformedInput:
		return "MalformedInput"
	default:
		return "UnknownError"
	}
}

// Sentinel errors for use with errors.Is, one per Kind, mirroring the
// teacher's plain errors.New/fmt.Errorf("%w", ...) style (plan/pir never
// reaches for a third-party error package).
var (
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	ErrRecursionDetected    = errors.New("recursion detected")
	ErrInternalInvariant    = errors.New("internal invariant violated")
	ErrMalformedInput       = errors.New("malformed input")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindUnsupportedConstruct:
		return ErrUnsupportedConstruct
	case KindRecursionDetected:
		return ErrRecursionDetected
	case KindInternalInvariant:
		return ErrInternalInvariant
	case KindMalformedInput:
		return ErrMalformedInput
	default:
		return ErrInternalInvariant
	}
}

// CompileError is an error associated with compiling a particular syntax
// node, modeled directly on plan/pir.CompileError.
type CompileError struct {
	Kind Kind
	In   ast.Node
	Msg  string
}

// Error implements error.
func (c *CompileError) Error() string {
	if c.In == nil {
		return fmt.Sprintf("%s: %s", c.Kind, c.Msg)
	}
	return fmt.Sprintf("%s: %s (in %s)", c.Kind, c.Msg, c.In.Kind())
}

// Unwrap allows errors.Is(err, ir.ErrUnsupportedConstruct) etc.
func (c *CompileError) Unwrap() error {
	return sentinelFor(c.Kind)
}

// Errorf builds a CompileError of the given kind, the same shape as the
// teacher's package-level errorf helper in plan/pir/build.go.
func Errorf(kind Kind, in ast.Node, format string, args ...interface{}) error {
	return &CompileError{Kind: kind, In: in, Msg: fmt.Sprintf(format, args...)}
}
