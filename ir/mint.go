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
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/dchest/siphash"
	"github.com/google/uuid"
)

// functionDomain and linkDomain domain-separate the single compilation
// seed into two independent sub-seeds, one per name class, the same way
// the teacher reaches for siphash to derive deterministic partition keys
// rather than for cryptographic hashing (plan/input.go, splitter.go).
const (
	functionDomain = "fsmc-function-name-v1"
	linkDomain     = "fsmc-link-name-v1"
)

// siphash keys are fixed and public: determinism, not secrecy, is the
// property the mint needs.
const (
	sipK0 = 0x6673_6d63_6b30_6b30
	sipK1 = 0x6673_6d63_6b31_6b31
)

// Mint is the deterministic, collision-checked source of function and
// link names described in spec.md §4.1. It produces two disjoint name
// classes from a single seed: calling it twice with the same seed and
// the same call sequence always yields the same names (spec.md §8
// property 8, "Determinism").
type Mint struct {
	functionRand *rand.Rand
	linkRand     *rand.Rand

	functionNames map[string]struct{}
	linkNames     map[string]struct{}
}

// NewMint builds a mint for a single compilation. The two name classes
// are seeded from independent sub-seeds of seed so that, even though
// both ultimately derive from one user-supplied number, their output
// sequences never accidentally interleave into the same pseudo-random
// stream.
func NewMint(seed int64) *Mint {
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], uint64(seed))

	functionSeed := siphash.Hash(sipK0, sipK1, append(seedBytes[:], functionDomain...))
	linkSeed := siphash.Hash(sipK0, sipK1, append(seedBytes[:], linkDomain...))

	return &Mint{
		functionRand:  rand.New(rand.NewSource(int64(functionSeed))),
		linkRand:      rand.New(rand.NewSource(int64(linkSeed))),
		functionNames: make(map[string]struct{}),
		linkNames:     make(map[string]struct{}),
	}
}

// FreshFunctionName returns a function name that has never previously
// been returned by this mint, in either class.
func (m *Mint) FreshFunctionName() string {
	return m.fresh("func_", m.functionRand, m.functionNames)
}

// FreshLinkName returns a link name that has never previously been
// returned by this mint, in either class.
func (m *Mint) FreshLinkName() string {
	return m.fresh("link_", m.linkRand, m.linkNames)
}

// fresh draws UUIDs from src (a seeded, deterministic io.Reader —
// *rand.Rand implements Read) until it finds one that clashes with
// neither name class, the Go equivalent of
// original_source/utils/random_util.py's generate_function_name, which
// loops on uuid.UUID(int=rnd.getrandbits(128), version=4) until the
// result is absent from its seen-names list. Collision detection is
// mandatory per spec.md §4.1.
func (m *Mint) fresh(prefix string, src *rand.Rand, used map[string]struct{}) string {
	for {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			// *rand.Rand.Read never returns an error; this would
			// indicate a broken mint implementation.
			panic(fmt.Sprintf("ir: mint: unexpected read error: %v", err))
		}
		name := prefix + id.String()
		if _, clash := m.functionNames[name]; clash {
			continue
		}
		if _, clash := m.linkNames[name]; clash {
			continue
		}
		used[name] = struct{}{}
		return name
	}
}
