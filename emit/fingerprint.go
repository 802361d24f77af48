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
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/FactorioDojo/fsmc/ast"
)

// Fingerprint stamps a deterministic build-identity hash over an
// emitted Chunk: the same program compiled with the same seed always
// fingerprints identically (spec.md §8 "Determinism"), and any change
// to the emitted event-pointer table or function bodies changes it.
// encoding/json sorts object keys, so MarshalChunk's output is already
// canonical byte-for-byte.
func Fingerprint(chunk *ast.Chunk) (string, error) {
	data, err := ast.MarshalChunk(chunk)
	if err != nil {
		return "", fmt.Errorf("emit: fingerprinting: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
