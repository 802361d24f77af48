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

// Package emit implements pass 6 of the fsmc pipeline (spec.md §4.8):
// turning a finished IR graph set back into a surface-language Chunk,
// one function per graph plus the event-pointer table initialization.
package emit

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// Config configures emission. It is loaded from YAML the same way the
// teacher's own CLI configs are (sigs.k8s.io/yaml round-trips through
// JSON tags so the same struct also marshals cleanly to JSON for
// debugging).
type Config struct {
	// TableName is the dotted global reference to the event-pointer
	// table, e.g. "global.event_ptrs" (spec.md §4.7).
	TableName string `json:"tableName"`
	// LocalsTableName is the dotted global reference under which every
	// variable that was `local` in the source is rehomed (spec.md §9).
	LocalsTableName string `json:"localsTableName"`
	// AwaitName is the identifier recognized as the await marker
	// (spec.md §4.1's "await(...)" convention).
	AwaitName string `json:"awaitName"`
	// Seed drives the identifier mint (spec.md §4.1, §8 "Determinism").
	Seed int64 `json:"seed"`
	// DebugTrace is a debug-dump toggle carried in the config. cmd/fsmc
	// does not read it: the driver writes the compressed textual trace
	// of the final graph set (internal/debugtrace) only when its
	// -debug-trace flag names an output path.
	DebugTrace bool `json:"debugTrace"`
}

// DefaultConfig returns the configuration used when no YAML file is
// supplied.
func DefaultConfig() Config {
	return Config{
		TableName:       "global.event_ptrs",
		LocalsTableName: "global.locals",
		AwaitName:       "await",
		Seed:            0,
		DebugTrace:      false,
	}
}

// LoadConfig parses a YAML document into a Config, starting from
// DefaultConfig so a partial document only overrides the fields it
// mentions.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("emit: parsing config: %w", err)
	}
	return cfg, nil
}
