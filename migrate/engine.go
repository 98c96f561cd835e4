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

package migrate

import (
	"context"
	"fmt"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/record"
	"github.com/archivian/historian/typereg"
	"github.com/google/uuid"
)

// Migratable is implemented by a TypeHelper that has an upgrade chain,
// matching helpers.py's get_version()-carrying helpers.
type Migratable interface {
	typereg.TypeHelper
	Migration() ObjectMigration
}

// Registry is the subset of typereg.Registry the engine needs.
type Registry interface {
	Helpers() []typereg.TypeHelper
}

// Engine finds archive records whose embedded state was produced by an
// older helper version and rewrites them in place, matching
// Migrations.migrate_all/migrate_records.
type Engine struct {
	archive  archive.Archive
	registry Registry
}

// New builds a migration Engine bound to arc and registry.
func New(arc archive.Archive, registry Registry) *Engine {
	return &Engine{archive: arc, registry: registry}
}

// MigrateAll finds and rewrites every migratable record, returning how many
// were actually changed.
func (e *Engine) MigrateAll(ctx context.Context) (int, error) {
	migratable := map[uuid.UUID]Migratable{}
	for _, helper := range e.registry.Helpers() {
		m, ok := helper.(Migratable)
		if !ok || m.Migration() == nil {
			continue
		}
		migratable[m.TypeID()] = m
	}
	if len(migratable) == 0 {
		return 0, nil
	}

	ids, err := e.archive.SnapshotIDs(ctx, archive.FindOptions{})
	if err != nil {
		return 0, err
	}

	migrated := 0
	var ops []archive.BulkOp
	for _, id := range ids {
		rec, err := e.archive.Load(ctx, id)
		if err != nil {
			return migrated, err
		}
		if rec.IsDeletedRecord() {
			continue
		}
		newState, newSchema, changed, err := migrateRecord(rec, migratable)
		if err != nil {
			return migrated, fmt.Errorf("migrate: record %s: %w", id, err)
		}
		if !changed {
			continue
		}
		ops = append(ops, archive.BulkOp{Update: &archive.BulkUpdate{
			ID:         id,
			State:      newState,
			StateTypes: newSchema,
		}})
		migrated++
	}
	if len(ops) == 0 {
		return 0, nil
	}
	if err := e.archive.BulkWrite(ctx, ops); err != nil {
		return 0, err
	}
	return migrated, nil
}

// migrateRecord upgrades every schema entry of rec whose recorded version is
// behind its helper's current version, mutating rec.State() in place at each
// entry's path.
func migrateRecord(rec record.DataRecord, migratable map[uuid.UUID]Migratable) (interface{}, record.StateSchema, bool, error) {
	schema := rec.GetStateSchema()
	state := rec.State()
	changed := false

	newSchema := make(record.StateSchema, len(schema))
	copy(newSchema, schema)

	for i, entry := range schema {
		helper, ok := migratable[entry.TypeID]
		if !ok {
			continue
		}
		if entry.Version >= helper.Version() {
			continue
		}
		oldValue, err := getAt(state, entry.Path)
		if err != nil {
			return nil, nil, false, err
		}
		upgraded, err := Apply(helper.Migration(), entry.Version, oldValue)
		if err != nil {
			return nil, nil, false, err
		}
		if len(entry.Path) == 0 {
			state = upgraded
		} else if err := setAt(state, entry.Path, upgraded); err != nil {
			return nil, nil, false, err
		}
		newSchema[i].Version = helper.Version()
		changed = true
	}
	return state, newSchema, changed, nil
}

func getAt(root interface{}, path []interface{}) (interface{}, error) {
	cur := root
	for _, key := range path {
		next, err := step(cur, key)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func setAt(root interface{}, path []interface{}, newVal interface{}) error {
	if len(path) == 0 {
		return fmt.Errorf("migrate: cannot replace the record root")
	}
	cur := root
	for _, key := range path[:len(path)-1] {
		next, err := step(cur, key)
		if err != nil {
			return err
		}
		cur = next
	}
	last := path[len(path)-1]
	switch key := last.(type) {
	case string:
		m, ok := cur.(map[string]interface{})
		if !ok {
			return fmt.Errorf("migrate: expected a map at path tail, got %T", cur)
		}
		m[key] = newVal
	case int:
		s, ok := cur.([]interface{})
		if !ok || key < 0 || key >= len(s) {
			return fmt.Errorf("migrate: invalid list index %d into %T", key, cur)
		}
		s[key] = newVal
	default:
		return fmt.Errorf("migrate: unsupported path element type %T", last)
	}
	return nil
}

func step(cur interface{}, key interface{}) (interface{}, error) {
	switch k := key.(type) {
	case string:
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("migrate: expected a map, got %T", cur)
		}
		return m[k], nil
	case int:
		s, ok := cur.([]interface{})
		if !ok || k < 0 || k >= len(s) {
			return nil, fmt.Errorf("migrate: invalid list index %d into %T", k, cur)
		}
		return s[k], nil
	default:
		return nil, fmt.Errorf("migrate: unsupported path element type %T", key)
	}
}
