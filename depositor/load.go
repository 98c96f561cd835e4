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

package depositor

import (
	"fmt"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/primitive"
	"github.com/archivian/historian/record"
)

// CreatedCallback is invoked once for every object LoadState instantiates,
// including the root; the historian uses it to register the root object as
// a live object the moment it exists, matching LiveDepositor.load_from_record's
// "created" callback.
type CreatedCallback func(path primitive.Path, obj interface{})

// Migrated maps state paths to upgraded state. LoadState neither fills nor
// returns one: decoding applies no migrations, and records saved under an
// older helper version are rewritten by migrate.Engine.MigrateAll instead.
type Migrated map[string]interface{}

// LoadState restores a live object tree from previously saved (state,
// schema), matching Loader.decode.
func (d *Depositor) LoadState(state interface{}, schema record.StateSchema, created CreatedCallback) (interface{}, error) {
	return d.decode(state, schema, primitive.Path(nil), created)
}

func (d *Depositor) decode(encoded interface{}, schema record.StateSchema, path primitive.Path, created CreatedCallback) (interface{}, error) {
	entry, ok := findEntry(schema, path)
	if !ok {
		return d.decodeContainer(encoded, schema, path, created)
	}

	helper, err := d.registry.HelperForTypeID(entry.TypeID)
	if err != nil {
		return nil, fmt.Errorf("depositor: cannot decode path %s: %w", path, err)
	}

	savedState := encoded
	if helper.Immutable() {
		// Immutable types have no identity to protect from cycles, so their
		// children are unpacked before construction: New gets the real state.
		unpacked, err := d.decodeContainer(encoded, schema, path, created)
		if err != nil {
			return nil, err
		}
		savedState = unpacked
	}

	newObj, err := helper.New(savedState)
	if err != nil {
		return nil, err
	}
	if created != nil {
		created(path, newObj)
	}

	if !helper.Immutable() {
		// Register newObj under this path via the created callback above
		// before recursing into its children, so a child referencing this
		// same object (a cycle) resolves to newObj instead of looping.
		unpacked, err := d.decodeContainer(encoded, schema, path, created)
		if err != nil {
			return nil, err
		}
		savedState = unpacked
	}

	if err := helper.LoadInstanceState(newObj, savedState, d); err != nil {
		return nil, err
	}
	return newObj, nil
}

func (d *Depositor) decodeContainer(encoded interface{}, schema record.StateSchema, path primitive.Path, created CreatedCallback) (interface{}, error) {
	switch val := encoded.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			decoded, err := d.decode(item, schema, path.Append(primitive.Key(k)), created)
			if err != nil {
				return nil, err
			}
			out[k] = decoded
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			decoded, err := d.decode(item, schema, path.Append(primitive.Idx(i)), created)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	default:
		return encoded, nil
	}
}

// Load implements typereg.Loader, resolving an embedded reference marker
// back to a live object via the historian-provided ObjLoader.
func (d *Depositor) Load(ref interface{}) (interface{}, error) {
	if d.loader == nil {
		return nil, fmt.Errorf("depositor: no object loader configured")
	}
	m, ok := ref.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("depositor: expected a reference marker map, got %T", ref)
	}
	id, ok := archive.DecodeRefMarker(m)
	if !ok {
		return nil, fmt.Errorf("depositor: malformed reference marker %v", m)
	}
	return d.loader.LoadObj(id)
}

func findEntry(schema record.StateSchema, path primitive.Path) (record.SchemaEntry, bool) {
	target := pathToList(path)
	for _, entry := range schema {
		if listEqual(entry.Path, target) {
			return entry, true
		}
	}
	return record.SchemaEntry{}, false
}

func listEqual(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if fmt.Sprint(a[i]) != fmt.Sprint(b[i]) {
			return false
		}
	}
	return true
}
