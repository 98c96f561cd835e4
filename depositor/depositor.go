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

// Package depositor implements the Saver/Loader protocol spec.md §4.4
// describes: recursively reducing a live object graph to the primitive
// state a DataRecord carries, and recursively restoring it again. Grounded
// on original_source/mincepy/depositors.py's Saver/Loader/LiveDepositor/
// SnapshotLoader classes.
package depositor

import (
	"fmt"
	"reflect"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/primitive"
	"github.com/archivian/historian/record"
	"github.com/archivian/historian/typereg"
	"github.com/google/uuid"
)

// Registry is the subset of typereg.Registry the depositor needs.
type Registry interface {
	HelperForType(t reflect.Type) (typereg.TypeHelper, error)
	HelperForTypeID(id uuid.UUID) (typereg.TypeHelper, error)
}

// RefResolver gets a persistent SnapshotID for a live object, saving it
// through the historian if it hasn't been saved yet in this transaction
// (mirrors LiveDepositor.ref). ObjLoader loads a live object back given a
// SnapshotID (mirrors LiveDepositor.load).
type RefResolver interface {
	Ref(obj interface{}) (record.SnapshotID, error)
}

type ObjLoader interface {
	LoadObj(id record.SnapshotID) (interface{}, error)
}

// Depositor encodes and decodes object state for one historian, delegating
// type-specific work to the TypeHelper the type registry resolves.
type Depositor struct {
	registry Registry
	refs     RefResolver
	loader   ObjLoader
}

// New builds a Depositor. refs/loader may be nil for a Depositor that will
// only ever encode/decode already-primitive-shaped state (e.g. a
// SnapshotLoader that doesn't need to save anything).
func New(registry Registry, refs RefResolver, loader ObjLoader) *Depositor {
	return &Depositor{registry: registry, refs: refs, loader: loader}
}

// SaveState reduces obj to the (state, schema) pair a DataRecord.Builder
// needs, matching Saver.save_state.
func (d *Depositor) SaveState(obj interface{}) (interface{}, record.StateSchema, error) {
	var schema record.StateSchema
	state, err := d.encode(obj, &schema, primitive.Path(nil))
	if err != nil {
		return nil, nil, err
	}
	return state, schema, nil
}

func (d *Depositor) encode(obj interface{}, schema *record.StateSchema, path primitive.Path) (interface{}, error) {
	if primitive.IsPrimitive(obj) {
		return d.encodeContainer(obj, schema, path)
	}

	helper, err := d.registry.HelperForType(reflect.TypeOf(obj))
	if err != nil {
		return nil, fmt.Errorf("depositor: cannot encode %T: %w", obj, err)
	}

	saveState, err := helper.SaveInstanceState(obj, d)
	if err != nil {
		return nil, err
	}
	if !primitive.IsPrimitive(saveState) {
		return nil, fmt.Errorf("depositor: helper %T produced a non-primitive save state", helper)
	}

	*schema = append(*schema, record.SchemaEntry{
		Path:    pathToList(path),
		TypeID:  helper.TypeID(),
		Version: helper.Version(),
	})
	return d.encode(saveState, schema, path)
}

// encodeContainer recurses into maps and slices so that any non-primitive
// values nested inside them still get a helper-backed encoding, matching
// pytray.tree.transform's behaviour in the source.
func (d *Depositor) encodeContainer(v interface{}, schema *record.StateSchema, path primitive.Path) (interface{}, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			encoded, err := d.encode(item, schema, path.Append(primitive.Key(k)))
			if err != nil {
				return nil, err
			}
			out[k] = encoded
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			encoded, err := d.encode(item, schema, path.Append(primitive.Idx(i)))
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil
	default:
		return v, nil
	}
}

// Ref implements typereg.Saver, deferring to the historian-provided
// RefResolver so a helper can embed a Reference to another live object.
func (d *Depositor) Ref(obj interface{}) (interface{}, error) {
	if d.refs == nil {
		return nil, fmt.Errorf("depositor: no reference resolver configured")
	}
	id, err := d.refs.Ref(obj)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{archive.RefMarkerKey: id.ToList()}, nil
}

func pathToList(path primitive.Path) []interface{} {
	out := make([]interface{}, len(path))
	for i, elem := range path {
		if elem.IsKey {
			out[i] = elem.Key
		} else {
			out[i] = elem.Index
		}
	}
	return out
}
