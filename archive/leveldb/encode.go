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

package leveldb

import (
	"encoding/json"
	"time"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/record"
	"github.com/golang/snappy"
	"github.com/google/uuid"
)

// wireRecord is the JSON-serialisable shadow of record.DataRecord: the
// DataRecord itself keeps its fields unexported, so encode/decode goes
// through this shape and the record.Builder, mirroring the way the Python
// archive's _to_entry/_to_record pair remaps between DataRecord and the
// document it actually stores (mongo_archive.py).
type wireRecord struct {
	ObjID        uuid.UUID               `json:"obj_id"`
	TypeID       uuid.UUID               `json:"type_id"`
	CreationTime time.Time               `json:"creation_time"`
	Version      int                     `json:"version"`
	State        interface{}             `json:"state"`
	StateTypes   []wireSchemaEntry       `json:"state_types,omitempty"`
	SnapshotHash []byte                  `json:"snapshot_hash,omitempty"`
	SnapshotTime time.Time               `json:"snapshot_time"`
	Extras       map[string]interface{}  `json:"extras,omitempty"`
}

type wireSchemaEntry struct {
	Path    []interface{} `json:"path"`
	TypeID  uuid.UUID     `json:"type_id"`
	Version int           `json:"version"`
}

func encodeRecord(rec record.DataRecord) ([]byte, error) {
	extras := make(map[string]interface{}, len(rec.Extras()))
	for k, v := range rec.Extras() {
		extras[string(k)] = v
	}
	entries := make([]wireSchemaEntry, len(rec.GetStateSchema()))
	for i, e := range rec.GetStateSchema() {
		entries[i] = wireSchemaEntry{Path: e.Path, TypeID: e.TypeID, Version: e.Version}
	}
	w := wireRecord{
		ObjID:        rec.ObjID(),
		TypeID:       rec.TypeID(),
		CreationTime: rec.CreationTime(),
		Version:      rec.Version(),
		State:        rec.State(),
		StateTypes:   entries,
		SnapshotHash: rec.SnapshotHash(),
		SnapshotTime: rec.SnapshotTime(),
		Extras:       extras,
	}
	plain, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, plain), nil
}

func decodeRecord(compressed []byte) (record.DataRecord, error) {
	plain, err := snappy.Decode(nil, compressed)
	if err != nil {
		return record.DataRecord{}, err
	}
	var w wireRecord
	if err := json.Unmarshal(plain, &w); err != nil {
		return record.DataRecord{}, err
	}

	schema := make(record.StateSchema, len(w.StateTypes))
	for i, e := range w.StateTypes {
		schema[i] = record.SchemaEntry{Path: normalizePath(e.Path), TypeID: e.TypeID, Version: e.Version}
	}
	extras := make(map[record.ExtraKeys]interface{}, len(w.Extras))
	for k, v := range w.Extras {
		extras[record.ExtraKeys(k)] = v
	}

	b := record.NewBuilder(w.ObjID, w.TypeID).
		SetVersion(w.Version).
		SetCreationTime(w.CreationTime).
		SetState(restoreRefMarkers(w.State)).
		SetStateTypes(schema).
		SetSnapshotHash(w.SnapshotHash).
		SetSnapshotTime(w.SnapshotTime)
	for k, v := range extras {
		b.SetExtra(k, v)
	}
	return b.Build(), nil
}

// normalizePath restores a SchemaEntry path's list-index elements, which
// json.Unmarshal hands back as float64, to the int migrate.getAt/setAt
// expect; string path elements pass through untouched.
func normalizePath(path []interface{}) []interface{} {
	out := make([]interface{}, len(path))
	for i, p := range path {
		if f, ok := p.(float64); ok {
			out[i] = int(f)
			continue
		}
		out[i] = p
	}
	return out
}

// restoreRefMarkers walks a value just decoded from JSON and turns every
// {"__ref__": [objIDHex, version]} marker's loosely-typed list entries
// (a string and a json.Number-as-float64) back into the
// []interface{}{uuid.UUID, int} shape archive.ExtractRefs and the depositor
// expect, the same remapping mongo_archive.py's _to_record applies to
// documents coming back from pymongo.
func restoreRefMarkers(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		if raw, ok := val[archive.RefMarkerKey]; ok {
			if list, ok := raw.([]interface{}); ok && len(list) == 2 {
				if idText, ok := list[0].(string); ok {
					if id, err := uuid.Parse(idText); err == nil {
						version := 0
						if f, ok := list[1].(float64); ok {
							version = int(f)
						}
						return map[string]interface{}{
							archive.RefMarkerKey: []interface{}{id, version},
						}
					}
				}
			}
			return val
		}
		for k, item := range val {
			val[k] = restoreRefMarkers(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = restoreRefMarkers(item)
		}
		return val
	default:
		return v
	}
}
