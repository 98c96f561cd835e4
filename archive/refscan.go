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

package archive

import (
	"github.com/archivian/historian/record"
	"github.com/google/uuid"
)

// RefMarkerKey is the wire marker the depositor uses when it encodes a
// Reference inside an object's saved state: a single-entry map
// {RefMarkerKey: [obj_id, version]}. Backends that have no native way to
// track references (archive/memdb, archive/leveldb) scan for this marker
// with ExtractRefs to answer RefGraph.
const RefMarkerKey = "__ref__"

// ExtractRefs walks a saved state tree and collects every embedded
// reference marker, used by backends to answer RefGraph by scanning the
// stored states when the graph is queried.
func ExtractRefs(state interface{}) []record.SnapshotID {
	var out []record.SnapshotID
	walkRefs(state, &out)
	return out
}

func walkRefs(v interface{}, out *[]record.SnapshotID) {
	switch val := v.(type) {
	case map[string]interface{}:
		if raw, ok := val[RefMarkerKey]; ok {
			if sid, ok := decodeRefMarker(raw); ok {
				*out = append(*out, sid)
			}
			return
		}
		for _, item := range val {
			walkRefs(item, out)
		}
	case []interface{}:
		for _, item := range val {
			walkRefs(item, out)
		}
	}
}

// DecodeRefMarker parses a {RefMarkerKey: [obj_id, version]} reference
// marker map into a SnapshotID; it is exported so the depositor can resolve
// a marker it finds while decoding without duplicating the wire format.
func DecodeRefMarker(marker map[string]interface{}) (record.SnapshotID, bool) {
	raw, ok := marker[RefMarkerKey]
	if !ok {
		return record.SnapshotID{}, false
	}
	return decodeRefMarker(raw)
}

// decodeRefMarker parses the [obj_id, version] list form a Reference marker
// carries.
func decodeRefMarker(raw interface{}) (record.SnapshotID, bool) {
	list, ok := raw.([]interface{})
	if !ok || len(list) != 2 {
		return record.SnapshotID{}, false
	}
	id, ok := list[0].(uuid.UUID)
	if !ok {
		return record.SnapshotID{}, false
	}
	version, ok := list[1].(int)
	if !ok {
		if v64, ok64 := list[1].(int64); ok64 {
			version = int(v64)
		} else {
			return record.SnapshotID{}, false
		}
	}
	return record.NewSnapshotID(id, version), true
}
