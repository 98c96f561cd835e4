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

package historian

import (
	"runtime"
	"sync"

	"github.com/archivian/historian/record"
	"github.com/google/uuid"
)

// liveObjectMap is the bidirectional id<->object map of tracked live
// objects. Both directions hold ordinary (strong) references, so a tracked
// object stays reachable for as long as it is in the map: the
// runtime.SetFinalizer attached in Track does not run while the entry
// exists, and entries are not removed automatically.
type liveObjectMap struct {
	mu       sync.Mutex
	byObjID  map[uuid.UUID]interface{}
	recByID  map[uuid.UUID]record.DataRecord
	idByObj  map[interface{}]uuid.UUID
}

func newLiveObjectMap() *liveObjectMap {
	return &liveObjectMap{
		byObjID: map[uuid.UUID]interface{}{},
		recByID: map[uuid.UUID]record.DataRecord{},
		idByObj: map[interface{}]uuid.UUID{},
	}
}

// Track associates objID with obj and its most recent record, and attaches a
// finalizer that drops both mappings if obj is collected; the map's own
// references keep obj reachable while it is tracked.
func (m *liveObjectMap) Track(objID uuid.UUID, obj interface{}, rec record.DataRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byObjID[objID] = obj
	m.recByID[objID] = rec
	m.idByObj[obj] = objID

	runtime.SetFinalizer(obj, func(finalized interface{}) {
		m.forget(objID, finalized)
	})
}

func (m *liveObjectMap) forget(objID uuid.UUID, obj interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.byObjID[objID]; ok && current == obj {
		delete(m.byObjID, objID)
		delete(m.recByID, objID)
	}
	delete(m.idByObj, obj)
}

// GetByID returns the live object tracked for objID, if any.
func (m *liveObjectMap) GetByID(objID uuid.UUID) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.byObjID[objID]
	return obj, ok
}

// RecordFor returns the most recently saved record for objID, if any.
func (m *liveObjectMap) RecordFor(objID uuid.UUID) (record.DataRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recByID[objID]
	return rec, ok
}

// IDFor returns the obj_id already assigned to a tracked live object.
func (m *liveObjectMap) IDFor(obj interface{}) (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.idByObj[obj]
	return id, ok
}
