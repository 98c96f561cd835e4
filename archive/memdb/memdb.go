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

// Package memdb is a pure in-memory archive.Archive, used by the historian
// test suite and by callers who don't need persistence across process
// restarts. Grounded on ethdb/relaydb/relaydb.go's wrapped-map-store shape:
// a sync.RWMutex-guarded map with Has/Get/Put/Delete, generalised here from
// bytes to DataRecords.
package memdb

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/record"
	"github.com/google/uuid"
)

// Archive is the in-memory archive.Archive implementation.
type Archive struct {
	mu sync.RWMutex

	versions map[uuid.UUID][]record.DataRecord // ascending by version
	metas    map[uuid.UUID]map[string]interface{}
	indexes  []index
	files    map[uuid.UUID]*memFile
}

type index struct {
	keys       []string
	unique     bool
	whereExist []string
	seen       map[string]bool
}

// New builds an empty in-memory archive.
func New() *Archive {
	return &Archive{
		versions: map[uuid.UUID][]record.DataRecord{},
		metas:    map[uuid.UUID]map[string]interface{}{},
		files:    map[uuid.UUID]*memFile{},
	}
}

func (a *Archive) CreateID(_ context.Context) (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (a *Archive) ConstructID(_ context.Context, args ...interface{}) (uuid.UUID, error) {
	var buf bytes.Buffer
	fmt.Fprint(&buf, args...)
	return uuid.NewSHA1(uuid.Nil, buf.Bytes()), nil
}

func (a *Archive) Save(_ context.Context, rec record.DataRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.insertLocked(rec)
}

func (a *Archive) insertLocked(rec record.DataRecord) error {
	existing := a.versions[rec.ObjID()]
	if len(existing) != rec.Version() {
		return fmt.Errorf("%w: expected version %d for object %s, record has version %d",
			archive.ErrVersion, len(existing), rec.ObjID(), rec.Version())
	}
	a.versions[rec.ObjID()] = append(existing, rec)
	return nil
}

func (a *Archive) BulkWrite(_ context.Context, ops []archive.BulkOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	saved := make(map[uuid.UUID][]record.DataRecord, len(a.versions))
	for id, versions := range a.versions {
		saved[id] = append([]record.DataRecord(nil), versions...)
	}
	for _, op := range ops {
		if op.Insert != nil {
			if err := a.insertLocked(*op.Insert); err != nil {
				a.versions = saved
				return err
			}
		}
		if op.Update != nil {
			if err := a.updateLocked(*op.Update); err != nil {
				a.versions = saved
				return err
			}
		}
	}
	return nil
}

func (a *Archive) updateLocked(u archive.BulkUpdate) error {
	versions := a.versions[u.ID.ObjID]
	for i, rec := range versions {
		if rec.Version() == u.ID.Version {
			versions[i] = rebuildSameVersion(rec, u.State, u.StateTypes)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", archive.ErrNotFound, u.ID)
}

// rebuildSameVersion rewrites a record's state in place without bumping its
// version, used by BulkWrite updates, which the migration engine issues when
// it rewrites a record's encoded state to the latest schema.
func rebuildSameVersion(orig record.DataRecord, state interface{}, stateTypes record.StateSchema) record.DataRecord {
	builder := record.NewBuilder(orig.ObjID(), orig.TypeID()).
		SetVersion(orig.Version()).
		SetCreationTime(orig.CreationTime()).
		SetState(state).
		SetStateTypes(stateTypes)
	for k, v := range orig.Extras() {
		builder.SetExtra(k, v)
	}
	return builder.Build()
}

func (a *Archive) Load(_ context.Context, id record.SnapshotID) (record.DataRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	versions := a.versions[id.ObjID]
	if id.Version < 0 || id.Version >= len(versions) {
		return record.DataRecord{}, fmt.Errorf("%w: %s", archive.ErrNotFound, id)
	}
	return versions[id.Version], nil
}

func (a *Archive) LoadLatest(_ context.Context, objID uuid.UUID) (record.DataRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	versions := a.versions[objID]
	if len(versions) == 0 {
		return record.DataRecord{}, fmt.Errorf("%w: %s", archive.ErrNotFound, objID)
	}
	return versions[len(versions)-1], nil
}

func (a *Archive) History(_ context.Context, objID uuid.UUID, skip, limit int) ([]record.DataRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	versions := a.versions[objID]
	if skip >= len(versions) {
		return nil, nil
	}
	versions = versions[skip:]
	if limit > 0 && limit < len(versions) {
		versions = versions[:limit]
	}
	out := make([]record.DataRecord, len(versions))
	copy(out, versions)
	return out, nil
}

func (a *Archive) Find(_ context.Context, opts archive.FindOptions) ([]record.DataRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var matches []record.DataRecord
	for _, versions := range a.versions {
		if len(versions) == 0 {
			continue
		}
		latest := versions[len(versions)-1]
		if latest.IsDeletedRecord() {
			continue
		}
		if matchesRecord(latest, opts.Filter) {
			matches = append(matches, latest)
		}
	}
	sortRecords(matches, opts.Sort)
	return paginate(matches, opts.Skip, opts.Limit), nil
}

func (a *Archive) Count(ctx context.Context, opts archive.FindOptions) (int, error) {
	matches, err := a.Find(ctx, archive.FindOptions{Filter: opts.Filter})
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

func (a *Archive) Distinct(ctx context.Context, field string, opts archive.FindOptions) ([]interface{}, error) {
	matches, err := a.Find(ctx, archive.FindOptions{Filter: opts.Filter})
	if err != nil {
		return nil, err
	}
	seen := map[interface{}]bool{}
	var out []interface{}
	for _, rec := range matches {
		state, ok := rec.State().(map[string]interface{})
		if !ok {
			continue
		}
		v, ok := state[field]
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

func (a *Archive) SnapshotIDs(_ context.Context, opts archive.FindOptions) ([]record.SnapshotID, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []record.SnapshotID
	for _, versions := range a.versions {
		for _, rec := range versions {
			if matchesRecord(rec, opts.Filter) {
				out = append(out, rec.SnapshotID())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ObjID.String() != out[j].ObjID.String() {
			return out[i].ObjID.String() < out[j].ObjID.String()
		}
		return out[i].Version < out[j].Version
	})
	return out, nil
}

func matchesRecord(rec record.DataRecord, filter map[string]interface{}) bool {
	if len(filter) == 0 {
		return true
	}
	state, ok := rec.State().(map[string]interface{})
	if !ok {
		return false
	}
	return archive.Match(state, filter)
}

func sortRecords(recs []record.DataRecord, sortBy map[string]int) {
	if len(sortBy) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		si, _ := recs[i].State().(map[string]interface{})
		sj, _ := recs[j].State().(map[string]interface{})
		for field, dir := range sortBy {
			vi := si[field]
			vj := sj[field]
			cmp := fmt.Sprint(vi) < fmt.Sprint(vj)
			if fmt.Sprint(vi) == fmt.Sprint(vj) {
				continue
			}
			if dir < 0 {
				return !cmp
			}
			return cmp
		}
		return false
	})
}

func paginate(recs []record.DataRecord, skip, limit int) []record.DataRecord {
	if skip > 0 {
		if skip >= len(recs) {
			return nil
		}
		recs = recs[skip:]
	}
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs
}
