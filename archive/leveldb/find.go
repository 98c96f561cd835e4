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
	"context"
	"fmt"
	"sort"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/record"
	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// scanLatest walks every distinct object's newest version, the same
// full-table scan archive/memdb's Find does, since neither backend keeps a
// native secondary-index engine to push a filter.Query down into.
func (a *Archive) scanLatest() ([]record.DataRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	iter := a.db.NewIterator(util.BytesPrefix([]byte{prefixRecord}), nil)
	defer iter.Release()

	latestByObj := map[uuid.UUID]record.DataRecord{}
	for iter.Next() {
		raw := append([]byte(nil), iter.Value()...)
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		existing, ok := latestByObj[rec.ObjID()]
		if !ok || rec.Version() > existing.Version() {
			latestByObj[rec.ObjID()] = rec
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	out := make([]record.DataRecord, 0, len(latestByObj))
	for _, rec := range latestByObj {
		if !rec.IsDeletedRecord() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (a *Archive) Find(_ context.Context, opts archive.FindOptions) ([]record.DataRecord, error) {
	all, err := a.scanLatest()
	if err != nil {
		return nil, err
	}
	matches := make([]record.DataRecord, 0, len(all))
	for _, rec := range all {
		if matchesRecord(rec, opts.Filter) {
			matches = append(matches, rec)
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

	iter := a.db.NewIterator(util.BytesPrefix([]byte{prefixRecord}), nil)
	defer iter.Release()

	var out []record.SnapshotID
	for iter.Next() {
		raw := append([]byte(nil), iter.Value()...)
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		if matchesRecord(rec, opts.Filter) {
			out = append(out, rec.SnapshotID())
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
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
			if fmt.Sprint(vi) == fmt.Sprint(vj) {
				continue
			}
			cmp := fmt.Sprint(vi) < fmt.Sprint(vj)
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
