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
	"encoding/json"
	"fmt"

	"github.com/archivian/historian/archive"
	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

func metaKey(objID uuid.UUID) []byte {
	return append([]byte{prefixMeta}, objID[:]...)
}

func (a *Archive) MetaGet(_ context.Context, objID uuid.UUID) (map[string]interface{}, error) {
	raw, err := a.db.Get(metaKey(objID), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (a *Archive) MetaGetMany(ctx context.Context, objIDs []uuid.UUID) (map[uuid.UUID]map[string]interface{}, error) {
	out := map[uuid.UUID]map[string]interface{}{}
	for _, id := range objIDs {
		meta, err := a.MetaGet(ctx, id)
		if err != nil {
			return nil, err
		}
		if meta != nil {
			out[id] = meta
		}
	}
	return out, nil
}

func (a *Archive) MetaSet(_ context.Context, objID uuid.UUID, meta map[string]interface{}) error {
	a.indexMu.Lock()
	defer a.indexMu.Unlock()

	if err := a.checkIndexesLocked(meta); err != nil {
		return err
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return a.db.Put(metaKey(objID), raw, nil)
}

func (a *Archive) MetaUpdate(ctx context.Context, objID uuid.UUID, fields map[string]interface{}) error {
	existing, err := a.MetaGet(ctx, objID)
	if err != nil {
		return err
	}
	merged := existing
	if merged == nil {
		merged = map[string]interface{}{}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return a.MetaSet(ctx, objID, merged)
}

func (a *Archive) MetaFind(_ context.Context, filter map[string]interface{}) ([]uuid.UUID, error) {
	iter := a.db.NewIterator(util.BytesPrefix([]byte{prefixMeta}), nil)
	defer iter.Release()

	var out []uuid.UUID
	for iter.Next() {
		var meta map[string]interface{}
		if err := json.Unmarshal(iter.Value(), &meta); err != nil {
			return nil, err
		}
		if archive.Match(meta, filter) {
			key := iter.Key()
			var id uuid.UUID
			copy(id[:], key[1:])
			out = append(out, id)
		}
	}
	return out, iter.Error()
}

// MetaCreateIndex restores mincepy/hist/metas.py's unique-index feature
// (see SPEC_FULL.md). Like archive/memdb, the uniqueness constraint is
// enforced with an in-process seen-keys set rather than a native secondary
// index, so it only holds for the lifetime of this Archive handle.
func (a *Archive) MetaCreateIndex(_ context.Context, keys []string, unique bool, whereExist []string) error {
	a.indexMu.Lock()
	defer a.indexMu.Unlock()

	a.indexes = append(a.indexes, index{keys: keys, unique: unique, whereExist: whereExist, seen: map[string]bool{}})
	return nil
}

func (a *Archive) checkIndexesLocked(meta map[string]interface{}) error {
	for i := range a.indexes {
		idx := &a.indexes[i]
		if !idx.unique || !hasAll(meta, idx.whereExist) {
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
