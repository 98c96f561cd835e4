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
	"encoding/binary"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/record"
	"github.com/syndtr/goleveldb/leveldb"
	"golang.org/x/sync/errgroup"
)

// encodedOp is a BulkOp whose payload has already been run through
// encodeRecord, the unit of work each errgroup goroutine in BulkWrite
// produces.
type encodedOp struct {
	insertKey, insertVal []byte
	updateKey, updateVal []byte
}

// BulkWrite encodes every staged op concurrently (the expensive JSON+snappy
// step), then applies them as one atomic leveldb.Batch, the same
// encode-in-parallel/commit-once split the teacher's trie committer applies
// to node writes.
func (a *Archive) BulkWrite(ctx context.Context, ops []archive.BulkOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	encoded := make([]encodedOp, len(ops))
	g, _ := errgroup.WithContext(ctx)
	for i := range ops {
		i, op := i, ops[i]
		g.Go(func() error {
			var e encodedOp
			if op.Insert != nil {
				raw, err := encodeRecord(*op.Insert)
				if err != nil {
					return err
				}
				e.insertKey = recordKey(op.Insert.ObjID(), op.Insert.Version())
				e.insertVal = raw
			}
			if op.Update != nil {
				current, err := a.readRecordLocked(op.Update.ID)
				if err != nil {
					return err
				}
				rewritten := rebuildSameVersion(current, op.Update.State, op.Update.StateTypes)
				raw, err := encodeRecord(rewritten)
				if err != nil {
					return err
				}
				e.updateKey = recordKey(op.Update.ID.ObjID, op.Update.ID.Version)
				e.updateVal = raw
			}
			encoded[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	counts := map[[16]byte]int{}
	for i, op := range ops {
		e := encoded[i]
		if op.Insert != nil {
			batch.Put(e.insertKey, e.insertVal)
			var key [16]byte
			copy(key[:], op.Insert.ObjID()[:])
			if op.Insert.Version()+1 > counts[key] {
				counts[key] = op.Insert.Version() + 1
			}
		}
		if op.Update != nil {
			batch.Put(e.updateKey, e.updateVal)
		}
	}
	for key, count := range counts {
		id := append([]byte(nil), key[:]...)
		current, err := a.versionCountBytes(id)
		if err != nil {
			return err
		}
		if count > current {
			var v [8]byte
			binary.BigEndian.PutUint64(v[:], uint64(count))
			batch.Put(append([]byte{prefixCount}, id...), v[:])
		}
	}
	if err := a.db.Write(batch, nil); err != nil {
		return err
	}
	for i, op := range ops {
		if op.Insert != nil {
			a.cache.Set(encoded[i].insertKey, encoded[i].insertVal)
		}
		if op.Update != nil {
			a.cache.Set(encoded[i].updateKey, encoded[i].updateVal)
		}
	}
	return nil
}

// readRecordLocked reads and decodes a record, bypassing the cache, for
// callers (BulkWrite) that already hold a.mu.
func (a *Archive) readRecordLocked(id record.SnapshotID) (record.DataRecord, error) {
	raw, err := a.db.Get(recordKey(id.ObjID, id.Version), nil)
	if err == leveldb.ErrNotFound {
		return record.DataRecord{}, archive.ErrNotFound
	}
	if err != nil {
		return record.DataRecord{}, err
	}
	return decodeRecord(raw)
}

func (a *Archive) versionCountBytes(objID []byte) (int, error) {
	raw, err := a.db.Get(append([]byte{prefixCount}, objID...), nil)
	if err == leveldb.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint64(raw)), nil
}

// rebuildSameVersion rewrites a record's state in place without bumping its
// version, the same helper archive/memdb uses for a migration-driven
// rewrite.
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
