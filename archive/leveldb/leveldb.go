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

// Package leveldb is the disk-backed archive.Archive, the counterpart to
// archive/memdb for callers who need their object graph to survive a process
// restart. Grounded on core/state/snapshot's disk layer (a
// syndtr/goleveldb-backed key/value store fronted by a hot-entry cache) and
// core/rawdb/freezer_table.go for the append-only blob segment design used
// by fileblob.go. Records are JSON-encoded and snappy-compressed before
// being written, the same two-step encode core/rawdb applies to freezer
// items (SPEC_FULL.md).
package leveldb

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/historianlog"
	"github.com/archivian/historian/record"
	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Key-space prefixes. A single leading byte keeps the different kinds of
// entry from colliding inside the one goleveldb instance, the same scheme
// core/rawdb uses to multiplex headers, bodies and receipts into one
// database (headerPrefix, blockBodyPrefix, ...).
const (
	prefixRecord byte = 'r' // prefixRecord + objID + version(BE64) -> encoded DataRecord
	prefixCount  byte = 'c' // prefixCount  + objID                -> version count (BE64)
	prefixMeta   byte = 'm' // prefixMeta   + objID                -> encoded metadata document
	prefixFile   byte = 'f' // prefixFile   + fileID               -> encoded fileEntry
)

const defaultCacheBytes = 32 * 1024 * 1024 // 32MiB, matching core/state/snapshot's default disk layer cache

// Archive is a syndtr/goleveldb-backed archive.Archive.
type Archive struct {
	mu sync.RWMutex

	db    *leveldb.DB
	cache *fastcache.Cache // hot DataRecord cache, keyed by SnapshotID
	log   *historianlog.Logger

	baseDir string // blob segment directory, see fileblob.go

	indexMu sync.Mutex
	indexes []index
}

type index struct {
	keys       []string
	unique     bool
	whereExist []string
	seen       map[string]bool
}

// Option configures an Archive at construction time.
type Option func(*Archive)

// WithCacheBytes overrides the hot-record fastcache size.
func WithCacheBytes(n int) Option {
	return func(a *Archive) { a.cache = fastcache.New(n) }
}

// Open opens (creating if absent) a LevelDB-backed archive rooted at dir.
// Blob files are kept alongside the LevelDB files under dir/blobs.
func Open(dir string, opts ...Option) (*Archive, error) {
	db, err := leveldb.OpenFile(filepath.Join(dir, "data"), &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("leveldb: opening %s: %w", dir, err)
	}
	a := &Archive{
		db:      db,
		cache:   fastcache.New(defaultCacheBytes),
		log:     historianlog.Root.New("archive", "leveldb", "dir", dir),
		baseDir: dir,
	}
	for _, apply := range opts {
		apply(a)
	}
	return a, nil
}

func (a *Archive) CreateID(_ context.Context) (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (a *Archive) ConstructID(_ context.Context, args ...interface{}) (uuid.UUID, error) {
	var buf []byte
	for _, arg := range args {
		buf = append(buf, []byte(fmt.Sprint(arg))...)
	}
	return uuid.NewSHA1(uuid.Nil, buf), nil
}

func recordKey(objID uuid.UUID, version int) []byte {
	key := make([]byte, 0, 1+16+8)
	key = append(key, prefixRecord)
	key = append(key, objID[:]...)
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(version))
	return append(key, v[:]...)
}

func countKey(objID uuid.UUID) []byte {
	return append([]byte{prefixCount}, objID[:]...)
}

func (a *Archive) versionCount(objID uuid.UUID) (int, error) {
	return a.versionCountBytes(objID[:])
}

func (a *Archive) Save(ctx context.Context, rec record.DataRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.insertLocked(rec)
}

func (a *Archive) insertLocked(rec record.DataRecord) error {
	count, err := a.versionCount(rec.ObjID())
	if err != nil {
		return err
	}
	if count != rec.Version() {
		return fmt.Errorf("%w: expected version %d for object %s, record has version %d",
			archive.ErrVersion, count, rec.ObjID(), rec.Version())
	}
	encoded, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put(recordKey(rec.ObjID(), rec.Version()), encoded)
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(count+1))
	batch.Put(countKey(rec.ObjID()), v[:])
	if err := a.db.Write(batch, nil); err != nil {
		return err
	}
	a.cache.Set(recordKey(rec.ObjID(), rec.Version()), encoded)
	a.log.Debug("saved record", "obj", rec.ObjID(), "version", rec.Version())
	return nil
}

func (a *Archive) Load(_ context.Context, id record.SnapshotID) (record.DataRecord, error) {
	key := recordKey(id.ObjID, id.Version)
	if raw, ok := a.cache.HasGet(nil, key); ok {
		return decodeRecord(raw)
	}
	raw, err := a.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return record.DataRecord{}, fmt.Errorf("%w: %s", archive.ErrNotFound, id)
	}
	if err != nil {
		return record.DataRecord{}, err
	}
	a.cache.Set(key, raw)
	return decodeRecord(raw)
}

func (a *Archive) LoadLatest(ctx context.Context, objID uuid.UUID) (record.DataRecord, error) {
	a.mu.RLock()
	count, err := a.versionCount(objID)
	a.mu.RUnlock()
	if err != nil {
		return record.DataRecord{}, err
	}
	if count == 0 {
		return record.DataRecord{}, fmt.Errorf("%w: %s", archive.ErrNotFound, objID)
	}
	return a.Load(ctx, record.NewSnapshotID(objID, count-1))
}

func (a *Archive) History(ctx context.Context, objID uuid.UUID, skip, limit int) ([]record.DataRecord, error) {
	a.mu.RLock()
	count, err := a.versionCount(objID)
	a.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if skip >= count {
		return nil, nil
	}
	end := count
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	out := make([]record.DataRecord, 0, end-skip)
	for v := skip; v < end; v++ {
		rec, err := a.Load(ctx, record.NewSnapshotID(objID, v))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (a *Archive) SchemaVersion(_ context.Context) (int, error) {
	return 1, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}
