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
	"context"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/record"
	"github.com/archivian/historian/txn"
	"github.com/google/uuid"
)

// Delete marks obj as deleted, refusing to do so while another live object
// still holds a reference to it (spec.md §4.10's delete-safety guard) unless
// force is true.
func (h *Historian) Delete(ctx context.Context, obj interface{}, force bool) error {
	objID, ok := h.live.IDFor(obj)
	if !ok {
		return archive.ErrNotFound
	}

	if !force {
		referrers, err := h.archive.RefGraph(ctx, objID, archive.Incoming, 1)
		if err != nil {
			return err
		}
		if len(referrers) > 0 {
			return &archive.ReferenceError{ObjID: objID, ReferredBy: referrers}
		}
	}

	return h.InTransaction(ctx, func(t *txn.Transaction) error {
		latest, found := h.live.RecordFor(objID)
		if !found {
			return archive.ErrNotFound
		}
		deleted := record.MakeDeletedBuilder(latest).Build()
		t.Stage(txn.DeleteOp{Record: deleted})
		t.InsertLiveObject(obj, deleted)
		h.live.Track(objID, obj, deleted)
		return nil
	})
}

// DeleteByID deletes the object addressed by objID, loading it first if it
// isn't already tracked as live, matching Historian.delete's id-only form.
func (h *Historian) DeleteByID(ctx context.Context, objID uuid.UUID, force bool) error {
	obj, err := h.Get(ctx, objID)
	if err != nil {
		return err
	}
	return h.Delete(ctx, obj, force)
}
