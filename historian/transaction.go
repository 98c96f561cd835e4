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
	"errors"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/txn"
)

// InTransaction runs fn within a (possibly nested) transaction, matching
// Historian.transaction: fn's staged writes become visible to the rest of
// the historian only if fn returns nil, and are flushed to the archive as a
// single BulkWrite only when the outermost transaction commits. Returning
// txn.ErrRollback (or any other error) discards everything fn staged.
func (h *Historian) InTransaction(ctx context.Context, fn func(t *txn.Transaction) error) error {
	parent := h.currentTxn()
	var t *txn.Transaction
	if parent != nil {
		t = parent.Nested()
	} else {
		t = txn.New()
	}
	h.pushTxn(t)
	defer h.popTxn()

	err := fn(t)
	if err != nil {
		t.Close(false)
		if errors.Is(err, txn.ErrRollback) {
			return nil
		}
		return err
	}

	isOutermost := parent == nil
	if !isOutermost {
		t.Close(true)
		return nil
	}

	if flushErr := h.flush(ctx, t); flushErr != nil {
		t.Close(false)
		return flushErr
	}
	t.Close(true)
	return nil
}

// flush writes every operation staged on t (including everything merged up
// from committed nested transactions) to the archive as one atomic batch.
func (h *Historian) flush(ctx context.Context, t *txn.Transaction) error {
	staged := t.Staged()
	if len(staged) == 0 {
		return nil
	}
	ops := make([]archive.BulkOp, 0, len(staged))
	for _, op := range staged {
		switch o := op.(type) {
		case txn.InsertOp:
			rec := o.Record
			ops = append(ops, archive.BulkOp{Insert: &rec})
		case txn.UpdateOp:
			ops = append(ops, archive.BulkOp{Update: &archive.BulkUpdate{
				ID:         o.ID,
				State:      o.State,
				StateTypes: o.StateTypes,
			}})
		case txn.DeleteOp:
			rec := o.Record
			ops = append(ops, archive.BulkOp{Insert: &rec})
		}
	}
	return h.archive.BulkWrite(ctx, ops)
}
