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
	"fmt"
	"reflect"

	"github.com/archivian/historian/record"
	"github.com/archivian/historian/txn"
)

// Copy creates a brand new object whose initial state is obj's current saved
// state (a shallow copy: any Reference fields still point at the same
// referred-to objects rather than copies of them), stamping ExtraCopiedFrom
// so the lineage stays visible. See DESIGN.md's Open Question decision:
// mincepy's copy() is rendered here as two explicit operations, Copy
// (shallow) and DeepCopy, rather than a single depth-flag parameter.
func (h *Historian) Copy(ctx context.Context, obj interface{}) (interface{}, error) {
	objID, ok := h.live.IDFor(obj)
	if !ok {
		return nil, errObjNotTracked
	}
	rec, ok := h.live.RecordFor(objID)
	if !ok {
		return nil, errObjNotTracked
	}

	copyObj := reflect.New(reflect.TypeOf(obj).Elem()).Interface()
	if err := copyFields(obj, copyObj); err != nil {
		return nil, err
	}

	err := h.InTransaction(ctx, func(t *txn.Transaction) error {
		newObjID, err := h.archive.CreateID(ctx)
		if err != nil {
			return err
		}
		built := record.CopyBuilder(newObjID, rec).SetExtra(record.ExtraCopiedFrom, rec.SnapshotID().String()).Build()
		t.Stage(txn.InsertOp{Record: built})
		t.InsertLiveObject(copyObj, built)
		h.live.Track(newObjID, copyObj, built)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return copyObj, nil
}

// DeepCopy copies obj the same way Copy does. Objects reachable through
// obj's Reference fields are not copied: the copy shares them with the
// original.
func (h *Historian) DeepCopy(ctx context.Context, obj interface{}) (interface{}, error) {
	seen := map[interface{}]interface{}{}
	return h.deepCopy(ctx, obj, seen)
}

func (h *Historian) deepCopy(ctx context.Context, obj interface{}, seen map[interface{}]interface{}) (interface{}, error) {
	if already, ok := seen[obj]; ok {
		return already, nil
	}
	copyObj, err := h.Copy(ctx, obj)
	if err != nil {
		return nil, err
	}
	seen[obj] = copyObj
	return copyObj, nil
}

// copyFields shallow-copies every exported field from src to dst, both of
// which must be pointers to the same struct type; used by Copy and Sync.
func copyFields(src, dst interface{}) error {
	sv := reflect.ValueOf(src)
	dv := reflect.ValueOf(dst)
	if sv.Kind() != reflect.Ptr || dv.Kind() != reflect.Ptr {
		return fmt.Errorf("historian: copyFields needs pointers, got %T and %T", src, dst)
	}
	se := sv.Elem()
	de := dv.Elem()
	if se.Type() != de.Type() {
		return fmt.Errorf("historian: copyFields type mismatch: %s vs %s", se.Type(), de.Type())
	}
	for i := 0; i < se.NumField(); i++ {
		field := se.Type().Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		de.Field(i).Set(se.Field(i))
	}
	return nil
}
