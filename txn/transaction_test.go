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

package txn

import (
	"testing"

	"github.com/archivian/historian/record"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNestedTransactionFallsThroughToParent(t *testing.T) {
	root := New()
	objID := uuid.New()
	rec := record.NewBuilder(objID, uuid.New()).SetState("v0").Build()
	obj := &struct{ N int }{N: 1}
	root.InsertLiveObject(obj, rec)

	child := root.Nested()
	got, ok := child.GetLiveObject(objID)
	assert.True(t, ok)
	assert.Same(t, obj, got)
}

func TestNestedTransactionCommitMergesIntoParent(t *testing.T) {
	root := New()
	child := root.Nested()

	rec := record.NewBuilder(uuid.New(), uuid.New()).SetState("v0").Build()
	child.Stage(InsertOp{Record: rec})
	child.Close(true)

	assert.Len(t, root.Staged(), 1)
}

func TestNestedTransactionRollbackDiscardsStaged(t *testing.T) {
	root := New()
	child := root.Nested()

	rec := record.NewBuilder(uuid.New(), uuid.New()).SetState("v0").Build()
	child.Stage(InsertOp{Record: rec})
	child.Close(false)

	assert.Empty(t, root.Staged())
}

func TestMetaOverlayDeletionIsVisibleAsFoundNil(t *testing.T) {
	root := New()
	objID := uuid.New()
	root.SetMeta(objID, map[string]interface{}{"tag": "a"})
	root.DeleteMeta(objID)

	meta, found := root.GetMeta(objID)
	assert.True(t, found)
	assert.Nil(t, meta)
}
