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
	"testing"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/record"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestArchive(t *testing.T) *Archive {
	a, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSaveAndLoadLatestSurvivesTheJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	objID := uuid.New()
	rec := record.NewBuilder(objID, uuid.New()).
		SetState(map[string]interface{}{"name": "frank", "age": float64(40)}).Build()
	require.NoError(t, a.Save(ctx, rec))

	latest, err := a.LoadLatest(ctx, objID)
	require.NoError(t, err)
	assert.Equal(t, rec.ObjID(), latest.ObjID())
	assert.Equal(t, rec.TypeID(), latest.TypeID())
	assert.Equal(t, rec.Version(), latest.Version())
	assert.Equal(t, rec.State(), latest.State())
}

func TestSaveRejectsWrongVersion(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	rec := record.NewBuilder(uuid.New(), uuid.New()).SetVersion(5).Build()
	assert.Error(t, a.Save(ctx, rec))
}

func TestHistoryReturnsEveryVersionInOrder(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	objID := uuid.New()
	typeID := uuid.New()
	v0 := record.NewBuilder(objID, typeID).SetState("v0").Build()
	require.NoError(t, a.Save(ctx, v0))
	v1 := record.ChildBuilder(v0).SetState("v1").Build()
	require.NoError(t, a.Save(ctx, v1))

	history, err := a.History(ctx, objID, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "v0", history[0].State())
	assert.Equal(t, "v1", history[1].State())
}

func TestFindMatchesOnLatestVersionOnly(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	objID := uuid.New()
	typeID := uuid.New()
	require.NoError(t, a.Save(ctx, record.NewBuilder(objID, typeID).
		SetState(map[string]interface{}{"colour": "red"}).Build()))
	v0, err := a.LoadLatest(ctx, objID)
	require.NoError(t, err)
	require.NoError(t, a.Save(ctx, record.ChildBuilder(v0).
		SetState(map[string]interface{}{"colour": "blue"}).Build()))

	matches, err := a.Find(ctx, archive.FindOptions{Filter: map[string]interface{}{"colour": "red"}})
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = a.Find(ctx, archive.FindOptions{Filter: map[string]interface{}{"colour": "blue"}})
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestMetaSetGetUpdateRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)
	objID := uuid.New()

	require.NoError(t, a.MetaSet(ctx, objID, map[string]interface{}{"tag": "a"}))
	require.NoError(t, a.MetaUpdate(ctx, objID, map[string]interface{}{"extra": "b"}))

	meta, err := a.MetaGet(ctx, objID)
	require.NoError(t, err)
	assert.Equal(t, "a", meta["tag"])
	assert.Equal(t, "b", meta["extra"])
}

func TestCreateFileWritesAndReadsBackViaMmap(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	w, err := a.CreateFile(ctx, "notes.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello blob"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := a.OpenFile(ctx, w.ID())
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 32)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello blob", string(buf[:n]))
}

func TestBulkWriteAppliesInsertsAndUpdatesAtomically(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	objID := uuid.New()
	typeID := uuid.New()
	v0 := record.NewBuilder(objID, typeID).
		SetState(map[string]interface{}{"n": float64(1)}).
		SetStateTypes(record.StateSchema{{Path: nil, TypeID: typeID, Version: 0}}).Build()
	require.NoError(t, a.Save(ctx, v0))

	otherID := uuid.New()
	insertRec := record.NewBuilder(otherID, typeID).SetState("fresh").Build()
	err := a.BulkWrite(ctx, []archive.BulkOp{
		{Insert: &insertRec},
		{Update: &archive.BulkUpdate{
			ID:         v0.SnapshotID(),
			State:      map[string]interface{}{"n": float64(2)},
			StateTypes: record.StateSchema{{Path: nil, TypeID: typeID, Version: 1}},
		}},
	})
	require.NoError(t, err)

	rewritten, err := a.Load(ctx, v0.SnapshotID())
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"n": float64(2)}, rewritten.State())
	assert.Equal(t, 1, rewritten.GetStateSchema()[0].Version)

	inserted, err := a.LoadLatest(ctx, otherID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", inserted.State())
}
