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

package memdb

import (
	"context"
	"testing"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/record"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadLatest(t *testing.T) {
	ctx := context.Background()
	a := New()

	objID := uuid.New()
	rec := record.NewBuilder(objID, uuid.New()).
		SetState(map[string]interface{}{"name": "frank"}).Build()

	require.NoError(t, a.Save(ctx, rec))

	latest, err := a.LoadLatest(ctx, objID)
	require.NoError(t, err)
	assert.Equal(t, rec, latest)
}

func TestSaveRejectsWrongVersion(t *testing.T) {
	ctx := context.Background()
	a := New()
	objID := uuid.New()
	rec := record.NewBuilder(objID, uuid.New()).SetVersion(5).Build()

	err := a.Save(ctx, rec)
	assert.Error(t, err)
}

func TestHistoryReturnsAllVersions(t *testing.T) {
	ctx := context.Background()
	a := New()
	objID := uuid.New()
	typeID := uuid.New()

	v0 := record.NewBuilder(objID, typeID).SetState("a").Build()
	require.NoError(t, a.Save(ctx, v0))
	v1 := record.ChildBuilder(v0).SetState("b").Build()
	require.NoError(t, a.Save(ctx, v1))

	hist, err := a.History(ctx, objID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
	assert.Equal(t, "a", hist[0].State())
	assert.Equal(t, "b", hist[1].State())
}

func TestFindMatchesLatestVersionOnly(t *testing.T) {
	ctx := context.Background()
	a := New()
	objID := uuid.New()
	typeID := uuid.New()

	v0 := record.NewBuilder(objID, typeID).SetState(map[string]interface{}{"name": "old"}).Build()
	require.NoError(t, a.Save(ctx, v0))
	v1 := record.ChildBuilder(v0).SetState(map[string]interface{}{"name": "new"}).Build()
	require.NoError(t, a.Save(ctx, v1))

	matches, err := a.Find(ctx, archive.FindOptions{Filter: map[string]interface{}{"name": "new"}})
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	noMatches, err := a.Find(ctx, archive.FindOptions{Filter: map[string]interface{}{"name": "old"}})
	require.NoError(t, err)
	assert.Empty(t, noMatches)
}

func TestMetaCreateIndexEnforcesUniqueness(t *testing.T) {
	ctx := context.Background()
	a := New()
	require.NoError(t, a.MetaCreateIndex(ctx, []string{"email"}, true, []string{"email"}))

	id1 := uuid.New()
	id2 := uuid.New()
	require.NoError(t, a.MetaSet(ctx, id1, map[string]interface{}{"email": "a@example.com"}))

	err := a.MetaSet(ctx, id2, map[string]interface{}{"email": "a@example.com"})
	assert.Error(t, err)
}

func TestRefGraphOutgoingFindsEmbeddedReference(t *testing.T) {
	ctx := context.Background()
	a := New()
	typeID := uuid.New()

	targetID := uuid.New()
	target := record.NewBuilder(targetID, typeID).SetState("leaf").Build()
	require.NoError(t, a.Save(ctx, target))

	sourceID := uuid.New()
	source := record.NewBuilder(sourceID, typeID).SetState(map[string]interface{}{
		archive.RefMarkerKey: []interface{}{targetID, 0},
	}).Build()
	require.NoError(t, a.Save(ctx, source))

	refs, err := a.RefGraph(ctx, sourceID, archive.Outgoing, 0)
	require.NoError(t, err)
	assert.Contains(t, refs, targetID)
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := New()

	f, err := a.CreateFile(ctx, "note.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)

	reopened, err := a.OpenFile(ctx, f.ID())
	require.NoError(t, err)
	buf := make([]byte, 5)
	n, err := reopened.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}
