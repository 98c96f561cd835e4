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

package refgraph

import (
	"context"
	"testing"

	"github.com/archivian/historian/archive"
	"github.com/archivian/historian/archive/memdb"
	"github.com/archivian/historian/record"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsReferencedReflectsAnIncomingReference(t *testing.T) {
	ctx := context.Background()
	arc := memdb.New()

	target, err := arc.CreateID(ctx)
	require.NoError(t, err)
	require.NoError(t, arc.Save(ctx, record.NewBuilder(target, uuid.New()).SetState("leaf").Build()))

	svc := New(arc)
	referenced, _, err := svc.IsReferenced(ctx, target)
	require.NoError(t, err)
	assert.False(t, referenced)

	referrer, err := arc.CreateID(ctx)
	require.NoError(t, err)
	refState := map[string]interface{}{
		archive.RefMarkerKey: []interface{}{target, 0},
	}
	require.NoError(t, arc.Save(ctx, record.NewBuilder(referrer, uuid.New()).SetState(refState).Build()))

	referenced, referrers, err := svc.IsReferenced(ctx, target)
	require.NoError(t, err)
	assert.True(t, referenced)
	assert.Contains(t, referrers, referrer)
}

func TestReachableFromAnyMergesAndDedupsMultipleSeeds(t *testing.T) {
	ctx := context.Background()
	arc := memdb.New()

	shared, err := arc.CreateID(ctx)
	require.NoError(t, err)
	require.NoError(t, arc.Save(ctx, record.NewBuilder(shared, uuid.New()).SetState("leaf").Build()))

	seedA, err := arc.CreateID(ctx)
	require.NoError(t, err)
	require.NoError(t, arc.Save(ctx, record.NewBuilder(seedA, uuid.New()).
		SetState(map[string]interface{}{archive.RefMarkerKey: []interface{}{shared, 0}}).Build()))

	seedB, err := arc.CreateID(ctx)
	require.NoError(t, err)
	require.NoError(t, arc.Save(ctx, record.NewBuilder(seedB, uuid.New()).
		SetState(map[string]interface{}{archive.RefMarkerKey: []interface{}{shared, 0}}).Build()))

	svc := New(arc)
	union, err := svc.ReachableFromAny(ctx, []uuid.UUID{seedA, seedB}, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{shared}, union)
}
