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
	"reflect"
	"testing"

	"github.com/archivian/historian/archive/memdb"
	"github.com/archivian/historian/typereg"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Car struct {
	Make  string
	Model string
	Miles int64
}

func newTestHistorian(t *testing.T) *Historian {
	t.Helper()
	h, err := New(memdb.New())
	require.NoError(t, err)
	typeID := uuid.New()
	helper := typereg.NewReflectHelper(typeID, Car{}, 0)
	require.NoError(t, h.RegisterType(reflect.TypeOf(Car{}), helper))
	return h
}

func TestSaveThenGetReturnsTheSameLiveObject(t *testing.T) {
	h := newTestHistorian(t)
	ctx := context.Background()

	car := &Car{Make: "Volvo", Model: "240", Miles: 4}
	id, err := h.Save(ctx, car)
	require.NoError(t, err)
	assert.Equal(t, 0, id.Version)

	loaded, err := h.Get(ctx, id.ObjID)
	require.NoError(t, err)
	assert.Same(t, car, loaded)
}

func TestSavingTwiceWithoutChangeSkipsANewVersion(t *testing.T) {
	h := newTestHistorian(t)
	ctx := context.Background()

	car := &Car{Make: "Volvo", Model: "240", Miles: 4}
	first, err := h.Save(ctx, car)
	require.NoError(t, err)

	second, err := h.Save(ctx, car)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSavingAfterAMutationCreatesANewVersion(t *testing.T) {
	h := newTestHistorian(t)
	ctx := context.Background()

	car := &Car{Make: "Volvo", Model: "240", Miles: 4}
	first, err := h.Save(ctx, car)
	require.NoError(t, err)

	car.Miles = 5
	second, err := h.Save(ctx, car)
	require.NoError(t, err)

	assert.Equal(t, first.ObjID, second.ObjID)
	assert.Equal(t, first.Version+1, second.Version)

	history, err := h.History(ctx, first.ObjID, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(4), history[0].State().(map[string]interface{})["Miles"])
}

func TestDeleteSucceedsWhenUnreferenced(t *testing.T) {
	h := newTestHistorian(t)
	ctx := context.Background()

	referred := &Car{Make: "Saab", Model: "900", Miles: 1}
	_, err := h.Save(ctx, referred)
	require.NoError(t, err)

	err = h.Delete(ctx, referred, false)
	require.NoError(t, err) // nothing refers to it yet
}
