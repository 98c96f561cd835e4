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

package depositor

import (
	"reflect"
	"testing"

	"github.com/archivian/historian/primitive"
	"github.com/archivian/historian/typereg"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Point struct {
	X int64
	Y int64
}

func TestSaveStateAndLoadStateRoundTrip(t *testing.T) {
	reg := typereg.New()
	typeID := uuid.New()
	helper := typereg.NewReflectHelper(typeID, Point{}, 0)
	require.NoError(t, reg.Register(reflect.TypeOf(Point{}), helper))

	d := New(reg, nil, nil)

	p := Point{X: 1, Y: 2}
	state, schema, err := d.SaveState(&p)
	require.NoError(t, err)
	require.Len(t, schema, 1)

	var created []string
	obj, err := d.LoadState(state, schema, func(path primitive.Path, v interface{}) {
		created = append(created, path.String())
	})
	require.NoError(t, err)

	loaded, ok := obj.(*Point)
	require.True(t, ok)
	assert.Equal(t, p, *loaded)
}
