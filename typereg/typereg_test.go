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

package typereg

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Point struct {
	X int64
	Y int64
}

func TestRegisterAndHelperForType(t *testing.T) {
	reg := New()
	typeID := uuid.New()
	helper := NewReflectHelper(typeID, Point{}, 0)

	require.NoError(t, reg.Register(reflect.TypeOf(Point{}), helper))

	got, err := reg.HelperForType(reflect.TypeOf(Point{}))
	require.NoError(t, err)
	assert.Equal(t, typeID, got.TypeID())

	byID, err := reg.HelperForTypeID(typeID)
	require.NoError(t, err)
	assert.Equal(t, typeID, byID.TypeID())
}

func TestHelperForTypeUnregisteredFails(t *testing.T) {
	reg := New()
	_, err := reg.HelperForType(reflect.TypeOf(Point{}))
	assert.Error(t, err)
}

func TestReflectHelperSaveAndLoadRoundTrip(t *testing.T) {
	helper := NewReflectHelper(uuid.New(), Point{}, 0)

	p := Point{X: 3, Y: 4}
	state, err := helper.SaveInstanceState(&p, nil)
	require.NoError(t, err)

	newObj, err := helper.New(state)
	require.NoError(t, err)

	require.NoError(t, helper.LoadInstanceState(newObj, state, nil))
	assert.Equal(t, &p, newObj)
}
