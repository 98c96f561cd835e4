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

package equator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqReportsStructuralEquality(t *testing.T) {
	eq := New(NewKeccakHasher)

	a := map[string]interface{}{"x": int64(1), "y": []interface{}{"a", "b"}}
	b := map[string]interface{}{"y": []interface{}{"a", "b"}, "x": int64(1)}

	assert.True(t, eq.Eq(a, b), "map key order must not affect the hash")
}

func TestEqDetectsDifference(t *testing.T) {
	eq := New(NewKeccakHasher)

	a := map[string]interface{}{"x": int64(1)}
	b := map[string]interface{}{"x": int64(2)}

	assert.False(t, eq.Eq(a, b))
}

func TestHashIsDeterministic(t *testing.T) {
	eq := New(NewKeccakHasher)
	v := []interface{}{int64(1), "two", nil, true}

	assert.Equal(t, eq.Hash(v), eq.Hash(v))
}
