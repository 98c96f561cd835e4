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

package primitive

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type notPrimitive struct{ X int }

func TestIsPrimitiveScalarsAndContainers(t *testing.T) {
	assert.True(t, IsPrimitive(nil))
	assert.True(t, IsPrimitive(true))
	assert.True(t, IsPrimitive(int64(42)))
	assert.True(t, IsPrimitive(3.14))
	assert.True(t, IsPrimitive("str"))
	assert.True(t, IsPrimitive([]byte("bytes")))
	assert.True(t, IsPrimitive(time.Now()))
	assert.True(t, IsPrimitive(uuid.New()))
	assert.True(t, IsPrimitive([]interface{}{int64(1), "two", nil}))
	assert.True(t, IsPrimitive(map[string]interface{}{"a": int64(1), "b": []interface{}{"x"}}))
}

func TestIsPrimitiveRejectsStructsAndNestedBadValues(t *testing.T) {
	assert.False(t, IsPrimitive(notPrimitive{X: 1}))
	assert.False(t, IsPrimitive([]interface{}{notPrimitive{}}))
	assert.False(t, IsPrimitive(map[string]interface{}{"a": notPrimitive{}}))
}

func TestValidateReportsOffendingType(t *testing.T) {
	err := Validate(notPrimitive{X: 1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "notPrimitive")
}

func TestPathAppendAndEqual(t *testing.T) {
	p := Path(nil).Append(Key("a")).Append(Idx(2)).Append(Key("b"))
	other := Path{Key("a"), Idx(2), Key("b")}
	assert.True(t, p.Equal(other))
	assert.Equal(t, ".a[2].b", p.String())
}
