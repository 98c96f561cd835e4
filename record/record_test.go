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

package record

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuilderStartsAtVersionZero(t *testing.T) {
	objID := uuid.New()
	typeID := uuid.New()
	rec := NewBuilder(objID, typeID).SetState("hello").Build()

	assert.Equal(t, 0, rec.Version())
	assert.Equal(t, objID, rec.ObjID())
	assert.Equal(t, typeID, rec.TypeID())
	assert.Equal(t, "hello", rec.State())
	assert.False(t, rec.IsDeletedRecord())
}

func TestChildBuilderBumpsVersionAndKeepsType(t *testing.T) {
	objID := uuid.New()
	typeID := uuid.New()
	v0 := NewBuilder(objID, typeID).SetState(1).Build()
	v1 := ChildBuilder(v0).SetState(2).Build()

	assert.Equal(t, 1, v1.Version())
	assert.Equal(t, typeID, v1.TypeID())
	assert.Equal(t, objID, v1.ObjID())
}

func TestMakeDeletedBuilderMarksDeletion(t *testing.T) {
	objID := uuid.New()
	typeID := uuid.New()
	v0 := NewBuilder(objID, typeID).SetState(1).Build()
	v1 := MakeDeletedBuilder(v0).Build()

	assert.True(t, v1.IsDeletedRecord())
	assert.Equal(t, 1, v1.Version())
}

func TestSnapshotIDRoundTrip(t *testing.T) {
	objID := uuid.New()
	sid := NewSnapshotID(objID, 3)

	parsed, err := ParseSnapshotID(sid.String())
	require.NoError(t, err)
	assert.Equal(t, sid, parsed)
}

func TestParseSnapshotIDRejectsMissingHash(t *testing.T) {
	_, err := ParseSnapshotID("not-a-snapshot-id")
	assert.Error(t, err)
}

func TestCopyBuilderStartsFreshObjectVersionZero(t *testing.T) {
	srcID := uuid.New()
	typeID := uuid.New()
	src := NewBuilder(srcID, typeID).SetState("state").Build()

	dstID := uuid.New()
	dst := CopyBuilder(dstID, src).Build()

	assert.Equal(t, dstID, dst.ObjID())
	assert.Equal(t, 0, dst.Version())
	assert.Equal(t, src.State(), dst.State())
}
