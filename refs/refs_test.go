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

package refs

import (
	"testing"

	"github.com/archivian/historian/record"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Widget struct {
	Name string
}

type stubLoader struct {
	widget *Widget
}

func (s *stubLoader) LoadRef(id record.SnapshotID) (interface{}, error) {
	return s.widget, nil
}

func TestLiveReferenceDerefsWithoutLoader(t *testing.T) {
	w := &Widget{Name: "gear"}
	ref := Live(record.NewSnapshotID(uuid.New(), 0), w)

	assert.True(t, ref.IsLive())
	got, err := ref.Deref()
	require.NoError(t, err)
	assert.Same(t, w, got)
}

func TestLazyReferenceResolvesOnFirstDeref(t *testing.T) {
	w := &Widget{Name: "cog"}
	loader := &stubLoader{widget: w}
	ref := Lazy[Widget](record.NewSnapshotID(uuid.New(), 0), loader)

	assert.False(t, ref.IsLive())
	got, err := ref.Deref()
	require.NoError(t, err)
	assert.Equal(t, "cog", got.Name)
}
