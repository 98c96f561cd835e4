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

package migrate

import (
	"context"
	"testing"

	"github.com/archivian/historian/archive/memdb"
	"github.com/archivian/historian/record"
	"github.com/archivian/historian/typereg"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addedMiddleInitial is a one-step ObjectMigration: version 1 adds a
// "Middle" field defaulted to "".
type addedMiddleInitial struct{}

func (addedMiddleInitial) Version() int           { return 1 }
func (addedMiddleInitial) Previous() ObjectMigration { return nil }
func (addedMiddleInitial) Upgrade(savedState interface{}) (interface{}, error) {
	state := savedState.(map[string]interface{})
	state["Middle"] = ""
	return state, nil
}

type personHelper struct {
	typeID uuid.UUID
}

func (h personHelper) TypeID() uuid.UUID  { return h.typeID }
func (h personHelper) Immutable() bool    { return false }
func (h personHelper) Version() int       { return 1 }
func (h personHelper) Migration() ObjectMigration { return addedMiddleInitial{} }

func (h personHelper) SaveInstanceState(obj interface{}, _ typereg.Saver) (interface{}, error) {
	return obj, nil
}
func (h personHelper) LoadInstanceState(obj interface{}, savedState interface{}, _ typereg.Loader) error {
	return nil
}
func (h personHelper) New(_ interface{}) (interface{}, error) { return nil, nil }

type fakeRegistry struct {
	helpers []typereg.TypeHelper
}

func (r fakeRegistry) Helpers() []typereg.TypeHelper { return r.helpers }

func TestMigrateAllUpgradesOutdatedRecordsInPlace(t *testing.T) {
	ctx := context.Background()
	arc := memdb.New()

	typeID := uuid.New()
	objID, err := arc.CreateID(ctx)
	require.NoError(t, err)

	state := map[string]interface{}{"First": "Ada", "Last": "Lovelace"}
	schema := record.StateSchema{{Path: nil, TypeID: typeID, Version: 0}}
	rec := record.NewBuilder(objID, typeID).SetState(state).SetStateTypes(schema).Build()
	require.NoError(t, arc.Save(ctx, rec))

	registry := fakeRegistry{helpers: []typereg.TypeHelper{personHelper{typeID: typeID}}}
	engine := New(arc, registry)

	n, err := engine.MigrateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	latest, err := arc.LoadLatest(ctx, objID)
	require.NoError(t, err)
	migratedState := latest.State().(map[string]interface{})
	assert.Equal(t, "", migratedState["Middle"])
	assert.Equal(t, 1, latest.GetStateSchema()[0].Version)
}
