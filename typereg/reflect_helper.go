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
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// ReflectHelper is a convenience TypeHelper that saves and restores a
// struct's exported fields by reflection, so a caller who just wants "save
// my plain struct" doesn't have to hand-write a TypeHelper. Restored from
// original_source/mincepy/common_helpers.py's WrapperHelper, which the
// distilled spec dropped.
type ReflectHelper struct {
	typeID    uuid.UUID
	sample    reflect.Type
	version   int
	immutable bool
}

// NewReflectHelper builds a ReflectHelper for the struct type of zeroValue
// (a T or a *T; either way the helper saves/restores T's exported fields).
func NewReflectHelper(typeID uuid.UUID, zeroValue interface{}, version int) *ReflectHelper {
	t := reflect.TypeOf(zeroValue)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return &ReflectHelper{typeID: typeID, sample: t, version: version}
}

func (h *ReflectHelper) TypeID() uuid.UUID { return h.typeID }
func (h *ReflectHelper) Immutable() bool   { return h.immutable }
func (h *ReflectHelper) Version() int      { return h.version }

// SaveInstanceState walks obj's exported fields into a
// map[string]interface{} primitive tree.
func (h *ReflectHelper) SaveInstanceState(obj interface{}, _ Saver) (interface{}, error) {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Type() != h.sample {
		return nil, fmt.Errorf("typereg: ReflectHelper for %s cannot save %T", h.sample, obj)
	}
	state := map[string]interface{}{}
	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		state[field.Name] = v.Field(i).Interface()
	}
	return state, nil
}

// LoadInstanceState writes a previously saved map[string]interface{} back
// into obj's exported fields.
func (h *ReflectHelper) LoadInstanceState(obj interface{}, savedState interface{}, _ Loader) error {
	state, ok := savedState.(map[string]interface{})
	if !ok {
		return fmt.Errorf("typereg: ReflectHelper expected map[string]interface{}, got %T", savedState)
	}
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("typereg: LoadInstanceState requires a pointer, got %T", obj)
	}
	v = v.Elem()
	for name, value := range state {
		field := v.FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		fv := reflect.ValueOf(value)
		if fv.IsValid() && fv.Type().AssignableTo(field.Type()) {
			field.Set(fv)
		}
	}
	return nil
}

// New allocates a zero value of the wrapped struct type, ready for
// LoadInstanceState to populate.
func (h *ReflectHelper) New(_ interface{}) (interface{}, error) {
	return reflect.New(h.sample).Interface(), nil
}
