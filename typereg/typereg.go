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

// Package typereg holds the mapping between Go types and the TypeHelper that
// knows how to save and load them. Lookup falls back from an exact type
// match to a registered supertype chain, mirroring how the teacher's
// core/state/snapshot package falls back from a concrete *diffLayer/
// *diskLayer match to the shared snapshot interface.
package typereg

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// TypeHelper knows how to reduce one Go type to primitive state and restore
// it again. Immutable types skip the live-object/cycle bookkeeping the
// depositor otherwise performs.
type TypeHelper interface {
	TypeID() uuid.UUID
	Immutable() bool
	// Version is the current schema version of the saved state this helper
	// produces; -1 means "unversioned".
	Version() int
	SaveInstanceState(obj interface{}, saver Saver) (interface{}, error)
	LoadInstanceState(obj interface{}, savedState interface{}, loader Loader) error
	New(savedState interface{}) (interface{}, error)
}

// Saver is the minimal depositor surface a TypeHelper needs while encoding.
type Saver interface {
	Ref(obj interface{}) (interface{}, error)
}

// Loader is the minimal depositor surface a TypeHelper needs while decoding.
type Loader interface {
	Load(ref interface{}) (interface{}, error)
}

type entry struct {
	helper      TypeHelper
	goType      reflect.Type
	supertypes  []reflect.Type
}

// Registry maps both ways: Go type -> TypeHelper, and TypeHelper.TypeID() ->
// TypeHelper, so the historian can resolve either direction.
type Registry struct {
	mu       sync.RWMutex
	byType   map[reflect.Type]*entry
	byTypeID map[uuid.UUID]*entry
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{
		byType:   map[reflect.Type]*entry{},
		byTypeID: map[uuid.UUID]*entry{},
	}
}

// Register associates a Go type with its TypeHelper. supertypes, if given,
// are additional Go types (normally interfaces implemented by goType) that
// should also resolve to this helper when no more specific helper exists.
func (r *Registry) Register(goType reflect.Type, helper TypeHelper, supertypes ...reflect.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byTypeID[helper.TypeID()]; exists {
		return fmt.Errorf("typereg: type id %s already registered", helper.TypeID())
	}
	e := &entry{helper: helper, goType: goType, supertypes: supertypes}
	r.byType[goType] = e
	r.byTypeID[helper.TypeID()] = e
	return nil
}

// HelperForType resolves the helper for a concrete Go type: exact match
// first, then each registered supertype in order, matching spec.md §4.1's
// "exact type match, then fall back through the registered supertype chain".
func (r *Registry) HelperForType(goType reflect.Type) (TypeHelper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.byType[goType]; ok {
		return e.helper, nil
	}
	if goType.Kind() == reflect.Ptr {
		if e, ok := r.byType[goType.Elem()]; ok {
			return e.helper, nil
		}
	}
	for _, e := range r.byType {
		for _, super := range e.supertypes {
			if goType.Implements(super) || goType == super {
				return e.helper, nil
			}
		}
	}
	return nil, fmt.Errorf("typereg: no helper registered for type %s", goType)
}

// HelperForTypeID resolves the helper that produced records with the given
// type id, used when loading a record back.
func (r *Registry) HelperForTypeID(typeID uuid.UUID) (TypeHelper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byTypeID[typeID]
	if !ok {
		return nil, fmt.Errorf("typereg: no helper registered for type id %s", typeID)
	}
	return e.helper, nil
}

// Helpers returns every registered TypeHelper, used by the migration engine
// to discover which types have a current version worth migrating towards.
func (r *Registry) Helpers() []TypeHelper {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]TypeHelper, 0, len(r.byTypeID))
	for _, e := range r.byTypeID {
		out = append(out, e.helper)
	}
	return out
}
