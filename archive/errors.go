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

package archive

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel error kinds, following the teacher's own convention of
// package-level error vars (snapshot.go's ErrSnapshotStale) rather than an
// external errors library.
var (
	ErrNotFound        = errors.New("archive: not found")
	ErrObjectDeleted   = errors.New("archive: object is deleted")
	ErrModification    = errors.New("archive: modification error")
	ErrConnection      = errors.New("archive: connection error")
	ErrMigration       = errors.New("archive: migration error")
	ErrVersion         = errors.New("archive: version error")
)

// DuplicateKeyError reports a write that violated a unique constraint, e.g.
// MetaCreateIndex(unique: true).
type DuplicateKeyError struct {
	Key interface{}
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("archive: duplicate key %v", e.Key)
}

// ReferenceError reports an attempted delete of objects that are still
// referenced by others, carrying the ids of the referrers so the caller can
// report exactly what's blocking the delete (spec.md §4.10).
type ReferenceError struct {
	ObjID       uuid.UUID
	ReferredBy  []uuid.UUID
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("archive: cannot delete %s: still referenced by %d object(s)", e.ObjID, len(e.ReferredBy))
}
