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

package historian

import (
	"os"

	"github.com/archivian/historian/historianlog"
)

// ArchiveURIEnv is the environment variable historian.DefaultArchiveURI
// reads, matching spec.md §6.4.
const ArchiveURIEnv = "ARCHIVE_URI"

// DefaultArchiveURI returns the value of ARCHIVE_URI, or "" if it is unset.
func DefaultArchiveURI() string {
	return os.Getenv(ArchiveURIEnv)
}

// Option configures a Historian at construction time, the teacher's
// functional-options idiom (see cmd/*'s flag wiring).
type Option func(*Historian)

// WithSnapshotCacheSize sets the bounded LRU size for cached historical
// snapshots (default 1024).
func WithSnapshotCacheSize(n int) Option {
	return func(h *Historian) {
		h.snapshotCacheSize = n
	}
}

// WithLogger overrides the default historianlog logger.
func WithLogger(logger *historianlog.Logger) Option {
	return func(h *Historian) {
		h.log = logger
	}
}
