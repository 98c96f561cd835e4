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

package memdb

import (
	"bytes"
	"context"
	"fmt"

	"github.com/archivian/historian/archive"
	"github.com/google/uuid"
)

// memFile is an in-memory archive.FileHandle backed by a byte buffer.
type memFile struct {
	id       uuid.UUID
	filename string
	buf      bytes.Buffer
	readPos  int
}

func (f *memFile) ID() uuid.UUID     { return f.id }
func (f *memFile) Filename() string  { return f.filename }
func (f *memFile) Write(p []byte) (int, error) { return f.buf.Write(p) }

func (f *memFile) Read(p []byte) (int, error) {
	data := f.buf.Bytes()
	if f.readPos >= len(data) {
		return 0, nil
	}
	n := copy(p, data[f.readPos:])
	f.readPos += n
	return n, nil
}

func (f *memFile) Close() error { return nil }

func (a *Archive) CreateFile(_ context.Context, filename string) (archive.FileHandle, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	f := &memFile{id: id, filename: filename}

	a.mu.Lock()
	a.files[id] = f
	a.mu.Unlock()

	return f, nil
}

func (a *Archive) OpenFile(_ context.Context, fileID uuid.UUID) (archive.FileHandle, error) {
	a.mu.RLock()
	f, ok := a.files[fileID]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: file %s", archive.ErrNotFound, fileID)
	}
	return &memFile{id: f.id, filename: f.filename, buf: *bytes.NewBuffer(f.buf.Bytes())}, nil
}

func (a *Archive) SchemaVersion(_ context.Context) (int, error) {
	return 1, nil
}

func (a *Archive) Close() error { return nil }
