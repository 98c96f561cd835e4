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

// Package equator computes a content hash over an object's saved state so
// the historian can tell whether two versions are actually identical before
// writing a needless new version.
package equator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Hasher is the digest primitive an Equator is built on. Reset clears any
// accumulated state, Write feeds in more bytes, Sum returns the digest so
// far without finalizing the underlying state.
type Hasher interface {
	Reset()
	Write(p []byte)
	Sum() []byte
}

// Equator hashes and compares primitive state trees (as produced by
// depositor.Depositor.SaveState), so the historian can short-circuit a save when
// nothing actually changed.
type Equator struct {
	newHasher func() Hasher
}

// New builds an Equator around a Hasher factory.
func New(newHasher func() Hasher) *Equator {
	return &Equator{newHasher: newHasher}
}

// Hash computes the content hash of a primitive value tree. Map keys are
// sorted before hashing so the result is independent of map iteration order.
func (e *Equator) Hash(value interface{}) []byte {
	h := e.newHasher()
	hashInto(h, value)
	return h.Sum()
}

// Eq reports whether a and b hash to the same digest, which implies (modulo
// hash collisions) structural equality of their primitive state trees.
func (e *Equator) Eq(a, b interface{}) bool {
	ha := e.Hash(a)
	hb := e.Hash(b)
	if len(ha) != len(hb) {
		return false
	}
	for i := range ha {
		if ha[i] != hb[i] {
			return false
		}
	}
	return true
}

func hashInto(h Hasher, value interface{}) {
	switch val := value.(type) {
	case nil:
		// spec §4.3: "none: the bytes \"None\"".
		h.Write([]byte("None"))
	case bool:
		// spec §4.3: "booleans: single byte 0x00/0x01" — no type tag.
		if val {
			h.Write([]byte{0x01})
		} else {
			h.Write([]byte{0x00})
		}
	case int64:
		h.Write([]byte(fmt.Sprintf("%d", val)))
	case float64:
		// spec §4.3: "reals: %.14g canonical text".
		h.Write([]byte(fmt.Sprintf("%.14g", val)))
	case string:
		h.Write([]byte(val))
	case []byte:
		h.Write(val)
	case []interface{}:
		for _, item := range val {
			hashInto(h, item)
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			hashInto(h, val[k])
		}
	case uuid.UUID:
		// spec §4.3: "uuid: 16-byte representation".
		h.Write(val[:])
	case time.Time:
		h.Write([]byte{0x08})
		h.Write([]byte(val.UTC().Format(time.RFC3339Nano)))
	default:
		h.Write([]byte{0xff})
		h.Write([]byte(fmt.Sprintf("%v", val)))
	}
}
