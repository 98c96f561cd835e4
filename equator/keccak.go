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

package equator

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

// keccakHasher wraps sha3.NewLegacyKeccak256, the same hash primitive the
// teacher's core/state/snapshot package uses for slim-account digests.
type keccakHasher struct {
	h hash.Hash
}

// NewKeccakHasher is the default Hasher, built on golang.org/x/crypto/sha3.
func NewKeccakHasher() Hasher {
	return &keccakHasher{h: sha3.NewLegacyKeccak256()}
}

func (k *keccakHasher) Reset() {
	k.h.Reset()
}

func (k *keccakHasher) Write(p []byte) {
	k.h.Write(p)
}

func (k *keccakHasher) Sum() []byte {
	return k.h.Sum(nil)
}
