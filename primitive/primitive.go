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

// Package primitive centralises the runtime check for which values are
// allowed to appear in a saved object's state tree: bool, int64, float64,
// string, []byte, nil, time.Time, uuid.UUID, []interface{} and
// map[string]interface{}, recursively.
package primitive

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IsPrimitive reports whether v is a value (or a container of values) the
// historian is allowed to store directly in an object's state.
func IsPrimitive(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool, int64, float64, string:
		return true
	case []byte:
		return true
	case time.Time:
		return true
	case uuid.UUID:
		return true
	case []interface{}:
		for _, item := range val {
			if !IsPrimitive(item) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		for _, item := range val {
			if !IsPrimitive(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Validate returns an error describing the first non-primitive value found,
// or nil if v is entirely made of primitives.
func Validate(v interface{}) error {
	switch val := v.(type) {
	case []interface{}:
		for _, item := range val {
			if err := Validate(item); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		for _, item := range val {
			if err := Validate(item); err != nil {
				return err
			}
		}
		return nil
	}
	if IsPrimitive(v) {
		return nil
	}
	return fmt.Errorf("primitive: value of type %T is not a primitive", v)
}

// PathElem is one step into a state tree: either a map key or a list index.
type PathElem struct {
	Key   string
	Index int
	IsKey bool
}

// Key builds a map-key path element.
func Key(name string) PathElem { return PathElem{Key: name, IsKey: true} }

// Idx builds a list-index path element.
func Idx(i int) PathElem { return PathElem{Index: i, IsKey: false} }

// Path is a sequence of PathElem identifying a location inside a state tree;
// a nil Path is the root.
type Path []PathElem

// Append returns a new Path with elem appended, leaving the receiver
// untouched.
func (p Path) Append(elem PathElem) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = elem
	return out
}

// Equal reports whether two paths name the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	out := ""
	for _, elem := range p {
		if elem.IsKey {
			out += "." + elem.Key
		} else {
			out += fmt.Sprintf("[%d]", elem.Index)
		}
	}
	return out
}
