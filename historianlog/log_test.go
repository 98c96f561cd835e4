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

package historianlog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoWritesKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LvlInfo)

	l.Info("saved object", "obj_id", "abc", "version", 1)

	out := buf.String()
	assert.Contains(t, out, "saved object")
	assert.Contains(t, out, "obj_id=abc")
	assert.Contains(t, out, "version=1")
}

func TestDebugIsFilteredBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LvlInfo)

	l.Debug("too verbose")

	assert.Empty(t, buf.String())
}

func TestChildLoggerIncludesParentContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LvlInfo).New("component", "historian")

	l.Info("ready")

	assert.Contains(t, buf.String(), "component=historian")
}
