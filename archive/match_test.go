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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchBareEquality(t *testing.T) {
	doc := map[string]interface{}{"name": "frank"}
	assert.True(t, Match(doc, map[string]interface{}{"name": "frank"}))
	assert.False(t, Match(doc, map[string]interface{}{"name": "bob"}))
}

func TestMatchComparisonOperator(t *testing.T) {
	doc := map[string]interface{}{"age": int64(20)}
	assert.True(t, Match(doc, map[string]interface{}{"age": map[string]interface{}{"$gt": int64(18)}}))
	assert.False(t, Match(doc, map[string]interface{}{"age": map[string]interface{}{"$lt": int64(18)}}))
}

func TestMatchAndOr(t *testing.T) {
	doc := map[string]interface{}{"age": int64(20), "name": "frank"}
	and := map[string]interface{}{"$and": []map[string]interface{}{
		{"age": map[string]interface{}{"$gt": int64(18)}},
		{"name": "frank"},
	}}
	assert.True(t, Match(doc, and))

	or := map[string]interface{}{"$or": []map[string]interface{}{
		{"name": "nobody"},
		{"name": "frank"},
	}}
	assert.True(t, Match(doc, or))
}

func TestMatchNestedField(t *testing.T) {
	doc := map[string]interface{}{"addr": map[string]interface{}{"city": "nyc"}}
	assert.True(t, Match(doc, map[string]interface{}{"addr.city": "nyc"}))
}

func TestMatchExists(t *testing.T) {
	doc := map[string]interface{}{"name": "frank"}
	assert.True(t, Match(doc, map[string]interface{}{"name": map[string]interface{}{"$exists": true}}))
	assert.False(t, Match(doc, map[string]interface{}{"missing": map[string]interface{}{"$exists": true}}))
}
