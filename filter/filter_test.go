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

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparisonEqRendersBareValue(t *testing.T) {
	expr := Field("name", Eq("frank"))
	assert.Equal(t, map[string]interface{}{"name": "frank"}, expr.QueryExpr())
}

func TestComparisonGtRendersOperator(t *testing.T) {
	expr := Field("age", Gt(18))
	assert.Equal(t, map[string]interface{}{"age": map[string]interface{}{"$gt": 18}}, expr.QueryExpr())
}

func TestAndFusesNestedAnds(t *testing.T) {
	a := Field("x", Eq(1))
	b := Field("y", Eq(2))
	c := Field("z", Eq(3))

	nested := And(And(a, b), c)
	l := nested.(logical)
	assert.Len(t, l.operand, 3)
}

func TestAndWithSingleOperandUnwraps(t *testing.T) {
	a := Field("x", Eq(1))
	single := And(a)
	assert.Equal(t, a.QueryExpr(), single.QueryExpr())
}

func TestBuildExprFromMap(t *testing.T) {
	expr, err := BuildExpr(map[string]interface{}{"age": map[string]interface{}{"$gt": 18}})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"age": map[string]interface{}{"$gt": 18}}, expr.QueryExpr())
}

func TestBuildExprImplicitEquality(t *testing.T) {
	expr, err := BuildExpr(map[string]interface{}{"name": "frank"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "frank"}, expr.QueryExpr())
}

func TestQueryFilterCombinesAppendedExpressions(t *testing.T) {
	q := NewQuery(Field("x", Eq(1)), Field("y", Gt(2)))
	filter := q.Filter()
	assert.Equal(t, map[string]interface{}{
		"$and": []map[string]interface{}{
			{"x": 1},
			{"y": map[string]interface{}{"$gt": 2}},
		},
	}, filter)
}
