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

// Query bundles a filter expression with the find() modifiers spec.md §4.6
// and §4.7 mention: limit, sort and skip. Grounded on expr.py's Query class.
type Query struct {
	exprs []Expr
	Limit *int
	Sort  map[string]int // field -> 1 (ascending) or -1 (descending)
	Skip  *int
}

// NewQuery builds a Query from zero or more expressions, implicitly anded
// together.
func NewQuery(exprs ...Expr) *Query {
	q := &Query{}
	q.Append(exprs...)
	return q
}

// Append adds more expressions to the query's implicit "and".
func (q *Query) Append(exprs ...Expr) {
	q.exprs = append(q.exprs, exprs...)
}

// Copy returns an independent copy of the query.
func (q *Query) Copy() *Query {
	out := &Query{exprs: append([]Expr(nil), q.exprs...), Limit: q.Limit, Skip: q.Skip}
	if q.Sort != nil {
		out.Sort = make(map[string]int, len(q.Sort))
		for k, v := range q.Sort {
			out.Sort[k] = v
		}
	}
	return out
}

// Filter renders the accumulated expressions as a single query dict.
func (q *Query) Filter() map[string]interface{} {
	if len(q.exprs) == 0 {
		return Empty{}.QueryExpr()
	}
	return And(q.exprs...).QueryExpr()
}
