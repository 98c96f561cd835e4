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

// Package filter implements the archive-agnostic query expression algebra
// spec.md §4.6 describes, rendering to the map[string]interface{} query dict
// an Archive.Find consumes. Grounded line for line on
// original_source/mincepy/expr.py.
package filter

import "fmt"

// Expr is any node of the filter tree: a comparison, a logical combinator,
// or the empty expression.
type Expr interface {
	QueryExpr() map[string]interface{}
}

// And combines exprs such that all must hold.
func (e Empty) And(other Expr) Expr { return combineAnd(e, other) }

// Empty matches everything.
type Empty struct{}

func (Empty) QueryExpr() map[string]interface{} { return map[string]interface{}{} }

// operator is one comparison operator applied to a value, e.g. {"$gt": 5}.
type operator struct {
	oper  string
	value interface{}
}

func (o operator) QueryExpr() map[string]interface{} {
	return map[string]interface{}{o.oper: o.value}
}

func Eq(value interface{}) Expr  { return operator{"$eq", value} }
func Ne(value interface{}) Expr  { return operator{"$ne", value} }
func Gt(value interface{}) Expr  { return operator{"$gt", value} }
func Gte(value interface{}) Expr { return operator{"$gte", value} }
func Lt(value interface{}) Expr  { return operator{"$lt", value} }
func Lte(value interface{}) Expr { return operator{"$lte", value} }
func In(values ...interface{}) Expr  { return operator{"$in", values} }
func Nin(values ...interface{}) Expr { return operator{"$nin", values} }
func Exists(value bool) Expr         { return operator{"$exists", value} }

var comparisonOperators = map[string]func(interface{}) Expr{
	"$eq": Eq, "$ne": Ne, "$gt": Gt, "$gte": Gte, "$lt": Lt, "$lte": Lte,
}

// Comparison names which field an operator applies to, e.g. {"name": {"$gt": 5}}.
type Comparison struct {
	Field string
	Expr  Expr
}

func Field(field string, expr Expr) Comparison {
	return Comparison{Field: field, Expr: expr}
}

func (c Comparison) QueryExpr() map[string]interface{} {
	if op, ok := c.Expr.(operator); ok && op.oper == "$eq" {
		// Special case matching expr.py: bare equality skips the "$eq" wrapper.
		return map[string]interface{}{c.Field: op.value}
	}
	return map[string]interface{}{c.Field: c.Expr.QueryExpr()}
}

// logical is the shared shape of $and/$or/$nor: an operator name plus a list
// of child expressions that are fused together when nested under the same
// operator, matching expr.py's And.__and__/Or.__or__ "economise" behaviour.
type logical struct {
	oper    string
	operand []Expr
}

func (l logical) QueryExpr() map[string]interface{} {
	if len(l.operand) == 1 {
		return l.operand[0].QueryExpr()
	}
	rendered := make([]map[string]interface{}, len(l.operand))
	for i, e := range l.operand {
		rendered[i] = e.QueryExpr()
	}
	return map[string]interface{}{l.oper: rendered}
}

// And builds an $and expression, fusing any already-And operands in exprs
// into a single flat list exactly as expr.py's And.__and__ does.
func And(exprs ...Expr) Expr {
	return logical{oper: "$and", operand: fuse("$and", exprs)}
}

// Or builds an $or expression with the same fusing behaviour as And.
func Or(exprs ...Expr) Expr {
	return logical{oper: "$or", operand: fuse("$or", exprs)}
}

// Nor builds a $nor expression (no fusing in the source, matched here).
func Nor(exprs ...Expr) Expr {
	return logical{oper: "$nor", operand: exprs}
}

// Not negates a single expression.
type Not struct{ Operand Expr }

func (n Not) QueryExpr() map[string]interface{} {
	return map[string]interface{}{"$not": n.Operand.QueryExpr()}
}

func fuse(oper string, exprs []Expr) []Expr {
	out := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if l, ok := e.(logical); ok && l.oper == oper {
			out = append(out, l.operand...)
			continue
		}
		out = append(out, e)
	}
	return out
}

func combineAnd(a, b Expr) Expr {
	return And(a, b)
}

// BuildExpr is the dict/tuple-literal expression factory matching
// expr.py's build_expr: given a raw map such as
// {"age": {"$gt": 18}} or {"$and": [...]}, it produces the equivalent Expr
// tree. A value that isn't itself a recognised operator is treated as an
// implicit equality match.
func BuildExpr(item map[string]interface{}) (Expr, error) {
	if len(item) == 0 {
		return Empty{}, nil
	}
	if len(item) > 1 {
		var parts []Expr
		for k, v := range item {
			e, err := buildOne(k, v)
			if err != nil {
				return nil, err
			}
			parts = append(parts, e)
		}
		return And(parts...), nil
	}
	for k, v := range item {
		return buildOne(k, v)
	}
	return Empty{}, nil
}

func buildOne(key string, value interface{}) (Expr, error) {
	if len(key) > 0 && key[0] == '$' {
		if factory, ok := comparisonOperators[key]; ok {
			return factory(value), nil
		}
		switch key {
		case "$and":
			return buildExprList("$and", value, And)
		case "$or":
			return buildExprList("$or", value, Or)
		case "$nor":
			return buildExprList("$nor", value, Nor)
		case "$not":
			sub, ok := value.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("filter: $not expects a sub-expression map, got %T", value)
			}
			inner, err := BuildExpr(sub)
			if err != nil {
				return nil, err
			}
			return Not{Operand: inner}, nil
		case "$in":
			return In(asSlice(value)...), nil
		case "$nin":
			return Nin(asSlice(value)...), nil
		case "$exists":
			b, _ := value.(bool)
			return Exists(b), nil
		}
		return nil, fmt.Errorf("filter: unknown operator %q", key)
	}
	// field match
	if sub, ok := value.(map[string]interface{}); ok {
		inner, err := BuildExpr(sub)
		if err != nil {
			return nil, err
		}
		return Comparison{Field: key, Expr: inner}, nil
	}
	return Comparison{Field: key, Expr: Eq(value)}, nil
}

func buildExprList(oper string, value interface{}, combine func(...Expr) Expr) (Expr, error) {
	items, ok := value.([]map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("filter: %s expects a list of expression maps", oper)
	}
	parts := make([]Expr, 0, len(items))
	for _, item := range items {
		e, err := BuildExpr(item)
		if err != nil {
			return nil, err
		}
		parts = append(parts, e)
	}
	return combine(parts...), nil
}

func asSlice(value interface{}) []interface{} {
	if s, ok := value.([]interface{}); ok {
		return s
	}
	return nil
}

// ToQuery renders any Expr to the archive-facing query dict.
func ToQuery(e Expr) map[string]interface{} {
	if e == nil {
		return Empty{}.QueryExpr()
	}
	return e.QueryExpr()
}
