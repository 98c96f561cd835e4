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

import "strings"

// Match evaluates a rendered filter.Query dict (as produced by
// filter.ToQuery) against a document, for archive backends (archive/memdb,
// archive/leveldb) that have no native query engine of their own to push
// the filter down into.
func Match(doc map[string]interface{}, query map[string]interface{}) bool {
	for key, value := range query {
		switch key {
		case "$and":
			for _, sub := range value.([]map[string]interface{}) {
				if !Match(doc, sub) {
					return false
				}
			}
		case "$or":
			any := false
			for _, sub := range value.([]map[string]interface{}) {
				if Match(doc, sub) {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		case "$nor":
			for _, sub := range value.([]map[string]interface{}) {
				if Match(doc, sub) {
					return false
				}
			}
		case "$not":
			sub, _ := value.(map[string]interface{})
			if Match(doc, sub) {
				return false
			}
		default:
			actual, found := fieldValue(doc, key)
			if !matchField(actual, found, value) {
				return false
			}
		}
	}
	return true
}

func fieldValue(doc map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = doc
	for _, p := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// matchField evaluates one field's expected value (either a bare equality
// value or an operator dict like {"$gt": 5}) against the actual value found
// in the document.
func matchField(actual interface{}, found bool, expected interface{}) bool {
	if opMap, ok := expected.(map[string]interface{}); ok {
		for op, operand := range opMap {
			if !matchOperator(actual, found, op, operand) {
				return false
			}
		}
		return true
	}
	return found && equalPrimitive(actual, expected)
}

func matchOperator(actual interface{}, found bool, op string, operand interface{}) bool {
	switch op {
	case "$eq":
		return found && equalPrimitive(actual, operand)
	case "$ne":
		return !(found && equalPrimitive(actual, operand))
	case "$exists":
		want, _ := operand.(bool)
		return found == want
	case "$in":
		if !found {
			return false
		}
		for _, v := range toInterfaceSlice(operand) {
			if equalPrimitive(actual, v) {
				return true
			}
		}
		return false
	case "$nin":
		if !found {
			return true
		}
		for _, v := range toInterfaceSlice(operand) {
			if equalPrimitive(actual, v) {
				return false
			}
		}
		return true
	case "$gt", "$gte", "$lt", "$lte":
		if !found {
			return false
		}
		cmp, ok := compare(actual, operand)
		if !ok {
			return false
		}
		switch op {
		case "$gt":
			return cmp > 0
		case "$gte":
			return cmp >= 0
		case "$lt":
			return cmp < 0
		default:
			return cmp <= 0
		}
	default:
		return false
	}
}

func toInterfaceSlice(v interface{}) []interface{} {
	if s, ok := v.([]interface{}); ok {
		return s
	}
	return nil
}

func equalPrimitive(a, b interface{}) bool {
	return a == b
}

// compare returns -1/0/1 comparing two ordered primitive values (int64,
// float64 or string), and false if they aren't comparable.
func compare(a, b interface{}) (int, bool) {
	switch av := a.(type) {
	case int64:
		bv, ok := toInt64(b)
		if !ok {
			return 0, false
		}
		return cmpInt64(av, bv), true
	case float64:
		bv, ok := toFloat64(b)
		if !ok {
			return 0, false
		}
		return cmpFloat64(av, bv), true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	default:
		return 0, false
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
