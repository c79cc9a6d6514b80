package rules

import (
	"fmt"
	"strconv"
)

// Comparators accepted by condition tests.
var Comparators = []string{"lt", "lte", "eq", "gte", "gt", "ne", "in", "notIn"}

// IsComparator reports whether cmp is a known comparator.
func IsComparator(cmp string) bool {
	for _, c := range Comparators {
		if c == cmp {
			return true
		}
	}
	return false
}

// CompareNumber applies cmp to actual and want. For in/notIn, want is a
// list of numbers.
func CompareNumber(cmp string, actual float64, want any) bool {
	switch cmp {
	case "in", "notIn":
		found := false
		for _, v := range toList(want) {
			if n, ok := toFloat(v); ok && n == actual {
				found = true
				break
			}
		}
		return found == (cmp == "in")
	}

	n, ok := toFloat(want)
	if !ok {
		return false
	}
	switch cmp {
	case "lt":
		return actual < n
	case "lte":
		return actual <= n
	case "eq":
		return actual == n
	case "gte":
		return actual >= n
	case "gt":
		return actual > n
	case "ne":
		return actual != n
	}
	return false
}

// CompareString applies eq/ne/in/notIn to a single string value.
// Ordering comparators never match.
func CompareString(cmp string, actual string, want any) bool {
	switch cmp {
	case "eq":
		return actual == toString(want)
	case "ne":
		return actual != toString(want)
	case "in", "notIn":
		return containsString(toStrings(want), actual) == (cmp == "in")
	}
	return false
}

// CompareSet applies a comparator to a set-valued field (tags, status
// ids): eq means contains, ne means does not contain, in means intersects,
// notIn means disjoint. Ordering comparators never match.
func CompareSet(cmp string, actual []string, want any) bool {
	switch cmp {
	case "eq":
		return containsString(actual, toString(want))
	case "ne":
		return !containsString(actual, toString(want))
	case "in", "notIn":
		hit := false
		for _, w := range toStrings(want) {
			if containsString(actual, w) {
				hit = true
				break
			}
		}
		return hit == (cmp == "in")
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// toFloat converts an any value to float64, handling the numeric types
// produced by Lua and YAML decoding.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func toList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	case []float64:
		out := make([]any, len(l))
		for i, f := range l {
			out[i] = f
		}
		return out
	case nil:
		return nil
	}
	return []any{v}
}

func toStrings(v any) []string {
	list := toList(v)
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = toString(item)
	}
	return out
}
