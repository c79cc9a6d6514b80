package rules

import (
	"fmt"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// Fields accepted by condition tests.
var Fields = []string{"hpPct", "staPct", "mpPct", "atk", "def", "lv", "hasStatus", "tag", "clazz"}

// EvalCondition evaluates a condition tree against one actor. A nil
// condition is vacuously true. "all" with no children is true, "any" with
// no children is false, "not" negates its first child.
func EvalCondition(c *types.ConditionDef, a *types.Actor) bool {
	if c == nil {
		return true
	}
	switch c.Op {
	case "all":
		for i := range c.Children {
			if !EvalCondition(&c.Children[i], a) {
				return false
			}
		}
		return true

	case "any":
		for i := range c.Children {
			if EvalCondition(&c.Children[i], a) {
				return true
			}
		}
		return false

	case "not":
		if len(c.Children) == 0 {
			return true
		}
		return !EvalCondition(&c.Children[0], a)

	case "test", "":
		return evalTest(c, a)

	default:
		return false
	}
}

func evalTest(c *types.ConditionDef, a *types.Actor) bool {
	switch c.Field {
	case "hpPct", "staPct", "mpPct", "atk", "def", "lv":
		v, _ := state.Metric(a, c.Field)
		return CompareNumber(c.Cmp, v, c.Value)

	case "hasStatus":
		ids := make([]string, len(a.Statuses))
		for i, st := range a.Statuses {
			ids[i] = st.ID
		}
		return CompareSet(c.Cmp, ids, c.Value)

	case "tag":
		return CompareSet(c.Cmp, a.Tags, c.Value)

	case "clazz":
		return CompareString(c.Cmp, a.Class, c.Value)
	}
	return false
}

// ValidateCondition checks a condition tree's shape and returns one error
// per malformed node. path prefixes each message.
func ValidateCondition(c *types.ConditionDef, path string) []error {
	if c == nil {
		return nil
	}
	var errs []error
	switch c.Op {
	case "all", "any":
		for i := range c.Children {
			errs = append(errs, ValidateCondition(&c.Children[i], fmt.Sprintf("%s.%s[%d]", path, c.Op, i))...)
		}
	case "not":
		if len(c.Children) != 1 {
			errs = append(errs, fmt.Errorf("%s: not takes exactly one child, got %d", path, len(c.Children)))
		}
		for i := range c.Children {
			errs = append(errs, ValidateCondition(&c.Children[i], path+".not")...)
		}
	case "test", "":
		if !containsString(Fields, c.Field) {
			errs = append(errs, fmt.Errorf("%s: unknown field %q", path, c.Field))
		}
		if !IsComparator(c.Cmp) {
			errs = append(errs, fmt.Errorf("%s: unknown comparator %q", path, c.Cmp))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: unknown op %q", path, c.Op))
	}
	return errs
}
