// internal/condition/functions.go
package condition

import (
	"fmt"
	"math"
)

/*
 * Built-in function library.
 *
 * A fixed, closed set: min, max, avg, count, exists, all, any. Conditions
 * cannot call into host application code; this table is the entire escape
 * surface of the language, and every entry is a pure function over
 * already-evaluated values.
 *
 * Two entries are special-cased by the evaluator rather than dispatched
 * through evalArgs:
 *   - exists(v): the only construct allowed to name a possibly-absent
 *     variable without raising; resolves to Bool presence.
 *   - all(list, pred) / any(list, pred): the predicate is an unevaluated
 *     sub-condition run once per element with the element bound to the
 *     implicit variable `it` in a nested child context. This is the one
 *     higher-order construct in the language.
 */

// LoopVariable is the implicit binding name for all/any predicates.
const LoopVariable = "it"

type funcSpec struct {
	minArgs int
	maxArgs int // -1 = variadic
}

func (s funcSpec) arity() string {
	if s.maxArgs < 0 {
		return fmt.Sprintf("at least %d argument(s)", s.minArgs)
	}
	if s.minArgs == s.maxArgs {
		return fmt.Sprintf("exactly %d argument(s)", s.minArgs)
	}
	return fmt.Sprintf("%d to %d arguments", s.minArgs, s.maxArgs)
}

// builtins is the closed function set. Unknown names are rejected at parse
// time, so evaluation never encounters an unresolvable call.
var builtins = map[string]funcSpec{
	"min":    {minArgs: 1, maxArgs: -1},
	"max":    {minArgs: 1, maxArgs: -1},
	"avg":    {minArgs: 1, maxArgs: -1},
	"count":  {minArgs: 1, maxArgs: 1},
	"exists": {minArgs: 1, maxArgs: 1},
	"all":    {minArgs: 2, maxArgs: 2},
	"any":    {minArgs: 2, maxArgs: 2},
}

// numericArgs asserts every argument is a number, returning the float
// slice for aggregation.
func numericArgs(name string, args []Value) ([]float64, error) {
	nums := make([]float64, len(args))
	for i, a := range args {
		if a.Kind != KindNumber {
			return nil, typeErrorf("%s: argument %d is %s, want number", name, i+1, a.Kind)
		}
		nums[i] = a.Num
	}
	return nums, nil
}

func fnMin(args []Value) (Value, error) {
	nums, err := numericArgs("min", args)
	if err != nil {
		return Value{}, err
	}
	m := nums[0]
	for _, n := range nums[1:] {
		if n < m {
			m = n
		}
	}
	return Number(m), nil
}

func fnMax(args []Value) (Value, error) {
	nums, err := numericArgs("max", args)
	if err != nil {
		return Value{}, err
	}
	m := nums[0]
	for _, n := range nums[1:] {
		if n > m {
			m = n
		}
	}
	return Number(m), nil
}

func fnAvg(args []Value) (Value, error) {
	nums, err := numericArgs("avg", args)
	if err != nil {
		return Value{}, err
	}
	if len(nums) == 0 {
		// Unreachable through the parser (arity >= 1); guards hand-built ASTs.
		return Value{}, arithmeticErrorf("avg of zero values")
	}
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	mean := sum / float64(len(nums))
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return Value{}, arithmeticErrorf("avg result is not finite")
	}
	return Number(mean), nil
}

func fnCount(args []Value) (Value, error) {
	if args[0].Kind != KindList {
		return Value{}, typeErrorf("count: argument is %s, want list", args[0].Kind)
	}
	return Number(float64(len(args[0].List))), nil
}
