// internal/condition/eval.go
package condition

/*
 * Condition evaluation.
 *
 * Walks an immutable AST against a variable context and produces a boolean
 * or a typed EvalError. Evaluation is pure and side-effect free: no
 * context mutation, no I/O, no clock access beyond variables the caller
 * placed into the context. Conditions come from authored content, so this
 * is a security property of the language, not an optimization.
 *
 * Semantics:
 *   - AND/OR short-circuit; operands after the decisive one are never
 *     evaluated (a later operand may reference an undefined variable that
 *     would otherwise raise).
 *   - ==/!= are total: same-kind pairs compare structurally, mixed-kind
 *     equality is false (inequality true), never an error.
 *   - < <= > >= are defined for two numbers only; any other pairing is a
 *     TypeError. No implicit coercion inside comparisons.
 *   - IN/NOT IN require a list on the right; membership uses == semantics
 *     elementwise.
 *   - Truthiness coercion applies only in all/any predicate results.
 *
 * Complexity bound: depth and node count are capped before the walk so
 * adversarial input fails with ComplexityExceeded instead of risking
 * stack exhaustion.
 */

// Limits caps AST shape before evaluation.
type Limits struct {
	MaxDepth int
	MaxNodes int
}

// DefaultLimits returns the standard evaluation caps.
func DefaultLimits() Limits {
	return Limits{MaxDepth: 64, MaxNodes: 512}
}

// Evaluate runs ast against ctx under DefaultLimits.
func Evaluate(ast Node, ctx *VariableContext) (bool, error) {
	return EvaluateWithLimits(ast, ctx, DefaultLimits())
}

// EvaluateWithLimits runs ast against ctx with explicit complexity caps.
// The top-level result must be a boolean; any other type is a TypeError
// (truthiness never applies at top level).
func EvaluateWithLimits(ast Node, ctx *VariableContext, limits Limits) (bool, error) {
	depth, nodes := Stats(ast)
	if limits.MaxDepth > 0 && depth > limits.MaxDepth {
		return false, &EvalError{Kind: ComplexityExceeded, Message: "expression nesting too deep"}
	}
	if limits.MaxNodes > 0 && nodes > limits.MaxNodes {
		return false, &EvalError{Kind: ComplexityExceeded, Message: "expression has too many nodes"}
	}

	v, err := eval(ast, ctx)
	if err != nil {
		return false, err
	}
	if v.Kind != KindBool {
		return false, typeErrorf("condition result is %s, want bool", v.Kind)
	}
	return v.Bool, nil
}

// eval walks one node. Exhaustive over the closed node set.
func eval(n Node, ctx *VariableContext) (Value, error) {
	switch node := n.(type) {
	case *OrNode:
		left, err := evalBool(node.Left, ctx)
		if err != nil {
			return Value{}, err
		}
		if left {
			return BoolValue(true), nil
		}
		right, err := evalBool(node.Right, ctx)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(right), nil

	case *AndNode:
		left, err := evalBool(node.Left, ctx)
		if err != nil {
			return Value{}, err
		}
		if !left {
			return BoolValue(false), nil
		}
		right, err := evalBool(node.Right, ctx)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(right), nil

	case *NotNode:
		inner, err := evalBool(node.Expr, ctx)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(!inner), nil

	case *CompareNode:
		left, err := eval(node.Left, ctx)
		if err != nil {
			return Value{}, err
		}
		right, err := eval(node.Right, ctx)
		if err != nil {
			return Value{}, err
		}
		return compare(node.Op, left, right)

	case *LiteralNode:
		return node.Value, nil

	case *VariableNode:
		v, ok := ctx.Lookup(node.Path)
		if !ok {
			return Value{}, undefinedVariable(node.Path)
		}
		return v, nil

	case *ListNode:
		elems := make([]Value, len(node.Elems))
		for i, e := range node.Elems {
			v, err := eval(e, ctx)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return Value{Kind: KindList, List: elems}, nil

	case *CallNode:
		return evalCall(node, ctx)

	default:
		return Value{}, typeErrorf("unknown node type %T", n)
	}
}

// evalBool evaluates a logical operand, which must produce a bool.
// Truthiness coercion does not apply outside predicate positions.
func evalBool(n Node, ctx *VariableContext) (bool, error) {
	v, err := eval(n, ctx)
	if err != nil {
		return false, err
	}
	if v.Kind != KindBool {
		return false, typeErrorf("logical operand is %s, want bool", v.Kind)
	}
	return v.Bool, nil
}

// compare applies a comparison operator to two evaluated values.
func compare(op CompareOp, left, right Value) (Value, error) {
	switch op {
	case OpEq:
		return BoolValue(left.Equal(right)), nil
	case OpNeq:
		return BoolValue(!left.Equal(right)), nil

	case OpLt, OpLte, OpGt, OpGte:
		if left.Kind != KindNumber || right.Kind != KindNumber {
			return Value{}, typeErrorf("ordering comparison between %s and %s", left.Kind, right.Kind)
		}
		switch op {
		case OpLt:
			return BoolValue(left.Num < right.Num), nil
		case OpLte:
			return BoolValue(left.Num <= right.Num), nil
		case OpGt:
			return BoolValue(left.Num > right.Num), nil
		default:
			return BoolValue(left.Num >= right.Num), nil
		}

	case OpIn, OpNotIn:
		if right.Kind != KindList {
			return Value{}, typeErrorf("right operand of %s is %s, want list", op, right.Kind)
		}
		found := false
		for _, elem := range right.List {
			if left.Equal(elem) {
				found = true
				break
			}
		}
		if op == OpNotIn {
			found = !found
		}
		return BoolValue(found), nil

	default:
		return Value{}, typeErrorf("unknown comparison operator %d", op)
	}
}

// evalCall dispatches a function call. exists and all/any have bespoke
// evaluation rules; the rest evaluate their arguments eagerly.
func evalCall(node *CallNode, ctx *VariableContext) (Value, error) {
	switch node.Name {
	case "exists":
		// Parser guarantees a single VariableNode argument. Absence
		// short-circuits to false without raising UndefinedVariable.
		v := node.Args[0].(*VariableNode)
		_, ok := ctx.Lookup(v.Path)
		return BoolValue(ok), nil

	case "all", "any":
		return evalQuantifier(node, ctx)
	}

	args := make([]Value, len(node.Args))
	for i, a := range node.Args {
		v, err := eval(a, ctx)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	switch node.Name {
	case "min":
		return fnMin(args)
	case "max":
		return fnMax(args)
	case "avg":
		return fnAvg(args)
	case "count":
		return fnCount(args)
	default:
		// Unreachable: unknown names are rejected at parse time.
		return Value{}, typeErrorf("unknown function %q", node.Name)
	}
}

// evalQuantifier implements all/any: the predicate sub-condition runs once
// per list element with the element bound as the implicit variable `it` in
// a child context. This is the only place a condition is evaluated against
// a synthesized, narrower context.
func evalQuantifier(node *CallNode, ctx *VariableContext) (Value, error) {
	list, err := eval(node.Args[0], ctx)
	if err != nil {
		return Value{}, err
	}
	if list.Kind != KindList {
		return Value{}, typeErrorf("%s: first argument is %s, want list", node.Name, list.Kind)
	}

	pred := node.Args[1]
	wantAll := node.Name == "all"

	for _, elem := range list.List {
		result, err := eval(pred, ctx.bind(LoopVariable, elem))
		if err != nil {
			return Value{}, err
		}
		truthy, err := result.Truthy()
		if err != nil {
			return Value{}, err
		}
		if wantAll && !truthy {
			return BoolValue(false), nil
		}
		if !wantAll && truthy {
			return BoolValue(true), nil
		}
	}
	// all([]) is vacuously true, any([]) is false.
	return BoolValue(wantAll), nil
}
