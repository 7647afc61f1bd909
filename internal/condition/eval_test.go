// internal/condition/eval_test.go
package condition

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func evalCond(t *testing.T, input string, vars map[string]Value) (bool, error) {
	t.Helper()
	node := mustParse(t, input)
	return Evaluate(node, NewContext(vars))
}

func mustEval(t *testing.T, input string, vars map[string]Value) bool {
	t.Helper()
	result, err := evalCond(t, input, vars)
	if err != nil {
		t.Fatalf("Evaluate(%q) error = %v, want nil", input, err)
	}
	return result
}

func evalErrorKind(t *testing.T, input string, vars map[string]Value) EvalErrorKind {
	t.Helper()
	_, err := evalCond(t, input, vars)
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("Evaluate(%q) error = %v, want *EvalError", input, err)
	}
	return evalErr.Kind
}

func TestEvaluate_Comparisons(t *testing.T) {
	vars := map[string]Value{
		"score":    Number(82.5),
		"attempts": Number(2),
		"passed":   BoolValue(true),
		"choice":   Text("advanced"),
	}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "gte true", input: "score >= 80", want: true},
		{name: "lt false", input: "score < 80", want: false},
		{name: "number equality", input: "attempts == 2", want: true},
		{name: "string equality", input: `choice == "advanced"`, want: true},
		{name: "string inequality", input: `choice != "basic"`, want: true},
		{name: "bool equality", input: "passed == true", want: true},
		{name: "mixed kind equality is false", input: `score == "82.5"`, want: false},
		{name: "mixed kind inequality is true", input: `score != "82.5"`, want: true},
		{name: "membership", input: `choice IN ["basic", "advanced"]`, want: true},
		{name: "negated membership", input: `choice NOT IN ["basic"]`, want: true},
		{name: "literal bool condition", input: "true", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustEval(t, tt.input, vars); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEvaluate_ShortCircuit(t *testing.T) {
	vars := map[string]Value{"passed": BoolValue(false), "score": Number(90)}

	// missing_var would raise UndefinedVariable; short-circuit must prevent
	// its evaluation.
	if got := mustEval(t, "passed AND missing_var == 1", vars); got {
		t.Errorf("AND short-circuit = true, want false")
	}
	if got := mustEval(t, "score >= 80 OR missing_var == 1", vars); !got {
		t.Errorf("OR short-circuit = false, want true")
	}

	// Without short-circuit protection the same reference raises.
	if kind := evalErrorKind(t, "missing_var == 1 AND passed", vars); kind != UndefinedVariable {
		t.Errorf("Kind = %v, want UndefinedVariable", kind)
	}
}

func TestEvaluate_UndefinedVariablePath(t *testing.T) {
	_, err := evalCond(t, "unit.quiz.score > 50", nil)
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("error = %v, want *EvalError", err)
	}
	if evalErr.Kind != UndefinedVariable {
		t.Errorf("Kind = %v, want UndefinedVariable", evalErr.Kind)
	}
	if evalErr.Path != "unit.quiz.score" {
		t.Errorf("Path = %q, want unit.quiz.score", evalErr.Path)
	}
}

func TestEvaluate_TypeErrors(t *testing.T) {
	vars := map[string]Value{
		"name":   Text("alice"),
		"score":  Number(50),
		"xs":     ListValue(Number(1), Number(2)),
		"passed": BoolValue(true),
	}

	tests := []struct {
		name  string
		input string
	}{
		{name: "ordering on strings", input: `name < "bob"`},
		{name: "ordering number vs string", input: "score > name"},
		{name: "logical operand not bool", input: "score AND passed"},
		{name: "not on number", input: "NOT score"},
		{name: "in without list", input: "score IN name"},
		{name: "top level not bool", input: "score"},
		{name: "count of non-list", input: "count(score) > 0"},
		{name: "min of text", input: "min(name) > 0"},
		{name: "list in predicate position", input: "any(xs, [1, 2])"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if kind := evalErrorKind(t, tt.input, vars); kind != TypeError {
				t.Errorf("Kind = %v, want TypeError", kind)
			}
		})
	}
}

func TestEvaluate_Functions(t *testing.T) {
	vars := map[string]Value{
		"a": Number(10), "b": Number(20), "c": Number(30),
		"scores":     ListValue(Number(70), Number(85), Number(92)),
		"empty":      ListValue(),
		"objectives": ListValue(Text("obj-1"), Text("obj-2")),
	}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "min", input: "min(a, b, c) == 10", want: true},
		{name: "max", input: "max(a, b, c) == 30", want: true},
		{name: "avg", input: "avg(a, b, c) == 20", want: true},
		{name: "count", input: "count(scores) == 3", want: true},
		{name: "count empty", input: "count(empty) == 0", want: true},
		{name: "all true", input: "all(scores, it >= 70)", want: true},
		{name: "all false", input: "all(scores, it >= 80)", want: false},
		{name: "any true", input: "any(scores, it > 90)", want: true},
		{name: "any false", input: "any(scores, it > 95)", want: false},
		{name: "all on empty is vacuous", input: "all(empty, it > 0)", want: true},
		{name: "any on empty is false", input: "any(empty, it > 0)", want: false},
		{name: "all over text list", input: `all(objectives, it != "obj-9")`, want: true},
		{name: "exists present", input: "exists(a)", want: true},
		{name: "exists absent", input: "exists(user_choice)", want: false},
		{name: "exists guards use", input: `exists(user_choice) AND user_choice == "x"`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustEval(t, tt.input, vars); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEvaluate_LoopVariableScoping(t *testing.T) {
	// `it` binds inside the predicate only; an outer `it` is shadowed, not
	// clobbered, and the outer context stays unchanged after evaluation.
	vars := map[string]Value{
		"it": Number(-1),
		"xs": ListValue(Number(5), Number(6)),
	}
	ctx := NewContext(vars)

	node := mustParse(t, "all(xs, it > 0)")
	result, err := Evaluate(node, ctx)
	if err != nil {
		t.Fatalf("Evaluate() error = %v, want nil", err)
	}
	if !result {
		t.Errorf("result = false, want true")
	}

	outer, ok := ctx.Lookup("it")
	if !ok {
		t.Fatalf("Lookup(it) ok = false, want true")
	}
	if outer.Num != -1 {
		t.Errorf("outer it = %v, want -1", outer.Num)
	}
}

func TestEvaluate_PredicateTruthiness(t *testing.T) {
	// Truthiness coercion applies to predicate results: nonzero numbers and
	// non-empty strings count as true.
	vars := map[string]Value{
		"nums":  ListValue(Number(1), Number(2)),
		"mixed": ListValue(Number(0), Number(3)),
		"texts": ListValue(Text("a"), Text("")),
	}

	if got := mustEval(t, "all(nums, it)", vars); !got {
		t.Errorf("all(nums, it) = false, want true")
	}
	if got := mustEval(t, "all(mixed, it)", vars); got {
		t.Errorf("all(mixed, it) = true, want false")
	}
	if got := mustEval(t, "any(texts, it)", vars); !got {
		t.Errorf("any(texts, it) = false, want true")
	}
}

func TestEvaluateWithLimits_ComplexityExceeded(t *testing.T) {
	node := mustParse(t, "a AND b AND c AND d AND e")
	vars := map[string]Value{
		"a": BoolValue(true), "b": BoolValue(true), "c": BoolValue(true),
		"d": BoolValue(true), "e": BoolValue(true),
	}

	_, err := EvaluateWithLimits(node, NewContext(vars), Limits{MaxDepth: 2, MaxNodes: 512})
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("error = %v, want *EvalError", err)
	}
	if evalErr.Kind != ComplexityExceeded {
		t.Errorf("Kind = %v, want ComplexityExceeded", evalErr.Kind)
	}

	_, err = EvaluateWithLimits(node, NewContext(vars), Limits{MaxDepth: 64, MaxNodes: 3})
	if !errors.As(err, &evalErr) || evalErr.Kind != ComplexityExceeded {
		t.Errorf("node cap error = %v, want ComplexityExceeded", err)
	}

	result, err := EvaluateWithLimits(node, NewContext(vars), DefaultLimits())
	if err != nil {
		t.Fatalf("EvaluateWithLimits() error = %v, want nil", err)
	}
	if !result {
		t.Errorf("result = false, want true")
	}
}

func TestEvaluate_ParenthesizedPrecedence(t *testing.T) {
	input := "(score >= 90) OR (score >= 80 AND attempts == 1)"

	vars := map[string]Value{"score": Number(82), "attempts": Number(2)}
	if got := mustEval(t, input, vars); got {
		t.Errorf("Evaluate(score=82, attempts=2) = true, want false")
	}

	vars["attempts"] = Number(1)
	if got := mustEval(t, input, vars); !got {
		t.Errorf("Evaluate(score=82, attempts=1) = false, want true")
	}
}

// Property-based test: evaluation never panics
func TestEvaluate_PropertyNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("evaluation never panics regardless of context shape", prop.ForAll(
		func(idx int, score float64, passed bool, defined bool) bool {
			input := propertyConditions[idx%len(propertyConditions)]
			node, err := Parse(input)
			if err != nil {
				return false
			}

			vars := map[string]Value{}
			if defined {
				vars["score"] = Number(score)
				vars["passed"] = BoolValue(passed)
				vars["attempts"] = Number(1)
			}

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Evaluate(%q) panicked: %v", input, r)
				}
			}()

			// Errors are expected for absent variables; only panics fail.
			_, _ = Evaluate(node, NewContext(vars))
			return true
		},
		gen.IntRange(0, len(propertyConditions)*3),
		gen.Float64Range(-100, 100),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestEvaluate_NestedQuantifiers(t *testing.T) {
	vars := map[string]Value{
		"rows": ListValue(
			ListValue(Number(1), Number(2)),
			ListValue(Number(3)),
		),
	}
	if got := mustEval(t, "all(rows, any(it, it > 0))", vars); !got {
		t.Errorf("nested quantifier = false, want true")
	}
}
