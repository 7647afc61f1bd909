package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solatis/wayfinder/internal/condition"
)

var evalCmd = &cobra.Command{
	Use:   "eval <condition>",
	Short: "Evaluate a condition expression against ad-hoc variables",
	Long: `Evaluate parses the condition, evaluates it against the supplied
variables, and prints the result. Variables come from --context, a JSON
file of name -> value mappings, and/or repeated --var name=value pairs
using condition-grammar literal syntax (numbers, "strings", true/false,
[lists]). --var overrides --context on conflict.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

var (
	evalVars    []string
	evalContext string
)

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringArrayVar(&evalVars, "var", nil, "variable binding, name=value (repeatable)")
	evalCmd.Flags().StringVar(&evalContext, "context", "", "JSON file of variable bindings")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}

	ast, err := condition.Parse(args[0])
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	vars := make(map[string]condition.Value, len(evalVars))
	if evalContext != "" {
		loaded, err := loadContextFile(evalContext)
		if err != nil {
			return fmt.Errorf("failed to load context: %w", err)
		}
		for k, v := range loaded {
			vars[k] = v
		}
	}
	for _, binding := range evalVars {
		name, raw, ok := strings.Cut(binding, "=")
		if !ok {
			return fmt.Errorf("invalid --var %q: expected name=value", binding)
		}
		val, err := parseVarValue(raw)
		if err != nil {
			return fmt.Errorf("invalid --var %q: %w", binding, err)
		}
		vars[name] = val
	}

	limits := condition.Limits{MaxDepth: cfg.MaxDepth, MaxNodes: cfg.MaxNodes}
	result, err := condition.EvaluateWithLimits(ast, condition.NewContext(vars), limits)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fmt.Println(result)
	return nil
}

// loadContextFile reads a JSON object of variable bindings. JSON numbers,
// strings, booleans, and arrays map onto the value domain; null and nested
// objects have no representation and are rejected.
func loadContextFile(path string) (map[string]condition.Value, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}

	vars := make(map[string]condition.Value, len(decoded))
	for name, v := range decoded {
		val, err := jsonValue(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		vars[name] = val
	}
	return vars, nil
}

func jsonValue(v any) (condition.Value, error) {
	switch x := v.(type) {
	case float64:
		return condition.Number(x), nil
	case string:
		return condition.Text(x), nil
	case bool:
		return condition.BoolValue(x), nil
	case []any:
		elems := make([]condition.Value, len(x))
		for i, e := range x {
			ev, err := jsonValue(e)
			if err != nil {
				return condition.Value{}, err
			}
			elems[i] = ev
		}
		return condition.ListValue(elems...), nil
	default:
		return condition.Value{}, fmt.Errorf("unsupported JSON value %T", v)
	}
}

// parseVarValue parses a grammar literal or literal list into a value.
func parseVarValue(raw string) (condition.Value, error) {
	node, err := condition.Parse(raw)
	if err != nil {
		return condition.Value{}, err
	}
	return literalValue(node)
}

func literalValue(node condition.Node) (condition.Value, error) {
	switch n := node.(type) {
	case *condition.LiteralNode:
		return n.Value, nil
	case *condition.ListNode:
		elems := make([]condition.Value, len(n.Elems))
		for i, e := range n.Elems {
			v, err := literalValue(e)
			if err != nil {
				return condition.Value{}, err
			}
			elems[i] = v
		}
		return condition.ListValue(elems...), nil
	default:
		return condition.Value{}, fmt.Errorf("value must be a literal or list of literals")
	}
}
