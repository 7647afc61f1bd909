// internal/condition/errors.go
package condition

import "fmt"

/*
 * Error taxonomy for the condition language.
 *
 * Lex/parse errors are authoring-time defects: always fatal to the one
 * condition, surfaced through document validation before publication.
 * Eval errors are runtime defects caused by missing or wrong-shaped
 * context data; the router recovers from them locally by skipping the
 * rule, so they carry enough structure (kind, variable path) for
 * content-quality monitoring.
 */

// LexError reports an illegal character or unterminated literal.
type LexError struct {
	Pos     int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Pos, e.Message)
}

// ParseErrorKind classifies parse failures.
type ParseErrorKind int

const (
	SyntaxError ParseErrorKind = iota
	UnbalancedParens
	InvalidOperator
	InvalidFunction
)

// String returns the kind name for logs and error messages.
func (k ParseErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case UnbalancedParens:
		return "unbalanced parentheses"
	case InvalidOperator:
		return "invalid operator"
	case InvalidFunction:
		return "invalid function"
	default:
		return "parse error"
	}
}

// ParseError reports a grammar violation. Parsing never partially
// succeeds: either a complete AST is returned or a ParseError, never both.
type ParseError struct {
	Kind    ParseErrorKind
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Message)
}

// EvalErrorKind classifies evaluation failures.
type EvalErrorKind int

const (
	UndefinedVariable EvalErrorKind = iota
	TypeError
	ArithmeticError
	ComplexityExceeded
)

// String returns the kind name for logs and error messages.
func (k EvalErrorKind) String() string {
	switch k {
	case UndefinedVariable:
		return "undefined variable"
	case TypeError:
		return "type error"
	case ArithmeticError:
		return "arithmetic error"
	case ComplexityExceeded:
		return "complexity exceeded"
	default:
		return "evaluation error"
	}
}

// EvalError reports a runtime evaluation failure. Path is set only for
// UndefinedVariable.
type EvalError struct {
	Kind    EvalErrorKind
	Path    string
	Message string
}

func (e *EvalError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func undefinedVariable(path string) *EvalError {
	return &EvalError{Kind: UndefinedVariable, Path: path, Message: "not present in context"}
}

func typeErrorf(format string, args ...any) *EvalError {
	return &EvalError{Kind: TypeError, Message: fmt.Sprintf(format, args...)}
}

func arithmeticErrorf(format string, args ...any) *EvalError {
	return &EvalError{Kind: ArithmeticError, Message: fmt.Sprintf(format, args...)}
}
