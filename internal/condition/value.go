// internal/condition/value.go
package condition

import "strconv"

/*
 * Runtime value domain.
 *
 * Closed tagged union over number, text, bool, and list-of-value with
 * exhaustive switching in the evaluator. There is no null value inside the
 * type system: absence of a variable is a lookup failure, not a value, so
 * an undefined variable can never masquerade as zero or empty.
 *
 * Equality is defined for every pair of values: same-kind pairs compare
 * structurally, mixed-kind pairs are simply unequal (never an error).
 * Ordering and truthiness are narrower and live with the evaluator's
 * comparison logic and Truthy respectively.
 */

// Kind tags the active variant of a Value.
type Kind int

const (
	KindNumber Kind = iota
	KindText
	KindBool
	KindList
)

// String returns the kind name for error messages.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is one runtime value. Exactly the field selected by Kind is
// meaningful; the zero Value is Number(0).
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
	List []Value
}

// Number constructs a number value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Text constructs a text value.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// BoolValue constructs a boolean value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// ListValue constructs a list value.
func ListValue(elems ...Value) Value { return Value{Kind: KindList, List: elems} }

// Equal implements == semantics: structural equality for same-kind pairs,
// false for mixed-kind pairs. Total over all value pairs, never errors.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindText:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Truthy applies the explicit coercion rules used in predicate positions:
// number 0 is false and any other number true, empty text false and
// non-empty true, bool passes through. Lists have no truthiness; a list
// in a predicate position is a TypeError.
func (v Value) Truthy() (bool, error) {
	switch v.Kind {
	case KindNumber:
		return v.Num != 0, nil
	case KindText:
		return v.Str != "", nil
	case KindBool:
		return v.Bool, nil
	default:
		return false, typeErrorf("%s has no truth value", v.Kind)
	}
}

// String renders the value in condition-grammar syntax, so printed
// literals re-lex under the same grammar.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return quoteString(v.Str)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindList:
		out := "["
		for i, e := range v.List {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	default:
		return "?"
	}
}

// quoteString emits a double-quoted string using only the escapes the
// grammar defines.
func quoteString(s string) string {
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			buf = append(buf, c)
		}
	}
	buf = append(buf, '"')
	return string(buf)
}
