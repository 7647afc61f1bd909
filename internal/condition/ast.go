// internal/condition/ast.go
package condition

import "strings"

/*
 * Condition AST.
 *
 * Immutable after parse: nodes carry no evaluation state, so one AST can
 * be cached by condition string and shared across concurrent evaluations.
 * Parsing is a pure function of the input; two identical condition strings
 * always produce structurally identical trees (reflect.DeepEqual holds),
 * which is what makes string-keyed caching sound.
 *
 * String() pretty-prints a node back into grammar syntax. The output is
 * fully parenthesized for binary operators, so re-parsing a printed tree
 * yields a tree that evaluates identically on any context.
 */

// Node is one node of a parsed condition expression.
type Node interface {
	String() string
	isNode()
}

// CompareOp enumerates the comparison operators.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn
	OpNotIn
)

// String returns the grammar spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpIn:
		return "IN"
	case OpNotIn:
		return "NOT IN"
	default:
		return "?"
	}
}

// OrNode is a short-circuiting logical OR. Left-associative: the parser
// folds `a OR b OR c` into Or(Or(a, b), c).
type OrNode struct {
	Left, Right Node
}

// AndNode is a short-circuiting logical AND, folded like OrNode.
type AndNode struct {
	Left, Right Node
}

// NotNode is logical negation.
type NotNode struct {
	Expr Node
}

// CompareNode applies a comparison operator. Comparison is deliberately
// not chainable: `a < b < c` is rejected by the parser, never
// left-associated into (a < b) < c.
type CompareNode struct {
	Op          CompareOp
	Left, Right Node
	Pos         int
}

// LiteralNode holds a literal number, string, or boolean.
type LiteralNode struct {
	Value Value
}

// VariableNode references a dotted variable path in the context.
type VariableNode struct {
	Path string
	Pos  int
}

// ListNode is a bracketed list expression; elements may themselves be
// variables or calls, evaluated to a List value.
type ListNode struct {
	Elems []Node
}

// CallNode invokes one of the fixed built-in functions. For all/any the
// second argument is a predicate sub-expression held unevaluated.
type CallNode struct {
	Name string
	Args []Node
	Pos  int
}

func (*OrNode) isNode()       {}
func (*AndNode) isNode()      {}
func (*NotNode) isNode()      {}
func (*CompareNode) isNode()  {}
func (*LiteralNode) isNode()  {}
func (*VariableNode) isNode() {}
func (*ListNode) isNode()     {}
func (*CallNode) isNode()     {}

func (n *OrNode) String() string {
	return "(" + n.Left.String() + " OR " + n.Right.String() + ")"
}

func (n *AndNode) String() string {
	return "(" + n.Left.String() + " AND " + n.Right.String() + ")"
}

func (n *NotNode) String() string {
	return "NOT " + n.Expr.String()
}

func (n *CompareNode) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *LiteralNode) String() string {
	return n.Value.String()
}

func (n *VariableNode) String() string {
	return n.Path
}

func (n *ListNode) String() string {
	parts := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (n *CallNode) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Stats walks the tree once and reports its depth and total node count,
// the two dimensions the evaluator caps before walking adversarial input.
func Stats(n Node) (depth, nodes int) {
	if n == nil {
		return 0, 0
	}
	nodes = 1
	depth = 1
	children := childNodes(n)
	for _, c := range children {
		d, cnt := Stats(c)
		nodes += cnt
		if d+1 > depth {
			depth = d + 1
		}
	}
	return depth, nodes
}

func childNodes(n Node) []Node {
	switch v := n.(type) {
	case *OrNode:
		return []Node{v.Left, v.Right}
	case *AndNode:
		return []Node{v.Left, v.Right}
	case *NotNode:
		return []Node{v.Expr}
	case *CompareNode:
		return []Node{v.Left, v.Right}
	case *ListNode:
		return v.Elems
	case *CallNode:
		return v.Args
	default:
		return nil
	}
}
