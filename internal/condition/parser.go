// internal/condition/parser.go
package condition

import "fmt"

/*
 * Recursive-descent parser for the condition grammar.
 *
 * Grammar (precedence low -> high):
 *
 *   condition  := or_expr
 *   or_expr    := and_expr (OR and_expr)*
 *   and_expr   := not_expr (AND not_expr)*
 *   not_expr   := NOT not_expr | comparison
 *   comparison := primary (comp_op primary)?
 *   comp_op    := '==' | '!=' | '<' | '<=' | '>' | '>=' | IN | NOT IN
 *   primary    := literal | variable | function_call | list | '(' or_expr ')'
 *
 * Comparison is not chainable: `a < b < c` is a syntax error, not
 * left-associated. This matches the documented grammar exactly and is
 * intentional, not an oversight. Parenthesized sub-expressions recurse to
 * or_expr, restoring full precedence inside parentheses.
 *
 * Unknown function names and arity violations are parse-time errors
 * (InvalidFunction), so the evaluator never sees an unresolvable call.
 */

// Parse tokenizes and parses input into a condition AST.
// Returns either a complete AST or an error; no partial tree is exposed.
func Parse(input string) (Node, error) {
	toks, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses a token stream produced by Tokenize.
func ParseTokens(toks []Token) (Node, error) {
	p := parser{toks: toks}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		if tok.Type == TokenRParen {
			return nil, &ParseError{Kind: UnbalancedParens, Pos: tok.Pos, Message: "unmatched ')'"}
		}
		return nil, &ParseError{Kind: SyntaxError, Pos: tok.Pos, Message: fmt.Sprintf("unexpected %s after expression", tok.Type)}
	}
	return node, nil
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) peek() Token {
	if p.pos >= len(p.toks) {
		return Token{Type: TokenEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return Token{Type: TokenEOF}
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrNode{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenAnd {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &AndNode{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	// NOT immediately followed by IN belongs to a comparison operator and
	// is handled in parseComparison; a prefix NOT is always followed by an
	// operand.
	if p.peek().Type == TokenNot && p.peekAt(1).Type != TokenIn {
		p.next()
		expr, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotNode{Expr: expr}, nil
	}
	return p.parseComparison()
}

// comparisonOp maps comparison tokens to operators. NOT IN is recognized
// as the two-token sequence NOT, IN.
func comparisonOp(t TokenType) (CompareOp, bool) {
	switch t {
	case TokenEq:
		return OpEq, true
	case TokenNeq:
		return OpNeq, true
	case TokenLt:
		return OpLt, true
	case TokenLte:
		return OpLte, true
	case TokenGt:
		return OpGt, true
	case TokenGte:
		return OpGte, true
	case TokenIn:
		return OpIn, true
	default:
		return 0, false
	}
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	var op CompareOp
	opPos := -1
	if tok := p.peek(); tok.Type == TokenNot && p.peekAt(1).Type == TokenIn {
		opPos = tok.Pos
		p.next()
		p.next()
		op = OpNotIn
	} else if o, ok := comparisonOp(tok.Type); ok {
		opPos = tok.Pos
		p.next()
		op = o
	}

	if opPos < 0 {
		return left, nil
	}

	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	// Reject chained comparisons: a < b < c is a grammar error by design.
	if tok := p.peek(); tok.Type == TokenNot && p.peekAt(1).Type == TokenIn {
		return nil, &ParseError{Kind: SyntaxError, Pos: tok.Pos, Message: "comparison is not chainable"}
	} else if _, ok := comparisonOp(tok.Type); ok {
		return nil, &ParseError{Kind: SyntaxError, Pos: tok.Pos, Message: "comparison is not chainable"}
	}

	return &CompareNode{Op: op, Left: left, Right: right, Pos: opPos}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenNumber:
		p.next()
		return &LiteralNode{Value: Number(tok.Num)}, nil

	case TokenString:
		p.next()
		return &LiteralNode{Value: Text(tok.Str)}, nil

	case TokenBool:
		p.next()
		return &LiteralNode{Value: BoolValue(tok.Bool)}, nil

	case TokenIdent:
		if p.peekAt(1).Type == TokenLParen {
			return p.parseCall()
		}
		p.next()
		return &VariableNode{Path: tok.Str, Pos: tok.Pos}, nil

	case TokenLBracket:
		return p.parseList()

	case TokenLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.Type != TokenRParen {
			return nil, &ParseError{Kind: UnbalancedParens, Pos: closing.Pos, Message: "missing ')'"}
		}
		p.next()
		return inner, nil

	case TokenRParen:
		return nil, &ParseError{Kind: UnbalancedParens, Pos: tok.Pos, Message: "unmatched ')'"}

	case TokenAnd, TokenOr, TokenNot, TokenIn, TokenEq, TokenNeq, TokenLt, TokenLte, TokenGt, TokenGte:
		return nil, &ParseError{Kind: InvalidOperator, Pos: tok.Pos, Message: fmt.Sprintf("operator %s where an operand is expected", tok.Type)}

	default:
		return nil, &ParseError{Kind: SyntaxError, Pos: tok.Pos, Message: fmt.Sprintf("unexpected %s", tok.Type)}
	}
}

func (p *parser) parseList() (Node, error) {
	open := p.next() // '['
	var elems []Node
	if p.peek().Type == TokenRBracket {
		p.next()
		return &ListNode{}, nil
	}
	for {
		elem, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		switch p.peek().Type {
		case TokenComma:
			p.next()
		case TokenRBracket:
			p.next()
			return &ListNode{Elems: elems}, nil
		case TokenEOF:
			return nil, &ParseError{Kind: SyntaxError, Pos: open.Pos, Message: "unterminated list"}
		default:
			tok := p.peek()
			return nil, &ParseError{Kind: SyntaxError, Pos: tok.Pos, Message: fmt.Sprintf("unexpected %s in list", tok.Type)}
		}
	}
}

func (p *parser) parseCall() (Node, error) {
	name := p.next() // identifier
	p.next()         // '('

	spec, ok := builtins[name.Str]
	if !ok {
		return nil, &ParseError{Kind: InvalidFunction, Pos: name.Pos, Message: fmt.Sprintf("unknown function %q", name.Str)}
	}

	var args []Node
	if p.peek().Type == TokenRParen {
		p.next()
	} else {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			tok := p.peek()
			if tok.Type == TokenComma {
				p.next()
				continue
			}
			if tok.Type == TokenRParen {
				p.next()
				break
			}
			if tok.Type == TokenEOF {
				return nil, &ParseError{Kind: UnbalancedParens, Pos: tok.Pos, Message: "missing ')' in function call"}
			}
			return nil, &ParseError{Kind: SyntaxError, Pos: tok.Pos, Message: fmt.Sprintf("unexpected %s in function arguments", tok.Type)}
		}
	}

	if len(args) < spec.minArgs || (spec.maxArgs >= 0 && len(args) > spec.maxArgs) {
		return nil, &ParseError{Kind: InvalidFunction, Pos: name.Pos, Message: fmt.Sprintf("%s expects %s, got %d", name.Str, spec.arity(), len(args))}
	}

	// exists() takes exactly one bare variable reference; anything else is
	// rejected here so the evaluator's no-raise lookup stays unambiguous.
	if name.Str == "exists" {
		if _, ok := args[0].(*VariableNode); !ok {
			return nil, &ParseError{Kind: InvalidFunction, Pos: name.Pos, Message: "exists() requires a variable reference argument"}
		}
	}

	return &CallNode{Name: name.Str, Args: args, Pos: name.Pos}, nil
}
