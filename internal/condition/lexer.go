// internal/condition/lexer.go
package condition

import (
	"fmt"
	"strconv"
)

/*
 * Lexer for the condition grammar.
 *
 * Converts a raw condition string into a token stream terminated by an EOF
 * token. Recognizes dotted identifier paths, integer/decimal numbers with
 * an optional leading minus, double-quoted strings with a fixed escape set
 * (\" \\ \n \r \t), boolean literals, keyword operators, comparison
 * operators, and punctuation. Whitespace between tokens is insignificant.
 *
 * The lexer never silently drops input: unterminated strings, bad escapes,
 * malformed numbers, and illegal characters all fail with a LexError
 * anchored at the byte offset of the offending token start.
 */

// Tokenize converts input into a token stream ending with TokenEOF.
func Tokenize(input string) ([]Token, error) {
	l := lexer{input: input}
	return l.run()
}

type lexer struct {
	input string
	pos   int
	toks  []Token
}

func (l *lexer) run() ([]Token, error) {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case isIdentStart(c):
			l.scanIdent()
		case isDigit(c):
			if err := l.scanNumber(); err != nil {
				return nil, err
			}
		case c == '-':
			if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
				if err := l.scanNumber(); err != nil {
					return nil, err
				}
			} else {
				return nil, &LexError{Pos: l.pos, Message: "'-' must introduce a number"}
			}
		case c == '"':
			if err := l.scanString(); err != nil {
				return nil, err
			}
		default:
			if err := l.scanOperator(); err != nil {
				return nil, err
			}
		}
	}
	l.emit(Token{Type: TokenEOF, Pos: l.pos})
	return l.toks, nil
}

func (l *lexer) emit(t Token) {
	l.toks = append(l.toks, t)
}

// scanIdent consumes an identifier or dotted path, then classifies it as a
// keyword operator, boolean literal, or plain identifier.
func (l *lexer) scanIdent() {
	start := l.pos
	l.pos++
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if isIdentPart(c) {
			l.pos++
			continue
		}
		// Dot continues the path only when followed by an identifier start.
		if c == '.' && l.pos+1 < len(l.input) && isIdentStart(l.input[l.pos+1]) {
			l.pos += 2
			continue
		}
		break
	}
	lexeme := l.input[start:l.pos]

	if kw, ok := keywords[lexeme]; ok {
		if kw == TokenBool {
			l.emit(Token{Type: TokenBool, Lexeme: lexeme, Pos: start, Bool: lexeme == "true"})
			return
		}
		l.emit(Token{Type: kw, Lexeme: lexeme, Pos: start})
		return
	}
	l.emit(Token{Type: TokenIdent, Lexeme: lexeme, Pos: start, Str: lexeme})
}

// scanNumber consumes an optionally signed integer or decimal literal.
func (l *lexer) scanNumber() error {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return &LexError{Pos: start, Message: "malformed number: missing digits after decimal point"}
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	lexeme := l.input[start:l.pos]
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return &LexError{Pos: start, Message: fmt.Sprintf("malformed number %q", lexeme)}
	}
	l.emit(Token{Type: TokenNumber, Lexeme: lexeme, Pos: start, Num: f})
	return nil
}

// scanString consumes a double-quoted string, decoding the fixed escape
// set into Token.Str.
func (l *lexer) scanString() error {
	start := l.pos
	l.pos++ // opening quote
	var buf []byte
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case '"':
			l.pos++
			l.emit(Token{Type: TokenString, Lexeme: l.input[start:l.pos], Pos: start, Str: string(buf)})
			return nil
		case '\\':
			if l.pos+1 >= len(l.input) {
				return &LexError{Pos: start, Message: "unterminated string"}
			}
			esc := l.input[l.pos+1]
			switch esc {
			case '"':
				buf = append(buf, '"')
			case '\\':
				buf = append(buf, '\\')
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			default:
				return &LexError{Pos: l.pos, Message: fmt.Sprintf("invalid escape sequence \\%c", esc)}
			}
			l.pos += 2
		case '\n':
			return &LexError{Pos: start, Message: "unterminated string"}
		default:
			buf = append(buf, c)
			l.pos++
		}
	}
	return &LexError{Pos: start, Message: "unterminated string"}
}

// scanOperator consumes comparison operators and punctuation.
func (l *lexer) scanOperator() error {
	start := l.pos
	c := l.input[l.pos]

	two := func(t TokenType) {
		l.emit(Token{Type: t, Lexeme: l.input[start : start+2], Pos: start})
		l.pos += 2
	}
	one := func(t TokenType) {
		l.emit(Token{Type: t, Lexeme: l.input[start : start+1], Pos: start})
		l.pos++
	}

	next := byte(0)
	if l.pos+1 < len(l.input) {
		next = l.input[l.pos+1]
	}

	switch c {
	case '=':
		if next != '=' {
			return &LexError{Pos: start, Message: "'=' is not an operator (did you mean '==')"}
		}
		two(TokenEq)
	case '!':
		if next != '=' {
			return &LexError{Pos: start, Message: "'!' is not an operator (did you mean '!=' or NOT)"}
		}
		two(TokenNeq)
	case '<':
		if next == '=' {
			two(TokenLte)
		} else {
			one(TokenLt)
		}
	case '>':
		if next == '=' {
			two(TokenGte)
		} else {
			one(TokenGt)
		}
	case '(':
		one(TokenLParen)
	case ')':
		one(TokenRParen)
	case '[':
		one(TokenLBracket)
	case ']':
		one(TokenRBracket)
	case ',':
		one(TokenComma)
	default:
		return &LexError{Pos: start, Message: fmt.Sprintf("illegal character %q", c)}
	}
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
