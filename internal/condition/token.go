// internal/condition/token.go
package condition

/*
 * Lexical tokens for the condition grammar.
 *
 * The token stream is the contract between lexer and parser. Each token
 * carries its byte offset into the original condition string so that lex
 * and parse errors can point authors at the exact position.
 *
 * Keyword operators (AND, OR, NOT, IN) are case-sensitive uppercase and
 * boolean literals (true, false) are case-sensitive lowercase. This casing
 * is part of the published condition format; "and" or "True" are ordinary
 * identifiers, not operators or literals.
 */

// TokenType enumerates every token kind the lexer can emit.
type TokenType int

const (
	TokenEOF TokenType = iota

	// Literals and identifiers
	TokenIdent  // dotted variable path: score, user.choice
	TokenNumber // 42, -3.5
	TokenString // "quoted", with escapes decoded into Token.Str
	TokenBool   // true, false

	// Keyword operators
	TokenAnd // AND
	TokenOr  // OR
	TokenNot // NOT
	TokenIn  // IN

	// Comparison operators
	TokenEq  // ==
	TokenNeq // !=
	TokenLt  // <
	TokenLte // <=
	TokenGt  // >
	TokenGte // >=

	// Punctuation
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]
	TokenComma    // ,
)

// Token is one lexical unit of a condition string.
// Lexeme is the verbatim source slice; Num/Str/Bool hold the decoded
// literal value for the corresponding token types.
type Token struct {
	Type   TokenType
	Lexeme string
	Pos    int // byte offset of the token start
	Num    float64
	Str    string
	Bool   bool
}

// keywords maps case-sensitive keyword spellings to token types.
var keywords = map[string]TokenType{
	"AND":   TokenAnd,
	"OR":    TokenOr,
	"NOT":   TokenNot,
	"IN":    TokenIn,
	"true":  TokenBool,
	"false": TokenBool,
}

// String returns the canonical spelling of a token type for error messages.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenIdent:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenBool:
		return "boolean"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenNot:
		return "NOT"
	case TokenIn:
		return "IN"
	case TokenEq:
		return "=="
	case TokenNeq:
		return "!="
	case TokenLt:
		return "<"
	case TokenLte:
		return "<="
	case TokenGt:
		return ">"
	case TokenGte:
		return ">="
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenComma:
		return ","
	default:
		return "unknown"
	}
}
