package parser

import (
	"fmt"

	"github.com/roach88/systolic/internal/ir"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // end of input

	IDENT  // A, matrix_name, np
	NUMBER // 1, 2.5, 1e-3

	// Operators
	AT     // @
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	ASSIGN // =
	DOT    // .

	// Punctuation
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
)

var tokenNames = [...]string{
	EOF:       "end of input",
	IDENT:     "identifier",
	NUMBER:    "number",
	AT:        "@",
	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	ASSIGN:    "=",
	DOT:       ".",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COMMA:     ",",
	SEMICOLON: ";",
	COLON:     ":",
}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenNames) {
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
	return tokenNames[t]
}

// Token is one lexeme with its source position.
type Token struct {
	Type   TokenType
	Lexeme string
	Pos    ir.Position
}

// describe renders t for error messages.
func (t Token) describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case IDENT, NUMBER:
		return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
	default:
		return fmt.Sprintf("token %q", t.Lexeme)
	}
}
