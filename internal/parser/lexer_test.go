package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/systolic/internal/ir"
)

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func lexemes(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Lexeme
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		types   []TokenType
		lexemes []string
	}{
		{
			name:    "empty",
			input:   "",
			types:   []TokenType{EOF},
			lexemes: []string{""},
		},
		{
			name:    "assignment",
			input:   "C = A @ B + D",
			types:   []TokenType{IDENT, ASSIGN, IDENT, AT, IDENT, PLUS, IDENT, EOF},
			lexemes: []string{"C", "=", "A", "@", "B", "+", "D", ""},
		},
		{
			name:    "matrix literal",
			input:   "[[1, 2], [3, 4]]",
			types:   []TokenType{LBRACKET, LBRACKET, NUMBER, COMMA, NUMBER, RBRACKET, COMMA, LBRACKET, NUMBER, COMMA, NUMBER, RBRACKET, RBRACKET, EOF},
			lexemes: []string{"[", "[", "1", ",", "2", "]", ",", "[", "3", ",", "4", "]", "]", ""},
		},
		{
			name:    "numpy call",
			input:   "np.zeros((3, 4))",
			types:   []TokenType{IDENT, DOT, IDENT, LPAREN, LPAREN, NUMBER, COMMA, NUMBER, RPAREN, RPAREN, EOF},
			lexemes: []string{"np", ".", "zeros", "(", "(", "3", ",", "4", ")", ")", ""},
		},
		{
			name:    "transpose",
			input:   "A.T",
			types:   []TokenType{IDENT, DOT, IDENT, EOF},
			lexemes: []string{"A", ".", "T", ""},
		},
		{
			name:    "number forms",
			input:   "1 2.5 1e-3 4E2 3. 2.T",
			types:   []TokenType{NUMBER, NUMBER, NUMBER, NUMBER, NUMBER, NUMBER, DOT, IDENT, EOF},
			lexemes: []string{"1", "2.5", "1e-3", "4E2", "3.", "2", ".", "T", ""},
		},
		{
			name:    "minus is separate",
			input:   "-3",
			types:   []TokenType{MINUS, NUMBER, EOF},
			lexemes: []string{"-", "3", ""},
		},
		{
			name:    "comments",
			input:   "# setup\nA = B # trailing\n",
			types:   []TokenType{IDENT, ASSIGN, IDENT, EOF},
			lexemes: []string{"A", "=", "B", ""},
		},
		{
			name:    "punctuation",
			input:   "* / ; :",
			types:   []TokenType{STAR, SLASH, SEMICOLON, COLON, EOF},
			lexemes: []string{"*", "/", ";", ":", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.types, types(tokens))
			assert.Equal(t, tt.lexemes, lexemes(tokens))
		})
	}
}

func TestLexPositions(t *testing.T) {
	tokens, err := Lex("A = B\n  C_2 @ x1")
	require.NoError(t, err)
	require.Len(t, tokens, 7)

	assert.Equal(t, ir.Position{Line: 1, Column: 1}, tokens[0].Pos)
	assert.Equal(t, ir.Position{Line: 1, Column: 3}, tokens[1].Pos)
	assert.Equal(t, ir.Position{Line: 1, Column: 5}, tokens[2].Pos)
	assert.Equal(t, ir.Position{Line: 2, Column: 3}, tokens[3].Pos)
	assert.Equal(t, "C_2", tokens[3].Lexeme)
	assert.Equal(t, ir.Position{Line: 2, Column: 7}, tokens[4].Pos)
	assert.Equal(t, ir.Position{Line: 2, Column: 9}, tokens[5].Pos)
	assert.Equal(t, ir.Position{Line: 2, Column: 11}, tokens[6].Pos)
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bad character", "A $ B", `1:3: PARSE_ERROR: unexpected character '$'`},
		{"bad exponent", "\n1e+", `2:1: PARSE_ERROR: malformed exponent in "1e+"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input)
			require.Error(t, err)
			code, ok := ir.CodeOf(err)
			require.True(t, ok)
			assert.Equal(t, ir.ErrCodeParse, code)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
