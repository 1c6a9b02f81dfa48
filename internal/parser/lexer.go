package parser

import (
	"unicode"

	"github.com/roach88/systolic/internal/ir"
)

var punctuation = map[rune]TokenType{
	'@': AT,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'=': ASSIGN,
	'.': DOT,
	'(': LPAREN,
	')': RPAREN,
	'[': LBRACKET,
	']': RBRACKET,
	',': COMMA,
	';': SEMICOLON,
	':': COLON,
}

// lexer holds the mutable state of one scan over src.
type lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // 1-based
	col  int // 1-based column of src[pos]
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1, col: 1}
}

// Lex splits src into tokens. The result always ends with an EOF token.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) position() ir.Position {
	return ir.Position{Line: l.line, Column: l.col}
}

func (l *lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

// skipTrivia discards whitespace and '#' comments.
func (l *lexer) skipTrivia() {
	for !l.atEnd() {
		switch r := l.peek(); {
		case unicode.IsSpace(r):
			l.advance()
		case r == '#':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (Token, error) {
	l.skipTrivia()
	pos := l.position()
	if l.atEnd() {
		return Token{Type: EOF, Pos: pos}, nil
	}

	r := l.peek()
	switch {
	case unicode.IsLetter(r) || r == '_':
		return l.scanIdent(pos), nil
	case isDigit(r):
		return l.scanNumber(pos)
	}

	if tt, ok := punctuation[r]; ok {
		l.advance()
		return Token{Type: tt, Lexeme: string(r), Pos: pos}, nil
	}
	return Token{}, ir.NewParseError(pos, "unexpected character %q", r)
}

func (l *lexer) scanIdent(pos ir.Position) Token {
	start := l.pos
	for !l.atEnd() {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	return Token{Type: IDENT, Lexeme: string(l.src[start:l.pos]), Pos: pos}
}

// scanNumber collects digits, an optional fraction and an optional exponent.
// A '.' is only part of the number when a digit follows, so `2.T` still
// lexes as NUMBER DOT IDENT.
func (l *lexer) scanNumber(pos ir.Position) (Token, error) {
	start := l.pos
	l.digits()
	if l.peek() == '.' && isDigit(l.peek2()) {
		l.advance()
		l.digits()
	} else if l.peek() == '.' && !unicode.IsLetter(l.peek2()) {
		// trailing dot: "2." is 2.0
		l.advance()
	}
	if r := l.peek(); r == 'e' || r == 'E' {
		next := l.peek2()
		if isDigit(next) || next == '+' || next == '-' {
			l.advance()
			if next == '+' || next == '-' {
				l.advance()
			}
			if !isDigit(l.peek()) {
				return Token{}, ir.NewParseError(pos, "malformed exponent in %q", string(l.src[start:l.pos]))
			}
			l.digits()
		}
	}
	return Token{Type: NUMBER, Lexeme: string(l.src[start:l.pos]), Pos: pos}, nil
}

func (l *lexer) digits() {
	for isDigit(l.peek()) {
		l.advance()
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
