package parser

import (
	"strconv"

	"github.com/roach88/systolic/internal/ir"
)

// Parser consumes the token slice produced by Lex and builds an ir.Program.
//
// Grammar, lowest precedence first:
//
//	program   = statement ((";" | newline) statement)* EOF
//	statement = IDENT "=" expr | expr
//	expr      = term (("+" | "-") term)*
//	term      = matmul ("*" matmul)*
//	matmul    = unary ("@" unary)*
//	unary     = "-" unary | postfix
//	postfix   = primary ("." "T" | "." IDENT "(" args ")")*
//	primary   = NUMBER | IDENT ["(" args ")"] | ("np" | "numpy") "." IDENT "(" args ")"
//	          | "(" expr ("," expr)* [","] ")" | matrix
//	matrix    = "[" (row ("," row)* [","] | numbers) "]"
//	row       = "[" numbers "]"
type Parser struct {
	tokens []Token
	pos    int
	prev   Token
}

// NewParser returns a parser over tokens, which must end with EOF.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes and parses src.
func Parse(src string) (ir.Program, error) {
	tokens, err := Lex(src)
	if err != nil {
		return ir.Program{}, err
	}
	return NewParser(tokens).ParseProgram()
}

// ParseExpr parses src as a single expression.
func ParseExpr(src string) (ir.Expr, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := NewParser(tokens)
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.unexpected(tok)
	}
	return expr, nil
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		var pos ir.Position
		if n := len(p.tokens); n > 0 {
			pos = p.tokens[n-1].Pos
		}
		return Token{Type: EOF, Pos: pos}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	p.prev = tok
	return tok
}

func (p *Parser) check(tt TokenType) bool {
	return p.peek().Type == tt
}

// match consumes the current token if it is tt.
func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, ir.NewParseError(tok.Pos, "expected %q, got %s", tt.String(), tok.describe())
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(tok Token) error {
	if tok.Type == EOF {
		return ir.NewParseError(tok.Pos, "unexpected end of input")
	}
	return ir.NewParseError(tok.Pos, "unexpected %s", tok.describe())
}

// ParseProgram parses every statement up to EOF.
func (p *Parser) ParseProgram() (ir.Program, error) {
	var prog ir.Program
	for {
		for p.match(SEMICOLON) {
		}
		if p.check(EOF) {
			return prog, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return ir.Program{}, err
		}
		prog.Statements = append(prog.Statements, stmt)

		// Statements end at ';', a line break, or EOF.
		next := p.peek()
		if next.Type != EOF && next.Type != SEMICOLON && next.Pos.Line == p.prev.Pos.Line {
			return ir.Program{}, p.unexpected(next)
		}
	}
}

func (p *Parser) parseStatement() (ir.Statement, error) {
	if p.check(IDENT) && p.peekAt(1).Type == ASSIGN {
		target := p.advance().Lexeme
		p.advance() // =
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ir.Assignment{Target: target, Value: value}, nil
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ir.ExprStmt{Value: value}, nil
}

func (p *Parser) parseExpr() (ir.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		op := p.advance().Type
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == PLUS {
			left = &ir.Add{Left: left, Right: right}
		} else {
			left = &ir.Sub{Left: left, Right: right}
		}
	}
	return left, nil
}

// parseTerm handles '*'. A number literal on the left makes it a scalar
// multiply; anything else is elementwise.
func (p *Parser) parseTerm() (ir.Expr, error) {
	left, err := p.parseMatMul()
	if err != nil {
		return nil, err
	}
	for p.match(STAR) {
		right, err := p.parseMatMul()
		if err != nil {
			return nil, err
		}
		if _, ok := left.(*ir.Number); ok {
			left = &ir.ScalarMul{Scalar: left, Matrix: right}
		} else {
			left = &ir.ElementMul{Left: left, Right: right}
		}
	}
	return left, nil
}

func (p *Parser) parseMatMul() (ir.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(AT) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ir.MatMul{Left: left, Right: right}
	}
	return left, nil
}

// parseUnary folds '-' into number literals and lowers it to a scalar
// multiply by -1 everywhere else.
func (p *Parser) parseUnary() (ir.Expr, error) {
	if !p.match(MINUS) {
		return p.parsePostfix()
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if n, ok := operand.(*ir.Number); ok {
		return &ir.Number{Value: -n.Value}, nil
	}
	return &ir.ScalarMul{Scalar: &ir.Number{Value: -1}, Matrix: operand}, nil
}

func (p *Parser) parsePostfix() (ir.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.check(DOT) {
		p.advance()
		name, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		switch {
		case name.Lexeme == "T":
			expr = &ir.Transpose{Operand: expr}
		case p.check(LPAREN):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &ir.Call{Name: name.Lexeme, Args: append([]ir.Expr{expr}, args...)}
		default:
			return nil, ir.NewParseError(name.Pos, "unknown attribute %q", name.Lexeme)
		}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (ir.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		v, err := parseNumber(tok)
		if err != nil {
			return nil, err
		}
		return &ir.Number{Value: v}, nil

	case IDENT:
		p.advance()
		if isNamespace(tok.Lexeme) && p.check(DOT) {
			p.advance()
			fn, err := p.expect(IDENT)
			if err != nil {
				return nil, err
			}
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ir.Call{Name: tok.Lexeme + "." + fn.Lexeme, Args: args}, nil
		}
		if p.check(LPAREN) {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ir.Call{Name: tok.Lexeme, Args: args}, nil
		}
		return &ir.Variable{Name: tok.Lexeme}, nil

	case LPAREN:
		return p.parseGroup()

	case LBRACKET:
		return p.parseMatrix()
	}
	return nil, p.unexpected(tok)
}

func isNamespace(name string) bool {
	return name == "np" || name == "numpy"
}

// parseGroup parses a parenthesized expression or a tuple. A trailing comma
// makes a one-element tuple, as in Python.
func (p *Parser) parseGroup() (ir.Expr, error) {
	p.advance() // (
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.check(COMMA) {
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return first, nil
	}

	elems := []ir.Expr{first}
	for p.match(COMMA) {
		if p.check(RPAREN) {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &ir.Tuple{Elements: elems}, nil
}

func (p *Parser) parseArgs() ([]ir.Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var args []ir.Expr
	for !p.check(RPAREN) {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parseMatrix parses a 2-D literal, or a flat list which becomes a single
// row vector. Rows must be non-empty and of equal length.
func (p *Parser) parseMatrix() (ir.Expr, error) {
	open := p.advance() // [

	if !p.check(LBRACKET) {
		row, err := p.parseNumbers()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		if len(row) == 0 {
			return nil, ir.NewParseError(open.Pos, "empty matrix literal")
		}
		return &ir.MatrixLiteral{Rows: [][]float64{row}}, nil
	}

	var rows [][]float64
	for p.check(LBRACKET) {
		rowTok := p.advance()
		row, err := p.parseNumbers()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}
		if len(row) == 0 {
			return nil, ir.NewParseError(rowTok.Pos, "empty matrix row")
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, ir.NewParseError(rowTok.Pos, "row %d has %d elements, expected %d", len(rows), len(row), len(rows[0]))
		}
		rows = append(rows, row)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	return &ir.MatrixLiteral{Rows: rows}, nil
}

// parseNumbers parses a comma-separated list of optionally negated numbers,
// stopping before ']'. A trailing comma is allowed.
func (p *Parser) parseNumbers() ([]float64, error) {
	var values []float64
	for !p.check(RBRACKET) {
		neg := p.match(MINUS)
		tok := p.peek()
		if tok.Type != NUMBER {
			return nil, ir.NewParseError(tok.Pos, "expected number in matrix literal, got %s", tok.describe())
		}
		p.advance()
		v, err := parseNumber(tok)
		if err != nil {
			return nil, err
		}
		if neg {
			v = -v
		}
		values = append(values, v)
		if !p.match(COMMA) {
			break
		}
	}
	return values, nil
}

func parseNumber(tok Token) (float64, error) {
	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return 0, ir.NewParseError(tok.Pos, "invalid number %q", tok.Lexeme)
	}
	return v, nil
}
