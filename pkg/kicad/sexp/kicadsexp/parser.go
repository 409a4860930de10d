package kicadsexp

import (
	"fmt"
	"io"
)

// SyntaxError reports malformed S-expression input at a position.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d (offset %d): %s",
		e.Pos.Line, e.Pos.Column, e.Pos.Offset, e.Msg)
}

// Parser parses S-expressions from a lexer
type Parser struct {
	lexer   *Lexer
	current Token
}

// NewParser creates a new parser from an io.Reader
func NewParser(r io.Reader) *Parser {
	return &Parser{
		lexer: NewLexer(r),
	}
}

// ParseAll parses all top-level S-expressions from the input
func (p *Parser) ParseAll() ([]Sexp, error) {
	var result []Sexp

	if err := p.advance(); err != nil {
		return nil, err
	}

	for p.current.Type != TokenEOF {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		result = append(result, expr)

		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (p *Parser) advance() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

// parseExpr parses a single S-expression starting at the current token
func (p *Parser) parseExpr() (Sexp, error) {
	switch p.current.Type {
	case TokenLeftParen:
		return p.parseList()

	case TokenSymbol, TokenString:
		return Symbol(p.current.Value), nil

	case TokenRightParen:
		return nil, &SyntaxError{Pos: p.current.Pos, Msg: "unexpected ')'"}

	default:
		return nil, &SyntaxError{Pos: p.current.Pos, Msg: "unexpected end of input"}
	}
}

// parseList parses a list: ( ... )
func (p *Parser) parseList() (Sexp, error) {
	open := p.current.Pos
	elements := []Sexp{}

	for {
		if err := p.advance(); err != nil {
			return nil, err
		}

		if p.current.Type == TokenRightParen {
			break
		}

		if p.current.Type == TokenEOF {
			return nil, &SyntaxError{Pos: open, Msg: "missing ')' for list opened here"}
		}

		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
	}

	return &List{elements: elements}, nil
}
