package kicadsexp

import (
	"bufio"
	"io"
	"unicode"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	default:
		return "unknown"
	}
}

// Position locates a token in the input. Offset counts runes from the start,
// Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
}

// Lexer tokenizes S-expressions from an io.Reader
type Lexer struct {
	reader *bufio.Reader
	peeked *rune
	pos    Position
}

// NewLexer creates a new lexer
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
		pos:    Position{Line: 1, Column: 1},
	}
}

// NextToken reads the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	for {
		ch, err := l.peek()
		if err != nil {
			if err == io.EOF {
				return Token{Type: TokenEOF, Pos: l.pos}, nil
			}
			return Token{}, err
		}
		if !unicode.IsSpace(ch) {
			break
		}
		l.read()
	}

	start := l.pos
	ch, _ := l.peek()

	switch ch {
	case '(':
		l.read()
		return Token{Type: TokenLeftParen, Value: "(", Pos: start}, nil

	case ')':
		l.read()
		return Token{Type: TokenRightParen, Value: ")", Pos: start}, nil

	case '"':
		return l.readString(start)

	default:
		return l.readSymbol(start)
	}
}

// peek looks at the next rune without consuming it
func (l *Lexer) peek() (rune, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}

	ch, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, err
	}

	l.peeked = &ch
	return ch, nil
}

// read consumes and returns the next rune, advancing the position
func (l *Lexer) read() (rune, error) {
	var ch rune
	if l.peeked != nil {
		ch = *l.peeked
		l.peeked = nil
	} else {
		var err error
		ch, _, err = l.reader.ReadRune()
		if err != nil {
			return 0, err
		}
	}

	l.pos.Offset++
	if ch == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}
	return ch, nil
}

// readString reads a quoted string, resolving escapes
func (l *Lexer) readString(start Position) (Token, error) {
	// Consume opening quote
	l.read()

	var result []rune
	for {
		ch, err := l.read()
		if err != nil {
			if err == io.EOF {
				return Token{}, &SyntaxError{Pos: start, Msg: "unterminated quoted string"}
			}
			return Token{}, err
		}

		if ch == '"' {
			break
		}

		if ch == '\\' {
			next, err := l.read()
			if err != nil {
				if err == io.EOF {
					return Token{}, &SyntaxError{Pos: start, Msg: "unterminated escape in quoted string"}
				}
				return Token{}, err
			}
			switch next {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case 'r':
				result = append(result, '\r')
			default:
				// \\ and \" land here, as does any unknown escape
				result = append(result, next)
			}
			continue
		}

		result = append(result, ch)
	}

	return Token{Type: TokenString, Value: string(result), Pos: start}, nil
}

// readSymbol reads an unquoted atom up to the next paren or whitespace
func (l *Lexer) readSymbol(start Position) (Token, error) {
	var result []rune

	for {
		ch, err := l.peek()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Token{}, err
		}

		if unicode.IsSpace(ch) || ch == '(' || ch == ')' {
			break
		}

		l.read()
		result = append(result, ch)
	}

	return Token{Type: TokenSymbol, Value: string(result), Pos: start}, nil
}
