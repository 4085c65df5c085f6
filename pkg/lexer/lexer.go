// Package lexer turns a raw GraphQL query string into a stream of tokens.
// It mirrors the read/peek shape of the teacher's astparser.Tokenizer
// (github.com/wundergraph/graphql-go-tools/v2/pkg/astparser), but reads
// directly off a string instead of an interned byte-slice arena, since this
// component tokenizes exactly one document per request and then discards it.
package lexer

import (
	"fmt"
	"strings"
)

// Lexer is a single-pass byte scanner over a GraphQL document.
type Lexer struct {
	input  string
	pos    int
	line   int
	column int
}

// New returns a Lexer ready to scan input.
func New(input string) *Lexer {
	return &Lexer{input: input, pos: 0, line: 1, column: 1}
}

// ErrUnterminatedString is returned when a string or block string literal
// runs off the end of the input before its closing quote.
type ErrUnterminatedString struct {
	Position Position
}

func (e ErrUnterminatedString) Error() string {
	return fmt.Sprintf("unterminated string literal at %s", e.Position)
}

// ErrUnexpectedCharacter is returned when the scanner encounters a byte that
// cannot begin any valid token.
type ErrUnexpectedCharacter struct {
	Character byte
	Position  Position
}

func (e ErrUnexpectedCharacter) Error() string {
	return fmt.Sprintf("unexpected character %q at %s", e.Character, e.Position)
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekByteAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() byte {
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) skipIgnored() {
	for l.pos < len(l.input) {
		c := l.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance()
		case c == ',':
			// GraphQL treats the comma as insignificant whitespace.
			l.advance()
		default:
			return
		}
	}
}

// Read scans and returns the next token, advancing the cursor. Comments are
// returned (not skipped) so callers that care can filter them; the parser
// itself always discards them, matching §4.4's "no comments" canonicalization
// rule (there is nothing to preserve since the AST never retains comments).
func (l *Lexer) Read() (Token, error) {
	l.skipIgnored()

	pos := Position{Line: l.line, Column: l.column}
	if l.pos >= len(l.input) {
		return Token{Kind: EOF, Position: pos}, nil
	}

	c := l.peekByte()
	switch {
	case c == '#':
		return l.readComment(pos)
	case c == '!':
		l.advance()
		return Token{Kind: Bang, Position: pos}, nil
	case c == '$':
		l.advance()
		return Token{Kind: Dollar, Position: pos}, nil
	case c == '&':
		l.advance()
		return Token{Kind: Amp, Position: pos}, nil
	case c == '(':
		l.advance()
		return Token{Kind: LParen, Position: pos}, nil
	case c == ')':
		l.advance()
		return Token{Kind: RParen, Position: pos}, nil
	case c == '.':
		if l.peekByteAt(1) == '.' && l.peekByteAt(2) == '.' {
			l.advance()
			l.advance()
			l.advance()
			return Token{Kind: Spread, Position: pos}, nil
		}
		return Token{}, ErrUnexpectedCharacter{Character: c, Position: pos}
	case c == ':':
		l.advance()
		return Token{Kind: Colon, Position: pos}, nil
	case c == '=':
		l.advance()
		return Token{Kind: Equals, Position: pos}, nil
	case c == '@':
		l.advance()
		return Token{Kind: At, Position: pos}, nil
	case c == '[':
		l.advance()
		return Token{Kind: LBracket, Position: pos}, nil
	case c == ']':
		l.advance()
		return Token{Kind: RBracket, Position: pos}, nil
	case c == '{':
		l.advance()
		return Token{Kind: LBrace, Position: pos}, nil
	case c == '|':
		l.advance()
		return Token{Kind: Pipe, Position: pos}, nil
	case c == '}':
		l.advance()
		return Token{Kind: RBrace, Position: pos}, nil
	case c == '"':
		return l.readString(pos)
	case isNameStart(c):
		return l.readName(pos), nil
	case isDigit(c) || c == '-':
		return l.readNumber(pos)
	default:
		l.advance()
		return Token{}, ErrUnexpectedCharacter{Character: c, Position: pos}
	}
}

func (l *Lexer) readComment(pos Position) (Token, error) {
	start := l.pos
	for l.pos < len(l.input) && l.peekByte() != '\n' && l.peekByte() != '\r' {
		l.advance()
	}
	return Token{Kind: Comment, Literal: l.input[start:l.pos], Position: pos}, nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameContinue(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (l *Lexer) readName(pos Position) Token {
	start := l.pos
	for l.pos < len(l.input) && isNameContinue(l.peekByte()) {
		l.advance()
	}
	return Token{Kind: Name, Literal: l.input[start:l.pos], Position: pos}
}

func (l *Lexer) readNumber(pos Position) (Token, error) {
	start := l.pos
	isFloat := false

	if l.peekByte() == '-' {
		l.advance()
	}
	for l.pos < len(l.input) && isDigit(l.peekByte()) {
		l.advance()
	}
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		isFloat = true
		l.advance()
		for l.pos < len(l.input) && isDigit(l.peekByte()) {
			l.advance()
		}
	}
	if c := l.peekByte(); c == 'e' || c == 'E' {
		isFloat = true
		l.advance()
		if c := l.peekByte(); c == '+' || c == '-' {
			l.advance()
		}
		for l.pos < len(l.input) && isDigit(l.peekByte()) {
			l.advance()
		}
	}

	kind := Int
	if isFloat {
		kind = Float
	}
	return Token{Kind: kind, Literal: l.input[start:l.pos], Position: pos}, nil
}

func (l *Lexer) readString(pos Position) (Token, error) {
	// Block string: """..."""
	if l.peekByteAt(1) == '"' && l.peekByteAt(2) == '"' {
		l.advance()
		l.advance()
		l.advance()
		start := l.pos
		for {
			if l.pos >= len(l.input) {
				return Token{}, ErrUnterminatedString{Position: pos}
			}
			if l.peekByte() == '"' && l.peekByteAt(1) == '"' && l.peekByteAt(2) == '"' {
				raw := l.input[start:l.pos]
				l.advance()
				l.advance()
				l.advance()
				return Token{Kind: BlockString, Literal: blockStringValue(raw), Position: pos}, nil
			}
			l.advance()
		}
	}

	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.input) {
			return Token{}, ErrUnterminatedString{Position: pos}
		}
		c := l.peekByte()
		if c == '"' {
			l.advance()
			return Token{Kind: String, Literal: b.String(), Position: pos}, nil
		}
		if c == '\n' || c == '\r' {
			return Token{}, ErrUnterminatedString{Position: pos}
		}
		if c == '\\' {
			l.advance()
			if l.pos >= len(l.input) {
				return Token{}, ErrUnterminatedString{Position: pos}
			}
			esc := l.advance()
			switch esc {
			case '"', '\\', '/':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				if l.pos+4 > len(l.input) {
					return Token{}, ErrUnterminatedString{Position: pos}
				}
				hex := l.input[l.pos : l.pos+4]
				for i := 0; i < 4; i++ {
					l.advance()
				}
				var r rune
				fmt.Sscanf(hex, "%04x", &r)
				b.WriteRune(r)
			default:
				b.WriteByte(esc)
			}
			continue
		}
		b.WriteByte(c)
		l.advance()
	}
}

// blockStringValue applies the GraphQL spec's block string de-indentation
// algorithm (strip common leading whitespace, trim blank leading/trailing
// lines).
func blockStringValue(raw string) string {
	lines := strings.Split(raw, "\n")
	commonIndent := -1
	for i, line := range lines {
		if i == 0 {
			continue
		}
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if commonIndent == -1 || indent < commonIndent {
			commonIndent = indent
		}
	}
	if commonIndent > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= commonIndent {
				lines[i] = lines[i][commonIndent:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " \t")
			}
		}
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
