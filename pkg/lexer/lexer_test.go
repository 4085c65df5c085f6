package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) []Token {
	t.Helper()
	l := New(input)
	var tokens []Token
	for {
		tok, err := l.Read()
		require.NoError(t, err)
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return tokens
}

func TestLexerPunctuators(t *testing.T) {
	tokens := readAll(t, "!$&():=@[]{|}...")
	kinds := make([]Kind, 0, len(tokens))
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []Kind{
		Bang, Dollar, Amp, LParen, RParen, Colon, Equals, At,
		LBracket, RBracket, LBrace, Pipe, RBrace, Spread, EOF,
	}, kinds)
}

func TestLexerName(t *testing.T) {
	tokens := readAll(t, "matchupAnalysis _private Field2")
	require.Len(t, tokens, 4)
	assert.Equal(t, "matchupAnalysis", tokens[0].Literal)
	assert.Equal(t, "_private", tokens[1].Literal)
	assert.Equal(t, "Field2", tokens[2].Literal)
}

func TestLexerNumbers(t *testing.T) {
	tokens := readAll(t, "10 -5 3.14 1e10 -2.5e-3")
	require.Len(t, tokens, 6)
	assert.Equal(t, Int, tokens[0].Kind)
	assert.Equal(t, "10", tokens[0].Literal)
	assert.Equal(t, Int, tokens[1].Kind)
	assert.Equal(t, "-5", tokens[1].Literal)
	assert.Equal(t, Float, tokens[2].Kind)
	assert.Equal(t, "3.14", tokens[2].Literal)
	assert.Equal(t, Float, tokens[3].Kind)
	assert.Equal(t, "1e10", tokens[3].Literal)
	assert.Equal(t, Float, tokens[4].Kind)
	assert.Equal(t, "-2.5e-3", tokens[4].Literal)
}

func TestLexerString(t *testing.T) {
	tokens := readAll(t, `"hello \"world\"\n"`)
	require.Len(t, tokens, 2)
	assert.Equal(t, String, tokens[0].Kind)
	assert.Equal(t, "hello \"world\"\n", tokens[0].Literal)
}

func TestLexerBlockString(t *testing.T) {
	tokens := readAll(t, "\"\"\"\n  hello\n  world\n\"\"\"")
	require.Len(t, tokens, 2)
	assert.Equal(t, BlockString, tokens[0].Kind)
	assert.Equal(t, "hello\nworld", tokens[0].Literal)
}

func TestLexerCommaIsIgnored(t *testing.T) {
	tokens := readAll(t, "a, b ,c")
	require.Len(t, tokens, 4)
	for _, tok := range tokens[:3] {
		assert.Equal(t, Name, tok.Kind)
	}
}

func TestLexerComment(t *testing.T) {
	tokens := readAll(t, "# a comment\nfield")
	require.Len(t, tokens, 3)
	assert.Equal(t, Comment, tokens[0].Kind)
	assert.Equal(t, Name, tokens[1].Kind)
	assert.Equal(t, "field", tokens[1].Literal)
}

func TestLexerUnterminatedString(t *testing.T) {
	l := New(`"unterminated`)
	_, err := l.Read()
	require.Error(t, err)
	assert.IsType(t, ErrUnterminatedString{}, err)
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	l := New("^")
	_, err := l.Read()
	require.Error(t, err)
	assert.IsType(t, ErrUnexpectedCharacter{}, err)
}

func TestLexerPositionTracksLinesAndColumns(t *testing.T) {
	l := New("a\nb")
	first, err := l.Read()
	require.NoError(t, err)
	assert.Equal(t, Position{Line: 1, Column: 1}, first.Position)

	second, err := l.Read()
	require.NoError(t, err)
	assert.Equal(t, Position{Line: 2, Column: 1}, second.Position)
}
