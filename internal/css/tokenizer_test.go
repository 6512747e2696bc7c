package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelweb/kestrel/internal/bytestream"
	"github.com/kestrelweb/kestrel/internal/handler"
)

func tokenizeAll(t *testing.T, input string) []Token {
	t.Helper()
	stream := bytestream.NewFromString(input, bytestream.UTF8)
	stream.Close()
	tok := New(stream, handler.New("test"))

	var toks []Token
	for {
		tk := tok.Consume()
		toks = append(toks, tk)
		if tk.Type == EOFToken {
			return toks
		}
	}
}

func TestTokenizeIdentAndPunctuation(t *testing.T) {
	toks := tokenizeAll(t, `div, .cls { color: red; }`)
	want := []TokenType{
		IdentToken, CommaToken, WhitespaceToken, DelimToken, IdentToken, WhitespaceToken,
		LCurlyToken, WhitespaceToken, IdentToken, ColonToken, WhitespaceToken, IdentToken,
		SemicolonToken, WhitespaceToken, RCurlyToken, EOFToken,
	}
	require.Lenf(t, toks, len(want), "%+v", toks)
	for i, w := range want {
		assert.Equalf(t, w, toks[i].Type, "token %d", i)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	cases := []struct {
		input string
		want  float64
		typ   TokenType
		unit  string
	}{
		{"1", 1, NumberToken, ""},
		{"-1", -1, NumberToken, ""},
		{"1.5", 1.5, NumberToken, ""},
		{"1e1", 10, NumberToken, ""},
		{"1e+1", 10, NumberToken, ""},
		{"1e-1", 0.1, NumberToken, ""},
		{"50%", 50, PercentageToken, ""},
		{"10px", 10, DimensionToken, "px"},
		{"-10px", -10, DimensionToken, "px"},
	}
	for _, tc := range cases {
		toks := tokenizeAll(t, tc.input)
		if !assert.Equalf(t, tc.typ, toks[0].Type, "%q: type", tc.input) {
			continue
		}
		assert.Equalf(t, tc.want, toks[0].Number, "%q: number", tc.input)
		assert.Equalf(t, tc.unit, toks[0].Unit, "%q: unit", tc.input)
	}
}

func TestTokenizeStringAndBadString(t *testing.T) {
	toks := tokenizeAll(t, `"hello"`)
	require.Equal(t, StringToken, toks[0].Type)
	assert.Equal(t, "hello", toks[0].Value)

	toks = tokenizeAll(t, "\"unterminated\nrest")
	require.Equal(t, BadStringToken, toks[0].Type)
	assert.Equal(t, "unterminated", toks[0].Value)
}

func TestTokenizeEscape(t *testing.T) {
	toks := tokenizeAll(t, `"\41 "`)
	require.Equal(t, StringToken, toks[0].Type)
	assert.Equal(t, "A", toks[0].Value)
}

func TestTokenizeURL(t *testing.T) {
	toks := tokenizeAll(t, `url(foo.png)`)
	require.Equal(t, URLToken, toks[0].Type)
	assert.Equal(t, "foo.png", toks[0].Value)

	toks = tokenizeAll(t, `url("foo.png")`)
	require.Equalf(t, FunctionToken, toks[0].Type, "quoted url() must tokenize as a function, got %+v", toks[0])
	assert.Equal(t, "url", toks[0].Value)
}

func TestTokenizeBadURL(t *testing.T) {
	toks := tokenizeAll(t, `url(foo bar)`)
	assert.Equal(t, BadURLToken, toks[0].Type)
}

func TestTokenizeHashAndIDHash(t *testing.T) {
	toks := tokenizeAll(t, `#main #1`)
	require.Equal(t, IDHashToken, toks[0].Type)
	assert.Equal(t, "main", toks[0].Value)

	toks2 := tokenizeAll(t, `#1`)
	require.Equal(t, HashToken, toks2[0].Type)
	assert.Equal(t, "1", toks2[0].Value)
}

func TestTokenizeAtKeyword(t *testing.T) {
	toks := tokenizeAll(t, `@media`)
	require.Equal(t, AtKeywordToken, toks[0].Type)
	assert.Equal(t, "media", toks[0].Value)
}

func TestTokenizeFunction(t *testing.T) {
	toks := tokenizeAll(t, `rgba(0, 0, 0, 1)`)
	require.Equal(t, FunctionToken, toks[0].Type)
	assert.Equal(t, "rgba", toks[0].Value)
}

func TestTokenizeCDOAndCDC(t *testing.T) {
	toks := tokenizeAll(t, `<!-- -->`)
	assert.Equal(t, CDOToken, toks[0].Type)
	assert.Equal(t, CDCToken, toks[2].Type)
}

func TestTokenizeComment(t *testing.T) {
	toks := tokenizeAll(t, `/* hi */div`)
	require.Equal(t, CommentToken, toks[0].Type)
	assert.Equal(t, " hi ", toks[0].Value)
	require.Equal(t, IdentToken, toks[1].Type)
	assert.Equal(t, "div", toks[1].Value)
}

func TestLookAheadSCSkipsWhitespaceAndComments(t *testing.T) {
	stream := bytestream.NewFromString(`a /* c */ b`, bytestream.UTF8)
	stream.Close()
	tok := New(stream, handler.New("test"))

	first := tok.LookAheadSC(0)
	second := tok.LookAheadSC(1)
	assert.Equal(t, "a", first.Value)
	assert.Equal(t, "b", second.Value)
}

func TestReconsume(t *testing.T) {
	stream := bytestream.NewFromString(`a b`, bytestream.UTF8)
	stream.Close()
	tok := New(stream, handler.New("test"))

	first := tok.Consume()
	tok.Reconsume()
	again := tok.Consume()
	assert.Equal(t, first, again, "Reconsume should replay the same token")
}

func TestTokenizeRuleWithSourceColumns(t *testing.T) {
	toks := tokenizeAll(t, `test { color: #123; background-color: #11223344 }`)

	want := []struct {
		typ TokenType
		col int
	}{
		{IdentToken, 1}, {WhitespaceToken, 5}, {LCurlyToken, 6}, {WhitespaceToken, 7},
		{IdentToken, 8}, {ColonToken, 13}, {WhitespaceToken, 14}, {HashToken, 15},
		{SemicolonToken, 19}, {WhitespaceToken, 20}, {IdentToken, 21}, {ColonToken, 37},
		{WhitespaceToken, 38}, {HashToken, 39}, {WhitespaceToken, 48}, {RCurlyToken, 49},
	}
	require.Len(t, toks, len(want)+1) // plus EOF
	for i, w := range want {
		assert.Equalf(t, w.typ, toks[i].Type, "token %d type", i)
		assert.Equalf(t, 1, toks[i].Pos.Line, "token %d line", i)
		assert.Equalf(t, w.col, toks[i].Pos.Col, "token %d column", i)
	}
	assert.Equal(t, "123", toks[7].Value)
	assert.Equal(t, "11223344", toks[13].Value)
}

func TestNegativeIdentDoesNotLookLikeNumber(t *testing.T) {
	toks := tokenizeAll(t, `-webkit-transform`)
	require.Equal(t, IdentToken, toks[0].Type)
	assert.Equal(t, "-webkit-transform", toks[0].Value)
}
