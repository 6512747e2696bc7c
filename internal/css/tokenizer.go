package css

import (
	"strconv"
	"strings"

	"github.com/kestrelweb/kestrel/internal/bytestream"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/loc"
)

// Tokenizer turns a bytestream.Stream into CSS Syntax Level 3 Tokens,
// buffering everything it has produced so far in tokens and tracking a
// position pointer into that buffer. LookAhead/LookAheadSC/Reconsume all
// operate against the buffer rather than the underlying stream, mirroring
// the gosub_css3 tokenizer's own buffered-token-list design.
type Tokenizer struct {
	stream *bytestream.Stream
	h      *handler.Handler

	tokens []Token
	pos    int
}

// New creates a Tokenizer reading from stream, reporting diagnostics to h.
// h may be nil to discard diagnostics.
func New(stream *bytestream.Stream, h *handler.Handler) *Tokenizer {
	return &Tokenizer{stream: stream, h: h}
}

// ensureTokens grows t.tokens until it holds at least upTo+1 entries
// (index upTo is valid), stopping once an EOFToken has been produced.
func (t *Tokenizer) ensureTokens(upTo int) {
	for len(t.tokens) <= upTo {
		if n := len(t.tokens); n > 0 && t.tokens[n-1].Type == EOFToken {
			return
		}
		t.tokens = append(t.tokens, t.consumeToken())
	}
}

// Consume returns the token at the current position and advances past it.
func (t *Tokenizer) Consume() Token {
	t.ensureTokens(t.pos)
	tok := t.tokens[t.pos]
	if tok.Type != EOFToken {
		t.pos++
	}
	return tok
}

// Reconsume steps the position pointer back by one, so the next Consume
// call returns the same token again. Never steps before position 0.
func (t *Tokenizer) Reconsume() {
	if t.pos > 0 {
		t.pos--
	}
}

// Current returns the token at the current position without advancing.
func (t *Tokenizer) Current() Token {
	t.ensureTokens(t.pos)
	return t.tokens[t.pos]
}

// LookAhead returns the token offset positions ahead of the current one,
// without moving the position pointer. LookAhead(0) is equivalent to
// Current.
func (t *Tokenizer) LookAhead(offset int) Token {
	idx := t.pos + offset
	if idx < 0 {
		idx = 0
	}
	t.ensureTokens(idx)
	return t.tokens[idx]
}

// LookAheadSC is LookAhead but skips over whitespace and comment tokens,
// the "significant content" lookahead combinators (selectors/values
// frequently need to peek past insignificant whitespace).
func (t *Tokenizer) LookAheadSC(offset int) Token {
	seen := 0
	for i := 0; ; i++ {
		tok := t.LookAhead(i)
		if tok.Type == WhitespaceToken || tok.Type == CommentToken {
			continue
		}
		if seen == offset {
			return tok
		}
		seen++
		if tok.Type == EOFToken {
			return tok
		}
	}
}

func (t *Tokenizer) reportError(code loc.DiagnosticCode, pos loc.Position, format string, args ...any) {
	if t.h == nil {
		return
	}
	t.h.AppendWarning(handler.NewParseError(code, pos, format, args...))
}

// consumeToken is the "consume a token" algorithm: it reads directly from
// the underlying byte stream (never from t.tokens) and produces exactly one
// Token, per CSS Syntax Level 3 section 4.3.1, grounded on
// original_source/crates/gosub_css3/src/tokenizer.rs's consume_token.
func (t *Tokenizer) consumeToken() Token {
	if c := t.stream.Read(); c.IsEnd() || c.IsEmpty() {
		return Token{Type: EOFToken, Pos: t.stream.Position()}
	}

	if tok, ok := t.tryConsumeComment(); ok {
		return tok
	}

	pos := t.stream.Position()
	c := t.stream.Read()

	switch {
	case isWhitespaceChar(c):
		t.consumeWhitespace()
		return Token{Type: WhitespaceToken, Pos: pos}

	case c.Is('"'), c.Is('\''):
		return t.consumeStringToken(pos)

	case c.Is('#'):
		t.stream.Next()
		if isIdentChar(t.stream.Read()) || isStartOfEscape(t.stream, 0) {
			isID := isNext3PointsStartIdentSeq(t.stream, 0)
			name := t.consumeIdent()
			if isID {
				return Token{Type: IDHashToken, Pos: pos, Value: name}
			}
			return Token{Type: HashToken, Pos: pos, Value: name}
		}
		return Token{Type: DelimToken, Pos: pos, Delim: '#'}

	case c.Is('('):
		t.stream.Next()
		return Token{Type: LParenToken, Pos: pos}
	case c.Is(')'):
		t.stream.Next()
		return Token{Type: RParenToken, Pos: pos}
	case c.Is('['):
		t.stream.Next()
		return Token{Type: LBracketToken, Pos: pos}
	case c.Is(']'):
		t.stream.Next()
		return Token{Type: RBracketToken, Pos: pos}
	case c.Is('{'):
		t.stream.Next()
		return Token{Type: LCurlyToken, Pos: pos}
	case c.Is('}'):
		t.stream.Next()
		return Token{Type: RCurlyToken, Pos: pos}
	case c.Is(','):
		t.stream.Next()
		return Token{Type: CommaToken, Pos: pos}
	case c.Is(':'):
		t.stream.Next()
		return Token{Type: ColonToken, Pos: pos}
	case c.Is(';'):
		t.stream.Next()
		return Token{Type: SemicolonToken, Pos: pos}

	case c.Is('+'):
		if isSignedDecimal(t.stream) {
			return t.consumeNumericToken(pos)
		}
		t.stream.Next()
		return Token{Type: DelimToken, Pos: pos, Delim: '+'}

	case c.Is('-'):
		if isSignedDecimal(t.stream) {
			return t.consumeNumericToken(pos)
		}
		if t.stream.LookAhead(1).Is('-') && t.stream.LookAhead(2).Is('>') {
			t.stream.Next()
			t.stream.Next()
			t.stream.Next()
			return Token{Type: CDCToken, Pos: pos}
		}
		if isNext3PointsStartIdentSeq(t.stream, 0) {
			return t.consumeIdentLikeSeq(pos)
		}
		t.stream.Next()
		return Token{Type: DelimToken, Pos: pos, Delim: '-'}

	case c.Is('.'):
		if isSignedDecimal(t.stream) {
			return t.consumeNumericToken(pos)
		}
		t.stream.Next()
		return Token{Type: DelimToken, Pos: pos, Delim: '.'}

	case c.Is('<'):
		if t.stream.LookAhead(1).Is('!') && t.stream.LookAhead(2).Is('-') && t.stream.LookAhead(3).Is('-') {
			t.stream.Next()
			t.stream.Next()
			t.stream.Next()
			t.stream.Next()
			return Token{Type: CDOToken, Pos: pos}
		}
		t.stream.Next()
		return Token{Type: DelimToken, Pos: pos, Delim: '<'}

	case c.Is('@'):
		t.stream.Next()
		if isNext3PointsStartIdentSeq(t.stream, 0) {
			return Token{Type: AtKeywordToken, Pos: pos, Value: t.consumeIdent()}
		}
		return Token{Type: DelimToken, Pos: pos, Delim: '@'}

	case c.Is('\\'):
		if isStartOfEscape(t.stream, 0) {
			return t.consumeIdentLikeSeq(pos)
		}
		t.reportError(loc.ErrBadEscape, pos, "invalid escape at end of stream")
		t.stream.Next()
		return Token{Type: DelimToken, Pos: pos, Delim: '\\'}

	case isDigitChar(c):
		return t.consumeNumericToken(pos)

	case isIdentStart(c):
		return t.consumeIdentLikeSeq(pos)

	default:
		r := c.RuneOrReplacement()
		t.stream.Next()
		return Token{Type: DelimToken, Pos: pos, Delim: r}
	}
}

func (t *Tokenizer) tryConsumeComment() (Token, bool) {
	pos := t.stream.Position()
	if !(t.stream.Read().Is('/') && t.stream.LookAhead(1).Is('*')) {
		return Token{}, false
	}
	t.stream.Next()
	t.stream.Next()
	var b strings.Builder
	for {
		if t.stream.Read().Is('*') && t.stream.LookAhead(1).Is('/') {
			t.stream.Next()
			t.stream.Next()
			return Token{Type: CommentToken, Pos: pos, Value: b.String()}, true
		}
		c := t.stream.ReadAndNext()
		if c.IsEOF() {
			return Token{Type: CommentToken, Pos: pos, Value: b.String()}, true
		}
		b.WriteRune(c.RuneOrReplacement())
	}
}

func (t *Tokenizer) consumeWhitespace() {
	for isWhitespaceChar(t.stream.Read()) {
		t.stream.Next()
	}
}

func isWhitespaceChar(c bytestream.Character) bool {
	r, ok := c.Rune()
	return ok && (r == ' ' || r == '\t' || r == '\n')
}

func isDigitChar(c bytestream.Character) bool {
	r, ok := c.Rune()
	return ok && r >= '0' && r <= '9'
}

// consumeStringToken assumes the opening quote has not yet been consumed
// from the stream; it consumes it itself. A bare newline inside the string
// terminates it as a BadStringToken without consuming the newline.
func (t *Tokenizer) consumeStringToken(pos loc.Position) Token {
	quote, _ := t.stream.Read().Rune()
	t.stream.Next()

	var b strings.Builder
	for {
		c := t.stream.Read()
		switch {
		case c.IsEOF():
			return Token{Type: StringToken, Pos: pos, Value: b.String()}
		case c.Is(quote):
			t.stream.Next()
			return Token{Type: StringToken, Pos: pos, Value: b.String()}
		case isNewline(c):
			t.reportError(loc.ErrBadString, pos, "unescaped newline in string")
			return Token{Type: BadStringToken, Pos: pos, Value: b.String()}
		case c.Is('\\'):
			nxt := t.stream.LookAhead(1)
			if nxt.IsEOF() {
				t.stream.Next()
				continue
			}
			if isNewline(nxt) {
				t.stream.Next()
				t.stream.Next()
				continue
			}
			t.stream.Next()
			b.WriteRune(t.consumeEscapedCodePoint())
		default:
			t.stream.Next()
			b.WriteRune(c.RuneOrReplacement())
		}
	}
}

func isNewline(c bytestream.Character) bool {
	r, ok := c.Rune()
	return ok && r == '\n'
}

// consumeNumericToken assumes the stream is positioned at the start of a
// number (a sign, digit, or '.') and disambiguates number / percentage /
// dimension.
func (t *Tokenizer) consumeNumericToken(pos loc.Position) Token {
	value, repr := t.consumeNumber()

	if isNext3PointsStartIdentSeq(t.stream, 0) {
		unit := t.consumeIdent()
		return Token{Type: DimensionToken, Pos: pos, Number: value, Unit: unit}
	}
	if t.stream.Read().Is('%') {
		t.stream.Next()
		return Token{Type: PercentageToken, Pos: pos, Number: value}
	}
	_ = repr
	return Token{Type: NumberToken, Pos: pos, Number: value}
}

// consumeNumber implements the "consume a number" algorithm: an optional
// sign, an integer part, an optional fractional part, and an optional
// exponent (e/E, optional sign, digits) -- 1, -1, 1.5, 1e1, 1e+1, 1e-1.
func (t *Tokenizer) consumeNumber() (float64, string) {
	var b strings.Builder

	if c := t.stream.Read(); c.Is('+') || c.Is('-') {
		r, _ := c.Rune()
		b.WriteRune(r)
		t.stream.Next()
	}
	t.consumeDigits(&b)

	if t.stream.Read().Is('.') && isDigitChar(t.stream.LookAhead(1)) {
		b.WriteRune('.')
		t.stream.Next()
		t.consumeDigits(&b)
	}

	if c := t.stream.Read(); c.Is('e') || c.Is('E') {
		la := t.stream.LookAhead(1)
		if isDigitChar(la) || ((la.Is('+') || la.Is('-')) && isDigitChar(t.stream.LookAhead(2))) {
			b.WriteRune('e')
			t.stream.Next()
			if s := t.stream.Read(); s.Is('+') || s.Is('-') {
				r, _ := s.Rune()
				b.WriteRune(r)
				t.stream.Next()
			}
			t.consumeDigits(&b)
		}
	}

	repr := b.String()
	value, err := strconv.ParseFloat(repr, 64)
	if err != nil {
		return 0, repr
	}
	return value, repr
}

func (t *Tokenizer) consumeDigits(b *strings.Builder) {
	for isDigitChar(t.stream.Read()) {
		r, _ := t.stream.Read().Rune()
		b.WriteRune(r)
		t.stream.Next()
	}
}

// consumeIdentLikeSeq consumes an ident sequence and disambiguates
// ident / function / url / bad-url, per "consume an ident-like token".
func (t *Tokenizer) consumeIdentLikeSeq(pos loc.Position) Token {
	name := t.consumeIdent()

	if asciiEqualFold(name, "url") && t.stream.Read().Is('(') {
		t.stream.Next()
		// Skip whitespace, then decide: a quote here means a quoted url,
		// which is tokenized as a function (url-token only applies to the
		// unquoted form).
		i := 0
		for isWhitespaceChar(t.stream.LookAhead(i)) {
			i++
		}
		la := t.stream.LookAhead(i)
		if la.Is('"') || la.Is('\'') {
			return Token{Type: FunctionToken, Pos: pos, Value: name}
		}
		return t.consumeURL(pos)
	}

	if t.stream.Read().Is('(') {
		t.stream.Next()
		return Token{Type: FunctionToken, Pos: pos, Value: name}
	}

	return Token{Type: IdentToken, Pos: pos, Value: name}
}

// consumeURL assumes "url(" has already been consumed.
func (t *Tokenizer) consumeURL(pos loc.Position) Token {
	t.consumeWhitespace()
	var b strings.Builder
	for {
		c := t.stream.Read()
		switch {
		case c.Is(')'):
			t.stream.Next()
			return Token{Type: URLToken, Pos: pos, Value: b.String()}
		case c.IsEOF():
			return Token{Type: URLToken, Pos: pos, Value: b.String()}
		case isWhitespaceChar(c):
			t.consumeWhitespace()
			if t.stream.Read().Is(')') {
				t.stream.Next()
				return Token{Type: URLToken, Pos: pos, Value: b.String()}
			}
			if t.stream.Read().IsEOF() {
				return Token{Type: URLToken, Pos: pos, Value: b.String()}
			}
			t.reportError(loc.ErrBadURL, pos, "unexpected whitespace inside unquoted url()")
			return t.consumeRemnantsOfBadURL(pos)
		case c.Is('"'), c.Is('\''), c.Is('('), isNonPrintableChar(c):
			t.reportError(loc.ErrBadURL, pos, "unexpected character inside unquoted url()")
			t.stream.Next()
			return t.consumeRemnantsOfBadURL(pos)
		case c.Is('\\'):
			if isStartOfEscape(t.stream, 0) {
				t.stream.Next()
				b.WriteRune(t.consumeEscapedCodePoint())
				continue
			}
			t.reportError(loc.ErrBadURL, pos, "invalid escape inside url()")
			t.stream.Next()
			return t.consumeRemnantsOfBadURL(pos)
		default:
			t.stream.Next()
			b.WriteRune(c.RuneOrReplacement())
		}
	}
}

func (t *Tokenizer) consumeRemnantsOfBadURL(pos loc.Position) Token {
	for {
		c := t.stream.Read()
		switch {
		case c.Is(')'), c.IsEOF():
			t.stream.Next()
			return Token{Type: BadURLToken, Pos: pos}
		case c.Is('\\'):
			if isStartOfEscape(t.stream, 0) {
				t.stream.Next()
				t.consumeEscapedCodePoint()
				continue
			}
			t.stream.Next()
		default:
			t.stream.Next()
		}
	}
}

// consumeIdent consumes an ident sequence (assumed to genuinely start one;
// callers check isNext3PointsStartIdentSeq first), resolving escapes as it
// goes.
func (t *Tokenizer) consumeIdent() string {
	var b strings.Builder
	for {
		c := t.stream.Read()
		switch {
		case c.Is('\\') && isStartOfEscape(t.stream, 0):
			t.stream.Next()
			b.WriteRune(t.consumeEscapedCodePoint())
		case isIdentChar(c):
			t.stream.Next()
			b.WriteRune(c.RuneOrReplacement())
		default:
			return b.String()
		}
	}
}

// consumeEscapedCodePoint assumes the backslash has already been consumed.
// Up to 6 hex digits, followed by one optional whitespace character; a null
// code point or one beyond the Unicode range becomes U+FFFD.
func (t *Tokenizer) consumeEscapedCodePoint() rune {
	c := t.stream.Read()
	if isHexDigitChar(c) {
		var val uint32
		n := 0
		for n < 6 && isHexDigitChar(t.stream.Read()) {
			r, _ := t.stream.Read().Rune()
			val = val*16 + uint32(hexDigitValue(r))
			t.stream.Next()
			n++
		}
		if isWhitespaceChar(t.stream.Read()) {
			t.stream.Next()
		}
		if val == 0 || val > 0x10FFFF || (val >= 0xD800 && val <= 0xDFFF) {
			return '�'
		}
		return rune(val)
	}

	if c.IsEOF() {
		return '�'
	}
	r := c.RuneOrReplacement()
	t.stream.Next()
	return r
}

func hexDigitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return 0
}

func isHexDigitChar(c bytestream.Character) bool {
	r, ok := c.Rune()
	return ok && isHexDigit(r)
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(c bytestream.Character) bool {
	r, ok := c.Rune()
	if !ok {
		return false
	}
	return r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7F
}

func isIdentChar(c bytestream.Character) bool {
	r, ok := c.Rune()
	if !ok {
		return false
	}
	return isIdentStart(c) || (r >= '0' && r <= '9')
}

func isNonPrintableChar(c bytestream.Character) bool {
	r, ok := c.Rune()
	if !ok {
		return false
	}
	return (r >= 0x00 && r <= 0x08) || r == 0x0B || (r >= 0x0E && r <= 0x1F) || r == 0x7F
}

// isStartOfEscape reports whether the stream, starting offset positions
// ahead, begins a valid escape sequence: a backslash not immediately
// followed by a newline or end of stream.
func isStartOfEscape(s *bytestream.Stream, offset int) bool {
	if !s.LookAhead(offset).Is('\\') {
		return false
	}
	next := s.LookAhead(offset + 1)
	return !next.IsEOF() && !isNewline(next)
}

// isNext3PointsStartIdentSeq implements the three-code-point ident-sequence
// lookahead rule from CSS Syntax Level 3 section 4.3.9, starting offset
// positions ahead of the stream cursor.
func isNext3PointsStartIdentSeq(s *bytestream.Stream, offset int) bool {
	first := s.LookAhead(offset)
	if first.Is('-') {
		second := s.LookAhead(offset + 1)
		if second.Is('-') {
			return true
		}
		if r, ok := second.Rune(); ok && isIdentStartRune(r) {
			return true
		}
		return isStartOfEscape(s, offset+1)
	}
	if r, ok := first.Rune(); ok && isIdentStartRune(r) {
		return true
	}
	return isStartOfEscape(s, offset)
}

func isIdentStartRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7F
}

// isSignedDecimal implements the "would start a number" lookahead rule used
// to disambiguate '+', '-', and '.' delim tokens from the start of a
// numeric token.
func isSignedDecimal(s *bytestream.Stream) bool {
	c := s.Read()
	switch {
	case c.Is('+'), c.Is('-'):
		la1 := s.LookAhead(1)
		if isDigitChar(la1) {
			return true
		}
		if la1.Is('.') {
			return isDigitChar(s.LookAhead(2))
		}
		return false
	case c.Is('.'):
		return isDigitChar(s.LookAhead(1))
	default:
		return isDigitChar(c)
	}
}
