package html

import (
	"strings"

	"github.com/kestrelweb/kestrel/internal/bytestream"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/loc"
)

// Tokenizer consumes bytestream.Character values and emits Tokens, per
// spec.md 4.2's table-driven state machine (data, tag open, tag name,
// attribute name/value, character reference, and friends). It holds no
// state about the DOM being built -- see internal/dom.Builder for that.
type Tokenizer struct {
	stream *bytestream.Stream
	h      *handler.Handler

	data      strings.Builder
	dataStart loc.Position

	pendingToken *Token
}

// New creates a Tokenizer reading from stream, reporting diagnostics to h.
// h may be nil to discard diagnostics.
func New(stream *bytestream.Stream, h *handler.Handler) *Tokenizer {
	return &Tokenizer{stream: stream, h: h}
}

// Next returns the next Token. Once the stream is closed and fully drained,
// every subsequent call returns an EOFToken.
func (t *Tokenizer) Next() *Token {
	if t.pendingToken != nil {
		tok := t.pendingToken
		t.pendingToken = nil
		return tok
	}

	for {
		c := t.stream.Read()
		switch {
		case c.IsEOF():
			// Either the stream is closed and drained, or it is open with
			// nothing buffered right now; in the latter case a caller driving
			// the tokenizer incrementally should Append more bytes before
			// calling Next again. Flush whatever text we have so it isn't
			// lost if the caller stops here.
			if t.data.Len() > 0 {
				return t.flushText()
			}
			return &Token{Type: EOFToken, Pos: t.stream.Position()}

		case c.Is('<'):
			t.stream.Next()
			tok, literal, isTag := t.readTagLike()
			if isTag {
				if t.data.Len() > 0 {
					t.pendingToken = tok
					return t.flushText()
				}
				return tok
			}
			if t.data.Len() == 0 {
				t.dataStart = t.stream.Position()
			}
			t.data.WriteString(literal)

		case c.Is('&'):
			if t.data.Len() == 0 {
				t.dataStart = t.stream.Position()
			}
			t.stream.Next()
			t.consumeCharacterReference(&t.data, false)

		default:
			r := c.RuneOrReplacement()
			if t.data.Len() == 0 {
				t.dataStart = t.stream.Position()
			}
			t.stream.Next()
			t.data.WriteRune(r)
		}
	}
}

func (t *Tokenizer) flushText() *Token {
	tok := &Token{Type: TextToken, Pos: t.dataStart, Data: t.data.String()}
	t.data.Reset()
	return tok
}

// readTagLike assumes the stream cursor sits right after a consumed '<'. It
// either returns a complete tag/comment/doctype token (isTag == true), or
// reports that '<' did not start a tag and returns the literal text that
// should be appended to the running text run instead.
func (t *Tokenizer) readTagLike() (tok *Token, literal string, isTag bool) {
	start := t.stream.Position()
	start.Offset--
	start.Col--

	c := t.stream.Read()
	switch {
	case c.Is('/'):
		t.stream.Next()
		return t.readEndTag(start), "", true

	case c.IsChar() && isASCIIAlpha(mustRune(c)):
		return t.readStartTag(start), "", true

	case c.Is('!'):
		t.stream.Next()
		return t.readMarkupDeclaration(start)

	case c.Is('?'):
		return t.readBogusComment(start), "", true

	default:
		return nil, "<", false
	}
}

func isASCIIAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func (t *Tokenizer) readTagName() string {
	var b strings.Builder
	for {
		c := t.stream.Read()
		r, isCh := c.Rune()
		if !isCh {
			break
		}
		if isWhitespace(r) || r == '>' || r == '/' {
			break
		}
		t.stream.Next()
		b.WriteRune(toLower(r))
	}
	return b.String()
}

func (t *Tokenizer) readEndTag(start loc.Position) *Token {
	name := t.readTagName()
	t.skipToTagEnd()
	return &Token{Type: EndTagToken, Pos: start, Data: name}
}

func (t *Tokenizer) readStartTag(start loc.Position) *Token {
	name := t.readTagName()
	attrs, selfClosing := t.readAttributes()
	tt := StartTagToken
	if selfClosing {
		tt = SelfClosingTagToken
	}
	return &Token{Type: tt, Pos: start, Data: name, Attr: attrs}
}

// skipToTagEnd consumes up to and including the next '>', for constructs
// this tokenizer does not fully parse attribute-by-attribute (bogus
// comments, end-tag trailers).
func (t *Tokenizer) skipToTagEnd() {
	for {
		c := t.stream.ReadAndNext()
		if c.IsEOF() || c.Is('>') {
			return
		}
	}
}

func (t *Tokenizer) readAttributes() (attrs []Attribute, selfClosing bool) {
	for {
		t.skipWhitespace()
		c := t.stream.Read()
		switch {
		case c.Is('>'):
			t.stream.Next()
			return attrs, selfClosing
		case c.Is('/'):
			t.stream.Next()
			if t.stream.Read().Is('>') {
				t.stream.Next()
				return attrs, true
			}
			selfClosing = false
		case c.IsEOF():
			return attrs, selfClosing
		default:
			attr := t.readAttribute()
			if attr.Name != "" {
				attrs = append(attrs, attr)
			}
		}
	}
}

func (t *Tokenizer) readAttribute() Attribute {
	pos := t.stream.Position()
	var name strings.Builder
	for {
		c := t.stream.Read()
		r, isCh := c.Rune()
		if !isCh {
			break
		}
		if isWhitespace(r) || r == '=' || r == '>' || r == '/' {
			break
		}
		t.stream.Next()
		name.WriteRune(toLower(r))
	}

	t.skipWhitespace()

	var value strings.Builder
	if t.stream.Read().Is('=') {
		t.stream.Next()
		t.skipWhitespace()
		t.readAttributeValue(&value)
	}

	return Attribute{Name: name.String(), Value: value.String(), Pos: pos}
}

func (t *Tokenizer) readAttributeValue(dst *strings.Builder) {
	c := t.stream.Read()
	switch {
	case c.Is('"'), c.Is('\''):
		quote, _ := c.Rune()
		t.stream.Next()
		for {
			c = t.stream.Read()
			switch {
			case c.Is(quote):
				t.stream.Next()
				return
			case c.IsEOF():
				return
			case c.Is('&'):
				t.stream.Next()
				t.consumeCharacterReference(dst, true)
			default:
				t.stream.Next()
				dst.WriteRune(c.RuneOrReplacement())
			}
		}
	default:
		for {
			c = t.stream.Read()
			r, isCh := c.Rune()
			if c.IsEOF() || (isCh && (isWhitespace(r) || r == '>')) {
				return
			}
			if c.Is('&') {
				t.stream.Next()
				t.consumeCharacterReference(dst, true)
				continue
			}
			t.stream.Next()
			dst.WriteRune(c.RuneOrReplacement())
		}
	}
}

func (t *Tokenizer) skipWhitespace() {
	for {
		c := t.stream.Read()
		r, isCh := c.Rune()
		if !isCh || !isWhitespace(r) {
			return
		}
		t.stream.Next()
	}
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// readMarkupDeclaration handles "<!--", "<!DOCTYPE", and anything else that
// falls back to a bogus comment, per the "markup declaration open" state.
func (t *Tokenizer) readMarkupDeclaration(start loc.Position) (*Token, string, bool) {
	if t.stream.LookAhead(0).Is('-') && t.stream.LookAhead(1).Is('-') {
		t.stream.Next()
		t.stream.Next()
		return t.readComment(start), "", true
	}

	if t.lookAheadCaseInsensitive("DOCTYPE") {
		for i := 0; i < len("DOCTYPE"); i++ {
			t.stream.Next()
		}
		return t.readDoctype(start), "", true
	}

	return t.readBogusComment(start), "", true
}

func (t *Tokenizer) lookAheadCaseInsensitive(word string) bool {
	for i, want := range word {
		c := t.stream.LookAhead(i)
		r, ok := c.Rune()
		if !ok || toLower(r) != toLower(want) {
			return false
		}
	}
	return true
}

func (t *Tokenizer) readComment(start loc.Position) *Token {
	var b strings.Builder
	for {
		if t.stream.LookAhead(0).Is('-') && t.stream.LookAhead(1).Is('-') && t.stream.LookAhead(2).Is('>') {
			t.stream.Next()
			t.stream.Next()
			t.stream.Next()
			return &Token{Type: CommentToken, Pos: start, Data: b.String()}
		}
		c := t.stream.ReadAndNext()
		if c.IsEOF() {
			return &Token{Type: CommentToken, Pos: start, Data: b.String()}
		}
		b.WriteRune(c.RuneOrReplacement())
	}
}

func (t *Tokenizer) readBogusComment(start loc.Position) *Token {
	var b strings.Builder
	for {
		c := t.stream.ReadAndNext()
		if c.IsEOF() || c.Is('>') {
			return &Token{Type: CommentToken, Pos: start, Data: b.String()}
		}
		b.WriteRune(c.RuneOrReplacement())
	}
}

func (t *Tokenizer) readDoctype(start loc.Position) *Token {
	t.skipWhitespace()
	var name strings.Builder
	for {
		c := t.stream.Read()
		r, isCh := c.Rune()
		if !isCh || isWhitespace(r) || r == '>' {
			break
		}
		t.stream.Next()
		name.WriteRune(toLower(r))
	}
	forceQuirk := name.Len() == 0
	t.skipToTagEnd()
	return &Token{
		Type:       DoctypeToken,
		Pos:        start,
		Doctype:    Doctype{Name: name.String()},
		ForceQuirk: forceQuirk,
	}
}
