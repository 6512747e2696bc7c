// Package bytestream turns a raw byte buffer into a resumable stream of
// decoded characters, normalizing line endings and tracking the
// (offset, line, column) position of every character as it goes. It is the
// foundation both the HTML tokenizer (4.2) and the CSS tokenizer (4.3) are
// built on top of.
//
// Grounded on _examples/original_source/src/bytes.rs (CharIterator / Bytes),
// generalized to the open/closed-stream contract spec.md 4.1 requires: a
// stream that has not been Close()d can run dry (StreamEmpty) without that
// meaning end-of-input (StreamEnd), and more bytes can arrive later via
// Append and be read without losing the current cursor position.
package bytestream

import (
	"unicode/utf8"

	"github.com/kestrelweb/kestrel/internal/loc"
)

// Encoding selects how raw bytes are decoded into characters.
type Encoding int

const (
	// UTF8 decodes the raw buffer as UTF-8, including WTF-8 style encoded
	// surrogate halves (reported as CharSurrogate rather than collapsed into
	// the Unicode replacement character).
	UTF8 Encoding = iota
	// ASCII decodes the raw buffer byte-for-byte, mapping any byte >= 0x80
	// to '?' rather than attempting multi-byte decoding.
	ASCII
)

// Kind discriminates the variants a Character can hold.
type Kind int

const (
	KindChar Kind = iota
	KindSurrogate
	KindStreamEmpty
	KindStreamEnd
)

// Character is the sum type produced by reading the stream: an ordinary
// rune, a lone UTF-16 surrogate half, or one of the two end markers.
//
// StreamEmpty means the stream has no character buffered right now but is
// still open and more may arrive via Append. StreamEnd means the stream is
// closed and fully drained: no more characters will ever arrive.
type Character struct {
	kind      Kind
	r         rune
	surrogate uint16
}

var (
	StreamEmpty = Character{kind: KindStreamEmpty}
	StreamEnd   = Character{kind: KindStreamEnd}
)

// Ch builds an ordinary-rune Character.
func Ch(r rune) Character { return Character{kind: KindChar, r: r} }

// Surrogate builds a lone UTF-16 surrogate half Character.
func Surrogate(u uint16) Character { return Character{kind: KindSurrogate, surrogate: u} }

func (c Character) Kind() Kind { return c.kind }
func (c Character) IsChar() bool {
	return c.kind == KindChar
}
func (c Character) IsSurrogate() bool { return c.kind == KindSurrogate }
func (c Character) IsEmpty() bool     { return c.kind == KindStreamEmpty }
func (c Character) IsEnd() bool       { return c.kind == KindStreamEnd }
func (c Character) IsEOF() bool       { return c.kind == KindStreamEmpty || c.kind == KindStreamEnd }

// Rune returns the decoded rune and true, or (utf8.RuneError, false) if this
// Character does not hold an ordinary rune.
func (c Character) Rune() (rune, bool) {
	if c.kind != KindChar {
		return utf8.RuneError, false
	}
	return c.r, true
}

// SurrogateValue returns the raw surrogate half and true, or (0, false) if
// this Character is not a surrogate.
func (c Character) SurrogateValue() (uint16, bool) {
	if c.kind != KindSurrogate {
		return 0, false
	}
	return c.surrogate, true
}

// Is reports whether this Character is an ordinary rune equal to r.
func (c Character) Is(r rune) bool {
	return c.kind == KindChar && c.r == r
}

// RuneOrReplacement returns the held rune, or the Unicode replacement
// character for a surrogate half or either end marker. Useful for callers
// that want to consume "whatever character this is" without a type switch.
func (c Character) RuneOrReplacement() rune {
	if c.kind == KindChar {
		return c.r
	}
	return utf8.RuneError
}

// Stream is a resumable, position-tracking character stream over a raw byte
// buffer that can grow over time via Append.
type Stream struct {
	encoding  Encoding
	raw       []byte
	closed    bool
	chars     []Character
	positions []loc.Position // len(chars)+1; positions[i] is the position immediately before chars[i]
	pos       int            // read cursor, 0..len(chars)
}

// New creates an open Stream over the given initial bytes. The stream stays
// open (readable-but-resumable) until Close is called.
func New(initial []byte, encoding Encoding) *Stream {
	s := &Stream{encoding: encoding}
	s.raw = append(s.raw, initial...)
	s.redecode()
	return s
}

// NewFromString is a convenience wrapper around New for string input.
func NewFromString(initial string, encoding Encoding) *Stream {
	return New([]byte(initial), encoding)
}

// SetEncoding switches the decode mode and re-decodes the whole raw buffer,
// per spec.md 4.1 ("switching encoding re-decodes the raw byte buffer").
// The read cursor is clamped to the new character count.
func (s *Stream) SetEncoding(encoding Encoding) {
	s.encoding = encoding
	s.redecode()
}

func (s *Stream) Encoding() Encoding { return s.encoding }

// Append adds more raw bytes to the stream and re-decodes, preserving the
// current read cursor. Appending to a closed stream is a programmer error:
// once Close has been called, no more input is expected.
func (s *Stream) Append(b []byte) {
	if s.closed {
		panic("bytestream: Append called on a closed stream")
	}
	s.raw = append(s.raw, b...)
	s.redecode()
}

// AppendString is a convenience wrapper around Append for string input.
func (s *Stream) AppendString(str string) {
	s.Append([]byte(str))
}

// Close marks the stream as finished: once the buffered characters are
// drained, Read and LookAhead report StreamEnd instead of StreamEmpty.
func (s *Stream) Close() {
	s.closed = true
}

func (s *Stream) Closed() bool { return s.closed }

// redecode rebuilds chars/positions from raw, clamping pos into range. Line
// endings are normalized to LF before decoding, per spec.md 4.1.
func (s *Stream) redecode() {
	normalized := normalizeLineEndings(s.raw)

	var chars []Character
	switch s.encoding {
	case ASCII:
		chars = decodeASCII(normalized)
	default:
		chars = decodeWTF8(normalized)
	}

	positions := make([]loc.Position, len(chars)+1)
	cur := loc.Zero
	for i, c := range chars {
		positions[i] = cur
		if c.Is('\n') {
			cur = loc.Position{Offset: cur.Offset + 1, Line: cur.Line + 1, Col: 1}
		} else {
			cur = loc.Position{Offset: cur.Offset + 1, Line: cur.Line, Col: cur.Col + 1}
		}
	}
	positions[len(chars)] = cur

	s.chars = chars
	s.positions = positions
	if s.pos > len(chars) {
		s.pos = len(chars)
	}
}

func normalizeLineEndings(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		switch b {
		case '\r':
			out = append(out, '\n')
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		default:
			out = append(out, b)
		}
	}
	return out
}

func decodeASCII(b []byte) []Character {
	chars := make([]Character, 0, len(b))
	for _, c := range b {
		if c >= 0x80 {
			chars = append(chars, Ch('?'))
			continue
		}
		chars = append(chars, Ch(rune(c)))
	}
	return chars
}

// decodeWTF8 decodes b as UTF-8, except that a three-byte sequence encoding
// a surrogate code point (U+D800-U+DFFF, which is never valid UTF-8) is
// reported as a CharSurrogate instead of being replaced with U+FFFD.
func decodeWTF8(b []byte) []Character {
	chars := make([]Character, 0, len(b))
	i := 0
	for i < len(b) {
		c0 := b[i]
		switch {
		case c0 < 0x80:
			chars = append(chars, Ch(rune(c0)))
			i++
		case c0&0xE0 == 0xC0 && i+1 < len(b) && isCont(b[i+1]):
			cp := (rune(c0&0x1F) << 6) | rune(b[i+1]&0x3F)
			chars = append(chars, Ch(cp))
			i += 2
		case c0&0xF0 == 0xE0 && i+2 < len(b) && isCont(b[i+1]) && isCont(b[i+2]):
			cp := (rune(c0&0x0F) << 12) | (rune(b[i+1]&0x3F) << 6) | rune(b[i+2]&0x3F)
			if cp >= 0xD800 && cp <= 0xDFFF {
				chars = append(chars, Surrogate(uint16(cp)))
			} else {
				chars = append(chars, Ch(cp))
			}
			i += 3
		case c0&0xF8 == 0xF0 && i+3 < len(b) && isCont(b[i+1]) && isCont(b[i+2]) && isCont(b[i+3]):
			cp := (rune(c0&0x07) << 18) | (rune(b[i+1]&0x3F) << 12) | (rune(b[i+2]&0x3F) << 6) | rune(b[i+3]&0x3F)
			chars = append(chars, Ch(cp))
			i += 4
		default:
			chars = append(chars, Ch(utf8.RuneError))
			i++
		}
	}
	return chars
}

func isCont(b byte) bool { return b&0xC0 == 0x80 }

// Read returns the character at the cursor without advancing it.
func (s *Stream) Read() Character {
	if s.pos < len(s.chars) {
		return s.chars[s.pos]
	}
	if s.closed {
		return StreamEnd
	}
	return StreamEmpty
}

// ReadAndNext returns the character at the cursor and advances past it if
// it was an ordinary character or surrogate.
func (s *Stream) ReadAndNext() Character {
	c := s.Read()
	if c.IsChar() || c.IsSurrogate() {
		s.pos++
	}
	return c
}

// Next advances the cursor by one character, if one is available.
func (s *Stream) Next() {
	if s.pos < len(s.chars) {
		s.pos++
	}
}

// Prev moves the cursor back by k characters, clamped at the start of the
// stream.
func (s *Stream) Prev(k int) {
	s.pos -= k
	if s.pos < 0 {
		s.pos = 0
	}
}

// LookAhead returns the character k positions ahead of the cursor (k=0 is
// the same as Read) without moving the cursor.
func (s *Stream) LookAhead(k int) Character {
	idx := s.pos + k
	if idx < 0 {
		idx = 0
	}
	if idx < len(s.chars) {
		return s.chars[idx]
	}
	if s.closed {
		return StreamEnd
	}
	return StreamEmpty
}

// Seek moves the cursor to an absolute character offset, clamped to the
// buffered character range.
func (s *Stream) Seek(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.chars) {
		offset = len(s.chars)
	}
	s.pos = offset
}

// GetSlice returns up to n characters starting at the cursor, without
// advancing it.
func (s *Stream) GetSlice(n int) []Character {
	end := s.pos + n
	if end > len(s.chars) {
		end = len(s.chars)
	}
	if s.pos >= end {
		return nil
	}
	out := make([]Character, end-s.pos)
	copy(out, s.chars[s.pos:end])
	return out
}

// Position returns the (offset, line, column) of the character currently
// under the cursor.
func (s *Stream) Position() loc.Position {
	return s.positions[s.pos]
}

// Offset returns the cursor's character offset (not a byte offset).
func (s *Stream) Offset() int { return s.pos }

// Length returns the number of characters currently buffered.
func (s *Stream) Length() int { return len(s.chars) }

// Exhausted reports whether the cursor has consumed every buffered
// character, regardless of whether the stream is closed.
func (s *Stream) Exhausted() bool { return s.pos >= len(s.chars) }

// EOF reports whether the stream is both exhausted and closed: no further
// characters will ever be produced.
func (s *Stream) EOF() bool { return s.closed && s.pos >= len(s.chars) }
