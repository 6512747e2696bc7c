package html

import (
	"strings"

	"github.com/kestrelweb/kestrel/internal/bytestream"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/loc"
)

// ccrState is the character-reference automaton's own state, distinct from
// the tokenizer's outer states, per spec.md 4.2 and
// original_source/.../character_reference.rs's CcrState enum.
type ccrState int

const (
	ccrStart ccrState = iota
	ccrNamed
	ccrAmbiguousAmpersand
	ccrNumeric
	ccrHexStart
	ccrDecStart
	ccrHex
	ccrDec
	ccrNumericEnd
)

const replacementChar = '�'

// consumeCharacterReference implements 8.2.4.69 "Tokenizing character
// references": the stream cursor sits right after the '&' that triggered
// it. Decoded text is written to dst. asAttribute selects the "historical
// flush as literal codepoints" carve-out used only when decoding inside an
// attribute value, matching consume_character_reference(as_attribute) in
// character_reference.rs.
func (t *Tokenizer) consumeCharacterReference(dst *strings.Builder, asAttribute bool) {
	state := ccrStart
	var buf strings.Builder
	var code uint32
	overflow := false

	for {
		switch state {
		case ccrStart:
			buf.Reset()
			buf.WriteByte('&')

			c := t.stream.ReadAndNext()
			switch {
			case c.IsChar() && isAlphanumeric(mustRune(c)):
				t.stream.Prev(1)
				state = ccrNamed
			case c.Is('#'):
				buf.WriteByte('#')
				state = ccrNumeric
			case c.IsEOF():
				dst.WriteString(buf.String())
				return
			default:
				dst.WriteString(buf.String())
				t.stream.Prev(1)
				return
			}

		case ccrNamed:
			entity, matched := t.findEntity()
			if matched {
				t.stream.Seek(t.stream.Offset() + len(entity))
				next := t.stream.LookAhead(0)
				nr, isCh := next.Rune()

				if asAttribute && !strings.HasSuffix(entity, ";") &&
					(next.Is('=') || (isCh && isAlphanumeric(nr))) {
					dst.WriteString("&")
					dst.WriteString(entity)
					return
				}

				dst.WriteString(namedEntities[entity])
				if !strings.HasSuffix(entity, ";") {
					t.reportError(loc.ErrMissingSemicolonAfterCharacterReference, "missing semicolon after character reference")
				}
				return
			}

			dst.WriteString(buf.String())
			state = ccrAmbiguousAmpersand

		case ccrAmbiguousAmpersand:
			c := t.stream.ReadAndNext()
			switch {
			case c.IsChar() && isAlphanumeric(mustRune(c)):
				dst.WriteRune(mustRune(c))
			case c.Is(';'):
				t.stream.Prev(1)
				t.reportError(loc.ErrUnknownNamedCharacterReference, "unknown named character reference")
				return
			case c.IsEOF():
				return
			default:
				t.stream.Prev(1)
				return
			}

		case ccrNumeric:
			code = 0
			overflow = false
			c := t.stream.ReadAndNext()
			switch {
			case c.Is('x') || c.Is('X'):
				state = ccrHexStart
			case c.IsEOF():
				state = ccrDecStart
			default:
				t.stream.Prev(1)
				state = ccrDecStart
			}

		case ccrHexStart:
			pos := t.stream.Position()
			c := t.stream.ReadAndNext()
			r, isCh := c.Rune()
			if isCh && isHexDigit(r) {
				t.stream.Prev(1)
				state = ccrHex
				continue
			}
			t.reportErrorAt(loc.ErrAbsenceOfDigitsInNumericCharacterReference, pos, "absence of digits in numeric character reference")
			dst.WriteString(buf.String())
			if !c.IsEOF() {
				t.stream.Prev(1)
			}
			return

		case ccrDecStart:
			pos := t.stream.Position()
			c := t.stream.ReadAndNext()
			r, isCh := c.Rune()
			if isCh && r >= '0' && r <= '9' {
				t.stream.Prev(1)
				state = ccrDec
				continue
			}
			t.reportErrorAt(loc.ErrAbsenceOfDigitsInNumericCharacterReference, pos, "absence of digits in numeric character reference")
			dst.WriteString(buf.String())
			if !c.IsEOF() {
				t.stream.Prev(1)
			}
			return

		case ccrHex:
			pos := t.stream.Position()
			c := t.stream.ReadAndNext()
			r, isCh := c.Rune()
			switch {
			case isCh && r >= '0' && r <= '9':
				code, overflow = mulAdd(code, overflow, 16, uint32(r-'0'))
			case isCh && r >= 'A' && r <= 'F':
				code, overflow = mulAdd(code, overflow, 16, uint32(r-'A'+10))
			case isCh && r >= 'a' && r <= 'f':
				code, overflow = mulAdd(code, overflow, 16, uint32(r-'a'+10))
			case c.Is(';'):
				state = ccrNumericEnd
			case c.IsEOF():
				t.reportErrorAt(loc.ErrMissingSemicolonAfterCharacterReference, pos, "missing semicolon after character reference")
				state = ccrNumericEnd
			default:
				t.reportErrorAt(loc.ErrMissingSemicolonAfterCharacterReference, pos, "missing semicolon after character reference")
				t.stream.Prev(1)
				state = ccrNumericEnd
			}

		case ccrDec:
			pos := t.stream.Position()
			c := t.stream.ReadAndNext()
			r, isCh := c.Rune()
			switch {
			case isCh && r >= '0' && r <= '9':
				code, overflow = mulAdd(code, overflow, 10, uint32(r-'0'))
			case c.Is(';'):
				state = ccrNumericEnd
			case c.IsEOF():
				t.reportErrorAt(loc.ErrMissingSemicolonAfterCharacterReference, pos, "missing semicolon after character reference")
				state = ccrNumericEnd
			default:
				t.reportErrorAt(loc.ErrMissingSemicolonAfterCharacterReference, pos, "missing semicolon after character reference")
				t.stream.Prev(1)
				state = ccrNumericEnd
			}

		case ccrNumericEnd:
			pos := t.stream.Position()
			if code == 0 && !overflow {
				t.reportErrorAt(loc.ErrNullCharacterReference, pos, "null character reference")
				code = replacementChar
			}
			if code > 0x10FFFF || overflow {
				t.reportErrorAt(loc.ErrCharacterReferenceOutsideUnicodeRange, pos, "character reference outside unicode range")
				code = replacementChar
			}
			if isSurrogate(code) {
				t.reportErrorAt(loc.ErrSurrogateCharacterReference, pos, "surrogate character reference")
				code = replacementChar
			}
			if isNoncharacter(code) {
				t.reportErrorAt(loc.ErrNoncharacterCharacterReference, pos, "noncharacter character reference")
			}
			if isControlChar(code) || code == 0x0D {
				t.reportErrorAt(loc.ErrControlCharacterReference, pos, "control character reference")
				if repl, ok := c1Replacements[rune(code)]; ok {
					code = uint32(repl)
				}
			}
			dst.WriteRune(rune(code))
			return
		}
	}
}

// mulAdd accumulates one more digit into the running code point value,
// matching char_ref_code.checked_mul(base).and_then(checked_add) in
// character_reference.rs: once overflow is observed it stays sticky, and
// any value past the valid Unicode range is treated as overflow too (it
// will be replaced with U+FFFD by the numeric-end state regardless).
func mulAdd(v uint32, overflow bool, base, add uint32) (uint32, bool) {
	if overflow {
		return v, true
	}
	result := uint64(v)*uint64(base) + uint64(add)
	if result > 0x10FFFF {
		return v, true
	}
	return uint32(result), false
}

func isSurrogate(code uint32) bool { return code >= 0xD800 && code <= 0xDFFF }

func isNoncharacter(code uint32) bool {
	if code >= 0xFDD0 && code <= 0xFDEF {
		return true
	}
	low16 := code & 0xFFFF
	return low16 == 0xFFFE || low16 == 0xFFFF
}

func isControlChar(code uint32) bool {
	switch code {
	case 0x0009, 0x000A, 0x000C, 0x000D, 0x0020:
		return false
	}
	return (code >= 0x0001 && code <= 0x001F) || (code >= 0x007F && code <= 0x009F)
}

// findEntity greedily matches the longest named entity starting at the
// stream cursor, per character_reference.rs's find_entity.
func (t *Tokenizer) findEntity() (string, bool) {
	chars := t.stream.GetSlice(longestEntityLen)
	for i := len(chars); i > 0; i-- {
		var b strings.Builder
		for _, c := range chars[:i] {
			r, ok := c.Rune()
			if !ok {
				break
			}
			b.WriteRune(r)
		}
		candidate := b.String()
		if _, ok := namedEntities[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func mustRune(c bytestream.Character) rune {
	r, _ := c.Rune()
	return r
}

func (t *Tokenizer) reportError(code loc.DiagnosticCode, msg string) {
	t.reportErrorAt(code, t.stream.Position(), msg)
}

func (t *Tokenizer) reportErrorAt(code loc.DiagnosticCode, pos loc.Position, msg string) {
	if t.h == nil {
		return
	}
	t.h.AppendError(handler.NewParseError(code, pos, "%s", msg))
}
