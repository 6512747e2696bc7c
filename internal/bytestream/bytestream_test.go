package bytestream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAndNext(t *testing.T) {
	s := NewFromString("abc", UTF8)
	s.Close()

	for _, want := range []rune{'a', 'b', 'c'} {
		c := s.ReadAndNext()
		r, ok := c.Rune()
		require.True(t, ok, "got %+v, want %q", c, want)
		assert.Equal(t, want, r)
	}
	assert.True(t, s.Read().IsEnd(), "expected StreamEnd after draining a closed stream")
}

func TestOpenStreamReportsEmptyNotEnd(t *testing.T) {
	s := NewFromString("a", UTF8)
	s.ReadAndNext()

	c := s.Read()
	assert.True(t, c.IsEmpty(), "open, drained stream should report StreamEmpty, got %+v", c)
	assert.False(t, c.IsEnd(), "open stream must never report StreamEnd")
}

func TestAppendResumesAfterEmpty(t *testing.T) {
	s := NewFromString("ab", UTF8)
	s.ReadAndNext()
	s.ReadAndNext()
	require.True(t, s.Read().IsEmpty(), "expected StreamEmpty before Append")

	s.AppendString("cd")
	c := s.ReadAndNext()
	r, ok := c.Rune()
	require.True(t, ok, "Append did not resume from the prior cursor: got %+v", c)
	assert.Equal(t, 'c', r)
}

func TestCloseThenDrainReportsEnd(t *testing.T) {
	s := NewFromString("x", UTF8)
	s.Close()
	s.ReadAndNext()
	assert.True(t, s.Read().IsEnd(), "expected StreamEnd on a closed, drained stream")
	assert.True(t, s.EOF(), "expected EOF() true on a closed, drained stream")
}

func TestLineEndingNormalization(t *testing.T) {
	for _, input := range []string{"a\r\nb", "a\rb", "a\nb"} {
		s := NewFromString(input, UTF8)
		s.Close()
		got := s.GetSlice(3)
		require.Len(t, got, 3, "%q", input)
		r, _ := got[1].Rune()
		assert.Equal(t, '\n', r, "%q: expected normalized LF at index 1", input)
	}
}

func TestPositionTracksLineAndColumn(t *testing.T) {
	s := NewFromString("ab\ncd", UTF8)
	s.Close()

	s.ReadAndNext() // a
	s.ReadAndNext() // b
	pos := s.Position()
	assert.Equal(t, 1, pos.Line, "before newline")
	assert.Equal(t, 3, pos.Col, "before newline")

	s.ReadAndNext() // \n
	pos = s.Position()
	assert.Equal(t, 2, pos.Line, "after newline")
	assert.Equal(t, 1, pos.Col, "after newline")
}

func TestLookAheadDoesNotAdvance(t *testing.T) {
	s := NewFromString("abc", UTF8)
	s.Close()

	r, _ := s.LookAhead(2).Rune()
	require.Equal(t, 'c', r, "LookAhead(2)")
	r, _ = s.Read().Rune()
	assert.Equal(t, 'a', r, "LookAhead must not move the cursor")
}

func TestPrevClampsAtZero(t *testing.T) {
	s := NewFromString("abc", UTF8)
	s.Close()
	s.ReadAndNext()
	s.Prev(5)
	assert.Equal(t, 0, s.Offset(), "Prev past the start should clamp to 0")
}

func TestASCIIEncodingMapsHighBytesToQuestionMark(t *testing.T) {
	s := New([]byte{'a', 0xE9, 'b'}, ASCII)
	s.Close()
	got := s.GetSlice(3)
	r, _ := got[1].Rune()
	assert.Equal(t, '?', r, "expected high byte mapped to '?'")
}

func TestSetEncodingRedecodes(t *testing.T) {
	raw := []byte{'a', 0xC3, 0xA9} // "aé" in UTF-8
	s := New(raw, UTF8)
	s.Close()
	require.Equal(t, 2, s.Length(), "UTF8 decode")

	s.SetEncoding(ASCII)
	assert.Equal(t, 3, s.Length(), "ASCII decode")
}

func TestWTF8SurrogateIsReportedNotCollapsed(t *testing.T) {
	// U+D800 encoded as a raw 3-byte sequence (ED A0 80), which is not valid
	// UTF-8 but is the WTF-8 encoding of a lone high surrogate.
	s := New([]byte{0xED, 0xA0, 0x80}, UTF8)
	s.Close()

	c := s.ReadAndNext()
	require.True(t, c.IsSurrogate(), "expected a Surrogate character, got %+v", c)
	v, _ := c.SurrogateValue()
	assert.Equal(t, uint16(0xD800), v)
}

func TestSeekAndGetSlice(t *testing.T) {
	s := NewFromString("hello", UTF8)
	s.Close()
	s.Seek(2)
	got := s.GetSlice(3)
	var out []rune
	for _, c := range got {
		r, _ := c.Rune()
		out = append(out, r)
	}
	assert.Equal(t, "llo", string(out))
}
