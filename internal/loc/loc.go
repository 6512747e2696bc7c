// Package loc carries source positions through every stage of the pipeline,
// from the byte stream (4.1) through the tokenizers to the cascade and
// layout stages, so diagnostics can always be traced back to a location in
// the original bytes.
package loc

import "fmt"

// Position is a 0-based offset paired with a 1-based line/column, derived
// from LF counts in the byte stream. A CRLF pair counts as a single LF.
type Position struct {
	Offset int
	Line   int
	Col    int
}

// Zero is the position at the very start of an empty stream.
var Zero = Position{Offset: 0, Line: 1, Col: 1}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d:%d", p.Offset, p.Line, p.Col)
}

// Span is a half-open [Start, End) range of character offsets.
type Span struct {
	Start, End int
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Range pairs a starting Position with a length in characters, used to
// anchor a diagnostic to a specific slice of source text.
type Range struct {
	Loc Position
	Len int
}

func (r Range) End() Position {
	end := r.Loc
	end.Offset += r.Len
	end.Col += r.Len
	return end
}
