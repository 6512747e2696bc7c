package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelweb/kestrel/internal/cssparser"
)

// TestCascadePriorityTable reproduces spec.md 8 scenario 4: three
// declarations for color -- Author !important red (priority 5), UserAgent
// !important blue (7), User orange (2) -- must resolve to blue.
func TestCascadePriorityTable(t *testing.T) {
	declared := []DeclarationProperty{
		{Value: cssparser.Ident("red"), Origin: cssparser.AuthorOrigin, Important: true, Order: 0},
		{Value: cssparser.Ident("blue"), Origin: cssparser.UserAgentOrigin, Important: true, Order: 1},
		{Value: cssparser.Ident("orange"), Origin: cssparser.UserOrigin, Order: 2},
	}
	winner, ok := Cascade(declared)
	require.True(t, ok)
	s, _ := winner.Value.AsString()
	assert.Equal(t, "blue", s, "UserAgent !important (priority 7) must win")
}

func TestCascadeSpecificityBreaksPriorityTies(t *testing.T) {
	declared := []DeclarationProperty{
		{Value: cssparser.Ident("low"), Origin: cssparser.AuthorOrigin, Specificity: Specificity{Classes: 1}, Order: 1},
		{Value: cssparser.Ident("high"), Origin: cssparser.AuthorOrigin, Specificity: Specificity{IDs: 1}, Order: 0},
	}
	winner, _ := Cascade(declared)
	s, _ := winner.Value.AsString()
	assert.Equal(t, "high", s, "an id selector outranks a class at equal priority")
}

func TestCascadeSourceOrderBreaksFullTies(t *testing.T) {
	declared := []DeclarationProperty{
		{Value: cssparser.Ident("first"), Origin: cssparser.AuthorOrigin, Order: 0},
		{Value: cssparser.Ident("second"), Origin: cssparser.AuthorOrigin, Order: 1},
	}
	winner, _ := Cascade(declared)
	s, _ := winner.Value.AsString()
	assert.Equal(t, "second", s, "the later declaration wins a full tie")
}

// TestCascadeMonotonicity checks spec.md 8's monotonicity property: raising
// a losing declaration's priority (gaining !important, or an origin step, or
// higher specificity) never makes it lose when it previously won.
func TestCascadeMonotonicity(t *testing.T) {
	rival := DeclarationProperty{Value: cssparser.Ident("rival"), Origin: cssparser.AuthorOrigin, Order: 1}
	mine := DeclarationProperty{Value: cssparser.Ident("mine"), Origin: cssparser.UserOrigin, Order: 0}

	winner, _ := Cascade([]DeclarationProperty{mine, rival})
	s, _ := winner.Value.AsString()
	require.Equal(t, "rival", s, "author beats user when neither is important")

	mine.Important = true
	winner, _ = Cascade([]DeclarationProperty{mine, rival})
	s, _ = winner.Value.AsString()
	assert.Equal(t, "mine", s, "gaining !important must not decrease the declaration's chance of winning")
}

func TestSpecificityCompareIsLexicographic(t *testing.T) {
	a := Specificity{IDs: 1}
	b := Specificity{Classes: 10, Types: 10}
	assert.Equal(t, 1, a.Compare(b), "one id outranks any number of classes")
	assert.Equal(t, -1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(Specificity{IDs: 1}))
}

func TestComputeValueCachesUntilDirty(t *testing.T) {
	defs := loadDefs(t)

	p := NewCssProperty("color")
	p.Declared = []DeclarationProperty{{Value: cssparser.Ident("red"), Origin: cssparser.AuthorOrigin}}
	v := p.ComputeValue(defs)
	s, _ := v.AsString()
	require.Equal(t, "red", s)
	require.False(t, p.Dirty)

	// A stale mutation is invisible until the dirty bit is set again.
	p.Declared[0].Value = cssparser.Ident("green")
	s, _ = p.ComputeValue(defs).AsString()
	assert.Equal(t, "red", s, "a clean property must serve its cached actual value")

	p.MarkDirty()
	s, _ = p.ComputeValue(defs).AsString()
	assert.Equal(t, "green", s, "marking dirty must recompute the pipeline")
}

func TestActualValueRoundsNumbers(t *testing.T) {
	defs := loadDefs(t)
	p := NewCssProperty("width")
	p.Declared = []DeclarationProperty{{Value: cssparser.Unit(10.6, "px"), Origin: cssparser.AuthorOrigin}}
	n, unit, ok := p.ComputeValue(defs).AsUnit()
	require.True(t, ok)
	assert.Equal(t, "px", unit)
	assert.Equal(t, 11.0, n, "rounding happens only at the actual-value stage")
}
