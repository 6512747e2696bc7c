package cssparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelweb/kestrel/internal/bytestream"
	"github.com/kestrelweb/kestrel/internal/css"
	"github.com/kestrelweb/kestrel/internal/handler"
)

func parse(t *testing.T, src string) *Stylesheet {
	t.Helper()
	stream := bytestream.NewFromString(src, bytestream.UTF8)
	stream.Close()
	tok := css.New(stream, handler.New("test"))
	return Parse(tok, AuthorOrigin, "test.css", handler.New("test"))
}

func TestParseSimpleRule(t *testing.T) {
	sheet := parse(t, `div.cls { color: red; }`)
	require.Len(t, sheet.Rules, 1)
	require.NotNil(t, sheet.Rules[0].Rule)
	r := sheet.Rules[0].Rule
	require.Len(t, r.Selectors.Items, 1, "expected 1 selector sequence")
	seq := r.Selectors.Items[0]
	require.Len(t, seq.Compounds, 1)
	require.Len(t, seq.Compounds[0].Simple, 2)
	assert.Equal(t, TypeSelectorKind, seq.Compounds[0].Simple[0].Kind)
	assert.Equal(t, "div", seq.Compounds[0].Simple[0].Name)
	assert.Equal(t, ClassSelectorKind, seq.Compounds[0].Simple[1].Kind)
	assert.Equal(t, "cls", seq.Compounds[0].Simple[1].Name)

	require.Len(t, r.Declarations, 1)
	assert.Equal(t, "color", r.Declarations[0].Property)
	require.Len(t, r.Declarations[0].Value, 1)
	assert.Equal(t, "red", r.Declarations[0].Value[0].Str)
}

func TestParseCombinators(t *testing.T) {
	sheet := parse(t, `a b > c + d ~ e {}`)
	seq := sheet.Rules[0].Rule.Selectors.Items[0]
	require.Lenf(t, seq.Compounds, 5, "%+v", seq.Compounds)
	want := []Combinator{Descendant, Child, NextSibling, SubsequentSibling}
	for i, w := range want {
		assert.Equalf(t, w, seq.Combinators[i], "combinator %d", i)
	}
}

func TestParseCommaSelectorList(t *testing.T) {
	sheet := parse(t, `a, b {}`)
	assert.Len(t, sheet.Rules[0].Rule.Selectors.Items, 2)
}

func TestParseAttributeSelector(t *testing.T) {
	sheet := parse(t, `[href^="https://"] {}`)
	simple := sheet.Rules[0].Rule.Selectors.Items[0].Compounds[0].Simple[0]
	assert.Equal(t, AttributeSelectorKind, simple.Kind)
	assert.Equal(t, "href", simple.Name)
	assert.Equal(t, "^=", simple.AttrMatcher)
	assert.Equal(t, "https://", simple.AttrValue)
}

func TestParseNamespaceAndColumnCombinators(t *testing.T) {
	sheet := parse(t, `svg|rect {}`)
	seq := sheet.Rules[0].Rule.Selectors.Items[0]
	require.Len(t, seq.Compounds, 2)
	require.Len(t, seq.Combinators, 1)
	assert.Equal(t, Namespace, seq.Combinators[0])

	sheet = parse(t, `col || td {}`)
	seq = sheet.Rules[0].Rule.Selectors.Items[0]
	require.Len(t, seq.Compounds, 2)
	require.Len(t, seq.Combinators, 1)
	assert.Equal(t, Column, seq.Combinators[0])
}

func TestParseAttributeCaseInsensitiveFlag(t *testing.T) {
	sheet := parse(t, `[type="text" i] {}`)
	simple := sheet.Rules[0].Rule.Selectors.Items[0].Compounds[0].Simple[0]
	assert.Equal(t, "=", simple.AttrMatcher)
	assert.Equal(t, "text", simple.AttrValue)
	assert.True(t, simple.AttrCaseInsensitive)

	sheet = parse(t, `[type="text"] {}`)
	simple = sheet.Rules[0].Rule.Selectors.Items[0].Compounds[0].Simple[0]
	assert.False(t, simple.AttrCaseInsensitive)
}

func TestParsePseudoClassWithArgs(t *testing.T) {
	sheet := parse(t, `li:nth-child(2n+1) {}`)
	simple := sheet.Rules[0].Rule.Selectors.Items[0].Compounds[0].Simple[1]
	assert.Equal(t, PseudoClassKind, simple.Kind)
	assert.Equal(t, "nth-child", simple.Name)
	assert.NotEmpty(t, simple.PseudoArgs, "expected nth-child args to be captured")
}

func TestParseImportantDeclaration(t *testing.T) {
	sheet := parse(t, `div { color: red !important; }`)
	d := sheet.Rules[0].Rule.Declarations[0]
	assert.True(t, d.Important)
	assert.Equal(t, "red", d.Value[0].Str)
}

func TestParseFunctionValue(t *testing.T) {
	sheet := parse(t, `div { color: rgba(1, 2, 3, 0.5); }`)
	v := sheet.Rules[0].Rule.Declarations[0].Value[0]
	name, args, ok := v.AsFunction()
	require.True(t, ok)
	assert.Equal(t, "rgba", name)
	// 1, 2, 3, 0.5 plus three comma markers.
	assert.Len(t, args, 7)
}

func TestParseMediaAtRule(t *testing.T) {
	sheet := parse(t, `@media (min-width: 400px) { div { color: blue; } }`)
	require.Len(t, sheet.Rules, 1)
	require.NotNil(t, sheet.Rules[0].AtRule)
	ar := sheet.Rules[0].AtRule
	assert.Equal(t, "media", ar.Name)
	require.Len(t, ar.Block, 1)
	require.NotNil(t, ar.Block[0].Rule)
	assert.Equal(t, "div", ar.Block[0].Rule.Selectors.Items[0].Compounds[0].Simple[0].Name)
}

func TestParseFontFaceAtRuleKeepsFlatDeclarations(t *testing.T) {
	sheet := parse(t, `@font-face { font-family: "Foo"; src: url(foo.woff); }`)
	ar := sheet.Rules[0].AtRule
	assert.Equal(t, "font-face", ar.Name)
	assert.Len(t, ar.Declarations, 2)
}

func TestMalformedRuleDoesNotAbortStylesheet(t *testing.T) {
	sheet := parse(t, `div { color: red } span { color: blue; }`)
	assert.Lenf(t, sheet.Rules, 2, "expected both rules to parse: %+v", sheet.Rules)
}
