package cssdefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelweb/kestrel/internal/cssparser"
)

func TestCompileSyntaxOneOfKeywords(t *testing.T) {
	tree, err := CompileSyntax("none | hidden | dotted")
	require.NoError(t, err)
	require.Len(t, tree.Components, 1)

	group := tree.Components[0]
	assert.Equal(t, CompGroup, group.Kind)
	assert.Equal(t, OneOf, group.Combinator)
	require.Len(t, group.Children, 3)
	assert.Equal(t, CompKeyword, group.Children[0].Kind)
	assert.Equal(t, "none", group.Children[0].Text)
}

func TestCompileSyntaxMultipliers(t *testing.T) {
	tree, err := CompileSyntax("<'margin-top'>{1,4}")
	require.NoError(t, err)
	require.Len(t, tree.Components, 1)

	c := tree.Components[0]
	assert.Equal(t, CompPropertyRef, c.Kind)
	assert.Equal(t, "margin-top", c.Text)
	assert.Equal(t, MulRange, c.Mult.Kind)
	assert.Equal(t, 1, c.Mult.Min)
	assert.Equal(t, 4, c.Mult.Max)

	tree, err = CompileSyntax("<family-name>#")
	require.NoError(t, err)
	assert.Equal(t, MulCommaList, tree.Components[0].Mult.Kind)

	tree, err = CompileSyntax("<length>{2,3}#")
	require.NoError(t, err)
	assert.Equal(t, MulRangeComma, tree.Components[0].Mult.Kind)
	assert.Equal(t, 2, tree.Components[0].Mult.Min)
	assert.Equal(t, 3, tree.Components[0].Mult.Max)
}

func TestCompileSyntaxRejectsMalformed(t *testing.T) {
	_, err := CompileSyntax("[ <length>")
	assert.Error(t, err, "unclosed group must not compile")

	_, err = CompileSyntax("<length")
	assert.Error(t, err, "unclosed reference must not compile")
}

func mustSyntax(t *testing.T, defs *Definitions, name string) *SyntaxTree {
	t.Helper()
	def, ok := defs.Find(name)
	require.Truef(t, ok, "property %s must exist", name)
	return def.Syntax
}

func TestMatchQuadRepetition(t *testing.T) {
	defs, err := Load()
	require.NoError(t, err)
	margin := mustSyntax(t, defs, "margin")

	px := func(n float64) cssparser.CssValue { return cssparser.Unit(n, "px") }

	assert.True(t, margin.Matches([]cssparser.CssValue{px(1)}))
	assert.True(t, margin.Matches([]cssparser.CssValue{px(1), px(2)}))
	assert.True(t, margin.Matches([]cssparser.CssValue{px(1), px(2), px(3), px(4)}))
	assert.True(t, margin.Matches([]cssparser.CssValue{px(1), cssparser.Ident("auto")}))
	assert.False(t, margin.Matches([]cssparser.CssValue{px(1), px(2), px(3), px(4), px(5)}), "a fifth value must overflow the {1,4} multiplier")
	assert.False(t, margin.Matches([]cssparser.CssValue{cssparser.Ident("solid")}))
}

func TestMatchColorGrammar(t *testing.T) {
	defs, err := Load()
	require.NoError(t, err)
	color := mustSyntax(t, defs, "color")

	assert.True(t, color.Matches([]cssparser.CssValue{cssparser.Ident("rebeccapurple")}))
	assert.True(t, color.Matches([]cssparser.CssValue{cssparser.Ident("currentcolor")}))
	assert.True(t, color.Matches([]cssparser.CssValue{cssparser.Hash("c2e")}))
	assert.True(t, color.Matches([]cssparser.CssValue{cssparser.Hash("11223344")}))
	assert.False(t, color.Matches([]cssparser.CssValue{cssparser.Hash("12")}), "a two-digit hash is not a hex color")
	assert.False(t, color.Matches([]cssparser.CssValue{cssparser.Ident("notacolor")}))

	rgb := cssparser.Function("rgb", []cssparser.CssValue{
		cssparser.NumberValue(10), cssparser.Comma(),
		cssparser.NumberValue(20), cssparser.Comma(),
		cssparser.NumberValue(30),
	})
	assert.True(t, color.Matches([]cssparser.CssValue{rgb}))

	badFn := cssparser.Function("shine", []cssparser.CssValue{cssparser.NumberValue(1)})
	assert.False(t, color.Matches([]cssparser.CssValue{badFn}))
}

func TestMatchAnyOfNeverReusesAnAlternative(t *testing.T) {
	defs, err := Load()
	require.NoError(t, err)
	border := mustSyntax(t, defs, "border")

	solid := cssparser.Ident("solid")
	px2 := cssparser.Unit(2, "px")
	red := cssparser.Ident("red")

	assert.True(t, border.Matches([]cssparser.CssValue{solid}))
	assert.True(t, border.Matches([]cssparser.CssValue{px2, solid, red}))
	assert.True(t, border.Matches([]cssparser.CssValue{red, px2, solid}), "|| alternatives match in any order")
	assert.False(t, border.Matches([]cssparser.CssValue{solid, cssparser.Ident("dotted")}), "the line-style alternative must not be consumed twice")
}

func TestMatchCommaSeparatedList(t *testing.T) {
	defs, err := Load()
	require.NoError(t, err)
	family := mustSyntax(t, defs, "font-family")

	assert.True(t, family.Matches([]cssparser.CssValue{cssparser.Ident("sans-serif")}))
	assert.True(t, family.Matches([]cssparser.CssValue{
		cssparser.StringValue("Helvetica Neue"), cssparser.Comma(), cssparser.Ident("sans-serif"),
	}))
	assert.False(t, family.Matches([]cssparser.CssValue{
		cssparser.StringValue("Helvetica"), cssparser.Ident("sans-serif"),
	}), "list items must be comma-separated")
}

func TestUnknownDatatypeMatchesNothing(t *testing.T) {
	tree, err := CompileSyntax("<made-up-datatype>")
	require.NoError(t, err)
	// Unresolved (never passed through Definitions.resolve): a Builtin
	// lookup miss accepts no value at all.
	assert.False(t, tree.Matches([]cssparser.CssValue{cssparser.Ident("anything")}))
}
