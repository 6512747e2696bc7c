package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelweb/kestrel/internal/bytestream"
	"github.com/kestrelweb/kestrel/internal/css"
	"github.com/kestrelweb/kestrel/internal/cssdefs"
	"github.com/kestrelweb/kestrel/internal/cssparser"
	"github.com/kestrelweb/kestrel/internal/dom"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/html"
)

func loadDefs(t *testing.T) *cssdefs.Definitions {
	t.Helper()
	defs, err := cssdefs.Load()
	require.NoError(t, err)
	return defs
}

func parseHTML(t *testing.T, src string) *dom.Document {
	t.Helper()
	stream := bytestream.NewFromString(src, bytestream.UTF8)
	stream.Close()
	h := handler.New("test")
	tok := html.New(stream, h)
	return dom.Build(tok, h)
}

func parseCSS(t *testing.T, src string, origin cssparser.CssOrigin) *cssparser.Stylesheet {
	t.Helper()
	stream := bytestream.NewFromString(src, bytestream.UTF8)
	stream.Close()
	h := handler.New("test")
	tok := css.New(stream, h)
	return cssparser.Parse(tok, origin, "test.css", h)
}

func TestResolveNodePicksHigherSpecificity(t *testing.T) {
	doc := parseHTML(t, `<div id="main" class="box"></div>`)
	sheet := parseCSS(t, `
		.box { color: blue; }
		#main { color: red; }
	`, cssparser.AuthorOrigin)
	defs := loadDefs(t)

	divID, _ := doc.ByID("main")
	m := ResolveNode(doc, divID, []*cssparser.Stylesheet{sheet}, defs, nil)

	p, ok := m.Get("color")
	require.True(t, ok, "expected color to resolve")
	s, _ := p.ComputeValue(defs).AsString()
	assert.Equal(t, "red", s, "expected #main's higher specificity to win")
}

func TestResolveNodeExpandsShorthand(t *testing.T) {
	doc := parseHTML(t, `<div id="main"></div>`)
	sheet := parseCSS(t, `#main { margin: 10px 20px; }`, cssparser.AuthorOrigin)
	defs := loadDefs(t)

	divID, _ := doc.ByID("main")
	m := ResolveNode(doc, divID, []*cssparser.Stylesheet{sheet}, defs, nil)

	top, ok := m.Get("margin-top")
	require.True(t, ok, "expected margin-top to be present after shorthand expansion")
	n, _, _ := top.ComputeValue(defs).AsUnit()
	assert.Equal(t, 10.0, n)

	left, ok := m.Get("margin-left")
	require.True(t, ok, "expected margin-left to be present after shorthand expansion")
	n, _, _ = left.ComputeValue(defs).AsUnit()
	assert.Equal(t, 20.0, n)
}

func TestResolveNodeMaxSpecificityAcrossCommaList(t *testing.T) {
	// The rule's second selector (#main) is more specific than the first
	// (.other), and only #main matches -- the rule's overall specificity
	// used for this match must be #main's, not .other's.
	doc := parseHTML(t, `<div id="main"></div>`)
	sheet := parseCSS(t, `
		div { color: blue; }
		.other, #main { color: green; }
	`, cssparser.AuthorOrigin)
	defs := loadDefs(t)

	divID, _ := doc.ByID("main")
	m := ResolveNode(doc, divID, []*cssparser.Stylesheet{sheet}, defs, nil)
	p, _ := m.Get("color")
	s, _ := p.ComputeValue(defs).AsString()
	assert.Equal(t, "green", s, "expected id-selector rule to win over the bare type selector")
}

func TestResolveNodeDropsGrammarMismatches(t *testing.T) {
	doc := parseHTML(t, `<div id="main"></div>`)
	sheet := parseCSS(t, `
		#main { color: 12px; display: block; not-a-property: 1; }
	`, cssparser.AuthorOrigin)
	defs := loadDefs(t)
	h := handler.New("test")

	divID, _ := doc.ByID("main")
	m := ResolveNode(doc, divID, []*cssparser.Stylesheet{sheet}, defs, h)

	_, ok := m.Get("color")
	assert.False(t, ok, "a length is not a <color>; the declaration must be dropped")
	_, ok = m.Get("not-a-property")
	assert.False(t, ok, "an unknown property must be dropped")
	p, ok := m.Get("display")
	require.True(t, ok, "the valid declaration must survive its malformed siblings")
	s, _ := p.ComputeValue(defs).AsString()
	assert.Equal(t, "block", s)

	assert.NotEmpty(t, h.Warnings(), "dropped declarations must be reported, not silent")
}

func TestApplyInheritanceFillsFromParent(t *testing.T) {
	defs := loadDefs(t)
	parent := NewPropertyMap()
	cp := NewCssProperty("color")
	cp.Cascaded = cssparser.Ident("green")
	parent.Set("color", cp)

	child := NewPropertyMap()
	ApplyInheritance(parent, child, defs)

	p, ok := child.Get("color")
	require.True(t, ok, "expected color to be inherited")
	s, _ := p.ComputeValue(defs).AsString()
	assert.Equal(t, "green", s)
}

func TestApplyInheritanceDoesNotOverrideLocalDeclaration(t *testing.T) {
	defs := loadDefs(t)
	parent := NewPropertyMap()
	pp := NewCssProperty("color")
	pp.Cascaded = cssparser.Ident("green")
	parent.Set("color", pp)

	child := NewPropertyMap()
	cp := NewCssProperty("color")
	cp.Cascaded = cssparser.Ident("red")
	child.Set("color", cp)

	ApplyInheritance(parent, child, defs)

	p, _ := child.Get("color")
	s, _ := p.ComputeValue(defs).AsString()
	assert.Equal(t, "red", s, "expected local declaration to win over inheritance")
}

func TestApplyInheritanceFallsBackToInitialValue(t *testing.T) {
	defs := loadDefs(t)
	child := NewPropertyMap()
	ApplyInheritance(nil, child, defs)

	p, ok := child.Get("color")
	require.True(t, ok, "expected color's initial value to seed an unset inherited property")
	s, _ := p.ComputeValue(defs).AsString()
	assert.Equal(t, "canvastext", s)
}

func TestPropertyMapMakeDirtyMarksEveryProperty(t *testing.T) {
	defs := loadDefs(t)
	m := NewPropertyMap()
	cp := NewCssProperty("color")
	cp.Cascaded = cssparser.Ident("red")
	m.Set("color", cp)

	cp.ComputeValue(defs) // clears the property's own Dirty bit
	m.MakeClean()
	assert.False(t, m.IsDirty(), "expected a computed, clean map to report clean")

	m.MakeDirty()
	assert.True(t, m.IsDirty(), "expected MakeDirty to mark the map dirty")
	assert.True(t, cp.Dirty, "expected MakeDirty to also mark every property dirty")
}
