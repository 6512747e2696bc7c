package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelweb/kestrel/internal/cssparser"
	"github.com/kestrelweb/kestrel/internal/dom"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/loc"
)

// firstSelector parses `selector {}` and returns its first sequence.
func firstSelector(t *testing.T, selector string) cssparser.SelectorSequence {
	t.Helper()
	sheet := parseCSS(t, selector+" {}", cssparser.AuthorOrigin)
	require.NotEmpty(t, sheet.Rules, "selector %q did not parse into a rule", selector)
	require.NotNil(t, sheet.Rules[0].Rule)
	items := sheet.Rules[0].Rule.Selectors.Items
	require.NotEmpty(t, items, "selector %q parsed into an empty list", selector)
	return items[0]
}

func TestMatchesSimpleSelectors(t *testing.T) {
	doc := parseHTML(t, `<div id="main" class="box wide" data-kind="nav-bar"></div>`)
	div, _ := doc.ByID("main")

	for _, sel := range []string{
		"div", "*", "#main", ".box", ".wide", "div.box#main",
		"[data-kind]", `[data-kind="nav-bar"]`, `[class~="wide"]`,
		`[data-kind|="nav"]`, `[data-kind^="nav"]`, `[data-kind$="bar"]`, `[data-kind*="v-b"]`,
	} {
		assert.Truef(t, Matches(doc, div, firstSelector(t, sel)), "%s should match", sel)
	}

	for _, sel := range []string{
		"span", "#other", ".narrow", `[data-kind="nav"]`, `[missing]`,
		`[data-kind^="bar"]`, `[data-kind$="nav"]`,
	} {
		assert.Falsef(t, Matches(doc, div, firstSelector(t, sel)), "%s should not match", sel)
	}
}

func TestMatchesAttributeCaseInsensitiveFlag(t *testing.T) {
	doc := parseHTML(t, `<input type="TEXT">`)
	input := doc.Root().Children[0]

	assert.False(t, Matches(doc, input, firstSelector(t, `[type="text"]`)), "attribute values are case-sensitive by default")
	assert.True(t, Matches(doc, input, firstSelector(t, `[type="text" i]`)), "the i flag folds case")
}

func TestMatchesCombinators(t *testing.T) {
	doc := parseHTML(t, `<section><div><p id="target"></p></div><span id="after"></span><b id="later"></b></section>`)
	target, _ := doc.ByID("target")
	after, _ := doc.ByID("after")
	later, _ := doc.ByID("later")

	assert.True(t, Matches(doc, target, firstSelector(t, "div > p")), "child")
	assert.True(t, Matches(doc, target, firstSelector(t, "section p")), "descendant skips a level")
	assert.False(t, Matches(doc, target, firstSelector(t, "section > p")), "child must not skip a level")

	assert.True(t, Matches(doc, after, firstSelector(t, "div + span")), "next sibling")
	assert.False(t, Matches(doc, later, firstSelector(t, "div + b")), "next sibling is immediate only")
	assert.True(t, Matches(doc, later, firstSelector(t, "div ~ b")), "subsequent sibling reaches further")
}

func TestMatchesNamespaceCombinator(t *testing.T) {
	doc := dom.New(handler.New("test"))
	rect := doc.CreateElement("rect", dom.NamespaceSVG, loc.Zero)
	doc.Attach(rect, dom.RootID, -1)

	assert.True(t, Matches(doc, rect, firstSelector(t, "svg|rect")))
	assert.True(t, Matches(doc, rect, firstSelector(t, "*|rect")))
	assert.False(t, Matches(doc, rect, firstSelector(t, "html|rect")), "wrong namespace must not match")
}

func TestMatchesColumnCombinatorNeverMatches(t *testing.T) {
	doc := parseHTML(t, `<table><col id="c"><td></td></table>`)
	td := firstSelector(t, "col || td")
	for id := dom.NodeId(0); int(id) < doc.NodeCount(); id++ {
		assert.Falsef(t, Matches(doc, id, td), "column combinator has no column boxes to relate, node %d", id)
	}
}

func TestPseudoClassesNeverMatchStaticDocuments(t *testing.T) {
	doc := parseHTML(t, `<a href="x"></a>`)
	a := doc.Root().Children[0]
	assert.False(t, Matches(doc, a, firstSelector(t, "a:hover")))
	assert.True(t, Matches(doc, a, firstSelector(t, "a")))
}
