package layout

import (
	"fmt"
	"strings"
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
	"github.com/kestrelweb/kestrel/internal/loc"
	"github.com/kestrelweb/kestrel/internal/rendertree"
	"github.com/kestrelweb/kestrel/internal/testutil"
)

// dumpBoxModel walks a laid-out render tree and renders each node's border
// box as one indented line, the layout-stage analogue of the teacher's
// printer_test.go tree dumps.
func dumpBoxModel(tree *rendertree.RenderTree) string {
	var b strings.Builder
	var walk func(id dom.NodeId, depth int)
	walk = func(id dom.NodeId, depth int) {
		n := tree.Node(id)
		if n == nil {
			return
		}
		box := n.Layout.BorderBox()
		fmt.Fprintf(&b, "%s%s#%d {x:%g y:%g w:%g h:%g}\n",
			strings.Repeat("  ", depth), n.Name, n.ID, box.X, box.Y, box.Width, box.Height)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(tree.Root, 0)
	return b.String()
}

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

func parseCSS(t *testing.T, src string) *cssparser.Stylesheet {
	t.Helper()
	stream := bytestream.NewFromString(src, bytestream.UTF8)
	stream.Close()
	h := handler.New("test")
	tok := css.New(stream, h)
	return cssparser.Parse(tok, cssparser.AuthorOrigin, "test.css", h)
}

func buildTree(t *testing.T, htmlSrc, cssSrc string) *rendertree.RenderTree {
	t.Helper()
	doc := parseHTML(t, htmlSrc)
	var sheets []*cssparser.Stylesheet
	if cssSrc != "" {
		sheets = []*cssparser.Stylesheet{parseCSS(t, cssSrc)}
	}
	return rendertree.GenerateRenderTree(doc, sheets, loadDefs(t), CollapseInline, nil)
}

func TestLayoutBlockStackingAccumulatesHeights(t *testing.T) {
	tree := buildTree(t, `<div><p>a</p><p>b</p></div>`, "")
	defs := loadDefs(t)

	Layout(tree, tree.Root, Size{Width: 800, Height: 600}, defs, DefaultMeasurer, DefaultDPI, nil)

	root := tree.GetRoot()
	assert.Equal(t, 800.0, root.Layout.Content.Width, "expected root to fill viewport width")
	assert.False(t, root.Cache.Invalid, "expected root cache to be clean after layout")
}

func TestLayoutRespectsCleanCache(t *testing.T) {
	tree := buildTree(t, `<div><p>hello</p></div>`, "")
	defs := loadDefs(t)

	Layout(tree, tree.Root, Size{Width: 400, Height: 300}, defs, DefaultMeasurer, DefaultDPI, nil)
	root := tree.GetRoot()

	// Hand-corrupt the cached box to prove a clean cache short-circuits
	// recomputation instead of silently recalculating every call.
	root.Layout.Content.Width = 999

	Layout(tree, tree.Root, Size{Width: 400, Height: 300}, defs, DefaultMeasurer, DefaultDPI, nil)
	assert.Equalf(t, 999.0, tree.GetRoot().Layout.Content.Width, "expected clean cache to preserve stale geometry untouched, got %+v", tree.GetRoot().Layout)
}

func TestLayoutInvalidatesAndRecomputesAfterMarkDirty(t *testing.T) {
	tree := buildTree(t, `<div><p>hello</p></div>`, "")
	defs := loadDefs(t)

	Layout(tree, tree.Root, Size{Width: 400, Height: 300}, defs, DefaultMeasurer, DefaultDPI, nil)
	root := tree.GetRoot()
	root.Layout.Content.Width = 999

	tree.MarkDirty(tree.Root)
	Layout(tree, tree.Root, Size{Width: 400, Height: 300}, defs, DefaultMeasurer, DefaultDPI, nil)

	assert.NotEqual(t, 999.0, tree.GetRoot().Layout.Content.Width, "expected MarkDirty to force recomputation of stale geometry")
}

func TestUnitToPxConversions(t *testing.T) {
	l := &flowLayouter{dpi: DefaultDPI}
	cases := []struct {
		n        float64
		unit     string
		fontSize float64
		want     float64
	}{
		{10, "px", 16, 10},
		{2, "em", 16, 32},
		{1, "rem", 16, 16},
		{1, "in", 16, 96},
		{72, "pt", 16, 96},
	}
	for _, c := range cases {
		got := l.unitToPx(c.n, c.unit, c.fontSize)
		assert.Equalf(t, c.want, got, "unitToPx(%v, %q)", c.n, c.unit)
	}
}

func TestBorderRectZeroesNoneStyleSides(t *testing.T) {
	tree := buildTree(t, `<div></div>`, `div { border-top-width: 5px; border-top-style: none; }`)
	defs := loadDefs(t)
	l := &flowLayouter{defs: defs, measurer: DefaultMeasurer, dpi: DefaultDPI}

	div := tree.Node(tree.GetRoot().Children[0])
	require.NotNil(t, div, "expected a div child")
	rect := l.borderRect(div, 800, 16)
	assert.Equalf(t, 0.0, rect.Y, "expected border-top-style:none to zero the top border width, got %+v", rect)
}

func TestBorderRectKeepsSolidStyleSides(t *testing.T) {
	tree := buildTree(t, `<div></div>`, `div { border-top-width: 5px; border-top-style: solid; }`)
	defs := loadDefs(t)
	l := &flowLayouter{defs: defs, measurer: DefaultMeasurer, dpi: DefaultDPI}

	div := tree.Node(tree.GetRoot().Children[0])
	rect := l.borderRect(div, 800, 16)
	assert.Equalf(t, 5.0, rect.Y, "expected border-top-style:solid to keep the top border width, got %+v", rect)
}

func TestHeuristicMeasurerClampsToMaxWidth(t *testing.T) {
	m := heuristicMeasurer{}
	sz := m.Measure("a very long run of text that should wrap", FontInfo{SizePx: 16}, 50, DefaultDPI)
	assert.Equal(t, 50.0, sz.Width, "expected measured width clamped to maxWidth")
}

func findByName(tree *rendertree.RenderTree, name string) *rendertree.Node {
	for _, n := range tree.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

func TestImgWithoutIntrinsicSizeWarnsAndIsZeroSized(t *testing.T) {
	tree := buildTree(t, `<img src="missing.png">`, "")
	defs := loadDefs(t)
	h := handler.New("test")

	Layout(tree, tree.Root, Size{Width: 400, Height: 300}, defs, DefaultMeasurer, DefaultDPI, h)

	img := findByName(tree, "img")
	require.NotNil(t, img, "expected an img node in the tree")
	assert.Equalf(t, 0.0, img.Layout.Content.Width, "expected a sizeless <img> to lay out as zero-sized, got %+v", img.Layout.Content)
	assert.Equal(t, 0.0, img.Layout.Content.Height)

	warnings := h.Warnings()
	require.Lenf(t, warnings, 1, "expected one WarnMissingResource warning, got %+v", warnings)
	assert.Equal(t, loc.WarnMissingResource, warnings[0].Code)
}

func TestImgWithExplicitAttributesIsSized(t *testing.T) {
	tree := buildTree(t, `<img src="a.png" width="100" height="50">`, "")
	defs := loadDefs(t)
	h := handler.New("test")

	Layout(tree, tree.Root, Size{Width: 400, Height: 300}, defs, DefaultMeasurer, DefaultDPI, h)

	img := findByName(tree, "img")
	require.NotNil(t, img, "expected an img node in the tree")
	assert.Equalf(t, 100.0, img.Layout.Content.Width, "expected the img's width/height attributes to size it, got %+v", img.Layout.Content)
	assert.Equal(t, 50.0, img.Layout.Content.Height)
	assert.Emptyf(t, h.Warnings(), "expected no warnings when intrinsic size is known, got %+v", h.Warnings())
}

func TestLayoutBoxModelSnapshot(t *testing.T) {
	htmlSrc := testutil.Dedent(`
		<div id="main">
			<p>hello</p>
		</div>
	`)
	cssSrc := `#main { width: 200px; padding: 4px; } p { display: block; }`
	tree := buildTree(t, htmlSrc, cssSrc)
	defs := loadDefs(t)
	Layout(tree, tree.Root, Size{Width: 400, Height: 300}, defs, DefaultMeasurer, DefaultDPI, nil)

	testutil.MakeSnapshot(&testutil.SnapshotOptions{
		Testing:      t,
		TestCaseName: t.Name(),
		Input:        htmlSrc,
		Output:       dumpBoxModel(tree),
		Kind:         testutil.LayoutOutput,
	})
}
