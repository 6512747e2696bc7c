package tiling

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
	"github.com/kestrelweb/kestrel/internal/layout"
	"github.com/kestrelweb/kestrel/internal/rendertree"
	"github.com/kestrelweb/kestrel/internal/testutil"
)

func loadDefs(t *testing.T) *cssdefs.Definitions {
	t.Helper()
	defs, err := cssdefs.Load()
	require.NoError(t, err)
	return defs
}

// dumpTiles renders a tile grid as a deterministic, human-readable text
// block: one line per allocated tile, listing its (layer, node) entries in
// paint order, the same shape tiling.Generate guarantees via Tiles().
func dumpTiles(tree *rendertree.RenderTree, tl *TileList) string {
	var b strings.Builder
	for _, tile := range tl.Tiles() {
		fmt.Fprintf(&b, "tile(%d,%d):", tile.Coord.Col, tile.Coord.Row)
		for _, e := range tile.Entries {
			name := "?"
			if n := tree.Node(e.NodeID); n != nil {
				name = n.Name
			}
			fmt.Fprintf(&b, " [layer=%d %s#%d]", e.LayerID, name, e.NodeID)
		}
		b.WriteString("\n")
	}
	return b.String()
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

func buildLaidOutTree(t *testing.T, htmlSrc, cssSrc string, viewport layout.Size) *rendertree.RenderTree {
	t.Helper()
	doc := parseHTML(t, htmlSrc)
	defs := loadDefs(t)
	var sheets []*cssparser.Stylesheet
	if cssSrc != "" {
		sheets = []*cssparser.Stylesheet{parseCSS(t, cssSrc)}
	}
	tree := rendertree.GenerateRenderTree(doc, sheets, defs, layout.CollapseInline, nil)
	layout.Layout(tree, tree.Root, viewport, defs, layout.DefaultMeasurer, layout.DefaultDPI, nil)
	return tree
}

func TestBuildLayersSeparatesPositionedZIndex(t *testing.T) {
	tree := buildLaidOutTree(t, `<div id="base"></div><div id="popup"></div>`, `
		#popup { position: absolute; z-index: 5; }
	`, layout.Size{Width: 800, Height: 600})
	defs := loadDefs(t)

	layers := BuildLayers(tree, tree.Root, defs)
	require.Lenf(t, layers, 2, "expected base layer + one stacking-context layer")
	assert.Equalf(t, 0, layers[0].ZIndex, "expected the base layer to sort first (z-index 0), got %+v", layers[0])
	assert.Equalf(t, 5, layers[1].ZIndex, "expected the popup's layer to carry z-index 5, got %+v", layers[1])
}

func TestBuildLayersIgnoresPositionedAutoZIndex(t *testing.T) {
	tree := buildLaidOutTree(t, `<div id="rel"></div>`, `#rel { position: relative; }`, layout.Size{Width: 800, Height: 600})
	defs := loadDefs(t)

	layers := BuildLayers(tree, tree.Root, defs)
	assert.Lenf(t, layers, 1, "expected position:relative with z-index:auto to stay in the base layer")
}

func TestBuildLayersOrdersByAscendingZIndex(t *testing.T) {
	tree := buildLaidOutTree(t, `<div id="a"></div><div id="b"></div>`, `
		#a { position: absolute; z-index: 10; }
		#b { position: absolute; z-index: 2; }
	`, layout.Size{Width: 800, Height: 600})
	defs := loadDefs(t)

	layers := BuildLayers(tree, tree.Root, defs)
	for i := 1; i < len(layers); i++ {
		assert.GreaterOrEqualf(t, layers[i].ZIndex, layers[i-1].ZIndex, "expected ascending z-index order, got %+v", layers)
	}
}

func TestGenerateTilesCoversIntersectingGeometry(t *testing.T) {
	tree := buildLaidOutTree(t, `<div id="big"></div>`, `#big { width: 600px; height: 600px; }`, layout.Size{Width: 800, Height: 800})
	defs := loadDefs(t)
	layers := BuildLayers(tree, tree.Root, defs)

	tl := Generate(tree, layers, 256)
	tiles := tl.Tiles()
	require.NotEmpty(t, tiles, "expected at least one tile to be allocated")
	for _, tile := range tiles {
		for i := 1; i < len(tile.Entries); i++ {
			a, b := tile.Entries[i-1], tile.Entries[i]
			sorted := a.LayerID < b.LayerID || (a.LayerID == b.LayerID && a.NodeID <= b.NodeID)
			assert.Truef(t, sorted, "expected entries sorted by (layer, node), got %+v", tile.Entries)
		}
	}
}

func TestGenerateTilesLazyOutsideContent(t *testing.T) {
	tree := buildLaidOutTree(t, `<div></div>`, ``, layout.Size{Width: 4000, Height: 4000})
	defs := loadDefs(t)
	layers := BuildLayers(tree, tree.Root, defs)

	tl := Generate(tree, layers, 256)
	_, ok := tl.Get(Coord{Col: 10, Row: 10})
	assert.False(t, ok, "expected a tile far outside any painted geometry to never be allocated")
}

func TestGenerateTilesSkipsZeroSizedNodes(t *testing.T) {
	tree := buildLaidOutTree(t, `<img src="missing.png">`, ``, layout.Size{Width: 800, Height: 600})
	defs := loadDefs(t)
	layers := BuildLayers(tree, tree.Root, defs)

	tl := Generate(tree, layers, 256)
	for _, tile := range tl.Tiles() {
		for _, e := range tile.Entries {
			n := tree.Node(e.NodeID)
			if n != nil {
				assert.NotEqual(t, "img", n.Name, "expected a zero-sized <img> to never record a tile entry")
			}
		}
	}
}

func TestTileGridSnapshot(t *testing.T) {
	htmlSrc := testutil.Dedent(`
		<div id="base"></div>
		<div id="popup"></div>
	`)
	tree := buildLaidOutTree(t, htmlSrc, `
		#base { width: 300px; height: 300px; }
		#popup { position: absolute; z-index: 5; width: 100px; height: 100px; }
	`, layout.Size{Width: 512, Height: 512})
	defs := loadDefs(t)
	layers := BuildLayers(tree, tree.Root, defs)
	tl := Generate(tree, layers, 256)

	testutil.MakeSnapshot(&testutil.SnapshotOptions{
		Testing:      t,
		TestCaseName: t.Name(),
		Input:        htmlSrc,
		Output:       dumpTiles(tree, tl),
		Kind:         testutil.TileOutput,
	})
}
