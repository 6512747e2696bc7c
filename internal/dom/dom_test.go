package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelweb/kestrel/internal/bytestream"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/html"
	"github.com/kestrelweb/kestrel/internal/loc"
)

func parse(t *testing.T, src string) *Document {
	t.Helper()
	stream := bytestream.NewFromString(src, bytestream.UTF8)
	stream.Close()
	h := handler.New("test")
	tok := html.New(stream, h)
	return Build(tok, h)
}

func TestBuildSimpleTree(t *testing.T) {
	doc := parse(t, `<div id="main"><p>hello</p></div>`)

	root := doc.Root()
	require.Len(t, root.Children, 1)

	div := doc.Node(root.Children[0])
	require.Equal(t, KindElement, div.Kind)
	assert.Equal(t, "div", div.Element.Name)

	nid, ok := doc.ByID("main")
	require.True(t, ok, "named-id map lookup failed")
	assert.Equal(t, div.ID, nid)

	require.Len(t, div.Children, 1)
	p := doc.Node(div.Children[0])
	assert.Equal(t, "p", p.Element.Name)

	text := doc.Node(p.Children[0])
	require.Equal(t, KindText, text.Kind)
	assert.Equal(t, "hello", text.Text)
}

func TestVoidElementsDoNotNest(t *testing.T) {
	doc := parse(t, `<div><img src="a.png"><p>after</p></div>`)
	div := doc.Node(doc.Root().Children[0])
	require.Len(t, div.Children, 2, "expected img and p as siblings under div")

	img := doc.Node(div.Children[0])
	assert.Equal(t, "img", img.Element.Name)
	assert.Empty(t, img.Children, "img should have no children")
}

func TestAttachRejectsSelfParenting(t *testing.T) {
	doc := New(handler.New("test"))
	id := doc.CreateElement("div", "html", loc.Zero)
	doc.Attach(id, RootID, -1)
	doc.Attach(id, id, -1) // would self-parent; must be a no-op

	n := doc.Node(id)
	assert.Equal(t, RootID, n.Parent, "self-parenting must be rejected")
}

func TestAttachRejectsCycle(t *testing.T) {
	doc := New(handler.New("test"))
	parentID := doc.CreateElement("div", "html", loc.Zero)
	childID := doc.CreateElement("span", "html", loc.Zero)
	doc.Attach(parentID, RootID, -1)
	doc.Attach(childID, parentID, -1)

	// Attaching the ancestor (parentID) under its own descendant (childID)
	// would create a cycle and must be rejected.
	doc.Attach(parentID, childID, -1)

	assert.Equal(t, RootID, doc.Node(parentID).Parent, "cycle-creating attach must be rejected")
}

func TestDeleteByIDRemovesNamedIDEntry(t *testing.T) {
	doc := parse(t, `<div id="x"></div>`)
	id, ok := doc.ByID("x")
	require.True(t, ok, "expected to find node by id before delete")

	doc.DeleteByID(id)
	_, ok = doc.ByID("x")
	assert.False(t, ok, "named-id entry should be gone after DeleteByID")
}

// TestRelocateMovesSubtreeAndUpdatesSiblings reproduces spec.md 8's worked
// relocation example: starting from parent > [div1, div2, div3[div3_1]],
// relocate(div3_1, div1) then relocate(div1, div2) must leave the tree as
// parent > [div2[div1[div3_1]], div3[]].
func TestRelocateMovesSubtreeAndUpdatesSiblings(t *testing.T) {
	doc := New(handler.New("test"))

	parent := doc.CreateElement("parent", "html", loc.Zero)
	doc.Attach(parent, RootID, -1)

	div1 := doc.CreateElement("div1", "html", loc.Zero)
	div2 := doc.CreateElement("div2", "html", loc.Zero)
	div3 := doc.CreateElement("div3", "html", loc.Zero)
	doc.Attach(div1, parent, -1)
	doc.Attach(div2, parent, -1)
	doc.Attach(div3, parent, -1)

	div3_1 := doc.CreateElement("div3_1", "html", loc.Zero)
	doc.Attach(div3_1, div3, -1)

	require.Equal(t, []NodeId{div1, div2, div3}, doc.Node(parent).Children)
	require.Equal(t, []NodeId{div3_1}, doc.Node(div3).Children)

	doc.Relocate(div3_1, div1)
	doc.Relocate(div1, div2)

	assert.Equal(t, []NodeId{div2, div3}, doc.Node(parent).Children, "parent should keep only div2 and div3")
	assert.Equal(t, []NodeId{div1}, doc.Node(div2).Children, "div2 should now contain div1")
	assert.Equal(t, []NodeId{div3_1}, doc.Node(div1).Children, "div1 should still carry div3_1")
	assert.Empty(t, doc.Node(div3).Children, "div3 should be left empty")

	assert.Equal(t, div2, doc.Node(div1).Parent)
	assert.Equal(t, div1, doc.Node(div3_1).Parent)
	assert.Equal(t, parent, doc.Node(div2).Parent)
	assert.Equal(t, parent, doc.Node(div3).Parent)
}

func TestElementClassPredicates(t *testing.T) {
	doc := New(handler.New("test"))

	b := doc.Node(doc.CreateElement("b", NamespaceHTML, loc.Zero))
	assert.True(t, b.IsFormatting())
	assert.False(t, b.IsSpecial())

	div := doc.Node(doc.CreateElement("div", NamespaceHTML, loc.Zero))
	assert.False(t, div.IsFormatting())
	assert.True(t, div.IsSpecial())

	mi := doc.Node(doc.CreateElement("mi", NamespaceMathML, loc.Zero))
	assert.True(t, mi.IsSpecial())
	assert.True(t, mi.IsMathMLIntegrationPoint())
	assert.False(t, mi.IsHTMLIntegrationPoint())

	fo := doc.Node(doc.CreateElement("foreignObject", NamespaceSVG, loc.Zero))
	assert.True(t, fo.IsSpecial())
	assert.True(t, fo.IsHTMLIntegrationPoint())

	annotation := doc.Node(doc.CreateElement("annotation-xml", NamespaceMathML, loc.Zero))
	assert.False(t, annotation.IsHTMLIntegrationPoint(), "annotation-xml without encoding is not an integration point")
	annotation.Element.Attributes.Set("encoding", "Text/HTML")
	assert.True(t, annotation.IsHTMLIntegrationPoint(), "encoding matching is ASCII case-insensitive")

	text := doc.Node(doc.CreateText("x", loc.Zero))
	assert.False(t, text.IsSpecial())
	assert.False(t, text.IsFormatting())
}
