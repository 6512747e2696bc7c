// Package rendertree implements spec.md 4.6: deriving a styled render tree
// from a DOM document and its matched stylesheets. Every surviving node
// carries a resolved style.PropertyMap plus the box-model geometry
// (internal/layout populates it) and invalidation cache the rest of the
// pipeline needs.
//
// Grounded on original_source/crates/gosub_rendering/src/render_tree.rs
// (RenderTree<C>/RenderTreeNode<C>, remove_unrenderable_nodes,
// collapse_inline, mark_dirty/layout_dirty_from) and
// gosub_render_utils/src/render_tree.rs for the inline-element name table.
// No teacher (withastro-compiler) file covers this concern -- its tree is
// the printer's JSX AST, not a styled box tree -- so this package follows
// the Rust source's shape directly, written in the arena idiom
// internal/dom already established (Node entries in a map keyed by NodeId,
// parent/child links as ids, a single mutation surface).
package rendertree

import (
	"github.com/kestrelweb/kestrel/internal/dom"
	"github.com/kestrelweb/kestrel/internal/style"
)

// NodeKind discriminates a render-tree node's RenderNodeData, grounded on
// the RenderNodeData enum (Document/Element/Text/AnonymousInline) in the
// Rust source.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindElement
	KindText
	KindAnonymousInline
)

// Rect is an axis-aligned rectangle in document coordinates, used for every
// box-model edge spec.md 3 names (padding/border/margin/scrollbar rects).
type Rect struct {
	X, Y, Width, Height float64
}

// Box is the per-node computed geometry spec.md 3's "Layout" data model
// entry describes: a relative position plus the concentric content/
// padding/border/margin/scrollbar rectangles and a paint z-index.
// internal/layout is the only package that writes to it; every other
// package only reads it once internal/layout.Layout has run.
type Box struct {
	RelX, RelY float64
	Content    Rect
	Padding    Rect
	Border     Rect
	Margin     Rect
	Scrollbar  Rect
	ZIndex     int
}

// ContentBox returns the absolute content rectangle, mirroring Layout::content_box.
func (b Box) ContentBox() Rect {
	return Rect{X: b.RelX, Y: b.RelY, Width: b.Content.Width, Height: b.Content.Height}
}

// PaddingBox returns the absolute padding rectangle (content expanded by
// the padding edges), the box-model ring spec.md 3 names between content
// and border.
func (b Box) PaddingBox() Rect {
	content := b.ContentBox()
	return Rect{
		X:      content.X - b.Padding.X,
		Y:      content.Y - b.Padding.Y,
		Width:  content.Width + b.Padding.Width,
		Height: content.Height + b.Padding.Height,
	}
}

// BorderBox returns the absolute border rectangle, mirroring
// Layout::border_box: the padding box expanded by the border edges, per
// spec.md 3's "content -> padding -> border -> margin concentric
// rectangles".
func (b Box) BorderBox() Rect {
	padding := b.PaddingBox()
	return Rect{
		X:      padding.X - b.Border.X,
		Y:      padding.Y - b.Border.Y,
		Width:  padding.Width + b.Border.Width,
		Height: padding.Height + b.Border.Height,
	}
}

// MarginBox returns the absolute margin rectangle, mirroring Layout::margin_box.
func (b Box) MarginBox() Rect {
	border := b.BorderBox()
	return Rect{
		X:      border.X - b.Margin.X,
		Y:      border.Y - b.Margin.Y,
		Width:  border.Width + b.Margin.Width,
		Height: border.Height + b.Margin.Height,
	}
}

// Cache is the per-node layout-invalidation bit, mirroring the LayoutCache
// trait (4.7): a single Invalid flag marking the subtree dirty for the next
// layout pass.
type Cache struct {
	Invalid bool
}

func (c *Cache) Invalidate() { c.Invalid = true }

// Glyph is one shaped glyph within a TextLayout, grounded on the Glyph type
// gosub_interface/src/layout.rs's TextLayout::glyphs returns.
type Glyph struct {
	Rune    rune
	X       float64
	Advance float64
}

// DecorationStyle enumerates the line styles a text-decoration can use,
// mirroring the DecorationStyle enum in gosub_interface/src/layout.rs.
type DecorationStyle int

const (
	DecorationSolid DecorationStyle = iota
	DecorationDouble
	DecorationDotted
	DecorationDashed
	DecorationWavy
)

// Decoration mirrors the Decoration struct in gosub_interface/src/layout.rs.
type Decoration struct {
	Underline, Overline, LineThrough bool
	Color                            [4]float32
	Style                            DecorationStyle
	Width                            float64
	UnderlineOffset                  float64
}

// TextLayout is the measured result of shaping one text node's string,
// grounded on the TextLayout trait in gosub_interface/src/layout.rs.
type TextLayout struct {
	Width, Height float64
	Font          string
	FontSize      float64
	Glyphs        []Glyph
	Decoration    Decoration
}

// TextData is the per-node payload for a KindText node: the whitespace-
// normalized string (4.6.4) plus an optional TextLayout once measured.
type TextData struct {
	Text   string
	Layout *TextLayout
}

// Node is one entry in a RenderTree, grounded on RenderTreeNode<C> in the
// Rust source, with Layout/Cache folded in directly as concrete fields
// (kestrel ships exactly one layouter implementation, internal/layout's
// flow engine, so the Rust source's Layouter-generic RenderTreeNode<C> has
// no second implementation to abstract over; spec.md 4.7's "externalisable
// layout engine" phrasing asks for a pluggable interface at the Layout()
// entry point, not a pluggable node shape).
type Node struct {
	ID         dom.NodeId
	Name       string
	Namespace  string
	Kind       NodeKind
	Attributes map[string]string // KindElement only
	Text       *TextData         // KindText only
	Properties *style.PropertyMap
	Children   []dom.NodeId
	Parent     dom.NodeId
	hasParent  bool

	Layout Box
	Cache  Cache
}

func (n *Node) HasParent() bool { return n.hasParent }

// IsInline reports whether n should participate in inline-box aggregation
// (4.6.5 / 4.7's inline wrapping), grounded on RenderTreeNode::is_inline in
// gosub_render_utils/src/render_tree.rs: a fixed table of historically
// inline HTML elements, text nodes, and any node whose resolved `display`
// is `inline` or `inline-block`.
func (n *Node) IsInline() bool {
	if n.Kind == KindText {
		return true
	}
	if n.Kind != KindElement {
		return false
	}
	if inlineElements[n.Name] {
		return true
	}
	if n.Properties != nil {
		if p, ok := n.Properties.Get("display"); ok {
			if s, ok := p.Computed.AsString(); ok && (s == "inline" || s == "inline-block") {
				return true
			}
		}
	}
	return false
}

// inlineElements mirrors INLINE_ELEMENTS in
// gosub_rendering/src/render_tree.rs verbatim.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "acronym": true, "b": true, "bdo": true, "big": true,
	"br": true, "button": true, "cite": true, "code": true, "dfn": true, "em": true,
	"i": true, "img": true, "input": true, "kbd": true, "label": true, "map": true,
	"object": true, "q": true, "samp": true, "script": true, "select": true,
	"small": true, "span": true, "strong": true, "sub": true, "sup": true,
	"textarea": true, "tt": true, "var": true,
}

// RenderTree is the styled, pruned, inheritance-resolved tree spec.md 4.6
// derives from a Document, grounded on RenderTree<C> in the Rust source.
type RenderTree struct {
	Nodes  map[dom.NodeId]*Node
	Root   dom.NodeId
	nextID dom.NodeId
}

// Node looks up a render-tree node by id.
func (t *RenderTree) Node(id dom.NodeId) *Node { return t.Nodes[id] }

// GetRoot returns the render tree's root node, mirroring get_root. Panics
// if called before a root has been inserted: a RenderTree is only ever
// handed out by GenerateRenderTree, which always inserts one first.
func (t *RenderTree) GetRoot() *Node { return t.Nodes[t.Root] }

// reserveID allocates the next render-tree-only node id (for synthetic
// #anonymous wrappers), continuing past whatever id space the source
// Document already used, per spec.md 4.6.5.
func (t *RenderTree) reserveID() dom.NodeId {
	id := t.nextID
	t.nextID++
	return id
}

func (t *RenderTree) insert(n *Node) {
	t.Nodes[n.ID] = n
}

// ChildCount returns len(Nodes[id].Children), or 0 if id is absent.
func (t *RenderTree) ChildCount(id dom.NodeId) int {
	n := t.Nodes[id]
	if n == nil {
		return 0
	}
	return len(n.Children)
}

// deleteNode removes id and unlinks it from its parent's child list,
// mirroring RenderTree::delete_node.
func (t *RenderTree) deleteNode(id dom.NodeId) {
	n := t.Nodes[id]
	if n == nil {
		return
	}
	if n.hasParent {
		if parent := t.Nodes[n.Parent]; parent != nil {
			parent.Children = removeID(parent.Children, id)
		}
	}
	delete(t.Nodes, id)
}

func removeID(ids []dom.NodeId, target dom.NodeId) []dom.NodeId {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// subtreeIDs returns id and every descendant id, mirroring get_child_node_ids.
func (t *RenderTree) subtreeIDs(id dom.NodeId) []dom.NodeId {
	result := []dom.NodeId{id}
	n := t.Nodes[id]
	if n == nil {
		return result
	}
	for _, child := range n.Children {
		result = append(result, t.subtreeIDs(child)...)
	}
	return result
}

// MarkDirty invalidates id's layout cache, every ancestor up to the root,
// and every direct child -- the minimum closure spec.md 4.7 requires for
// flow re-layout, grounded on layout_dirty_from in the Rust source.
func (t *RenderTree) MarkDirty(from dom.NodeId) {
	next := from
	for {
		n := t.Nodes[next]
		if n == nil {
			return
		}
		n.Cache.Invalidate()
		for _, child := range n.Children {
			if c := t.Nodes[child]; c != nil {
				c.Cache.Invalidate()
			}
		}
		if !n.hasParent {
			return
		}
		next = n.Parent
	}
}
