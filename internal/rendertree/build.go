package rendertree

import (
	"strings"

	"github.com/kestrelweb/kestrel/internal/cssdefs"
	"github.com/kestrelweb/kestrel/internal/cssparser"
	"github.com/kestrelweb/kestrel/internal/dom"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/style"
)

// nonRenderableTags are dropped outright regardless of their computed
// style, per spec.md 4.6 step 2 ("also drop common non-renderable
// elements: head, script, style, noscript, title").
var nonRenderableTags = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "title": true,
}

// whitespacePreservingTags keep whitespace-only text children alive, the
// same exception spec.md 4.6 step 2 carves out for white-space: pre.
var whitespacePreservingTags = map[string]bool{
	"pre": true, "textarea": true,
}

// GenerateRenderTree derives a RenderTree from doc against sheets, per
// spec.md 4.6: compute styles (step 1), prune unrenderable nodes (step 2),
// resolve inheritance (step 3; text normalization already happened at
// node-construction time per step 4), then optionally wrap contiguous
// inline children in #anonymous nodes (step 5) when collapseInline is set
// (the layouter's COLLAPSE_INLINE constant, threaded in by the caller
// rather than imported, so this package never depends on internal/layout).
// Dropped-declaration warnings from the cascade accumulate on h, which may
// be nil.
func GenerateRenderTree(doc *dom.Document, sheets []*cssparser.Stylesheet, defs *cssdefs.Definitions, collapseInline bool, h *handler.Handler) *RenderTree {
	t := &RenderTree{
		Nodes:  make(map[dom.NodeId]*Node, doc.NodeCount()),
		Root:   dom.RootID,
		nextID: doc.PeekNextID(),
	}

	t.buildFrom(doc, dom.RootID, sheets, defs, h)
	t.pruneUnrenderable(defs)
	t.resolveInheritance(t.Root, defs)

	if collapseInline {
		t.collapseInline(t.Root)
	}

	return t
}

// buildFrom walks doc in pre-order starting at nodeID, inserting a render-
// tree Node for every DOM node that can carry one (Document, Element,
// Text) and skipping Comment/DocType nodes entirely, grounded on
// RenderTree::generate_from's TreeIterator walk.
func (t *RenderTree) buildFrom(doc *dom.Document, nodeID dom.NodeId, sheets []*cssparser.Stylesheet, defs *cssdefs.Definitions, h *handler.Handler) {
	docNode := doc.Node(nodeID)
	if docNode == nil {
		return
	}

	n := &Node{ID: nodeID, hasParent: docNode.HasParent(), Parent: docNode.Parent, Cache: Cache{Invalid: true}}

	switch docNode.Kind {
	case dom.KindDocument:
		n.Kind = KindDocument
		n.Name = "#document"
		n.Properties = style.NewPropertyMap()
	case dom.KindElement:
		n.Kind = KindElement
		n.Name = docNode.Element.Name
		n.Namespace = docNode.Element.Namespace
		n.Attributes = make(map[string]string, docNode.Element.Attributes.Len())
		for _, name := range docNode.Element.Attributes.Names() {
			v, _ := docNode.Element.Attributes.Get(name)
			n.Attributes[name] = v
		}
		n.Properties = style.ResolveNode(doc, nodeID, sheets, defs, h)
	case dom.KindText:
		n.Kind = KindText
		n.Name = "#text"
		n.Text = &TextData{Text: collapseWhitespace(docNode.Text)}
	case dom.KindComment, dom.KindDocType:
		return // never renderable; spec.md 4.6's RenderNodeData has no variant for either
	default:
		return
	}

	t.insert(n)
	if n.hasParent {
		if parent := t.Nodes[n.Parent]; parent != nil {
			parent.Children = append(parent.Children, nodeID)
		}
	}

	for _, child := range docNode.Children {
		t.buildFrom(doc, child, sheets, defs, h)
	}
}

// collapseWhitespace implements spec.md 4.6 step 4: runs of whitespace
// collapse to a single space, mirroring pre_transform_text in the Rust
// source.
func collapseWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastWasSpace := false
	for _, r := range text {
		if isWhitespace(r) {
			if !lastWasSpace {
				b.WriteByte(' ')
				lastWasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return b.String()
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	default:
		return false
	}
}

// pruneUnrenderable removes every node whose computed display is none,
// every node tagged in nonRenderableTags, and every whitespace-only text
// node whose parent does not preserve whitespace, per spec.md 4.6 step 2.
// Descendants of a removed node are removed with it.
func (t *RenderTree) pruneUnrenderable(defs *cssdefs.Definitions) {
	var toDelete []dom.NodeId

	for id, n := range t.Nodes {
		if id == t.Root {
			continue
		}
		if t.shouldPrune(n, defs) {
			toDelete = append(toDelete, id)
		}
	}

	seen := make(map[dom.NodeId]bool)
	for _, id := range toDelete {
		for _, descendant := range t.subtreeIDs(id) {
			seen[descendant] = true
		}
	}
	for id := range seen {
		t.deleteNode(id)
	}
}

func (t *RenderTree) shouldPrune(n *Node, defs *cssdefs.Definitions) bool {
	switch n.Kind {
	case KindElement:
		if nonRenderableTags[n.Name] {
			return true
		}
		if p, ok := n.Properties.Get("display"); ok {
			if s, ok := p.ComputeValue(defs).AsString(); ok && s == "none" {
				return true
			}
		}
		return false
	case KindText:
		if strings.TrimSpace(n.Text.Text) != "" {
			return false
		}
		parent := t.Nodes[n.Parent]
		return parent == nil || !whitespacePreservingTags[parent.Name]
	default:
		return false
	}
}

// resolveInheritance walks the surviving tree in pre-order, filling each
// child's Inherited property slots from its parent's computed values, per
// spec.md 4.6 step 3 / 9's "inheritance as a post-pass" design note.
func (t *RenderTree) resolveInheritance(id dom.NodeId, defs *cssdefs.Definitions) {
	n := t.Nodes[id]
	if n == nil {
		return
	}
	for _, child := range n.Children {
		childNode := t.Nodes[child]
		if childNode == nil {
			continue
		}
		if childNode.Properties != nil {
			style.ApplyInheritance(n.Properties, childNode.Properties, defs)
		}
		t.resolveInheritance(child, defs)
	}
}

// collapseInline wraps runs of contiguous inline children of node under a
// single synthetic #anonymous node, per spec.md 4.6 step 5, grounded on
// RenderTree::collapse_inline in the Rust source.
func (t *RenderTree) collapseInline(nodeID dom.NodeId) {
	node := t.Nodes[nodeID]
	if node == nil {
		return
	}

	var wrapperID dom.NodeId
	wrapping := false
	children := append([]dom.NodeId(nil), node.Children...)

	for _, childID := range children {
		child := t.Nodes[childID]
		if child == nil {
			continue
		}

		if child.IsInline() {
			if !wrapping {
				wrapperID = t.reserveID()
				wrapper := &Node{
					ID:         wrapperID,
					Name:       "#anonymous",
					Kind:       KindAnonymousInline,
					Properties: style.NewPropertyMap(),
					Parent:     nodeID,
					hasParent:  true,
					Cache:      Cache{Invalid: true},
				}
				t.insert(wrapper)
				node.Children = replaceID(node.Children, childID, wrapperID)
				wrapping = true
			} else {
				node.Children = removeID(node.Children, childID)
			}
			wrapper := t.Nodes[wrapperID]
			wrapper.Children = append(wrapper.Children, childID)
			child.Parent = wrapperID
			child.hasParent = true
		} else {
			wrapping = false
		}

		t.collapseInline(childID)
	}
}

func replaceID(ids []dom.NodeId, old, replacement dom.NodeId) []dom.NodeId {
	out := make([]dom.NodeId, len(ids))
	copy(out, ids)
	for i, id := range out {
		if id == old {
			out[i] = replacement
			break
		}
	}
	return out
}
