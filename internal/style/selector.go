// Package style implements spec.md 4.5: matching a parsed selector against
// a DOM element, the cascade that resolves one property's final value from
// every declaration that matched an element, and the five-stage
// cascaded/specified/computed/used/actual value pipeline each CssProperty
// walks through.
//
// Grounded on original_source/crates/gosub_styling/src/styling.rs
// (match_selector_part's right-to-left combinator walk, DeclarationProperty
// ordering by origin/importance/specificity, CssProperty's five-stage
// compute_value pipeline with its dirty bit).
package style

import (
	"strings"

	"github.com/kestrelweb/kestrel/internal/cssparser"
	"github.com/kestrelweb/kestrel/internal/dom"
)

// Matches reports whether element matches seq, walking the selector
// right-to-left the way match_selector_part does: the rightmost compound
// must match the element itself, then each combinator is satisfied by
// walking up to a parent (Child/Descendant) or sideways to a preceding
// sibling (NextSibling/SubsequentSibling) in the document.
func Matches(doc *dom.Document, elementID dom.NodeId, seq cssparser.SelectorSequence) bool {
	if len(seq.Compounds) == 0 {
		return false
	}
	return matchFrom(doc, elementID, seq, len(seq.Compounds)-1)
}

// matchFrom matches compound index i of seq against nodeID, then -- if i is
// not the first compound -- satisfies the combinator immediately before it
// against nodeID's relatives.
func matchFrom(doc *dom.Document, nodeID dom.NodeId, seq cssparser.SelectorSequence, i int) bool {
	node := doc.Node(nodeID)
	if node == nil || node.Kind != dom.KindElement {
		return false
	}
	if !matchCompound(node.Element, seq.Compounds[i]) {
		return false
	}
	if i == 0 {
		return true
	}
	return matchLeft(doc, node, seq, i)
}

// matchLeft satisfies the combinator immediately before compound i against
// node's relatives (or, for the namespace combinator, against node itself),
// then recurses leftwards.
func matchLeft(doc *dom.Document, node *dom.Node, seq cssparser.SelectorSequence, i int) bool {
	combinator := seq.Combinators[i-1]
	switch combinator {
	case cssparser.Child:
		if !node.HasParent() {
			return false
		}
		return matchFrom(doc, node.Parent, seq, i-1)
	case cssparser.Descendant:
		cur := node
		for cur.HasParent() {
			cur = doc.Node(cur.Parent)
			if cur == nil {
				return false
			}
			if matchFrom(doc, cur.ID, seq, i-1) {
				return true
			}
		}
		return false
	case cssparser.NextSibling:
		prev, ok := previousSibling(doc, node)
		if !ok {
			return false
		}
		return matchFrom(doc, prev, seq, i-1)
	case cssparser.SubsequentSibling:
		for {
			prev, ok := previousSibling(doc, node)
			if !ok {
				return false
			}
			if matchFrom(doc, prev, seq, i-1) {
				return true
			}
			node = doc.Node(prev)
		}
	case cssparser.Namespace:
		// The part left of '|' constrains this same element's namespace:
		// `svg|rect` matched `rect` already, now `svg` must equal the
		// element's namespace (`*` matches any).
		if !namespaceConstraintMatches(node.Element, seq.Compounds[i-1]) {
			return false
		}
		if i-1 == 0 {
			return true
		}
		return matchLeft(doc, node, seq, i-1)
	case cssparser.Column:
		// Column combinators relate cells to table column boxes; without
		// table column boxes there is nothing to relate, so never match.
		return false
	default:
		return false
	}
}

func namespaceConstraintMatches(el *dom.Element, c cssparser.CompoundSelector) bool {
	if len(c.Simple) != 1 {
		return false
	}
	s := c.Simple[0]
	switch s.Kind {
	case cssparser.UniversalSelectorKind:
		return true
	case cssparser.TypeSelectorKind:
		return el.Namespace == s.Name
	}
	return false
}

func previousSibling(doc *dom.Document, node *dom.Node) (dom.NodeId, bool) {
	if !node.HasParent() {
		return 0, false
	}
	parent := doc.Node(node.Parent)
	if parent == nil {
		return 0, false
	}
	for i, child := range parent.Children {
		if child == node.ID {
			if i == 0 {
				return 0, false
			}
			return parent.Children[i-1], true
		}
	}
	return 0, false
}

// matchCompound reports whether every simple selector in c matches el,
// mirroring match_selector_part's per-variant dispatch (Universal/Type/
// Class/Id/Attribute; PseudoClass/PseudoElement are left unmatched, same
// as the @Todo-marked branches in the Rust source).
func matchCompound(el *dom.Element, c cssparser.CompoundSelector) bool {
	for _, s := range c.Simple {
		if !matchSimple(el, s) {
			return false
		}
	}
	return true
}

func matchSimple(el *dom.Element, s cssparser.SimpleSelector) bool {
	switch s.Kind {
	case cssparser.UniversalSelectorKind:
		return true
	case cssparser.TypeSelectorKind:
		return el.MatchesTag(s.Name)
	case cssparser.ClassSelectorKind:
		return el.HasClass(s.Name)
	case cssparser.IDSelectorKind:
		v, ok := el.Attributes.Get("id")
		return ok && v == s.Name
	case cssparser.AttributeSelectorKind:
		return matchAttribute(el, s)
	case cssparser.PseudoClassKind, cssparser.PseudoElementKind:
		// Not yet implemented, same as the Rust source's @Todo-marked
		// PseudoClass/PseudoElement branches: never matches.
		return false
	default:
		return false
	}
}

func matchAttribute(el *dom.Element, s cssparser.SimpleSelector) bool {
	got, ok := el.Attributes.Get(s.Name)
	if !ok {
		return false
	}
	if s.AttrMatcher == "" {
		return true
	}
	want := s.AttrValue
	if s.AttrCaseInsensitive {
		got = strings.ToLower(got)
		want = strings.ToLower(want)
	}
	switch s.AttrMatcher {
	case "=":
		return got == want
	case "~=":
		for _, word := range strings.Fields(got) {
			if word == want {
				return true
			}
		}
		return false
	case "|=":
		return got == want || strings.HasPrefix(got, want+"-")
	case "^=":
		return strings.HasPrefix(got, want)
	case "$=":
		return strings.HasSuffix(got, want)
	case "*=":
		return strings.Contains(got, want)
	default:
		return false
	}
}
