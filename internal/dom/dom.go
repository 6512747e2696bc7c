// Package dom implements the arena-backed DOM tree spec.md 3/4.2 describes:
// a Document owns every Node exclusively, parent/child links are NodeId
// indices rather than pointers, and every mutation funnels through a single
// hook that keeps the named-id map consistent.
//
// Grounded on original_source/crates/gosub_html5/src/node.rs and
// document_impl.rs (NodeId, arena ownership, named-id indexing), restructured
// as a Go slice-backed arena: the teacher (withastro-compiler) builds a
// classic sibling/child pointer tree directly over its token stream, which
// has no arena or stable-id concept to adapt -- spec.md 3/9 requires one, so
// this package is new code written in the teacher's explicit-state,
// errors-as-values idiom rather than ported from teacher source.
package dom

import (
	"golang.org/x/net/html/atom"

	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/loc"
)

// NodeId identifies a Node within a Document's arena. 0 is reserved for the
// document root.
type NodeId int

const RootID NodeId = 0

// NodeKind discriminates the Node sum type.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindDocType
	KindText
	KindComment
	KindElement
)

// DocType holds the three DOCTYPE fields.
type DocType struct {
	Name     string
	PublicID string
	SystemID string
}

// Attributes is an insertion-ordered name -> value map.
type Attributes struct {
	order  []string
	values map[string]string
}

func newAttributes() *Attributes {
	return &Attributes{values: make(map[string]string)}
}

// Set inserts or updates an attribute, preserving first-insertion order.
func (a *Attributes) Set(name, value string) {
	if _, exists := a.values[name]; !exists {
		a.order = append(a.order, name)
	}
	a.values[name] = value
}

func (a *Attributes) Get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Names returns attribute names in insertion order.
func (a *Attributes) Names() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

func (a *Attributes) Len() int { return len(a.order) }

// Element is the per-node data for KindElement nodes. Name is interned
// through golang.org/x/net/html/atom exactly as the teacher's Token.DataAtom
// does: Atom is non-zero for the ~250 standard HTML element/attribute names
// atom.Lookup knows, giving O(1) comparisons for the selector matcher's type
// selectors (4.5) and the tag-name predicates the DOM builder and render
// tree pruning pass (4.6) both need. Custom/unknown element names fall back
// to the Name string with Atom left zero.
type Element struct {
	Name       string
	Atom       atom.Atom
	Namespace  string
	Attributes *Attributes
	ClassList  []string
	NodeID     NodeId // back-reference for matcher fast paths
}

// MatchesTag reports whether this element's tag name equals name, using the
// interned Atom for the fast path when both sides are known HTML atoms and
// falling back to a case-sensitive string compare otherwise.
func (e *Element) MatchesTag(name string) bool {
	if a := atom.Lookup([]byte(name)); a != 0 && e.Atom != 0 {
		return e.Atom == a
	}
	return e.Name == name
}

// HasClass reports whether class is present in the element's class list.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.ClassList {
		if c == class {
			return true
		}
	}
	return false
}

// Node is one entry in the Document arena.
type Node struct {
	ID       NodeId
	Kind     NodeKind
	Parent   NodeId // RootID's own Parent is itself; HasParent distinguishes it
	Children []NodeId
	Pos      loc.Position

	DocType DocType // KindDocType
	Text    string  // KindText, KindComment
	Element *Element
}

func (n *Node) HasParent() bool { return n.ID != RootID }

// Document is the arena owner: the only type allowed to mutate Node parent/
// child links or the named-id map.
type Document struct {
	h      *handler.Handler
	nodes  []*Node
	byName map[string]NodeId // named-id map, keyed by the element's "id" attribute
	nextID NodeId
}

// New creates an empty Document with just a root node.
func New(h *handler.Handler) *Document {
	d := &Document{h: h, byName: make(map[string]NodeId)}
	root := &Node{ID: RootID, Kind: KindDocument}
	d.nodes = append(d.nodes, root)
	d.nextID = RootID + 1
	return d
}

func (d *Document) Root() *Node { return d.nodes[RootID] }

// NodeCount returns the number of slots allocated in the arena (including
// any deleted, now-nil slots -- ids are never reused).
func (d *Document) NodeCount() int { return len(d.nodes) }

// PeekNextID returns the id that will be assigned to the next node created
// in this document, letting a dependent id allocator (the render tree's
// anonymous-inline wrapper ids, per spec.md 4.6.5) continue past it without
// colliding with a future DOM mutation.
func (d *Document) PeekNextID() NodeId { return d.nextID }

// Node looks up a node by id. Returns nil if id is out of range (e.g. after
// DeleteByID).
func (d *Document) Node(id NodeId) *Node {
	if int(id) < 0 || int(id) >= len(d.nodes) {
		return nil
	}
	return d.nodes[id]
}

func (d *Document) allocate(n *Node) NodeId {
	n.ID = d.nextID
	d.nextID++
	if int(n.ID) >= len(d.nodes) {
		grown := make([]*Node, n.ID+1)
		copy(grown, d.nodes)
		d.nodes = grown
	}
	d.nodes[n.ID] = n
	return n.ID
}

// CreateElement allocates a new, unattached Element node.
func (d *Document) CreateElement(name, namespace string, pos loc.Position) NodeId {
	n := &Node{
		Kind: KindElement,
		Pos:  pos,
		Element: &Element{
			Name:       name,
			Atom:       atom.Lookup([]byte(name)),
			Namespace:  namespace,
			Attributes: newAttributes(),
		},
	}
	id := d.allocate(n)
	n.Element.NodeID = id
	return id
}

// CreateText allocates a new, unattached Text node.
func (d *Document) CreateText(value string, pos loc.Position) NodeId {
	return d.allocate(&Node{Kind: KindText, Text: value, Pos: pos})
}

// CreateComment allocates a new, unattached Comment node.
func (d *Document) CreateComment(value string, pos loc.Position) NodeId {
	return d.allocate(&Node{Kind: KindComment, Text: value, Pos: pos})
}

// CreateDocType allocates a new, unattached DocType node.
func (d *Document) CreateDocType(dt DocType, pos loc.Position) NodeId {
	return d.allocate(&Node{Kind: KindDocType, DocType: dt, Pos: pos})
}

// isAncestorOf reports whether candidate is parent, grandparent, ... of id.
func (d *Document) isAncestorOf(candidate, id NodeId) bool {
	cur := id
	for {
		if cur == candidate {
			return true
		}
		if cur == RootID {
			return false
		}
		cur = d.nodes[cur].Parent
	}
}

// Attach appends child under parent at position pos, clamped to
// len(children). Rejects self-parenting and cycles (attaching an ancestor
// of parent) as a silent no-op, per spec.md 3/4.2, and reports a warning so
// the rejection is still observable via the handler.
func (d *Document) Attach(child, parent NodeId, pos int) {
	childNode := d.Node(child)
	parentNode := d.Node(parent)
	if childNode == nil || parentNode == nil {
		return
	}
	if child == parent || d.isAncestorOf(child, parent) {
		if d.h != nil {
			d.h.AppendWarning(handler.NewParseError(loc.WarnCyclicAttach, childNode.Pos, "refusing to attach node %d under %d: would create a cycle", child, parent))
		}
		return
	}

	if childNode.HasParent() {
		d.Detach(child)
	}

	if pos < 0 || pos > len(parentNode.Children) {
		pos = len(parentNode.Children)
	}
	parentNode.Children = append(parentNode.Children, RootID)
	copy(parentNode.Children[pos+1:], parentNode.Children[pos:])
	parentNode.Children[pos] = child
	childNode.Parent = parent

	d.reindexNamedID(childNode)
}

// Detach removes child from its parent's child list, leaving the node
// allocated (still reachable via Node) but unattached.
func (d *Document) Detach(child NodeId) {
	childNode := d.Node(child)
	if childNode == nil || !childNode.HasParent() {
		return
	}
	parentNode := d.Node(childNode.Parent)
	if parentNode != nil {
		for i, c := range parentNode.Children {
			if c == child {
				parentNode.Children = append(parentNode.Children[:i], parentNode.Children[i+1:]...)
				break
			}
		}
	}
	childNode.Parent = RootID
}

// Relocate moves child to newParent, appending it as the last child.
func (d *Document) Relocate(child, newParent NodeId) {
	d.Attach(child, newParent, -1)
}

// DeleteByID detaches and forgets a node, removing its named-id entry if
// any. The id is never reused (NodeId is monotonic).
func (d *Document) DeleteByID(id NodeId) {
	n := d.Node(id)
	if n == nil {
		return
	}
	d.Detach(id)
	if n.Element != nil {
		if v, ok := n.Element.Attributes.Get("id"); ok {
			if d.byName[v] == id {
				delete(d.byName, v)
			}
		}
	}
	d.nodes[id] = nil
}

// UpdateNode funnels a caller-mutated node back through the single
// mutation hook, re-indexing the named-id map. Callers obtain *Node via
// Node(id), mutate attributes in place, then call UpdateNode so the
// named-id map stays consistent (spec.md 4.2's "update_node" hook).
func (d *Document) UpdateNode(id NodeId) {
	n := d.Node(id)
	if n != nil {
		d.reindexNamedID(n)
	}
}

// UpdateNodeRef is the pointer-argument form of UpdateNode, for callers
// that already hold the *Node.
func (d *Document) UpdateNodeRef(n *Node) {
	if n != nil {
		d.reindexNamedID(n)
	}
}

// isValidID reports whether s is a syntactically valid HTML id-attribute
// value: non-empty, no ASCII whitespace.
func isValidID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
			return false
		}
	}
	return true
}

func (d *Document) reindexNamedID(n *Node) {
	if n.Element == nil {
		return
	}
	for existingID, existingNode := range d.byName {
		if existingNode == n.ID {
			delete(d.byName, existingID)
			break
		}
	}
	v, ok := n.Element.Attributes.Get("id")
	if !ok || !isValidID(v) {
		if ok && d.h != nil {
			d.h.AppendWarning(handler.NewParseError(loc.WarnInvalidIDAttribute, n.Pos, "invalid id attribute value %q on node %d", v, n.ID))
		}
		return
	}
	d.byName[v] = n.ID
}

// ByID looks up a node by its "id" attribute value.
func (d *Document) ByID(id string) (NodeId, bool) {
	nid, ok := d.byName[id]
	return nid, ok
}
