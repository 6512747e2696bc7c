// Package layout implements spec.md 4.7: the flow layouter that walks a
// rendertree.RenderTree and populates each surviving node's box-model
// geometry (content/padding/border/margin rects, z-index) and invalidation
// cache.
//
// Grounded on original_source/src/layout.rs and
// gosub_render_pipeline/src/layouter/taffy.rs for the shape of the
// pluggable-layouter contract (a Layouter.Layout(tree, root, viewport)
// entry point, an injected text-measurement collaborator, a
// COLLAPSE_INLINE switch deciding whether the render tree pre-wraps inline
// runs) -- kestrel implements its own block/inline flow algorithm rather
// than vendoring the taffy flex engine the Rust source wraps, per
// spec.md 4.7's "externalisable layout engine" wording: the interface is
// specified, one concrete implementation is required, and no flexbox
// library appears anywhere in the examples pack to wire in its place.
package layout

import (
	"unicode/utf8"

	"github.com/kestrelweb/kestrel/internal/cssdefs"
	"github.com/kestrelweb/kestrel/internal/cssparser"
	"github.com/kestrelweb/kestrel/internal/dom"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/loc"
	"github.com/kestrelweb/kestrel/internal/rendertree"
)

// DefaultDPI is the CSS reference pixel density (96dpi at 1x), used to
// convert absolute physical units (in/cm/mm/pt/pc) to px when the caller
// does not supply one.
const DefaultDPI = 96.0

// Size is a width/height pair, grounded on the Size type
// gosub_interface/src/render_backend.rs and gosub_shared/src/geo.rs share
// across the layout/render-backend boundary.
type Size struct {
	Width, Height float64
}

// FontInfo is the subset of font identity the text-measurement collaborator
// needs, mirroring the (text, font-info, max-width) parameters spec.md 6's
// FontRegistry.measure collaborator interface takes.
type FontInfo struct {
	Family string
	SizePx float64
	Weight string
	Style  string
}

// TextMeasurer is the injected text-shaping collaborator spec.md 4.7/6
// describes ("Text measurement delegated to an injected text-shaping
// function"); the core only ever calls it, never implements real glyph
// shaping itself (that lives in the out-of-scope render-backend/font
// registry, per spec.md 1's Non-goals).
type TextMeasurer interface {
	Measure(text string, font FontInfo, maxWidth float64, dpi float64) Size
}

// heuristicMeasurer is a self-contained stand-in used when no real
// FontRegistry collaborator is wired in: it approximates glyph advance as
// a fixed fraction of font size, good enough for layout to proceed
// deterministically in tests and headless runs without a real font
// backend (spec.md 5: "the image cache and font registry are process-wide
// collaborators outside the core; the core only reads from them").
type heuristicMeasurer struct{}

func (heuristicMeasurer) Measure(text string, font FontInfo, maxWidth float64, dpi float64) Size {
	n := float64(utf8.RuneCountInString(text))
	size := font.SizePx
	if size <= 0 {
		size = 16
	}
	width := n * size * 0.55
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}
	return Size{Width: width, Height: size * 1.2}
}

// DefaultMeasurer is the package's heuristic TextMeasurer, exported so
// callers without a real font backend (tests, cmd/kestrel without a font
// registry wired in) can pass it directly to Layout.
var DefaultMeasurer TextMeasurer = heuristicMeasurer{}

// CollapseInline is the layouter's COLLAPSE_INLINE constant (spec.md 4.6
// step 5 / 4.7): this flow engine wants the render tree to pre-wrap
// contiguous inline runs in #anonymous nodes, so every block-level parent's
// children list is uniformly either all-block or a single inline run.
const CollapseInline = true

// Layout computes box-model geometry for every node in tree reachable from
// root, per spec.md 4.7's `layout(tree, root, viewport-size) -> ()`
// contract. dpi <= 0 defaults to DefaultDPI; measurer == nil defaults to
// DefaultMeasurer. h may be nil; when supplied, a detached text node or an
// <img> with no resolvable intrinsic size is reported through it per
// spec.md 7's error table ("Image/font resource missing ... Layout
// proceeds with zero-sized placeholder").
func Layout(tree *rendertree.RenderTree, root dom.NodeId, viewport Size, defs *cssdefs.Definitions, measurer TextMeasurer, dpi float64, h *handler.Handler) {
	if measurer == nil {
		measurer = DefaultMeasurer
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	l := &flowLayouter{defs: defs, measurer: measurer, dpi: dpi, h: h}
	l.layoutNode(tree, root, viewport.Width, 0, 0)
}

type flowLayouter struct {
	defs     *cssdefs.Definitions
	measurer TextMeasurer
	dpi      float64
	h        *handler.Handler
}

func (l *flowLayouter) warnMissingResource(format string, args ...any) {
	if l.h != nil {
		l.h.AppendWarning(handler.NewParseError(loc.WarnMissingResource, loc.Position{}, format, args...))
	}
}

func (l *flowLayouter) warnDetachedText(format string, args ...any) {
	if l.h != nil {
		l.h.AppendWarning(handler.NewParseError(loc.WarnDetachedTextNode, loc.Position{}, format, args...))
	}
}

// layoutNode computes containingWidth-relative geometry for id, positions
// it at the absolute origin (originX, originY), and returns its margin-box
// outer height so a block-stacking caller can advance its own cursor.
func (l *flowLayouter) layoutNode(t *rendertree.RenderTree, id dom.NodeId, containingWidth, originX, originY float64) float64 {
	node := t.Node(id)
	if node == nil {
		return 0
	}

	if !node.Cache.Invalid {
		box := node.Layout
		return box.MarginBox().Height
	}

	fontSize := l.fontSizePx(node)
	margin := l.edgeRect(node, "margin", containingWidth, fontSize, false)
	border := l.borderRect(node, containingWidth, fontSize)
	padding := l.edgeRect(node, "padding", containingWidth, fontSize, false)

	contentX := originX + margin.X + border.X + padding.X
	contentY := originY + margin.Y + border.Y + padding.Y
	available := containingWidth - margin.Width - border.Width - padding.Width
	if available < 0 {
		available = 0
	}

	contentWidth := available
	if w, ok := l.explicitLength(node, "width", containingWidth, fontSize); ok {
		contentWidth = w
	}

	var contentHeight float64

	switch {
	case node.Kind == rendertree.KindText && !node.HasParent():
		// Open Question (spec.md 9): a detached text node's parent_id is
		// undefined for layout purposes; treat it as zero-sized rather than
		// guessing at a containing block.
		l.warnDetachedText("detached text node %d: zero-sized layout", node.ID)
		node.Text.Layout = &rendertree.TextLayout{Font: l.fontFamily(node), FontSize: fontSize}
		contentWidth, contentHeight = 0, 0

	case node.Kind == rendertree.KindText:
		text := node.Text.Text
		sz := l.measurer.Measure(text, FontInfo{Family: l.fontFamily(node), SizePx: fontSize}, contentWidth, l.dpi)
		node.Text.Layout = &rendertree.TextLayout{Width: sz.Width, Height: sz.Height, Font: l.fontFamily(node), FontSize: fontSize}
		contentWidth = sz.Width
		contentHeight = sz.Height

	case node.Kind == rendertree.KindElement && node.Name == "img":
		contentWidth, contentHeight = l.imgSize(node, containingWidth, fontSize)

	case len(node.Children) > 0 && t.Node(node.Children[0]) != nil && t.Node(node.Children[0]).IsInline():
		contentHeight = l.layoutInlineChildren(t, node, contentWidth, contentX, contentY)

	default:
		y := 0.0
		for _, childID := range node.Children {
			y += l.layoutNode(t, childID, contentWidth, contentX, contentY+y)
		}
		contentHeight = y
	}

	if h, ok := l.explicitLength(node, "height", containingWidth, fontSize); ok {
		contentHeight = h
	}

	node.Layout = rendertree.Box{
		RelX:    contentX,
		RelY:    contentY,
		Content: rendertree.Rect{Width: contentWidth, Height: contentHeight},
		Padding: padding,
		Border:  border,
		Margin:  margin,
		ZIndex:  l.zIndex(node),
	}
	node.Cache.Invalid = false

	return node.Layout.MarginBox().Height
}

// layoutInlineChildren lays out a run of inline children (a #anonymous
// wrapper's contents, or a raw inline-only children list when the caller
// did not opt into COLLAPSE_INLINE) left to right, wrapping to a new line
// whenever the next child would overflow containingWidth, per spec.md 4.7's
// "Inline aggregation" paragraph.
//
// An inline child that is itself an element (not plain text) is sized by
// its flattened text content for line-breaking purposes, then laid out for
// real at the chosen position: kestrel's inline algorithm wraps at
// text-run granularity and treats an inline element as an atomic unit,
// since COLLAPSE_INLINE guarantees no block-level descendant reaches this
// path.
func (l *flowLayouter) layoutInlineChildren(t *rendertree.RenderTree, parent *rendertree.Node, containingWidth, originX, originY float64) float64 {
	cursorX, cursorY, lineHeight := 0.0, 0.0, 0.0

	for _, childID := range parent.Children {
		child := t.Node(childID)
		if child == nil {
			continue
		}

		avail := containingWidth - cursorX
		fontSize := l.fontSizePx(child)
		var text string
		if child.Kind == rendertree.KindText {
			text = child.Text.Text
		} else {
			text = l.flattenText(t, childID)
		}
		est := l.measurer.Measure(text, FontInfo{Family: l.fontFamily(child), SizePx: fontSize}, avail, l.dpi)

		if cursorX > 0 && cursorX+est.Width > containingWidth {
			cursorY += lineHeight
			cursorX = 0
			lineHeight = 0
			avail = containingWidth
		}

		l.layoutNode(t, childID, avail, originX+cursorX, originY+cursorY)

		cursorX += est.Width
		if est.Height > lineHeight {
			lineHeight = est.Height
		}
	}

	return cursorY + lineHeight
}

func (l *flowLayouter) flattenText(t *rendertree.RenderTree, id dom.NodeId) string {
	node := t.Node(id)
	if node == nil {
		return ""
	}
	if node.Kind == rendertree.KindText {
		return node.Text.Text
	}
	var out string
	for _, child := range node.Children {
		out += l.flattenText(t, child)
	}
	return out
}

// imgSize resolves an <img> element's box size from its width/height
// attributes or CSS length properties. Neither the image's intrinsic
// pixel size nor its decoded bytes are available to this package (the
// ImageCache collaborator lives outside the core, per spec.md 5/6), so an
// <img> with no explicit size anywhere falls back to the zero-sized
// placeholder spec.md 7's error table prescribes for a missing resource.
func (l *flowLayouter) imgSize(node *rendertree.Node, containingWidth, fontSize float64) (float64, float64) {
	width, widthOK := l.explicitLength(node, "width", containingWidth, fontSize)
	height, heightOK := l.explicitLength(node, "height", containingWidth, fontSize)

	if wa, ok := node.Attributes["width"]; ok && !widthOK {
		if n, ok := parseAttrLength(wa); ok {
			width, widthOK = n, true
		}
	}
	if ha, ok := node.Attributes["height"]; ok && !heightOK {
		if n, ok := parseAttrLength(ha); ok {
			height, heightOK = n, true
		}
	}

	if !widthOK || !heightOK {
		src := node.Attributes["src"]
		l.warnMissingResource("img %q: no intrinsic size available, using zero-sized placeholder", src)
	}
	if !widthOK {
		width = 0
	}
	if !heightOK {
		height = 0
	}
	return width, height
}

// parseAttrLength parses a bare HTML width/height attribute value (always
// an unadorned integer of CSS pixels, never a unit suffix) into a float64.
func parseAttrLength(s string) (float64, bool) {
	var n float64
	var any bool
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + float64(r-'0')
		any = true
	}
	return n, any
}

func (l *flowLayouter) zIndex(node *rendertree.Node) int {
	v := l.prop(node, "z-index")
	if n, ok := v.AsNumber(); ok {
		return int(n)
	}
	return 0
}

func (l *flowLayouter) prop(node *rendertree.Node, name string) cssparser.CssValue {
	if node.Properties != nil {
		if p, ok := node.Properties.Get(name); ok {
			return p.ComputeValue(l.defs)
		}
	}
	if def, ok := l.defs.Find(name); ok && def.Initial != "" {
		return cssparser.Ident(def.Initial)
	}
	return cssparser.None()
}

// fontSizePx resolves the node's computed font-size to a pixel value,
// mapping the CSS absolute-size keywords (medium, small, large, ...) to
// the same fixed px table every desktop browser's UA stylesheet ships,
// since spec.md 1 puts real font metrics out of scope.
func (l *flowLayouter) fontSizePx(node *rendertree.Node) float64 {
	v := l.prop(node, "font-size")
	if n, unit, ok := v.AsUnit(); ok {
		return l.unitToPx(n, unit, 16)
	}
	if n, ok := v.AsNumber(); ok {
		return n
	}
	if s, ok := v.AsString(); ok {
		switch s {
		case "xx-small":
			return 9
		case "x-small":
			return 10
		case "small":
			return 13
		case "medium":
			return 16
		case "large":
			return 18
		case "x-large":
			return 24
		case "xx-large":
			return 32
		}
	}
	return 16
}

func (l *flowLayouter) fontFamily(node *rendertree.Node) string {
	v := l.prop(node, "font-family")
	if s, ok := v.AsString(); ok && s != "" {
		return s
	}
	return "sans-serif"
}

// explicitLength resolves a length-valued property (width, height) against
// containingWidth, returning ok=false for "auto" (the caller should keep
// its shrink/fill default instead).
func (l *flowLayouter) explicitLength(node *rendertree.Node, name string, containingWidth, fontSize float64) (float64, bool) {
	v := l.prop(node, name)
	if s, ok := v.AsString(); ok && s == "auto" {
		return 0, false
	}
	return l.length(v, containingWidth, fontSize, false), true
}

// edgeRect resolves the four directional longhands of a box-model edge
// (margin-top/right/bottom/left, padding-top/right/bottom/left) into a
// Rect whose X/Y hold the left/top thickness and Width/Height hold the
// left+right/top+bottom sums, the shape rendertree.Box's
// ContentBox/BorderBox/MarginBox helpers expect.
func (l *flowLayouter) edgeRect(node *rendertree.Node, prefix string, containingWidth, fontSize float64, borderWidth bool) rendertree.Rect {
	top := l.edgeSide(node, prefix+"-top", containingWidth, fontSize, borderWidth)
	right := l.edgeSide(node, prefix+"-right", containingWidth, fontSize, borderWidth)
	bottom := l.edgeSide(node, prefix+"-bottom", containingWidth, fontSize, borderWidth)
	left := l.edgeSide(node, prefix+"-left", containingWidth, fontSize, borderWidth)
	return rendertree.Rect{X: left, Y: top, Width: left + right, Height: top + bottom}
}

func (l *flowLayouter) edgeSide(node *rendertree.Node, name string, containingWidth, fontSize float64, borderWidth bool) float64 {
	v := l.prop(node, name)
	if s, ok := v.AsString(); ok && s == "auto" {
		return 0 // auto margins (centering) are not implemented; treated as 0
	}
	return l.length(v, containingWidth, fontSize, borderWidth)
}

// borderRect is edgeRect's border-specific counterpart: a side whose
// border-*-style resolves to "none" has zero width regardless of its
// border-*-width value, per CSS2.1 §8.5.
func (l *flowLayouter) borderRect(node *rendertree.Node, containingWidth, fontSize float64) rendertree.Rect {
	side := func(edge string) float64 {
		styleVal := l.prop(node, "border-"+edge+"-style")
		if s, ok := styleVal.AsString(); ok && s == "none" {
			return 0
		}
		return l.length(l.prop(node, "border-"+edge+"-width"), containingWidth, fontSize, true)
	}
	top, right, bottom, left := side("top"), side("right"), side("bottom"), side("left")
	return rendertree.Rect{X: left, Y: top, Width: left + right, Height: top + bottom}
}

// length resolves any length-or-percentage CssValue to px. borderWidth
// selects the thin/medium/thick keyword table border-width uses instead of
// the font-size absolute-size keywords.
func (l *flowLayouter) length(v cssparser.CssValue, containingWidth, fontSize float64, borderWidth bool) float64 {
	switch {
	case v.Kind == cssparser.KindUnit:
		n, unit, _ := v.AsUnit()
		return l.unitToPx(n, unit, fontSize)
	case v.Kind == cssparser.KindPercentage:
		n, _ := v.AsPercentage()
		return containingWidth * n / 100
	case v.Kind == cssparser.KindNumber:
		n, _ := v.AsNumber()
		return n
	case v.Kind == cssparser.KindIdent:
		if borderWidth {
			switch v.Str {
			case "thin":
				return 1
			case "medium":
				return 3
			case "thick":
				return 5
			}
		}
		return 0
	default:
		return 0
	}
}

// unitToPx converts a dimensioned CSS value to px at l.dpi, grounded on the
// CSS Values and Units conversion table (96px == 1in at the reference
// pixel density).
func (l *flowLayouter) unitToPx(n float64, unit string, fontSize float64) float64 {
	switch unit {
	case "px":
		return n
	case "em":
		return n * fontSize
	case "rem":
		return n * 16 // root element font-size is not separately tracked; 16px default
	case "pt":
		return n * l.dpi / 72
	case "pc":
		return n * l.dpi / 6
	case "in":
		return n * l.dpi
	case "cm":
		return n * l.dpi / 2.54
	case "mm":
		return n * l.dpi / 25.4
	default:
		return n
	}
}
