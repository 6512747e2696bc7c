// Package engine ties every pipeline stage package together behind the
// entry points spec.md 6 names ("The core exposes: parse_html, parse_css,
// generate_render_tree, layout, tile") and declares the three collaborator
// interfaces spec.md 6 lists at the core's edges (Fetcher, FontRegistry,
// ImageCache) as abstract types the core only ever calls through, never
// implements -- spec.md 1 scopes HTTP fetching, font shaping, and image
// decoding out as peripheral machinery.
//
// Grounded on original_source/src/engine.rs and src/api.rs for the
// top-level Engine shape (one struct owning the definitions table and the
// collaborator handles, with the §4 stages as methods on it) fused with
// the teacher's own call-time-options pattern (transform.TransformOptions
// passed into transform.Transform) for internal/engineopts.Options.
package engine

import (
	"github.com/kestrelweb/kestrel/internal/bytestream"
	"github.com/kestrelweb/kestrel/internal/css"
	"github.com/kestrelweb/kestrel/internal/cssdefs"
	"github.com/kestrelweb/kestrel/internal/cssparser"
	"github.com/kestrelweb/kestrel/internal/dom"
	"github.com/kestrelweb/kestrel/internal/engineopts"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/html"
	"github.com/kestrelweb/kestrel/internal/layout"
	"github.com/kestrelweb/kestrel/internal/rendertree"
	"github.com/kestrelweb/kestrel/internal/tiling"
)

// Fetcher is spec.md 6's `get(url) -> bytes` collaborator. No core
// component calls it (HTTP fetching is out of scope per spec.md 1); it is
// declared so an embedder's own fetch implementation has a named type to
// satisfy when wiring a document loader in front of the core.
type Fetcher interface {
	Get(url string) ([]byte, error)
}

// ImageStatus is the three-way result spec.md 6's `ImageCache.get(url) ->
// Pending | Image(size) | None` describes.
type ImageStatus int

const (
	ImageNone ImageStatus = iota
	ImagePending
	ImageReady
)

// ImageResult is the rendered form of ImageCache.Get: Status selects which
// of the three cases applies, and Size is only meaningful when Status is
// ImageReady.
type ImageResult struct {
	Status ImageStatus
	Size   layout.Size
}

// ImageCache is spec.md 6's image-resource collaborator: `get(url) ->
// Pending | Image(size) | None` and `add(url, bytes, size?)`. internal/layout
// lays out an <img> with no resolvable size as a zero-sized placeholder
// regardless (spec.md 7's "Image/font resource missing" row) rather than
// calling through this interface, since no concrete ImageCache ships with
// the core -- it exists for an embedder to implement and consult before
// re-running layout once a resource arrives.
type ImageCache interface {
	Get(url string) ImageResult
	Add(url string, data []byte, size *layout.Size)
}

// FontRegistry is spec.md 6's `measure(text, font-info, max-width) ->
// (width, height)` collaborator. Its shape mirrors layout.TextMeasurer
// minus the dpi parameter (dpi is an Options concern, not a per-call
// font-registry one); fontRegistryMeasurer adapts one to the other so a
// wired FontRegistry drives internal/layout's real measurement hook
// instead of layout.DefaultMeasurer's heuristic.
type FontRegistry interface {
	Measure(text string, font layout.FontInfo, maxWidth float64) layout.Size
}

// Engine owns the one per-process resource every stage needs (the loaded
// property-definition table) plus the call-time Options and any wired
// collaborators, and exposes spec.md 6's entry points as methods so a
// caller (cmd/kestrel, a test, an embedder) never has to reach into
// internal/dom, internal/cssparser, internal/rendertree, internal/layout,
// or internal/tiling directly.
type Engine struct {
	Options engineopts.Options
	Defs    *cssdefs.Definitions

	Fetcher Fetcher
	Fonts   FontRegistry
	Images  ImageCache
}

// New loads the embedded property/shorthand table and returns an Engine
// ready to run the pipeline under opts. Fetcher/Fonts/Images are left nil
// (no core component requires them) and may be set by the caller
// afterward.
func New(opts engineopts.Options) (*Engine, error) {
	defs, err := cssdefs.Load()
	if err != nil {
		return nil, err
	}
	return &Engine{Options: opts, Defs: defs}, nil
}

// ParseHTML implements spec.md 6's `parse_html(bytes) -> Document`: src is
// fed through a byte stream (spec.md 4.1) into the HTML tokenizer and
// arena-backed DOM builder (spec.md 4.2). Diagnostics accumulate on h
// rather than aborting the parse (spec.md 7); h may be nil to discard
// them.
func (e *Engine) ParseHTML(src []byte, h *handler.Handler) *dom.Document {
	if h == nil {
		h = handler.New("")
	}
	stream := bytestream.New(src, bytestream.UTF8)
	stream.Close()
	tok := html.New(stream, h)
	return dom.Build(tok, h)
}

// ParseCSS implements spec.md 6's `parse_css(bytes, origin, source-url) ->
// Stylesheet`: src is tokenised per CSS Syntax Level 3 (spec.md 4.3) and
// parsed into a rule/selector/value model tagged with origin (spec.md
// 4.4). origin defaults to e.Options.DefaultOrigin when the caller passes
// the zero CssOrigin and Options names a non-zero one.
func (e *Engine) ParseCSS(src []byte, origin cssparser.CssOrigin, sourceURL string, h *handler.Handler) *cssparser.Stylesheet {
	if h == nil {
		h = handler.New(sourceURL)
	}
	stream := bytestream.New(src, bytestream.UTF8)
	stream.Close()
	tok := css.New(stream, h)
	return cssparser.Parse(tok, origin, sourceURL, h)
}

// GenerateRenderTree implements spec.md 6's `generate_render_tree(Document)
// -> RenderTree` (spec.md 4.5/4.6): cascade every sheet against every
// node, prune unrenderable nodes, resolve inheritance, and wrap contiguous
// inline runs in synthetic #anonymous nodes per layout.CollapseInline.
// Dropped-declaration warnings accumulate on h, which may be nil.
func (e *Engine) GenerateRenderTree(doc *dom.Document, sheets []*cssparser.Stylesheet, h *handler.Handler) *rendertree.RenderTree {
	return rendertree.GenerateRenderTree(doc, sheets, e.Defs, layout.CollapseInline, h)
}

// Layout implements spec.md 6's `layout(RenderTree, viewport) -> ()`,
// reading the viewport size and DPI from e.Options. When e.Fonts is wired,
// text measurement goes through it instead of layout.DefaultMeasurer's
// heuristic. h may be nil to discard the detached-text/missing-resource
// warnings spec.md 7 names for this stage.
func (e *Engine) Layout(tree *rendertree.RenderTree, h *handler.Handler) {
	viewport := layout.Size{Width: e.Options.ViewportWidth, Height: e.Options.ViewportHeight}
	var measurer layout.TextMeasurer
	if e.Fonts != nil {
		measurer = fontRegistryMeasurer{e.Fonts}
	}
	layout.Layout(tree, tree.Root, viewport, e.Defs, measurer, e.Options.DPI, h)
}

// Tile implements spec.md 6's `tile(RenderTree, tile-size) -> TileList`,
// reading the tile dimension from e.Options.
func (e *Engine) Tile(tree *rendertree.RenderTree) *tiling.TileList {
	layers := tiling.BuildLayers(tree, tree.Root, e.Defs)
	return tiling.Generate(tree, layers, e.Options.TileSize)
}

// Run drives the whole pipeline (§2's `bytes -> tokens -> DOM arena -> (+
// stylesheets) -> styled map -> render tree -> layout tree -> tiles`) over
// one HTML document and its already-parsed stylesheets, returning the
// final tile grid a compositor would rasterise.
func (e *Engine) Run(htmlSrc []byte, sheets []*cssparser.Stylesheet, h *handler.Handler) (*dom.Document, *rendertree.RenderTree, *tiling.TileList) {
	doc := e.ParseHTML(htmlSrc, h)
	tree := e.GenerateRenderTree(doc, sheets, h)
	e.Layout(tree, h)
	tiles := e.Tile(tree)
	return doc, tree, tiles
}

// fontRegistryMeasurer adapts a FontRegistry (spec.md 6's three-argument
// collaborator shape) to layout.TextMeasurer (which additionally threads
// dpi, an Options concern FontRegistry implementations don't see).
type fontRegistryMeasurer struct {
	fonts FontRegistry
}

func (m fontRegistryMeasurer) Measure(text string, font layout.FontInfo, maxWidth float64, dpi float64) layout.Size {
	return m.fonts.Measure(text, font, maxWidth)
}
