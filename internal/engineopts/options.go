// Package engineopts is kestrel's configuration layer: a plain struct
// populated by a caller (a CLI flag set, a test, an embedder) and threaded
// through internal/engine, the same role transform.TransformOptions plays
// for the teacher (withastro-compiler) -- a bag of call-time parameters,
// not a persisted settings store (spec.md 1 scopes "persisting user
// settings" out as a Non-goal).
package engineopts

import "github.com/kestrelweb/kestrel/internal/cssparser"

// DefaultDPI mirrors layout.DefaultDPI; kept as its own constant here
// rather than importing internal/layout, since engineopts is the ambient
// config layer every stage package depends on, not the reverse.
const DefaultDPI = 96.0

// DefaultTileSize mirrors tiling.DefaultTileSize, for the same reason.
const DefaultTileSize = 256.0

// Options collects the tunable parameters spec.md 6's entry points take:
// the viewport size internal/layout lays out against, the tile grid
// internal/tiling covers the document with, the cascade origin a bare
// stylesheet is assumed to carry when a caller doesn't say otherwise, and
// the DPI internal/layout resolves absolute units against.
type Options struct {
	ViewportWidth  float64
	ViewportHeight float64
	TileSize       float64
	DefaultOrigin  cssparser.CssOrigin
	DPI            float64
}

// Default returns the Options a bare `cmd/kestrel` invocation runs with:
// an 800x600 viewport, a 256px tile grid, author-origin stylesheets, and
// 96dpi.
func Default() Options {
	return Options{
		ViewportWidth:  800,
		ViewportHeight: 600,
		TileSize:       DefaultTileSize,
		DefaultOrigin:  cssparser.AuthorOrigin,
		DPI:            DefaultDPI,
	}
}
