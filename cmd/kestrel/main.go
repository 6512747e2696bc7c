// Command kestrel runs the engine's pipeline (spec.md §2: bytes -> tokens
// -> DOM arena -> (+ stylesheets) -> styled map -> render tree -> layout
// tree -> tiles) over a single HTML file and an optional stylesheet,
// printing accumulated diagnostics (spec.md §7) and a tile summary.
//
// Usage:
//
//	kestrel -html page.html -css page.css
//	kestrel -html page.html -width 1024 -height 768 -tile-size 128
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kestrelweb/kestrel/internal/cssparser"
	"github.com/kestrelweb/kestrel/internal/engine"
	"github.com/kestrelweb/kestrel/internal/engineopts"
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/loc"
)

func main() {
	htmlPath := flag.String("html", "", "path to an HTML source file (required)")
	cssPath := flag.String("css", "", "path to an author stylesheet (optional)")
	width := flag.Float64("width", 800, "viewport width in px")
	height := flag.Float64("height", 600, "viewport height in px")
	tileSize := flag.Float64("tile-size", engineopts.DefaultTileSize, "tile grid cell size in px")
	dpi := flag.Float64("dpi", engineopts.DefaultDPI, "reference pixel density")
	flag.Parse()

	if *htmlPath == "" {
		fmt.Fprintln(os.Stderr, "kestrel: -html is required")
		flag.Usage()
		os.Exit(2)
	}

	htmlSrc, err := os.ReadFile(*htmlPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kestrel:", err)
		os.Exit(1)
	}

	opts := engineopts.Default()
	opts.ViewportWidth = *width
	opts.ViewportHeight = *height
	opts.TileSize = *tileSize
	opts.DPI = *dpi

	eng, err := engine.New(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kestrel:", err)
		os.Exit(1)
	}

	h := handler.New(*htmlPath)

	var sheets []*cssparser.Stylesheet
	if *cssPath != "" {
		cssSrc, err := os.ReadFile(*cssPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "kestrel:", err)
			os.Exit(1)
		}
		sheets = append(sheets, eng.ParseCSS(cssSrc, opts.DefaultOrigin, *cssPath, h))
	}

	_, tree, tiles := eng.Run(htmlSrc, sheets, h)

	for _, msg := range h.Diagnostics() {
		fmt.Fprintln(os.Stderr, formatDiagnostic(msg))
	}

	fmt.Printf("%d render-tree nodes, %d tiles (%gpx)\n", len(tree.Nodes), len(tiles.Tiles()), opts.TileSize)
}

func formatDiagnostic(msg loc.DiagnosticMessage) string {
	prefix := "info"
	switch msg.Severity {
	case loc.ErrorType:
		prefix = "error"
	case loc.WarningType:
		prefix = "warning"
	case loc.HintType:
		prefix = "hint"
	}
	if msg.Location == nil {
		return fmt.Sprintf("%s: %s", prefix, msg.Text)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, prefix, msg.Text)
}
