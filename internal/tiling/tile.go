package tiling

import (
	"sort"

	"github.com/kestrelweb/kestrel/internal/dom"
	"github.com/kestrelweb/kestrel/internal/rendertree"
)

// DefaultTileSize is the tile grid's fixed dimension, per spec.md 4.8's
// "axis-aligned tiles of a fixed dimension (e.g. 256x256)".
const DefaultTileSize = 256.0

// Coord is a tile's position in the grid, in tile units (not pixels).
type Coord struct {
	Col, Row int
}

// Entry is one (layer, node) pair recorded against a tile, per spec.md
// 4.8's "sorted list of (layer-id, node-id) pairs".
type Entry struct {
	LayerID int
	NodeID  dom.NodeId
}

// Tile is the sorted paint-order list of nodes intersecting one grid cell.
type Tile struct {
	Coord   Coord
	Entries []Entry
}

// TileList is the lazily-populated tile grid spec.md 6's `tile(RenderTree,
// tile-size) -> TileList` entry point returns: a tile exists only once
// some node's painted geometry intersects it, so regions outside the
// viewport never allocate a Tile until content scrolls into them.
type TileList struct {
	TileSize float64
	tiles    map[Coord]*Tile
}

// NewTileList creates an empty grid at the given tile size (DefaultTileSize
// if size <= 0).
func NewTileList(size float64) *TileList {
	if size <= 0 {
		size = DefaultTileSize
	}
	return &TileList{TileSize: size, tiles: make(map[Coord]*Tile)}
}

// Get looks up a tile by coordinate, without creating it.
func (tl *TileList) Get(c Coord) (*Tile, bool) {
	t, ok := tl.tiles[c]
	return t, ok
}

// Tiles returns every allocated tile, sorted by (row, col) for
// deterministic iteration, per spec.md 5's ordering guarantee.
func (tl *TileList) Tiles() []*Tile {
	out := make([]*Tile, 0, len(tl.tiles))
	for _, t := range tl.tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coord.Row != out[j].Coord.Row {
			return out[i].Coord.Row < out[j].Coord.Row
		}
		return out[i].Coord.Col < out[j].Coord.Col
	})
	return out
}

func (tl *TileList) tileAt(c Coord) *Tile {
	t, ok := tl.tiles[c]
	if !ok {
		t = &Tile{Coord: c}
		tl.tiles[c] = t
	}
	return t
}

// Generate covers every node's painted (border-box) geometry in layers
// with tiles, recording a sorted (layer-id, node-id) Entry against every
// tile it intersects, per spec.md 4.8. Nodes with zero-area geometry (an
// unlaid-out or zero-sized placeholder node, per spec.md 7) never record a
// tile entry.
func Generate(tree *rendertree.RenderTree, layers []*Layer, tileSize float64) *TileList {
	tl := NewTileList(tileSize)

	for _, layer := range layers {
		for _, nodeID := range layer.Nodes {
			node := tree.Node(nodeID)
			if node == nil {
				continue
			}
			rect := node.Layout.BorderBox()
			if rect.Width <= 0 || rect.Height <= 0 {
				continue
			}
			for _, c := range tl.coordsFor(rect) {
				t := tl.tileAt(c)
				t.Entries = append(t.Entries, Entry{LayerID: layer.ID, NodeID: nodeID})
			}
		}
	}

	for _, t := range tl.tiles {
		sortEntries(t.Entries)
	}
	return tl
}

// coordsFor returns every tile coordinate rect's painted geometry
// intersects.
func (tl *TileList) coordsFor(rect rendertree.Rect) []Coord {
	startCol := int(rect.X / tl.TileSize)
	startRow := int(rect.Y / tl.TileSize)
	endCol := int((rect.X + rect.Width) / tl.TileSize)
	endRow := int((rect.Y + rect.Height) / tl.TileSize)

	// A box edge landing exactly on a tile boundary does not spill into
	// the next tile.
	if rect.Width > 0 && endCol > startCol && float64(endCol)*tl.TileSize == rect.X+rect.Width {
		endCol--
	}
	if rect.Height > 0 && endRow > startRow && float64(endRow)*tl.TileSize == rect.Y+rect.Height {
		endRow--
	}

	var coords []Coord
	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			coords = append(coords, Coord{Col: col, Row: row})
		}
	}
	return coords
}

// sortEntries orders a tile's entries by (layer-id, node-id), per spec.md
// 4.8.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LayerID != entries[j].LayerID {
			return entries[i].LayerID < entries[j].LayerID
		}
		return entries[i].NodeID < entries[j].NodeID
	})
}
