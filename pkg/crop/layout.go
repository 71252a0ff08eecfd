package crop

import (
	errs "github.com/matzehuels/svgcrop/pkg/errors"
)

// MaxCanvasWidth is the widest raster a batch render produces. A tile can
// never be wider than one full canvas row.
const MaxCanvasWidth = 1600

// ValidateTileSize checks that a tile of the given side length fits on the
// render canvas.
func ValidateTileSize(size int) error {
	if size > MaxCanvasWidth {
		return errs.New(errs.ErrCodeConfiguration, "Maximum bitmap size is %d, got: %d", MaxCanvasWidth, size)
	}
	if size < 1 {
		return errs.New(errs.ErrCodeConfiguration, "bitmap size must be positive, got: %d", size)
	}
	return nil
}

// Layout is the tile grid of one batch render.
type Layout struct {
	TileSize int // Side length of each square tile in pixels
	Columns  int // Tiles per canvas row
	Rows     int // Canvas rows
	Count    int // Number of documents placed on the grid
}

// PlanLayout fits count tiles of the given size onto a canvas no wider than
// MaxCanvasWidth. It fails before anything is rendered when a single
// tile cannot fit.
func PlanLayout(count, size int) (Layout, error) {
	if err := ValidateTileSize(size); err != nil {
		return Layout{}, err
	}
	cols := max(1, MaxCanvasWidth/size)
	rows := (count + cols - 1) / cols
	return Layout{TileSize: size, Columns: cols, Rows: rows, Count: count}, nil
}

// Width returns the canvas width in pixels.
func (l Layout) Width() int { return l.Columns * l.TileSize }

// Height returns the canvas height in pixels.
func (l Layout) Height() int { return l.Rows * l.TileSize }

// Origin returns the top-left canvas pixel of tile i.
func (l Layout) Origin(i int) (x, y int) {
	return (i % l.Columns) * l.TileSize, (i / l.Columns) * l.TileSize
}
