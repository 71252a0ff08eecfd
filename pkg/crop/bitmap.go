package crop

import (
	errs "github.com/matzehuels/svgcrop/pkg/errors"
	"github.com/matzehuels/svgcrop/pkg/render"
)

// Bitmap is a row-major grid of opacity flags for one tile.
type Bitmap struct {
	Width, Height int
	Pix           []bool
}

// NewBitmap returns an all-transparent bitmap.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// At reports whether the pixel at column x, row y is opaque.
func (b *Bitmap) At(x, y int) bool {
	return b.Pix[y*b.Width+x]
}

// Set marks the pixel at column x, row y.
func (b *Bitmap) Set(x, y int, opaque bool) {
	b.Pix[y*b.Width+x] = opaque
}

// Crop returns a copy of the width×height region whose top-left corner
// is (x, y). The region is clamped to the bitmap.
func (b *Bitmap) Crop(x, y, width, height int) *Bitmap {
	x, y = max(0, x), max(0, y)
	width = min(width, b.Width-x)
	height = min(height, b.Height-y)
	out := NewBitmap(max(0, width), max(0, height))
	for row := 0; row < out.Height; row++ {
		copy(out.Pix[row*out.Width:(row+1)*out.Width], b.Pix[(y+row)*b.Width+x:])
	}
	return out
}

// Slice splits a decoded canvas into one bitmap per document, in layout
// order. A pixel is opaque when its alpha sample is non-zero.
func Slice(r render.Raster, l Layout) ([]*Bitmap, error) {
	if r.Width < l.Width() || r.Height < l.Height() {
		return nil, errs.New(errs.ErrCodeRenderFailure,
			"rendered canvas is %dx%d, want %dx%d", r.Width, r.Height, l.Width(), l.Height())
	}
	if len(r.Pix) < r.Width*r.Height*4 {
		return nil, errs.New(errs.ErrCodeRenderFailure,
			"rendered canvas has %d samples, want %d", len(r.Pix), r.Width*r.Height*4)
	}

	out := make([]*Bitmap, l.Count)
	for i := range out {
		ox, oy := l.Origin(i)
		bm := NewBitmap(l.TileSize, l.TileSize)
		for y := 0; y < l.TileSize; y++ {
			row := ((oy+y)*r.Width + ox) * 4
			for x := 0; x < l.TileSize; x++ {
				bm.Pix[y*l.TileSize+x] = r.Pix[row+x*4+3] != 0
			}
		}
		out[i] = bm
	}
	return out, nil
}

// Box holds the first opaque row or column found scanning in from each
// edge. Bottom and Right are indices, not lengths.
type Box struct {
	Top, Bottom, Left, Right int
}

// Bounds scans b from all four edges. ok is false when any scan finds no
// opaque pixel.
func (b *Bitmap) Bounds() (box Box, ok bool) {
	rowHas := func(y int) bool {
		for x := 0; x < b.Width; x++ {
			if b.At(x, y) {
				return true
			}
		}
		return false
	}
	colHas := func(x int) bool {
		for y := 0; y < b.Height; y++ {
			if b.At(x, y) {
				return true
			}
		}
		return false
	}

	var found [4]bool
	for y := 0; y < b.Height; y++ {
		if rowHas(y) {
			box.Top, found[0] = y, true
			break
		}
	}
	for y := b.Height - 1; y >= 0; y-- {
		if rowHas(y) {
			box.Bottom, found[1] = y, true
			break
		}
	}
	for x := 0; x < b.Width; x++ {
		if colHas(x) {
			box.Left, found[2] = x, true
			break
		}
	}
	for x := b.Width - 1; x >= 0; x-- {
		if colHas(x) {
			box.Right, found[3] = x, true
			break
		}
	}
	return box, found[0] && found[1] && found[2] && found[3]
}
