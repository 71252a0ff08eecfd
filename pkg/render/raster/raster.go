// Package raster renders composite pages in-process with oksvg.
//
// Unlike a browser it ignores the page HTML and draws each tile's SVG
// straight into its grid cell, scaled to fit and centered the way
// preserveAspectRatio="xMidYMid meet" does. CSS, text and filters are not
// supported; the output is good enough to find content bounds of plain
// vector icons without a browser.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/matzehuels/svgcrop/pkg/render"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithStrictErrors fails a render when a tile uses an SVG feature oksvg
// does not understand. By default such elements are skipped.
func WithStrictErrors() Option {
	return func(r *Renderer) { r.mode = oksvg.StrictErrorMode }
}

// Renderer draws tiles with oksvg/rasterx. It is safe for concurrent use.
type Renderer struct {
	mode oksvg.ErrorMode
}

var _ render.Renderer = (*Renderer)(nil)

// New returns an in-process renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{mode: oksvg.IgnoreErrorMode}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render implements render.Renderer. The result is a PNG of
// page.Width×page.Height with a transparent background.
func (r *Renderer) Render(ctx context.Context, page render.Page) ([]byte, error) {
	if page.TileSize <= 0 || page.Columns <= 0 {
		return nil, fmt.Errorf("raster: invalid tile geometry %d×%d", page.TileSize, page.Columns)
	}

	canvas := imaging.New(page.Width, page.Height, color.NRGBA{})
	for i, markup := range page.Tiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tile, err := r.drawTile(markup, page.TileSize)
		if err != nil {
			return nil, fmt.Errorf("raster: tile %d: %w", i, err)
		}
		x := (i % page.Columns) * page.TileSize
		y := (i / page.Columns) * page.TileSize
		canvas = imaging.Paste(canvas, tile, image.Pt(x, y))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("raster: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// drawTile rasterizes one SVG into a size×size image.
func (r *Renderer) drawTile(markup string, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(markup), r.mode)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		return img, nil
	}

	x, y, tw, th := meet(w, h, float64(size))
	icon.SetTarget(x, y, tw, th)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, 1.0)
	return img, nil
}

// meet fits a w×h drawing into a size×size square keeping its aspect ratio
// and centers it.
func meet(w, h, size float64) (x, y, tw, th float64) {
	scale := min(size/w, size/h)
	tw, th = w*scale, h*scale
	return (size - tw) / 2, (size - th) / 2, tw, th
}
