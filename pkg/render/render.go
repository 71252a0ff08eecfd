package render

import (
	"context"
)

// Page is one composite render request covering a whole batch.
type Page struct {
	// HTML is the complete document: a shared stylesheet followed by one
	// tile container per document.
	HTML string

	// Width and Height are the canvas size in pixels. The renderer must
	// capture exactly this viewport.
	Width, Height int

	// TileSize is the side length of every tile in pixels.
	TileSize int

	// Columns is the number of tiles per canvas row.
	Columns int

	// Tiles holds the serialized <svg> markup of each tile in batch order.
	// Renderers that do not interpret HTML draw these directly.
	Tiles []string
}

// Renderer rasterizes a composite page.
type Renderer interface {
	// Render returns the encoded image of page. Transparent regions of the
	// page must stay transparent in the output.
	Render(ctx context.Context, page Page) ([]byte, error)
}

// Raster is a decoded image.
type Raster struct {
	Width, Height int

	// Pix holds 4 bytes per pixel (R, G, B, A), row-major, no padding.
	Pix []byte
}

// Decoder turns encoded image bytes into a Raster.
type Decoder interface {
	Decode(data []byte) (Raster, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) (Raster, error)

// Decode calls f(data).
func (f DecoderFunc) Decode(data []byte) (Raster, error) { return f(data) }

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, page Page) ([]byte, error)

// Render calls f(ctx, page).
func (f RendererFunc) Render(ctx context.Context, page Page) ([]byte, error) { return f(ctx, page) }
