// Package render defines the contracts between the crop pipeline and the
// collaborators that turn markup into pixels.
//
// A [Renderer] receives one [Page]: a composite HTML document embedding
// every document of a batch as a fixed-size tile, plus the canvas geometry
// the page must be captured at. It returns encoded image bytes with true
// alpha transparency (no background flattening).
//
// A [Decoder] turns those bytes back into a flat, row-major RGBA [Raster].
//
// Two renderers are provided:
//
//   - [github.com/matzehuels/svgcrop/pkg/render/chrome]: headless Chrome via
//     go-rod, rendering the page HTML exactly as a browser would.
//   - [github.com/matzehuels/svgcrop/pkg/render/raster]: an in-process
//     rasterizer built on oksvg/rasterx that draws each tile directly.
//
// [PNGDecoder] is the default decoder for both.
package render
