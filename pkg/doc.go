// Package pkg provides the libraries behind svgcrop.
//
// # Overview
//
// svgcrop shrinks the viewBox of SVG documents to the area their visible
// pixels cover. The pkg directory is organized into these areas:
//
//  1. [crop] - Normalization, tile layout, bitmap bounds and viewBox remapping
//  2. [render] - The Renderer interface plus the chrome and raster backends
//  3. [pipeline] - Batch orchestration with result caching
//  4. [cache] - File, Redis, MongoDB and null cache backends
//  5. [server] - The HTTP API
//  6. [config] - TOML configuration
//
// # Architecture
//
// The data flow of one crop batch:
//
//	SVG documents
//	     ↓
//	[crop] Normalize (parse, infer viewBox, scope class and id names)
//	     ↓
//	[crop] Compose (one page, one fixed-size tile per document)
//	     ↓
//	[render] Renderer (single screenshot of the whole page)
//	     ↓
//	[crop] Slice + Bounds + Remap (per-tile opaque box back to user units)
//	     ↓
//	SVG documents with rewritten viewBoxes
//
// # Quick Start
//
//	cropper := crop.New(raster.New(), nil)
//	out, err := cropper.Crop(ctx, src, crop.Options{})
//
// With caching, as used by the CLI and the HTTP server:
//
//	runner := pipeline.NewRunner(cropper, cache.NewNullCache(), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Inputs: srcs})
package pkg
