// Package pipeline runs crop batches with result caching.
//
// Both the CLI and the HTTP server go through a [Runner] so that caching
// and error reporting behave the same everywhere.
//
// # Stages
//
//  1. Normalize: parse every input; the first invalid one fails the batch
//     before any cache or render work happens
//  2. Lookup: serve documents already cropped with the same options
//  3. Crop: render the remaining documents together in one batch
//  4. Store: cache the fresh viewBoxes and splice every result
//
// # Usage
//
//	runner := pipeline.NewRunner(cropper, cache, nil, logger)
//	runner.Renderer = pipeline.RendererChrome
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Inputs: svgs,
//	    Size:   100,
//	})
//	for i, out := range result.Outputs { ... }
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/svgcrop/pkg/cache"
	"github.com/matzehuels/svgcrop/pkg/crop"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSize is the default tile size in pixels.
	DefaultSize = crop.DefaultSize

	// DefaultScale is the default padding multiplier.
	DefaultScale = crop.DefaultScale

	// DefaultRenderer is the renderer used when none is configured.
	DefaultRenderer = RendererChrome
)

// Renderer names.
const (
	RendererChrome = "chrome"
	RendererRaster = "raster"
)

// ValidRenderers is the set of supported renderers.
var ValidRenderers = map[string]bool{
	RendererChrome: true,
	RendererRaster: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one crop batch.
type Options struct {
	// Inputs are the SVG documents, in the order results are returned.
	Inputs []string `json:"svgs"`

	Size    int     `json:"size,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
	Refresh bool    `json:"refresh,omitempty"` // Ignore cached results

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Outputs are the cropped documents, index-aligned with Options.Inputs.
	Outputs []string

	// ViewBoxes are the new viewBoxes, index-aligned with Outputs.
	ViewBoxes []crop.ViewBox

	// Original are the viewBoxes read or inferred from the inputs.
	Original []crop.ViewBox

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which documents were served from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Documents     int
	Rendered      int
	NormalizeTime time.Duration
	CropTime      time.Duration
}

// CacheInfo tracks cache hits per document.
type CacheInfo struct {
	Hits []bool // Hits[i] is true when document i came from cache
}

// HitCount returns the number of cache hits.
func (c CacheInfo) HitCount() int {
	n := 0
	for _, h := range c.Hits {
		if h {
			n++
		}
	}
	return n
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateRenderer checks that a renderer name is valid.
func ValidateRenderer(name string) error {
	if !ValidRenderers[name] {
		return fmt.Errorf("invalid renderer: %q (must be one of: chrome, raster)", name)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates the crop options.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	opts := o.CropOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.Size, o.Scale = opts.Size, opts.Scale
	o.validated = true
	return nil
}

// CropOptions returns the options passed to the cropper.
func (o *Options) CropOptions() crop.Options {
	return crop.Options{Size: o.Size, Scale: o.Scale}
}

// CropKeyOpts returns cache key options for a crop result.
func (o *Options) CropKeyOpts(renderer string) cache.CropKeyOpts {
	return cache.CropKeyOpts{
		Size:     o.Size,
		Scale:    o.Scale,
		Renderer: renderer,
	}
}
