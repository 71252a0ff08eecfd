// Package crop computes tight viewBoxes for SVG documents.
//
// Documents are cropped in batches. Every document of a batch is
// normalized ([Normalize]), placed as one square tile of a single
// composite page ([PlanLayout], [Compose]) and the page is rendered once.
// The decoded canvas is cut back into one opacity [Bitmap] per document
// ([Slice]); each bitmap is scanned for its opaque bounds and the bounds
// are mapped back into the document's coordinate space ([Remap]). The new
// viewBox is spliced into the original markup ([SpliceViewBox]), leaving
// the rest of it untouched.
//
// # Usage
//
//	c := crop.New(renderer, logger)
//	out, err := c.CropAll(ctx, svgs, crop.Options{Size: 100, Scale: 1.05})
//
// Errors are *errors.Error values from pkg/errors carrying the batch index
// of the offending document.
package crop
