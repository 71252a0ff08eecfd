package crop

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/svgcrop/pkg/errors"
	"github.com/matzehuels/svgcrop/pkg/observability"
	"github.com/matzehuels/svgcrop/pkg/render"
)

// Defaults for Options.
const (
	DefaultSize  = 100
	DefaultScale = 1.05
)

// Options configures a crop call.
type Options struct {
	// Size is the tile side length in pixels (default 100, max 1600).
	// Larger tiles give more precise bounds at the cost of render time.
	Size int

	// Scale pads the tight bounds symmetrically (default 1.05).
	Scale float64
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the result.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if err := ValidateTileSize(o.Size); err != nil {
		return err
	}
	return errs.ValidateScale(o.Scale)
}

// Cropper runs batches of documents through one renderer.
//
// A Cropper holds no per-call state; concurrent calls are safe as long as
// the Renderer is.
type Cropper struct {
	Renderer render.Renderer
	Decoder  render.Decoder
	Logger   *log.Logger

	// Workers bounds the goroutines used for boundary extraction.
	Workers int
}

// New returns a Cropper that decodes with render.PNGDecoder.
// If logger is nil, log.Default() is used.
func New(r render.Renderer, logger *log.Logger) *Cropper {
	if logger == nil {
		logger = log.Default()
	}
	return &Cropper{
		Renderer: r,
		Decoder:  render.PNGDecoder{},
		Logger:   logger,
		Workers:  runtime.GOMAXPROCS(0),
	}
}

// Crop crops a single document.
func (c *Cropper) Crop(ctx context.Context, src string, opts Options) (string, error) {
	out, err := c.CropAll(ctx, []string{src}, opts)
	if err != nil {
		return "", err
	}
	return out[0], nil
}

// CropAll crops a batch of documents with a single render. The result is
// index-aligned with srcs. Any failure fails the whole batch.
func (c *Cropper) CropAll(ctx context.Context, srcs []string, opts Options) ([]string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	docs, err := NormalizeAll(ctx, srcs)
	if err != nil {
		return nil, err
	}

	boxes, err := c.CropDocuments(ctx, docs, opts)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Apply(boxes[i])
	}
	return out, nil
}

// NormalizeAll normalizes srcs in order and stops at the first invalid
// document, so the lowest offending index is reported.
func NormalizeAll(ctx context.Context, srcs []string) ([]*Document, error) {
	start := time.Now()
	docs := make([]*Document, len(srcs))
	var err error
	for i, src := range srcs {
		if docs[i], err = Normalize(src, i); err != nil {
			break
		}
	}
	observability.Crop().OnNormalize(ctx, len(srcs), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// CropDocuments renders docs together and returns the cropped viewBox of
// each. Errors cite Document.Index, so docs may be any subset of a
// larger batch.
func (c *Cropper) CropDocuments(ctx context.Context, docs []*Document, opts Options) ([]ViewBox, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	layout, err := PlanLayout(len(docs), opts.Size)
	if err != nil {
		return nil, err
	}

	raster, err := c.render(ctx, Compose(docs, layout))
	if err != nil {
		return nil, err
	}

	bitmaps, err := Slice(raster, layout)
	if err != nil {
		return nil, err
	}

	return c.extract(ctx, docs, bitmaps, opts)
}

// render runs the renderer and decoder once for the whole page.
func (c *Cropper) render(ctx context.Context, page render.Page) (render.Raster, error) {
	if c.Renderer == nil {
		return render.Raster{}, errs.New(errs.ErrCodeRenderFailure, "no renderer configured")
	}
	decoder := c.Decoder
	if decoder == nil {
		decoder = render.PNGDecoder{}
	}

	docs := len(page.Tiles)
	observability.Crop().OnRenderStart(ctx, docs, page.Width, page.Height)
	start := time.Now()

	raster, err := func() (render.Raster, error) {
		data, err := c.Renderer.Render(ctx, page)
		if err != nil {
			return render.Raster{}, asRenderFailure(err, "render failed")
		}
		raster, err := decoder.Decode(data)
		if err != nil {
			return render.Raster{}, asRenderFailure(err, "decode failed")
		}
		return raster, nil
	}()

	observability.Crop().OnRenderComplete(ctx, docs, time.Since(start), err)
	if err != nil {
		return render.Raster{}, err
	}

	c.logger().Debug("rendered batch",
		"docs", docs,
		"width", raster.Width,
		"height", raster.Height,
		"duration", time.Since(start))
	return raster, nil
}

// extract remaps every bitmap in parallel. Every document is processed even
// after a failure so the error reported is the one with the lowest index.
func (c *Cropper) extract(ctx context.Context, docs []*Document, bitmaps []*Bitmap, opts Options) ([]ViewBox, error) {
	start := time.Now()
	boxes := make([]ViewBox, len(docs))
	failures := make([]error, len(docs))

	var g errgroup.Group
	g.SetLimit(max(1, c.Workers))
	for i, d := range docs {
		g.Go(func() error {
			boxes[i], failures[i] = Remap(d.ViewBox, bitmaps[i], opts.Size, opts.Scale, d.Index)
			return nil
		})
	}
	_ = g.Wait()

	var err error
	for _, e := range failures {
		if e != nil {
			err = e
			break
		}
	}
	observability.Crop().OnExtractComplete(ctx, len(docs), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return boxes, nil
}

func (c *Cropper) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// asRenderFailure keeps structured errors as they are and wraps anything
// else as RENDER_FAILURE.
func asRenderFailure(err error, msg string) error {
	if errs.GetCode(err) != "" {
		return err
	}
	return errs.Wrap(errs.ErrCodeRenderFailure, err, "%s", msg)
}
