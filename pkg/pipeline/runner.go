package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svgcrop/pkg/cache"
	"github.com/matzehuels/svgcrop/pkg/crop"
	"github.com/matzehuels/svgcrop/pkg/observability"
)

// cacheKeyType labels crop entries in cache hooks.
const cacheKeyType = "crop"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators. Multiple goroutines
// can safely use the same Runner with different options.
type Runner struct {
	Cropper *crop.Cropper
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger

	// Renderer names the renderer behind Cropper. Results from different
	// renderers are cached separately.
	Renderer string

	// TTL is how long results stay cached.
	TTL time.Duration
}

// NewRunner creates a runner around cropper.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(cropper *crop.Cropper, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cropper:  cropper,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Renderer: DefaultRenderer,
		TTL:      cache.TTLCrop,
	}
}

// Execute crops every input, serving unchanged documents from cache.
// Errors carry the index of the offending input.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	n := len(opts.Inputs)
	result := &Result{
		Outputs:   make([]string, n),
		ViewBoxes: make([]crop.ViewBox, n),
		Original:  make([]crop.ViewBox, n),
		CacheInfo: CacheInfo{Hits: make([]bool, n)},
	}
	result.Stats.Documents = n

	// Stage 1: Normalize
	start := time.Now()
	docs, err := crop.NormalizeAll(ctx, opts.Inputs)
	if err != nil {
		return nil, err
	}
	result.Stats.NormalizeTime = time.Since(start)

	// Stage 2: Lookup
	keys := make([]string, n)
	var misses []*crop.Document
	for i, d := range docs {
		result.Original[i] = d.ViewBox
		keys[i] = r.Keyer.CropKey(cache.Hash([]byte(d.Source)), opts.CropKeyOpts(r.Renderer))
		if vb, ok := r.lookup(ctx, keys[i], opts.Refresh); ok {
			result.ViewBoxes[i] = vb
			result.CacheInfo.Hits[i] = true
			continue
		}
		misses = append(misses, d)
	}

	// Stage 3: Crop
	start = time.Now()
	if len(misses) > 0 {
		boxes, err := r.Cropper.CropDocuments(ctx, misses, opts.CropOptions())
		if err != nil {
			return nil, err
		}

		// Stage 4: Store
		for j, d := range misses {
			result.ViewBoxes[d.Index] = boxes[j]
			r.store(ctx, keys[d.Index], boxes[j])
		}
	}
	result.Stats.CropTime = time.Since(start)
	result.Stats.Rendered = len(misses)

	for i, d := range docs {
		result.Outputs[i] = d.Apply(result.ViewBoxes[i])
	}

	r.Logger.Debug("cropped documents",
		"documents", n,
		"cached", n-len(misses),
		"rendered", len(misses),
		"duration", result.Stats.NormalizeTime+result.Stats.CropTime)

	return result, nil
}

// lookup returns the cached viewBox stored under key.
func (r *Runner) lookup(ctx context.Context, key string, refresh bool) (crop.ViewBox, bool) {
	if refresh {
		return crop.ViewBox{}, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "error", err)
	}
	if err == nil && hit {
		var vb crop.ViewBox
		if err := json.Unmarshal(data, &vb); err == nil {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			return vb, true
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	return crop.ViewBox{}, false
}

// store caches vb under key. Failures only cost a future render.
func (r *Runner) store(ctx context.Context, key string, vb crop.ViewBox) {
	data, err := json.Marshal(vb)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache store failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
