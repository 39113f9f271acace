package docview

// Option configures an Engine during Open.
// Use functional options to customize Engine behavior.
//
// Example:
//
//	// Default render budget and cache size
//	eng, err := docview.Open(src)
//
//	// Constrained render budget for a small display
//	eng, err := docview.Open(src, docview.WithMaxRenderSize(1404, 1872))
type Option func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	maxWidth      int
	maxHeight     int
	cacheCapacity int
}

// Default render budget and cache bounds.
const (
	// DefaultMaxRenderWidth is the default maximum render-buffer width.
	DefaultMaxRenderWidth = 2048

	// DefaultMaxRenderHeight is the default maximum render-buffer height.
	DefaultMaxRenderHeight = 2048

	// DefaultCacheCapacity is the default page cache bound, in entries.
	DefaultCacheCapacity = 16
)

// defaultEngineOptions returns the default engine options.
func defaultEngineOptions() engineOptions {
	return engineOptions{
		maxWidth:      DefaultMaxRenderWidth,
		maxHeight:     DefaultMaxRenderHeight,
		cacheCapacity: DefaultCacheCapacity,
	}
}

// WithMaxRenderSize sets the maximum render-buffer budget. Renders whose
// requested dimensions exceed the budget by more than the oversize
// tolerance are downsampled to fit. Values <= 0 keep the defaults.
func WithMaxRenderSize(width, height int) Option {
	return func(o *engineOptions) {
		if width > 0 {
			o.maxWidth = width
		}
		if height > 0 {
			o.maxHeight = height
		}
	}
}

// WithCacheCapacity bounds the page cache entry count. A capacity <= 0
// keeps the default.
func WithCacheCapacity(entries int) Option {
	return func(o *engineOptions) {
		if entries > 0 {
			o.cacheCapacity = entries
		}
	}
}
