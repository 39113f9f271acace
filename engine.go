package docview

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gogpu/docview/pagecache"
)

// Engine renders document pages to rasters, honoring a maximum
// render-buffer budget, caching output by (page, zoom), and running a
// cancellable background prerenderer for adjacent pages.
//
// The engine owns two independent decoder sessions opened from the same
// Source: the foreground session serves synchronous renders, the
// background session serves prerendering. Each session has its own
// lock and the two locks are never held together, so a slow or corrupt
// background decode cannot stall the interactive path.
//
// Thread safety: Engine is safe for concurrent use, but the intended
// model is one UI goroutine issuing synchronous calls plus the engine's
// own prerender goroutine.
type Engine struct {
	// Foreground session: all synchronous rendering.
	fgMu   sync.Mutex
	fg     Document
	fgRGBA RGBARenderer // non-nil if fg implements the capability

	// Background session: all prerendering. Independently opened
	// against the same source; see Source for why this duplication
	// is deliberate.
	bgMu   sync.Mutex
	bg     Document
	bgRGBA RGBARenderer

	pageCount int

	// Render budget, guarded separately so the prerender goroutine
	// can read it without touching a session lock.
	cfgMu     sync.Mutex
	maxWidth  int
	maxHeight int

	cache *pagecache.Cache[*Raster]

	// Pages that failed a render or probe. Prerendering skips them
	// for the rest of the session; synchronous renders still try.
	skipMu sync.Mutex
	skip   map[int]struct{}

	// At most one prerender task in flight. Guards the handoff only;
	// the worker itself runs outside this lock.
	taskMu sync.Mutex
	task   *prerenderTask

	closed atomic.Bool
}

// Open opens both decoder sessions against src and returns a ready
// engine. On failure the error is a *ResourceError and no sessions are
// left open.
func Open(src Source, opts ...Option) (*Engine, error) {
	options := defaultEngineOptions()
	for _, opt := range opts {
		opt(&options)
	}

	fg, err := src.OpenSession()
	if err != nil {
		return nil, &ResourceError{Op: "open foreground session", Err: err}
	}
	bg, err := src.OpenSession()
	if err != nil {
		_ = fg.Close()
		return nil, &ResourceError{Op: "open background session", Err: err}
	}

	e := &Engine{
		fg:        fg,
		bg:        bg,
		pageCount: fg.PageCount(),
		maxWidth:  options.maxWidth,
		maxHeight: options.maxHeight,
		cache:     pagecache.New[*Raster](options.cacheCapacity),
		skip:      make(map[int]struct{}),
	}

	// Capability query happens once per open, never per frame.
	e.fgRGBA, _ = fg.(RGBARenderer)
	e.bgRGBA, _ = bg.(RGBARenderer)

	Logger().Info("docview: sessions opened",
		"pages", e.pageCount,
		"maxWidth", e.maxWidth,
		"maxHeight", e.maxHeight)
	return e, nil
}

// PageCount returns the number of pages in the open document.
func (e *Engine) PageCount() int {
	return e.pageCount
}

// SetMaxRenderSize changes the render-buffer budget. Cached entries
// rendered under the old budget stay valid; they were correct for the
// zoom they were rendered at.
func (e *Engine) SetMaxRenderSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.cfgMu.Lock()
	e.maxWidth = width
	e.maxHeight = height
	e.cfgMu.Unlock()
}

// renderBudget returns the current render-buffer budget.
func (e *Engine) renderBudget() (int, int) {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	return e.maxWidth, e.maxHeight
}

// checkRange validates a page index against the open document.
func (e *Engine) checkRange(page int) error {
	if page < 0 || page >= e.pageCount {
		return &RangeError{Page: page, Count: e.pageCount}
	}
	return nil
}

// NativePageSize returns the page bounds in points at scale 1.0.
func (e *Engine) NativePageSize(page int) (w, h float64, err error) {
	if err := e.checkRange(page); err != nil {
		return 0, 0, err
	}
	e.fgMu.Lock()
	defer e.fgMu.Unlock()
	return e.fg.PageSize(page)
}

// PageDimensions returns the effective output size for a page at a
// zoom percent: post-downsample, as the decoder will produce it. The
// viewport uses this for layout and scroll clamping.
func (e *Engine) PageDimensions(page, zoom int) (w, h int, err error) {
	if err := e.checkRange(page); err != nil {
		return 0, 0, err
	}

	e.fgMu.Lock()
	nativeW, nativeH, err := e.fg.PageSize(page)
	e.fgMu.Unlock()
	if err != nil {
		return 0, 0, &RenderError{Page: page, Err: err}
	}

	maxW, maxH := e.renderBudget()
	tr := computeTransform(nativeW, nativeH, zoom, maxW, maxH)
	return tr.width, tr.height, nil
}

// Lookup returns the cached raster for a key, if present. It never
// renders and has no side effects beyond cache bookkeeping.
func (e *Engine) Lookup(key PageKey) (*Raster, bool) {
	return e.cache.Get(pagecache.Key(key))
}

// RenderSync renders a page at a zoom percent on the foreground
// session, blocking until the raster is ready. On a cache hit it
// returns immediately. On a miss the raster is inserted into the cache
// only after the full decode succeeds; a failed render inserts nothing.
//
// Errors: *RangeError for an invalid page index (checked before any
// decode), *RenderError for decode or scale failures.
func (e *Engine) RenderSync(page, zoom int) (*Raster, error) {
	if err := e.checkRange(page); err != nil {
		return nil, err
	}

	key := pagecache.Key{Page: page, Zoom: zoom}
	if r, ok := e.cache.Get(key); ok {
		return r, nil
	}

	e.fgMu.Lock()
	r, err := renderOn(e.fg, e.fgRGBA, page, zoom, e.renderBudget)
	e.fgMu.Unlock()
	if err != nil {
		return nil, err
	}

	e.cache.Set(key, r)
	e.cache.SetAnchor(page)
	Logger().Debug("docview: rendered page",
		"page", page, "zoom", zoom,
		"width", r.Width(), "height", r.Height())
	return r, nil
}

// renderOn performs one decode on the given session. The caller must
// hold the session's lock. budget is deferred to a callback so the
// render uses the budget in effect at decode time.
func renderOn(doc Document, rgba RGBARenderer, page, zoom int, budget func() (int, int)) (*Raster, error) {
	nativeW, nativeH, err := doc.PageSize(page)
	if err != nil {
		return nil, &RenderError{Page: page, Err: err}
	}

	maxW, maxH := budget()
	tr := computeTransform(nativeW, nativeH, zoom, maxW, maxH)

	if rgba != nil {
		r, err := rgba.RenderPageRGBA(page, tr.scale)
		if err != nil {
			return nil, &RenderError{Page: page, Err: err}
		}
		return r, nil
	}

	pix, w, h, err := doc.RenderPage(page, tr.scale)
	if err != nil {
		return nil, &RenderError{Page: page, Err: err}
	}
	if len(pix) < w*h*3 {
		return nil, &RenderError{Page: page, Err: errors.New("decoder returned short pixel buffer")}
	}
	return FromRGB(pix, w, h), nil
}

// ClearCache drops every cached raster.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// CacheStats returns cache statistics for diagnostics.
func (e *Engine) CacheStats() pagecache.Stats {
	return e.cache.Stats()
}

// markSkip records a page the background path must not retry this
// session.
func (e *Engine) markSkip(page int) {
	e.skipMu.Lock()
	e.skip[page] = struct{}{}
	e.skipMu.Unlock()
}

// skipped reports whether prerendering should avoid a page.
func (e *Engine) skipped(page int) bool {
	e.skipMu.Lock()
	_, ok := e.skip[page]
	e.skipMu.Unlock()
	return ok
}

// Close cancels any in-flight prerender, joins its goroutine, and
// closes both sessions. The engine is unusable afterwards.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	e.CancelPrerendering()

	e.fgMu.Lock()
	fgErr := e.fg.Close()
	e.fgMu.Unlock()

	e.bgMu.Lock()
	bgErr := e.bg.Close()
	e.bgMu.Unlock()

	e.cache.Clear()
	Logger().Info("docview: sessions closed")
	return errors.Join(fgErr, bgErr)
}
