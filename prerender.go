package docview

import (
	"sync/atomic"

	"github.com/gogpu/docview/pagecache"
)

// maxSanePageDimension bounds the validity probe: a page reporting
// native bounds past this many points is treated as corrupt rather
// than handed to the decoder.
const maxSanePageDimension = 20000

// prerenderTask is one background unit of work. Cancellation is
// cooperative: the worker checks the flag at each page boundary.
// Whoever requests cancellation must join before reusing the
// background session.
type prerenderTask struct {
	cancelled atomic.Bool
	done      chan struct{}
}

func newPrerenderTask() *prerenderTask {
	return &prerenderTask{done: make(chan struct{})}
}

// cancel requests cooperative cancellation.
func (t *prerenderTask) cancel() {
	t.cancelled.Store(true)
}

// join blocks until the worker goroutine has exited.
func (t *prerenderTask) join() {
	<-t.done
}

// active reports whether the worker is still running.
func (t *prerenderTask) active() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// PrerenderAdjacent schedules speculative rendering of the pages around
// the current one at the given zoom: next page, previous page, then
// next-plus-one, in that priority order. Pages already cached, out of
// range, or marked corrupt are skipped.
//
// Only one prerender task runs per engine; calling this while one is in
// flight cancels and joins it first. The call itself does not block on
// rendering.
func (e *Engine) PrerenderAdjacent(page, zoom int) {
	keys := make([]PageKey, 0, 3)
	for _, p := range []int{page + 1, page - 1, page + 2} {
		if p >= 0 && p < e.pageCount {
			keys = append(keys, PageKey{Page: p, Zoom: zoom})
		}
	}
	e.startPrerender(keys)
}

// PrerenderPage schedules a single background render of one key.
// The manager uses this to replace a stale preview with the exact
// buffer without blocking the frame.
func (e *Engine) PrerenderPage(page, zoom int) {
	if page < 0 || page >= e.pageCount {
		return
	}
	e.startPrerender([]PageKey{{Page: page, Zoom: zoom}})
}

// startPrerender replaces the in-flight task, if any, with a new one.
func (e *Engine) startPrerender(keys []PageKey) {
	if len(keys) == 0 || e.closed.Load() {
		return
	}

	e.taskMu.Lock()
	if e.task != nil {
		e.task.cancel()
		e.task.join()
	}
	t := newPrerenderTask()
	e.task = t
	e.taskMu.Unlock()

	go e.prerenderWorker(t, keys)
}

// CancelPrerendering cancels the in-flight prerender task, if any, and
// returns only after its goroutine has fully stopped. Page navigation,
// zoom input, and Close all route through here: stale read-ahead work
// is worthless once the anchor page or scale changes.
func (e *Engine) CancelPrerendering() {
	e.taskMu.Lock()
	t := e.task
	e.taskMu.Unlock()

	if t != nil {
		t.cancel()
		t.join()
	}
}

// IsPrerenderingActive reports whether a prerender task is running.
func (e *Engine) IsPrerenderingActive() bool {
	e.taskMu.Lock()
	t := e.task
	e.taskMu.Unlock()
	return t != nil && t.active()
}

// prerenderWorker renders each key on the background session. Failures
// are logged and the page is skipped; they never propagate to the UI
// and never mark the document invalid.
func (e *Engine) prerenderWorker(t *prerenderTask, keys []PageKey) {
	defer close(t.done)

	for _, key := range keys {
		if t.cancelled.Load() {
			Logger().Debug("docview: prerender cancelled", "page", key.Page)
			return
		}
		if e.skipped(key.Page) {
			continue
		}
		if _, ok := e.cache.Get(pagecache.Key(key)); ok {
			continue
		}

		r, err := e.prerenderOne(key)
		if err != nil {
			e.markSkip(key.Page)
			Logger().Warn("docview: prerender failed, page skipped for session",
				"page", key.Page, "zoom", key.Zoom, "error", err)
			continue
		}
		if r == nil {
			// Probe rejected the page.
			continue
		}

		// A cancel that arrived mid-decode means the anchor moved;
		// the buffer is still correct for its key, so keep it.
		e.cache.Set(pagecache.Key(key), r)
		Logger().Debug("docview: prerendered page",
			"page", key.Page, "zoom", key.Zoom,
			"width", r.Width(), "height", r.Height())
	}
}

// prerenderOne probes and renders a single key on the background
// session. A nil, nil return means the validity probe rejected the
// page without attempting a decode.
func (e *Engine) prerenderOne(key PageKey) (*Raster, error) {
	e.bgMu.Lock()
	defer e.bgMu.Unlock()

	// Independent validity probe before the decode, so a known-corrupt
	// page is not re-attempted over and over.
	w, h, err := e.bg.PageSize(key.Page)
	if err != nil {
		return nil, &RenderError{Page: key.Page, Err: err}
	}
	if w <= 0 || h <= 0 || w > maxSanePageDimension || h > maxSanePageDimension {
		e.markSkip(key.Page)
		Logger().Warn("docview: page failed bounds probe",
			"page", key.Page, "width", w, "height", h)
		return nil, nil
	}

	return renderOn(e.bg, e.bgRGBA, key.Page, key.Zoom, e.renderBudget)
}
