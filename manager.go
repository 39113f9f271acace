package docview

import "time"

// DefaultPrerenderCooldown is the minimum interval between prerender
// trigger attempts, so an idle frame loop does not thrash the
// background session.
const DefaultPrerenderCooldown = 500 * time.Millisecond

// Frame is the buffer chosen for display on one frame.
type Frame struct {
	// Raster is the pixel buffer to present.
	Raster *Raster

	// Page and Zoom identify what the buffer shows. For a preview
	// frame, Zoom is the zoom the buffer was rendered at, which
	// differs from the viewport's current scale.
	Page int
	Zoom int

	// Preview is true when Raster is a stale buffer shown while the
	// exact render is still outstanding.
	Preview bool
}

// Manager reconciles, per frame, what buffer to display for the current
// page and scale without blocking the UI thread for longer than one
// synchronous render.
//
// Decision order: an exact cache hit wins; otherwise a stale buffer of
// the same page is shown as a preview during zoom debouncing, with the
// exact render requested in the background once the zoom settles; only
// when neither exists — a hard page change — does the manager block on
// a synchronous render.
//
// Manager is owned by the UI goroutine and is not safe for concurrent
// use.
type Manager struct {
	engine *Engine
	view   *Viewport

	page int // current page index

	// Last good buffer, kept for preview reuse.
	last     *Raster
	lastPage int
	lastZoom int
	hasLast  bool

	// Exact render already requested for this key; avoids re-kicking
	// the background task every frame.
	requested    PageKey
	hasRequested bool

	dragging      bool
	lastPrerender time.Time
	cooldown      time.Duration

	now func() time.Time // injectable for tests
}

// NewManager creates a manager starting at page 0.
func NewManager(e *Engine, v *Viewport) *Manager {
	return &Manager{
		engine:   e,
		view:     v,
		cooldown: DefaultPrerenderCooldown,
		now:      time.Now,
	}
}

// Page returns the current page index.
func (m *Manager) Page() int { return m.page }

// SetPage navigates to a page. An out-of-range index returns a
// *RangeError and leaves the current page unchanged. Navigation cancels
// any in-flight prerender: its anchor page is stale.
func (m *Manager) SetPage(page int) error {
	if err := m.engine.checkRange(page); err != nil {
		return err
	}
	m.engine.CancelPrerendering()
	m.page = page
	return m.view.UpdatePageDimensions(page)
}

// NextPage advances to the following page.
func (m *Manager) NextPage() error { return m.SetPage(m.page + 1) }

// PrevPage moves back one page.
func (m *Manager) PrevPage() error { return m.SetPage(m.page - 1) }

// SetDragging tells the manager whether the user is actively dragging.
// Prerendering is not triggered while a drag is in progress.
func (m *Manager) SetDragging(dragging bool) {
	m.dragging = dragging
}

// SetPrerenderCooldown overrides the minimum interval between prerender
// triggers. Durations <= 0 restore the default.
func (m *Manager) SetPrerenderCooldown(d time.Duration) {
	if d <= 0 {
		d = DefaultPrerenderCooldown
	}
	m.cooldown = d
}

// RenderFrame picks the buffer to display for the current page at the
// viewport's committed scale.
//
// A *RenderError from the synchronous path propagates to the caller,
// which should present it to the user; navigation state is left
// unchanged by a failed render.
func (m *Manager) RenderFrame() (Frame, error) {
	page := m.page
	zoom := m.view.Scale()
	key := PageKey{Page: page, Zoom: zoom}

	// 1. Exact cache hit: done. This also ends any preview state.
	if r, ok := m.engine.Lookup(key); ok {
		m.storeLast(r, page, zoom)
		m.maybePrerender(page, zoom)
		return Frame{Raster: r, Page: page, Zoom: zoom, Preview: false}, nil
	}

	// 2. Stale buffer of the same page: show it as a preview rather
	// than blocking mid-zoom. Once the debounce settles, request the
	// exact render in the background; the following frames hit the
	// cache.
	if m.hasLast && m.lastPage == page && m.lastZoom != zoom {
		if !m.view.IsZoomDebouncing() {
			m.requestExact(key)
		}
		return m.previewFrame(page), nil
	}

	// 3. Hard page change: nothing usable on screen, block for one
	// synchronous render. This is the unavoidable latency floor.
	r, err := m.engine.RenderSync(page, zoom)
	if err != nil {
		return Frame{}, err
	}
	m.storeLast(r, page, zoom)
	m.maybePrerender(page, zoom)
	return Frame{Raster: r, Page: page, Zoom: zoom, Preview: false}, nil
}

// previewFrame sizes the last good buffer to the current effective page
// dimensions and flags it as stale.
func (m *Manager) previewFrame(page int) Frame {
	r := m.last
	if w, h := m.view.PageSize(); w > 0 && h > 0 {
		r = r.Scaled(w, h)
	}
	return Frame{Raster: r, Page: page, Zoom: m.lastZoom, Preview: true}
}

// requestExact kicks one background render of the exact key, at most
// once per key and only while the background session is free.
func (m *Manager) requestExact(key PageKey) {
	if m.hasRequested && m.requested == key {
		return
	}
	if m.engine.IsPrerenderingActive() {
		return
	}
	m.engine.PrerenderPage(key.Page, key.Zoom)
	m.requested = key
	m.hasRequested = true
}

// storeLast records the buffer shown this frame for future preview
// reuse and resets the exact-render bookkeeping.
func (m *Manager) storeLast(r *Raster, page, zoom int) {
	m.last = r
	m.lastPage = page
	m.lastZoom = zoom
	m.hasLast = true
	m.hasRequested = false
}

// maybePrerender triggers adjacent-page prerendering when the system is
// idle: no zoom debouncing, no drag, cooldown expired, and the
// background session free.
func (m *Manager) maybePrerender(page, zoom int) {
	if m.view.IsZoomDebouncing() || m.view.ZoomInProgress() || m.dragging {
		return
	}
	if m.now().Sub(m.lastPrerender) < m.cooldown {
		return
	}
	if m.engine.IsPrerenderingActive() {
		return
	}
	m.engine.PrerenderAdjacent(page, zoom)
	m.lastPrerender = m.now()
}
