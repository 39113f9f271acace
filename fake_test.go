package docview

import (
	"errors"
	"math"
	"sync"
	"time"
)

// fakeDoc is an in-memory Document session producing deterministic
// gradient pixels, so render output can be compared byte for byte.
type fakeDoc struct {
	pages   int
	nativeW float64
	nativeH float64

	corrupt     map[int]bool  // pages whose decode fails
	badBounds   map[int]bool  // pages reporting insane bounds
	renderDelay time.Duration // simulated decode latency

	mu          sync.Mutex
	renderOrder []int // pages in the order they were rendered
	renderCount map[int]int
	closed      bool
}

func newFakeDoc(pages int) *fakeDoc {
	return &fakeDoc{
		pages:       pages,
		nativeW:     200,
		nativeH:     300,
		corrupt:     make(map[int]bool),
		badBounds:   make(map[int]bool),
		renderCount: make(map[int]int),
	}
}

func (d *fakeDoc) PageCount() int { return d.pages }

func (d *fakeDoc) PageSize(page int) (float64, float64, error) {
	if d.badBounds[page] {
		return -1, 1e9, nil
	}
	return d.nativeW, d.nativeH, nil
}

func (d *fakeDoc) RenderPage(page int, scale float64) ([]byte, int, int, error) {
	d.mu.Lock()
	d.renderOrder = append(d.renderOrder, page)
	d.renderCount[page]++
	d.mu.Unlock()

	if d.renderDelay > 0 {
		time.Sleep(d.renderDelay)
	}
	if d.corrupt[page] {
		return nil, 0, 0, errors.New("circular page reference")
	}

	w := int(math.Round(d.nativeW * scale))
	h := int(math.Round(d.nativeH * scale))
	pix := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			pix[i+0] = byte(x)
			pix[i+1] = byte(y)
			pix[i+2] = byte(page)
		}
	}
	return pix, w, h, nil
}

func (d *fakeDoc) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *fakeDoc) renders(page int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renderCount[page]
}

func (d *fakeDoc) order() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]int, len(d.renderOrder))
	copy(out, d.renderOrder)
	return out
}

// fakeRGBADoc additionally implements the RGBARenderer capability.
type fakeRGBADoc struct {
	*fakeDoc
	rgbaCalls int
}

func (d *fakeRGBADoc) RenderPageRGBA(page int, scale float64) (*Raster, error) {
	d.mu.Lock()
	d.rgbaCalls++
	d.mu.Unlock()

	pix, w, h, err := d.RenderPage(page, scale)
	if err != nil {
		return nil, err
	}
	return FromRGB(pix, w, h), nil
}

// fakeSource hands out fakeDoc sessions and remembers them, so tests
// can inspect the foreground (first) and background (second) session
// independently.
type fakeSource struct {
	pages int

	// configure applies per-session tweaks; index 0 is the
	// foreground session, 1 the background one.
	configure func(index int, d *fakeDoc)

	rgba bool // sessions implement RGBARenderer

	mu       sync.Mutex
	sessions []*fakeDoc
	failOpen error // second OpenSession fails with this when set
}

func (s *fakeSource) OpenSession() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failOpen != nil && len(s.sessions) == 1 {
		return nil, s.failOpen
	}

	d := newFakeDoc(s.pages)
	if s.configure != nil {
		s.configure(len(s.sessions), d)
	}
	s.sessions = append(s.sessions, d)

	if s.rgba {
		return &fakeRGBADoc{fakeDoc: d}, nil
	}
	return d, nil
}

func (s *fakeSource) fg() *fakeDoc { return s.session(0) }
func (s *fakeSource) bg() *fakeDoc { return s.session(1) }

func (s *fakeSource) session(i int) *fakeDoc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.sessions) {
		return nil
	}
	return s.sessions[i]
}

// waitPrerenderIdle blocks until the engine's prerender worker exits,
// or the timeout passes.
func waitPrerenderIdle(e *Engine, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !e.IsPrerenderingActive() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}
