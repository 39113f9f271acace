package docview

import (
	"math"
	"time"
)

// FitMode selects how the page scale tracks the window.
type FitMode int

const (
	// FitNone leaves the scale under manual control.
	FitNone FitMode = iota

	// FitWindow scales the page so it fits entirely inside the window.
	FitWindow

	// FitWidth scales the page so its width matches the window width.
	FitWidth

	// FitHeight scales the page so its height matches the window height.
	FitHeight
)

// String returns the name of the fit mode.
func (m FitMode) String() string {
	switch m {
	case FitNone:
		return "none"
	case FitWindow:
		return "window"
	case FitWidth:
		return "width"
	case FitHeight:
		return "height"
	default:
		return "unknown"
	}
}

// Flip describes the mirror state consumed by the presentation layer.
type Flip struct {
	Horizontal bool
	Vertical   bool
}

// DefaultDebounceWindow is the default time after the last zoom input
// during which no commit occurs, so rapid inputs coalesce into one.
const DefaultDebounceWindow = 300 * time.Millisecond

// Viewport tracks zoom, scroll, rotation, mirror, and fit state for the
// page being displayed. It owns the zoom debounce state machine: zoom
// inputs accumulate into a pending delta, and the delta commits as one
// scale change once the debounce window has passed.
//
// pageWidth/pageHeight always reflect the effective render size —
// post-downsample, post-rotation — never the raw native page size.
//
// Viewport is owned by the UI goroutine and is not safe for concurrent
// use.
type Viewport struct {
	engine *Engine

	scrollX float64
	scrollY float64

	scale      int // committed zoom percent, 10..350
	pageWidth  int
	pageHeight int

	windowWidth  int
	windowHeight int

	rotation int // degrees, one of 0, 90, 180, 270
	mirrorH  bool
	mirrorV  bool
	fitMode  FitMode

	pendingZoom   int
	lastZoomInput time.Time
	debounce      time.Duration

	now func() time.Time // injectable for tests
}

// NewViewport creates a viewport at 100% zoom with no rotation.
func NewViewport(e *Engine) *Viewport {
	return &Viewport{
		engine:   e,
		scale:    100,
		fitMode:  FitNone,
		debounce: DefaultDebounceWindow,
		now:      time.Now,
	}
}

// Scale returns the committed zoom percent.
func (v *Viewport) Scale() int { return v.scale }

// PageSize returns the effective page dimensions: post-downsample,
// post-rotation.
func (v *Viewport) PageSize() (w, h int) { return v.pageWidth, v.pageHeight }

// Rotation returns the rotation in degrees (0, 90, 180 or 270).
func (v *Viewport) Rotation() int { return v.rotation }

// FitMode returns the active fit mode.
func (v *Viewport) FitMode() FitMode { return v.fitMode }

// Flip returns the mirror descriptor for the presentation layer.
func (v *Viewport) Flip() Flip {
	return Flip{Horizontal: v.mirrorH, Vertical: v.mirrorV}
}

// Scroll returns the scroll offset relative to the page center.
func (v *Viewport) Scroll() (x, y float64) { return v.scrollX, v.scrollY }

// SetWindowSize records the display window dimensions and re-clamps the
// scroll offset against them.
func (v *Viewport) SetWindowSize(w, h int) {
	v.windowWidth = w
	v.windowHeight = h
	v.clampScroll()
}

// SetDebounceWindow overrides the zoom debounce window.
// Durations <= 0 restore the default.
func (v *Viewport) SetDebounceWindow(d time.Duration) {
	if d <= 0 {
		d = DefaultDebounceWindow
	}
	v.debounce = d
}

// Zoom accumulates a zoom delta (in percent points) into the pending
// delta and restarts the debounce window. Any in-flight prerender is
// cancelled: its anchor scale is about to change.
func (v *Viewport) Zoom(delta int) {
	if delta == 0 {
		return
	}
	v.pendingZoom += delta
	v.lastZoomInput = v.now()
	v.fitMode = FitNone
	v.engine.CancelPrerendering()
}

// ZoomTo accumulates whatever delta reaches the given absolute scale
// once committed. The target is clamped to the valid zoom range.
func (v *Viewport) ZoomTo(scale int) {
	target := clampZoom(scale)
	delta := target - (v.scale + v.pendingZoom)
	v.Zoom(delta)
}

// IsZoomDebouncing reports whether a zoom delta is pending and the
// debounce window since the last input has not yet passed. Callers must
// not commit a zoom while this holds.
func (v *Viewport) IsZoomDebouncing() bool {
	return v.pendingZoom != 0 && v.now().Sub(v.lastZoomInput) < v.debounce
}

// ZoomInProgress reports whether a zoom delta is pending commit. The UI
// uses this as the "zoom processing" indicator.
func (v *Viewport) ZoomInProgress() bool {
	return v.pendingZoom != 0
}

// ApplyPendingZoom commits the accumulated zoom delta as a single scale
// change: the new scale is clamped to [MinZoomPercent, MaxZoomPercent],
// the effective page dimensions are recomputed, and the scroll offset
// is rescaled proportionally so the visual focal point is approximately
// preserved, then clamped to the new bounds.
//
// The pending delta is cleared whether or not the scale changed.
func (v *Viewport) ApplyPendingZoom(page int) error {
	if v.pendingZoom == 0 {
		return nil
	}

	newScale := clampZoom(v.scale + v.pendingZoom)
	v.pendingZoom = 0

	if newScale == v.scale {
		return nil
	}

	oldScale := v.scale
	v.scale = newScale
	if err := v.UpdatePageDimensions(page); err != nil {
		return err
	}

	ratio := float64(newScale) / float64(oldScale)
	v.scrollX *= ratio
	v.scrollY *= ratio
	v.clampScroll()

	Logger().Debug("docview: zoom committed", "from", oldScale, "to", newScale)
	return nil
}

// UpdatePageDimensions recomputes the effective page dimensions for the
// given page at the committed scale, applying the rotation swap, and
// re-clamps the scroll offset. Call after a page change or a render
// budget change.
func (v *Viewport) UpdatePageDimensions(page int) error {
	w, h, err := v.engine.PageDimensions(page, v.scale)
	if err != nil {
		return err
	}
	if v.rotationSwapsAxes() {
		w, h = h, w
	}
	v.pageWidth = w
	v.pageHeight = h
	v.clampScroll()
	return nil
}

// rotationSwapsAxes reports whether the current rotation exchanges the
// page's width and height.
func (v *Viewport) rotationSwapsAxes() bool {
	return v.rotation == 90 || v.rotation == 270
}

// fitScale computes the clamped scale percent that maps the native
// dimension onto the window dimension.
func fitScale(window int, native float64) int {
	if native <= 0 || window <= 0 {
		return 100
	}
	return clampZoom(int(math.Floor(float64(window) / native * 100)))
}

// rotatedNativeSize returns the native page bounds with the rotation
// swap applied.
func (v *Viewport) rotatedNativeSize(page int) (w, h float64, err error) {
	w, h, err = v.engine.NativePageSize(page)
	if err != nil {
		return 0, 0, err
	}
	if v.rotationSwapsAxes() {
		w, h = h, w
	}
	return w, h, nil
}

// FitPageToWindow sets the scale so the whole page fits inside the
// window, honoring rotation.
func (v *Viewport) FitPageToWindow(page int) error {
	w, h, err := v.rotatedNativeSize(page)
	if err != nil {
		return err
	}
	sw := fitScale(v.windowWidth, w)
	sh := fitScale(v.windowHeight, h)
	if sh < sw {
		sw = sh
	}
	return v.applyFit(page, sw, FitWindow)
}

// FitPageToWidth sets the scale so the page width matches the window
// width, honoring rotation.
func (v *Viewport) FitPageToWidth(page int) error {
	w, _, err := v.rotatedNativeSize(page)
	if err != nil {
		return err
	}
	return v.applyFit(page, fitScale(v.windowWidth, w), FitWidth)
}

// FitPageToHeight sets the scale so the page height matches the window
// height, honoring rotation.
func (v *Viewport) FitPageToHeight(page int) error {
	_, h, err := v.rotatedNativeSize(page)
	if err != nil {
		return err
	}
	return v.applyFit(page, fitScale(v.windowHeight, h), FitHeight)
}

// applyFit commits a fit-derived scale: pending zoom input is
// discarded, dimensions recomputed, scroll reset and clamped.
func (v *Viewport) applyFit(page, scale int, mode FitMode) error {
	v.pendingZoom = 0
	v.scale = scale
	v.fitMode = mode
	v.scrollX = 0
	v.scrollY = 0
	return v.UpdatePageDimensions(page)
}

// Rotate advances the rotation clockwise by 90 degrees, swapping the
// tracked page dimensions and re-clamping scroll.
func (v *Viewport) Rotate() {
	v.SetRotation(v.rotation + 90)
}

// SetRotation sets an absolute rotation. Values are normalized into
// {0, 90, 180, 270}; whenever the new rotation changes which axis is
// which, the tracked page dimensions swap.
func (v *Viewport) SetRotation(degrees int) {
	norm := ((degrees/90)%4 + 4) % 4 * 90

	swapped := v.rotationSwapsAxes()
	v.rotation = norm
	if swapped != v.rotationSwapsAxes() {
		v.pageWidth, v.pageHeight = v.pageHeight, v.pageWidth
	}
	v.clampScroll()
}

// ToggleMirrorHorizontal flips the page left-right.
func (v *Viewport) ToggleMirrorHorizontal() { v.mirrorH = !v.mirrorH }

// ToggleMirrorVertical flips the page top-bottom.
func (v *Viewport) ToggleMirrorVertical() { v.mirrorV = !v.mirrorV }

// SetScroll positions the scroll offset, clamped against the page and
// window bounds.
func (v *Viewport) SetScroll(x, y float64) {
	v.scrollX = x
	v.scrollY = y
	v.clampScroll()
}

// ScrollBy moves the scroll offset by a delta, clamped.
func (v *Viewport) ScrollBy(dx, dy float64) {
	v.SetScroll(v.scrollX+dx, v.scrollY+dy)
}

// MaxScroll returns the clamp bounds: scroll never exceeds half the
// overhang of the page beyond the window on each axis.
func (v *Viewport) MaxScroll() (x, y float64) {
	x = math.Max(0, float64(v.pageWidth-v.windowWidth)/2)
	y = math.Max(0, float64(v.pageHeight-v.windowHeight)/2)
	return x, y
}

// clampScroll enforces the scroll invariant after any operation that
// changes scale, rotation, page, or window size.
func (v *Viewport) clampScroll() {
	maxX, maxY := v.MaxScroll()
	v.scrollX = math.Max(-maxX, math.Min(maxX, v.scrollX))
	v.scrollY = math.Max(-maxY, math.Min(maxY, v.scrollY))
}
