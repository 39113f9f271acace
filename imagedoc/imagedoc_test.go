package imagedoc

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/docview"
)

// writePage writes a solid-color PNG page into dir.
func writePage(t *testing.T, dir, name string, w, h int, c color.RGBA) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
}

func newTestSource(t *testing.T) Source {
	t.Helper()

	dir := t.TempDir()
	writePage(t, dir, "001.png", 40, 60, color.RGBA{R: 255, A: 255})
	writePage(t, dir, "002.png", 40, 60, color.RGBA{G: 255, A: 255})
	writePage(t, dir, "003.png", 80, 20, color.RGBA{B: 255, A: 255})
	// Non-page files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	return Source{Dir: dir}
}

func TestOpenSession(t *testing.T) {
	src := newTestSource(t)

	doc, err := src.OpenSession()
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 3 {
		t.Errorf("expected 3 pages, got %d", doc.PageCount())
	}
}

func TestOpenSessionEmptyDir(t *testing.T) {
	src := Source{Dir: t.TempDir()}
	if _, err := src.OpenSession(); err == nil {
		t.Error("expected error for a directory without pages")
	}
}

func TestPageSize(t *testing.T) {
	src := newTestSource(t)
	doc, err := src.OpenSession()
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	defer doc.Close()

	w, h, err := doc.PageSize(0)
	if err != nil {
		t.Fatalf("PageSize failed: %v", err)
	}
	if w != 40 || h != 60 {
		t.Errorf("expected 40x60, got %vx%v", w, h)
	}

	// Pages are in lexical filename order.
	w, h, err = doc.PageSize(2)
	if err != nil {
		t.Fatalf("PageSize failed: %v", err)
	}
	if w != 80 || h != 20 {
		t.Errorf("expected 80x20, got %vx%v", w, h)
	}
}

func TestRenderPageScales(t *testing.T) {
	src := newTestSource(t)
	doc, err := src.OpenSession()
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	defer doc.Close()

	rgb, w, h, err := doc.RenderPage(0, 2.0)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if w != 80 || h != 120 {
		t.Errorf("expected 80x120 at 2x, got %dx%d", w, h)
	}
	if len(rgb) != w*h*3 {
		t.Errorf("expected %d RGB bytes, got %d", w*h*3, len(rgb))
	}
	// Solid red page stays solid red through resampling.
	if rgb[0] != 255 || rgb[1] != 0 || rgb[2] != 0 {
		t.Errorf("unexpected first pixel (%d, %d, %d)", rgb[0], rgb[1], rgb[2])
	}
}

func TestRenderPageRGBA(t *testing.T) {
	src := newTestSource(t)
	doc, err := src.OpenSession()
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	defer doc.Close()

	rgba, ok := doc.(docview.RGBARenderer)
	if !ok {
		t.Fatal("expected session to implement RGBARenderer")
	}

	r, err := rgba.RenderPageRGBA(1, 0.5)
	if err != nil {
		t.Fatalf("RenderPageRGBA failed: %v", err)
	}
	if r.Width() != 20 || r.Height() != 30 {
		t.Errorf("expected 20x30 at 0.5x, got %dx%d", r.Width(), r.Height())
	}
}

func TestEngineIntegration(t *testing.T) {
	src := newTestSource(t)

	eng, err := docview.Open(src, docview.WithMaxRenderSize(512, 512))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer eng.Close()

	r, err := eng.RenderSync(0, 100)
	if err != nil {
		t.Fatalf("RenderSync failed: %v", err)
	}
	if r.Width() != 40 || r.Height() != 60 {
		t.Errorf("expected 40x60, got %dx%d", r.Width(), r.Height())
	}

	if _, ok := eng.Lookup(docview.PageKey{Page: 0, Zoom: 100}); !ok {
		t.Error("expected cache entry after render")
	}
}
