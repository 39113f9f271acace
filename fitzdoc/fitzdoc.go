// Package fitzdoc renders PDF, EPUB, XPS and CBZ pages through MuPDF
// via go-fitz.
//
// Each OpenSession call creates its own fitz context. MuPDF contexts
// are not safe for concurrent use from two goroutines, which is exactly
// why the engine asks for two independent sessions instead of sharing
// one.
package fitzdoc

import (
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/gogpu/docview"
)

// Source opens MuPDF sessions over one document file.
type Source struct {
	// Path is the document file to open.
	Path string
}

var (
	_ docview.Source       = Source{}
	_ docview.RGBARenderer = (*session)(nil)
)

// OpenSession opens an independent MuPDF context over the file.
func (s Source) OpenSession() (docview.Document, error) {
	doc, err := fitz.New(s.Path)
	if err != nil {
		return nil, fmt.Errorf("fitzdoc: open %s: %w", s.Path, err)
	}
	docview.Logger().Debug("fitzdoc: session opened", "path", s.Path, "pages", doc.NumPage())
	return &session{doc: doc}, nil
}

// session is one MuPDF decoder session. Not safe for concurrent use;
// the engine serializes access per session.
type session struct {
	doc *fitz.Document
}

// fitzDPI is the DPI at which scale 1.0 maps one point to one pixel.
const fitzDPI = 72.0

func (s *session) PageCount() int {
	return s.doc.NumPage()
}

func (s *session) PageSize(page int) (float64, float64, error) {
	bounds, err := s.doc.Bound(page)
	if err != nil {
		return 0, 0, fmt.Errorf("fitzdoc: page %d bounds: %w", page, err)
	}
	return float64(bounds.Dx()), float64(bounds.Dy()), nil
}

func (s *session) RenderPage(page int, scale float64) ([]byte, int, int, error) {
	img, err := s.doc.ImageDPI(page, fitzDPI*scale)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("fitzdoc: render page %d: %w", page, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rgb := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			rgb[(y*w+x)*3+0] = row[x*4+0]
			rgb[(y*w+x)*3+1] = row[x*4+1]
			rgb[(y*w+x)*3+2] = row[x*4+2]
		}
	}
	return rgb, w, h, nil
}

// RenderPageRGBA implements the docview.RGBARenderer capability,
// skipping the RGB repacking MuPDF output would otherwise go through.
func (s *session) RenderPageRGBA(page int, scale float64) (*docview.Raster, error) {
	img, err := s.doc.ImageDPI(page, fitzDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("fitzdoc: render page %d: %w", page, err)
	}
	return docview.FromImage(img), nil
}

func (s *session) Close() error {
	return s.doc.Close()
}
