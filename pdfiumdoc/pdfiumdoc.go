// Package pdfiumdoc renders PDF pages through PDFium compiled to
// WebAssembly via go-pdfium. It needs no CGo and no system libraries,
// at the cost of slower decodes than the MuPDF backend.
//
// Each OpenSession call takes its own PDFium worker instance from the
// pool and opens the document independently: two sessions never share
// decoder state, matching the engine's foreground/background isolation.
package pdfiumdoc

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"

	"github.com/gogpu/docview"
)

// instanceTimeout bounds how long OpenSession waits for a free PDFium
// worker.
const instanceTimeout = 30 * time.Second

// Source opens PDFium sessions over one document file.
//
// The WebAssembly pool is created lazily on first use and sized for the
// engine's two sessions. Call Close when the document is no longer
// needed to release the pool.
type Source struct {
	// Path is the PDF file to open.
	Path string

	once    sync.Once
	pool    pdfium.Pool
	poolErr error
	data    []byte
}

var (
	_ docview.Source       = (*Source)(nil)
	_ docview.RGBARenderer = (*session)(nil)
)

func (s *Source) init() {
	s.once.Do(func() {
		s.data, s.poolErr = os.ReadFile(s.Path)
		if s.poolErr != nil {
			return
		}
		// Two workers: one foreground session, one background.
		s.pool, s.poolErr = webassembly.Init(webassembly.Config{
			MinIdle:  1,
			MaxIdle:  2,
			MaxTotal: 2,
		})
	})
}

// OpenSession takes a PDFium worker from the pool and opens the
// document on it.
func (s *Source) OpenSession() (docview.Document, error) {
	s.init()
	if s.poolErr != nil {
		return nil, fmt.Errorf("pdfiumdoc: init: %w", s.poolErr)
	}

	instance, err := s.pool.GetInstance(instanceTimeout)
	if err != nil {
		return nil, fmt.Errorf("pdfiumdoc: acquire instance: %w", err)
	}

	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &s.data})
	if err != nil {
		_ = instance.Close()
		return nil, fmt.Errorf("pdfiumdoc: open %s: %w", s.Path, err)
	}

	pages, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		_, _ = instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		_ = instance.Close()
		return nil, fmt.Errorf("pdfiumdoc: page count: %w", err)
	}

	docview.Logger().Debug("pdfiumdoc: session opened", "path", s.Path, "pages", pages.PageCount)
	return &session{instance: instance, doc: doc.Document, pages: pages.PageCount}, nil
}

// Close releases the WebAssembly pool. Sessions must be closed first.
func (s *Source) Close() error {
	if s.pool != nil {
		return s.pool.Close()
	}
	return nil
}

// session is one PDFium worker with the document open on it.
type session struct {
	instance pdfium.Pdfium
	doc      references.FPDF_DOCUMENT
	pages    int
}

func (s *session) PageCount() int {
	return s.pages
}

func (s *session) PageSize(page int) (float64, float64, error) {
	size, err := s.instance.GetPageSize(&requests.GetPageSize{
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{Document: s.doc, Index: page},
		},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("pdfiumdoc: page %d size: %w", page, err)
	}
	return size.Width, size.Height, nil
}

func (s *session) RenderPage(page int, scale float64) ([]byte, int, int, error) {
	r, err := s.renderRGBA(page, scale)
	if err != nil {
		return nil, 0, 0, err
	}

	w, h := r.Width(), r.Height()
	data := r.Data()
	rgb := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		rgb[i*3+0] = data[i*4+0]
		rgb[i*3+1] = data[i*4+1]
		rgb[i*3+2] = data[i*4+2]
	}
	return rgb, w, h, nil
}

// RenderPageRGBA implements the docview.RGBARenderer capability.
func (s *session) RenderPageRGBA(page int, scale float64) (*docview.Raster, error) {
	return s.renderRGBA(page, scale)
}

func (s *session) renderRGBA(page int, scale float64) (*docview.Raster, error) {
	render, err := s.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: int(72 * scale),
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{Document: s.doc, Index: page},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pdfiumdoc: render page %d: %w", page, err)
	}
	defer render.Cleanup()

	return docview.FromImage(render.Result.Image), nil
}

func (s *session) Close() error {
	_, err := s.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: s.doc})
	closeErr := s.instance.Close()
	if err != nil {
		return fmt.Errorf("pdfiumdoc: close document: %w", err)
	}
	return closeErr
}
