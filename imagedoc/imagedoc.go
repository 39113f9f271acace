// Package imagedoc presents an ordered set of image files as document
// pages, the way comic-archive readers treat an unpacked CBZ/CBR
// directory. Scaling uses Lanczos resampling for readable downscaled
// line art.
package imagedoc

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/gogpu/docview"
)

// pageExtensions are the file types treated as pages.
var pageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// Source opens sessions over a directory of image files. Pages are the
// image files in lexical filename order.
type Source struct {
	// Dir is the directory holding one image per page.
	Dir string
}

var (
	_ docview.Source       = Source{}
	_ docview.RGBARenderer = (*session)(nil)
)

// OpenSession lists the directory and returns an independent session.
// Sessions share no decoder state: every render decodes from the file,
// so two sessions can run on separate goroutines.
func (s Source) OpenSession() (docview.Document, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("imagedoc: read %s: %w", s.Dir, err)
	}

	var pages []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			pages = append(pages, filepath.Join(s.Dir, entry.Name()))
		}
	}
	sort.Strings(pages)

	if len(pages) == 0 {
		return nil, fmt.Errorf("imagedoc: no page images in %s", s.Dir)
	}

	docview.Logger().Debug("imagedoc: session opened", "dir", s.Dir, "pages", len(pages))
	return &session{pages: pages, sizes: make([]image.Point, len(pages))}, nil
}

// session decodes pages on demand. Native size per page is probed once
// and memoized; pixel data is never retained between renders.
type session struct {
	pages []string
	sizes []image.Point // zero until probed
}

func (s *session) PageCount() int {
	return len(s.pages)
}

func (s *session) PageSize(page int) (float64, float64, error) {
	if s.sizes[page] == (image.Point{}) {
		f, err := os.Open(s.pages[page])
		if err != nil {
			return 0, 0, fmt.Errorf("imagedoc: open page %d: %w", page, err)
		}
		cfg, _, err := image.DecodeConfig(f)
		_ = f.Close()
		if err != nil {
			return 0, 0, fmt.Errorf("imagedoc: probe page %d: %w", page, err)
		}
		s.sizes[page] = image.Point{X: cfg.Width, Y: cfg.Height}
	}
	size := s.sizes[page]
	return float64(size.X), float64(size.Y), nil
}

func (s *session) RenderPage(page int, scale float64) ([]byte, int, int, error) {
	r, err := s.RenderPageRGBA(page, scale)
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
	img, err := imaging.Open(s.pages[page])
	if err != nil {
		return nil, fmt.Errorf("imagedoc: decode page %d: %w", page, err)
	}

	if scale != 1.0 {
		b := img.Bounds()
		w := int(math.Round(float64(b.Dx()) * scale))
		h := int(math.Round(float64(b.Dy()) * scale))
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	return docview.FromImage(img), nil
}

func (s *session) Close() error {
	return nil
}
