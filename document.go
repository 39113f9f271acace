package docview

// Document is a single decoder session over an open document. A session
// owns its parsing-library state exclusively: it is not safe for
// concurrent use from two goroutines, which is why the engine opens two
// independent sessions (see Source).
//
// Page indices are zero-based. Scale 1.0 is the native page size.
type Document interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageSize returns the native page bounds in points at scale 1.0.
	PageSize(page int) (w, h float64, err error)

	// RenderPage decodes and rasterizes a page at the given scale,
	// returning packed 24-bit RGB pixels (3 bytes per pixel) and the
	// actual output dimensions. Output dimensions follow from the
	// scale transform, not from any requested size.
	RenderPage(page int, scale float64) (rgb []byte, w, h int, err error)

	// Close releases the session. The engine closes both of its
	// sessions together at document-close time.
	Close() error
}

// RGBARenderer is an optional capability a Document session may
// implement to produce packed 32-bit RGBA output directly, skipping the
// per-frame RGB-to-RGBA conversion. The engine queries for it once per
// open, never per frame.
type RGBARenderer interface {
	RenderPageRGBA(page int, scale float64) (*Raster, error)
}

// Source opens decoder sessions against one underlying document.
//
// The engine calls OpenSession exactly twice: once for the foreground
// (synchronous) session and once for the background (prerender) session.
// Opening two sessions over the same file is a deliberate isolation
// boundary, not an oversight: parsing libraries are not proven safe for
// concurrent use of one context from two goroutines, and a corrupt or
// slow background decode must never stall the interactive path. Do not
// collapse this into a single shared session.
type Source interface {
	OpenSession() (Document, error)
}

// PageKey identifies a cached render: a page index plus the exact zoom
// percent it was rendered at. Two keys are equal iff both fields are
// equal; there is no fuzzy matching across nearby zoom levels.
type PageKey struct {
	Page int // page index, >= 0
	Zoom int // zoom percent
}
