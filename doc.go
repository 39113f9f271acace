// Package docview provides the rendering core for a paginated document
// viewer: raster page rendering at arbitrary zoom, a bounded page cache,
// and a cancellable background prerenderer for adjacent pages.
//
// # Overview
//
// docview does not parse document formats itself. A page decoder (PDF,
// comic archive, image sequence) sits behind the Document interface and
// is asked for an opaque raster at a given scale. The engine decides when
// to ask, at what effective scale, and whether a cached or stale buffer
// can stand in for a fresh render.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/docview"
//	    "github.com/gogpu/docview/fitzdoc"
//	)
//
//	eng, err := docview.Open(fitzdoc.Source{Path: "manual.pdf"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	view := docview.NewViewport(eng)
//	mgr := docview.NewManager(eng, view)
//
//	frame, err := mgr.RenderFrame()
//	// frame.Raster is the pixel buffer for the current page.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Engine, Viewport, Manager, Raster, Document
//   - pagecache: bounded page cache with distance-based eviction
//   - Backends: fitzdoc (MuPDF), pdfiumdoc (PDFium), imagedoc (images)
//
// # Concurrency Model
//
// One UI goroutine owns Viewport and Manager and issues synchronous
// renders. At most one background goroutine per open engine performs
// speculative prerendering on an independent decoder session. The two
// sessions never share a lock, so a slow or corrupt background decode
// cannot stall the interactive path.
package docview

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
