// Command docview renders one page of a paginated document to a PNG
// file, exercising the same engine a viewer UI would drive.
//
// Flag defaults can be placed in a .env file (DOCVIEW_BACKEND,
// DOCVIEW_MAX_WIDTH, DOCVIEW_MAX_HEIGHT).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/fitzdoc"
	"github.com/gogpu/docview/imagedoc"
	"github.com/gogpu/docview/pdfiumdoc"
)

func main() {
	// .env is optional; flags override it.
	_ = godotenv.Load()

	var (
		in       = pflag.StringP("in", "i", "", "input document (PDF file or image directory)")
		out      = pflag.StringP("out", "o", "page.png", "output PNG file")
		page     = pflag.IntP("page", "p", 0, "page index to render (zero-based)")
		zoom     = pflag.IntP("zoom", "z", 100, "zoom percent (10-350)")
		backend  = pflag.StringP("backend", "b", envOr("DOCVIEW_BACKEND", "fitz"), "decoder backend: fitz, pdfium or images")
		maxW     = pflag.Int("max-width", envIntOr("DOCVIEW_MAX_WIDTH", docview.DefaultMaxRenderWidth), "render budget width")
		maxH     = pflag.Int("max-height", envIntOr("DOCVIEW_MAX_HEIGHT", docview.DefaultMaxRenderHeight), "render budget height")
		readNext = pflag.Bool("prerender", false, "prerender adjacent pages before exiting (exercise the background path)")
		verbose  = pflag.BoolP("verbose", "v", false, "debug logging")
	)
	pflag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "docview: -in is required")
		pflag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	docview.SetLogger(logger)

	if err := run(*in, *out, *backend, *page, *zoom, *maxW, *maxH, *readNext); err != nil {
		logger.Error("docview failed", "error", err)
		os.Exit(1)
	}
}

func run(in, out, backend string, page, zoom, maxW, maxH int, prerender bool) error {
	var (
		src     docview.Source
		cleanup func() error
	)
	switch backend {
	case "fitz":
		src = fitzdoc.Source{Path: in}
	case "pdfium":
		ps := &pdfiumdoc.Source{Path: in}
		src = ps
		cleanup = ps.Close
	case "images":
		src = imagedoc.Source{Dir: in}
	default:
		return fmt.Errorf("unknown backend %q", backend)
	}

	eng, err := docview.Open(src, docview.WithMaxRenderSize(maxW, maxH))
	if err != nil {
		return err
	}
	defer eng.Close()
	if cleanup != nil {
		defer cleanup() //nolint:errcheck // pool shutdown on exit
	}

	r, err := eng.RenderSync(page, zoom)
	if err != nil {
		return err
	}

	if prerender {
		eng.PrerenderAdjacent(page, zoom)
		for eng.IsPrerenderingActive() {
			time.Sleep(10 * time.Millisecond)
		}
	}

	if err := r.SavePNG(out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	docview.Logger().Info("page rendered",
		"page", page, "zoom", zoom,
		"width", r.Width(), "height", r.Height(),
		"out", out,
		"cache", eng.CacheStats())
	return nil
}

// envOr returns an environment variable or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr returns an integer environment variable or a fallback.
func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
