package docview

import "fmt"

// RangeError reports a page index outside [0, PageCount).
// It is always detected before the decoder session is touched, so an
// out-of-range request never reaches the parsing library. Callers must
// not advance navigation state when they receive one.
type RangeError struct {
	Page  int // requested page index
	Count int // page count of the open document
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("docview: page %d out of range [0, %d)", e.Page, e.Count)
}

// RenderError reports a decode or scale failure for a specific page,
// including known corruption signatures such as circular page references.
// On the synchronous path it propagates to the caller; on the background
// path it is logged and the page is skipped for the rest of the session.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("docview: render page %d: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ResourceError reports a session or cache allocation failure. It is
// fatal to the render path: the caller should treat the document as
// unusable and close it.
type ResourceError struct {
	Op  string // operation that failed, e.g. "open session"
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("docview: %s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
