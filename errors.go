package htmlpdf

import "errors"

// Sentinel errors returned by Renderer and Group. Internal packages define
// their own sentinels and wrap them into these where they cross the facade
// boundary, so callers of this package only need errors.Is against this set.
var (
	// ErrInvalidInput is returned when a Request fails validation before any
	// browser work starts.
	ErrInvalidInput = errors.New("htmlpdf: invalid request")

	// ErrRenderFailed wraps a failure inside the render protocol itself
	// (navigation, printToPDF, or a malformed response).
	ErrRenderFailed = errors.New("htmlpdf: render failed")

	// ErrTimeout is returned when a render exceeds its configured deadline.
	ErrTimeout = errors.New("htmlpdf: render timed out")

	// ErrBrowserUnavailable is returned when the underlying browser process
	// could not be started or died and could not be restarted.
	ErrBrowserUnavailable = errors.New("htmlpdf: browser unavailable")

	// ErrPoolExhausted is returned by Render when no session became
	// available before the caller's context was done.
	ErrPoolExhausted = errors.New("htmlpdf: session pool exhausted")

	// ErrPDFAConversion is returned when PDF/A conversion is enabled and the
	// external converter fails.
	ErrPDFAConversion = errors.New("htmlpdf: pdf/a conversion failed")

	// ErrClosed is returned by any operation performed after Close.
	ErrClosed = errors.New("htmlpdf: renderer closed")
)
