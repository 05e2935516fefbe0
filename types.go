package htmlpdf

import "github.com/alnah/htmlpdf/internal/cdp"

// PrintOptions mirrors the Page.printToPDF parameters a caller can control.
type PrintOptions = cdp.PrintOptions

// Request is one document to render.
type Request struct {
	// HTML is rendered as-is via a data: URL. Mutually exclusive with URL.
	HTML string
	// URL is navigated to directly, letting the browser fetch its own
	// resources. Mutually exclusive with HTML.
	URL string
	// Options controls page layout, margins, and headers/footers.
	Options PrintOptions
	// PDFA requests PDF/A conversion of the result. Ignored if the
	// Renderer was not built with PDF/A enabled.
	PDFA bool
}

// Result is the outcome of a successful Render.
type Result struct {
	// PDF holds the rendered document bytes, PDF/A-converted if requested.
	PDF []byte
}
