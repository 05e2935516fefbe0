// Package htmlpdf renders HTML documents to PDF (and optionally PDF/A) using
// a pool of headless Chromium sessions driven directly over the Chrome
// DevTools Protocol.
//
// # Quick Start
//
// Create a Renderer, render HTML, and close when done:
//
//	r, err := htmlpdf.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	result, err := r.Render(ctx, htmlpdf.Request{
//	    HTML: "<h1>Hello</h1>",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", result.PDF, 0644)
//
// # Architecture
//
// A Renderer owns one browser process, one Connection multiplexing its
// DevTools pipe, and a fixed-size pool of Sessions, each bound to its own
// browser context and target:
//
//  1. Session checkout from the pool (non-queueing beyond ctx's deadline)
//  2. Bootstrap protocol (create context, create target, attach) on first use
//  3. Print protocol: navigate, wait for the frame to settle, Page.printToPDF
//  4. Optional PDF/A conversion via an external converter subprocess
//  5. Session checkin, or retirement once its use budget is exhausted
//
// See internal/cdp for the protocol engine and supervision tree, and
// internal/pdfa for the PDF/A conversion collaborator.
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r, err := htmlpdf.New(
//	    htmlpdf.WithTimeout(30*time.Second),
//	    htmlpdf.WithPoolSize(4),
//	    htmlpdf.WithChromeExecutable("/usr/bin/chromium"),
//	)
//
// Per-render options are passed via Request:
//
//	result, err := r.Render(ctx, htmlpdf.Request{
//	    HTML:    content,
//	    Options: htmlpdf.PrintOptions{Landscape: true},
//	    PDFA:    true,
//	})
//
// HTML is rendered via a data: URL, which has no location for the browser
// to resolve relative asset paths against. Documents with relative images,
// stylesheets, or fonts should either inline those assets or be served via
// Request.URL instead, so Chrome fetches them relative to a real origin.
//
// # Parallel Processing
//
// For higher throughput than one Renderer's pool provides, use Group to
// spread renders across several independently supervised Renderers; each
// Render runs on whichever Renderer is free:
//
//	g := htmlpdf.NewGroup(3, htmlpdf.WithPoolSize(2))
//	defer g.Close()
//
//	result, err := g.Render(ctx, req)
//
// # Browser Requirements
//
// Rendering requires a Chromium/Chrome binary reachable either via
// WithChromeExecutable or discovery on PATH. For containers, set
// WithNoSandbox(true). This package reads no environment variables; the
// htmlpdf command maps HTMLPDF_CHROME_EXECUTABLE and HTMLPDF_NO_SANDBOX onto
// these options.
package htmlpdf
