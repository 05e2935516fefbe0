package htmlpdf

import (
	"time"

	"github.com/alnah/htmlpdf/internal/logging"
)

type rendererConfig struct {
	poolSize                int
	maxSessionUses          int
	onDemand                bool
	chromeExecutable        string
	chromeArgs              []string
	noSandbox               bool
	discardStderr           bool
	offline                 bool
	ignoreCertificateErrors bool
	initTimeout             time.Duration
	renderTimeout           time.Duration
	logger                  *logging.Logger
	pdfaEnabled             bool
	pdfaBinary              string
	pdfaWorkers             int
}

func defaultRendererConfig() rendererConfig {
	return rendererConfig{
		poolSize:       4,
		maxSessionUses: 100,
		initTimeout:    30 * time.Second,
		renderTimeout:  30 * time.Second,
		pdfaWorkers:    2,
	}
}

// Option customizes a Renderer built with New.
type Option func(*rendererConfig)

// WithPoolSize sets how many concurrent browser sessions a Renderer keeps
// checked out.
func WithPoolSize(n int) Option {
	return func(c *rendererConfig) { c.poolSize = n }
}

// WithMaxSessionUses sets how many print protocols a session runs before
// it is retired and replaced. Zero means unlimited.
func WithMaxSessionUses(n int) Option {
	return func(c *rendererConfig) { c.maxSessionUses = n }
}

// WithOnDemand switches the pool to spawn one fresh session per render
// rather than reusing a fixed pool, trading throughput for isolation.
func WithOnDemand(enabled bool) Option {
	return func(c *rendererConfig) { c.onDemand = enabled }
}

// WithChromeExecutable pins the Chrome/Chromium binary to use, skipping
// discovery.
func WithChromeExecutable(path string) Option {
	return func(c *rendererConfig) { c.chromeExecutable = path }
}

// WithChromeArgs appends extra flags to the Chrome launch command line.
func WithChromeArgs(args ...string) Option {
	return func(c *rendererConfig) { c.chromeArgs = append(c.chromeArgs, args...) }
}

// WithNoSandbox disables Chrome's sandbox, required in most containers.
func WithNoSandbox(enabled bool) Option {
	return func(c *rendererConfig) { c.noSandbox = enabled }
}

// WithDiscardStderr silences the browser subprocess's stderr instead of
// forwarding it through the logger.
func WithDiscardStderr(enabled bool) Option {
	return func(c *rendererConfig) { c.discardStderr = enabled }
}

// WithOffline puts every session's target into offline network mode,
// useful for rendering documents that must not fetch remote resources.
func WithOffline(enabled bool) Option {
	return func(c *rendererConfig) { c.offline = enabled }
}

// WithIgnoreCertificateErrors disables TLS certificate validation for
// navigations, useful against internal services with self-signed certs.
func WithIgnoreCertificateErrors(enabled bool) Option {
	return func(c *rendererConfig) { c.ignoreCertificateErrors = enabled }
}

// WithInitTimeout bounds how long a session's bootstrap protocol may take.
func WithInitTimeout(d time.Duration) Option {
	return func(c *rendererConfig) { c.initTimeout = d }
}

// WithTimeout bounds how long a single Render call may take.
func WithTimeout(d time.Duration) Option {
	return func(c *rendererConfig) { c.renderTimeout = d }
}

// WithLogger injects a structured logger. Defaults to a discarding logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *rendererConfig) { c.logger = l }
}

// WithPDFA enables PDF/A conversion via the given external converter
// binary, run through a pool of at most workers concurrent conversions.
func WithPDFA(binary string, workers int) Option {
	return func(c *rendererConfig) {
		c.pdfaEnabled = true
		c.pdfaBinary = binary
		c.pdfaWorkers = workers
	}
}
