package htmlpdf

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/alnah/htmlpdf/internal/cdp"
	"github.com/alnah/htmlpdf/internal/fileutil"
	"github.com/alnah/htmlpdf/internal/hints"
	"github.com/alnah/htmlpdf/internal/logging"
	"github.com/alnah/htmlpdf/internal/pdfa"
)

// Renderer owns one browser process and a pool of DevTools sessions bound
// to it, and renders Requests into PDF bytes.
type Renderer struct {
	supervisor *cdp.Supervisor
	pdfaPool   *pdfa.Pool
	timeout    rendererConfig
	logger     *logging.Logger
	closed     bool
}

// New builds a Renderer, launching a browser process to back it.
func New(opts ...Option) (*Renderer, error) {
	cfg := defaultRendererConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Discard()
	}

	executable := cfg.chromeExecutable
	if executable == "" {
		var err error
		executable, err = cdp.DiscoverExecutable()
		if err != nil {
			return nil, fmt.Errorf("%w: %v%s", ErrBrowserUnavailable, err, hints.ForSpawnFailed())
		}
	}

	supervisor, err := cdp.NewSupervisor(cdp.SupervisorConfig{
		Launch: cdp.LaunchOptions{
			Executable:    executable,
			ExtraArgs:     cfg.chromeArgs,
			NoSandbox:     cfg.noSandbox,
			DiscardStderr: cfg.discardStderr,
			Logger:        logger,
		},
		Bootstrap: cdp.BootstrapConfig{
			Offline:                 cfg.offline,
			IgnoreCertificateErrors: cfg.ignoreCertificateErrors,
		},
		PoolSize:    cfg.poolSize,
		MaxUses:     cfg.maxSessionUses,
		OnDemand:    cfg.onDemand,
		InitTimeout: cfg.initTimeout,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrBrowserUnavailable, err, hints.ForSpawnFailed())
	}

	r := &Renderer{supervisor: supervisor, timeout: cfg, logger: logger}
	if cfg.pdfaEnabled {
		r.pdfaPool = pdfa.NewPool(cfg.pdfaWorkers, pdfa.NewConverter(cfg.pdfaBinary, logger))
	}
	return r, nil
}

// Render renders req and returns its PDF bytes. ctx bounds the whole
// operation, and the Renderer's render timeout (30s unless set with
// WithTimeout; zero disables it) is applied on top of ctx's own deadline,
// whichever is sooner.
func (r *Renderer) Render(ctx context.Context, req Request) (Result, error) {
	if r.closed {
		return Result{}, ErrClosed
	}
	if req.HTML == "" && req.URL == "" {
		return Result{}, fmt.Errorf("%w: HTML or URL is required", ErrInvalidInput)
	}
	if req.HTML != "" && req.URL != "" {
		return Result{}, fmt.Errorf("%w: HTML and URL are mutually exclusive", ErrInvalidInput)
	}
	if req.URL != "" && !fileutil.IsURL(req.URL) {
		return Result{}, fmt.Errorf("%w: URL must be http:// or https://, got %q", ErrInvalidInput, req.URL)
	}

	if r.timeout.renderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout.renderTimeout)
		defer cancel()
	}

	sess, err := r.supervisor.Pool().Checkout(ctx)
	if err != nil {
		if errors.Is(err, cdp.ErrPoolExhausted) {
			return Result{}, fmt.Errorf("%w%s", ErrPoolExhausted, hints.ForPoolExhausted())
		}
		return Result{}, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}
	defer r.supervisor.Pool().Checkin(sess)

	url := req.URL
	if url == "" {
		url = dataURL(req.HTML)
	}

	proto := cdp.NewPrintProtocol(url, req.Options)
	out, err := sess.RunSync(ctx, proto)
	if err != nil {
		if errors.Is(err, cdp.ErrTimeout) {
			return Result{}, fmt.Errorf("%w%s", ErrTimeout, hints.ForTimeout())
		}
		return Result{}, fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}
	if out.Err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRenderFailed, out.Err)
	}

	pdfBytes := out.Value.([]byte)

	if req.PDFA && r.pdfaPool != nil {
		converted, err := r.pdfaPool.Convert(ctx, pdfBytes)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v%s", ErrPDFAConversion, err, hints.ForPDFAConversionFailed())
		}
		pdfBytes = converted
	}

	return Result{PDF: pdfBytes}, nil
}

// Close stops the underlying browser process and any PDF/A worker pool.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.pdfaPool != nil {
		r.pdfaPool.Close()
	}
	if r.supervisor == nil {
		return nil
	}
	return r.supervisor.Close()
}

func dataURL(html string) string {
	return "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}
