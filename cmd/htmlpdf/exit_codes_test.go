package main

// Notes:
// - exitCodeFor: we test all sentinel errors from htmlpdf, cdp, pdfa, and
//   config packages, plus wrapped errors to verify the errors.Is() chain
//   works correctly.
// - Exit code constants: we verify Unix conventions (0=success, 1=general,
//   2=usage) and that custom codes stay below 126.
// These are acceptable gaps: we test observable behavior, not implementation
// details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/alnah/htmlpdf"
	"github.com/alnah/htmlpdf/internal/cdp"
	"github.com/alnah/htmlpdf/internal/config"
	"github.com/alnah/htmlpdf/internal/pdfa"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser unavailable", htmlpdf.ErrBrowserUnavailable, ExitBrowser},
		{"render failed", htmlpdf.ErrRenderFailed, ExitBrowser},
		{"timeout", htmlpdf.ErrTimeout, ExitBrowser},
		{"pool exhausted", htmlpdf.ErrPoolExhausted, ExitBrowser},
		{"pdfa conversion", htmlpdf.ErrPDFAConversion, ExitBrowser},
		{"cdp spawn failed", cdp.ErrSpawnFailed, ExitBrowser},
		{"cdp browser died", cdp.ErrBrowserDied, ExitBrowser},
		{"cdp protocol error", cdp.ErrProtocolError, ExitBrowser},
		{"pdfa conversion failed", pdfa.ErrConversionFailed, ExitBrowser},
		{"wrapped browser unavailable", fmt.Errorf("failed: %w", htmlpdf.ErrBrowserUnavailable), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read html", ErrReadHTML, ExitIO},
		{"write pdf", ErrWritePDF, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"invalid input", htmlpdf.ErrInvalidInput, ExitUsage},
		{"closed", htmlpdf.ErrClosed, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"invalid worker count", ErrInvalidWorkerCount, ExitUsage},
		{"unsupported shell", ErrUnsupportedShell, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"wrapped unknown", fmt.Errorf("context: %w", errors.New("unknown")), ExitGeneral},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := exitCodeFor(tt.err)
			if got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}

	if ExitIO >= 126 {
		t.Errorf("ExitIO = %d, should be < 126", ExitIO)
	}
	if ExitBrowser >= 126 {
		t.Errorf("ExitBrowser = %d, should be < 126", ExitBrowser)
	}
}
