package main

import (
	"errors"
	"os"

	"github.com/alnah/htmlpdf"
	"github.com/alnah/htmlpdf/internal/cdp"
	"github.com/alnah/htmlpdf/internal/config"
	"github.com/alnah/htmlpdf/internal/pdfa"
)

// Exit codes for the htmlpdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful render
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, htmlpdf.ErrBrowserUnavailable) ||
		errors.Is(err, htmlpdf.ErrRenderFailed) ||
		errors.Is(err, htmlpdf.ErrTimeout) ||
		errors.Is(err, htmlpdf.ErrPoolExhausted) ||
		errors.Is(err, htmlpdf.ErrPDFAConversion) ||
		errors.Is(err, cdp.ErrSpawnFailed) ||
		errors.Is(err, cdp.ErrBrowserDied) ||
		errors.Is(err, cdp.ErrProtocolError) ||
		errors.Is(err, pdfa.ErrConversionFailed) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadHTML) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, htmlpdf.ErrInvalidInput) ||
		errors.Is(err, htmlpdf.ErrClosed) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
