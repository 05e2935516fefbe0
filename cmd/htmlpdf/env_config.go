package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/htmlpdf/internal/config"
)

// envConfig holds configuration from environment variables. Provides
// CI/CD-friendly overrides without requiring a YAML file.
type envConfig struct {
	ConfigPath string // HTMLPDF_CONFIG: config file path

	ChromeExecutable string // HTMLPDF_CHROME_EXECUTABLE: chrome/chromium binary path
	NoSandbox        bool   // HTMLPDF_NO_SANDBOX: disable the Chrome sandbox
	Offline          bool   // HTMLPDF_OFFLINE: put sessions into offline network mode

	PoolSize       int           // HTMLPDF_POOL_SIZE: sessions per renderer
	MaxSessionUses int           // HTMLPDF_MAX_SESSION_USES: uses before a session is recycled
	Workers        int           // HTMLPDF_WORKERS: parallel renderer processes
	InitTimeout    time.Duration // HTMLPDF_INIT_TIMEOUT: browser bootstrap timeout
	RenderTimeout  time.Duration // HTMLPDF_TIMEOUT: render timeout

	PDFAEnabled bool   // HTMLPDF_PDFA: enable PDF/A conversion
	PDFABinary  string // HTMLPDF_PDFA_BINARY: external PDF/A converter binary
	PDFAWorkers int    // HTMLPDF_PDFA_WORKERS: concurrent PDF/A conversions
}

// knownEnvVars lists valid HTMLPDF_* environment variables. Used to detect
// typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"HTMLPDF_CONFIG": true,

	"HTMLPDF_CHROME_EXECUTABLE": true,
	"HTMLPDF_NO_SANDBOX":        true,
	"HTMLPDF_OFFLINE":           true,

	"HTMLPDF_POOL_SIZE":        true,
	"HTMLPDF_MAX_SESSION_USES": true,
	"HTMLPDF_WORKERS":          true,
	"HTMLPDF_INIT_TIMEOUT":     true,
	"HTMLPDF_TIMEOUT":          true,

	"HTMLPDF_PDFA":         true,
	"HTMLPDF_PDFA_BINARY":  true,
	"HTMLPDF_PDFA_WORKERS": true,
}

// loadEnvConfig reads configuration from environment variables. Returns a
// struct with all recognized HTMLPDF_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:       os.Getenv("HTMLPDF_CONFIG"),
		ChromeExecutable: os.Getenv("HTMLPDF_CHROME_EXECUTABLE"),
		NoSandbox:        os.Getenv("HTMLPDF_NO_SANDBOX") == "1",
		Offline:          os.Getenv("HTMLPDF_OFFLINE") == "1",
		PDFAEnabled:      os.Getenv("HTMLPDF_PDFA") == "1",
		PDFABinary:       os.Getenv("HTMLPDF_PDFA_BINARY"),
	}

	if v := os.Getenv("HTMLPDF_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PoolSize = n
		}
	}
	if v := os.Getenv("HTMLPDF_MAX_SESSION_USES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxSessionUses = n
		}
	}
	if v := os.Getenv("HTMLPDF_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("HTMLPDF_PDFA_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PDFAWorkers = n
		}
	}
	if v := os.Getenv("HTMLPDF_INIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.InitTimeout = d
		}
	}
	if v := os.Getenv("HTMLPDF_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RenderTimeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized HTMLPDF_* variables.
// Helps catch typos like HTMLPDF_SANDBOX instead of HTMLPDF_NO_SANDBOX.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "HTMLPDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to cfg. The chrome
// executable and the PDF/A binary are filled in only when cfg leaves them
// empty, so a config-file value wins for those two. Every other variable
// that is set (a boolean set to "1", or a positive number or duration)
// overrides the config-file value. CLI flags are applied afterwards via
// mergeRenderFlags.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.ChromeExecutable != "" && cfg.Browser.Executable == "" {
		cfg.Browser.Executable = env.ChromeExecutable
	}
	if env.NoSandbox {
		cfg.Browser.NoSandbox = true
	}
	if env.Offline {
		cfg.Browser.Offline = true
	}

	if env.PoolSize > 0 {
		cfg.SessionPool.Size = env.PoolSize
	}
	if env.MaxSessionUses > 0 {
		cfg.SessionPool.MaxUses = env.MaxSessionUses
	}
	if env.InitTimeout > 0 {
		cfg.Timeout.Init = env.InitTimeout
	}
	if env.RenderTimeout > 0 {
		cfg.Timeout.Render = env.RenderTimeout
	}

	if env.PDFAEnabled {
		cfg.PDFA.Enabled = true
	}
	if env.PDFABinary != "" && cfg.PDFA.Binary == "" {
		cfg.PDFA.Binary = env.PDFABinary
	}
	if env.PDFAWorkers > 0 {
		cfg.PDFA.Workers = env.PDFAWorkers
	}
}
