// Package config loads and validates the YAML configuration for a Renderer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/htmlpdf/internal/fileutil"
	"github.com/alnah/htmlpdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// SessionPoolConfig controls the fixed-size session pool a Renderer keeps
// checked out against one browser process.
type SessionPoolConfig struct {
	Size          int  `yaml:"size"`
	MaxUses       int  `yaml:"maxUses"`
	OnDemand      bool `yaml:"onDemand"`
	DiscardStderr bool `yaml:"discardStderr"`
}

// BrowserConfig controls how the Chrome/Chromium subprocess is launched.
type BrowserConfig struct {
	Executable              string   `yaml:"executable"`
	Args                    []string `yaml:"args"`
	NoSandbox               bool     `yaml:"noSandbox"`
	Offline                 bool     `yaml:"offline"`
	IgnoreCertificateErrors bool     `yaml:"ignoreCertificateErrors"`
}

// TimeoutConfig controls how long the various phases are allowed to take.
type TimeoutConfig struct {
	Init   time.Duration `yaml:"init"`
	Render time.Duration `yaml:"render"`
}

// PDFAConfig controls optional PDF/A conversion.
type PDFAConfig struct {
	Enabled bool   `yaml:"enabled"`
	Binary  string `yaml:"binary"`
	Workers int    `yaml:"workers"`
}

// Config holds all configuration for a Renderer.
type Config struct {
	SessionPool SessionPoolConfig `yaml:"sessionPool"`
	Browser     BrowserConfig     `yaml:"browser"`
	Timeout     TimeoutConfig     `yaml:"timeout"`
	PDFA        PDFAConfig        `yaml:"pdfa"`
}

// DefaultConfig returns the configuration a Renderer uses when nothing else
// is specified.
func DefaultConfig() *Config {
	return &Config{
		SessionPool: SessionPoolConfig{
			Size:    4,
			MaxUses: 100,
		},
		Browser: BrowserConfig{},
		Timeout: TimeoutConfig{
			Init:   30 * time.Second,
			Render: 30 * time.Second,
		},
		PDFA: PDFAConfig{
			Workers: 2,
		},
	}
}

// Validate checks that field values are sane, catching config mistakes at
// load time instead of at first render.
func (c *Config) Validate() error {
	if c.SessionPool.Size < 1 {
		return fmt.Errorf("%w: sessionPool.size must be >= 1, got %d", ErrInvalidValue, c.SessionPool.Size)
	}
	if c.SessionPool.MaxUses < 0 {
		return fmt.Errorf("%w: sessionPool.maxUses must be >= 0, got %d", ErrInvalidValue, c.SessionPool.MaxUses)
	}
	if c.Timeout.Init < 0 {
		return fmt.Errorf("%w: timeout.init must be >= 0, got %s", ErrInvalidValue, c.Timeout.Init)
	}
	if c.Timeout.Render < 0 {
		return fmt.Errorf("%w: timeout.render must be >= 0, got %s", ErrInvalidValue, c.Timeout.Render)
	}
	if c.PDFA.Enabled && c.PDFA.Binary == "" {
		return fmt.Errorf("%w: pdfa.binary is required when pdfa.enabled is true", ErrInvalidValue)
	}
	if c.PDFA.Workers < 0 {
		return fmt.Errorf("%w: pdfa.workers must be >= 0, got %d", ErrInvalidValue, c.PDFA.Workers)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name. If
// nameOrPath contains a path separator it is treated as a file path;
// otherwise it is searched for in standard locations. Returns an error if
// the file is not found; there is no silent fallback to defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is caller-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard
// locations: the current directory, then ~/.config/htmlpdf/.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	tried := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		local := name + ext
		if fileutil.FileExists(local) {
			return local, nil
		}
		tried = append(tried, local)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			p := filepath.Join(userConfigDir, "htmlpdf", name+ext)
			if fileutil.FileExists(p) {
				return p, nil
			}
			tried = append(tried, p)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
