package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alnah/htmlpdf"
	"github.com/alnah/htmlpdf/internal/config"
	"github.com/alnah/htmlpdf/internal/logging"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadHTML           = errors.New("failed to read HTML file")
	ErrWritePDF           = errors.New("failed to write PDF file")
	ErrInvalidExtension   = errors.New("file must have .html or .htm extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// FileToRender represents a single local HTML file to process.
type FileToRender struct {
	InputPath  string
	OutputPath string
}

// RenderResult holds the outcome of a single render.
type RenderResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// runRender orchestrates the render process for one URL, one file, or a
// directory of HTML files. The renderer pool has already been built from a
// config resolved by resolveConfig.
func runRender(ctx context.Context, positionalArgs []string, flags *renderFlags, pool Pool, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	printOpts := buildPrintOptions(&flags.page)

	// Rendering a URL directly skips file discovery entirely: there is
	// exactly one request and no output-path convention to infer.
	if flags.url != "" {
		if _, err := url.ParseRequestURI(flags.url); err != nil {
			return fmt.Errorf("%w: invalid --url: %v", htmlpdf.ErrInvalidInput, err)
		}
		outPath := flags.output
		if outPath == "" {
			return fmt.Errorf("%w: --output is required when rendering a --url", ErrNoInput)
		}
		results := renderBatch(ctx, pool, []FileToRender{{InputPath: flags.url, OutputPath: outPath}}, printOpts, flags.pdfa.enabled, true)
		return finishRender(results, flags, env)
	}

	inputPath, err := resolveInputPath(positionalArgs)
	if err != nil {
		return err
	}

	files, err := discoverFiles(inputPath, flags.output)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no HTML files found in %s", inputPath)
	}

	results := renderBatch(ctx, pool, files, printOpts, flags.pdfa.enabled, false)
	return finishRender(results, flags, env)
}

func finishRender(results []RenderResult, flags *renderFlags, env *Environment) error {
	failedCount := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return fmt.Errorf("%d render(s) failed", failedCount)
	}
	return nil
}

// resolveInputPath returns the single positional argument as the input
// path, or an error if none was given.
func resolveInputPath(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: pass an HTML file, a directory, or --url", ErrNoInput)
	}
	return args[0], nil
}

// resolveConfig loads the base config (file if --config was given,
// defaults otherwise), layers environment variable overrides on top, then
// CLI flag overrides, which win.
func resolveConfig(flags *renderFlags, env *Environment) (*config.Config, error) {
	cfg := env.Config
	if flags.common.config != "" {
		loaded, err := config.LoadConfig(flags.common.config)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(loadEnvConfig(), cfg)
	mergeRenderFlags(flags, cfg)
	return cfg, nil
}

// mergeRenderFlags merges CLI flags into cfg. CLI values override config
// and environment values.
func mergeRenderFlags(flags *renderFlags, cfg *config.Config) {
	if flags.poolSize > 0 {
		cfg.SessionPool.Size = flags.poolSize
	}
	if flags.browser.executable != "" {
		cfg.Browser.Executable = flags.browser.executable
	}
	if len(flags.browser.extraArgs) > 0 {
		cfg.Browser.Args = append(cfg.Browser.Args, flags.browser.extraArgs...)
	}
	if flags.browser.noSandbox {
		cfg.Browser.NoSandbox = true
	}
	if flags.browser.offline {
		cfg.Browser.Offline = true
	}
	if flags.browser.ignoreCerts {
		cfg.Browser.IgnoreCertificateErrors = true
	}
	if flags.initTimeout != "" {
		if d, err := time.ParseDuration(flags.initTimeout); err == nil {
			cfg.Timeout.Init = d
		}
	}
	if flags.timeout != "" {
		if d, err := time.ParseDuration(flags.timeout); err == nil {
			cfg.Timeout.Render = d
		}
	}
	if flags.pdfa.enabled {
		cfg.PDFA.Enabled = true
	}
	if flags.pdfa.binary != "" {
		cfg.PDFA.Binary = flags.pdfa.binary
	}
	if flags.pdfa.workers > 0 {
		cfg.PDFA.Workers = flags.pdfa.workers
	}
}

// buildRendererOptions turns cfg into the Options New needs to build a
// Renderer, injecting a logger when verbose output was requested.
func buildRendererOptions(cfg *config.Config, verbose bool, env *Environment) []htmlpdf.Option {
	opts := []htmlpdf.Option{
		htmlpdf.WithPoolSize(cfg.SessionPool.Size),
		htmlpdf.WithMaxSessionUses(cfg.SessionPool.MaxUses),
		htmlpdf.WithOnDemand(cfg.SessionPool.OnDemand),
		htmlpdf.WithChromeExecutable(cfg.Browser.Executable),
		htmlpdf.WithChromeArgs(cfg.Browser.Args...),
		htmlpdf.WithNoSandbox(cfg.Browser.NoSandbox),
		htmlpdf.WithDiscardStderr(cfg.SessionPool.DiscardStderr),
		htmlpdf.WithOffline(cfg.Browser.Offline),
		htmlpdf.WithIgnoreCertificateErrors(cfg.Browser.IgnoreCertificateErrors),
		htmlpdf.WithInitTimeout(cfg.Timeout.Init),
		htmlpdf.WithTimeout(cfg.Timeout.Render),
	}
	if cfg.PDFA.Enabled {
		opts = append(opts, htmlpdf.WithPDFA(cfg.PDFA.Binary, cfg.PDFA.Workers))
	}
	if verbose {
		opts = append(opts, htmlpdf.WithLogger(logging.New(logging.Config{
			Level:  logging.LevelDebug,
			Output: env.Stderr,
		})))
	}
	return opts
}

// buildPrintOptions turns page flags into the Page.printToPDF parameters
// shared by every file in a render.
func buildPrintOptions(f *pageFlags) htmlpdf.PrintOptions {
	return htmlpdf.PrintOptions{
		Landscape:           f.landscape,
		PrintBackground:     f.printBackground,
		PaperWidth:          f.paperWidth,
		PaperHeight:         f.paperHeight,
		MarginTop:           f.marginTop,
		MarginBottom:        f.marginBottom,
		MarginLeft:          f.marginLeft,
		MarginRight:         f.marginRight,
		Scale:               f.scale,
		PreferCSSPageSize:   f.preferCSSPageSize,
		DisplayHeaderFooter: f.headerFooter,
		HeaderTemplate:      f.headerTemplate,
		FooterTemplate:      f.footerTemplate,
	}
}

// discoverFiles walks inputPath (a single file or a directory) and returns
// every HTML file paired with its resolved output path.
func discoverFiles(inputPath, outputDir string) ([]FileToRender, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateHTMLExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToRender{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToRender
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".html" && ext != ".htm" {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		files = append(files, FileToRender{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the PDF output path for an HTML file.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".pdf")
	}

	if strings.HasSuffix(outputDir, ".pdf") {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(outputDir, relDir, base+".pdf")
		}
	}

	return filepath.Join(outputDir, base+".pdf")
}

// validateHTMLExtension checks that the file has a .html or .htm extension.
func validateHTMLExtension(path string) error {
	ext := filepath.Ext(path)
	if ext != ".html" && ext != ".htm" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > htmlpdf.MaxGroupSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, htmlpdf.MaxGroupSize)
	}
	return nil
}

// renderBatch fans a set of files out across pool's renderers. isURL means
// files[0].InputPath is a URL to navigate to rather than a local file to
// read and wrap in a data URL.
func renderBatch(ctx context.Context, pool Pool, files []FileToRender, opts htmlpdf.PrintOptions, pdfa, isURL bool) []RenderResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]RenderResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r := pool.Acquire()
			defer pool.Release(r)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = RenderResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = renderFile(ctx, r, files[idx], opts, pdfa, isURL)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderFile processes a single file (or URL) and returns the result.
func renderFile(ctx context.Context, r Renderer, f FileToRender, opts htmlpdf.PrintOptions, pdfa, isURL bool) RenderResult {
	start := time.Now()
	result := RenderResult{InputPath: f.InputPath, OutputPath: f.OutputPath}

	req := htmlpdf.Request{Options: opts, PDFA: pdfa}
	if isURL {
		req.URL = f.InputPath
	} else {
		content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
		if err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrReadHTML, err)
			result.Duration = time.Since(start)
			return result
		}
		req.HTML = string(content)
	}

	out, err := r.Render(ctx, req)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if outDir := filepath.Dir(f.OutputPath); outDir != "." {
		if err := os.MkdirAll(outDir, dirPermissions); err != nil {
			result.Err = fmt.Errorf("creating output directory: %w", err)
			result.Duration = time.Since(start)
			return result
		}
	}

	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(f.OutputPath, out.PDF, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWritePDF, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Duration = time.Since(start)
	return result
}

// printResultsWithWriter outputs render results using the provided writers.
func printResultsWithWriter(results []RenderResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		succeeded++
		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
