package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/htmlpdf"
	"github.com/alnah/htmlpdf/internal/config"
)

func TestValidateHTMLExtension(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"page.html", false},
		{"page.htm", false},
		{"page.md", true},
		{"page", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := validateHTMLExtension(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateHTMLExtension(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidExtension) {
				t.Errorf("error should wrap ErrInvalidExtension, got %v", err)
			}
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{"zero means auto", 0, false},
		{"positive within bounds", 4, false},
		{"at max", htmlpdf.MaxGroupSize, false},
		{"negative", -1, true},
		{"above max", htmlpdf.MaxGroupSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWorkers(tt.n)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateWorkers(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
			}
		})
	}
}

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		name         string
		inputPath    string
		outputDir    string
		baseInputDir string
		want         string
	}{
		{
			name:      "no output dir uses sibling path",
			inputPath: "/docs/report.html",
			want:      "/docs/report.pdf",
		},
		{
			name:      "explicit .pdf output path is used as-is",
			inputPath: "/docs/report.html",
			outputDir: "/out/final.pdf",
			want:      "/out/final.pdf",
		},
		{
			name:      "output dir without base joins basename",
			inputPath: "/docs/report.html",
			outputDir: "/out",
			want:      "/out/report.pdf",
		},
		{
			name:         "output dir with base preserves relative structure",
			inputPath:    "/docs/sub/report.html",
			outputDir:    "/out",
			baseInputDir: "/docs",
			want:         "/out/sub/report.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveOutputPath(tt.inputPath, tt.outputDir, tt.baseInputDir)
			if got != tt.want {
				t.Errorf("resolveOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiscoverFiles_SingleFile(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "page.html")
	if err := os.WriteFile(htmlPath, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := discoverFiles(htmlPath, "")
	if err != nil {
		t.Fatalf("discoverFiles() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("len(files) = %d, want 1", len(files))
	}
	if files[0].InputPath != htmlPath {
		t.Errorf("InputPath = %q, want %q", files[0].InputPath, htmlPath)
	}
	wantOut := filepath.Join(dir, "page.pdf")
	if files[0].OutputPath != wantOut {
		t.Errorf("OutputPath = %q, want %q", files[0].OutputPath, wantOut)
	}
}

func TestDiscoverFiles_SingleFile_WrongExtension(t *testing.T) {
	dir := t.TempDir()
	mdPath := filepath.Join(dir, "page.md")
	if err := os.WriteFile(mdPath, []byte("# hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := discoverFiles(mdPath, "")
	if !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("discoverFiles() error = %v, want ErrInvalidExtension", err)
	}
}

func TestDiscoverFiles_Directory(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(rel string) {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("<html></html>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("a.html")
	mustWrite("sub/b.htm")
	mustWrite("notes.txt")

	files, err := discoverFiles(dir, "")
	if err != nil {
		t.Fatalf("discoverFiles() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2: %+v", len(files), files)
	}
}

func TestDiscoverFiles_MissingPath(t *testing.T) {
	_, err := discoverFiles("/nonexistent/path/x.html", "")
	if err == nil {
		t.Fatal("expected error for nonexistent path")
	}
}

func TestBuildPrintOptions(t *testing.T) {
	f := &pageFlags{
		landscape:         true,
		printBackground:   true,
		paperWidth:        8.5,
		paperHeight:       11,
		marginTop:         0.4,
		marginBottom:      0.4,
		marginLeft:        0.2,
		marginRight:       0.2,
		scale:             1.1,
		preferCSSPageSize: true,
		headerTemplate:    "<h>",
		footerTemplate:    "<f>",
		headerFooter:      true,
	}

	got := buildPrintOptions(f)

	want := htmlpdf.PrintOptions{
		Landscape:           true,
		PrintBackground:     true,
		PaperWidth:          8.5,
		PaperHeight:         11,
		MarginTop:           0.4,
		MarginBottom:        0.4,
		MarginLeft:          0.2,
		MarginRight:         0.2,
		Scale:               1.1,
		PreferCSSPageSize:   true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      "<h>",
		FooterTemplate:      "<f>",
	}

	if got != want {
		t.Errorf("buildPrintOptions() = %+v, want %+v", got, want)
	}
}

func TestMergeRenderFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	flags := &renderFlags{
		poolSize: 6,
		browser: browserFlags{
			executable:  "/opt/chrome",
			extraArgs:   []string{"--disable-gpu"},
			noSandbox:   true,
			offline:     true,
			ignoreCerts: true,
		},
		initTimeout: "5s",
		timeout:     "30s",
		pdfa: pdfaFlags{
			enabled: true,
			binary:  "/usr/bin/gs",
			workers: 2,
		},
	}

	mergeRenderFlags(flags, cfg)

	if cfg.SessionPool.Size != 6 {
		t.Errorf("SessionPool.Size = %d, want 6", cfg.SessionPool.Size)
	}
	if cfg.Browser.Executable != "/opt/chrome" {
		t.Errorf("Browser.Executable = %q, want %q", cfg.Browser.Executable, "/opt/chrome")
	}
	if len(cfg.Browser.Args) != 1 || cfg.Browser.Args[0] != "--disable-gpu" {
		t.Errorf("Browser.Args = %v, want [--disable-gpu]", cfg.Browser.Args)
	}
	if !cfg.Browser.NoSandbox || !cfg.Browser.Offline || !cfg.Browser.IgnoreCertificateErrors {
		t.Error("browser boolean flags not applied")
	}
	if cfg.Timeout.Init != 5*time.Second {
		t.Errorf("Timeout.Init = %v, want 5s", cfg.Timeout.Init)
	}
	if cfg.Timeout.Render != 30*time.Second {
		t.Errorf("Timeout.Render = %v, want 30s", cfg.Timeout.Render)
	}
	if !cfg.PDFA.Enabled || cfg.PDFA.Binary != "/usr/bin/gs" || cfg.PDFA.Workers != 2 {
		t.Errorf("PDFA = %+v, want enabled with gs binary and 2 workers", cfg.PDFA)
	}
}

func TestMergeRenderFlags_LeavesConfigUntouchedWhenFlagsAreZero(t *testing.T) {
	cfg := config.DefaultConfig()
	originalSize := cfg.SessionPool.Size

	mergeRenderFlags(&renderFlags{}, cfg)

	if cfg.SessionPool.Size != originalSize {
		t.Errorf("SessionPool.Size changed to %d, want unchanged %d", cfg.SessionPool.Size, originalSize)
	}
}

func TestRenderFile_ReadsHTMLAndWritesPDF(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.html")
	outPath := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(inPath, []byte("<html><body>hi</body></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &fakeRenderer{}
	result := renderFile(context.Background(), r, FileToRender{InputPath: inPath, OutputPath: outPath}, htmlpdf.PrintOptions{}, false, false)

	if result.Err != nil {
		t.Fatalf("renderFile() error = %v", result.Err)
	}
	if r.calls != 1 {
		t.Errorf("renderer called %d times, want 1", r.calls)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(data) == 0 {
		t.Error("output PDF is empty")
	}
}

func TestRenderFile_URLSkipsFileRead(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.pdf")

	r := &fakeRenderer{}
	result := renderFile(context.Background(), r, FileToRender{InputPath: "https://example.com", OutputPath: outPath}, htmlpdf.PrintOptions{}, false, true)

	if result.Err != nil {
		t.Fatalf("renderFile() error = %v", result.Err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("expected output file to exist: %v", err)
	}
}

func TestRenderFile_MissingInputFile(t *testing.T) {
	r := &fakeRenderer{}
	result := renderFile(context.Background(), r, FileToRender{InputPath: "/nonexistent.html", OutputPath: "/tmp/out.pdf"}, htmlpdf.PrintOptions{}, false, false)

	if !errors.Is(result.Err, ErrReadHTML) {
		t.Errorf("result.Err = %v, want ErrReadHTML", result.Err)
	}
	if r.calls != 0 {
		t.Errorf("renderer should not have been called, got %d calls", r.calls)
	}
}

// erroringRenderer always fails, used to test renderBatch failure propagation.
type erroringRenderer struct{ err error }

func (e erroringRenderer) Render(context.Context, htmlpdf.Request) (htmlpdf.Result, error) {
	return htmlpdf.Result{}, e.err
}

func TestRenderBatch_AggregatesResultsInOrder(t *testing.T) {
	dir := t.TempDir()
	var files []FileToRender
	for i := 0; i < 5; i++ {
		in := filepath.Join(dir, string(rune('a'+i))+".html")
		out := filepath.Join(dir, string(rune('a'+i))+".pdf")
		if err := os.WriteFile(in, []byte("<html></html>"), 0o644); err != nil {
			t.Fatal(err)
		}
		files = append(files, FileToRender{InputPath: in, OutputPath: out})
	}

	pool := newFakePool(2)
	results := renderBatch(context.Background(), pool, files, htmlpdf.PrintOptions{}, false, false)

	if len(results) != 5 {
		t.Fatalf("len(results) = %d, want 5", len(results))
	}
	for i, r := range results {
		if r.InputPath != files[i].InputPath {
			t.Errorf("results[%d].InputPath = %q, want %q (order must match input order)", i, r.InputPath, files[i].InputPath)
		}
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v, want nil", i, r.Err)
		}
	}
}

func TestRenderBatch_Empty(t *testing.T) {
	pool := newFakePool(2)
	results := renderBatch(context.Background(), pool, nil, htmlpdf.PrintOptions{}, false, false)
	if results != nil {
		t.Errorf("results = %v, want nil for empty input", results)
	}
}

func TestRenderBatch_CanceledContextSkipsRemaining(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.html")
	if err := os.WriteFile(in, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := newFakePool(1)
	results := renderBatch(ctx, pool, []FileToRender{{InputPath: in, OutputPath: filepath.Join(dir, "a.pdf")}}, htmlpdf.PrintOptions{}, false, false)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("results[0].Err = %v, want context.Canceled", results[0].Err)
	}
}

func TestPrintResultsWithWriter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &stderr}

	results := []RenderResult{
		{InputPath: "a.html", OutputPath: "a.pdf", Duration: 10 * time.Millisecond},
		{InputPath: "b.html", Err: errors.New("boom")},
	}

	failed := printResultsWithWriter(results, false, false, env)

	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if !bytes.Contains(stdout.Bytes(), []byte("a.pdf")) {
		t.Errorf("stdout should mention a.pdf, got: %s", stdout.String())
	}
	if !bytes.Contains(stderr.Bytes(), []byte("b.html")) {
		t.Errorf("stderr should mention b.html, got: %s", stderr.String())
	}
}

func TestPrintResultsWithWriter_Quiet(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &stderr}

	results := []RenderResult{
		{InputPath: "a.html", OutputPath: "a.pdf"},
	}

	printResultsWithWriter(results, true, false, env)

	if stdout.Len() != 0 {
		t.Errorf("quiet mode should suppress success output, got: %s", stdout.String())
	}
}

func TestResolveConfig_MergesFileEnvAndFlags(t *testing.T) {
	withEnv(t, map[string]string{"HTMLPDF_NO_SANDBOX": "1"})

	env := DefaultEnv()
	flags := &renderFlags{poolSize: 7}

	cfg, err := resolveConfig(flags, env)
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}
	if !cfg.Browser.NoSandbox {
		t.Error("expected env NoSandbox to apply")
	}
	if cfg.SessionPool.Size != 7 {
		t.Errorf("SessionPool.Size = %d, want 7 (flag should win)", cfg.SessionPool.Size)
	}
}

func TestRunRender_NoInputReturnsError(t *testing.T) {
	env := DefaultEnv()
	env.Stdout = &bytes.Buffer{}
	env.Stderr = &bytes.Buffer{}

	pool := newFakePool(1)
	err := runRender(context.Background(), nil, &renderFlags{}, pool, env)
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("runRender() error = %v, want ErrNoInput", err)
	}
}

func TestRunRender_URLWithoutOutputReturnsError(t *testing.T) {
	env := DefaultEnv()
	env.Stdout = &bytes.Buffer{}
	env.Stderr = &bytes.Buffer{}

	pool := newFakePool(1)
	flags := &renderFlags{url: "https://example.com"}
	err := runRender(context.Background(), nil, flags, pool, env)
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("runRender() error = %v, want ErrNoInput", err)
	}
}

func TestRunRender_InvalidURLReturnsError(t *testing.T) {
	env := DefaultEnv()
	env.Stdout = &bytes.Buffer{}
	env.Stderr = &bytes.Buffer{}

	pool := newFakePool(1)
	flags := &renderFlags{url: "not a url", output: "out.pdf"}
	err := runRender(context.Background(), nil, flags, pool, env)
	if !errors.Is(err, htmlpdf.ErrInvalidInput) {
		t.Errorf("runRender() error = %v, want ErrInvalidInput", err)
	}
}

func TestRunRender_RendersSingleFileEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "page.html")
	if err := os.WriteFile(inPath, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	env := DefaultEnv()
	var stdout, stderr bytes.Buffer
	env.Stdout = &stdout
	env.Stderr = &stderr

	pool := newFakePool(1)
	err := runRender(context.Background(), []string{inPath}, &renderFlags{}, pool, env)
	if err != nil {
		t.Fatalf("runRender() error = %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(dir, "page.pdf")); statErr != nil {
		t.Errorf("expected output PDF to be created: %v", statErr)
	}
}

func TestRunRender_InvalidWorkerCountRejected(t *testing.T) {
	env := DefaultEnv()
	env.Stdout = &bytes.Buffer{}
	env.Stderr = &bytes.Buffer{}

	pool := newFakePool(1)
	err := runRender(context.Background(), []string{"whatever.html"}, &renderFlags{workers: -1}, pool, env)
	if !errors.Is(err, ErrInvalidWorkerCount) {
		t.Errorf("runRender() error = %v, want ErrInvalidWorkerCount", err)
	}
}
