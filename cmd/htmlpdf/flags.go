package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds Page.printToPDF layout flags.
type pageFlags struct {
	landscape         bool
	printBackground   bool
	paperWidth        float64
	paperHeight       float64
	marginTop         float64
	marginBottom      float64
	marginLeft        float64
	marginRight       float64
	scale             float64
	preferCSSPageSize bool
	headerTemplate    string
	footerTemplate    string
	headerFooter      bool
}

// browserFlags holds flags controlling the Chrome/Chromium subprocess.
type browserFlags struct {
	executable  string
	extraArgs   []string
	noSandbox   bool
	offline     bool
	ignoreCerts bool
}

// pdfaFlags holds PDF/A conversion flags.
type pdfaFlags struct {
	enabled bool
	binary  string
	workers int
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common      commonFlags
	output      string
	url         string
	workers     int
	poolSize    int
	timeout     string
	initTimeout string
	page        pageFlags
	browser     browserFlags
	pdfa        pdfaFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addPageFlags adds Page.printToPDF flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.BoolVar(&f.landscape, "landscape", false, "render in landscape orientation")
	fs.BoolVar(&f.printBackground, "print-background", false, "print CSS backgrounds")
	fs.Float64Var(&f.paperWidth, "paper-width", 0, "paper width in inches (0 = Chrome default)")
	fs.Float64Var(&f.paperHeight, "paper-height", 0, "paper height in inches (0 = Chrome default)")
	fs.Float64Var(&f.marginTop, "margin-top", 0, "top margin in inches")
	fs.Float64Var(&f.marginBottom, "margin-bottom", 0, "bottom margin in inches")
	fs.Float64Var(&f.marginLeft, "margin-left", 0, "left margin in inches")
	fs.Float64Var(&f.marginRight, "margin-right", 0, "right margin in inches")
	fs.Float64Var(&f.scale, "scale", 0, "scale factor (0 = Chrome default of 1.0)")
	fs.BoolVar(&f.preferCSSPageSize, "prefer-css-page-size", false, "prefer @page size declared in CSS")
	fs.StringVar(&f.headerTemplate, "header-template", "", "HTML template for the page header")
	fs.StringVar(&f.footerTemplate, "footer-template", "", "HTML template for the page footer")
	fs.BoolVar(&f.headerFooter, "header-footer", false, "display header and footer")
}

// addBrowserFlags adds browser subprocess flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.StringVar(&f.executable, "chrome-executable", "", "path to a Chrome/Chromium binary (auto-discovered if unset)")
	fs.StringArrayVar(&f.extraArgs, "chrome-arg", nil, "extra flag to pass to the Chrome subprocess (repeatable)")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable Chrome's sandbox, required in most containers")
	fs.BoolVar(&f.offline, "offline", false, "put sessions into offline network mode")
	fs.BoolVar(&f.ignoreCerts, "ignore-certificate-errors", false, "ignore TLS certificate errors during navigation")
}

// addPDFAFlags adds PDF/A conversion flags to a FlagSet.
func addPDFAFlags(fs *flag.FlagSet, f *pdfaFlags) {
	fs.BoolVar(&f.enabled, "pdfa", false, "convert the rendered PDF to PDF/A")
	fs.StringVar(&f.binary, "pdfa-binary", "", "external PDF/A converter binary")
	fs.IntVar(&f.workers, "pdfa-workers", 0, "concurrent PDF/A conversions (0 = auto)")
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	f := &renderFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output PDF file or directory (always written to disk, never to stdout)")
	fs.StringVarP(&f.url, "url", "u", "", "URL to navigate to instead of an HTML file argument")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renderer processes for batch input (0 = auto)")
	fs.IntVar(&f.poolSize, "pool-size", 0, "sessions per renderer (0 = config default)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.initTimeout, "init-timeout", "", "browser bootstrap timeout (e.g., 30s)")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addBrowserFlags(fs, &f.browser)
	addPDFAFlags(fs, &f.pdfa)

	fs.Usage = func() { printRenderUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
