package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: htmlpdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render      Render HTML to PDF")
	fmt.Fprintln(w, "  doctor      Diagnose browser and environment issues")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'htmlpdf help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: htmlpdf render <input> [flags]")
	fmt.Fprintln(w, "       htmlpdf render --url <url> -o <output> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render HTML files (or a live URL) to PDF via headless Chrome.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML file or directory (ignored when --url is set)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>            Output file or directory")
	fmt.Fprintln(w, "  -u, --url <url>                Navigate to a URL instead of a local file")
	fmt.Fprintln(w, "  -c, --config <name>             Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>               Parallel renderer processes (0 = auto)")
	fmt.Fprintln(w, "      --pool-size <n>              Sessions per renderer (0 = config default)")
	fmt.Fprintln(w, "  -t, --timeout <d>                Render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --init-timeout <d>           Browser bootstrap timeout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --landscape                  Landscape orientation")
	fmt.Fprintln(w, "      --print-background           Print CSS backgrounds")
	fmt.Fprintln(w, "      --paper-width <f>            Paper width in inches")
	fmt.Fprintln(w, "      --paper-height <f>           Paper height in inches")
	fmt.Fprintln(w, "      --margin-top/-bottom/-left/-right <f>  Margins in inches")
	fmt.Fprintln(w, "      --scale <f>                  Scale factor")
	fmt.Fprintln(w, "      --prefer-css-page-size        Prefer @page size from CSS")
	fmt.Fprintln(w, "      --header-footer               Display header and footer")
	fmt.Fprintln(w, "      --header-template <html>      Header template HTML")
	fmt.Fprintln(w, "      --footer-template <html>      Footer template HTML")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "      --chrome-executable <path>   Chrome/Chromium binary (auto-discovered)")
	fmt.Fprintln(w, "      --chrome-arg <flag>          Extra Chrome flag (repeatable)")
	fmt.Fprintln(w, "      --no-sandbox                  Disable the Chrome sandbox")
	fmt.Fprintln(w, "      --offline                     Put sessions into offline network mode")
	fmt.Fprintln(w, "      --ignore-certificate-errors  Ignore TLS certificate errors")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF/A:")
	fmt.Fprintln(w, "      --pdfa                        Convert output to PDF/A")
	fmt.Fprintln(w, "      --pdfa-binary <path>          External PDF/A converter binary")
	fmt.Fprintln(w, "      --pdfa-workers <n>            Concurrent PDF/A conversions")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                        Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                       Show detailed timing")
}

// runHelp prints help for a specific command.
func runHelp(args []string, deps *Dependencies) {
	if len(args) == 0 {
		printUsage(deps.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(deps.Stdout)
	case "doctor":
		fmt.Fprintln(deps.Stdout, "Usage: htmlpdf doctor [--json]")
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Diagnose Chrome/Chromium discovery and environment issues.")
	case "completion":
		printCompletionUsage(deps.Stdout)
	case "version":
		fmt.Fprintln(deps.Stdout, "Usage: htmlpdf version")
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(deps.Stdout, "Usage: htmlpdf help [command]")
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(deps.Stderr, "Unknown command: %s\n", args[0])
		printUsage(deps.Stderr)
	}
}
