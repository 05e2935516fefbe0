// Package hints provides actionable error hints for common failure
// scenarios. Hints are formatted consistently as "\n  hint: <text>" for
// appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/htmlpdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv, which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForSpawnFailed returns hints for browser spawn errors: sandbox and
// executable discovery are the two most common causes in CI/containers.
func ForSpawnFailed() string {
	var out []string

	if (inCI() || IsInContainer()) && os.Getenv("HTMLPDF_NO_SANDBOX") != "1" {
		out = append(out, "set HTMLPDF_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("HTMLPDF_CHROME_EXECUTABLE") == "" {
		out = append(out, "set HTMLPDF_CHROME_EXECUTABLE to point at a chrome/chromium binary")
	}
	return formatHints(out)
}

// ForBrowserCrash returns hints for a died or crashed browser process
// (Inspector.targetCrashed, unexpected transport close).
func ForBrowserCrash() string {
	var out []string
	if IsInContainer() {
		out = append(out, "increase the container's /dev/shm size (--shm-size=1g or larger)")
	}
	out = append(out, "avoid loading external stylesheets or fonts that can hang the renderer")
	return formatHints(out)
}

// ForPoolExhausted returns a hint for pool_exhausted errors.
func ForPoolExhausted() string {
	return format("increase sessionPool.size or the caller's timeout")
}

// ForTimeout returns a hint about increasing the render timeout.
func ForTimeout() string {
	return format("for large or asset-heavy documents, increase the configured timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/htmlpdf") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForPDFAConversionFailed returns hints for pdfa_conversion_failed errors.
func ForPDFAConversionFailed() string {
	return format("verify the configured pdfa.binary is installed and executable")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
