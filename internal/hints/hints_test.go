package hints

// Notes:
// - These tests cannot use t.Parallel() because they use t.Setenv() and
//   modify the package-level IsInContainer variable.

import (
	"strings"
	"testing"
)

func TestForSpawnFailed_InCI(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "true")
	t.Setenv("HTMLPDF_NO_SANDBOX", "")
	t.Setenv("HTMLPDF_CHROME_EXECUTABLE", "")

	hint := ForSpawnFailed()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "HTMLPDF_NO_SANDBOX") {
		t.Error("expected HTMLPDF_NO_SANDBOX suggestion in CI")
	}
	if !strings.Contains(hint, "HTMLPDF_CHROME_EXECUTABLE") {
		t.Error("expected HTMLPDF_CHROME_EXECUTABLE suggestion")
	}
}

func TestForSpawnFailed_InDocker(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("HTMLPDF_NO_SANDBOX", "")
	t.Setenv("HTMLPDF_CHROME_EXECUTABLE", "")

	hint := ForSpawnFailed()

	if !strings.Contains(hint, "HTMLPDF_NO_SANDBOX") {
		t.Error("expected HTMLPDF_NO_SANDBOX suggestion in Docker")
	}
}

func TestForSpawnFailed_SandboxAlreadySet(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("HTMLPDF_NO_SANDBOX", "1")
	t.Setenv("HTMLPDF_CHROME_EXECUTABLE", "/usr/bin/chrome")

	hint := ForSpawnFailed()

	if hint != "" {
		t.Errorf("expected empty hint when all configured, got %q", hint)
	}
}

func TestForBrowserCrash(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	hint := ForBrowserCrash()

	if !strings.Contains(hint, "shm") {
		t.Error("expected shared memory suggestion in container")
	}
}

func TestForTimeout(t *testing.T) {
	hint := ForTimeout()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "timeout") {
		t.Error("expected timeout mention")
	}
}

func TestForConfigNotFound(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{name: "empty paths", paths: []string{}, contains: "--config"},
		{name: "with paths", paths: []string{"./foo.yaml", "~/.config/htmlpdf/foo.yaml"}, contains: "htmlpdf/foo.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForConfigNotFound(tt.paths)
			if !strings.Contains(hint, "hint:") {
				t.Error("expected hint prefix")
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForPDFAConversionFailed(t *testing.T) {
	hint := ForPDFAConversionFailed()
	if !strings.Contains(hint, "pdfa.binary") {
		t.Error("expected pdfa.binary mention")
	}
}

func TestFormat_Consistency(t *testing.T) {
	for _, h := range []string{ForTimeout(), ForPoolExhausted(), ForPDFAConversionFailed()} {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
