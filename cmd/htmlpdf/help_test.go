package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)

	out := buf.String()
	for _, want := range []string{"render", "doctor", "completion", "version", "help"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage should mention %q, got: %s", want, out)
		}
	}
}

func TestPrintRenderUsage(t *testing.T) {
	var buf bytes.Buffer
	printRenderUsage(&buf)

	out := buf.String()
	for _, want := range []string{"--output", "--url", "--landscape", "--pdfa", "--no-sandbox"} {
		if !strings.Contains(out, want) {
			t.Errorf("render usage should mention %q, got: %s", want, out)
		}
	}
}

func TestRunHelp_NoArgsPrintsMainUsage(t *testing.T) {
	deps := DefaultDeps()
	var stdout, stderr bytes.Buffer
	deps.Stdout, deps.Stderr = &stdout, &stderr

	runHelp(nil, deps)

	if !strings.Contains(stdout.String(), "Commands:") {
		t.Errorf("expected main usage, got: %s", stdout.String())
	}
}

func TestRunHelp_KnownSubcommands(t *testing.T) {
	for _, cmd := range []string{"render", "doctor", "completion", "version", "help"} {
		t.Run(cmd, func(t *testing.T) {
			deps := DefaultDeps()
			var stdout, stderr bytes.Buffer
			deps.Stdout, deps.Stderr = &stdout, &stderr

			runHelp([]string{cmd}, deps)

			if stdout.Len() == 0 {
				t.Errorf("expected help output for %q", cmd)
			}
		})
	}
}

func TestRunHelp_UnknownSubcommand(t *testing.T) {
	deps := DefaultDeps()
	var stdout, stderr bytes.Buffer
	deps.Stdout, deps.Stderr = &stdout, &stderr

	runHelp([]string{"bogus"}, deps)

	if !strings.Contains(stderr.String(), "Unknown command") {
		t.Errorf("expected unknown command message, got: %s", stderr.String())
	}
}
