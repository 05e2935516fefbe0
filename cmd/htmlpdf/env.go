package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/htmlpdf/internal/config"
)

// Environment holds injectable dependencies for testability. Includes I/O,
// time, and configuration.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config // Loaded once, shared across the render pipeline
}

// DefaultEnv returns production environment defaults.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Config: config.DefaultConfig(),
	}
}
