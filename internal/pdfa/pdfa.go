// Package pdfa converts a plain PDF into a PDF/A variant by shelling out to
// an external converter binary (e.g. ghostscript or a veraPDF-compatible
// tool) through a CommandRunner over os/exec, plus a bounded worker pool
// since a converter
// invocation is comparatively slow and memory-heavy.
package pdfa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/alnah/htmlpdf/internal/fileutil"
	"github.com/alnah/htmlpdf/internal/logging"
)

// ErrConversionFailed wraps a non-zero exit or unreadable output from the
// converter binary.
var ErrConversionFailed = errors.New("pdfa: conversion failed")

// CommandRunner abstracts command execution so tests can substitute a fake
// converter without shelling out.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Converter turns PDF bytes into PDF/A bytes by round-tripping through a
// temp file pair and an external binary invoked as:
//
//	<binary> <input.pdf> <output.pdf>
type Converter struct {
	Binary string
	Runner CommandRunner
	Logger *logging.Logger
}

// NewConverter builds a Converter that shells out to binary with the real
// process runner.
func NewConverter(binary string, logger *logging.Logger) *Converter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Converter{Binary: binary, Runner: ExecRunner{}, Logger: logger}
}

// Convert runs the external converter over pdf and returns the PDF/A bytes.
func (c *Converter) Convert(ctx context.Context, pdf []byte) ([]byte, error) {
	inPath, cleanupIn, err := fileutil.WriteTempFile(string(pdf), "pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: writing temp input: %v", ErrConversionFailed, err)
	}
	defer cleanupIn()

	outPath := inPath + ".out.pdf"
	defer os.Remove(outPath)

	_, stderr, err := c.Runner.Run(ctx, c.Binary, inPath, outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConversionFailed, stderr, err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading converted output: %v", ErrConversionFailed, err)
	}
	return out, nil
}

// Pool bounds how many conversions run concurrently, since each one spawns
// an external process with its own memory footprint.
type Pool struct {
	sem       chan struct{}
	converter *Converter
	mu        sync.Mutex
	closed    bool
}

// NewPool builds a Pool that allows at most workers concurrent conversions.
func NewPool(workers int, converter *Converter) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{sem: make(chan struct{}, workers), converter: converter}
}

// Convert blocks until a worker slot is free (or ctx is done), then runs
// the conversion.
func (p *Pool) Convert(ctx context.Context, pdf []byte) ([]byte, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("%w: pool closed", ErrConversionFailed)
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()

	return p.converter.Convert(ctx, pdf)
}

// Close marks the pool closed. In-flight conversions are allowed to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
