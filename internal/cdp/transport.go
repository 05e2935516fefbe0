package cdp

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/alnah/htmlpdf/internal/logging"
	"github.com/alnah/htmlpdf/internal/process"
)

// frameDelimiter separates messages on the CDP pipe transport: each JSON
// message is followed by a single NUL byte, on both directions.
const frameDelimiter = 0x00

// LaunchOptions configures how a browser subprocess is spawned.
type LaunchOptions struct {
	Executable              string
	ExtraArgs               []string
	NoSandbox               bool
	DiscardStderr           bool
	IgnoreCertificateErrors bool
	UserDataDir             string
	Logger                  *logging.Logger
}

func (o LaunchOptions) logger() *logging.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.Discard()
}

// buildArgs assembles the Chrome flags needed to run headless with a raw
// stdio pipe transport instead of the websocket devtools server.
func (o LaunchOptions) buildArgs() []string {
	args := []string{
		"--headless=new",
		"--remote-debugging-pipe",
		"--disable-gpu",
		"--disable-extensions",
		"--disable-background-networking",
		"--hide-scrollbars",
		"--mute-audio",
	}
	if o.NoSandbox {
		args = append(args, "--no-sandbox", "--disable-setuid-sandbox")
	}
	if o.UserDataDir != "" {
		args = append(args, "--user-data-dir="+o.UserDataDir)
	}
	args = append(args, o.ExtraArgs...)
	return args
}

// Transport drives one browser subprocess over its stdin/stdout pipes,
// framing outbound JSON-RPC messages and yielding inbound ones as they
// arrive. It does not interpret message content; that is Connection's job.
type Transport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	log    *logging.Logger

	writeMu sync.Mutex
	stopped bool
	stopMu  sync.Mutex
}

// Spawn starts the browser subprocess with a CDP pipe transport bound to
// its stdin/stdout.
func Spawn(opts LaunchOptions) (*Transport, error) {
	if opts.Executable == "" {
		return nil, fmt.Errorf("%w: no chrome executable configured", ErrSpawnFailed)
	}

	cmd := exec.Command(opts.Executable, opts.buildArgs()...)
	cmd.SysProcAttr = process.NewGroupAttr()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	log := opts.logger()
	if opts.DiscardStderr {
		cmd.Stderr = nil // os/exec connects a nil Writer field to /dev/null
	} else {
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
		}
		go forwardLines(stderr, log)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	return &Transport{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReaderSize(stdout, 64*1024),
		log:    log,
	}, nil
}

func forwardLines(r io.Reader, log *logging.Logger) {
	w := logging.NewLineWriter(log, logging.LevelDebug, "line")
	defer w.Close()
	_, _ = io.Copy(w, r)
}

// Send frames one outbound message and writes it to the browser's stdin.
func (t *Transport) Send(frame []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := t.stdin.Write(frame); err != nil {
		return fmt.Errorf("%w: %v", ErrTransportClosed, err)
	}
	if _, err := t.stdin.Write([]byte{frameDelimiter}); err != nil {
		return fmt.Errorf("%w: %v", ErrTransportClosed, err)
	}
	return nil
}

// Recv blocks until one full inbound frame has been read, and returns it
// without the trailing delimiter.
func (t *Transport) Recv() ([]byte, error) {
	frame, err := t.stdout.ReadBytes(frameDelimiter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportClosed, err)
	}
	return frame[:len(frame)-1], nil
}

// Stop closes stdin (asking Chrome to exit cleanly), waits briefly, and
// force-kills the whole process group if it doesn't.
func (t *Transport) Stop(grace time.Duration) error {
	t.stopMu.Lock()
	if t.stopped {
		t.stopMu.Unlock()
		return nil
	}
	t.stopped = true
	t.stopMu.Unlock()

	_ = t.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- t.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		if t.cmd.Process != nil {
			process.KillProcessGroup(t.cmd.Process.Pid)
		}
		<-done
		return nil
	}
}
