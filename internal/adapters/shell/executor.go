// Package shell runs external generator programs.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/shell"
)

// stderrTailLines is the number of trailing stderr lines attached to failures.
const stderrTailLines = 20

// waitDelay bounds how long output pipes are drained after the process is killed.
const waitDelay = 2 * time.Second

// Runner implements ports.GeneratorRunner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new generator Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes the generator in inv.WorkDir as
// "[interpreter...] command input_file". Standard output is logged at info
// level and standard error at warn level.
func (r *Runner) Run(ctx context.Context, inv *domain.GeneratorInvocation) error {
	argv, err := Argv(inv)
	if err != nil {
		return err
	}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // generator declared by a core
	cmd.Dir = inv.WorkDir
	cmd.Env = os.Environ()
	cmd.WaitDelay = waitDelay

	stdout := &logWriter{emit: r.logger.Info}
	stderr := &logWriter{emit: r.logger.Warn, tail: stderrTailLines}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.logger.Debug("running generator " + inv.Generator + " for " + inv.Instance)
	runErr := cmd.Run()
	stdout.Flush()
	stderr.Flush()
	if runErr == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	reason := "non-zero exit"
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		reason = "timeout"
	case errors.Is(ctx.Err(), context.Canceled):
		reason = "canceled"
	case exitErr == nil:
		reason = runErr.Error()
	}

	err = zerr.With(domain.ErrGeneratorFailed, "generator", inv.Generator)
	err = zerr.With(err, "instance", inv.Instance)
	err = zerr.With(err, "reason", reason)
	err = zerr.With(err, "exit_code", exitCode)
	if tail := stderr.Tail(); tail != "" {
		err = zerr.With(err, "stderr", tail)
	}
	return err
}

// Argv builds the command line of a generator run. The interpreter is split
// with shell word rules so quoted arguments and $VARS behave as in a shell.
func Argv(inv *domain.GeneratorInvocation) ([]string, error) {
	if inv.Command == "" {
		err := zerr.With(domain.ErrGeneratorFailed, "generator", inv.Generator)
		return nil, zerr.With(err, "reason", "empty command")
	}

	var argv []string
	if strings.TrimSpace(inv.Interpreter) != "" {
		fields, err := shell.Fields(inv.Interpreter, os.Getenv)
		if err != nil {
			err = zerr.With(errors.Join(domain.ErrGeneratorFailed, err), "generator", inv.Generator)
			return nil, zerr.With(err, "interpreter", inv.Interpreter)
		}
		argv = append(argv, fields...)
	}
	argv = append(argv, inv.Command)
	if inv.InputFile != "" {
		argv = append(argv, inv.InputFile)
	}
	return argv, nil
}

// logWriter buffers partial writes and emits complete lines.
type logWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(string)
	tail int
	last []string
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line; keep it for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.line(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.line(w.buf.String())
		w.buf.Reset()
	}
}

func (w *logWriter) line(s string) {
	w.emit(s)
	if w.tail == 0 {
		return
	}
	w.last = append(w.last, s)
	if len(w.last) > w.tail {
		w.last = w.last[len(w.last)-w.tail:]
	}
}

// Tail returns the last retained lines joined by newlines.
func (w *logWriter) Tail() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.last, "\n")
}
