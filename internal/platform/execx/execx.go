// Package execx runs external reconnaissance tools as argument vectors and
// streams their stdout line by line. A shell is never involved.
package execx

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/logx"
)

// OutputHandler processes output from CLI tools.
type OutputHandler interface {
	// ProcessLine handles each line of stdout in real-time.
	// Errors are logged and processing continues.
	ProcessLine(line []byte) error

	// Finalize is called after all lines are processed.
	Finalize() error
}

// Result describes a finished process.
type Result struct {
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner starts a binary with args and feeds its stdout to handler.
// Every error returned wraps errors.ErrExternalTool or errors.ErrTimeout.
type Runner interface {
	Run(ctx context.Context, name string, args []string, handler OutputHandler) (Result, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	logger  logx.Logger
	timeout time.Duration // 0 = sólo el contexto del llamador
}

// NewExecRunner creates a runner whose processes are killed after timeout.
func NewExecRunner(logger logx.Logger, timeout time.Duration) *ExecRunner {
	return &ExecRunner{
		logger:  logger.With("component", "execx"),
		timeout: timeout,
	}
}

// Timeout returns the per-process limit.
func (r *ExecRunner) Timeout() time.Duration {
	return r.timeout
}

// Run executes name with args. Binaries are resolved on PATH at call time so a
// missing tool is a per-call error, never a startup failure.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, handler OutputHandler) (Result, error) {
	var res Result
	start := time.Now()

	execPath, err := exec.LookPath(name)
	if err != nil {
		return res, errors.Wrapf(errors.ErrExternalTool, "%s not found in PATH: %v", name, err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.logger.Debug("executing CLI command", "exec_path", execPath, "args", args)

	cmd := exec.CommandContext(ctx, execPath, args...)
	cmd.WaitDelay = time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return res, errors.Wrapf(errors.ErrExternalTool, "%s: stdout pipe: %v", name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return res, errors.Wrapf(errors.ErrExternalTool, "%s: stderr pipe: %v", name, err)
	}

	if err := cmd.Start(); err != nil {
		return res, errors.Wrapf(errors.ErrExternalTool, "%s: start: %v", name, err)
	}

	// stderr en background para que el proceso no se bloquee
	var stderrBytes []byte
	var stderrWg sync.WaitGroup
	stderrWg.Add(1)
	go func() {
		defer stderrWg.Done()
		data, readErr := io.ReadAll(stderr)
		if readErr != nil {
			r.logger.Debug("error reading stderr", "error", readErr.Error())
		}
		stderrBytes = data
	}()

	if handler != nil {
		r.processOutput(stdout, handler)
		if err := handler.Finalize(); err != nil {
			r.logger.Warn("handler finalization error", "tool", name, "error", err.Error())
		}
	} else {
		_, _ = io.Copy(io.Discard, stdout)
	}

	stderrWg.Wait()
	waitErr := cmd.Wait()

	res.Stderr = string(stderrBytes)
	res.Duration = time.Since(start)
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		r.logger.Warn("subprocess interrupted", "tool", name, "error", ctxErr.Error(), "duration", res.Duration.String())
		return res, errors.Wrapf(errors.ErrTimeout, "%s: %v", name, ctxErr)
	}
	if waitErr != nil {
		r.logger.Warn("subprocess exited with error",
			"tool", name,
			"exit_code", res.ExitCode,
			"stderr", firstLine(res.Stderr),
			"duration", res.Duration.String(),
		)
		return res, errors.Wrapf(errors.ErrExternalTool, "%s exited with code %d: %v", name, res.ExitCode, waitErr)
	}

	r.logger.Debug("CLI command completed", "tool", name, "duration", res.Duration.String())
	return res, nil
}

func (r *ExecRunner) processOutput(stdout io.Reader, handler OutputHandler) {
	scanner := bufio.NewScanner(stdout)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024) // 10MB max token size

	for scanner.Scan() {
		if err := handler.ProcessLine(scanner.Bytes()); err != nil {
			r.logger.Debug("handler error", "error", err.Error())
		}
	}
	if err := scanner.Err(); err != nil {
		r.logger.Warn("scanner error", "error", err.Error())
		_, _ = io.Copy(io.Discard, stdout)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// LineCollector keeps trimmed, non-empty stdout lines.
type LineCollector struct {
	Lines []string
}

func (c *LineCollector) ProcessLine(line []byte) error {
	if s := strings.TrimSpace(string(line)); s != "" {
		c.Lines = append(c.Lines, s)
	}
	return nil
}

func (c *LineCollector) Finalize() error { return nil }

// BufferCollector keeps raw stdout, newline-terminated. Used for XML output.
type BufferCollector struct {
	bytes.Buffer
}

func (c *BufferCollector) ProcessLine(line []byte) error {
	c.Write(line)
	return c.WriteByte('\n')
}

func (c *BufferCollector) Finalize() error { return nil }

// Lines runs the tool and returns its trimmed non-empty stdout lines.
func Lines(ctx context.Context, r Runner, name string, args []string) ([]string, error) {
	var c LineCollector
	_, err := r.Run(ctx, name, args, &c)
	return c.Lines, err
}
