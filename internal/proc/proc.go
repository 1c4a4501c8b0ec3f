// Package proc runs external programs (kubectl, tsh, python, editors) and
// maps their failures to user-facing errors.
package proc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/adt-dummy/dami/internal/apperr"
)

// Runner executes external commands.
type Runner interface {
	// Run executes args and captures stdout and stderr.
	Run(ctx context.Context, args []string, opts RunOptions) (*Result, error)

	// Interactive executes args attached to the terminal and returns its exit code.
	Interactive(ctx context.Context, args []string) (int, error)

	// LookPath resolves an executable in PATH.
	LookPath(name string) (string, error)
}

// RunOptions controls a captured run.
type RunOptions struct {
	// Stdin is written to the process; empty means no input.
	Stdin string
	// Timeout kills the process after the given duration; zero disables it.
	Timeout time.Duration
	// Check turns a non-zero exit status into an error.
	Check bool
}

// Result is the outcome of a captured run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExecRunner returns a Runner attached to the process's standard streams.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Run executes args and captures its output.
func (r *ExecRunner) Run(ctx context.Context, args []string, opts RunOptions) (*Result, error) {
	if len(args) == 0 {
		return nil, errors.New("no command given")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // commands are built from fixed argv lists
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if opts.Stdin != "" {
		cmd.Stdin = strings.NewReader(opts.Stdin)
	}

	r.logger().Debug("running command", slog.String("cmd", strings.Join(args, " ")), slog.Duration("timeout", opts.Timeout))

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case isNotFound(err):
			return nil, apperr.Wrap(err, "Executable not found: "+args[0])
		case opts.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, apperr.Wrap(err, "Command timed out after "+formatSeconds(opts.Timeout)+"s: "+strings.Join(args, " "))
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		default:
			return nil, err
		}
	}

	if opts.Check && res.ExitCode != 0 {
		return res, apperr.WithCode(res.ExitCode, failureMessage(res))
	}
	return res, nil
}

// Interactive runs args with the runner's standard streams attached.
func (r *ExecRunner) Interactive(ctx context.Context, args []string) (int, error) {
	if len(args) == 0 {
		return 0, errors.New("no command given")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // commands are built from fixed argv lists
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	r.logger().Debug("running interactive command", slog.String("cmd", strings.Join(args, " ")))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		if isNotFound(err) {
			return 0, apperr.Wrap(err, "Executable not found: "+args[0])
		}
		return 0, err
	}
	return 0, nil
}

// LookPath resolves name in PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *ExecRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// WhichOrError resolves bin or fails with a user-facing error.
func WhichOrError(r Runner, bin string) (string, error) {
	path, err := r.LookPath(bin)
	if err != nil || path == "" {
		return "", apperr.New("Required executable not found in PATH: " + bin)
	}
	return path, nil
}

// failureMessage picks stderr, then stdout, then a generic message.
func failureMessage(res *Result) string {
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(res.Stdout); msg != "" {
		return msg
	}
	return "Command failed"
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
