// Package pyrun executes Python snippets inside the toolbox pod.
package pyrun

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/proc"
)

// Defaults for script sessions.
const (
	DefaultBaseDir = "/tmp/adt-dummy"
	DefaultPython  = "python3"
	ScriptName     = "script.py"
)

// Runner writes code to a per-session directory and runs it.
type Runner struct {
	Proc    proc.Runner
	Python  string
	BaseDir string
	KeepTmp bool
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
}

// RunCode runs code with args and returns the interpreter's exit code.
func (r *Runner) RunCode(ctx context.Context, code string, args []string) (int, error) {
	sessionDir := filepath.Join(r.baseDir(), strings.ReplaceAll(uuid.NewString(), "-", ""))
	script := filepath.Join(sessionDir, ScriptName)

	if !r.KeepTmp {
		defer func() {
			if err := os.RemoveAll(sessionDir); err != nil {
				r.logger().Debug("failed to remove session dir", slog.String("dir", sessionDir), slog.Any("error", err))
			}
		}()
	}

	if err := os.MkdirAll(sessionDir, 0o700); err != nil {
		return 0, runFailed(err)
	}
	if err := os.WriteFile(script, []byte(code), 0o600); err != nil {
		return 0, runFailed(err)
	}

	r.logger().Debug("running python script", slog.String("script", script), slog.Int("args", len(args)))

	res, err := r.Proc.Run(ctx, append([]string{r.python(), script}, args...), proc.RunOptions{})
	if err != nil {
		return 0, runFailed(err)
	}

	if res.Stdout != "" && r.Stdout != nil {
		_, _ = io.WriteString(r.Stdout, res.Stdout)
	}
	if res.Stderr != "" && r.Stderr != nil {
		_, _ = io.WriteString(r.Stderr, res.Stderr)
	}
	return res.ExitCode, nil
}

func (r *Runner) baseDir() string {
	if r.BaseDir == "" {
		return DefaultBaseDir
	}
	return r.BaseDir
}

func (r *Runner) python() string {
	if r.Python == "" {
		return DefaultPython
	}
	return r.Python
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func runFailed(err error) error {
	return apperr.Wrap(err, "Failed to run python script: "+err.Error())
}
