package pyrun

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-shellwords"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/proc"
)

// DefaultEditor is used when no editor is configured.
const DefaultEditor = "vi"

// EditCode opens editor on a temporary .py file and returns what was saved.
// The editor string is split with shell quoting rules.
func EditCode(ctx context.Context, runner proc.Runner, editor string) (string, error) {
	if editor == "" {
		editor = DefaultEditor
	}
	argv, err := shellwords.Parse(editor)
	if err != nil || len(argv) == 0 {
		return "", apperr.Newf("Editor launch failed: invalid editor command %q", editor)
	}

	f, err := os.CreateTemp("", "dami-*.py")
	if err != nil {
		return "", apperr.Wrap(err, fmt.Sprintf("Editor launch failed: %v", err))
	}
	path := f.Name()
	_ = f.Close()
	defer os.Remove(path)

	code, err := runner.Interactive(ctx, append(argv, path))
	if err != nil {
		return "", apperr.Wrap(err, fmt.Sprintf("Editor launch failed: %v", err))
	}
	if code != 0 {
		return "", apperr.Newf("Editor failed with exit code %d", code)
	}
	return ReadScript(path)
}

// ReadScript reads a script file.
func ReadScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.Wrap(err, "Failed to read file: "+path)
	}
	return string(data), nil
}
