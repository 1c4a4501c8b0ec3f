// Package output renders command results for terminals, pipes and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// OutputMode selects how a Renderer formats its output.
type OutputMode string

// Mode is shorthand for OutputMode, used when converting config values.
type Mode = OutputMode

// Output modes.
const (
	// ModeAuto picks text on a TTY and markdown otherwise.
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Renderer writes human and machine output.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a Renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a Renderer with an explicit TTY state.
// Colors are used only on a TTY and are disabled by NO_COLOR.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	styles := PlainStyles()
	if isTTY && !termenv.EnvNoColor() {
		styles = DefaultStyles()
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: styles,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// EffectiveMode resolves ModeAuto against the TTY state.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Styles returns the active styles (unstyled when not on a TTY).
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Writer returns the stdout writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the stderr writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Println writes a line to stdout.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to stdout.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Eprintln writes a line to stderr.
func (r *Renderer) Eprintln(a ...any) {
	_, _ = fmt.Fprintln(r.errOut, a...)
}

// Success prints a success line to stdout.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.Success.Render(msg))
}

// Info prints an informational line to stdout.
func (r *Renderer) Info(msg string) {
	r.Println(r.styles.Info.Render(msg))
}

// Warning prints a warning to stderr.
func (r *Renderer) Warning(msg string) {
	r.Eprintln(r.styles.Warning.Render(msg))
}

// Error prints an error to stderr.
func (r *Renderer) Error(msg string) {
	r.Eprintln(r.styles.Error.Render(msg))
}

// StatusLine prints "<icon> name" with an optional detail.
// status is one of "success", "failed", "warning" or "skipped".
func (r *Renderer) StatusLine(name, status, detail string) {
	var icon string
	switch status {
	case "success":
		icon = r.styles.StatusSuccess.String()
	case "failed":
		icon = r.styles.StatusFailed.String()
	case "warning":
		icon = r.styles.StatusWarning.String()
	default:
		icon = r.styles.StatusSkipped.String()
	}
	line := icon + " " + name
	if detail != "" {
		line += " " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}

// JSON writes v as indented JSON to stdout.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
