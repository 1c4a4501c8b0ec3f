package commands

import (
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/pyrun"
	"github.com/adt-dummy/dami/internal/remote"
)

// Python script modes.
const (
	pyModeRun   = "run"
	pyModeEdit  = "edit"
	pyModeStdin = "-"
)

// NewPyCommand creates the py command.
func NewPyCommand() *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "py MODE [PATH] [-- ARGS...]",
		Short: "Run Python code inside the toolbox pod",
		Long: `Run Python code inside the toolbox pod.

MODE can be: run, edit, - (stdin).`,
		Example: `  dami py run script.py -- arg1 arg2
  cat script.py | dami py - -- arg1 arg2
  dami py edit -- arg1 arg2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPy(cmd, args, fromStdin)
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the script from stdin")
	_ = cmd.Flags().MarkHidden("stdin")
	cmd.Flags().SetInterspersed(false)

	return cmd
}

// pyInvocation is the parsed MODE [PATH] [-- ARGS] command line.
type pyInvocation struct {
	Mode string
	Path string
	Args []string
}

// parsePyArgs splits the positional arguments. dash is cobra's index of "--"
// or -1; with interspersed flags disabled a literal "--" may also remain.
func parsePyArgs(args []string, dash int) pyInvocation {
	if dash < 0 {
		dash = slices.Index(args, "--")
		if dash >= 0 {
			args = slices.Delete(slices.Clone(args), dash, dash+1)
		}
	}

	before, after := args, []string(nil)
	if dash >= 0 {
		before, after = args[:dash], args[dash:]
	}

	inv := pyInvocation{Mode: before[0]}
	rest := before[1:]
	if inv.Mode == pyModeRun && len(rest) > 0 {
		inv.Path, rest = rest[0], rest[1:]
	}
	inv.Args = append(slices.Clone(rest), after...)
	return inv
}

func runPy(cmd *cobra.Command, args []string, fromStdin bool) error {
	cc := NewCommandContext(cmd)
	inv := parsePyArgs(args, cmd.ArgsLenAtDash())

	code, err := loadPyCode(cmd, cc, inv, fromStdin)
	if err != nil {
		return err
	}

	if !cc.InCluster {
		remoteArgs := []string{"py", "--stdin", pyModeRun}
		if len(inv.Args) > 0 {
			remoteArgs = append(remoteArgs, "--")
			remoteArgs = append(remoteArgs, inv.Args...)
		}
		_, err := cc.RunRemote(cmd.Context(), remoteArgs, remote.Options{Stdin: &code})
		return err
	}

	runner := &pyrun.Runner{
		Proc:    cc.Runner,
		Python:  cc.Cfg.PythonBin,
		KeepTmp: cc.Cfg.KeepTmp,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Logger:  cc.Logger,
	}
	exitCode, err := runner.RunCode(cmd.Context(), code, inv.Args)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return apperr.Exit(exitCode)
	}
	return nil
}

func loadPyCode(cmd *cobra.Command, cc *CommandContext, inv pyInvocation, fromStdin bool) (string, error) {
	switch {
	case fromStdin || inv.Mode == pyModeStdin:
		return readStdin(cmd.InOrStdin())
	case inv.Mode == pyModeRun:
		if inv.Path == "" {
			return "", apperr.New("Missing script path for 'py run'")
		}
		if inv.Path == pyModeStdin {
			return readStdin(cmd.InOrStdin())
		}
		return pyrun.ReadScript(inv.Path)
	case inv.Mode == pyModeEdit:
		return pyrun.EditCode(cmd.Context(), cc.Runner, cc.Cfg.Editor)
	default:
		return "", apperr.New("Mode must be one of: run, edit, -")
	}
}

func readStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", apperr.Wrap(err, "Failed to read stdin")
	}
	return string(data), nil
}
