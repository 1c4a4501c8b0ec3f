package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/remote"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive shell in the toolbox pod",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			if !cc.InCluster {
				_, err := cc.RunRemote(cmd.Context(), []string{"shell"}, remote.Options{TTY: true, Interactive: true})
				return err
			}

			code, err := cc.Runner.Interactive(cmd.Context(), []string{pickShell(cc.Deps.ShellPath)})
			if err != nil {
				return err
			}
			if code != 0 {
				return apperr.WithCode(code, "Shell exited with an error")
			}
			return nil
		},
	}
}

// pickShell prefers bash and falls back to sh.
func pickShell(override string) string {
	if override != "" {
		return override
	}
	if _, err := os.Stat("/bin/bash"); err == nil {
		return "/bin/bash"
	}
	return "/bin/sh"
}
