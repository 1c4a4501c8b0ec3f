// Package cli provides the command-line interface for dami.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/cli/commands"
	"github.com/adt-dummy/dami/internal/cli/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// ExitUsage is the exit code for invalid flags.
const ExitUsage = 2

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "dami",
		Short: "Toolbox for the adt-dummy Kubernetes environment",
		Long: `dami runs read-only Trino queries, network checks, Python scripts and
shells inside the adt-dummy toolbox pod.

On a workstation every command is forwarded to the pod with kubectl exec.
Inside the pod (ADT_DUMMY_IN_CLUSTER=1) commands run directly.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == cobra.ShellCompRequestCmd {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := newLogger(cmd, cfg)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, config.LoggerKey(), logger))

			if file := config.GetConfigFileUsed(); file != "" {
				logger.Debug("using config file", slog.String("path", file))
			}
			logger.Debug("configuration loaded",
				slog.Bool("in_cluster", cfg.InCluster),
				slog.String("namespace", cfg.Namespace))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}}, version {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.WithCode(ExitUsage, err.Error())
	})

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./dami.yaml)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("output-mode", "", "Output mode (auto|text|markdown|json)")
	pf.Bool("in-cluster", false, "Run commands directly instead of proxying to the pod")
	pf.String("namespace", "", "Namespace of the toolbox pod")
	pf.String("pod-selector", "", "Label selector for the toolbox pod")
	pf.String("pod", "", "Use this pod instead of discovering one")
	pf.String("context", "", "kubectl context")

	_ = rootCmd.RegisterFlagCompletionFunc("output-mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}))
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewShellCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewNetCommand())
	rootCmd.AddCommand(commands.NewPyCommand())
	rootCmd.AddCommand(commands.NewLsCommand())
	rootCmd.AddCommand(commands.NewGoCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(NewCompletionCommand())
	rootCmd.AddCommand(newRemoteCommand())

	return rootCmd
}

// newRemoteCommand groups the commands executed inside the pod on behalf
// of a workstation.
func newRemoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:    commands.RemoteGroupName,
		Short:  "Commands invoked inside the toolbox pod",
		Hidden: true,
	}
	cmd.AddCommand(commands.NewDoctorCommand())
	cmd.AddCommand(commands.NewShellCommand())
	cmd.AddCommand(commands.NewQueryCommand())
	cmd.AddCommand(commands.NewNetCommand())
	cmd.AddCommand(commands.NewPyCommand())
	return cmd
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))
}

// Execute runs the root command with ctx and returns the process exit code.
// Errors are printed as "Error: <message>" on stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if msg := err.Error(); msg != "" {
			_, _ = fmt.Fprintf(stderr, "Error: %s\n", msg)
		}
		return apperr.ExitCode(err)
	}
	return 0
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for dami.

To load completions:

Bash:
  $ source <(dami completion bash)

  # To load completions for each session, execute once:
  $ dami completion bash > /etc/bash_completion.d/dami

Zsh:
  $ dami completion zsh > "${fpath[1]}/_dami"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ dami completion fish | source

PowerShell:
  PS> dami completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
