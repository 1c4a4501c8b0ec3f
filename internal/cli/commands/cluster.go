package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/cli/config"
	"github.com/adt-dummy/dami/internal/proc"
)

// ensureLocal rejects commands that only make sense on a workstation.
func ensureLocal(cc *CommandContext, name string) error {
	if cc.InCluster {
		return apperr.Newf("%s is local-only.", name)
	}
	return nil
}

// NewLsCommand creates the ls command.
func NewLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List pods in the configured namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			if err := ensureLocal(cc, "dami ls"); err != nil {
				return err
			}

			out, err := cc.Kube().ListPods(cmd.Context(), cc.Cfg.Namespace)
			if err != nil {
				return err
			}
			if out != "" {
				cc.Renderer.Printf("%s", out)
			}
			return nil
		},
	}
}

// NewGoCommand creates the go command.
func NewGoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "go TARGET",
		Short: "Switch Kubernetes cluster using tsh kube login",
		Long: fmt.Sprintf(`Switch Kubernetes cluster using tsh kube login.

Targets are: %s.
Set ADT_DUMMY_CLUSTER_* to override defaults.`, strings.Join(config.ClusterTargets, ", ")),
		Example:   "  dami go prod",
		ValidArgs: config.ClusterTargets,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			if !slices.Contains(config.ClusterTargets, strings.ToLower(args[0])) {
				return apperr.Newf("Invalid target %q. Choose from: %s", args[0], strings.Join(config.ClusterTargets, ", "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			if err := ensureLocal(cc, "dami go"); err != nil {
				return err
			}

			target := strings.ToLower(args[0])
			cluster, err := cc.Cfg.ClusterName(target)
			if err != nil {
				return err
			}
			if _, err := proc.WhichOrError(cc.Runner, "tsh"); err != nil {
				return err
			}

			cc.Renderer.Printf("Logging into %s (%s)\n", target, cluster)
			code, err := cc.Runner.Interactive(cmd.Context(), []string{"tsh", "kube", "login", cluster})
			if err != nil {
				return err
			}
			if code != 0 {
				return apperr.WithCode(code, "tsh kube login failed")
			}
			return nil
		},
	}
}
