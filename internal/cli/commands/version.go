package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/adt-dummy/dami/internal/cli/output"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display dami version and build information.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if info.GoVersion == "" {
				info.GoVersion = runtime.Version()
			}
			r := NewCommandContext(cmd).Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(info)
			}
			r.Println(fmt.Sprintf("dami, version %s", info.Version))
			r.Println(fmt.Sprintf("commit %s, built %s with %s", info.GitCommit, info.BuildDate, info.GoVersion))
			return nil
		},
	}
}
