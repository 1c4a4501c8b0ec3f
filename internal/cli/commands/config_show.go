package commands

import (
	"bytes"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adt-dummy/dami/internal/cli/config"
	"github.com/adt-dummy/dami/internal/cli/output"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration with secrets masked",
		Long: `Print the configuration after merging defaults, dami.yaml,
ADT_DUMMY_* environment variables and flags. The Trino password is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			redacted := cc.Cfg.Redacted()

			if cc.Renderer.EffectiveMode() == output.ModeJSON {
				return cc.Renderer.JSON(redacted)
			}

			var buf bytes.Buffer
			enc := yaml.NewEncoder(&buf)
			enc.SetIndent(2)
			if err := enc.Encode(redacted); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}

			if file := config.GetConfigFileUsed(); file != "" {
				cc.Renderer.Println("# config file: " + file)
			}
			cc.Renderer.Printf("%s", buf.String())
			return nil
		},
	}
}
