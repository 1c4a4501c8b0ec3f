package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adt-dummy/dami/internal/cli/output"
	"github.com/adt-dummy/dami/pkg/sqlguard"
)

type queryCheckOptions struct {
	File   string
	Params []string
	Stdin  bool
}

// CheckResult is the JSON output of "query check".
type CheckResult struct {
	ReadOnly   bool             `json:"read_only"`
	Statements []CheckStatement `json:"statements"`
}

// CheckStatement is the verdict for one statement.
type CheckStatement struct {
	Index     int    `json:"index"`
	Statement string `json:"statement"`
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason"`
}

func newQueryCheckCommand() *cobra.Command {
	opts := &queryCheckOptions{}

	cmd := &cobra.Command{
		Use:   "check [SQL]",
		Short: "Show how the read-only guard classifies SQL",
		Long: `Classify each statement with the read-only guard without running anything.

Exits non-zero when any statement would be rejected.

` + trailingCommentNote,
		Example: `  dami query check "SELECT 1; DROP TABLE t"
  dami query check -f report.sql --param day=2024-01-01
  cat report.sql | dami query check --stdin --output-mode json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryCheck(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read SQL from file")
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "Template parameter KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&opts.Stdin, "stdin", false, "Read SQL from stdin")

	return cmd
}

func runQueryCheck(cmd *cobra.Command, args []string, opts *queryCheckOptions) error {
	cc := NewCommandContext(cmd)

	sqlText, err := loadSQL(cmd.InOrStdin(), args, opts.File, opts.Stdin)
	if err != nil {
		return err
	}
	params, err := sqlguard.ParseParams(opts.Params)
	if err != nil {
		return err
	}

	report := sqlguard.NewGuard(nil).Analyze(sqlguard.ApplyParams(sqlText, params))
	result := CheckResult{ReadOnly: report.ReadOnly(), Statements: make([]CheckStatement, 0, len(report.Verdicts))}
	for i, v := range report.Verdicts {
		result.Statements = append(result.Statements, CheckStatement{
			Index:     i + 1,
			Statement: v.Statement,
			Allowed:   v.Allowed,
			Reason:    v.Reason,
		})
	}

	switch cc.Renderer.EffectiveMode() {
	case output.ModeJSON:
		if err := cc.Renderer.JSON(result); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderCheckMarkdown(cc.Renderer, result)
	default:
		renderCheckText(cc.Renderer, result)
	}

	if !result.ReadOnly {
		return sqlguard.ErrSQLRejected
	}
	return nil
}

func renderCheckText(r *output.Renderer, result CheckResult) {
	styles := r.Styles()
	if len(result.Statements) == 0 {
		r.Println(styles.Muted.Render("No statements found."))
		return
	}

	for _, s := range result.Statements {
		status := "success"
		if !s.Allowed {
			status = "failed"
		}
		r.StatusLine(fmt.Sprintf("%d. %s", s.Index, summarizeStatement(s.Statement)), status, "("+s.Reason+")")
	}
	r.Println()
	if result.ReadOnly {
		r.Success("Read-only: yes")
	} else {
		r.Println(styles.Error.Render("Read-only: no"))
	}
}

func renderCheckMarkdown(r *output.Renderer, result CheckResult) {
	r.Println(output.FormatHeader(2, "Read-only check"))
	r.Println()
	for _, s := range result.Statements {
		verdict := "allowed"
		if !s.Allowed {
			verdict = "rejected"
		}
		r.Printf("%d. `%s` - %s (%s)\n", s.Index, summarizeStatement(s.Statement), verdict, s.Reason)
	}
	if len(result.Statements) > 0 {
		r.Println()
	}
	if result.ReadOnly {
		r.Println(output.FormatKeyValue("**Read-only**", "yes"))
	} else {
		r.Println(output.FormatKeyValue("**Read-only**", "no"))
	}
}

// summarizeStatement collapses whitespace and shortens long statements.
func summarizeStatement(stmt string) string {
	s := strings.Join(strings.Fields(stmt), " ")
	const limit = 60
	if runes := []rune(s); len(runes) > limit {
		return string(runes[:limit-3]) + "..."
	}
	return s
}
