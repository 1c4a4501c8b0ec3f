package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adt-dummy/dami/internal/apperr"
	"github.com/adt-dummy/dami/internal/cli/output"
	"github.com/adt-dummy/dami/internal/query"
	"github.com/adt-dummy/dami/internal/remote"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	File       string
	Format     string
	Output     string
	MaxRows    int
	Params     []string
	AllowWrite bool
	Stdin      bool
}

// trailingCommentNote is shared by every command that runs the guard.
const trailingCommentNote = `Comments are kept with the statement they follow. A comment after the last
semicolon ("SELECT 1; -- done") is a statement of its own with no keyword
and is rejected; put it before the semicolon or on an earlier line.`

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a read-only SQL query against Trino",
		Long: `Run SQL against the configured Trino cluster.

Statements are checked by a read-only guard before execution: anything that
is not a query, EXPLAIN, SHOW, DESCRIBE, USE or a session SET/RESET is
rejected unless --allow-write is given. {{KEY}} placeholders are replaced
with --param values before the check.

` + trailingCommentNote + `

Outside the cluster the query is forwarded to the toolbox pod.`,
		Example: `  # Run a query
  dami query "SELECT * FROM system.runtime.nodes"

  # Run a file with parameters and write CSV
  dami query -f report.sql --param day=2024-01-01 --format csv --output report.csv

  # Remove the row limit
  dami query "SELECT * FROM t" --max-rows 0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read SQL from file")
	cmd.Flags().StringVar(&opts.Format, "format", output.FormatTable, "Output format: table, csv, json, md")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write the result to a file")
	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", query.DefaultMaxRows, "Maximum rows to return (0 disables the limit)")
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "Template parameter KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&opts.AllowWrite, "allow-write", false, "Allow statements that may modify data")
	cmd.Flags().BoolVar(&opts.Stdin, "stdin", false, "Read SQL from stdin")
	_ = cmd.Flags().MarkHidden("stdin")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.ResultFormats, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(newQueryCheckCommand())
	cmd.AddCommand(newQueryREPLCommand())

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cc := NewCommandContext(cmd)

	if !output.IsResultFormat(opts.Format) {
		return apperr.Newf("Invalid --format %q. Use one of: %s", opts.Format, strings.Join(output.ResultFormats, ", "))
	}

	sqlText, err := loadSQL(cmd.InOrStdin(), args, opts.File, opts.Stdin)
	if err != nil {
		return err
	}

	if cc.InCluster {
		return runQueryInCluster(cmd, cc, sqlText, opts)
	}
	return runQueryRemote(cmd, cc, sqlText, opts)
}

// loadSQL returns the SQL from exactly one of the argument, a file or stdin.
func loadSQL(stdin io.Reader, args []string, file string, fromStdin bool) (string, error) {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	sources := 0
	for _, set := range []bool{arg != "", file != "", fromStdin} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return "", apperr.New("Provide SQL via argument or --file.")
	}

	switch {
	case fromStdin:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", apperr.Wrap(err, "Failed to read SQL from stdin")
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				return "", apperr.Wrap(err, "File not found: "+file)
			}
			return "", apperr.Wrap(err, "Failed to read file: "+file)
		}
		return string(data), nil
	default:
		return arg, nil
	}
}

func runQueryInCluster(cmd *cobra.Command, cc *CommandContext, sqlText string, opts *QueryOptions) error {
	result, err := cc.QueryService().Run(cmd.Context(), query.Request{
		SQL:        sqlText,
		Params:     opts.Params,
		AllowWrite: opts.AllowWrite,
		MaxRows:    opts.MaxRows,
	})
	if err != nil {
		return err
	}

	rendered, err := output.RenderResultString(result, opts.Format)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(rendered), 0o644); err != nil { //nolint:gosec // user-requested output file
			return apperr.Wrap(err, "Failed to write file: "+opts.Output)
		}
		cc.Renderer.Printf("Wrote %d rows to %s\n", len(result.Rows), opts.Output)
	} else {
		cc.Renderer.Printf("%s", rendered)
	}

	if result.Truncated {
		cc.Renderer.Warning("Output truncated. Use --max-rows 0 to disable the limit.")
	}
	return nil
}

func runQueryRemote(cmd *cobra.Command, cc *CommandContext, sqlText string, opts *QueryOptions) error {
	remoteArgs := []string{"query", "--stdin", "--format", opts.Format, "--max-rows", strconv.Itoa(opts.MaxRows)}
	if opts.AllowWrite {
		remoteArgs = append(remoteArgs, "--allow-write")
	}
	for _, p := range opts.Params {
		remoteArgs = append(remoteArgs, "--param", p)
	}

	out, err := cc.RunRemote(cmd.Context(), remoteArgs, remote.Options{
		Stdin:   &sqlText,
		Capture: opts.Output != "",
	})
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(out), 0o644); err != nil { //nolint:gosec // user-requested output file
			return apperr.Wrap(err, "Failed to write file: "+opts.Output)
		}
		cc.Renderer.Println(fmt.Sprintf("Wrote output to %s", opts.Output))
	}
	return nil
}
