package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/adt-dummy/dami/internal/cli/output"
	"github.com/adt-dummy/dami/internal/query"
	"github.com/adt-dummy/dami/internal/remote"
	"github.com/adt-dummy/dami/pkg/sqlguard"
)

const (
	replPrompt         = "dami> "
	replContinuePrompt = "  ...> "
)

type queryREPLOptions struct {
	Format     string
	MaxRows    int
	AllowWrite bool
}

func newQueryREPLCommand() *cobra.Command {
	opts := &queryREPLOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive SQL session",
		Long: `Start an interactive SQL session against Trino.

Statements end with a semicolon and may span several lines. Every
statement goes through the same read-only guard as "dami query".
Outside the cluster the session runs in the toolbox pod.

` + trailingCommentNote,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQueryREPL(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", output.FormatTable, "Output format: table, csv, json, md")
	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", query.DefaultMaxRows, "Maximum rows per statement (0 disables the limit)")
	cmd.Flags().BoolVar(&opts.AllowWrite, "allow-write", false, "Allow statements that may modify data")

	return cmd
}

func runQueryREPL(cmd *cobra.Command, opts *queryREPLOptions) error {
	cc := NewCommandContext(cmd)

	if !cc.InCluster {
		args := []string{"query", "repl", "--format", opts.Format, "--max-rows", strconv.Itoa(opts.MaxRows)}
		if opts.AllowWrite {
			args = append(args, "--allow-write")
		}
		_, err := cc.RunRemote(cmd.Context(), args, remote.Options{TTY: true, Interactive: true})
		return err
	}

	session := &replSession{
		svc:        cc.QueryService(),
		out:        cmd.OutOrStdout(),
		errOut:     cmd.ErrOrStderr(),
		format:     opts.Format,
		maxRows:    opts.MaxRows,
		allowWrite: opts.AllowWrite,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     replHistoryFile(),
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(session.out, "dami SQL session. Type .help for commands, .quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		prompt, quit := session.handleLine(cmd.Context(), line)
		if quit {
			return nil
		}
		rl.SetPrompt(prompt)
	}
}

func replHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dami_history")
}

// replSession accumulates input lines into statements and runs them.
type replSession struct {
	svc        *query.Service
	out        io.Writer
	errOut     io.Writer
	format     string
	maxRows    int
	allowWrite bool

	buf strings.Builder
}

func (s *replSession) reset() {
	s.buf.Reset()
}

// handleLine consumes one input line. It returns the next prompt and whether
// the session should end.
func (s *replSession) handleLine(ctx context.Context, line string) (string, bool) {
	trimmed := strings.TrimSpace(line)

	if s.buf.Len() == 0 {
		if trimmed == "" {
			return replPrompt, false
		}
		if strings.HasPrefix(trimmed, ".") {
			return replPrompt, s.handleDotCommand(ctx, trimmed)
		}
	}

	s.buf.WriteString(line)
	s.buf.WriteString("\n")

	if !sqlguard.IsComplete(s.buf.String()) {
		return replContinuePrompt, false
	}

	sqlText := s.buf.String()
	s.buf.Reset()
	// One request per statement, without the terminating semicolon.
	for _, stmt := range sqlguard.SplitStatements(sqlText) {
		s.execute(ctx, stmt)
	}
	return replPrompt, false
}

func (s *replSession) execute(ctx context.Context, sqlText string) {
	result, err := s.svc.Run(ctx, query.Request{
		SQL:        sqlText,
		AllowWrite: s.allowWrite,
		MaxRows:    s.maxRows,
	})
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	if err := output.RenderResult(s.out, result, s.format); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	if result.Truncated {
		_, _ = fmt.Fprintln(s.errOut, "Output truncated. Use --max-rows 0 to disable the limit.")
	}
}

// replShortcuts map dot commands to the SHOW statement they run.
var replShortcuts = map[string]string{
	".catalogs": "SHOW CATALOGS",
	".schemas":  "SHOW SCHEMAS",
	".tables":   "SHOW TABLES",
}

// handleDotCommand runs a dot command and reports whether to quit.
func (s *replSession) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(s.out)
	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")
	case ".format":
		if len(parts) < 2 || !output.IsResultFormat(parts[1]) {
			_, _ = fmt.Fprintf(s.errOut, "Usage: .format <%s>\n", strings.Join(output.ResultFormats, "|"))
			break
		}
		s.format = parts[1]
	default:
		stmt, ok := replShortcuts[command]
		if !ok {
			_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
			break
		}
		if len(parts) > 1 && command != ".catalogs" {
			stmt += " FROM " + parts[1]
		}
		s.execute(ctx, stmt)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help              Show this help message
  .catalogs          List catalogs
  .schemas [catalog] List schemas
  .tables [schema]   List tables
  .format <format>   Switch output format (table, csv, json, md)
  .clear             Clear the screen
  .quit / .exit      Exit the session

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

func newREPLCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, kw := range sqlguard.DefaultPolicy().AllowedStart() {
		items = append(items, readline.PcItem(kw))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".catalogs"),
		readline.PcItem(".schemas"),
		readline.PcItem(".tables"),
		readline.PcItem(".format",
			readline.PcItem(output.FormatTable),
			readline.PcItem(output.FormatCSV),
			readline.PcItem(output.FormatJSON),
			readline.PcItem(output.FormatMarkdown),
		),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
