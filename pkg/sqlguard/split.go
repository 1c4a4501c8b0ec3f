package sqlguard

import "strings"

// SplitStatements breaks sql into trimmed, non-empty statements on semicolons
// that are outside string literals and comments. Quoted and commented text,
// including any semicolons inside it, stays in the statement it belongs to.
func SplitStatements(sql string) []string {
	var statements []string
	var buf strings.Builder

	flush := func() {
		if stmt := strings.TrimSpace(buf.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		buf.Reset()
	}

	sc := NewScanner(sql)
	for step, ok := sc.Next(); ok; step, ok = sc.Next() {
		text := sql[step.Start:step.End]
		if step.Event == EventText && text == ";" {
			flush()
			continue
		}
		buf.WriteString(text)
	}
	flush()

	return statements
}

// IsComplete reports whether sql ends with a statement terminator outside any
// string literal or comment. Interactive readers use it to decide when to
// stop collecting lines.
func IsComplete(sql string) bool {
	last := -1
	sc := NewScanner(sql)
	for step, ok := sc.Next(); ok; step, ok = sc.Next() {
		if step.Event != EventText {
			last = -1
			continue
		}
		switch text := sql[step.Start:step.End]; {
		case text == ";":
			last = step.Start
		case strings.TrimSpace(text) != "":
			last = -1
		}
	}
	return last >= 0 && sc.State() == StateNormal
}
