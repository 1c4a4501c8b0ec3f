package sqlguard

import "strings"

// CleanStatement strips comments and quoted literals from a statement so the
// result can be scanned for keywords. Every comment collapses to a single
// space; quoted spans, delimiters included, are dropped.
func CleanStatement(stmt string) string {
	var out strings.Builder
	out.Grow(len(stmt))

	sc := NewScanner(stmt)
	for step, ok := sc.Next(); ok; step, ok = sc.Next() {
		switch step.Event {
		case EventText:
			out.WriteString(stmt[step.Start:step.End])
		case EventCommentOpen:
			out.WriteByte(' ')
		}
	}

	return out.String()
}
