package sqlguard

import (
	"errors"
	"fmt"
	"strings"
)

// RejectionMessage is the user-facing text of ErrSQLRejected. Automation
// matches on it, so it must not change.
const RejectionMessage = "Query rejected: read-only mode blocks DDL/DML. Use --allow-write to override."

// ErrSQLRejected is returned by EnsureReadOnly when any statement may write.
var ErrSQLRejected = errors.New(RejectionMessage)

// Verdict is the outcome for a single statement.
type Verdict struct {
	Statement      string
	Cleaned        string
	Classification Classification
	Allowed        bool
	Reason         string
}

// Report is the per-statement analysis of a query, in statement order.
type Report struct {
	Verdicts []Verdict
}

// ReadOnly reports whether every statement was allowed. An empty report is read-only.
func (r Report) ReadOnly() bool {
	for _, v := range r.Verdicts {
		if !v.Allowed {
			return false
		}
	}
	return true
}

// Rejected returns the verdicts that failed.
func (r Report) Rejected() []Verdict {
	var out []Verdict
	for _, v := range r.Verdicts {
		if !v.Allowed {
			out = append(out, v)
		}
	}
	return out
}

// Guard applies a Policy to SQL text. It holds no mutable state and is safe
// for concurrent use.
type Guard struct {
	policy *Policy
}

// NewGuard creates a Guard for p. A nil policy selects DefaultPolicy.
func NewGuard(p *Policy) *Guard {
	if p == nil {
		p = DefaultPolicy()
	}
	return &Guard{policy: p}
}

// Policy returns the guard's policy.
func (g *Guard) Policy() *Policy {
	return g.policy
}

// Analyze classifies every statement of sql without stopping at the first rejection.
func (g *Guard) Analyze(sql string) Report {
	statements := SplitStatements(sql)
	report := Report{Verdicts: make([]Verdict, 0, len(statements))}
	for _, stmt := range statements {
		report.Verdicts = append(report.Verdicts, g.check(stmt))
	}
	return report
}

// IsReadOnly reports whether every statement in sql passes the policy.
// Text with no statements is read-only.
func (g *Guard) IsReadOnly(sql string) bool {
	for _, stmt := range SplitStatements(sql) {
		if !g.check(stmt).Allowed {
			return false
		}
	}
	return true
}

// EnsureReadOnly returns ErrSQLRejected unless sql is read-only.
func (g *Guard) EnsureReadOnly(sql string) error {
	if !g.IsReadOnly(sql) {
		return ErrSQLRejected
	}
	return nil
}

func (g *Guard) check(stmt string) Verdict {
	cleaned := CleanStatement(stmt)
	v := Verdict{
		Statement:      stmt,
		Cleaned:        cleaned,
		Classification: g.policy.Classify(Tokenize(cleaned)),
	}

	v.Allowed, v.Reason = g.decide(v.Classification)

	// The phrase backstop runs on the raw cleaned text, independent of tokens.
	if phrase, found := g.policy.matchPhrase(strings.ToUpper(cleaned)); found {
		v.Allowed = false
		v.Reason = fmt.Sprintf("forbidden phrase %q", phrase)
	}

	return v
}

func (g *Guard) decide(c Classification) (bool, string) {
	switch {
	case !c.HasFirst():
		return false, "no recognizable leading keyword"
	case (c.First == keywordSet || c.First == keywordReset) && c.Second == keywordSession:
		return true, "session command " + c.First + " " + c.Second
	case g.policy.IsAllowedStart(c.First):
		return true, "allowed statement " + c.First
	case g.policy.IsForbidden(c.First):
		return false, "forbidden keyword " + c.First
	case c.HasSecond():
		return false, "unsupported command " + c.First + " " + c.Second
	default:
		return false, "unsupported command " + c.First
	}
}

var defaultGuard = NewGuard(nil)

// IsReadOnly reports whether sql is read-only under DefaultPolicy.
func IsReadOnly(sql string) bool {
	return defaultGuard.IsReadOnly(sql)
}

// EnsureReadOnly returns ErrSQLRejected unless sql is read-only under DefaultPolicy.
func EnsureReadOnly(sql string) error {
	return defaultGuard.EnsureReadOnly(sql)
}
