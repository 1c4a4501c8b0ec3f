package sqlguard

import (
	"fmt"
	"sort"
	"strings"
)

// Session command verbs. They are recognised by the classifier but are never
// an outcome on their own: only SET SESSION and RESET SESSION pass.
const (
	keywordSet     = "SET"
	keywordReset   = "RESET"
	keywordSession = "SESSION"
)

// Policy is the immutable allow/forbid configuration of a Guard.
type Policy struct {
	allowedStart      map[string]struct{}
	forbiddenKeywords map[string]struct{}
	forbiddenPhrases  []string
	recognized        map[string]struct{}
}

var (
	defaultAllowedStart = []string{
		"SELECT",
		"WITH",
		"SHOW",
		"DESCRIBE",
		"EXPLAIN",
		"VALUES",
		"USE",
	}

	defaultForbiddenKeywords = []string{
		"INSERT",
		"UPDATE",
		"DELETE",
		"MERGE",
		"CREATE",
		"DROP",
		"ALTER",
		"TRUNCATE",
		"GRANT",
		"REVOKE",
		"CALL",
		"COMMENT",
		"RENAME",
	}

	defaultForbiddenPhrases = []string{
		"SET ROLE",
		"RESET ROLE",
	}

	defaultPolicy = mustPolicy(defaultAllowedStart, defaultForbiddenKeywords, defaultForbiddenPhrases)
)

// DefaultPolicy returns the policy used in production.
func DefaultPolicy() *Policy {
	return defaultPolicy
}

// NewPolicy builds a Policy. Keywords and phrases are normalised to upper case.
// A keyword may not be both allowed and forbidden.
func NewPolicy(allowedStart, forbiddenKeywords, forbiddenPhrases []string) (*Policy, error) {
	p := &Policy{
		allowedStart:      toSet(allowedStart),
		forbiddenKeywords: toSet(forbiddenKeywords),
		recognized:        make(map[string]struct{}),
	}

	var overlap []string
	for kw := range p.allowedStart {
		if _, ok := p.forbiddenKeywords[kw]; ok {
			overlap = append(overlap, kw)
		}
	}
	if len(overlap) > 0 {
		sort.Strings(overlap)
		return nil, fmt.Errorf("keywords both allowed and forbidden: %s", strings.Join(overlap, ", "))
	}

	for _, phrase := range forbiddenPhrases {
		if phrase = strings.ToUpper(strings.TrimSpace(phrase)); phrase != "" {
			p.forbiddenPhrases = append(p.forbiddenPhrases, phrase)
		}
	}

	for kw := range p.allowedStart {
		p.recognized[kw] = struct{}{}
	}
	for kw := range p.forbiddenKeywords {
		p.recognized[kw] = struct{}{}
	}
	p.recognized[keywordSet] = struct{}{}
	p.recognized[keywordReset] = struct{}{}

	return p, nil
}

func mustPolicy(allowedStart, forbiddenKeywords, forbiddenPhrases []string) *Policy {
	p, err := NewPolicy(allowedStart, forbiddenKeywords, forbiddenPhrases)
	if err != nil {
		panic(err)
	}
	return p
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = strings.ToUpper(strings.TrimSpace(w)); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// IsAllowedStart reports whether keyword may start a read-only statement.
func (p *Policy) IsAllowedStart(keyword string) bool {
	_, ok := p.allowedStart[keyword]
	return ok
}

// IsForbidden reports whether keyword is a write verb.
func (p *Policy) IsForbidden(keyword string) bool {
	_, ok := p.forbiddenKeywords[keyword]
	return ok
}

// AllowedStart returns the allowed leading keywords, sorted.
func (p *Policy) AllowedStart() []string {
	return sortedKeys(p.allowedStart)
}

// ForbiddenKeywords returns the forbidden keywords, sorted.
func (p *Policy) ForbiddenKeywords() []string {
	return sortedKeys(p.forbiddenKeywords)
}

// ForbiddenPhrases returns the forbidden phrases in configuration order.
func (p *Policy) ForbiddenPhrases() []string {
	return append([]string(nil), p.forbiddenPhrases...)
}

// matchPhrase returns the first forbidden phrase contained in upper.
func (p *Policy) matchPhrase(upper string) (string, bool) {
	for _, phrase := range p.forbiddenPhrases {
		if strings.Contains(upper, phrase) {
			return phrase, true
		}
	}
	return "", false
}

func (p *Policy) isRecognized(keyword string) bool {
	_, ok := p.recognized[keyword]
	return ok
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
