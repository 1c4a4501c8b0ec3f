package sqlguard

// Classification holds the effective verb of a statement and, for SET/RESET,
// the token that follows it. Empty strings mean "not found".
type Classification struct {
	First  string
	Second string
}

// HasFirst reports whether a recognised leading keyword was found.
func (c Classification) HasFirst() bool {
	return c.First != ""
}

// HasSecond reports whether a session-scope modifier was found.
func (c Classification) HasSecond() bool {
	return c.Second != ""
}

// Classify finds the first recognised keyword at depth zero, skipping a
// leading WITH [RECURSIVE] prefix. Tokens inside parentheses are never
// considered, so a CTE body cannot stand in for the outer verb.
func (p *Policy) Classify(tokens []Token) Classification {
	i := 0
	if i < len(tokens) && tokens[i].Depth == 0 && tokens[i].Text == "WITH" {
		i++
		if i < len(tokens) && tokens[i].Depth == 0 && tokens[i].Text == "RECURSIVE" {
			i++
		}
	}

	var c Classification
	for ; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Depth != 0 {
			continue
		}
		if c.First == "" {
			if !p.isRecognized(tok.Text) {
				continue
			}
			c.First = tok.Text
			if c.First != keywordSet && c.First != keywordReset {
				return c
			}
			continue
		}
		c.Second = tok.Text
		return c
	}

	return c
}
