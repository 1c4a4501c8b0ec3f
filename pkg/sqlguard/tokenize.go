package sqlguard

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[A-Z_]+|[()]`)

// Token is an uppercase keyword-like word and the parenthesis depth it was found at.
type Token struct {
	Text  string
	Depth int
}

// Tokenize extracts keyword-like tokens from cleaned statement text.
// Parentheses only move the depth counter, which never drops below zero.
func Tokenize(cleaned string) []Token {
	var tokens []Token
	depth := 0

	for _, m := range tokenPattern.FindAllString(strings.ToUpper(cleaned), -1) {
		switch m {
		case "(":
			depth++
		case ")":
			if depth > 0 {
				depth--
			}
		default:
			tokens = append(tokens, Token{Text: m, Depth: depth})
		}
	}

	return tokens
}
