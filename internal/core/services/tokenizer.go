package services

import (
	"regexp"
	"strings"
)

// tokenPattern matches a maximal run of lowercase alphanumerics, optionally
// joined by internal slashes so fraction prescriptions like "1/2" survive
// as one token. Hyphens and all other punctuation are separators.
var tokenPattern = regexp.MustCompile(`[a-z0-9]+(?:/[a-z0-9]+)*`)

// Tokenize splits free text into ordered lowercase tokens. Tokens shorter
// than two characters are rejected, which discards stray single letters and
// digits left over from punctuation stripping. Pure and deterministic.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	matches := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			tokens = append(tokens, m)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// tokenSet builds a membership set from the tokens of text.
func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}
