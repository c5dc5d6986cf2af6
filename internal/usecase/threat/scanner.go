// Package threat scans transcript segments for dangerous keywords.
package threat

import (
	"regexp"
	"strings"
)

// Keywords is the fixed list scanned against every transcript segment.
// Matches are reported in this order regardless of where they occur in the
// text.
var Keywords = []string{
	"kill", "murder", "bomb", "attack", "shoot", "weapon",
	"threat", "harm", "die", "suicide", "terrorist", "explode",
}

var patterns = compile(Keywords)

func compile(words []string) []*regexp.Regexp {
	ps := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		ps[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return ps
}

// Scan returns the keywords found in text as whole words, case-insensitive,
// in keyword-list order. It is pure and safe for concurrent use; empty or
// whitespace-only input yields no matches.
func Scan(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var found []string
	for i, p := range patterns {
		if p.MatchString(text) {
			found = append(found, Keywords[i])
		}
	}
	return found
}
