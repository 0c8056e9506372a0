// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package resolve

import (
	"strings"
	"unicode"
)

// stopwords are excluded from the significant-word expansion in cascade
// stage three and from overlap-ratio scoring.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "and": {}, "or": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {},
	"is": {}, "aka": {},
}

// NormalizeName produces the canonical form of a free-text name used for
// cache keys and comparisons: lowercase, punctuation stripped, whitespace
// collapsed.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastSpace := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
		// Other punctuation is dropped entirely.
	}
	return strings.TrimSpace(b.String())
}

// tokens splits a normalized name into words.
func tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// significantWords returns the tokens worth searching on: at least two
// characters and not a stopword.
func significantWords(normalized string) []string {
	all := tokens(normalized)
	out := make([]string, 0, len(all))
	for _, w := range all {
		if len(w) < 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// wordOverlapRatio is the fraction of the input's significant words that
// appear verbatim in the candidate. Used by the last-resort cascade stage.
func wordOverlapRatio(inputWords []string, candidate string) float64 {
	if len(inputWords) == 0 {
		return 0
	}
	candidateSet := make(map[string]struct{})
	for _, w := range tokens(candidate) {
		candidateSet[w] = struct{}{}
	}

	matched := 0
	for _, w := range inputWords {
		if _, ok := candidateSet[w]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(inputWords))
}
