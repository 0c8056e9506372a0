// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package resolve

import (
	"strings"

	"github.com/brandscope/brandscope/internal/store"
)

// Verdict is the outcome of validating a cached resolution payload.
type Verdict int

// Validation verdicts.
const (
	// VerdictOK: entry is clean, serve unmodified.
	VerdictOK Verdict = iota
	// VerdictRepaired: a corrupt field was scrubbed in place; the repaired
	// entry is servable and should be re-stored.
	VerdictRepaired
	// VerdictInvalid: the payload cannot be trusted; the entry must be
	// discarded and the name re-resolved.
	VerdictInvalid
)

// Prose-detection thresholds for the genre-tag field. Genre tags are short
// labels; a value that reads like a sentence was misfiled from the synopsis
// during an earlier sync.
const (
	proseMaxTagLength = 60
	proseMaxTagWords  = 8
)

// ValidateEntry runs the corruption heuristic over a cached resolution
// payload and repairs what it safely can.
//
// The one known corruption mode: the genre-tag list absorbing narrative
// prose from the synopsis field. Repair scrubs only the poisoned values and
// keeps serving the rest of the payload. A payload missing its record ID is
// Invalid and forces re-resolution. An empty Name is NOT Invalid: placeholder
// titles ("Untitled", "TBD") are deliberately scrubbed to the absent value
// before caching, and discarding those entries would defeat the cache for
// exactly the records it normalizes.
func ValidateEntry(entry *store.ResolutionEntry) Verdict {
	if entry.Record.ID == "" {
		return VerdictInvalid
	}

	cleaned := entry.Record.Genres[:0:0]
	repaired := false
	for _, g := range entry.Record.Genres {
		if looksLikeProse(g) {
			repaired = true
			continue
		}
		cleaned = append(cleaned, g)
	}
	if !repaired {
		return VerdictOK
	}

	entry.Record.Genres = cleaned
	return VerdictRepaired
}

// looksLikeProse reports whether a supposed genre tag carries the hallmarks
// of narrative text: sentence punctuation, length, or word count far beyond
// any real tag.
func looksLikeProse(tag string) bool {
	trimmed := strings.TrimSpace(tag)
	if len(trimmed) > proseMaxTagLength {
		return true
	}
	if strings.Contains(trimmed, ". ") || strings.HasSuffix(trimmed, ".") {
		return true
	}
	return len(strings.Fields(trimmed)) > proseMaxTagWords
}
