// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package match

// genreCategories is the fixed genre → brand-category affinity table.
// Scoring is deterministic because this table and the rating table below
// are compile-time constants of the engine.
var genreCategories = map[string]string{
	"Action":      "Automotive",
	"Adventure":   "Automotive",
	"Comedy":      "Food & Beverage",
	"Drama":       "Insurance",
	"Romance":     "Jewelry",
	"Thriller":    "Security",
	"Crime":       "Security",
	"Horror":      "Entertainment",
	"Fantasy":     "Entertainment",
	"Family":      "Toys & Games",
	"Animation":   "Toys & Games",
	"Sports":      "Sportswear",
	"Documentary": "Education",
	"Sci-Fi":      "Technology",
	"Music":       "Consumer Electronics",
	"Reality":     "Retail",
}

// ratingAgeBrackets maps a target content rating to the audience age
// brackets it implies.
var ratingAgeBrackets = map[string][]string{
	"TV-Y":  {"2-11"},
	"TV-Y7": {"2-11"},
	"TV-G":  {"2-11", "12-17", "18-34"},
	"TV-PG": {"12-17", "18-34"},
	"TV-14": {"12-17", "18-34", "35-54"},
	"TV-MA": {"18-34", "35-54", "55+"},
	"G":     {"2-11", "12-17"},
	"PG":    {"2-11", "12-17", "18-34"},
	"PG-13": {"12-17", "18-34"},
	"R":     {"18-34", "35-54", "55+"},
}
