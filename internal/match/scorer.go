// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

// Package match ranks sponsor-brand candidates per production with a pure,
// deterministic compatibility score. No I/O, no clock, no randomness:
// identical inputs always produce identical rankings.
//
// Cost is O(partnerships × brand pool); callers cap the pool before
// scoring, typically with CapBrandPool.
package match

import (
	"sort"

	"github.com/brandscope/brandscope/internal/models"
)

// Scoring weights and limits.
const (
	// DefaultTopK bounds how many ranked brands each MatchResult carries
	// when the caller does not supply its own limit.
	DefaultTopK = 30

	weightGenreCategory = 30
	weightTargetAge     = 20
	weightActiveStatus  = 15
	weightHighVolume    = 10
	weightMidVolume     = 5

	highVolumeThreshold = 10
	midVolumeThreshold  = 5
)

// Breakdown component names.
const (
	ComponentGenre  = "genre_category"
	ComponentAge    = "target_age"
	ComponentStatus = "active_status"
	ComponentVolume = "partnership_volume"
)

// ScorePair computes the compatibility score for one (partnership, brand)
// pair with its component breakdown. Components that contribute nothing are
// absent from the breakdown.
func ScorePair(p *models.PartnershipRecord, b *models.BrandRecord) (int, map[string]int) {
	breakdown := make(map[string]int, 4)

	if genre := genreScore(p.Genres, b.Category); genre > 0 {
		breakdown[ComponentGenre] = genre
	}
	if age := ageScore(p.TargetRating, b.TargetAges); age > 0 {
		breakdown[ComponentAge] = age
	}
	if b.ClientStatus == models.StatusActive {
		breakdown[ComponentStatus] = weightActiveStatus
	}
	if volume := volumeScore(b.PartnershipCount); volume > 0 {
		breakdown[ComponentVolume] = volume
	}

	total := 0
	for _, v := range breakdown {
		total += v
	}
	return total, breakdown
}

// genreScore awards weightGenreCategory per partnership genre whose mapped
// category equals the brand's category.
func genreScore(genres []string, category string) int {
	if category == "" {
		return 0
	}
	score := 0
	for _, g := range genres {
		if genreCategories[g] == category {
			score += weightGenreCategory
		}
	}
	return score
}

// ageScore awards weightTargetAge per rating-derived age bracket present in
// the brand's target-age tags.
func ageScore(rating string, targetAges []string) int {
	brackets, ok := ratingAgeBrackets[rating]
	if !ok || len(targetAges) == 0 {
		return 0
	}

	tagSet := make(map[string]struct{}, len(targetAges))
	for _, t := range targetAges {
		tagSet[t] = struct{}{}
	}

	score := 0
	for _, b := range brackets {
		if _, hit := tagSet[b]; hit {
			score += weightTargetAge
		}
	}
	return score
}

// volumeScore applies the mutually exclusive partnership-count bonus: only
// the higher threshold that matches applies.
func volumeScore(count int) int {
	switch {
	case count > highVolumeThreshold:
		return weightHighVolume
	case count > midVolumeThreshold:
		return weightMidVolume
	default:
		return 0
	}
}

// MatchBrands scores every brand in the pool against every partnership and
// emits one MatchResult per partnership, ranked descending by score and
// truncated to topK (DefaultTopK when topK is not positive).
//
// Reproducibility: brands are iterated in ascending ID order and the sort
// is stable, so equal scores always rank in ID order.
func MatchBrands(partnerships []models.PartnershipRecord, brands []models.BrandRecord, topK int) []models.MatchResult {
	if topK <= 0 {
		topK = DefaultTopK
	}

	pool := make([]models.BrandRecord, len(brands))
	copy(pool, brands)
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	results := make([]models.MatchResult, 0, len(partnerships))
	for i := range partnerships {
		p := &partnerships[i]

		matches := make([]models.BrandMatch, 0, len(pool))
		for j := range pool {
			b := &pool[j]
			score, breakdown := ScorePair(p, b)
			matches = append(matches, models.BrandMatch{
				BrandID:   b.ID,
				BrandName: b.Name,
				Score:     score,
				Breakdown: breakdown,
			})
		}

		sort.SliceStable(matches, func(a, b int) bool {
			return matches[a].Score > matches[b].Score
		})
		if len(matches) > topK {
			matches = matches[:topK]
		}

		results = append(results, models.MatchResult{
			PartnershipID: p.ID,
			Matches:       matches,
		})
	}
	return results
}

// DefaultPoolCaps is the stratified per-status cap applied by CapBrandPool
// when the caller does not supply its own.
var DefaultPoolCaps = map[models.ClientStatus]int{
	models.StatusActive:          150,
	models.StatusPending:         75,
	models.StatusPendingProspect: 75,
}

// capOtherStatuses bounds brands whose status has no explicit cap.
const capOtherStatuses = 50

// CapBrandPool stratifies the brand pool by client status with fixed
// per-bucket limits, in ascending ID order within each bucket. This keeps
// the scorer's cost bounded regardless of cache size.
func CapBrandPool(brands []models.BrandRecord, caps map[models.ClientStatus]int) []models.BrandRecord {
	if caps == nil {
		caps = DefaultPoolCaps
	}

	ordered := make([]models.BrandRecord, len(brands))
	copy(ordered, brands)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	taken := make(map[models.ClientStatus]int, len(caps))
	out := make([]models.BrandRecord, 0, len(ordered))
	for _, b := range ordered {
		limit, ok := caps[b.ClientStatus]
		if !ok {
			limit = capOtherStatuses
		}
		if taken[b.ClientStatus] >= limit {
			continue
		}
		taken[b.ClientStatus]++
		out = append(out, b)
	}
	return out
}
