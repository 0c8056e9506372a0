// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package resolve

import (
	"sort"
	"strings"

	"github.com/brandscope/brandscope/internal/models"
)

// Match scoring weights. An exact full-name match is terminal at 100; the
// remaining weights accumulate per token.
const (
	scoreExactName     = 100
	scoreExactToken    = 10
	scorePartialToken  = 5
	scoreFirstWord     = 20
	scoreSimilarLength = 10
)

// candidate pairs a discovered record with its cascade-discovery position,
// which is the fixed tie-break for equal scores.
type candidate struct {
	record models.PartnershipRecord
	order  int
	score  int
}

// scoreName computes the deterministic match score between the normalized
// input and one candidate name.
func scoreName(input, candidateName string) int {
	normalized := NormalizeName(candidateName)
	if normalized == input {
		return scoreExactName
	}

	inputTokens := tokens(input)
	candidateTokens := tokens(normalized)
	if len(inputTokens) == 0 || len(candidateTokens) == 0 {
		return 0
	}

	candidateSet := make(map[string]struct{}, len(candidateTokens))
	for _, t := range candidateTokens {
		candidateSet[t] = struct{}{}
	}

	score := 0
	for _, t := range inputTokens {
		if _, ok := candidateSet[t]; ok {
			score += scoreExactToken
			continue
		}
		if partialTokenMatch(t, candidateTokens) {
			score += scorePartialToken
		}
	}

	if inputTokens[0] == candidateTokens[0] {
		score += scoreFirstWord
	}

	diff := len(inputTokens) - len(candidateTokens)
	if diff < 0 {
		diff = -diff
	}
	if diff <= 1 {
		score += scoreSimilarLength
	}

	return score
}

// partialTokenMatch reports whether an input token substring-matches any
// candidate token in either direction.
func partialTokenMatch(t string, candidateTokens []string) bool {
	for _, c := range candidateTokens {
		if strings.Contains(c, t) || strings.Contains(t, c) {
			return true
		}
	}
	return false
}

// rankCandidates scores all discovered candidates and orders them by score
// descending. The sort is stable over cascade-discovery order, so equal
// scores resolve the same way on every run.
func rankCandidates(input string, candidates []candidate) []candidate {
	for i := range candidates {
		candidates[i].score = scoreName(input, candidates[i].record.Name)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates
}
