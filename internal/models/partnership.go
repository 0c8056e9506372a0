// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package models

import (
	"strings"
	"time"
)

// PartnershipRecord is a production (deal) record from the CRM pipeline.
// Read-only input to the resolver and the compatibility scorer.
type PartnershipRecord struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Genres        []string  `json:"genres,omitempty"`
	TargetRating  string    `json:"target_rating,omitempty"`
	ReleaseDate   string    `json:"release_date,omitempty"`
	StartDate     string    `json:"start_date,omitempty"`
	Synopsis      string    `json:"synopsis,omitempty"`
	PipelineStage string    `json:"pipeline_stage,omitempty"`
	Priority      string    `json:"priority,omitempty"`
	Distributor   string    `json:"distributor,omitempty"`
	ModifiedAt    time.Time `json:"modified_at,omitempty"`
}

// placeholderTitles are values the CRM uses when a real title is not yet
// known. They carry no information and must never be served as data.
var placeholderTitles = map[string]struct{}{
	"untitled":         {},
	"tbd":              {},
	"tba":              {},
	"pending":          {},
	"n/a":              {},
	"none":             {},
	"placeholder":      {},
	"working title":    {},
	"untitled project": {},
}

// NormalizePlaceholder maps known placeholder titles to the explicit absent
// value (empty string). Any other value passes through trimmed.
func NormalizePlaceholder(s string) string {
	trimmed := strings.TrimSpace(s)
	if _, ok := placeholderTitles[strings.ToLower(trimmed)]; ok {
		return ""
	}
	return trimmed
}

// NormalizePlaceholders scrubs placeholder values from the free-text fields
// of a resolved partnership before it is cached or returned.
func (p *PartnershipRecord) NormalizePlaceholders() {
	p.Name = NormalizePlaceholder(p.Name)
	p.Distributor = NormalizePlaceholder(p.Distributor)
	p.TargetRating = NormalizePlaceholder(p.TargetRating)
	p.Priority = NormalizePlaceholder(p.Priority)
}

// partnershipAliases maps remote deal property spellings onto the
// PartnershipRecord fields, same boundary rule as the brand aliases.
var partnershipAliases = map[string]string{
	"name":             "name",
	"dealname":         "name",
	"deal_name":        "name",
	"title":            "name",
	"genres":           "genres",
	"genre":            "genres",
	"genre_tags":       "genres",
	"target_rating":    "target_rating",
	"content_rating":   "target_rating",
	"rating":           "target_rating",
	"release_date":     "release_date",
	"releasedate":      "release_date",
	"premiere_date":    "release_date",
	"start_date":       "start_date",
	"production_start": "start_date",
	"synopsis":         "synopsis",
	"description":      "synopsis",
	"logline":          "synopsis",
	"pipeline_stage":   "pipeline_stage",
	"dealstage":        "pipeline_stage",
	"stage":            "pipeline_stage",
	"priority":         "priority",
	"deal_priority":    "priority",
	"distributor":      "distributor",
	"network":          "distributor",
	"platform":         "distributor",
}

// PartnershipFromProperties builds a partnership record from a raw remote
// property map, collapsing aliases at the boundary.
func PartnershipFromProperties(id string, raw map[string]string, modifiedAt time.Time) PartnershipRecord {
	rec := PartnershipRecord{ID: id, ModifiedAt: modifiedAt}
	for k, v := range raw {
		canonical, ok := partnershipAliases[strings.ToLower(strings.TrimSpace(k))]
		if !ok {
			continue
		}
		value := strings.TrimSpace(v)
		switch canonical {
		case "name":
			rec.Name = value
		case "genres":
			rec.Genres = ParseList(value)
		case "target_rating":
			rec.TargetRating = value
		case "release_date":
			rec.ReleaseDate = value
		case "start_date":
			rec.StartDate = value
		case "synopsis":
			rec.Synopsis = value
		case "pipeline_stage":
			rec.PipelineStage = value
		case "priority":
			rec.Priority = value
		case "distributor":
			rec.Distributor = value
		}
	}
	return rec
}
