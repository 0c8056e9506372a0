// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPropertiesAliases(t *testing.T) {
	raw := map[string]string{
		"industry":             "Automotive",
		"hubspot_owner_id":     "owner-7",
		"hs_lastmodifieddate":  "2026-08-01T10:00:00Z",
		"num_associated_deals": "4",
		"Company_Name":         "Acme Motors",
		"unknown_field":        "dropped",
	}

	props := CanonicalProperties(raw)
	assert.Equal(t, "Automotive", props[PropCategory])
	assert.Equal(t, "owner-7", props[PropOwnerID])
	assert.Equal(t, "4", props[PropDealsCount])
	assert.Equal(t, "Acme Motors", props[PropName])
	assert.NotContains(t, props, "unknown_field")
	assert.NotContains(t, props, "industry")
}

func TestCanonicalSpellingWinsOverAlias(t *testing.T) {
	raw := map[string]string{
		"category": "Canonical",
		"industry": "Alias",
	}
	props := CanonicalProperties(raw)
	assert.Equal(t, "Canonical", props[PropCategory])
}

func TestBrandFromProperties(t *testing.T) {
	rec := BrandFromProperties("b1", map[string]string{
		PropName:             "Acme Motors",
		PropCategory:         "Automotive",
		PropSubcategories:    "EVs;Trucks",
		PropTargetAges:       "18-34;35-54",
		PropClientStatus:     "Active",
		PropRelationshipType: "Direct",
		PropPartnershipCount: "12",
		PropOwnerID:          "owner-7",
		PropLastModifiedAt:   "2026-08-01T10:00:00Z",
	})

	assert.Equal(t, "b1", rec.ID)
	assert.Equal(t, "Acme Motors", rec.Name)
	assert.Equal(t, StatusActive, rec.ClientStatus)
	assert.Equal(t, []string{"EVs", "Trucks"}, rec.Subcategories)
	assert.Equal(t, []string{"18-34", "35-54"}, rec.TargetAges)
	assert.Equal(t, 12, rec.PartnershipCount)
	assert.True(t, rec.OwnerAssigned)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), rec.LastModifiedAt.UTC())
}

func TestApplyPropertiesPartialUpdateRetainsFields(t *testing.T) {
	rec := BrandRecord{
		ID: "b1", Name: "Acme", Category: "Automotive",
		ClientStatus: StatusActive, OwnerAssigned: true,
	}
	ApplyProperties(&rec, map[string]string{PropName: "Acme Motors"})

	assert.Equal(t, "Acme Motors", rec.Name)
	assert.Equal(t, "Automotive", rec.Category)
	assert.Equal(t, StatusActive, rec.ClientStatus)
	assert.True(t, rec.OwnerAssigned)
}

func TestOwnerAssigned(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"owner-7", true},
		{"42", true},
		{"", false},
		{"0", false},
		{"false", false},
		{"None", false},
		{"  ", false},
	}
	for _, tt := range tests {
		rec := BrandRecord{}
		ApplyProperties(&rec, map[string]string{PropOwnerID: tt.value})
		assert.Equal(t, tt.want, rec.OwnerAssigned, "value %q", tt.value)
	}
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseList("a;b"))
	assert.Equal(t, []string{"a", "b"}, ParseList("a, b"))
	// Semicolons take precedence so comma-bearing values survive.
	assert.Equal(t, []string{"Food, Beverage", "Retail"}, ParseList("Food, Beverage;Retail"))
	assert.Empty(t, ParseList(""))
	assert.Empty(t, ParseList(" ; ; "))
}

func TestParseTimestampEpochMillis(t *testing.T) {
	rec := BrandRecord{}
	ApplyProperties(&rec, map[string]string{PropLastModifiedAt: "1754042400000"})
	assert.Equal(t, int64(1754042400), rec.LastModifiedAt.Unix())

	// Garbage leaves the field untouched.
	before := rec.LastModifiedAt
	ApplyProperties(&rec, map[string]string{PropLastModifiedAt: "yesterday"})
	assert.Equal(t, before, rec.LastModifiedAt)
}

func TestParseCountNegativeAndGarbage(t *testing.T) {
	rec := BrandRecord{}
	ApplyProperties(&rec, map[string]string{PropPartnershipCount: "-3"})
	assert.Zero(t, rec.PartnershipCount)
	ApplyProperties(&rec, map[string]string{PropPartnershipCount: "many"})
	assert.Zero(t, rec.PartnershipCount)
}

func TestSnapshotClone(t *testing.T) {
	snap := NewCacheSnapshot(time.Now())
	snap.Records["b1"] = BrandRecord{ID: "b1", Name: "Acme"}

	clone := snap.Clone()
	clone.Records["b2"] = BrandRecord{ID: "b2"}
	delete(clone.Records, "b1")

	require.Contains(t, snap.Records, "b1")
	assert.NotContains(t, snap.Records, "b2")
}

func TestNormalizePlaceholders(t *testing.T) {
	rec := PartnershipRecord{
		Name:         "  17 Sundays ",
		Distributor:  "TBD",
		TargetRating: "n/a",
		Priority:     "High",
	}
	rec.NormalizePlaceholders()
	assert.Equal(t, "17 Sundays", rec.Name)
	assert.Empty(t, rec.Distributor)
	assert.Empty(t, rec.TargetRating)
	assert.Equal(t, "High", rec.Priority)
}

func TestPartnershipFromProperties(t *testing.T) {
	rec := PartnershipFromProperties("p1", map[string]string{
		"dealname":       "17 Sundays",
		"genre_tags":     "Drama;Family",
		"content_rating": "TV-PG",
		"logline":        "A quiet farm drama.",
		"dealstage":      "In Production",
		"network":        "Streamflix",
	}, time.Time{})

	assert.Equal(t, "17 Sundays", rec.Name)
	assert.Equal(t, []string{"Drama", "Family"}, rec.Genres)
	assert.Equal(t, "TV-PG", rec.TargetRating)
	assert.Equal(t, "A quiet farm drama.", rec.Synopsis)
	assert.Equal(t, "In Production", rec.PipelineStage)
	assert.Equal(t, "Streamflix", rec.Distributor)
}
