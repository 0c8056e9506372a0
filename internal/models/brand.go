// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package models

import (
	"time"
)

// ClientStatus is the lifecycle status of a brand in the CRM.
type ClientStatus string

// Known client statuses. The CRM is free-text tolerant, so unknown values
// round-trip unchanged; the predicate only ever tests the constants below.
const (
	StatusActive          ClientStatus = "Active"
	StatusPending         ClientStatus = "Pending"
	StatusPendingProspect ClientStatus = "Pending Prospect"
	StatusInactive        ClientStatus = "Inactive"
	StatusContract        ClientStatus = "Contract"
)

// RelationshipPartnerAgencyClient marks brands managed through a partner
// agency. These are cache members regardless of status or owner assignment.
const RelationshipPartnerAgencyClient = "Partner Agency Client"

// BrandRecord is the local reflection of a CRM brand (company) record.
// The CRM owns the record; the synchronizer owns the cached copy.
type BrandRecord struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Category         string       `json:"category,omitempty"`
	Subcategories    []string     `json:"subcategories,omitempty"`
	TargetAges       []string     `json:"target_ages,omitempty"`
	ClientStatus     ClientStatus `json:"client_status,omitempty"`
	ClientType       string       `json:"client_type,omitempty"`
	RelationshipType string       `json:"relationship_type,omitempty"`
	PartnershipCount int          `json:"partnership_count"`
	DealsCount       int          `json:"deals_count"`
	OwnerAssigned    bool         `json:"owner_assigned"`
	LastModifiedAt   time.Time    `json:"last_modified_at,omitempty"`
	OneSheetLink     string       `json:"one_sheet_link,omitempty"`
}

// CacheSnapshot is a complete, timestamped copy of the brand cache.
// Replaced wholesale on full rebuild; mutated in place during incremental
// reconciliation. Membership invariant: no duplicate IDs (enforced by the
// map key), and every member satisfies the sync predicate.
type CacheSnapshot struct {
	Records     map[string]BrandRecord `json:"records"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// NewCacheSnapshot returns an empty snapshot stamped with the given time.
func NewCacheSnapshot(generatedAt time.Time) *CacheSnapshot {
	return &CacheSnapshot{
		Records:     make(map[string]BrandRecord),
		GeneratedAt: generatedAt,
	}
}

// Clone returns a deep copy of the snapshot. Reconciliation works on a clone
// so a failed persist never leaves a half-mutated snapshot behind.
func (s *CacheSnapshot) Clone() *CacheSnapshot {
	out := &CacheSnapshot{
		Records:     make(map[string]BrandRecord, len(s.Records)),
		GeneratedAt: s.GeneratedAt,
	}
	for id, rec := range s.Records {
		out.Records[id] = rec
	}
	return out
}

// ChangeEvent is a partial-update notification from the CRM event feed.
// Properties carries only the changed fields, never a full record image,
// and property names may be aliases (canonicalize before use).
type ChangeEvent struct {
	RecordID   string            `json:"record_id"`
	Properties map[string]string `json:"properties"`
}

// BrandMatch is one scored candidate inside a MatchResult.
type BrandMatch struct {
	BrandID   string         `json:"brand_id"`
	BrandName string         `json:"brand_name,omitempty"`
	Score     int            `json:"score"`
	Breakdown map[string]int `json:"breakdown,omitempty"`
}

// MatchResult ranks candidate brands for a single partnership. Derived data:
// recomputed on demand, never persisted as authoritative state.
type MatchResult struct {
	PartnershipID string       `json:"partnership_id"`
	Matches       []BrandMatch `json:"matches"`
}
