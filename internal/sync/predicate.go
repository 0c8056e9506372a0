// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package sync

import (
	"github.com/brandscope/brandscope/internal/crm"
	"github.com/brandscope/brandscope/internal/models"
)

// memberStatuses are the client statuses eligible for cache membership
// through the status branch of the predicate.
var memberStatuses = map[models.ClientStatus]struct{}{
	models.StatusActive:          {},
	models.StatusPending:         {},
	models.StatusPendingProspect: {},
}

// MemberPredicate is the single source of truth for cache membership:
//
//	(status ∈ {Active, Pending Prospect, Pending} ∧ hasCategory ∧ ownerAssigned)
//	∨ relationshipType = Partner Agency Client
//
// The remote filters built by membershipFilterGroups only pre-narrow the
// fetch; membership is always decided here, over canonical fields.
func MemberPredicate(rec models.BrandRecord) bool {
	if rec.RelationshipType == models.RelationshipPartnerAgencyClient {
		return true
	}
	if _, ok := memberStatuses[rec.ClientStatus]; !ok {
		return false
	}
	return rec.Category != "" && rec.OwnerAssigned
}

// membershipFilterGroups expresses the predicate as remote search filters:
// one conjunction group per disjunct.
func membershipFilterGroups() []crm.FilterGroup {
	statuses := []string{
		string(models.StatusActive),
		string(models.StatusPendingProspect),
		string(models.StatusPending),
	}
	return []crm.FilterGroup{
		{Filters: []crm.Filter{
			{Property: "client_status", Operator: crm.OpIn, Values: statuses},
			{Property: "category", Operator: crm.OpHasProperty},
			{Property: "hubspot_owner_id", Operator: crm.OpHasProperty},
		}},
		{Filters: []crm.Filter{
			{Property: "relationship_type", Operator: crm.OpEq, Value: models.RelationshipPartnerAgencyClient},
		}},
	}
}

// brandProperties is the property projection requested from the remote
// store for cache membership and scoring.
var brandProperties = []string{
	"name", "category", "subcategories", "target_ages",
	"client_status", "client_type", "relationship_type",
	"partnership_count", "num_associated_deals", "hubspot_owner_id",
	"hs_lastmodifieddate", "one_sheet_link",
}
