// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

package models

import (
	"strconv"
	"strings"
	"time"
)

// Canonical property names. Everything downstream of CanonicalProperties
// uses these and only these.
const (
	PropName             = "name"
	PropCategory         = "category"
	PropSubcategories    = "subcategories"
	PropTargetAges       = "target_ages"
	PropClientStatus     = "client_status"
	PropClientType       = "client_type"
	PropRelationshipType = "relationship_type"
	PropPartnershipCount = "partnership_count"
	PropDealsCount       = "deals_count"
	PropOwnerID          = "owner_id"
	PropLastModifiedAt   = "last_modified_at"
	PropOneSheetLink     = "one_sheet_link"
)

// propertyAliases maps every known remote spelling of a property to its
// canonical name. The CRM accumulated these over years of imports and
// integrations; new aliases go here and nowhere else.
var propertyAliases = map[string]string{
	"name":                  PropName,
	"company_name":          PropName,
	"brand_name":            PropName,
	"category":              PropCategory,
	"industry":              PropCategory,
	"brand_category":        PropCategory,
	"primary_category":      PropCategory,
	"subcategories":         PropSubcategories,
	"sub_categories":        PropSubcategories,
	"category_tags":         PropSubcategories,
	"secondary_categories":  PropSubcategories,
	"target_ages":           PropTargetAges,
	"target_age_ranges":     PropTargetAges,
	"audience_ages":         PropTargetAges,
	"target_demo":           PropTargetAges,
	"client_status":         PropClientStatus,
	"clientstatus":          PropClientStatus,
	"status":                PropClientStatus,
	"client_status_v2":      PropClientStatus,
	"client_type":           PropClientType,
	"type_of_client":        PropClientType,
	"relationship_type":     PropRelationshipType,
	"relationship":          PropRelationshipType,
	"partner_relationship":  PropRelationshipType,
	"partnership_count":     PropPartnershipCount,
	"num_partnerships":      PropPartnershipCount,
	"partnerships":          PropPartnershipCount,
	"deals_count":           PropDealsCount,
	"num_associated_deals":  PropDealsCount,
	"associated_deals":      PropDealsCount,
	"owner_id":              PropOwnerID,
	"hubspot_owner_id":      PropOwnerID,
	"brand_owner":           PropOwnerID,
	"account_owner":         PropOwnerID,
	"last_modified_at":      PropLastModifiedAt,
	"hs_lastmodifieddate":   PropLastModifiedAt,
	"lastmodifieddate":      PropLastModifiedAt,
	"modified_at":           PropLastModifiedAt,
	"one_sheet_link":        PropOneSheetLink,
	"one_sheet":             PropOneSheetLink,
	"onesheet_url":          PropOneSheetLink,
}

// CanonicalProperties rewrites a raw property map onto canonical names.
// Unknown properties are dropped. When two aliases of the same property
// appear in one map, the canonical spelling wins; otherwise last in
// (map iteration) wins — the CRM never sends conflicting aliases in
// practice, so this is not load-bearing.
func CanonicalProperties(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		canonical, ok := propertyAliases[strings.ToLower(strings.TrimSpace(k))]
		if !ok {
			continue
		}
		if _, exists := out[canonical]; exists && strings.ToLower(k) != canonical {
			continue
		}
		out[canonical] = v
	}
	return out
}

// ApplyProperties merges canonical properties into a brand record.
// Incoming fields win; fields absent from props are retained.
func ApplyProperties(rec *BrandRecord, props map[string]string) {
	for name, value := range props {
		switch name {
		case PropName:
			rec.Name = strings.TrimSpace(value)
		case PropCategory:
			rec.Category = strings.TrimSpace(value)
		case PropSubcategories:
			rec.Subcategories = ParseList(value)
		case PropTargetAges:
			rec.TargetAges = ParseList(value)
		case PropClientStatus:
			rec.ClientStatus = ClientStatus(strings.TrimSpace(value))
		case PropClientType:
			rec.ClientType = strings.TrimSpace(value)
		case PropRelationshipType:
			rec.RelationshipType = strings.TrimSpace(value)
		case PropPartnershipCount:
			rec.PartnershipCount = parseCount(value)
		case PropDealsCount:
			rec.DealsCount = parseCount(value)
		case PropOwnerID:
			rec.OwnerAssigned = ownerAssigned(value)
		case PropLastModifiedAt:
			if t, ok := parseTimestamp(value); ok {
				rec.LastModifiedAt = t
			}
		case PropOneSheetLink:
			rec.OneSheetLink = strings.TrimSpace(value)
		}
	}
}

// BrandFromProperties builds a brand record from a canonical property map.
func BrandFromProperties(id string, props map[string]string) BrandRecord {
	rec := BrandRecord{ID: id}
	ApplyProperties(&rec, props)
	return rec
}

// ParseList splits a multi-value CRM property. The CRM delimits multi-select
// values with semicolons; comma-separated legacy values still occur.
func ParseList(value string) []string {
	sep := ";"
	if !strings.Contains(value, ";") {
		sep = ","
	}
	parts := strings.Split(value, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseCount(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ownerAssigned reports whether an owner property value denotes a real
// assignment. The CRM clears owners by sending "", "0", or "false".
func ownerAssigned(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "none":
		return false
	default:
		return true
	}
}

// parseTimestamp accepts RFC 3339 or epoch milliseconds (both occur in the
// CRM's export formats).
func parseTimestamp(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t, true
	}
	if ms, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}
