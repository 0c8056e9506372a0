// Brandscope - Sponsorship Intelligence and Brand-Partnership Matching
// Copyright 2026 Brandscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandscope/brandscope

// Package models defines the core data types shared across Brandscope:
// brand records mirrored from the CRM, partnership (production) records,
// cache snapshots, change events, and match results.
//
// The CRM exposes the same concept under many property-name aliases
// (legacy imports, integration-specific prefixes). All of that variance is
// collapsed at the data boundary by CanonicalProperties; internal logic only
// ever touches canonical property names.
package models
