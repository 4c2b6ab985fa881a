// Package model defines the core data structures shared across webpulse.
//
// This package contains the following main types:
//   - Issue: A single detected defect with its category, severity and remediation
//   - Report: The complete result of auditing one URL
//   - PageMeta: SEO metadata extracted from the page
//   - PageStats: Element counts and derived ratios gathered by the analyzers
//
// Design decision: We keep the models in their own package so that the
// analyzers, the aggregator, the report writers, the database and the HTTP
// API can all share them without import cycles.
//
// The models serialize to JSON with the field names that API clients and
// the scan history rely on, so renaming a JSON tag is a breaking change.
package model
