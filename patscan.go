// Package patscan extracts structured metadata from patent full-text pages
// found by a keyword search and keeps the results in a sorted, deduplicated
// dataset that grows across repeated runs.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package patscan
