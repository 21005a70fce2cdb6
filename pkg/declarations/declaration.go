// Package declarations defines the canonical record shapes shared by every
// reconciliation component. Both collection pipelines are mapped into these
// types before any comparison happens, so the comparator never sees a
// source-specific field name or status convention.
package declarations

import (
	"time"
)

// Reference is the stable external identifier shared by both sources for the
// same real-world declaration (the government reference number). It is unique
// within one source's dataset and joins records across sources.
type Reference string

// String returns the string representation of a Reference.
func (r Reference) String() string {
	return string(r)
}

// Declaration is the canonical unit of comparison. One is produced per raw
// record by the normalizer; Active and EndDate are always derived by the
// status classifier, never taken from a source as ground truth.
type Declaration struct {
	Reference    Reference    `json:"reference" yaml:"reference"`                           // Natural key used to join across sources
	Name         string       `json:"name" yaml:"name"`                                     // Event name as published by the registry
	Category     Category     `json:"category" yaml:"category"`                             // Disaster category
	Jurisdiction Jurisdiction `json:"jurisdiction" yaml:"jurisdiction"`                     // Regional code
	StartDate    *time.Time   `json:"start_date,omitempty" yaml:"start_date,omitempty"`     // Declaration start date if known
	RawEndDate   string       `json:"raw_end_date" yaml:"raw_end_date"`                     // End-date text exactly as collected, retained for audit
	EndDate      *time.Time   `json:"end_date,omitempty" yaml:"end_date,omitempty"`         // Resolved end date, nil while the declaration is open
	Active       bool         `json:"active" yaml:"active"`                                 // Derived: true iff EndDate is nil
	RegionCount  int          `json:"region_count,omitempty" yaml:"region_count,omitempty"` // Count of affected sub-regions if known
}

// IndexEntry is the lightweight per-declaration shape collected by the fast
// table-only index scan. A full snapshot of these is diffed against the last
// stored snapshot to decide whether an expensive full collection is needed.
type IndexEntry struct {
	Reference    Reference    `json:"reference" yaml:"reference"`
	RawEndDate   string       `json:"raw_end_date" yaml:"raw_end_date"`
	Active       bool         `json:"active" yaml:"active"`
	Jurisdiction Jurisdiction `json:"jurisdiction" yaml:"jurisdiction"`
}

// ActiveCount returns how many declarations in the set are currently active.
func ActiveCount(decls []Declaration) int {
	n := 0
	for _, d := range decls {
		if d.Active {
			n++
		}
	}
	return n
}

// ActiveByJurisdiction returns per-jurisdiction counts of active declarations.
func ActiveByJurisdiction(decls []Declaration) map[Jurisdiction]int {
	counts := make(map[Jurisdiction]int)
	for _, d := range decls {
		if d.Active {
			counts[d.Jurisdiction]++
		}
	}
	return counts
}
