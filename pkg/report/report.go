// Package report assembles the output of one comparison run into a durable,
// auditable record. Reports carry everything a reviewer needs to reconstruct
// the verdict: the counts each source produced, the full discrepancy list,
// and the resulting confidence score.
package report

import (
	"fmt"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/assureops/crosscheck/pkg/compare"
	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/score"
)

// SchemaVersion identifies the report layout. Bump when the persisted shape
// changes so old evidence files stay interpretable.
const SchemaVersion = 1

// SourceCounts summarizes what one collection source produced.
type SourceCounts struct {
	Total    int `json:"total"    yaml:"total"`    // total records staged
	Active   int `json:"active"   yaml:"active"`   // records classified active
	Excluded int `json:"excluded" yaml:"excluded"` // records excluded at ingest
}

// JurisdictionSummary holds the per-jurisdiction active counts from both
// sources side by side.
type JurisdictionSummary struct {
	Jurisdiction declarations.Jurisdiction `json:"jurisdiction" yaml:"jurisdiction"`
	ActiveA      int                       `json:"active_a"     yaml:"active_a"`
	ActiveB      int                       `json:"active_b"     yaml:"active_b"`
}

// ComparisonReport is the persisted outcome of one comparison run.
type ComparisonReport struct {
	ID            uuid.UUID `json:"id"             yaml:"id"`             // report identifier
	GeneratedAt   utc.Time  `json:"generated_at"   yaml:"generated_at"`   // when the comparison ran
	SchemaVersion int       `json:"schema_version" yaml:"schema_version"` // report layout version

	SourceA SourceCounts `json:"source_a" yaml:"source_a"` // counts from the first source
	SourceB SourceCounts `json:"source_b" yaml:"source_b"` // counts from the second source

	Jurisdictions []JurisdictionSummary `json:"jurisdictions" yaml:"jurisdictions"` // per-jurisdiction active counts
	Discrepancies []compare.Discrepancy `json:"discrepancies" yaml:"discrepancies"` // sorted discrepancy list

	ConfidenceScore int                  `json:"confidence_score" yaml:"confidence_score"` // 0..100
	Passed          bool                 `json:"passed"           yaml:"passed"`           // safe to run billing
	Recommendation  score.Recommendation `json:"recommendation"   yaml:"recommendation"`   // operational verdict
}

// Build assembles a report from the two normalized record sets, their
// discrepancies, and the scoring result.
func Build(listA, listB []declarations.Declaration, discrepancies []compare.Discrepancy, result score.Result) ComparisonReport {
	return ComparisonReport{
		ID:            uuid.New(),
		GeneratedAt:   utc.Now(),
		SchemaVersion: SchemaVersion,
		SourceA: SourceCounts{
			Total:  len(listA),
			Active: declarations.ActiveCount(listA),
		},
		SourceB: SourceCounts{
			Total:  len(listB),
			Active: declarations.ActiveCount(listB),
		},
		Jurisdictions:   jurisdictionSummaries(listA, listB),
		Discrepancies:   discrepancies,
		ConfidenceScore: result.Score,
		Passed:          result.Passed,
		Recommendation:  result.Recommendation,
	}
}

// CriticalCount returns the number of critical discrepancies in the report.
func (r *ComparisonReport) CriticalCount() int {
	n := 0
	for _, d := range r.Discrepancies {
		if d.Severity == compare.SeverityCritical {
			n++
		}
	}
	return n
}

// Summary returns a one-line description suitable for logs and listings.
func (r *ComparisonReport) Summary() string {
	return fmt.Sprintf("score=%d recommendation=%s discrepancies=%d critical=%d",
		r.ConfidenceScore, r.Recommendation, len(r.Discrepancies), r.CriticalCount())
}

// jurisdictionSummaries builds the side-by-side active counts for every
// jurisdiction seen in either source, in the fixed known-jurisdiction order
// followed by any unknown codes.
func jurisdictionSummaries(listA, listB []declarations.Declaration) []JurisdictionSummary {
	countsA := declarations.ActiveByJurisdiction(listA)
	countsB := declarations.ActiveByJurisdiction(listB)

	seen := make(map[declarations.Jurisdiction]bool)
	var out []JurisdictionSummary

	add := func(j declarations.Jurisdiction) {
		if seen[j] {
			return
		}
		seen[j] = true
		a, b := countsA[j], countsB[j]
		if a == 0 && b == 0 {
			return
		}
		out = append(out, JurisdictionSummary{Jurisdiction: j, ActiveA: a, ActiveB: b})
	}

	for _, j := range declarations.Jurisdictions() {
		add(j)
	}
	for _, list := range [][]declarations.Declaration{listA, listB} {
		for _, d := range list {
			add(d.Jurisdiction)
		}
	}
	return out
}
