// Package score turns a set of cross-source discrepancies into a single
// confidence score and a go / no-go recommendation for the billing run.
//
// Scoring starts from 100 and subtracts a penalty per discrepancy, keyed on
// the discrepancy kind and severity. The score never goes below zero. A
// perfect score needs both a high number and a clean critical slate: any
// critical discrepancy fails the check regardless of the numeric score.
package score

import (
	"github.com/assureops/crosscheck/pkg/compare"
)

// Recommendation is the operational verdict attached to a comparison report.
type Recommendation string

const (
	RecommendationSafe        Recommendation = "SAFE"         // proceed with the billing run
	RecommendationNeedsReview Recommendation = "NEEDS_REVIEW" // hold for manual review
	RecommendationDoNotRun    Recommendation = "DO_NOT_RUN"   // block the billing run
)

// String returns the string representation of the recommendation.
func (r Recommendation) String() string {
	return string(r)
}

// Thresholds for the recommendation bands.
const (
	safeThreshold   = 95
	reviewThreshold = 85
)

// maxStatusMismatchPenalties caps how many active-status mismatches are
// charged individually. Beyond the cap the score is already deep in
// DO_NOT_RUN territory and further subtraction adds no signal.
const maxStatusMismatchPenalties = 3

type penaltyKey struct {
	kind     compare.Kind
	severity compare.Severity
}

var penalties = map[penaltyKey]int{
	{compare.KindActiveStatusMismatch, compare.SeverityCritical}: 10,
	{compare.KindFieldMismatch, compare.SeverityCritical}:        10,
	{compare.KindFieldMismatch, compare.SeverityWarning}:         3,
	{compare.KindCountMismatch, compare.SeverityCritical}:        30,
	{compare.KindCountMismatch, compare.SeverityWarning}:         10,
	{compare.KindRangeViolation, compare.SeverityCritical}:       20,
	{compare.KindMissingInSourceA, compare.SeverityCritical}:     5,
	{compare.KindMissingInSourceB, compare.SeverityCritical}:     5,
	{compare.KindDataQuality, compare.SeverityWarning}:           1,
	{compare.KindDataQuality, compare.SeverityInfo}:              0,
}

// Result is the scored outcome of one comparison run.
type Result struct {
	Score          int            `json:"score"          yaml:"score"`          // 0..100
	Passed         bool           `json:"passed"         yaml:"passed"`         // score >= 95 and no criticals
	Recommendation Recommendation `json:"recommendation" yaml:"recommendation"` // operational verdict
}

// Score computes the confidence score for a discrepancy set.
//
// Unknown kind/severity combinations charge the severity's default so that a
// new discrepancy kind can never silently score zero.
func Score(discrepancies []compare.Discrepancy) Result {
	score := 100
	statusMismatches := 0

	for _, d := range discrepancies {
		if d.Kind == compare.KindActiveStatusMismatch && d.Severity == compare.SeverityCritical {
			statusMismatches++
			if statusMismatches > maxStatusMismatchPenalties {
				continue
			}
		}
		score -= penalty(d)
	}
	if score < 0 {
		score = 0
	}

	critical := compare.HasCritical(discrepancies)
	rec := recommend(score, critical)

	return Result{
		Score:          score,
		Passed:         score >= safeThreshold && !critical,
		Recommendation: rec,
	}
}

func penalty(d compare.Discrepancy) int {
	if p, ok := penalties[penaltyKey{d.Kind, d.Severity}]; ok {
		return p
	}
	switch d.Severity {
	case compare.SeverityCritical:
		return 10
	case compare.SeverityWarning:
		return 3
	default:
		return 0
	}
}

func recommend(score int, critical bool) Recommendation {
	switch {
	case score >= safeThreshold && !critical:
		return RecommendationSafe
	case score >= reviewThreshold:
		// A high score with a critical finding lands here too: criticals
		// always need human eyes before the run proceeds.
		return RecommendationNeedsReview
	default:
		return RecommendationDoNotRun
	}
}
