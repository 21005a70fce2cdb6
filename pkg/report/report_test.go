package report_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assureops/crosscheck/pkg/compare"
	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/report"
	"github.com/assureops/crosscheck/pkg/score"
)

func decl(ref string, j declarations.Jurisdiction, active bool) declarations.Declaration {
	d := declarations.Declaration{
		Reference:    declarations.Reference(ref),
		Name:         "Event " + ref,
		Category:     declarations.CategoryFlood,
		Jurisdiction: j,
	}
	if active {
		d.RawEndDate = "-"
		d.Active = true
	} else {
		end := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		d.RawEndDate = "1 Mar 2025"
		d.EndDate = &end
	}
	return d
}

func TestBuildReportCounts(t *testing.T) {
	a := []declarations.Declaration{
		decl("AGRN-1", declarations.JurisdictionNSW, true),
		decl("AGRN-2", declarations.JurisdictionQLD, true),
		decl("AGRN-3", declarations.JurisdictionQLD, false),
	}
	b := []declarations.Declaration{
		decl("AGRN-1", declarations.JurisdictionNSW, true),
		decl("AGRN-2", declarations.JurisdictionQLD, false),
	}

	discrepancies := []compare.Discrepancy{{
		Kind:      compare.KindActiveStatusMismatch,
		Reference: "AGRN-2",
		Severity:  compare.SeverityCritical,
	}}
	result := score.Score(discrepancies)

	r := report.Build(a, b, discrepancies, result)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", r.ID.String())
	assert.Equal(t, report.SchemaVersion, r.SchemaVersion)
	assert.Equal(t, report.SourceCounts{Total: 3, Active: 2}, r.SourceA)
	assert.Equal(t, report.SourceCounts{Total: 2, Active: 1}, r.SourceB)
	assert.Equal(t, result.Score, r.ConfidenceScore)
	assert.False(t, r.Passed)
	assert.Equal(t, score.RecommendationNeedsReview, r.Recommendation)
	assert.Equal(t, 1, r.CriticalCount())

	require.Len(t, r.Jurisdictions, 2)
	assert.Equal(t, declarations.JurisdictionNSW, r.Jurisdictions[0].Jurisdiction)
	assert.Equal(t, 1, r.Jurisdictions[0].ActiveA)
	assert.Equal(t, 1, r.Jurisdictions[0].ActiveB)
	assert.Equal(t, declarations.JurisdictionQLD, r.Jurisdictions[1].Jurisdiction)
	assert.Equal(t, 1, r.Jurisdictions[1].ActiveA)
	assert.Equal(t, 0, r.Jurisdictions[1].ActiveB)
}

func TestEvidenceRoundTrip(t *testing.T) {
	a := []declarations.Declaration{decl("AGRN-1", declarations.JurisdictionVIC, true)}
	b := []declarations.Declaration{decl("AGRN-1", declarations.JurisdictionVIC, true)}

	r := report.Build(a, b, nil, score.Score(nil))

	dir := t.TempDir()
	path, err := report.WriteEvidence(dir, &r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "comparison_"+r.ID.String()+".yaml"), path)

	loaded, err := report.ReadEvidence(path)
	require.NoError(t, err)
	assert.Equal(t, r.ID, loaded.ID)
	assert.Equal(t, r.ConfidenceScore, loaded.ConfidenceScore)
	assert.Equal(t, r.Recommendation, loaded.Recommendation)
	assert.Equal(t, r.SourceA, loaded.SourceA)
}

func TestReportSummaryLine(t *testing.T) {
	r := report.ComparisonReport{
		ConfidenceScore: 90,
		Recommendation:  score.RecommendationNeedsReview,
		Discrepancies: []compare.Discrepancy{
			{Kind: compare.KindFieldMismatch, Severity: compare.SeverityWarning},
			{Kind: compare.KindActiveStatusMismatch, Severity: compare.SeverityCritical},
		},
	}
	assert.Equal(t, "score=90 recommendation=NEEDS_REVIEW discrepancies=2 critical=1", r.Summary())
}
