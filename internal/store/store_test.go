package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assureops/crosscheck/internal/store"
	"github.com/assureops/crosscheck/pkg/compare"
	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/errors"
	"github.com/assureops/crosscheck/pkg/report"
	"github.com/assureops/crosscheck/pkg/score"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "crosscheck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func decl(ref string, active bool) declarations.Declaration {
	d := declarations.Declaration{
		Reference:    declarations.Reference(ref),
		Name:         "Event " + ref,
		Category:     declarations.CategoryFlood,
		Jurisdiction: declarations.JurisdictionNSW,
	}
	if active {
		d.RawEndDate = "-"
		d.Active = true
	} else {
		end := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
		d.RawEndDate = "1 Feb 2025"
		d.EndDate = &end
	}
	return d
}

func TestReplaceSourceRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first := []declarations.Declaration{decl("AGRN-2", true), decl("AGRN-1", false)}
	require.NoError(t, s.ReplaceSource(ctx, "registry-browser", first, 0))

	got, err := s.LoadSource(ctx, "registry-browser")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by reference.
	assert.Equal(t, declarations.Reference("AGRN-1"), got[0].Reference)
	assert.Equal(t, declarations.Reference("AGRN-2"), got[1].Reference)
	assert.True(t, got[1].Active)
	require.NotNil(t, got[0].EndDate)

	// Replacing drops the previous run entirely.
	require.NoError(t, s.ReplaceSource(ctx, "registry-browser", []declarations.Declaration{decl("AGRN-3", true)}, 0))
	got, err = s.LoadSource(ctx, "registry-browser")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, declarations.Reference("AGRN-3"), got[0].Reference)
}

func TestReplaceSourceDuplicateKeyKeepsLast(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first := decl("AGRN-1", true)
	second := decl("AGRN-1", true)
	second.Name = "Event AGRN-1 (amended)"

	// The same natural key twice in one run must not abort the ingest.
	require.NoError(t, s.ReplaceSource(ctx, "registry-browser", []declarations.Declaration{first, second}, 0))

	got, err := s.LoadSource(ctx, "registry-browser")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Event AGRN-1 (amended)", got[0].Name)
}

func TestSourceExcludedRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	// Never-staged sources report zero, not an error.
	n, err := s.SourceExcluded(ctx, "registry-browser")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.ReplaceSource(ctx, "registry-browser", []declarations.Declaration{decl("AGRN-1", true)}, 3))
	n, err = s.SourceExcluded(ctx, "registry-browser")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// The next run supersedes the count.
	require.NoError(t, s.ReplaceSource(ctx, "registry-browser", []declarations.Declaration{decl("AGRN-1", true)}, 0))
	n, err = s.SourceExcluded(ctx, "registry-browser")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSourcesAreIsolated(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceSource(ctx, "registry-browser", []declarations.Declaration{decl("AGRN-1", true)}, 0))
	require.NoError(t, s.ReplaceSource(ctx, "registry-crawler", []declarations.Declaration{decl("AGRN-2", true)}, 0))

	browser, err := s.LoadSource(ctx, "registry-browser")
	require.NoError(t, err)
	crawler, err := s.LoadSource(ctx, "registry-crawler")
	require.NoError(t, err)
	assert.Len(t, browser, 1)
	assert.Len(t, crawler, 1)
	assert.NotEqual(t, browser[0].Reference, crawler[0].Reference)
}

func TestReportPersistence(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	a := []declarations.Declaration{decl("AGRN-1", true)}
	r := report.Build(a, a, []compare.Discrepancy{{
		Kind:      compare.KindFieldMismatch,
		Reference: "AGRN-1",
		Severity:  compare.SeverityWarning,
		Details:   map[string]string{"field": "name"},
	}}, score.Score(nil))

	require.NoError(t, s.AppendReport(ctx, &r))

	got, err := s.GetReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.ConfidenceScore, got.ConfidenceScore)
	require.Len(t, got.Discrepancies, 1)
	assert.Equal(t, compare.KindFieldMismatch, got.Discrepancies[0].Kind)

	_, err = s.GetReport(ctx, uuid.New())
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestListReportsNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	a := []declarations.Declaration{decl("AGRN-1", true)}
	first := report.Build(a, a, nil, score.Score(nil))
	require.NoError(t, s.AppendReport(ctx, &first))

	second := report.Build(a, a, nil, score.Score(nil))
	second.GeneratedAt = second.GeneratedAt.Add(time.Minute)
	require.NoError(t, s.AppendReport(ctx, &second))

	got, err := s.ListReports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)

	limited, err := s.ListReports(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}

func TestIndexSnapshotReplaceIsAtomic(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	baseline, err := s.PreviousIndex(ctx)
	require.NoError(t, err)
	assert.Empty(t, baseline)

	entries := []declarations.IndexEntry{
		{Reference: "AGRN-1", RawEndDate: "-", Active: true, Jurisdiction: declarations.JurisdictionQLD},
		{Reference: "AGRN-2", RawEndDate: "1 Feb 2025", Active: false, Jurisdiction: declarations.JurisdictionWA},
	}
	require.NoError(t, s.ReplaceIndex(ctx, entries))

	got, err := s.PreviousIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	// A second replace fully supersedes the first snapshot.
	replacement := []declarations.IndexEntry{
		{Reference: "AGRN-3", RawEndDate: "-", Active: true, Jurisdiction: declarations.JurisdictionNSW},
	}
	require.NoError(t, s.ReplaceIndex(ctx, replacement))
	got, err = s.PreviousIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func TestAlertsRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	a := []declarations.Declaration{decl("AGRN-1", true)}
	r := report.Build(a, a, nil, score.Score(nil))
	require.NoError(t, s.AppendReport(ctx, &r))

	require.NoError(t, s.SaveAlert(ctx, r.ID, "critical", "active count mismatch between sources"))

	alerts, err := s.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, r.ID, alerts[0].ReportID)
	assert.Equal(t, "critical", alerts[0].Severity)
	assert.False(t, alerts[0].Acknowledged)
}
