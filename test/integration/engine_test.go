// Package integration exercises the full pipeline against a real SQLite
// datastore: ingest both sources, run the comparison, read the report and
// alert back, then run an index check.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assureops/crosscheck/internal/alert"
	"github.com/assureops/crosscheck/internal/config"
	"github.com/assureops/crosscheck/internal/engine"
	"github.com/assureops/crosscheck/internal/schedule"
	"github.com/assureops/crosscheck/internal/store"
	"github.com/assureops/crosscheck/pkg/compare"
	"github.com/assureops/crosscheck/pkg/normalize"
	"github.com/assureops/crosscheck/pkg/score"
)

func setup(t *testing.T) (*engine.Engine, *store.Store, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	v := viper.New()
	v.Set("database_path", filepath.Join(dir, "crosscheck.db"))
	v.Set("evidence_dir", filepath.Join(dir, "evidence"))
	cfg, err := config.Load(v)
	require.NoError(t, err)
	// Small fixtures would trip the default QLD/WA steady-state ranges.
	cfg.ExpectedRanges = nil

	s, err := store.Open(cfg.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return engine.New(s, alert.NewStoreNotifier(s), cfg), s, cfg
}

func browserRecord(ref, name, state, endDate string, lgas string) normalize.Record {
	return normalize.Record{
		"agrn_reference":   ref,
		"event_name":       name,
		"disaster_type":    "Flood",
		"state_code":       state,
		"declaration_date": "01 Mar 2025",
		"raw_end_date":     endDate,
		"lga_count":        lgas,
	}
}

func crawlerRecord(ref, name, state, endDate string, lgas string) normalize.Record {
	return normalize.Record{
		"agrn":       ref,
		"name":       name,
		"type":       "Flood",
		"state":      state,
		"start_date": "01 Mar 2025",
		"end_date":   endDate,
		"lga_count":  lgas,
	}
}

func TestEndToEndAgreementPasses(t *testing.T) {
	e, s, cfg := setup(t)
	ctx := context.Background()

	browser := []normalize.Record{
		browserRecord("AGRN-1240", "NSW Severe Weather", "NSW", "-", "12"),
		browserRecord("AGRN-1241", "VIC Flooding", "VIC", "15 Jan 2025", "8"),
	}
	crawler := []normalize.Record{
		crawlerRecord("AGRN-1240", "NSW Severe Weather", "NSW", "-", "12"),
		crawlerRecord("AGRN-1241", "VIC Flooding", "VIC", "15 Jan 2025", "8"),
	}

	_, problems, err := e.Ingest(ctx, cfg.SourceA, browser)
	require.NoError(t, err)
	assert.Empty(t, problems)
	_, problems, err = e.Ingest(ctx, cfg.SourceB, crawler)
	require.NoError(t, err)
	assert.Empty(t, problems)

	r, err := e.RunComparison(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, r.ConfidenceScore)
	assert.True(t, r.Passed)
	assert.Equal(t, score.RecommendationSafe, r.Recommendation)

	// The report row is durable.
	stored, err := s.GetReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ConfidenceScore, stored.ConfidenceScore)

	// The evidence file landed next to the datastore.
	evidence := filepath.Join(cfg.EvidenceDir, "comparison_"+r.ID.String()+".yaml")
	_, err = os.Stat(evidence)
	assert.NoError(t, err)

	// A passing run raises no alert.
	alerts, err := s.ListAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestEndToEndDisagreementAlerts(t *testing.T) {
	e, s, cfg := setup(t)
	ctx := context.Background()

	// The browser pipeline sees the declaration still active; the crawler
	// saw an end date. This is the exact failure the engine exists for.
	browser := []normalize.Record{
		browserRecord("AGRN-1240", "NSW Severe Weather", "NSW", "-", "12"),
	}
	crawler := []normalize.Record{
		crawlerRecord("AGRN-1240", "NSW Severe Weather", "NSW", "15 Jan 2025", "12"),
	}

	_, _, err := e.Ingest(ctx, cfg.SourceA, browser)
	require.NoError(t, err)
	_, _, err = e.Ingest(ctx, cfg.SourceB, crawler)
	require.NoError(t, err)

	r, err := e.RunComparison(ctx)
	require.NoError(t, err)

	assert.False(t, r.Passed)
	found := false
	for _, d := range r.Discrepancies {
		if d.Kind == compare.KindActiveStatusMismatch {
			found = true
			assert.Equal(t, compare.SeverityCritical, d.Severity)
		}
	}
	assert.True(t, found, "expected an active status mismatch")

	alerts, err := s.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, r.ID, alerts[0].ReportID)
	assert.Equal(t, "critical", alerts[0].Severity)
}

func TestEndToEndDuplicateKeyIngests(t *testing.T) {
	e, _, cfg := setup(t)
	ctx := context.Background()

	// The registry page repeated AGRN-1240; ingest keeps the later row and
	// flags the earlier one instead of failing the run.
	browser := []normalize.Record{
		browserRecord("AGRN-1240", "NSW Severe Weather", "NSW", "-", "12"),
		browserRecord("AGRN-1240", "NSW Severe Weather and Flooding", "NSW", "-", "12"),
	}

	staged, problems, err := e.Ingest(ctx, cfg.SourceA, browser)
	require.NoError(t, err)
	assert.Equal(t, 1, staged)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Detail, "duplicate natural key")

	_, _, err = e.Ingest(ctx, cfg.SourceB, []normalize.Record{
		crawlerRecord("AGRN-1240", "NSW Severe Weather and Flooding", "NSW", "-", "12"),
	})
	require.NoError(t, err)

	r, err := e.RunComparison(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, r.ConfidenceScore)
	assert.Equal(t, 1, r.SourceA.Excluded)
	assert.Equal(t, 0, r.SourceB.Excluded)
}

func TestRepeatedComparisonRunsAgree(t *testing.T) {
	e, _, cfg := setup(t)
	ctx := context.Background()

	browser := []normalize.Record{
		browserRecord("AGRN-1240", "NSW Severe Weather", "NSW", "-", "12"),
		browserRecord("AGRN-1241", "VIC Flooding", "VIC", "15 Jan 2025", "8"),
	}
	crawler := []normalize.Record{
		crawlerRecord("AGRN-1240", "NSW Severe Weather", "NSW", "15 Jan 2025", "12"),
		crawlerRecord("AGRN-1241", "VIC Flooding", "VIC", "15 Jan 2025", "8"),
	}

	_, _, err := e.Ingest(ctx, cfg.SourceA, browser)
	require.NoError(t, err)
	_, _, err = e.Ingest(ctx, cfg.SourceB, crawler)
	require.NoError(t, err)

	first, err := e.RunComparison(ctx)
	require.NoError(t, err)
	second, err := e.RunComparison(ctx)
	require.NoError(t, err)

	// Unchanged inputs give the same verdict; only the run identity moves.
	assert.Equal(t, first.Discrepancies, second.Discrepancies)
	assert.Equal(t, first.ConfidenceScore, second.ConfidenceScore)
	assert.Equal(t, first.Recommendation, second.Recommendation)
	assert.Equal(t, first.Passed, second.Passed)
	assert.Equal(t, first.SourceA, second.SourceA)
	assert.Equal(t, first.SourceB, second.SourceB)
	assert.Equal(t, first.Jurisdictions, second.Jurisdictions)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestEndToEndIndexCheckLifecycle(t *testing.T) {
	e, _, _ := setup(t)
	ctx := context.Background()

	snapshot := `
- reference: AGRN-1240
  raw_end_date: "-"
  jurisdiction: NSW
- reference: AGRN-1241
  raw_end_date: 15 Jan 2025
  jurisdiction: VIC
`
	path := filepath.Join(t.TempDir(), "index.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o644))

	src := &schedule.FileIndexSource{Path: path}
	current, err := src.FetchIndex(ctx)
	require.NoError(t, err)

	// First run: no baseline, full scrape requested.
	changes, err := e.RunIndexCheck(ctx, current)
	require.NoError(t, err)
	assert.True(t, changes.FullScrapeNeeded)
	assert.Len(t, changes.Added, 2)

	// Second run with the same snapshot: quiet.
	changes, err = e.RunIndexCheck(ctx, current)
	require.NoError(t, err)
	assert.False(t, changes.FullScrapeNeeded)

	// The registry closes AGRN-1240: one status flip, full scrape again.
	updated := `
- reference: AGRN-1240
  raw_end_date: 20 Aug 2025
  jurisdiction: NSW
- reference: AGRN-1241
  raw_end_date: 15 Jan 2025
  jurisdiction: VIC
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	current, err = src.FetchIndex(ctx)
	require.NoError(t, err)

	changes, err = e.RunIndexCheck(ctx, current)
	require.NoError(t, err)
	require.Len(t, changes.StatusFlips, 1)
	assert.True(t, changes.StatusFlips[0].WasActive)
	assert.False(t, changes.StatusFlips[0].NowActive)
	assert.True(t, changes.FullScrapeNeeded)
}
