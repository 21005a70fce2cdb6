// Package engine orchestrates the comparison and index-check runs. It wires
// the datastore, the comparator, the scorer, and the alert path together and
// owns the run lifecycle: load both sources, compare, score, persist, and
// raise an alert when the run fails its confidence check.
package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/assureops/crosscheck/internal/alert"
	"github.com/assureops/crosscheck/internal/config"
	"github.com/assureops/crosscheck/pkg/compare"
	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/errors"
	"github.com/assureops/crosscheck/pkg/indexdiff"
	"github.com/assureops/crosscheck/pkg/logging"
	"github.com/assureops/crosscheck/pkg/normalize"
	"github.com/assureops/crosscheck/pkg/report"
	"github.com/assureops/crosscheck/pkg/score"
)

// Datastore is the slice of the persistence layer the engine needs.
type Datastore interface {
	ReplaceSource(ctx context.Context, source string, decls []declarations.Declaration, excluded int) error
	LoadSource(ctx context.Context, source string) ([]declarations.Declaration, error)
	SourceExcluded(ctx context.Context, source string) (int, error)
	AppendReport(ctx context.Context, r *report.ComparisonReport) error
	PreviousIndex(ctx context.Context) ([]declarations.IndexEntry, error)
	ReplaceIndex(ctx context.Context, entries []declarations.IndexEntry) error
}

// Engine runs comparisons and index checks against the staged source data.
type Engine struct {
	store      Datastore
	notifier   alert.Notifier
	comparator *compare.Comparator
	cfg        *config.Config
}

// New builds an engine from its dependencies. The comparator is constructed
// from the configured tolerance and expected ranges.
func New(store Datastore, notifier alert.Notifier, cfg *config.Config) *Engine {
	return &Engine{
		store:      store,
		notifier:   notifier,
		comparator: compare.New(cfg.ComparatorOptions()...),
		cfg:        cfg,
	}
}

// Ingest normalizes one source's raw records and stages them in the
// datastore, replacing that source's previous run. Records without a usable
// natural key are excluded and returned as problems, never dropped silently.
// A duplicate natural key keeps the last occurrence and surfaces the dropped
// one as a problem. Returns the number of records staged.
func (e *Engine) Ingest(ctx context.Context, source string, raw []normalize.Record) (int, []normalize.Problem, error) {
	ctx = logging.WithSource(ctx, source)

	schema, err := e.cfg.SchemaFor(source)
	if err != nil {
		return 0, nil, err
	}

	decls, problems := normalize.NormalizeAll(raw, schema)
	decls, dups := dedupeLastWins(decls, schema)
	problems = append(problems, dups...)

	for _, p := range problems {
		logging.Ctx(ctx).Warn().
			Str("reference", p.Reference.String()).
			Str("field", p.Field).
			Str("detail", p.Detail).
			Msg("Data quality problem during ingest")
	}

	excluded := len(raw) - len(decls)
	if err := e.store.ReplaceSource(ctx, source, decls, excluded); err != nil {
		return 0, problems, err
	}
	logging.Ctx(ctx).Info().
		Int("records", len(decls)).
		Int("excluded", excluded).
		Int("problems", len(problems)).
		Msg("Source staged")
	return len(decls), problems, nil
}

// dedupeLastWins collapses duplicate natural keys within one dataset, keeping
// the last occurrence of each. Every dropped occurrence becomes a problem.
func dedupeLastWins(decls []declarations.Declaration, schema normalize.SchemaMap) ([]declarations.Declaration, []normalize.Problem) {
	last := make(map[declarations.Reference]int, len(decls))
	for i, d := range decls {
		last[d.Reference] = i
	}
	if len(last) == len(decls) {
		return decls, nil
	}

	kept := make([]declarations.Declaration, 0, len(last))
	var problems []normalize.Problem
	for i, d := range decls {
		if last[d.Reference] != i {
			problems = append(problems, normalize.Problem{
				Source:    schema.Source,
				Reference: d.Reference,
				Field:     schema.Reference,
				Detail:    "duplicate natural key, last occurrence kept",
			})
			continue
		}
		kept = append(kept, d)
	}
	return kept, problems
}

// RunComparison loads both staged sources, compares them, scores the result,
// and persists the report. The run aborts with a source error if either load
// fails. A persistence failure does not abort: the report is still returned
// alongside the wrapped error so callers can see the verdict.
func (e *Engine) RunComparison(ctx context.Context) (*report.ComparisonReport, error) {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	log := logging.Ctx(ctx)

	listA, err := e.store.LoadSource(ctx, e.cfg.SourceA)
	if err != nil {
		return nil, errors.WrapSource(e.cfg.SourceA, "load staged records", err)
	}
	listB, err := e.store.LoadSource(ctx, e.cfg.SourceB)
	if err != nil {
		return nil, errors.WrapSource(e.cfg.SourceB, "load staged records", err)
	}
	log.Info().
		Int("source_a", len(listA)).
		Int("source_b", len(listB)).
		Msg("Comparison started")

	discrepancies := e.comparator.Compare(listA, listB)
	discrepancies = append(discrepancies, unknownStatusFindings(listA, "source_a")...)
	discrepancies = append(discrepancies, unknownStatusFindings(listB, "source_b")...)
	compare.Sort(discrepancies)

	result := score.Score(discrepancies)
	r := report.Build(listA, listB, discrepancies, result)
	r.SourceA.Excluded = e.sourceExcluded(ctx, e.cfg.SourceA)
	r.SourceB.Excluded = e.sourceExcluded(ctx, e.cfg.SourceB)

	log.Info().
		Str("report_id", r.ID.String()).
		Int("score", r.ConfidenceScore).
		Str("recommendation", r.Recommendation.String()).
		Bool("passed", r.Passed).
		Msg("Comparison finished")

	if path, err := report.WriteEvidence(e.cfg.EvidenceDir, &r); err != nil {
		log.Error().Err(err).Msg("Evidence file write failed")
	} else {
		log.Debug().Str("path", path).Msg("Evidence file written")
	}

	if !r.Passed && e.notifier != nil {
		if err := e.notifier.NotifyFailed(ctx, &r); err != nil {
			log.Error().Err(err).Msg("Alert notification failed")
		}
	}

	if err := e.store.AppendReport(ctx, &r); err != nil {
		return &r, errors.WrapPersistence("append report", err)
	}
	return &r, nil
}

// RunIndexCheck diffs the current quick-index snapshot against the stored
// baseline and replaces the baseline with the current snapshot. The swap is
// atomic: a failed replace leaves the old baseline in place.
func (e *Engine) RunIndexCheck(ctx context.Context, current []declarations.IndexEntry) (*indexdiff.Changes, error) {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	log := logging.Ctx(ctx)

	previous, err := e.store.PreviousIndex(ctx)
	if err != nil {
		return nil, errors.WrapPersistence("load index baseline", err)
	}

	changes := indexdiff.Detect(current, previous)
	log.Info().
		Int("added", len(changes.Added)).
		Int("removed", len(changes.Removed)).
		Int("status_flips", len(changes.StatusFlips)).
		Bool("full_scrape_needed", changes.FullScrapeNeeded).
		Msg("Index check finished")

	if err := e.store.ReplaceIndex(ctx, current); err != nil {
		return &changes, errors.WrapPersistence("replace index baseline", err)
	}
	return &changes, nil
}

// sourceExcluded looks up how many records the last ingest of one source
// excluded. The count is audit detail on the report, so a lookup failure is
// logged rather than failing the run.
func (e *Engine) sourceExcluded(ctx context.Context, source string) int {
	n, err := e.store.SourceExcluded(ctx, source)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("source", source).Msg("Excluded count unavailable")
		return 0
	}
	return n
}

// unknownStatusFindings surfaces records whose end date text was neither a
// sentinel nor a parseable date. They were classified not active, which is
// the conservative call, but the reviewer needs to see them.
func unknownStatusFindings(list []declarations.Declaration, side string) []compare.Discrepancy {
	var out []compare.Discrepancy
	for _, d := range list {
		if !d.Active && d.EndDate == nil {
			out = append(out, compare.Discrepancy{
				Kind:      compare.KindDataQuality,
				Reference: d.Reference,
				Severity:  compare.SeverityWarning,
				Details: map[string]string{
					"source":       side,
					"field":        "end_date",
					"raw_end_date": d.RawEndDate,
					"detail":       "end date text is neither a sentinel nor a recognized date",
				},
			})
		}
	}
	return out
}
