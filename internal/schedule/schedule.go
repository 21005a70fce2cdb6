// Package schedule runs the comparison and index-check jobs on their cron
// schedules. The comparison runs every two hours and the index check three
// mornings a week, matching the cadence the collection pipelines publish on.
package schedule

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/assureops/crosscheck/internal/config"
	"github.com/assureops/crosscheck/internal/engine"
	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/logging"
)

// IndexSource provides the current quick-index snapshot for scheduled
// checks. Implementations typically read the file the crawler pipeline
// drops after each index pass.
type IndexSource interface {
	FetchIndex(ctx context.Context) ([]declarations.IndexEntry, error)
}

// Scheduler drives the engine from cron triggers.
type Scheduler struct {
	cron        *cron.Cron
	engine      *engine.Engine
	cfg         *config.Config
	indexSource IndexSource
}

// New builds a scheduler around an engine. A nil index source disables the
// scheduled index check; the comparison job always runs.
func New(e *engine.Engine, cfg *config.Config, indexSource IndexSource) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		engine:      e,
		cfg:         cfg,
		indexSource: indexSource,
	}
}

// Start registers the jobs and starts the cron loop. It returns once the
// loop is running; Stop shuts it down.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.ComparisonSchedule, func() {
		s.runComparison(ctx)
	}); err != nil {
		return err
	}

	if s.indexSource != nil {
		if _, err := s.cron.AddFunc(s.cfg.IndexSchedule, func() {
			s.runIndexCheck(ctx)
		}); err != nil {
			return err
		}
	} else {
		logging.Warn().Msg("No index source configured, scheduled index check disabled")
	}

	logging.Info().
		Str("comparison", s.cfg.ComparisonSchedule).
		Str("index_check", s.cfg.IndexSchedule).
		Msg("Scheduler started")
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logging.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) runComparison(ctx context.Context) {
	r, err := s.engine.RunComparison(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Scheduled comparison failed")
		if r == nil {
			return
		}
	}
	logging.Info().
		Str("report_id", r.ID.String()).
		Int("score", r.ConfidenceScore).
		Str("recommendation", r.Recommendation.String()).
		Msg("Scheduled comparison complete")
}

func (s *Scheduler) runIndexCheck(ctx context.Context) {
	current, err := s.indexSource.FetchIndex(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Index snapshot fetch failed, baseline kept")
		return
	}

	changes, err := s.engine.RunIndexCheck(ctx, current)
	if err != nil {
		logging.Error().Err(err).Msg("Scheduled index check failed")
		return
	}
	logging.Info().
		Bool("full_scrape_needed", changes.FullScrapeNeeded).
		Msg("Scheduled index check complete")
}
