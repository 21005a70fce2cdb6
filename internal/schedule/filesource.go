package schedule

import (
	"context"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/errors"
	"github.com/assureops/crosscheck/pkg/status"
)

// FileIndexSource reads quick-index snapshots from a YAML file dropped by
// the crawler pipeline after each index pass.
type FileIndexSource struct {
	Path string
}

type indexRow struct {
	Reference    string `yaml:"reference"`
	RawEndDate   string `yaml:"raw_end_date"`
	Jurisdiction string `yaml:"jurisdiction"`
}

// FetchIndex loads and classifies the snapshot file. Active status is
// derived from the raw end date text with the shared classifier, so the
// snapshot and the full records can never disagree on what counts as active.
func (f *FileIndexSource) FetchIndex(_ context.Context) ([]declarations.IndexEntry, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errors.WrapSource(f.Path, "read index snapshot", err)
	}

	var rows []indexRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, errors.WrapSource(f.Path, "parse index snapshot", err)
	}

	entries := make([]declarations.IndexEntry, 0, len(rows))
	for _, row := range rows {
		res := status.Classify(row.RawEndDate)
		entries = append(entries, declarations.IndexEntry{
			Reference:    declarations.Reference(row.Reference),
			RawEndDate:   row.RawEndDate,
			Active:       res.Active,
			Jurisdiction: declarations.ParseJurisdiction(row.Jurisdiction),
		})
	}
	return entries, nil
}
