package normalize

import "github.com/assureops/crosscheck/pkg/errors"

// Default schema maps for the two production collection pipelines. The
// browser pipeline writes long-form column names; the crawler pipeline uses
// the registry table's short names. Both are static configuration and can be
// overridden from the config file.

// BrowserSchema is the headless-browser pipeline's field layout.
func BrowserSchema() SchemaMap {
	return SchemaMap{
		Source:       "registry-browser",
		Reference:    "agrn_reference",
		Name:         "event_name",
		Category:     "disaster_type",
		Jurisdiction: "state_code",
		StartDate:    "declaration_date",
		EndDate:      "raw_end_date",
		RegionCount:  "lga_count",
	}
}

// CrawlerSchema is the HTTP-crawler pipeline's field layout.
func CrawlerSchema() SchemaMap {
	return SchemaMap{
		Source:       "registry-crawler",
		Reference:    "agrn",
		Name:         "name",
		Category:     "type",
		Jurisdiction: "state",
		StartDate:    "start_date",
		EndDate:      "end_date",
		RegionCount:  "lga_count",
	}
}

// Validate checks that a schema map can support comparison at all.
func (s SchemaMap) Validate() error {
	if s.Source == "" {
		return errors.NewValidationError("source", s.Source, "schema map needs a source identifier")
	}
	if s.Reference == "" {
		return errors.NewValidationError("reference", s.Reference, "schema map needs a natural-key field")
	}
	return nil
}
