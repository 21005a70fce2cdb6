// Package normalize maps each collection pipeline's raw records into the
// canonical declaration shape. Each source ships its own static schema map
// (field names only, configured, never discovered at runtime); normalization
// is a pure function of one record plus that map.
package normalize

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/errors"
	"github.com/assureops/crosscheck/pkg/status"
)

// Record is one raw key/value record as produced by a collection pipeline.
type Record map[string]string

// SchemaMap names, per source, which raw field holds each canonical field.
// Optional fields may be left empty; only Reference is required.
type SchemaMap struct {
	Source       string `json:"source" yaml:"source"`               // Pipeline identifier, used in logs and errors
	Reference    string `json:"reference" yaml:"reference"`         // Field holding the natural key
	Name         string `json:"name" yaml:"name"`                   // Event name field
	Category     string `json:"category" yaml:"category"`           // Disaster category field
	Jurisdiction string `json:"jurisdiction" yaml:"jurisdiction"`   // Regional code field
	StartDate    string `json:"start_date" yaml:"start_date"`       // Start date field
	EndDate      string `json:"end_date" yaml:"end_date"`           // Raw end-date text field
	RegionCount  string `json:"region_count" yaml:"region_count"`   // Affected sub-region count field
}

// Problem records a data-quality issue found while normalizing. Problems are
// returned to the caller, which reports them as discrepancies; nothing here
// is dropped silently.
type Problem struct {
	Source    string                 // Pipeline the record came from
	Reference declarations.Reference // Natural key, empty when the key itself is missing
	Field     string                 // Raw field involved
	Detail    string                 // Human-readable evidence
}

// Normalize maps one raw record into a canonical declaration. It fails only
// when the natural key itself is absent or empty; every other missing or
// malformed field degrades to a zero value. End-date interpretation is
// delegated entirely to the status classifier.
func Normalize(raw Record, schema SchemaMap) (declarations.Declaration, error) {
	ref := cleanText(raw[schema.Reference])
	if ref == "" {
		return declarations.Declaration{}, errors.NewMissingKeyError(schema.Source, schema.Reference)
	}

	d := declarations.Declaration{
		Reference:    declarations.Reference(ref),
		Name:         cleanText(raw[schema.Name]),
		Category:     declarations.ParseCategory(raw[schema.Category]),
		Jurisdiction: declarations.ParseJurisdiction(raw[schema.Jurisdiction]),
		RawEndDate:   cleanText(raw[schema.EndDate]),
	}

	if t, ok := status.ParseDate(raw[schema.StartDate]); ok {
		d.StartDate = &t
	}

	res := status.Classify(d.RawEndDate)
	d.EndDate = res.EndDate
	d.Active = res.Active

	if schema.RegionCount != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(raw[schema.RegionCount])); err == nil && n >= 0 {
			d.RegionCount = n
		}
	}

	return d, nil
}

// NormalizeAll maps a full raw dataset. Records without a natural key are
// excluded from the result and reported as problems; records whose end-date
// text could not be classified stay in the result (as not active) with a
// problem attached, so the ambiguity surfaces as a warning downstream.
func NormalizeAll(raws []Record, schema SchemaMap) ([]declarations.Declaration, []Problem) {
	decls := make([]declarations.Declaration, 0, len(raws))
	var problems []Problem

	for _, raw := range raws {
		d, err := Normalize(raw, schema)
		if err != nil {
			problems = append(problems, Problem{
				Source: schema.Source,
				Field:  schema.Reference,
				Detail: err.Error(),
			})
			continue
		}

		// Not active yet no resolved end date: the classifier hit
		// unparseable text.
		if !d.Active && d.EndDate == nil {
			problems = append(problems, Problem{
				Source:    schema.Source,
				Reference: d.Reference,
				Field:     schema.EndDate,
				Detail:    (&errors.DateParseError{Reference: d.Reference.String(), Raw: d.RawEndDate}).Error(),
			})
		}

		decls = append(decls, d)
	}

	return decls, problems
}

// cleanText normalizes scraped text: Unicode NFC, NBSP to space, collapsed
// internal whitespace, trimmed. Scraped pages mix composed and decomposed
// forms, which would otherwise show up as phantom field mismatches.
func cleanText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
