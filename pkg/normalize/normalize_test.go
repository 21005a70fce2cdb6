package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/errors"
	"github.com/assureops/crosscheck/pkg/normalize"
)

func browserRecord() normalize.Record {
	return normalize.Record{
		"agrn_reference":   "AGRN-1112",
		"event_name":       "North Queensland Flooding",
		"disaster_type":    "Flood",
		"state_code":       "QLD",
		"declaration_date": "15 Jan 2025",
		"raw_end_date":     "- -",
		"lga_count":        "14",
	}
}

func TestNormalizeBrowserRecord(t *testing.T) {
	d, err := normalize.Normalize(browserRecord(), normalize.BrowserSchema())
	require.NoError(t, err)

	assert.Equal(t, declarations.Reference("AGRN-1112"), d.Reference)
	assert.Equal(t, "North Queensland Flooding", d.Name)
	assert.Equal(t, declarations.CategoryFlood, d.Category)
	assert.Equal(t, declarations.JurisdictionQLD, d.Jurisdiction)
	assert.Equal(t, 14, d.RegionCount)

	require.NotNil(t, d.StartDate)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), *d.StartDate)

	// "- -" is a sentinel: open declaration, no end date.
	assert.True(t, d.Active)
	assert.Nil(t, d.EndDate)
	assert.Equal(t, "- -", d.RawEndDate)
}

func TestNormalizeCrawlerRecord(t *testing.T) {
	raw := normalize.Record{
		"agrn":       "AGRN-1210",
		"name":       "  Severe   Storm Event ",
		"type":       "Severe Storm",
		"state":      "New South Wales",
		"start_date": "Mar 2025",
		"end_date":   "30 April 2025",
	}

	d, err := normalize.Normalize(raw, normalize.CrawlerSchema())
	require.NoError(t, err)

	// Whitespace and NBSP are collapsed so both pipelines agree on names.
	assert.Equal(t, "Severe Storm Event", d.Name)
	assert.Equal(t, declarations.CategorySevereStorm, d.Category)
	assert.Equal(t, declarations.JurisdictionNSW, d.Jurisdiction)
	assert.False(t, d.Active)
	require.NotNil(t, d.EndDate)
	assert.Equal(t, time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC), *d.EndDate)
}

func TestNormalizeMissingKey(t *testing.T) {
	raw := browserRecord()
	raw["agrn_reference"] = "  "

	_, err := normalize.Normalize(raw, normalize.BrowserSchema())
	require.Error(t, err)
	assert.True(t, errors.IsDataQuality(err))
}

func TestNormalizeAllExcludesKeylessAndFlagsUnknownDates(t *testing.T) {
	raws := []normalize.Record{
		browserRecord(),
		{"event_name": "Orphan record"}, // no natural key
		{
			"agrn_reference": "AGRN-1300",
			"event_name":     "Unclear End",
			"disaster_type":  "Bushfire",
			"state_code":     "WA",
			"raw_end_date":   "N/A", // neither sentinel nor date
		},
	}

	decls, problems := normalize.NormalizeAll(raws, normalize.BrowserSchema())

	// Keyless record excluded, unclear record retained.
	require.Len(t, decls, 2)
	require.Len(t, problems, 2)

	assert.Empty(t, problems[0].Reference, "missing-key problem carries no reference")
	assert.Equal(t, declarations.Reference("AGRN-1300"), problems[1].Reference)

	// The unclear record classifies NOT active, with the problem as evidence.
	unclear := decls[1]
	assert.False(t, unclear.Active)
	assert.Nil(t, unclear.EndDate)
}

func TestSchemaMapValidate(t *testing.T) {
	assert.NoError(t, normalize.BrowserSchema().Validate())
	assert.NoError(t, normalize.CrawlerSchema().Validate())

	bad := normalize.SchemaMap{Source: "x"}
	assert.Error(t, bad.Validate())
}
