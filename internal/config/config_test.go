package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assureops/crosscheck/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "crosscheck.db", cfg.DatabasePath)
	assert.Equal(t, "evidence", cfg.EvidenceDir)
	assert.Equal(t, config.DefaultSourceA, cfg.SourceA)
	assert.Equal(t, config.DefaultSourceB, cfg.SourceB)
	assert.Equal(t, 2, cfg.RegionCountTolerance)
	assert.Equal(t, "0 */2 * * *", cfg.ComparisonSchedule)
	assert.Equal(t, 20, cfg.ReportHistoryLimit)

	require.Contains(t, cfg.ExpectedRanges, "QLD")
	assert.Equal(t, config.RangeConfig{Min: 20, Max: 30}, cfg.ExpectedRanges["QLD"])
	require.Contains(t, cfg.ExpectedRanges, "WA")
	assert.Equal(t, config.RangeConfig{Min: 30, Max: 45}, cfg.ExpectedRanges["WA"])
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("database_path", "/tmp/other.db")
	v.Set("region_count_tolerance", 5)

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.DatabasePath)
	assert.Equal(t, 5, cfg.RegionCountTolerance)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		set  func(v *viper.Viper)
	}{
		{"empty database path", func(v *viper.Viper) { v.Set("database_path", "") }},
		{"identical sources", func(v *viper.Viper) { v.Set("source_b", config.DefaultSourceA) }},
		{"negative tolerance", func(v *viper.Viper) { v.Set("region_count_tolerance", -1) }},
		{"inverted range", func(v *viper.Viper) {
			v.Set("expected_ranges", map[string]config.RangeConfig{"QLD": {Min: 30, Max: 20}})
		}},
		{"zero history limit", func(v *viper.Viper) { v.Set("report_history_limit", 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			tt.set(v)
			_, err := config.Load(v)
			assert.Error(t, err)
		})
	}
}

func TestSchemaForKnownSources(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	a, err := cfg.SchemaFor(cfg.SourceA)
	require.NoError(t, err)
	assert.Equal(t, "agrn_reference", a.Reference)

	b, err := cfg.SchemaFor(cfg.SourceB)
	require.NoError(t, err)
	assert.Equal(t, "agrn", b.Reference)

	_, err = cfg.SchemaFor("nonesuch")
	assert.Error(t, err)
}

func TestComparatorOptionsCarryRanges(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	opts := cfg.ComparatorOptions()
	// Tolerance plus one option per configured range.
	assert.Len(t, opts, 1+len(cfg.ExpectedRanges))
}
