// Package config defines the typed runtime configuration for the comparison
// engine and loads it from viper (config file, environment, flags).
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/assureops/crosscheck/pkg/compare"
	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/errors"
	"github.com/assureops/crosscheck/pkg/normalize"
)

// Default source identifiers. The two collection pipelines stage their
// output under these names.
const (
	DefaultSourceA = "registry-browser"
	DefaultSourceB = "registry-crawler"
)

// RangeConfig is a configured expected active-count range for one
// jurisdiction.
type RangeConfig struct {
	Min int `json:"min" yaml:"min" mapstructure:"min"`
	Max int `json:"max" yaml:"max" mapstructure:"max"`
}

// Config is the engine's runtime configuration.
type Config struct {
	DatabasePath string `json:"database_path" yaml:"database_path" mapstructure:"database_path"` // sqlite file path
	EvidenceDir  string `json:"evidence_dir"  yaml:"evidence_dir"  mapstructure:"evidence_dir"`  // evidence YAML output directory

	SourceA string `json:"source_a" yaml:"source_a" mapstructure:"source_a"` // first pipeline's source name
	SourceB string `json:"source_b" yaml:"source_b" mapstructure:"source_b"` // second pipeline's source name

	RegionCountTolerance int                    `json:"region_count_tolerance" yaml:"region_count_tolerance" mapstructure:"region_count_tolerance"`
	ExpectedRanges       map[string]RangeConfig `json:"expected_ranges"        yaml:"expected_ranges"        mapstructure:"expected_ranges"` // keyed by jurisdiction code

	ComparisonSchedule string `json:"comparison_schedule" yaml:"comparison_schedule" mapstructure:"comparison_schedule"` // cron expression
	IndexSchedule      string `json:"index_schedule"      yaml:"index_schedule"      mapstructure:"index_schedule"`      // cron expression

	ReportHistoryLimit int `json:"report_history_limit" yaml:"report_history_limit" mapstructure:"report_history_limit"` // default listing size
}

// SetDefaults registers the engine defaults on a viper instance. The
// jurisdiction ranges default to the registry's published steady-state
// counts for QLD and WA.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "crosscheck.db")
	v.SetDefault("evidence_dir", "evidence")
	v.SetDefault("source_a", DefaultSourceA)
	v.SetDefault("source_b", DefaultSourceB)
	v.SetDefault("region_count_tolerance", 2)
	v.SetDefault("expected_ranges", map[string]RangeConfig{
		"QLD": {Min: 20, Max: 30},
		"WA":  {Min: 30, Max: 45},
	})
	v.SetDefault("comparison_schedule", "0 */2 * * *")
	v.SetDefault("index_schedule", "0 6 * * MON,WED,FRI")
	v.SetDefault("report_history_limit", 20)
}

// Load reads the config out of a viper instance and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &errors.ConfigError{Component: "config", Message: "unmarshal configuration", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return &errors.ValidationError{Field: "database_path", Message: "must not be empty"}
	}
	if c.SourceA == "" || c.SourceB == "" {
		return &errors.ValidationError{Field: "source_a/source_b", Message: "both source names are required"}
	}
	if c.SourceA == c.SourceB {
		return &errors.ValidationError{Field: "source_b", Message: "must differ from source_a"}
	}
	if c.RegionCountTolerance < 0 {
		return &errors.ValidationError{Field: "region_count_tolerance", Message: "must not be negative"}
	}
	for code, r := range c.ExpectedRanges {
		if r.Min < 0 || r.Max < r.Min {
			return &errors.ValidationError{
				Field:   "expected_ranges." + code,
				Message: fmt.Sprintf("invalid range [%d,%d]", r.Min, r.Max),
			}
		}
	}
	if c.ReportHistoryLimit <= 0 {
		return &errors.ValidationError{Field: "report_history_limit", Message: "must be positive"}
	}
	return nil
}

// ComparatorOptions translates the configuration into comparator options.
func (c *Config) ComparatorOptions() []compare.Option {
	opts := []compare.Option{
		compare.WithRegionCountTolerance(c.RegionCountTolerance),
	}
	for code, r := range c.ExpectedRanges {
		opts = append(opts, compare.WithExpectedRange(
			declarations.ParseJurisdiction(code),
			compare.Range{Min: r.Min, Max: r.Max},
		))
	}
	return opts
}

// SchemaFor returns the normalization schema for a configured source name.
func (c *Config) SchemaFor(source string) (normalize.SchemaMap, error) {
	switch source {
	case c.SourceA:
		return normalize.BrowserSchema(), nil
	case c.SourceB:
		return normalize.CrawlerSchema(), nil
	default:
		return normalize.SchemaMap{}, &errors.ValidationError{
			Field:   "source",
			Message: fmt.Sprintf("unknown source %q", source),
		}
	}
}
