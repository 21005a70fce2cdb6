// Package compare detects disagreements between the two collection
// pipelines' canonical datasets and emits them as typed discrepancies,
// ordered deterministically so consecutive reports diff cleanly.
package compare

import (
	"sort"
	"strings"

	"github.com/assureops/crosscheck/pkg/declarations"
)

// Kind classifies what a discrepancy is about.
type Kind string

// Discrepancy kinds.
const (
	KindMissingInSourceA     Kind = "missing_in_source_a"
	KindMissingInSourceB     Kind = "missing_in_source_b"
	KindActiveStatusMismatch Kind = "active_status_mismatch"
	KindFieldMismatch        Kind = "field_mismatch"
	KindCountMismatch        Kind = "count_mismatch"
	KindRangeViolation       Kind = "range_violation"
	KindDataQuality          Kind = "data_quality"
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	return string(k)
}

// Severity grades how much a discrepancy matters for the compliance verdict.
type Severity string

// Severities, most serious first.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// String returns the string representation of a Severity.
func (s Severity) String() string {
	return string(s)
}

// rank orders severities for sorting; lower sorts first.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Discrepancy is one detected disagreement between the two sources, or one
// data-quality finding inside a single source. Reference is empty for
// aggregate-level kinds.
type Discrepancy struct {
	Kind      Kind                   `json:"kind" yaml:"kind"`
	Reference declarations.Reference `json:"reference,omitempty" yaml:"reference,omitempty"`
	Severity  Severity               `json:"severity" yaml:"severity"`
	Details   map[string]string      `json:"details,omitempty" yaml:"details,omitempty"` // Kind-specific evidence (field name, both values)
}

// HasCritical reports whether any discrepancy in the list is critical.
func HasCritical(discrepancies []Discrepancy) bool {
	for _, d := range discrepancies {
		if d.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Sort orders discrepancies for deterministic, diffable reports: critical
// before warning before info, then by reference ascending, then by kind,
// with the rendered evidence as a final total tiebreak so the order never
// depends on map iteration.
func Sort(discrepancies []Discrepancy) {
	sort.SliceStable(discrepancies, func(i, j int) bool {
		a, b := discrepancies[i], discrepancies[j]
		if a.Severity.rank() != b.Severity.rank() {
			return a.Severity.rank() < b.Severity.rank()
		}
		if a.Reference != b.Reference {
			return a.Reference < b.Reference
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.detailKey() < b.detailKey()
	})
}

// detailKey renders Details as a canonical sorted string.
func (d Discrepancy) detailKey() string {
	keys := make([]string, 0, len(d.Details))
	for k := range d.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(d.Details[k])
		sb.WriteByte(';')
	}
	return sb.String()
}
