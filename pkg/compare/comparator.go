package compare

import (
	"fmt"
	"sort"
	"time"

	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/logging"
)

// countMismatchCriticalAt is the total-count difference beyond which a count
// mismatch escalates from warning to critical.
const countMismatchCriticalAt = 10

// Comparator matches two canonical datasets by natural key and emits typed
// discrepancies. It holds no state between runs.
type Comparator struct {
	regionTolerance int
	expectedRanges  map[declarations.Jurisdiction]Range
}

// New creates a Comparator with default settings.
func New(opts ...Option) *Comparator {
	c := &Comparator{
		regionTolerance: 2,
		expectedRanges:  make(map[declarations.Jurisdiction]Range),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare runs every per-record and aggregate check across both datasets and
// returns the discrepancies sorted for deterministic reports. Both inputs
// are treated as immutable snapshots; Compare never modifies them.
func (c *Comparator) Compare(listA, listB []declarations.Declaration) []Discrepancy {
	var out []Discrepancy

	mapA, dups := keyRecords(listA, "source_a")
	out = append(out, dups...)
	mapB, dups := keyRecords(listB, "source_b")
	out = append(out, dups...)

	out = append(out, c.missingRecords(mapA, mapB)...)
	out = append(out, c.matchedRecords(mapA, mapB)...)
	out = append(out, c.totalCounts(listA, listB)...)
	out = append(out, c.activeCounts(listA, listB)...)
	out = append(out, c.jurisdictionChecks(listA, listB)...)

	Sort(out)
	return out
}

// keyRecords builds the key lookup for one side. Duplicate keys within one
// side keep the last record seen (matching the registry's own upsert order)
// and are reported as data-quality findings.
func keyRecords(list []declarations.Declaration, side string) (map[declarations.Reference]declarations.Declaration, []Discrepancy) {
	m := make(map[declarations.Reference]declarations.Declaration, len(list))
	var dups []Discrepancy

	for _, d := range list {
		if _, seen := m[d.Reference]; seen {
			logging.Warn().
				Str("side", side).
				Str("reference", d.Reference.String()).
				Msg("Duplicate natural key, last record wins")
			dups = append(dups, Discrepancy{
				Kind:      KindDataQuality,
				Reference: d.Reference,
				Severity:  SeverityInfo,
				Details: map[string]string{
					"side":   side,
					"issue":  "duplicate natural key",
					"action": "last record kept",
				},
			})
		}
		m[d.Reference] = d
	}
	return m, dups
}

// missingRecords reports the symmetric difference of the two key sets.
func (c *Comparator) missingRecords(mapA, mapB map[declarations.Reference]declarations.Declaration) []Discrepancy {
	var out []Discrepancy

	for ref, d := range mapA {
		if _, ok := mapB[ref]; !ok {
			out = append(out, Discrepancy{
				Kind:      KindMissingInSourceB,
				Reference: ref,
				Severity:  SeverityCritical,
				Details:   map[string]string{"name": d.Name},
			})
		}
	}
	for ref, d := range mapB {
		if _, ok := mapA[ref]; !ok {
			out = append(out, Discrepancy{
				Kind:      KindMissingInSourceA,
				Reference: ref,
				Severity:  SeverityCritical,
				Details:   map[string]string{"name": d.Name},
			})
		}
	}
	return out
}

// matchedRecords compares every record present on both sides, field by field.
func (c *Comparator) matchedRecords(mapA, mapB map[declarations.Reference]declarations.Declaration) []Discrepancy {
	var out []Discrepancy

	for ref, a := range mapA {
		b, ok := mapB[ref]
		if !ok {
			continue
		}

		// Active status drives billing-exemption eligibility; a flip between
		// the pipelines is always critical.
		if a.Active != b.Active {
			out = append(out, Discrepancy{
				Kind:      KindActiveStatusMismatch,
				Reference: ref,
				Severity:  SeverityCritical,
				Details: map[string]string{
					"source_a":              fmt.Sprintf("%v", a.Active),
					"source_b":              fmt.Sprintf("%v", b.Active),
					"source_a_raw_end_date": a.RawEndDate,
					"source_b_raw_end_date": b.RawEndDate,
				},
			})
		}

		out = append(out, fieldMismatches(ref, a, b)...)

		if diff := absInt(a.RegionCount - b.RegionCount); diff > c.regionTolerance {
			out = append(out, Discrepancy{
				Kind:      KindFieldMismatch,
				Reference: ref,
				Severity:  SeverityWarning,
				Details: map[string]string{
					"field":    "region_count",
					"source_a": fmt.Sprintf("%d", a.RegionCount),
					"source_b": fmt.Sprintf("%d", b.RegionCount),
				},
			})
		}
	}
	return out
}

// fieldMismatches compares the fixed scalar field list for one matched pair.
// Jurisdiction and the resolved end date are critical; name and category are
// cosmetic by comparison.
func fieldMismatches(ref declarations.Reference, a, b declarations.Declaration) []Discrepancy {
	var out []Discrepancy

	add := func(field, va, vb string, severity Severity) {
		out = append(out, Discrepancy{
			Kind:      KindFieldMismatch,
			Reference: ref,
			Severity:  severity,
			Details:   map[string]string{"field": field, "source_a": va, "source_b": vb},
		})
	}

	if a.Name != b.Name {
		add("name", a.Name, b.Name, SeverityWarning)
	}
	if a.Category != b.Category {
		add("category", a.Category.String(), b.Category.String(), SeverityWarning)
	}
	if a.Jurisdiction != b.Jurisdiction {
		add("jurisdiction", a.Jurisdiction.String(), b.Jurisdiction.String(), SeverityCritical)
	}
	if !equalDates(a.EndDate, b.EndDate) {
		add("end_date", formatDate(a.EndDate), formatDate(b.EndDate), SeverityCritical)
	}
	return out
}

// totalCounts checks total record counts, severity scaled by magnitude.
func (c *Comparator) totalCounts(listA, listB []declarations.Declaration) []Discrepancy {
	diff := absInt(len(listA) - len(listB))
	if diff == 0 {
		return nil
	}

	severity := SeverityWarning
	if diff > countMismatchCriticalAt {
		severity = SeverityCritical
	}
	return []Discrepancy{{
		Kind:     KindCountMismatch,
		Severity: severity,
		Details: map[string]string{
			"check":    "total_count",
			"source_a": fmt.Sprintf("%d", len(listA)),
			"source_b": fmt.Sprintf("%d", len(listB)),
		},
	}}
}

// activeCounts checks total active counts. This is the number that drives
// aggregate billing eligibility, so any difference is critical.
func (c *Comparator) activeCounts(listA, listB []declarations.Declaration) []Discrepancy {
	activeA := declarations.ActiveCount(listA)
	activeB := declarations.ActiveCount(listB)
	if activeA == activeB {
		return nil
	}
	return []Discrepancy{{
		Kind:     KindCountMismatch,
		Severity: SeverityCritical,
		Details: map[string]string{
			"check":    "active_count",
			"source_a": fmt.Sprintf("%d", activeA),
			"source_b": fmt.Sprintf("%d", activeB),
		},
	}}
}

// jurisdictionChecks compares per-jurisdiction active counts and validates
// designated high-volume jurisdictions against their expected ranges. Range
// checks run for each source independently, regardless of agreement.
func (c *Comparator) jurisdictionChecks(listA, listB []declarations.Declaration) []Discrepancy {
	var out []Discrepancy

	countsA := declarations.ActiveByJurisdiction(listA)
	countsB := declarations.ActiveByJurisdiction(listB)

	for _, j := range c.jurisdictionUnion(countsA, countsB) {
		a, b := countsA[j], countsB[j]
		expected, designated := c.expectedRanges[j]

		if a != b {
			severity := SeverityWarning
			if designated {
				severity = SeverityCritical
			}
			out = append(out, Discrepancy{
				Kind:     KindCountMismatch,
				Severity: severity,
				Details: map[string]string{
					"check":        "jurisdiction_active_count",
					"jurisdiction": j.String(),
					"source_a":     fmt.Sprintf("%d", a),
					"source_b":     fmt.Sprintf("%d", b),
				},
			})
		}

		if !designated {
			continue
		}
		if !expected.Contains(a) {
			out = append(out, rangeViolation(j, "source_a", a, expected))
		}
		if !expected.Contains(b) {
			out = append(out, rangeViolation(j, "source_b", b, expected))
		}
	}
	return out
}

func rangeViolation(j declarations.Jurisdiction, side string, n int, expected Range) Discrepancy {
	return Discrepancy{
		Kind:     KindRangeViolation,
		Severity: SeverityCritical,
		Details: map[string]string{
			"jurisdiction": j.String(),
			"side":         side,
			"count":        fmt.Sprintf("%d", n),
			"expected":     fmt.Sprintf("[%d,%d]", expected.Min, expected.Max),
		},
	}
}

// jurisdictionUnion returns the sorted union of jurisdictions seen on either
// side plus every designated jurisdiction, so a jurisdiction with zero
// active records still gets its range check.
func (c *Comparator) jurisdictionUnion(a, b map[declarations.Jurisdiction]int) []declarations.Jurisdiction {
	seen := make(map[declarations.Jurisdiction]struct{}, len(a)+len(b))
	for j := range a {
		seen[j] = struct{}{}
	}
	for j := range b {
		seen[j] = struct{}{}
	}
	for j := range c.expectedRanges {
		seen[j] = struct{}{}
	}

	out := make([]declarations.Jurisdiction, 0, len(seen))
	for j := range seen {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func equalDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format("2006-01-02")
}
