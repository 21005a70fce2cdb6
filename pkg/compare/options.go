package compare

import "github.com/assureops/crosscheck/pkg/declarations"

// Range is an inclusive expected bound on a jurisdiction's active count.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether n falls inside the range.
func (r Range) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithRegionCountTolerance sets the allowed difference in affected-region
// counts before a mismatch is reported. Default is 2: the sub-region lists
// on detail pages render slightly differently per pipeline.
func WithRegionCountTolerance(n int) Option {
	return func(c *Comparator) {
		c.regionTolerance = n
	}
}

// WithExpectedRange designates a high-volume jurisdiction and the numeric
// range its active count must fall in. Counts outside the range violate the
// check for either source even when both sources agree: two pipelines
// agreeing on a wrong number is itself a failure mode.
func WithExpectedRange(j declarations.Jurisdiction, r Range) Option {
	return func(c *Comparator) {
		c.expectedRanges[j] = r
	}
}
