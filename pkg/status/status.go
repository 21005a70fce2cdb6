// Package status derives a declaration's active status from its raw end-date
// text. This is the only place in the codebase allowed to interpret end-date
// sentinels; both collection pipelines' records go through the same Classify
// call, so the two sides can never drift on what counts as "no end date".
package status

import (
	"strings"
	"time"
)

// sentinels are the registry's non-date placeholders meaning "no end date
// recorded". A declaration carrying one of these is still open.
var sentinels = map[string]struct{}{
	"":    {},
	"-":   {},
	"–": {}, // en dash
	"- -": {},
	"--":  {},
}

// dateLayouts are the end-date formats the registry publishes, most specific
// first. Month-only dates resolve to the first of the month.
var dateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
	"2006-01-02",
}

// Resolution is the outcome of classifying one raw end-date text.
type Resolution struct {
	EndDate *time.Time // Resolved end date, nil when the declaration is open
	Active  bool       // True iff EndDate is nil
	Unknown bool       // Non-sentinel text that failed to parse as a date
}

// Classify resolves raw end-date text into an end date and active status.
//
// Sentinel values (and empty text) mean the declaration has no end date and
// is active. Anything else is parsed as a date. Text that is neither a
// sentinel nor a parseable date classifies as NOT active with Unknown set;
// the caller must surface that as a data-quality warning rather than trust
// the classification.
func Classify(raw string) Resolution {
	text := strings.TrimSpace(raw)
	if IsSentinel(text) {
		return Resolution{Active: true}
	}

	if t, ok := parseDate(text); ok {
		return Resolution{EndDate: &t}
	}

	return Resolution{Unknown: true}
}

// IsSentinel reports whether trimmed end-date text is one of the registry's
// "no end date" placeholders.
func IsSentinel(text string) bool {
	_, ok := sentinels[strings.TrimSpace(text)]
	return ok
}

// ParseDate parses registry date text (start or end dates share the same
// formats). It returns false for empty or unparseable text.
func ParseDate(raw string) (time.Time, bool) {
	return parseDate(strings.TrimSpace(raw))
}

func parseDate(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
