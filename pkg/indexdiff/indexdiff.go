// Package indexdiff detects changes between two snapshots of the registry's
// quick index. The quick index is a cheap listing of reference, raw end date,
// and jurisdiction for every declaration; diffing two snapshots decides
// whether the expensive full collection run needs to be triggered.
package indexdiff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/assureops/crosscheck/pkg/declarations"
)

// StatusFlip records a declaration whose active status changed between two
// index snapshots.
type StatusFlip struct {
	Reference  declarations.Reference `json:"reference"    yaml:"reference"`
	WasActive  bool                   `json:"was_active"   yaml:"was_active"`
	NowActive  bool                   `json:"now_active"   yaml:"now_active"`
	OldRawDate string                 `json:"old_raw_date" yaml:"old_raw_date"` // raw end date in the previous snapshot
	NewRawDate string                 `json:"new_raw_date" yaml:"new_raw_date"` // raw end date in the current snapshot
}

// Changes is the result of diffing a current index snapshot against the
// previous one. All slices are sorted by reference.
type Changes struct {
	Added       []declarations.IndexEntry `json:"added"        yaml:"added"`        // in current, not in previous
	Removed     []declarations.IndexEntry `json:"removed"      yaml:"removed"`      // in previous, not in current
	StatusFlips []StatusFlip              `json:"status_flips" yaml:"status_flips"` // active status changed

	// FullScrapeNeeded is true when a full collection run should follow:
	// either there is no previous snapshot to compare against, or the
	// index moved in any way since the last run.
	FullScrapeNeeded bool `json:"full_scrape_needed" yaml:"full_scrape_needed"`
}

// HasChanges returns true if the diff found any movement in the index.
func (c *Changes) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0 || len(c.StatusFlips) > 0
}

// Detect diffs the current index snapshot against the previous one.
//
// An empty previous snapshot means there is no baseline yet; the diff reports
// every current entry as added and requests a full scrape.
func Detect(current, previous []declarations.IndexEntry) Changes {
	prev := keyEntries(previous)
	cur := keyEntries(current)

	var changes Changes

	for ref, entry := range cur {
		old, seen := prev[ref]
		if !seen {
			changes.Added = append(changes.Added, entry)
			continue
		}
		if old.Active != entry.Active {
			changes.StatusFlips = append(changes.StatusFlips, StatusFlip{
				Reference:  ref,
				WasActive:  old.Active,
				NowActive:  entry.Active,
				OldRawDate: old.RawEndDate,
				NewRawDate: entry.RawEndDate,
			})
		}
	}
	for ref, entry := range prev {
		if _, seen := cur[ref]; !seen {
			changes.Removed = append(changes.Removed, entry)
		}
	}

	sortEntries(changes.Added)
	sortEntries(changes.Removed)
	sort.Slice(changes.StatusFlips, func(i, j int) bool {
		return changes.StatusFlips[i].Reference < changes.StatusFlips[j].Reference
	})

	changes.FullScrapeNeeded = len(previous) == 0 || changes.HasChanges()
	return changes
}

// String returns a human-readable summary of the index diff.
func (c *Changes) String() string {
	if !c.HasChanges() {
		if c.FullScrapeNeeded {
			return "No baseline snapshot, full scrape needed"
		}
		return "No index changes detected"
	}

	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(c.Added)))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(c.Removed)))
	}
	if len(c.StatusFlips) > 0 {
		parts = append(parts, fmt.Sprintf("%d status changes", len(c.StatusFlips)))
	}
	return "Index changes: " + strings.Join(parts, ", ")
}

func keyEntries(list []declarations.IndexEntry) map[declarations.Reference]declarations.IndexEntry {
	m := make(map[declarations.Reference]declarations.IndexEntry, len(list))
	for _, e := range list {
		m[e.Reference] = e
	}
	return m
}

func sortEntries(list []declarations.IndexEntry) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Reference < list[j].Reference
	})
}
