package matches

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultCollation is the language the dataset's labels are written in.
var DefaultCollation = language.French

// DistinctSorted drops empty values, removes exact duplicates and sorts with a
// French case- and accent-insensitive collation.
func DistinctSorted(values []string) []string {
	return DistinctSortedIn(DefaultCollation, values)
}

// DistinctSortedIn is DistinctSorted for another collation language. Values the
// collation considers equal are ordered bytewise so the result is deterministic.
func DistinctSortedIn(tag language.Tag, values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	// A Collator is not safe for concurrent use; build one per call.
	col := collate.New(tag, collate.Loose)
	slices.SortFunc(out, func(a, b string) int {
		if c := col.CompareString(a, b); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return out
}

// CurrentOptions derives the dropdown choices from the full record set.
func CurrentOptions(records []Match) Options {
	comps := make([]string, 0, len(records))
	phases := make([]string, 0, len(records))
	teams := make([]string, 0, 2*len(records))
	for _, m := range records {
		comps = append(comps, m.Competition)
		phases = append(phases, m.Phase)
		teams = append(teams, m.Home, m.Away)
	}
	return Options{
		Competitions: DistinctSorted(comps),
		Phases:       DistinctSorted(phases),
		Teams:        DistinctSorted(teams),
	}
}

// DateBounds returns the earliest and latest parsed dates, or nils when no
// record has one.
func DateBounds(records []Match) (min, max *time.Time) {
	for i := range records {
		d := records[i].Date
		if d == nil {
			continue
		}
		if min == nil || d.Before(*min) {
			min = d
		}
		if max == nil || d.After(*max) {
			max = d
		}
	}
	return min, max
}
