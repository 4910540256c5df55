package matches

import (
	"slices"
	"strings"
	"time"
)

// Filter returns the records satisfying every set criterion, newest first.
// Records without a date sort after all dated ones; equal dates keep input
// order. The input slice is not modified.
func Filter(records []Match, c Criteria) []Match {
	q := strings.ToLower(strings.TrimSpace(c.Query))
	var start, end time.Time
	if c.From != nil {
		start = dayStart(*c.From, 0)
	}
	if c.To != nil {
		// To is inclusive through the end of its calendar day.
		end = dayStart(*c.To, 1)
	}

	out := make([]Match, 0, len(records))
	for _, m := range records {
		if c.From != nil || c.To != nil {
			if m.Date == nil {
				continue
			}
			if c.From != nil && m.Date.Before(start) {
				continue
			}
			if c.To != nil && !m.Date.Before(end) {
				continue
			}
		}
		if c.Competition != "" && m.Competition != c.Competition {
			continue
		}
		if c.Phase != "" && m.Phase != c.Phase {
			continue
		}
		if c.Team != "" && m.Home != c.Team && m.Away != c.Team {
			continue
		}
		if q != "" && !strings.Contains(m.SearchIndex, q) {
			continue
		}
		out = append(out, m)
	}

	slices.SortStableFunc(out, byDateDesc)
	return out
}

// dayStart returns midnight of the day t falls on, shifted by days, in t's location.
func dayStart(t time.Time, days int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, t.Location())
}

func byDateDesc(a, b Match) int {
	switch {
	case a.Date == nil && b.Date == nil:
		return 0
	case a.Date == nil:
		return 1
	case b.Date == nil:
		return -1
	}
	return b.Date.Compare(*a.Date)
}
