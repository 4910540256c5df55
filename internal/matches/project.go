package matches

import (
	"net/url"
	"strings"
)

// Project turns filtered records into display cards, keeping their order.
func Project(records []Match) []Card {
	out := make([]Card, 0, len(records))
	for _, m := range records {
		label := FormatDate(m.Date)
		if m.Date == nil {
			label = m.DateRaw
		}
		out = append(out, Card{
			ID:          m.ID,
			Title:       m.Home + " vs " + m.Away,
			DateLabel:   label,
			Competition: m.Competition,
			Phase:       m.Phase,
			VideoURL:    m.VideoLink,
			HasVideo:    IsWebLink(m.VideoLink),
			CanCopy:     m.VideoLink != "",
		})
	}
	return out
}

// Summarize reports the count and date span of a result list.
func Summarize(records []Match) Summary {
	lo, hi := DateBounds(records)
	return Summary{Count: len(records), From: FormatDate(lo), To: FormatDate(hi)}
}

// IsWebLink reports whether s is an absolute http(s) URL that is safe to open.
// Other links (javascript:, relative paths, text) can still be copied.
func IsWebLink(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
