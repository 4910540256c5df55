package matches

import (
	"strings"
	"time"
)

const indexSep = " | "

// BuildIndex joins the raw field values and lowercases them for substring search.
func BuildIndex(fields ...string) string {
	return strings.ToLower(strings.Join(fields, indexSep))
}

// MapRow turns a raw row into a Match using local time for the date.
func MapRow(row RawRow, cols Columns) Match {
	return MapRowIn(row, cols, time.Local)
}

// MapRowIn never fails: absent columns become "" and a bad date becomes nil
// while DateRaw keeps the text.
func MapRowIn(row RawRow, cols Columns, loc *time.Location) Match {
	raw := func(header string) string { return row[header] }
	get := func(header string) string { return strings.TrimSpace(row[header]) }

	home, away := get(cols.Home), get(cols.Away)
	return Match{
		ID:          get(cols.ID),
		DateRaw:     get(cols.Date),
		Date:        ParseDateIn(row[cols.Date], loc),
		Competition: get(cols.Competition),
		Phase:       get(cols.Phase),
		Home:        home,
		Away:        away,
		VideoLink:   get(cols.Video),
		SearchIndex: BuildIndex(
			raw(cols.ID), raw(cols.Date), raw(cols.Competition), raw(cols.Phase),
			home, away, raw(cols.Video),
		),
	}
}
