package matches

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "02/01/2006"

var frDate = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// ParseDate parses DD/MM/YYYY into local midnight. Anything else, including
// impossible calendar dates such as 31/02/2024, yields nil.
func ParseDate(s string) *time.Time {
	return ParseDateIn(s, time.Local)
}

// ParseDateIn is ParseDate with an explicit location.
func ParseDateIn(s string, loc *time.Location) *time.Time {
	m := frDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil
	}
	dd, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	yyyy, _ := strconv.Atoi(m[3])
	if mm < 1 || mm > 12 || dd < 1 {
		return nil
	}
	t := time.Date(yyyy, time.Month(mm), dd, 0, 0, 0, 0, loc)
	// time.Date normalises overflow (31/02 -> 02/03); reject instead.
	if t.Day() != dd || t.Month() != time.Month(mm) || t.Year() != yyyy {
		return nil
	}
	return &t
}

// FormatDate renders DD/MM/YYYY. A nil date renders as "".
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// ParseCriteriaDate accepts the ISO form an HTML date input sends as well as
// DD/MM/YYYY. Empty input is (nil, nil).
func ParseCriteriaDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return &t, nil
	}
	if t := ParseDateIn(s, loc); t != nil {
		return t, nil
	}
	return nil, &CriteriaError{Field: "date", Value: s}
}
