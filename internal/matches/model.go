package matches

import "time"

// RawRow is one source line keyed by header name.
type RawRow map[string]string

type Match struct {
	ID          string     `json:"id"`
	DateRaw     string     `json:"date_raw"`
	Date        *time.Time `json:"date"`
	Competition string     `json:"competition"`
	Phase       string     `json:"phase"`
	Home        string     `json:"home"`
	Away        string     `json:"away"`
	VideoLink   string     `json:"video_link"`
	SearchIndex string     `json:"-"`
}

// Criteria is the set of user-chosen predicates. Zero values are no-ops.
type Criteria struct {
	From        *time.Time
	To          *time.Time
	Competition string
	Phase       string
	Team        string
	Query       string
}

// Options feeds the filter dropdowns.
type Options struct {
	Competitions []string `json:"competitions"`
	Phases       []string `json:"phases"`
	Teams        []string `json:"teams"`
}

// Card is the display projection of a Match. Fields are plain text and must be
// escaped by whatever renders them.
type Card struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	DateLabel   string `json:"date_label"`
	Competition string `json:"competition,omitempty"`
	Phase       string `json:"phase,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	HasVideo    bool   `json:"has_video"`
	CanCopy     bool   `json:"can_copy"`
}

type Summary struct {
	Count int    `json:"count"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}
