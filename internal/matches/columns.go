package matches

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Columns maps each logical role to the header name used in the source file.
type Columns struct {
	ID          string `yaml:"id"`
	Date        string `yaml:"date"`
	Competition string `yaml:"competition"`
	Phase       string `yaml:"phase"`
	Home        string `yaml:"home"`
	Away        string `yaml:"away"`
	Video       string `yaml:"video"`
}

// DefaultColumns matches the headers of the published match_data.csv.
func DefaultColumns() Columns {
	return Columns{
		ID:          "Match_id",
		Date:        "Date",
		Competition: "Tournoi",
		Phase:       "Stade compet",
		Home:        "home_team",
		Away:        "away_team",
		Video:       "LINK",
	}
}

// roles lists role/header pairs in mapping order.
func (c Columns) roles() [][2]string {
	return [][2]string{
		{"id", c.ID},
		{"date", c.Date},
		{"competition", c.Competition},
		{"phase", c.Phase},
		{"home", c.Home},
		{"away", c.Away},
		{"video", c.Video},
	}
}

// Validate checks that every role names a header.
func (c Columns) Validate() error {
	var missing []string
	for _, r := range c.roles() {
		if strings.TrimSpace(r[1]) == "" {
			missing = append(missing, r[0])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("columns: no header configured for %s", strings.Join(missing, ", "))
	}
	return nil
}

// Missing returns the roles whose header is absent from hdr.
func (c Columns) Missing(hdr []string) []string {
	present := make(map[string]bool, len(hdr))
	for _, h := range hdr {
		present[h] = true
	}
	var out []string
	for _, r := range c.roles() {
		if !present[r[1]] {
			out = append(out, r[0])
		}
	}
	return out
}

// Layout controls how a source table is decoded.
type Layout struct {
	Columns   Columns `yaml:"columns"`
	Delimiter string  `yaml:"delimiter"`
	// Strict turns a missing configured header into a load failure instead of
	// empty values.
	Strict bool `yaml:"strict"`
}

func DefaultLayout() Layout {
	return Layout{Columns: DefaultColumns(), Delimiter: ";"}
}

func (l Layout) Validate() error {
	if err := l.Columns.Validate(); err != nil {
		return err
	}
	if l.Delimiter != "" && utf8.RuneCountInString(l.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", l.Delimiter)
	}
	return nil
}

// comma returns the configured delimiter rune, or 0 to sniff it from the header.
func (l Layout) comma() rune {
	if l.Delimiter == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.Delimiter)
	return r
}
