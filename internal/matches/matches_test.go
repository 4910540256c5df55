package matches

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string // "" means nil
	}{
		{"01/03/2024", "2024-03-01"},
		{" 01/03/2024 ", "2024-03-01"},
		{"29/02/2024", "2024-02-29"},
		{"31/12/1999", "1999-12-31"},
		{"29/02/2023", ""},
		{"31/02/2024", ""},
		{"31/04/2024", ""},
		{"00/01/2024", ""},
		{"01/00/2024", ""},
		{"01/13/2024", ""},
		{"1/3/2024", ""},
		{"01/03/24", ""},
		{"2024-03-01", ""},
		{"01/03/2024x", ""},
		{"01-03-2024", ""},
		{"bad", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDateIn(tt.in, time.UTC)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("ParseDate(%q) = %v, want nil", tt.in, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseDate(%q) = nil, want %s", tt.in, tt.want)
			}
			assertEq(t, got.Format("2006-01-02"), tt.want)
			if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
				t.Errorf("not midnight: %v", got)
			}
		})
	}
}

func TestParseDate_LocalMidnight(t *testing.T) {
	got := ParseDate("14/07/2024")
	if got == nil {
		t.Fatal("expected date")
	}
	if got.Location() != time.Local {
		t.Errorf("location = %v, want Local", got.Location())
	}
}

func TestFormatDate_RoundTrip(t *testing.T) {
	assertEq(t, FormatDate(nil), "")
	for _, in := range []string{"01/03/2024", "29/02/2024", "31/12/0999", " 07/07/2007"} {
		first := ParseDate(in)
		if first == nil {
			t.Fatalf("ParseDate(%q) = nil", in)
		}
		again := ParseDate(FormatDate(first))
		if again == nil || !again.Equal(*first) {
			t.Errorf("round trip of %q: %v != %v", in, again, first)
		}
	}
	assertEq(t, FormatDate(ParseDate("01/03/2024")), "01/03/2024")
}

func TestParseCriteriaDate(t *testing.T) {
	got, err := ParseCriteriaDate("2024-03-01", time.UTC)
	if err != nil || got == nil || got.Format("02/01/2006") != "01/03/2024" {
		t.Fatalf("iso form: %v %v", got, err)
	}
	got, err = ParseCriteriaDate("01/03/2024", time.UTC)
	if err != nil || got == nil || got.Day() != 1 {
		t.Fatalf("fr form: %v %v", got, err)
	}
	got, err = ParseCriteriaDate("  ", time.UTC)
	if err != nil || got != nil {
		t.Fatalf("empty: %v %v", got, err)
	}
	if _, err := ParseCriteriaDate("yesterday", time.UTC); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildIndex(t *testing.T) {
	assertEq(t, BuildIndex("M1", " Ligue A ", "ÉVIAN"), "m1 |  ligue a  | évian")
	assertEq(t, BuildIndex(), "")
}

func TestMapRow(t *testing.T) {
	cols := DefaultColumns()
	row := RawRow{
		"Match_id":     " 42 ",
		"Date":         " 01/03/2024 ",
		"Tournoi":      "Ligue A",
		"Stade compet": " Finale",
		"home_team":    " Racing ",
		"away_team":    "Évian",
		"LINK":         "http://v/42 ",
	}
	m := MapRowIn(row, cols, time.UTC)
	assertEq(t, m.ID, "42")
	assertEq(t, m.DateRaw, "01/03/2024")
	assertEq(t, m.Competition, "Ligue A")
	assertEq(t, m.Phase, "Finale")
	assertEq(t, m.Home, "Racing")
	assertEq(t, m.Away, "Évian")
	assertEq(t, m.VideoLink, "http://v/42")
	if m.Date == nil || m.Date.Format("2006-01-02") != "2024-03-01" {
		t.Fatalf("date = %v", m.Date)
	}
	for _, f := range []string{m.ID, m.DateRaw, m.Competition, m.Phase, m.Home, m.Away, m.VideoLink} {
		if !strings.Contains(m.SearchIndex, strings.ToLower(f)) {
			t.Errorf("index %q missing %q", m.SearchIndex, f)
		}
	}
}

func TestMapRow_Degrades(t *testing.T) {
	m := MapRow(RawRow{"Date": "  bad date ", "home_team": "X"}, DefaultColumns())
	if m.Date != nil {
		t.Fatalf("expected nil date, got %v", m.Date)
	}
	assertEq(t, m.DateRaw, "bad date")
	assertEq(t, m.ID, "")
	assertEq(t, m.Competition, "")
	assertEq(t, m.Away, "")
	assertEq(t, m.Home, "X")

	empty := MapRow(nil, DefaultColumns())
	if empty.Date != nil || empty.ID != "" {
		t.Fatalf("nil row: %+v", empty)
	}
}

func TestDistinctSorted(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: []string{}},
		{name: "empty", in: []string{}, want: []string{}},
		{name: "dedupe and drop empty", in: []string{"b", "a", "a", ""}, want: []string{"a", "b"}},
		{name: "case insensitive, ties bytewise", in: []string{"b", "a", "A"}, want: []string{"A", "a", "b"}},
		{
			name: "accents collate as base letters",
			in:   []string{"Zèbre", "Évian", "evian", "Angers", "été"},
			want: []string{"Angers", "été", "evian", "Évian", "Zèbre"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistinctSorted(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DistinctSorted() mismatch (-want +got):\n%s", diff)
			}
			// same multiset, different order: same output
			rev := make([]string, len(tt.in))
			for i, v := range tt.in {
				rev[len(tt.in)-1-i] = v
			}
			if diff := cmp.Diff(got, DistinctSorted(rev)); diff != "" {
				t.Errorf("order-dependent output (-first +reversed):\n%s", diff)
			}
		})
	}
}

func TestCurrentOptions(t *testing.T) {
	records := []Match{
		{Competition: "Ligue B", Phase: "Groupe", Home: "Y", Away: "X"},
		{Competition: "Ligue A", Phase: "", Home: "X", Away: "Z"},
		{Competition: "", Phase: "Finale", Home: "", Away: "Y"},
	}
	want := Options{
		Competitions: []string{"Ligue A", "Ligue B"},
		Phases:       []string{"Finale", "Groupe"},
		Teams:        []string{"X", "Y", "Z"},
	}
	if diff := cmp.Diff(want, CurrentOptions(records)); diff != "" {
		t.Errorf("CurrentOptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestDateBounds(t *testing.T) {
	lo, hi := DateBounds(nil)
	if lo != nil || hi != nil {
		t.Fatalf("empty: %v %v", lo, hi)
	}
	records := []Match{
		{Date: ParseDate("05/04/2024")},
		{Date: nil},
		{Date: ParseDate("12/04/2024")},
		{Date: ParseDate("01/01/2023")},
	}
	lo, hi = DateBounds(records)
	assertEq(t, FormatDate(lo), "01/01/2023")
	assertEq(t, FormatDate(hi), "12/04/2024")
}

// --- small helpers ---
func assertEq[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}
