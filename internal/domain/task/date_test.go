package task

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-28")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2026-02-28" {
		t.Errorf("expected 2026-02-28, got %s", d)
	}

	for _, bad := range []string{"", "2026-02-30", "02/28/2026", "2026-2-8", "2026-02-28T00:00:00Z"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestDateOf_UsesUTCDay(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("EST", -5*60*60)
	d := DateOf(time.Date(2026, 3, 15, 23, 30, 0, 0, loc))
	if d.String() != "2026-03-16" {
		t.Errorf("expected 2026-03-16, got %s", d)
	}
}

func TestDate_Comparisons(t *testing.T) {
	a := MustParseDate("2026-03-14")
	b := MustParseDate("2026-03-15")
	if !a.Before(b) || a.After(b) || a.Equal(b) {
		t.Error("expected a < b")
	}
	if !b.Equal(a.AddDays(1)) {
		t.Error("expected a+1 == b")
	}
	if a.DaysUntil(b) != 1 || b.DaysUntil(a) != -1 {
		t.Errorf("unexpected DaysUntil: %d %d", a.DaysUntil(b), b.DaysUntil(a))
	}
}

func TestDate_AddMonthsOverflow(t *testing.T) {
	tests := []struct {
		from   string
		months int
		want   string
	}{
		{"2026-03-15", -1, "2026-02-15"},
		{"2026-03-31", -1, "2026-03-03"},
		{"2024-03-31", -1, "2024-03-02"},
		{"2026-05-31", -3, "2026-03-03"},
		{"2026-01-15", -2, "2025-11-15"},
	}
	for _, tt := range tests {
		got := MustParseDate(tt.from).AddMonths(tt.months)
		if got.String() != tt.want {
			t.Errorf("%s %+d months: expected %s, got %s", tt.from, tt.months, tt.want, got)
		}
	}
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Due  Date  `json:"due"`
		Zero Date  `json:"zero"`
		Ptr  *Date `json:"ptr,omitempty"`
	}
	b, err := json.Marshal(wrapper{Due: MustParseDate("2026-03-15")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"due":"2026-03-15","zero":null}` {
		t.Errorf("unexpected JSON: %s", b)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"due":"2026-04-01","zero":""}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Due.String() != "2026-04-01" || !w.Zero.IsZero() {
		t.Errorf("unexpected decode: %+v", w)
	}
	if err := json.Unmarshal([]byte(`{"due":"April 1"}`), &w); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestDateRange_ContainsInclusive(t *testing.T) {
	r := NewDateRange(MustParseDate("2026-03-01"), MustParseDate("2026-03-31"))
	tests := []struct {
		date string
		want bool
	}{
		{"2026-02-28", false},
		{"2026-03-01", true},
		{"2026-03-15", true},
		{"2026-03-31", true},
		{"2026-04-01", false},
	}
	for _, tt := range tests {
		if got := r.Contains(MustParseDate(tt.date)); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
	if r.Contains(Date{}) {
		t.Error("expected zero date to be outside every range")
	}
	if r.Days() != 30 {
		t.Errorf("expected 30 days, got %d", r.Days())
	}
}

func TestParseDateRange_Malformed(t *testing.T) {
	r := ParseDateRange("2026-03-01", "not-a-date")
	if !r.Malformed() {
		t.Fatal("expected malformed range")
	}
	if r.Contains(MustParseDate("2026-03-05")) {
		t.Error("expected malformed range to contain nothing")
	}

	ok := ParseDateRange("2026-03-01", "2026-03-07")
	if ok.Malformed() || !ok.Contains(MustParseDate("2026-03-07")) {
		t.Errorf("expected well-formed inclusive range, got %+v", ok)
	}
}
