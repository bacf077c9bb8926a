package task

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day. It is held as midnight UTC so
// that comparisons are plain day comparisons.
type Date struct {
	t time.Time
}

// NewDate returns the date for the given year, month and day. Out-of-range
// values are normalised the same way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the UTC calendar date of t.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// AddMonths shifts by calendar months. Day overflow rolls forward, so
// March 31 minus one month is March 3 (or 2 in a leap year).
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// DaysUntil returns the whole number of days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is an inclusive range of calendar dates. Start <= End is assumed.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`

	malformed bool
}

// NewDateRange builds a range from two dates.
func NewDateRange(start, end Date) DateRange {
	return DateRange{Start: start, End: end}
}

// ParseDateRange builds a range from boundary strings. A boundary that does
// not parse yields a range that contains nothing rather than an error, so a
// bad filter narrows the view instead of failing the request.
func ParseDateRange(start, end string) DateRange {
	s, errStart := ParseDate(start)
	e, errEnd := ParseDate(end)
	if errStart != nil || errEnd != nil {
		return DateRange{malformed: true}
	}
	return DateRange{Start: s, End: e}
}

// Malformed reports whether the range was built from unparseable input.
func (r DateRange) Malformed() bool { return r.malformed }

// Contains reports whether d lies within the range, boundaries included.
func (r DateRange) Contains(d Date) bool {
	if r.malformed || d.IsZero() {
		return false
	}
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the number of days between Start and End.
func (r DateRange) Days() int { return r.Start.DaysUntil(r.End) }
