package reservation

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the ISO calendar date format exchanged with the API.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
// Check-in and check-out are whole-day boundaries, so every date handled by this
// package goes through Day first.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// DateRange is a pair of calendar dates with Start <= End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two dates, normalized to whole days.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// ParseDateRange parses both ends of a range.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: s, End: e}, nil
}

// Days enumerates every calendar day from Start through End inclusive.
func (r DateRange) Days() []time.Time {
	start, end := Day(r.Start), Day(r.End)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	return FormatDate(r.Start) + " → " + FormatDate(r.End)
}

// OccupiedSpan converts a booking's night range [checkIn, checkOut) into the inclusive
// range of nights it occupies. The check-out day itself stays free for the next guest.
func OccupiedSpan(checkIn, checkOut time.Time) DateRange {
	end := Day(checkOut).AddDate(0, 0, -1)
	if end.Before(Day(checkIn)) {
		end = Day(checkIn)
	}
	return DateRange{Start: Day(checkIn), End: end}
}

// DateSet is a set of calendar days keyed by their YYYY-MM-DD form.
type DateSet map[string]struct{}

// Add inserts the day of t.
func (s DateSet) Add(t time.Time) {
	s[FormatDate(t)] = struct{}{}
}

// Contains reports whether the day of t is in the set.
func (s DateSet) Contains(t time.Time) bool {
	_, ok := s[FormatDate(t)]
	return ok
}

// Len returns the number of distinct days.
func (s DateSet) Len() int {
	return len(s)
}

// Sorted returns the days in ascending order.
func (s DateSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	// YYYY-MM-DD sorts lexically in date order.
	sort.Strings(out)
	return out
}
