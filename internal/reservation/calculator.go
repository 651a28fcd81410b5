package reservation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReservedSpan is a range of nights already booked on a room.
type ReservedSpan struct {
	RoomID string
	DateRange
}

// DisabledDates returns the union of every day covered by the given spans,
// each span enumerated from its start through its end inclusive.
func DisabledDates(spans []ReservedSpan) DateSet {
	set := make(DateSet)
	for _, span := range spans {
		for _, d := range span.Days() {
			set.Add(d)
		}
	}
	return set
}

const secondsPerDay = 24 * 60 * 60

// Nights returns the whole days between start and end.
// The result is zero or negative when end is not after start; it is never clamped.
func Nights(start, end time.Time) int {
	// Unix seconds instead of Sub: a time.Duration saturates after about 292 years.
	return int((Day(end).Unix() - Day(start).Unix()) / secondsPerDay)
}

// ParsePrice parses a decimal currency amount such as "150000.00".
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid price %q: must not be negative", s)
	}
	return d, nil
}

// FormatPrice renders an amount with two fraction digits.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// TotalPrice multiplies the nightly price by the number of nights.
// No taxes or fees are added.
func TotalPrice(nights int, nightly decimal.Decimal) decimal.Decimal {
	return nightly.Mul(decimal.NewFromInt(int64(nights)))
}

// Quote is a price breakdown for a stay.
// A provisional quote is a local estimate; the backend total in a BookingConfirmation
// replaces it once the booking is confirmed.
type Quote struct {
	Nights       int
	NightlyPrice decimal.Decimal
	Subtotal     decimal.Decimal
	Total        decimal.Decimal
	Provisional  bool
}

// NewQuote computes a provisional quote for the stay.
func NewQuote(stay DateRange, nightly decimal.Decimal) Quote {
	nights := Nights(stay.Start, stay.End)
	total := TotalPrice(nights, nightly)
	return Quote{
		Nights:       nights,
		NightlyPrice: nightly,
		Subtotal:     total,
		Total:        total, // taxes included
		Provisional:  true,
	}
}
