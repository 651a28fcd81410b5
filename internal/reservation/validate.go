package reservation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinGuests = 1
	MaxGuests = 6
)

var (
	// ErrDatesUnavailable is returned when a selection covers a night that is already booked.
	ErrDatesUnavailable = errors.New("selected dates include unavailable nights")
	// ErrDateInPast is returned when a selection starts before today.
	ErrDateInPast = errors.New("selected dates are in the past")
)

// ValidationError is a local input failure, reported before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) UserMessage() string {
	return e.Message
}

// Validate runs the pre-submit checks in a fixed order and returns the first failure:
// room selected, contact fields present, guest count in range, at least one night.
func Validate(req BookingRequest) error {
	if strings.TrimSpace(req.RoomID) == "" {
		return &ValidationError{Field: "room", Message: "no room selected"}
	}

	contact := []struct {
		field string
		value string
	}{
		{"name", req.Name},
		{"email", req.Email},
		{"phone", req.Phone},
	}
	for _, c := range contact {
		if strings.TrimSpace(c.value) == "" {
			return &ValidationError{
				Field:   c.field,
				Message: "please fill in all required fields: " + c.field + " is empty",
			}
		}
	}

	if req.Guests < MinGuests || req.Guests > MaxGuests {
		return &ValidationError{
			Field:   "guests",
			Message: fmt.Sprintf("number of guests must be between %d and %d", MinGuests, MaxGuests),
		}
	}

	if Nights(req.Stay.Start, req.Stay.End) <= 0 {
		return &ValidationError{Field: "dates", Message: "check-out must be after check-in"}
	}

	return nil
}

// Overlaps reports whether any night of the stay, check-in up to the night before
// check-out, is in the disabled set. A zero-night stay checks its start day only.
func Overlaps(stay DateRange, disabled DateSet) bool {
	start, end := Day(stay.Start), Day(stay.End)
	if !end.After(start) {
		return disabled.Contains(start)
	}
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if disabled.Contains(d) {
			return true
		}
	}
	return false
}
