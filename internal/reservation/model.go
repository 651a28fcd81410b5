package reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of room categories.
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryDeluxe   Category = "deluxe"
	CategorySuite    Category = "suite"
)

// ValidCategories lists every accepted Category.
var ValidCategories = []Category{CategoryStandard, CategoryDeluxe, CategorySuite}

// IsValid reports whether c is one of ValidCategories.
func (c Category) IsValid() bool {
	for _, v := range ValidCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Room is a bookable room as seen by the reservation flow.
type Room struct {
	ID           string
	Name         string
	Category     Category
	Description  string
	NightlyPrice decimal.Decimal
	Images       []Image
}

// Image is a picture attached to a room.
type Image struct {
	ID           string
	URL          string
	ThumbnailURL string
	AltText      string
	Order        int
}

// BookingRequest is what the guest submits.
type BookingRequest struct {
	RoomID          string
	Name            string
	Email           string
	Phone           string
	Guests          int
	Stay            DateRange
	SpecialRequests string
}

// BookingConfirmation is the backend's answer to an accepted booking.
// Its Nights and TotalPrice are authoritative.
type BookingConfirmation struct {
	ID              string
	BookingNumber   string
	RoomID          string
	RoomName        string
	Name            string
	Email           string
	Phone           string
	Guests          int
	CheckIn         time.Time
	CheckOut        time.Time
	Nights          int
	TotalPrice      decimal.Decimal
	Status          string
	PaymentStatus   string
	SpecialRequests string
}

// ConflictError is returned when the backend rejects a booking because the requested
// nights overlap existing reservations. Spans are exactly what the backend reported.
type ConflictError struct {
	Message string
	Spans   []DateRange
}

func (e *ConflictError) Error() string {
	if len(e.Spans) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Spans))
	for i, s := range e.Spans {
		parts[i] = s.String()
	}
	return fmt.Sprintf("room already reserved: %s", strings.Join(parts, ", "))
}
