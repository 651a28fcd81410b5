package booking

import (
	"net/http"
	"strings"
	"time"

	"github.com/hoteljan/hotel-booking/internal/pkg/apperror"
	"github.com/hoteljan/hotel-booking/internal/reservation"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrConflict          = apperror.New(http.StatusConflict, "room already booked for these dates")
	ErrRoomNotFound      = apperror.New(http.StatusNotFound, "room not found")
	ErrCheckInPast       = apperror.New(http.StatusBadRequest, "cannot book in the past")
	ErrInvalidDates      = apperror.New(http.StatusBadRequest, "check-out must be after check-in")
	ErrStayTooLong       = apperror.New(http.StatusBadRequest, "stays are limited to 90 nights")
	ErrInvalidWindow     = apperror.New(http.StatusBadRequest, "end_date must not be before start_date")
	ErrInvalidGuests     = apperror.New(http.StatusBadRequest, "guests must be between 1 and 6")
	ErrMissingContact    = apperror.New(http.StatusBadRequest, "name, email and phone are required")
	ErrInvalidStatus     = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrInvalidPayment    = apperror.New(http.StatusBadRequest, "invalid payment status")
	ErrAlreadyCancelled  = apperror.New(http.StatusBadRequest, "booking is already cancelled")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrNotifyUnavailable = apperror.New(http.StatusBadGateway, "failed to send confirmation")
)

// MaxStayNights is the longest stay a single booking may cover.
const MaxStayNights = 90

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) IsValid() bool {
	return p == PaymentPending || p == PaymentPaid || p == PaymentRefunded
}

// Booking is a guest's reservation of one room for a range of nights.
// CheckOut is exclusive: the room is free again on that day.
type Booking struct {
	ID               string
	BookingNumber    string
	RoomID           string
	RoomName         string
	UserID           *string
	Name             string
	Email            string
	Phone            string
	Guests           int
	CheckIn          time.Time
	CheckOut         time.Time
	Nights           int
	PricePerNight    decimal.Decimal
	TotalPrice       decimal.Decimal
	Status           Status
	PaymentStatus    PaymentStatus
	SpecialRequests  string
	ConfirmationSent bool
	InvoiceGenerated bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OwnedBy reports whether the booking belongs to the given account.
// Anonymous bookings are matched by email.
func (b *Booking) OwnedBy(userID, email string) bool {
	if userID != "" && b.UserID != nil && *b.UserID == userID {
		return true
	}
	return email != "" && strings.EqualFold(b.Email, email)
}

// Span is a booked night range as reported to callers choosing dates.
type Span struct {
	BookingNumber string
	CheckIn       time.Time
	CheckOut      time.Time
}

// ConflictError lists the existing bookings that overlap a rejected request.
type ConflictError struct {
	Spans []Span
}

func (e *ConflictError) Error() string {
	return ErrConflict.Message
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Availability describes the booked nights of a room inside a window.
type Availability struct {
	RoomID           string
	RoomName         string
	Window           reservation.DateRange
	Bookings         []Span
	UnavailableDates []string
}

type Filter struct {
	Status      Status
	RoomID      string
	Email       string
	Search      string
	CheckInFrom *time.Time
	CheckInTo   *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
