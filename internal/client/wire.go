package client

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hoteljan/hotel-booking/internal/reservation"
)

// Payloads are decoded into wire structs and validated before they become
// reservation types.

type wirePage[T any] struct {
	Items      []T `json:"items" validate:"dive"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total" validate:"min=0"`
}

type wireImage struct {
	ID           string  `json:"id" validate:"required"`
	URL          string  `json:"url" validate:"required"`
	ThumbnailURL *string `json:"thumbnail_url"`
	AltText      string  `json:"alt_text"`
	Order        int     `json:"order"`
}

type wireRoom struct {
	ID            string      `json:"id" validate:"required"`
	Name          string      `json:"name" validate:"required"`
	Category      string      `json:"category" validate:"required,oneof=standard deluxe suite"`
	Description   string      `json:"description"`
	PricePerNight string      `json:"price_per_night" validate:"required,numeric"`
	Images        []wireImage `json:"images" validate:"dive"`
}

func (w wireRoom) toRoom() (reservation.Room, error) {
	price, err := reservation.ParsePrice(w.PricePerNight)
	if err != nil {
		return reservation.Room{}, err
	}
	r := reservation.Room{
		ID:           w.ID,
		Name:         w.Name,
		Category:     reservation.Category(w.Category),
		Description:  w.Description,
		NightlyPrice: price,
		Images:       make([]reservation.Image, len(w.Images)),
	}
	for i, img := range w.Images {
		r.Images[i] = reservation.Image{ID: img.ID, URL: img.URL, AltText: img.AltText, Order: img.Order}
		if img.ThumbnailURL != nil {
			r.Images[i].ThumbnailURL = *img.ThumbnailURL
		}
	}
	return r, nil
}

type wireSpan struct {
	CheckIn       string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut      string `json:"check_out" validate:"required,datetime=2006-01-02"`
	BookingNumber string `json:"booking_number"`
}

func (w wireSpan) toRange() (reservation.DateRange, error) {
	return reservation.ParseDateRange(w.CheckIn, w.CheckOut)
}

type wireAvailability struct {
	RoomID           string     `json:"room_id" validate:"required"`
	RoomName         string     `json:"room_name"`
	StartDate        string     `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string     `json:"end_date" validate:"required,datetime=2006-01-02"`
	UnavailableDates []string   `json:"unavailable_dates" validate:"dive,datetime=2006-01-02"`
	Bookings         []wireSpan `json:"bookings" validate:"dive"`
}

type wireBooking struct {
	ID              string `json:"id" validate:"required"`
	BookingNumber   string `json:"booking_number" validate:"required"`
	RoomID          string `json:"room_id" validate:"required"`
	RoomName        string `json:"room_name"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Guests          int    `json:"guests"`
	CheckIn         string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut        string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Nights          int    `json:"nights" validate:"min=1"`
	TotalPrice      string `json:"total_price" validate:"required,numeric"`
	Status          string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
	PaymentStatus   string `json:"payment_status" validate:"omitempty,oneof=pending paid refunded"`
	SpecialRequests string `json:"special_requests"`
}

func (w wireBooking) toConfirmation() (*reservation.BookingConfirmation, error) {
	stay, err := reservation.ParseDateRange(w.CheckIn, w.CheckOut)
	if err != nil {
		return nil, err
	}
	total, err := reservation.ParsePrice(w.TotalPrice)
	if err != nil {
		return nil, err
	}
	return &reservation.BookingConfirmation{
		ID:              w.ID,
		BookingNumber:   w.BookingNumber,
		RoomID:          w.RoomID,
		RoomName:        w.RoomName,
		Name:            w.Name,
		Email:           w.Email,
		Phone:           w.Phone,
		Guests:          w.Guests,
		CheckIn:         stay.Start,
		CheckOut:        stay.End,
		Nights:          w.Nights,
		TotalPrice:      total,
		Status:          w.Status,
		PaymentStatus:   w.PaymentStatus,
		SpecialRequests: w.SpecialRequests,
	}, nil
}

type wireUser struct {
	ID          string  `json:"id" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	DisplayName *string `json:"display_name"`
	Role        string  `json:"role" validate:"required,oneof=GUEST STAFF MANAGER ADMIN"`
}

type wireMe struct {
	User wireUser `json:"user"`
}

type wireLogin struct {
	AccessToken string   `json:"access_token" validate:"required"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        wireUser `json:"user"`
}

// wireError is the body of every non-2xx answer. Reserved is only set on booking conflicts.
type wireError struct {
	Error    string     `json:"error"`
	Details  string     `json:"details"`
	Message  string     `json:"message"`
	Reserved []wireSpan `json:"reserved"`
}

type wireCreateBooking struct {
	RoomID          string `json:"room_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Guests          int    `json:"guests"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func invalidPayload(op string, err error) error {
	return &TransportError{Op: op, Err: fmt.Errorf("invalid response payload: %w", err)}
}
