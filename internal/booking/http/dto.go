package http

import (
	"time"

	"github.com/hoteljan/hotel-booking/internal/booking"
	"github.com/hoteljan/hotel-booking/internal/pkg/request"
	"github.com/hoteljan/hotel-booking/internal/reservation"
)

type CreateBookingRequest struct {
	RoomID          string `json:"room_id" binding:"required,uuid"`
	Name            string `json:"name" binding:"required,max=200"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required,max=50"`
	Guests          int    `json:"guests"`
	CheckIn         string `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut        string `json:"check_out" binding:"required,datetime=2006-01-02"`
	SpecialRequests string `json:"special_requests" binding:"max=2000"`
}

func (r CreateBookingRequest) toDomain(userID string) (booking.CreateRequest, error) {
	stay, err := reservation.ParseDateRange(r.CheckIn, r.CheckOut)
	if err != nil {
		return booking.CreateRequest{}, err
	}
	return booking.CreateRequest{
		RoomID:          r.RoomID,
		UserID:          userID,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Guests:          r.Guests,
		CheckIn:         stay.Start,
		CheckOut:        stay.End,
		SpecialRequests: r.SpecialRequests,
	}, nil
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	Status      string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	RoomID      string `form:"room_id" binding:"omitempty,uuid"`
	Email       string `form:"email"`
	Search      string `form:"search"`
	CheckInFrom string `form:"check_in_from" binding:"omitempty,datetime=2006-01-02"`
	CheckInTo   string `form:"check_in_to" binding:"omitempty,datetime=2006-01-02"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=check_in created_at total_price"`
}

func (r ListBookingsRequest) toFilter() booking.Filter {
	r.Normalize()
	f := booking.Filter{
		Status:    booking.Status(r.Status),
		RoomID:    r.RoomID,
		Email:     r.Email,
		Search:    r.Search,
		Page:      r.Page,
		PageSize:  r.PageSize,
		SortBy:    r.SortBy,
		SortOrder: r.SortOrder,
	}
	// Formats were checked by the binding tags.
	if d, err := reservation.ParseDate(r.CheckInFrom); err == nil {
		f.CheckInFrom = &d
	}
	if d, err := reservation.ParseDate(r.CheckInTo); err == nil {
		f.CheckInTo = &d
	}
	return f
}

type UpdateBookingRequest struct {
	Status        *string `json:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	PaymentStatus *string `json:"payment_status" binding:"omitempty,oneof=pending paid refunded"`
}

func (r UpdateBookingRequest) toDomain() booking.UpdateRequest {
	var req booking.UpdateRequest
	if r.Status != nil {
		s := booking.Status(*r.Status)
		req.Status = &s
	}
	if r.PaymentStatus != nil {
		p := booking.PaymentStatus(*r.PaymentStatus)
		req.PaymentStatus = &p
	}
	return req
}

type BookingResponse struct {
	ID               string    `json:"id"`
	BookingNumber    string    `json:"booking_number"`
	RoomID           string    `json:"room_id"`
	RoomName         string    `json:"room_name"`
	UserID           *string   `json:"user_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Guests           int       `json:"guests"`
	CheckIn          string    `json:"check_in"`
	CheckOut         string    `json:"check_out"`
	Nights           int       `json:"nights"`
	PricePerNight    string    `json:"price_per_night"`
	TotalPrice       string    `json:"total_price"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"payment_status"`
	SpecialRequests  string    `json:"special_requests"`
	ConfirmationSent bool      `json:"confirmation_sent"`
	InvoiceGenerated bool      `json:"invoice_generated"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		BookingNumber:    b.BookingNumber,
		RoomID:           b.RoomID,
		RoomName:         b.RoomName,
		UserID:           b.UserID,
		Name:             b.Name,
		Email:            b.Email,
		Phone:            b.Phone,
		Guests:           b.Guests,
		CheckIn:          reservation.FormatDate(b.CheckIn),
		CheckOut:         reservation.FormatDate(b.CheckOut),
		Nights:           b.Nights,
		PricePerNight:    reservation.FormatPrice(b.PricePerNight),
		TotalPrice:       reservation.FormatPrice(b.TotalPrice),
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		SpecialRequests:  b.SpecialRequests,
		ConfirmationSent: b.ConfirmationSent,
		InvoiceGenerated: b.InvoiceGenerated,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func newBookingResponses(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}

// ReservedSpan is one existing booking blocking a requested stay.
type ReservedSpan struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// ConflictResponse is the 409 body of a rejected booking.
type ConflictResponse struct {
	Error    string         `json:"error"`
	Reserved []ReservedSpan `json:"reserved"`
	Message  string         `json:"message"`
}

func NewConflictResponse(err *booking.ConflictError) ConflictResponse {
	spans := make([]ReservedSpan, len(err.Spans))
	for i, s := range err.Spans {
		spans[i] = ReservedSpan{
			CheckIn:  reservation.FormatDate(s.CheckIn),
			CheckOut: reservation.FormatDate(s.CheckOut),
		}
	}
	return ConflictResponse{
		Error:    err.Error(),
		Reserved: spans,
		Message:  "choose other dates",
	}
}

type AvailabilityRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type AvailabilityBooking struct {
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	BookingNumber string `json:"booking_number"`
}

type AvailabilityResponse struct {
	RoomID               string                `json:"room_id"`
	RoomName             string                `json:"room_name"`
	StartDate            string                `json:"start_date"`
	EndDate              string                `json:"end_date"`
	UnavailableDates     []string              `json:"unavailable_dates"`
	Bookings             []AvailabilityBooking `json:"bookings"`
	TotalUnavailableDays int                   `json:"total_unavailable_days"`
}

func NewAvailabilityResponse(a *booking.Availability) AvailabilityResponse {
	bookings := make([]AvailabilityBooking, len(a.Bookings))
	for i, s := range a.Bookings {
		bookings[i] = AvailabilityBooking{
			CheckIn:       reservation.FormatDate(s.CheckIn),
			CheckOut:      reservation.FormatDate(s.CheckOut),
			BookingNumber: s.BookingNumber,
		}
	}
	return AvailabilityResponse{
		RoomID:               a.RoomID,
		RoomName:             a.RoomName,
		StartDate:            reservation.FormatDate(a.Window.Start),
		EndDate:              reservation.FormatDate(a.Window.End),
		UnavailableDates:     a.UnavailableDates,
		Bookings:             bookings,
		TotalUnavailableDays: len(a.UnavailableDates),
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}
