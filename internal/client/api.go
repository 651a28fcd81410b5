package client

import (
	"context"

	"github.com/hoteljan/hotel-booking/internal/reservation"
)

// ReservationAPI adapts a Client and an optional Session to the wizard's backend.
type ReservationAPI struct {
	Client  *Client
	Session *Session
}

var _ reservation.API = ReservationAPI{}

func (a ReservationAPI) ListRooms(ctx context.Context) ([]reservation.Room, error) {
	return a.Client.ListRooms(ctx)
}

func (a ReservationAPI) RoomAvailability(ctx context.Context, roomID string, window reservation.DateRange) ([]reservation.ReservedSpan, error) {
	return a.Client.RoomAvailability(ctx, roomID, window)
}

func (a ReservationAPI) CreateBooking(ctx context.Context, req reservation.BookingRequest) (*reservation.BookingConfirmation, error) {
	return a.Client.CreateBooking(ctx, a.Session, req)
}
