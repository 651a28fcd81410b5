package booking

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hoteljan/hotel-booking/internal/invoice"
	"github.com/hoteljan/hotel-booking/internal/notify"
	"github.com/hoteljan/hotel-booking/internal/pkg/apperror"
	"github.com/hoteljan/hotel-booking/internal/reservation"
	"github.com/hoteljan/hotel-booking/internal/room"
)

const numberAttempts = 3

type CreateRequest struct {
	RoomID          string
	UserID          string
	Name            string
	Email           string
	Phone           string
	Guests          int
	CheckIn         time.Time
	CheckOut        time.Time
	SpecialRequests string
}

type UpdateRequest struct {
	Status        *Status
	PaymentStatus *PaymentStatus
}

// RoomGetter looks up the room being booked.
type RoomGetter interface {
	GetByID(ctx context.Context, id string) (*room.Room, error)
}

// InvoiceRenderer turns an invoice into a PDF document.
type InvoiceRenderer interface {
	Render(inv invoice.Invoice) ([]byte, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	// Upcoming lists confirmed bookings checking in today or later, soonest first.
	Upcoming(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Booking, error)
	Cancel(ctx context.Context, id string) (*Booking, error)
	ResendConfirmation(ctx context.Context, id string) error
	Invoice(ctx context.Context, id string) (*Booking, []byte, error)
	Availability(ctx context.Context, roomID string, window reservation.DateRange) (*Availability, error)
}

type service struct {
	repo      Repository
	rooms     RoomGetter
	publisher notify.Publisher
	invoices  InvoiceRenderer
	now       func() time.Time
}

func NewService(repo Repository, rooms RoomGetter, publisher notify.Publisher, invoices InvoiceRenderer) Service {
	return &service{
		repo:      repo,
		rooms:     rooms,
		publisher: publisher,
		invoices:  invoices,
		now:       time.Now,
	}
}

func (s *service) today() time.Time {
	return reservation.Day(s.now())
}

// validationError maps the calculator's first failed check to an API error.
func validationError(err error) error {
	var verr *reservation.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	switch verr.Field {
	case "room":
		return ErrRoomNotFound
	case "guests":
		return ErrInvalidGuests
	case "dates":
		return ErrInvalidDates
	default:
		return ErrMissingContact
	}
}

func newBookingNumber(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("HJ-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(id[:3])))
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	stay := reservation.NewDateRange(req.CheckIn, req.CheckOut)
	if err := reservation.Validate(reservation.BookingRequest{
		RoomID: req.RoomID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Guests: req.Guests,
		Stay:   stay,
	}); err != nil {
		return nil, validationError(err)
	}
	if stay.Start.Before(s.today()) {
		return nil, ErrCheckInPast
	}
	nights := reservation.Nights(stay.Start, stay.End)
	if nights > MaxStayNights {
		return nil, ErrStayTooLong
	}

	rm, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	b := &Booking{
		RoomID:          rm.ID,
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		Guests:          req.Guests,
		CheckIn:         stay.Start,
		CheckOut:        stay.End,
		Nights:          nights,
		PricePerNight:   rm.PricePerNight,
		TotalPrice:      reservation.TotalPrice(nights, rm.PricePerNight),
		Status:          StatusConfirmed,
		PaymentStatus:   PaymentPending,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
	}
	if req.UserID != "" {
		b.UserID = &req.UserID
	}

	for attempt := 1; ; attempt++ {
		b.BookingNumber = newBookingNumber(s.now())
		err = s.repo.Create(ctx, b)
		if !errors.Is(err, errDuplicateNumber) || attempt == numberAttempts {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if err := s.confirm(ctx, b, notify.EventBookingConfirmed); err != nil {
		log.Printf("booking %s created but confirmation failed: %v", b.BookingNumber, err)
	}
	return b, nil
}

// confirm publishes the confirmation event and records that it was sent.
func (s *service) confirm(ctx context.Context, b *Booking, eventType string) error {
	ev := notify.ConfirmationEvent{
		Type:          eventType,
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		RoomName:      b.RoomName,
		Name:          b.Name,
		Email:         b.Email,
		CheckIn:       reservation.FormatDate(b.CheckIn),
		CheckOut:      reservation.FormatDate(b.CheckOut),
		Nights:        b.Nights,
		Guests:        b.Guests,
		TotalPrice:    reservation.FormatPrice(b.TotalPrice),
		OccurredAt:    s.now().UTC(),
	}
	if err := s.publisher.PublishConfirmation(ctx, ev); err != nil {
		return err
	}
	if err := s.repo.MarkConfirmationSent(ctx, b.ID); err != nil {
		return err
	}
	b.ConfirmationSent = true
	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Upcoming(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	today := s.today()
	filter.Status = StatusConfirmed
	filter.CheckInFrom = &today
	filter.SortBy = "check_in"
	filter.SortOrder = "ASC"
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wasCancelled := b.Status == StatusCancelled
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		b.Status = *req.Status
	}
	if req.PaymentStatus != nil {
		if !req.PaymentStatus.IsValid() {
			return nil, ErrInvalidPayment
		}
		b.PaymentStatus = *req.PaymentStatus
	}

	// A cancelled booking gave its nights back; taking them again needs the overlap check.
	if wasCancelled && b.Status != StatusCancelled {
		err = s.repo.Reactivate(ctx, b)
	} else {
		err = s.repo.UpdateStatus(ctx, b)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Cancel(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	b.Status = StatusCancelled
	if err := s.repo.UpdateStatus(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ResendConfirmation(ctx context.Context, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.confirm(ctx, b, notify.EventConfirmationResent); err != nil {
		return apperror.Wrap(err, ErrNotifyUnavailable.Code, ErrNotifyUnavailable.Message)
	}
	return nil
}

func (s *service) Invoice(ctx context.Context, id string) (*Booking, []byte, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	pdf, err := s.invoices.Render(invoice.Invoice{
		Number:          b.BookingNumber,
		IssuedAt:        s.now(),
		GuestName:       b.Name,
		GuestEmail:      b.Email,
		GuestPhone:      b.Phone,
		RoomName:        b.RoomName,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		Nights:          b.Nights,
		Guests:          b.Guests,
		NightlyPrice:    b.PricePerNight,
		Total:           b.TotalPrice,
		PaymentStatus:   string(b.PaymentStatus),
		SpecialRequests: b.SpecialRequests,
	})
	if err != nil {
		return nil, nil, err
	}

	if !b.InvoiceGenerated {
		if err := s.repo.MarkInvoiceGenerated(ctx, b.ID); err != nil {
			return nil, nil, err
		}
		b.InvoiceGenerated = true
	}
	return b, pdf, nil
}

func (s *service) Availability(ctx context.Context, roomID string, window reservation.DateRange) (*Availability, error) {
	window = reservation.NewDateRange(window.Start, window.End)
	if window.End.Before(window.Start) {
		return nil, ErrInvalidWindow
	}

	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	// The window's end date is a night too.
	spans, err := s.repo.ReservedSpans(ctx, roomID, window.Start, window.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	occupied := make(reservation.DateSet)
	for _, sp := range spans {
		for _, d := range reservation.OccupiedSpan(sp.CheckIn, sp.CheckOut).Days() {
			if !d.Before(window.Start) && !d.After(window.End) {
				occupied.Add(d)
			}
		}
	}

	return &Availability{
		RoomID:           rm.ID,
		RoomName:         rm.Name,
		Window:           window,
		Bookings:         spans,
		UnavailableDates: occupied.Sorted(),
	}, nil
}
