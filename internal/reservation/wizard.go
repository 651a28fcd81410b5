package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AvailabilityWindowDays is how far ahead reserved spans are fetched.
const AvailabilityWindowDays = 90

// ErrUnknownRoom is returned when selecting a room that is not in the loaded list.
var ErrUnknownRoom = errors.New("unknown room")

// API is the backend the wizard talks to.
type API interface {
	ListRooms(ctx context.Context) ([]Room, error)
	RoomAvailability(ctx context.Context, roomID string, window DateRange) ([]ReservedSpan, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*BookingConfirmation, error)
}

// UserFacingError is an error whose message is meant for the guest as is,
// such as a structured rejection from the backend.
type UserFacingError interface {
	error
	UserMessage() string
}

// MessageKind classifies the wizard's user-facing message.
type MessageKind string

const (
	MessageNone    MessageKind = ""
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Wizard holds the view-state of one reservation session.
// It is owned by a single caller and is not safe for concurrent use.
type Wizard struct {
	api API
	now func() time.Time

	rooms    []Room
	selected *Room
	reserved []ReservedSpan
	disabled DateSet

	selection       DateRange
	name            string
	email           string
	phone           string
	guests          int
	specialRequests string

	message      string
	messageKind  MessageKind
	confirmation *BookingConfirmation
}

// NewWizard creates a wizard with a two-night selection starting today.
func NewWizard(api API, now func() time.Time) *Wizard {
	if now == nil {
		now = time.Now
	}
	today := Day(now())
	return &Wizard{
		api:       api,
		now:       now,
		disabled:  make(DateSet),
		selection: DateRange{Start: today, End: today.AddDate(0, 0, 2)},
		guests:    MinGuests,
	}
}

// Load fetches the room list and selects the first room.
// On failure the current rooms are kept and the error is shown; nothing is retried.
func (w *Wizard) Load(ctx context.Context) error {
	rooms, err := w.api.ListRooms(ctx)
	if err != nil {
		w.setError("failed to load rooms, please reload the page")
		return fmt.Errorf("list rooms: %w", err)
	}
	w.rooms = rooms
	w.clearMessage()

	if len(rooms) > 0 {
		return w.SelectRoom(ctx, rooms[0].ID)
	}
	return nil
}

// SelectRoom makes roomID current and replaces the reserved spans with a fresh
// snapshot for that room only.
func (w *Wizard) SelectRoom(ctx context.Context, roomID string) error {
	var room *Room
	for i := range w.rooms {
		if w.rooms[i].ID == roomID {
			room = &w.rooms[i]
			break
		}
	}
	if room == nil {
		return ErrUnknownRoom
	}

	w.selected = room
	w.reserved = nil
	w.disabled = make(DateSet)
	w.confirmation = nil

	today := Day(w.now())
	window := DateRange{Start: today, End: today.AddDate(0, 0, AvailabilityWindowDays)}
	spans, err := w.api.RoomAvailability(ctx, room.ID, window)
	if err != nil {
		w.setError("failed to load availability for " + room.Name)
		return fmt.Errorf("room availability: %w", err)
	}

	w.reserved = spans
	w.disabled = DisabledDates(spans)
	w.clearMessage()
	return nil
}

// SelectDates sets the stay, refusing selections that start in the past or touch
// a disabled night. The previous selection is kept on refusal.
func (w *Wizard) SelectDates(start, end time.Time) error {
	stay := NewDateRange(start, end)
	if stay.Start.Before(Day(w.now())) {
		return ErrDateInPast
	}
	if Overlaps(stay, w.disabled) {
		return ErrDatesUnavailable
	}
	w.selection = stay
	w.confirmation = nil
	return nil
}

// SetContact sets the guest's contact fields.
func (w *Wizard) SetContact(name, email, phone string) {
	w.name, w.email, w.phone = name, email, phone
}

// SetGuests sets the guest count.
func (w *Wizard) SetGuests(n int) {
	w.guests = n
}

// SetSpecialRequests sets the optional free-text request.
func (w *Wizard) SetSpecialRequests(s string) {
	w.specialRequests = s
}

// Request assembles the booking request from the current state.
func (w *Wizard) Request() BookingRequest {
	req := BookingRequest{
		Name:            w.name,
		Email:           w.email,
		Phone:           w.phone,
		Guests:          w.guests,
		Stay:            w.selection,
		SpecialRequests: w.specialRequests,
	}
	if w.selected != nil {
		req.RoomID = w.selected.ID
	}
	return req
}

// Quote returns the provisional price for the current selection.
// Without a selected room the quote is zero.
func (w *Wizard) Quote() Quote {
	if w.selected == nil {
		return Quote{Nights: Nights(w.selection.Start, w.selection.End), Provisional: true}
	}
	return NewQuote(w.selection, w.selected.NightlyPrice)
}

// Total returns the price to display: the backend total of the last confirmed
// submit, otherwise the provisional quote. Choosing another room or stay, or
// submitting again, drops the confirmed total. The bool is true when the value is provisional.
func (w *Wizard) Total() (decimal.Decimal, bool) {
	if w.confirmation != nil {
		return w.confirmation.TotalPrice, false
	}
	return w.Quote().Total, true
}

// Submit validates the request locally and sends it to the backend.
// Every outcome is reflected in Message.
func (w *Wizard) Submit(ctx context.Context) (*BookingConfirmation, error) {
	w.confirmation = nil
	req := w.Request()
	if err := Validate(req); err != nil {
		w.setError(err.Error())
		return nil, err
	}

	conf, err := w.api.CreateBooking(ctx, req)
	if err != nil {
		var conflict *ConflictError
		var rejected UserFacingError
		switch {
		case errors.As(err, &conflict):
			w.setError(conflict.Error())
		case errors.As(err, &rejected):
			w.setError(rejected.UserMessage())
		default:
			w.setError("failed to create booking, please try again")
		}
		return nil, err
	}

	w.confirmation = conf
	w.messageKind = MessageSuccess
	w.message = "booking confirmed: " + conf.BookingNumber
	return conf, nil
}

func (w *Wizard) setError(msg string) {
	w.messageKind = MessageError
	w.message = msg
}

func (w *Wizard) clearMessage() {
	w.messageKind = MessageNone
	w.message = ""
}

func (w *Wizard) Rooms() []Room                      { return w.rooms }
func (w *Wizard) SelectedRoom() *Room                { return w.selected }
func (w *Wizard) ReservedSpans() []ReservedSpan      { return w.reserved }
func (w *Wizard) DisabledDates() DateSet             { return w.disabled }
func (w *Wizard) Selection() DateRange               { return w.selection }
func (w *Wizard) Message() (string, MessageKind)     { return w.message, w.messageKind }
func (w *Wizard) Confirmation() *BookingConfirmation { return w.confirmation }
