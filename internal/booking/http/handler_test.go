package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoteljan/hotel-booking/internal/auth"
	"github.com/hoteljan/hotel-booking/internal/booking"
	"github.com/hoteljan/hotel-booking/internal/reservation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	roomID    = "7b0c9c1e-2d3f-4a5b-8c6d-7e8f9a0b1c2d"
	bookingID = "3a9d4c2b-1e0f-4a7b-9c8d-5e6f7a8b9c0d"
	guestID   = "0b8f8a44-2d47-4f55-8b3d-6c1e7f2a9d10"
	staffID   = "6f1c2b1e-8a6f-4a8e-9d4e-3f0b5f4a2c11"
)

func day(s string) time.Time {
	d, err := reservation.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fakeService struct {
	booking.Service
	stored    *booking.Booking
	created   []booking.CreateRequest
	conflict  *booking.ConflictError
	listed    []booking.Filter
	cancelled []string
	window    reservation.DateRange
}

func (f *fakeService) Create(ctx context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	f.created = append(f.created, req)
	if f.conflict != nil {
		return nil, f.conflict
	}
	b := *f.stored
	if req.UserID != "" {
		b.UserID = &req.UserID
	}
	return &b, nil
}

func (f *fakeService) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	if id != f.stored.ID {
		return nil, booking.ErrNotFound
	}
	b := *f.stored
	return &b, nil
}

func (f *fakeService) List(ctx context.Context, filter booking.Filter) ([]*booking.Booking, int, error) {
	f.listed = append(f.listed, filter)
	return []*booking.Booking{f.stored}, 1, nil
}

func (f *fakeService) Update(ctx context.Context, id string, req booking.UpdateRequest) (*booking.Booking, error) {
	if f.conflict != nil {
		return nil, f.conflict
	}
	b := *f.stored
	if req.Status != nil {
		b.Status = *req.Status
	}
	return &b, nil
}

func (f *fakeService) Cancel(ctx context.Context, id string) (*booking.Booking, error) {
	f.cancelled = append(f.cancelled, id)
	b := *f.stored
	b.Status = booking.StatusCancelled
	return &b, nil
}

func (f *fakeService) Invoice(ctx context.Context, id string) (*booking.Booking, []byte, error) {
	return f.stored, []byte("%PDF-1.3 fake"), nil
}

func (f *fakeService) Availability(ctx context.Context, rid string, window reservation.DateRange) (*booking.Availability, error) {
	f.window = window
	return &booking.Availability{
		RoomID:           rid,
		RoomName:         "Deluxe",
		Window:           window,
		Bookings:         []booking.Span{{BookingNumber: "HJ-1", CheckIn: day("2025-04-02"), CheckOut: day("2025-04-04")}},
		UnavailableDates: []string{"2025-04-02", "2025-04-03"},
	}, nil
}

type env struct {
	router *gin.Engine
	svc    *fakeService
	jwt    *auth.JWTManager
}

func setup(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &fakeService{stored: &booking.Booking{
		ID:            bookingID,
		BookingNumber: "HJ-20250320-ABC123",
		RoomID:        roomID,
		RoomName:      "Deluxe",
		Name:          "Ana Silva",
		Email:         "ana@example.com",
		Phone:         "+244 900 000 000",
		Guests:        2,
		CheckIn:       day("2025-04-01"),
		CheckOut:      day("2025-04-04"),
		Nights:        3,
		PricePerNight: decimal.RequireFromString("150000"),
		TotalPrice:    decimal.RequireFromString("450000"),
		Status:        booking.StatusConfirmed,
		PaymentStatus: booking.PaymentPending,
	}}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	h := NewHandler(svc)
	h.now = func() time.Time { return time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC) }

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), h,
		auth.AuthRequired(jwtManager), auth.OptionalAuth(jwtManager), auth.RequireRole(auth.RoleStaff))
	return &env{router: r, svc: svc, jwt: jwtManager}
}

func (e *env) token(t *testing.T, userID, email string, role auth.Role) string {
	t.Helper()
	tok, err := e.jwt.GenerateAccessToken(userID, email, role)
	require.NoError(t, err)
	return tok
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func createBody() map[string]any {
	return map[string]any{
		"room_id":   roomID,
		"name":      "Ana Silva",
		"email":     "ana@example.com",
		"phone":     "+244 900 000 000",
		"guests":    2,
		"check_in":  "2025-04-01",
		"check_out": "2025-04-04",
	}
}

func TestCreateBooking(t *testing.T) {
	e := setup(t)

	w := e.do(http.MethodPost, "/v1/bookings", "", createBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "HJ-20250320-ABC123", resp.BookingNumber)
	assert.Equal(t, "450000.00", resp.TotalPrice)
	assert.Equal(t, "2025-04-01", resp.CheckIn)
	assert.Nil(t, resp.UserID)

	require.Len(t, e.svc.created, 1)
	sent := e.svc.created[0]
	assert.Equal(t, roomID, sent.RoomID)
	assert.Equal(t, 2, sent.Guests)
	assert.Equal(t, "2025-04-04", reservation.FormatDate(sent.CheckOut))

	w = e.do(http.MethodPost, "/v1/bookings", e.token(t, guestID, "ana@example.com", auth.RoleGuest), createBody())
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, guestID, e.svc.created[1].UserID, "token links the booking to the account")

	bad := createBody()
	bad["check_in"] = "01/04/2025"
	w = e.do(http.MethodPost, "/v1/bookings", "", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/v1/bookings", "not-a-token", createBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBookingConflict(t *testing.T) {
	e := setup(t)
	e.svc.conflict = &booking.ConflictError{Spans: []booking.Span{
		{BookingNumber: "HJ-1", CheckIn: day("2025-04-02"), CheckOut: day("2025-04-03")},
		{BookingNumber: "HJ-2", CheckIn: day("2025-04-03"), CheckOut: day("2025-04-05")},
	}}

	w := e.do(http.MethodPost, "/v1/bookings", "", createBody())
	require.Equal(t, http.StatusConflict, w.Code)

	var resp ConflictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "room already booked for these dates", resp.Error)
	assert.Equal(t, "choose other dates", resp.Message)
	assert.Equal(t, []ReservedSpan{
		{CheckIn: "2025-04-02", CheckOut: "2025-04-03"},
		{CheckIn: "2025-04-03", CheckOut: "2025-04-05"},
	}, resp.Reserved)
}

func TestUpdateBookingConflict(t *testing.T) {
	e := setup(t)
	staff := e.token(t, staffID, "staff@hoteljan.co.ao", auth.RoleStaff)

	w := e.do(http.MethodPatch, "/v1/bookings/"+bookingID, staff, map[string]any{"status": "pending"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	e.svc.conflict = &booking.ConflictError{Spans: []booking.Span{
		{BookingNumber: "HJ-2", CheckIn: day("2025-04-02"), CheckOut: day("2025-04-03")},
	}}
	w = e.do(http.MethodPatch, "/v1/bookings/"+bookingID, staff, map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var resp ConflictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []ReservedSpan{{CheckIn: "2025-04-02", CheckOut: "2025-04-03"}}, resp.Reserved)
}

func TestBookingAccess(t *testing.T) {
	e := setup(t)
	owner := e.token(t, guestID, "ana@example.com", auth.RoleGuest)
	stranger := e.token(t, "someone-else", "rui@example.com", auth.RoleGuest)
	staff := e.token(t, staffID, "desk@hoteljan.co.ao", auth.RoleStaff)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/v1/bookings/"+bookingID, "", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/v1/bookings/"+bookingID, owner, nil).Code, "anonymous booking matched by email")
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/v1/bookings/"+bookingID, stranger, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/v1/bookings/"+bookingID, staff, nil).Code)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/v1/bookings", owner, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/v1/bookings?status=confirmed&check_in_from=2025-04-01", staff, nil).Code)
	last := e.svc.listed[len(e.svc.listed)-1]
	assert.Equal(t, booking.StatusConfirmed, last.Status)
	require.NotNil(t, last.CheckInFrom)
	assert.Equal(t, "2025-04-01", reservation.FormatDate(*last.CheckInFrom))

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/v1/bookings/"+bookingID+"/cancel", stranger, nil).Code)
	assert.Empty(t, e.svc.cancelled)
	w := e.do(http.MethodPost, "/v1/bookings/"+bookingID+"/cancel", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{bookingID}, e.svc.cancelled)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/v1/bookings/"+staffID, staff, nil).Code)
}

func TestMyBookings(t *testing.T) {
	e := setup(t)

	w := e.do(http.MethodGet, "/v1/bookings/mine", e.token(t, guestID, "ana@example.com", auth.RoleGuest), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, e.svc.listed, 1)
	assert.Equal(t, "ana@example.com", e.svc.listed[0].Email)
}

func TestInvoiceDownload(t *testing.T) {
	e := setup(t)

	w := e.do(http.MethodGet, "/v1/bookings/"+bookingID+"/invoice", e.token(t, guestID, "ana@example.com", auth.RoleGuest), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice_HJ-20250320-ABC123.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestRoomAvailability(t *testing.T) {
	e := setup(t)

	w := e.do(http.MethodGet, "/v1/rooms/"+roomID+"/availability", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-20", reservation.FormatDate(e.svc.window.Start))
	assert.Equal(t, "2025-06-18", reservation.FormatDate(e.svc.window.End))

	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalUnavailableDays)
	assert.Equal(t, []string{"2025-04-02", "2025-04-03"}, resp.UnavailableDates)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "2025-04-04", resp.Bookings[0].CheckOut)

	w = e.do(http.MethodGet, "/v1/rooms/"+roomID+"/availability?start_date=2025-04-01&end_date=2025-04-30", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-04-30", reservation.FormatDate(e.svc.window.End))

	w = e.do(http.MethodGet, "/v1/rooms/"+roomID+"/availability?start_date=tomorrow", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
