// Package client is a typed client for the reservation API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hoteljan/hotel-booking/internal/reservation"
)

const roomsPageSize = 100

// Client talks to a single API base URL, for example http://localhost:8080/v1.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	validate *validator.Validate
}

// New creates a client. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: u, http: httpClient, validate: newValidator()}, nil
}

// Session owns the credentials of one signed-in user.
type Session struct {
	token string
	User  User
}

// User is the signed-in account as reported by the API.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
}

// Authorize attaches the session's bearer token to req. A nil or logged-out
// session leaves the request anonymous.
func (s *Session) Authorize(req *http.Request) {
	if s == nil || s.token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
}

// Logout drops the session's token.
func (s *Session) Logout() {
	s.token = ""
}

// LoggedIn reports whether the session still carries a token.
func (s *Session) LoggedIn() bool {
	return s != nil && s.token != ""
}

func newUser(w wireUser) User {
	u := User{ID: w.ID, Email: w.Email, Role: w.Role}
	if w.DisplayName != nil {
		u.DisplayName = *w.DisplayName
	}
	return u
}

// Register creates a guest account. It does not sign in.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (User, error) {
	body := map[string]string{"email": email, "password": password, "display_name": displayName}
	var out wireMe
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", nil, body, nil, &out); err != nil {
		return User{}, err
	}
	return newUser(out.User), nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var out wireLogin
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil, body, nil, &out); err != nil {
		return nil, err
	}
	return &Session{token: out.AccessToken, User: newUser(out.User)}, nil
}

// Me returns the account behind the session.
func (c *Client) Me(ctx context.Context, s *Session) (User, error) {
	var out wireMe
	if err := c.do(ctx, "me", http.MethodGet, "/me", nil, nil, s, &out); err != nil {
		return User{}, err
	}
	return newUser(out.User), nil
}

// ListRooms returns every room, following pagination.
func (c *Client) ListRooms(ctx context.Context) ([]reservation.Room, error) {
	var rooms []reservation.Room
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(roomsPageSize))

		var out wirePage[wireRoom]
		if err := c.do(ctx, "list rooms", http.MethodGet, "/rooms", q, nil, nil, &out); err != nil {
			return nil, err
		}
		for _, w := range out.Items {
			r, err := w.toRoom()
			if err != nil {
				return nil, invalidPayload("list rooms", err)
			}
			rooms = append(rooms, r)
		}
		if page >= out.TotalPages || len(out.Items) == 0 {
			return rooms, nil
		}
	}
}

// GetRoom returns one room.
func (c *Client) GetRoom(ctx context.Context, id string) (reservation.Room, error) {
	var out wireRoom
	if err := c.do(ctx, "get room", http.MethodGet, "/rooms/"+url.PathEscape(id), nil, nil, nil, &out); err != nil {
		return reservation.Room{}, err
	}
	r, err := out.toRoom()
	if err != nil {
		return reservation.Room{}, invalidPayload("get room", err)
	}
	return r, nil
}

// RoomAvailability returns the nights already booked on a room inside window,
// one inclusive span per booking.
func (c *Client) RoomAvailability(ctx context.Context, roomID string, window reservation.DateRange) ([]reservation.ReservedSpan, error) {
	q := url.Values{}
	if !window.Start.IsZero() {
		q.Set("start_date", reservation.FormatDate(window.Start))
	}
	if !window.End.IsZero() {
		q.Set("end_date", reservation.FormatDate(window.End))
	}

	var out wireAvailability
	path := "/rooms/" + url.PathEscape(roomID) + "/availability"
	if err := c.do(ctx, "room availability", http.MethodGet, path, q, nil, nil, &out); err != nil {
		return nil, err
	}

	spans := make([]reservation.ReservedSpan, 0, len(out.Bookings))
	for _, b := range out.Bookings {
		stay, err := b.toRange()
		if err != nil {
			return nil, invalidPayload("room availability", err)
		}
		spans = append(spans, reservation.ReservedSpan{
			RoomID:    roomID,
			DateRange: reservation.OccupiedSpan(stay.Start, stay.End),
		})
	}
	return spans, nil
}

// CreateBooking submits a booking. The session may be nil for anonymous guests.
// An overlap is reported as *reservation.ConflictError carrying the backend's spans as sent.
func (c *Client) CreateBooking(ctx context.Context, s *Session, req reservation.BookingRequest) (*reservation.BookingConfirmation, error) {
	body := wireCreateBooking{
		RoomID:          req.RoomID,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Guests:          req.Guests,
		CheckIn:         reservation.FormatDate(req.Stay.Start),
		CheckOut:        reservation.FormatDate(req.Stay.End),
		SpecialRequests: req.SpecialRequests,
	}
	var out wireBooking
	if err := c.do(ctx, "create booking", http.MethodPost, "/bookings", nil, body, s, &out); err != nil {
		return nil, err
	}
	conf, err := out.toConfirmation()
	if err != nil {
		return nil, invalidPayload("create booking", err)
	}
	return conf, nil
}

// MyBookings returns the bookings made with the session user's email.
func (c *Client) MyBookings(ctx context.Context, s *Session) ([]reservation.BookingConfirmation, error) {
	q := url.Values{}
	q.Set("page_size", strconv.Itoa(roomsPageSize))

	var out wirePage[wireBooking]
	if err := c.do(ctx, "my bookings", http.MethodGet, "/bookings/mine", q, nil, s, &out); err != nil {
		return nil, err
	}
	bookings := make([]reservation.BookingConfirmation, 0, len(out.Items))
	for _, w := range out.Items {
		b, err := w.toConfirmation()
		if err != nil {
			return nil, invalidPayload("my bookings", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, nil
}

// CancelBooking cancels a booking owned by the session user.
func (c *Client) CancelBooking(ctx context.Context, s *Session, id string) (*reservation.BookingConfirmation, error) {
	var out wireBooking
	path := "/bookings/" + url.PathEscape(id) + "/cancel"
	if err := c.do(ctx, "cancel booking", http.MethodPost, path, nil, nil, s, &out); err != nil {
		return nil, err
	}
	b, err := out.toConfirmation()
	if err != nil {
		return nil, invalidPayload("cancel booking", err)
	}
	return b, nil
}

// FetchInvoice downloads the PDF invoice of a booking and the filename the API suggests.
func (c *Client) FetchInvoice(ctx context.Context, s *Session, id string) ([]byte, string, error) {
	const op = "fetch invoice"
	path := "/bookings/" + url.PathEscape(id) + "/invoice"

	resp, err := c.send(ctx, op, http.MethodGet, path, nil, nil, s)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", c.decodeError(op, resp)
	}
	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &TransportError{Op: op, Err: err}
	}

	filename := "invoice.pdf"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return pdf, filename, nil
}

// do sends a JSON request and decodes a validated JSON answer into out.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any, s *Session, out any) error {
	resp, err := c.send(ctx, op, method, path, query, body, s)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return invalidPayload(op, err)
	}
	if err := c.validate.Struct(out); err != nil {
		return invalidPayload(op, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, body any, s *Session) (*http.Response, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	s.Authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return resp, nil
}

// decodeError turns a non-2xx answer into *reservation.ConflictError, *APIError
// or, when the body is not a structured error, *TransportError.
func (c *Client) decodeError(op string, resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}

	var body wireError
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(raw)))}
	}

	if resp.StatusCode == http.StatusConflict && body.Reserved != nil {
		conflict := &reservation.ConflictError{Message: body.Error}
		for _, span := range body.Reserved {
			if err := c.validate.Struct(span); err != nil {
				return invalidPayload(op, err)
			}
			r, err := span.toRange()
			if err != nil {
				return invalidPayload(op, err)
			}
			conflict.Spans = append(conflict.Spans, r)
		}
		return conflict
	}

	return &APIError{Status: resp.StatusCode, Message: body.Error, Details: body.Details}
}
