package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoteljan/hotel-booking/internal/auth"
	"github.com/hoteljan/hotel-booking/internal/booking"
	"github.com/hoteljan/hotel-booking/internal/invoice"
	"github.com/hoteljan/hotel-booking/internal/pkg/request"
	"github.com/hoteljan/hotel-booking/internal/pkg/response"
	"github.com/hoteljan/hotel-booking/internal/reservation"
)

type Handler struct {
	service booking.Service
	now     func() time.Time
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

// canAccess allows staff and the booking's owner.
func canAccess(c *gin.Context, b *booking.Booking) bool {
	return auth.GetRole(c).AtLeast(auth.RoleStaff) || b.OwnedBy(auth.GetUserID(c), auth.GetUserEmail(c))
}

// load fetches the booking named in the path and checks that the caller may see it.
func (h *Handler) load(c *gin.Context) (*booking.Booking, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return nil, false
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !canAccess(c, b) {
		response.Error(c, booking.ErrPermissionDenied)
		return nil, false
	}
	return b, true
}

// Create books a room. Anonymous guests may book; a bearer token links the booking to the account.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req, err := body.toDomain(auth.GetUserID(c))
	if err != nil {
		response.BadRequest(c, "invalid dates", err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		var conflict *booking.ConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, NewConflictResponse(conflict))
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	filter := req.toFilter()

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(bookings), filter.Page, filter.PageSize, total))
}

// Mine lists the bookings made with the caller's email address.
func (h *Handler) Mine(c *gin.Context) {
	var req request.ListParams
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	bookings, total, err := h.service.List(c.Request.Context(), booking.Filter{
		Email:     auth.GetUserEmail(c),
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    "check_in",
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(bookings), req.Page, req.PageSize, total))
}

func (h *Handler) Upcoming(c *gin.Context) {
	var req request.ListParams
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	bookings, total, err := h.service.Upcoming(c.Request.Context(), booking.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(bookings), req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	b, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Update(c.Request.Context(), uri.ID, body.toDomain())
	if err != nil {
		var conflict *booking.ConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, NewConflictResponse(conflict))
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	b, ok := h.load(c)
	if !ok {
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), b.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) ResendConfirmation(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	if err := h.service.ResendConfirmation(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "confirmation resent"})
}

// Invoice downloads the booking's PDF invoice.
func (h *Handler) Invoice(c *gin.Context) {
	b, ok := h.load(c)
	if !ok {
		return
	}

	b, pdf, err := h.service.Invoice(c.Request.Context(), b.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+invoice.Filename(b.BookingNumber)+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// RoomAvailability reports the booked nights of a room, by default from today
// through the next 90 days.
func (h *Handler) RoomAvailability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid room id", err)
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	window := reservation.DateRange{Start: reservation.Day(h.now())}
	window.End = window.Start.AddDate(0, 0, reservation.AvailabilityWindowDays)
	if req.StartDate != "" {
		window.Start, _ = reservation.ParseDate(req.StartDate)
	}
	if req.EndDate != "" {
		window.End, _ = reservation.ParseDate(req.EndDate)
	}

	av, err := h.service.Availability(c.Request.Context(), uri.ID, window)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(av))
}
