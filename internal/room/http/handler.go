package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hoteljan/hotel-booking/internal/file"
	filehttp "github.com/hoteljan/hotel-booking/internal/file/http"
	"github.com/hoteljan/hotel-booking/internal/pkg/request"
	"github.com/hoteljan/hotel-booking/internal/pkg/response"
	"github.com/hoteljan/hotel-booking/internal/reservation"
	"github.com/hoteljan/hotel-booking/internal/room"
	"github.com/shopspring/decimal"
)

const maxImageBytes = 5 * 1024 * 1024

type Handler struct {
	service     room.Service
	fileHandler *filehttp.Handler
}

func NewHandler(service room.Service, fileHandler *filehttp.Handler) *Handler {
	return &Handler{
		service:     service,
		fileHandler: fileHandler,
	}
}

func (h *Handler) List(c *gin.Context) {
	var req ListRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if req.SortOrder == "" {
		// Cheapest first.
		req.SortOrder = "ASC"
	}
	req.Normalize()

	filter := room.Filter{
		Category:  reservation.Category(req.Category),
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.MaxPrice != "" {
		p, err := decimal.NewFromString(req.MaxPrice)
		if err != nil {
			response.BadRequest(c, "invalid max_price", err)
			return
		}
		filter.MaxPrice = &p
	}

	rooms, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		items[i] = NewRoomResponse(r)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid room id", err)
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRoomResponse(r))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRoomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req, err := body.toDomain()
	if err != nil {
		response.Error(c, err)
		return
	}

	r, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRoomResponse(r))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid room id", err)
		return
	}

	var body UpdateRoomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req, err := body.toDomain()
	if err != nil {
		response.Error(c, err)
		return
	}

	r, err := h.service.Update(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRoomResponse(r))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid room id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage attaches a JPEG or PNG picture to a room.
func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid room id", err)
		return
	}

	// Fail before storing anything when the room is gone.
	if _, err := h.service.GetByID(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	altText := c.PostForm("alt_text")
	h.fileHandler.HandleFileUpload(c, filehttp.FileUploadConfig{
		FormFieldName: "image",
		MaxSizeBytes:  maxImageBytes,
		AllowedTypes:  file.ImageTypes,
		AfterUpload: func(ctx context.Context, f *file.File) (any, error) {
			img, err := h.service.AddImage(ctx, uri.ID, f.ID, altText)
			if err != nil {
				return nil, err
			}
			img.HasThumbnail = f.ThumbnailPath != nil
			return NewImageResponse(*img), nil
		},
	})
}

func (h *Handler) RemoveImage(c *gin.Context) {
	var uri RoomImageRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.RemoveImage(c.Request.Context(), uri.ID, uri.ImageID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
