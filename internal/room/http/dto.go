package http

import (
	"time"

	"github.com/hoteljan/hotel-booking/internal/file"
	"github.com/hoteljan/hotel-booking/internal/pkg/request"
	"github.com/hoteljan/hotel-booking/internal/reservation"
	"github.com/hoteljan/hotel-booking/internal/room"
	"github.com/shopspring/decimal"
)

// ListRoomsRequest defines query parameters for listing rooms.
type ListRoomsRequest struct {
	request.ListParams
	Category string `form:"category" binding:"omitempty,oneof=standard deluxe suite"`
	MaxPrice string `form:"max_price" binding:"omitempty,numeric"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=price_per_night name created_at"`
}

type ImageResponse struct {
	ID           string  `json:"id"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	AltText      string  `json:"alt_text"`
	Order        int     `json:"order"`
}

func NewImageResponse(img room.Image) ImageResponse {
	resp := ImageResponse{
		ID:      img.ID,
		URL:     file.FileURL(img.FileID),
		AltText: img.AltText,
		Order:   img.SortOrder,
	}
	if img.HasThumbnail {
		t := file.ThumbnailURL(img.FileID)
		resp.ThumbnailURL = &t
	}
	return resp
}

// RoomResponse is the wire shape of a room. Prices are decimal strings.
type RoomResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	PricePerNight string          `json:"price_per_night"`
	Images        []ImageResponse `json:"images"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func NewRoomResponse(r *room.Room) RoomResponse {
	images := make([]ImageResponse, len(r.Images))
	for i, img := range r.Images {
		images[i] = NewImageResponse(img)
	}
	return RoomResponse{
		ID:            r.ID,
		Name:          r.Name,
		Category:      string(r.Category),
		Description:   r.Description,
		PricePerNight: reservation.FormatPrice(r.PricePerNight),
		Images:        images,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type CreateRoomRequest struct {
	Name          string `json:"name" binding:"required"`
	Category      string `json:"category" binding:"required,oneof=standard deluxe suite"`
	Description   string `json:"description"`
	PricePerNight string `json:"price_per_night" binding:"required,numeric"`
}

func (r CreateRoomRequest) toDomain() (room.CreateRequest, error) {
	price, err := decimal.NewFromString(r.PricePerNight)
	if err != nil {
		return room.CreateRequest{}, room.ErrInvalidPrice
	}
	return room.CreateRequest{
		Name:          r.Name,
		Category:      reservation.Category(r.Category),
		Description:   r.Description,
		PricePerNight: price,
	}, nil
}

type UpdateRoomRequest struct {
	Name          *string `json:"name"`
	Category      *string `json:"category" binding:"omitempty,oneof=standard deluxe suite"`
	Description   *string `json:"description"`
	PricePerNight *string `json:"price_per_night" binding:"omitempty,numeric"`
}

func (r UpdateRoomRequest) toDomain() (room.UpdateRequest, error) {
	req := room.UpdateRequest{
		Name:        r.Name,
		Description: r.Description,
	}
	if r.Category != nil {
		c := reservation.Category(*r.Category)
		req.Category = &c
	}
	if r.PricePerNight != nil {
		price, err := decimal.NewFromString(*r.PricePerNight)
		if err != nil {
			return room.UpdateRequest{}, room.ErrInvalidPrice
		}
		req.PricePerNight = &price
	}
	return req, nil
}

// RoomImageRequest binds the room and image ids of image routes.
type RoomImageRequest struct {
	ID      string `uri:"id" binding:"required,uuid"`
	ImageID string `uri:"imageId" binding:"required,uuid"`
}
