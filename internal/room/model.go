package room

import (
	"net/http"
	"time"

	"github.com/hoteljan/hotel-booking/internal/file"
	"github.com/hoteljan/hotel-booking/internal/pkg/apperror"
	"github.com/hoteljan/hotel-booking/internal/reservation"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "room not found")
	ErrImageNotFound   = apperror.New(http.StatusNotFound, "room image not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidCategory = apperror.New(http.StatusBadRequest, "category must be one of standard, deluxe, suite")
	ErrInvalidPrice    = apperror.New(http.StatusBadRequest, "price_per_night must be a non-negative amount")
)

// Room is a bookable hotel room.
type Room struct {
	ID            string
	Name          string
	Category      reservation.Category
	Description   string
	PricePerNight decimal.Decimal
	Images        []Image
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Image links an uploaded file to a room.
type Image struct {
	ID           string `json:"id"`
	RoomID       string `json:"room_id"`
	FileID       string `json:"file_id"`
	HasThumbnail bool   `json:"has_thumbnail"`
	AltText      string `json:"alt_text"`
	SortOrder    int    `json:"sort_order"`
}

// Reservation converts the room into the shape used by the pricing flow.
func (r *Room) Reservation() reservation.Room {
	out := reservation.Room{
		ID:           r.ID,
		Name:         r.Name,
		Category:     r.Category,
		Description:  r.Description,
		NightlyPrice: r.PricePerNight,
		Images:       make([]reservation.Image, len(r.Images)),
	}
	for i, img := range r.Images {
		out.Images[i] = reservation.Image{
			ID:      img.ID,
			URL:     file.FileURL(img.FileID),
			AltText: img.AltText,
			Order:   img.SortOrder,
		}
		if img.HasThumbnail {
			out.Images[i].ThumbnailURL = file.ThumbnailURL(img.FileID)
		}
	}
	return out
}

// Filter defines parameters for listing rooms.
type Filter struct {
	Category  reservation.Category
	MaxPrice  *decimal.Decimal
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
