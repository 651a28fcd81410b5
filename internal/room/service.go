package room

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/hoteljan/hotel-booking/internal/reservation"
	"github.com/karlseguin/ccache/v3"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	Name          string
	Category      reservation.Category
	Description   string
	PricePerNight decimal.Decimal
}

type UpdateRequest struct {
	Name          *string
	Category      *reservation.Category
	Description   *string
	PricePerNight *decimal.Decimal
}

// FileRemover deletes an uploaded file and its stored objects.
type FileRemover interface {
	Delete(ctx context.Context, id string) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Room, error)
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, roomID, fileID, altText string) (*Image, error)
	RemoveImage(ctx context.Context, roomID, imageID string) error
}

type service struct {
	repo     Repository
	files    FileRemover
	cache    *ccache.Cache[*Room]
	cacheTTL time.Duration
}

// NewService returns a room service that caches rooms by id for cacheTTL.
// A zero TTL disables the cache.
func NewService(repo Repository, files FileRemover, cacheTTL time.Duration) Service {
	return &service{
		repo:     repo,
		files:    files,
		cache:    ccache.New(ccache.Configure[*Room]().MaxSize(1000)),
		cacheTTL: cacheTTL,
	}
}

func validPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.Exponent() >= -2
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !req.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if !validPrice(req.PricePerNight) {
		return nil, ErrInvalidPrice
	}

	rm := &Room{
		Name:          name,
		Category:      req.Category,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Images:        []Image{},
	}
	if err := s.repo.Create(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	if item := s.cache.Get(id); item != nil && !item.Expired() {
		return item.Value(), nil
	}

	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cacheTTL > 0 {
		s.cache.Set(id, rm, s.cacheTTL)
	}
	return rm, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, 0, ErrInvalidCategory
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Room, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		rm.Name = name
	}
	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, ErrInvalidCategory
		}
		rm.Category = *req.Category
	}
	if req.Description != nil {
		rm.Description = *req.Description
	}
	if req.PricePerNight != nil {
		if !validPrice(*req.PricePerNight) {
			return nil, ErrInvalidPrice
		}
		rm.PricePerNight = *req.PricePerNight
	}

	if err := s.repo.Update(ctx, rm); err != nil {
		return nil, err
	}
	s.cache.Delete(id)
	return rm, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(id)

	for _, img := range rm.Images {
		if err := s.files.Delete(ctx, img.FileID); err != nil {
			log.Printf("failed to delete image file %s of room %s: %v", img.FileID, id, err)
		}
	}
	return nil
}

func (s *service) AddImage(ctx context.Context, roomID, fileID, altText string) (*Image, error) {
	if _, err := s.repo.GetByID(ctx, roomID); err != nil {
		return nil, err
	}

	img := &Image{RoomID: roomID, FileID: fileID, AltText: strings.TrimSpace(altText)}
	if err := s.repo.AddImage(ctx, img); err != nil {
		return nil, err
	}
	s.cache.Delete(roomID)
	return img, nil
}

// RemoveImage deletes the image's file; the room link goes with it.
func (s *service) RemoveImage(ctx context.Context, roomID, imageID string) error {
	img, err := s.repo.GetImage(ctx, roomID, imageID)
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, img.FileID); err != nil {
		return err
	}
	s.cache.Delete(roomID)
	return nil
}
