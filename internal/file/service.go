package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/hoteljan/hotel-booking/internal/pkg/storage"
)

// ImageTypes are the MIME types accepted for room pictures.
var ImageTypes = []string{"image/jpeg", "image/png"}

// UploadInput describes one upload and the limits it must satisfy.
type UploadInput struct {
	FileHeader   *multipart.FileHeader
	UserID       string
	MaxSizeBytes int64    // 0 = no limit
	AllowedTypes []string // empty = allow all
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
	now     func() time.Time
}

func NewService(repo Repository, store storage.Storage, imgProc *storage.ImageProcessor) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: imgProc,
		now:     time.Now,
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	if in.MaxSizeBytes > 0 && in.FileHeader.Size > in.MaxSizeBytes {
		return nil, ErrTooLarge
	}

	src, err := in.FileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Images are small enough to buffer; the content is read twice.
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	// Trust the bytes, not the client's Content-Type header.
	contentType := mimetype.Detect(content).String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if len(in.AllowedTypes) > 0 && !slices.Contains(in.AllowedTypes, contentType) {
		return nil, ErrUnsupportedType
	}

	fileID := uuid.New().String()
	shard := fileID[:2]
	ext := strings.ToLower(filepath.Ext(in.FileHeader.Filename))
	storagePath := fmt.Sprintf("upload/%s/%s%s", shard, fileID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	var thumbnailPath *string
	if strings.HasPrefix(contentType, "image/") {
		thumb, err := s.imgProc.GenerateThumbnail(bytes.NewReader(content))
		if err != nil {
			log.Printf("thumbnail generation failed for %s: %v", fileID, err)
		} else {
			p := fmt.Sprintf("upload/%s/%s_thumb.jpg", shard, fileID)
			if err := s.storage.Save(ctx, p, thumb); err != nil {
				log.Printf("saving thumbnail failed for %s: %v", fileID, err)
			} else {
				thumbnailPath = &p
			}
		}
	}

	f := &File{
		ID:            fileID,
		Filename:      filepath.Base(in.FileHeader.Filename),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(content)),
		CreatedAt:     s.now().UTC(),
	}
	if in.UserID != "" {
		f.UserID = &in.UserID
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.removeObjects(ctx, f)
		return nil, err
	}

	return f, nil
}

func (s *service) removeObjects(ctx context.Context, f *File) {
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		log.Printf("failed to delete stored file %s: %v", f.StoragePath, err)
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			log.Printf("failed to delete stored thumbnail %s: %v", *f.ThumbnailPath, err)
		}
	}
}

func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeObjects(ctx, f)
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) open(ctx context.Context, path string) (io.ReadCloser, error) {
	stream, err := s.storage.Get(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}
	return stream, nil
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.open(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.open(ctx, *f.ThumbnailPath)
	if err != nil {
		return nil, nil, err
	}
	return stream, f, nil
}
