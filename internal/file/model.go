package file

import (
	"net/http"
	"time"

	"github.com/hoteljan/hotel-booking/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "file not found")
	ErrNoThumbnail     = apperror.New(http.StatusNotFound, "thumbnail not available for this file")
	ErrTooLarge        = apperror.New(http.StatusRequestEntityTooLarge, "file is too large")
	ErrUnsupportedType = apperror.New(http.StatusUnsupportedMediaType, "unsupported file type")
)

// File is an uploaded object with an optional generated thumbnail.
type File struct {
	ID            string
	UserID        *string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the public path for a file relative to the API root.
func FileURL(id string) string {
	return "/files/" + id
}

// ThumbnailURL returns the public path for a file's thumbnail.
func ThumbnailURL(id string) string {
	return "/files/" + id + "/thumbnail"
}
