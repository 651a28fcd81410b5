package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hoteljan/hotel-booking/internal/auth"
	"github.com/hoteljan/hotel-booking/internal/file"
	"github.com/hoteljan/hotel-booking/internal/pkg/response"
)

// FileUploadConfig defines how an owning resource accepts an upload.
type FileUploadConfig struct {
	FormFieldName string   // default "file"
	MaxSizeBytes  int64    // 0 = no limit
	AllowedTypes  []string // empty = allow all
	// AfterUpload attaches the stored file to its owner and returns the response body.
	// On error the upload is rolled back.
	AfterUpload func(ctx context.Context, f *file.File) (any, error)
}

// HandleFileUpload stores the uploaded file, runs the AfterUpload hook and
// writes 201 with the hook's result.
func (h *Handler) HandleFileUpload(c *gin.Context, config FileUploadConfig) {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		response.BadRequest(c, fieldName+" is required", nil)
		return
	}

	ctx := c.Request.Context()
	f, err := h.fileService.Upload(ctx, file.UploadInput{
		FileHeader:   fileHeader,
		UserID:       auth.GetUserID(c),
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if config.AfterUpload != nil {
		body, err := config.AfterUpload(ctx, f)
		if err != nil {
			_ = h.fileService.Delete(ctx, f.ID)
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, body)
		return
	}

	var thumbURL *string
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		thumbURL = &t
	}
	c.JSON(http.StatusCreated, FileUploadResponse{
		FileID:       f.ID,
		URL:          file.FileURL(f.ID),
		ThumbnailURL: thumbURL,
		ContentType:  f.ContentType,
		Size:         f.Size,
	})
}
