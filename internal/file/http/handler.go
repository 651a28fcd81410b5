package http

import (
	"io"
	"log"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hoteljan/hotel-booking/internal/file"
	"github.com/hoteljan/hotel-booking/internal/pkg/request"
	"github.com/hoteljan/hotel-booking/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
}

func NewHandler(fileService file.Service) *Handler {
	return &Handler{
		fileService: fileService,
	}
}

func stream(c *gin.Context, body io.ReadCloser, contentType, filename string) {
	defer body.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	c.Header("Cache-Control", "public, max-age=86400")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		// Headers are already sent.
		log.Printf("streaming %s failed: %v", filename, err)
	}
}

// ServeFile serves the original upload.
func (h *Handler) ServeFile(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid file id", err)
		return
	}

	body, f, err := h.fileService.Download(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	stream(c, body, f.ContentType, f.Filename)
}

// ServeThumbnail serves the generated JPEG thumbnail.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid file id", err)
		return
	}

	body, f, err := h.fileService.DownloadThumbnail(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	stream(c, body, "image/jpeg", f.Filename+"_thumb.jpg")
}
