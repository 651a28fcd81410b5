package http

// FileUploadResponse is returned by uploads that have no richer owner response.
type FileUploadResponse struct {
	FileID       string  `json:"file_id"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	ContentType  string  `json:"content_type"`
	Size         int64   `json:"size"`
}
