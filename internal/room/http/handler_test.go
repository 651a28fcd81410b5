package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hoteljan/hotel-booking/internal/file"
	filehttp "github.com/hoteljan/hotel-booking/internal/file/http"
	"github.com/hoteljan/hotel-booking/internal/reservation"
	"github.com/hoteljan/hotel-booking/internal/room"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	roomID  = "7b0c9c1e-2d3f-4a5b-8c6d-7e8f9a0b1c2d"
	imageID = "0f1e2d3c-4b5a-4968-8776-655443322110"
	fileID  = "aa11bb22-cc33-4d44-8e55-ff6677889900"
)

type fakeRoomService struct {
	room.Service
	rooms   map[string]*room.Room
	created []room.CreateRequest
	filter  room.Filter
	images  []string
}

func (f *fakeRoomService) List(ctx context.Context, filter room.Filter) ([]*room.Room, int, error) {
	f.filter = filter
	var out []*room.Room
	for _, r := range f.rooms {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeRoomService) GetByID(ctx context.Context, id string) (*room.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	return r, nil
}

func (f *fakeRoomService) Create(ctx context.Context, req room.CreateRequest) (*room.Room, error) {
	f.created = append(f.created, req)
	return &room.Room{ID: roomID, Name: req.Name, Category: req.Category, PricePerNight: req.PricePerNight}, nil
}

func (f *fakeRoomService) AddImage(ctx context.Context, rid, fid, altText string) (*room.Image, error) {
	f.images = append(f.images, fid)
	return &room.Image{ID: imageID, RoomID: rid, FileID: fid, AltText: altText}, nil
}

type fakeFileService struct {
	file.Service
}

func (fakeFileService) Upload(ctx context.Context, in file.UploadInput) (*file.File, error) {
	thumb := "upload/aa/" + fileID + "_thumb.jpg"
	return &file.File{ID: fileID, ContentType: "image/png", ThumbnailPath: &thumb}, nil
}

func setup(t *testing.T) (*gin.Engine, *fakeRoomService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &fakeRoomService{rooms: map[string]*room.Room{
		roomID: {
			ID:            roomID,
			Name:          "Deluxe",
			Category:      reservation.CategoryDeluxe,
			PricePerNight: decimal.RequireFromString("150000"),
			Images:        []room.Image{{ID: imageID, FileID: fileID, HasThumbnail: true, AltText: "Bed"}},
		},
	}}

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, filehttp.NewHandler(fakeFileService{})))
	return r, svc
}

func do(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetRoom(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodGet, "/v1/rooms/"+roomID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp RoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "150000.00", resp.PricePerNight)
	assert.Equal(t, "deluxe", resp.Category)
	require.Len(t, resp.Images, 1)
	assert.Equal(t, "/files/"+fileID, resp.Images[0].URL)
	require.NotNil(t, resp.Images[0].ThumbnailURL)
	assert.Equal(t, "/files/"+fileID+"/thumbnail", *resp.Images[0].ThumbnailURL)

	w = do(r, http.MethodGet, "/v1/rooms/"+imageID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/v1/rooms/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRooms(t *testing.T) {
	r, svc := setup(t)

	w := do(r, http.MethodGet, "/v1/rooms?category=deluxe&max_price=200000", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reservation.CategoryDeluxe, svc.filter.Category)
	require.NotNil(t, svc.filter.MaxPrice)
	assert.Equal(t, "200000.00", reservation.FormatPrice(*svc.filter.MaxPrice))
	assert.Equal(t, "ASC", svc.filter.SortOrder)
	assert.Equal(t, 1, svc.filter.Page)

	w = do(r, http.MethodGet, "/v1/rooms?category=penthouse", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRoom(t *testing.T) {
	r, svc := setup(t)

	body := `{"name":"Suite 12","category":"suite","price_per_night":"320000.00"}`
	w := do(r, http.MethodPost, "/v1/rooms", bytes.NewBufferString(body), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.created, 1)
	assert.Equal(t, "320000.00", reservation.FormatPrice(svc.created[0].PricePerNight))

	body = `{"name":"Suite 12","category":"suite","price_per_night":"lots"}`
	w = do(r, http.MethodPost, "/v1/rooms", bytes.NewBufferString(body), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadImage(t *testing.T) {
	r, svc := setup(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "bed.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("alt_text", "King bed"))
	require.NoError(t, mw.Close())

	w := do(r, http.MethodPost, "/v1/rooms/"+roomID+"/images", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{fileID}, svc.images)

	var resp ImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "King bed", resp.AltText)
	assert.NotNil(t, resp.ThumbnailURL)

	w = do(r, http.MethodPost, "/v1/rooms/"+imageID+"/images", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
