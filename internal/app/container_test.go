package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoteljan/hotel-booking/internal/auth"
	"github.com/hoteljan/hotel-booking/internal/db"
	"github.com/hoteljan/hotel-booking/internal/user"
)

// These tests run against a real database and are skipped unless TEST_DB_DSN is set.

var (
	testRouter *gin.Engine
	testPool   *pgxpool.Pool
	jwtManager *auth.JWTManager
)

func TestMain(m *testing.M) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("No .env file found or failed to load: %v", err)
	}

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	testPool, err = db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	if err := db.Migrate(ctx, testPool); err != nil {
		log.Fatalf("Unable to migrate database: %v", err)
	}

	storageDir, err := os.MkdirTemp("", "hotel-booking-test")
	if err != nil {
		log.Fatalf("Unable to create storage dir: %v", err)
	}

	container, err := NewContainer(Config{
		DBPool:       testPool,
		JWTSecret:    "integration-secret",
		JWTTTL:       30 * time.Minute,
		BcryptCost:   4,
		StoragePath:  storageDir,
		RoomCacheTTL: time.Minute,
		HotelName:    "Hotel Jan",
	})
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}
	testRouter = container.Router
	jwtManager = container.JWTManager

	gin.SetMode(gin.TestMode)

	exitCode := m.Run()

	testPool.Close()
	os.RemoveAll(storageDir)
	os.Exit(exitCode)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DB_DSN is not set")
	}
	clearTables(t)
}

func clearTables(t *testing.T) {
	_, err := testPool.Exec(context.Background(),
		"TRUNCATE TABLE public.bookings, public.room_images, public.rooms, public.files, public.users CASCADE")
	require.NoError(t, err)
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func createTestUser(t *testing.T, email string, role auth.Role) string {
	hash, err := auth.NewBcryptPasswordHasherWithCost(4).Hash("password123")
	require.NoError(t, err)

	repo := user.NewPgxRepository(testPool)
	require.NoError(t, repo.Create(context.Background(), &user.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  &email,
		Role:         role,
		IsActive:     true,
	}))
	u, err := repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)

	token, err := jwtManager.GenerateAccessToken(u.ID, u.Email, u.Role)
	require.NoError(t, err)
	return token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func day(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format("2006-01-02")
}

func TestBookingFlow(t *testing.T) {
	requireDB(t)
	manager := createTestUser(t, "manager@hoteljan.co.ao", auth.RoleManager)
	guest := createTestUser(t, "ana@example.com", auth.RoleGuest)

	w := executeRequest(http.MethodPost, "/v1/rooms", map[string]any{
		"name": "Deluxe Ocean", "category": "deluxe", "price_per_night": "150000.00",
	}, manager)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roomID := decode[map[string]any](t, w)["id"].(string)

	book := func(checkIn, checkOut, token string) *httptest.ResponseRecorder {
		return executeRequest(http.MethodPost, "/v1/bookings", map[string]any{
			"room_id": roomID, "name": "Ana Silva", "email": "ana@example.com", "phone": "+244 900 000 000",
			"guests": 2, "check_in": checkIn, "check_out": checkOut,
		}, token)
	}

	w = book(day(10), day(13), guest)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "450000.00", created["total_price"])
	assert.Equal(t, float64(3), created["nights"])
	assert.Equal(t, "confirmed", created["status"])
	assert.Regexp(t, `^HJ-\d{8}-[0-9A-F]{6}$`, created["booking_number"])
	bookingID := created["id"].(string)

	t.Run("Overlap is rejected with spans", func(t *testing.T) {
		w := book(day(12), day(15), "")
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		body := decode[map[string]any](t, w)
		reserved := body["reserved"].([]any)
		require.Len(t, reserved, 1)
		assert.Equal(t, day(10), reserved[0].(map[string]any)["check_in"])
		assert.Equal(t, day(13), reserved[0].(map[string]any)["check_out"])
	})

	t.Run("Touching stay is accepted", func(t *testing.T) {
		w := book(day(13), day(14), "")
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Availability lists occupied nights", func(t *testing.T) {
		w := executeRequest(http.MethodGet, "/v1/rooms/"+roomID+"/availability?start_date="+day(0)+"&end_date="+day(30), nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode[map[string]any](t, w)
		assert.Equal(t, []any{day(10), day(11), day(12), day(13)}, body["unavailable_dates"])
	})

	t.Run("Owner downloads invoice", func(t *testing.T) {
		w := executeRequest(http.MethodGet, "/v1/bookings/"+bookingID+"/invoice", nil, guest)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("Cancelled booking frees the room", func(t *testing.T) {
		w := executeRequest(http.MethodPost, "/v1/bookings/"+bookingID+"/cancel", nil, guest)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = book(day(11), day(12), "")
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Reactivation cannot double-book", func(t *testing.T) {
		w := executeRequest(http.MethodPatch, "/v1/bookings/"+bookingID, map[string]any{"status": "confirmed"}, manager)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		reserved := decode[map[string]any](t, w)["reserved"].([]any)
		require.Len(t, reserved, 1)
		assert.Equal(t, day(11), reserved[0].(map[string]any)["check_in"])

		var active int
		require.NoError(t, testPool.QueryRow(context.Background(),
			"SELECT count(*) FROM public.bookings WHERE room_id = $1 AND status <> 'cancelled' AND check_in < $2::text::date AND check_out > $3::text::date",
			roomID, day(13), day(10)).Scan(&active))
		assert.Equal(t, 1, active)
	})
}

func TestAuthFlow(t *testing.T) {
	requireDB(t)

	w := executeRequest(http.MethodPost, "/v1/auth/register", map[string]any{
		"email": "guest@example.com", "password": "password123", "display_name": "Guest",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = executeRequest(http.MethodPost, "/v1/auth/login", map[string]any{
		"email": "guest@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[map[string]any](t, w)["access_token"].(string)

	w = executeRequest(http.MethodGet, "/v1/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]map[string]any](t, w)
	assert.Equal(t, "GUEST", me["user"]["role"])

	w = executeRequest(http.MethodGet, "/v1/bookings", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
