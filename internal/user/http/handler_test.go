package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoteljan/hotel-booking/internal/auth"
	"github.com/hoteljan/hotel-booking/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminID = "6f1c2b1e-8a6f-4a8e-9d4e-3f0b5f4a2c11"
const guestID = "0b8f8a44-2d47-4f55-8b3d-6c1e7f2a9d10"

type fakeService struct {
	users map[string]*user.User
}

func (f *fakeService) Register(ctx context.Context, email, password, displayName string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return nil, user.ErrEmailAlreadyUsed
		}
	}
	u := &user.User{ID: "new-user", Email: email, Role: auth.RoleGuest, IsActive: true}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeService) Login(ctx context.Context, email, password string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == email && password == "password123" {
			return u, nil
		}
	}
	return nil, user.ErrInvalidCredentials
}

func (f *fakeService) GetByID(ctx context.Context, id string) (*user.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (f *fakeService) ChangePassword(ctx context.Context, id, current, next string) error {
	if current != "password123" {
		return user.ErrWrongPassword
	}
	return nil
}

func (f *fakeService) List(ctx context.Context, filter user.Filter) ([]*user.User, int, error) {
	var out []*user.User
	for _, u := range f.users {
		if filter.Role == "" || u.Role == filter.Role {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func (f *fakeService) Update(ctx context.Context, actorID, id string, req user.UpdateRequest) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	return u, nil
}

func setup(t *testing.T) (*gin.Engine, *auth.JWTManager) {
	gin.SetMode(gin.TestMode)
	svc := &fakeService{users: map[string]*user.User{
		adminID: {ID: adminID, Email: "admin@hoteljan.test", Role: auth.RoleAdmin, IsActive: true, CreatedAt: time.Now()},
		guestID: {ID: guestID, Email: "ana@example.com", Role: auth.RoleGuest, IsActive: true, CreatedAt: time.Now()},
	}}
	jwtManager := auth.NewJWTManager("test-secret", time.Minute)

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, jwtManager), auth.AuthRequired(jwtManager), auth.RequireRole(auth.RoleAdmin))
	return r, jwtManager
}

func do(r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLoginFlow(t *testing.T) {
	r, jwtManager := setup(t)

	w := do(r, http.MethodPost, "/v1/auth/register", gin.H{"email": "new@example.com", "password": "password123"}, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/v1/auth/register", gin.H{"email": "ana@example.com", "password": "password123"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/v1/auth/register", gin.H{"email": "not-an-email", "password": "password123"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/v1/auth/login", gin.H{"email": "ana@example.com", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 60, resp.ExpiresIn)

	claims, err := jwtManager.ParseAndValidate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, guestID, claims.UserID)
	assert.Equal(t, auth.RoleGuest, claims.Role)

	w = do(r, http.MethodPost, "/v1/auth/login", gin.H{"email": "ana@example.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeAndPassword(t *testing.T) {
	r, jwtManager := setup(t)
	token, err := jwtManager.GenerateAccessToken(guestID, "ana@example.com", auth.RoleGuest)
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/v1/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var me MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "ana@example.com", me.User.Email)

	w = do(r, http.MethodGet, "/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/v1/me/password", gin.H{"current_password": "password123", "new_password": "another-pass"}, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodPost, "/v1/me/password", gin.H{"current_password": "wrong", "new_password": "another-pass"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	r, jwtManager := setup(t)
	admin, err := jwtManager.GenerateAccessToken(adminID, "admin@hoteljan.test", auth.RoleAdmin)
	require.NoError(t, err)
	guest, err := jwtManager.GenerateAccessToken(guestID, "ana@example.com", auth.RoleGuest)
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/v1/users", nil, guest)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/v1/users?role=ADMIN", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []UserResponse `json:"items"`
		Total int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)

	w = do(r, http.MethodGet, "/v1/users?role=OWNER", nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/v1/users/"+guestID, gin.H{"role": "STAFF"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var updated MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "STAFF", updated.User.Role)

	w = do(r, http.MethodPatch, "/v1/users/not-a-uuid", gin.H{"role": "STAFF"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/v1/users/2c5e8a3d-1111-4c1e-9b1a-0d2f6e7a8b90", nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
