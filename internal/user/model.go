package user

import (
	"net/http"
	"time"

	"github.com/hoteljan/hotel-booking/internal/auth"
	"github.com/hoteljan/hotel-booking/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password must be at least 8 characters")
	ErrWrongPassword      = apperror.New(http.StatusBadRequest, "current password is incorrect")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "invalid role")
	ErrSelfDemotion       = apperror.New(http.StatusBadRequest, "admins cannot change their own role or deactivate themselves")
)

// User is an account of a guest or a member of the hotel staff.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  *string
	Role         auth.Role
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Filter defines filter options for listing users.
type Filter struct {
	Email       string
	DisplayName string
	Role        auth.Role
	IsActive    *bool

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
