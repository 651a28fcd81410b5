package user

import (
	"context"
	"testing"
	"time"

	"github.com/hoteljan/hotel-booking/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	byID map[string]*User
	seq  int
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*User{}}
}

func (m *memRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) Create(ctx context.Context, u *User) error {
	if _, err := m.GetByEmail(ctx, u.Email); err == nil {
		return ErrEmailAlreadyUsed
	}
	m.seq++
	u.ID = "user-" + string(rune('0'+m.seq))
	u.CreatedAt = time.Now()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memRepo) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &t
	return nil
}

func (m *memRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memRepo) List(ctx context.Context, filter Filter) ([]*User, int, error) {
	var out []*User
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *memRepo) Update(ctx context.Context, u *User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func newTestService() (Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, auth.NewBcryptPasswordHasherWithCost(4)), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Ana@Example.com ", "password123", " Ana ")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, auth.RoleGuest, u.Role)
	require.NotNil(t, u.DisplayName)
	assert.Equal(t, "Ana", *u.DisplayName)

	_, err = svc.Register(ctx, "ana@example.com", "password123", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	logged, err := svc.Login(ctx, "ANA@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotNil(t, logged.LastLoginAt)

	_, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "  ", "password123", "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, "ana@example.com", "short", "")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLoginInactive(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "ana@example.com", "password123", "")
	require.NoError(t, err)
	repo.byID[u.ID].IsActive = false

	_, err = svc.Login(ctx, "ana@example.com", "password123")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "ana@example.com", "password123", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "nope", "new-password"), ErrWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "password123", "short"), ErrPasswordTooShort)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "password123", "new-password"))

	_, err = svc.Login(ctx, "ana@example.com", "new-password")
	assert.NoError(t, err)
}

func TestUpdateRoles(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	admin, err := svc.Register(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)
	repo.byID[admin.ID].Role = auth.RoleAdmin

	guest, err := svc.Register(ctx, "guest@example.com", "password123", "")
	require.NoError(t, err)

	staff := auth.RoleStaff
	updated, err := svc.Update(ctx, admin.ID, guest.ID, UpdateRequest{Role: &staff})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleStaff, updated.Role)

	bogus := auth.Role("ROOT")
	_, err = svc.Update(ctx, admin.ID, guest.ID, UpdateRequest{Role: &bogus})
	assert.ErrorIs(t, err, ErrInvalidRole)

	guestRole := auth.RoleGuest
	_, err = svc.Update(ctx, admin.ID, admin.ID, UpdateRequest{Role: &guestRole})
	assert.ErrorIs(t, err, ErrSelfDemotion)

	inactive := false
	_, err = svc.Update(ctx, admin.ID, admin.ID, UpdateRequest{IsActive: &inactive})
	assert.ErrorIs(t, err, ErrSelfDemotion)

	_, err = svc.Update(ctx, admin.ID, "missing", UpdateRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}
