package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
)

type mockUserStore struct {
	users   map[string]*models.User
	created []models.User
}

func (m *mockUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := m.users[username]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			cp := *user
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserStore) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	user.ID = "u1"
	cp := *user
	m.users[user.Username] = &cp
	m.created = append(m.created, cp)
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *mockUserStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &mockUserStore{users: map[string]*models.User{
		"editor": {ID: "u-editor", Username: "editor", PasswordHash: string(hash), Role: models.RoleEditor, Active: true},
	}}
	return NewAuthService(store, "test-secret", time.Hour, "timetable-api", validator.New(), zap.NewNop()), store
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "editor", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleEditor, resp.User.Role)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-editor", claims.UserID)
	assert.Equal(t, models.RoleEditor, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "editor", Password: "wrong"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "secret123"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, store := newAuthFixture(t)
	store.users["editor"].Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "editor", Password: "secret123"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestEnsureAdminOnlyOnEmptyTable(t *testing.T) {
	store := &mockUserStore{}
	svc := NewAuthService(store, "test-secret", time.Hour, "timetable-api", validator.New(), zap.NewNop())

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "changeme"))
	require.Len(t, store.created, 1)
	assert.Equal(t, models.RoleAdmin, store.created[0].Role)

	// A second call sees the populated table and does nothing.
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "changeme"))
	assert.Len(t, store.created, 1)
}

func TestEnsureAdminSkipsWithoutCredentials(t *testing.T) {
	store := &mockUserStore{}
	svc := NewAuthService(store, "test-secret", time.Hour, "timetable-api", validator.New(), zap.NewNop())

	require.NoError(t, svc.EnsureAdmin(context.Background(), "", ""))
	assert.Empty(t, store.created)
}
