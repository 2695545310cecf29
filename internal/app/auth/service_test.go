package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/config"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	user.ID = 42
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Exists(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]*domain.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id int, role domain.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id int, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id int, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

var authCfg = config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, MinPasswordLen: 8}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("Exists", ctx, "ann@example.com", "ann").Return(false, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleUser && u.IsActive && u.PasswordHash != "secret123"
	})).Return(nil)

	svc := NewService(repo, authCfg, logger.Nop())
	user, token, err := svc.Register(ctx, " ann ", "Ann@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, 42, user.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
	repo.AssertExpectations(t)
}

func TestRegister_Rejections(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewService(repo, authCfg, logger.Nop())

	_, _, err := svc.Register(ctx, "ann", "ann@example.com", "short")
	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "password", verrs[0].Field)

	repo.On("Exists", ctx, "bob@example.com", "bob").Return(true, nil)
	_, _, err = svc.Register(ctx, "bob", "bob@example.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrUserExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 7, Email: "ann@example.com", PasswordHash: hashed(t, "secret123"), Role: domain.RoleAdmin, IsActive: true}

	repo := new(MockUserRepository)
	repo.On("FindByEmail", ctx, "ann@example.com").Return(user, nil)
	repo.On("TouchLastLogin", ctx, 7, mock.AnythingOfType("time.Time")).Return(nil)

	svc := NewService(repo, authCfg, logger.Nop())
	got, token, err := svc.Login(ctx, "ANN@example.com ", "secret123")
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, _, err = svc.Login(ctx, "ann@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_InactiveAndUnknown(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("FindByEmail", ctx, "gone@example.com").Return(nil, domain.ErrNotFound)
	repo.On("FindByEmail", ctx, "off@example.com").Return(&domain.User{ID: 3, PasswordHash: hashed(t, "secret123")}, nil)

	svc := NewService(repo, authCfg, logger.Nop())

	_, _, err := svc.Login(ctx, "gone@example.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "off@example.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	repo.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything, mock.Anything)
}

func TestParseToken_Rejects(t *testing.T) {
	svc := NewService(new(MockUserRepository), authCfg, logger.Nop())
	user := &domain.User{ID: 1, Role: domain.RoleUser}

	expired, err := generateToken(user, authCfg.JWTSecret, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = svc.ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged, err := generateToken(user, "other-secret", time.Hour, time.Now())
	require.NoError(t, err)
	_, err = svc.ParseToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
