package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/config"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	users  interfaces.UserRepository
	cfg    config.AuthConfig
	logger logger.Logger
	now    func() time.Time
}

func NewService(users interfaces.UserRepository, cfg config.AuthConfig, log logger.Logger) *Service {
	return &Service{
		users:  users,
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
}

// Register creates a regular user and signs them in.
func (s *Service) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	var errs domain.ValidationErrors
	if len(username) < 3 || len(username) > 30 {
		errs.Add("username", "username must be 3-30 characters")
	}
	if !domain.ValidEmail(email) {
		errs.Add("email", "please enter email in proper manner")
	}
	if len(password) < s.cfg.MinPasswordLen {
		errs.Add("password", fmt.Sprintf("password must be at least %d characters", s.cfg.MinPasswordLen))
	}
	if err := errs.Err(); err != nil {
		return nil, "", err
	}

	exists, err := s.users.Exists(ctx, email, username)
	if err != nil {
		return nil, "", fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, "", domain.ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := generateToken(user, s.cfg.JWTSecret, s.cfg.TokenTTL, s.now())
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("user_registered", "User registered", logger.RequestID(ctx), map[string]interface{}{"user_id": user.ID})
	return user, token, nil
}

// Login checks the password and returns a fresh token. Unknown users,
// wrong passwords and deactivated accounts all fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive {
		s.logger.Warn("login_rejected", "Inactive account", logger.RequestID(ctx), map[string]interface{}{"user_id": user.ID})
		return nil, "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("last_login_failed", "Failed to stamp last login", logger.RequestID(ctx), nil)
	} else {
		user.LastLoginAt = &now
	}

	token, err := generateToken(user, s.cfg.JWTSecret, s.cfg.TokenTTL, now)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

func (s *Service) ParseToken(token string) (*interfaces.Claims, error) {
	return parseToken(token, s.cfg.JWTSecret)
}

func (s *Service) Me(ctx context.Context, userID int) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}
