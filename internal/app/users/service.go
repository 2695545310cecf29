package users

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
)

// Service is the admin view over accounts. An admin can never change
// their own role or deactivate themselves.
type Service struct {
	repo   interfaces.UserRepository
	logger logger.Logger
}

func NewService(repo interfaces.UserRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) SetRole(ctx context.Context, actorID, id int, role domain.Role) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot change your own role", domain.ErrForbidden)
	}
	if !role.Valid() {
		var errs domain.ValidationErrors
		errs.Add("role", "role must be admin or user")
		return errs
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	s.logger.Info("user_role_changed", "User role updated", logger.RequestID(ctx), map[string]interface{}{
		"user_id": id,
		"role":    role,
		"by":      actorID,
	})
	return nil
}

func (s *Service) SetActive(ctx context.Context, actorID, id int, active bool) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot change your own status", domain.ErrForbidden)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info("user_status_changed", "User active flag updated", logger.RequestID(ctx), map[string]interface{}{
		"user_id": id,
		"active":  active,
		"by":      actorID,
	})
	return nil
}
