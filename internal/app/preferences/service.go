package preferences

import (
	"context"
	"fmt"
	"strings"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/adapter/storage"
	"github.com/YelzhanWeb/cafe/internal/domain"
)

// Preferences is what the client restores on load.
type Preferences struct {
	Theme    domain.Theme `json:"theme"`
	LastView string       `json:"lastView,omitempty"`
	Landing  string       `json:"landing"`
}

// Service keeps per-user UI preferences in the local store under
// "theme:<user>" and "last_view:<user>".
type Service struct {
	values *storage.Value
	logger logger.Logger
}

func NewService(values *storage.Value, log logger.Logger) *Service {
	return &Service{values: values, logger: log}
}

func themeKey(user string) string    { return "theme:" + user }
func lastViewKey(user string) string { return "last_view:" + user }

// Get never fails the caller; an unreadable store yields defaults.
func (s *Service) Get(ctx context.Context, user string, role domain.Role) Preferences {
	theme, err := s.values.Get(ctx, themeKey(user), string(domain.ThemeLight))
	if err != nil || !domain.Theme(theme).Valid() {
		theme = string(domain.ThemeLight)
	}
	last, err := s.values.Get(ctx, lastViewKey(user), "")
	if err != nil {
		s.logger.Warn("preferences_load_failed", "Falling back to default view", logger.RequestID(ctx), map[string]interface{}{"user": user})
		last = ""
	}
	return Preferences{
		Theme:    domain.Theme(theme),
		LastView: last,
		Landing:  domain.LandingView(role, last),
	}
}

func (s *Service) SetTheme(ctx context.Context, user string, theme domain.Theme) error {
	if !theme.Valid() {
		var errs domain.ValidationErrors
		errs.Add("theme", "theme must be light or dark")
		return errs
	}
	if err := s.values.Set(ctx, themeKey(user), string(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

func (s *Service) SetLastView(ctx context.Context, user, view string) error {
	view = strings.TrimSpace(view)
	if view == "" {
		return nil
	}
	if err := s.values.Set(ctx, lastViewKey(user), view); err != nil {
		return fmt.Errorf("save last view: %w", err)
	}
	return nil
}
