package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
)

// Service manages the server-side menu rows.
type Service struct {
	repo   interfaces.MenuRepository
	logger logger.Logger
}

func NewService(repo interfaces.MenuRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// ListPublic returns available items ordered by category, then name.
func (s *Service) ListPublic(ctx context.Context, filter domain.CatalogFilter) ([]domain.MenuItem, error) {
	filter.Availability = "available"
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CategoryName() != items[j].CategoryName() {
			return items[i].CategoryName() < items[j].CategoryName()
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *Service) ListAdmin(ctx context.Context, filter domain.CatalogFilter) ([]domain.MenuItem, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int) (*domain.MenuItem, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	item = item.Sanitized()
	if err := domain.ValidateCatalogItem(item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &item); err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	s.changed(ctx, "created", item)
	return &item, nil
}

// Update overlays the provided fields on the stored row.
func (s *Service) Update(ctx context.Context, id int, patch domain.MenuItem) (*domain.MenuItem, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.ID, patch.StoreID = "", ""
	item := current.Overlay(patch).Sanitized()
	if err := domain.ValidateCatalogItem(item); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, &item); err != nil {
		return nil, err
	}
	s.changed(ctx, "updated", item)
	return &item, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "deleted", domain.MenuItem{StoreID: domain.ID(fmt.Sprint(id))})
	return nil
}

func (s *Service) ToggleAvailability(ctx context.Context, id int) (*domain.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.IsAvailable = domain.BoolPtr(!item.Available())
	if err := s.repo.Update(ctx, id, item); err != nil {
		return nil, err
	}
	s.changed(ctx, "availability", *item)
	return item, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) changed(ctx context.Context, what string, item domain.MenuItem) {
	s.logger.Info("menu_item_"+what, "Menu item "+what, logger.RequestID(ctx), map[string]interface{}{
		"id":   item.StoreID,
		"name": item.Name,
	})
}
