package menu

import (
	_ "embed"
	"fmt"

	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedItem struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Price       string            `yaml:"price"`
	Category    *string           `yaml:"category"`
	Image       *string           `yaml:"image"`
	Description *string           `yaml:"description"`
	PrepTime    *string           `yaml:"prepTime"`
	Ingredients []string          `yaml:"ingredients"`
	Nutrition   map[string]string `yaml:"nutrition"`
}

// ParseSeed decodes a YAML list of menu items. A missing price stays
// undefined.
func ParseSeed(data []byte) ([]domain.MenuItem, error) {
	var raw []seedItem
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	items := make([]domain.MenuItem, 0, len(raw))
	for i, r := range raw {
		item := domain.MenuItem{
			ID:          domain.ID(r.ID),
			Name:        r.Name,
			Category:    r.Category,
			Image:       r.Image,
			Description: r.Description,
			PrepTime:    r.PrepTime,
			Ingredients: r.Ingredients,
			Nutrition:   r.Nutrition,
		}
		if r.Price != "" {
			p, err := decimal.NewFromString(r.Price)
			if err != nil {
				return nil, fmt.Errorf("seed item %d (%s): invalid price %q: %w", i, r.Name, r.Price, err)
			}
			item.Price = domain.Price(p)
		}
		items = append(items, item)
	}
	return items, nil
}

// DefaultSeed is the built-in catalog.
func DefaultSeed() []domain.MenuItem {
	items, err := ParseSeed(seedYAML)
	if err != nil {
		panic(err)
	}
	return items
}
