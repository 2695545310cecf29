package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type menuRepository struct {
	db DB
}

func NewMenuRepository(db DB) interfaces.MenuRepository {
	return &menuRepository{db: db}
}

const menuColumns = `id, name, description, price, category, image, is_available, prep_time, ingredients, nutrition`

func scanMenuItem(row Row) (domain.MenuItem, error) {
	var (
		id        int
		item      domain.MenuItem
		desc      string
		price     decimal.Decimal
		category  string
		image     string
		available bool
	)
	err := row.Scan(&id, &item.Name, &desc, &price, &category, &image, &available, &item.PrepTime, &item.Ingredients, &item.Nutrition)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.StoreID = domain.ID(strconv.Itoa(id))
	item.Description = &desc
	item.Price = domain.Price(price)
	item.Category = &category
	item.Image = &image
	item.IsAvailable = &available
	return item, nil
}

func (r *menuRepository) List(ctx context.Context, filter domain.CatalogFilter) ([]domain.MenuItem, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" && filter.Category != "all" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	switch filter.Availability {
	case "available":
		where = append(where, "is_available")
	case "unavailable":
		where = append(where, "NOT is_available")
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + menuColumns + ` FROM menu_items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY category, name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *menuRepository) FindByID(ctx context.Context, id int) (*domain.MenuItem, error) {
	item, err := scanMenuItem(r.db.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("menu item %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load menu item: %w", err)
	}
	return &item, nil
}

func menuArgs(item *domain.MenuItem) []any {
	ingredients := item.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	nutrition := item.Nutrition
	if nutrition == nil {
		nutrition = map[string]string{}
	}
	return []any{
		item.Name, item.DescriptionText(), item.Price.Decimal, item.CategoryName(), item.ImageURL(),
		item.Available(), item.PrepTime, ingredients, nutrition,
	}
}

func (r *menuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	query := `
		INSERT INTO menu_items (name, description, price, category, image, is_available, prep_time, ingredients, nutrition)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id int
	if err := r.db.QueryRow(ctx, query, menuArgs(item)...).Scan(&id); err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	item.StoreID = domain.ID(strconv.Itoa(id))
	return nil
}

func (r *menuRepository) Update(ctx context.Context, id int, item *domain.MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category = $4, image = $5,
		    is_available = $6, prep_time = $7, ingredients = $8, nutrition = $9, updated_at = $10
		WHERE id = $11
	`
	args := append(menuArgs(item), time.Now(), id)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("menu item %d: %w", id, domain.ErrNotFound)
	}
	item.StoreID = domain.ID(strconv.Itoa(id))
	return nil
}

func (r *menuRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("menu item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *menuRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM menu_items ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
