package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/cafe/internal/domain"
)

// KeyValueStore is the local store behind carts, the admin menu and
// preferences. Get returns domain.ErrNotFound for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value, origin string) error
	Delete(ctx context.Context, key, origin string) error
}

// OrderFilter narrows the admin order list. Zero values match everything.
type OrderFilter struct {
	Status domain.Status
	Type   domain.OrderType
	Limit  int
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID int) ([]*domain.Order, error)
	GenerateOrderNumber(ctx context.Context) (string, error)
	Update(ctx context.Context, order *domain.Order) error
	LogStatus(ctx context.Context, orderID int, status domain.Status, changedBy string, notes *string) error
	GetStatusHistory(ctx context.Context, orderID int) ([]*domain.StatusLog, error)
	Stats(ctx context.Context, dayStart time.Time) (*domain.OrderStats, error)
}

// MenuRepository stores the server-side catalog. Rows are identified by
// their numeric primary key, carried in MenuItem.StoreID.
type MenuRepository interface {
	List(ctx context.Context, filter domain.CatalogFilter) ([]domain.MenuItem, error)
	FindByID(ctx context.Context, id int) (*domain.MenuItem, error)
	Create(ctx context.Context, item *domain.MenuItem) error
	Update(ctx context.Context, id int, item *domain.MenuItem) error
	Delete(ctx context.Context, id int) error
	Categories(ctx context.Context) ([]string, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Exists(ctx context.Context, email, username string) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id int, role domain.Role) error
	SetActive(ctx context.Context, id int, active bool) error
	TouchLastLogin(ctx context.Context, id int, at time.Time) error
}
