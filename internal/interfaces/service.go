package interfaces

import (
	"context"

	"github.com/YelzhanWeb/cafe/internal/domain"
)

// CreateOrderCommand is a validated order request from an authenticated user.
type CreateOrderCommand struct {
	UserID              int
	OrderType           string
	TableNumber         *int
	Customer            domain.CustomerInfo
	SpecialInstructions string
	Items               []CreateOrderItemCommand
}

type CreateOrderItemCommand struct {
	MenuItemID int
	Quantity   int
}

type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	ListAll(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	ListForUser(ctx context.Context, userID int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int, status domain.Status, changedBy string, notes *string) (*domain.Order, error)
	History(ctx context.Context, id int) ([]*domain.StatusLog, error)
	Stats(ctx context.Context) (*domain.OrderStats, error)
}

// CatalogService manages the server-side menu.
type CatalogService interface {
	ListPublic(ctx context.Context, filter domain.CatalogFilter) ([]domain.MenuItem, error)
	ListAdmin(ctx context.Context, filter domain.CatalogFilter) ([]domain.MenuItem, error)
	Get(ctx context.Context, id int) (*domain.MenuItem, error)
	Create(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
	Update(ctx context.Context, id int, item domain.MenuItem) (*domain.MenuItem, error)
	Delete(ctx context.Context, id int) error
	ToggleAvailability(ctx context.Context, id int) (*domain.MenuItem, error)
	Categories(ctx context.Context) ([]string, error)
}

// Claims is what a verified token says about its bearer.
type Claims struct {
	UserID int
	Role   domain.Role
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	ParseToken(token string) (*Claims, error)
	Me(ctx context.Context, userID int) (*domain.User, error)
}

type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	SetRole(ctx context.Context, actorID, id int, role domain.Role) error
	SetActive(ctx context.Context, actorID, id int, active bool) error
}

// KitchenService consumes placed orders.
type KitchenService interface {
	ProcessOrder(ctx context.Context, msg OrderMessage) error
}
