package http

import (
	"net/http"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/config"
)

// Handlers groups everything the router mounts. The server-side handlers
// (Auth, Menu, Orders, Users, Preferences) are nil when no database is
// configured and their routes are then not registered.
type Handlers struct {
	Storefront   *StorefrontHandler
	AdminCatalog *AdminCatalogHandler

	Tokens      TokenParser
	Auth        *AuthHandler
	Menu        *MenuHandler
	Orders      *OrderHandler
	Users       *UserHandler
	Preferences *PreferencesHandler
}

// NewRouter builds the mux and wraps it in the middleware chain:
// recovery, logging, CORS, rate limiting.
func NewRouter(h Handlers, cfg *config.Config, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health)

	if h.Storefront != nil {
		mux.HandleFunc("GET /api/storefront/menu", h.Storefront.Menu)
		mux.HandleFunc("GET /api/storefront/categories", h.Storefront.Categories)
		mux.HandleFunc("GET /api/cart", h.Storefront.GetCart)
		mux.HandleFunc("POST /api/cart", h.Storefront.AddToCart)
		mux.HandleFunc("DELETE /api/cart", h.Storefront.ClearCart)
		mux.HandleFunc("PUT /api/cart/{id}", h.Storefront.SetQuantity)
		mux.HandleFunc("DELETE /api/cart/{id}", h.Storefront.RemoveLine)
		mux.HandleFunc("GET /api/checkout/summary", h.Storefront.Summary)
		mux.HandleFunc("POST /api/checkout", h.Storefront.Checkout)
	}

	if h.Tokens != nil {
		registerServerRoutes(mux, h)
	}

	var handler http.Handler = mux
	handler = NewRateLimiter(cfg.RateLimit).Middleware(handler)
	handler = CORSMiddleware(cfg.CORS)(handler)
	handler = LoggingMiddleware(log)(handler)
	handler = RecoveryMiddleware(log)(handler)
	return handler
}

func registerServerRoutes(mux *http.ServeMux, h Handlers) {
	auth := func(f http.HandlerFunc) http.HandlerFunc { return RequireAuth(h.Tokens, f) }
	admin := func(f http.HandlerFunc) http.HandlerFunc { return RequireAdmin(h.Tokens, f) }

	if h.AdminCatalog != nil {
		mux.HandleFunc("GET /api/admin/catalog", admin(h.AdminCatalog.List))
		mux.HandleFunc("POST /api/admin/catalog", admin(h.AdminCatalog.Create))
		mux.HandleFunc("PUT /api/admin/catalog/{id}", admin(h.AdminCatalog.Update))
		mux.HandleFunc("DELETE /api/admin/catalog/{id}", admin(h.AdminCatalog.Delete))
		mux.HandleFunc("PATCH /api/admin/catalog/{id}/availability", admin(h.AdminCatalog.ToggleAvailability))
	}

	if h.Auth != nil {
		mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
		mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
		mux.HandleFunc("GET /api/auth/me", auth(h.Auth.Me))
	}

	if h.Menu != nil {
		mux.HandleFunc("GET /api/menu", h.Menu.ListPublic)
		mux.HandleFunc("GET /api/menu/categories", h.Menu.Categories)
		mux.HandleFunc("GET /api/menu/admin", admin(h.Menu.ListAdmin))
		mux.HandleFunc("GET /api/menu/{id}", admin(h.Menu.Get))
		mux.HandleFunc("POST /api/menu", admin(h.Menu.Create))
		mux.HandleFunc("PUT /api/menu/{id}", admin(h.Menu.Update))
		mux.HandleFunc("DELETE /api/menu/{id}", admin(h.Menu.Delete))
		mux.HandleFunc("PATCH /api/menu/{id}/availability", admin(h.Menu.ToggleAvailability))
	}

	if h.Orders != nil {
		mux.HandleFunc("POST /api/orders", auth(h.Orders.CreateOrder))
		mux.HandleFunc("GET /api/orders/my-orders", auth(h.Orders.MyOrders))
		mux.HandleFunc("GET /api/orders", admin(h.Orders.List))
		mux.HandleFunc("GET /api/orders/stats", admin(h.Orders.Stats))
		mux.HandleFunc("PATCH /api/orders/{id}/status", admin(h.Orders.UpdateStatus))
		mux.HandleFunc("GET /api/orders/{id}/history", admin(h.Orders.History))
	}

	if h.Users != nil {
		mux.HandleFunc("GET /api/users", admin(h.Users.List))
		mux.HandleFunc("PATCH /api/users/{id}/role", admin(h.Users.SetRole))
		mux.HandleFunc("PATCH /api/users/{id}/active", admin(h.Users.SetActive))
	}

	if h.Preferences != nil {
		mux.HandleFunc("GET /api/preferences", auth(h.Preferences.Get))
		mux.HandleFunc("PUT /api/preferences", auth(h.Preferences.Update))
	}
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
