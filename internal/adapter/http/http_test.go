package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/adapter/storage"
	"github.com/YelzhanWeb/cafe/internal/app/auth"
	"github.com/YelzhanWeb/cafe/internal/app/cart"
	"github.com/YelzhanWeb/cafe/internal/app/checkout"
	"github.com/YelzhanWeb/cafe/internal/app/menu"
	"github.com/YelzhanWeb/cafe/internal/app/preferences"
	"github.com/YelzhanWeb/cafe/internal/config"
	"github.com/YelzhanWeb/cafe/internal/currency"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeTokens map[string]*interfaces.Claims

func (f fakeTokens) ParseToken(token string) (*interfaces.Claims, error) {
	c, ok := f[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return c, nil
}

var tokens = fakeTokens{
	"admin-token": {UserID: 1, Role: domain.RoleAdmin},
	"user-token":  {UserID: 7, Role: domain.RoleUser},
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	args := m.Called(ctx, filter)
	o, _ := args.Get(0).([]*domain.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) ListForUser(ctx context.Context, userID int) ([]*domain.Order, error) {
	args := m.Called(ctx, userID)
	o, _ := args.Get(0).([]*domain.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id int, status domain.Status, changedBy string, notes *string) (*domain.Order, error) {
	args := m.Called(ctx, id, status, changedBy, notes)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) History(ctx context.Context, id int) ([]*domain.StatusLog, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).([]*domain.StatusLog)
	return l, args.Error(1)
}

func (m *MockOrderService) Stats(ctx context.Context) (*domain.OrderStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*domain.OrderStats)
	return s, args.Error(1)
}

type testServer struct {
	handler http.Handler
	kv      *storage.Memory
	store   *menu.Store
	carts   *cart.Sessions
}

func newTestServer(t *testing.T, orders interfaces.OrderService) *testServer {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()
	kv := storage.NewMemory()

	store := menu.NewStore(ctx, storage.NewJSON[domain.MenuItem](kv, menu.StorageKey, "test"), nil, log)
	carts := cart.NewSessions(kv, "test", log)
	co := checkout.NewService(carts, checkout.NewLogSubmitter(log), decimal.RequireFromString("0.08"), log)
	money := currency.MustNew("INR", "en-IN")

	h := Handlers{
		Storefront:   NewStorefrontHandler(menu.NewCatalog(menu.DefaultSeed(), store), carts, co, money, log),
		AdminCatalog: NewAdminCatalogHandler(store, log),
		Tokens:       tokens,
		Preferences:  NewPreferencesHandler(preferences.NewService(storage.NewValue(kv, "test"), log), log),
	}
	if orders != nil {
		h.Orders = NewOrderHandler(orders, log)
	}
	return &testServer{handler: NewRouter(h, config.Default(), log), kv: kv, store: store, carts: carts}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("X-Request-ID"), "req-"))
	assert.Equal(t, "OK", decode[map[string]string](t, rec)["status"])
}

func TestStorefront_MenuHidesUnavailable(t *testing.T) {
	s := newTestServer(t, nil)
	_, err := s.store.Add(context.Background(), domain.MenuItem{
		Name: "Seasonal Special", Price: domain.Price(decimal.NewFromInt(150)), IsAvailable: domain.BoolPtr(false),
	})
	require.NoError(t, err)

	items := decode[[]domain.MenuItem](t, s.do(t, http.MethodGet, "/api/storefront/menu", "", nil))
	for _, it := range items {
		assert.NotEqual(t, "Seasonal Special", it.Name)
	}

	coffee := decode[[]domain.MenuItem](t, s.do(t, http.MethodGet, "/api/storefront/menu?category=coffee", "", nil))
	require.NotEmpty(t, coffee)
	for _, it := range coffee {
		assert.Equal(t, "coffee", it.CategoryName())
	}
}

const (
	tab1 = "0191d3a0-7c1e-7000-8000-00000000000a"
	tab2 = "0191d3a0-7c1e-7000-8000-00000000000b"
	tab3 = "0191d3a0-7c1e-7000-8000-00000000000c"
)

func TestStorefront_CartFlow(t *testing.T) {
	s := newTestServer(t, nil)
	hdr := map[string]string{CartSessionHeader: tab1}

	rec := s.do(t, http.MethodPost, "/api/cart", `{"id":"3"}`, hdr)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/cart", `{"id":3}`, hdr)
	require.Equal(t, http.StatusOK, rec.Code)

	c := decode[CartResponse](t, rec)
	assert.Equal(t, tab1, c.Session)
	assert.Equal(t, 2, c.Count)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, "₹578.00", c.TotalDisplay)

	rec = s.do(t, http.MethodPut, "/api/cart/3", `{"quantity":100}`, hdr)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/cart/3", `{"quantity":0}`, hdr)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CartResponse](t, rec).Lines)

	// persisted under the session key
	raw, err := s.kv.Get(context.Background(), cart.Key(tab1))
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestStorefront_NewSessionIsIssued(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/cart", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	session := rec.Header().Get(CartSessionHeader)
	assert.NotEmpty(t, session)
	assert.Equal(t, session, decode[CartResponse](t, rec).Session)

	rec = s.do(t, http.MethodGet, "/api/checkout/summary", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "₹0.00", decode[SummaryResponse](t, rec).TotalDisplay)

	// reads without a session do not load carts
	assert.Zero(t, s.carts.Len())
}

func TestStorefront_MalformedSessionRejected(t *testing.T) {
	s := newTestServer(t, nil)
	for _, v := range []string{"x", "tab-1", strings.Repeat("a", 4096)} {
		rec := s.do(t, http.MethodPost, "/api/cart", `{"id":"3"}`, map[string]string{CartSessionHeader: v})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, rec.Header().Get(CartSessionHeader))
	}
	assert.Zero(t, s.carts.Len())

	rec := s.do(t, http.MethodGet, "/api/cart", "", map[string]string{CartSessionHeader: strings.ToUpper(tab3)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tab3, rec.Header().Get(CartSessionHeader))
}

func TestStorefront_AdminOverrideKeepsSeedID(t *testing.T) {
	s := newTestServer(t, nil)
	_, err := s.store.Add(context.Background(), domain.MenuItem{
		Name: "Latte", Price: domain.Price(decimal.NewFromInt(999)), Description: domain.StringPtr("oat milk"),
	})
	require.NoError(t, err)
	hdr := map[string]string{CartSessionHeader: tab3}

	s.do(t, http.MethodPost, "/api/cart", `{"id":"3"}`, hdr)
	rec := s.do(t, http.MethodPost, "/api/cart", `{"id":"3"}`, hdr)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	c := decode[CartResponse](t, rec)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, domain.ID("3"), c.Lines[0].ID)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, "₹578.00", c.TotalDisplay)
}

func TestStorefront_AddUnknownItem(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/cart", `{"id":"nope"}`, map[string]string{CartSessionHeader: tab1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStorefront_Checkout(t *testing.T) {
	s := newTestServer(t, nil)
	hdr := map[string]string{CartSessionHeader: tab2}

	rec := s.do(t, http.MethodPost, "/api/checkout", `{"customer":{"name":"Asha","email":"asha@example.com","phone":"5551234"}}`, hdr)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "empty")

	s.do(t, http.MethodPost, "/api/cart", `{"id":"3"}`, hdr)

	sum := decode[SummaryResponse](t, s.do(t, http.MethodGet, "/api/checkout/summary", "", hdr))
	assert.Equal(t, "₹289.00", sum.SubtotalDisplay)
	assert.Equal(t, "₹23.12", sum.TaxDisplay)
	assert.Equal(t, "₹312.12", sum.TotalDisplay)

	rec = s.do(t, http.MethodPost, "/api/checkout", `{"customer":{"name":"","email":"bad","phone":"5551234"}}`, hdr)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Validation failed", errResp.Error)
	assert.Len(t, errResp.Errors, 2)

	rec = s.do(t, http.MethodPost, "/api/checkout", `{"customer":{"name":"Asha","email":"asha@example.com","phone":"5551234"}}`, hdr)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[CheckoutResponse](t, rec)
	assert.Regexp(t, `^WEB-[0-9A-F]{8}-[0-9A-F]{12}$`, out.Reference)
	assert.Equal(t, 1, out.Summary.ItemCount)

	c := decode[CartResponse](t, s.do(t, http.MethodGet, "/api/cart", "", hdr))
	assert.Zero(t, c.Count)
}

func TestAdminCatalog_RequiresAdmin(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/admin/catalog", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		s.do(t, http.MethodGet, "/api/admin/catalog", "", map[string]string{"Authorization": "Bearer forged"}).Code)
	assert.Equal(t, http.StatusForbidden,
		s.do(t, http.MethodGet, "/api/admin/catalog", "", map[string]string{"Authorization": "Bearer user-token"}).Code)
	assert.Equal(t, http.StatusOK,
		s.do(t, http.MethodGet, "/api/admin/catalog", "", map[string]string{"Authorization": "Bearer admin-token"}).Code)
}

func TestAdminCatalog_CreateUpdateToggle(t *testing.T) {
	s := newTestServer(t, nil)
	admin := map[string]string{"Authorization": "Bearer admin-token"}

	rec := s.do(t, http.MethodPost, "/api/admin/catalog", `{"name":"Flat White","price":"279"}`, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"name":"Flat White","price":"279","category":"coffee","description":"Velvety microfoam"}`
	rec = s.do(t, http.MethodPost, "/api/admin/catalog", body, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.MenuItem](t, rec)
	require.NotEmpty(t, created.ID)

	rec = s.do(t, http.MethodPut, "/api/admin/catalog/"+string(created.ID), `{"price":"299"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.MenuItem](t, rec)
	assert.Equal(t, "Flat White", updated.Name)
	assert.True(t, updated.Price.Decimal.Equal(decimal.NewFromInt(299)))

	rec = s.do(t, http.MethodPatch, "/api/admin/catalog/"+string(created.ID)+"/availability", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[domain.MenuItem](t, rec).Available())

	// unknown ids are a silent no-op
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPut, "/api/admin/catalog/missing", `{"price":"1"}`, admin).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/admin/catalog/missing", "", admin).Code)
}

func TestPreferences(t *testing.T) {
	s := newTestServer(t, nil)
	user := map[string]string{"Authorization": "Bearer user-token"}

	prefs := decode[preferences.Preferences](t, s.do(t, http.MethodGet, "/api/preferences", "", user))
	assert.Equal(t, domain.ThemeLight, prefs.Theme)
	assert.Equal(t, domain.ViewCustomerHome, prefs.Landing)

	rec := s.do(t, http.MethodPut, "/api/preferences", `{"theme":"dark","lastView":"customer-cart"}`, user)
	require.Equal(t, http.StatusOK, rec.Code)
	prefs = decode[preferences.Preferences](t, rec)
	assert.Equal(t, domain.ThemeDark, prefs.Theme)
	assert.Equal(t, "customer-cart", prefs.Landing)

	rec = s.do(t, http.MethodPut, "/api/preferences", `{"theme":"neon"}`, user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrders_CreateUsesCaller(t *testing.T) {
	svc := new(MockOrderService)
	s := newTestServer(t, svc)

	svc.On("CreateOrder", mock.Anything, mock.MatchedBy(func(cmd interfaces.CreateOrderCommand) bool {
		return cmd.UserID == 7 && len(cmd.Items) == 1 && cmd.Items[0].MenuItemID == 3 && cmd.Items[0].Quantity == 2
	})).Return(&domain.Order{ID: 1, Number: "ORD-20250821-0001", Status: domain.StatusPending}, nil)

	body := `{"orderType":"takeaway","customerInfo":{"name":"Ann","phone":"5551234"},"items":[{"menuItem":3,"quantity":2}]}`
	rec := s.do(t, http.MethodPost, "/api/orders", body, map[string]string{"Authorization": "Bearer user-token"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "ORD-20250821-0001", decode[OrderResponse](t, rec).OrderNumber)
	svc.AssertExpectations(t)
}

func TestOrders_UpdateStatusErrors(t *testing.T) {
	svc := new(MockOrderService)
	s := newTestServer(t, svc)
	admin := map[string]string{"Authorization": "Bearer admin-token"}

	svc.On("UpdateStatus", mock.Anything, 5, domain.StatusReady, "admin:1", (*string)(nil)).
		Return(nil, fmt.Errorf("order 5: %w", domain.ErrInvalidStatusTransition))
	svc.On("UpdateStatus", mock.Anything, 6, domain.StatusReady, "admin:1", (*string)(nil)).
		Return(nil, domain.ErrNotFound)

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPatch, "/api/orders/5/status", `{"status":"ready"}`, admin).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, "/api/orders/6/status", `{"status":"ready"}`, admin).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPatch, "/api/orders/abc/status", `{"status":"ready"}`, admin).Code)
	assert.Equal(t, http.StatusForbidden,
		s.do(t, http.MethodGet, "/api/orders", "", map[string]string{"Authorization": "Bearer user-token"}).Code)
}

func TestOrders_InternalErrorIsHidden(t *testing.T) {
	svc := new(MockOrderService)
	s := newTestServer(t, svc)
	svc.On("Stats", mock.Anything).Return(nil, errors.New("pq: connection refused"))

	rec := s.do(t, http.MethodGet, "/api/orders/stats", "", map[string]string{"Authorization": "Bearer admin-token"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestStatusFor(t *testing.T) {
	var verrs domain.ValidationErrors
	verrs.Add("name", "required")

	tests := []struct {
		err  error
		want int
	}{
		{verrs, http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrDuplicate, http.StatusConflict},
		{domain.ErrCheckoutState, http.StatusConflict},
		{domain.ErrQuantityLimit, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(config.RateLimitConfig{Requests: 2, Window: time.Minute, Burst: 2})
	now := time.Date(2025, 8, 21, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000"))

	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1003"))
}

func TestDecodeJSON_RejectsGarbage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{"))
	var v map[string]any
	assert.False(t, decodeJSON(rec, req, &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
