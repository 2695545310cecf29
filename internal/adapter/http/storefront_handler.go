package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/app/cart"
	"github.com/YelzhanWeb/cafe/internal/app/checkout"
	"github.com/YelzhanWeb/cafe/internal/app/menu"
	"github.com/YelzhanWeb/cafe/internal/currency"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartSessionHeader names the client's cart. A request without it gets a
// fresh session echoed back in the same header; any other value must be a
// UUID.
const CartSessionHeader = "X-Cart-Session"

// StorefrontHandler serves the reconciled menu, the cart and checkout
// from local storage.
type StorefrontHandler struct {
	catalog  *menu.Catalog
	carts    *cart.Sessions
	checkout *checkout.Service
	money    *currency.Formatter
	logger   logger.Logger
}

func NewStorefrontHandler(catalog *menu.Catalog, carts *cart.Sessions, co *checkout.Service, money *currency.Formatter, logger logger.Logger) *StorefrontHandler {
	return &StorefrontHandler{catalog: catalog, carts: carts, checkout: co, money: money, logger: logger}
}

type CartResponse struct {
	Session      string            `json:"session"`
	Lines        []domain.CartLine `json:"lines"`
	Count        int               `json:"count"`
	Total        decimal.Decimal   `json:"total"`
	TotalDisplay string            `json:"totalDisplay"`
}

type SummaryResponse struct {
	domain.Summary
	SubtotalDisplay string `json:"subtotalDisplay"`
	TaxDisplay      string `json:"taxDisplay"`
	TotalDisplay    string `json:"totalDisplay"`
}

type CheckoutResponse struct {
	Reference string          `json:"reference"`
	Summary   SummaryResponse `json:"summary"`
}

func cartSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get(CartSessionHeader))
	session := uuid.NewString()
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, "invalid "+CartSessionHeader+" header", http.StatusBadRequest, nil)
			return "", false
		}
		session = id.String()
	}
	w.Header().Set(CartSessionHeader, session)
	return session, true
}

// hasCartSession reports whether the client named a cart. Reads without one
// answer from an empty cart instead of loading a new one.
func hasCartSession(r *http.Request) bool {
	return strings.TrimSpace(r.Header.Get(CartSessionHeader)) != ""
}

func (h *StorefrontHandler) summary(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		Summary:         s,
		SubtotalDisplay: h.money.Format(s.Subtotal),
		TaxDisplay:      h.money.Format(s.Tax),
		TotalDisplay:    h.money.Format(s.Total),
	}
}

func (h *StorefrontHandler) writeCart(w http.ResponseWriter, r *http.Request, session string) {
	c := h.carts.Get(r.Context(), session)
	total := c.Total()
	writeJSON(w, http.StatusOK, CartResponse{
		Session:      session,
		Lines:        nonNil(c.Lines()),
		Count:        c.Count(),
		Total:        total,
		TotalDisplay: h.money.Format(total),
	})
}

func (h *StorefrontHandler) Menu(w http.ResponseWriter, r *http.Request) {
	f := filterFrom(r)
	if f.Availability == "" {
		f.Availability = "available"
	}
	writeJSON(w, http.StatusOK, nonNil(h.catalog.Filter(f)))
}

func (h *StorefrontHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.catalog.Categories()))
}

func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, ok := cartSession(w, r)
	if !ok {
		return
	}
	if !hasCartSession(r) {
		writeJSON(w, http.StatusOK, CartResponse{
			Session:      session,
			Lines:        []domain.CartLine{},
			Total:        decimal.Zero,
			TotalDisplay: h.money.Format(decimal.Zero),
		})
		return
	}
	h.writeCart(w, r, session)
}

type AddToCartRequest struct {
	ID domain.ID `json:"id"`
}

func (h *StorefrontHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	session, ok := cartSession(w, r)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, ok := h.catalog.Find(req.ID)
	if !ok {
		respondError(w, "menu item not found", http.StatusNotFound, nil)
		return
	}
	if !item.Available() {
		writeError(w, r, h.logger, "cart_add_failed", domain.ErrItemUnavailable)
		return
	}

	if err := h.carts.Get(r.Context(), session).Add(r.Context(), item); err != nil {
		writeError(w, r, h.logger, "cart_add_failed", err)
		return
	}
	h.writeCart(w, r, session)
}

func (h *StorefrontHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	session, ok := cartSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	id := domain.ID(r.PathValue("id"))
	if err := h.carts.Get(r.Context(), session).SetQuantity(r.Context(), id, req.Quantity); err != nil {
		writeError(w, r, h.logger, "cart_quantity_failed", err)
		return
	}
	h.writeCart(w, r, session)
}

func (h *StorefrontHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	session, ok := cartSession(w, r)
	if !ok {
		return
	}
	h.carts.Get(r.Context(), session).Remove(r.Context(), domain.ID(r.PathValue("id")))
	h.writeCart(w, r, session)
}

func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, ok := cartSession(w, r)
	if !ok {
		return
	}
	h.carts.Get(r.Context(), session).Clear(r.Context())
	h.writeCart(w, r, session)
}

func (h *StorefrontHandler) Summary(w http.ResponseWriter, r *http.Request) {
	session, ok := cartSession(w, r)
	if !ok {
		return
	}
	if !hasCartSession(r) {
		writeJSON(w, http.StatusOK, h.summary(checkout.Summarize(nil, h.checkout.TaxRate())))
		return
	}
	writeJSON(w, http.StatusOK, h.summary(h.checkout.Summary(r.Context(), session)))
}

func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	session, ok := cartSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Customer domain.CustomerInfo `json:"customer"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.checkout.Checkout(r.Context(), session, req.Customer)
	if err != nil {
		var verrs domain.ValidationErrors
		if !errors.As(err, &verrs) {
			h.logger.Warn("checkout_failed", "Checkout rejected", logger.RequestID(r.Context()), map[string]interface{}{
				"session": session,
				"error":   err.Error(),
			})
		}
		writeError(w, r, h.logger, "checkout_failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		Reference: result.Reference,
		Summary:   h.summary(result.Draft.Summary),
	})
}
