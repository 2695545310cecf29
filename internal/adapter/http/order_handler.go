package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

type CreateOrderRequest struct {
	OrderType           string              `json:"orderType"`
	TableNumber         *int                `json:"tableNumber,omitempty"`
	Customer            domain.CustomerInfo `json:"customerInfo"`
	SpecialInstructions string              `json:"specialInstructions"`
	Items               []OrderItemRequest  `json:"items"`
}

type OrderItemRequest struct {
	MenuItemID int `json:"menuItem"`
	Quantity   int `json:"quantity"`
}

type UpdateStatusRequest struct {
	Status domain.Status `json:"status"`
	Notes  *string       `json:"notes,omitempty"`
}

type OrderItemResponse struct {
	MenuItemID int             `json:"menuItem"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type OrderResponse struct {
	ID                  int                 `json:"id"`
	OrderNumber         string              `json:"orderNumber"`
	UserID              int                 `json:"userId"`
	OrderType           domain.OrderType    `json:"orderType"`
	TableNumber         *int                `json:"tableNumber,omitempty"`
	Customer            domain.CustomerInfo `json:"customerInfo"`
	Items               []OrderItemResponse `json:"items"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	Tax                 decimal.Decimal     `json:"tax"`
	Total               decimal.Decimal     `json:"total"`
	Status              domain.Status       `json:"status"`
	PaymentMethod       string              `json:"paymentMethod"`
	SpecialInstructions string              `json:"specialInstructions,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
	ReadyAt             *time.Time          `json:"readyAt,omitempty"`
	CompletedAt         *time.Time          `json:"completedAt,omitempty"`
	CancelledAt         *time.Time          `json:"cancelledAt,omitempty"`
}

type StatusLogResponse struct {
	Status    domain.Status `json:"status"`
	ChangedBy string        `json:"changedBy"`
	ChangedAt time.Time     `json:"changedAt"`
	Notes     *string       `json:"notes,omitempty"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
	}
	return OrderResponse{
		ID:                  o.ID,
		OrderNumber:         o.Number,
		UserID:              o.UserID,
		OrderType:           o.Type,
		TableNumber:         o.TableNumber,
		Customer:            o.Customer,
		Items:               items,
		Subtotal:            o.Subtotal,
		Tax:                 o.Tax,
		Total:               o.Total,
		Status:              o.Status,
		PaymentMethod:       string(o.PaymentMethod),
		SpecialInstructions: o.SpecialInstructions,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		ReadyAt:             o.ReadyAt,
		CompletedAt:         o.CompletedAt,
		CancelledAt:         o.CancelledAt,
	}
}

func toOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cmd := interfaces.CreateOrderCommand{
		UserID:              claims.UserID,
		OrderType:           req.OrderType,
		TableNumber:         req.TableNumber,
		Customer:            req.Customer,
		SpecialInstructions: req.SpecialInstructions,
		Items:               make([]interfaces.CreateOrderItemCommand, len(req.Items)),
	}
	for i, it := range req.Items {
		cmd.Items[i] = interfaces.CreateOrderItemCommand{MenuItemID: it.MenuItemID, Quantity: it.Quantity}
	}

	order, err := h.service.CreateOrder(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.logger, "order_creation_failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	orders, err := h.service.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, h.logger, "orders_list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := interfaces.OrderFilter{
		Status: domain.Status(q.Get("status")),
		Type:   domain.OrderType(q.Get("type")),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(w, "limit must be a positive integer", http.StatusBadRequest, nil)
			return
		}
		filter.Limit = limit
	}

	orders, err := h.service.ListAll(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, "orders_list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	claims, _ := ClaimsFrom(r.Context())
	changedBy := "admin:" + strconv.Itoa(claims.UserID)

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status, changedBy, req.Notes)
	if err != nil {
		writeError(w, r, h.logger, "order_status_update_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	logs, err := h.service.History(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "order_history_failed", err)
		return
	}

	out := make([]StatusLogResponse, len(logs))
	for i, l := range logs {
		out[i] = StatusLogResponse{Status: l.Status, ChangedBy: l.ChangedBy, ChangedAt: l.ChangedAt, Notes: l.Notes}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "order_stats_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
