package http

import (
	"net/http"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
)

// MenuHandler serves the database-backed menu.
type MenuHandler struct {
	service interfaces.CatalogService
	logger  logger.Logger
}

func NewMenuHandler(service interfaces.CatalogService, logger logger.Logger) *MenuHandler {
	return &MenuHandler{service: service, logger: logger}
}

func filterFrom(r *http.Request) domain.CatalogFilter {
	q := r.URL.Query()
	return domain.CatalogFilter{
		Category:     q.Get("category"),
		Search:       q.Get("search"),
		Availability: q.Get("availability"),
	}
}

func (h *MenuHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListPublic(r.Context(), filterFrom(r))
	if err != nil {
		writeError(w, r, h.logger, "menu_list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *MenuHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAdmin(r.Context(), filterFrom(r))
	if err != nil {
		writeError(w, r, h.logger, "menu_list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "menu_categories_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cats))
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "menu_get_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item domain.MenuItem
	if !decodeJSON(w, r, &item) {
		return
	}
	created, err := h.service.Create(r.Context(), item)
	if err != nil {
		writeError(w, r, h.logger, "menu_create_failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch domain.MenuItem
	if !decodeJSON(w, r, &patch) {
		return
	}
	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, h.logger, "menu_update_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, "menu_delete_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MenuHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.service.ToggleAvailability(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "menu_toggle_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// nonNil keeps empty lists encoding as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
