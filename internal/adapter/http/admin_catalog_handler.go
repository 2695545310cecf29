package http

import (
	"net/http"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/app/menu"
	"github.com/YelzhanWeb/cafe/internal/domain"
)

// AdminCatalogHandler edits the locally stored admin menu. Edits to ids
// that no longer exist change nothing and answer 204.
type AdminCatalogHandler struct {
	store  *menu.Store
	logger logger.Logger
}

func NewAdminCatalogHandler(store *menu.Store, logger logger.Logger) *AdminCatalogHandler {
	return &AdminCatalogHandler{store: store, logger: logger}
}

func (h *AdminCatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	f := filterFrom(r)
	var out []domain.MenuItem
	for _, it := range h.store.List() {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (h *AdminCatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item domain.MenuItem
	if !decodeJSON(w, r, &item) {
		return
	}
	item = item.Sanitized()
	if err := domain.ValidateCatalogItem(item); err != nil {
		writeError(w, r, h.logger, "catalog_create_failed", err)
		return
	}

	created, err := h.store.Add(r.Context(), item)
	if err != nil {
		writeError(w, r, h.logger, "catalog_create_failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminCatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := domain.ID(r.PathValue("id"))

	var patch domain.MenuItem
	if !decodeJSON(w, r, &patch) {
		return
	}

	current, ok := h.store.Get(id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	patch.ID, patch.StoreID = current.ID, current.StoreID
	merged := current.Overlay(patch).Sanitized()
	if err := domain.ValidateCatalogItem(merged); err != nil {
		writeError(w, r, h.logger, "catalog_update_failed", err)
		return
	}

	updated, ok := h.store.Update(r.Context(), merged)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminCatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.store.Delete(r.Context(), domain.ID(r.PathValue("id")))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminCatalogHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	item, ok := h.store.ToggleAvailability(r.Context(), domain.ID(r.PathValue("id")))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
