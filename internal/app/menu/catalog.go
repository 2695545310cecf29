package menu

import (
	"github.com/YelzhanWeb/cafe/internal/domain"
)

// Catalog is the customer-facing menu: the seed merged with the admin
// store, recomputed on every read.
type Catalog struct {
	seed  []domain.MenuItem
	admin *Store
}

func NewCatalog(seed []domain.MenuItem, admin *Store) *Catalog {
	return &Catalog{seed: seed, admin: admin}
}

func (c *Catalog) Items() []domain.MenuItem {
	return Reconcile(c.seed, c.admin.List())
}

// Filter applies f to the reconciled menu.
func (c *Catalog) Filter(f domain.CatalogFilter) []domain.MenuItem {
	var out []domain.MenuItem
	for _, it := range c.Items() {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}

// Find returns the reconciled item with the given identity.
func (c *Catalog) Find(id domain.ID) (domain.MenuItem, bool) {
	for _, it := range c.Items() {
		if domain.Matches(it, id) {
			return it, true
		}
	}
	return domain.MenuItem{}, false
}

// Categories lists distinct non-empty categories in menu order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, it := range c.Items() {
		cat := it.CategoryName()
		if cat == "" {
			continue
		}
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	return out
}
