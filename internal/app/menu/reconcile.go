package menu

import "github.com/YelzhanWeb/cafe/internal/domain"

// Reconcile merges the seed catalog with admin items by NameKey.
//
// Seed entries come first, in seed order. Each admin item not explicitly
// unavailable is overlaid on the entry with the same key, or appended when
// there is none. Against a seed entry, the merged item keeps the seed's id,
// and its price and image stay with the seed whenever the seed defines them;
// every other field takes the admin value unless the admin left it unset. Admin items sharing a key are applied in
// order, so the last one wins.
func Reconcile(seed, admin []domain.MenuItem) []domain.MenuItem {
	var order []string
	merged := make(map[string]domain.MenuItem, len(seed)+len(admin))
	seeded := make(map[string]domain.MenuItem, len(seed))

	for _, it := range seed {
		key := domain.NameKey(it.Name)
		if key == "" {
			continue
		}
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		merged[key] = it.Clone()
		seeded[key] = it
	}

	for _, it := range admin {
		if !it.Available() {
			continue
		}
		key := domain.NameKey(it.Name)
		if key == "" {
			continue
		}

		base, ok := merged[key]
		if !ok {
			order = append(order, key)
			merged[key] = it.Clone()
			continue
		}

		out := base.Overlay(it)
		if s, ok := seeded[key]; ok {
			// carts and lookups hold the seeded id
			out.ID, out.StoreID = base.ID, base.StoreID
			if s.Price.Valid {
				out.Price = s.Price
			}
			if s.Image != nil {
				out.Image = domain.StringPtr(*s.Image)
			}
		}
		merged[key] = out
	}

	result := make([]domain.MenuItem, 0, len(order))
	for _, key := range order {
		result = append(result, merged[key])
	}
	return result
}
