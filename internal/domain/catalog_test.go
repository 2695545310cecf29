package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCatalogItem() MenuItem {
	return MenuItem{
		Name:        "Latte",
		Price:       Price(decimal.NewFromInt(289)),
		Category:    StringPtr("coffee"),
		Description: StringPtr("Espresso with steamed milk"),
	}
}

func TestValidateCatalogItem(t *testing.T) {
	require.NoError(t, ValidateCatalogItem(validCatalogItem()))

	tests := []struct {
		name   string
		mutate func(m *MenuItem)
		field  string
	}{
		{"no name", func(m *MenuItem) { m.Name = "" }, "name"},
		{"no description", func(m *MenuItem) { m.Description = nil }, "description"},
		{"undefined price", func(m *MenuItem) { m.Price = decimal.NullDecimal{} }, "price"},
		{"negative price", func(m *MenuItem) { m.Price = Price(decimal.NewFromInt(-1)) }, "price"},
		{"price over limit", func(m *MenuItem) { m.Price = Price(decimal.NewFromInt(10001)) }, "price"},
		{"unknown category", func(m *MenuItem) { m.Category = StringPtr("soup") }, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validCatalogItem()
			tt.mutate(&item)

			var verrs ValidationErrors
			require.True(t, errors.As(ValidateCatalogItem(item), &verrs))
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestMenuItem_Sanitized(t *testing.T) {
	in := MenuItem{
		Name:        "  Mocha<script>alert(1)</script> ",
		Category:    StringPtr(" Coffee "),
		Description: StringPtr("rich <SCRIPT type=x>x</SCRIPT>chocolate"),
		Ingredients: []string{" cocoa "},
	}
	out := in.Sanitized()

	assert.Equal(t, "Mocha", out.Name)
	assert.Equal(t, "coffee", out.CategoryName())
	assert.Equal(t, "rich chocolate", out.DescriptionText())
	assert.Equal(t, DefaultMenuImage, out.ImageURL())
	assert.True(t, out.Available())
	assert.Equal(t, []string{"cocoa"}, out.Ingredients)
	// input untouched
	assert.Equal(t, " cocoa ", in.Ingredients[0])
}

func TestCatalogFilter_Matches(t *testing.T) {
	latte := validCatalogItem()
	tea := MenuItem{Name: "Green Tea", Category: StringPtr("tea"), IsAvailable: BoolPtr(false)}

	assert.True(t, CatalogFilter{}.Matches(latte))
	assert.True(t, CatalogFilter{Category: "all"}.Matches(tea))
	assert.False(t, CatalogFilter{Category: "tea"}.Matches(latte))
	assert.True(t, CatalogFilter{Search: "steamed"}.Matches(latte))
	assert.False(t, CatalogFilter{Search: "matcha"}.Matches(latte))
	assert.True(t, CatalogFilter{Availability: "unavailable"}.Matches(tea))
	assert.False(t, CatalogFilter{Availability: "available"}.Matches(tea))
}

func TestMenuItem_CloneIsDeep(t *testing.T) {
	m := MenuItem{Category: StringPtr("tea"), Nutrition: map[string]string{"calories": "5"}}
	c := m.Clone()
	*c.Category = "coffee"
	c.Nutrition["calories"] = "90"

	assert.Equal(t, "tea", *m.Category)
	assert.Equal(t, "5", m.Nutrition["calories"])
}

func TestCartLineFromMenuItem(t *testing.T) {
	line := CartLineFromMenuItem(MenuItem{ID: "3", Name: "Latte", Image: StringPtr("latte.jpg")})
	assert.Equal(t, 1, line.Quantity)
	assert.True(t, line.Price.IsZero())
	assert.Equal(t, "latte.jpg", line.Image)
}
