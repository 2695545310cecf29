package menu

import (
	"bytes"
	"context"
	"testing"

	"github.com/YelzhanWeb/cafe/internal/adapter/storage"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()
	require.Len(t, seed, 20)

	latte := seed[2]
	assert.Equal(t, domain.ID("3"), latte.ID)
	assert.Equal(t, "Latte", latte.Name)
	assert.Equal(t, "289", latte.Price.Decimal.String())
	assert.Equal(t, "coffee", latte.CategoryName())
	assert.NotEmpty(t, latte.Ingredients)
	assert.NotEmpty(t, latte.Nutrition)
}

func TestParseSeed_BadPrice(t *testing.T) {
	_, err := ParseSeed([]byte("- name: Latte\n  price: cheap\n"))
	require.Error(t, err)

	items, err := ParseSeed([]byte("- name: Latte\n"))
	require.NoError(t, err)
	assert.False(t, items[0].Price.Valid)
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	admin := newTestStore(t, storage.NewMemory())
	_, _ = admin.Add(ctx, domain.MenuItem{Name: "Latte", Price: price("999"), Description: domain.StringPtr("oat milk")})
	_, _ = admin.Add(ctx, domain.MenuItem{Name: "Club Salad", Category: domain.StringPtr("salad"), Price: price("420")})
	hidden, _ := admin.Add(ctx, domain.MenuItem{Name: "Old Special", Category: domain.StringPtr("snack")})
	admin.ToggleAvailability(ctx, hidden.ID)

	c := NewCatalog(DefaultSeed(), admin)

	items := c.Items()
	assert.Len(t, items, 21)

	latte, ok := c.Find("3")
	require.True(t, ok)
	assert.Equal(t, "289", latte.Price.Decimal.String())
	assert.Equal(t, "oat milk", latte.DescriptionText())

	assert.Equal(t, []string{"coffee", "tea", "pastry", "sandwich", "salad"}, c.Categories())

	salads := c.Filter(domain.CatalogFilter{Category: "salad"})
	require.Len(t, salads, 1)
	assert.Equal(t, "Club Salad", salads[0].Name)

	assert.Len(t, c.Filter(domain.CatalogFilter{Search: "oat"}), 1)
}

func TestRenderTable(t *testing.T) {
	items := []domain.MenuItem{
		{Name: "Latte", Category: domain.StringPtr("coffee"), Price: price("289")},
		{Name: "Chai Latte", Category: domain.StringPtr("tea"), Price: price("99")},
		{Name: "Blueberry Muffin", Category: domain.StringPtr("pastry"), Price: price("270.5"), IsAvailable: domain.BoolPtr(false)},
		{Name: "Mystery Special"},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, items))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "menu_table", buf.Bytes())
}
