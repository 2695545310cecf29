package cart

import (
	"context"
	"math/rand"
	"testing"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/adapter/storage"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuItem(id domain.ID, name string, price int64) domain.MenuItem {
	return domain.MenuItem{ID: id, Name: name, Price: domain.Price(decimal.NewFromInt(price))}
}

func newTestStore(t *testing.T, kv *storage.Memory) *Store {
	t.Helper()
	return NewStore(context.Background(), KeyPrefix, storage.NewJSON[domain.CartLine](kv, KeyPrefix, "test"), logger.Nop())
}

func TestStore_LatteScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	latte := menuItem("1", "Latte", 289)

	require.NoError(t, s.Add(ctx, latte))
	assert.Equal(t, 1, s.Count())
	assert.True(t, s.Total().Equal(decimal.NewFromInt(289)))

	require.NoError(t, s.Add(ctx, latte))
	assert.Equal(t, 2, s.Count())
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, s.Total().Equal(decimal.NewFromInt(578)))

	require.NoError(t, s.SetQuantity(ctx, "1", 0))
	assert.Empty(t, s.Lines())
	assert.True(t, s.IsEmpty())
}

func TestStore_StoreIDIdentity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	item := domain.MenuItem{StoreID: "abc", Name: "Mocha", Price: domain.Price(decimal.NewFromInt(349))}
	require.NoError(t, s.Add(ctx, item))
	require.NoError(t, s.Add(ctx, item))
	assert.Len(t, s.Lines(), 1)

	s.Remove(ctx, "abc")
	assert.Empty(t, s.Lines())
}

func TestStore_ItemsWithoutIdentityNeverMerge(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	require.NoError(t, s.Add(ctx, menuItem("", "Tea", 99)))
	require.NoError(t, s.Add(ctx, menuItem("", "Scone", 120)))

	assert.Len(t, s.Lines(), 2)
	assert.Equal(t, 2, s.Count())

	// an empty id must not hit either line
	s.Remove(ctx, "")
	require.NoError(t, s.SetQuantity(ctx, "", 5))
	assert.Equal(t, 2, s.Count())
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	require.NoError(t, s.Add(ctx, menuItem("1", "Latte", 289)))
	require.NoError(t, s.Add(ctx, menuItem("2", "Mocha", 349)))

	s.Remove(ctx, "1")
	once := s.Lines()
	s.Remove(ctx, "1")
	assert.Equal(t, once, s.Lines())
}

func TestStore_QuantityLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	latte := menuItem("1", "Latte", 289)
	require.NoError(t, s.Add(ctx, latte))

	err := s.SetQuantity(ctx, "1", domain.MaxLineQuantity+1)
	assert.ErrorIs(t, err, domain.ErrQuantityLimit)
	assert.Equal(t, 1, s.Count())

	require.NoError(t, s.SetQuantity(ctx, "1", domain.MaxLineQuantity))
	err = s.Add(ctx, latte)
	assert.ErrorIs(t, err, domain.ErrQuantityLimit)
	assert.Equal(t, domain.MaxLineQuantity, s.Count())
}

func TestStore_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	require.NoError(t, s.Add(ctx, menuItem("1", "Latte", 289)))

	require.NoError(t, s.SetQuantity(ctx, "404", 3))
	s.Remove(ctx, "404")
	assert.Equal(t, 1, s.Count())
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)

	require.NoError(t, s.Add(ctx, menuItem("3", "Americano", 215)))
	require.NoError(t, s.Add(ctx, menuItem("1", "Latte", 289)))
	require.NoError(t, s.SetQuantity(ctx, "1", 4))
	require.NoError(t, s.Add(ctx, domain.MenuItem{StoreID: "x9", Name: "Danish Pastry", Price: domain.Price(decimal.RequireFromString("199.50"))}))

	reloaded := newTestStore(t, kv)
	want, got := s.Lines(), reloaded.Lines()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].StoreID, got[i].StoreID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].Price.Equal(got[i].Price))
	}
}

func TestStore_PersistenceFailuresAreAbsorbed(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	kv.Fail(true)

	s := newTestStore(t, kv)
	assert.Empty(t, s.Lines())

	require.NoError(t, s.Add(ctx, menuItem("1", "Latte", 289)))
	assert.Equal(t, 1, s.Count())

	s.Reload(ctx)
	assert.Empty(t, s.Lines())
}

func TestStore_ReloadPicksUpExternalWrite(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	a := newTestStore(t, kv)
	b := newTestStore(t, kv)

	require.NoError(t, a.Add(ctx, menuItem("1", "Latte", 289)))
	assert.Empty(t, b.Lines())

	b.Reload(ctx)
	assert.Equal(t, 1, b.Count())
}

func TestStore_CountMatchesLinesUnderRandomOps(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	rng := rand.New(rand.NewSource(42))
	ids := []domain.ID{"1", "2", "3", "4"}

	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			_ = s.Add(ctx, menuItem(id, "item-"+string(id), 10))
		case 1:
			s.Remove(ctx, id)
		case 2:
			_ = s.SetQuantity(ctx, id, rng.Intn(8)-2)
		}

		sum := 0
		for _, l := range s.Lines() {
			require.GreaterOrEqual(t, l.Quantity, 1)
			sum += l.Quantity
		}
		require.Equal(t, sum, s.Count())
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	require.NoError(t, s.Add(ctx, menuItem("1", "Latte", 289)))

	s.Clear(ctx)
	assert.True(t, s.IsEmpty())
	assert.Empty(t, newTestStore(t, kv).Lines())
}

func TestStore_DeductKeepsLaterUnits(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	require.NoError(t, s.Add(ctx, menuItem("1", "Latte", 289)))
	require.NoError(t, s.Add(ctx, menuItem("1", "Latte", 289)))
	require.NoError(t, s.Add(ctx, domain.MenuItem{Name: "Day Special"}))
	taken := s.Lines()

	require.NoError(t, s.Add(ctx, menuItem("1", "Latte", 289)))
	require.NoError(t, s.Add(ctx, menuItem("2", "Chai Latte", 99)))

	s.Deduct(ctx, taken)
	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, domain.ID("1"), lines[0].ID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, domain.ID("2"), lines[1].ID)

	// persisted
	assert.Equal(t, 2, newTestStore(t, kv).Count())

	s.Deduct(ctx, s.Lines())
	assert.True(t, s.IsEmpty())
}
