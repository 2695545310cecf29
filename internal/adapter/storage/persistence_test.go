package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	ID  string `json:"id"`
	Qty int    `json:"quantity"`
}

func TestJSON_RoundTripThroughKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	p := NewJSON[line](kv, "cafeCart", "test")

	items, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, items)

	require.NoError(t, p.Save(ctx, []line{{ID: "1", Qty: 2}}))
	raw, err := kv.Get(ctx, "cafeCart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","quantity":2}]`, raw)

	require.NoError(t, p.Save(ctx, nil))
	raw, _ = kv.Get(ctx, "cafeCart")
	assert.Equal(t, "[]", raw)
}

func TestJSON_CorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "cafeCart", "{not json", ""))

	_, err := NewJSON[line](kv, "cafeCart", "").Load(ctx)
	require.Error(t, err)
}

func TestJSON_StoreFailure(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	kv.Fail(true)

	p := NewJSON[line](kv, "cafeCart", "")
	_, err := p.Load(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, p.Save(ctx, []line{{ID: "1"}}), ErrUnavailable)
}

func TestValue_Default(t *testing.T) {
	ctx := context.Background()
	v := NewValue(NewMemory(), "")

	got, err := v.Get(ctx, "theme:1", "light")
	require.NoError(t, err)
	assert.Equal(t, "light", got)

	require.NoError(t, v.Set(ctx, "theme:1", "dark"))
	got, err = v.Get(ctx, "theme:1", "light")
	require.NoError(t, err)
	assert.Equal(t, "dark", got)
}

func TestJSON_Version(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	p := NewJSON[line](kv, "admin_menu_items", "test")

	v, err := p.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, p.SetVersion(ctx, 1))
	v, err = p.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// the collection itself is untouched
	items, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, items)

	require.NoError(t, kv.Set(ctx, "admin_menu_items:version", "one", ""))
	_, err = p.Version(ctx)
	require.Error(t, err)
}
