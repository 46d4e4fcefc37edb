package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemorySetGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	err := store.Set(ctx, "shops", "shop1", Document{"email": "a@example.com", "bio": ""})
	assert.NoError(t, err)

	doc, err := store.Get(ctx, "shops", "shop1")
	assert.NoError(t, err)
	assert.Equal(t, "a@example.com", doc["email"])

	_, err = store.Get(ctx, "shops", "nope")
	assert.Equal(t, ErrNotFound, err)
}

func TestMemorySetOverwrites(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	assert.NoError(t, store.Set(ctx, "shops/shop1/products", "1725000000000", Document{"name": "first"}))
	assert.NoError(t, store.Set(ctx, "shops/shop1/products", "1725000000000", Document{"name": "second"}))

	// last write wins, the colliding id is not duplicated
	docs, err := store.All(ctx, "shops/shop1/products")
	assert.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, "second", docs[0]["name"])
}

func TestMemoryAddAndAll(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	id1, err := store.Add(ctx, "reviews", Document{"rating": 5.0})
	assert.NoError(t, err)
	id2, err := store.Add(ctx, "reviews", Document{"rating": 2.0})
	assert.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	docs, err := store.All(ctx, "reviews")
	assert.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, id1, docs[0]["id"])
	assert.Equal(t, 5.0, docs[0]["rating"])
	assert.Equal(t, id2, docs[1]["id"])
}

func TestMemoryAllEmptyCollection(t *testing.T) {
	store := NewMemory()

	docs, err := store.All(context.Background(), "reviews")
	assert.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Len(t, docs, 0)
}
