package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/microstore-service/internal/domain"
)

func TestMemoryCreateFindUpdate(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	id, err := mem.Create(ctx, "product", domain.Document{
		"store_slug": "jane-shop",
		"name":       "Mandazi",
		"price":      20.0,
		"is_active":  true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, found, err := mem.FindOne(ctx, "product", domain.Filter{"id": id})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, doc["id"])
	assert.Equal(t, "Mandazi", doc["name"])

	ok, err := mem.UpdateOne(ctx, "product", id, domain.Document{"is_active": false})
	require.NoError(t, err)
	assert.True(t, ok)

	doc, found, err = mem.FindOne(ctx, "product", domain.Filter{"id": id})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, false, doc["is_active"])

	ok, err = mem.UpdateOne(ctx, "product", "missing", domain.Document{"is_active": true})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryFindManyFilterAndOrder(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	first, err := mem.Create(ctx, "product", domain.Document{"store_slug": "a", "is_active": true})
	require.NoError(t, err)
	_, err = mem.Create(ctx, "product", domain.Document{"store_slug": "a", "is_active": false})
	require.NoError(t, err)
	second, err := mem.Create(ctx, "product", domain.Document{"store_slug": "a", "is_active": true})
	require.NoError(t, err)
	_, err = mem.Create(ctx, "product", domain.Document{"store_slug": "b", "is_active": true})
	require.NoError(t, err)

	docs, err := mem.FindMany(ctx, "product", domain.Filter{"store_slug": "a", "is_active": true})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// insertion order
	assert.Equal(t, first, docs[0]["id"])
	assert.Equal(t, second, docs[1]["id"])

	docs, err = mem.FindMany(ctx, "product", domain.Filter{"store_slug": "missing"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryUniqueConstraint(t *testing.T) {
	mem := NewMemory()
	mem.EnsureUniqueField("store", "slug")
	ctx := context.Background()

	_, err := mem.Create(ctx, "store", domain.Document{"slug": "jane-shop"})
	require.NoError(t, err)

	_, err = mem.Create(ctx, "store", domain.Document{"slug": "jane-shop"})
	assert.True(t, domain.IsDuplicate(err), "want duplicate error, got %v", err)

	// other collections are unaffected
	_, err = mem.Create(ctx, "product", domain.Document{"slug": "jane-shop"})
	assert.NoError(t, err)
}

func TestMemoryReturnedDocIsACopy(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	id, err := mem.Create(ctx, "store", domain.Document{"name": "Jane Shop"})
	require.NoError(t, err)

	doc, _, err := mem.FindOne(ctx, "store", domain.Filter{"id": id})
	require.NoError(t, err)
	doc["name"] = "Mutated"

	doc2, _, err := mem.FindOne(ctx, "store", domain.Filter{"id": id})
	require.NoError(t, err)
	assert.Equal(t, "Jane Shop", doc2["name"])
}
