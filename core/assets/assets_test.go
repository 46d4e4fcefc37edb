package assets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolder(t *testing.T) {
	assert.Equal(t, "shop-prod", Folder("production"))
	assert.Equal(t, "shop-staging", Folder("staging"))
	assert.Equal(t, "shop-staging", Folder(""))
}

func TestProductImageKey(t *testing.T) {
	key := ProductImageKey("production", "shop1", "1725000000000", "image-0")
	assert.Equal(t, "shop-prod/shop1/1725000000000/image-0", key)
}

func TestMemoryUpload(t *testing.T) {
	host := NewMemory()

	url, err := host.UploadData(context.Background(), "shop-staging/shop1/p1/image-0", []byte("data"))
	assert.NoError(t, err)
	assert.Equal(t, "https://assets.example.com/shop-staging/shop1/p1/image-0", url)
	assert.Equal(t, []string{"shop-staging/shop1/p1/image-0"}, host.Keys)
}

func TestMemoryUploadFailOn(t *testing.T) {
	host := NewMemory()
	host.FailOn = 2

	_, err := host.UploadData(context.Background(), "k1", nil)
	assert.NoError(t, err)
	_, err = host.UploadData(context.Background(), "k2", nil)
	assert.Error(t, err)
	_, err = host.UploadData(context.Background(), "k3", nil)
	assert.NoError(t, err)
}
