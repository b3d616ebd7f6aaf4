package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/config"
)

func TestPublicURL(t *testing.T) {
	store, err := NewObjectStore(config.StorageConfig{
		Endpoint: "https://s3.example.com",
		Bucket:   "marketplace",
		Region:   "us-east-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/marketplace/products/a.jpg", store.PublicURL("products/a.jpg"))

	store, err = NewObjectStore(config.StorageConfig{
		Endpoint:      "127.0.0.1:9000",
		Bucket:        "marketplace",
		PublicBaseURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/payments/b.png", store.PublicURL("payments/b.png"))
}
