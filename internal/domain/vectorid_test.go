package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointIDRoundTrip(t *testing.T) {
	ids := []int64{1, 42, 1<<62 + 7}
	for _, id := range ids {
		assert.Equal(t, id, ProductIDFromPoint(PointID(id)))
	}
}

func TestNewPayload(t *testing.T) {
	payload := NewPayload(42, "products/42.jpg", "shop-1", []string{"red"}, nil, "clip-vit-base-patch32")

	assert.Equal(t, int64(42), payload["product_id"])
	assert.Equal(t, "products/42.jpg", payload["image_key"])
	assert.Equal(t, "shop-1", payload["shop_id"])
	assert.Equal(t, []any{"red"}, payload["colors"])
	assert.Equal(t, []any{}, payload["occasions"])
	assert.NotNil(t, payload["indexed_at"])
}
