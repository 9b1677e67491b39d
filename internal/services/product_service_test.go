// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviseImages(t *testing.T) {
	existing := []string{
		"uploads/products/a.jpg",
		"uploads/products/b.jpg",
		"uploads/products/c.jpg",
	}

	t.Run("delete and append", func(t *testing.T) {
		kept, removed := reviseImages(existing,
			[]string{"uploads/products/b.jpg"},
			[]string{"uploads/products/d.jpg"})

		assert.Equal(t, []string{
			"uploads/products/a.jpg",
			"uploads/products/c.jpg",
			"uploads/products/d.jpg",
		}, kept)
		assert.Equal(t, []string{"uploads/products/b.jpg"}, removed)
	})

	t.Run("unknown delete key is a no-op", func(t *testing.T) {
		kept, removed := reviseImages(existing, []string{"uploads/products/zzz.jpg"}, nil)
		assert.Equal(t, existing, kept)
		assert.Empty(t, removed)
	})

	t.Run("no changes", func(t *testing.T) {
		kept, removed := reviseImages(existing, nil, nil)
		assert.Equal(t, existing, kept)
		assert.Empty(t, removed)
	})

	t.Run("deleting everything leaves an empty list", func(t *testing.T) {
		kept, removed := reviseImages(existing, existing, nil)
		assert.Empty(t, kept)
		assert.Len(t, removed, 3)
	})
}
