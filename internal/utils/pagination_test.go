// internal/utils/pagination_test.go
package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsForQuery(t *testing.T, query string) PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/products?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params := paramsForQuery(t, "")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, "newest", params.Sort)
}

func TestGetPaginationParamsClampsBadValues(t *testing.T) {
	params := paramsForQuery(t, "page=-3&limit=5000")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)
}

func TestGetPaginationParamsReadsFilters(t *testing.T) {
	params := paramsForQuery(t, "page=2&limit=25&sort=price_asc&search=kamera&category=elektronik&status=paid")
	assert.Equal(t, 2, params.Page)
	assert.Equal(t, 25, params.Limit)
	assert.Equal(t, "price_asc", params.Sort)
	assert.Equal(t, "kamera", params.Search)
	assert.Equal(t, "elektronik", params.Category)
	assert.Equal(t, "paid", params.Status)
}

func TestCreatePaginationResult(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		page        int
		limit       int
		wantPages   int
		wantHasNext bool
		wantHasPrev bool
	}{
		{"first of many", 45, 1, 10, 5, true, false},
		{"middle page", 45, 3, 10, 5, true, true},
		{"last page", 45, 5, 10, 5, false, true},
		{"single page", 7, 1, 10, 1, false, false},
		{"empty result", 0, 1, 10, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CreatePaginationResult(nil, tt.total, PaginationParams{Page: tt.page, Limit: tt.limit})
			assert.Equal(t, tt.wantPages, result.TotalPages)
			assert.Equal(t, tt.wantHasNext, result.HasNextPage)
			assert.Equal(t, tt.wantHasPrev, result.HasPrevPage)
			assert.Equal(t, tt.total, result.Total)
		})
	}
}
