package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/apperror"
	"marketplace/internal/models"
	"marketplace/internal/service"
)

func TestRequireRole(t *testing.T) {
	seller := models.Identity{AccountID: "s1", Role: models.RoleSeller}

	assert.NoError(t, service.RequireRole(seller, models.RoleSeller))
	assert.NoError(t, service.RequireRole(seller, models.RoleBuyer, models.RoleSeller))

	err := service.RequireRole(seller, models.RoleBuyer)
	assert.True(t, apperror.Is(err, apperror.Forbidden))
}

func TestRequireOwnership(t *testing.T) {
	assert.NoError(t, service.RequireOwnership(models.Identity{AccountID: "s1"}, "s1"))
	assert.True(t, apperror.Is(service.RequireOwnership(models.Identity{AccountID: "s2"}, "s1"), apperror.Forbidden))
	assert.True(t, apperror.Is(service.RequireOwnership(models.Identity{}, ""), apperror.Forbidden))
}

func TestDecodePatch(t *testing.T) {
	var patch models.ProductPatch
	require.NoError(t, service.DecodePatch([]byte(`{"price":"9.99","status":"Sold"}`), service.ProductUpdateFields, nil, &patch))
	assert.InDelta(t, 9.99, float64(*patch.Price), 1e-9)
	assert.Equal(t, models.ProductStatusSold, *patch.Status)
	assert.Nil(t, patch.Name)

	err := service.DecodePatch([]byte(`{"views":100}`), service.ProductUpdateFields, nil, &patch)
	assert.True(t, apperror.Is(err, apperror.Validation))

	err = service.DecodePatch([]byte(`{"sellerId":"me"}`), service.ProductUpdateFields, nil, &patch)
	assert.True(t, apperror.Is(err, apperror.Validation))

	err = service.DecodePatch([]byte(`{"price":true}`), service.ProductUpdateFields, nil, &patch)
	assert.True(t, apperror.Is(err, apperror.Validation))
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, service.Page{Limit: 50}, service.ParsePage("", ""))
	assert.Equal(t, service.Page{Limit: 10, Offset: 20}, service.ParsePage("3", "10"))
	assert.Equal(t, service.Page{Limit: 50}, service.ParsePage("-1", "500"))
}

func TestParsePageClampsHugePage(t *testing.T) {
	for _, page := range []string{"9223372036854775807", "4611686018427387904", "10737419"} {
		p := service.ParsePage(page, "200")
		assert.Equal(t, 200, p.Limit)
		assert.Equal(t, (service.MaxPage-1)*200, p.Offset, page)
		assert.Positive(t, p.Offset)
		assert.LessOrEqual(t, p.Offset, math.MaxInt32)
	}

	// Overflowing the int parse falls back to the first page.
	assert.Equal(t, service.Page{Limit: 200}, service.ParsePage("99999999999999999999", "200"))
}
