package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/models"
)

var productRowColumns = []string{
	"id", "seller_id", "name", "price", "category", "description", "address",
	"image_external_id", "image_url", "status", "views", "in_cart", "created_at", "updated_at",
	"seller_id_join", "seller_name", "business_name", "email",
}

func TestProductView(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE products SET views = views \+ 1`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows(productRowColumns).AddRow(
			"p1", "s1", "Lamp", 19.5, models.Category("Home & Garden"), "", "",
			"", models.PlaceholderImageURL, models.ProductStatusActive, int64(1), int64(0), now, now,
			"s1", "Sam", "Sam's", "sam@example.com",
		))

	product, err := repo.View(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), product.Views)
	require.NotNil(t, product.Seller)
	assert.Equal(t, "Sam's", product.Seller.BusinessName)
}

func TestProductViewMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`UPDATE products SET views = views \+ 1`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.View(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductListByCategory(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM products p\s+JOIN sellers s`).
		WithArgs("Books", "", 50, 0).
		WillReturnRows(pgxmock.NewRows(productRowColumns).AddRow(
			"p2", "s1", "Novel", 5.0, models.Category("Books"), "", "",
			"", models.PlaceholderImageURL, models.ProductStatusActive, int64(0), int64(0), now, now,
			"s1", "Sam", "Sam's", "sam@example.com",
		))

	products, err := repo.List(context.Background(), ProductFilter{Category: "Books"}, 50, 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, models.Category("Books"), products[0].Category)
}

func TestProductDelete(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "p1"), ErrNotFound)
}

func TestProductAddToCart(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`UPDATE products SET in_cart = in_cart \+ 1`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"in_cart"}).AddRow(int64(3)))

	inCart, err := repo.AddToCart(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), inCart)
}
