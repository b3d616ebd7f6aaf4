package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"marketplace/internal/models"
)

type ProductRepository struct {
	db DB
}

func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ProductFilter narrows List. Empty fields match everything.
type ProductFilter struct {
	Category models.Category
	SellerID string
}

const productColumns = `p.id, p.seller_id, p.name, p.price, p.category, p.description, p.address,
	p.image_external_id, p.image_url, p.status, p.views, p.in_cart, p.created_at, p.updated_at`

const sellerSummaryColumns = `s.id, s.name, s.business_name, s.email`

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	const query = `
		INSERT INTO products (
			id, seller_id, name, price, category, description, address,
			image_external_id, image_url, status, views, in_cart
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		product.ID,
		product.SellerID,
		product.Name,
		product.Price,
		product.Category,
		product.Description,
		product.Address,
		product.Image.ExternalID,
		product.Image.URL,
		product.Status,
		product.Views,
		product.InCart,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID reads a product without counting a view.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (models.Product, error) {
	const query = `
		SELECT ` + productColumns + `, ` + sellerSummaryColumns + `
		FROM products p
		JOIN sellers s ON s.id = p.seller_id
		WHERE p.id = $1
	`
	return scanProductWithSeller(r.db.QueryRow(ctx, query, id))
}

// View counts one view and returns the product as stored after the
// increment. The increment and the read are one statement.
func (r *ProductRepository) View(ctx context.Context, id string) (models.Product, error) {
	const query = `
		WITH p AS (
			UPDATE products SET views = views + 1
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + productColumns + `, ` + sellerSummaryColumns + `
		FROM p
		JOIN sellers s ON s.id = p.seller_id
	`
	return scanProductWithSeller(r.db.QueryRow(ctx, query, id))
}

func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	const query = `
		UPDATE products
		SET name = $2, price = $3, category = $4, description = $5, address = $6,
			image_external_id = $7, image_url = $8, status = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		product.Category,
		product.Description,
		product.Address,
		product.Image.ExternalID,
		product.Image.URL,
		product.Status,
	).Scan(&product.UpdatedAt)
	return notFound(err)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) AddToCart(ctx context.Context, id string) (int64, error) {
	const query = `UPDATE products SET in_cart = in_cart + 1 WHERE id = $1 RETURNING in_cart`

	var inCart int64
	if err := r.db.QueryRow(ctx, query, id).Scan(&inCart); err != nil {
		return 0, notFound(err)
	}
	return inCart, nil
}

// List returns products newest first with their seller's public fields.
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter, limit, offset int) ([]models.Product, error) {
	const query = `
		SELECT ` + productColumns + `, ` + sellerSummaryColumns + `
		FROM products p
		JOIN sellers s ON s.id = p.seller_id
		WHERE ($1 = '' OR p.category = $1)
		  AND ($2 = '' OR p.seller_id = $2)
		ORDER BY p.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, string(filter.Category), filter.SellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProductWithSeller(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func scanProductWithSeller(row pgx.Row) (models.Product, error) {
	var (
		product models.Product
		seller  models.SellerSummary
	)
	if err := row.Scan(
		&product.ID,
		&product.SellerID,
		&product.Name,
		&product.Price,
		&product.Category,
		&product.Description,
		&product.Address,
		&product.Image.ExternalID,
		&product.Image.URL,
		&product.Status,
		&product.Views,
		&product.InCart,
		&product.CreatedAt,
		&product.UpdatedAt,
		&seller.ID,
		&seller.Name,
		&seller.BusinessName,
		&seller.Email,
	); err != nil {
		return models.Product{}, notFound(err)
	}
	product.Seller = &seller
	return product, nil
}
