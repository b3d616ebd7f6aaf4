package service

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"marketplace/internal/apperror"
	"marketplace/internal/events"
	"marketplace/internal/ids"
	"marketplace/internal/models"
	"marketplace/internal/repository"
)

const productImageFolder = "products"

type ProductService struct {
	products ProductStore
	images   ImageStore
	events   events.Publisher
	validate *validator.Validate
	log      zerolog.Logger
}

func NewProductService(products ProductStore, images ImageStore, publisher events.Publisher, log zerolog.Logger) *ProductService {
	return &ProductService{
		products: products,
		images:   images,
		events:   publisher,
		validate: validator.New(),
		log:      log,
	}
}

type CreateProductInput struct {
	Name        string
	Price       float64
	Category    models.Category
	Description string
	Address     string
	// ImageURL is used when no file is uploaded.
	ImageURL string
	Image    *ImageUpload
}

func (s *ProductService) Create(ctx context.Context, identity models.Identity, input CreateProductInput) (models.Product, error) {
	if err := RequireRole(identity, models.RoleSeller); err != nil {
		return models.Product{}, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return models.Product{}, apperror.NewValidation("Name is required")
	}
	if math.IsNaN(input.Price) || math.IsInf(input.Price, 0) || input.Price >= models.MaxAmount {
		return models.Product{}, apperror.NewValidation("Price is out of range")
	}
	if input.Price < 0 {
		return models.Product{}, apperror.NewValidation("Price must not be negative")
	}
	if !input.Category.Valid() {
		return models.Product{}, apperror.NewValidation("Invalid category")
	}
	if input.Image == nil && input.ImageURL != "" {
		if err := s.validImageURL(input.ImageURL); err != nil {
			return models.Product{}, err
		}
	}

	product := models.Product{
		ID:          ids.New(),
		SellerID:    identity.AccountID,
		Name:        input.Name,
		Price:       input.Price,
		Category:    input.Category,
		Description: input.Description,
		Address:     input.Address,
		Status:      models.ProductStatusActive,
		Image:       models.ImageRef{URL: models.PlaceholderImageURL},
	}

	if input.Image != nil {
		ref, err := s.images.Upload(ctx, productImageFolder, *input.Image)
		if err != nil {
			return models.Product{}, err
		}
		product.Image = ref
	} else if input.ImageURL != "" {
		product.Image = models.ImageRef{URL: input.ImageURL}
	}

	if err := s.products.Create(ctx, &product); err != nil {
		removeImage(ctx, s.images, s.log, product.Image)
		return models.Product{}, storeError(err, "Seller not found")
	}

	publish(ctx, s.events, s.log, events.ProductCreated, events.ProductEvent{
		ProductID: product.ID,
		SellerID:  product.SellerID,
		Category:  string(product.Category),
		Status:    string(product.Status),
		At:        product.CreatedAt,
	})

	return product, nil
}

// Get returns a product and counts the read as a view.
func (s *ProductService) Get(ctx context.Context, id string) (models.Product, error) {
	if !ids.Valid(id) {
		return models.Product{}, apperror.NewNotFound("Product not found")
	}
	product, err := s.products.View(ctx, id)
	if err != nil {
		return models.Product{}, storeError(err, "Product not found")
	}
	return product, nil
}

// Update applies patch to a product owned by the caller. A new image is
// uploaded first; the image it replaces is removed before the row is saved.
func (s *ProductService) Update(ctx context.Context, identity models.Identity, id string, patch models.ProductPatch, image *ImageUpload) (models.Product, error) {
	if !ids.Valid(id) {
		return models.Product{}, apperror.NewNotFound("Product not found")
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return models.Product{}, storeError(err, "Product not found")
	}
	if err := RequireOwnership(identity, product.SellerID); err != nil {
		return models.Product{}, err
	}
	if err := patch.Validate(); err != nil {
		return models.Product{}, apperror.New(apperror.Validation, "Invalid updates", err)
	}
	if patch.Image != nil && image == nil {
		if err := s.validImageURL(*patch.Image); err != nil {
			return models.Product{}, err
		}
	}

	previous := product.Image
	patch.Apply(&product)

	var uploaded *models.ImageRef
	if image != nil {
		ref, err := s.images.Upload(ctx, productImageFolder, *image)
		if err != nil {
			return models.Product{}, err
		}
		product.Image = ref
		uploaded = &ref
	}

	if product.Image != previous {
		removeImage(ctx, s.images, s.log, previous)
	}

	if err := s.products.Update(ctx, &product); err != nil {
		if uploaded != nil {
			removeImage(ctx, s.images, s.log, *uploaded)
		}
		return models.Product{}, storeError(err, "Product not found")
	}

	publish(ctx, s.events, s.log, events.ProductUpdated, events.ProductEvent{
		ProductID: product.ID,
		SellerID:  product.SellerID,
		Category:  string(product.Category),
		Status:    string(product.Status),
		At:        product.UpdatedAt,
	})

	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, identity models.Identity, id string) error {
	if !ids.Valid(id) {
		return apperror.NewNotFound("Product not found")
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "Product not found")
	}
	if err := RequireOwnership(identity, product.SellerID); err != nil {
		return err
	}

	removeImage(ctx, s.images, s.log, product.Image)

	if err := s.products.Delete(ctx, id); err != nil {
		return storeError(err, "Product not found")
	}

	publish(ctx, s.events, s.log, events.ProductDeleted, events.ProductEvent{
		ProductID: product.ID,
		SellerID:  product.SellerID,
	})
	return nil
}

func (s *ProductService) List(ctx context.Context, page Page) ([]models.Product, error) {
	return s.list(ctx, repository.ProductFilter{}, page)
}

func (s *ProductService) ListByCategory(ctx context.Context, category models.Category, page Page) ([]models.Product, error) {
	if !category.Valid() {
		return nil, apperror.NewValidation("Invalid category")
	}
	return s.list(ctx, repository.ProductFilter{Category: category}, page)
}

// ListMine returns the calling seller's own products.
func (s *ProductService) ListMine(ctx context.Context, identity models.Identity, page Page) ([]models.Product, error) {
	if err := RequireRole(identity, models.RoleSeller); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.ProductFilter{SellerID: identity.AccountID}, page)
}

func (s *ProductService) AddToCart(ctx context.Context, identity models.Identity, id string) (int64, error) {
	if err := RequireRole(identity, models.RoleBuyer); err != nil {
		return 0, err
	}
	if !ids.Valid(id) {
		return 0, apperror.NewNotFound("Product not found")
	}
	inCart, err := s.products.AddToCart(ctx, id)
	if err != nil {
		return 0, storeError(err, "Product not found")
	}
	return inCart, nil
}

// validImageURL accepts absolute http and https URLs only.
func (s *ProductService) validImageURL(raw string) error {
	if err := s.validate.Var(raw, "required,http_url"); err != nil {
		return apperror.New(apperror.Validation, "Invalid image URL", err)
	}
	return nil
}

func (s *ProductService) list(ctx context.Context, filter repository.ProductFilter, page Page) ([]models.Product, error) {
	products, err := s.products.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, storeError(err, "Product not found")
	}
	return products, nil
}
