package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperror"
	"marketplace/internal/models"
	"marketplace/internal/service"
)

type createProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Price       *models.Amount  `json:"price" binding:"required"`
	Category    models.Category `json:"category" binding:"required"`
	Description string          `json:"description"`
	Address     string          `json:"address"`
	Image       string          `json:"image"`
}

type productResponse struct {
	ID          string                `json:"id"`
	SellerID    string                `json:"sellerId"`
	Name        string                `json:"name"`
	Price       float64               `json:"price"`
	Category    models.Category       `json:"category"`
	Description string                `json:"description"`
	Address     string                `json:"address"`
	Image       string                `json:"image"`
	Status      models.ProductStatus  `json:"status"`
	Views       int64                 `json:"views"`
	InCart      int64                 `json:"inCart"`
	Seller      *models.SellerSummary `json:"seller,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

func toProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Description: p.Description,
		Address:     p.Address,
		Image:       p.Image.URL,
		Status:      p.Status,
		Views:       p.Views,
		InCart:      p.InCart,
		Seller:      p.Seller,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductList(products []models.Product) []productResponse {
	items := make([]productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	return items
}

// CreateProduct accepts JSON with an optional image URL, or a multipart
// form with an optional image file.
func (h HandlerSet) CreateProduct(c *gin.Context) {
	image, closeImage, err := formImage(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeImage()

	var input service.CreateProductInput
	if isMultipart(c) {
		price, err := models.ParseAmount(strings.TrimSpace(c.PostForm("price")))
		if err != nil {
			h.fail(c, apperror.NewValidation("Price must be a number"))
			return
		}
		input = service.CreateProductInput{
			Name:        c.PostForm("name"),
			Price:       float64(price),
			Category:    models.Category(c.PostForm("category")),
			Description: c.PostForm("description"),
			Address:     c.PostForm("address"),
			ImageURL:    c.PostForm(imageField),
			Image:       image,
		}
	} else {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, bindError(err))
			return
		}
		input = service.CreateProductInput{
			Name:        req.Name,
			Price:       float64(*req.Price),
			Category:    req.Category,
			Description: req.Description,
			Address:     req.Address,
			ImageURL:    req.Image,
		}
	}

	product, err := h.products.Create(c.Request.Context(), identity(c), input)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": toProductResponse(product),
	})
}

func (h HandlerSet) GetProduct(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (h HandlerSet) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductList(products))
}

func (h HandlerSet) ListProductsByCategory(c *gin.Context) {
	category := models.Category(c.Param("category"))
	products, err := h.products.ListByCategory(c.Request.Context(), category, page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductList(products))
}

func (h HandlerSet) ListMyProducts(c *gin.Context) {
	products, err := h.products.ListMine(c.Request.Context(), identity(c), page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductList(products))
}

// UpdateProduct decodes a strict patch from JSON or multipart text fields.
// A multipart image file replaces the stored image.
func (h HandlerSet) UpdateProduct(c *gin.Context) {
	image, closeImage, err := formImage(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeImage()

	body, err := patchBody(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	id := identity(c)
	var patch models.ProductPatch
	if err := service.DecodePatch(body, service.ProductUpdateFields, patchIgnoredFields(id), &patch); err != nil {
		h.fail(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, c.Param("id"), patch, image)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func patchBody(c *gin.Context) ([]byte, error) {
	if !isMultipart(c) {
		body, err := c.GetRawData()
		if err != nil {
			return nil, apperror.NewValidation("Invalid request body")
		}
		return body, nil
	}

	values, err := formObject(c)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(values)
	if err != nil {
		return nil, apperror.NewInternal("Something went wrong!", err)
	}
	return body, nil
}

func (h HandlerSet) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h HandlerSet) AddToCart(c *gin.Context) {
	inCart, err := h.products.AddToCart(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inCart": inCart})
}
