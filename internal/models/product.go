package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "Active"
	ProductStatusInactive ProductStatus = "Inactive"
	ProductStatusSold     ProductStatus = "Sold"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusSold:
		return true
	}
	return false
}

type Category string

var Categories = []Category{
	"Electronics",
	"Furniture",
	"Clothing",
	"Books",
	"Home & Garden",
	"Sports",
	"Toys",
	"Other",
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const PlaceholderImageURL = "https://via.placeholder.com/150"

// ImageRef points at an object in the image store. ExternalID is empty for
// images that live outside the store.
type ImageRef struct {
	ExternalID string
	URL        string
}

// SellerSummary is the public projection of a seller joined into listings.
type SellerSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
}

type Product struct {
	ID          string
	SellerID    string
	Name        string
	Price       float64
	Category    Category
	Description string
	Address     string
	Image       ImageRef
	Status      ProductStatus
	Views       int64
	InCart      int64
	Seller      *SellerSummary
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductPatch holds the product fields an owner may change. Image carries a
// URL; uploaded files travel beside the patch.
type ProductPatch struct {
	Name        *string        `json:"name"`
	Price       *Amount        `json:"price"`
	Category    *Category      `json:"category"`
	Description *string        `json:"description"`
	Address     *string        `json:"address"`
	Image       *string        `json:"image"`
	Status      *ProductStatus `json:"status"`
}

func (p ProductPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if p.Price != nil && !(*p.Price < MaxAmount) {
		return fmt.Errorf("price is out of range")
	}
	if p.Category != nil && !p.Category.Valid() {
		return fmt.Errorf("unknown category %q", *p.Category)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("unknown status %q", *p.Status)
	}
	return nil
}

func (p ProductPatch) Apply(product *Product) {
	setIfPresent(&product.Name, p.Name)
	setIfPresent(&product.Description, p.Description)
	setIfPresent(&product.Address, p.Address)
	if p.Price != nil {
		product.Price = float64(*p.Price)
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Status != nil {
		product.Status = *p.Status
	}
	if p.Image != nil {
		product.Image = ImageRef{URL: *p.Image}
	}
}

// Amount decodes from a JSON number or a numeric string, since multipart
// forms deliver every field as text.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return a.parse(s)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	return a.set(f)
}

func (a *Amount) parse(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	return a.set(f)
}

// MaxAmount is the exclusive bound of a NUMERIC(12,2) column.
const MaxAmount = 1e10

func (a *Amount) set(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("not a finite number")
	}
	if math.Abs(f) >= MaxAmount {
		return fmt.Errorf("amount out of range")
	}
	*a = Amount(f)
	return nil
}

// ParseAmount parses a decimal amount from form input.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	err := a.parse(s)
	return a, err
}
