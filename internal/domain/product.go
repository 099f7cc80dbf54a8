package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         float64     `json:"price"`
	Stock         int         `json:"stock"`
	ImageURLs     []string    `json:"image_urls"`
	IsActive      bool        `json:"is_active"`
	AverageRating *float64    `json:"average_rating"`
	TotalReviews  int         `json:"total_reviews"`
	SellerID      uuid.UUID   `json:"seller_id"`
	CategoryID    *uuid.UUID  `json:"category_id"`
	Seller        *SellerInfo `json:"seller,omitempty"`
	Category      *Category   `json:"category,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type SellerInfo struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
}

// ProductPatch holds the fields a seller may change on their
// product. Nil means leave untouched; ImageURLs replaces the whole
// list when non-nil.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	CategoryID  *uuid.UUID
	ImageURLs   []string
	IsActive    *bool
}

type ProductFilter struct {
	Search     string
	CategoryID *uuid.UUID
	IsActive   *bool
}

type ProductRepository interface {
	CreateProduct(product *Product) (*Product, error)
	GetProductByID(id uuid.UUID) (*Product, error)
	UpdateProduct(id uuid.UUID, patch ProductPatch) (*Product, error)
	DeactivateProduct(id uuid.UUID) error
	ListProducts(filter ProductFilter, limit, offset int) ([]Product, int, error)
	ListProductsBySeller(sellerID uuid.UUID, limit, offset int) ([]Product, int, error)
}
