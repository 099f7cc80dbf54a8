package domain

import (
	"time"

	"github.com/google/uuid"
)

type CartItem struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	ProductID uuid.UUID    `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Product   *CartProduct `json:"product,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CartProduct is the product summary joined onto cart reads; checkout
// validates against these fields.
type CartProduct struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	IsActive  bool      `json:"is_active"`
	ImageURLs []string  `json:"image_urls"`
}

type CartRepository interface {
	// ListCartItems returns the user's cart joined with product
	// details, oldest item first.
	ListCartItems(userID uuid.UUID) ([]CartItem, error)
	GetCartItemByID(id uuid.UUID) (*CartItem, error)
	GetCartItem(userID, productID uuid.UUID) (*CartItem, error)
	AddCartItem(item *CartItem) (*CartItem, error)
	UpdateCartItemQuantity(id uuid.UUID, quantity int) (*CartItem, error)
	RemoveCartItem(id uuid.UUID) error
	ClearCart(userID uuid.UUID) error
}
