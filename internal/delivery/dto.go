package delivery

import (
	"errors"
	"fmt"
	"time"

	"shophub/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// validationMessage flattens the first validator error into a
// human-readable message for the response envelope.
func validationMessage(err error) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		vErr := vErrs[0]
		switch vErr.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", vErr.Field())
		case "email":
			return fmt.Sprintf("%s must be a valid email address", vErr.Field())
		case "min":
			return fmt.Sprintf("%s must be at least %s", vErr.Field(), vErr.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s", vErr.Field(), vErr.Param())
		case "gt":
			return fmt.Sprintf("%s must be greater than %s", vErr.Field(), vErr.Param())
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", vErr.Field(), vErr.Param())
		default:
			return fmt.Sprintf("%s is invalid", vErr.Field())
		}
	}
	return "Invalid request body"
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=1,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Password string `json:"password" validate:"required,min=8,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=buyer seller admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

// UserSummary is the trimmed user shape for the admin listing.
type UserSummary struct {
	ID        uuid.UUID       `json:"id"`
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	Role      domain.UserRole `json:"role"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

type UserListResponse struct {
	Total int           `json:"total"`
	Users []UserSummary `json:"users"`
}

func NewUserListResponse(users []domain.User) UserListResponse {
	summaries := make([]UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, UserSummary{
			ID:        user.ID,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      user.Role,
			IsActive:  user.IsActive,
			CreatedAt: user.CreatedAt,
		})
	}
	return UserListResponse{Total: len(summaries), Users: summaries}
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description"`
}

type CategoryListResponse struct {
	Total      int               `json:"total"`
	Categories []domain.Category `json:"categories"`
}

type CreateProductRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=255"`
	Description string     `json:"description" validate:"required,min=1"`
	Price       float64    `json:"price" validate:"required,gt=0"`
	Stock       int        `json:"stock" validate:"min=0"`
	CategoryID  *uuid.UUID `json:"category_id"`
	ImageURLs   []string   `json:"image_urls"`
}

type UpdateProductRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,min=1"`
	Price       *float64   `json:"price" validate:"omitempty,gt=0"`
	Stock       *int       `json:"stock" validate:"omitempty,min=0"`
	CategoryID  *uuid.UUID `json:"category_id"`
	ImageURLs   []string   `json:"image_urls"`
	IsActive    *bool      `json:"is_active"`
}

type ProductListResponse struct {
	Total    int              `json:"total"`
	Products []domain.Product `json:"products"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartItemResponse struct {
	ID        uuid.UUID           `json:"id"`
	Quantity  int                 `json:"quantity"`
	Product   *domain.CartProduct `json:"product"`
	Subtotal  float64             `json:"subtotal"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type CartResponse struct {
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice float64            `json:"total_price"`
}

func NewCartItemResponse(item *domain.CartItem) CartItemResponse {
	resp := CartItemResponse{
		ID:        item.ID,
		Quantity:  item.Quantity,
		Product:   item.Product,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.Product != nil {
		resp.Subtotal = item.Product.Price * float64(item.Quantity)
	}
	return resp
}

func NewCartResponse(items []domain.CartItem) CartResponse {
	resp := CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	for i := range items {
		itemResp := NewCartItemResponse(&items[i])
		resp.Items = append(resp.Items, itemResp)
		resp.TotalItems += itemResp.Quantity
		resp.TotalPrice += itemResp.Subtotal
	}
	return resp
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=5"`
	ShippingCity    string `json:"shipping_city" validate:"required,min=2"`
	ShippingZip     string `json:"shipping_zip" validate:"required,min=3"`
	ShippingPhone   string `json:"shipping_phone" validate:"required,min=10"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderItemResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Quantity        int       `json:"quantity"`
	PriceAtPurchase float64   `json:"price_at_purchase"`
	Subtotal        float64   `json:"subtotal"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	Status          domain.OrderStatus  `json:"status"`
	TotalAmount     float64             `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	ShippingCity    string              `json:"shipping_city"`
	ShippingZip     string              `json:"shipping_zip"`
	ShippingPhone   string              `json:"shipping_phone"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type OrderListResponse struct {
	Total  int             `json:"total"`
	Orders []OrderResponse `json:"orders"`
}

func NewOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			Subtotal:        item.PriceAtPurchase * float64(item.Quantity),
		})
	}
	return OrderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		ShippingCity:    order.ShippingCity,
		ShippingZip:     order.ShippingZip,
		ShippingPhone:   order.ShippingPhone,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func NewOrderListResponse(orders []domain.Order, total int) OrderListResponse {
	resp := OrderListResponse{Total: total, Orders: make([]OrderResponse, 0, len(orders))}
	for i := range orders {
		resp.Orders = append(resp.Orders, NewOrderResponse(&orders[i]))
	}
	return resp
}

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Title     string    `json:"title" validate:"omitempty,max=200"`
	Comment   string    `json:"comment" validate:"omitempty,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

type ReviewListResponse struct {
	Total              int             `json:"total"`
	AverageRating      *float64        `json:"average_rating"`
	RatingDistribution map[int]int     `json:"rating_distribution"`
	Reviews            []domain.Review `json:"reviews"`
}
