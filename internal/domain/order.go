package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPaid       OrderStatus = "paid"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusPaid, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// statusTransitions is the directed graph of allowed status changes.
// cancelled and refunded are terminal; delivered can only move to
// refunded.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusProcessing, StatusCancelled, StatusRefunded},
	StatusProcessing: {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped:    {StatusDelivered, StatusRefunded},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsCancellable reports whether a buyer may still cancel an order in
// the given status. Shipped and later states keep their stock.
func IsCancellable(status OrderStatus) bool {
	switch status {
	case StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return false
	default:
		return true
	}
}

type Order struct {
	ID              uuid.UUID   `json:"id"`
	OrderNumber     string      `json:"order_number"`
	BuyerID         uuid.UUID   `json:"buyer_id"`
	Status          OrderStatus `json:"status"`
	TotalAmount     float64     `json:"total_amount"`
	ShippingAddress string      `json:"shipping_address"`
	ShippingCity    string      `json:"shipping_city"`
	ShippingZip     string      `json:"shipping_zip"`
	ShippingPhone   string      `json:"shipping_phone"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem is immutable after checkout. PriceAtPurchase is the
// product price captured at checkout time; later price changes never
// touch it.
type OrderItem struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Quantity        int       `json:"quantity"`
	PriceAtPurchase float64   `json:"price_at_purchase"`
}

type OrderRepository interface {
	// CreateOrder persists the order with its items, decrements each
	// product's stock and drains the buyer's cart, all in one
	// transaction.
	CreateOrder(order *Order) (*Order, error)
	GetOrderByID(id uuid.UUID) (*Order, error)
	ListOrdersByBuyerID(buyerID uuid.UUID, limit, offset int) ([]Order, int, error)
	ListAllOrders(status OrderStatus, limit, offset int) ([]Order, int, error)
	// UpdateOrderStatus flips from->to only if the order is still in
	// the from status.
	UpdateOrderStatus(id uuid.UUID, from, to OrderStatus) (*Order, error)
	// CancelOrder sets status to cancelled and restores the stock of
	// every ordered product in one transaction.
	CancelOrder(id uuid.UUID) (*Order, error)
}
