package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// orderNumberAttempts bounds the retry loop on order number
// collisions. With 32 bits of suffix entropy per day a second
// collision in a row is already astronomically unlikely.
const orderNumberAttempts = 3

type CheckoutInput struct {
	ShippingAddress string
	ShippingCity    string
	ShippingZip     string
	ShippingPhone   string
}

type OrderUseCase interface {
	Checkout(buyerID uuid.UUID, input CheckoutInput) (*domain.Order, error)
	GetOrder(id uuid.UUID, requester *domain.User) (*domain.Order, error)
	MyOrders(buyerID uuid.UUID, limit, offset int) ([]domain.Order, int, error)
	AllOrders(status domain.OrderStatus, limit, offset int) ([]domain.Order, int, error)
	UpdateStatus(id uuid.UUID, to domain.OrderStatus) (*domain.Order, error)
	CancelOrder(id, buyerID uuid.UUID) (*domain.Order, error)
}

type orderUseCase struct {
	orderRepo domain.OrderRepository
	cartRepo  domain.CartRepository
	log       *logrus.Logger
}

func NewOrderUseCase(orderRepo domain.OrderRepository, cartRepo domain.CartRepository, logger *logrus.Logger) OrderUseCase {
	return &orderUseCase{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		log:       logger,
	}
}

func validateShipping(input CheckoutInput) error {
	if len(strings.TrimSpace(input.ShippingAddress)) < 5 {
		return domain.Errorf(domain.EINVALID, "Shipping address must be at least 5 characters")
	}
	if len(strings.TrimSpace(input.ShippingCity)) < 2 {
		return domain.Errorf(domain.EINVALID, "Shipping city must be at least 2 characters")
	}
	if len(strings.TrimSpace(input.ShippingZip)) < 3 {
		return domain.Errorf(domain.EINVALID, "Shipping zip must be at least 3 characters")
	}
	if len(strings.TrimSpace(input.ShippingPhone)) < 10 {
		return domain.Errorf(domain.EINVALID, "Shipping phone must be at least 10 characters")
	}
	return nil
}

func generateOrderNumber() (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("could not generate order number: %w", err)
	}
	date := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("ORD-%s-%s", date, strings.ToUpper(hex.EncodeToString(suffix))), nil
}

// Checkout turns the buyer's cart into a pending order. Validation
// runs against a single cart read; the repository then re-guards stock
// inside the transaction, so a concurrent checkout can still fail this
// one cleanly.
func (uc *orderUseCase) Checkout(buyerID uuid.UUID, input CheckoutInput) (*domain.Order, error) {
	if err := validateShipping(input); err != nil {
		uc.log.Warnf("Use Case: Checkout rejected for buyer %s: %v", buyerID, err)
		return nil, err
	}

	cartItems, err := uc.cartRepo.ListCartItems(buyerID)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load cart for buyer %s: %v", buyerID, err)
		return nil, err
	}
	if len(cartItems) == 0 {
		uc.log.Warnf("Use Case: Checkout with empty cart for buyer %s", buyerID)
		return nil, domain.ErrEmptyCart
	}

	var (
		totalAmount float64
		orderItems  = make([]domain.OrderItem, 0, len(cartItems))
	)
	for _, cartItem := range cartItems {
		product := cartItem.Product
		if product == nil {
			return nil, domain.ErrProductNotFound
		}
		if !product.IsActive {
			uc.log.Warnf("Use Case: Checkout blocked - product '%s' inactive", product.Name)
			return nil, domain.Errorf(domain.EUNAVAILABLE, "Product '%s' is no longer available", product.Name)
		}
		if cartItem.Quantity > product.Stock {
			uc.log.Warnf("Use Case: Checkout blocked - product '%s' has %d in stock, %d requested",
				product.Name, product.Stock, cartItem.Quantity)
			return nil, domain.Errorf(domain.EINSUFFICIENTSTOCK,
				"Not enough stock for '%s'. Only %d available", product.Name, product.Stock)
		}

		totalAmount += product.Price * float64(cartItem.Quantity)
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        cartItem.Quantity,
			PriceAtPurchase: product.Price,
		})
	}

	uc.log.Infof("Use Case: Checkout for buyer %s - %d items, total %.2f", buyerID, len(orderItems), totalAmount)

	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		orderNumber, err := generateOrderNumber()
		if err != nil {
			uc.log.Errorf("Use Case: Failed to generate order number: %v", err)
			return nil, err
		}

		order := &domain.Order{
			OrderNumber:     orderNumber,
			BuyerID:         buyerID,
			Status:          domain.StatusPending,
			TotalAmount:     totalAmount,
			ShippingAddress: strings.TrimSpace(input.ShippingAddress),
			ShippingCity:    strings.TrimSpace(input.ShippingCity),
			ShippingZip:     strings.TrimSpace(input.ShippingZip),
			ShippingPhone:   strings.TrimSpace(input.ShippingPhone),
			Items:           orderItems,
		}

		created, err := uc.orderRepo.CreateOrder(order)
		if err != nil {
			if domain.ErrorCode(err) == domain.ECONFLICT && attempt < orderNumberAttempts {
				uc.log.Warnf("Use Case: Order number %s collided, retrying (attempt %d)", orderNumber, attempt)
				continue
			}
			uc.log.Warnf("Use Case: Checkout failed for buyer %s: %v", buyerID, err)
			return nil, err
		}

		uc.log.Infof("Use Case: Order %s (%s) created for buyer %s", created.ID, created.OrderNumber, buyerID)
		return created, nil
	}

	return nil, domain.Errorf(domain.EINTERNAL, "Could not allocate a unique order number")
}

func (uc *orderUseCase) GetOrder(id uuid.UUID, requester *domain.User) (*domain.Order, error) {
	order, err := uc.orderRepo.GetOrderByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get order %s: %v", id, err)
		return nil, err
	}

	if order.BuyerID != requester.ID && requester.Role != domain.RoleAdmin {
		uc.log.Warnf("Use Case: User %s attempted to read order %s owned by %s", requester.ID, id, order.BuyerID)
		return nil, domain.ErrNotYourOrder
	}

	return order, nil
}

func (uc *orderUseCase) MyOrders(buyerID uuid.UUID, limit, offset int) ([]domain.Order, int, error) {
	orders, total, err := uc.orderRepo.ListOrdersByBuyerID(buyerID, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list orders for buyer %s: %v", buyerID, err)
		return nil, 0, err
	}
	return orders, total, nil
}

func (uc *orderUseCase) AllOrders(status domain.OrderStatus, limit, offset int) ([]domain.Order, int, error) {
	if status != "" && !domain.IsValidStatus(status) {
		uc.log.Warnf("Use Case: All-orders list with invalid status filter '%s'", status)
		return nil, 0, domain.Errorf(domain.EINVALID, "Invalid status: %s", status)
	}

	orders, total, err := uc.orderRepo.ListAllOrders(status, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list all orders: %v", err)
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus walks one edge of the transition table. The repository
// applies the change only if the order is still in the status we read,
// so concurrent updates surface as a conflict instead of a lost write.
func (uc *orderUseCase) UpdateStatus(id uuid.UUID, to domain.OrderStatus) (*domain.Order, error) {
	if !domain.IsValidStatus(to) {
		uc.log.Warnf("Use Case: Status update with invalid status '%s' for order %s", to, id)
		return nil, domain.Errorf(domain.EINVALID, "Invalid status: %s", to)
	}

	order, err := uc.orderRepo.GetOrderByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Order %s not found for status update: %v", id, err)
		return nil, err
	}

	if !domain.CanTransition(order.Status, to) {
		uc.log.Warnf("Use Case: Invalid transition %s -> %s for order %s", order.Status, to, id)
		return nil, domain.Errorf(domain.EINVALIDTRANSITION,
			"Cannot transition order from %s to %s", order.Status, to)
	}

	uc.log.Infof("Use Case: Updating order %s status %s -> %s", id, order.Status, to)
	updated, err := uc.orderRepo.UpdateOrderStatus(id, order.Status, to)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update order %s status: %v", id, err)
		return nil, err
	}

	return updated, nil
}

func (uc *orderUseCase) CancelOrder(id, buyerID uuid.UUID) (*domain.Order, error) {
	order, err := uc.orderRepo.GetOrderByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Order %s not found for cancel: %v", id, err)
		return nil, err
	}

	if order.BuyerID != buyerID {
		uc.log.Warnf("Use Case: User %s attempted to cancel order %s owned by %s", buyerID, id, order.BuyerID)
		return nil, domain.ErrNotYourOrder
	}

	if !domain.IsCancellable(order.Status) {
		uc.log.Warnf("Use Case: Order %s in status %s cannot be cancelled", id, order.Status)
		return nil, domain.Errorf(domain.EINVALIDSTATE, "Cannot cancel order with status: %s", order.Status)
	}

	uc.log.Infof("Use Case: Cancelling order %s for buyer %s", id, buyerID)
	cancelled, err := uc.orderRepo.CancelOrder(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to cancel order %s: %v", id, err)
		return nil, err
	}

	return cancelled, nil
}
