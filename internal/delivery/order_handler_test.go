package delivery

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shophub/internal/domain"
	"shophub/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// stubOrderUseCase lets each test wire just the methods it exercises.
type stubOrderUseCase struct {
	checkout     func(buyerID uuid.UUID, input usecase.CheckoutInput) (*domain.Order, error)
	getOrder     func(id uuid.UUID, requester *domain.User) (*domain.Order, error)
	myOrders     func(buyerID uuid.UUID, limit, offset int) ([]domain.Order, int, error)
	allOrders    func(status domain.OrderStatus, limit, offset int) ([]domain.Order, int, error)
	updateStatus func(id uuid.UUID, to domain.OrderStatus) (*domain.Order, error)
	cancelOrder  func(id, buyerID uuid.UUID) (*domain.Order, error)
}

func (s *stubOrderUseCase) Checkout(buyerID uuid.UUID, input usecase.CheckoutInput) (*domain.Order, error) {
	return s.checkout(buyerID, input)
}

func (s *stubOrderUseCase) GetOrder(id uuid.UUID, requester *domain.User) (*domain.Order, error) {
	return s.getOrder(id, requester)
}

func (s *stubOrderUseCase) MyOrders(buyerID uuid.UUID, limit, offset int) ([]domain.Order, int, error) {
	return s.myOrders(buyerID, limit, offset)
}

func (s *stubOrderUseCase) AllOrders(status domain.OrderStatus, limit, offset int) ([]domain.Order, int, error) {
	return s.allOrders(status, limit, offset)
}

func (s *stubOrderUseCase) UpdateStatus(id uuid.UUID, to domain.OrderStatus) (*domain.Order, error) {
	return s.updateStatus(id, to)
}

func (s *stubOrderUseCase) CancelOrder(id, buyerID uuid.UUID) (*domain.Order, error) {
	return s.cancelOrder(id, buyerID)
}

// newOrderRouter mounts the order handler behind a middleware that
// injects user, standing in for the real authentication chain.
func newOrderRouter(uc usecase.OrderUseCase, user *domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewOrderHandler(uc, nil, testLogger())

	authed := router.Group("", func(c *gin.Context) {
		c.Set("currentUser", user)
	})
	authed.POST("/orders/checkout", handler.Checkout)
	authed.GET("/orders/:id", handler.GetOrder)
	authed.PATCH("/orders/:id/status", handler.UpdateStatus)
	return router
}

type orderEnvelope struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Data    OrderResponse `json:"data"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, orderEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope orderEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

const validCheckoutBody = `{
	"shipping_address": "42 Elm Street, Apt 7",
	"shipping_city": "Almaty",
	"shipping_zip": "050000",
	"shipping_phone": "+77011234567"
}`

func TestCheckoutHandlerCreatesOrder(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: domain.RoleBuyer, IsActive: true}

	var gotBuyer uuid.UUID
	var gotInput usecase.CheckoutInput
	stub := &stubOrderUseCase{
		checkout: func(buyerID uuid.UUID, input usecase.CheckoutInput) (*domain.Order, error) {
			gotBuyer = buyerID
			gotInput = input
			return &domain.Order{
				ID:              uuid.New(),
				OrderNumber:     "ORD-20260823-0A1B2C3D",
				BuyerID:         buyerID,
				Status:          domain.StatusPending,
				TotalAmount:     339.00,
				ShippingAddress: input.ShippingAddress,
				ShippingCity:    input.ShippingCity,
				ShippingZip:     input.ShippingZip,
				ShippingPhone:   input.ShippingPhone,
				Items: []domain.OrderItem{
					{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Desk Chair", Quantity: 2, PriceAtPurchase: 149.50},
					{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Reading Lamp", Quantity: 1, PriceAtPurchase: 40.00},
				},
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		},
	}

	w, envelope := doJSON(t, newOrderRouter(stub, user), http.MethodPost, "/orders/checkout", validCheckoutBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", envelope.Status)
	assert.Equal(t, "Order created successfully", envelope.Message)
	assert.Equal(t, "ORD-20260823-0A1B2C3D", envelope.Data.OrderNumber)
	assert.Equal(t, domain.StatusPending, envelope.Data.Status)
	require.Len(t, envelope.Data.Items, 2)
	assert.InDelta(t, 299.00, envelope.Data.Items[0].Subtotal, 0.001)

	assert.Equal(t, user.ID, gotBuyer)
	assert.Equal(t, "42 Elm Street, Apt 7", gotInput.ShippingAddress)
	assert.Equal(t, "Almaty", gotInput.ShippingCity)
}

func TestCheckoutHandlerRejectsMalformedJSON(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: domain.RoleBuyer, IsActive: true}
	stub := &stubOrderUseCase{
		checkout: func(uuid.UUID, usecase.CheckoutInput) (*domain.Order, error) {
			t.Fatal("checkout must not be reached on malformed input")
			return nil, nil
		},
	}

	w, envelope := doJSON(t, newOrderRouter(stub, user), http.MethodPost, "/orders/checkout", `{"shipping_address":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", envelope.Status)
	assert.Contains(t, envelope.Message, "Invalid request body")
}

func TestCheckoutHandlerValidatesRequest(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: domain.RoleBuyer, IsActive: true}
	stub := &stubOrderUseCase{
		checkout: func(uuid.UUID, usecase.CheckoutInput) (*domain.Order, error) {
			t.Fatal("checkout must not be reached on invalid input")
			return nil, nil
		},
	}
	router := newOrderRouter(stub, user)

	body := `{"shipping_address": "a st", "shipping_city": "Almaty", "shipping_zip": "050000", "shipping_phone": "+77011234567"}`
	w, envelope := doJSON(t, router, http.MethodPost, "/orders/checkout", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", envelope.Status)
	assert.Equal(t, "ShippingAddress must be at least 5", envelope.Message)

	body = `{"shipping_city": "Almaty", "shipping_zip": "050000", "shipping_phone": "+77011234567"}`
	w, envelope = doJSON(t, router, http.MethodPost, "/orders/checkout", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ShippingAddress is required", envelope.Message)
}

func TestCheckoutHandlerMapsDomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantReason string
	}{
		{
			name:       "empty cart",
			err:        domain.ErrEmptyCart,
			wantCode:   http.StatusBadRequest,
			wantReason: "Cart is empty",
		},
		{
			name:       "insufficient stock",
			err:        domain.Errorf(domain.EINSUFFICIENTSTOCK, "Not enough stock for 'Desk Chair'. Only 1 available"),
			wantCode:   http.StatusBadRequest,
			wantReason: "Not enough stock for 'Desk Chair'. Only 1 available",
		},
		{
			name:       "unexpected failure is masked",
			err:        errors.New("pq: connection refused"),
			wantCode:   http.StatusInternalServerError,
			wantReason: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &domain.User{ID: uuid.New(), Role: domain.RoleBuyer, IsActive: true}
			stub := &stubOrderUseCase{
				checkout: func(uuid.UUID, usecase.CheckoutInput) (*domain.Order, error) {
					return nil, tt.err
				},
			}

			w, envelope := doJSON(t, newOrderRouter(stub, user), http.MethodPost, "/orders/checkout", validCheckoutBody)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "error", envelope.Status)
			assert.Equal(t, tt.wantReason, envelope.Message)
		})
	}
}

func TestGetOrderHandler(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: domain.RoleBuyer, IsActive: true}
	orderID := uuid.New()
	stub := &stubOrderUseCase{
		getOrder: func(id uuid.UUID, requester *domain.User) (*domain.Order, error) {
			if id != orderID {
				return nil, domain.ErrOrderNotFound
			}
			return &domain.Order{ID: id, OrderNumber: "ORD-20260823-AABBCCDD", BuyerID: requester.ID, Status: domain.StatusPaid}, nil
		},
	}
	router := newOrderRouter(stub, user)

	w, envelope := doJSON(t, router, http.MethodGet, "/orders/"+orderID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", envelope.Status)
	assert.Equal(t, "ORD-20260823-AABBCCDD", envelope.Data.OrderNumber)

	w, envelope = doJSON(t, router, http.MethodGet, "/orders/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", envelope.Message)

	w, envelope = doJSON(t, router, http.MethodGet, "/orders/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid order ID format", envelope.Message)
}

func TestGetOrderHandlerForbidden(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: domain.RoleBuyer, IsActive: true}
	stub := &stubOrderUseCase{
		getOrder: func(uuid.UUID, *domain.User) (*domain.Order, error) {
			return nil, domain.ErrNotYourOrder
		},
	}

	w, envelope := doJSON(t, newOrderRouter(stub, user), http.MethodGet, "/orders/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not your order", envelope.Message)
}

func TestUpdateStatusHandler(t *testing.T) {
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin, IsActive: true}
	orderID := uuid.New()

	var gotStatus domain.OrderStatus
	stub := &stubOrderUseCase{
		updateStatus: func(id uuid.UUID, to domain.OrderStatus) (*domain.Order, error) {
			gotStatus = to
			return &domain.Order{ID: id, OrderNumber: "ORD-20260823-00FF00FF", Status: to}, nil
		},
	}
	router := newOrderRouter(stub, admin)

	w, envelope := doJSON(t, router, http.MethodPatch, "/orders/"+orderID.String()+"/status", `{"status": "paid"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Order status updated successfully", envelope.Message)
	assert.Equal(t, domain.StatusPaid, envelope.Data.Status)
	assert.Equal(t, domain.StatusPaid, gotStatus)

	w, envelope = doJSON(t, router, http.MethodPatch, "/orders/"+orderID.String()+"/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Status is required", envelope.Message)
}
