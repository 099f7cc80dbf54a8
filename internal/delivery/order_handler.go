package delivery

import (
	"net/http"
	"strings"

	"shophub/internal/domain"
	"shophub/internal/idempotency"
	"shophub/internal/middleware"
	"shophub/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase usecase.OrderUseCase
	// idem guards checkout against double submission. Nil disables
	// the guard entirely.
	idem *idempotency.Store
	log  *logrus.Logger
}

func NewOrderHandler(uc usecase.OrderUseCase, idem *idempotency.Store, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		idem:    idem,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter, authn *middleware.Authenticator) {
	orders := router.Group("/orders", authn.RequireAuth())
	{
		buyerOnly := orders.Group("", authn.RequireRole(domain.RoleBuyer))
		{
			buyerOnly.POST("/checkout", h.Checkout)
			buyerOnly.GET("/my-orders", h.MyOrders)
			buyerOnly.POST("/:id/cancel", h.CancelOrder)
		}

		adminOnly := orders.Group("", authn.RequireRole(domain.RoleAdmin))
		{
			adminOnly.GET("/admin/all", h.AllOrders)
			adminOnly.PATCH("/:id/status", h.UpdateStatus)
		}

		orders.GET("/:id", h.GetOrder)
	}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for checkout: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Checkout validation failed for user %s: %v", user.ID, err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	// A repeated submission with the same Idempotency-Key is refused
	// up front. Redis trouble must not block checkouts, so claim
	// errors only log and fall through.
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if h.idem != nil && idemKey != "" {
		claimed, err := h.idem.Claim(c.Request.Context(), idemKey)
		if err != nil {
			h.log.Warnf("Idempotency claim failed for key %s: %v", idemKey, err)
		} else if !claimed {
			h.log.Warnf("Duplicate checkout rejected for user %s (key %s)", user.ID, idemKey)
			ErrorResponse(c, http.StatusConflict, "Duplicate checkout request")
			return
		}
	}

	order, err := h.useCase.Checkout(user.ID, usecase.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
		ShippingZip:     req.ShippingZip,
		ShippingPhone:   req.ShippingPhone,
	})
	if err != nil {
		if h.idem != nil && idemKey != "" {
			if relErr := h.idem.Release(c.Request.Context(), idemKey); relErr != nil {
				h.log.Warnf("Failed to release idempotency key %s: %v", idemKey, relErr)
			}
		}
		h.log.Warnf("Checkout failed for user %s: %v", user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Order %s created for user %s (total %.2f)", order.OrderNumber, user.ID, order.TotalAmount)
	SuccessResponse(c, http.StatusCreated, "Order created successfully", NewOrderResponse(order))
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	limit, skip := parsePagination(c, 20)

	orders, total, err := h.useCase.MyOrders(user.ID, limit, skip)
	if err != nil {
		h.log.Errorf("Failed to list orders for user %s: %v", user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", NewOrderListResponse(orders, total))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid order ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	order, err := h.useCase.GetOrder(id, user)
	if err != nil {
		h.log.Warnf("Failed to get order %s for user %s: %v", id, user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", NewOrderResponse(order))
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid order ID parameter for cancel: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	order, err := h.useCase.CancelOrder(id, user.ID)
	if err != nil {
		h.log.Warnf("Failed to cancel order %s for user %s: %v", id, user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Order %s cancelled by user %s", order.OrderNumber, user.ID)
	SuccessResponse(c, http.StatusOK, "Order cancelled successfully", NewOrderResponse(order))
}

func (h *OrderHandler) AllOrders(c *gin.Context) {
	limit, skip := parsePagination(c, 20)

	var status domain.OrderStatus
	if statusStr := c.Query("status"); statusStr != "" {
		status = domain.OrderStatus(statusStr)
	}

	orders, total, err := h.useCase.AllOrders(status, limit, skip)
	if err != nil {
		h.log.Warnf("Failed to list all orders: %v", err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", NewOrderListResponse(orders, total))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid order ID parameter for status update: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for status update of order %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Status update validation failed for order %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	order, err := h.useCase.UpdateStatus(id, domain.OrderStatus(req.Status))
	if err != nil {
		h.log.Warnf("Failed to update status of order %s: %v", id, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Order %s status updated to %s", order.OrderNumber, order.Status)
	SuccessResponse(c, http.StatusOK, "Order status updated successfully", NewOrderResponse(order))
}
