package delivery

import (
	"net/http"

	"shophub/internal/domain"
	"shophub/internal/middleware"
	"shophub/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	useCase usecase.CartUseCase
	log     *logrus.Logger
}

func NewCartHandler(uc usecase.CartUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CartHandler) RegisterRoutes(router gin.IRouter, authn *middleware.Authenticator) {
	cart := router.Group("/cart", authn.RequireAuth(), authn.RequireRole(domain.RoleBuyer))
	{
		cart.GET("", h.GetCart)
		cart.POST("", h.AddToCart)
		cart.PUT("/:id", h.UpdateCartItem)
		cart.DELETE("/:id", h.RemoveFromCart)
		cart.DELETE("", h.ClearCart)
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := h.useCase.GetCart(user.ID)
	if err != nil {
		h.log.Errorf("Failed to get cart for user %s: %v", user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", NewCartResponse(items))
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for add to cart: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Add to cart validation failed for user %s: %v", user.ID, err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	item, err := h.useCase.AddToCart(user.ID, req.ProductID, req.Quantity)
	if err != nil {
		h.log.Warnf("Failed to add product %s to cart for user %s: %v", req.ProductID, user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Product %s added to cart for user %s (quantity %d)", req.ProductID, user.ID, item.Quantity)
	SuccessResponse(c, http.StatusCreated, "Item added to cart", NewCartItemResponse(item))
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid cart item ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid cart item ID format")
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for update cart item %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Update cart item validation failed for %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	item, err := h.useCase.UpdateCartItem(user.ID, id, req.Quantity)
	if err != nil {
		h.log.Warnf("Failed to update cart item %s for user %s: %v", id, user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Cart item updated successfully", NewCartItemResponse(item))
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid cart item ID parameter for remove: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid cart item ID format")
		return
	}

	if err := h.useCase.RemoveFromCart(user.ID, id); err != nil {
		h.log.Warnf("Failed to remove cart item %s for user %s: %v", id, user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Cart item %s removed for user %s", id, user.ID)
	SuccessResponse(c, http.StatusOK, "Item removed from cart", nil)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.useCase.ClearCart(user.ID); err != nil {
		h.log.Errorf("Failed to clear cart for user %s: %v", user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Cart cleared for user %s", user.ID)
	SuccessResponse(c, http.StatusOK, "Cart cleared successfully", nil)
}
