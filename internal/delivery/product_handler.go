package delivery

import (
	"net/http"
	"strconv"

	"shophub/internal/domain"
	"shophub/internal/middleware"
	"shophub/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter, authn *middleware.Authenticator) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProductByID)

		sellerOnly := products.Group("", authn.RequireAuth(), authn.RequireRole(domain.RoleSeller))
		{
			sellerOnly.GET("/seller/my-products", h.MyProducts)
			sellerOnly.POST("", h.CreateProduct)
			sellerOnly.PUT("/:id", h.UpdateProduct)
			sellerOnly.DELETE("/:id", h.DeleteProduct)
		}
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	limit, skip := parsePagination(c, 20)

	filter := domain.ProductFilter{Search: c.Query("search")}

	if categoryStr := c.Query("category_id"); categoryStr != "" {
		categoryID, err := uuid.Parse(categoryStr)
		if err != nil {
			h.log.Warnf("Invalid category_id filter: %s", categoryStr)
			ErrorResponse(c, http.StatusBadRequest, "Invalid category ID format")
			return
		}
		filter.CategoryID = &categoryID
	}

	// The public catalog serves active products unless asked otherwise.
	isActive := true
	if activeStr := c.Query("is_active"); activeStr != "" {
		if parsed, err := strconv.ParseBool(activeStr); err == nil {
			isActive = parsed
		}
	}
	filter.IsActive = &isActive

	products, total, err := h.useCase.ListProducts(filter, limit, skip)
	if err != nil {
		h.log.Errorf("Failed to list products: %v", err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", ProductListResponse{
		Total:    total,
		Products: products,
	})
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid product ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.useCase.GetProductByID(id)
	if err != nil {
		h.log.Warnf("Failed to get product %s: %v", id, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) MyProducts(c *gin.Context) {
	seller, ok := requireUser(c)
	if !ok {
		return
	}

	limit, skip := parsePagination(c, 20)

	products, total, err := h.useCase.ListSellerProducts(seller.ID, limit, skip)
	if err != nil {
		h.log.Errorf("Failed to list products for seller %s: %v", seller.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", ProductListResponse{
		Total:    total,
		Products: products,
	})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	seller, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Create product validation failed: %v", err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	product, err := h.useCase.CreateProduct(seller.ID, &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		h.log.Warnf("Failed to create product '%s' for seller %s: %v", req.Name, seller.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Product created successfully: %s (%s)", product.Name, product.ID)
	SuccessResponse(c, http.StatusCreated, "Product created successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	seller, ok := requireUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid product ID parameter for update: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for update product %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Update product validation failed for %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	product, err := h.useCase.UpdateProduct(id, seller.ID, domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURLs:   req.ImageURLs,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.log.Warnf("Failed to update product %s: %v", id, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Product updated successfully: %s", product.ID)
	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	seller, ok := requireUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid product ID parameter for delete: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.useCase.DeleteProduct(id, seller.ID); err != nil {
		h.log.Warnf("Failed to delete product %s: %v", id, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Product deactivated successfully: %s", id)
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}
