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

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter, authn *middleware.Authenticator) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategoryByID)

		adminOnly := categories.Group("", authn.RequireAuth(), authn.RequireRole(domain.RoleAdmin))
		{
			adminOnly.POST("", h.CreateCategory)
			adminOnly.PUT("/:id", h.UpdateCategory)
			adminOnly.DELETE("/:id", h.DeleteCategory)
		}
	}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create category: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Create category validation failed: %v", err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	category, err := h.useCase.CreateCategory(req.Name, req.Description)
	if err != nil {
		h.log.Warnf("Failed to create category '%s': %v", req.Name, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Category created successfully: %s (%s)", category.Name, category.ID)
	SuccessResponse(c, http.StatusCreated, "Category created successfully", category)
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid category ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	category, err := h.useCase.GetCategoryByID(id)
	if err != nil {
		h.log.Warnf("Failed to get category %s: %v", id, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid category ID parameter for update: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for update category %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Update category validation failed for %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	category, err := h.useCase.UpdateCategory(id, req.Name, req.Description)
	if err != nil {
		h.log.Warnf("Failed to update category %s: %v", id, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Category updated successfully: %s", category.ID)
	SuccessResponse(c, http.StatusOK, "Category updated successfully", category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid category ID parameter for delete: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	if err := h.useCase.DeleteCategory(id); err != nil {
		h.log.Warnf("Failed to delete category %s: %v", id, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Category deleted successfully: %s", id)
	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	limit, skip := parsePagination(c, 50)

	categories, total, err := h.useCase.ListCategories(limit, skip)
	if err != nil {
		h.log.Errorf("Failed to list categories: %v", err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", CategoryListResponse{
		Total:      total,
		Categories: categories,
	})
}
