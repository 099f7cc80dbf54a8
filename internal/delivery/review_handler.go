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

type ReviewHandler struct {
	useCase usecase.ReviewUseCase
	log     *logrus.Logger
}

func NewReviewHandler(uc usecase.ReviewUseCase, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ReviewHandler) RegisterRoutes(router gin.IRouter, authn *middleware.Authenticator) {
	reviews := router.Group("/reviews")
	{
		reviews.GET("/products/:product_id", h.ListProductReviews)
		reviews.GET("/products/:product_id/summary", h.GetRatingSummary)
		reviews.GET("/:id", h.GetReviewByID)

		authed := reviews.Group("", authn.RequireAuth())
		{
			authed.POST("", h.CreateReview)
			authed.GET("/my-reviews", h.MyReviews)
			authed.PUT("/:id", h.UpdateReview)
			authed.DELETE("/:id", h.DeleteReview)
		}
	}
}

func (h *ReviewHandler) ListProductReviews(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.log.Warnf("Invalid product ID parameter for reviews: %s", c.Param("product_id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	limit, skip := parsePagination(c, 20)

	ratingFilter := 0
	if ratingStr := c.Query("rating"); ratingStr != "" {
		ratingFilter, err = strconv.Atoi(ratingStr)
		if err != nil {
			h.log.Warnf("Invalid rating filter: %s", ratingStr)
			ErrorResponse(c, http.StatusBadRequest, "Invalid rating filter")
			return
		}
	}

	reviews, total, summary, err := h.useCase.ListProductReviews(productID, ratingFilter, limit, skip)
	if err != nil {
		h.log.Warnf("Failed to list reviews for product %s: %v", productID, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Reviews retrieved successfully", ReviewListResponse{
		Total:              total,
		AverageRating:      summary.AverageRating,
		RatingDistribution: summary.Distribution,
		Reviews:            reviews,
	})
}

func (h *ReviewHandler) GetRatingSummary(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.log.Warnf("Invalid product ID parameter for rating summary: %s", c.Param("product_id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	summary, err := h.useCase.RatingSummary(productID)
	if err != nil {
		h.log.Warnf("Failed to get rating summary for product %s: %v", productID, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Rating summary retrieved successfully", summary)
}

func (h *ReviewHandler) GetReviewByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid review ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid review ID format")
		return
	}

	review, err := h.useCase.GetReviewByID(id)
	if err != nil {
		h.log.Warnf("Failed to get review %s: %v", id, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Review retrieved successfully", review)
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create review: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Create review validation failed for user %s: %v", user.ID, err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	review, err := h.useCase.CreateReview(user.ID, usecase.CreateReviewInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	})
	if err != nil {
		h.log.Warnf("Failed to create review for product %s by user %s: %v", req.ProductID, user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Review created for product %s by user %s (rating %d)", req.ProductID, user.ID, review.Rating)
	SuccessResponse(c, http.StatusCreated, "Review created successfully", review)
}

func (h *ReviewHandler) MyReviews(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	limit, skip := parsePagination(c, 20)

	reviews, err := h.useCase.ListUserReviews(user.ID, limit, skip)
	if err != nil {
		h.log.Errorf("Failed to list reviews for user %s: %v", user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Reviews retrieved successfully", reviews)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid review ID parameter for update: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid review ID format")
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for update review %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Update review validation failed for %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	review, err := h.useCase.UpdateReview(id, user.ID, domain.ReviewPatch{
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	})
	if err != nil {
		h.log.Warnf("Failed to update review %s by user %s: %v", id, user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Review %s updated by user %s", id, user.ID)
	SuccessResponse(c, http.StatusOK, "Review updated successfully", review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warnf("Invalid review ID parameter for delete: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid review ID format")
		return
	}

	if err := h.useCase.DeleteReview(id, user.ID); err != nil {
		h.log.Warnf("Failed to delete review %s by user %s: %v", id, user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Review %s deleted by user %s", id, user.ID)
	SuccessResponse(c, http.StatusOK, "Review deleted successfully", nil)
}
