package delivery

import (
	"net/http"

	"shophub/internal/domain"
	"shophub/internal/middleware"
	"shophub/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	useCase usecase.UserUseCase
	log     *logrus.Logger
}

func NewUserHandler(uc usecase.UserUseCase, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *UserHandler) RegisterRoutes(router gin.IRouter, authn *middleware.Authenticator) {
	users := router.Group("/users", authn.RequireAuth())
	{
		users.GET("/me", h.GetProfile)
		users.PUT("/me", h.UpdateProfile)
		users.DELETE("/me", h.DeactivateAccount)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for profile update: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Profile update validation failed for user %s: %v", user.ID, err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	updated, err := h.useCase.UpdateProfile(user.ID, domain.UserPatch{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		h.log.Warnf("Failed to update profile for user %s: %v", user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("User profile updated: %s", updated.ID)
	SuccessResponse(c, http.StatusOK, "Profile updated successfully", updated)
}

func (h *UserHandler) DeactivateAccount(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.useCase.DeactivateUser(user.ID); err != nil {
		h.log.Errorf("Failed to deactivate user %s: %v", user.ID, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("User account deactivated: %s", user.ID)
	SuccessResponse(c, http.StatusOK, "Account deactivated successfully", nil)
}
