package delivery

import (
	"net/http"

	"shophub/internal/domain"
	"shophub/internal/middleware"
	"shophub/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler exposes maintenance endpoints over the user table.
type AdminHandler struct {
	useCase usecase.UserUseCase
	log     *logrus.Logger
}

func NewAdminHandler(uc usecase.UserUseCase, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *AdminHandler) RegisterRoutes(router gin.IRouter, authn *middleware.Authenticator) {
	admin := router.Group("/admin", authn.RequireAuth(), authn.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/users/count", h.CountUsers)
		admin.GET("/users/list", h.ListUsers)
		admin.GET("/users/duplicates", h.FindDuplicates)
		admin.DELETE("/users/duplicates", h.RemoveDuplicates)
		admin.DELETE("/users/all", h.DeleteAllUsers)
	}
}

func (h *AdminHandler) CountUsers(c *gin.Context) {
	count, err := h.useCase.CountUsers()
	if err != nil {
		h.log.Errorf("Failed to count users: %v", err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "User count retrieved successfully", gin.H{"total_users": count})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.useCase.ListUsers()
	if err != nil {
		h.log.Errorf("Failed to list users: %v", err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Users retrieved successfully", NewUserListResponse(users))
}

func (h *AdminHandler) FindDuplicates(c *gin.Context) {
	duplicates, err := h.useCase.FindDuplicateEmails()
	if err != nil {
		h.log.Errorf("Failed to find duplicate emails: %v", err)
		DomainErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Duplicate emails retrieved successfully", gin.H{"duplicates": duplicates})
}

func (h *AdminHandler) RemoveDuplicates(c *gin.Context) {
	removed, err := h.useCase.RemoveDuplicateEmails()
	if err != nil {
		h.log.Errorf("Failed to remove duplicate users: %v", err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("Removed %d duplicate user rows", removed)
	SuccessResponse(c, http.StatusOK, "Duplicate users removed successfully", gin.H{"removed": removed})
}

func (h *AdminHandler) DeleteAllUsers(c *gin.Context) {
	admin, ok := requireUser(c)
	if !ok {
		return
	}

	if c.Query("confirm") != "DELETE_ALL" {
		h.log.Warnf("Delete all users refused for admin %s: missing confirmation", admin.ID)
		ErrorResponse(c, http.StatusBadRequest, "Must pass confirm=DELETE_ALL")
		return
	}

	deleted, err := h.useCase.DeleteAllUsersExcept(admin.ID)
	if err != nil {
		h.log.Errorf("Failed to delete users: %v", err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Warnf("Admin %s deleted %d user rows", admin.ID, deleted)
	SuccessResponse(c, http.StatusOK, "Users deleted successfully", gin.H{"deleted": deleted})
}
