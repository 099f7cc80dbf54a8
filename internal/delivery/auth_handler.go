package delivery

import (
	"net/http"

	"shophub/internal/auth"
	"shophub/internal/domain"
	"shophub/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase usecase.UserUseCase
	tokens  *auth.TokenManager
	log     *logrus.Logger
}

func NewAuthHandler(uc usecase.UserUseCase, tokens *auth.TokenManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		tokens:  tokens,
		log:     logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/register/buyer", h.RegisterBuyer)
		authGroup.POST("/register/seller", h.RegisterSeller)
		authGroup.POST("/login", h.Login)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	h.register(c, "")
}

// RegisterBuyer is the convenience registration that pins the role
// regardless of what the payload says.
func (h *AuthHandler) RegisterBuyer(c *gin.Context) {
	h.register(c, domain.RoleBuyer)
}

func (h *AuthHandler) RegisterSeller(c *gin.Context) {
	h.register(c, domain.RoleSeller)
}

func (h *AuthHandler) register(c *gin.Context, forceRole domain.UserRole) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for register: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Register validation failed for %s: %v", req.Email, err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	role := domain.UserRole(req.Role)
	if forceRole != "" {
		role = forceRole
	}

	user, err := h.useCase.Register(usecase.RegisterInput{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		h.log.Warnf("Failed to register user %s: %v", req.Email, err)
		DomainErrorResponse(c, err)
		return
	}

	h.log.Infof("User registered successfully: %s (%s)", user.Email, user.Role)
	SuccessResponse(c, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for login: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log.Warnf("Login validation failed: %v", err)
		ErrorResponse(c, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.useCase.Authenticate(req.Email, req.Password)
	if err != nil {
		h.log.Warnf("Failed login attempt for %s: %v", req.Email, err)
		DomainErrorResponse(c, err)
		return
	}

	token, err := h.tokens.CreateAccessToken(user.ID)
	if err != nil {
		h.log.Errorf("Failed to issue access token for user %s: %v", user.ID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Could not issue access token")
		return
	}

	h.log.Infof("User logged in: %s", user.Email)
	SuccessResponse(c, http.StatusOK, "Login successful", TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}
