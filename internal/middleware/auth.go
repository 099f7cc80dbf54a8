package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"shophub/internal/auth"
	"shophub/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const userContextKey = "currentUser"

// Authenticator resolves bearer tokens into loaded user records for
// the handlers downstream.
type Authenticator struct {
	tokens *auth.TokenManager
	users  domain.UserRepository
	log    *logrus.Logger
}

func NewAuthenticator(tokens *auth.TokenManager, users domain.UserRepository, logger *logrus.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, log: logger}
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": message})
}

// RequireAuth validates the Authorization header, loads the user and
// stores it in the request context.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			a.log.Warn("Middleware: Authorization header is missing")
			abortError(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			a.log.Warnf("Middleware: Invalid Authorization header format")
			abortError(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		userID, err := a.tokens.ParseUserID(parts[1])
		if err != nil {
			a.log.Warnf("Middleware: Token rejected: %v", err)
			abortError(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		user, err := a.users.GetUserByID(userID)
		if err != nil {
			a.log.Warnf("Middleware: Token subject %s could not be loaded: %v", userID, err)
			abortError(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if !user.IsActive {
			a.log.Warnf("Middleware: Inactive user %s rejected", user.ID)
			abortError(c, http.StatusForbidden, "Inactive user")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRole gates a route to exactly one role. Must run after
// RequireAuth. Admins do not bypass seller or buyer gates.
func (a *Authenticator) RequireRole(role domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortError(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if user.Role != role {
			a.log.Warnf("Middleware: User %s with role %s denied access, %s required", user.ID, user.Role, role)
			abortError(c, http.StatusForbidden, fmt.Sprintf("Access denied. Required role: %s", role))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth, or nil when the
// route ran without it.
func CurrentUser(c *gin.Context) *domain.User {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*domain.User)
	if !ok {
		return nil
	}
	return user
}
