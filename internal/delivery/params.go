package delivery

import (
	"net/http"
	"strconv"

	"shophub/internal/domain"
	"shophub/internal/middleware"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// requireUser pulls the authenticated user from the request context,
// answering 401 when the route was somehow reached without it.
func requireUser(c *gin.Context) (*domain.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		ErrorResponse(c, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	return user, true
}

// parsePagination reads the skip and limit query parameters. Garbage
// or out-of-range values fall back to the defaults, and limit is
// capped at maxPageSize.
func parsePagination(c *gin.Context, defaultLimit int) (limit, skip int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	skip, err = strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	return limit, skip
}
