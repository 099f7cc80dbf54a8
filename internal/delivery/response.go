package delivery

import (
	"net/http"

	"shophub/internal/domain"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "error",
		Message: message,
	})
}

// DomainErrorResponse maps a domain error kind to its HTTP status and
// writes the envelope with the error's own message.
func DomainErrorResponse(c *gin.Context, err error) {
	ErrorResponse(c, mapErrorToStatus(err), domain.ErrorMessage(err))
}

func mapErrorToStatus(err error) int {
	switch domain.ErrorCode(err) {
	case domain.EINVALID, domain.EEMPTYCART, domain.EUNAVAILABLE,
		domain.EINSUFFICIENTSTOCK, domain.EINVALIDSTATE, domain.EINVALIDTRANSITION:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
