package domain

import (
	"errors"
	"fmt"
)

// Stable error kinds. Handlers translate these to HTTP statuses,
// business code never deals in transport codes.
const (
	ECONFLICT          = "conflict"
	EEMPTYCART         = "empty_cart"
	EFORBIDDEN         = "forbidden"
	EINSUFFICIENTSTOCK = "insufficient_stock"
	EINTERNAL          = "internal"
	EINVALID           = "invalid"
	EINVALIDSTATE      = "invalid_state"
	EINVALIDTRANSITION = "invalid_transition"
	ENOTFOUND          = "not_found"
	EUNAUTHORIZED      = "unauthorized"
	EUNAVAILABLE       = "product_unavailable"
)

// Error carries a machine-readable kind and a human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps err looking for a domain error kind; anything
// else is reported as internal.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the user-visible message for err. Non-domain
// errors are masked behind a generic message.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

var (
	ErrEmptyCart = &Error{Code: EEMPTYCART, Message: "Cart is empty"}

	ErrOrderNotFound    = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrProductNotFound  = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrCategoryNotFound = &Error{Code: ENOTFOUND, Message: "Category not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrReviewNotFound   = &Error{Code: ENOTFOUND, Message: "Review not found"}
	ErrUserNotFound     = &Error{Code: ENOTFOUND, Message: "User not found"}

	ErrNotYourOrder    = &Error{Code: EFORBIDDEN, Message: "Not your order"}
	ErrNotYourCartItem = &Error{Code: EFORBIDDEN, Message: "Not your cart item"}

	ErrEmailTaken     = &Error{Code: ECONFLICT, Message: "Email already registered"}
	ErrBadCredentials = &Error{Code: EUNAUTHORIZED, Message: "Incorrect email or password"}
)
