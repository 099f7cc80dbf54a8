package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

func IsValidRole(role UserRole) bool {
	switch role {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch holds the profile fields a user may change. Nil means
// leave untouched.
type UserPatch struct {
	FullName *string
	Phone    *string
}

type DuplicateEmail struct {
	Email string `json:"email"`
	Count int    `json:"count"`
}

type UserRepository interface {
	CreateUser(user *User) (*User, error)
	GetUserByEmail(email string) (*User, error)
	GetUserByID(id uuid.UUID) (*User, error)
	UpdateUser(id uuid.UUID, patch UserPatch) (*User, error)
	DeactivateUser(id uuid.UUID) error

	CountUsers() (int, error)
	ListUsers() ([]User, error)
	FindDuplicateEmails() ([]DuplicateEmail, error)
	RemoveDuplicateEmails() (int64, error)
	DeleteAllUsersExcept(keep uuid.UUID) (int64, error)
}
