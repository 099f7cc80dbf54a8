package domain

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CategoryRepository interface {
	CreateCategory(category *Category) (*Category, error)
	GetCategoryByID(id uuid.UUID) (*Category, error)
	GetCategoryByName(name string) (*Category, error)
	UpdateCategory(category *Category) (*Category, error)
	DeleteCategory(id uuid.UUID) error
	ListCategories(limit, offset int) ([]Category, int, error)
	CountProductsInCategory(id uuid.UUID) (int, error)
}
