package usecase

import (
	"strings"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	CreateCategory(name, description string) (*domain.Category, error)
	GetCategoryByID(id uuid.UUID) (*domain.Category, error)
	UpdateCategory(id uuid.UUID, name, description string) (*domain.Category, error)
	DeleteCategory(id uuid.UUID) error
	ListCategories(limit, offset int) ([]domain.Category, int, error)
}

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
}

func NewCategoryUseCase(repo domain.CategoryRepository, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		categoryRepo: repo,
		log:          logger,
	}
}

func (uc *categoryUseCase) CreateCategory(name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		uc.log.Warn("Use Case: Attempted to create category with empty name")
		return nil, domain.Errorf(domain.EINVALID, "Category name cannot be empty")
	}

	uc.log.Infof("Use Case: Attempting to create category '%s'", name)
	created, err := uc.categoryRepo.CreateCategory(&domain.Category{
		Name:        name,
		Description: description,
	})
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to create category '%s': %v", name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category '%s' created with ID %s", created.Name, created.ID)
	return created, nil
}

func (uc *categoryUseCase) GetCategoryByID(id uuid.UUID) (*domain.Category, error) {
	category, err := uc.categoryRepo.GetCategoryByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get category %s: %v", id, err)
		return nil, err
	}
	return category, nil
}

func (uc *categoryUseCase) UpdateCategory(id uuid.UUID, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		uc.log.Warnf("Use Case: Attempted to update category %s with empty name", id)
		return nil, domain.Errorf(domain.EINVALID, "Category name cannot be empty")
	}

	uc.log.Infof("Use Case: Updating category %s", id)
	updated, err := uc.categoryRepo.UpdateCategory(&domain.Category{
		ID:          id,
		Name:        name,
		Description: description,
	})
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update category %s: %v", id, err)
		return nil, err
	}

	return updated, nil
}

// DeleteCategory refuses to delete a category that still has products;
// the database FK backs this check up under concurrency.
func (uc *categoryUseCase) DeleteCategory(id uuid.UUID) error {
	count, err := uc.categoryRepo.CountProductsInCategory(id)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to count products in category %s: %v", id, err)
		return err
	}
	if count > 0 {
		uc.log.Warnf("Use Case: Refusing to delete category %s with %d products", id, count)
		return domain.Errorf(domain.EINVALIDSTATE, "Cannot delete category. It has %d products.", count)
	}

	uc.log.Infof("Use Case: Deleting category %s", id)
	if err := uc.categoryRepo.DeleteCategory(id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete category %s: %v", id, err)
		return err
	}

	return nil
}

func (uc *categoryUseCase) ListCategories(limit, offset int) ([]domain.Category, int, error) {
	categories, total, err := uc.categoryRepo.ListCategories(limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list categories: %v", err)
		return nil, 0, err
	}
	return categories, total, nil
}
