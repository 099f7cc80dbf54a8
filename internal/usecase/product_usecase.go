package usecase

import (
	"strings"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProductUseCase interface {
	CreateProduct(sellerID uuid.UUID, product *domain.Product) (*domain.Product, error)
	GetProductByID(id uuid.UUID) (*domain.Product, error)
	UpdateProduct(id, sellerID uuid.UUID, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(id, sellerID uuid.UUID) error
	ListProducts(filter domain.ProductFilter, limit, offset int) ([]domain.Product, int, error)
	ListSellerProducts(sellerID uuid.UUID, limit, offset int) ([]domain.Product, int, error)
}

type productUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		log:          logger,
	}
}

func (uc *productUseCase) CreateProduct(sellerID uuid.UUID, product *domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		uc.log.Warn("Use Case: Attempted to create product with empty name")
		return nil, domain.Errorf(domain.EINVALID, "Product name cannot be empty")
	}
	if product.Price <= 0 {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with invalid price: %f", product.Name, product.Price)
		return nil, domain.Errorf(domain.EINVALID, "Product price must be positive")
	}
	if product.Stock < 0 {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with negative stock: %d", product.Name, product.Stock)
		return nil, domain.Errorf(domain.EINVALID, "Product stock cannot be negative")
	}
	if product.CategoryID != nil {
		if _, err := uc.categoryRepo.GetCategoryByID(*product.CategoryID); err != nil {
			uc.log.Warnf("Use Case: Category %s not found during product creation: %v", *product.CategoryID, err)
			return nil, err
		}
	}

	product.SellerID = sellerID
	if product.ImageURLs == nil {
		product.ImageURLs = []string{}
	}

	uc.log.Infof("Use Case: Attempting to create product '%s' for seller %s", product.Name, sellerID)
	created, err := uc.productRepo.CreateProduct(product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %s", created.Name, created.ID)
	return created, nil
}

func (uc *productUseCase) GetProductByID(id uuid.UUID) (*domain.Product, error) {
	product, err := uc.productRepo.GetProductByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product %s: %v", id, err)
		return nil, err
	}
	return product, nil
}

func (uc *productUseCase) UpdateProduct(id, sellerID uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := uc.productRepo.GetProductByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Product %s not found for update: %v", id, err)
		return nil, err
	}

	if product.SellerID != sellerID {
		uc.log.Warnf("Use Case: Seller %s attempted to update product %s owned by %s", sellerID, id, product.SellerID)
		return nil, domain.Errorf(domain.EFORBIDDEN, "You can only update your own products")
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.Errorf(domain.EINVALID, "Product name cannot be empty")
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return nil, domain.Errorf(domain.EINVALID, "Product price must be positive")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, domain.Errorf(domain.EINVALID, "Product stock cannot be negative")
	}
	if patch.CategoryID != nil {
		if _, err := uc.categoryRepo.GetCategoryByID(*patch.CategoryID); err != nil {
			uc.log.Warnf("Use Case: Category %s not found during product update: %v", *patch.CategoryID, err)
			return nil, err
		}
	}

	uc.log.Infof("Use Case: Updating product %s", id)
	updated, err := uc.productRepo.UpdateProduct(id, patch)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update product %s: %v", id, err)
		return nil, err
	}

	return updated, nil
}

// DeleteProduct is a soft delete so order history keeps pointing at a
// real row.
func (uc *productUseCase) DeleteProduct(id, sellerID uuid.UUID) error {
	product, err := uc.productRepo.GetProductByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Product %s not found for delete: %v", id, err)
		return err
	}

	if product.SellerID != sellerID {
		uc.log.Warnf("Use Case: Seller %s attempted to delete product %s owned by %s", sellerID, id, product.SellerID)
		return domain.Errorf(domain.EFORBIDDEN, "You can only delete your own products")
	}

	uc.log.Infof("Use Case: Deactivating product %s", id)
	if err := uc.productRepo.DeactivateProduct(id); err != nil {
		uc.log.Errorf("Use Case: Repository failed to deactivate product %s: %v", id, err)
		return err
	}

	return nil
}

func (uc *productUseCase) ListProducts(filter domain.ProductFilter, limit, offset int) ([]domain.Product, int, error) {
	uc.log.Infof("Use Case: Listing products (search: %q, limit: %d, offset: %d)", filter.Search, limit, offset)
	products, total, err := uc.productRepo.ListProducts(filter, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, 0, err
	}
	return products, total, nil
}

func (uc *productUseCase) ListSellerProducts(sellerID uuid.UUID, limit, offset int) ([]domain.Product, int, error) {
	products, total, err := uc.productRepo.ListProductsBySeller(sellerID, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products for seller %s: %v", sellerID, err)
		return nil, 0, err
	}
	return products, total, nil
}
