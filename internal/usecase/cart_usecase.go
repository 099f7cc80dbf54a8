package usecase

import (
	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CartUseCase interface {
	GetCart(userID uuid.UUID) ([]domain.CartItem, error)
	AddToCart(userID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	UpdateCartItem(userID, cartItemID uuid.UUID, quantity int) (*domain.CartItem, error)
	RemoveFromCart(userID, cartItemID uuid.UUID) error
	ClearCart(userID uuid.UUID) error
}

type cartUseCase struct {
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewCartUseCase(cartRepo domain.CartRepository, productRepo domain.ProductRepository, logger *logrus.Logger) CartUseCase {
	return &cartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		log:         logger,
	}
}

func (uc *cartUseCase) GetCart(userID uuid.UUID) ([]domain.CartItem, error) {
	items, err := uc.cartRepo.ListCartItems(userID)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list cart for user %s: %v", userID, err)
		return nil, err
	}
	return items, nil
}

// AddToCart merges with an existing line for the same product; the
// merged quantity must still fit the current stock.
func (uc *cartUseCase) AddToCart(userID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		uc.log.Warnf("Use Case: User %s attempted to add quantity %d to cart", userID, quantity)
		return nil, domain.Errorf(domain.EINVALID, "Quantity must be at least 1")
	}

	product, err := uc.productRepo.GetProductByID(productID)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return nil, domain.Errorf(domain.EUNAVAILABLE, "Product is not available")
		}
		return nil, err
	}
	if !product.IsActive {
		uc.log.Warnf("Use Case: User %s attempted to add inactive product %s to cart", userID, productID)
		return nil, domain.Errorf(domain.EUNAVAILABLE, "Product is not available")
	}
	if product.Stock < quantity {
		uc.log.Warnf("Use Case: Insufficient stock for product %s (requested %d, have %d)", productID, quantity, product.Stock)
		return nil, domain.Errorf(domain.EINSUFFICIENTSTOCK, "Only %d items available in stock", product.Stock)
	}

	existing, err := uc.cartRepo.GetCartItem(userID, productID)
	if err != nil && domain.ErrorCode(err) != domain.ENOTFOUND {
		return nil, err
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if newQuantity > product.Stock {
			uc.log.Warnf("Use Case: Merged cart quantity %d exceeds stock %d for product %s", newQuantity, product.Stock, productID)
			return nil, domain.Errorf(domain.EINSUFFICIENTSTOCK, "Cannot add more. Only %d items available", product.Stock)
		}

		uc.log.Infof("Use Case: Merging cart line for user %s, product %s (quantity %d -> %d)",
			userID, productID, existing.Quantity, newQuantity)
		return uc.cartRepo.UpdateCartItemQuantity(existing.ID, newQuantity)
	}

	uc.log.Infof("Use Case: Adding product %s (x%d) to cart for user %s", productID, quantity, userID)
	return uc.cartRepo.AddCartItem(&domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

func (uc *cartUseCase) UpdateCartItem(userID, cartItemID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, domain.Errorf(domain.EINVALID, "Quantity must be at least 1")
	}

	item, err := uc.cartRepo.GetCartItemByID(cartItemID)
	if err != nil {
		uc.log.Warnf("Use Case: Cart item %s not found: %v", cartItemID, err)
		return nil, err
	}
	if item.UserID != userID {
		uc.log.Warnf("Use Case: User %s attempted to update cart item %s owned by %s", userID, cartItemID, item.UserID)
		return nil, domain.ErrNotYourCartItem
	}

	product, err := uc.productRepo.GetProductByID(item.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		uc.log.Warnf("Use Case: Requested quantity %d exceeds stock %d for product %s", quantity, product.Stock, item.ProductID)
		return nil, domain.Errorf(domain.EINSUFFICIENTSTOCK, "Only %d items available", product.Stock)
	}

	uc.log.Infof("Use Case: Updating cart item %s quantity to %d", cartItemID, quantity)
	return uc.cartRepo.UpdateCartItemQuantity(cartItemID, quantity)
}

func (uc *cartUseCase) RemoveFromCart(userID, cartItemID uuid.UUID) error {
	item, err := uc.cartRepo.GetCartItemByID(cartItemID)
	if err != nil {
		uc.log.Warnf("Use Case: Cart item %s not found for removal: %v", cartItemID, err)
		return err
	}
	if item.UserID != userID {
		uc.log.Warnf("Use Case: User %s attempted to remove cart item %s owned by %s", userID, cartItemID, item.UserID)
		return domain.ErrNotYourCartItem
	}

	uc.log.Infof("Use Case: Removing cart item %s for user %s", cartItemID, userID)
	return uc.cartRepo.RemoveCartItem(cartItemID)
}

func (uc *cartUseCase) ClearCart(userID uuid.UUID) error {
	uc.log.Infof("Use Case: Clearing cart for user %s", userID)
	return uc.cartRepo.ClearCart(userID)
}
