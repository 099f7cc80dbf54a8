package usecase

import (
	"io"
	"sort"
	"strings"
	"time"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// --- users ---

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserRepo) CreateUser(user *domain.User) (*domain.User, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	stored := *user
	stored.ID = uuid.New()
	stored.IsActive = true
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetUserByID(id uuid.UUID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (f *fakeUserRepo) UpdateUser(id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	user.UpdatedAt = time.Now()
	out := *user
	return &out, nil
}

func (f *fakeUserRepo) DeactivateUser(id uuid.UUID) error {
	user, ok := f.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.IsActive = false
	return nil
}

func (f *fakeUserRepo) CountUsers() (int, error) {
	return len(f.users), nil
}

func (f *fakeUserRepo) ListUsers() ([]domain.User, error) {
	users := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, *user)
	}
	return users, nil
}

func (f *fakeUserRepo) FindDuplicateEmails() ([]domain.DuplicateEmail, error) {
	counts := make(map[string]int)
	for _, user := range f.users {
		counts[user.Email]++
	}
	var duplicates []domain.DuplicateEmail
	for email, count := range counts {
		if count > 1 {
			duplicates = append(duplicates, domain.DuplicateEmail{Email: email, Count: count})
		}
	}
	return duplicates, nil
}

func (f *fakeUserRepo) RemoveDuplicateEmails() (int64, error) {
	return 0, nil
}

func (f *fakeUserRepo) DeleteAllUsersExcept(keep uuid.UUID) (int64, error) {
	var deleted int64
	for id := range f.users {
		if id != keep {
			delete(f.users, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- categories ---

type fakeCategoryRepo struct {
	categories    map[uuid.UUID]*domain.Category
	productCounts map[uuid.UUID]int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories:    make(map[uuid.UUID]*domain.Category),
		productCounts: make(map[uuid.UUID]int),
	}
}

func (f *fakeCategoryRepo) CreateCategory(category *domain.Category) (*domain.Category, error) {
	for _, existing := range f.categories {
		if existing.Name == category.Name {
			return nil, domain.Errorf(domain.ECONFLICT, "Category with this name already exists")
		}
	}
	stored := *category
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	f.categories[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeCategoryRepo) GetCategoryByID(id uuid.UUID) (*domain.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	out := *category
	return &out, nil
}

func (f *fakeCategoryRepo) GetCategoryByName(name string) (*domain.Category, error) {
	for _, category := range f.categories {
		if category.Name == name {
			out := *category
			return &out, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) UpdateCategory(category *domain.Category) (*domain.Category, error) {
	stored, ok := f.categories[category.ID]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	stored.Name = category.Name
	stored.Description = category.Description
	out := *stored
	return &out, nil
}

func (f *fakeCategoryRepo) DeleteCategory(id uuid.UUID) error {
	if _, ok := f.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) ListCategories(limit, offset int) ([]domain.Category, int, error) {
	categories := make([]domain.Category, 0, len(f.categories))
	for _, category := range f.categories {
		categories = append(categories, *category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	total := len(categories)
	if offset >= len(categories) {
		return []domain.Category{}, total, nil
	}
	end := offset + limit
	if end > len(categories) {
		end = len(categories)
	}
	return categories[offset:end], total, nil
}

func (f *fakeCategoryRepo) CountProductsInCategory(id uuid.UUID) (int, error) {
	return f.productCounts[id], nil
}

// --- products ---

type fakeProductRepo struct {
	products map[uuid.UUID]*domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

// seed stores a product directly, assigning an id when missing.
func (f *fakeProductRepo) seed(product domain.Product) *domain.Product {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.products[product.ID] = &product
	out := product
	return &out
}

func (f *fakeProductRepo) CreateProduct(product *domain.Product) (*domain.Product, error) {
	stored := *product
	stored.ID = uuid.New()
	stored.IsActive = true
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.products[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeProductRepo) GetProductByID(id uuid.UUID) (*domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	out := *product
	return &out, nil
}

func (f *fakeProductRepo) UpdateProduct(id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Stock != nil {
		product.Stock = *patch.Stock
	}
	if patch.CategoryID != nil {
		product.CategoryID = patch.CategoryID
	}
	if patch.ImageURLs != nil {
		product.ImageURLs = patch.ImageURLs
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	product.UpdatedAt = time.Now()
	out := *product
	return &out, nil
}

func (f *fakeProductRepo) DeactivateProduct(id uuid.UUID) error {
	product, ok := f.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.IsActive = false
	return nil
}

func (f *fakeProductRepo) ListProducts(filter domain.ProductFilter, limit, offset int) ([]domain.Product, int, error) {
	var matched []domain.Product
	for _, product := range f.products {
		if filter.IsActive != nil && product.IsActive != *filter.IsActive {
			continue
		}
		if filter.CategoryID != nil && (product.CategoryID == nil || *product.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, *product)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if offset >= len(matched) {
		return []domain.Product{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeProductRepo) ListProductsBySeller(sellerID uuid.UUID, limit, offset int) ([]domain.Product, int, error) {
	var matched []domain.Product
	for _, product := range f.products {
		if product.SellerID == sellerID {
			matched = append(matched, *product)
		}
	}
	total := len(matched)
	if offset >= len(matched) {
		return []domain.Product{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// --- cart ---

type fakeCartRepo struct {
	items      map[uuid.UUID]*domain.CartItem
	clearedFor []uuid.UUID
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[uuid.UUID]*domain.CartItem)}
}

// seed stores a cart item directly, assigning an id when missing.
func (f *fakeCartRepo) seed(item domain.CartItem) *domain.CartItem {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	f.items[item.ID] = &item
	out := item
	return &out
}

func (f *fakeCartRepo) ListCartItems(userID uuid.UUID) ([]domain.CartItem, error) {
	var items []domain.CartItem
	for _, item := range f.items {
		if item.UserID == userID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (f *fakeCartRepo) GetCartItemByID(id uuid.UUID) (*domain.CartItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}
	out := *item
	return &out, nil
}

func (f *fakeCartRepo) GetCartItem(userID, productID uuid.UUID) (*domain.CartItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			out := *item
			return &out, nil
		}
	}
	return nil, domain.ErrCartItemNotFound
}

func (f *fakeCartRepo) AddCartItem(item *domain.CartItem) (*domain.CartItem, error) {
	stored := *item
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.items[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeCartRepo) UpdateCartItemQuantity(id uuid.UUID, quantity int) (*domain.CartItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	out := *item
	return &out, nil
}

func (f *fakeCartRepo) RemoveCartItem(id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return domain.ErrCartItemNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCartRepo) ClearCart(userID uuid.UUID) error {
	for id, item := range f.items {
		if item.UserID == userID {
			delete(f.items, id)
		}
	}
	f.clearedFor = append(f.clearedFor, userID)
	return nil
}

// --- orders ---

// fakeOrderRepo consumes createErrs one per CreateOrder call; nil
// entries mean success.
type fakeOrderRepo struct {
	orders      map[uuid.UUID]*domain.Order
	createErrs  []error
	createCalls int
	lastFrom    domain.OrderStatus
	lastTo      domain.OrderStatus
	cancelled   []uuid.UUID
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

// seed stores an order directly, assigning an id when missing.
func (f *fakeOrderRepo) seed(order domain.Order) *domain.Order {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	f.orders[order.ID] = &order
	out := order
	return &out
}

func (f *fakeOrderRepo) CreateOrder(order *domain.Order) (*domain.Order, error) {
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	stored := *order
	stored.ID = uuid.New()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	for i := range items {
		items[i].ID = uuid.New()
	}
	stored.Items = items
	f.orders[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeOrderRepo) GetOrderByID(id uuid.UUID) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	out := *order
	return &out, nil
}

func (f *fakeOrderRepo) ListOrdersByBuyerID(buyerID uuid.UUID, limit, offset int) ([]domain.Order, int, error) {
	var matched []domain.Order
	for _, order := range f.orders {
		if order.BuyerID == buyerID {
			matched = append(matched, *order)
		}
	}
	total := len(matched)
	if offset >= len(matched) {
		return []domain.Order{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeOrderRepo) ListAllOrders(status domain.OrderStatus, limit, offset int) ([]domain.Order, int, error) {
	var matched []domain.Order
	for _, order := range f.orders {
		if status != "" && order.Status != status {
			continue
		}
		matched = append(matched, *order)
	}
	total := len(matched)
	if offset >= len(matched) {
		return []domain.Order{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(id uuid.UUID, from, to domain.OrderStatus) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if order.Status != from {
		return nil, domain.Errorf(domain.ECONFLICT, "Order was modified concurrently, please retry")
	}
	f.lastFrom = from
	f.lastTo = to
	order.Status = to
	order.UpdatedAt = time.Now()
	out := *order
	return &out, nil
}

func (f *fakeOrderRepo) CancelOrder(id uuid.UUID) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	order.Status = domain.StatusCancelled
	order.UpdatedAt = time.Now()
	f.cancelled = append(f.cancelled, id)
	out := *order
	return &out, nil
}

// --- reviews ---

type fakeReviewRepo struct {
	reviews    map[uuid.UUID]*domain.Review
	verified   map[uuid.UUID]map[uuid.UUID]bool
	refreshed  []uuid.UUID
	refreshErr error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{
		reviews:  make(map[uuid.UUID]*domain.Review),
		verified: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

// markPurchased records a verified purchase of product by user.
func (f *fakeReviewRepo) markPurchased(userID, productID uuid.UUID) {
	if f.verified[userID] == nil {
		f.verified[userID] = make(map[uuid.UUID]bool)
	}
	f.verified[userID][productID] = true
}

// seed stores a review directly, assigning an id when missing.
func (f *fakeReviewRepo) seed(review domain.Review) *domain.Review {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	f.reviews[review.ID] = &review
	out := review
	return &out
}

func (f *fakeReviewRepo) CreateReview(review *domain.Review) (*domain.Review, error) {
	for _, existing := range f.reviews {
		if existing.UserID == review.UserID && existing.ProductID == review.ProductID {
			return nil, domain.Errorf(domain.ECONFLICT, "You have already reviewed this product. Use update instead.")
		}
	}
	stored := *review
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.reviews[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeReviewRepo) GetReviewByID(id uuid.UUID) (*domain.Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	out := *review
	return &out, nil
}

func (f *fakeReviewRepo) HasUserReviewed(userID, productID uuid.UUID) (bool, error) {
	for _, review := range f.reviews {
		if review.UserID == userID && review.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) UpdateReview(id uuid.UUID, patch domain.ReviewPatch) (*domain.Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	if patch.Rating != nil {
		review.Rating = *patch.Rating
	}
	if patch.Title != nil {
		review.Title = *patch.Title
	}
	if patch.Comment != nil {
		review.Comment = *patch.Comment
	}
	review.UpdatedAt = time.Now()
	out := *review
	return &out, nil
}

func (f *fakeReviewRepo) DeleteReview(id uuid.UUID) error {
	if _, ok := f.reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) ListProductReviews(productID uuid.UUID, ratingFilter, limit, offset int) ([]domain.Review, int, error) {
	var matched []domain.Review
	for _, review := range f.reviews {
		if review.ProductID != productID {
			continue
		}
		if ratingFilter != 0 && review.Rating != ratingFilter {
			continue
		}
		matched = append(matched, *review)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if offset >= len(matched) {
		return []domain.Review{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeReviewRepo) ListUserReviews(userID uuid.UUID, limit, offset int) ([]domain.Review, error) {
	var matched []domain.Review
	for _, review := range f.reviews {
		if review.UserID == userID {
			matched = append(matched, *review)
		}
	}
	if offset >= len(matched) {
		return []domain.Review{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeReviewRepo) RatingDistribution(productID uuid.UUID) (map[int]int, error) {
	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, review := range f.reviews {
		if review.ProductID == productID {
			distribution[review.Rating]++
		}
	}
	return distribution, nil
}

func (f *fakeReviewRepo) HasVerifiedPurchase(userID, productID uuid.UUID) (bool, error) {
	return f.verified[userID][productID], nil
}

func (f *fakeReviewRepo) RefreshProductRating(productID uuid.UUID) error {
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.refreshed = append(f.refreshed, productID)
	return nil
}
