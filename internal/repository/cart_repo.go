package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresCartRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCartRepository(db *sql.DB, logger *logrus.Logger) domain.CartRepository {
	return &postgresCartRepository{
		db:  db,
		log: logger,
	}
}

const cartItemSelect = `
        SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
               p.id, p.name, p.price, p.stock, p.is_active, p.image_urls
        FROM cart_items ci
        JOIN products p ON p.id = ci.product_id`

func scanCartItem(row interface{ Scan(...interface{}) error }, item *domain.CartItem) error {
	var (
		product   domain.CartProduct
		imageURLs pq.StringArray
	)

	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Stock,
		&product.IsActive,
		&imageURLs,
	)
	if err != nil {
		return err
	}

	product.ImageURLs = []string(imageURLs)
	if product.ImageURLs == nil {
		product.ImageURLs = []string{}
	}
	item.Product = &product
	return nil
}

func (r *postgresCartRepository) ListCartItems(userID uuid.UUID) ([]domain.CartItem, error) {
	query := cartItemSelect + ` WHERE ci.user_id = $1 ORDER BY ci.created_at ASC, ci.id`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to list cart items for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := scanCartItem(rows, &item); err != nil {
			r.log.Errorf("Repository: Failed to scan cart item row: %v", err)
			return nil, fmt.Errorf("error scanning cart item data: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

func (r *postgresCartRepository) GetCartItemByID(id uuid.UUID) (*domain.CartItem, error) {
	query := cartItemSelect + ` WHERE ci.id = $1`
	item := &domain.CartItem{}

	err := scanCartItem(r.db.QueryRow(query, id), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}
		r.log.Errorf("Repository: Failed to get cart item %s: %v", id, err)
		return nil, fmt.Errorf("could not get cart item: %w", err)
	}

	return item, nil
}

func (r *postgresCartRepository) GetCartItem(userID, productID uuid.UUID) (*domain.CartItem, error) {
	query := cartItemSelect + ` WHERE ci.user_id = $1 AND ci.product_id = $2`
	item := &domain.CartItem{}

	err := scanCartItem(r.db.QueryRow(query, userID, productID), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}
		r.log.Errorf("Repository: Failed to get cart item for user %s product %s: %v", userID, productID, err)
		return nil, fmt.Errorf("could not get cart item: %w", err)
	}

	return item, nil
}

func (r *postgresCartRepository) AddCartItem(item *domain.CartItem) (*domain.CartItem, error) {
	query := `
        INSERT INTO cart_items (id, user_id, product_id, quantity)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	item.ID = uuid.New()
	var insertedID uuid.UUID
	err := r.db.QueryRow(query, item.ID, item.UserID, item.ProductID, item.Quantity).Scan(&insertedID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, domain.Errorf(domain.ECONFLICT, "Product is already in your cart")
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return nil, domain.ErrProductNotFound
		}
		r.log.Errorf("Repository: Failed to add cart item for user %s: %v", item.UserID, err)
		return nil, fmt.Errorf("could not add cart item: %w", err)
	}

	r.log.Infof("Repository: Cart item %s added for user %s", insertedID, item.UserID)
	return r.GetCartItemByID(insertedID)
}

func (r *postgresCartRepository) UpdateCartItemQuantity(id uuid.UUID, quantity int) (*domain.CartItem, error) {
	query := `UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(query, id, quantity)
	if err != nil {
		r.log.Errorf("Repository: Failed to update cart item %s quantity: %v", id, err)
		return nil, fmt.Errorf("could not update cart item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not check cart item update result: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrCartItemNotFound
	}

	return r.GetCartItemByID(id)
}

func (r *postgresCartRepository) RemoveCartItem(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to remove cart item %s: %v", id, err)
		return fmt.Errorf("could not remove cart item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not check cart item removal result: %w", err)
	}
	if affected == 0 {
		return domain.ErrCartItemNotFound
	}

	return nil
}

func (r *postgresCartRepository) ClearCart(userID uuid.UUID) error {
	if _, err := r.db.Exec(`DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.log.Errorf("Repository: Failed to clear cart for user %s: %v", userID, err)
		return fmt.Errorf("could not clear cart: %w", err)
	}

	r.log.Infof("Repository: Cart cleared for user %s", userID)
	return nil
}
