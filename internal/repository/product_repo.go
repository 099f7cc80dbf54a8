package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

const productSelect = `
        SELECT p.id, p.name, p.description, p.price, p.stock, p.image_urls,
               p.is_active, p.average_rating, p.total_reviews,
               p.seller_id, u.full_name, u.email,
               p.category_id, c.name, c.description, c.created_at,
               p.created_at, p.updated_at
        FROM products p
        JOIN users u ON u.id = p.seller_id
        LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row interface{ Scan(...interface{}) error }, product *domain.Product) error {
	var (
		imageURLs   pq.StringArray
		avgRating   sql.NullFloat64
		sellerName  string
		sellerEmail string
		categoryID  uuid.NullUUID
		catName     sql.NullString
		catDesc     sql.NullString
		catCreated  sql.NullTime
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&imageURLs,
		&product.IsActive,
		&avgRating,
		&product.TotalReviews,
		&product.SellerID,
		&sellerName,
		&sellerEmail,
		&categoryID,
		&catName,
		&catDesc,
		&catCreated,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return err
	}

	product.ImageURLs = []string(imageURLs)
	if product.ImageURLs == nil {
		product.ImageURLs = []string{}
	}
	if avgRating.Valid {
		rating := avgRating.Float64
		product.AverageRating = &rating
	}
	product.Seller = &domain.SellerInfo{
		ID:       product.SellerID,
		FullName: sellerName,
		Email:    sellerEmail,
	}
	if categoryID.Valid {
		id := categoryID.UUID
		product.CategoryID = &id
		product.Category = &domain.Category{
			ID:          id,
			Name:        catName.String,
			Description: catDesc.String,
			CreatedAt:   catCreated.Time,
		}
	}
	return nil
}

func (r *postgresProductRepository) CreateProduct(product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (id, name, description, price, stock, image_urls, seller_id, category_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id`

	product.ID = uuid.New()
	categoryID := uuid.NullUUID{}
	if product.CategoryID != nil {
		categoryID = uuid.NullUUID{UUID: *product.CategoryID, Valid: true}
	}

	var insertedID uuid.UUID
	err := r.db.QueryRow(query,
		product.ID, product.Name, product.Description, product.Price, product.Stock,
		pq.Array(product.ImageURLs), product.SellerID, categoryID,
	).Scan(&insertedID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			r.log.Warnf("Repository: Product references a missing category or seller: %v", pqErr.Message)
			return nil, domain.ErrCategoryNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Repository: Check constraint violation for product '%s': %s", product.Name, pqErr.Message)
			return nil, domain.Errorf(domain.EINVALID, "Product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Repository: Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}

	r.log.Infof("Repository: Product created successfully with ID: %s, Name: %s", product.ID, product.Name)
	return r.GetProductByID(insertedID)
}

func (r *postgresProductRepository) GetProductByID(id uuid.UUID) (*domain.Product, error) {
	query := productSelect + ` WHERE p.id = $1`
	product := &domain.Product{}

	err := scanProduct(r.db.QueryRow(query, id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %s not found", id)
			return nil, domain.ErrProductNotFound
		}
		r.log.Errorf("Repository: Failed to get product by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}

	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	setClauses := []string{}
	args := []interface{}{}
	argCounter := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argCounter))
		args = append(args, value)
		argCounter++
	}

	if patch.Name != nil {
		addClause("name", *patch.Name)
	}
	if patch.Description != nil {
		addClause("description", *patch.Description)
	}
	if patch.Price != nil {
		addClause("price", *patch.Price)
	}
	if patch.Stock != nil {
		addClause("stock", *patch.Stock)
	}
	if patch.CategoryID != nil {
		addClause("category_id", uuid.NullUUID{UUID: *patch.CategoryID, Valid: true})
	}
	if patch.ImageURLs != nil {
		addClause("image_urls", pq.Array(patch.ImageURLs))
	}
	if patch.IsActive != nil {
		addClause("is_active", *patch.IsActive)
	}

	if len(setClauses) == 0 {
		return r.GetProductByID(id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argCounter)
	args = append(args, id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return nil, domain.ErrCategoryNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			return nil, domain.Errorf(domain.EINVALID, "Product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Repository: Failed to update product ID %s: %v", id, err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not check product update result: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrProductNotFound
	}

	r.log.Infof("Repository: Product %s updated successfully", id)
	return r.GetProductByID(id)
}

func (r *postgresProductRepository) DeactivateProduct(id uuid.UUID) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to deactivate product ID %s: %v", id, err)
		return fmt.Errorf("could not deactivate product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not check product deactivation result: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	r.log.Infof("Repository: Product %s deactivated", id)
	return nil
}

func (r *postgresProductRepository) ListProducts(filter domain.ProductFilter, limit, offset int) ([]domain.Product, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argCounter := 1

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_active = $%d", argCounter))
		args = append(args, *filter.IsActive)
		argCounter++
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argCounter))
		args = append(args, *filter.CategoryID)
		argCounter++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", argCounter, argCounter))
		args = append(args, "%"+filter.Search+"%")
		argCounter++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM products p` + whereClause
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		r.log.Errorf("Repository: Failed to count products: %v", err)
		return nil, 0, fmt.Errorf("could not count products: %w", err)
	}

	listQuery := productSelect + whereClause +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
	args = append(args, limit, offset)

	products, err := r.queryProducts(listQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *postgresProductRepository) ListProductsBySeller(sellerID uuid.UUID, limit, offset int) ([]domain.Product, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM products WHERE seller_id = $1`, sellerID).Scan(&total); err != nil {
		r.log.Errorf("Repository: Failed to count seller products: %v", err)
		return nil, 0, fmt.Errorf("could not count seller products: %w", err)
	}

	query := productSelect + ` WHERE p.seller_id = $1 ORDER BY p.created_at DESC LIMIT $2 OFFSET $3`

	products, err := r.queryProducts(query, sellerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *postgresProductRepository) queryProducts(query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to query products: %v", err)
		return nil, fmt.Errorf("could not retrieve products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		if err := scanProduct(rows, &product); err != nil {
			r.log.Errorf("Repository: Failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
