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

type postgresCategoryRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sql.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func scanCategory(row interface{ Scan(...interface{}) error }, category *domain.Category) error {
	var description sql.NullString
	err := row.Scan(&category.ID, &category.Name, &description, &category.CreatedAt)
	if err != nil {
		return err
	}
	category.Description = description.String
	return nil
}

func (r *postgresCategoryRepository) CreateCategory(category *domain.Category) (*domain.Category, error) {
	query := `
        INSERT INTO categories (id, name, description)
        VALUES ($1, $2, $3)
        RETURNING created_at`

	category.ID = uuid.New()
	description := sql.NullString{String: category.Description, Valid: category.Description != ""}

	err := r.db.QueryRow(query, category.ID, category.Name, description).Scan(&category.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.log.Warnf("Repository: Attempted to create duplicate category '%s'", category.Name)
			return nil, domain.Errorf(domain.ECONFLICT, "Category with this name already exists")
		}
		r.log.Errorf("Repository: Failed to create category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}

	r.log.Infof("Repository: Category created successfully with ID: %s, Name: %s", category.ID, category.Name)
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(id uuid.UUID) (*domain.Category, error) {
	query := `SELECT id, name, description, created_at FROM categories WHERE id = $1`
	category := &domain.Category{}

	err := scanCategory(r.db.QueryRow(query, id), category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Category with ID %s not found", id)
			return nil, domain.ErrCategoryNotFound
		}
		r.log.Errorf("Repository: Failed to get category by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}

	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByName(name string) (*domain.Category, error) {
	query := `SELECT id, name, description, created_at FROM categories WHERE name = $1`
	category := &domain.Category{}

	err := scanCategory(r.db.QueryRow(query, name), category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		r.log.Errorf("Repository: Failed to get category by name '%s': %v", name, err)
		return nil, fmt.Errorf("could not get category by name: %w", err)
	}

	return category, nil
}

func (r *postgresCategoryRepository) UpdateCategory(category *domain.Category) (*domain.Category, error) {
	query := `
        UPDATE categories
        SET name = $2, description = $3
        WHERE id = $1
        RETURNING created_at`

	description := sql.NullString{String: category.Description, Valid: category.Description != ""}

	err := r.db.QueryRow(query, category.ID, category.Name, description).Scan(&category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.log.Warnf("Repository: Category rename collides with existing name '%s'", category.Name)
			return nil, domain.Errorf(domain.ECONFLICT, "Category with this name already exists")
		}
		r.log.Errorf("Repository: Failed to update category ID %s: %v", category.ID, err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}

	r.log.Infof("Repository: Category %s updated successfully", category.ID)
	return category, nil
}

func (r *postgresCategoryRepository) DeleteCategory(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return domain.Errorf(domain.EINVALIDSTATE, "Cannot delete category with products attached")
		}
		r.log.Errorf("Repository: Failed to delete category ID %s: %v", id, err)
		return fmt.Errorf("could not delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not check category delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrCategoryNotFound
	}

	r.log.Infof("Repository: Category %s deleted", id)
	return nil
}

func (r *postgresCategoryRepository) ListCategories(limit, offset int) ([]domain.Category, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		r.log.Errorf("Repository: Failed to count categories: %v", err)
		return nil, 0, fmt.Errorf("could not count categories: %w", err)
	}

	query := `
        SELECT id, name, description, created_at
        FROM categories
        ORDER BY name ASC
        LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		r.log.Errorf("Repository: Failed to list categories: %v", err)
		return nil, 0, fmt.Errorf("could not list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := scanCategory(rows, &category); err != nil {
			r.log.Errorf("Repository: Failed to scan category row: %v", err)
			return nil, 0, fmt.Errorf("error scanning category data: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, total, nil
}

func (r *postgresCategoryRepository) CountProductsInCategory(id uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&count)
	if err != nil {
		r.log.Errorf("Repository: Failed to count products in category %s: %v", id, err)
		return 0, fmt.Errorf("could not count products in category: %w", err)
	}
	return count, nil
}
