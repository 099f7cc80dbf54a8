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

type postgresReviewRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresReviewRepository(db *sql.DB, logger *logrus.Logger) domain.ReviewRepository {
	return &postgresReviewRepository{
		db:  db,
		log: logger,
	}
}

const reviewSelect = `
        SELECT r.id, r.product_id, r.user_id, r.rating, r.title, r.comment,
               r.is_verified_purchase, r.created_at, r.updated_at,
               u.id, u.full_name
        FROM reviews r
        JOIN users u ON u.id = r.user_id`

func scanReview(row interface{ Scan(...interface{}) error }, review *domain.Review) error {
	var (
		title    sql.NullString
		comment  sql.NullString
		reviewer domain.ReviewerInfo
	)

	err := row.Scan(
		&review.ID,
		&review.ProductID,
		&review.UserID,
		&review.Rating,
		&title,
		&comment,
		&review.IsVerifiedPurchase,
		&review.CreatedAt,
		&review.UpdatedAt,
		&reviewer.ID,
		&reviewer.FullName,
	)
	if err != nil {
		return err
	}

	review.Title = title.String
	review.Comment = comment.String
	review.Reviewer = &reviewer
	return nil
}

func (r *postgresReviewRepository) CreateReview(review *domain.Review) (*domain.Review, error) {
	query := `
        INSERT INTO reviews (id, product_id, user_id, rating, title, comment, is_verified_purchase)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`

	review.ID = uuid.New()
	title := sql.NullString{String: review.Title, Valid: review.Title != ""}
	comment := sql.NullString{String: review.Comment, Valid: review.Comment != ""}

	var insertedID uuid.UUID
	err := r.db.QueryRow(query,
		review.ID, review.ProductID, review.UserID, review.Rating,
		title, comment, review.IsVerifiedPurchase,
	).Scan(&insertedID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, domain.Errorf(domain.ECONFLICT, "You have already reviewed this product. Use update instead.")
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return nil, domain.ErrProductNotFound
		}
		r.log.Errorf("Repository: Failed to create review for product %s by user %s: %v", review.ProductID, review.UserID, err)
		return nil, fmt.Errorf("could not create review: %w", err)
	}

	r.log.Infof("Repository: Review %s created for product %s", insertedID, review.ProductID)
	return r.GetReviewByID(insertedID)
}

func (r *postgresReviewRepository) GetReviewByID(id uuid.UUID) (*domain.Review, error) {
	query := reviewSelect + ` WHERE r.id = $1`
	review := &domain.Review{}

	err := scanReview(r.db.QueryRow(query, id), review)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		r.log.Errorf("Repository: Failed to get review %s: %v", id, err)
		return nil, fmt.Errorf("could not get review: %w", err)
	}

	return review, nil
}

func (r *postgresReviewRepository) HasUserReviewed(userID, productID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`

	if err := r.db.QueryRow(query, userID, productID).Scan(&exists); err != nil {
		r.log.Errorf("Repository: Failed to check existing review for user %s product %s: %v", userID, productID, err)
		return false, fmt.Errorf("could not check existing review: %w", err)
	}

	return exists, nil
}

func (r *postgresReviewRepository) UpdateReview(id uuid.UUID, patch domain.ReviewPatch) (*domain.Review, error) {
	setClauses := []string{}
	args := []interface{}{}
	argCounter := 1

	if patch.Rating != nil {
		setClauses = append(setClauses, fmt.Sprintf("rating = $%d", argCounter))
		args = append(args, *patch.Rating)
		argCounter++
	}
	if patch.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argCounter))
		args = append(args, sql.NullString{String: *patch.Title, Valid: *patch.Title != ""})
		argCounter++
	}
	if patch.Comment != nil {
		setClauses = append(setClauses, fmt.Sprintf("comment = $%d", argCounter))
		args = append(args, sql.NullString{String: *patch.Comment, Valid: *patch.Comment != ""})
		argCounter++
	}

	if len(setClauses) == 0 {
		return r.GetReviewByID(id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE reviews SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argCounter)
	args = append(args, id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to update review %s: %v", id, err)
		return nil, fmt.Errorf("could not update review: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not check review update result: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrReviewNotFound
	}

	return r.GetReviewByID(id)
}

func (r *postgresReviewRepository) DeleteReview(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete review %s: %v", id, err)
		return fmt.Errorf("could not delete review: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not check review deletion result: %w", err)
	}
	if affected == 0 {
		return domain.ErrReviewNotFound
	}

	r.log.Infof("Repository: Review %s deleted", id)
	return nil
}

func (r *postgresReviewRepository) ListProductReviews(productID uuid.UUID, ratingFilter, limit, offset int) ([]domain.Review, int, error) {
	countQuery := `SELECT COUNT(*) FROM reviews WHERE product_id = $1`
	listQuery := reviewSelect + ` WHERE r.product_id = $1`
	countArgs := []interface{}{productID}
	listArgs := []interface{}{productID}

	if ratingFilter > 0 {
		countQuery += ` AND rating = $2`
		listQuery += ` AND r.rating = $2`
		countArgs = append(countArgs, ratingFilter)
		listArgs = append(listArgs, ratingFilter)
	}

	var total int
	if err := r.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		r.log.Errorf("Repository: Failed to count reviews for product %s: %v", productID, err)
		return nil, 0, fmt.Errorf("could not count reviews: %w", err)
	}

	listQuery += fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", len(listArgs)+1, len(listArgs)+2)
	listArgs = append(listArgs, limit, offset)

	reviews, err := r.queryReviews(listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *postgresReviewRepository) ListUserReviews(userID uuid.UUID, limit, offset int) ([]domain.Review, error) {
	query := reviewSelect + ` WHERE r.user_id = $1 ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`
	return r.queryReviews(query, userID, limit, offset)
}

func (r *postgresReviewRepository) queryReviews(query string, args ...interface{}) ([]domain.Review, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to query reviews: %v", err)
		return nil, fmt.Errorf("could not retrieve reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var review domain.Review
		if err := scanReview(rows, &review); err != nil {
			r.log.Errorf("Repository: Failed to scan review row: %v", err)
			return nil, fmt.Errorf("error scanning review data: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

func (r *postgresReviewRepository) RatingDistribution(productID uuid.UUID) (map[int]int, error) {
	query := `
        SELECT rating, COUNT(*)
        FROM reviews
        WHERE product_id = $1
        GROUP BY rating`

	rows, err := r.db.Query(query, productID)
	if err != nil {
		r.log.Errorf("Repository: Failed to query rating distribution for product %s: %v", productID, err)
		return nil, fmt.Errorf("could not retrieve rating distribution: %w", err)
	}
	defer rows.Close()

	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("error scanning rating distribution: %w", err)
		}
		distribution[rating] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating distribution: %w", err)
	}

	return distribution, nil
}

func (r *postgresReviewRepository) HasVerifiedPurchase(userID, productID uuid.UUID) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1
            FROM orders o
            JOIN order_items oi ON oi.order_id = o.id
            WHERE o.buyer_id = $1
              AND oi.product_id = $2
              AND o.status IN ('paid', 'processing', 'shipped', 'delivered')
        )`

	var exists bool
	if err := r.db.QueryRow(query, userID, productID).Scan(&exists); err != nil {
		r.log.Errorf("Repository: Failed to check verified purchase for user %s product %s: %v", userID, productID, err)
		return false, fmt.Errorf("could not check verified purchase: %w", err)
	}

	return exists, nil
}

// RefreshProductRating recomputes the denormalized rating columns from
// the reviews table in a single statement. With no reviews left the
// average goes back to NULL.
func (r *postgresReviewRepository) RefreshProductRating(productID uuid.UUID) error {
	query := `
        UPDATE products
        SET average_rating = sub.avg_rating,
            total_reviews = sub.review_count,
            updated_at = NOW()
        FROM (
            SELECT ROUND(AVG(rating)::numeric, 2)::float8 AS avg_rating, COUNT(*) AS review_count
            FROM reviews
            WHERE product_id = $1
        ) sub
        WHERE products.id = $1`

	if _, err := r.db.Exec(query, productID); err != nil {
		r.log.Errorf("Repository: Failed to refresh rating for product %s: %v", productID, err)
		return fmt.Errorf("could not refresh product rating: %w", err)
	}

	r.log.Debugf("Repository: Rating refreshed for product %s", productID)
	return nil
}
