package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID                 uuid.UUID     `json:"id"`
	ProductID          uuid.UUID     `json:"product_id"`
	UserID             uuid.UUID     `json:"user_id"`
	Rating             int           `json:"rating"`
	Title              string        `json:"title,omitempty"`
	Comment            string        `json:"comment,omitempty"`
	IsVerifiedPurchase bool          `json:"is_verified_purchase"`
	Reviewer           *ReviewerInfo `json:"user,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type ReviewerInfo struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
}

// ReviewPatch holds the fields a reviewer may change. Nil means leave
// untouched.
type ReviewPatch struct {
	Rating  *int
	Title   *string
	Comment *string
}

type RatingSummary struct {
	ProductID     uuid.UUID   `json:"product_id"`
	AverageRating *float64    `json:"average_rating"`
	TotalReviews  int         `json:"total_reviews"`
	Distribution  map[int]int `json:"rating_distribution"`
}

type ReviewRepository interface {
	CreateReview(review *Review) (*Review, error)
	GetReviewByID(id uuid.UUID) (*Review, error)
	HasUserReviewed(userID, productID uuid.UUID) (bool, error)
	UpdateReview(id uuid.UUID, patch ReviewPatch) (*Review, error)
	DeleteReview(id uuid.UUID) error
	ListProductReviews(productID uuid.UUID, ratingFilter, limit, offset int) ([]Review, int, error)
	ListUserReviews(userID uuid.UUID, limit, offset int) ([]Review, error)
	RatingDistribution(productID uuid.UUID) (map[int]int, error)
	// HasVerifiedPurchase reports whether the user has an order
	// containing the product in a paid-or-later status.
	HasVerifiedPurchase(userID, productID uuid.UUID) (bool, error)
	// RefreshProductRating recomputes the product's average rating
	// and review count from its reviews.
	RefreshProductRating(productID uuid.UUID) error
}
