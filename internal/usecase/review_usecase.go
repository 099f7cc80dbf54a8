package usecase

import (
	"fmt"
	"math"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreateReviewInput struct {
	ProductID uuid.UUID
	Rating    int
	Title     string
	Comment   string
}

type ReviewUseCase interface {
	CreateReview(userID uuid.UUID, input CreateReviewInput) (*domain.Review, error)
	GetReviewByID(id uuid.UUID) (*domain.Review, error)
	UpdateReview(id, userID uuid.UUID, patch domain.ReviewPatch) (*domain.Review, error)
	DeleteReview(id, userID uuid.UUID) error
	ListProductReviews(productID uuid.UUID, ratingFilter, limit, offset int) ([]domain.Review, int, *domain.RatingSummary, error)
	ListUserReviews(userID uuid.UUID, limit, offset int) ([]domain.Review, error)
	RatingSummary(productID uuid.UUID) (*domain.RatingSummary, error)
}

type reviewUseCase struct {
	reviewRepo  domain.ReviewRepository
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewReviewUseCase(reviewRepo domain.ReviewRepository, productRepo domain.ProductRepository, logger *logrus.Logger) ReviewUseCase {
	return &reviewUseCase{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		log:         logger,
	}
}

func (uc *reviewUseCase) CreateReview(userID uuid.UUID, input CreateReviewInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		uc.log.Warnf("Use Case: Review with invalid rating %d from user %s", input.Rating, userID)
		return nil, domain.Errorf(domain.EINVALID, "Rating must be between 1 and 5")
	}

	if _, err := uc.productRepo.GetProductByID(input.ProductID); err != nil {
		uc.log.Warnf("Use Case: Product %s not found for review: %v", input.ProductID, err)
		return nil, err
	}

	reviewed, err := uc.reviewRepo.HasUserReviewed(userID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		uc.log.Warnf("Use Case: User %s already reviewed product %s", userID, input.ProductID)
		return nil, domain.Errorf(domain.ECONFLICT, "You have already reviewed this product. Use update instead.")
	}

	verified, err := uc.reviewRepo.HasVerifiedPurchase(userID, input.ProductID)
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Creating review for product %s by user %s (verified: %t)",
		input.ProductID, userID, verified)
	created, err := uc.reviewRepo.CreateReview(&domain.Review{
		ProductID:          input.ProductID,
		UserID:             userID,
		Rating:             input.Rating,
		Title:              input.Title,
		Comment:            input.Comment,
		IsVerifiedPurchase: verified,
	})
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to create review: %v", err)
		return nil, err
	}

	if err := uc.reviewRepo.RefreshProductRating(input.ProductID); err != nil {
		uc.log.Errorf("Use Case: Failed to refresh rating for product %s: %v", input.ProductID, err)
		return nil, fmt.Errorf("could not refresh product rating: %w", err)
	}

	return created, nil
}

func (uc *reviewUseCase) GetReviewByID(id uuid.UUID) (*domain.Review, error) {
	review, err := uc.reviewRepo.GetReviewByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get review %s: %v", id, err)
		return nil, err
	}
	return review, nil
}

func (uc *reviewUseCase) UpdateReview(id, userID uuid.UUID, patch domain.ReviewPatch) (*domain.Review, error) {
	review, err := uc.reviewRepo.GetReviewByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Review %s not found for update: %v", id, err)
		return nil, err
	}
	if review.UserID != userID {
		uc.log.Warnf("Use Case: User %s attempted to update review %s owned by %s", userID, id, review.UserID)
		return nil, domain.Errorf(domain.EFORBIDDEN, "You can only update your own reviews")
	}
	if patch.Rating != nil && (*patch.Rating < 1 || *patch.Rating > 5) {
		return nil, domain.Errorf(domain.EINVALID, "Rating must be between 1 and 5")
	}

	uc.log.Infof("Use Case: Updating review %s", id)
	updated, err := uc.reviewRepo.UpdateReview(id, patch)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update review %s: %v", id, err)
		return nil, err
	}

	if err := uc.reviewRepo.RefreshProductRating(review.ProductID); err != nil {
		uc.log.Errorf("Use Case: Failed to refresh rating for product %s: %v", review.ProductID, err)
		return nil, fmt.Errorf("could not refresh product rating: %w", err)
	}

	return updated, nil
}

func (uc *reviewUseCase) DeleteReview(id, userID uuid.UUID) error {
	review, err := uc.reviewRepo.GetReviewByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Review %s not found for delete: %v", id, err)
		return err
	}
	if review.UserID != userID {
		uc.log.Warnf("Use Case: User %s attempted to delete review %s owned by %s", userID, id, review.UserID)
		return domain.Errorf(domain.EFORBIDDEN, "You can only delete your own reviews")
	}

	uc.log.Infof("Use Case: Deleting review %s", id)
	if err := uc.reviewRepo.DeleteReview(id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete review %s: %v", id, err)
		return err
	}

	if err := uc.reviewRepo.RefreshProductRating(review.ProductID); err != nil {
		uc.log.Errorf("Use Case: Failed to refresh rating for product %s: %v", review.ProductID, err)
		return fmt.Errorf("could not refresh product rating: %w", err)
	}

	return nil
}

func (uc *reviewUseCase) ListProductReviews(productID uuid.UUID, ratingFilter, limit, offset int) ([]domain.Review, int, *domain.RatingSummary, error) {
	if ratingFilter != 0 && (ratingFilter < 1 || ratingFilter > 5) {
		return nil, 0, nil, domain.Errorf(domain.EINVALID, "Rating filter must be between 1 and 5")
	}

	reviews, total, err := uc.reviewRepo.ListProductReviews(productID, ratingFilter, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list reviews for product %s: %v", productID, err)
		return nil, 0, nil, err
	}

	summary, err := uc.RatingSummary(productID)
	if err != nil {
		return nil, 0, nil, err
	}

	return reviews, total, summary, nil
}

func (uc *reviewUseCase) ListUserReviews(userID uuid.UUID, limit, offset int) ([]domain.Review, error) {
	reviews, err := uc.reviewRepo.ListUserReviews(userID, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list reviews for user %s: %v", userID, err)
		return nil, err
	}
	return reviews, nil
}

// RatingSummary derives the average from the distribution so the
// summary never disagrees with its own counts.
func (uc *reviewUseCase) RatingSummary(productID uuid.UUID) (*domain.RatingSummary, error) {
	distribution, err := uc.reviewRepo.RatingDistribution(productID)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to get rating distribution for product %s: %v", productID, err)
		return nil, err
	}

	total := 0
	weighted := 0
	for rating, count := range distribution {
		total += count
		weighted += rating * count
	}

	summary := &domain.RatingSummary{
		ProductID:    productID,
		TotalReviews: total,
		Distribution: distribution,
	}
	if total > 0 {
		avg := math.Round(float64(weighted)/float64(total)*100) / 100
		summary.AverageRating = &avg
	}

	return summary, nil
}
