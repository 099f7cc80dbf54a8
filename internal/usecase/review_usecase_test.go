package usecase

import (
	"errors"
	"testing"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewFixture(t *testing.T) (*fakeReviewRepo, *fakeProductRepo, ReviewUseCase) {
	t.Helper()
	reviews := newFakeReviewRepo()
	products := newFakeProductRepo()
	return reviews, products, NewReviewUseCase(reviews, products, testLogger())
}

func TestCreateReview(t *testing.T) {
	reviews, products, uc := newReviewFixture(t)

	product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
	userID := uuid.New()

	created, err := uc.CreateReview(userID, CreateReviewInput{
		ProductID: product.ID,
		Rating:    4,
		Title:     "Solid chair",
		Comment:   "Comfortable for long days.",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, created.Rating)
	assert.Equal(t, userID, created.UserID)
	assert.False(t, created.IsVerifiedPurchase)
	assert.Contains(t, reviews.refreshed, product.ID)
}

func TestCreateReviewMarksVerifiedPurchase(t *testing.T) {
	reviews, products, uc := newReviewFixture(t)

	product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
	userID := uuid.New()
	reviews.markPurchased(userID, product.ID)

	created, err := uc.CreateReview(userID, CreateReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	assert.True(t, created.IsVerifiedPurchase)
}

func TestCreateReviewRejectsInvalidRating(t *testing.T) {
	_, products, uc := newReviewFixture(t)

	product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})

	for _, rating := range []int{0, 6, -1} {
		_, err := uc.CreateReview(uuid.New(), CreateReviewInput{ProductID: product.ID, Rating: rating})
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		assert.Equal(t, "Rating must be between 1 and 5", domain.ErrorMessage(err))
	}
}

func TestCreateReviewRejectsMissingProduct(t *testing.T) {
	_, _, uc := newReviewFixture(t)

	_, err := uc.CreateReview(uuid.New(), CreateReviewInput{ProductID: uuid.New(), Rating: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCreateReviewRejectsSecondReview(t *testing.T) {
	_, products, uc := newReviewFixture(t)

	product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
	userID := uuid.New()

	_, err := uc.CreateReview(userID, CreateReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	_, err = uc.CreateReview(userID, CreateReviewInput{ProductID: product.ID, Rating: 2})
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Equal(t, "You have already reviewed this product. Use update instead.", domain.ErrorMessage(err))
}

func TestUpdateReviewOwnership(t *testing.T) {
	reviews, products, uc := newReviewFixture(t)

	product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
	userID := uuid.New()

	created, err := uc.CreateReview(userID, CreateReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)
	reviews.refreshed = nil

	newRating := 2
	updated, err := uc.UpdateReview(created.ID, userID, domain.ReviewPatch{Rating: &newRating})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	assert.Contains(t, reviews.refreshed, product.ID)

	_, err = uc.UpdateReview(created.ID, uuid.New(), domain.ReviewPatch{Rating: &newRating})
	require.Error(t, err)
	assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
	assert.Equal(t, "You can only update your own reviews", domain.ErrorMessage(err))
}

func TestUpdateReviewRejectsInvalidRating(t *testing.T) {
	_, products, uc := newReviewFixture(t)

	product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
	userID := uuid.New()

	created, err := uc.CreateReview(userID, CreateReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	bad := 9
	_, err = uc.UpdateReview(created.ID, userID, domain.ReviewPatch{Rating: &bad})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestDeleteReview(t *testing.T) {
	reviews, products, uc := newReviewFixture(t)

	product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
	userID := uuid.New()

	created, err := uc.CreateReview(userID, CreateReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	err = uc.DeleteReview(created.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, "You can only delete your own reviews", domain.ErrorMessage(err))

	reviews.refreshed = nil
	require.NoError(t, uc.DeleteReview(created.ID, userID))
	assert.Contains(t, reviews.refreshed, product.ID)

	_, err = uc.GetReviewByID(created.ID)
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
}

func TestRatingSummary(t *testing.T) {
	reviews, products, uc := newReviewFixture(t)

	product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
	for _, rating := range []int{5, 4, 3, 3} {
		reviews.seed(domain.Review{ProductID: product.ID, UserID: uuid.New(), Rating: rating})
	}

	summary, err := uc.RatingSummary(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalReviews)
	require.NotNil(t, summary.AverageRating)
	assert.InDelta(t, 3.75, *summary.AverageRating, 0.001)
	assert.Equal(t, 2, summary.Distribution[3])
	assert.Equal(t, 0, summary.Distribution[1])
}

func TestRatingSummaryEmptyProduct(t *testing.T) {
	_, products, uc := newReviewFixture(t)

	product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})

	summary, err := uc.RatingSummary(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalReviews)
	assert.Nil(t, summary.AverageRating)
}

func TestListProductReviews(t *testing.T) {
	reviews, products, uc := newReviewFixture(t)

	product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
	reviews.seed(domain.Review{ProductID: product.ID, UserID: uuid.New(), Rating: 5})
	reviews.seed(domain.Review{ProductID: product.ID, UserID: uuid.New(), Rating: 2})
	reviews.seed(domain.Review{ProductID: product.ID, UserID: uuid.New(), Rating: 5})

	listed, total, summary, err := uc.ListProductReviews(product.ID, 0, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, listed, 3)
	require.NotNil(t, summary)
	assert.Equal(t, 3, summary.TotalReviews)

	fives, total, _, err := uc.ListProductReviews(product.ID, 5, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, review := range fives {
		assert.Equal(t, 5, review.Rating)
	}
}

func TestListProductReviewsRejectsBadFilter(t *testing.T) {
	_, _, uc := newReviewFixture(t)

	_, _, _, err := uc.ListProductReviews(uuid.New(), 7, 20, 0)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, "Rating filter must be between 1 and 5", domain.ErrorMessage(err))
}

func TestListUserReviews(t *testing.T) {
	reviews, products, uc := newReviewFixture(t)

	chair := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
	lamp := products.seed(domain.Product{Name: "Reading Lamp", Price: 39.99, IsActive: true})
	userID := uuid.New()
	reviews.seed(domain.Review{ProductID: chair.ID, UserID: userID, Rating: 4})
	reviews.seed(domain.Review{ProductID: lamp.ID, UserID: userID, Rating: 5})
	reviews.seed(domain.Review{ProductID: chair.ID, UserID: uuid.New(), Rating: 1})

	mine, err := uc.ListUserReviews(userID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

// A failed rating refresh leaves the product's aggregates stale, so
// every review mutation surfaces it instead of reporting success.
func TestReviewMutationsSurfaceRatingRefreshFailure(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		reviews, products, uc := newReviewFixture(t)
		product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
		reviews.refreshErr = errors.New("pq: deadlock detected")

		created, err := uc.CreateReview(uuid.New(), CreateReviewInput{ProductID: product.ID, Rating: 4})

		require.Error(t, err)
		assert.Nil(t, created)
		assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
		// The review row itself already landed.
		assert.Len(t, reviews.reviews, 1)
	})

	t.Run("update", func(t *testing.T) {
		reviews, products, uc := newReviewFixture(t)
		product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
		userID := uuid.New()
		seeded := reviews.seed(domain.Review{ProductID: product.ID, UserID: userID, Rating: 3})
		reviews.refreshErr = errors.New("pq: deadlock detected")

		rating := 5
		updated, err := uc.UpdateReview(seeded.ID, userID, domain.ReviewPatch{Rating: &rating})

		require.Error(t, err)
		assert.Nil(t, updated)
		assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	})

	t.Run("delete", func(t *testing.T) {
		reviews, products, uc := newReviewFixture(t)
		product := products.seed(domain.Product{Name: "Desk Chair", Price: 149.50, IsActive: true})
		userID := uuid.New()
		seeded := reviews.seed(domain.Review{ProductID: product.ID, UserID: userID, Rating: 3})
		reviews.refreshErr = errors.New("pq: deadlock detected")

		err := uc.DeleteReview(seeded.ID, userID)

		require.Error(t, err)
		assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	})
}
