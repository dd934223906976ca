package rating

import (
	"testing"

	"lendlocal-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyReview(t *testing.T) {
	t.Run("Five four five yields 4.7", func(t *testing.T) {
		user := &domain.User{ID: "u1"}
		for _, score := range []int{5, 4, 5} {
			_, err := ApplyReview(user, score)
			require.NoError(t, err)
		}
		assert.Equal(t, 4.7, user.Rating)
		assert.Equal(t, 3, user.ReviewCount)
		assert.Equal(t, 14, user.RatingTotal)
	})

	t.Run("First review sets rating", func(t *testing.T) {
		user := &domain.User{}
		got, err := ApplyReview(user, 3)
		require.NoError(t, err)
		assert.Equal(t, 3.0, got)
	})

	t.Run("Rounding does not compound", func(t *testing.T) {
		user := &domain.User{}
		for _, score := range []int{5, 5, 4, 4, 4, 4} {
			_, err := ApplyReview(user, score)
			require.NoError(t, err)
		}
		// 26/6 = 4.333...
		assert.Equal(t, 4.3, user.Rating)
	})

	t.Run("Average of exact total not of rounded average", func(t *testing.T) {
		user := &domain.User{}
		compounded := 0.0
		for i, score := range []int{1, 1, 2, 1} {
			_, err := ApplyReview(user, score)
			require.NoError(t, err)
			compounded = Round1((compounded*float64(i) + float64(score)) / float64(i+1))
		}
		// 5/4 = 1.25; folding the rounded 1.3 back in gives 1.225.
		assert.Equal(t, 1.3, user.Rating)
		assert.Equal(t, 1.2, compounded)
	})

	t.Run("Out of range score leaves user unchanged", func(t *testing.T) {
		user := &domain.User{Rating: 4.0, ReviewCount: 1, RatingTotal: 4}
		for _, score := range []int{0, 6, -1} {
			_, err := ApplyReview(user, score)
			assert.ErrorIs(t, err, domain.ErrInvalidRating)
		}
		assert.Equal(t, 1, user.ReviewCount)
		assert.Equal(t, 4, user.RatingTotal)
	})
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(0, 0))
	assert.Equal(t, 4.5, Average(9, 2))
	assert.Equal(t, 3.7, Average(11, 3))
}
