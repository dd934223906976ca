// Package rating folds review scores into a user's running average.
package rating

import (
	"math"

	"lendlocal-backend/internal/domain"
)

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Average returns the one-decimal average of total over count, or 0 for no
// reviews.
func Average(total, count int) float64 {
	if count <= 0 {
		return 0
	}
	return Round1(float64(total) / float64(count))
}

// ApplyReview folds score into user and returns the new rating. The
// unrounded total is kept on the user so repeated rounding never drifts.
func ApplyReview(user *domain.User, score int) (float64, error) {
	if score < 1 || score > 5 {
		return user.Rating, domain.ErrInvalidRating
	}
	user.RatingTotal += score
	user.ReviewCount++
	user.Rating = Average(user.RatingTotal, user.ReviewCount)
	return user.Rating, nil
}
