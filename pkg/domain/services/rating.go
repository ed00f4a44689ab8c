package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procure/pkg/domain/entities"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRatings checks each dimension lies within 1..5.
func ValidateRatings(quality, timeliness, communication int) error {
	verr := entities.NewValidationError()
	for field, v := range map[string]int{
		"rating_quality":       quality,
		"rating_timeliness":    timeliness,
		"rating_communication": communication,
	} {
		if v < MinRating || v > MaxRating {
			verr.Add(field, fmt.Sprintf("must be between %d and %d", MinRating, MaxRating))
		}
	}
	return verr.OrNil()
}

// ReviewScore is the mean of a review's three dimensions.
func ReviewScore(r *entities.VendorReview) decimal.Decimal {
	sum := decimal.NewFromInt(int64(r.Quality + r.Timeliness + r.Communication))
	return sum.Div(decimal.NewFromInt(3))
}

// RatingAverage is the mean review score rounded half-up to 2 decimals, 0 without reviews.
func RatingAverage(reviews []*entities.VendorReview) decimal.Decimal {
	if len(reviews) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, r := range reviews {
		total = total.Add(ReviewScore(r))
	}
	return total.Div(decimal.NewFromInt(int64(len(reviews)))).Round(2)
}
