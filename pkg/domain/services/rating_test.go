package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procure/pkg/domain/entities"
)

func TestRatingAverage(t *testing.T) {
	tests := []struct {
		name     string
		reviews  []*entities.VendorReview
		expected string
	}{
		{"no_reviews", nil, "0"},
		{"single_review", []*entities.VendorReview{review(4, 5, 3)}, "4"},
		{"thirds_round_half_up", []*entities.VendorReview{review(5, 5, 4), review(5, 5, 5)}, "4.83"},
		{"two_decimals", []*entities.VendorReview{review(1, 2, 2)}, "1.67"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RatingAverage(tt.reviews)
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("RatingAverage() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestValidateRatings(t *testing.T) {
	if err := ValidateRatings(1, 5, 3); err != nil {
		t.Fatalf("Expected valid ratings, got %v", err)
	}
	err := ValidateRatings(0, 6, 3)
	var verr *entities.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if !verr.Has("rating_quality") || !verr.Has("rating_timeliness") || verr.Has("rating_communication") {
		t.Errorf("Unexpected fields %v", verr.Fields)
	}
}

func review(q, tm, c int) *entities.VendorReview {
	return &entities.VendorReview{Quality: q, Timeliness: tm, Communication: c}
}
