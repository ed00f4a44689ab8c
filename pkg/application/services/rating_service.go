package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
	domainsvc "github.com/vsinha/procure/pkg/domain/services"
	"github.com/vsinha/procure/pkg/infrastructure/events"
)

// VendorRatingService records staff reviews and keeps vendor averages current.
type VendorRatingService struct {
	workflow
}

// NewVendorRatingService creates the vendor review and ranking service.
func NewVendorRatingService(deps Deps) *VendorRatingService {
	return &VendorRatingService{workflow: newWorkflow(deps, "rating")}
}

// AddReview stores a review and recomputes the vendor's rating average in the
// same transaction.
func (s *VendorRatingService) AddReview(ctx context.Context, actor *entities.User, vendorID string, input dto.ReviewInput) (*entities.VendorReview, *entities.Vendor, error) {
	if err := authorize(actor, entities.PermViewVendors); err != nil {
		return nil, nil, err
	}
	if err := domainsvc.ValidateRatings(input.Quality, input.Timeliness, input.Communication); err != nil {
		return nil, nil, err
	}

	var (
		review *entities.VendorReview
		vendor *entities.Vendor
	)
	err := s.run(ctx, "rating.add_review", actor, func(tx repositories.Store, fx *effects) error {
		v, err := tx.Vendors().GetVendor(ctx, vendorID)
		if err != nil {
			return err
		}
		review = &entities.VendorReview{
			ID:            entities.NewID(),
			VendorID:      vendorID,
			ReviewerID:    actor.ID,
			Quality:       input.Quality,
			Timeliness:    input.Timeliness,
			Communication: input.Communication,
			Comments:      input.Comments,
			CreatedAt:     s.now(),
		}
		if err := tx.Reviews().SaveReview(ctx, review); err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}

		reviews, err := tx.Reviews().ListReviewsByVendor(ctx, vendorID)
		if err != nil {
			return err
		}
		v.RatingAverage = domainsvc.RatingAverage(reviews)
		v.UpdatedAt = s.now()
		if err := tx.Vendors().SaveVendor(ctx, v); err != nil {
			return fmt.Errorf("failed to save vendor: %w", err)
		}
		vendor = v
		fx.record(events.VendorReviewedEvent, "vendor", vendorID, review)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("vendor reviewed",
		zap.String("vendor", vendorID),
		zap.String("rating_average", vendor.RatingAverage.StringFixed(2)))
	return review, vendor, nil
}

// Rankings lists active vendors by rating average, best first, ties broken by
// company name. An empty categoryID ranks every category.
func (s *VendorRatingService) Rankings(ctx context.Context, categoryID string) ([]dto.VendorRanking, error) {
	var rankings []dto.VendorRanking
	err := s.read(ctx, "rating.rankings", func(ctx context.Context) error {
		vendors, err := s.store.Vendors().ListVendors(ctx, repositories.VendorFilter{
			Status:     entities.VendorActive,
			CategoryID: categoryID,
		})
		if err != nil {
			return err
		}
		sort.SliceStable(vendors, func(i, j int) bool {
			if c := vendors[i].RatingAverage.Cmp(vendors[j].RatingAverage); c != 0 {
				return c > 0
			}
			return strings.ToLower(vendors[i].CompanyName) < strings.ToLower(vendors[j].CompanyName)
		})

		rankings = make([]dto.VendorRanking, 0, len(vendors))
		for i, v := range vendors {
			reviews, err := s.store.Reviews().ListReviewsByVendor(ctx, v.ID)
			if err != nil {
				return err
			}
			rankings = append(rankings, dto.VendorRanking{
				Rank:          i + 1,
				VendorID:      v.ID,
				CompanyName:   v.CompanyName,
				CategoryID:    v.CategoryID,
				RatingAverage: v.RatingAverage,
				Reviews:       len(reviews),
			})
		}
		return nil
	})
	return rankings, err
}
