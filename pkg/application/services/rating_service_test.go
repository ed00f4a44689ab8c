package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/infrastructure/events"
)

func TestAddReview_UpdatesAverage(t *testing.T) {
	h := newHarness(t)

	_, vendor, err := h.rating.AddReview(h.ctx, h.Officer, h.Acme.ID, dto.ReviewInput{Quality: 5, Timeliness: 5, Communication: 5})
	require.NoError(t, err)
	assert.Equal(t, "5.00", vendor.RatingAverage.StringFixed(2))

	review, vendor, err := h.rating.AddReview(h.ctx, h.Finance, h.Acme.ID, dto.ReviewInput{
		Quality: 3, Timeliness: 4, Communication: 5, Comments: "Slow invoicing",
	})
	require.NoError(t, err)
	assert.Equal(t, h.Finance.ID, review.ReviewerID)
	assert.Equal(t, "4.50", vendor.RatingAverage.StringFixed(2))

	stored, err := h.Store.Vendors().GetVendor(h.ctx, h.Acme.ID)
	require.NoError(t, err)
	assert.True(t, stored.RatingAverage.Equal(vendor.RatingAverage))
	assert.Contains(t, h.eventTypes(t), events.VendorReviewedEvent)
}

func TestAddReview_Guards(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.rating.AddReview(h.ctx, h.Officer, h.Acme.ID, dto.ReviewInput{Quality: 0, Timeliness: 6, Communication: 3})
	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("rating_quality"))
	assert.True(t, verr.Has("rating_timeliness"))

	_, _, err = h.rating.AddReview(h.ctx, h.AcmeUser, h.Globex.ID, dto.ReviewInput{Quality: 1, Timeliness: 1, Communication: 1})
	assert.ErrorIs(t, err, entities.ErrForbidden)

	_, _, err = h.rating.AddReview(h.ctx, h.Officer, "missing", dto.ReviewInput{Quality: 3, Timeliness: 3, Communication: 3})
	assert.ErrorIs(t, err, entities.ErrNotFound)

	reviews, err := h.Store.Reviews().ListReviewsByVendor(h.ctx, h.Acme.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestRankings(t *testing.T) {
	h := newHarness(t)
	add := func(vendorID string, q, tm, c int) {
		_, _, err := h.rating.AddReview(h.ctx, h.Officer, vendorID, dto.ReviewInput{Quality: q, Timeliness: tm, Communication: c})
		require.NoError(t, err)
	}
	add(h.Globex.ID, 4, 4, 4)
	add(h.Acme.ID, 5, 5, 5)
	add(h.Acme.ID, 3, 4, 5)

	rankings, err := h.rating.Rankings(h.ctx, "")
	require.NoError(t, err)
	require.Len(t, rankings, 2, "pending vendors are not ranked")

	assert.Equal(t, 1, rankings[0].Rank)
	assert.Equal(t, "Acme Supplies", rankings[0].CompanyName)
	assert.Equal(t, 2, rankings[0].Reviews)
	assert.Equal(t, "Globex Corporation", rankings[1].CompanyName)
	assert.Equal(t, "4.00", rankings[1].RatingAverage.StringFixed(2))

	none, err := h.rating.Rankings(h.ctx, h.Legacy.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRankings_TiesByName(t *testing.T) {
	h := newHarness(t)

	rankings, err := h.rating.Rankings(h.ctx, h.Office.ID)
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	assert.Equal(t, "Acme Supplies", rankings[0].CompanyName)
	assert.Equal(t, "Globex Corporation", rankings[1].CompanyName)
}
