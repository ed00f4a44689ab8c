package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/infrastructure/events"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
	testhelpers "github.com/vsinha/procure/pkg/infrastructure/testing"
)

func init() {
	PasswordCost = 4
}

type harness struct {
	*testhelpers.Fixture
	ctx      context.Context
	clock    *testhelpers.Clock
	notifier *notifications.RecordingNotifier
	events   *events.InMemoryEventStore

	onboarding *VendorOnboardingService
	rating     *VendorRatingService
	rfqs       *RFQService
	contracts  *ContractService
	orders     *PurchaseOrderService
	invoices   *InvoiceService
}

func newHarness(t *testing.T, opts ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		Fixture:  testhelpers.BuildProcurementTestData(),
		ctx:      context.Background(),
		clock:    testhelpers.NewClock(),
		notifier: notifications.NewRecordingNotifier(),
		events:   events.NewInMemoryEventStore(nil),
	}
	t.Cleanup(func() { _ = h.events.Close() })

	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	deps := Deps{
		Store:    h.Store,
		Events:   h.events,
		Notifier: h.notifier,
		Logger:   zaptest.NewLogger(t),
		Clock:    h.clock.Now,
		Options:  options,
	}
	h.onboarding = NewVendorOnboardingService(deps)
	h.rating = NewVendorRatingService(deps)
	h.rfqs = NewRFQService(deps)
	h.contracts = NewContractService(deps)
	h.orders = NewPurchaseOrderService(deps)
	h.invoices = NewInvoiceService(deps)
	return h
}

func (h *harness) eventTypes(t *testing.T) []string {
	t.Helper()
	all, err := h.events.ReadAllEvents(h.ctx, 0)
	require.NoError(t, err)
	types := make([]string, 0, len(all))
	for _, ev := range all {
		types = append(types, ev.Type())
	}
	return types
}

// publishedRFQ creates and publishes an RFQ with Acme and Globex invited.
func (h *harness) publishedRFQ(t *testing.T, weights map[string]float64) *entities.RFQ {
	t.Helper()
	rfq, err := h.rfqs.CreateRFQ(h.ctx, h.Officer, dto.CreateRFQInput{
		Title:   "Office Chairs 2025",
		Weights: weights,
		Budget:  testhelpers.Money("50000"),
	})
	require.NoError(t, err)
	_, err = h.rfqs.InviteVendors(h.ctx, h.Officer, rfq.ID, []string{h.Acme.ID, h.Globex.ID})
	require.NoError(t, err)
	rfq, err = h.rfqs.PublishRFQ(h.ctx, h.Officer, rfq.ID)
	require.NoError(t, err)
	return rfq
}

func (h *harness) respond(t *testing.T, rfqID string, vendor *entities.Vendor, user *entities.User, amount string) *entities.RFQResponse {
	t.Helper()
	resp, err := h.rfqs.SubmitResponse(h.ctx, user, rfqID, dto.SubmitResponseInput{
		VendorID:     vendor.ID,
		QuotedAmount: testhelpers.Money(amount),
	})
	require.NoError(t, err)
	return resp
}

// awardedRFQ runs an RFQ through award with Acme winning.
func (h *harness) awardedRFQ(t *testing.T) (*entities.RFQ, *entities.RFQResponse) {
	t.Helper()
	rfq := h.publishedRFQ(t, nil)
	winner := h.respond(t, rfq.ID, h.Acme, h.AcmeUser, "12000")
	h.respond(t, rfq.ID, h.Globex, h.GlobexUser, "15000")
	award, err := h.rfqs.AwardContract(h.ctx, h.Officer, rfq.ID, winner.ID)
	require.NoError(t, err)
	return award.RFQ, award.Winner
}

// approvedInvoice submits and approves an Acme invoice for amount.
func (h *harness) approvedInvoice(t *testing.T, number, amount string) *entities.Invoice {
	t.Helper()
	inv, err := h.invoices.SubmitInvoice(h.ctx, h.AcmeUser, dto.SubmitInvoiceInput{
		VendorID:    h.Acme.ID,
		Number:      number,
		Amount:      testhelpers.Money(amount),
		InvoiceDate: testhelpers.Date(2025, 3, 1),
		DueDate:     testhelpers.Date(2025, 3, 31),
	})
	require.NoError(t, err)
	inv, err = h.invoices.ApproveInvoice(h.ctx, h.Finance, inv.ID)
	require.NoError(t, err)
	return inv
}
