package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/infrastructure/events"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
	testhelpers "github.com/vsinha/procure/pkg/infrastructure/testing"
)

func chairItems() []dto.POItemInput {
	return []dto.POItemInput{
		{Name: "Task chair", Quantity: 10, UnitPrice: testhelpers.Money("149.99"), UnitOfMeasure: "EA"},
		{Name: "Footrest", Quantity: 4, UnitPrice: testhelpers.Money("25.50")},
	}
}

func (h *harness) draftPO(t *testing.T) *entities.PurchaseOrder {
	t.Helper()
	po, err := h.orders.CreatePO(h.ctx, h.Officer, dto.CreatePOInput{
		VendorID: h.Acme.ID,
		Items:    chairItems(),
	})
	require.NoError(t, err)
	return po
}

func TestCreatePO(t *testing.T) {
	h := newHarness(t)

	po := h.draftPO(t)
	assert.Equal(t, "PO-2025-00001", po.Number)
	assert.Equal(t, entities.PODraft, po.Status)
	assert.Equal(t, testhelpers.Date(2025, 3, 3), po.IssuedDate)
	assert.Equal(t, "1601.90", po.TotalAmount.StringFixed(2))
	assert.Equal(t, "1499.90", po.Items[0].LineTotal.StringFixed(2))

	next := h.draftPO(t)
	assert.Equal(t, "PO-2025-00002", next.Number)
}

func TestCreatePO_Validation(t *testing.T) {
	h := newHarness(t)

	testCases := []struct {
		name  string
		input dto.CreatePOInput
		field string
	}{
		{"no items", dto.CreatePOInput{VendorID: h.Acme.ID}, "items"},
		{"zero quantity", dto.CreatePOInput{VendorID: h.Acme.ID, Items: []dto.POItemInput{{Name: "x", Quantity: 0}}}, "items.0"},
		{"negative price", dto.CreatePOInput{VendorID: h.Acme.ID, Items: []dto.POItemInput{
			{Name: "x", Quantity: 1, UnitPrice: testhelpers.Money("1")},
			{Name: "y", Quantity: 1, UnitPrice: testhelpers.Money("-1")},
		}}, "items.1"},
		{"missing vendor", dto.CreatePOInput{Items: chairItems()}, "vendor_id"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.orders.CreatePO(h.ctx, h.Officer, tc.input)
			var verr *entities.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has(tc.field), "expected %s in %v", tc.field, verr.Fields)
		})
	}
}

func TestCreatePO_ContractMustMatchVendor(t *testing.T) {
	h := newHarness(t)
	contract := h.draftContract(t)

	_, err := h.orders.CreatePO(h.ctx, h.Officer, dto.CreatePOInput{
		VendorID:   h.Globex.ID,
		ContractID: contract.ID,
		Items:      chairItems(),
	})
	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("contract_id"))

	po, err := h.orders.CreatePO(h.ctx, h.Officer, dto.CreatePOInput{
		VendorID:   h.Acme.ID,
		ContractID: contract.ID,
		Items:      chairItems(),
	})
	require.NoError(t, err)
	assert.Equal(t, contract.ID, po.ContractID)
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	h := newHarness(t)
	po := h.draftPO(t)

	po, err := h.orders.ApprovePO(h.ctx, h.Officer, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.POSent, po.Status)
	sent := h.notifier.ByTemplate(notifications.PurchaseOrderSent)
	require.Len(t, sent, 1)
	assert.Equal(t, []string{h.Acme.ContactEmail}, sent[0].To)

	_, err = h.orders.AcknowledgePO(h.ctx, h.GlobexUser, po.ID)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	po, err = h.orders.AcknowledgePO(h.ctx, h.AcmeUser, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.POAcknowledged, po.Status)

	delivered := testhelpers.Date(2025, 3, 10)
	po, err = h.orders.MarkDelivered(h.ctx, h.Officer, po.ID, &delivered)
	require.NoError(t, err)
	require.NotNil(t, po.ActualDeliveryDate)
	assert.Equal(t, delivered, *po.ActualDeliveryDate)

	_, err = h.orders.CancelPO(h.ctx, h.Officer, po.ID, "too late")
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)

	po, err = h.orders.CompletePO(h.ctx, h.Officer, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.POCompleted, po.Status)

	types := h.eventTypes(t)
	for _, want := range []string{
		events.POCreatedEvent, events.POApprovedEvent, events.POSentEvent,
		events.POAcknowledgedEvent, events.PODeliveredEvent, events.POCompletedEvent,
	} {
		assert.Contains(t, types, want)
	}
}

func TestMarkDelivered_DefaultsToToday(t *testing.T) {
	h := newHarness(t)
	po := h.draftPO(t)
	_, err := h.orders.ApprovePO(h.ctx, h.Officer, po.ID)
	require.NoError(t, err)

	po, err = h.orders.MarkDelivered(h.ctx, h.Officer, po.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, testhelpers.Date(2025, 3, 3), *po.ActualDeliveryDate)
}

func TestCancelPO(t *testing.T) {
	h := newHarness(t)
	po := h.draftPO(t)

	po, err := h.orders.CancelPO(h.ctx, h.Officer, po.ID, "budget cut")
	require.NoError(t, err)
	assert.Equal(t, entities.POCancelled, po.Status)
	assert.Equal(t, "budget cut", po.CancellationReason)
}

func TestPOItems_OnlyWhileDraft(t *testing.T) {
	h := newHarness(t)
	po := h.draftPO(t)

	po, err := h.orders.AddItem(h.ctx, h.Officer, po.ID, dto.POItemInput{
		Name: "Desk lamp", Quantity: 2, UnitPrice: testhelpers.Money("40"),
	})
	require.NoError(t, err)
	require.Len(t, po.Items, 3)
	assert.Equal(t, "1681.90", po.TotalAmount.StringFixed(2))

	po, err = h.orders.RemoveItem(h.ctx, h.Officer, po.ID, po.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, po.Items, 2)
	assert.Equal(t, "182.00", po.TotalAmount.StringFixed(2))

	_, err = h.orders.RemoveItem(h.ctx, h.Officer, po.ID, "missing")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	_, err = h.orders.ApprovePO(h.ctx, h.Officer, po.ID)
	require.NoError(t, err)

	_, err = h.orders.AddItem(h.ctx, h.Officer, po.ID, dto.POItemInput{
		Name: "Late addition", Quantity: 1, UnitPrice: testhelpers.Money("1"),
	})
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)
}
