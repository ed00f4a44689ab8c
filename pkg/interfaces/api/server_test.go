package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vsinha/procure/pkg/application/services"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
	testhelpers "github.com/vsinha/procure/pkg/infrastructure/testing"
)

func init() {
	services.PasswordCost = 4
}

type apiHarness struct {
	*testhelpers.Fixture
	server   *Server
	notifier *notifications.RecordingNotifier
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	fixture := testhelpers.BuildProcurementTestData()
	notifier := notifications.NewRecordingNotifier()
	svcs := services.New(services.Deps{
		Store:    fixture.Store,
		Notifier: notifier,
		Logger:   zaptest.NewLogger(t),
		Clock:    testhelpers.NewClock().Now,
	})
	return &apiHarness{
		Fixture:  fixture,
		server:   NewServer(svcs, fixture.Store.Users(), zaptest.NewLogger(t)),
		notifier: notifier,
	}
}

type object = map[string]interface{}

func (h *apiHarness) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(ActorHeader, userID)
	}
	rec := httptest.NewRecorder()
	h.server.ServeHTTP(rec, req)
	return rec
}

// expect asserts the status and decodes the body as an object.
func expect(t *testing.T, rec *httptest.ResponseRecorder, status int) object {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	var out object
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return out
}

func TestHealthz(t *testing.T) {
	h := newAPIHarness(t)
	body := expect(t, h.do(t, http.MethodGet, "/healthz", "", nil), http.StatusOK)
	assert.Equal(t, "ok", body["status"])
}

func TestVendorRegistration(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.do(t, http.MethodGet, "/vendor-registration/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []object
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "cat-office", categories[0]["id"])

	vendor := expect(t, h.do(t, http.MethodPost, "/vendor-registration", "", object{
		"company_name":   "Umbrella Logistics",
		"category_id":    "cat-office",
		"contact_name":   "Rita",
		"contact_email":  "rita@umbrella.test",
		"terms_accepted": true,
	}), http.StatusCreated)
	assert.Equal(t, "pending", vendor["status"])

	invalid := expect(t, h.do(t, http.MethodPost, "/vendor-registration", "", object{
		"company_name": "Acme Supplies",
		"category_id":  "cat-office",
	}), http.StatusUnprocessableEntity)
	fields, ok := invalid["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "company_name")
	assert.Contains(t, fields, "terms_accepted")
}

func TestAuthentication(t *testing.T) {
	h := newAPIHarness(t)

	expect(t, h.do(t, http.MethodGet, "/vendors", "", nil), http.StatusUnauthorized)
	expect(t, h.do(t, http.MethodGet, "/vendors", "user-ghost", nil), http.StatusUnauthorized)
	expect(t, h.do(t, http.MethodGet, "/vendors", h.AcmeUser.ID, nil), http.StatusForbidden)

	rec := h.do(t, http.MethodGet, "/vendors?status=active", h.Officer.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var vendors []object
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vendors))
	assert.Len(t, vendors, 2)
}

func TestErrorMapping(t *testing.T) {
	h := newAPIHarness(t)

	expect(t, h.do(t, http.MethodGet, "/vendors/missing", h.Officer.ID, nil), http.StatusNotFound)
	expect(t, h.do(t, http.MethodPost, "/vendors/"+h.Initech.ID+"/approve", h.Finance.ID, nil), http.StatusForbidden)
	expect(t, h.do(t, http.MethodPost, "/vendors/"+h.Acme.ID+"/approve", h.Officer.ID, nil), http.StatusConflict)
	expect(t, h.do(t, http.MethodGet, "/vendors/rankings", h.AcmeUser.ID, nil), http.StatusForbidden)
	expect(t, h.do(t, http.MethodGet, "/invoices/due-soon?days=soon", h.Finance.ID, nil), http.StatusBadRequest)

	req := httptest.NewRequest(http.MethodPost, "/rfqs", bytes.NewBufferString(`{"title": `))
	req.Header.Set(ActorHeader, h.Officer.ID)
	rec := httptest.NewRecorder()
	h.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveVendorOverHTTP(t *testing.T) {
	h := newAPIHarness(t)

	result := expect(t, h.do(t, http.MethodPost, "/vendors/"+h.Initech.ID+"/approve", h.Officer.ID, nil), http.StatusOK)
	assert.Equal(t, true, result["user_created"])
	vendor := result["vendor"].(map[string]interface{})
	assert.Equal(t, "active", vendor["status"])
	user := result["user"].(map[string]interface{})
	assert.NotEmpty(t, user["id"])
	assert.NotContains(t, user, "password_hash")
	assert.Len(t, h.notifier.ByTemplate(notifications.VendorApproved), 1)

	stored, err := h.Store.Users().GetUser(context.Background(), user["id"].(string))
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestUpdateVendorOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	path := "/vendors/" + h.Acme.ID

	vendor := expect(t, h.do(t, http.MethodPatch, path, h.AcmeUser.ID, object{
		"address": "2 Market Square",
	}), http.StatusOK)
	assert.Equal(t, "2 Market Square", vendor["address"])

	expect(t, h.do(t, http.MethodPatch, path, h.GlobexUser.ID, object{
		"address": "elsewhere",
	}), http.StatusForbidden)
}

func TestProcurementFlowOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	officer, finance := h.Officer.ID, h.Finance.ID

	rfq := expect(t, h.do(t, http.MethodPost, "/rfqs", officer, object{
		"title":  "Office Chairs 2025",
		"budget": "50000",
	}), http.StatusCreated)
	rfqPath := "/rfqs/" + rfq["id"].(string)

	expect(t, h.do(t, http.MethodPost, rfqPath+"/invitations", officer, object{
		"vendor_ids": []string{h.Acme.ID, h.Globex.ID},
	}), http.StatusOK)
	expect(t, h.do(t, http.MethodPost, rfqPath+"/publish", officer, nil), http.StatusOK)

	// Invited vendors may read the RFQ; an uninvited login may not.
	expect(t, h.do(t, http.MethodGet, rfqPath, h.AcmeUser.ID, nil), http.StatusOK)

	winner := expect(t, h.do(t, http.MethodPost, rfqPath+"/responses", h.AcmeUser.ID, object{
		"vendor_id":     h.Acme.ID,
		"quoted_amount": "12000",
	}), http.StatusCreated)
	expect(t, h.do(t, http.MethodPost, rfqPath+"/responses", h.GlobexUser.ID, object{
		"vendor_id":     h.Globex.ID,
		"quoted_amount": "15000",
	}), http.StatusCreated)
	expect(t, h.do(t, http.MethodPost, rfqPath+"/responses", h.AcmeUser.ID, object{
		"vendor_id":     h.Acme.ID,
		"quoted_amount": "11000",
	}), http.StatusConflict)

	award := expect(t, h.do(t, http.MethodPost, rfqPath+"/award", officer, object{
		"response_id": winner["id"],
	}), http.StatusOK)
	assert.Equal(t, "awarded", award["rfq"].(map[string]interface{})["status"])

	contract := expect(t, h.do(t, http.MethodPost, "/contracts", officer, object{
		"rfq_id":              rfq["id"],
		"winning_response_id": winner["id"],
		"start_date":          "2025-03-01T00:00:00Z",
		"end_date":            "2025-12-31T00:00:00Z",
	}), http.StatusCreated)
	assert.Equal(t, "CON-2025-0001", contract["contract_number"])
	expect(t, h.do(t, http.MethodGet, "/contracts/"+contract["id"].(string), h.AcmeUser.ID, nil), http.StatusOK)
	expect(t, h.do(t, http.MethodGet, "/contracts/"+contract["id"].(string), h.GlobexUser.ID, nil), http.StatusForbidden)

	po := expect(t, h.do(t, http.MethodPost, "/purchase-orders", officer, object{
		"vendor_id":   h.Acme.ID,
		"contract_id": contract["id"],
		"items": []object{
			{"item_name": "Task chair", "quantity": 10, "unit_price": "149.99"},
		},
	}), http.StatusCreated)
	assert.Equal(t, "PO-2025-00001", po["po_number"])
	assert.Equal(t, "1499.9", po["total_amount"])
	poPath := "/purchase-orders/" + po["id"].(string)
	sent := expect(t, h.do(t, http.MethodPost, poPath+"/approve", officer, nil), http.StatusOK)
	assert.Equal(t, "sent", sent["status"])
	expect(t, h.do(t, http.MethodPost, poPath+"/acknowledge", h.AcmeUser.ID, nil), http.StatusOK)

	invoice := expect(t, h.do(t, http.MethodPost, "/invoices", h.AcmeUser.ID, object{
		"vendor_id":         h.Acme.ID,
		"invoice_number":    "INV-1",
		"purchase_order_id": po["id"],
		"amount":            "1000",
		"invoice_date":      "2025-03-01T00:00:00Z",
		"due_date":          "2025-03-31T00:00:00Z",
	}), http.StatusCreated)
	invoicePath := "/invoices/" + invoice["id"].(string)

	expect(t, h.do(t, http.MethodPost, invoicePath+"/payments", finance, object{"amount": "100"}), http.StatusConflict)
	expect(t, h.do(t, http.MethodPost, invoicePath+"/approve", finance, nil), http.StatusOK)

	payment := expect(t, h.do(t, http.MethodPost, invoicePath+"/payments", finance, object{"amount": "400"}), http.StatusCreated)
	assert.Equal(t, "PAY-2025-000001", payment["payment"].(map[string]interface{})["payment_reference"])
	expect(t, h.do(t, http.MethodPost, invoicePath+"/payments", finance, object{"amount": "700"}), http.StatusConflict)

	balance := expect(t, h.do(t, http.MethodGet, invoicePath+"/balance", h.AcmeUser.ID, nil), http.StatusOK)
	assert.Equal(t, "600", balance["remaining"])

	paid := expect(t, h.do(t, http.MethodPost, invoicePath+"/payments", finance, object{"amount": "600", "method": "wire"}), http.StatusCreated)
	assert.Equal(t, "paid", paid["invoice"].(map[string]interface{})["status"])
}
