package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
	"github.com/vsinha/procure/pkg/infrastructure/events"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
)

func validRegistration() dto.VendorRegistration {
	return dto.VendorRegistration{
		CompanyName:   "Umbrella Logistics",
		CategoryID:    "cat-office",
		ContactName:   "Rita Umbrella",
		ContactEmail:  "rita@umbrella.test",
		ContactPhone:  "+1 555 0100",
		TaxID:         "UMB-42",
		TermsAccepted: true,
	}
}

func TestRegisterVendor_CreatesPendingVendorAndNotifies(t *testing.T) {
	h := newHarness(t)

	vendor, err := h.onboarding.RegisterVendor(h.ctx, validRegistration())
	require.NoError(t, err)

	assert.Equal(t, entities.VendorPending, vendor.Status)
	assert.Equal(t, "umbrella-logistics", vendor.Slug)
	assert.Empty(t, vendor.UserID)

	stored, err := h.Store.Vendors().GetVendor(h.ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Umbrella Logistics", stored.CompanyName)

	received := h.notifier.ByTemplate(notifications.VendorRegistrationReceived)
	require.Len(t, received, 1)
	assert.Equal(t, []string{"rita@umbrella.test"}, received[0].To)

	admin := h.notifier.ByTemplate(notifications.VendorRegistrationAdmin)
	require.Len(t, admin, 1)
	assert.Equal(t, []string{h.Admin.Email}, admin[0].To)

	assert.Contains(t, h.eventTypes(t), events.VendorSelfRegisteredEvent)
}

func TestRegisterVendor_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*dto.VendorRegistration)
		field  string
	}{
		{"missing company", func(r *dto.VendorRegistration) { r.CompanyName = "" }, "company_name"},
		{"company too long", func(r *dto.VendorRegistration) { r.CompanyName = strings.Repeat("x", 256) }, "company_name"},
		{"duplicate company", func(r *dto.VendorRegistration) { r.CompanyName = "ACME SUPPLIES" }, "company_name"},
		{"missing category", func(r *dto.VendorRegistration) { r.CategoryID = "" }, "category_id"},
		{"unknown category", func(r *dto.VendorRegistration) { r.CategoryID = "cat-missing" }, "category_id"},
		{"inactive category", func(r *dto.VendorRegistration) { r.CategoryID = "cat-legacy" }, "category_id"},
		{"missing contact", func(r *dto.VendorRegistration) { r.ContactName = " " }, "contact_name"},
		{"invalid email", func(r *dto.VendorRegistration) { r.ContactEmail = "not-an-email" }, "contact_email"},
		{"duplicate email", func(r *dto.VendorRegistration) { r.ContactEmail = "alice@acme.test" }, "contact_email"},
		{"phone too long", func(r *dto.VendorRegistration) { r.ContactPhone = strings.Repeat("1", 21) }, "contact_phone"},
		{"address too long", func(r *dto.VendorRegistration) { r.Address = strings.Repeat("a", 501) }, "address"},
		{"duplicate tax id", func(r *dto.VendorRegistration) { r.TaxID = "ACME-001" }, "tax_id"},
		{"description too long", func(r *dto.VendorRegistration) { r.CompanyDescription = strings.Repeat("d", 1001) }, "company_description"},
		{"terms not accepted", func(r *dto.VendorRegistration) { r.TermsAccepted = false }, "terms_accepted"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			reg := validRegistration()
			tc.modify(&reg)

			_, err := h.onboarding.RegisterVendor(h.ctx, reg)

			var verr *entities.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has(tc.field), "expected %s in %v", tc.field, verr.Fields)
			assert.Empty(t, h.notifier.Messages())
		})
	}
}

func TestRegisterVendor_NotificationFailureDoesNotRollBack(t *testing.T) {
	h := newHarness(t)
	h.notifier.FailWith(errors.New("smtp down"))

	vendor, err := h.onboarding.RegisterVendor(h.ctx, validRegistration())
	require.NoError(t, err)

	_, err = h.Store.Vendors().GetVendor(h.ctx, vendor.ID)
	assert.NoError(t, err)
}

func TestCreateVendor_UniqueSlug(t *testing.T) {
	h := newHarness(t)

	vendor, err := h.onboarding.CreateVendor(h.ctx, h.Officer, dto.CreateVendorInput{
		CompanyName:  "Acme Supplies!",
		CategoryID:   h.Office.ID,
		ContactName:  "Bob",
		ContactEmail: "bob@acme-two.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "acme-supplies-2", vendor.Slug)
	assert.Equal(t, entities.VendorPending, vendor.Status)
}

func TestApproveVendor_CreatesUser(t *testing.T) {
	h := newHarness(t)

	result, err := h.onboarding.ApproveVendor(h.ctx, h.Officer, h.Initech.ID)
	require.NoError(t, err)

	assert.Equal(t, entities.VendorActive, result.Vendor.Status)
	assert.True(t, result.UserCreated)
	assert.Equal(t, "Peter Gibbons", result.User.Name)
	assert.True(t, result.User.HasRole(entities.RoleVendor))
	assert.Equal(t, result.User.ID, result.Vendor.UserID)

	user, err := h.Store.Users().GetUserByEmail(h.ctx, "peter@initech.test")
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.Equal(t, bcrypt.ErrMismatchedHashAndPassword,
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("")))

	require.Len(t, h.notifier.ByTemplate(notifications.VendorApproved), 1)
}

func TestApproveVendor_LinksExistingUser(t *testing.T) {
	h := newHarness(t)
	existing := &entities.User{ID: "user-peter", Name: "Peter", Email: "Peter@Initech.test"}
	require.NoError(t, h.Store.Users().SaveUser(h.ctx, existing))

	result, err := h.onboarding.ApproveVendor(h.ctx, h.Officer, h.Initech.ID)
	require.NoError(t, err)

	assert.False(t, result.UserCreated)
	assert.Equal(t, "user-peter", result.Vendor.UserID)
	user, err := h.Store.Users().GetUser(h.ctx, "user-peter")
	require.NoError(t, err)
	assert.True(t, user.HasRole(entities.RoleVendor))
}

func TestApproveVendor_Guards(t *testing.T) {
	h := newHarness(t)

	_, err := h.onboarding.ApproveVendor(h.ctx, h.Finance, h.Initech.ID)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	_, err = h.onboarding.ApproveVendor(h.ctx, h.Officer, h.Acme.ID)
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)

	_, err = h.onboarding.ApproveVendor(h.ctx, h.Officer, "missing")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestSuspendReinstateBlacklist(t *testing.T) {
	h := newHarness(t)

	v, err := h.onboarding.SuspendVendor(h.ctx, h.Officer, h.Acme.ID, "late deliveries")
	require.NoError(t, err)
	assert.Equal(t, entities.VendorSuspended, v.Status)
	assert.Equal(t, "late deliveries", v.Metadata["suspension_reason"])
	require.Len(t, h.notifier.ByTemplate(notifications.VendorSuspended), 1)

	_, err = h.onboarding.SuspendVendor(h.ctx, h.Officer, h.Acme.ID, "again")
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)

	v, err = h.onboarding.ReinstateVendor(h.ctx, h.Officer, h.Acme.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.VendorActive, v.Status)

	v, err = h.onboarding.BlacklistVendor(h.ctx, h.Officer, h.Acme.ID, "fraud")
	require.NoError(t, err)
	assert.Equal(t, entities.VendorBlacklisted, v.Status)

	_, err = h.onboarding.ReinstateVendor(h.ctx, h.Officer, h.Acme.ID)
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)

	_, err = h.onboarding.SuspendVendor(h.ctx, h.Finance, h.Globex.ID, "")
	assert.ErrorIs(t, err, entities.ErrForbidden)
}

func TestSuspendVendor_PendingIsRefused(t *testing.T) {
	h := newHarness(t)

	_, err := h.onboarding.SuspendVendor(h.ctx, h.Officer, h.Initech.ID, "not yet trading")
	var terr *entities.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "pending", terr.From)

	stored, err := h.Store.Vendors().GetVendor(h.ctx, h.Initech.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.VendorPending, stored.Status)
	assert.Empty(t, h.notifier.ByTemplate(notifications.VendorSuspended))
}

func TestUpdateVendor(t *testing.T) {
	h := newHarness(t)
	phone := " +1 555 0100 "
	description := "Seating and desks"

	v, err := h.onboarding.UpdateVendor(h.ctx, h.AcmeUser, h.Acme.ID, dto.UpdateVendorInput{
		ContactPhone:       &phone,
		CompanyDescription: &description,
		Metadata:           map[string]string{"region": "emea"},
	})
	require.NoError(t, err)
	assert.Equal(t, "+1 555 0100", v.ContactPhone)
	assert.Equal(t, description, v.CompanyDescription)
	assert.Equal(t, "emea", v.Metadata["region"])
	assert.Contains(t, h.eventTypes(t), events.VendorUpdatedEvent)

	stored, err := h.Store.Vendors().GetVendor(h.ctx, h.Acme.ID)
	require.NoError(t, err)
	assert.Equal(t, description, stored.CompanyDescription)

	_, err = h.onboarding.UpdateVendor(h.ctx, h.GlobexUser, h.Acme.ID, dto.UpdateVendorInput{CompanyDescription: &description})
	assert.ErrorIs(t, err, entities.ErrForbidden, "another vendor's user")

	blank := "  "
	_, err = h.onboarding.UpdateVendor(h.ctx, h.Officer, h.Acme.ID, dto.UpdateVendorInput{ContactName: &blank})
	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("contact_name"))
}

func TestUpdateVendor_BlacklistedOwnerLocked(t *testing.T) {
	h := newHarness(t)
	_, err := h.onboarding.BlacklistVendor(h.ctx, h.Officer, h.Acme.ID, "fraud")
	require.NoError(t, err)

	address := "1 New Street"
	_, err = h.onboarding.UpdateVendor(h.ctx, h.AcmeUser, h.Acme.ID, dto.UpdateVendorInput{Address: &address})
	assert.ErrorIs(t, err, entities.ErrForbidden)

	v, err := h.onboarding.UpdateVendor(h.ctx, h.Officer, h.Acme.ID, dto.UpdateVendorInput{Address: &address})
	require.NoError(t, err)
	assert.Equal(t, address, v.Address)
}

func TestWarnings(t *testing.T) {
	h := newHarness(t)

	_, err := h.onboarding.IssueWarning(h.ctx, h.Officer, h.Acme.ID, dto.WarningInput{})
	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)

	w, err := h.onboarding.IssueWarning(h.ctx, h.Officer, h.Acme.ID, dto.WarningInput{Type: "quality", Details: "Damaged goods"})
	require.NoError(t, err)
	assert.Nil(t, w.ResolvedAt)

	w, err = h.onboarding.ResolveWarning(h.ctx, h.Officer, w.ID)
	require.NoError(t, err)
	assert.NotNil(t, w.ResolvedAt)

	_, err = h.onboarding.ResolveWarning(h.ctx, h.Officer, w.ID)
	assert.ErrorIs(t, err, entities.ErrInvalidTransition)

	warnings, err := h.onboarding.ListWarnings(h.ctx, h.Officer, h.Acme.ID)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestListActiveCategories(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.Store.Categories().SaveCategory(h.ctx, &entities.VendorCategory{
		ID: "cat-it", Name: "IT Services", Status: entities.CategoryActive, SortOrder: 0,
	}))
	require.NoError(t, h.Store.Categories().SaveCategory(h.ctx, &entities.VendorCategory{
		ID: "cat-cleaning", Name: "Cleaning", Status: entities.CategoryActive, SortOrder: 1,
	}))

	categories, err := h.onboarding.ListActiveCategories(h.ctx)
	require.NoError(t, err)

	var names []string
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"IT Services", "Cleaning", "Office Supplies"}, names)
}

func TestVendorVisibility(t *testing.T) {
	h := newHarness(t)

	_, err := h.onboarding.GetVendor(h.ctx, h.AcmeUser, h.Acme.ID)
	assert.NoError(t, err)

	_, err = h.onboarding.GetVendor(h.ctx, h.AcmeUser, h.Globex.ID)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	active, err := h.onboarding.ListVendors(h.ctx, h.Finance, repositories.VendorFilter{Status: entities.VendorActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = h.onboarding.ListVendors(h.ctx, h.AcmeUser, repositories.VendorFilter{})
	assert.ErrorIs(t, err, entities.ErrForbidden)
}
