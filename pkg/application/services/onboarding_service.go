package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
	domainsvc "github.com/vsinha/procure/pkg/domain/services"
	"github.com/vsinha/procure/pkg/infrastructure/events"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
)

const (
	generatedPasswordLength = 12
	passwordAlphabet        = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// PasswordCost is the bcrypt cost used for generated vendor logins.
var PasswordCost = bcrypt.DefaultCost

// VendorOnboardingService handles vendor registration and status changes.
type VendorOnboardingService struct {
	workflow
	policy domainsvc.VendorPolicy
}

// NewVendorOnboardingService creates the vendor onboarding service.
func NewVendorOnboardingService(deps Deps) *VendorOnboardingService {
	return &VendorOnboardingService{workflow: newWorkflow(deps, "onboarding")}
}

// vendorFields is what staff creation and self-registration have in common.
type vendorFields struct {
	CompanyName        string
	CategoryID         string
	ContactName        string
	ContactEmail       string
	ContactPhone       string
	Address            string
	CompanyDescription string
	TaxID              string
}

func (f *vendorFields) normalize() {
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	f.CategoryID = strings.TrimSpace(f.CategoryID)
	f.ContactName = strings.TrimSpace(f.ContactName)
	f.ContactEmail = strings.TrimSpace(f.ContactEmail)
	f.ContactPhone = strings.TrimSpace(f.ContactPhone)
	f.TaxID = strings.TrimSpace(f.TaxID)
}

// validate checks field rules and uniqueness against the store.
func (f *vendorFields) validate(ctx context.Context, tx repositories.Store, verr *entities.ValidationError) error {
	required := func(field, value string, limit int) {
		if value == "" {
			verr.Add(field, "is required")
		}
		tooLong(verr, field, value, limit)
	}
	required("company_name", f.CompanyName, 255)
	required("category_id", f.CategoryID, 0)
	required("contact_name", f.ContactName, 255)
	required("contact_email", f.ContactEmail, 255)
	tooLong(verr, "contact_phone", f.ContactPhone, 20)
	tooLong(verr, "address", f.Address, 500)
	tooLong(verr, "tax_id", f.TaxID, 50)
	tooLong(verr, "company_description", f.CompanyDescription, 1000)

	if f.ContactEmail != "" && !verr.Has("contact_email") {
		if addr, err := mail.ParseAddress(f.ContactEmail); err != nil || addr.Address != f.ContactEmail {
			verr.Add("contact_email", "must be a valid email address")
		}
	}

	if f.CategoryID != "" {
		category, err := tx.Categories().GetCategory(ctx, f.CategoryID)
		switch {
		case errors.Is(err, entities.ErrNotFound):
			verr.Add("category_id", "does not exist")
		case err != nil:
			return err
		case category.Status != entities.CategoryActive:
			verr.Add("category_id", "is not accepting registrations")
		}
	}

	checks := []struct {
		field, value string
		lookup       func(context.Context, string) (*entities.Vendor, error)
	}{
		{"company_name", f.CompanyName, tx.Vendors().GetVendorByCompanyName},
		{"contact_email", f.ContactEmail, tx.Vendors().GetVendorByContactEmail},
		{"tax_id", f.TaxID, tx.Vendors().GetVendorByTaxID},
	}
	for _, c := range checks {
		if c.value == "" || verr.Has(c.field) {
			continue
		}
		_, err := c.lookup(ctx, c.value)
		taken, err := exists(err)
		if err != nil {
			return err
		}
		if taken {
			verr.Add(c.field, "has already been taken")
		}
	}
	return nil
}

func tooLong(verr *entities.ValidationError, field, value string, limit int) {
	if limit > 0 && utf8.RuneCountInString(value) > limit {
		verr.Add(field, fmt.Sprintf("may not be greater than %d characters", limit))
	}
}

// exists turns a repository lookup error into an existence check.
func exists(err error) (bool, error) {
	if errors.Is(err, entities.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *VendorOnboardingService) newVendor(ctx context.Context, tx repositories.Store, f vendorFields) *entities.Vendor {
	now := s.now()
	slug := domainsvc.UniqueSlug(f.CompanyName, func(candidate string) bool {
		_, err := tx.Vendors().GetVendorBySlug(ctx, candidate)
		return err == nil
	})
	return &entities.Vendor{
		ID:                 entities.NewID(),
		CompanyName:        f.CompanyName,
		Slug:               slug,
		CategoryID:         f.CategoryID,
		ContactName:        f.ContactName,
		ContactEmail:       f.ContactEmail,
		ContactPhone:       f.ContactPhone,
		Address:            f.Address,
		CompanyDescription: f.CompanyDescription,
		TaxID:              f.TaxID,
		Status:             entities.VendorPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// CreateVendor adds a vendor entered by staff. It starts out pending.
func (s *VendorOnboardingService) CreateVendor(ctx context.Context, actor *entities.User, input dto.CreateVendorInput) (*entities.Vendor, error) {
	if !s.policy.Create(actor) {
		return nil, entities.ErrForbidden
	}
	fields := vendorFields{
		CompanyName:        input.CompanyName,
		CategoryID:         input.CategoryID,
		ContactName:        input.ContactName,
		ContactEmail:       input.ContactEmail,
		ContactPhone:       input.ContactPhone,
		Address:            input.Address,
		CompanyDescription: input.CompanyDescription,
		TaxID:              input.TaxID,
	}
	fields.normalize()

	var vendor *entities.Vendor
	err := s.run(ctx, "onboarding.create_vendor", actor, func(tx repositories.Store, fx *effects) error {
		verr := entities.NewValidationError()
		if err := fields.validate(ctx, tx, verr); err != nil {
			return err
		}
		if err := verr.OrNil(); err != nil {
			return err
		}
		vendor = s.newVendor(ctx, tx, fields)
		vendor.Metadata = input.Metadata
		if err := tx.Vendors().SaveVendor(ctx, vendor); err != nil {
			return fmt.Errorf("failed to save vendor: %w", err)
		}
		fx.record(events.VendorCreatedEvent, "vendor", vendor.ID, events.StatusChanged{To: string(vendor.Status)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("vendor created", zap.String("vendor", vendor.ID), zap.String("company", vendor.CompanyName))
	return vendor, nil
}

// UpdateVendor edits the profile of a vendor. Staff may edit any vendor;
// the vendor's own user may edit it until it is blacklisted.
func (s *VendorOnboardingService) UpdateVendor(ctx context.Context, actor *entities.User, vendorID string, input dto.UpdateVendorInput) (*entities.Vendor, error) {
	var vendor *entities.Vendor
	err := s.run(ctx, "onboarding.update_vendor", actor, func(tx repositories.Store, fx *effects) error {
		v, err := tx.Vendors().GetVendor(ctx, vendorID)
		if err != nil {
			return err
		}
		if !s.policy.Update(actor, v) {
			return entities.ErrForbidden
		}

		verr := entities.NewValidationError()
		var changed []string
		set := func(field string, value *string, limit int, target *string) {
			if value == nil {
				return
			}
			trimmed := strings.TrimSpace(*value)
			tooLong(verr, field, trimmed, limit)
			if trimmed != *target {
				*target = trimmed
				changed = append(changed, field)
			}
		}
		set("contact_name", input.ContactName, 255, &v.ContactName)
		set("contact_phone", input.ContactPhone, 20, &v.ContactPhone)
		set("address", input.Address, 500, &v.Address)
		set("company_description", input.CompanyDescription, 1000, &v.CompanyDescription)
		if input.ContactName != nil && v.ContactName == "" {
			verr.Add("contact_name", "is required")
		}
		if err := verr.OrNil(); err != nil {
			return err
		}
		keys := make([]string, 0, len(input.Metadata))
		for key := range input.Metadata {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if old, ok := v.Metadata[key]; ok && old == input.Metadata[key] {
				continue
			}
			setMetadata(v, key, input.Metadata[key])
			changed = append(changed, "metadata."+key)
		}

		vendor = v
		if len(changed) == 0 {
			return nil
		}
		v.UpdatedAt = s.now()
		if err := tx.Vendors().SaveVendor(ctx, v); err != nil {
			return fmt.Errorf("failed to save vendor: %w", err)
		}
		fx.record(events.VendorUpdatedEvent, "vendor", v.ID, events.VendorUpdated{Fields: changed})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("vendor updated", zap.String("vendor", vendor.ID))
	return vendor, nil
}

// RegisterVendor handles the public registration form. The vendor is always
// created pending; the contact and every super admin are notified.
func (s *VendorOnboardingService) RegisterVendor(ctx context.Context, reg dto.VendorRegistration) (*entities.Vendor, error) {
	fields := vendorFields{
		CompanyName:        reg.CompanyName,
		CategoryID:         reg.CategoryID,
		ContactName:        reg.ContactName,
		ContactEmail:       reg.ContactEmail,
		ContactPhone:       reg.ContactPhone,
		Address:            reg.Address,
		CompanyDescription: reg.CompanyDescription,
		TaxID:              reg.TaxID,
	}
	fields.normalize()

	var vendor *entities.Vendor
	err := s.run(ctx, "onboarding.register_vendor", nil, func(tx repositories.Store, fx *effects) error {
		verr := entities.NewValidationError()
		if !reg.TermsAccepted {
			verr.Add("terms_accepted", "must be accepted")
		}
		if err := fields.validate(ctx, tx, verr); err != nil {
			return err
		}
		if err := verr.OrNil(); err != nil {
			return err
		}

		vendor = s.newVendor(ctx, tx, fields)
		if err := tx.Vendors().SaveVendor(ctx, vendor); err != nil {
			return fmt.Errorf("failed to save vendor: %w", err)
		}

		admins, err := tx.Users().ListUsersByRole(ctx, entities.RoleSuperAdmin)
		if err != nil {
			return fmt.Errorf("failed to list administrators: %w", err)
		}

		fx.record(events.VendorSelfRegisteredEvent, "vendor", vendor.ID, events.StatusChanged{To: string(vendor.Status)})
		fx.notify(notifications.Message{
			Template: notifications.VendorRegistrationReceived,
			To:       []string{vendor.ContactEmail},
			Subject:  "We received your vendor registration",
			Data: map[string]string{
				"company_name": vendor.CompanyName,
				"contact_name": vendor.ContactName,
			},
		})
		fx.notify(notifications.Message{
			Template: notifications.VendorRegistrationAdmin,
			To:       emailsOf(admins),
			Subject:  "New vendor registration: " + vendor.CompanyName,
			Data: map[string]string{
				"vendor_id":    vendor.ID,
				"company_name": vendor.CompanyName,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("vendor self-registered", zap.String("vendor", vendor.ID), zap.String("company", vendor.CompanyName))
	return vendor, nil
}

// ApproveVendor activates a pending vendor and makes sure it has a login.
// An existing user with the contact e-mail is linked, otherwise one is created.
func (s *VendorOnboardingService) ApproveVendor(ctx context.Context, actor *entities.User, vendorID string) (*dto.ApprovalResult, error) {
	if err := authorize(actor, entities.PermApproveVendors); err != nil {
		return nil, err
	}

	var result *dto.ApprovalResult
	err := s.run(ctx, "onboarding.approve_vendor", actor, func(tx repositories.Store, fx *effects) error {
		vendor, err := tx.Vendors().GetVendor(ctx, vendorID)
		if err != nil {
			return err
		}
		if !s.policy.Approve(actor, vendor) {
			return refused(vendor, entities.VendorActive)
		}
		from := vendor.Status
		if err := vendor.Approve(s.now()); err != nil {
			return err
		}

		user, created, err := s.vendorUser(ctx, tx, vendor)
		if err != nil {
			return err
		}
		vendor.UserID = user.ID
		if err := tx.Vendors().SaveVendor(ctx, vendor); err != nil {
			return fmt.Errorf("failed to save vendor: %w", err)
		}

		result = &dto.ApprovalResult{Vendor: vendor, User: user, UserCreated: created}
		fx.record(events.VendorApprovedEvent, "vendor", vendor.ID, events.StatusChanged{From: string(from), To: string(vendor.Status)})
		fx.notify(notifications.Message{
			Template: notifications.VendorApproved,
			To:       []string{vendor.ContactEmail},
			Subject:  "Your vendor account has been approved",
			Data: map[string]string{
				"company_name": vendor.CompanyName,
				"login_email":  user.Email,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("vendor approved",
		zap.String("vendor", result.Vendor.ID),
		zap.String("user", result.User.ID),
		zap.Bool("user_created", result.UserCreated))
	return result, nil
}

func (s *VendorOnboardingService) vendorUser(ctx context.Context, tx repositories.Store, vendor *entities.Vendor) (*entities.User, bool, error) {
	if vendor.UserID != "" {
		user, err := tx.Users().GetUser(ctx, vendor.UserID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load vendor user: %w", err)
		}
		if !user.HasRole(entities.RoleVendor) {
			user.AssignRole(entities.RoleVendor)
			if err := tx.Users().SaveUser(ctx, user); err != nil {
				return nil, false, err
			}
		}
		return user, false, nil
	}

	user, err := tx.Users().GetUserByEmail(ctx, vendor.ContactEmail)
	switch {
	case err == nil:
		user.AssignRole(entities.RoleVendor)
		if err := tx.Users().SaveUser(ctx, user); err != nil {
			return nil, false, err
		}
		return user, false, nil
	case !errors.Is(err, entities.ErrNotFound):
		return nil, false, err
	}

	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		return nil, false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}
	user = &entities.User{
		ID:           entities.NewID(),
		Name:         vendor.ContactName,
		Email:        vendor.ContactEmail,
		PasswordHash: string(hash),
		Roles:        []entities.Role{entities.RoleVendor},
	}
	if err := tx.Users().SaveUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create vendor user: %w", err)
	}
	return user, true, nil
}

func generatePassword(n int) (string, error) {
	limit := big.NewInt(int64(len(passwordAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		b.WriteByte(passwordAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// changeStatus loads a vendor, applies change and records eventType.
func (s *VendorOnboardingService) changeStatus(
	ctx context.Context,
	op string,
	actor *entities.User,
	vendorID, reason, eventType string,
	change func(v *entities.Vendor) error,
	message func(v *entities.Vendor) *notifications.Message,
) (*entities.Vendor, error) {
	if err := authorize(actor, entities.PermManageVendors); err != nil {
		return nil, err
	}
	var vendor *entities.Vendor
	err := s.run(ctx, op, actor, func(tx repositories.Store, fx *effects) error {
		v, err := tx.Vendors().GetVendor(ctx, vendorID)
		if err != nil {
			return err
		}
		from := v.Status
		if err := change(v); err != nil {
			return err
		}
		if err := tx.Vendors().SaveVendor(ctx, v); err != nil {
			return fmt.Errorf("failed to save vendor: %w", err)
		}
		vendor = v
		fx.record(eventType, "vendor", v.ID, events.StatusChanged{From: string(from), To: string(v.Status), Reason: reason})
		if message != nil {
			if msg := message(v); msg != nil {
				fx.notify(*msg)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("vendor status changed",
		zap.String("vendor", vendor.ID),
		zap.String("status", string(vendor.Status)),
		zap.String("reason", reason))
	return vendor, nil
}

func setMetadata(v *entities.Vendor, key, value string) {
	if value == "" {
		return
	}
	if v.Metadata == nil {
		v.Metadata = make(map[string]string)
	}
	v.Metadata[key] = value
}

// refused reports a policy refusal for an actor already holding the
// permission: the vendor is not in a state the action applies to.
func refused(v *entities.Vendor, to entities.VendorStatus) error {
	return &entities.TransitionError{Entity: "vendor", From: string(v.Status), To: string(to)}
}

// SuspendVendor takes an active vendor out of rotation.
func (s *VendorOnboardingService) SuspendVendor(ctx context.Context, actor *entities.User, vendorID, reason string) (*entities.Vendor, error) {
	return s.changeStatus(ctx, "onboarding.suspend_vendor", actor, vendorID, reason, events.VendorSuspendedEvent,
		func(v *entities.Vendor) error {
			if !s.policy.Suspend(actor, v) {
				return refused(v, entities.VendorSuspended)
			}
			if err := v.Suspend(s.now()); err != nil {
				return err
			}
			setMetadata(v, "suspension_reason", reason)
			return nil
		},
		func(v *entities.Vendor) *notifications.Message {
			return &notifications.Message{
				Template: notifications.VendorSuspended,
				To:       []string{v.ContactEmail},
				Subject:  "Your vendor account has been suspended",
				Data:     map[string]string{"company_name": v.CompanyName, "reason": reason},
			}
		})
}

// ReinstateVendor returns a suspended vendor to active.
func (s *VendorOnboardingService) ReinstateVendor(ctx context.Context, actor *entities.User, vendorID string) (*entities.Vendor, error) {
	return s.changeStatus(ctx, "onboarding.reinstate_vendor", actor, vendorID, "", events.VendorReinstatedEvent,
		func(v *entities.Vendor) error {
			if err := v.Reinstate(s.now()); err != nil {
				return err
			}
			delete(v.Metadata, "suspension_reason")
			return nil
		}, nil)
}

// BlacklistVendor bans a vendor permanently.
func (s *VendorOnboardingService) BlacklistVendor(ctx context.Context, actor *entities.User, vendorID, reason string) (*entities.Vendor, error) {
	return s.changeStatus(ctx, "onboarding.blacklist_vendor", actor, vendorID, reason, events.VendorBlacklistedEvent,
		func(v *entities.Vendor) error {
			if err := v.Blacklist(s.now()); err != nil {
				return err
			}
			setMetadata(v, "blacklist_reason", reason)
			return nil
		}, nil)
}

// IssueWarning records a compliance or performance notice against a vendor.
func (s *VendorOnboardingService) IssueWarning(ctx context.Context, actor *entities.User, vendorID string, input dto.WarningInput) (*entities.VendorWarning, error) {
	if err := authorize(actor, entities.PermManageVendors); err != nil {
		return nil, err
	}
	verr := entities.NewValidationError()
	if strings.TrimSpace(input.Type) == "" {
		verr.Add("type", "is required")
	}
	if strings.TrimSpace(input.Details) == "" {
		verr.Add("details", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var warning *entities.VendorWarning
	err := s.run(ctx, "onboarding.issue_warning", actor, func(tx repositories.Store, fx *effects) error {
		if _, err := tx.Vendors().GetVendor(ctx, vendorID); err != nil {
			return err
		}
		warning = &entities.VendorWarning{
			ID:        entities.NewID(),
			VendorID:  vendorID,
			IssuedBy:  actor.ID,
			Type:      strings.TrimSpace(input.Type),
			Details:   input.Details,
			CreatedAt: s.now(),
		}
		if err := tx.Warnings().SaveWarning(ctx, warning); err != nil {
			return fmt.Errorf("failed to save warning: %w", err)
		}
		fx.record(events.VendorWarningIssuedEvent, "vendor", vendorID, warning)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("vendor warning issued", zap.String("vendor", vendorID), zap.String("type", warning.Type))
	return warning, nil
}

// ResolveWarning closes a warning. A warning resolves only once.
func (s *VendorOnboardingService) ResolveWarning(ctx context.Context, actor *entities.User, warningID string) (*entities.VendorWarning, error) {
	if err := authorize(actor, entities.PermManageVendors); err != nil {
		return nil, err
	}
	var warning *entities.VendorWarning
	err := s.run(ctx, "onboarding.resolve_warning", actor, func(tx repositories.Store, fx *effects) error {
		w, err := tx.Warnings().GetWarning(ctx, warningID)
		if err != nil {
			return err
		}
		if err := w.Resolve(s.now()); err != nil {
			return err
		}
		if err := tx.Warnings().SaveWarning(ctx, w); err != nil {
			return err
		}
		warning = w
		fx.record(events.VendorWarningResolvedEvent, "vendor", w.VendorID, w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return warning, nil
}

// ListActiveCategories returns the categories offered on the registration
// form, by sort order then name.
func (s *VendorOnboardingService) ListActiveCategories(ctx context.Context) ([]*entities.VendorCategory, error) {
	var active []*entities.VendorCategory
	err := s.read(ctx, "onboarding.list_categories", func(ctx context.Context) error {
		all, err := s.store.Categories().ListCategories(ctx)
		if err != nil {
			return err
		}
		for _, c := range all {
			if c.Status == entities.CategoryActive {
				active = append(active, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].SortOrder != active[j].SortOrder {
			return active[i].SortOrder < active[j].SortOrder
		}
		return active[i].Name < active[j].Name
	})
	return active, nil
}

// GetVendor returns a vendor the actor may see.
func (s *VendorOnboardingService) GetVendor(ctx context.Context, actor *entities.User, vendorID string) (*entities.Vendor, error) {
	vendor, err := s.store.Vendors().GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if !s.policy.View(actor, vendor) {
		return nil, entities.ErrForbidden
	}
	return vendor, nil
}

// ListVendors returns vendors matching filter for staff.
func (s *VendorOnboardingService) ListVendors(ctx context.Context, actor *entities.User, filter repositories.VendorFilter) ([]*entities.Vendor, error) {
	if !s.policy.ViewAny(actor) {
		return nil, entities.ErrForbidden
	}
	return s.store.Vendors().ListVendors(ctx, filter)
}

// ListWarnings returns a vendor's warnings.
func (s *VendorOnboardingService) ListWarnings(ctx context.Context, actor *entities.User, vendorID string) ([]*entities.VendorWarning, error) {
	if _, err := s.GetVendor(ctx, actor, vendorID); err != nil {
		return nil, err
	}
	return s.store.Warnings().ListWarningsByVendor(ctx, vendorID)
}
