package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendorStatus is the onboarding state of a vendor.
type VendorStatus string

const (
	VendorPending     VendorStatus = "pending"
	VendorActive      VendorStatus = "active"
	VendorSuspended   VendorStatus = "suspended"
	VendorBlacklisted VendorStatus = "blacklisted"
)

var vendorTransitions = transitions[VendorStatus]{
	VendorPending:   {VendorActive, VendorBlacklisted},
	VendorActive:    {VendorSuspended, VendorBlacklisted},
	VendorSuspended: {VendorActive, VendorBlacklisted},
}

// CategoryStatus toggles category visibility on the registration form.
type CategoryStatus string

const (
	CategoryActive   CategoryStatus = "active"
	CategoryInactive CategoryStatus = "inactive"
)

// VendorCategory classifies vendors.
type VendorCategory struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description,omitempty"`
	Status      CategoryStatus `json:"status"`
	IsFeatured  bool           `json:"is_featured"`
	SortOrder   int            `json:"sort_order"`
}

// Vendor is a supplier organisation.
type Vendor struct {
	ID                 string            `json:"id"`
	UserID             string            `json:"user_id,omitempty"`
	CompanyName        string            `json:"company_name"`
	Slug               string            `json:"slug"`
	CategoryID         string            `json:"category_id"`
	ContactName        string            `json:"contact_name"`
	ContactEmail       string            `json:"contact_email"`
	ContactPhone       string            `json:"contact_phone,omitempty"`
	Address            string            `json:"address,omitempty"`
	CompanyDescription string            `json:"company_description,omitempty"`
	TaxID              string            `json:"tax_id,omitempty"`
	Status             VendorStatus      `json:"status"`
	RatingAverage      decimal.Decimal   `json:"rating_average"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (v *Vendor) transition(to VendorStatus, now time.Time) error {
	if err := move("vendor", vendorTransitions, &v.Status, to); err != nil {
		return err
	}
	v.UpdatedAt = now
	return nil
}

// Approve activates a pending vendor.
func (v *Vendor) Approve(now time.Time) error {
	if v.Status != VendorPending {
		return transitionError("vendor", v.Status, VendorActive)
	}
	return v.transition(VendorActive, now)
}

// Suspend takes an active vendor out of rotation.
func (v *Vendor) Suspend(now time.Time) error {
	if v.Status != VendorActive {
		return transitionError("vendor", v.Status, VendorSuspended)
	}
	return v.transition(VendorSuspended, now)
}

// Reinstate returns a suspended vendor to active.
func (v *Vendor) Reinstate(now time.Time) error {
	if v.Status != VendorSuspended {
		return transitionError("vendor", v.Status, VendorActive)
	}
	return v.transition(VendorActive, now)
}

// Blacklist bans the vendor permanently.
func (v *Vendor) Blacklist(now time.Time) error {
	return v.transition(VendorBlacklisted, now)
}

// IsActive reports whether the vendor may take part in RFQs.
func (v *Vendor) IsActive() bool {
	return v.Status == VendorActive
}

// VendorReview is a staff rating of a vendor, each dimension 1..5.
type VendorReview struct {
	ID            string    `json:"id"`
	VendorID      string    `json:"vendor_id"`
	ReviewerID    string    `json:"reviewer_id"`
	Quality       int       `json:"rating_quality"`
	Timeliness    int       `json:"rating_timeliness"`
	Communication int       `json:"rating_communication"`
	Comments      string    `json:"comments,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// VendorWarning is a compliance or performance notice against a vendor.
type VendorWarning struct {
	ID         string     `json:"id"`
	VendorID   string     `json:"vendor_id"`
	IssuedBy   string     `json:"issued_by"`
	Type       string     `json:"type"`
	Details    string     `json:"details"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Resolve closes the warning once.
func (w *VendorWarning) Resolve(now time.Time) error {
	if w.ResolvedAt != nil {
		return &TransitionError{Entity: "vendor warning", From: "resolved", To: "resolved"}
	}
	w.ResolvedAt = &now
	return nil
}
