package services

import "github.com/vsinha/procure/pkg/domain/entities"

// VendorPolicy decides who may act on vendor records.
type VendorPolicy struct{}

// ViewAny allows listing vendors to staff with view_vendors.
func (VendorPolicy) ViewAny(user *entities.User) bool {
	return user.Can(entities.PermViewVendors)
}

// View allows staff with view_vendors and the vendor's own user.
func (VendorPolicy) View(user *entities.User, vendor *entities.Vendor) bool {
	return user.Can(entities.PermViewVendors) || ownsVendor(user, vendor)
}

// Create is open to anyone; self-registration relies on it.
func (VendorPolicy) Create(*entities.User) bool {
	return true
}

// Update allows vendor managers, and the vendor's own user until it is blacklisted.
func (VendorPolicy) Update(user *entities.User, vendor *entities.Vendor) bool {
	if user.Can(entities.PermManageVendors) {
		return true
	}
	return ownsVendor(user, vendor) && vendor.Status != entities.VendorBlacklisted
}

// Approve allows approvers to act on pending vendors only.
func (VendorPolicy) Approve(user *entities.User, vendor *entities.Vendor) bool {
	return user.Can(entities.PermApproveVendors) && vendor.Status == entities.VendorPending
}

// Suspend allows vendor managers to act on active vendors only.
func (VendorPolicy) Suspend(user *entities.User, vendor *entities.Vendor) bool {
	return user.Can(entities.PermManageVendors) && vendor.Status == entities.VendorActive
}

func ownsVendor(user *entities.User, vendor *entities.Vendor) bool {
	return user != nil && vendor != nil && vendor.UserID != "" && vendor.UserID == user.ID
}

// Authorize returns ErrForbidden unless user holds permission.
func Authorize(user *entities.User, permission entities.Permission) error {
	if !user.Can(permission) {
		return entities.ErrForbidden
	}
	return nil
}
