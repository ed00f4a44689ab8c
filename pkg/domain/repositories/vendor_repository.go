package repositories

import (
	"context"

	"github.com/vsinha/procure/pkg/domain/entities"
)

// UserRepository provides access to staff and vendor user accounts
type UserRepository interface {
	GetUser(ctx context.Context, id string) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	ListUsersByRole(ctx context.Context, role entities.Role) ([]*entities.User, error)
	SaveUser(ctx context.Context, user *entities.User) error
}

// CategoryRepository provides access to vendor categories
type CategoryRepository interface {
	GetCategory(ctx context.Context, id string) (*entities.VendorCategory, error)
	ListCategories(ctx context.Context) ([]*entities.VendorCategory, error)
	SaveCategory(ctx context.Context, category *entities.VendorCategory) error
}

// VendorFilter narrows ListVendors. Zero fields match everything.
type VendorFilter struct {
	Status     entities.VendorStatus
	CategoryID string
}

// VendorRepository provides access to vendors. Company name, slug, contact
// email and tax ID are unique; SaveVendor returns ErrDuplicate on conflict.
type VendorRepository interface {
	GetVendor(ctx context.Context, id string) (*entities.Vendor, error)
	GetVendorBySlug(ctx context.Context, slug string) (*entities.Vendor, error)
	GetVendorByCompanyName(ctx context.Context, name string) (*entities.Vendor, error)
	GetVendorByContactEmail(ctx context.Context, email string) (*entities.Vendor, error)
	GetVendorByTaxID(ctx context.Context, taxID string) (*entities.Vendor, error)
	ListVendors(ctx context.Context, filter VendorFilter) ([]*entities.Vendor, error)
	SaveVendor(ctx context.Context, vendor *entities.Vendor) error
}

// ReviewRepository stores vendor reviews
type ReviewRepository interface {
	SaveReview(ctx context.Context, review *entities.VendorReview) error
	ListReviewsByVendor(ctx context.Context, vendorID string) ([]*entities.VendorReview, error)
}

// WarningRepository stores vendor warnings
type WarningRepository interface {
	GetWarning(ctx context.Context, id string) (*entities.VendorWarning, error)
	SaveWarning(ctx context.Context, warning *entities.VendorWarning) error
	ListWarningsByVendor(ctx context.Context, vendorID string) ([]*entities.VendorWarning, error)
}
