package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
)

type userRepository struct{ s *Store }

var _ repositories.UserRepository = userRepository{}

func (r userRepository) GetUser(_ context.Context, id string) (u *entities.User, err error) {
	err = r.s.read(func(db *database) error {
		u, err = db.users.get(id)
		return err
	})
	return u, err
}

func (r userRepository) GetUserByEmail(_ context.Context, email string) (u *entities.User, err error) {
	err = r.s.read(func(db *database) error {
		u, err = db.users.lookup(0, strings.ToLower(email))
		return err
	})
	return u, err
}

func (r userRepository) ListUsersByRole(_ context.Context, role entities.Role) (out []*entities.User, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.users.find(func(u *entities.User) bool { return u.HasRole(role) })
		return err
	})
	return out, err
}

func (r userRepository) SaveUser(_ context.Context, user *entities.User) error {
	return r.s.write(func(db *database) error { return db.users.put(user) })
}

type categoryRepository struct{ s *Store }

var _ repositories.CategoryRepository = categoryRepository{}

func (r categoryRepository) GetCategory(_ context.Context, id string) (c *entities.VendorCategory, err error) {
	err = r.s.read(func(db *database) error {
		c, err = db.categories.get(id)
		return err
	})
	return c, err
}

func (r categoryRepository) ListCategories(_ context.Context) (out []*entities.VendorCategory, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.categories.find(nil)
		return err
	})
	return out, err
}

func (r categoryRepository) SaveCategory(_ context.Context, category *entities.VendorCategory) error {
	return r.s.write(func(db *database) error { return db.categories.put(category) })
}

type vendorRepository struct{ s *Store }

var _ repositories.VendorRepository = vendorRepository{}

func (r vendorRepository) GetVendor(_ context.Context, id string) (v *entities.Vendor, err error) {
	err = r.s.read(func(db *database) error {
		v, err = db.vendors.get(id)
		return err
	})
	return v, err
}

func (r vendorRepository) byIndex(i int, key string) (v *entities.Vendor, err error) {
	err = r.s.read(func(db *database) error {
		v, err = db.vendors.lookup(i, key)
		return err
	})
	return v, err
}

func (r vendorRepository) GetVendorBySlug(_ context.Context, slug string) (*entities.Vendor, error) {
	return r.byIndex(vendorBySlug, slug)
}

func (r vendorRepository) GetVendorByCompanyName(_ context.Context, name string) (*entities.Vendor, error) {
	return r.byIndex(vendorByCompany, strings.ToLower(name))
}

func (r vendorRepository) GetVendorByContactEmail(_ context.Context, email string) (*entities.Vendor, error) {
	return r.byIndex(vendorByEmail, strings.ToLower(email))
}

func (r vendorRepository) GetVendorByTaxID(_ context.Context, taxID string) (*entities.Vendor, error) {
	return r.byIndex(vendorByTaxID, taxID)
}

func (r vendorRepository) ListVendors(_ context.Context, filter repositories.VendorFilter) (out []*entities.Vendor, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.vendors.find(func(v *entities.Vendor) bool {
			return (filter.Status == "" || v.Status == filter.Status) &&
				(filter.CategoryID == "" || v.CategoryID == filter.CategoryID)
		})
		return err
	})
	return out, err
}

func (r vendorRepository) SaveVendor(_ context.Context, vendor *entities.Vendor) error {
	return r.s.write(func(db *database) error { return db.vendors.put(vendor) })
}

type reviewRepository struct{ s *Store }

var _ repositories.ReviewRepository = reviewRepository{}

func (r reviewRepository) SaveReview(_ context.Context, review *entities.VendorReview) error {
	return r.s.write(func(db *database) error { return db.reviews.put(review) })
}

func (r reviewRepository) ListReviewsByVendor(_ context.Context, vendorID string) (out []*entities.VendorReview, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.reviews.find(func(rv *entities.VendorReview) bool { return rv.VendorID == vendorID })
		return err
	})
	return out, err
}

type warningRepository struct{ s *Store }

var _ repositories.WarningRepository = warningRepository{}

func (r warningRepository) GetWarning(_ context.Context, id string) (w *entities.VendorWarning, err error) {
	err = r.s.read(func(db *database) error {
		w, err = db.warnings.get(id)
		return err
	})
	return w, err
}

func (r warningRepository) SaveWarning(_ context.Context, warning *entities.VendorWarning) error {
	return r.s.write(func(db *database) error { return db.warnings.put(warning) })
}

func (r warningRepository) ListWarningsByVendor(_ context.Context, vendorID string) (out []*entities.VendorWarning, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.warnings.find(func(w *entities.VendorWarning) bool { return w.VendorID == vendorID })
		return err
	})
	return out, err
}

func statusIn[S comparable](statuses []S, s S) bool {
	return len(statuses) == 0 || slices.Contains(statuses, s)
}
