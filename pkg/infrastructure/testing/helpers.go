package testing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/infrastructure/repositories/memory"
)

// BaseTime is the clock every fixture is built against.
var BaseTime = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

// Clock returns a settable clock starting at BaseTime.
type Clock struct {
	Current time.Time
}

func NewClock() *Clock {
	return &Clock{Current: BaseTime}
}

func (c *Clock) Now() time.Time {
	return c.Current
}

// Advance moves the clock forward by days.
func (c *Clock) Advance(days int) {
	c.Current = c.Current.AddDate(0, 0, days)
}

// Fixture is a seeded in-memory store.
type Fixture struct {
	Store *memory.Store

	Admin   *entities.User
	Officer *entities.User
	Finance *entities.User

	// Office is active, Legacy is inactive.
	Office *entities.VendorCategory
	Legacy *entities.VendorCategory

	// Acme and Globex are active and linked to vendor users; Initech is pending.
	Acme    *entities.Vendor
	Globex  *entities.Vendor
	Initech *entities.Vendor

	AcmeUser   *entities.User
	GlobexUser *entities.User
}

// BuildProcurementTestData builds the standard scenario: one user per staff
// role, two categories, two active vendors and one pending vendor.
func BuildProcurementTestData() *Fixture {
	f := BuildSimpleTestData()
	ctx := context.Background()

	f.AcmeUser = mustUser(f.Store, "user-acme", "Alice Acme", "alice@acme.test", entities.RoleVendor)
	f.GlobexUser = mustUser(f.Store, "user-globex", "Gus Globex", "gus@globex.test", entities.RoleVendor)

	f.Acme = &entities.Vendor{
		ID:            "vendor-acme",
		UserID:        f.AcmeUser.ID,
		CompanyName:   "Acme Supplies",
		Slug:          "acme-supplies",
		CategoryID:    f.Office.ID,
		ContactName:   "Alice Acme",
		ContactEmail:  "alice@acme.test",
		TaxID:         "ACME-001",
		Status:        entities.VendorActive,
		RatingAverage: decimal.Zero,
		CreatedAt:     BaseTime,
		UpdatedAt:     BaseTime,
	}
	f.Globex = &entities.Vendor{
		ID:            "vendor-globex",
		UserID:        f.GlobexUser.ID,
		CompanyName:   "Globex Corporation",
		Slug:          "globex-corporation",
		CategoryID:    f.Office.ID,
		ContactName:   "Gus Globex",
		ContactEmail:  "gus@globex.test",
		TaxID:         "GLOBEX-001",
		Status:        entities.VendorActive,
		RatingAverage: decimal.Zero,
		CreatedAt:     BaseTime,
		UpdatedAt:     BaseTime,
	}
	f.Initech = &entities.Vendor{
		ID:            "vendor-initech",
		CompanyName:   "Initech",
		Slug:          "initech",
		CategoryID:    f.Office.ID,
		ContactName:   "Peter Gibbons",
		ContactEmail:  "peter@initech.test",
		Status:        entities.VendorPending,
		RatingAverage: decimal.Zero,
		CreatedAt:     BaseTime,
		UpdatedAt:     BaseTime,
	}
	for _, v := range []*entities.Vendor{f.Acme, f.Globex, f.Initech} {
		if err := f.Store.Vendors().SaveVendor(ctx, v); err != nil {
			panic(err)
		}
	}
	return f
}

// BuildSimpleTestData creates staff users and categories without vendors.
func BuildSimpleTestData() *Fixture {
	store := memory.NewStore()
	f := &Fixture{Store: store}

	f.Admin = mustUser(store, "user-admin", "Ada Admin", "admin@procure.test", entities.RoleSuperAdmin)
	f.Officer = mustUser(store, "user-officer", "Olive Officer", "officer@procure.test", entities.RoleProcurementOfficer)
	f.Finance = mustUser(store, "user-finance", "Fin Finance", "finance@procure.test", entities.RoleFinanceOfficer)

	f.Office = &entities.VendorCategory{
		ID:        "cat-office",
		Name:      "Office Supplies",
		Slug:      "office-supplies",
		Status:    entities.CategoryActive,
		SortOrder: 1,
	}
	f.Legacy = &entities.VendorCategory{
		ID:        "cat-legacy",
		Name:      "Legacy Hardware",
		Slug:      "legacy-hardware",
		Status:    entities.CategoryInactive,
		SortOrder: 2,
	}
	for _, c := range []*entities.VendorCategory{f.Office, f.Legacy} {
		if err := store.Categories().SaveCategory(context.Background(), c); err != nil {
			panic(err)
		}
	}
	return f
}

func mustUser(store *memory.Store, id, name, email string, role entities.Role) *entities.User {
	user := &entities.User{ID: id, Name: name, Email: email, Roles: []entities.Role{role}}
	if err := store.Users().SaveUser(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

// Money parses a decimal literal, panicking on malformed input.
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
