package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
	domainsvc "github.com/vsinha/procure/pkg/domain/services"
)

var (
	categoryHeader = []string{"id", "name", "slug", "description", "status", "sort_order"}
	userHeader     = []string{"id", "name", "email", "roles"}
	vendorHeader   = []string{"id", "company_name", "category_id", "contact_name", "contact_email", "contact_phone", "tax_id", "status", "user_id"}
)

// Loader handles loading seed data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// SeedData is everything a seed run writes.
type SeedData struct {
	Categories []*entities.VendorCategory
	Users      []*entities.User
	Vendors    []*entities.Vendor
}

// LoadCategories loads vendor categories from a CSV file
func (l *Loader) LoadCategories(filename string) ([]*entities.VendorCategory, error) {
	rows, err := readTable(filename, "categories", categoryHeader)
	if err != nil {
		return nil, err
	}

	var categories []*entities.VendorCategory
	for i, record := range rows {
		category, err := parseCategory(record)
		if err != nil {
			return nil, fmt.Errorf("categories CSV row %d: %w", i+2, err)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// LoadUsers loads user accounts from a CSV file. Roles are separated by ';'.
func (l *Loader) LoadUsers(filename string) ([]*entities.User, error) {
	rows, err := readTable(filename, "users", userHeader)
	if err != nil {
		return nil, err
	}

	var users []*entities.User
	for i, record := range rows {
		user, err := parseUser(record)
		if err != nil {
			return nil, fmt.Errorf("users CSV row %d: %w", i+2, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// LoadVendors loads vendors from a CSV file
func (l *Loader) LoadVendors(filename string) ([]*entities.Vendor, error) {
	rows, err := readTable(filename, "vendors", vendorHeader)
	if err != nil {
		return nil, err
	}

	var vendors []*entities.Vendor
	for i, record := range rows {
		vendor, err := parseVendor(record)
		if err != nil {
			return nil, fmt.Errorf("vendors CSV row %d: %w", i+2, err)
		}
		vendors = append(vendors, vendor)
	}
	return vendors, nil
}

// Seed writes data into store in one transaction, categories and users first so
// vendor references resolve.
func Seed(ctx context.Context, store repositories.Store, data *SeedData, now time.Time) error {
	return store.Transact(ctx, func(tx repositories.Store) error {
		for _, c := range data.Categories {
			if err := tx.Categories().SaveCategory(ctx, c); err != nil {
				return fmt.Errorf("failed to seed category %s: %w", c.ID, err)
			}
		}
		for _, u := range data.Users {
			if err := tx.Users().SaveUser(ctx, u); err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
			}
		}
		for _, v := range data.Vendors {
			if _, err := tx.Categories().GetCategory(ctx, v.CategoryID); err != nil {
				return fmt.Errorf("vendor %s: %w", v.ID, err)
			}
			if v.UserID != "" {
				if _, err := tx.Users().GetUser(ctx, v.UserID); err != nil {
					return fmt.Errorf("vendor %s: %w", v.ID, err)
				}
			}
			v.CreatedAt = now
			v.UpdatedAt = now
			if err := tx.Vendors().SaveVendor(ctx, v); err != nil {
				return fmt.Errorf("failed to seed vendor %s: %w", v.CompanyName, err)
			}
		}
		return nil
	})
}

func readTable(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseCategory(record []string) (*entities.VendorCategory, error) {
	name := strings.TrimSpace(record[1])
	if record[0] == "" || name == "" {
		return nil, fmt.Errorf("id and name are required")
	}

	slug := strings.TrimSpace(record[2])
	if slug == "" {
		slug = domainsvc.Slugify(name)
	}

	status := entities.CategoryStatus(strings.ToLower(strings.TrimSpace(record[4])))
	switch status {
	case "":
		status = entities.CategoryActive
	case entities.CategoryActive, entities.CategoryInactive:
	default:
		return nil, fmt.Errorf("invalid status: %s", record[4])
	}

	sortOrder := 0
	if s := strings.TrimSpace(record[5]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid sort_order: %s", s)
		}
		sortOrder = n
	}

	return &entities.VendorCategory{
		ID:          record[0],
		Name:        name,
		Slug:        slug,
		Description: record[3],
		Status:      status,
		SortOrder:   sortOrder,
	}, nil
}

func parseUser(record []string) (*entities.User, error) {
	if record[0] == "" || record[2] == "" {
		return nil, fmt.Errorf("id and email are required")
	}

	user := &entities.User{
		ID:    record[0],
		Name:  strings.TrimSpace(record[1]),
		Email: strings.TrimSpace(record[2]),
	}
	for _, name := range strings.Split(record[3], ";") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		role, ok := entities.ParseRole(name)
		if !ok {
			return nil, fmt.Errorf("unknown role: %s", name)
		}
		user.AssignRole(role)
	}
	return user, nil
}

func parseVendor(record []string) (*entities.Vendor, error) {
	companyName := strings.TrimSpace(record[1])
	if record[0] == "" || companyName == "" {
		return nil, fmt.Errorf("id and company_name are required")
	}
	if record[2] == "" {
		return nil, fmt.Errorf("category_id is required")
	}

	status := entities.VendorStatus(strings.ToLower(strings.TrimSpace(record[7])))
	switch status {
	case "":
		status = entities.VendorPending
	case entities.VendorPending, entities.VendorActive, entities.VendorSuspended, entities.VendorBlacklisted:
	default:
		return nil, fmt.Errorf("invalid status: %s", record[7])
	}

	return &entities.Vendor{
		ID:            record[0],
		UserID:        record[8],
		CompanyName:   companyName,
		Slug:          domainsvc.Slugify(companyName),
		CategoryID:    record[2],
		ContactName:   strings.TrimSpace(record[3]),
		ContactEmail:  strings.TrimSpace(record[4]),
		ContactPhone:  strings.TrimSpace(record[5]),
		TaxID:         strings.TrimSpace(record[6]),
		Status:        status,
		RatingAverage: decimal.Zero,
	}, nil
}
