package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
)

const dateLayout = "2006-01-02"

// Store is a repositories.Store backed by a SQLite database file.
type Store struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

// Open creates or opens the database at path and ensures the schema exists.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers; one connection also keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return &Store{db: db, q: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Transact implements repositories.Store using a database transaction.
func (s *Store) Transact(ctx context.Context, fn func(tx repositories.Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Store{db: s.db, q: tx, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Users() repositories.UserRepository { return userRepository{s.q} }

func (s *Store) Categories() repositories.CategoryRepository { return categoryRepository{s.q} }

func (s *Store) Vendors() repositories.VendorRepository { return vendorRepository{s.q} }

func (s *Store) Reviews() repositories.ReviewRepository { return reviewRepository{s.q} }

func (s *Store) Warnings() repositories.WarningRepository { return warningRepository{s.q} }

func (s *Store) RFQs() repositories.RFQRepository { return rfqRepository{s.q} }

func (s *Store) Responses() repositories.ResponseRepository { return responseRepository{s.q} }

func (s *Store) Evaluations() repositories.EvaluationRepository { return evaluationRepository{s.q} }

func (s *Store) Contracts() repositories.ContractRepository { return contractRepository{s.q} }

func (s *Store) Renewals() repositories.RenewalRepository { return renewalRepository{s.q} }

func (s *Store) PurchaseOrders() repositories.PurchaseOrderRepository {
	return purchaseOrderRepository{s.q}
}

func (s *Store) Invoices() repositories.InvoiceRepository { return invoiceRepository{s.q} }

func (s *Store) Payments() repositories.PaymentRepository { return paymentRepository{s.q} }

func (s *Store) Sequences() repositories.SequenceRepository { return sequenceRepository{s.q} }

type sequenceRepository struct{ q querier }

func (r sequenceRepository) Next(ctx context.Context, kind string, year int) (int, error) {
	var next int
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO sequences (kind, year, value) VALUES (?, ?, 1)
		ON CONFLICT(kind, year) DO UPDATE SET value = value + 1
		RETURNING value`, kind, year).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s/%d: %w", kind, year, err)
	}
	return next, nil
}

var (
	users = table[entities.User]{
		name: "users", entity: "user", columns: []string{"email"},
		values: func(u *entities.User) []any { return []any{u.ID, nullable(strings.ToLower(u.Email))} },
	}
	categories = table[entities.VendorCategory]{
		name: "vendor_categories", entity: "vendor category", columns: []string{"slug", "status"},
		values: func(c *entities.VendorCategory) []any { return []any{c.ID, nullable(c.Slug), string(c.Status)} },
	}
	vendors = table[entities.Vendor]{
		name: "vendors", entity: "vendor",
		columns: []string{"slug", "company_name", "contact_email", "tax_id", "category_id", "status"},
		values: func(v *entities.Vendor) []any {
			return []any{
				v.ID, nullable(v.Slug), nullable(strings.ToLower(v.CompanyName)),
				nullable(strings.ToLower(v.ContactEmail)), nullable(v.TaxID), v.CategoryID, string(v.Status),
			}
		},
	}
	reviews = table[entities.VendorReview]{
		name: "vendor_reviews", entity: "vendor review", columns: []string{"vendor_id"},
		values: func(r *entities.VendorReview) []any { return []any{r.ID, r.VendorID} },
	}
	warnings = table[entities.VendorWarning]{
		name: "vendor_warnings", entity: "vendor warning", columns: []string{"vendor_id"},
		values: func(w *entities.VendorWarning) []any { return []any{w.ID, w.VendorID} },
	}
	rfqs = table[entities.RFQ]{
		name: "rfqs", entity: "rfq", columns: []string{"slug", "status"},
		values: func(r *entities.RFQ) []any { return []any{r.ID, nullable(r.Slug), string(r.Status)} },
	}
	responses = table[entities.RFQResponse]{
		name: "rfq_responses", entity: "rfq response", columns: []string{"rfq_id", "vendor_id", "status"},
		values: func(r *entities.RFQResponse) []any { return []any{r.ID, r.RFQID, r.VendorID, string(r.Status)} },
	}
	evaluations = table[entities.RFQEvaluation]{
		name: "rfq_evaluations", entity: "rfq evaluation", columns: []string{"response_id"},
		values: func(e *entities.RFQEvaluation) []any { return []any{e.ID, e.ResponseID} },
	}
	contracts = table[entities.Contract]{
		name: "contracts", entity: "contract", columns: []string{"contract_number", "vendor_id", "status", "end_date"},
		values: func(c *entities.Contract) []any {
			return []any{c.ID, nullable(c.Number), c.VendorID, string(c.Status), c.EndDate.Format(dateLayout)}
		},
	}
	renewals = table[entities.ContractRenewal]{
		name: "contract_renewals", entity: "contract renewal", columns: []string{"contract_id"},
		values: func(r *entities.ContractRenewal) []any { return []any{r.ID, r.ContractID} },
	}
	orders = table[entities.PurchaseOrder]{
		name: "purchase_orders", entity: "purchase order", columns: []string{"po_number", "vendor_id", "status"},
		values: func(po *entities.PurchaseOrder) []any {
			return []any{po.ID, nullable(po.Number), po.VendorID, string(po.Status)}
		},
	}
	invoices = table[entities.Invoice]{
		name: "invoices", entity: "invoice", columns: []string{"vendor_id", "invoice_number", "status", "due_date"},
		values: func(inv *entities.Invoice) []any {
			return []any{inv.ID, inv.VendorID, inv.Number, string(inv.Status), inv.DueDate.Format(dateLayout)}
		},
	}
	payments = table[entities.Payment]{
		name: "payments", entity: "payment", columns: []string{"invoice_id", "payment_reference"},
		values: func(p *entities.Payment) []any { return []any{p.ID, p.InvoiceID, nullable(p.Reference)} },
	}
)
