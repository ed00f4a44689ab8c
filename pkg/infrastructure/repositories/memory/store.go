package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
)

type database struct {
	users       *collection[entities.User]
	categories  *collection[entities.VendorCategory]
	vendors     *collection[entities.Vendor]
	reviews     *collection[entities.VendorReview]
	warnings    *collection[entities.VendorWarning]
	rfqs        *collection[entities.RFQ]
	responses   *collection[entities.RFQResponse]
	evaluations *collection[entities.RFQEvaluation]
	contracts   *collection[entities.Contract]
	renewals    *collection[entities.ContractRenewal]
	orders      *collection[entities.PurchaseOrder]
	invoices    *collection[entities.Invoice]
	payments    *collection[entities.Payment]
	sequences   map[string]int
}

// Unique index positions used with collection.lookup.
const (
	vendorBySlug = iota
	vendorByCompany
	vendorByEmail
	vendorByTaxID
)

func newDatabase() *database {
	return &database{
		users: newCollection("user",
			func(u *entities.User) string { return u.ID },
			func(u *entities.User) string { return strings.ToLower(u.Email) }),
		categories: newCollection("vendor category",
			func(c *entities.VendorCategory) string { return c.ID },
			func(c *entities.VendorCategory) string { return c.Slug }),
		vendors: newCollection("vendor",
			func(v *entities.Vendor) string { return v.ID },
			func(v *entities.Vendor) string { return v.Slug },
			func(v *entities.Vendor) string { return strings.ToLower(v.CompanyName) },
			func(v *entities.Vendor) string { return strings.ToLower(v.ContactEmail) },
			func(v *entities.Vendor) string { return v.TaxID }),
		reviews: newCollection("vendor review",
			func(r *entities.VendorReview) string { return r.ID }),
		warnings: newCollection("vendor warning",
			func(w *entities.VendorWarning) string { return w.ID }),
		rfqs: newCollection("rfq",
			func(r *entities.RFQ) string { return r.ID },
			func(r *entities.RFQ) string { return r.Slug }),
		responses: newCollection("rfq response",
			func(r *entities.RFQResponse) string { return r.ID },
			func(r *entities.RFQResponse) string { return r.RFQID + "/" + r.VendorID }),
		evaluations: newCollection("rfq evaluation",
			func(e *entities.RFQEvaluation) string { return e.ID }),
		contracts: newCollection("contract",
			func(c *entities.Contract) string { return c.ID },
			func(c *entities.Contract) string { return c.Number }),
		renewals: newCollection("contract renewal",
			func(r *entities.ContractRenewal) string { return r.ID }),
		orders: newCollection("purchase order",
			func(po *entities.PurchaseOrder) string { return po.ID },
			func(po *entities.PurchaseOrder) string { return po.Number }),
		invoices: newCollection("invoice",
			func(inv *entities.Invoice) string { return inv.ID },
			func(inv *entities.Invoice) string { return inv.VendorID + "/" + inv.Number }),
		payments: newCollection("payment",
			func(p *entities.Payment) string { return p.ID },
			func(p *entities.Payment) string { return p.Reference }),
		sequences: make(map[string]int),
	}
}

func (d *database) clone() *database {
	seqs := make(map[string]int, len(d.sequences))
	for k, v := range d.sequences {
		seqs[k] = v
	}
	return &database{
		users:       d.users.clone(),
		categories:  d.categories.clone(),
		vendors:     d.vendors.clone(),
		reviews:     d.reviews.clone(),
		warnings:    d.warnings.clone(),
		rfqs:        d.rfqs.clone(),
		responses:   d.responses.clone(),
		evaluations: d.evaluations.clone(),
		contracts:   d.contracts.clone(),
		renewals:    d.renewals.clone(),
		orders:      d.orders.clone(),
		invoices:    d.invoices.clone(),
		payments:    d.payments.clone(),
		sequences:   seqs,
	}
}

type shared struct {
	mu sync.RWMutex
	db *database
}

// Store is an in-memory repositories.Store. Transactions hold the write lock
// for their whole duration and restore a snapshot when they fail.
type Store struct {
	shared *shared
	inTx   bool
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{shared: &shared{db: newDatabase()}}
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

func (s *Store) read(fn func(db *database) error) error {
	if !s.inTx {
		s.shared.mu.RLock()
		defer s.shared.mu.RUnlock()
	}
	return fn(s.shared.db)
}

func (s *Store) write(fn func(db *database) error) error {
	if !s.inTx {
		s.shared.mu.Lock()
		defer s.shared.mu.Unlock()
	}
	return fn(s.shared.db)
}

// Transact implements repositories.Store.
func (s *Store) Transact(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	snapshot := s.shared.db.clone()
	tx := &Store{shared: s.shared, inTx: true}
	if err := fn(tx); err != nil {
		s.shared.db = snapshot
		return err
	}
	return nil
}

func (s *Store) Users() repositories.UserRepository { return userRepository{s} }

func (s *Store) Categories() repositories.CategoryRepository { return categoryRepository{s} }

func (s *Store) Vendors() repositories.VendorRepository { return vendorRepository{s} }

func (s *Store) Reviews() repositories.ReviewRepository { return reviewRepository{s} }

func (s *Store) Warnings() repositories.WarningRepository { return warningRepository{s} }

func (s *Store) RFQs() repositories.RFQRepository { return rfqRepository{s} }

func (s *Store) Responses() repositories.ResponseRepository { return responseRepository{s} }

func (s *Store) Evaluations() repositories.EvaluationRepository { return evaluationRepository{s} }

func (s *Store) Contracts() repositories.ContractRepository { return contractRepository{s} }

func (s *Store) Renewals() repositories.RenewalRepository { return renewalRepository{s} }

func (s *Store) PurchaseOrders() repositories.PurchaseOrderRepository {
	return purchaseOrderRepository{s}
}

func (s *Store) Invoices() repositories.InvoiceRepository { return invoiceRepository{s} }

func (s *Store) Payments() repositories.PaymentRepository { return paymentRepository{s} }

func (s *Store) Sequences() repositories.SequenceRepository { return sequenceRepository{s} }

type sequenceRepository struct{ s *Store }

func (r sequenceRepository) Next(_ context.Context, kind string, year int) (int, error) {
	var next int
	err := r.s.write(func(db *database) error {
		key := fmt.Sprintf("%s:%d", kind, year)
		db.sequences[key]++
		next = db.sequences[key]
		return nil
	})
	return next, err
}
