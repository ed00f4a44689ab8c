package repositories

import "context"

// SequenceRepository hands out per-kind, per-year document counters.
type SequenceRepository interface {
	// Next returns the next value for (kind, year), starting at 1.
	Next(ctx context.Context, kind string, year int) (int, error)
}

// Store groups every repository behind one transactional boundary.
type Store interface {
	Users() UserRepository
	Categories() CategoryRepository
	Vendors() VendorRepository
	Reviews() ReviewRepository
	Warnings() WarningRepository
	RFQs() RFQRepository
	Responses() ResponseRepository
	Evaluations() EvaluationRepository
	Contracts() ContractRepository
	Renewals() RenewalRepository
	PurchaseOrders() PurchaseOrderRepository
	Invoices() InvoiceRepository
	Payments() PaymentRepository
	Sequences() SequenceRepository

	// Transact runs fn against a transactional view of the store. Every write
	// made through tx commits together when fn returns nil and is discarded
	// otherwise. Calling Transact on tx runs fn in the same transaction.
	Transact(ctx context.Context, fn func(tx Store) error) error
}
