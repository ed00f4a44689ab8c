package repositories

import (
	"context"

	"github.com/vsinha/procure/pkg/domain/entities"
)

// InvoiceFilter narrows ListInvoices. Empty Statuses matches any status.
type InvoiceFilter struct {
	Statuses []entities.InvoiceStatus
	VendorID string
}

// InvoiceRepository provides access to invoices. (VendorID, Number) is unique.
type InvoiceRepository interface {
	GetInvoice(ctx context.Context, id string) (*entities.Invoice, error)
	GetInvoiceByNumber(ctx context.Context, vendorID, number string) (*entities.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*entities.Invoice, error)
	SaveInvoice(ctx context.Context, invoice *entities.Invoice) error
}

// PaymentRepository stores payments against invoices
type PaymentRepository interface {
	SavePayment(ctx context.Context, payment *entities.Payment) error
	ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]*entities.Payment, error)
}
