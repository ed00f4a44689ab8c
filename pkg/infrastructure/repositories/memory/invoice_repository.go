package memory

import (
	"context"

	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
)

type invoiceRepository struct{ s *Store }

var _ repositories.InvoiceRepository = invoiceRepository{}

func (r invoiceRepository) GetInvoice(_ context.Context, id string) (inv *entities.Invoice, err error) {
	err = r.s.read(func(db *database) error {
		inv, err = db.invoices.get(id)
		return err
	})
	return inv, err
}

func (r invoiceRepository) GetInvoiceByNumber(_ context.Context, vendorID, number string) (inv *entities.Invoice, err error) {
	err = r.s.read(func(db *database) error {
		inv, err = db.invoices.lookup(0, vendorID+"/"+number)
		return err
	})
	return inv, err
}

func (r invoiceRepository) ListInvoices(_ context.Context, filter repositories.InvoiceFilter) (out []*entities.Invoice, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.invoices.find(func(inv *entities.Invoice) bool {
			return statusIn(filter.Statuses, inv.Status) &&
				(filter.VendorID == "" || inv.VendorID == filter.VendorID)
		})
		return err
	})
	return out, err
}

func (r invoiceRepository) SaveInvoice(_ context.Context, invoice *entities.Invoice) error {
	return r.s.write(func(db *database) error { return db.invoices.put(invoice) })
}

type paymentRepository struct{ s *Store }

var _ repositories.PaymentRepository = paymentRepository{}

func (r paymentRepository) SavePayment(_ context.Context, payment *entities.Payment) error {
	return r.s.write(func(db *database) error { return db.payments.put(payment) })
}

func (r paymentRepository) ListPaymentsByInvoice(_ context.Context, invoiceID string) (out []*entities.Payment, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.payments.find(func(p *entities.Payment) bool { return p.InvoiceID == invoiceID })
		return err
	})
	return out, err
}
