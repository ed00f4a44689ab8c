package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
	domainsvc "github.com/vsinha/procure/pkg/domain/services"
	"github.com/vsinha/procure/pkg/infrastructure/events"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
)

// InvoiceService reviews vendor invoices and records payments against them.
type InvoiceService struct {
	workflow
}

// NewInvoiceService creates the invoice and payment service.
func NewInvoiceService(deps Deps) *InvoiceService {
	return &InvoiceService{workflow: newWorkflow(deps, "invoice")}
}

// SubmitInvoice records a vendor's invoice and notifies finance.
func (s *InvoiceService) SubmitInvoice(ctx context.Context, actor *entities.User, input dto.SubmitInvoiceInput) (*entities.Invoice, error) {
	number := strings.TrimSpace(input.Number)
	verr := entities.NewValidationError()
	if input.VendorID == "" {
		verr.Add("vendor_id", "is required")
	}
	if number == "" {
		verr.Add("invoice_number", "is required")
	}
	tooLong(verr, "invoice_number", number, 100)
	if !input.Amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	}
	if input.InvoiceDate.IsZero() {
		verr.Add("invoice_date", "is required")
	}
	if input.DueDate.IsZero() {
		verr.Add("due_date", "is required")
	}
	if !input.InvoiceDate.IsZero() && !input.DueDate.IsZero() && entities.Day(input.DueDate).Before(entities.Day(input.InvoiceDate)) {
		verr.Add("due_date", "must be on or after invoice_date")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var invoice *entities.Invoice
	err := s.run(ctx, "invoice.submit", actor, func(tx repositories.Store, fx *effects) error {
		vendor, err := tx.Vendors().GetVendor(ctx, input.VendorID)
		if err != nil {
			return err
		}
		if err := authorizeVendorOrStaff(actor, vendor, entities.PermManageInvoices); err != nil {
			return err
		}
		_, err = tx.Invoices().GetInvoiceByNumber(ctx, vendor.ID, number)
		duplicate, err := exists(err)
		if err != nil {
			return err
		}
		if duplicate {
			verr := entities.NewValidationError()
			verr.Add("invoice_number", "has already been submitted")
			return verr
		}
		if input.PurchaseOrderID != "" {
			po, err := tx.PurchaseOrders().GetPurchaseOrder(ctx, input.PurchaseOrderID)
			if err != nil {
				return err
			}
			if po.VendorID != vendor.ID {
				verr := entities.NewValidationError()
				verr.Add("purchase_order_id", "belongs to another vendor")
				return verr
			}
		}

		invoice = &entities.Invoice{
			ID:              entities.NewID(),
			Number:          number,
			VendorID:        vendor.ID,
			PurchaseOrderID: input.PurchaseOrderID,
			Amount:          input.Amount,
			Status:          entities.InvoiceSubmitted,
			InvoiceDate:     entities.Day(input.InvoiceDate),
			DueDate:         entities.Day(input.DueDate),
			SubmittedAt:     s.now(),
			Notes:           input.Notes,
		}
		if err := tx.Invoices().SaveInvoice(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		finance, err := tx.Users().ListUsersByRole(ctx, entities.RoleFinanceOfficer)
		if err != nil {
			return fmt.Errorf("failed to list finance officers: %w", err)
		}
		recipients := emailsOf(finance)
		for _, email := range s.opts.FinanceEmails {
			if !slices.Contains(recipients, email) {
				recipients = append(recipients, email)
			}
		}

		fx.record(events.InvoiceSubmittedEvent, "invoice", invoice.ID, events.DocumentCreated{
			Number:   invoice.Number,
			VendorID: vendor.ID,
			Amount:   invoice.Amount,
		})
		fx.notify(notifications.Message{
			Template: notifications.InvoiceSubmitted,
			To:       recipients,
			Subject:  fmt.Sprintf("Invoice %s from %s", invoice.Number, vendor.CompanyName),
			Data: map[string]string{
				"invoice_id":     invoice.ID,
				"invoice_number": invoice.Number,
				"amount":         invoice.Amount.StringFixed(2),
				"due_date":       invoice.DueDate.Format("2006-01-02"),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice submitted",
		zap.String("invoice", invoice.Number),
		zap.String("vendor", invoice.VendorID),
		zap.String("amount", invoice.Amount.StringFixed(2)))
	return invoice, nil
}

// GetInvoice returns an invoice the actor may see.
func (s *InvoiceService) GetInvoice(ctx context.Context, actor *entities.User, invoiceID string) (*entities.Invoice, error) {
	invoice, err := s.store.Invoices().GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	vendor, err := s.store.Vendors().GetVendor(ctx, invoice.VendorID)
	if err != nil {
		return nil, err
	}
	if err := authorizeVendorOrStaff(actor, vendor, entities.PermManageInvoices); err != nil {
		return nil, err
	}
	return invoice, nil
}

// transition loads an invoice, checks the actor and applies change.
func (s *InvoiceService) transition(
	ctx context.Context,
	op string,
	actor *entities.User,
	invoiceID, eventType, reason string,
	allowVendor bool,
	change func(tx repositories.Store, inv *entities.Invoice, fx *effects) error,
) (*entities.Invoice, error) {
	var invoice *entities.Invoice
	err := s.run(ctx, op, actor, func(tx repositories.Store, fx *effects) error {
		inv, err := tx.Invoices().GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		if allowVendor {
			vendor, err := tx.Vendors().GetVendor(ctx, inv.VendorID)
			if err != nil {
				return err
			}
			if err := authorizeVendorOrStaff(actor, vendor, entities.PermManageInvoices); err != nil {
				return err
			}
		} else if err := authorize(actor, entities.PermManageInvoices); err != nil {
			return err
		}

		from := inv.Status
		if err := change(tx, inv, fx); err != nil {
			return err
		}
		if err := tx.Invoices().SaveInvoice(ctx, inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		invoice = inv
		fx.record(eventType, "invoice", inv.ID, events.StatusChanged{From: string(from), To: string(inv.Status), Reason: reason})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice status changed", zap.String("invoice", invoice.Number), zap.String("status", string(invoice.Status)))
	return invoice, nil
}

// StartReview moves a submitted invoice under review.
func (s *InvoiceService) StartReview(ctx context.Context, actor *entities.User, invoiceID string) (*entities.Invoice, error) {
	return s.transition(ctx, "invoice.start_review", actor, invoiceID, events.InvoiceReviewStartedEvent, "", false,
		func(_ repositories.Store, inv *entities.Invoice, _ *effects) error {
			return inv.StartReview()
		})
}

// ApproveInvoice accepts an invoice for payment and tells the vendor. With
// auto scheduling on, a payment is scheduled for the due date.
func (s *InvoiceService) ApproveInvoice(ctx context.Context, actor *entities.User, invoiceID string) (*entities.Invoice, error) {
	return s.transition(ctx, "invoice.approve", actor, invoiceID, events.InvoiceApprovedEvent, "", false,
		func(tx repositories.Store, inv *entities.Invoice, fx *effects) error {
			if err := inv.Approve(actor.ID, s.now()); err != nil {
				return err
			}
			fx.notify(notifications.Message{
				Template: notifications.InvoiceApproved,
				To:       vendorEmail(ctx, tx, inv.VendorID),
				Subject:  "Invoice " + inv.Number + " approved",
				Data: map[string]string{
					"invoice_number": inv.Number,
					"amount":         inv.Amount.StringFixed(2),
					"due_date":       inv.DueDate.Format("2006-01-02"),
				},
			})
			if s.opts.AutoSchedulePayment {
				fx.record(events.PaymentScheduledEvent, "invoice", inv.ID, events.PaymentScheduled{
					InvoiceID: inv.ID,
					Amount:    inv.Amount,
					DueDate:   inv.DueDate,
				})
			}
			return nil
		})
}

// RejectInvoice refuses an invoice. A reason is required.
func (s *InvoiceService) RejectInvoice(ctx context.Context, actor *entities.User, invoiceID, reason string) (*entities.Invoice, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		verr := entities.NewValidationError()
		verr.Add("reason", "is required")
		return nil, verr
	}
	return s.transition(ctx, "invoice.reject", actor, invoiceID, events.InvoiceRejectedEvent, reason, false,
		func(tx repositories.Store, inv *entities.Invoice, fx *effects) error {
			if err := inv.Reject(actor.ID, reason, s.now()); err != nil {
				return err
			}
			fx.notify(notifications.Message{
				Template: notifications.InvoiceRejected,
				To:       vendorEmail(ctx, tx, inv.VendorID),
				Subject:  "Invoice " + inv.Number + " rejected",
				Data:     map[string]string{"invoice_number": inv.Number, "reason": reason},
			})
			return nil
		})
}

// MarkDisputed flags a disagreement over an invoice. The vendor may raise it too.
func (s *InvoiceService) MarkDisputed(ctx context.Context, actor *entities.User, invoiceID, reason string) (*entities.Invoice, error) {
	return s.transition(ctx, "invoice.dispute", actor, invoiceID, events.InvoiceDisputedEvent, reason, true,
		func(_ repositories.Store, inv *entities.Invoice, _ *effects) error {
			return inv.Dispute(reason)
		})
}

// ResolveDispute returns a disputed invoice to approved.
func (s *InvoiceService) ResolveDispute(ctx context.Context, actor *entities.User, invoiceID string) (*entities.Invoice, error) {
	return s.transition(ctx, "invoice.resolve_dispute", actor, invoiceID, events.InvoiceDisputeResolvedEvent, "", false,
		func(_ repositories.Store, inv *entities.Invoice, _ *effects) error {
			return inv.ResolveDispute()
		})
}

// ProcessPayment records a full or partial payment on an approved invoice.
// Payments never exceed the remaining balance; the invoice is marked paid once
// settled.
func (s *InvoiceService) ProcessPayment(ctx context.Context, actor *entities.User, invoiceID string, input dto.PaymentInput) (*dto.PaymentResult, error) {
	if err := authorize(actor, entities.PermProcessPayments); err != nil {
		return nil, err
	}
	method := entities.PaymentMethod(input.Method)
	if method == "" {
		method = entities.MethodBankTransfer
	}
	verr := entities.NewValidationError()
	if !input.Amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	}
	if !method.Valid() {
		verr.Add("method", "is not a supported payment method")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var result *dto.PaymentResult
	err := s.run(ctx, "invoice.process_payment", actor, func(tx repositories.Store, fx *effects) error {
		inv, err := tx.Invoices().GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status != entities.InvoiceApproved {
			return &entities.TransitionError{Entity: "invoice", From: string(inv.Status), To: "payment"}
		}
		payments, err := tx.Payments().ListPaymentsByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		remaining := inv.RemainingBalance(payments)
		if input.Amount.GreaterThan(remaining) {
			return fmt.Errorf("payment of %s with %s outstanding on invoice %s: %w",
				input.Amount.StringFixed(2), remaining.StringFixed(2), inv.Number, entities.ErrOverpayment)
		}

		now := s.now()
		reference, err := nextNumber(ctx, tx, domainsvc.DocPayment, now.Year())
		if err != nil {
			return err
		}
		paidDate := s.today()
		if input.PaidDate != nil {
			paidDate = entities.Day(*input.PaidDate)
		}
		payment := &entities.Payment{
			ID:          entities.NewID(),
			InvoiceID:   inv.ID,
			Reference:   reference,
			Amount:      input.Amount,
			Method:      method,
			PaidDate:    paidDate,
			ProcessedBy: actor.ID,
			Notes:       input.Notes,
			BankDetails: input.BankDetails,
			CreatedAt:   now,
		}
		if err := tx.Payments().SavePayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		payments = append(payments, payment)

		totalPaid := entities.TotalPaid(payments)
		if totalPaid.GreaterThanOrEqual(inv.Amount) {
			if err := inv.MarkPaid(); err != nil {
				return err
			}
			if err := tx.Invoices().SaveInvoice(ctx, inv); err != nil {
				return fmt.Errorf("failed to save invoice: %w", err)
			}
			fx.record(events.InvoicePaidEvent, "invoice", inv.ID, events.StatusChanged{
				From: string(entities.InvoiceApproved),
				To:   string(inv.Status),
			})
		}

		result = &dto.PaymentResult{
			Payment: payment,
			Invoice: inv,
			Balance: balanceOf(inv, payments),
		}
		fx.record(events.PaymentProcessedEvent, "invoice", inv.ID, events.PaymentProcessed{
			PaymentID: payment.ID,
			Reference: payment.Reference,
			Amount:    payment.Amount,
			Remaining: result.Balance.Remaining,
		})
		fx.notify(notifications.Message{
			Template: notifications.PaymentProcessed,
			To:       vendorEmail(ctx, tx, inv.VendorID),
			Subject:  "Payment " + payment.Reference + " processed",
			Data: map[string]string{
				"invoice_number":    inv.Number,
				"payment_reference": payment.Reference,
				"amount":            payment.Amount.StringFixed(2),
				"remaining":         result.Balance.Remaining.StringFixed(2),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment processed",
		zap.String("invoice", result.Invoice.Number),
		zap.String("payment", result.Payment.Reference),
		zap.String("remaining", result.Balance.Remaining.StringFixed(2)))
	return result, nil
}

func balanceOf(inv *entities.Invoice, payments []*entities.Payment) dto.InvoiceBalance {
	return dto.InvoiceBalance{
		InvoiceID: inv.ID,
		Amount:    inv.Amount,
		TotalPaid: entities.TotalPaid(payments),
		Remaining: inv.RemainingBalance(payments),
		Payments:  len(payments),
	}
}

// Balance reports what has been paid against an invoice and what remains.
func (s *InvoiceService) Balance(ctx context.Context, invoiceID string) (*dto.InvoiceBalance, error) {
	inv, err := s.store.Invoices().GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().ListPaymentsByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	b := balanceOf(inv, payments)
	return &b, nil
}

// OverdueInvoices lists open invoices past their due date, oldest first.
func (s *InvoiceService) OverdueInvoices(ctx context.Context) ([]*entities.Invoice, error) {
	today := s.today()
	var overdue []*entities.Invoice
	err := s.read(ctx, "invoice.overdue", func(ctx context.Context) error {
		all, err := s.store.Invoices().ListInvoices(ctx, repositories.InvoiceFilter{})
		if err != nil {
			return err
		}
		for _, inv := range all {
			if inv.IsOverdue(today) {
				overdue = append(overdue, inv)
			}
		}
		return nil
	})
	sortByDueDate(overdue)
	return overdue, err
}

// InvoicesDueSoon lists approved invoices due between today and days from now.
// A non-positive days uses the configured window.
func (s *InvoiceService) InvoicesDueSoon(ctx context.Context, days int) ([]*entities.Invoice, error) {
	if days <= 0 {
		days = s.opts.InvoiceDueSoonDays
	}
	today := s.today()
	horizon := entities.AddDays(today, days)
	var due []*entities.Invoice
	err := s.read(ctx, "invoice.due_soon", func(ctx context.Context) error {
		approved, err := s.store.Invoices().ListInvoices(ctx, repositories.InvoiceFilter{
			Statuses: []entities.InvoiceStatus{entities.InvoiceApproved},
		})
		if err != nil {
			return err
		}
		for _, inv := range approved {
			if !inv.DueDate.Before(today) && !inv.DueDate.After(horizon) {
				due = append(due, inv)
			}
		}
		return nil
	})
	sortByDueDate(due)
	return due, err
}

func sortByDueDate(invoices []*entities.Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].DueDate.Before(invoices[j].DueDate)
	})
}
