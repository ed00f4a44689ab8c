package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of a vendor invoice.
type InvoiceStatus string

const (
	InvoiceSubmitted   InvoiceStatus = "submitted"
	InvoiceUnderReview InvoiceStatus = "under_review"
	InvoiceApproved    InvoiceStatus = "approved"
	InvoiceRejected    InvoiceStatus = "rejected"
	InvoicePaid        InvoiceStatus = "paid"
	InvoiceDisputed    InvoiceStatus = "disputed"
)

var invoiceTransitions = transitions[InvoiceStatus]{
	InvoiceSubmitted:   {InvoiceUnderReview, InvoiceApproved, InvoiceRejected, InvoiceDisputed},
	InvoiceUnderReview: {InvoiceApproved, InvoiceRejected, InvoiceDisputed},
	InvoiceApproved:    {InvoicePaid, InvoiceDisputed},
	InvoiceDisputed:    {InvoiceApproved},
}

// Invoice is a vendor's bill, optionally against a purchase order.
type Invoice struct {
	ID              string          `json:"id"`
	Number          string          `json:"invoice_number"`
	VendorID        string          `json:"vendor_id"`
	PurchaseOrderID string          `json:"purchase_order_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Status          InvoiceStatus   `json:"status"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	DueDate         time.Time       `json:"due_date"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// IsOverdue reports whether the invoice is past due and still open.
func (inv *Invoice) IsOverdue(today time.Time) bool {
	if inv.Status == InvoicePaid || inv.Status == InvoiceRejected {
		return false
	}
	return inv.DueDate.Before(Day(today))
}

// StatusColor maps the status to a badge colour for listings.
func (inv *Invoice) StatusColor() string {
	switch inv.Status {
	case InvoiceSubmitted:
		return "warning"
	case InvoiceUnderReview:
		return "info"
	case InvoiceApproved:
		return "success"
	case InvoiceRejected, InvoiceDisputed:
		return "danger"
	case InvoicePaid:
		return "primary"
	default:
		return "gray"
	}
}

// StartReview moves a submitted invoice under review.
func (inv *Invoice) StartReview() error {
	return move("invoice", invoiceTransitions, &inv.Status, InvoiceUnderReview)
}

// Approve accepts the invoice for payment.
func (inv *Invoice) Approve(approverID string, now time.Time) error {
	if inv.Status == InvoiceDisputed {
		return transitionError("invoice", inv.Status, InvoiceApproved)
	}
	if err := move("invoice", invoiceTransitions, &inv.Status, InvoiceApproved); err != nil {
		return err
	}
	inv.ApprovedAt = &now
	inv.ApprovedBy = approverID
	return nil
}

// Reject refuses the invoice.
func (inv *Invoice) Reject(rejectorID, reason string, now time.Time) error {
	if err := move("invoice", invoiceTransitions, &inv.Status, InvoiceRejected); err != nil {
		return err
	}
	inv.ApprovedAt = &now
	inv.ApprovedBy = rejectorID
	inv.RejectionReason = reason
	return nil
}

// Dispute flags a disagreement over the invoice.
func (inv *Invoice) Dispute(reason string) error {
	if err := move("invoice", invoiceTransitions, &inv.Status, InvoiceDisputed); err != nil {
		return err
	}
	inv.RejectionReason = reason
	return nil
}

// ResolveDispute returns a disputed invoice to approved.
func (inv *Invoice) ResolveDispute() error {
	if inv.Status != InvoiceDisputed {
		return transitionError("invoice", inv.Status, InvoiceApproved)
	}
	if err := move("invoice", invoiceTransitions, &inv.Status, InvoiceApproved); err != nil {
		return err
	}
	inv.RejectionReason = ""
	return nil
}

// MarkPaid settles the invoice.
func (inv *Invoice) MarkPaid() error {
	return move("invoice", invoiceTransitions, &inv.Status, InvoicePaid)
}

// PaymentMethod is how funds were sent.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheque       PaymentMethod = "cheque"
	MethodCard         PaymentMethod = "card"
	MethodACH          PaymentMethod = "ach"
	MethodWire         PaymentMethod = "wire"
)

// Valid reports whether m is a known method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodCheque, MethodCard, MethodACH, MethodWire:
		return true
	}
	return false
}

// Payment is money paid against an invoice. Several partial payments may settle one invoice.
type Payment struct {
	ID          string            `json:"id"`
	InvoiceID   string            `json:"invoice_id"`
	Reference   string            `json:"payment_reference"`
	Amount      decimal.Decimal   `json:"amount"`
	Method      PaymentMethod     `json:"method"`
	PaidDate    time.Time         `json:"paid_date"`
	ProcessedBy string            `json:"processed_by"`
	Notes       string            `json:"notes,omitempty"`
	BankDetails map[string]string `json:"bank_details,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TotalPaid sums payments.
func TotalPaid(payments []*Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// RemainingBalance is the unpaid part of the invoice given its payments.
func (inv *Invoice) RemainingBalance(payments []*Payment) decimal.Decimal {
	return inv.Amount.Sub(TotalPaid(payments))
}
