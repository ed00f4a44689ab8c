package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	VendorCreatedEvent         = "vendor.created"
	VendorSelfRegisteredEvent  = "vendor.self_registered"
	VendorUpdatedEvent         = "vendor.updated"
	VendorApprovedEvent        = "vendor.approved"
	VendorSuspendedEvent       = "vendor.suspended"
	VendorReinstatedEvent      = "vendor.reinstated"
	VendorBlacklistedEvent     = "vendor.blacklisted"
	VendorReviewedEvent        = "vendor.reviewed"
	VendorWarningIssuedEvent   = "vendor.warning_issued"
	VendorWarningResolvedEvent = "vendor.warning_resolved"

	RFQCreatedEvent           = "rfq.created"
	RFQVendorsInvitedEvent    = "rfq.vendors_invited"
	RFQPublishedEvent         = "rfq.published"
	RFQClosedEvent            = "rfq.closed"
	RFQResponseSubmittedEvent = "rfq.response_submitted"
	RFQResponseWithdrawnEvent = "rfq.response_withdrawn"
	RFQResponseEvaluatedEvent = "rfq.response_evaluated"
	RFQAwardedEvent           = "rfq.awarded"

	ContractCreatedEvent    = "contract.created"
	ContractActivatedEvent  = "contract.activated"
	ContractRenewedEvent    = "contract.renewed"
	ContractTerminatedEvent = "contract.terminated"
	ContractExpiredEvent    = "contract.expired"

	POCreatedEvent      = "po.created"
	POApprovedEvent     = "po.approved"
	POSentEvent         = "po.sent"
	POAcknowledgedEvent = "po.acknowledged"
	PODeliveredEvent    = "po.delivered"
	POCompletedEvent    = "po.completed"
	POCancelledEvent    = "po.cancelled"
	POItemAddedEvent    = "po.item_added"
	POItemRemovedEvent  = "po.item_removed"

	InvoiceSubmittedEvent       = "invoice.submitted"
	InvoiceReviewStartedEvent   = "invoice.review_started"
	InvoiceApprovedEvent        = "invoice.approved"
	InvoiceRejectedEvent        = "invoice.rejected"
	InvoiceDisputedEvent        = "invoice.disputed"
	InvoiceDisputeResolvedEvent = "invoice.dispute_resolved"
	InvoicePaidEvent            = "invoice.paid"

	PaymentProcessedEvent = "payment.processed"
	PaymentScheduledEvent = "payment.scheduled"
)

// StatusChanged is the payload of every plain state transition.
type StatusChanged struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

type VendorUpdated struct {
	Fields []string `json:"fields"`
}

type VendorsInvited struct {
	VendorIDs []string `json:"vendor_ids"`
}

type ResponseEvaluated struct {
	ResponseID   string  `json:"response_id"`
	EvaluationID string  `json:"evaluation_id"`
	Score        float64 `json:"score"`
	TotalScore   float64 `json:"total_score"`
}

type RFQAwarded struct {
	WinningResponseID string   `json:"winning_response_id"`
	VendorID          string   `json:"vendor_id"`
	RejectedResponses []string `json:"rejected_responses,omitempty"`
}

type DocumentCreated struct {
	Number   string          `json:"number"`
	VendorID string          `json:"vendor_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type ContractRenewed struct {
	RenewalID  string          `json:"renewal_id"`
	NewEndDate time.Time       `json:"new_end_date"`
	NewValue   decimal.Decimal `json:"new_value"`
}

type POItemChanged struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"item_name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type PaymentProcessed struct {
	PaymentID string          `json:"payment_id"`
	Reference string          `json:"payment_reference"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
}

type PaymentScheduled struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   time.Time       `json:"due_date"`
}
