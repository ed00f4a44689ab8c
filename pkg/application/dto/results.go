package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/procure/pkg/domain/entities"
)

// ApprovalResult reports the approved vendor and whether a login was created for it.
type ApprovalResult struct {
	Vendor      *entities.Vendor `json:"vendor"`
	User        *entities.User   `json:"user"`
	UserCreated bool             `json:"user_created"`
}

// AwardResult is the outcome of awarding an RFQ.
type AwardResult struct {
	RFQ       *entities.RFQ           `json:"rfq"`
	Winner    *entities.RFQResponse   `json:"winner"`
	Rejected  []*entities.RFQResponse `json:"rejected"`
	Withdrawn int                     `json:"withdrawn"`
}

type EvaluationResult struct {
	Evaluation *entities.RFQEvaluation `json:"evaluation"`
	Response   *entities.RFQResponse   `json:"response"`
}

type RenewalResult struct {
	Contract *entities.Contract        `json:"contract"`
	Renewal  *entities.ContractRenewal `json:"renewal"`
}

// InvoiceBalance summarises payments against an invoice.
type InvoiceBalance struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Remaining decimal.Decimal `json:"remaining"`
	Payments  int             `json:"payments"`
}

type PaymentResult struct {
	Payment *entities.Payment `json:"payment"`
	Invoice *entities.Invoice `json:"invoice"`
	Balance InvoiceBalance    `json:"balance"`
}

// VendorRanking is one row of the vendor leaderboard.
type VendorRanking struct {
	Rank          int             `json:"rank"`
	VendorID      string          `json:"vendor_id"`
	CompanyName   string          `json:"company_name"`
	CategoryID    string          `json:"category_id"`
	RatingAverage decimal.Decimal `json:"rating_average"`
	Reviews       int             `json:"reviews"`
}
