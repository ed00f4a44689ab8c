package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateVendorInput is a staff-entered vendor.
type CreateVendorInput struct {
	CompanyName        string            `json:"company_name"`
	CategoryID         string            `json:"category_id"`
	ContactName        string            `json:"contact_name"`
	ContactEmail       string            `json:"contact_email"`
	ContactPhone       string            `json:"contact_phone,omitempty"`
	Address            string            `json:"address,omitempty"`
	CompanyDescription string            `json:"company_description,omitempty"`
	TaxID              string            `json:"tax_id,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// VendorRegistration is the public self-registration form.
type VendorRegistration struct {
	CompanyName        string `json:"company_name"`
	CategoryID         string `json:"category_id"`
	ContactName        string `json:"contact_name"`
	ContactEmail       string `json:"contact_email"`
	ContactPhone       string `json:"contact_phone,omitempty"`
	Address            string `json:"address,omitempty"`
	CompanyDescription string `json:"company_description,omitempty"`
	TaxID              string `json:"tax_id,omitempty"`
	TermsAccepted      bool   `json:"terms_accepted"`
}

type ReviewInput struct {
	Quality       int    `json:"rating_quality"`
	Timeliness    int    `json:"rating_timeliness"`
	Communication int    `json:"rating_communication"`
	Comments      string `json:"comments,omitempty"`
}

// UpdateVendorInput changes a vendor's profile. Nil fields are left as they are.
type UpdateVendorInput struct {
	ContactName        *string           `json:"contact_name,omitempty"`
	ContactPhone       *string           `json:"contact_phone,omitempty"`
	Address            *string           `json:"address,omitempty"`
	CompanyDescription *string           `json:"company_description,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

type WarningInput struct {
	Type    string `json:"type"`
	Details string `json:"details"`
}

type CreateRFQInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	StartsAt    *time.Time         `json:"starts_at,omitempty"`
	EndsAt      *time.Time         `json:"ends_at,omitempty"`
	Weights     map[string]float64 `json:"weights,omitempty"`
	Scope       []string           `json:"scope,omitempty"`
	Currency    string             `json:"currency,omitempty"`
	Budget      decimal.Decimal    `json:"budget"`
}

type SubmitResponseInput struct {
	VendorID         string          `json:"vendor_id"`
	QuotedAmount     decimal.Decimal `json:"quoted_amount"`
	DeliveryTimeDays *int            `json:"delivery_time_days,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

type EvaluationInput struct {
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	Comments       string             `json:"comments,omitempty"`
}

type CreateContractInput struct {
	RFQID             string            `json:"rfq_id"`
	WinningResponseID string            `json:"winning_response_id"`
	Title             string            `json:"title,omitempty"`
	Description       string            `json:"description,omitempty"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           time.Time         `json:"end_date"`
	Terms             string            `json:"terms,omitempty"`
	Deliverables      []string          `json:"deliverables,omitempty"`
	PaymentTerms      map[string]string `json:"payment_terms,omitempty"`
}

type RenewContractInput struct {
	NewEndDate   time.Time         `json:"new_end_date"`
	NewValue     *decimal.Decimal  `json:"new_value,omitempty"`
	UpdatedTerms map[string]string `json:"updated_terms,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

type POItemInput struct {
	Name          string          `json:"item_name"`
	Description   string          `json:"description,omitempty"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	UnitOfMeasure string          `json:"unit_of_measure,omitempty"`
}

type CreatePOInput struct {
	VendorID             string            `json:"vendor_id"`
	ContractID           string            `json:"contract_id,omitempty"`
	IssuedDate           *time.Time        `json:"issued_date,omitempty"`
	ExpectedDeliveryDate *time.Time        `json:"expected_delivery_date,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	DeliveryAddress      map[string]string `json:"delivery_address,omitempty"`
	Items                []POItemInput     `json:"items"`
}

type SubmitInvoiceInput struct {
	VendorID        string          `json:"vendor_id"`
	Number          string          `json:"invoice_number"`
	PurchaseOrderID string          `json:"purchase_order_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	DueDate         time.Time       `json:"due_date"`
	Notes           string          `json:"notes,omitempty"`
}

type PaymentInput struct {
	Amount      decimal.Decimal   `json:"amount"`
	Method      string            `json:"method"`
	PaidDate    *time.Time        `json:"paid_date,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	BankDetails map[string]string `json:"bank_details,omitempty"`
}
