package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractActive     ContractStatus = "active"
	ContractExpired    ContractStatus = "expired"
	ContractTerminated ContractStatus = "terminated"
	ContractRenewed    ContractStatus = "renewed"
)

var contractTransitions = transitions[ContractStatus]{
	ContractDraft:   {ContractActive, ContractTerminated},
	ContractActive:  {ContractRenewed, ContractExpired, ContractTerminated},
	ContractRenewed: {ContractActive, ContractRenewed, ContractExpired, ContractTerminated},
}

// Contract is the agreement awarded to a vendor, usually from an RFQ.
type Contract struct {
	ID                string            `json:"id"`
	Number            string            `json:"contract_number"`
	VendorID          string            `json:"vendor_id"`
	RFQID             string            `json:"rfq_id,omitempty"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           time.Time         `json:"end_date"`
	Status            ContractStatus    `json:"status"`
	Terms             string            `json:"terms,omitempty"`
	Value             decimal.Decimal   `json:"contract_value"`
	Deliverables      []string          `json:"deliverables,omitempty"`
	PaymentTerms      map[string]string `json:"payment_terms,omitempty"`
	CreatedBy         string            `json:"created_by"`
	TerminationReason string            `json:"termination_reason,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// IsActive reports whether the contract is in force on day today.
func (c *Contract) IsActive(today time.Time) bool {
	d := Day(today)
	return c.Status == ContractActive && !c.StartDate.After(d) && !c.EndDate.Before(d)
}

// IsExpiringSoon reports whether the end date falls within days of today.
func (c *Contract) IsExpiringSoon(today time.Time, days int) bool {
	return !c.EndDate.After(AddDays(today, days))
}

// Activate puts a draft or renewed contract in force.
func (c *Contract) Activate() error {
	return move("contract", contractTransitions, &c.Status, ContractActive)
}

// Renew extends the contract to newEnd with value.
func (c *Contract) Renew(newEnd time.Time, value decimal.Decimal) error {
	if err := move("contract", contractTransitions, &c.Status, ContractRenewed); err != nil {
		return err
	}
	c.EndDate = Day(newEnd)
	c.Value = value
	return nil
}

// Expire closes a contract whose end date has passed.
func (c *Contract) Expire() error {
	return move("contract", contractTransitions, &c.Status, ContractExpired)
}

// Terminate ends the contract early.
func (c *Contract) Terminate(reason string) error {
	if err := move("contract", contractTransitions, &c.Status, ContractTerminated); err != nil {
		return err
	}
	c.TerminationReason = reason
	return nil
}

// ContractRenewal records one extension of a contract.
type ContractRenewal struct {
	ID           string            `json:"id"`
	ContractID   string            `json:"contract_id"`
	RenewalDate  time.Time         `json:"renewal_date"`
	NewEndDate   time.Time         `json:"new_end_date"`
	NewValue     decimal.Decimal   `json:"new_value"`
	UpdatedTerms map[string]string `json:"updated_terms,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	RenewedBy    string            `json:"renewed_by"`
}
