package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// RFQStatus is the lifecycle state of a request for quotation.
type RFQStatus string

const (
	RFQDraft     RFQStatus = "draft"
	RFQPublished RFQStatus = "published"
	RFQClosed    RFQStatus = "closed"
	RFQAwarded   RFQStatus = "awarded"
)

var rfqTransitions = transitions[RFQStatus]{
	RFQDraft:     {RFQPublished},
	RFQPublished: {RFQClosed, RFQAwarded},
	RFQClosed:    {RFQAwarded},
}

// InvitationStatus tracks a vendor's participation in one RFQ.
type InvitationStatus string

const (
	InvitationInvited   InvitationStatus = "invited"
	InvitationResponded InvitationStatus = "responded"
	InvitationAwarded   InvitationStatus = "awarded"
	InvitationLost      InvitationStatus = "lost"
)

var invitationTransitions = transitions[InvitationStatus]{
	InvitationInvited:   {InvitationResponded},
	InvitationResponded: {InvitationAwarded, InvitationLost},
}

// Invitation links a vendor to an RFQ.
type Invitation struct {
	VendorID    string           `json:"vendor_id"`
	Status      InvitationStatus `json:"status"`
	InvitedAt   time.Time        `json:"invited_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
	AwardedAt   *time.Time       `json:"awarded_at,omitempty"`
}

// EvaluationCriteria carries the per-criterion weights used to score responses.
type EvaluationCriteria struct {
	Weights map[string]float64 `json:"weights,omitempty"`
}

// RFQ is a request for quotation issued to invited vendors.
type RFQ struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Description string             `json:"description,omitempty"`
	Status      RFQStatus          `json:"status"`
	CreatedBy   string             `json:"created_by"`
	StartsAt    *time.Time         `json:"starts_at,omitempty"`
	EndsAt      *time.Time         `json:"ends_at,omitempty"`
	Criteria    EvaluationCriteria `json:"evaluation_criteria"`
	Scope       []string           `json:"scope,omitempty"`
	Currency    string             `json:"currency"`
	Budget      decimal.Decimal    `json:"budget"`
	PublishedAt *time.Time         `json:"published_at,omitempty"`
	Invitations []Invitation       `json:"invitations,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CanReceiveResponses reports whether vendors may still quote.
func (r *RFQ) CanReceiveResponses(now time.Time) bool {
	if r.Status != RFQPublished {
		return false
	}
	if r.EndsAt != nil && now.After(*r.EndsAt) {
		return false
	}
	return true
}

// Publish opens the RFQ for responses.
func (r *RFQ) Publish(now time.Time) error {
	if err := move("rfq", rfqTransitions, &r.Status, RFQPublished); err != nil {
		return err
	}
	r.PublishedAt = &now
	return nil
}

// Close stops accepting responses.
func (r *RFQ) Close() error {
	return move("rfq", rfqTransitions, &r.Status, RFQClosed)
}

// MarkAwarded records that a winner has been chosen.
func (r *RFQ) MarkAwarded() error {
	return move("rfq", rfqTransitions, &r.Status, RFQAwarded)
}

// Invitation returns the pivot row for vendorID.
func (r *RFQ) Invitation(vendorID string) (*Invitation, bool) {
	for i := range r.Invitations {
		if r.Invitations[i].VendorID == vendorID {
			return &r.Invitations[i], true
		}
	}
	return nil, false
}

// Invite adds vendorID unless it is already invited. It reports whether a row was added.
func (r *RFQ) Invite(vendorID string, now time.Time) (bool, error) {
	if r.Status == RFQAwarded {
		return false, transitionError("rfq", r.Status, r.Status)
	}
	if _, exists := r.Invitation(vendorID); exists {
		return false, nil
	}
	r.Invitations = append(r.Invitations, Invitation{
		VendorID:  vendorID,
		Status:    InvitationInvited,
		InvitedAt: now,
	})
	return true, nil
}

// MarkResponded flips the vendor's invitation after a quote arrives.
func (r *RFQ) MarkResponded(vendorID string, now time.Time) error {
	inv, ok := r.Invitation(vendorID)
	if !ok {
		return ErrNotInvited
	}
	if err := move("invitation", invitationTransitions, &inv.Status, InvitationResponded); err != nil {
		return err
	}
	inv.RespondedAt = &now
	return nil
}

// MarkInvitationAwarded flags the winning vendor's invitation.
func (r *RFQ) MarkInvitationAwarded(vendorID string, now time.Time) error {
	inv, ok := r.Invitation(vendorID)
	if !ok {
		return ErrNotInvited
	}
	if err := move("invitation", invitationTransitions, &inv.Status, InvitationAwarded); err != nil {
		return err
	}
	inv.AwardedAt = &now
	return nil
}

// MarkInvitationLost flags a losing vendor's invitation.
func (r *RFQ) MarkInvitationLost(vendorID string) error {
	inv, ok := r.Invitation(vendorID)
	if !ok {
		return ErrNotInvited
	}
	return move("invitation", invitationTransitions, &inv.Status, InvitationLost)
}

// ResponseStatus is the state of a vendor quote.
type ResponseStatus string

const (
	ResponseSubmitted ResponseStatus = "submitted"
	ResponseAccepted  ResponseStatus = "accepted"
	ResponseRejected  ResponseStatus = "rejected"
	ResponseWithdrawn ResponseStatus = "withdrawn"
)

var responseTransitions = transitions[ResponseStatus]{
	ResponseSubmitted: {ResponseAccepted, ResponseRejected, ResponseWithdrawn},
}

// RFQResponse is a vendor's quote against an RFQ.
type RFQResponse struct {
	ID               string          `json:"id"`
	RFQID            string          `json:"rfq_id"`
	VendorID         string          `json:"vendor_id"`
	QuotedAmount     decimal.Decimal `json:"quoted_amount"`
	DeliveryTimeDays *int            `json:"delivery_time_days,omitempty"`
	Status           ResponseStatus  `json:"status"`
	TechnicalScore   *float64        `json:"technical_score,omitempty"`
	CommercialScore  *float64        `json:"commercial_score,omitempty"`
	TotalScore       *float64        `json:"total_score,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	SubmittedAt      time.Time       `json:"submitted_at"`
}

// Accept marks the response as the winning bid.
func (r *RFQResponse) Accept() error {
	return move("rfq response", responseTransitions, &r.Status, ResponseAccepted)
}

// Reject marks the response as a losing bid.
func (r *RFQResponse) Reject() error {
	return move("rfq response", responseTransitions, &r.Status, ResponseRejected)
}

// Withdraw retracts the quote.
func (r *RFQResponse) Withdraw() error {
	return move("rfq response", responseTransitions, &r.Status, ResponseWithdrawn)
}

// RFQEvaluation is one evaluator's scoring of a response.
type RFQEvaluation struct {
	ID             string             `json:"id"`
	ResponseID     string             `json:"rfq_response_id"`
	EvaluatorID    string             `json:"evaluator_id"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	Comments       string             `json:"comments,omitempty"`
	TotalScore     float64            `json:"total_score"`
	CreatedAt      time.Time          `json:"created_at"`
}
