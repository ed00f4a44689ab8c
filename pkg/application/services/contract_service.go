package services

import (
	"context"
	"fmt"
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

const defaultTerminationReason = "No reason provided"

// ContractService manages contracts awarded from RFQs.
type ContractService struct {
	workflow
}

// NewContractService creates the contract workflow service.
func NewContractService(deps Deps) *ContractService {
	return &ContractService{workflow: newWorkflow(deps, "contract")}
}

// nextNumber draws the next document number of kind for the current year.
func nextNumber(ctx context.Context, tx repositories.Store, kind domainsvc.DocumentKind, year int) (string, error) {
	seq, err := tx.Sequences().Next(ctx, string(kind), year)
	if err != nil {
		return "", fmt.Errorf("failed to allocate %s number: %w", kind, err)
	}
	return domainsvc.FormatDocumentNumber(kind, year, seq)
}

// CreateFromRFQ drafts a contract for the accepted response of an awarded RFQ.
func (s *ContractService) CreateFromRFQ(ctx context.Context, actor *entities.User, input dto.CreateContractInput) (*entities.Contract, error) {
	if err := authorize(actor, entities.PermManageContracts); err != nil {
		return nil, err
	}
	verr := entities.NewValidationError()
	if input.RFQID == "" {
		verr.Add("rfq_id", "is required")
	}
	if input.WinningResponseID == "" {
		verr.Add("winning_response_id", "is required")
	}
	if input.StartDate.IsZero() {
		verr.Add("start_date", "is required")
	}
	if input.EndDate.IsZero() {
		verr.Add("end_date", "is required")
	}
	if !input.StartDate.IsZero() && !input.EndDate.IsZero() && !entities.Day(input.EndDate).After(entities.Day(input.StartDate)) {
		verr.Add("end_date", "must be after start_date")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var contract *entities.Contract
	err := s.run(ctx, "contract.create_from_rfq", actor, func(tx repositories.Store, fx *effects) error {
		rfq, err := tx.RFQs().GetRFQ(ctx, input.RFQID)
		if err != nil {
			return err
		}
		response, err := tx.Responses().GetResponse(ctx, input.WinningResponseID)
		if err != nil {
			return err
		}
		if response.RFQID != rfq.ID {
			return entities.NewNotFound("rfq response", response.ID)
		}
		if response.Status != entities.ResponseAccepted {
			return &entities.TransitionError{Entity: "rfq response", From: string(response.Status), To: "contracted"}
		}

		now := s.now()
		number, err := nextNumber(ctx, tx, domainsvc.DocContract, now.Year())
		if err != nil {
			return err
		}
		title := strings.TrimSpace(input.Title)
		if title == "" {
			title = rfq.Title
		}
		description := input.Description
		if description == "" {
			description = rfq.Description
		}
		contract = &entities.Contract{
			ID:           entities.NewID(),
			Number:       number,
			VendorID:     response.VendorID,
			RFQID:        rfq.ID,
			Title:        title,
			Description:  description,
			StartDate:    entities.Day(input.StartDate),
			EndDate:      entities.Day(input.EndDate),
			Status:       entities.ContractDraft,
			Terms:        input.Terms,
			Value:        response.QuotedAmount,
			Deliverables: input.Deliverables,
			PaymentTerms: input.PaymentTerms,
			CreatedBy:    actor.ID,
			CreatedAt:    now,
		}
		if err := tx.Contracts().SaveContract(ctx, contract); err != nil {
			return fmt.Errorf("failed to save contract: %w", err)
		}
		fx.record(events.ContractCreatedEvent, "contract", contract.ID, events.DocumentCreated{
			Number:   contract.Number,
			VendorID: contract.VendorID,
			Amount:   contract.Value,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("contract created",
		zap.String("contract", contract.Number),
		zap.String("vendor", contract.VendorID),
		zap.String("value", contract.Value.StringFixed(2)))
	return contract, nil
}

// GetContract returns a contract.
func (s *ContractService) GetContract(ctx context.Context, contractID string) (*entities.Contract, error) {
	return s.store.Contracts().GetContract(ctx, contractID)
}

// RenewContract extends a contract past its current end date and records the
// renewal. The value carries over unless a new one is given.
func (s *ContractService) RenewContract(ctx context.Context, actor *entities.User, contractID string, input dto.RenewContractInput) (*dto.RenewalResult, error) {
	if err := authorize(actor, entities.PermManageContracts); err != nil {
		return nil, err
	}
	if input.NewValue != nil && input.NewValue.IsNegative() {
		verr := entities.NewValidationError()
		verr.Add("new_value", "cannot be negative")
		return nil, verr
	}

	var result *dto.RenewalResult
	err := s.run(ctx, "contract.renew", actor, func(tx repositories.Store, fx *effects) error {
		contract, err := tx.Contracts().GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		newEnd := entities.Day(input.NewEndDate)
		if input.NewEndDate.IsZero() || !newEnd.After(contract.EndDate) {
			verr := entities.NewValidationError()
			verr.Add("new_end_date", "must be after the current end date "+contract.EndDate.Format("2006-01-02"))
			return verr
		}
		value := contract.Value
		if input.NewValue != nil {
			value = *input.NewValue
		}
		if err := contract.Renew(newEnd, value); err != nil {
			return err
		}
		renewal := &entities.ContractRenewal{
			ID:           entities.NewID(),
			ContractID:   contract.ID,
			RenewalDate:  s.today(),
			NewEndDate:   newEnd,
			NewValue:     value,
			UpdatedTerms: input.UpdatedTerms,
			Notes:        input.Notes,
			RenewedBy:    actor.ID,
		}
		if err := tx.Renewals().SaveRenewal(ctx, renewal); err != nil {
			return fmt.Errorf("failed to save renewal: %w", err)
		}
		if err := tx.Contracts().SaveContract(ctx, contract); err != nil {
			return fmt.Errorf("failed to save contract: %w", err)
		}
		result = &dto.RenewalResult{Contract: contract, Renewal: renewal}

		fx.record(events.ContractRenewedEvent, "contract", contract.ID, events.ContractRenewed{
			RenewalID:  renewal.ID,
			NewEndDate: newEnd,
			NewValue:   value,
		})
		fx.notify(notifications.Message{
			Template: notifications.ContractRenewed,
			To:       vendorEmail(ctx, tx, contract.VendorID),
			Subject:  "Contract " + contract.Number + " renewed",
			Data: map[string]string{
				"contract_number": contract.Number,
				"new_end_date":    newEnd.Format("2006-01-02"),
				"new_value":       value.StringFixed(2),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("contract renewed",
		zap.String("contract", result.Contract.Number),
		zap.Time("new_end_date", result.Renewal.NewEndDate))
	return result, nil
}

func (s *ContractService) transition(ctx context.Context, op string, actor *entities.User, contractID, eventType, reason string, change func(*entities.Contract) error) (*entities.Contract, error) {
	if err := authorize(actor, entities.PermManageContracts); err != nil {
		return nil, err
	}
	var contract *entities.Contract
	err := s.run(ctx, op, actor, func(tx repositories.Store, fx *effects) error {
		c, err := tx.Contracts().GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		from := c.Status
		if err := change(c); err != nil {
			return err
		}
		if err := tx.Contracts().SaveContract(ctx, c); err != nil {
			return fmt.Errorf("failed to save contract: %w", err)
		}
		contract = c
		fx.record(eventType, "contract", c.ID, events.StatusChanged{From: string(from), To: string(c.Status), Reason: reason})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("contract status changed", zap.String("contract", contract.Number), zap.String("status", string(contract.Status)))
	return contract, nil
}

// ActivateContract puts a draft or renewed contract in force.
func (s *ContractService) ActivateContract(ctx context.Context, actor *entities.User, contractID string) (*entities.Contract, error) {
	return s.transition(ctx, "contract.activate", actor, contractID, events.ContractActivatedEvent, "", func(c *entities.Contract) error {
		return c.Activate()
	})
}

// TerminateContract ends a contract early.
func (s *ContractService) TerminateContract(ctx context.Context, actor *entities.User, contractID, reason string) (*entities.Contract, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultTerminationReason
	}
	return s.transition(ctx, "contract.terminate", actor, contractID, events.ContractTerminatedEvent, reason, func(c *entities.Contract) error {
		return c.Terminate(reason)
	})
}

// ExpiringContracts lists active contracts ending between today and days from
// now, soonest first. A non-positive days uses the configured window.
func (s *ContractService) ExpiringContracts(ctx context.Context, days int) ([]*entities.Contract, error) {
	if days <= 0 {
		days = s.opts.ContractExpiryDays
	}
	today := s.today()
	var expiring []*entities.Contract
	err := s.read(ctx, "contract.expiring", func(ctx context.Context) error {
		active, err := s.store.Contracts().ListContracts(ctx, repositories.ContractFilter{
			Statuses: []entities.ContractStatus{entities.ContractActive},
		})
		if err != nil {
			return err
		}
		for _, c := range active {
			if !c.EndDate.Before(today) && c.IsExpiringSoon(today, days) {
				expiring = append(expiring, c)
			}
		}
		return nil
	})
	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].EndDate.Before(expiring[j].EndDate)
	})
	return expiring, err
}

// ExpireContracts moves active and renewed contracts whose end date has passed
// to expired and returns them.
func (s *ContractService) ExpireContracts(ctx context.Context) ([]*entities.Contract, error) {
	today := s.today()
	var expired []*entities.Contract
	err := s.run(ctx, "contract.expire", System, func(tx repositories.Store, fx *effects) error {
		expired = nil
		candidates, err := tx.Contracts().ListContracts(ctx, repositories.ContractFilter{
			Statuses: []entities.ContractStatus{entities.ContractActive, entities.ContractRenewed},
		})
		if err != nil {
			return err
		}
		for _, c := range candidates {
			if !c.EndDate.Before(today) {
				continue
			}
			from := c.Status
			if err := c.Expire(); err != nil {
				return err
			}
			if err := tx.Contracts().SaveContract(ctx, c); err != nil {
				return fmt.Errorf("failed to save contract: %w", err)
			}
			expired = append(expired, c)
			fx.record(events.ContractExpiredEvent, "contract", c.ID, events.StatusChanged{From: string(from), To: string(c.Status)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(expired) > 0 {
		s.logger.Info("contracts expired", zap.Int("count", len(expired)))
	}
	return expired, nil
}
