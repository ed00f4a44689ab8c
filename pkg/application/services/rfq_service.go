package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
	domainsvc "github.com/vsinha/procure/pkg/domain/services"
	"github.com/vsinha/procure/pkg/infrastructure/events"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
)

// Criteria whose evaluation scores are copied onto the response.
const (
	CriterionTechnical  = "technical"
	CriterionCommercial = "commercial"
)

// RFQService runs the quotation workflow from draft to award.
type RFQService struct {
	workflow
}

// NewRFQService creates the RFQ workflow service.
func NewRFQService(deps Deps) *RFQService {
	return &RFQService{workflow: newWorkflow(deps, "rfq")}
}

// CreateRFQ opens a draft RFQ.
func (s *RFQService) CreateRFQ(ctx context.Context, actor *entities.User, input dto.CreateRFQInput) (*entities.RFQ, error) {
	if err := authorize(actor, entities.PermManageRFQs); err != nil {
		return nil, err
	}
	verr := entities.NewValidationError()
	title := strings.TrimSpace(input.Title)
	if title == "" {
		verr.Add("title", "is required")
	}
	tooLong(verr, "title", title, 255)
	if input.StartsAt != nil && input.EndsAt != nil && !input.EndsAt.After(*input.StartsAt) {
		verr.Add("ends_at", "must be after starts_at")
	}
	if input.Budget.IsNegative() {
		verr.Add("budget", "cannot be negative")
	}
	for criterion, weight := range input.Weights {
		if weight < 0 {
			verr.Add("weights."+criterion, "cannot be negative")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}
	rfq := &entities.RFQ{
		ID:          entities.NewID(),
		Title:       title,
		Slug:        domainsvc.SlugWithSuffix(title),
		Description: input.Description,
		Status:      entities.RFQDraft,
		CreatedBy:   actor.ID,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Criteria:    entities.EvaluationCriteria{Weights: input.Weights},
		Scope:       input.Scope,
		Currency:    strings.ToUpper(currency),
		Budget:      input.Budget,
		CreatedAt:   s.now(),
	}
	err := s.run(ctx, "rfq.create", actor, func(tx repositories.Store, fx *effects) error {
		if err := tx.RFQs().SaveRFQ(ctx, rfq); err != nil {
			return fmt.Errorf("failed to save rfq: %w", err)
		}
		fx.record(events.RFQCreatedEvent, "rfq", rfq.ID, events.StatusChanged{To: string(rfq.Status)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rfq created", zap.String("rfq", rfq.ID), zap.String("slug", rfq.Slug))
	return rfq, nil
}

// GetRFQ returns an RFQ with its invitations.
func (s *RFQService) GetRFQ(ctx context.Context, rfqID string) (*entities.RFQ, error) {
	return s.store.RFQs().GetRFQ(ctx, rfqID)
}

// ListResponses returns the responses received for an RFQ.
func (s *RFQService) ListResponses(ctx context.Context, rfqID string) ([]*entities.RFQResponse, error) {
	if _, err := s.store.RFQs().GetRFQ(ctx, rfqID); err != nil {
		return nil, err
	}
	return s.store.Responses().ListResponsesByRFQ(ctx, rfqID)
}

// InviteVendors adds vendors to the RFQ. Vendors already invited are skipped;
// only active vendors may be invited.
func (s *RFQService) InviteVendors(ctx context.Context, actor *entities.User, rfqID string, vendorIDs []string) (*entities.RFQ, error) {
	if err := authorize(actor, entities.PermManageRFQs); err != nil {
		return nil, err
	}
	var rfq *entities.RFQ
	err := s.run(ctx, "rfq.invite_vendors", actor, func(tx repositories.Store, fx *effects) error {
		r, err := tx.RFQs().GetRFQ(ctx, rfqID)
		if err != nil {
			return err
		}

		var added []string
		var recipients []string
		now := s.now()
		for _, vendorID := range vendorIDs {
			vendor, err := tx.Vendors().GetVendor(ctx, vendorID)
			if err != nil {
				return err
			}
			if !vendor.IsActive() {
				verr := entities.NewValidationError()
				verr.Add("vendor_ids", fmt.Sprintf("vendor %s is %s", vendor.CompanyName, vendor.Status))
				return verr
			}
			ok, err := r.Invite(vendorID, now)
			if err != nil {
				return err
			}
			if ok {
				added = append(added, vendorID)
				recipients = append(recipients, vendor.ContactEmail)
			}
		}
		rfq = r
		if len(added) == 0 {
			return nil
		}
		if err := tx.RFQs().SaveRFQ(ctx, r); err != nil {
			return fmt.Errorf("failed to save rfq: %w", err)
		}
		fx.record(events.RFQVendorsInvitedEvent, "rfq", r.ID, events.VendorsInvited{VendorIDs: added})
		fx.notify(notifications.Message{
			Template: notifications.RFQInvitation,
			To:       recipients,
			Subject:  "Invitation to quote: " + r.Title,
			Data:     map[string]string{"rfq_id": r.ID, "title": r.Title},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("vendors invited", zap.String("rfq", rfq.ID), zap.Int("invitations", len(rfq.Invitations)))
	return rfq, nil
}

func (s *RFQService) transition(ctx context.Context, op string, actor *entities.User, rfqID, eventType string, change func(*entities.RFQ) error) (*entities.RFQ, error) {
	if err := authorize(actor, entities.PermManageRFQs); err != nil {
		return nil, err
	}
	var rfq *entities.RFQ
	err := s.run(ctx, op, actor, func(tx repositories.Store, fx *effects) error {
		r, err := tx.RFQs().GetRFQ(ctx, rfqID)
		if err != nil {
			return err
		}
		from := r.Status
		if err := change(r); err != nil {
			return err
		}
		if err := tx.RFQs().SaveRFQ(ctx, r); err != nil {
			return fmt.Errorf("failed to save rfq: %w", err)
		}
		rfq = r
		fx.record(eventType, "rfq", r.ID, events.StatusChanged{From: string(from), To: string(r.Status)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rfq status changed", zap.String("rfq", rfq.ID), zap.String("status", string(rfq.Status)))
	return rfq, nil
}

// PublishRFQ opens a draft RFQ for responses.
func (s *RFQService) PublishRFQ(ctx context.Context, actor *entities.User, rfqID string) (*entities.RFQ, error) {
	return s.transition(ctx, "rfq.publish", actor, rfqID, events.RFQPublishedEvent, func(r *entities.RFQ) error {
		return r.Publish(s.now())
	})
}

// CloseRFQ stops accepting responses.
func (s *RFQService) CloseRFQ(ctx context.Context, actor *entities.User, rfqID string) (*entities.RFQ, error) {
	return s.transition(ctx, "rfq.close", actor, rfqID, events.RFQClosedEvent, func(r *entities.RFQ) error {
		return r.Close()
	})
}

// SubmitResponse records an invited vendor's quote while the RFQ is open.
func (s *RFQService) SubmitResponse(ctx context.Context, actor *entities.User, rfqID string, input dto.SubmitResponseInput) (*entities.RFQResponse, error) {
	verr := entities.NewValidationError()
	if input.VendorID == "" {
		verr.Add("vendor_id", "is required")
	}
	if !input.QuotedAmount.IsPositive() {
		verr.Add("quoted_amount", "must be greater than zero")
	}
	if input.DeliveryTimeDays != nil && *input.DeliveryTimeDays < 0 {
		verr.Add("delivery_time_days", "cannot be negative")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var response *entities.RFQResponse
	err := s.run(ctx, "rfq.submit_response", actor, func(tx repositories.Store, fx *effects) error {
		vendor, err := tx.Vendors().GetVendor(ctx, input.VendorID)
		if err != nil {
			return err
		}
		if err := authorizeVendorOrStaff(actor, vendor, entities.PermManageRFQs); err != nil {
			return err
		}
		rfq, err := tx.RFQs().GetRFQ(ctx, rfqID)
		if err != nil {
			return err
		}
		now := s.now()
		if !rfq.CanReceiveResponses(now) {
			return entities.ErrNotAcceptingResponses
		}
		if _, invited := rfq.Invitation(vendor.ID); !invited {
			return entities.ErrNotInvited
		}
		duplicate, err := exists(responseLookup(ctx, tx, rfqID, vendor.ID))
		if err != nil {
			return err
		}
		if duplicate {
			return fmt.Errorf("vendor %s already responded: %w", vendor.ID, entities.ErrDuplicate)
		}

		response = &entities.RFQResponse{
			ID:               entities.NewID(),
			RFQID:            rfqID,
			VendorID:         vendor.ID,
			QuotedAmount:     input.QuotedAmount,
			DeliveryTimeDays: input.DeliveryTimeDays,
			Status:           entities.ResponseSubmitted,
			Notes:            input.Notes,
			SubmittedAt:      now,
		}
		if err := tx.Responses().SaveResponse(ctx, response); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		if err := rfq.MarkResponded(vendor.ID, now); err != nil {
			return err
		}
		if err := tx.RFQs().SaveRFQ(ctx, rfq); err != nil {
			return fmt.Errorf("failed to save rfq: %w", err)
		}
		fx.record(events.RFQResponseSubmittedEvent, "rfq", rfqID, events.DocumentCreated{
			Number:   response.ID,
			VendorID: vendor.ID,
			Amount:   response.QuotedAmount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rfq response submitted",
		zap.String("rfq", rfqID),
		zap.String("vendor", response.VendorID),
		zap.String("quoted_amount", response.QuotedAmount.StringFixed(2)))
	return response, nil
}

func responseLookup(ctx context.Context, tx repositories.Store, rfqID, vendorID string) error {
	_, err := tx.Responses().GetResponseByVendor(ctx, rfqID, vendorID)
	return err
}

// markLost settles a losing vendor's invitation, withdrawn or not.
// Invitations already settled and uninvited vendors are skipped.
func markLost(rfq *entities.RFQ, vendorID, winnerID string) error {
	if vendorID == winnerID {
		return nil
	}
	inv, ok := rfq.Invitation(vendorID)
	if !ok || inv.Status != entities.InvitationResponded {
		return nil
	}
	return rfq.MarkInvitationLost(vendorID)
}

// WithdrawResponse retracts a submitted quote.
func (s *RFQService) WithdrawResponse(ctx context.Context, actor *entities.User, responseID string) (*entities.RFQResponse, error) {
	var response *entities.RFQResponse
	err := s.run(ctx, "rfq.withdraw_response", actor, func(tx repositories.Store, fx *effects) error {
		r, err := tx.Responses().GetResponse(ctx, responseID)
		if err != nil {
			return err
		}
		vendor, err := tx.Vendors().GetVendor(ctx, r.VendorID)
		if err != nil {
			return err
		}
		if err := authorizeVendorOrStaff(actor, vendor, entities.PermManageRFQs); err != nil {
			return err
		}
		if err := r.Withdraw(); err != nil {
			return err
		}
		if err := tx.Responses().SaveResponse(ctx, r); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		response = r
		fx.record(events.RFQResponseWithdrawnEvent, "rfq", r.RFQID, events.StatusChanged{
			From: string(entities.ResponseSubmitted),
			To:   string(r.Status),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rfq response withdrawn", zap.String("response", response.ID))
	return response, nil
}

// EvaluateResponse scores a response against the RFQ's weighted criteria. The
// response total becomes the mean of all its evaluations.
func (s *RFQService) EvaluateResponse(ctx context.Context, actor *entities.User, responseID string, input dto.EvaluationInput) (*dto.EvaluationResult, error) {
	if err := authorize(actor, entities.PermEvaluateRFQs); err != nil {
		return nil, err
	}
	verr := entities.NewValidationError()
	if len(input.CriteriaScores) == 0 {
		verr.Add("criteria_scores", "is required")
	}
	for criterion, score := range input.CriteriaScores {
		if score < 0 || score > 100 {
			verr.Add("criteria_scores."+criterion, "must be between 0 and 100")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var result *dto.EvaluationResult
	err := s.run(ctx, "rfq.evaluate_response", actor, func(tx repositories.Store, fx *effects) error {
		response, err := tx.Responses().GetResponse(ctx, responseID)
		if err != nil {
			return err
		}
		if response.Status == entities.ResponseWithdrawn {
			return &entities.TransitionError{Entity: "rfq response", From: string(response.Status), To: "evaluated"}
		}
		rfq, err := tx.RFQs().GetRFQ(ctx, response.RFQID)
		if err != nil {
			return err
		}

		evaluation := &entities.RFQEvaluation{
			ID:             entities.NewID(),
			ResponseID:     response.ID,
			EvaluatorID:    actor.ID,
			CriteriaScores: input.CriteriaScores,
			Comments:       input.Comments,
			TotalScore:     domainsvc.WeightedScore(input.CriteriaScores, rfq.Criteria.Weights),
			CreatedAt:      s.now(),
		}
		if err := tx.Evaluations().SaveEvaluation(ctx, evaluation); err != nil {
			return fmt.Errorf("failed to save evaluation: %w", err)
		}

		evaluations, err := tx.Evaluations().ListEvaluationsByResponse(ctx, response.ID)
		if err != nil {
			return err
		}
		if v, ok := input.CriteriaScores[CriterionTechnical]; ok {
			response.TechnicalScore = &v
		}
		if v, ok := input.CriteriaScores[CriterionCommercial]; ok {
			response.CommercialScore = &v
		}
		response.TotalScore = domainsvc.MeanScore(evaluations)
		if err := tx.Responses().SaveResponse(ctx, response); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}

		result = &dto.EvaluationResult{Evaluation: evaluation, Response: response}
		fx.record(events.RFQResponseEvaluatedEvent, "rfq", rfq.ID, events.ResponseEvaluated{
			ResponseID:   response.ID,
			EvaluationID: evaluation.ID,
			Score:        evaluation.TotalScore,
			TotalScore:   *response.TotalScore,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rfq response evaluated",
		zap.String("response", responseID),
		zap.Float64("score", result.Evaluation.TotalScore),
		zap.Float64("total_score", *result.Response.TotalScore))
	return result, nil
}

// RecommendWinner returns the best ranked response still in contention.
func (s *RFQService) RecommendWinner(ctx context.Context, rfqID string) (*entities.RFQResponse, error) {
	var winner *entities.RFQResponse
	err := s.read(ctx, "rfq.recommend_winner", func(ctx context.Context) error {
		responses, err := s.ListResponses(ctx, rfqID)
		if err != nil {
			return err
		}
		winner = domainsvc.RecommendWinner(responses)
		if winner == nil {
			return entities.NewNotFound("eligible rfq response", rfqID)
		}
		return nil
	})
	return winner, err
}

// AwardContract picks the winning response. In one transaction the RFQ is
// marked awarded, the winner accepted and every other open response rejected;
// invitations follow their responses.
func (s *RFQService) AwardContract(ctx context.Context, actor *entities.User, rfqID, winningResponseID string) (*dto.AwardResult, error) {
	if err := authorize(actor, entities.PermManageRFQs); err != nil {
		return nil, err
	}

	var result *dto.AwardResult
	err := s.run(ctx, "rfq.award", actor, func(tx repositories.Store, fx *effects) error {
		rfq, err := tx.RFQs().GetRFQ(ctx, rfqID)
		if err != nil {
			return err
		}
		winner, err := tx.Responses().GetResponse(ctx, winningResponseID)
		if err != nil {
			return err
		}
		if winner.RFQID != rfq.ID {
			return fmt.Errorf("response %s belongs to another rfq: %w", winner.ID, entities.NewNotFound("rfq response", winner.ID))
		}
		responses, err := tx.Responses().ListResponsesByRFQ(ctx, rfq.ID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := rfq.MarkAwarded(); err != nil {
			return err
		}
		if err := winner.Accept(); err != nil {
			return err
		}
		if err := rfq.MarkInvitationAwarded(winner.VendorID, now); err != nil {
			return err
		}
		if err := tx.Responses().SaveResponse(ctx, winner); err != nil {
			return err
		}

		result = &dto.AwardResult{RFQ: rfq, Winner: winner}
		var rejectedIDs []string
		for _, r := range responses {
			if r.ID == winner.ID {
				continue
			}
			if err := markLost(rfq, r.VendorID, winner.VendorID); err != nil {
				return err
			}
			if r.Status == entities.ResponseWithdrawn {
				result.Withdrawn++
				continue
			}
			if err := r.Reject(); err != nil {
				return err
			}
			if err := tx.Responses().SaveResponse(ctx, r); err != nil {
				return err
			}
			result.Rejected = append(result.Rejected, r)
			rejectedIDs = append(rejectedIDs, r.ID)
		}
		if err := tx.RFQs().SaveRFQ(ctx, rfq); err != nil {
			return fmt.Errorf("failed to save rfq: %w", err)
		}

		fx.record(events.RFQAwardedEvent, "rfq", rfq.ID, events.RFQAwarded{
			WinningResponseID: winner.ID,
			VendorID:          winner.VendorID,
			RejectedResponses: rejectedIDs,
		})
		fx.notify(notifications.Message{
			Template: notifications.RFQAwarded,
			To:       vendorEmail(ctx, tx, winner.VendorID),
			Subject:  "You have been awarded: " + rfq.Title,
			Data: map[string]string{
				"rfq_id":        rfq.ID,
				"title":         rfq.Title,
				"quoted_amount": winner.QuotedAmount.StringFixed(2),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rfq awarded",
		zap.String("rfq", rfqID),
		zap.String("winner", result.Winner.ID),
		zap.Int("rejected", len(result.Rejected)))
	return result, nil
}
