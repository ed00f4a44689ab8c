package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
)

func (s *Server) createRFQ(r *http.Request) (int, interface{}, error) {
	var input dto.CreateRFQInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return created(s.services.RFQs.CreateRFQ(r.Context(), actorFrom(r), input))
}

// getRFQ is open to staff running RFQs and to invited vendors.
func (s *Server) getRFQ(r *http.Request) (int, interface{}, error) {
	rfq, err := s.services.RFQs.GetRFQ(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	actor := actorFrom(r)
	if actor.Can(entities.PermManageRFQs) || actor.Can(entities.PermEvaluateRFQs) {
		return ok(rfq, nil)
	}
	for _, inv := range rfq.Invitations {
		if s.ownsVendor(r, inv.VendorID) {
			return ok(rfq, nil)
		}
	}
	return 0, nil, entities.ErrForbidden
}

type invitationBody struct {
	VendorIDs []string `json:"vendor_ids"`
}

func (s *Server) inviteVendors(r *http.Request) (int, interface{}, error) {
	var body invitationBody
	if err := decode(r, &body); err != nil {
		return 0, nil, err
	}
	return ok(s.services.RFQs.InviteVendors(r.Context(), actorFrom(r), chi.URLParam(r, "id"), body.VendorIDs))
}

func (s *Server) publishRFQ(r *http.Request) (int, interface{}, error) {
	return ok(s.services.RFQs.PublishRFQ(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) closeRFQ(r *http.Request) (int, interface{}, error) {
	return ok(s.services.RFQs.CloseRFQ(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) listResponses(r *http.Request) (int, interface{}, error) {
	if err := permit(r, entities.PermEvaluateRFQs); err != nil {
		return 0, nil, err
	}
	return ok(s.services.RFQs.ListResponses(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) submitResponse(r *http.Request) (int, interface{}, error) {
	var input dto.SubmitResponseInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return created(s.services.RFQs.SubmitResponse(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input))
}

func (s *Server) recommendWinner(r *http.Request) (int, interface{}, error) {
	if err := permit(r, entities.PermEvaluateRFQs); err != nil {
		return 0, nil, err
	}
	return ok(s.services.RFQs.RecommendWinner(r.Context(), chi.URLParam(r, "id")))
}

type awardBody struct {
	ResponseID string `json:"response_id"`
}

func (s *Server) awardRFQ(r *http.Request) (int, interface{}, error) {
	var body awardBody
	if err := decode(r, &body); err != nil {
		return 0, nil, err
	}
	if body.ResponseID == "" {
		verr := entities.NewValidationError()
		verr.Add("response_id", "is required")
		return 0, nil, verr
	}
	return ok(s.services.RFQs.AwardContract(r.Context(), actorFrom(r), chi.URLParam(r, "id"), body.ResponseID))
}

func (s *Server) evaluateResponse(r *http.Request) (int, interface{}, error) {
	var input dto.EvaluationInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return created(s.services.RFQs.EvaluateResponse(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input))
}

func (s *Server) withdrawResponse(r *http.Request) (int, interface{}, error) {
	return ok(s.services.RFQs.WithdrawResponse(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}
