package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
)

func (s *Server) listCategories(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Onboarding.ListActiveCategories(r.Context()))
}

func (s *Server) registerVendor(r *http.Request) (int, interface{}, error) {
	var reg dto.VendorRegistration
	if err := decode(r, &reg); err != nil {
		return 0, nil, err
	}
	return created(s.services.Onboarding.RegisterVendor(r.Context(), reg))
}

func (s *Server) listVendors(r *http.Request) (int, interface{}, error) {
	q := r.URL.Query()
	return ok(s.services.Onboarding.ListVendors(r.Context(), actorFrom(r), repositories.VendorFilter{
		Status:     entities.VendorStatus(q.Get("status")),
		CategoryID: q.Get("category_id"),
	}))
}

func (s *Server) createVendor(r *http.Request) (int, interface{}, error) {
	var input dto.CreateVendorInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return created(s.services.Onboarding.CreateVendor(r.Context(), actorFrom(r), input))
}

func (s *Server) rankings(r *http.Request) (int, interface{}, error) {
	if err := permit(r, entities.PermViewVendors); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Rating.Rankings(r.Context(), r.URL.Query().Get("category_id")))
}

func (s *Server) getVendor(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Onboarding.GetVendor(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) updateVendor(r *http.Request) (int, interface{}, error) {
	var input dto.UpdateVendorInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Onboarding.UpdateVendor(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input))
}

// userView is a user as the API shows it, without credentials.
type userView struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Roles []entities.Role `json:"roles"`
}

type approvalView struct {
	Vendor      *entities.Vendor `json:"vendor"`
	User        userView         `json:"user"`
	UserCreated bool             `json:"user_created"`
}

func (s *Server) approveVendor(r *http.Request) (int, interface{}, error) {
	result, err := s.services.Onboarding.ApproveVendor(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	u := result.User
	return http.StatusOK, approvalView{
		Vendor:      result.Vendor,
		User:        userView{ID: u.ID, Name: u.Name, Email: u.Email, Roles: u.Roles},
		UserCreated: result.UserCreated,
	}, nil
}

func (s *Server) suspendVendor(r *http.Request) (int, interface{}, error) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Onboarding.SuspendVendor(r.Context(), actorFrom(r), chi.URLParam(r, "id"), body.Reason))
}

func (s *Server) reinstateVendor(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Onboarding.ReinstateVendor(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) blacklistVendor(r *http.Request) (int, interface{}, error) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Onboarding.BlacklistVendor(r.Context(), actorFrom(r), chi.URLParam(r, "id"), body.Reason))
}

type reviewResponse struct {
	Review *entities.VendorReview `json:"review"`
	Vendor *entities.Vendor       `json:"vendor"`
}

func (s *Server) addReview(r *http.Request) (int, interface{}, error) {
	var input dto.ReviewInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	review, vendor, err := s.services.Rating.AddReview(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	return created(reviewResponse{Review: review, Vendor: vendor}, err)
}

func (s *Server) listWarnings(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Onboarding.ListWarnings(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) issueWarning(r *http.Request) (int, interface{}, error) {
	var input dto.WarningInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return created(s.services.Onboarding.IssueWarning(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input))
}

func (s *Server) resolveWarning(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Onboarding.ResolveWarning(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}
