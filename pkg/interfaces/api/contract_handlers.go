package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
)

func (s *Server) createContract(r *http.Request) (int, interface{}, error) {
	var input dto.CreateContractInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return created(s.services.Contracts.CreateFromRFQ(r.Context(), actorFrom(r), input))
}

func (s *Server) expiringContracts(r *http.Request) (int, interface{}, error) {
	if err := permit(r, entities.PermManageContracts); err != nil {
		return 0, nil, err
	}
	days, err := intQuery(r, "days")
	if err != nil {
		return 0, nil, err
	}
	return ok(s.services.Contracts.ExpiringContracts(r.Context(), days))
}

// getContract is open to contract managers and the contracted vendor.
func (s *Server) getContract(r *http.Request) (int, interface{}, error) {
	contract, err := s.services.Contracts.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	if permit(r, entities.PermManageContracts) != nil && !s.ownsVendor(r, contract.VendorID) {
		return 0, nil, entities.ErrForbidden
	}
	return ok(contract, nil)
}

func (s *Server) activateContract(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Contracts.ActivateContract(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) renewContract(r *http.Request) (int, interface{}, error) {
	var input dto.RenewContractInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Contracts.RenewContract(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input))
}

func (s *Server) terminateContract(r *http.Request) (int, interface{}, error) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Contracts.TerminateContract(r.Context(), actorFrom(r), chi.URLParam(r, "id"), body.Reason))
}
