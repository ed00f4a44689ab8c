package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vsinha/procure/pkg/application/dto"
)

func (s *Server) createPO(r *http.Request) (int, interface{}, error) {
	var input dto.CreatePOInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return created(s.services.Orders.CreatePO(r.Context(), actorFrom(r), input))
}

func (s *Server) getPO(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Orders.GetPO(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) approvePO(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Orders.ApprovePO(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) acknowledgePO(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Orders.AcknowledgePO(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

type deliveryBody struct {
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

func (s *Server) deliverPO(r *http.Request) (int, interface{}, error) {
	var body deliveryBody
	if err := decodeOptional(r, &body); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Orders.MarkDelivered(r.Context(), actorFrom(r), chi.URLParam(r, "id"), body.DeliveredAt))
}

func (s *Server) completePO(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Orders.CompletePO(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) cancelPO(r *http.Request) (int, interface{}, error) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Orders.CancelPO(r.Context(), actorFrom(r), chi.URLParam(r, "id"), body.Reason))
}

func (s *Server) addPOItem(r *http.Request) (int, interface{}, error) {
	var input dto.POItemInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return created(s.services.Orders.AddItem(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input))
}

func (s *Server) removePOItem(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Orders.RemoveItem(r.Context(), actorFrom(r), chi.URLParam(r, "id"), chi.URLParam(r, "itemID")))
}
