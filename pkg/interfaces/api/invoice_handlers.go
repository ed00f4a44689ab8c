package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
)

func (s *Server) submitInvoice(r *http.Request) (int, interface{}, error) {
	var input dto.SubmitInvoiceInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return created(s.services.Invoices.SubmitInvoice(r.Context(), actorFrom(r), input))
}

func (s *Server) overdueInvoices(r *http.Request) (int, interface{}, error) {
	if err := permit(r, entities.PermManageInvoices); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Invoices.OverdueInvoices(r.Context()))
}

func (s *Server) invoicesDueSoon(r *http.Request) (int, interface{}, error) {
	if err := permit(r, entities.PermManageInvoices); err != nil {
		return 0, nil, err
	}
	days, err := intQuery(r, "days")
	if err != nil {
		return 0, nil, err
	}
	return ok(s.services.Invoices.InvoicesDueSoon(r.Context(), days))
}

func (s *Server) getInvoice(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Invoices.GetInvoice(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

// invoiceBalance shows the balance to anyone allowed to see the invoice.
func (s *Server) invoiceBalance(r *http.Request) (int, interface{}, error) {
	invoice, err := s.services.Invoices.GetInvoice(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	return ok(s.services.Invoices.Balance(r.Context(), invoice.ID))
}

func (s *Server) reviewInvoice(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Invoices.StartReview(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) approveInvoice(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Invoices.ApproveInvoice(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) rejectInvoice(r *http.Request) (int, interface{}, error) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Invoices.RejectInvoice(r.Context(), actorFrom(r), chi.URLParam(r, "id"), body.Reason))
}

func (s *Server) disputeInvoice(r *http.Request) (int, interface{}, error) {
	var body reasonBody
	if err := decodeOptional(r, &body); err != nil {
		return 0, nil, err
	}
	return ok(s.services.Invoices.MarkDisputed(r.Context(), actorFrom(r), chi.URLParam(r, "id"), body.Reason))
}

func (s *Server) resolveInvoiceDispute(r *http.Request) (int, interface{}, error) {
	return ok(s.services.Invoices.ResolveDispute(r.Context(), actorFrom(r), chi.URLParam(r, "id")))
}

func (s *Server) processPayment(r *http.Request) (int, interface{}, error) {
	var input dto.PaymentInput
	if err := decode(r, &input); err != nil {
		return 0, nil, err
	}
	return created(s.services.Invoices.ProcessPayment(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input))
}
