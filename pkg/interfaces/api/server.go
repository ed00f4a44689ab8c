// Package api exposes the procurement workflow over HTTP.
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vsinha/procure/pkg/application/services"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
	domainsvc "github.com/vsinha/procure/pkg/domain/services"
)

// Server routes HTTP requests to the workflow services.
type Server struct {
	services *services.Services
	users    repositories.UserRepository
	logger   *zap.Logger
	router   chi.Router
}

// NewServer builds the router. users resolves the X-User-ID header.
func NewServer(svcs *services.Services, users repositories.UserRepository, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		services: svcs,
		users:    users,
		logger:   logger.Named("http"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(traceRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/vendor-registration", func(r chi.Router) {
		r.Get("/categories", s.handle(s.listCategories))
		r.Post("/", s.handle(s.registerVendor))
	})

	r.Group(func(r chi.Router) {
		r.Use(s.resolveActor)
		r.Use(s.requireActor)

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", s.handle(s.listVendors))
			r.Post("/", s.handle(s.createVendor))
			r.Get("/rankings", s.handle(s.rankings))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handle(s.getVendor))
				r.Patch("/", s.handle(s.updateVendor))
				r.Post("/approve", s.handle(s.approveVendor))
				r.Post("/suspend", s.handle(s.suspendVendor))
				r.Post("/reinstate", s.handle(s.reinstateVendor))
				r.Post("/blacklist", s.handle(s.blacklistVendor))
				r.Post("/reviews", s.handle(s.addReview))
				r.Get("/warnings", s.handle(s.listWarnings))
				r.Post("/warnings", s.handle(s.issueWarning))
			})
		})
		r.Post("/warnings/{id}/resolve", s.handle(s.resolveWarning))

		r.Route("/rfqs", func(r chi.Router) {
			r.Post("/", s.handle(s.createRFQ))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handle(s.getRFQ))
				r.Post("/invitations", s.handle(s.inviteVendors))
				r.Post("/publish", s.handle(s.publishRFQ))
				r.Post("/close", s.handle(s.closeRFQ))
				r.Get("/responses", s.handle(s.listResponses))
				r.Post("/responses", s.handle(s.submitResponse))
				r.Get("/recommendation", s.handle(s.recommendWinner))
				r.Post("/award", s.handle(s.awardRFQ))
			})
		})
		r.Route("/responses/{id}", func(r chi.Router) {
			r.Post("/evaluations", s.handle(s.evaluateResponse))
			r.Post("/withdraw", s.handle(s.withdrawResponse))
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", s.handle(s.createContract))
			r.Get("/expiring", s.handle(s.expiringContracts))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handle(s.getContract))
				r.Post("/activate", s.handle(s.activateContract))
				r.Post("/renew", s.handle(s.renewContract))
				r.Post("/terminate", s.handle(s.terminateContract))
			})
		})

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Post("/", s.handle(s.createPO))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handle(s.getPO))
				r.Post("/approve", s.handle(s.approvePO))
				r.Post("/acknowledge", s.handle(s.acknowledgePO))
				r.Post("/deliver", s.handle(s.deliverPO))
				r.Post("/complete", s.handle(s.completePO))
				r.Post("/cancel", s.handle(s.cancelPO))
				r.Post("/items", s.handle(s.addPOItem))
				r.Delete("/items/{itemID}", s.handle(s.removePOItem))
			})
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", s.handle(s.submitInvoice))
			r.Get("/overdue", s.handle(s.overdueInvoices))
			r.Get("/due-soon", s.handle(s.invoicesDueSoon))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handle(s.getInvoice))
				r.Get("/balance", s.handle(s.invoiceBalance))
				r.Post("/review", s.handle(s.reviewInvoice))
				r.Post("/approve", s.handle(s.approveInvoice))
				r.Post("/reject", s.handle(s.rejectInvoice))
				r.Post("/dispute", s.handle(s.disputeInvoice))
				r.Post("/resolve", s.handle(s.resolveInvoiceDispute))
				r.Post("/payments", s.handle(s.processPayment))
			})
		})
	})
	return r
}

// handlerFunc returns the status and body of a successful request.
type handlerFunc func(r *http.Request) (int, interface{}, error)

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body, err := fn(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, status, body)
	}
}

// permit guards the read-only reports, which the services leave open.
func permit(r *http.Request, permission entities.Permission) error {
	return domainsvc.Authorize(actorFrom(r), permission)
}

func ok(v interface{}, err error) (int, interface{}, error) {
	return http.StatusOK, v, err
}

func created(v interface{}, err error) (int, interface{}, error) {
	return http.StatusCreated, v, err
}

// intQuery parses an optional integer query parameter, 0 when absent.
func intQuery(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errBadRequestf("%s must be an integer", name)
	}
	return n, nil
}

// ownsVendor reports whether the actor is the login linked to vendorID.
func (s *Server) ownsVendor(r *http.Request, vendorID string) bool {
	actor := actorFrom(r)
	vendor, err := s.services.Onboarding.GetVendor(r.Context(), actor, vendorID)
	return err == nil && actor != nil && vendor.UserID == actor.ID
}
