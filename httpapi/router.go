package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Services bundles everything the router serves.
type Services struct {
	Auth         AuthService
	Verifier     TokenVerifier
	Companies    CompanyService
	TripRequests TripRequestService
	Quotations   QuotationService
}

// NewRouter assembles the full API surface. Route groups mirror the
// access tiers: public, authenticated customer, tenant admin and super
// admin.
func NewRouter(svc Services, logger *zap.Logger) http.Handler {
	authH := &authHandler{service: svc.Auth, logger: logger}
	companyH := &companyHandler{service: svc.Companies, logger: logger}
	tripH := &tripRequestHandler{service: svc.TripRequests, quotations: svc.Quotations, logger: logger}
	quotationH := &quotationHandler{service: svc.Quotations, logger: logger}

	authed := requireAuth(svc.Verifier, logger)
	admin := requireAdmin(logger)
	superAdmin := requireSuperAdmin(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/auth/register", authH.register)
		r.Post("/auth/login", authH.login)
		r.Post("/auth/verify-email", authH.verifyEmail)
		r.Get("/companies/slug/{slug}", companyH.getBySlug)

		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Get("/me", authH.me)

			r.Post("/trip-requests", tripH.create)
			r.Get("/trip-requests", tripH.listMine)
			r.Get("/trip-requests/{id}", tripH.getByID)
			r.Post("/trip-requests/{id}/confirm", tripH.confirm)

			r.Post("/quotations/{id}/respond", quotationH.respond)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authed, admin)

			r.Get("/trip-requests", tripH.listAll)
			r.Get("/trip-requests/{id}", tripH.getByIDAdmin)
			r.Patch("/trip-requests/{id}/status", tripH.updateStatus)

			r.Post("/quotations", quotationH.create)
			r.Get("/quotations/{id}", quotationH.getByID)
			r.Patch("/quotations/{id}", quotationH.update)
			r.Post("/quotations/{id}/send", quotationH.send)
			r.Delete("/quotations/{id}", quotationH.delete)

			r.Group(func(r chi.Router) {
				r.Use(superAdmin)

				r.Post("/companies", companyH.create)
				r.Get("/companies", companyH.list)
				r.Get("/companies/{id}", companyH.getByID)
				r.Patch("/companies/{id}", companyH.update)
				r.Post("/companies/{id}/users", companyH.assignUser)
				r.Delete("/users/{userID}/company", companyH.removeUser)
			})
		})
	})

	return r
}
