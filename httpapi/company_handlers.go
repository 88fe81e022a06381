package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tripmanager/auth"
	"tripmanager/company"
)

// CompanyService is the slice of the tenant service used by the HTTP layer.
type CompanyService interface {
	Create(ctx context.Context, principal auth.Principal, params company.CreateParams) (company.Company, error)
	List(ctx context.Context, principal auth.Principal) ([]company.Company, error)
	GetByID(ctx context.Context, principal auth.Principal, id string) (company.Company, []company.Member, error)
	GetBySlug(ctx context.Context, slug string) (company.Company, error)
	Update(ctx context.Context, principal auth.Principal, id string, params company.UpdateParams) (company.Company, error)
	AssignUser(ctx context.Context, principal auth.Principal, userID, companyID string, role auth.Role) error
	RemoveUser(ctx context.Context, principal auth.Principal, userID string) error
}

type companyHandler struct {
	service CompanyService
	logger  *zap.Logger
}

func (h *companyHandler) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req struct {
		Name       string  `json:"name"`
		Slug       string  `json:"slug"`
		AdminEmail *string `json:"admin_email"`
		LogoURL    *string `json:"logo_url"`
	}
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), principal, company.CreateParams{
		Name:       req.Name,
		Slug:       req.Slug,
		AdminEmail: req.AdminEmail,
		LogoURL:    req.LogoURL,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("company created", zap.String("company_id", created.ID), zap.String("slug", created.Slug))
	writeJSON(w, h.logger, http.StatusCreated, toCompanyView(created))
}

func (h *companyHandler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	companies, err := h.service.List(r.Context(), principal)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	views := make([]companyView, len(companies))
	for i, c := range companies {
		views[i] = toCompanyView(c)
	}
	writeJSON(w, h.logger, http.StatusOK, views)
}

func (h *companyHandler) getByID(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	c, members, err := h.service.GetByID(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"company": toCompanyView(c),
		"members": toMemberViews(members),
	})
}

// getBySlug serves the public booking page lookup. No authentication.
func (h *companyHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, publicCompanyView{
		Name:    c.Name,
		Slug:    c.Slug,
		LogoURL: c.LogoURL,
	})
}

func (h *companyHandler) update(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req struct {
		Name       *string `json:"name"`
		AdminEmail *string `json:"admin_email"`
		LogoURL    *string `json:"logo_url"`
		IsActive   *bool   `json:"is_active"`
	}
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), principal, chi.URLParam(r, "id"), company.UpdateParams{
		Name:       req.Name,
		AdminEmail: req.AdminEmail,
		LogoURL:    req.LogoURL,
		IsActive:   req.IsActive,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toCompanyView(updated))
}

func (h *companyHandler) assignUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	err := h.service.AssignUser(r.Context(), principal, req.UserID, chi.URLParam(r, "id"), auth.Role(req.Role))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "assigned"})
}

func (h *companyHandler) removeUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	if err := h.service.RemoveUser(r.Context(), principal, chi.URLParam(r, "userID")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "removed"})
}
