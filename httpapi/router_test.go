package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripmanager/auth"
	"tripmanager/company"
	"tripmanager/quotation"
	"tripmanager/triprequest"
)

type fakes struct {
	verifier  *fakeVerifier
	trips     *fakeTripSvc
	quotes    *fakeQuotationSvc
	companies *fakeCompanySvc
}

func newTestRouter(t *testing.T) (http.Handler, *fakes) {
	t.Helper()
	f := &fakes{
		verifier:  &fakeVerifier{principals: map[string]auth.Principal{}},
		trips:     &fakeTripSvc{},
		quotes:    &fakeQuotationSvc{},
		companies: &fakeCompanySvc{},
	}
	router := NewRouter(Services{
		Auth:         &fakeAuthSvc{},
		Verifier:     f.verifier,
		Companies:    f.companies,
		TripRequests: f.trips,
		Quotations:   f.quotes,
	}, zap.NewNop())
	return router, f
}

func doRequest(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	if body == "" {
		body = "{}"
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AuthRequired(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/trip-requests", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/trip-requests", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RoleGuards(t *testing.T) {
	router, f := newTestRouter(t)
	f.verifier.principals = map[string]auth.Principal{
		"user-token":  {UserID: "user-1", Role: auth.RoleUser},
		"admin-token": {UserID: "admin-1", Role: auth.RoleAdmin},
		"root-token":  {UserID: "root-1", Role: auth.RoleSuperAdmin},
	}

	// Customers are rejected from admin routes before any handler runs.
	rec := doRequest(t, router, http.MethodGet, "/api/admin/trip-requests", "user-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/admin/trip-requests", "admin-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Tenant admins are rejected from super-admin routes.
	rec = doRequest(t, router, http.MethodGet, "/api/admin/companies", "admin-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/admin/companies", "root-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_PublicRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/companies/slug/acme", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body publicCompanyView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "acme", body.Slug)
}

func TestRouter_ErrorMapping(t *testing.T) {
	router, f := newTestRouter(t)
	f.verifier.principals["user-token"] = auth.Principal{UserID: "user-1", Role: auth.RoleUser}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", triprequest.ErrNotFound, http.StatusNotFound},
		{"forbidden", triprequest.ErrForbidden, http.StatusForbidden},
		{"validation", triprequest.ErrInvalidInput, http.StatusBadRequest},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.trips.err = tt.err
			rec := doRequest(t, router, http.MethodGet, "/api/trip-requests/trip-1", "user-token", "")
			assert.Equal(t, tt.want, rec.Code)

			if tt.want == http.StatusInternalServerError {
				var body errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotContains(t, body.Message, "boom", "internal detail must not leak")
			}
		})
	}
}

func TestRouter_CompanySlugConflict(t *testing.T) {
	router, f := newTestRouter(t)
	f.verifier.principals["root-token"] = auth.Principal{UserID: "root-1", Role: auth.RoleSuperAdmin}

	f.companies.err = company.ErrDuplicateSlug
	rec := doRequest(t, router, http.MethodPost, "/api/admin/companies", "root-token", `{"name":"Acme","slug":"acme"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ALREADY_EXISTS", body.Error)
}

func TestRouter_QuotationStateConflicts(t *testing.T) {
	router, f := newTestRouter(t)
	f.verifier.principals["user-token"] = auth.Principal{UserID: "user-1", Role: auth.RoleUser}

	f.quotes.err = quotation.ErrInvalidState
	rec := doRequest(t, router, http.MethodPost, "/api/quotations/q-1/respond", "user-token", `{"decision":"ACCEPT"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.quotes.err = quotation.ErrExpired
	rec = doRequest(t, router, http.MethodPost, "/api/quotations/q-1/respond", "user-token", `{"decision":"ACCEPT"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_MalformedBody(t *testing.T) {
	router, f := newTestRouter(t)
	f.verifier.principals["user-token"] = auth.Principal{UserID: "user-1", Role: auth.RoleUser}

	rec := doRequest(t, router, http.MethodPost, "/api/trip-requests", "user-token", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeVerifier struct {
	principals map[string]auth.Principal
}

func (f *fakeVerifier) VerifyToken(token string) (auth.Principal, error) {
	p, ok := f.principals[token]
	if !ok {
		return auth.Principal{}, errors.New("invalid token")
	}
	return p, nil
}

type fakeAuthSvc struct{}

func (f *fakeAuthSvc) Register(ctx context.Context, req auth.RegisterRequest) (*auth.User, error) {
	return &auth.User{ID: "user-new", Email: req.Email}, nil
}

func (f *fakeAuthSvc) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error) {
	return auth.LoginResult{Token: "token", User: auth.User{ID: "user-1"}}, nil
}

func (f *fakeAuthSvc) VerifyEmail(ctx context.Context, token string) error {
	return nil
}

func (f *fakeAuthSvc) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	return &auth.User{ID: userID}, nil
}

type fakeCompanySvc struct {
	err error
}

func (f *fakeCompanySvc) Create(ctx context.Context, principal auth.Principal, params company.CreateParams) (company.Company, error) {
	return company.Company{ID: "company-1", Slug: params.Slug}, f.err
}

func (f *fakeCompanySvc) List(ctx context.Context, principal auth.Principal) ([]company.Company, error) {
	return nil, nil
}

func (f *fakeCompanySvc) GetByID(ctx context.Context, principal auth.Principal, id string) (company.Company, []company.Member, error) {
	return company.Company{ID: id}, nil, nil
}

func (f *fakeCompanySvc) GetBySlug(ctx context.Context, slug string) (company.Company, error) {
	return company.Company{ID: "company-1", Slug: slug, IsActive: true}, nil
}

func (f *fakeCompanySvc) Update(ctx context.Context, principal auth.Principal, id string, params company.UpdateParams) (company.Company, error) {
	return company.Company{ID: id}, nil
}

func (f *fakeCompanySvc) AssignUser(ctx context.Context, principal auth.Principal, userID, companyID string, role auth.Role) error {
	return nil
}

func (f *fakeCompanySvc) RemoveUser(ctx context.Context, principal auth.Principal, userID string) error {
	return nil
}

type fakeTripSvc struct {
	err error
}

func (f *fakeTripSvc) Create(ctx context.Context, principal auth.Principal, params triprequest.CreateParams) (triprequest.TripRequest, error) {
	return triprequest.TripRequest{ID: "trip-new"}, f.err
}

func (f *fakeTripSvc) ListMine(ctx context.Context, principal auth.Principal, status triprequest.Status, limit int, cursor string) (triprequest.Page, error) {
	return triprequest.Page{}, f.err
}

func (f *fakeTripSvc) GetByID(ctx context.Context, principal auth.Principal, id string) (triprequest.TripRequest, error) {
	return triprequest.TripRequest{ID: id}, f.err
}

func (f *fakeTripSvc) ListAll(ctx context.Context, principal auth.Principal, status triprequest.Status, limit int, cursor string) (triprequest.Page, error) {
	return triprequest.Page{}, f.err
}

func (f *fakeTripSvc) GetByIDAdmin(ctx context.Context, principal auth.Principal, id string) (triprequest.TripRequest, error) {
	return triprequest.TripRequest{ID: id}, f.err
}

func (f *fakeTripSvc) UpdateStatus(ctx context.Context, principal auth.Principal, id string, status triprequest.Status) (triprequest.TripRequest, error) {
	return triprequest.TripRequest{ID: id, Status: status}, f.err
}

func (f *fakeTripSvc) Confirm(ctx context.Context, principal auth.Principal, id string, params triprequest.ConfirmParams) (triprequest.TripRequest, error) {
	return triprequest.TripRequest{ID: id, IsConfirmed: true}, f.err
}

type fakeQuotationSvc struct {
	err error
}

func (f *fakeQuotationSvc) Create(ctx context.Context, principal auth.Principal, params quotation.CreateParams) (quotation.Quotation, error) {
	return quotation.Quotation{ID: "q-new"}, f.err
}

func (f *fakeQuotationSvc) Update(ctx context.Context, principal auth.Principal, id string, params quotation.UpdateParams) (quotation.Quotation, error) {
	return quotation.Quotation{ID: id}, f.err
}

func (f *fakeQuotationSvc) Send(ctx context.Context, principal auth.Principal, id string) (quotation.Quotation, error) {
	return quotation.Quotation{ID: id, Status: quotation.StatusSent}, f.err
}

func (f *fakeQuotationSvc) Respond(ctx context.Context, principal auth.Principal, id string, decision quotation.Decision) (quotation.Quotation, error) {
	return quotation.Quotation{ID: id}, f.err
}

func (f *fakeQuotationSvc) Delete(ctx context.Context, principal auth.Principal, id string) error {
	return f.err
}

func (f *fakeQuotationSvc) GetByID(ctx context.Context, principal auth.Principal, id string) (quotation.Quotation, error) {
	return quotation.Quotation{ID: id}, f.err
}

func (f *fakeQuotationSvc) ListForTripRequest(ctx context.Context, principal auth.Principal, tripRequestID string) ([]quotation.Quotation, error) {
	return nil, f.err
}
