package triprequest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmanager/auth"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func validParams() CreateParams {
	return CreateParams{
		ServiceType:        ServiceBoth,
		ArrivalAirport:     strPtr("MXP"),
		DestinationAddress: strPtr("Via Roma 1, Milano"),
		PickupAddress:      strPtr("Via Roma 1, Milano"),
		DepartureAirport:   strPtr("MXP"),
		Language:           "en",
		FirstName:          "Alice",
		LastName:           "Rossi",
		Phone:              "+39 333 1234567",
		NumberOfAdults:     2,
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateParams)
	}{
		{"unknown service type", func(p *CreateParams) { p.ServiceType = "helicopter" }},
		{"arrival without airport", func(p *CreateParams) { p.ServiceType = ServiceArrival; p.ArrivalAirport = nil }},
		{"arrival without destination", func(p *CreateParams) { p.ServiceType = ServiceArrival; p.DestinationAddress = strPtr("  ") }},
		{"departure without pickup", func(p *CreateParams) { p.ServiceType = ServiceDeparture; p.PickupAddress = nil }},
		{"departure without airport", func(p *CreateParams) { p.ServiceType = ServiceDeparture; p.DepartureAirport = nil }},
		{"missing first name", func(p *CreateParams) { p.FirstName = " " }},
		{"missing last name", func(p *CreateParams) { p.LastName = "" }},
		{"missing phone", func(p *CreateParams) { p.Phone = "" }},
		{"zero adults", func(p *CreateParams) { p.NumberOfAdults = 0 }},
		{"negative children", func(p *CreateParams) { p.NumberOfChildren = intPtr(-1) }},
		{"negative child seats", func(p *CreateParams) { p.NumberOfChildSeats = intPtr(-2) }},
	}

	principal := auth.Principal{UserID: "user-1", Role: auth.RoleUser}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := NewService(repo, nil, nil)

			params := validParams()
			tt.mutate(&params)

			_, err := svc.Create(context.Background(), principal, params)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.False(t, repo.created, "repository must not be reached")
		})
	}
}

func TestCreate_SetsOwnerAndPendingStatus(t *testing.T) {
	repo := &fakeRepo{}
	notifier := &fakeNotifier{}
	companyID := "company-1"
	principal := auth.Principal{UserID: "user-1", Role: auth.RoleUser, CompanyID: &companyID}

	svc := NewService(repo, notifier, nil)

	created, err := svc.Create(context.Background(), principal, validParams())
	require.NoError(t, err)

	assert.Equal(t, "user-1", created.UserID)
	require.NotNil(t, created.CompanyID)
	assert.Equal(t, companyID, *created.CompanyID)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, 1, notifier.createdCount, "admin team notified")
}

func TestCreate_ArrivalOnlySkipsDepartureFields(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, nil)

	params := validParams()
	params.ServiceType = ServiceArrival
	params.PickupAddress = nil
	params.DepartureAirport = nil

	_, err := svc.Create(context.Background(), auth.Principal{UserID: "user-1", Role: auth.RoleUser}, params)
	require.NoError(t, err)
}

func TestGetByID_OwnerOnly(t *testing.T) {
	repo := &fakeRepo{stored: TripRequest{ID: "trip-1", UserID: "user-1"}}
	svc := NewService(repo, nil, nil)

	_, err := svc.GetByID(context.Background(), auth.Principal{UserID: "user-2", Role: auth.RoleUser}, "trip-1")
	require.ErrorIs(t, err, ErrForbidden)

	req, err := svc.GetByID(context.Background(), auth.Principal{UserID: "user-1", Role: auth.RoleUser}, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, "trip-1", req.ID)
}

func TestListMine_ScopesToOwner(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, nil)

	_, err := svc.ListMine(context.Background(), auth.Principal{UserID: "user-1", Role: auth.RoleUser}, "", 20, "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", repo.filters.OwnerID)
	assert.False(t, repo.withUser)
}

func TestListAll_AdminScopedToCompany(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, nil)
	companyID := "company-1"

	_, err := svc.ListAll(context.Background(), auth.Principal{UserID: "admin-1", Role: auth.RoleAdmin, CompanyID: &companyID}, "", 20, "")
	require.NoError(t, err)
	assert.Equal(t, companyID, repo.filters.CompanyID)
	assert.True(t, repo.withUser)
}

func TestListAll_SuperAdminSeesAllTenants(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, nil)

	_, err := svc.ListAll(context.Background(), auth.Principal{UserID: "root-1", Role: auth.RoleSuperAdmin}, "", 20, "")
	require.NoError(t, err)
	assert.Empty(t, repo.filters.CompanyID)
}

func TestListAll_ForbiddenForCustomers(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, nil)

	_, err := svc.ListAll(context.Background(), auth.Principal{UserID: "user-1", Role: auth.RoleUser}, "", 20, "")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateStatus_AdminOverride(t *testing.T) {
	repo := &fakeRepo{stored: TripRequest{ID: "trip-1", Status: StatusAccepted}}
	svc := NewService(repo, nil, nil)
	admin := auth.Principal{UserID: "admin-1", Role: auth.RoleAdmin}

	// Any transition goes, including backwards.
	_, err := svc.UpdateStatus(context.Background(), admin, "trip-1", StatusPending)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, repo.updatedStatus)

	_, err = svc.UpdateStatus(context.Background(), admin, "trip-1", Status("BOGUS"))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateStatus(context.Background(), auth.Principal{UserID: "user-1", Role: auth.RoleUser}, "trip-1", StatusCancelled)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestConfirm_OwnerOnly(t *testing.T) {
	repo := &fakeRepo{stored: TripRequest{ID: "trip-1", UserID: "user-1"}}
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil)

	_, err := svc.Confirm(context.Background(), auth.Principal{UserID: "user-2", Role: auth.RoleUser}, "trip-1", ConfirmParams{})
	require.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, notifier.confirmedCount)

	confirmed, err := svc.Confirm(context.Background(), auth.Principal{UserID: "user-1", Role: auth.RoleUser}, "trip-1", ConfirmParams{
		ArrivalFlightNumber: strPtr("AZ123"),
	})
	require.NoError(t, err)
	assert.True(t, confirmed.IsConfirmed)
	assert.Equal(t, 1, notifier.confirmedCount)
}

type fakeRepo struct {
	stored        TripRequest
	created       bool
	filters       Filters
	withUser      bool
	updatedStatus Status
}

func (f *fakeRepo) Create(ctx context.Context, req TripRequest) (TripRequest, error) {
	f.created = true
	req.ID = "trip-new"
	req.OrderNumber = 1001
	return req, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (TripRequest, error) {
	if f.stored.ID != id {
		return TripRequest{}, ErrNotFound
	}
	return f.stored, nil
}

func (f *fakeRepo) List(ctx context.Context, filters Filters, withUser bool) (Page, error) {
	f.filters = filters
	f.withUser = withUser
	return Page{}, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id string, status Status) (TripRequest, error) {
	f.updatedStatus = status
	req := f.stored
	req.Status = status
	return req, nil
}

func (f *fakeRepo) Confirm(ctx context.Context, id string, params ConfirmParams) (TripRequest, error) {
	req := f.stored
	req.IsConfirmed = true
	req.ArrivalFlightNumber = params.ArrivalFlightNumber
	return req, nil
}

func (f *fakeRepo) OwnerSummary(ctx context.Context, userID string) (UserSummary, error) {
	return UserSummary{ID: userID, Email: "owner@example.com"}, nil
}

type fakeNotifier struct {
	createdCount   int
	confirmedCount int
}

func (f *fakeNotifier) TripRequestCreated(req TripRequest, owner UserSummary) {
	f.createdCount++
}

func (f *fakeNotifier) TripConfirmed(req TripRequest, owner UserSummary) {
	f.confirmedCount++
}
