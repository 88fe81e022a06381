package company

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmanager/auth"
)

var (
	superAdmin = auth.Principal{UserID: "root-1", Role: auth.RoleSuperAdmin}
	tenant     = auth.Principal{UserID: "admin-1", Role: auth.RoleAdmin}
)

func TestCreate_SuperAdminOnly(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), tenant, CreateParams{Name: "Acme", Slug: "acme"})
	require.ErrorIs(t, err, ErrForbidden)
	assert.False(t, repo.created)

	created, err := svc.Create(context.Background(), superAdmin, CreateParams{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "acme", created.Slug)
}

func TestCreate_SlugValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	for _, slug := range []string{"", "Acme", "acme transfers", "acme_transfers", "ácme"} {
		_, err := svc.Create(context.Background(), superAdmin, CreateParams{Name: "Acme", Slug: slug})
		assert.ErrorIs(t, err, ErrInvalidInput, "slug %q", slug)
	}

	_, err := svc.Create(context.Background(), superAdmin, CreateParams{Name: "Acme", Slug: "acme-transfers-2"})
	require.NoError(t, err)
}

func TestCreate_RequiresName(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.Create(context.Background(), superAdmin, CreateParams{Name: "  ", Slug: "acme"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetBySlug_Public(t *testing.T) {
	repo := &fakeRepo{bySlug: Company{ID: "company-1", Slug: "acme", IsActive: true}}
	svc := NewService(repo)

	c, err := svc.GetBySlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "company-1", c.ID)
}

func TestUpdate_SuperAdminOnly(t *testing.T) {
	svc := NewService(&fakeRepo{})
	name := "New Name"

	_, err := svc.Update(context.Background(), tenant, "company-1", UpdateParams{Name: &name})
	require.ErrorIs(t, err, ErrForbidden)

	empty := " "
	_, err = svc.Update(context.Background(), superAdmin, "company-1", UpdateParams{Name: &empty})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(context.Background(), superAdmin, "company-1", UpdateParams{Name: &name})
	require.NoError(t, err)
}

func TestAssignUser_RoleRestricted(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	err := svc.AssignUser(context.Background(), superAdmin, "user-1", "company-1", auth.RoleSuperAdmin)
	require.ErrorIs(t, err, ErrInvalidInput)

	err = svc.AssignUser(context.Background(), superAdmin, "user-1", "company-1", auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", repo.assignedRole)

	err = svc.AssignUser(context.Background(), tenant, "user-1", "company-1", auth.RoleUser)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRemoveUser_SuperAdminOnly(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	require.ErrorIs(t, svc.RemoveUser(context.Background(), tenant, "user-1"), ErrForbidden)
	require.NoError(t, svc.RemoveUser(context.Background(), superAdmin, "user-1"))
	assert.Equal(t, "user-1", repo.removedUser)
}

func TestActiveCompanyIDBySlug(t *testing.T) {
	repo := &fakeRepo{bySlug: Company{ID: "company-1", Slug: "acme", IsActive: true}}
	svc := NewService(repo)

	id, err := svc.ActiveCompanyIDBySlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "company-1", id)

	repo.bySlugErr = ErrNotFound
	_, err = svc.ActiveCompanyIDBySlug(context.Background(), "gone")
	require.Error(t, err)
}

type fakeRepo struct {
	created      bool
	bySlug       Company
	bySlugErr    error
	assignedRole string
	removedUser  string
}

func (f *fakeRepo) Create(ctx context.Context, params CreateParams) (Company, error) {
	f.created = true
	return Company{ID: "company-new", Name: params.Name, Slug: params.Slug, IsActive: true}, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]Company, error) {
	return nil, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (Company, []Member, error) {
	return Company{ID: id}, nil, nil
}

func (f *fakeRepo) GetBySlug(ctx context.Context, slug string) (Company, error) {
	if f.bySlugErr != nil {
		return Company{}, f.bySlugErr
	}
	return f.bySlug, nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, params UpdateParams) (Company, error) {
	return Company{ID: id}, nil
}

func (f *fakeRepo) AssignUser(ctx context.Context, userID, companyID, role string) error {
	f.assignedRole = role
	return nil
}

func (f *fakeRepo) RemoveUser(ctx context.Context, userID string) error {
	f.removedUser = userID
	return nil
}
