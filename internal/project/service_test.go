package project_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/project"
)

func TestService_List(t *testing.T) {
	t.Run("NotConfigured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(false)

		got := project.NewService(project.NewMockRepository(ctrl), identity).List(context.Background())
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("BackendError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(true)

		repo := project.NewMockRepository(ctrl)
		repo.EXPECT().ListProjects(gomock.Any()).Return(nil, errors.New("503"))

		got := project.NewService(repo, identity).List(context.Background())
		assert.Empty(t, got)
	})
}

func TestService_Create(t *testing.T) {
	t.Run("NotAuthenticated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().Actor(gomock.Any()).Return(uuid.Nil, backend.ErrNotAuthenticated)

		got, err := project.NewService(project.NewMockRepository(ctrl), identity).
			Create(context.Background(), project.CreateParams{Name: "Website"})

		assert.ErrorIs(t, err, backend.ErrNotAuthenticated)
		assert.Nil(t, got)
	})

	t.Run("DefaultsToPlanning", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		actor := uuid.New()
		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().Actor(gomock.Any()).Return(actor, nil)

		repo := project.NewMockRepository(ctrl)
		repo.EXPECT().
			CreateProject(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *project.Project) error {
				p.ID = uuid.New()
				return nil
			})

		got, err := project.NewService(repo, identity).
			Create(context.Background(), project.CreateParams{Name: "Website", TechStack: []string{"Go"}})

		require.NoError(t, err)
		assert.Equal(t, project.StatusPlanning, got.Status)
		assert.Equal(t, actor, got.UserID)
	})
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	t.Run("NotConfigured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(false)

		err := project.NewService(project.NewMockRepository(ctrl), identity).
			Update(context.Background(), id, project.Patch{Name: new("Renamed")})
		assert.ErrorIs(t, err, backend.ErrNotConfigured)
	})

	t.Run("EmptyPatchSkipsBackend", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(true)

		err := project.NewService(project.NewMockRepository(ctrl), identity).
			Update(context.Background(), id, project.Patch{})
		assert.NoError(t, err)
	})

	t.Run("PassesPatchThrough", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(true)

		repo := project.NewMockRepository(ctrl)
		repo.EXPECT().
			UpdateProject(gomock.Any(), id, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, p project.Patch) error {
				require.NotNil(t, p.Status)
				assert.Equal(t, project.StatusArchived, *p.Status)
				assert.Nil(t, p.Name)
				return nil
			})

		err := project.NewService(repo, identity).
			Update(context.Background(), id, project.Patch{Status: new(project.StatusArchived)})
		assert.NoError(t, err)
	})

	t.Run("ErrorPropagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(true)

		repo := project.NewMockRepository(ctrl)
		repo.EXPECT().UpdateProject(gomock.Any(), id, gomock.Any()).Return(errors.New("timeout"))

		err := project.NewService(repo, identity).
			Update(context.Background(), id, project.Patch{Name: new("Renamed")})
		assert.ErrorContains(t, err, "updating project")
	})
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("NotConfigured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(false)

		err := project.NewService(project.NewMockRepository(ctrl), identity).Delete(context.Background(), id)
		assert.ErrorIs(t, err, backend.ErrNotConfigured)
	})

	t.Run("Deletes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(true)

		repo := project.NewMockRepository(ctrl)
		repo.EXPECT().DeleteProject(gomock.Any(), id).Return(nil)

		assert.NoError(t, project.NewService(repo, identity).Delete(context.Background(), id))
	})

	t.Run("ErrorPropagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(true)

		backendErr := errors.New("503")
		repo := project.NewMockRepository(ctrl)
		repo.EXPECT().DeleteProject(gomock.Any(), id).Return(backendErr)

		err := project.NewService(repo, identity).Delete(context.Background(), id)
		assert.ErrorIs(t, err, backendErr)
	})
}

func TestService_AddCredential(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := &project.Project{ID: uuid.New(), Credentials: map[string]string{"ftp": "user:pass"}}

	identity := backend.NewMockIdentity(ctrl)
	identity.EXPECT().IsConfigured().Return(true)

	repo := project.NewMockRepository(ctrl)
	repo.EXPECT().
		UpdateProject(gomock.Any(), p.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, patch project.Patch) error {
			assert.Equal(t, map[string]string{"ftp": "user:pass", "cpanel": "admin"}, patch.Credentials)
			return nil
		})

	err := project.NewService(repo, identity).AddCredential(context.Background(), p, "cpanel", "admin")
	require.NoError(t, err)
	assert.Len(t, p.Credentials, 2)
}

func TestRenewalsDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	day := func(d int) *time.Time {
		return new(now.AddDate(0, 0, d))
	}

	soon := &project.Project{Name: "Soon", Status: project.StatusActive, DomainExpiry: day(10), HostingRenewal: day(90)}
	overdue := &project.Project{Name: "Overdue", Status: project.StatusMaintenance, HostingRenewal: day(-2)}
	archived := &project.Project{Name: "Old", Status: project.StatusArchived, DomainExpiry: day(1)}

	got := project.RenewalsDue([]*project.Project{soon, overdue, archived}, now, 30*24*time.Hour)

	require.Len(t, got, 2)
	assert.Equal(t, overdue, got[0].Project)
	assert.Equal(t, project.RenewalHosting, got[0].Kind)
	assert.Equal(t, soon, got[1].Project)
	assert.Equal(t, project.RenewalDomain, got[1].Kind)
}
