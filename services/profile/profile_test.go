package profile

import (
	"context"
	"errors"
	"testing"

	profileRepo "voicetask/database/repository/profile"
	"voicetask/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{ err error }

func (f failingRepo) Get(context.Context) (*models.Profile, error) { return nil, f.err }
func (f failingRepo) Save(context.Context, models.Profile) error  { return f.err }

func newService(t *testing.T) *DefaultProfileService {
	t.Helper()
	repo, err := profileRepo.NewFileProfileRepo(t.TempDir())
	require.NoError(t, err)
	return &DefaultProfileService{Repo: repo, Defaults: models.Profile{Name: "Gebruiker"}}
}

func TestGetProfile_CreatesDefaultsOnFirstRead(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ProfileID, p.ID)
	assert.Equal(t, "Gebruiker", p.Name)

	stored, err := svc.Repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Gebruiker", stored.Name)
}

func TestUpdateProfile_OverwritesWholesale(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, models.Profile{Name: "Jan", Email: "jan@example.nl", Phone: "0612345678"})
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, models.Profile{Name: "Piet"})
	require.NoError(t, err)

	p, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Piet", p.Name)
	assert.Empty(t, p.Email, "fields not supplied are cleared")
	assert.False(t, p.IsComplete())
}

func TestUpdateProfile_RejectsBadEmail(t *testing.T) {
	svc := newService(t)
	_, err := svc.UpdateProfile(context.Background(), models.Profile{Email: "nope"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestPersistenceFailuresPropagate(t *testing.T) {
	boom := errors.New("disk full")
	svc := &DefaultProfileService{Repo: failingRepo{err: boom}}

	_, err := svc.GetProfile(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = svc.UpdateProfile(context.Background(), models.Profile{Name: "x"})
	assert.ErrorIs(t, err, boom)
}
