package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/testutil"
)

func newService(t *testing.T) (*Service, *auth.Keys) {
	t.Helper()
	keys := testutil.Keys(t)
	return NewService(testutil.OpenDB(t, &Account{}), keys, zap.NewNop()), keys
}

func TestCreateAndLogin(t *testing.T) {
	s, keys := newService(t)
	ctx := context.Background()

	a, tmp, err := s.Create(ctx, CreateInput{Email: " Ana@Club.cl ", Name: "Ana", Role: auth.RoleGuardian, Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Empty(t, tmp)
	assert.Equal(t, "ana@club.cl", a.Email)

	tok, got, err := s.Login(ctx, "ana@club.cl", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	p, err := keys.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{UserID: a.ID, Role: auth.RoleGuardian}, p)

	_, _, err = s.Login(ctx, "ana@club.cl", "wrong")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, _, err = s.Login(ctx, "nobody@club.cl", "s3cret-pass")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestCreateGeneratesTemporaryPassword(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	a, tmp, err := s.Create(ctx, CreateInput{Email: "coach@club.cl", Role: auth.RoleCoach})
	require.NoError(t, err)
	require.NotEmpty(t, tmp)
	assert.True(t, a.MustResetPassword)

	_, _, err = s.Login(ctx, "coach@club.cl", tmp)
	assert.NoError(t, err)

	_, _, err = s.Create(ctx, CreateInput{Email: "coach@club.cl", Role: auth.RoleCoach})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateRejectsShortPassword(t *testing.T) {
	s, _ := newService(t)

	_, _, err := s.Create(context.Background(), CreateInput{Email: "p@club.cl", Role: auth.RolePublic, Password: "short"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPromoteToGuardian(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	pub, _, err := s.Create(ctx, CreateInput{Email: "p@club.cl", Role: auth.RolePublic, Password: "password1"})
	require.NoError(t, err)
	coach, _, err := s.Create(ctx, CreateInput{Email: "c@club.cl", Role: auth.RoleCoach, Password: "password1"})
	require.NoError(t, err)

	ok, err := s.PromoteToGuardian(ctx, pub.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Get(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleGuardian, got.Role)

	ok, err = s.PromoteToGuardian(ctx, pub.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.PromoteToGuardian(ctx, coach.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
