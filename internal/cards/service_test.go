package cards

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/testutil"
)

var payer = auth.Principal{UserID: 5, Role: auth.RoleGuardian}

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(testutil.OpenDB(t, &Card{}), zap.NewNop())
}

func defaults(t *testing.T, s *Service, p auth.Principal) []uint {
	t.Helper()
	list, err := s.List(context.Background(), p)
	require.NoError(t, err)
	var ids []uint
	for _, c := range list {
		if c.IsDefault {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func TestFirstCardBecomesDefault(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	first, err := s.Create(ctx, payer, CreateInput{Last4: "4242"})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := s.Create(ctx, payer, CreateInput{Last4: "1111"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
	assert.Equal(t, []uint{first.ID}, defaults(t, s, payer))

	third, err := s.Create(ctx, payer, CreateInput{Last4: "0005", IsDefault: true})
	require.NoError(t, err)
	assert.Equal(t, []uint{third.ID}, defaults(t, s, payer))

	_, err = s.Create(ctx, payer, CreateInput{Last4: "12a4"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSetDefaultKeepsExactlyOne(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	a, err := s.Create(ctx, payer, CreateInput{Last4: "0001"})
	require.NoError(t, err)
	b, err := s.Create(ctx, payer, CreateInput{Last4: "0002"})
	require.NoError(t, err)
	other := auth.Principal{UserID: 6, Role: auth.RoleGuardian}
	theirs, err := s.Create(ctx, other, CreateInput{Last4: "0003"})
	require.NoError(t, err)

	_, err = s.SetDefault(ctx, payer, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, defaults(t, s, payer))

	yes := true
	_, err = s.Update(ctx, payer, a.ID, UpdateInput{IsDefault: &yes})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, defaults(t, s, payer))
	assert.Equal(t, []uint{theirs.ID}, defaults(t, s, other), "other payers are untouched")

	_, err = s.SetDefault(ctx, payer, theirs.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteDefaultPromotesNewest(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	a, err := s.Create(ctx, payer, CreateInput{Last4: "0001"})
	require.NoError(t, err)
	_, err = s.Create(ctx, payer, CreateInput{Last4: "0002"})
	require.NoError(t, err)
	c, err := s.Create(ctx, payer, CreateInput{Last4: "0003"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, payer, a.ID))
	assert.Equal(t, []uint{c.ID}, defaults(t, s, payer))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(s.Delete(ctx, payer, a.ID)))
}

func TestResolve(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.Resolve(s.db, payer.UserID, 0)
	assert.True(t, apperr.HasCode(err, apperr.CodeNoInstrument))

	def, err := s.Create(ctx, payer, CreateInput{Last4: "0001"})
	require.NoError(t, err)
	other, err := s.Create(ctx, payer, CreateInput{Last4: "0002"})
	require.NoError(t, err)

	got, err := s.Resolve(s.db, payer.UserID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ID)

	got, err = s.Resolve(s.db, payer.UserID, 0)
	require.NoError(t, err)
	assert.Equal(t, def.ID, got.ID)

	got, err = s.Resolve(s.db, 99, other.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNoInstrument), "cards of another payer are never used")
	assert.Nil(t, got)
}

func TestGatewayTokenIsNotSerialized(t *testing.T) {
	raw, err := json.Marshal(Card{Last4: "4242", GatewayToken: "tok_secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tok_secret")
}
