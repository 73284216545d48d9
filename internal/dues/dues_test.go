package dues

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/roster"
	"github.com/cheerclub/billing-api/internal/testutil"
)

var (
	admin    = auth.Principal{UserID: 1, Role: auth.RoleAdmin}
	guardian = auth.Principal{UserID: 20, Role: auth.RoleGuardian}
)

func setup(t *testing.T) (*Service, *ConfigService, *roster.Athlete) {
	t.Helper()
	db := testutil.OpenDB(t, &Config{}, &Due{}, &roster.Athlete{})
	a := &roster.Athlete{PayerID: guardian.UserID, FullName: "Emilia", Active: true}
	require.NoError(t, roster.NewRepository().Create(db, a))
	cfg := NewConfigService(db)
	return NewService(db, cfg, zap.NewNop()), cfg, a
}

func TestConfigServiceSeedsAndUpdates(t *testing.T) {
	_, cfgs, _ := setup(t)
	ctx := context.Background()

	cfg, err := cfgs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.DueDay)
	assert.True(t, cfg.Active)

	again, err := cfgs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, again.ID)

	base := decimal.NewFromInt(25000)
	day := 31
	updated, err := cfgs.Update(ctx, ConfigPatch{BaseAmount: &base, DueDay: &day})
	require.NoError(t, err)
	assert.True(t, updated.BaseAmount.Equal(base))

	got, err := cfgs.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 31, got.DueDay)

	neg := decimal.NewFromInt(-1)
	_, err = cfgs.Update(ctx, ConfigPatch{LateSurcharge: &neg})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidAmount))
	bad := 0
	_, err = cfgs.Update(ctx, ConfigPatch{DueDay: &bad})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDueDateClampsToMonthEnd(t *testing.T) {
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), DueDate(2026, 2, 31))
	assert.Equal(t, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), DueDate(2028, 2, 30))
	assert.Equal(t, time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC), DueDate(2026, 4, 5))
}

func TestCreateDue(t *testing.T) {
	s, cfgs, athlete := setup(t)
	ctx := context.Background()
	base := decimal.NewFromInt(18000)
	day := 30
	_, err := cfgs.Update(ctx, ConfigPatch{BaseAmount: &base, DueDay: &day})
	require.NoError(t, err)

	d, err := s.Create(ctx, guardian, CreateInput{AthleteID: athlete.ID, PayerID: 999, Month: 2, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, guardian.UserID, d.PayerID, "non-admins always bill themselves")
	assert.True(t, d.TotalAmount.Equal(base))
	assert.Equal(t, StatusPending, d.Status)
	assert.Equal(t, 28, d.DueDate.Day())

	_, err = s.Create(ctx, admin, CreateInput{AthleteID: athlete.ID, Month: 2, Year: 2026})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	d2, err := s.Create(ctx, admin, CreateInput{AthleteID: athlete.ID, Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, athlete.PayerID, d2.PayerID)

	for _, in := range []CreateInput{
		{AthleteID: athlete.ID, Month: 13, Year: 2026},
		{AthleteID: athlete.ID, Month: 0, Year: 2026},
		{AthleteID: athlete.ID, Month: 1, Year: 0},
	} {
		_, err := s.Create(ctx, admin, in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
	_, err = s.Create(ctx, admin, CreateInput{AthleteID: 77, Month: 1, Year: 2026})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateDueForSomeoneElsesAthlete(t *testing.T) {
	s, _, athlete := setup(t)
	ctx := context.Background()
	stranger := auth.Principal{UserID: 21, Role: auth.RoleGuardian}

	_, err := s.Create(ctx, stranger, CreateInput{AthleteID: athlete.ID, Month: 4, Year: 2026})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	list, err := s.List(ctx, admin, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUniqueConstraintIsTranslated(t *testing.T) {
	s, _, athlete := setup(t)
	d := &Due{AthleteID: athlete.ID, PayerID: 1, Month: 5, Year: 2026, Status: StatusPending}
	require.NoError(t, s.repo.Create(s.db, d))

	dup := &Due{AthleteID: athlete.ID, PayerID: 1, Month: 5, Year: 2026, Status: StatusPending}
	err := s.repo.Create(s.db, dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestMarkPaidAndWaive(t *testing.T) {
	s, _, athlete := setup(t)
	ctx := context.Background()

	d, err := s.Create(ctx, admin, CreateInput{AthleteID: athlete.ID, Month: 1, Year: 2026})
	require.NoError(t, err)
	paid, err := s.MarkPaid(s.db, d.ID, "manual", time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	_, err = s.MarkPaid(s.db, d.ID, "webpay", time.Now())
	assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyPaid))

	_, err = s.Waive(ctx, admin, d.ID, "")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	open, err := s.Create(ctx, admin, CreateInput{AthleteID: athlete.ID, Month: 2, Year: 2026})
	require.NoError(t, err)
	_, err = s.Waive(ctx, guardian, open.ID, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	waived, err := s.Waive(ctx, admin, open.ID, "scholarship")
	require.NoError(t, err)
	assert.Equal(t, StatusWaived, waived.Status)
	assert.Equal(t, "scholarship", waived.Notes)
	_, err = s.MarkPaid(s.db, open.ID, "manual", time.Now())
	assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyPaid))
}

func TestMarkOverdue(t *testing.T) {
	s, _, athlete := setup(t)
	ctx := context.Background()

	jan, err := s.Create(ctx, admin, CreateInput{AthleteID: athlete.ID, Month: 1, Year: 2026})
	require.NoError(t, err)
	mar, err := s.Create(ctx, admin, CreateInput{AthleteID: athlete.ID, Month: 3, Year: 2026})
	require.NoError(t, err)

	n, err := s.MarkOverdue(ctx, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.Find(s.db, jan.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOverdue, got.Status)
	assert.True(t, got.IsOutstanding())
	got, err = s.Find(s.db, mar.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}
