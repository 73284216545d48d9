package manualpayment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/dues"
	"github.com/cheerclub/billing-api/internal/enrollment"
	"github.com/cheerclub/billing-api/internal/roster"
	"github.com/cheerclub/billing-api/internal/testutil"
)

var (
	admin    = auth.Principal{UserID: 1, Role: auth.RoleAdmin}
	guardian = auth.Principal{UserID: 30, Role: auth.RoleGuardian}
)

type fixture struct {
	svc         *Service
	enrollments *enrollment.Service
	dues        *dues.Service
	config      *dues.ConfigService
	athlete     *roster.Athlete
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.OpenDB(t,
		&Payment{}, &enrollment.Period{}, &enrollment.Obligation{},
		&dues.Config{}, &dues.Due{}, &roster.Athlete{})
	a := &roster.Athlete{PayerID: guardian.UserID, FullName: "Josefa", Active: true}
	require.NoError(t, roster.NewRepository().Create(db, a))

	es := enrollment.NewService(db, zap.NewNop())
	cfg := dues.NewConfigService(db)
	ds := dues.NewService(db, cfg, zap.NewNop())
	return fixture{
		svc:         NewService(db, es, ds, zap.NewNop()),
		enrollments: es,
		dues:        ds,
		config:      cfg,
		athlete:     a,
	}
}

func ptr(v uint) *uint { return &v }

func TestRecordSettlesLinkedEnrollment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.enrollments.CreatePeriod(ctx, enrollment.PeriodInput{Name: "2026", Fee: decimal.NewFromInt(40000), Status: enrollment.PeriodActive})
	require.NoError(t, err)
	o, err := f.enrollments.CreateObligation(ctx, guardian, enrollment.CreateInput{AthleteID: f.athlete.ID})
	require.NoError(t, err)

	pay, err := f.svc.Record(ctx, admin, Input{
		Kind:                   KindEnrollment,
		Amount:                 decimal.NewFromInt(40000),
		Concept:                "Matrícula 2026",
		Method:                 "transfer",
		EnrollmentObligationID: ptr(o.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, guardian.UserID, pay.PayerID)
	assert.Equal(t, admin.UserID, pay.RecordedBy)
	assert.True(t, pay.Linked())

	got, err := f.enrollments.Find(f.svc.db, o.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPaid())
	assert.Equal(t, "transfer", got.PaymentMethod)

	_, err = f.svc.Record(ctx, admin, Input{
		Kind:                   KindEnrollment,
		Amount:                 decimal.NewFromInt(40000),
		Concept:                "again",
		Method:                 "cash",
		EnrollmentObligationID: ptr(o.ID),
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyPaid))

	var n int64
	require.NoError(t, f.svc.db.Model(&Payment{}).Count(&n).Error)
	assert.EqualValues(t, 1, n, "failed settlement must not leave a payment behind")
}

func TestRecordSettlesLinkedDue(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	base := decimal.NewFromInt(20000)
	_, err := f.config.Update(ctx, dues.ConfigPatch{BaseAmount: &base})
	require.NoError(t, err)
	d, err := f.dues.Create(ctx, admin, dues.CreateInput{AthleteID: f.athlete.ID, Month: 3, Year: 2026})
	require.NoError(t, err)

	_, err = f.svc.Record(ctx, admin, Input{
		Kind:    KindRecurringDue,
		Amount:  decimal.NewFromInt(5000),
		Concept: "Marzo",
		Method:  "cash",
		DueID:   ptr(d.ID),
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidAmount), "short payment")

	_, err = f.svc.Record(ctx, admin, Input{
		PayerID: 999,
		Kind:    KindRecurringDue,
		Amount:  decimal.NewFromInt(20000),
		Concept: "Marzo",
		Method:  "cash",
		DueID:   ptr(d.ID),
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "payer mismatch")

	pay, err := f.svc.Record(ctx, admin, Input{
		PayerID: guardian.UserID,
		Kind:    KindRecurringDue,
		Amount:  decimal.NewFromInt(20000),
		Concept: "Marzo",
		Method:  "cash",
		DueID:   ptr(d.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, guardian.UserID, pay.PayerID)

	got, err := f.dues.Find(f.svc.db, d.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOutstanding())
}

func TestRecordRejectsAmountOtherThanTotal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.enrollments.CreatePeriod(ctx, enrollment.PeriodInput{Name: "2026", Fee: decimal.NewFromInt(40000), Status: enrollment.PeriodActive})
	require.NoError(t, err)
	o, err := f.enrollments.CreateObligation(ctx, guardian, enrollment.CreateInput{AthleteID: f.athlete.ID})
	require.NoError(t, err)

	for _, amount := range []int64{1, 39999, 40001} {
		_, err = f.svc.Record(ctx, admin, Input{
			Kind:                   KindEnrollment,
			Amount:                 decimal.NewFromInt(amount),
			Concept:                "Matrícula 2026",
			Method:                 "cash",
			EnrollmentObligationID: ptr(o.ID),
		})
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidAmount), "amount %d", amount)
	}

	got, err := f.enrollments.Find(f.svc.db, o.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPaid())
	assert.True(t, got.AmountPaid.IsZero())

	var n int64
	require.NoError(t, f.svc.db.Model(&Payment{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRecordValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	valid := Input{PayerID: guardian.UserID, Kind: KindOther, Amount: decimal.NewFromInt(5000), Concept: "Uniforme", Method: "cash"}

	_, err := f.svc.Record(ctx, guardian, valid)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	cases := map[string]func(in *Input){
		"zero amount":      func(in *Input) { in.Amount = decimal.Zero },
		"missing concept":  func(in *Input) { in.Concept = "" },
		"unknown kind":     func(in *Input) { in.Kind = "donation" },
		"other with link":  func(in *Input) { in.DueID = ptr(1) },
		"due without link": func(in *Input) { in.Kind = KindRecurringDue },
		"missing payer":    func(in *Input) { in.PayerID = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := f.svc.Record(ctx, admin, in)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}

	_, err = f.svc.Record(ctx, admin, Input{Kind: KindRecurringDue, Amount: decimal.NewFromInt(1), Concept: "x", Method: "cash", DueID: ptr(404)})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	pay, err := f.svc.Record(ctx, admin, valid)
	require.NoError(t, err)
	assert.False(t, pay.Linked())
}

func TestCreateHandler(t *testing.T) {
	f := setup(t)
	body, _ := json.Marshal(map[string]any{
		"payerId": guardian.UserID,
		"kind":    "other",
		"amount":  "15000",
		"concept": "Viaje campeonato",
		"method":  "transfer",
	})
	req := httptest.NewRequest(http.MethodPost, "/payments/manual", bytes.NewReader(body))
	req = req.WithContext(auth.WithPrincipal(req.Context(), admin))
	rec := httptest.NewRecorder()
	NewHandler(f.svc, zap.NewNop()).Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got Payment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, KindOther, got.Kind)
}
