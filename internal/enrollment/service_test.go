package enrollment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/roster"
	"github.com/cheerclub/billing-api/internal/testutil"
)

var guardian = auth.Principal{UserID: 10, Role: auth.RoleGuardian}

func setup(t *testing.T) (*Service, *roster.Athlete) {
	t.Helper()
	db := testutil.OpenDB(t, &Period{}, &Obligation{}, &roster.Athlete{})
	a := &roster.Athlete{PayerID: guardian.UserID, FullName: "Sofía", Active: true}
	require.NoError(t, roster.NewRepository().Create(db, a))
	return NewService(db, zap.NewNop()), a
}

func TestCreateObligationUsesActivePeriodFee(t *testing.T) {
	s, athlete := setup(t)
	ctx := context.Background()

	_, err := s.CreateObligation(ctx, guardian, CreateInput{AthleteID: athlete.ID})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "no active period yet")

	_, err = s.CreatePeriod(ctx, PeriodInput{Name: "2025", Fee: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	active, err := s.CreatePeriod(ctx, PeriodInput{Name: "2026", Fee: decimal.NewFromInt(45000), Status: PeriodActive})
	require.NoError(t, err)

	o, err := s.CreateObligation(ctx, guardian, CreateInput{AthleteID: athlete.ID})
	require.NoError(t, err)
	assert.Equal(t, active.ID, o.PeriodID)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(45000)))
	assert.True(t, o.OriginalAmount.Equal(o.TotalAmount))
	assert.True(t, o.AmountPaid.IsZero())
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, guardian.UserID, o.PayerID)
	assert.Equal(t, "webpay", o.PaymentMethod)
}

func TestCreateObligationErrors(t *testing.T) {
	s, athlete := setup(t)
	ctx := context.Background()

	_, err := s.CreateObligation(ctx, guardian, CreateInput{AthleteID: athlete.ID, PeriodID: 99})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	p, err := s.CreatePeriod(ctx, PeriodInput{Name: "2026", Fee: decimal.NewFromInt(100), Status: PeriodActive})
	require.NoError(t, err)

	_, err = s.CreateObligation(ctx, guardian, CreateInput{AthleteID: 404})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	p.Fee = decimal.NewFromInt(-1)
	require.NoError(t, s.repo.SavePeriod(s.db, p))
	_, err = s.CreateObligation(ctx, guardian, CreateInput{AthleteID: athlete.ID})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidAmount))
}

func TestCreateIgnoresClientAmount(t *testing.T) {
	s, athlete := setup(t)
	_, err := s.CreatePeriod(context.Background(), PeriodInput{Name: "2026", Fee: decimal.NewFromInt(30000), Status: PeriodActive})
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]any{
		"athleteId":   athlete.ID,
		"totalAmount": 1,
		"amount":      1,
		"amountPaid":  30000,
	})
	req := httptest.NewRequest(http.MethodPost, "/payments/enrollments", bytes.NewReader(body))
	req = req.WithContext(auth.WithPrincipal(req.Context(), guardian))
	rec := httptest.NewRecorder()
	NewHandler(s, zap.NewNop()).Create(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got Obligation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(30000)))
	assert.True(t, got.AmountPaid.IsZero())
}

func TestMarkPaidNeverOverwrites(t *testing.T) {
	s, athlete := setup(t)
	ctx := context.Background()
	_, err := s.CreatePeriod(ctx, PeriodInput{Name: "2026", Fee: decimal.NewFromInt(500), Status: PeriodActive})
	require.NoError(t, err)
	o, err := s.CreateObligation(ctx, guardian, CreateInput{AthleteID: athlete.ID})
	require.NoError(t, err)

	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got, err := s.MarkPaid(s.db, o.ID, "webpay", paidAt)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Status)
	assert.True(t, got.AmountPaid.Equal(decimal.NewFromInt(500)))

	_, err = s.MarkPaid(s.db, o.ID, "manual", time.Now())
	assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyPaid))

	again, err := s.Find(s.db, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "webpay", again.PaymentMethod)
	require.NotNil(t, again.PaidAt)
	assert.True(t, paidAt.Equal(*again.PaidAt))

	_, err = s.MarkPaid(s.db, 999, "webpay", time.Now())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListAndGetRespectOwnership(t *testing.T) {
	s, athlete := setup(t)
	ctx := context.Background()
	_, err := s.CreatePeriod(ctx, PeriodInput{Name: "2026", Fee: decimal.NewFromInt(1), Status: PeriodActive})
	require.NoError(t, err)

	mine, err := s.CreateObligation(ctx, guardian, CreateInput{AthleteID: athlete.ID})
	require.NoError(t, err)
	other := auth.Principal{UserID: 11, Role: auth.RoleGuardian}
	_, err = s.CreateObligation(ctx, other, CreateInput{AthleteID: athlete.ID})
	require.NoError(t, err)
	admin := auth.Principal{UserID: 1, Role: auth.RoleAdmin}

	list, err := s.List(ctx, guardian, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = s.List(ctx, admin, false)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = s.List(ctx, admin, true)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Get(ctx, other, mine.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = s.Get(ctx, admin, mine.ID)
	assert.NoError(t, err)
}

func TestDeletePeriodWithObligations(t *testing.T) {
	s, athlete := setup(t)
	ctx := context.Background()
	p, err := s.CreatePeriod(ctx, PeriodInput{Name: "2026", Fee: decimal.NewFromInt(1), Status: PeriodActive})
	require.NoError(t, err)
	_, err = s.CreateObligation(ctx, guardian, CreateInput{AthleteID: athlete.ID})
	require.NoError(t, err)

	err = s.DeletePeriod(ctx, p.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	empty, err := s.CreatePeriod(ctx, PeriodInput{Name: "2027", Fee: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.NoError(t, s.DeletePeriod(ctx, empty.ID))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(s.DeletePeriod(ctx, empty.ID)))
}

func TestReceiptAttachAndClear(t *testing.T) {
	s, athlete := setup(t)
	ctx := context.Background()
	_, err := s.CreatePeriod(ctx, PeriodInput{Name: "2026", Fee: decimal.NewFromInt(1), Status: PeriodActive})
	require.NoError(t, err)
	o, err := s.CreateObligation(ctx, guardian, CreateInput{AthleteID: athlete.ID})
	require.NoError(t, err)
	h := NewHandler(s, zap.NewNop())

	body, _ := json.Marshal(map[string]string{"receipt": "receipts/2026/transfer-118.pdf"})
	req := httptest.NewRequest(http.MethodPut, "/payments/enrollments/1/receipt", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	req = req.WithContext(auth.WithPrincipal(req.Context(), guardian))
	rec := httptest.NewRecorder()
	h.UpdateReceipt(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := s.Find(s.db, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "receipts/2026/transfer-118.pdf", got.Receipt)

	_, err = s.SetReceipt(ctx, auth.Principal{UserID: 99, Role: auth.RoleGuardian}, o.ID, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	req = httptest.NewRequest(http.MethodDelete, "/payments/enrollments/1/receipt", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "1"})
	req = req.WithContext(auth.WithPrincipal(req.Context(), guardian))
	rec = httptest.NewRecorder()
	h.DeleteReceipt(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err = s.Find(s.db, o.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Receipt)
}
