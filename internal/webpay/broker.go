// Package webpay drives the gateway handshake for enrollment fees and online
// charges: init opens a checkout, confirm commits it and settles the
// obligation on approval.
package webpay

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/accounts"
	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/enrollment"
	"github.com/cheerclub/billing-api/internal/gateway"
	"github.com/cheerclub/billing-api/internal/onlinecharge"
)

// Kind names the obligation family a transaction pays.
type Kind string

const (
	KindEnrollment Kind = "enrollment"
	KindCharge     Kind = "charge"
)

const lockTTL = time.Minute

// Accounts is what the broker needs from the account store.
type Accounts interface {
	Get(ctx context.Context, id uint) (*accounts.Account, error)
	PromoteToGuardian(ctx context.Context, id uint) (bool, error)
}

type flow struct {
	kind       Kind
	returnPath string
	repo       Repository
	store      obligationStore
}

type Options struct {
	// FrontendURL receives the payer back from the gateway.
	FrontendURL string
	// AcceptMissingCode approves commits without a response code.
	AcceptMissingCode bool
}

type Broker struct {
	db       *gorm.DB
	gateway  gateway.Client
	locker   Locker
	accounts Accounts
	opts     Options
	log      *zap.Logger
	flows    map[Kind]*flow
	now      func() time.Time
}

func NewBroker(
	db *gorm.DB,
	gw gateway.Client,
	locker Locker,
	enrollments *enrollment.Service,
	charges *onlinecharge.Service,
	accts Accounts,
	opts Options,
	log *zap.Logger,
) *Broker {
	return &Broker{
		db:       db,
		gateway:  gw,
		locker:   locker,
		accounts: accts,
		opts:     opts,
		log:      log,
		now:      time.Now,
		flows: map[Kind]*flow{
			KindEnrollment: {
				kind:       KindEnrollment,
				returnPath: "webpay-return",
				repo:       NewRepository(EnrollmentTransaction{}.TableName()),
				store:      enrollmentStore{enrollments},
			},
			KindCharge: {
				kind:       KindCharge,
				returnPath: "online-payments-return",
				repo:       NewRepository(ChargeTransaction{}.TableName()),
				store:      chargeStore{charges},
			},
		},
	}
}

type InitRequest struct {
	ObligationID uint
	// BuyOrder and SessionID are generated when empty.
	BuyOrder  string
	SessionID string
}

type InitResult struct {
	URL      string `json:"url"`
	Token    string `json:"token"`
	BuyOrder string `json:"buyOrder"`
}

type ConfirmResult struct {
	Status     string            `json:"status"`
	Obligation any               `json:"obligation"`
	Payer      *accounts.Account `json:"payer,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}

func (b *Broker) InitEnrollment(ctx context.Context, p auth.Principal, req InitRequest) (*InitResult, error) {
	return b.init(ctx, b.flows[KindEnrollment], p, req)
}

func (b *Broker) InitCharge(ctx context.Context, p auth.Principal, req InitRequest) (*InitResult, error) {
	return b.init(ctx, b.flows[KindCharge], p, req)
}

func (b *Broker) ConfirmEnrollment(ctx context.Context, token string) (*ConfirmResult, error) {
	return b.confirm(ctx, b.flows[KindEnrollment], token)
}

func (b *Broker) ConfirmCharge(ctx context.Context, token string) (*ConfirmResult, error) {
	return b.confirm(ctx, b.flows[KindCharge], token)
}

func newBuyOrder() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:26]
}

func (b *Broker) returnURL(f *flow) string {
	return strings.TrimRight(b.opts.FrontendURL, "/") + "/" + f.returnPath
}

func (b *Broker) init(ctx context.Context, f *flow, p auth.Principal, req InitRequest) (*InitResult, error) {
	if req.ObligationID == 0 {
		return nil, apperr.Validation("obligationId is required")
	}
	db := b.db.WithContext(ctx)
	ob, err := f.store.Lookup(db, req.ObligationID)
	if err != nil {
		return nil, err
	}
	if !auth.CanAct(p, ob.PayerID) {
		return nil, apperr.Forbidden("not your obligation")
	}
	if ob.Paid {
		return nil, apperr.AlreadyPaid(string(f.kind))
	}
	if !ob.Amount.IsPositive() {
		return nil, apperr.InvalidAmount("obligation amount must be positive")
	}

	buyOrder, sessionID := req.BuyOrder, req.SessionID
	if buyOrder == "" {
		buyOrder = newBuyOrder()
	}
	if len(buyOrder) > 26 {
		return nil, apperr.Validation("buyOrder is longer than 26 characters")
	}
	if sessionID == "" {
		sessionID = strconv.FormatUint(uint64(p.UserID), 10)
	}

	res, err := b.gateway.Create(ctx, buyOrder, sessionID, ob.Amount, b.returnURL(f))
	if err != nil {
		if apperr.KindOf(err) != apperr.KindGateway {
			err = apperr.Gateway("gateway create failed", err)
		}
		return nil, err
	}
	if res.Token == "" || res.URL == "" {
		return nil, apperr.Gateway("gateway create failed", errors.New("response without token or url"))
	}

	t := &Transaction{
		Token:        res.Token,
		ObligationID: ob.ID,
		State:        StateInitiated,
		BuyOrder:     buyOrder,
		SessionID:    sessionID,
		Amount:       ob.Amount,
	}
	if err := f.repo.Create(db, t); err != nil {
		return nil, err
	}
	b.log.Info("gateway transaction initiated",
		zap.String("kind", string(f.kind)),
		zap.Uint("obligation_id", ob.ID),
		zap.String("buy_order", buyOrder),
		zap.Stringer("amount", ob.Amount))
	return &InitResult{URL: res.URL, Token: res.Token, BuyOrder: buyOrder}, nil
}

func rejected() error {
	return apperr.New(apperr.KindValidation, apperr.CodeRejected, "payment rejected")
}

func (b *Broker) find(db *gorm.DB, f *flow, token string) (*Transaction, error) {
	t, err := f.repo.FindByToken(db, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("transaction")
	}
	return t, err
}

func (b *Broker) confirm(ctx context.Context, f *flow, token string) (*ConfirmResult, error) {
	if token == "" {
		return nil, apperr.Validation("token is required")
	}
	db := b.db.WithContext(ctx)
	t, err := b.find(db, f, token)
	if err != nil {
		return nil, err
	}
	if t.State.terminal() {
		return b.replay(ctx, f, t)
	}

	release, ok, err := b.locker.Acquire(ctx, string(f.kind)+":"+token, lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.KindConflict, apperr.CodeInProgress, "confirmation already in progress")
	}
	defer release()

	// a concurrent confirm may have finished between the read and the lock
	if t, err = b.find(db, f, token); err != nil {
		return nil, err
	}
	if t.State.terminal() {
		return b.replay(ctx, f, t)
	}

	commit, err := b.gateway.Commit(ctx, token)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindGateway {
			err = apperr.Gateway("gateway commit failed", err)
		}
		return nil, err
	}
	raw := datatypes.JSON(commit.Raw)

	if !commit.Approved(b.opts.AcceptMissingCode) {
		if _, err := f.repo.Finish(db, token, StateRejected, commit.ResponseCode, raw); err != nil {
			return nil, err
		}
		b.log.Info("gateway transaction rejected",
			zap.String("kind", string(f.kind)),
			zap.Uint("obligation_id", t.ObligationID),
			zap.Any("response_code", commit.ResponseCode))
		return nil, rejected()
	}

	var ob *obligation
	var warnings []string
	err = db.Transaction(func(tx *gorm.DB) error {
		done, err := f.repo.Finish(tx, token, StateConfirmed, commit.ResponseCode, raw)
		if err != nil {
			return err
		}
		if !done {
			return apperr.New(apperr.KindConflict, apperr.CodeInProgress, "transaction already finished")
		}
		ob, err = f.store.MarkPaid(tx, t.ObligationID, b.now())
		if apperr.HasCode(err, apperr.CodeAlreadyPaid) {
			// settled through another channel; the gateway still took the money
			b.log.Warn("confirmed payment for a settled obligation",
				zap.String("kind", string(f.kind)), zap.Uint("obligation_id", t.ObligationID))
			warnings = append(warnings, "obligation was already paid")
			ob, err = f.store.Lookup(tx, t.ObligationID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("gateway transaction confirmed",
		zap.String("kind", string(f.kind)),
		zap.Uint("obligation_id", ob.ID),
		zap.Stringer("amount", t.Amount))

	if f.kind == KindEnrollment {
		if _, err := b.accounts.PromoteToGuardian(ctx, ob.PayerID); err != nil {
			b.log.Warn("payer promotion failed", zap.Uint("payer_id", ob.PayerID), zap.Error(err))
			warnings = append(warnings, "payer role could not be updated")
		}
	}
	return b.result(ctx, ob, warnings), nil
}

// replay answers a confirm for a finished transaction from what was stored,
// without calling the gateway again.
func (b *Broker) replay(ctx context.Context, f *flow, t *Transaction) (*ConfirmResult, error) {
	if t.State == StateRejected {
		return nil, rejected()
	}
	ob, err := f.store.Lookup(b.db.WithContext(ctx), t.ObligationID)
	if err != nil {
		return nil, err
	}
	return b.result(ctx, ob, nil), nil
}

func (b *Broker) result(ctx context.Context, ob *obligation, warnings []string) *ConfirmResult {
	out := &ConfirmResult{Status: "ok", Obligation: ob.Record, Warnings: warnings}
	payer, err := b.accounts.Get(ctx, ob.PayerID)
	if err != nil {
		b.log.Warn("payer lookup failed", zap.Uint("payer_id", ob.PayerID), zap.Error(err))
		return out
	}
	out.Payer = payer
	return out
}
