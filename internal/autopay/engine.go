// Package autopay settles online obligations against a payer's stored card
// without a gateway round-trip. The card charge itself is trusted to succeed.
package autopay

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/billing"
	"github.com/cheerclub/billing-api/internal/cards"
	"github.com/cheerclub/billing-api/internal/onlinecharge"
)

type Engine struct {
	db      *gorm.DB
	cards   *cards.Service
	charges *onlinecharge.Service
	log     *zap.Logger
	now     func() time.Time
}

func NewEngine(db *gorm.DB, cs *cards.Service, charges *onlinecharge.Service, log *zap.Logger) *Engine {
	return &Engine{db: db, cards: cs, charges: charges, log: log, now: time.Now}
}

type Result struct {
	SettledCount int                       `json:"settledCount"`
	Obligations  []onlinecharge.Obligation `json:"obligations"`
	Card         *cards.Card               `json:"card"`
}

// EnableAndSettle turns autopay on for the chosen card and pays every
// pending online obligation of the caller in one transaction.
func (e *Engine) EnableAndSettle(ctx context.Context, p auth.Principal, cardID uint) (*Result, error) {
	if p.IsAdmin() {
		return nil, apperr.Validation("autopay is only available to payers")
	}
	res := &Result{}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := e.cards.Resolve(tx, p.UserID, cardID)
		if err != nil {
			return err
		}
		if err := e.cards.EnableAutopay(tx, card); err != nil {
			return err
		}
		settled, err := e.charges.SettlePending(tx, p.UserID, 0, billing.MethodStoredAutopay, e.now())
		if err != nil {
			return err
		}
		res.Card, res.Obligations, res.SettledCount = card, settled, len(settled)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("autopay enabled",
		zap.Uint("payer_id", p.UserID),
		zap.Uint("card_id", res.Card.ID),
		zap.Int("settled", res.SettledCount))
	return res, nil
}

// SettleOne pays a single obligation with a card of its payer.
func (e *Engine) SettleOne(ctx context.Context, p auth.Principal, obligationID, cardID uint) (*onlinecharge.Obligation, error) {
	var out *onlinecharge.Obligation
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := e.charges.Find(tx, obligationID)
		if err != nil {
			return err
		}
		if !auth.CanAct(p, o.PayerID) {
			return apperr.Forbidden("not your obligation")
		}
		if o.IsPaid() {
			return apperr.AlreadyPaid("online obligation")
		}
		if _, err := e.cards.Resolve(tx, o.PayerID, cardID); err != nil {
			return err
		}
		out, err = e.charges.MarkPaid(tx, o.ID, billing.MethodStoredCard, e.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("online obligation paid with stored card",
		zap.Uint("obligation_id", obligationID), zap.Uint("by", p.UserID))
	return out, nil
}
