package manualpayment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/dues"
	"github.com/cheerclub/billing-api/internal/enrollment"
)

type Service struct {
	db          *gorm.DB
	enrollments *enrollment.Service
	dues        *dues.Service
	log         *zap.Logger
	now         func() time.Time
}

func NewService(db *gorm.DB, enrollments *enrollment.Service, ds *dues.Service, log *zap.Logger) *Service {
	return &Service{db: db, enrollments: enrollments, dues: ds, log: log, now: time.Now}
}

type Input struct {
	PayerID                uint
	Kind                   Kind
	Amount                 decimal.Decimal
	Concept                string
	Method                 string
	Receipt                string
	EnrollmentObligationID *uint
	DueID                  *uint
	Notes                  string
}

func (in Input) validate() error {
	if !in.Amount.IsPositive() {
		return apperr.InvalidAmount("amount must be positive")
	}
	if in.Concept == "" || in.Method == "" {
		return apperr.Validation("concept and method are required")
	}
	switch in.Kind {
	case KindEnrollment:
		if in.EnrollmentObligationID == nil || in.DueID != nil {
			return apperr.Validation("enrollment payments link exactly one enrollment obligation")
		}
	case KindRecurringDue:
		if in.DueID == nil || in.EnrollmentObligationID != nil {
			return apperr.Validation("recurring due payments link exactly one due")
		}
	case KindOther:
		if in.EnrollmentObligationID != nil || in.DueID != nil {
			return apperr.Validation("other payments are not linked to obligations")
		}
	default:
		return apperr.Validation("unknown payment kind")
	}
	return nil
}

// matchesTotal requires a linked payment to cover the obligation exactly,
// since settling marks the whole total as paid.
func matchesTotal(amount, total decimal.Decimal) error {
	if !amount.Equal(total) {
		return apperr.InvalidAmount("amount must equal the obligation total of " + total.StringFixed(2))
	}
	return nil
}

// Record stores the payment and, when it is linked, settles the obligation in
// the same transaction. The payer defaults to the obligation's payer.
func (s *Service) Record(ctx context.Context, p auth.Principal, in Input) (*Payment, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("admin only")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	pay := &Payment{
		PayerID:                in.PayerID,
		Kind:                   in.Kind,
		Amount:                 in.Amount,
		Concept:                in.Concept,
		Method:                 in.Method,
		Receipt:                in.Receipt,
		EnrollmentObligationID: in.EnrollmentObligationID,
		DueID:                  in.DueID,
		RecordedBy:             p.UserID,
		Notes:                  in.Notes,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payer uint
		switch {
		case in.EnrollmentObligationID != nil:
			o, err := s.enrollments.Find(tx, *in.EnrollmentObligationID)
			if err != nil {
				return err
			}
			if err := matchesTotal(in.Amount, o.TotalAmount); err != nil {
				return err
			}
			if _, err := s.enrollments.MarkPaid(tx, o.ID, in.Method, s.now()); err != nil {
				return err
			}
			payer = o.PayerID
		case in.DueID != nil:
			d, err := s.dues.Find(tx, *in.DueID)
			if err != nil {
				return err
			}
			if err := matchesTotal(in.Amount, d.TotalAmount); err != nil {
				return err
			}
			if _, err := s.dues.MarkPaid(tx, d.ID, in.Method, s.now()); err != nil {
				return err
			}
			payer = d.PayerID
		}
		if payer != 0 {
			if pay.PayerID != 0 && pay.PayerID != payer {
				return apperr.Validation("payerId does not match the obligation's payer")
			}
			pay.PayerID = payer
		}
		if pay.PayerID == 0 {
			return apperr.Validation("payerId is required")
		}
		return tx.Create(pay).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("manual payment recorded",
		zap.Uint("payment_id", pay.ID),
		zap.String("kind", string(pay.Kind)),
		zap.Uint("payer_id", pay.PayerID),
		zap.Uint("admin_id", p.UserID))
	return pay, nil
}
