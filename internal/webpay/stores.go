package webpay

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/billing"
	"github.com/cheerclub/billing-api/internal/enrollment"
	"github.com/cheerclub/billing-api/internal/onlinecharge"
)

// obligation is the part of an obligation the broker needs.
type obligation struct {
	ID      uint
	PayerID uint
	Amount  decimal.Decimal
	Paid    bool
	// Record is the full obligation, returned to clients.
	Record any
}

type obligationStore interface {
	Lookup(db *gorm.DB, id uint) (*obligation, error)
	MarkPaid(tx *gorm.DB, id uint, when time.Time) (*obligation, error)
}

type enrollmentStore struct{ svc *enrollment.Service }

func enrollmentView(o *enrollment.Obligation) *obligation {
	return &obligation{ID: o.ID, PayerID: o.PayerID, Amount: o.TotalAmount, Paid: o.IsPaid(), Record: o}
}

func (s enrollmentStore) Lookup(db *gorm.DB, id uint) (*obligation, error) {
	o, err := s.svc.Find(db, id)
	if err != nil {
		return nil, err
	}
	return enrollmentView(o), nil
}

func (s enrollmentStore) MarkPaid(tx *gorm.DB, id uint, when time.Time) (*obligation, error) {
	o, err := s.svc.MarkPaid(tx, id, billing.MethodWebpay, when)
	if err != nil {
		return nil, err
	}
	return enrollmentView(o), nil
}

type chargeStore struct{ svc *onlinecharge.Service }

func chargeView(o *onlinecharge.Obligation) *obligation {
	return &obligation{ID: o.ID, PayerID: o.PayerID, Amount: o.Amount, Paid: o.IsPaid(), Record: o}
}

func (s chargeStore) Lookup(db *gorm.DB, id uint) (*obligation, error) {
	o, err := s.svc.Find(db, id)
	if err != nil {
		return nil, err
	}
	return chargeView(o), nil
}

func (s chargeStore) MarkPaid(tx *gorm.DB, id uint, when time.Time) (*obligation, error) {
	o, err := s.svc.MarkPaid(tx, id, billing.MethodWebpay, when)
	if err != nil {
		return nil, err
	}
	return chargeView(o), nil
}
