package enrollment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/billing"
	"github.com/cheerclub/billing-api/internal/roster"
)

type Service struct {
	db       *gorm.DB
	repo     Repository
	athletes roster.Repository
	log      *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, repo: NewRepository(), athletes: roster.NewRepository(), log: log}
}

// DB exposes the pool so collaborators can open transactions spanning stores.
func (s *Service) DB() *gorm.DB { return s.db }

type PeriodInput struct {
	Name            string
	Description     string
	StartsOn        time.Time
	EndsOn          time.Time
	Fee             decimal.Decimal
	SiblingDiscount decimal.Decimal
	Status          PeriodStatus
}

func (in PeriodInput) validate() error {
	if in.Name == "" {
		return apperr.Validation("name is required")
	}
	if in.Fee.IsNegative() || in.SiblingDiscount.IsNegative() {
		return apperr.InvalidAmount("amounts must not be negative")
	}
	if !in.StartsOn.IsZero() && !in.EndsOn.IsZero() && in.EndsOn.Before(in.StartsOn) {
		return apperr.Validation("endsOn must not precede startsOn")
	}
	switch in.Status {
	case PeriodScheduled, PeriodActive, PeriodClosed:
		return nil
	}
	return apperr.Validation("unknown period status")
}

func (in PeriodInput) apply(p *Period) {
	p.Name = in.Name
	p.Description = in.Description
	p.StartsOn = in.StartsOn
	p.EndsOn = in.EndsOn
	p.Fee = in.Fee
	p.SiblingDiscount = in.SiblingDiscount
	p.Status = in.Status
}

func (s *Service) ListPeriods(ctx context.Context) ([]Period, error) {
	return s.repo.ListPeriods(s.db.WithContext(ctx))
}

func (s *Service) GetPeriod(ctx context.Context, id uint) (*Period, error) {
	p, err := s.repo.FindPeriod(s.db.WithContext(ctx), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("enrollment period")
	}
	return p, err
}

func (s *Service) CreatePeriod(ctx context.Context, in PeriodInput) (*Period, error) {
	if in.Status == "" {
		in.Status = PeriodScheduled
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	var p Period
	in.apply(&p)
	if err := s.repo.SavePeriod(s.db.WithContext(ctx), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) UpdatePeriod(ctx context.Context, id uint, in PeriodInput) (*Period, error) {
	p, err := s.GetPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = p.Status
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.repo.SavePeriod(s.db.WithContext(ctx), p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePeriod refuses to drop a period that already billed someone.
func (s *Service) DeletePeriod(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	n, err := s.repo.CountForPeriod(db, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("enrollment period has obligations")
	}
	if err := s.repo.DeletePeriod(db, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("enrollment period")
		}
		return err
	}
	return nil
}

type CreateInput struct {
	AthleteID uint
	// PeriodID 0 selects the first active period.
	PeriodID      uint
	PaymentMethod string
	Receipt       string
}

// CreateObligation bills the caller the period fee for an athlete. The
// amount always comes from the period; nothing the client sends changes it.
func (s *Service) CreateObligation(ctx context.Context, p auth.Principal, in CreateInput) (*Obligation, error) {
	if in.AthleteID == 0 {
		return nil, apperr.Validation("athleteId is required")
	}
	db := s.db.WithContext(ctx)

	var period *Period
	var err error
	if in.PeriodID != 0 {
		period, err = s.repo.FindPeriod(db, in.PeriodID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("enrollment period")
		}
	} else {
		period, err = s.repo.FirstActivePeriod(db)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("no active enrollment period")
		}
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.athletes.FindByID(db, in.AthleteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("athlete")
		}
		return nil, err
	}
	if period.Fee.IsNegative() {
		return nil, apperr.InvalidAmount("enrollment fee must not be negative")
	}

	method := in.PaymentMethod
	if method == "" {
		method = billing.MethodWebpay
	}
	o := &Obligation{
		AthleteID:       in.AthleteID,
		PeriodID:        period.ID,
		PayerID:         p.UserID,
		OriginalAmount:  period.Fee,
		DiscountApplied: decimal.Zero,
		TotalAmount:     period.Fee,
		AmountPaid:      decimal.Zero,
		Status:          StatusPending,
		PaymentMethod:   method,
		Receipt:         in.Receipt,
	}
	if err := s.repo.Create(db, o); err != nil {
		return nil, err
	}
	s.log.Info("enrollment obligation created",
		zap.Uint("obligation_id", o.ID),
		zap.Uint("period_id", period.ID),
		zap.Uint("payer_id", o.PayerID),
		zap.Stringer("amount", o.TotalAmount))
	return o, nil
}

// Find loads an obligation without access checks.
func (s *Service) Find(db *gorm.DB, id uint) (*Obligation, error) {
	o, err := s.repo.FindByID(db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("enrollment obligation")
	}
	return o, err
}

// Get loads an obligation the caller owns or administers.
func (s *Service) Get(ctx context.Context, p auth.Principal, id uint) (*Obligation, error) {
	o, err := s.Find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAct(p, o.PayerID) {
		return nil, apperr.Forbidden("not your enrollment")
	}
	return o, nil
}

// List returns every obligation for admins unless mine is set; other
// callers only ever see their own.
func (s *Service) List(ctx context.Context, p auth.Principal, mine bool) ([]Obligation, error) {
	payer := p.UserID
	if p.IsAdmin() && !mine {
		payer = 0
	}
	return s.repo.List(s.db.WithContext(ctx), payer)
}

// MarkPaid settles the obligation inside tx. A settled obligation is never
// overwritten.
func (s *Service) MarkPaid(tx *gorm.DB, id uint, method string, when time.Time) (*Obligation, error) {
	n, err := s.repo.MarkPaid(tx, id, method, when)
	if err != nil {
		return nil, err
	}
	o, err := s.Find(tx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.AlreadyPaid("enrollment")
	}
	return o, nil
}

// SetReceipt attaches a payment receipt reference; an empty receipt clears it.
func (s *Service) SetReceipt(ctx context.Context, p auth.Principal, id uint, receipt string) (*Obligation, error) {
	o, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetReceipt(s.db.WithContext(ctx), id, receipt); err != nil {
		return nil, err
	}
	o.Receipt = receipt
	return o, nil
}
