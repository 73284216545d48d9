package expenses

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/billing"
)

type Service struct {
	db   *gorm.DB
	repo Repository
	log  *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, repo: NewRepository(), log: log}
}

type Input struct {
	Concept     string
	Category    Category
	Amount      decimal.Decimal
	SpentOn     time.Time
	Method      string
	Responsible string
	Supplier    string
	Description string
	Receipt     string
}

func (in Input) validate() error {
	if in.Concept == "" {
		return apperr.Validation("concept is required")
	}
	if !in.Category.valid() {
		return apperr.Validation("unknown expense category")
	}
	if !in.Amount.IsPositive() {
		return apperr.InvalidAmount("amount must be positive")
	}
	if in.SpentOn.IsZero() {
		return apperr.Validation("spentOn is required")
	}
	return nil
}

func (in Input) apply(e *Expense) {
	e.Concept = in.Concept
	e.Category = in.Category
	e.Amount = in.Amount
	e.SpentOn = in.SpentOn
	e.Method = in.Method
	if e.Method == "" {
		e.Method = billing.MethodCash
	}
	e.Responsible = in.Responsible
	e.Supplier = in.Supplier
	e.Description = in.Description
	e.Receipt = in.Receipt
}

func (s *Service) List(ctx context.Context, f Filter) ([]Expense, error) {
	if f.Category != "" && !f.Category.valid() {
		return nil, apperr.Validation("unknown expense category")
	}
	return s.repo.List(s.db.WithContext(ctx), f)
}

func (s *Service) Create(ctx context.Context, in Input) (*Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e := &Expense{}
	in.apply(e)
	if err := s.repo.Save(s.db.WithContext(ctx), e); err != nil {
		return nil, err
	}
	s.log.Info("expense recorded",
		zap.Uint("expense_id", e.ID),
		zap.String("category", string(e.Category)),
		zap.Stringer("amount", e.Amount))
	return e, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	e, err := s.repo.FindByID(db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("expense")
	}
	if err != nil {
		return nil, err
	}
	in.apply(e)
	if err := s.repo.Save(db, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	n, err := s.repo.Delete(s.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("expense")
	}
	return nil
}
