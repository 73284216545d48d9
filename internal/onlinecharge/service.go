package onlinecharge

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
)

type Service struct {
	db        *gorm.DB
	repo      Repository
	generator *Generator
	log       *zap.Logger
}

func NewService(db *gorm.DB, generator *Generator, log *zap.Logger) *Service {
	return &Service{db: db, repo: NewRepository(), generator: generator, log: log}
}

type ChargeInput struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	ExpiresOn   *time.Time
	Category    Category
	Active      *bool
}

func (in ChargeInput) validate() error {
	if in.Title == "" {
		return apperr.Validation("title is required")
	}
	if !in.Amount.IsPositive() {
		return apperr.InvalidAmount("amount must be positive")
	}
	if !in.Category.valid() {
		return apperr.Validation("unknown category")
	}
	return nil
}

func (in ChargeInput) apply(c *Charge) {
	c.Title = in.Title
	c.Description = in.Description
	c.Amount = in.Amount
	c.ExpiresOn = in.ExpiresOn
	c.Category = in.Category
	if in.Active != nil {
		c.Active = *in.Active
	}
}

func (s *Service) ListCharges(ctx context.Context) ([]Charge, error) {
	return s.repo.ListCharges(s.db.WithContext(ctx))
}

func (s *Service) GetCharge(ctx context.Context, id uint) (*Charge, error) {
	c, err := s.repo.FindCharge(s.db.WithContext(ctx), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("online charge")
	}
	return c, err
}

// CreateCharge stores the charge and bills every active athlete's payer.
func (s *Service) CreateCharge(ctx context.Context, in ChargeInput) (*Charge, GenerateResult, error) {
	if in.Category == "" {
		in.Category = CategoryOther
	}
	if err := in.validate(); err != nil {
		return nil, GenerateResult{}, err
	}
	c := &Charge{Active: true}
	in.apply(c)
	if err := s.repo.SaveCharge(s.db.WithContext(ctx), c); err != nil {
		return nil, GenerateResult{}, err
	}
	res, err := s.generator.Generate(ctx, c.ID, false)
	if err != nil {
		return c, res, err
	}
	return c, res, nil
}

// UpdateCharge edits the charge. Existing obligations keep their amount.
func (s *Service) UpdateCharge(ctx context.Context, id uint, in ChargeInput) (*Charge, error) {
	c, err := s.GetCharge(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = c.Category
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.apply(c)
	if err := s.repo.SaveCharge(s.db.WithContext(ctx), c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCharge drops a charge and its unpaid obligations. A charge somebody
// already paid stays.
func (s *Service) DeleteCharge(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paid, err := s.repo.CountPaid(tx, id)
		if err != nil {
			return err
		}
		if paid > 0 {
			return apperr.Conflict("online charge has paid obligations")
		}
		if err := s.repo.DeleteForCharge(tx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteCharge(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("online charge")
			}
			return err
		}
		return nil
	})
}

// List returns obligations matching f. Non-admins only see their own.
func (s *Service) List(ctx context.Context, p auth.Principal, f ListFilter) ([]Obligation, error) {
	if !p.IsAdmin() {
		f.PayerID = p.UserID
	}
	return s.repo.List(s.db.WithContext(ctx), f)
}

func (s *Service) Find(db *gorm.DB, id uint) (*Obligation, error) {
	o, err := s.repo.FindByID(db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("online obligation")
	}
	return o, err
}

// MarkPaid settles one obligation inside tx. A paid obligation is never
// overwritten.
func (s *Service) MarkPaid(tx *gorm.DB, id uint, method string, when time.Time) (*Obligation, error) {
	n, err := s.repo.MarkPaid(tx, []uint{id}, method, when)
	if err != nil {
		return nil, err
	}
	o, err := s.Find(tx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.AlreadyPaid("online obligation")
	}
	return o, nil
}

// MarkPaidManually records an out-of-band payment by the owner or an admin.
func (s *Service) MarkPaidManually(ctx context.Context, p auth.Principal, id uint, method string) (*Obligation, error) {
	if method == "" {
		method = billing.MethodManual
	}
	var out *Obligation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.Find(tx, id)
		if err != nil {
			return err
		}
		if !auth.CanAct(p, o.PayerID) {
			return apperr.Forbidden("not your obligation")
		}
		out, err = s.MarkPaid(tx, id, method, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("online obligation paid manually",
		zap.Uint("obligation_id", id), zap.Uint("by", p.UserID), zap.String("method", method))
	return out, nil
}

// SettlePending pays every pending obligation of the payer inside tx and
// returns the rows this call settled. chargeID 0 spans all charges.
func (s *Service) SettlePending(tx *gorm.DB, payerID, chargeID uint, method string, when time.Time) ([]Obligation, error) {
	ids, err := s.repo.PendingIDs(tx, payerID, chargeID)
	if err != nil {
		return nil, err
	}
	return s.settle(tx, ids, method, when)
}

// settle marks each id paid on its own so a row another writer settled
// between the lookup and the update is left out of the result.
func (s *Service) settle(tx *gorm.DB, ids []uint, method string, when time.Time) ([]Obligation, error) {
	moved := make([]uint, 0, len(ids))
	for _, id := range ids {
		n, err := s.repo.MarkPaid(tx, []uint{id}, method, when)
		if err != nil {
			return nil, err
		}
		if n == 1 {
			moved = append(moved, id)
		}
	}
	if len(moved) == 0 {
		return []Obligation{}, nil
	}
	return s.repo.FindByIDs(tx, moved)
}

// MarkOverdue flags pending obligations of charges that expired before asOf.
func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	return s.repo.MarkOverdue(s.db.WithContext(ctx), asOf)
}
