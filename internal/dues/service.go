package dues

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/roster"
)

type Service struct {
	db       *gorm.DB
	repo     Repository
	athletes roster.Repository
	config   *ConfigService
	log      *zap.Logger
}

func NewService(db *gorm.DB, config *ConfigService, log *zap.Logger) *Service {
	return &Service{
		db:       db,
		repo:     NewRepository(),
		athletes: roster.NewRepository(),
		config:   config,
		log:      log,
	}
}

type CreateInput struct {
	// AthleteID must belong to the caller unless the caller is an admin.
	AthleteID uint
	// PayerID is honoured for admins only; 0 bills the athlete's payer.
	PayerID uint
	Month   int
	Year    int
	Notes   string
}

// DueDate places the due day inside the month, clamping to its last day.
func DueDate(year, month, day int) time.Time {
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Create bills one athlete's month using the current configuration.
func (s *Service) Create(ctx context.Context, p auth.Principal, in CreateInput) (*Due, error) {
	if in.Month < 1 || in.Month > 12 {
		return nil, apperr.Validation("month must be between 1 and 12")
	}
	if in.Year <= 0 {
		return nil, apperr.Validation("year must be positive")
	}
	if in.AthleteID == 0 {
		return nil, apperr.Validation("athleteId is required")
	}
	db := s.db.WithContext(ctx)

	athlete, err := s.athletes.FindByID(db, in.AthleteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("athlete")
	}
	if err != nil {
		return nil, err
	}

	payer := p.UserID
	if p.IsAdmin() {
		payer = in.PayerID
		if payer == 0 {
			payer = athlete.PayerID
		}
	} else if !auth.IsOwner(p, athlete.PayerID) {
		return nil, apperr.Forbidden("not your athlete")
	}

	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.BaseAmount.IsNegative() {
		return nil, apperr.InvalidAmount("configured base amount is negative")
	}

	exists, err := s.repo.Exists(db, in.AthleteID, in.Month, in.Year)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("a due already exists for this athlete and month")
	}

	d := &Due{
		AthleteID:   in.AthleteID,
		PayerID:     payer,
		Month:       in.Month,
		Year:        in.Year,
		BaseAmount:  cfg.BaseAmount,
		Discount:    decimal.Zero,
		Surcharge:   decimal.Zero,
		TotalAmount: cfg.BaseAmount,
		AmountPaid:  decimal.Zero,
		Status:      StatusPending,
		DueDate:     DueDate(in.Year, in.Month, cfg.DueDay),
		Notes:       in.Notes,
	}
	if err := s.repo.Create(db, d); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("a due already exists for this athlete and month")
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) Find(db *gorm.DB, id uint) (*Due, error) {
	d, err := s.repo.FindByID(db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("due")
	}
	return d, err
}

func (s *Service) List(ctx context.Context, p auth.Principal, mine bool) ([]Due, error) {
	payer := p.UserID
	if p.IsAdmin() && !mine {
		payer = 0
	}
	return s.repo.List(s.db.WithContext(ctx), payer)
}

// MarkPaid settles a pending or overdue due inside tx.
func (s *Service) MarkPaid(tx *gorm.DB, id uint, method string, when time.Time) (*Due, error) {
	n, err := s.repo.MarkPaid(tx, id, method, when)
	if err != nil {
		return nil, err
	}
	d, err := s.Find(tx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.AlreadyPaid("due")
	}
	return d, nil
}

// Waive forgives an outstanding due.
func (s *Service) Waive(ctx context.Context, p auth.Principal, id uint, notes string) (*Due, error) {
	if !p.IsAdmin() {
		return nil, apperr.Forbidden("admin only")
	}
	db := s.db.WithContext(ctx)
	n, err := s.repo.Waive(db, id, notes)
	if err != nil {
		return nil, err
	}
	d, err := s.Find(db, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.Conflict("due is not outstanding")
	}
	s.log.Info("due waived", zap.Uint("due_id", id), zap.Uint("admin_id", p.UserID))
	return d, nil
}

// MarkOverdue flags pending dues whose due date is before asOf.
func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	n, err := s.repo.MarkOverdue(s.db.WithContext(ctx), asOf)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("dues marked overdue", zap.Int64("count", n))
	}
	return n, nil
}
