package cards

import (
	"context"
	"errors"
	"regexp"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/auth"
)

var last4Pattern = regexp.MustCompile(`^[0-9]{4}$`)

type Service struct {
	db   *gorm.DB
	repo Repository
	log  *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, repo: NewRepository(), log: log}
}

func (s *Service) List(ctx context.Context, p auth.Principal) ([]Card, error) {
	return s.repo.ListByPayer(s.db.WithContext(ctx), p.UserID)
}

type CreateInput struct {
	Alias          string
	Brand          string
	Last4          string
	GatewayToken   string
	IsDefault      bool
	AutopayEnabled bool
}

// Create stores a card for the caller. It becomes the default when asked to
// or when the caller has no default yet.
func (s *Service) Create(ctx context.Context, p auth.Principal, in CreateInput) (*Card, error) {
	if !last4Pattern.MatchString(in.Last4) {
		return nil, apperr.Validation("last4 must be four digits")
	}
	c := &Card{
		PayerID:        p.UserID,
		Alias:          in.Alias,
		Brand:          in.Brand,
		Last4:          in.Last4,
		GatewayToken:   in.GatewayToken,
		AutopayEnabled: in.AutopayEnabled,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		makeDefault := in.IsDefault
		if !makeDefault {
			_, err := s.repo.FindDefault(tx, p.UserID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				makeDefault = true
			} else if err != nil {
				return err
			}
		}
		c.IsDefault = makeDefault
		if err := s.repo.Create(tx, c); err != nil {
			return err
		}
		if makeDefault {
			return s.repo.ClearDefaults(tx, p.UserID, c.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) get(db *gorm.DB, p auth.Principal, id uint) (*Card, error) {
	c, err := s.repo.FindOwned(db, id, p.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("card")
	}
	return c, err
}

// SetDefault makes the card the payer's only default.
func (s *Service) SetDefault(ctx context.Context, p auth.Principal, id uint) (*Card, error) {
	var c *Card
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = s.get(tx, p, id); err != nil {
			return err
		}
		if err := s.repo.ClearDefaults(tx, p.UserID, c.ID); err != nil {
			return err
		}
		c.IsDefault = true
		return s.repo.SetFlag(tx, c.ID, "is_default", true)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateInput changes only the non-nil fields. IsDefault=false is ignored:
// a payer switches defaults by promoting another card.
type UpdateInput struct {
	Alias          *string
	AutopayEnabled *bool
	IsDefault      *bool
}

func (s *Service) Update(ctx context.Context, p auth.Principal, id uint, in UpdateInput) (*Card, error) {
	var c *Card
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = s.get(tx, p, id); err != nil {
			return err
		}
		if in.Alias != nil {
			c.Alias = *in.Alias
		}
		if in.AutopayEnabled != nil {
			c.AutopayEnabled = *in.AutopayEnabled
		}
		if in.IsDefault != nil && *in.IsDefault {
			if err := s.repo.ClearDefaults(tx, p.UserID, c.ID); err != nil {
				return err
			}
			c.IsDefault = true
		}
		return s.repo.Save(tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a card. When it was the default, the newest remaining card
// takes over.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.get(tx, p, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(tx, c); err != nil {
			return err
		}
		if !c.IsDefault {
			return nil
		}
		next, err := s.repo.FindNewest(tx, p.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return s.repo.SetFlag(tx, next.ID, "is_default", true)
	})
}

// Resolve picks the card to charge for a payer: the requested one when the
// payer owns it, else the default, else the newest. NoInstrument when the
// payer has none.
func (s *Service) Resolve(db *gorm.DB, payerID, cardID uint) (*Card, error) {
	if cardID != 0 {
		c, err := s.repo.FindOwned(db, cardID, payerID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	c, err := s.repo.FindDefault(db, payerID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c, err = s.repo.FindNewest(db, payerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NoInstrument()
	}
	return c, err
}

// EnableAutopay turns autopay on for the card inside db.
func (s *Service) EnableAutopay(db *gorm.DB, c *Card) error {
	if c.AutopayEnabled {
		return nil
	}
	if err := s.repo.SetFlag(db, c.ID, "autopay_enabled", true); err != nil {
		return err
	}
	c.AutopayEnabled = true
	return nil
}

// PayersWithAutopay filters payerIDs down to those holding an autopay card.
func (s *Service) PayersWithAutopay(db *gorm.DB, payerIDs []uint) ([]uint, error) {
	return s.repo.PayersWithAutopay(db, payerIDs)
}
