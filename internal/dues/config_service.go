package dues

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cheerclub/billing-api/internal/apperr"
)

const configID = 1

// DefaultConfig seeds the row the first time it is loaded.
func DefaultConfig() Config {
	return Config{
		ID:              configID,
		BaseAmount:      decimal.Zero,
		DueDay:          5,
		LateSurcharge:   decimal.Zero,
		SiblingDiscount: decimal.Zero,
		Active:          true,
	}
}

// ConfigService owns the recurring-due configuration row and keeps the last
// loaded copy in memory.
type ConfigService struct {
	db *gorm.DB

	mu     sync.RWMutex
	cached *Config
}

func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{db: db}
}

// Load reads the row, creating it with defaults when missing.
func (s *ConfigService) Load(ctx context.Context) (Config, error) {
	def := DefaultConfig()
	db := s.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&def).Error; err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := db.First(&cfg, configID).Error; err != nil {
		return Config{}, err
	}
	s.mu.Lock()
	s.cached = &cfg
	s.mu.Unlock()
	return cfg, nil
}

// Get returns the cached row, loading it on first use.
func (s *ConfigService) Get(ctx context.Context) (Config, error) {
	s.mu.RLock()
	c := s.cached
	s.mu.RUnlock()
	if c != nil {
		return *c, nil
	}
	return s.Load(ctx)
}

// ConfigPatch carries the fields an update changes; nil leaves a field alone.
type ConfigPatch struct {
	BaseAmount      *decimal.Decimal `json:"baseAmount"`
	DueDay          *int             `json:"dueDay"`
	LateSurcharge   *decimal.Decimal `json:"lateSurcharge"`
	SiblingDiscount *decimal.Decimal `json:"siblingDiscount"`
	Active          *bool            `json:"active"`
}

func (s *ConfigService) Update(ctx context.Context, patch ConfigPatch) (Config, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return Config{}, err
	}
	for _, v := range []*decimal.Decimal{patch.BaseAmount, patch.LateSurcharge, patch.SiblingDiscount} {
		if v != nil && v.IsNegative() {
			return Config{}, apperr.InvalidAmount("amounts must not be negative")
		}
	}
	if patch.DueDay != nil && (*patch.DueDay < 1 || *patch.DueDay > 31) {
		return Config{}, apperr.Validation("dueDay must be between 1 and 31")
	}
	if patch.BaseAmount != nil {
		cfg.BaseAmount = *patch.BaseAmount
	}
	if patch.DueDay != nil {
		cfg.DueDay = *patch.DueDay
	}
	if patch.LateSurcharge != nil {
		cfg.LateSurcharge = *patch.LateSurcharge
	}
	if patch.SiblingDiscount != nil {
		cfg.SiblingDiscount = *patch.SiblingDiscount
	}
	if patch.Active != nil {
		cfg.Active = *patch.Active
	}
	if err := s.db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return Config{}, err
	}
	s.mu.Lock()
	s.cached = &cfg
	s.mu.Unlock()
	return cfg, nil
}
