package onlinecharge

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/billing"
	"github.com/cheerclub/billing-api/internal/roster"
)

// AutopayDirectory tells the generator which payers settle automatically.
type AutopayDirectory interface {
	PayersWithAutopay(db *gorm.DB, payerIDs []uint) ([]uint, error)
}

// GenerateResult separates rows this run created from rows that were there.
type GenerateResult struct {
	ChargeID    uint `json:"chargeId"`
	Created     int  `json:"created"`
	Existing    int  `json:"existing"`
	AutoSettled int  `json:"autoSettled"`
}

// Generator fans a charge out to the payer of every active athlete.
type Generator struct {
	db       *gorm.DB
	repo     Repository
	athletes roster.Repository
	autopay  AutopayDirectory
	log      *zap.Logger
	now      func() time.Time
}

func NewGenerator(db *gorm.DB, autopay AutopayDirectory, log *zap.Logger) *Generator {
	return &Generator{
		db:       db,
		repo:     NewRepository(),
		athletes: roster.NewRepository(),
		autopay:  autopay,
		log:      log,
		now:      time.Now,
	}
}

// Generate creates the missing obligations of a charge and settles them for
// payers with autopay on. Without force, pairs already billed are skipped
// before insert; either way the unique (charge, payer, athlete) index
// decides, so repeated runs never duplicate a row. Everything happens in one
// transaction.
func (g *Generator) Generate(ctx context.Context, chargeID uint, force bool) (GenerateResult, error) {
	res := GenerateResult{ChargeID: chargeID}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		charge, err := g.repo.FindCharge(tx, chargeID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("online charge")
		}
		if err != nil {
			return err
		}

		athletes, err := g.athletes.ListActive(tx)
		if err != nil {
			return err
		}
		existing := map[pair]bool{}
		if !force {
			if existing, err = g.repo.ExistingPairs(tx, chargeID); err != nil {
				return err
			}
		}

		var payers []uint
		for _, a := range athletes {
			if existing[pair{a.PayerID, a.ID}] {
				res.Existing++
				continue
			}
			o := &Obligation{
				ChargeID:  charge.ID,
				PayerID:   a.PayerID,
				AthleteID: a.ID,
				Amount:    charge.Amount,
				Status:    StatusPending,
			}
			created, err := g.repo.InsertIgnore(tx, o)
			if err != nil {
				return err
			}
			if !created {
				res.Existing++
				continue
			}
			res.Created++
			if !slices.Contains(payers, a.PayerID) {
				payers = append(payers, a.PayerID)
			}
		}

		autopayers, err := g.autopay.PayersWithAutopay(tx, payers)
		if err != nil {
			return err
		}
		when := g.now()
		for _, payer := range autopayers {
			ids, err := g.repo.PendingIDs(tx, payer, chargeID)
			if err != nil {
				return err
			}
			n, err := g.repo.MarkPaid(tx, ids, billing.MethodStoredAutopay, when)
			if err != nil {
				return err
			}
			res.AutoSettled += int(n)
		}
		return nil
	})
	if err != nil {
		return GenerateResult{}, err
	}
	g.log.Info("online charge obligations generated",
		zap.Uint("charge_id", chargeID),
		zap.Bool("force", force),
		zap.Int("created", res.Created),
		zap.Int("existing", res.Existing),
		zap.Int("auto_settled", res.AutoSettled))
	return res, nil
}
