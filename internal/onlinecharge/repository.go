package onlinecharge

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type pair struct{ payerID, athleteID uint }

// ListFilter narrows obligation listings; zero values match everything.
type ListFilter struct {
	PayerID  uint
	ChargeID uint
	Status   Status
}

type Repository interface {
	ListCharges(db *gorm.DB) ([]Charge, error)
	FindCharge(db *gorm.DB, id uint) (*Charge, error)
	SaveCharge(db *gorm.DB, c *Charge) error
	DeleteCharge(db *gorm.DB, id uint) error

	ExistingPairs(db *gorm.DB, chargeID uint) (map[pair]bool, error)
	// InsertIgnore inserts o unless (charge, payer, athlete) exists and
	// reports whether a row was created.
	InsertIgnore(db *gorm.DB, o *Obligation) (bool, error)
	FindByID(db *gorm.DB, id uint) (*Obligation, error)
	FindByIDs(db *gorm.DB, ids []uint) ([]Obligation, error)
	List(db *gorm.DB, f ListFilter) ([]Obligation, error)
	PendingIDs(db *gorm.DB, payerID, chargeID uint) ([]uint, error)
	CountPaid(db *gorm.DB, chargeID uint) (int64, error)
	DeleteForCharge(db *gorm.DB, chargeID uint) error

	MarkPaid(db *gorm.DB, ids []uint, method string, when time.Time) (int64, error)
	MarkOverdue(db *gorm.DB, asOf time.Time) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) ListCharges(db *gorm.DB) ([]Charge, error) {
	var out []Charge
	err := db.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *repositoryImpl) FindCharge(db *gorm.DB, id uint) (*Charge, error) {
	var c Charge
	err := db.First(&c, id).Error
	return &c, err
}

func (r *repositoryImpl) SaveCharge(db *gorm.DB, c *Charge) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) DeleteCharge(db *gorm.DB, id uint) error {
	res := db.Delete(&Charge{}, id)
	if res.Error == nil && res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return res.Error
}

func (r *repositoryImpl) ExistingPairs(db *gorm.DB, chargeID uint) (map[pair]bool, error) {
	var rows []Obligation
	err := db.Select("payer_id", "athlete_id").Where("charge_id = ?", chargeID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[pair]bool, len(rows))
	for _, o := range rows {
		out[pair{o.PayerID, o.AthleteID}] = true
	}
	return out, nil
}

func (r *repositoryImpl) InsertIgnore(db *gorm.DB, o *Obligation) (bool, error) {
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "charge_id"}, {Name: "payer_id"}, {Name: "athlete_id"}},
		DoNothing: true,
	}).Create(o)
	return res.RowsAffected == 1, res.Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Obligation, error) {
	var o Obligation
	err := db.Preload("Charge").First(&o, id).Error
	return &o, err
}

func (r *repositoryImpl) FindByIDs(db *gorm.DB, ids []uint) ([]Obligation, error) {
	out := []Obligation{}
	if len(ids) == 0 {
		return out, nil
	}
	err := db.Preload("Charge").Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

func (r *repositoryImpl) List(db *gorm.DB, f ListFilter) ([]Obligation, error) {
	q := db.Preload("Charge").Order("created_at DESC, id DESC")
	if f.PayerID != 0 {
		q = q.Where("payer_id = ?", f.PayerID)
	}
	if f.ChargeID != 0 {
		q = q.Where("charge_id = ?", f.ChargeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []Obligation
	err := q.Find(&out).Error
	return out, err
}

// PendingIDs lists a payer's pending obligations; chargeID 0 spans charges.
func (r *repositoryImpl) PendingIDs(db *gorm.DB, payerID, chargeID uint) ([]uint, error) {
	q := db.Model(&Obligation{}).Where("payer_id = ? AND status = ?", payerID, StatusPending)
	if chargeID != 0 {
		q = q.Where("charge_id = ?", chargeID)
	}
	var ids []uint
	err := q.Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *repositoryImpl) CountPaid(db *gorm.DB, chargeID uint) (int64, error) {
	var n int64
	err := db.Model(&Obligation{}).Where("charge_id = ? AND status = ?", chargeID, StatusPaid).Count(&n).Error
	return n, err
}

func (r *repositoryImpl) DeleteForCharge(db *gorm.DB, chargeID uint) error {
	return db.Where("charge_id = ?", chargeID).Delete(&Obligation{}).Error
}

// MarkPaid settles the unsettled rows among ids.
func (r *repositoryImpl) MarkPaid(db *gorm.DB, ids []uint, method string, when time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.Model(&Obligation{}).
		Where("id IN ? AND status IN ?", ids, unsettled).
		Updates(map[string]any{
			"status":         StatusPaid,
			"payment_method": method,
			"paid_at":        when,
		})
	return res.RowsAffected, res.Error
}

// MarkOverdue flags pending obligations whose charge expired before asOf.
func (r *repositoryImpl) MarkOverdue(db *gorm.DB, asOf time.Time) (int64, error) {
	expired := db.Model(&Charge{}).Select("id").Where("expires_on IS NOT NULL AND expires_on < ?", asOf)
	res := db.Model(&Obligation{}).
		Where("status = ? AND charge_id IN (?)", StatusPending, expired).
		Update("status", StatusOverdue)
	return res.RowsAffected, res.Error
}
