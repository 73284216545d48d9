package enrollment

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	ListPeriods(db *gorm.DB) ([]Period, error)
	FindPeriod(db *gorm.DB, id uint) (*Period, error)
	FirstActivePeriod(db *gorm.DB) (*Period, error)
	SavePeriod(db *gorm.DB, p *Period) error
	DeletePeriod(db *gorm.DB, id uint) error
	CountForPeriod(db *gorm.DB, periodID uint) (int64, error)

	Create(db *gorm.DB, o *Obligation) error
	FindByID(db *gorm.DB, id uint) (*Obligation, error)
	// List returns obligations newest first; payerID 0 lists every payer.
	List(db *gorm.DB, payerID uint) ([]Obligation, error)
	// MarkPaid settles an unsettled obligation and returns rows affected.
	MarkPaid(db *gorm.DB, id uint, method string, when time.Time) (int64, error)
	SetReceipt(db *gorm.DB, id uint, receipt string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) ListPeriods(db *gorm.DB) ([]Period, error) {
	var out []Period
	err := db.Order("starts_on DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *repositoryImpl) FindPeriod(db *gorm.DB, id uint) (*Period, error) {
	var p Period
	err := db.First(&p, id).Error
	return &p, err
}

func (r *repositoryImpl) FirstActivePeriod(db *gorm.DB) (*Period, error) {
	var p Period
	err := db.Where("status = ?", PeriodActive).Order("id").First(&p).Error
	return &p, err
}

func (r *repositoryImpl) SavePeriod(db *gorm.DB, p *Period) error {
	return db.Save(p).Error
}

func (r *repositoryImpl) DeletePeriod(db *gorm.DB, id uint) error {
	res := db.Delete(&Period{}, id)
	if res.Error == nil && res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return res.Error
}

func (r *repositoryImpl) CountForPeriod(db *gorm.DB, periodID uint) (int64, error) {
	var n int64
	err := db.Model(&Obligation{}).Where("period_id = ?", periodID).Count(&n).Error
	return n, err
}

func (r *repositoryImpl) Create(db *gorm.DB, o *Obligation) error {
	return db.Create(o).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Obligation, error) {
	var o Obligation
	err := db.First(&o, id).Error
	return &o, err
}

func (r *repositoryImpl) List(db *gorm.DB, payerID uint) ([]Obligation, error) {
	q := db.Order("created_at DESC, id DESC")
	if payerID != 0 {
		q = q.Where("payer_id = ?", payerID)
	}
	var out []Obligation
	err := q.Find(&out).Error
	return out, err
}

func (r *repositoryImpl) MarkPaid(db *gorm.DB, id uint, method string, when time.Time) (int64, error) {
	res := db.Model(&Obligation{}).
		Where("id = ? AND payment_status IN ?", id, unsettled).
		Updates(map[string]any{
			"payment_status": StatusPaid,
			"amount_paid":    gorm.Expr("total_amount"),
			"payment_method": method,
			"paid_at":        when,
		})
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) SetReceipt(db *gorm.DB, id uint, receipt string) error {
	return db.Model(&Obligation{}).Where("id = ?", id).Update("receipt", receipt).Error
}
