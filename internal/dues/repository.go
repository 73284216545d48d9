package dues

import (
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, d *Due) error
	FindByID(db *gorm.DB, id uint) (*Due, error)
	Exists(db *gorm.DB, athleteID uint, month, year int) (bool, error)
	List(db *gorm.DB, payerID uint) ([]Due, error)
	MarkPaid(db *gorm.DB, id uint, method string, when time.Time) (int64, error)
	Waive(db *gorm.DB, id uint, notes string) (int64, error)
	MarkOverdue(db *gorm.DB, asOf time.Time) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, d *Due) error {
	return db.Create(d).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Due, error) {
	var d Due
	err := db.First(&d, id).Error
	return &d, err
}

func (r *repositoryImpl) Exists(db *gorm.DB, athleteID uint, month, year int) (bool, error) {
	var n int64
	err := db.Model(&Due{}).
		Where("athlete_id = ? AND month = ? AND year = ?", athleteID, month, year).
		Count(&n).Error
	return n > 0, err
}

func (r *repositoryImpl) List(db *gorm.DB, payerID uint) ([]Due, error) {
	q := db.Order("year DESC, month DESC, id DESC")
	if payerID != 0 {
		q = q.Where("payer_id = ?", payerID)
	}
	var out []Due
	err := q.Find(&out).Error
	return out, err
}

func (r *repositoryImpl) MarkPaid(db *gorm.DB, id uint, method string, when time.Time) (int64, error) {
	res := db.Model(&Due{}).
		Where("id = ? AND status IN ?", id, unsettled).
		Updates(map[string]any{
			"status":         StatusPaid,
			"amount_paid":    gorm.Expr("total_amount"),
			"payment_method": method,
			"paid_at":        when,
		})
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) Waive(db *gorm.DB, id uint, notes string) (int64, error) {
	updates := map[string]any{"status": StatusWaived}
	if notes != "" {
		updates["notes"] = notes
	}
	res := db.Model(&Due{}).Where("id = ? AND status IN ?", id, unsettled).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) MarkOverdue(db *gorm.DB, asOf time.Time) (int64, error) {
	res := db.Model(&Due{}).
		Where("status = ? AND due_date < ?", StatusPending, asOf).
		Update("status", StatusOverdue)
	return res.RowsAffected, res.Error
}
