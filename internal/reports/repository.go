package reports

import (
	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/dues"
	"github.com/cheerclub/billing-api/internal/enrollment"
	"github.com/cheerclub/billing-api/internal/manualpayment"
	"github.com/cheerclub/billing-api/internal/onlinecharge"
)

// Repository reads the revenue sources. An empty status matches every row.
type Repository interface {
	Enrollments(db *gorm.DB, status string) ([]enrollment.Obligation, error)
	Dues(db *gorm.DB, status string) ([]dues.Due, error)
	OnlineObligations(db *gorm.DB, status string) ([]onlinecharge.Obligation, error)
	// UnlinkedManualPayments skips payments that settled an obligation; the
	// obligation itself already carries that income.
	UnlinkedManualPayments(db *gorm.DB) ([]manualpayment.Payment, error)
	OutstandingDues(db *gorm.DB, payerID uint) ([]dues.Due, error)
	OutstandingOnline(db *gorm.DB, payerID uint) ([]onlinecharge.Obligation, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

var outstanding = []string{"pending", "overdue"}

func (r *repositoryImpl) Enrollments(db *gorm.DB, status string) ([]enrollment.Obligation, error) {
	q := db.Order("id")
	if status != "" {
		q = q.Where("payment_status = ?", status)
	}
	var out []enrollment.Obligation
	err := q.Find(&out).Error
	return out, err
}

func (r *repositoryImpl) Dues(db *gorm.DB, status string) ([]dues.Due, error) {
	q := db.Order("id")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []dues.Due
	err := q.Find(&out).Error
	return out, err
}

func (r *repositoryImpl) OnlineObligations(db *gorm.DB, status string) ([]onlinecharge.Obligation, error) {
	q := db.Preload("Charge").Order("id")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []onlinecharge.Obligation
	err := q.Find(&out).Error
	return out, err
}

func (r *repositoryImpl) UnlinkedManualPayments(db *gorm.DB) ([]manualpayment.Payment, error) {
	var out []manualpayment.Payment
	err := db.Where("enrollment_obligation_id IS NULL AND due_id IS NULL").Order("id").Find(&out).Error
	return out, err
}

func (r *repositoryImpl) OutstandingDues(db *gorm.DB, payerID uint) ([]dues.Due, error) {
	q := db.Where("status IN ?", outstanding).Order("year, month, id")
	if payerID != 0 {
		q = q.Where("payer_id = ?", payerID)
	}
	var out []dues.Due
	err := q.Find(&out).Error
	return out, err
}

func (r *repositoryImpl) OutstandingOnline(db *gorm.DB, payerID uint) ([]onlinecharge.Obligation, error) {
	q := db.Preload("Charge").Where("status IN ?", outstanding).Order("id")
	if payerID != 0 {
		q = q.Where("payer_id = ?", payerID)
	}
	var out []onlinecharge.Obligation
	err := q.Find(&out).Error
	return out, err
}
