package expenses

import (
	"time"

	"gorm.io/gorm"
)

type Filter struct {
	From     time.Time
	To       time.Time
	Category Category
}

type Repository interface {
	List(db *gorm.DB, f Filter) ([]Expense, error)
	FindByID(db *gorm.DB, id uint) (*Expense, error)
	Save(db *gorm.DB, e *Expense) error
	Delete(db *gorm.DB, id uint) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) List(db *gorm.DB, f Filter) ([]Expense, error) {
	q := db.Order("spent_on DESC, id DESC")
	if !f.From.IsZero() {
		q = q.Where("spent_on >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("spent_on <= ?", f.To)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var out []Expense
	err := q.Find(&out).Error
	return out, err
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Expense, error) {
	var e Expense
	err := db.First(&e, id).Error
	return &e, err
}

func (r *repositoryImpl) Save(db *gorm.DB, e *Expense) error {
	return db.Save(e).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) (int64, error) {
	res := db.Delete(&Expense{}, id)
	return res.RowsAffected, res.Error
}
