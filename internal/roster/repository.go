package roster

import "gorm.io/gorm"

type Repository interface {
	FindByID(db *gorm.DB, id uint) (*Athlete, error)
	FindByIDs(db *gorm.DB, ids []uint) ([]Athlete, error)
	ListActive(db *gorm.DB) ([]Athlete, error)
	Create(db *gorm.DB, a *Athlete) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Athlete, error) {
	var a Athlete
	err := db.First(&a, id).Error
	return &a, err
}

func (r *repositoryImpl) FindByIDs(db *gorm.DB, ids []uint) ([]Athlete, error) {
	var out []Athlete
	if len(ids) == 0 {
		return out, nil
	}
	err := db.Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// ListActive returns active athletes that have a payer, ordered by id.
func (r *repositoryImpl) ListActive(db *gorm.DB) ([]Athlete, error) {
	var out []Athlete
	err := db.Where("active = ? AND payer_id <> 0", true).Order("id").Find(&out).Error
	return out, err
}

func (r *repositoryImpl) Create(db *gorm.DB, a *Athlete) error {
	return db.Create(a).Error
}
