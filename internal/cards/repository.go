package cards

import "gorm.io/gorm"

type Repository interface {
	ListByPayer(db *gorm.DB, payerID uint) ([]Card, error)
	FindOwned(db *gorm.DB, id, payerID uint) (*Card, error)
	FindDefault(db *gorm.DB, payerID uint) (*Card, error)
	FindNewest(db *gorm.DB, payerID uint) (*Card, error)
	Create(db *gorm.DB, c *Card) error
	Save(db *gorm.DB, c *Card) error
	Delete(db *gorm.DB, c *Card) error
	// ClearDefaults unsets is_default on every card of the payer but keepID.
	ClearDefaults(db *gorm.DB, payerID, keepID uint) error
	SetFlag(db *gorm.DB, id uint, column string, value bool) error
	PayersWithAutopay(db *gorm.DB, payerIDs []uint) ([]uint, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC, id DESC")
}

func (r *repositoryImpl) ListByPayer(db *gorm.DB, payerID uint) ([]Card, error) {
	var out []Card
	err := newestFirst(db).Where("payer_id = ?", payerID).Find(&out).Error
	return out, err
}

func (r *repositoryImpl) FindOwned(db *gorm.DB, id, payerID uint) (*Card, error) {
	var c Card
	err := db.Where("id = ? AND payer_id = ?", id, payerID).First(&c).Error
	return &c, err
}

func (r *repositoryImpl) FindDefault(db *gorm.DB, payerID uint) (*Card, error) {
	var c Card
	err := newestFirst(db).Where("payer_id = ? AND is_default = ?", payerID, true).First(&c).Error
	return &c, err
}

func (r *repositoryImpl) FindNewest(db *gorm.DB, payerID uint) (*Card, error) {
	var c Card
	err := newestFirst(db).Where("payer_id = ?", payerID).First(&c).Error
	return &c, err
}

func (r *repositoryImpl) Create(db *gorm.DB, c *Card) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) Save(db *gorm.DB, c *Card) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, c *Card) error {
	return db.Delete(c).Error
}

func (r *repositoryImpl) ClearDefaults(db *gorm.DB, payerID, keepID uint) error {
	return db.Model(&Card{}).
		Where("payer_id = ? AND id <> ? AND is_default = ?", payerID, keepID, true).
		Update("is_default", false).Error
}

func (r *repositoryImpl) SetFlag(db *gorm.DB, id uint, column string, value bool) error {
	return db.Model(&Card{}).Where("id = ?", id).Update(column, value).Error
}

func (r *repositoryImpl) PayersWithAutopay(db *gorm.DB, payerIDs []uint) ([]uint, error) {
	var out []uint
	if len(payerIDs) == 0 {
		return out, nil
	}
	err := db.Model(&Card{}).
		Where("payer_id IN ? AND autopay_enabled = ?", payerIDs, true).
		Distinct().
		Order("payer_id").
		Pluck("payer_id", &out).Error
	return out, err
}
