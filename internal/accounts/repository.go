package accounts

import (
	"strings"

	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/auth"
)

type Repository interface {
	FindByEmail(db *gorm.DB, email string) (*Account, error)
	FindByID(db *gorm.DB, id uint) (*Account, error)
	FindByIDs(db *gorm.DB, ids []uint) ([]Account, error)
	Create(db *gorm.DB, a *Account) error
	// SetRoleIf moves the account from one role to another and reports
	// whether a row changed.
	SetRoleIf(db *gorm.DB, id uint, from, to auth.Role) (bool, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindByEmail(db *gorm.DB, email string) (*Account, error) {
	var a Account
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&a).Error
	return &a, err
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Account, error) {
	var a Account
	err := db.First(&a, id).Error
	return &a, err
}

func (r *repositoryImpl) FindByIDs(db *gorm.DB, ids []uint) ([]Account, error) {
	var out []Account
	if len(ids) == 0 {
		return out, nil
	}
	err := db.Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *repositoryImpl) Create(db *gorm.DB, a *Account) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	return db.Create(a).Error
}

func (r *repositoryImpl) SetRoleIf(db *gorm.DB, id uint, from, to auth.Role) (bool, error) {
	res := db.Model(&Account{}).
		Where("id = ? AND role = ?", id, from).
		Update("role", to)
	return res.RowsAffected == 1, res.Error
}
