package webpay

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, t *Transaction) error
	FindByToken(db *gorm.DB, token string) (*Transaction, error)
	// Finish moves an initiated transaction to a terminal state and reports
	// whether this call did it.
	Finish(db *gorm.DB, token string, state State, code *int, raw datatypes.JSON) (bool, error)
}

// repositoryImpl reads and writes one kind's table.
type repositoryImpl struct {
	table string
}

func NewRepository(table string) Repository {
	return &repositoryImpl{table: table}
}

func (r *repositoryImpl) Create(db *gorm.DB, t *Transaction) error {
	return db.Table(r.table).Create(t).Error
}

func (r *repositoryImpl) FindByToken(db *gorm.DB, token string) (*Transaction, error) {
	var t Transaction
	err := db.Table(r.table).Where("token = ?", token).First(&t).Error
	return &t, err
}

func (r *repositoryImpl) Finish(db *gorm.DB, token string, state State, code *int, raw datatypes.JSON) (bool, error) {
	res := db.Table(r.table).
		Where("token = ? AND state = ?", token, StateInitiated).
		Updates(map[string]any{
			"state":         state,
			"response_code": code,
			"raw":           raw,
			"updated_at":    time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}
