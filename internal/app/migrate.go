package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cheerclub/billing-api/internal/accounts"
	"github.com/cheerclub/billing-api/internal/cards"
	"github.com/cheerclub/billing-api/internal/dues"
	"github.com/cheerclub/billing-api/internal/enrollment"
	"github.com/cheerclub/billing-api/internal/expenses"
	"github.com/cheerclub/billing-api/internal/manualpayment"
	"github.com/cheerclub/billing-api/internal/onlinecharge"
	"github.com/cheerclub/billing-api/internal/roster"
	"github.com/cheerclub/billing-api/internal/webpay"
)

// Models lists every persisted type.
func Models() []any {
	models := []any{
		&accounts.Account{},
		&roster.Athlete{},
		&enrollment.Period{},
		&enrollment.Obligation{},
		&dues.Config{},
		&dues.Due{},
		&onlinecharge.Charge{},
		&onlinecharge.Obligation{},
		&cards.Card{},
		&manualpayment.Payment{},
		&expenses.Expense{},
	}
	return append(models, webpay.Models()...)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
