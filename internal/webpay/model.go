package webpay

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type State string

const (
	StateInitiated State = "initiated"
	StateConfirmed State = "confirmed"
	StateRejected  State = "rejected"
)

func (s State) terminal() bool { return s == StateConfirmed || s == StateRejected }

// Transaction is one gateway attempt to pay one obligation.
type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Token        string          `gorm:"size:128;not null;uniqueIndex" json:"token"`
	ObligationID uint            `gorm:"not null;index" json:"obligationId"`
	State        State           `gorm:"size:20;not null" json:"state"`
	BuyOrder     string          `gorm:"size:26;not null" json:"buyOrder"`
	SessionID    string          `gorm:"size:61" json:"sessionId"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	ResponseCode *int            `json:"responseCode"`
	Raw          datatypes.JSON  `json:"raw,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// EnrollmentTransaction and ChargeTransaction only name the table each
// obligation kind keeps its attempts in.
type EnrollmentTransaction struct{ Transaction }

func (EnrollmentTransaction) TableName() string { return "enrollment_gateway_transactions" }

type ChargeTransaction struct{ Transaction }

func (ChargeTransaction) TableName() string { return "charge_gateway_transactions" }

// Models lists what AutoMigrate must create for this package.
func Models() []any {
	return []any{&EnrollmentTransaction{}, &ChargeTransaction{}}
}
