package onlinecharge

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryMonthly     Category = "monthly"
	CategoryCompetition Category = "competition"
	CategoryMusic       Category = "music"
	CategoryOther       Category = "other"
)

func (c Category) valid() bool {
	switch c {
	case CategoryMonthly, CategoryCompetition, CategoryMusic, CategoryOther:
		return true
	}
	return false
}

// Charge is an ad-hoc amount billed to every active athlete's payer.
type Charge struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	ExpiresOn   *time.Time      `json:"expiresOn"`
	Category    Category        `gorm:"size:20;not null;index" json:"category"`
	Active      bool            `gorm:"not null" json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Charge) TableName() string { return "online_charges" }

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

var unsettled = []Status{StatusPending, StatusOverdue}

// Obligation is one payer's share of a charge for one athlete. Amount is
// copied from the charge when the row is created and never changes.
type Obligation struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ChargeID      uint            `gorm:"not null;uniqueIndex:idx_online_obligation" json:"chargeId"`
	PayerID       uint            `gorm:"not null;uniqueIndex:idx_online_obligation;index" json:"payerId"`
	AthleteID     uint            `gorm:"not null;uniqueIndex:idx_online_obligation" json:"athleteId"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status        Status          `gorm:"size:20;not null;index" json:"status"`
	PaymentMethod string          `gorm:"size:50" json:"paymentMethod"`
	PaidAt        *time.Time      `json:"paidAt"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Charge *Charge `gorm:"foreignKey:ChargeID" json:"charge,omitempty"`
}

func (Obligation) TableName() string { return "online_charge_obligations" }

func (o *Obligation) IsPaid() bool { return o.Status == StatusPaid }
