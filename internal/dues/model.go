package dues

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config is the single row describing how monthly dues are billed.
type Config struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	BaseAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"baseAmount"`
	DueDay          int             `gorm:"not null" json:"dueDay"`
	LateSurcharge   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"lateSurcharge"`
	SiblingDiscount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"siblingDiscount"`
	Active          bool            `gorm:"not null" json:"active"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (Config) TableName() string { return "recurring_due_config" }

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusWaived  Status = "waived"
)

var unsettled = []Status{StatusPending, StatusOverdue}

// Due is one athlete's monthly fee.
type Due struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	AthleteID     uint            `gorm:"not null;uniqueIndex:idx_due_period" json:"athleteId"`
	PayerID       uint            `gorm:"not null;index" json:"payerId"`
	Month         int             `gorm:"not null;uniqueIndex:idx_due_period" json:"month"`
	Year          int             `gorm:"not null;uniqueIndex:idx_due_period" json:"year"`
	BaseAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"baseAmount"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Surcharge     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"surcharge"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	AmountPaid    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amountPaid"`
	Status        Status          `gorm:"size:20;not null;index" json:"status"`
	DueDate       time.Time       `json:"dueDate"`
	PaidAt        *time.Time      `json:"paidAt"`
	PaymentMethod string          `gorm:"size:50" json:"paymentMethod"`
	Receipt       string          `json:"receipt,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (Due) TableName() string { return "recurring_dues" }

func (d *Due) IsOutstanding() bool {
	return d.Status == StatusPending || d.Status == StatusOverdue
}
