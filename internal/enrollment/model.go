package enrollment

import (
	"time"

	"github.com/shopspring/decimal"
)

type PeriodStatus string

const (
	PeriodScheduled PeriodStatus = "scheduled"
	PeriodActive    PeriodStatus = "active"
	PeriodClosed    PeriodStatus = "closed"
)

// Period is an enrollment season with its fee.
type Period struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:100;not null" json:"name"`
	Description     string          `json:"description"`
	StartsOn        time.Time       `json:"startsOn"`
	EndsOn          time.Time       `json:"endsOn"`
	Fee             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fee"`
	SiblingDiscount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"siblingDiscount"`
	Status          PeriodStatus    `gorm:"size:20;not null;index" json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (Period) TableName() string { return "enrollment_periods" }

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusPartial Status = "partial"
	StatusOverdue Status = "overdue"
)

// unsettled are the statuses mark-paid may transition from.
var unsettled = []Status{StatusPending, StatusPartial, StatusOverdue}

// Obligation is the enrollment fee one payer owes for one athlete and period.
type Obligation struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AthleteID       uint            `gorm:"not null;index" json:"athleteId"`
	PeriodID        uint            `gorm:"not null;index" json:"periodId"`
	PayerID         uint            `gorm:"not null;index" json:"payerId"`
	OriginalAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"originalAmount"`
	DiscountApplied decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discountApplied"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	AmountPaid      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amountPaid"`
	Status          Status          `gorm:"column:payment_status;size:20;not null;index" json:"paymentStatus"`
	PaymentMethod   string          `gorm:"size:50" json:"paymentMethod"`
	Receipt         string          `json:"receipt,omitempty"`
	PaidAt          *time.Time      `json:"paidAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (Obligation) TableName() string { return "enrollment_obligations" }

func (o *Obligation) IsPaid() bool { return o.Status == StatusPaid }
