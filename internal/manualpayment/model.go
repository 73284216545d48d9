package manualpayment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindEnrollment   Kind = "enrollment"
	KindRecurringDue Kind = "recurring_due"
	KindOther        Kind = "other"
)

// Payment is money an admin received outside the gateway.
type Payment struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	PayerID                uint            `gorm:"not null;index" json:"payerId"`
	Kind                   Kind            `gorm:"size:20;not null" json:"kind"`
	Amount                 decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Concept                string          `gorm:"size:255;not null" json:"concept"`
	Method                 string          `gorm:"size:50;not null" json:"method"`
	Receipt                string          `json:"receipt,omitempty"`
	EnrollmentObligationID *uint           `gorm:"index" json:"enrollmentObligationId"`
	DueID                  *uint           `gorm:"index" json:"dueId"`
	RecordedBy             uint            `gorm:"not null" json:"recordedBy"`
	Notes                  string          `json:"notes,omitempty"`
	CreatedAt              time.Time       `json:"createdAt"`
}

func (Payment) TableName() string { return "manual_payments" }

// Linked reports whether the payment settled an obligation.
func (p *Payment) Linked() bool {
	return p.EnrollmentObligationID != nil || p.DueID != nil
}
