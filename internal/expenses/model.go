package expenses

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryRent     Category = "rent"
	CategorySupplies Category = "supplies"
	CategoryUniforms Category = "uniforms"
	CategoryServices Category = "services"
	CategoryStaff    Category = "staff"
	CategoryOther    Category = "other"
)

func (c Category) valid() bool {
	switch c {
	case CategoryRent, CategorySupplies, CategoryUniforms, CategoryServices, CategoryStaff, CategoryOther:
		return true
	}
	return false
}

// Expense is money the club spent.
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Concept     string          `gorm:"size:255;not null" json:"concept"`
	Category    Category        `gorm:"size:20;not null;index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	SpentOn     time.Time       `gorm:"type:date;not null;index" json:"spentOn"`
	Method      string          `gorm:"size:50;not null" json:"method"`
	Responsible string          `json:"responsible,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
	Description string          `json:"description,omitempty"`
	Receipt     string          `json:"receipt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Expense) TableName() string { return "expenses" }
