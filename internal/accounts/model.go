package accounts

import (
	"time"

	"github.com/cheerclub/billing-api/internal/auth"
)

// Account is a club login. Billing reads it as the payer of obligations.
type Account struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Email             string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name              string    `gorm:"size:255" json:"name"`
	PasswordHash      string    `gorm:"not null" json:"-"`
	Role              auth.Role `gorm:"size:20;not null" json:"role"`
	MustResetPassword bool      `json:"mustResetPassword"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
