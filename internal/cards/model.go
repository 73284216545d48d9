package cards

import "time"

// Card is a stored payment instrument. GatewayToken never leaves the server.
type Card struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PayerID        uint      `gorm:"not null;index" json:"payerId"`
	Alias          string    `gorm:"size:100" json:"alias"`
	Brand          string    `gorm:"size:30" json:"brand"`
	Last4          string    `gorm:"size:4;not null" json:"last4"`
	GatewayToken   string    `gorm:"size:255" json:"-"`
	IsDefault      bool      `gorm:"not null" json:"isDefault"`
	AutopayEnabled bool      `gorm:"not null" json:"autopayEnabled"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Card) TableName() string { return "payment_cards" }
