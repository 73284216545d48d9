// Package roster exposes the athletes billing needs: who is active and who
// pays for them. Roster management itself lives elsewhere.
package roster

import "time"

type Athlete struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PayerID   uint      `gorm:"not null;index" json:"payerId"`
	FullName  string    `gorm:"size:255;not null" json:"fullName"`
	Active    bool      `gorm:"not null;index" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
