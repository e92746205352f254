package models

import "time"

// User is the minimal account row the wallet core needs. Profile and
// credential management live in the accounts subsystem; this model exists
// so wallets, limits and payment methods have an owner to reference.
type User struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Name      string `gorm:"not null" json:"name"`
	Role      string `gorm:"default:'creator'" json:"role"`
	Status    string `gorm:"default:'active'" json:"status"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
