package models

import "time"

// User represents an application account. Users own sales and expenses;
// ledger rows reference the user, never the other way around.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
}
