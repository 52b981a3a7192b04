package models

import "time"

// Expense is a single expense ledger row. Category is optional; rows with
// no category are grouped under "Uncategorized" in the category breakdown.
type Expense struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Item      string    `gorm:"size:255;not null" json:"item"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Category  *string   `gorm:"size:255;index" json:"category"`
	Date      time.Time `gorm:"type:date;index;not null" json:"date"`
	ImagePath *string   `gorm:"size:255" json:"image_path"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`

	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}
