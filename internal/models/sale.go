package models

import "time"

// Sale is a single sales ledger row. Date is the business date of the
// transaction and is what all analytics filter and group by; CreatedAt is
// only the insertion timestamp.
type Sale struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Item      string    `gorm:"size:255;not null" json:"item"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Quantity  int       `gorm:"default:1" json:"quantity"`
	Date      time.Time `gorm:"type:date;index;not null" json:"date"`
	ImagePath *string   `gorm:"size:255" json:"image_path"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`

	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}
