package models

import "time"

// Product is a collectible listed on the landing page. ImagePath and
// ModelPath are logical storage paths resolved through the asset resolver.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"uniqueIndex;size:128;not null" json:"slug"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Edition     int       `gorm:"not null;default:0" json:"edition"`
	ImagePath   string    `gorm:"size:512" json:"image_path"`
	ModelPath   string    `gorm:"size:512" json:"model_path"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
