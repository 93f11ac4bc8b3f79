package models

import "time"

type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Ref       string    `gorm:"uniqueIndex;size:36;not null" json:"ref"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"index;size:255;not null" json:"email"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IP        string    `gorm:"size:64" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
