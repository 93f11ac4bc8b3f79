package models

import "time"

// UploadedAsset is the audit record of one successful upload.
type UploadedAsset struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Path        string    `gorm:"index;size:1024;not null" json:"path"` // logical storage path, folder/name
	Folder      string    `gorm:"index;size:32;not null" json:"folder"`
	ContentType string    `gorm:"size:128;not null" json:"content_type"`
	Size        int64     `gorm:"not null;default:0" json:"size"`
	URL         string    `gorm:"type:text" json:"url"`
	UploaderIP  string    `gorm:"size:64" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
