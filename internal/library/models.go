package library

import "time"

// Photo is a library entry owned by a single user. FilePath is the public URL
// returned by the object store.
type Photo struct {
	PhotoID          string    `gorm:"primaryKey" json:"photo_id"`
	UserID           string    `gorm:"not null;index" json:"user_id"`
	FilePath         string    `gorm:"not null" json:"file_path"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int       `json:"file_size"`
	ContentType      string    `json:"content_type"`
	CreatedAt        time.Time `json:"created_at"`
}

func (Photo) TableName() string { return "hunt.photos" }
