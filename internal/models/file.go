package models

import "time"

// StoredFile is the metadata row for an uploaded blob. The bytes live on disk
// under <storage dir>/<bucket>/<file id>.
type StoredFile struct {
	FileID    string `gorm:"primaryKey;size:36"`
	BucketID  string `gorm:"size:64;not null;index"`
	FileName  string `gorm:"size:255;not null"`
	MimeType  string `gorm:"size:127"`
	SizeBytes int64  `gorm:"not null;default:0"`
	Checksum  string `gorm:"size:64"`
	OwnerID   string `gorm:"size:36;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name for StoredFile
func (StoredFile) TableName() string {
	return "stored_files"
}
