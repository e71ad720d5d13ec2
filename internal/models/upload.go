package models

import (
	"time"
)

// Face identifies which side of a card an image shows.
type Face string

const (
	FaceFront Face = "front"
	FaceBack  Face = "back"
)

// UploadedImage records a stored scan. StorageKey is content-addressed; the
// caller-supplied filename is kept only as metadata.
type UploadedImage struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           uint      `json:"user_id" gorm:"index"`
	Face             Face      `json:"face" gorm:"not null"`
	StorageKey       string    `json:"storage_key" gorm:"not null;index"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	CreatedAt        time.Time `json:"created_at"`
}
