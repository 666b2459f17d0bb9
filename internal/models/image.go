package models

import "time"

// Image is a hash-addressed upload. Variants are derived renditions
// written by the image pipeline.
type Image struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Hash      string         `gorm:"size:64;unique;not null" json:"hash"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	CropMode  string         `gorm:"size:16" json:"crop_mode"`
	Variants  []ImageVariant `gorm:"foreignKey:ImageID" json:"variants,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ImageVariant is one encoded rendition of an Image.
type ImageVariant struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ImageID uint   `gorm:"not null;index" json:"image_id"`
	SizePx  int    `gorm:"not null" json:"size_px"`
	Format  string `gorm:"size:8;not null" json:"format"`
	Path    string `gorm:"not null" json:"path"`
}
