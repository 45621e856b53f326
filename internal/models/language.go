package models

import (
	"time"
)

type Language struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"uniqueIndex;size:10;not null" json:"code"` // ISO 639-1，例如 en、zh
	Name       string    `gorm:"not null" json:"name"`
	NativeName string    `json:"native_name"`
	IsDefault  bool      `gorm:"default:false" json:"is_default"`
	Enabled    bool      `gorm:"default:true" json:"enabled"`
	SortOrder  int       `gorm:"default:0" json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
