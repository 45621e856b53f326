package models

import (
	"time"
)

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"uniqueIndex;size:80;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	Translations []TagTranslation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"translations,omitempty"`
}

type TagTranslation struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TagID       uint   `gorm:"not null;uniqueIndex:idx_tag_translation_locale" json:"tag_id"`
	Locale      string `gorm:"size:10;not null;uniqueIndex:idx_tag_translation_locale" json:"locale"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
}

func (t TagTranslation) GetLocale() string { return t.Locale }

func (t TagTranslation) Field(name string) (string, bool) {
	switch name {
	case "name":
		return t.Name, true
	case "description":
		return t.Description, true
	}
	return "", false
}
