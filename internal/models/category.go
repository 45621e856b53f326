package models

import (
	"time"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"uniqueIndex;size:80;not null" json:"slug"`
	Icon      string    `json:"icon"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Translations []CategoryTranslation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"translations,omitempty"`
}

type CategoryTranslation struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	CategoryID      uint   `gorm:"not null;uniqueIndex:idx_category_translation_locale" json:"category_id"`
	Locale          string `gorm:"size:10;not null;uniqueIndex:idx_category_translation_locale" json:"locale"`
	Name            string `gorm:"not null" json:"name"`
	Description     string `gorm:"type:text" json:"description"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

func (t CategoryTranslation) GetLocale() string { return t.Locale }

func (t CategoryTranslation) Field(name string) (string, bool) {
	switch name {
	case "name":
		return t.Name, true
	case "description":
		return t.Description, true
	case "meta_title":
		return t.MetaTitle, true
	case "meta_description":
		return t.MetaDescription, true
	}
	return "", false
}
