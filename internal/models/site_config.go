package models

import (
	"time"
)

const DefaultSiteConfigKey = "default"

type SiteConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:40;not null" json:"key"`
	Logo      string    `json:"logo"`
	UpdatedAt time.Time `json:"updated_at"`

	Translations []SiteConfigTranslation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"translations,omitempty"`
}

type SiteConfigTranslation struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	SiteConfigID    uint   `gorm:"not null;uniqueIndex:idx_site_config_translation_locale" json:"site_config_id"`
	Locale          string `gorm:"size:10;not null;uniqueIndex:idx_site_config_translation_locale" json:"locale"`
	SiteName        string `json:"site_name"`
	Tagline         string `json:"tagline"`
	MetaDescription string `json:"meta_description"`
	FooterText      string `json:"footer_text"`
}

func (t SiteConfigTranslation) GetLocale() string { return t.Locale }

func (t SiteConfigTranslation) Field(name string) (string, bool) {
	switch name {
	case "site_name":
		return t.SiteName, true
	case "tagline":
		return t.Tagline, true
	case "meta_description":
		return t.MetaDescription, true
	case "footer_text":
		return t.FooterText, true
	}
	return "", false
}
