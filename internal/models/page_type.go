package models

// 页面类型，用于存放各类列表页的多语言 SEO 文案
const (
	PageHome     = "home"
	PageNew      = "new"
	PageCategory = "category"
	PageTag      = "tag"
	PageGame     = "game"
)

type PageType struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	Key string `gorm:"uniqueIndex;size:40;not null" json:"key"`

	Translations []PageTypeTranslation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"translations,omitempty"`
}

type PageTypeTranslation struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	PageTypeID      uint   `gorm:"not null;uniqueIndex:idx_page_type_translation_locale" json:"page_type_id"`
	Locale          string `gorm:"size:10;not null;uniqueIndex:idx_page_type_translation_locale" json:"locale"`
	Title           string `json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

func (t PageTypeTranslation) GetLocale() string { return t.Locale }

func (t PageTypeTranslation) Field(name string) (string, bool) {
	switch name {
	case "title":
		return t.Title, true
	case "description":
		return t.Description, true
	case "meta_title":
		return t.MetaTitle, true
	case "meta_description":
		return t.MetaDescription, true
	}
	return "", false
}
