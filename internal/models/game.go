package models

import (
	"time"
)

type Game struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	URL         string    `gorm:"not null" json:"url"` // iframe 嵌入地址
	SourceURL   string    `json:"source_url"`          // 游戏官网/介绍页，AI 生成 SEO 时抓取
	Thumbnail   string    `json:"thumbnail"`
	IsPublished bool      `gorm:"not null;default:false;index" json:"is_published"`
	Likes       int       `gorm:"not null;default:0" json:"likes"`
	Dislikes    int       `gorm:"not null;default:0" json:"dislikes"`
	Plays       int       `gorm:"not null;default:0" json:"plays"`
	HotScore    float64   `gorm:"default:0;index" json:"hot_score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Translations []GameTranslation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"translations,omitempty"`
	Categories   []Category        `gorm:"many2many:game_categories;" json:"categories,omitempty"`
	Tags         []Tag             `gorm:"many2many:game_tags;" json:"tags,omitempty"`
	Votes        []GameVote        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// GameTranslation 每个 (game_id, locale) 最多一条，编辑时覆盖
type GameTranslation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	GameID          uint      `gorm:"not null;uniqueIndex:idx_game_translation_locale" json:"game_id"`
	Locale          string    `gorm:"size:10;not null;uniqueIndex:idx_game_translation_locale" json:"locale"`
	Title           string    `gorm:"not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"` // Markdown
	Instructions    string    `gorm:"type:text" json:"instructions"`
	MetaTitle       string    `json:"meta_title"`
	MetaDescription string    `json:"meta_description"`
	Keywords        string    `json:"keywords"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (t GameTranslation) GetLocale() string { return t.Locale }

func (t GameTranslation) Field(name string) (string, bool) {
	switch name {
	case "title":
		return t.Title, true
	case "description":
		return t.Description, true
	case "instructions":
		return t.Instructions, true
	case "meta_title":
		return t.MetaTitle, true
	case "meta_description":
		return t.MetaDescription, true
	case "keywords":
		return t.Keywords, true
	}
	return "", false
}
