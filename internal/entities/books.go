package entities

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Book is a work in the canonical store. The ID is an opaque UUID assigned at
// ingestion time; LegacyItemID carries the small integer key the flat catalog
// used before the relational store existed, and is the primary resolution key
// for references coming from the search/recommendation path.
type Book struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	Title         string         `gorm:"index;size:512" json:"title"`
	Author        string         `gorm:"index;size:256" json:"author"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	CoverURL      string         `gorm:"size:2048" json:"cover_url,omitempty"`
	PublishedYear int            `json:"published_year,omitempty"`
	Genre         string         `gorm:"size:100" json:"genre,omitempty"`
	Language      string         `gorm:"size:50" json:"language,omitempty"`
	Themes        string         `gorm:"type:text" json:"-"` // JSON-encoded string array
	ISBN10        string         `gorm:"size:20" json:"isbn10,omitempty"`
	ISBN13        string         `gorm:"size:20" json:"isbn13,omitempty"`
	LegacyItemID  *int           `gorm:"index" json:"legacy_item_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// ThemeList decodes the JSON-encoded themes column. A malformed or empty
// column yields an empty list rather than an error.
func (b Book) ThemeList() []string {
	if b.Themes == "" {
		return nil
	}
	var themes []string
	if err := json.Unmarshal([]byte(b.Themes), &themes); err != nil {
		return nil
	}
	return themes
}

// SetThemeList encodes themes into the JSON-encoded themes column.
func (b *Book) SetThemeList(themes []string) {
	if len(themes) == 0 {
		b.Themes = ""
		return
	}
	data, err := json.Marshal(themes)
	if err != nil {
		return
	}
	b.Themes = string(data)
}
