package entities

import (
	"time"
)

// ReadingListEntry records one user's relationship to one book within one
// list. BookID normally holds a canonical Book.ID; when the primary store was
// unreachable at save time it may hold the raw legacy catalog identifier
// instead (the degraded path), so no foreign key constraint is declared.
//
// The persistence layer does not enforce uniqueness of (user_id, book_id,
// list_id). Duplicate rows are tolerated and deduplicated at read time by the
// reconciliation controller.
type ReadingListEntry struct {
	ID      string    `gorm:"primaryKey;size:21" json:"id"`
	UserID  string    `gorm:"index;size:36" json:"user_id"`
	BookID  string    `gorm:"index;size:64" json:"book_id"`
	ListID  *string   `gorm:"index;size:21" json:"list_id"`
	Status  string    `gorm:"size:20;default:'to-read'" json:"status"`
	AddedAt time.Time `json:"added_at"`
}

func (ReadingListEntry) TableName() string {
	return "reading_list_entries"
}

// ReadingList is a named grouping of entries owned by one user. The default
// list is virtual: entries with a NULL list_id belong to it, and no
// ReadingList row is ever materialized for it.
type ReadingList struct {
	ID          string    `gorm:"primaryKey;size:21" json:"id"`
	UserID      string    `gorm:"index;size:36" json:"user_id"`
	Name        string    `gorm:"size:200" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	IsPublic    bool      `gorm:"default:false" json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ReadingList) TableName() string {
	return "reading_lists"
}
