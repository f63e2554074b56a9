package models

import "time"

type WikiPage struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	ProjectID    uint64    `gorm:"not null;uniqueIndex:idx_wiki_pages_project_title,priority:1;index:idx_wiki_pages_project_edited,priority:1" json:"project_id"`
	Title        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_wiki_pages_project_title,priority:2" json:"title"`
	Content      string    `gorm:"type:text" json:"content"`
	Thumbnail    *string   `gorm:"type:varchar(1024)" json:"thumbnail"`
	LastEditedAt time.Time `gorm:"not null;index:idx_wiki_pages_project_edited,priority:2" json:"last_edited_at"`
	CreatedAt    time.Time `json:"created_at"`
}
