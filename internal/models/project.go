package models

import "time"

type Project struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	OrganizationID uint64    `gorm:"not null;uniqueIndex:idx_projects_org_slug,priority:1" json:"organization_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug           string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_projects_org_slug,priority:2" json:"slug"`
	Description    string    `gorm:"type:text" json:"description"`
	CreatedByID    uint64    `gorm:"not null" json:"created_by_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
}

// ProjectMember joins users to projects. A (project, user) pair appears at most once.
type ProjectMember struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ProjectID uint64    `gorm:"not null;uniqueIndex:idx_project_members_pair,priority:1" json:"project_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_project_members_pair,priority:2;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
