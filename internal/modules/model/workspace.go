package model

import (
	"time"

	"github.com/google/uuid"
)

type Workspace struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	OwnerID     string    `gorm:"type:text;not null;index" json:"ownerId"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Workspace <-> WorkspaceMember
	Members []WorkspaceMember `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"members,omitempty"`

	// Workspace <-> Table
	Tables []Table `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	TableCount int64 `gorm:"->;-:migration" json:"tableCount"`
}

func (Workspace) TableName() string { return "workspaces" }

// WorkspaceMember grants a user access to a workspace. Presence is the only permission.
type WorkspaceMember struct {
	WorkspaceID uuid.UUID `gorm:"type:uuid;primaryKey" json:"workspaceId"`
	UserID      string    `gorm:"type:text;primaryKey;index" json:"userId"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	// WorkspaceMember <-> Workspace
	Workspace *Workspace `gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (WorkspaceMember) TableName() string { return "workspace_members" }
