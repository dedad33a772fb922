package model

import (
	"time"
)

// User account (local or OAuth)
type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"type:varchar(100)" json:"-"` // bcrypt hash, local accounts only
	Avatar     string    `gorm:"type:text" json:"avatar"`
	Role       string    `gorm:"type:varchar(20);default:'Artist'" json:"role"` // Director, Writer, Artist, Assistant
	Provider   string    `gorm:"type:varchar(20);default:'local'" json:"provider"`
	GoogleID   *string   `gorm:"type:varchar(255);index" json:"google_id,omitempty"`
	GitHubID   *string   `gorm:"type:varchar(255);index" json:"github_id,omitempty"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	LoginCount int       `gorm:"default:0" json:"login_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Project is the top-level creative workspace
type Project struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title          string     `gorm:"type:varchar(200);not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Genre          string     `gorm:"type:varchar(100)" json:"genre"`
	Tags           StringList `gorm:"type:jsonb" json:"tags"`
	CoverImage     string     `gorm:"type:text" json:"cover_image"`
	Status         string     `gorm:"type:varchar(20);default:'Draft'" json:"status"` // Draft, In Progress, Completed, Archived
	OwnerID        int64      `gorm:"not null;index" json:"owner_id"`
	StoryboardID   *int64     `json:"storyboard_id,omitempty"`
	ShotSequenceID *int64     `json:"shot_sequence_id,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime;index" json:"updated_at"`

	// Relations
	Owner         User                 `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Collaborators []ProjectCollaborator `gorm:"foreignKey:ProjectID" json:"collaborators,omitempty"`
	Comments      []ProjectComment      `gorm:"foreignKey:ProjectID" json:"comments,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectCollaborator links an invited user to a project
type ProjectCollaborator struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID  int64      `gorm:"not null;index:idx_project_user" json:"project_id"`
	UserID     int64      `gorm:"not null;index:idx_project_user" json:"user_id"`
	Role       string     `gorm:"type:varchar(20);default:'Viewer'" json:"role"` // Editor, Viewer
	Active     bool       `gorm:"default:true" json:"active"`
	LastActive *time.Time `json:"last_active,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProjectCollaborator) TableName() string {
	return "project_collaborators"
}

// ProjectComment is an append-only discussion entry.
// Rows are never updated or deleted once created.
type ProjectComment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"not null;index:idx_project_created" json:"project_id"`
	UserID    int64     `gorm:"not null" json:"user_id"`
	Username  string    `gorm:"type:varchar(100);default:'Unknown User'" json:"username"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_project_created" json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProjectComment) TableName() string {
	return "project_comments"
}

// Invitation is a pending collaboration offer sent by mail
type Invitation struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;index:idx_email_project" json:"email"`
	ProjectID int64     `gorm:"not null;index:idx_email_project" json:"project_id"`
	InviterID int64     `gorm:"not null" json:"inviter_id"`
	Role      string    `gorm:"type:varchar(20);default:'Viewer'" json:"role"` // Owner, Editor, Viewer
	Token     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	Status    string    `gorm:"type:varchar(20);default:'pending'" json:"status"` // pending, accepted, expired
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Inviter User    `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
}

func (Invitation) TableName() string {
	return "invitations"
}

// Script is the screenplay document of a project (one per project)
type Script struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   int64       `gorm:"not null;uniqueIndex" json:"project_id"`
	Pages       ScriptPages `gorm:"type:jsonb" json:"pages"`
	PageColor   string      `gorm:"type:varchar(20);default:'#ffffff'" json:"page_color"`
	LastUpdated time.Time   `gorm:"autoUpdateTime" json:"last_updated"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (Script) TableName() string {
	return "scripts"
}

// Storyboard is the drawable canvas document of a project
type Storyboard struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID    *int64          `gorm:"index" json:"project_id,omitempty"`
	Pages        StoryboardPages `gorm:"type:jsonb" json:"pages"`
	DefaultColor string          `gorm:"type:varchar(20);default:'#000000'" json:"default_color"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Storyboard) TableName() string {
	return "storyboards"
}

// ShotSequence is the timeline document of a project
type ShotSequence struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID  int64          `gorm:"not null;index" json:"project_id"`
	Title      string         `gorm:"type:varchar(200);default:'Untitled Sequence'" json:"title"`
	Frames     SequenceFrames `gorm:"type:jsonb" json:"frames"`
	AudioTrack string         `gorm:"type:text" json:"audio_track"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ShotSequence) TableName() string {
	return "shot_sequences"
}

// ContactMessage is a submitted contact-form entry
type ContactMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	Subject   string    `gorm:"type:varchar(200);not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}
