package model

// UserRole creative team role
type UserRole string

const (
	RoleDirector  UserRole = "Director"
	RoleWriter    UserRole = "Writer"
	RoleArtist    UserRole = "Artist"
	RoleAssistant UserRole = "Assistant"
)

// Provider sign-in origin
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// ProjectStatus lifecycle of a project
type ProjectStatus string

const (
	StatusDraft      ProjectStatus = "Draft"
	StatusInProgress ProjectStatus = "In Progress"
	StatusCompleted  ProjectStatus = "Completed"
	StatusArchived   ProjectStatus = "Archived"
)

// CollaboratorRole access level of a project collaborator
type CollaboratorRole string

const (
	CollaboratorEditor CollaboratorRole = "Editor"
	CollaboratorViewer CollaboratorRole = "Viewer"
)

// InvitationStatus lifecycle of an invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// Script block kinds
const (
	BlockSceneHeading  = "scene-heading"
	BlockAction        = "action"
	BlockCharacter     = "character"
	BlockDialogue      = "dialogue"
	BlockParenthetical = "parenthetical"
	BlockTransition    = "transition"
)

func (r UserRole) String() string         { return string(r) }
func (s ProjectStatus) String() string    { return string(s) }
func (s InvitationStatus) String() string { return string(s) }
func (r CollaboratorRole) String() string { return string(r) }
func (p Provider) String() string         { return string(p) }
