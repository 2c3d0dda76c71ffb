package approval

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Table: approvals
type Approval struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	ApprovalID  string    `gorm:"column:approval_id;type:char(32);not null;uniqueIndex:ux_approvals_approval_id"`
	Name        string    `gorm:"column:name;size:255;not null"`
	Description string    `gorm:"column:description;type:text"`
	Priority    Priority  `gorm:"column:priority;type:enum('low','medium','high');default:'medium'"`
	Status      Status    `gorm:"column:status;type:enum('pending','approved','rejected');default:'pending'"`
	Expired     bool      `gorm:"column:expired;not null;default:false"`
	DueAt       time.Time `gorm:"column:due_at;not null"`
	// Requester identity (email); sole owner of core fields
	RequesterEmail string `gorm:"column:requester_email;size:255;not null;index:idx_approvals_requester"`
	RequesterName  string `gorm:"column:requester_name;size:255;not null"`
	// Semantic fingerprint of name+description; absent when the embedding
	// call failed or was skipped.
	Embedding datatypes.JSON `gorm:"column:embedding;type:json"`

	Approvers   []Approver   `gorm:"foreignKey:ApprovalRef;constraint:OnDelete:CASCADE"`
	Attachments []Attachment `gorm:"foreignKey:ApprovalRef;constraint:OnDelete:CASCADE"`
	Comments    []Comment    `gorm:"foreignKey:ApprovalRef;constraint:OnDelete:CASCADE"`
	Events      []Event      `gorm:"foreignKey:ApprovalRef;constraint:OnDelete:CASCADE"`
	Meeting     *Meeting     `gorm:"foreignKey:ApprovalRef;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Approval) TableName() string { return "approvals" }

// Approver is one per-approval decision slot. Decision is nil until the
// approver acts; true = approved, false = declined.
type Approver struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ApprovalRef uint64     `gorm:"column:approval_ref;not null;index;uniqueIndex:ux_approvers_approval_email,priority:1"`
	Email       string     `gorm:"column:email;size:255;not null;uniqueIndex:ux_approvers_approval_email,priority:2"`
	Name        string     `gorm:"column:name;size:255;not null"`
	Decision    *bool      `gorm:"column:decision"`
	DecidedAt   *time.Time `gorm:"column:decided_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Approver) TableName() string { return "approvers" }

// Attachment metadata. The blob itself lives in object storage under
// StorageKey; attachments are immutable once created.
type Attachment struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	AttachmentID string    `gorm:"column:attachment_id;type:char(32);not null;uniqueIndex:ux_attachments_attachment_id"`
	ApprovalRef  uint64    `gorm:"column:approval_ref;not null;index"`
	Name         string    `gorm:"column:name;size:255;not null"`
	Size         int64     `gorm:"column:size;not null"`
	URL          string    `gorm:"column:url;type:text;not null"`
	StorageKey   string    `gorm:"column:storage_key;size:512;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Attachment) TableName() string { return "attachments" }

type Comment struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	CommentID   string    `gorm:"column:comment_id;type:char(32);not null;uniqueIndex:ux_comments_comment_id"`
	ApprovalRef uint64    `gorm:"column:approval_ref;not null;index"`
	AuthorEmail string    `gorm:"column:author_email;size:255;not null"`
	AuthorName  string    `gorm:"column:author_name;size:255;not null"`
	Text        string    `gorm:"column:text;type:text;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Comment) TableName() string { return "comments" }

type EventType string

const (
	EventViewed   EventType = "viewed"
	EventApproved EventType = "approved"
	EventRejected EventType = "rejected"
)

// Event is an append-only audit entry; rows are never updated or deleted
// except by cascade when the parent approval is deleted.
type Event struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ApprovalRef uint64    `gorm:"column:approval_ref;not null;index"`
	Type        EventType `gorm:"column:type;type:enum('viewed','approved','rejected');not null"`
	ActorName   string    `gorm:"column:actor_name;size:255;not null"`
	Date        time.Time `gorm:"column:date;not null"`
}

func (Event) TableName() string { return "events" }

// Meeting mirrors a meeting scheduled through the external conferencing
// provider; at most one per approval.
type Meeting struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ApprovalRef     uint64    `gorm:"column:approval_ref;not null;uniqueIndex:ux_meetings_approval"`
	Topic           string    `gorm:"column:topic;size:255;not null"`
	StartAt         time.Time `gorm:"column:start_at;not null"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null"`
	ProviderID      string    `gorm:"column:provider_id;size:64;not null"`
	JoinURL         string    `gorm:"column:join_url;type:text;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Meeting) TableName() string { return "meetings" }
