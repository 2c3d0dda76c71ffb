package approval

import "context"

// Repository persists the Approval aggregate. Get* methods load the full
// aggregate (approvers, attachments, comments, events, meeting).
type Repository interface {
	Create(ctx context.Context, a *Approval) error

	GetByApprovalID(ctx context.Context, approvalID string) (*Approval, error)

	// Row-locked variant for decision/edit transactions.
	GetByApprovalIDForUpdate(ctx context.Context, approvalID string) (*Approval, error)

	// Save persists the approval's own columns (not associations).
	Save(ctx context.Context, a *Approval) error

	// Delete hard-deletes the approval and cascades its collections.
	Delete(ctx context.Context, a *Approval) error

	// Outgoing box: approvals the given identity requested.
	ListByRequester(ctx context.Context, email string) ([]Approval, error)
	// Incoming box: approvals where the given identity holds a decision slot.
	ListByApprover(ctx context.Context, email string) ([]Approval, error)

	// SaveApprover updates a single decision slot row.
	SaveApprover(ctx context.Context, ap *Approver) error
	// ReplaceApprovers swaps the full approver list during a requester edit.
	ReplaceApprovers(ctx context.Context, approvalRef uint64, approvers []Approver) error

	CreateAttachments(ctx context.Context, atts []Attachment) error
	DeleteAttachments(ctx context.Context, ids []uint64) error

	// AppendEvent writes one audit entry; events are never updated or deleted.
	AppendEvent(ctx context.Context, e *Event) error

	UpsertMeeting(ctx context.Context, m *Meeting) error
	DeleteMeeting(ctx context.Context, approvalRef uint64) error
}

// CommentRepository persists discussion comments.
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	GetByCommentID(ctx context.Context, commentID string) (*Comment, error)
	Save(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, c *Comment) error
	ListByApproval(ctx context.Context, approvalRef uint64) ([]Comment, error)
}
