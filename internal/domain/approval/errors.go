package approval

import "errors"

var (
	ErrNotFound           = errors.New("approval not found")
	ErrNotAnApprover      = errors.New("actor is not a listed approver")
	ErrNotAuthorized      = errors.New("actor is not authorized for this action")
	ErrSelfApproval       = errors.New("requester cannot be listed as an approver")
	ErrNoApprovers        = errors.New("at least one approver is required")
	ErrDuplicateApprover  = errors.New("duplicate approver email")
	ErrTooManyAttachments = errors.New("at most 5 attachments are allowed")
	ErrAttachmentTooLarge = errors.New("attachment exceeds the 16 MiB limit")

	// ErrUpstream marks a failed collaborator call during the primary write.
	ErrUpstream = errors.New("upstream service error")
	// ErrPartialFailure marks a dependent step that failed after the
	// primary write already committed; nothing is rolled back.
	ErrPartialFailure = errors.New("partial failure after primary write")
)
