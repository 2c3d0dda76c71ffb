package uow

import (
	"context"

	"approveit-backend/internal/domain/approval"
)

type Repos struct {
	Approvals approval.Repository
	Comments  approval.CommentRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the approval row first, then pass it in
	WithinApprovalTx(ctx context.Context, approvalID string, fn func(r Repos, a *approval.Approval) error) error
}
