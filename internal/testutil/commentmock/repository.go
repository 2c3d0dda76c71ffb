package commentmock

import (
	"context"
	"errors"

	domain "approveit-backend/internal/domain/approval"
)

var _ domain.CommentRepository = (*Repo)(nil)

var errUnimplemented = errors.New("commentmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.CommentRepository.
type Repo struct {
	CreateFn         func(ctx context.Context, c *domain.Comment) error
	GetByCommentIDFn func(ctx context.Context, commentID string) (*domain.Comment, error)
	SaveFn           func(ctx context.Context, c *domain.Comment) error
	DeleteFn         func(ctx context.Context, c *domain.Comment) error
	ListByApprovalFn func(ctx context.Context, approvalRef uint64) ([]domain.Comment, error)
}

func (m *Repo) Create(ctx context.Context, c *domain.Comment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetByCommentID(ctx context.Context, commentID string) (*domain.Comment, error) {
	if m.GetByCommentIDFn != nil {
		return m.GetByCommentIDFn(ctx, commentID)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, c *domain.Comment) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, c)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, c *domain.Comment) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, c)
	}
	return nil
}

func (m *Repo) ListByApproval(ctx context.Context, approvalRef uint64) ([]domain.Comment, error) {
	if m.ListByApprovalFn != nil {
		return m.ListByApprovalFn(ctx, approvalRef)
	}
	return nil, errUnimplemented
}
