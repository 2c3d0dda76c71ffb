package approvalmock

import (
	"context"
	"errors"

	domain "approveit-backend/internal/domain/approval"
)

// Ensure compile-time compliance
var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("approvalmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Fill in the function fields you need in a test; unfilled ones return
// errUnimplemented (or no-op for writes).
type Repo struct {
	CreateFn                   func(ctx context.Context, a *domain.Approval) error
	GetByApprovalIDFn          func(ctx context.Context, approvalID string) (*domain.Approval, error)
	GetByApprovalIDForUpdateFn func(ctx context.Context, approvalID string) (*domain.Approval, error)
	SaveFn                     func(ctx context.Context, a *domain.Approval) error
	DeleteFn                   func(ctx context.Context, a *domain.Approval) error
	ListByRequesterFn          func(ctx context.Context, email string) ([]domain.Approval, error)
	ListByApproverFn           func(ctx context.Context, email string) ([]domain.Approval, error)
	SaveApproverFn             func(ctx context.Context, ap *domain.Approver) error
	ReplaceApproversFn         func(ctx context.Context, approvalRef uint64, approvers []domain.Approver) error
	CreateAttachmentsFn        func(ctx context.Context, atts []domain.Attachment) error
	DeleteAttachmentsFn        func(ctx context.Context, ids []uint64) error
	AppendEventFn              func(ctx context.Context, e *domain.Event) error
	UpsertMeetingFn            func(ctx context.Context, m *domain.Meeting) error
	DeleteMeetingFn            func(ctx context.Context, approvalRef uint64) error
}

func (m *Repo) Create(ctx context.Context, a *domain.Approval) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApprovalID(ctx context.Context, approvalID string) (*domain.Approval, error) {
	if m.GetByApprovalIDFn != nil {
		return m.GetByApprovalIDFn(ctx, approvalID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByApprovalIDForUpdate(ctx context.Context, approvalID string) (*domain.Approval, error) {
	if m.GetByApprovalIDForUpdateFn != nil {
		return m.GetByApprovalIDForUpdateFn(ctx, approvalID)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, a *domain.Approval) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, a *domain.Approval) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, a)
	}
	return nil
}

func (m *Repo) ListByRequester(ctx context.Context, email string) ([]domain.Approval, error) {
	if m.ListByRequesterFn != nil {
		return m.ListByRequesterFn(ctx, email)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByApprover(ctx context.Context, email string) ([]domain.Approval, error) {
	if m.ListByApproverFn != nil {
		return m.ListByApproverFn(ctx, email)
	}
	return nil, errUnimplemented
}

func (m *Repo) SaveApprover(ctx context.Context, ap *domain.Approver) error {
	if m.SaveApproverFn != nil {
		return m.SaveApproverFn(ctx, ap)
	}
	return nil
}

func (m *Repo) ReplaceApprovers(ctx context.Context, approvalRef uint64, approvers []domain.Approver) error {
	if m.ReplaceApproversFn != nil {
		return m.ReplaceApproversFn(ctx, approvalRef, approvers)
	}
	return nil
}

func (m *Repo) CreateAttachments(ctx context.Context, atts []domain.Attachment) error {
	if m.CreateAttachmentsFn != nil {
		return m.CreateAttachmentsFn(ctx, atts)
	}
	return nil
}

func (m *Repo) DeleteAttachments(ctx context.Context, ids []uint64) error {
	if m.DeleteAttachmentsFn != nil {
		return m.DeleteAttachmentsFn(ctx, ids)
	}
	return nil
}

func (m *Repo) AppendEvent(ctx context.Context, e *domain.Event) error {
	if m.AppendEventFn != nil {
		return m.AppendEventFn(ctx, e)
	}
	return nil
}

func (m *Repo) UpsertMeeting(ctx context.Context, mt *domain.Meeting) error {
	if m.UpsertMeetingFn != nil {
		return m.UpsertMeetingFn(ctx, mt)
	}
	return nil
}

func (m *Repo) DeleteMeeting(ctx context.Context, approvalRef uint64) error {
	if m.DeleteMeetingFn != nil {
		return m.DeleteMeetingFn(ctx, approvalRef)
	}
	return nil
}
