package mysql

import (
	"context"

	"approveit-backend/internal/domain/approval"
	"approveit-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{
			Approvals: &ApprovalRepository{db: tx},
			Comments:  &CommentRepository{db: tx},
		}
		return fn(r)
	})
}

func (u *GormUoW) WithinApprovalTx(ctx context.Context, approvalID string, fn func(r uow.Repos, a *approval.Approval) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{
			Approvals: &ApprovalRepository{db: tx},
			Comments:  &CommentRepository{db: tx},
		}
		// lock the approval row up-front to prevent races
		a, err := r.Approvals.GetByApprovalIDForUpdate(ctx, approvalID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
