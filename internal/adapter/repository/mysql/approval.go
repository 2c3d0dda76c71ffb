package mysql

import (
	"context"

	approvalDomain "approveit-backend/internal/domain/approval"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Approval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApprovalRepository) aggregate(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Approvers").
		Preload("Attachments").
		Preload("Comments").
		Preload("Events").
		Preload("Meeting")
}

func (r *ApprovalRepository) GetByApprovalID(ctx context.Context, approvalID string) (*approvalDomain.Approval, error) {
	var out approvalDomain.Approval
	res := r.aggregate(ctx).Where("approval_id = ?", approvalID).First(&out)
	return &out, res.Error
}

func (r *ApprovalRepository) GetByApprovalIDForUpdate(ctx context.Context, approvalID string) (*approvalDomain.Approval, error) {
	var out approvalDomain.Approval
	res := r.aggregate(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("approval_id = ?", approvalID).
		First(&out)
	return &out, res.Error
}

// Save writes the approval's own columns. Associations are managed
// explicitly through the narrower methods below, so lost sub-rows cannot
// be caused by a stale in-memory aggregate.
func (r *ApprovalRepository) Save(ctx context.Context, a *approvalDomain.Approval) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}

func (r *ApprovalRepository) Delete(ctx context.Context, a *approvalDomain.Approval) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ref := a.ID
		for _, m := range []any{
			&approvalDomain.Approver{},
			&approvalDomain.Attachment{},
			&approvalDomain.Comment{},
			&approvalDomain.Event{},
			&approvalDomain.Meeting{},
		} {
			if err := tx.Where("approval_ref = ?", ref).Delete(m).Error; err != nil {
				return err
			}
		}
		// hard delete, no tombstone
		return tx.Unscoped().Delete(a).Error
	})
}

func (r *ApprovalRepository) ListByRequester(ctx context.Context, email string) ([]approvalDomain.Approval, error) {
	var out []approvalDomain.Approval
	res := r.aggregate(ctx).
		Where("requester_email = ?", email).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *ApprovalRepository) ListByApprover(ctx context.Context, email string) ([]approvalDomain.Approval, error) {
	var out []approvalDomain.Approval
	res := r.aggregate(ctx).
		Joins("JOIN approvers ON approvers.approval_ref = approvals.id").
		Where("approvers.email = ?", email).
		Order("approvals.created_at DESC, approvals.id DESC").
		Find(&out)
	return out, res.Error
}

func (r *ApprovalRepository) SaveApprover(ctx context.Context, ap *approvalDomain.Approver) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

func (r *ApprovalRepository) ReplaceApprovers(ctx context.Context, approvalRef uint64, approvers []approvalDomain.Approver) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("approval_ref = ?", approvalRef).Delete(&approvalDomain.Approver{}).Error; err != nil {
			return err
		}
		if len(approvers) == 0 {
			return nil
		}
		for i := range approvers {
			approvers[i].ID = 0
			approvers[i].ApprovalRef = approvalRef
		}
		return tx.Create(&approvers).Error
	})
}

func (r *ApprovalRepository) CreateAttachments(ctx context.Context, atts []approvalDomain.Attachment) error {
	if len(atts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&atts).Error
}

func (r *ApprovalRepository) DeleteAttachments(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&approvalDomain.Attachment{}).Error
}

func (r *ApprovalRepository) AppendEvent(ctx context.Context, e *approvalDomain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ApprovalRepository) UpsertMeeting(ctx context.Context, m *approvalDomain.Meeting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "approval_ref"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *ApprovalRepository) DeleteMeeting(ctx context.Context, approvalRef uint64) error {
	return r.db.WithContext(ctx).Where("approval_ref = ?", approvalRef).Delete(&approvalDomain.Meeting{}).Error
}
