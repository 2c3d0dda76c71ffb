package mysql

import (
	"context"

	approvalDomain "approveit-backend/internal/domain/approval"

	"gorm.io/gorm"
)

type CommentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) *CommentRepository { return &CommentRepository{db: db} }

func (r *CommentRepository) Create(ctx context.Context, c *approvalDomain.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CommentRepository) GetByCommentID(ctx context.Context, commentID string) (*approvalDomain.Comment, error) {
	var out approvalDomain.Comment
	res := r.db.WithContext(ctx).Where("comment_id = ?", commentID).First(&out)
	return &out, res.Error
}

func (r *CommentRepository) Save(ctx context.Context, c *approvalDomain.Comment) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CommentRepository) Delete(ctx context.Context, c *approvalDomain.Comment) error {
	return r.db.WithContext(ctx).Delete(c).Error
}

func (r *CommentRepository) ListByApproval(ctx context.Context, approvalRef uint64) ([]approvalDomain.Comment, error) {
	var out []approvalDomain.Comment
	res := r.db.WithContext(ctx).
		Where("approval_ref = ?", approvalRef).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
