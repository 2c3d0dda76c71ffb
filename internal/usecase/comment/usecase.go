package comment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	domain "approveit-backend/internal/domain/approval"
	"approveit-backend/internal/domain/identity"
	"approveit-backend/internal/infrastructure/ai"
	"approveit-backend/pkg/id"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Summary cache entries keep serving until the comment set changes (the
// fingerprint in the key shifts) or the TTL lapses.
const defaultSummaryTTL = 24 * time.Hour

type Summarizer interface {
	IsConfigured() bool
	Summarize(ctx context.Context, comments []string) (*ai.Summary, error)
}

type Usecase struct {
	approvals  domain.Repository
	comments   domain.CommentRepository
	rdb        *redis.Client
	summarizer Summarizer
	summaryTTL time.Duration
}

func NewUsecase(approvals domain.Repository, comments domain.CommentRepository, rdb *redis.Client, summarizer Summarizer) *Usecase {
	return &Usecase{
		approvals:  approvals,
		comments:   comments,
		rdb:        rdb,
		summarizer: summarizer,
		summaryTTL: defaultSummaryTTL,
	}
}

type CommentDTO struct {
	CommentID   string    `json:"comment_id"`
	ApprovalID  string    `json:"approval_id"`
	AuthorEmail string    `json:"author_email"`
	AuthorName  string    `json:"author_name"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// Add appends a comment to an approval's discussion thread. Anyone on
// the approval (requester or approver) may comment.
func (u *Usecase) Add(ctx context.Context, actor identity.Identity, approvalID, text string) (*CommentDTO, error) {
	if !actor.Valid() {
		return nil, identity.ErrNotAuthenticated
	}
	a, err := u.loadApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if !a.IsRequester(actor.Email) && !a.IsApprover(actor.Email) {
		return nil, domain.ErrNotAuthorized
	}
	c := &domain.Comment{
		CommentID:   id.NewID32(),
		ApprovalRef: a.ID,
		AuthorEmail: actor.Email,
		AuthorName:  actor.DisplayName,
		Text:        text,
	}
	if err := u.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return toDTO(c, approvalID), nil
}

// Edit rewrites a comment's text; author only.
func (u *Usecase) Edit(ctx context.Context, actor identity.Identity, approvalID, commentID, text string) (*CommentDTO, error) {
	if !actor.Valid() {
		return nil, identity.ErrNotAuthenticated
	}
	c, err := u.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.AuthorEmail != actor.Email {
		return nil, domain.ErrNotAuthorized
	}
	c.Text = text
	if err := u.comments.Save(ctx, c); err != nil {
		return nil, err
	}
	return toDTO(c, approvalID), nil
}

// Delete removes a comment; author only.
func (u *Usecase) Delete(ctx context.Context, actor identity.Identity, commentID string) error {
	if !actor.Valid() {
		return identity.ErrNotAuthenticated
	}
	c, err := u.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorEmail != actor.Email {
		return domain.ErrNotAuthorized
	}
	return u.comments.Delete(ctx, c)
}

// Summarize returns the sentiment breakdown of an approval's thread,
// cached in redis keyed on approval id plus a fingerprint of the comment
// set. Any change to the comments moves the key, which is the
// invalidation predicate; abandoned keys age out via TTL.
func (u *Usecase) Summarize(ctx context.Context, actor identity.Identity, approvalID string) (*ai.Summary, error) {
	if !actor.Valid() {
		return nil, identity.ErrNotAuthenticated
	}
	a, err := u.loadApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if !a.IsRequester(actor.Email) && !a.IsApprover(actor.Email) {
		return nil, domain.ErrNotAuthorized
	}
	if u.summarizer == nil || !u.summarizer.IsConfigured() {
		return nil, fmt.Errorf("%w: sentiment service unavailable", domain.ErrUpstream)
	}

	comments, err := u.comments.ListByApproval(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(comments))
	for _, c := range comments {
		texts = append(texts, c.AuthorName+": "+c.Text)
	}

	key := summaryKey(approvalID, comments)
	if u.rdb != nil {
		if cached, err := u.rdb.Get(ctx, key).Bytes(); err == nil {
			var s ai.Summary
			if json.Unmarshal(cached, &s) == nil {
				return &s, nil
			}
		}
	}

	s, err := u.summarizer.Summarize(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: summarize: %v", domain.ErrUpstream, err)
	}
	if u.rdb != nil {
		payload, _ := json.Marshal(s)
		if err := u.rdb.Set(ctx, key, payload, u.summaryTTL).Err(); err != nil {
			log.Printf("summary cache: set %s: %v", key, err)
		}
	}
	return s, nil
}

func summaryKey(approvalID string, comments []domain.Comment) string {
	h := sha256.New()
	for _, c := range comments {
		h.Write([]byte(c.CommentID))
		h.Write([]byte{0})
		h.Write([]byte(c.Text))
		h.Write([]byte{0})
	}
	return "sentiment:" + approvalID + ":" + hex.EncodeToString(h.Sum(nil))
}

func (u *Usecase) loadApproval(ctx context.Context, approvalID string) (*domain.Approval, error) {
	a, err := u.approvals.GetByApprovalID(ctx, approvalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (u *Usecase) loadComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	c, err := u.comments.GetByCommentID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func toDTO(c *domain.Comment, approvalID string) *CommentDTO {
	return &CommentDTO{
		CommentID:   c.CommentID,
		ApprovalID:  approvalID,
		AuthorEmail: c.AuthorEmail,
		AuthorName:  c.AuthorName,
		Text:        c.Text,
		CreatedAt:   c.CreatedAt,
	}
}
