package mysql

import (
	"context"
	"errors"
	"testing"

	approvalDomain "approveit-backend/internal/domain/approval"

	"gorm.io/gorm"
)

func TestComment_CRUD(t *testing.T) {
	db := openTestDB(t)
	approvals := NewApprovalRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	a := makeApproval("11111111111111111111111111111111", "req@x.com")
	if err := approvals.Create(ctx, a); err != nil {
		t.Fatalf("create approval: %v", err)
	}

	c := &approvalDomain.Comment{
		CommentID:   "cccccccccccccccccccccccccccccccc",
		ApprovalRef: a.ID,
		AuthorEmail: "a@x.com",
		AuthorName:  "Alice",
		Text:        "first",
	}
	if err := comments.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := comments.GetByCommentID(ctx, c.CommentID)
	if err != nil {
		t.Fatalf("GetByCommentID: %v", err)
	}
	if got.Text != "first" || got.AuthorEmail != "a@x.com" {
		t.Errorf("unexpected row: %+v", got)
	}

	got.Text = "edited"
	if err := comments.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}

	list, err := comments.ListByApproval(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListByApproval: %v", err)
	}
	if len(list) != 1 || list[0].Text != "edited" {
		t.Errorf("list = %+v", list)
	}

	if err := comments.Delete(ctx, got); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := comments.GetByCommentID(ctx, c.CommentID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("comment survived delete: %v", err)
	}
}

func TestComment_ListOrdering(t *testing.T) {
	db := openTestDB(t)
	approvals := NewApprovalRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	a := makeApproval("11111111111111111111111111111111", "req@x.com")
	if err := approvals.Create(ctx, a); err != nil {
		t.Fatalf("create approval: %v", err)
	}

	for i, text := range []string{"one", "two", "three"} {
		c := &approvalDomain.Comment{
			CommentID:   []string{"c1", "c2", "c3"}[i],
			ApprovalRef: a.ID,
			AuthorEmail: "a@x.com",
			AuthorName:  "Alice",
			Text:        text,
		}
		if err := comments.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := comments.ListByApproval(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListByApproval: %v", err)
	}
	if len(list) != 3 || list[0].Text != "one" || list[2].Text != "three" {
		t.Errorf("list out of order: %+v", list)
	}
}
