package approval

import (
	"time"

	domain "approveit-backend/internal/domain/approval"
)

type ApproverInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AttachmentInput entries retained from a previous edit carry their
// AttachmentID; brand-new uploads carry none.
type AttachmentInput struct {
	AttachmentID string `json:"attachment_id,omitempty"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
	StorageKey   string `json:"storage_key"`
}

type MeetingInput struct {
	Topic           string    `json:"topic"`
	StartAt         time.Time `json:"start_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

type CreateInput struct {
	Name        string
	Description string
	Priority    domain.Priority
	DueAt       time.Time
	Approvers   []ApproverInput
	Attachments []AttachmentInput
	Meeting     *MeetingInput
}

type UpdateInput struct {
	ApprovalID  string
	Name        string
	Description string
	Priority    domain.Priority
	DueAt       time.Time
	Approvers   []ApproverInput
	Attachments []AttachmentInput
	// Meeting nil means drop any scheduled meeting.
	Meeting *MeetingInput
}

type ApproverDTO struct {
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Decision  *string    `json:"decision"` // "approved" | "declined" | null
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

type AttachmentDTO struct {
	AttachmentID string `json:"attachment_id"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

type CommentDTO struct {
	CommentID   string    `json:"comment_id"`
	AuthorEmail string    `json:"author_email"`
	AuthorName  string    `json:"author_name"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

type EventDTO struct {
	Type      string    `json:"type"`
	ActorName string    `json:"actor_name"`
	Date      time.Time `json:"date"`
}

type MeetingDTO struct {
	Topic           string    `json:"topic"`
	StartAt         time.Time `json:"start_at"`
	DurationMinutes int       `json:"duration_minutes"`
	ProviderID      string    `json:"provider_id"`
	JoinURL         string    `json:"join_url"`
}

type ApprovalDTO struct {
	ApprovalID     string          `json:"approval_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Priority       string          `json:"priority"`
	Status         string          `json:"status"`
	Expired        bool            `json:"expired"`
	DueAt          time.Time       `json:"due_at"`
	RequesterEmail string          `json:"requester_email"`
	RequesterName  string          `json:"requester_name"`
	Approvers      []ApproverDTO   `json:"approvers"`
	Attachments    []AttachmentDTO `json:"attachments"`
	Comments       []CommentDTO    `json:"comments"`
	Events         []EventDTO      `json:"events"`
	Meeting        *MeetingDTO     `json:"meeting,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toDTO(a *domain.Approval) *ApprovalDTO {
	dto := &ApprovalDTO{
		ApprovalID:     a.ApprovalID,
		Name:           a.Name,
		Description:    a.Description,
		Priority:       string(a.Priority),
		Status:         string(a.Status),
		Expired:        a.Expired,
		DueAt:          a.DueAt,
		RequesterEmail: a.RequesterEmail,
		RequesterName:  a.RequesterName,
		Approvers:      make([]ApproverDTO, 0, len(a.Approvers)),
		Attachments:    make([]AttachmentDTO, 0, len(a.Attachments)),
		Comments:       make([]CommentDTO, 0, len(a.Comments)),
		Events:         make([]EventDTO, 0, len(a.Events)),
		CreatedAt:      a.CreatedAt,
	}
	for _, ap := range a.Approvers {
		var decision *string
		if ap.Decision != nil {
			d := "declined"
			if *ap.Decision {
				d = "approved"
			}
			decision = &d
		}
		dto.Approvers = append(dto.Approvers, ApproverDTO{
			Email:     ap.Email,
			Name:      ap.Name,
			Decision:  decision,
			DecidedAt: ap.DecidedAt,
		})
	}
	for _, at := range a.Attachments {
		dto.Attachments = append(dto.Attachments, AttachmentDTO{
			AttachmentID: at.AttachmentID,
			Name:         at.Name,
			Size:         at.Size,
			URL:          at.URL,
		})
	}
	for _, cm := range a.Comments {
		dto.Comments = append(dto.Comments, CommentDTO{
			CommentID:   cm.CommentID,
			AuthorEmail: cm.AuthorEmail,
			AuthorName:  cm.AuthorName,
			Text:        cm.Text,
			CreatedAt:   cm.CreatedAt,
		})
	}
	for _, ev := range a.Events {
		dto.Events = append(dto.Events, EventDTO{
			Type:      string(ev.Type),
			ActorName: ev.ActorName,
			Date:      ev.Date,
		})
	}
	if a.Meeting != nil {
		dto.Meeting = &MeetingDTO{
			Topic:           a.Meeting.Topic,
			StartAt:         a.Meeting.StartAt,
			DurationMinutes: a.Meeting.DurationMinutes,
			ProviderID:      a.Meeting.ProviderID,
			JoinURL:         a.Meeting.JoinURL,
		}
	}
	return dto
}
