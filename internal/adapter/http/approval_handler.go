package http

import (
	"net/http"
	"strconv"
	"time"

	"approveit-backend/internal/adapter/middleware"
	domain "approveit-backend/internal/domain/approval"
	"approveit-backend/internal/domain/identity"
	uc "approveit-backend/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *uc.Usecase }

func NewApprovalHandler(u *uc.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: u} }

type approverReq struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"  validate:"required"`
}

type attachmentReq struct {
	AttachmentID string `json:"attachment_id" validate:"omitempty,hex32"`
	Name         string `json:"name"          validate:"required"`
	Size         int64  `json:"size"          validate:"gte=0"`
	URL          string `json:"url"           validate:"required,url"`
	StorageKey   string `json:"storage_key"   validate:"required"`
}

type meetingReq struct {
	Topic           string    `json:"topic"            validate:"required"`
	StartAt         time.Time `json:"start_at"         validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"gte=15,lte=480"`
}

type approvalReq struct {
	Name        string          `json:"name"        validate:"required"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"    validate:"required,oneof=low medium high"`
	DueAt       time.Time       `json:"due_at"      validate:"required"`
	Approvers   []approverReq   `json:"approvers"   validate:"required,min=1,dive"`
	Attachments []attachmentReq `json:"attachments" validate:"max=5,dive"`
	Meeting     *meetingReq     `json:"meeting"`
}

func (h *ApprovalHandler) Create(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	var req approvalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Create(c.Request().Context(), actor, uc.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueAt:       req.DueAt,
		Approvers:   mapApproverReqs(req.Approvers),
		Attachments: mapAttachmentReqs(req.Attachments),
		Meeting:     mapMeetingReq(req.Meeting),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApprovalHandler) Get(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	dto, err := h.uc.Get(c.Request().Context(), actor, c.Param("approval_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// List serves both boxes: ?box=incoming for approvals awaiting the
// caller's decision, anything else for the caller's own requests.
func (h *ApprovalHandler) List(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	var (
		dtos []uc.ApprovalDTO
		err  error
	)
	if c.QueryParam("box") == "incoming" {
		dtos, err = h.uc.ListIncoming(c.Request().Context(), actor)
	} else {
		dtos, err = h.uc.ListOutgoing(c.Request().Context(), actor)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *ApprovalHandler) Update(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	var req approvalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Update(c.Request().Context(), actor, uc.UpdateInput{
		ApprovalID:  c.Param("approval_id"),
		Name:        req.Name,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueAt:       req.DueAt,
		Approvers:   mapApproverReqs(req.Approvers),
		Attachments: mapAttachmentReqs(req.Attachments),
		Meeting:     mapMeetingReq(req.Meeting),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) Delete(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	if err := h.uc.Delete(c.Request().Context(), actor, c.Param("approval_id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ApprovalHandler) Approve(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	dto, err := h.uc.Approve(c.Request().Context(), actor, c.Param("approval_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) Deny(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	dto, err := h.uc.Deny(c.Request().Context(), actor, c.Param("approval_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// View records one "viewed" audit event. The client calls this once per
// viewing session; the recorder appends whatever arrives.
func (h *ApprovalHandler) View(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	if err := h.uc.RecordView(c.Request().Context(), actor, c.Param("approval_id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ApprovalHandler) Search(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing q query param"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	incoming := c.QueryParam("box") == "incoming"

	dtos, err := h.uc.Search(c.Request().Context(), actor, q, incoming, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

// ---- request mapping ----

func mapApproverReqs(in []approverReq) []uc.ApproverInput {
	out := make([]uc.ApproverInput, 0, len(in))
	for _, a := range in {
		out = append(out, uc.ApproverInput{Email: a.Email, Name: a.Name})
	}
	return out
}

func mapAttachmentReqs(in []attachmentReq) []uc.AttachmentInput {
	out := make([]uc.AttachmentInput, 0, len(in))
	for _, a := range in {
		out = append(out, uc.AttachmentInput{
			AttachmentID: a.AttachmentID,
			Name:         a.Name,
			Size:         a.Size,
			URL:          a.URL,
			StorageKey:   a.StorageKey,
		})
	}
	return out
}

func mapMeetingReq(in *meetingReq) *uc.MeetingInput {
	if in == nil {
		return nil
	}
	return &uc.MeetingInput{
		Topic:           in.Topic,
		StartAt:         in.StartAt,
		DurationMinutes: in.DurationMinutes,
	}
}
