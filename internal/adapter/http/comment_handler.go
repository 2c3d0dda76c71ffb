package http

import (
	"net/http"

	"approveit-backend/internal/adapter/middleware"
	"approveit-backend/internal/domain/identity"
	uc "approveit-backend/internal/usecase/comment"

	"github.com/labstack/echo/v4"
)

type CommentHandler struct{ uc *uc.Usecase }

func NewCommentHandler(u *uc.Usecase) *CommentHandler { return &CommentHandler{uc: u} }

type commentReq struct {
	Text string `json:"text" validate:"required"`
}

func (h *CommentHandler) Add(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Add(c.Request().Context(), actor, c.Param("approval_id"), req.Text)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *CommentHandler) Edit(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Edit(c.Request().Context(), actor, c.Param("approval_id"), c.Param("comment_id"), req.Text)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *CommentHandler) Delete(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	if err := h.uc.Delete(c.Request().Context(), actor, c.Param("comment_id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Summary returns the AI sentiment breakdown of the discussion thread.
func (h *CommentHandler) Summary(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return writeError(c, identity.ErrNotAuthenticated)
	}
	s, err := h.uc.Summarize(c.Request().Context(), actor, c.Param("approval_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
