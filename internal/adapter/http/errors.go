package http

import (
	"errors"
	"net/http"

	approvalDomain "approveit-backend/internal/domain/approval"
	"approveit-backend/internal/domain/identity"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// writeError maps domain errors onto HTTP status + stable error kinds.
// The primary mutation either fully succeeds or fully fails: there is no
// partially-succeeded response shape.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, identity.ErrNotAuthenticated):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not_authenticated"})
	case errors.Is(err, approvalDomain.ErrNotAnApprover):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "not_an_approver"})
	case errors.Is(err, approvalDomain.ErrNotAuthorized):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "not_authorized"})
	case errors.Is(err, approvalDomain.ErrSelfApproval):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "self_approval_not_allowed"})
	case errors.Is(err, approvalDomain.ErrNoApprovers),
		errors.Is(err, approvalDomain.ErrDuplicateApprover),
		errors.Is(err, approvalDomain.ErrTooManyAttachments),
		errors.Is(err, approvalDomain.ErrAttachmentTooLarge):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Details: []FieldError{{Field: "_", Message: err.Error()}},
		})
	case errors.Is(err, approvalDomain.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found"})
	case errors.Is(err, approvalDomain.ErrUpstream):
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "upstream_error"})
	case errors.Is(err, approvalDomain.ErrPartialFailure):
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "partial_failure"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
}
