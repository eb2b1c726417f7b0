package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "mybudget/internal/errors"
	"mybudget/internal/logger"
	"mybudget/internal/middleware"
	"mybudget/internal/services"
	"mybudget/internal/uuid"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details []apperrors.FieldError `json:"details,omitempty"`
	} `json:"error"`
}

// parseIDParam reads a UUID path parameter and returns it in canonical form.
func parseIDParam(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.Field(param, "must be a valid id")
	}
	return id, nil
}

// bindJSON binds the request body into req, turning binding failures into
// field-level validation errors.
func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperrors.FromBinding(err)
	}
	return nil
}

// bindQuery is bindJSON for query strings.
func bindQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return apperrors.FromBinding(err)
	}
	return nil
}

// recordAudit stores an audit entry for a mutating request.
func recordAudit(c *gin.Context, svc services.AuditServicer, action, resourceType, resourceID string, changes any) {
	svc.Record(c.Request.Context(), services.AuditEvent{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    c.ClientIP(),
		RequestID:    middleware.RequestID(c),
		Changes:      changes,
	})
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, message and details.
// Otherwise it logs the unexpected error and returns a generic internal error.
func respondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", middleware.RequestID(c),
		)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
			"request_id", middleware.RequestID(c),
		)
	}

	c.JSON(appErr.StatusCode, middleware.ErrorBody(appErr))
}
