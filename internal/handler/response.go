package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Payphone-Digital/authflow/internal/constants"
	apperrors "github.com/Payphone-Digital/authflow/internal/errors"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/validation"
	"github.com/gin-gonic/gin"
)

// bindJSON binds the body into req and writes the 422/400 response on
// failure. It reports whether the handler should continue.
func bindJSON(ctx context.Context, c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	if fieldErrs, ok := validation.FieldErrors(err); ok {
		c.JSON(http.StatusUnprocessableEntity, constants.BuildValidationResponse(fieldErrs))
		return false
	}

	msg := constants.MsgBadRequest
	if errors.Is(err, io.EOF) {
		msg = "Request body is required"
	}
	logger.WarnWithContext(ctx, "Malformed request body").
		Err(err).
		Log()
	c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(msg, nil))
	return false
}

// respondError maps service errors onto the {message} body. Field errors
// become 422 and unexpected errors a bare 500.
func respondError(ctx context.Context, c *gin.Context, err error) {
	if fieldErrs, ok := validation.FieldErrors(err); ok {
		c.JSON(http.StatusUnprocessableEntity, constants.BuildValidationResponse(fieldErrs))
		return
	}

	status := apperrors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorWithContext(ctx, "Request failed").
			Int("status_code", status).
			Err(err).
			Log()
		msg := constants.MsgInternalError
		if status == http.StatusServiceUnavailable {
			msg = constants.MsgServiceUnavailable
		}
		c.JSON(status, constants.BuildErrorResponse(msg, nil))
		return
	}

	c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
}
