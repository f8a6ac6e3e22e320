package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/internal/dto"
	apperrors "github.com/Payphone-Digital/authflow/internal/errors"
	"github.com/Payphone-Digital/authflow/internal/service"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/gin-gonic/gin"
)

type VerificationHandler struct {
	verification *service.VerificationService
	frontendURL  string
}

func NewVerificationHandler(verification *service.VerificationService, frontendURL string) *VerificationHandler {
	return &VerificationHandler{verification: verification, frontendURL: frontendURL}
}

// Verify handles GET /auth/email/verify/:id/:hash and always redirects the
// browser back to the SPA.
func (h *VerificationHandler) Verify(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VerifyEmail")

	res := h.verification.Verify(ctx,
		c.Param("id"),
		c.Param("hash"),
		c.Query("expires"),
		c.Query("signature"),
	)

	q := url.Values{}
	q.Set("success", strconv.FormatBool(res.Success))
	q.Set("message", res.Message)
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/verify-email?"+q.Encode())
}

// Resend handles POST /auth/verify_resend
func (h *VerificationHandler) Resend(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ResendVerification")

	var req dto.EmailRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	err := h.verification.Resend(ctx, req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgVerificationLinkSent))
	case errors.Is(err, apperrors.ErrAlreadyVerified):
		c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgEmailAlreadyVerified))
	case errors.Is(err, apperrors.ErrUserNotFound):
		c.JSON(http.StatusNotFound, constants.BuildErrorResponse(constants.MsgUserNotFound, nil))
	default:
		respondError(ctx, c, err)
	}
}
