package handler

import (
	"errors"
	"net/http"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/internal/dto"
	apperrors "github.com/Payphone-Digital/authflow/internal/errors"
	"github.com/Payphone-Digital/authflow/internal/service"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/gin-gonic/gin"
)

type PasswordHandler struct {
	resets *service.PasswordResetService
}

func NewPasswordHandler(resets *service.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

// Forgot handles POST /auth/forgot-password
func (h *PasswordHandler) Forgot(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ForgotPassword")

	var req dto.EmailRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	err := h.resets.RequestReset(ctx, req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgResetLinkSent))
	case errors.Is(err, apperrors.ErrUserNotFound):
		c.JSON(http.StatusNotFound, constants.BuildErrorResponse(constants.MsgUserNotFound, nil))
	default:
		respondError(ctx, c, err)
	}
}

// Reset handles POST /auth/reset-password
func (h *PasswordHandler) Reset(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ResetPassword")

	var req dto.ResetPasswordRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	err := h.resets.ResetPassword(ctx, req.Email, req.Token, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgPasswordReset))
	case errors.Is(err, apperrors.ErrInvalidOrExpiredToken):
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgInvalidResetToken, nil))
	case errors.Is(err, apperrors.ErrUserNotFound):
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgUserNotFound, nil))
	default:
		respondError(ctx, c, err)
	}
}

// VerifyToken handles POST /auth/verify-reset-token
func (h *PasswordHandler) VerifyToken(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VerifyResetToken")

	var req dto.TokenRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	email, err := h.resets.VerifyResetToken(ctx, req.Token)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.VerifyTokenResponse{Valid: true, Email: email, Message: constants.MsgResetTokenValid})
	case errors.Is(err, apperrors.ErrInvalidOrExpiredToken):
		c.JSON(http.StatusNotFound, dto.VerifyTokenResponse{Valid: false, Message: constants.MsgInvalidResetToken})
	default:
		respondError(ctx, c, err)
	}
}

// FindEmail handles POST /auth/find-email-by-token
func (h *PasswordHandler) FindEmail(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "FindEmailByToken")

	var req dto.TokenRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	email, err := h.resets.FindEmailByToken(ctx, req.Token)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.FindEmailResponse{Email: &email, Message: constants.MsgEmailFound})
	case errors.Is(err, apperrors.ErrInvalidOrExpiredToken):
		c.JSON(http.StatusNotFound, dto.FindEmailResponse{Message: constants.MsgInvalidResetToken})
	default:
		respondError(ctx, c, err)
	}
}
