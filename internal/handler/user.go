package handler

import (
	"errors"
	"net/http"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/internal/dto"
	apperrors "github.com/Payphone-Digital/authflow/internal/errors"
	"github.com/Payphone-Digital/authflow/internal/middleware"
	"github.com/Payphone-Digital/authflow/internal/service"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/Payphone-Digital/authflow/pkg/validation"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func currentUser(c *gin.Context) (uint, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
	}
	return id, ok
}

// Me handles GET /me
func (h *UserHandler) Me(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Me")
	id, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.userService.Me(ctx, id)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, constants.BuildUserResponse("", user))
}

// UpdateProfile handles POST /profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateProfile")
	id, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(ctx, id, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, constants.BuildUserResponse(constants.MsgProfileUpdated, user))
}

// ChangePassword handles PUT /profile/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ChangePassword")
	id, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	err := h.userService.ChangePassword(ctx, id, &req)
	switch {
	case err == nil:
	// A 401 here would read as an expired session to the SPA
	case errors.Is(err, apperrors.ErrIncorrectPassword):
		respondError(ctx, c, validation.Errors{"current_password": {apperrors.ErrIncorrectPassword.Message}})
		return
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		respondError(ctx, c, validation.Errors{"new_password_confirmation": {apperrors.ErrPasswordMismatch.Message}})
		return
	default:
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgPasswordChanged))
}
