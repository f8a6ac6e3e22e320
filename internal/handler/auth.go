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
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/validation"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	cookies     *CookieWriter
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService, cookies *CookieWriter) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cookies:     cookies,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Register")

	var req dto.RegisterRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	user, err := h.userService.Register(ctx, &req)
	if err != nil {
		if _, ok := validation.FieldErrors(err); !ok && apperrors.ToHTTPStatus(err) >= http.StatusInternalServerError {
			logger.ErrorWithContext(ctx, "Registration failed").
				Err(err).
				Log()
			c.JSON(http.StatusInternalServerError, constants.BuildErrorResponse(constants.MsgRegistrationFailed, nil))
			return
		}
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildUserResponse(constants.MsgRegistered, user))
}

// Login handles POST /auth/login. Tokens travel only in cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Login")

	var req dto.LoginRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	pair, user, err := h.authService.Login(ctx, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, constants.BuildAuthErrorResponse(constants.MsgUnauthorized))
		return
	case errors.Is(err, apperrors.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, constants.BuildErrorResponse(constants.MsgEmailNotVerified, nil))
		return
	case errors.Is(err, apperrors.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, constants.BuildAuthErrorResponse(constants.MsgAccountDeactivated))
		return
	default:
		respondError(ctx, c, err)
		return
	}

	h.cookies.SetTokens(c, pair)
	c.JSON(http.StatusOK, constants.BuildUserResponse("", user))
}

// Refresh handles POST /auth/refresh using the refresh_token cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Refresh")

	token := refreshCookie(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, constants.BuildAuthErrorResponse(constants.MsgRefreshTokenNotFound))
		return
	}

	pair, err := h.authService.Refresh(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrTokenNotFound), errors.Is(err, apperrors.ErrTokenExpired):
		h.cookies.Clear(c)
		c.JSON(http.StatusUnauthorized, constants.BuildAuthErrorResponse(constants.MsgRefreshTokenInvalid))
		return
	case errors.Is(err, apperrors.ErrUserNotFound):
		h.cookies.Clear(c)
		c.JSON(http.StatusNotFound, constants.BuildAuthErrorResponse(constants.MsgUserNotFound))
		return
	case errors.Is(err, apperrors.ErrAccountDisabled):
		h.cookies.Clear(c)
		c.JSON(http.StatusForbidden, constants.BuildAuthErrorResponse(constants.MsgAccountDeactivated))
		return
	default:
		respondError(ctx, c, err)
		return
	}

	h.cookies.SetTokens(c, pair)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgTokenRefreshed))
}

// Logout always succeeds and always clears both cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Logout")

	h.authService.Logout(ctx, refreshCookie(c), middleware.AccessToken(c))
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgLoggedOut))
}
