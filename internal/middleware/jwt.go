package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/internal/service"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/gin-gonic/gin"
)

type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*service.AccessClaims, error)
}

type JWTMiddleware struct {
	auth authenticator
}

func NewJWTMiddleware(auth authenticator) *JWTMiddleware {
	return &JWTMiddleware{auth: auth}
}

// AccessToken reads the access token from the cookie, falling back to a
// Bearer header for non-browser clients.
func AccessToken(c *gin.Context) string {
	if v, err := c.Cookie(constants.CookieAccessToken); err == nil && v != "" {
		return v
	}
	header := c.GetHeader(constants.HeaderAuthorization)
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAuth rejects the request unless it carries a valid, unrevoked
// access token.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token := AccessToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
			return
		}

		claims, err := m.auth.Authenticate(ctx, token)
		if err != nil {
			logger.WarnWithContext(ctx, "Access token rejected").
				String("path", c.Request.URL.Path).
				Err(err).
				Log()
			c.AbortWithStatusJSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
			return
		}

		c.Set(constants.GinKeyUserID, claims.UserID)
		c.Set(constants.GinKeyEmail, claims.Email)
		c.Set(constants.GinKeyClaims, claims)
		c.Request = c.Request.WithContext(ctxutil.WithUserID(ctx, claims.UserID))

		c.Next()
	}
}

// UserID returns the authenticated user set by RequireAuth.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(constants.GinKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
