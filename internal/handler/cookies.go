package handler

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/authflow/config"
	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/internal/dto"
	"github.com/gin-gonic/gin"
)

// CookieWriter moves token pairs to and from HttpOnly cookies so the
// services never see the transport.
type CookieWriter struct {
	cfg config.CookieConfig
}

func NewCookieWriter(cfg config.CookieConfig) *CookieWriter {
	return &CookieWriter{cfg: cfg}
}

func (w *CookieWriter) set(c *gin.Context, name, value string, maxAge time.Duration) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   w.cfg.Domain,
		Secure:   w.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		cookie.MaxAge = int(maxAge / time.Second)
		cookie.Expires = time.Now().Add(maxAge)
	} else {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	}
	http.SetCookie(c.Writer, cookie)
}

// SetTokens writes both cookies. Cookie lifetime comes from config and is
// independent of token expiry; an expired token in a live cookie is
// rejected by the server.
func (w *CookieWriter) SetTokens(c *gin.Context, pair *dto.TokenPair) {
	w.set(c, constants.CookieAccessToken, pair.AccessToken, w.cfg.AccessTTL)
	w.set(c, constants.CookieRefreshToken, pair.RefreshToken, w.cfg.RefreshTTL)
}

func (w *CookieWriter) Clear(c *gin.Context) {
	w.set(c, constants.CookieAccessToken, "", 0)
	w.set(c, constants.CookieRefreshToken, "", 0)
}

func refreshCookie(c *gin.Context) string {
	v, err := c.Cookie(constants.CookieRefreshToken)
	if err != nil {
		return ""
	}
	return v
}
