package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Payphone-Digital/authflow/config"
	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/internal/dto"
	apperrors "github.com/Payphone-Digital/authflow/internal/errors"
	"github.com/Payphone-Digital/authflow/pkg/validation"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCookieWriter(t *testing.T) {
	w := NewCookieWriter(config.CookieConfig{
		Domain:     "example.com",
		Secure:     true,
		AccessTTL:  time.Hour,
		RefreshTTL: 48 * time.Hour,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	w.SetTokens(c, &dto.TokenPair{AccessToken: "a", RefreshToken: "r"})

	got := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		got[ck.Name] = ck
	}
	access, refresh := got[constants.CookieAccessToken], got[constants.CookieRefreshToken]
	if access == nil || refresh == nil {
		t.Fatalf("cookies = %v", got)
	}
	if access.Value != "a" || access.MaxAge != 3600 || !access.HttpOnly || !access.Secure || access.Domain != "example.com" {
		t.Errorf("access cookie = %+v", access)
	}
	if refresh.MaxAge != 48*3600 || refresh.SameSite != http.SameSiteLaxMode {
		t.Errorf("refresh cookie = %+v", refresh)
	}

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	w.Clear(c)
	for _, ck := range rec.Result().Cookies() {
		if ck.Value != "" || ck.MaxAge >= 0 {
			t.Errorf("cleared cookie = %+v", ck)
		}
	}
	if n := len(rec.Result().Cookies()); n != 2 {
		t.Errorf("cleared %d cookies, want 2", n)
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"domain error", apperrors.ErrUserNotFound, http.StatusNotFound, apperrors.ErrUserNotFound.Message},
		{"wrapped internal", apperrors.WrapError(apperrors.ErrInternal, errors.New("pq: boom")), http.StatusInternalServerError, constants.MsgInternalError},
		{"unavailable", apperrors.WrapError(apperrors.ErrServiceUnavailable, errors.New("smtp")), http.StatusServiceUnavailable, constants.MsgServiceUnavailable},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, constants.MsgInternalError},
		{"field errors", validation.Errors{"email": {"taken"}}, http.StatusUnprocessableEntity, constants.MsgValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c.Request.Context(), c, tt.err)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["message"] != tt.message {
				t.Errorf("message = %v, want %q", body["message"], tt.message)
			}
		})
	}
}
