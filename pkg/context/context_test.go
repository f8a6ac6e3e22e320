package ctxutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewContextWithRequest(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.Header.Set("User-Agent", "spa/1.0")
	req.Header.Set("X-Request-ID", "req-123")

	ctx := NewContextWithRequest(context.Background(), req, "handler", "Login")

	if GetModule(ctx) != "handler" || GetFunction(ctx) != "Login" {
		t.Errorf("unexpected module/function: %s/%s", GetModule(ctx), GetFunction(ctx))
	}
	if GetUserAgent(ctx) != "spa/1.0" {
		t.Errorf("GetUserAgent() = %q", GetUserAgent(ctx))
	}
	if GetRequestID(ctx) != "req-123" {
		t.Errorf("GetRequestID() = %q", GetRequestID(ctx))
	}
	if GetStartTime(ctx).IsZero() {
		t.Error("expected start time to be set")
	}
}

func TestNewContextWithRequestKeepsExistingValues(t *testing.T) {
	start := time.Now().Add(-time.Second)
	ctx := WithRequestID(context.Background(), "from-middleware")
	ctx = context.WithValue(ctx, StartTimeKey, start)

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("X-Request-ID", "from-header")

	ctx = NewContextWithRequest(ctx, req, "handler", "Me")
	if GetRequestID(ctx) != "from-middleware" {
		t.Errorf("request id overwritten: %q", GetRequestID(ctx))
	}
	if !GetStartTime(ctx).Equal(start) {
		t.Error("start time overwritten")
	}
	if GetDuration(ctx) < time.Second {
		t.Errorf("GetDuration() = %s", GetDuration(ctx))
	}
}

func TestDetachSurvivesCancel(t *testing.T) {
	parent, cancel := context.WithCancel(WithUserID(context.Background(), 7))
	detached := Detach(parent)
	cancel()

	if detached.Err() != nil {
		t.Errorf("detached context cancelled: %v", detached.Err())
	}
	if id, ok := GetUserID(detached); !ok || id != 7 {
		t.Errorf("GetUserID() = %d, %v", id, ok)
	}
}
