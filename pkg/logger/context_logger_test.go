package logger

import (
	"context"
	"errors"
	"testing"

	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextLoggerAttachesRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	ctx := ctxutil.WithRequestID(context.Background(), "req-1")
	ctx = ctxutil.WithUserID(ctx, 42)
	ctx = ctxutil.WithFunction(ctx, "service", "Login")

	InfoWithContext(ctx, "User logged in").
		String("email", "a@x.com").
		Err(errors.New("smtp timeout")).
		Log()
	DebugWithContext(ctx, "below level").Log()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["request_id"] != "req-1" {
		t.Errorf("request_id = %v", fields["request_id"])
	}
	if fields["user_id"] != uint64(42) {
		t.Errorf("user_id = %v (%T)", fields["user_id"], fields["user_id"])
	}
	if fields["function"] != "Login" || fields["module"] != "service" {
		t.Errorf("module/function = %v/%v", fields["module"], fields["function"])
	}
	if fields["email"] != "a@x.com" {
		t.Errorf("email = %v", fields["email"])
	}
}

func TestContextLoggerNilContext(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	WarnWithContext(nil, "no context").Int("attempt", 2).Log()

	if logs.FilterMessage("no context").Len() != 1 {
		t.Fatal("expected entry to be written without context")
	}
}
