package service

import (
	"context"
	"time"

	"github.com/Payphone-Digital/authflow/pkg/circuit"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/mail"
	"github.com/Payphone-Digital/authflow/pkg/metrics"
)

const (
	BreakerMail   = "mail"
	BreakerEvents = "events"

	dispatchTimeout = 10 * time.Second
)

type mailRenderer interface {
	Render(name, to string, data map[string]any) (mail.Message, error)
}

// EventPublisher is satisfied by queue.Client.
type EventPublisher interface {
	PublishEvent(ctx context.Context, name string, payload any) error
}

// DispatchNotifier renders mail templates and hands them to a mail.Sender.
// Each downstream sits behind its own breaker so a dead relay fails fast
// instead of stalling requests.
type DispatchNotifier struct {
	renderer mailRenderer
	sender   mail.Sender
	events   EventPublisher
	breakers *circuit.Registry
	timeout  time.Duration
}

// NewDispatchNotifier builds a notifier. events may be nil, in which case
// domain events are dropped.
func NewDispatchNotifier(renderer mailRenderer, sender mail.Sender, events EventPublisher, breakers *circuit.Registry) *DispatchNotifier {
	return &DispatchNotifier{
		renderer: renderer,
		sender:   sender,
		events:   events,
		breakers: breakers,
		timeout:  dispatchTimeout,
	}
}

// SendMail is detached from the request context: a client disconnecting
// must not abort a half-sent mail.
func (n *DispatchNotifier) SendMail(ctx context.Context, template, to string, data map[string]any) error {
	ctx = ctxutil.WithFunction(ctx, "notifier", "SendMail")

	msg, err := n.renderer.Render(template, to, data)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to render mail").
			String("template", template).
			Err(err).
			Log()
		return err
	}

	dctx, cancel := context.WithTimeout(ctxutil.Detach(ctx), n.timeout)
	defer cancel()

	err = n.breakers.Get(BreakerMail).Execute(dctx, func(ctx context.Context) error {
		return n.sender.Send(ctx, msg)
	})
	metrics.Notification("mail", err)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to send mail").
			String("template", template).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "Mail dispatched").
		String("template", template).
		Log()
	return nil
}

// PublishEvent is best effort; failures are logged only.
func (n *DispatchNotifier) PublishEvent(ctx context.Context, name string, payload map[string]any) {
	if n.events == nil {
		return
	}
	ctx = ctxutil.WithFunction(ctx, "notifier", "PublishEvent")

	dctx, cancel := context.WithTimeout(ctxutil.Detach(ctx), n.timeout)
	defer cancel()

	err := n.breakers.Get(BreakerEvents).Execute(dctx, func(ctx context.Context) error {
		return n.events.PublishEvent(ctx, name, payload)
	})
	metrics.Notification("event", err)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to publish event").
			String("event", name).
			Err(err).
			Log()
	}
}
