package notification

import (
	"context"

	"fitbook/internal/client"
	"fitbook/internal/email"
	"fitbook/internal/logger"
)

// Channel delivers one rendered message to one recipient. Failures are the
// channel's own; the dispatcher keeps the other channels going.
type Channel interface {
	Name() string
	Send(ctx context.Context, to client.Client, msg Message) error
}

type EmailChannel struct {
	svc *email.Service
}

func NewEmailChannel(svc *email.Service) *EmailChannel {
	return &EmailChannel{svc: svc}
}

func (ch *EmailChannel) Name() string { return "email" }

func (ch *EmailChannel) Send(ctx context.Context, to client.Client, msg Message) error {
	return ch.svc.Send(ctx, to.Email, to.Name, msg.Subject, msg.Full)
}

// SMSSender is the external SMS gateway boundary.
type SMSSender func(ctx context.Context, phone, text string) error

type SMSChannel struct {
	send SMSSender
}

// NewSMSChannel defaults to a log-only sender until a gateway is configured.
func NewSMSChannel(send SMSSender) *SMSChannel {
	if send == nil {
		send = func(_ context.Context, phone, text string) error {
			logger.Info("SMS delivery requested", "phone", phone, "text", text)
			return nil
		}
	}
	return &SMSChannel{send: send}
}

func (ch *SMSChannel) Name() string { return "sms" }

func (ch *SMSChannel) Send(ctx context.Context, to client.Client, msg Message) error {
	return ch.send(ctx, to.Phone, msg.Short)
}
