package kafka

import (
	"context"

	"github.com/NordCoder/Inkwell/internal/domain/event"
)

type UserEventsKafka struct {
	p *Producer
}

func NewUserEventsKafka(p *Producer) *UserEventsKafka { return &UserEventsKafka{p: p} }

var _ event.UserEvents = (*UserEventsKafka)(nil)

func (e *UserEventsKafka) PublishVerificationEmail(ctx context.Context, ev event.VerificationEmail) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(ev.UserID), ev)
}
