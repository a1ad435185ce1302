package notifier

import (
	"context"

	"github.com/NordCoder/Inkwell/internal/domain/event"
	kafkax "github.com/NordCoder/Inkwell/internal/repository/kafka"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

type Controller struct {
	Log *zap.Logger
	Sub *kafkax.Consumer
	UC  *Handler

	mConsumed prometheus.Counter
	mSent     prometheus.Counter
	mErrors   prometheus.Counter
}

func NewController(log *zap.Logger, sub *kafkax.Consumer, uc *Handler) *Controller {
	return &Controller{
		Log: log, Sub: sub, UC: uc,
		mConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "email_notifier_messages_consumed_total",
			Help: "Verification events consumed",
		}),
		mSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "email_notifier_emails_sent_total",
			Help: "Emails sent",
		}),
		mErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "email_notifier_errors_total",
			Help: "Errors",
		}),
	}
}

func (c *Controller) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(
		func(ctx context.Context, _ []byte, ev event.VerificationEmail) error {
			c.mConsumed.Inc()
			if ev.UserID <= 0 || ev.Token == "" {
				c.Log.Warn("verification event missing fields",
					zap.Int64("user_id", ev.UserID))
				return nil
			}
			if err := c.UC.HandleVerificationEmail(ctx, ev); err != nil {
				c.mErrors.Inc()
				return err
			}
			c.mSent.Inc()
			return nil
		},
	)
	return c.Sub.Consume(ctx, handler)
}
