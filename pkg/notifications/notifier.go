package notifications

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/skynet2/finance-reconciler/pkg/jobs"
)

// Notifier posts a message for every job that reaches a terminal state.
type Notifier struct {
	sender    Sender
	formatter Formatter
	chatID    int64
}

func NewNotifier(
	sender Sender,
	formatter Formatter,
	chatID int64,
) *Notifier {
	return &Notifier{
		sender:    sender,
		formatter: formatter,
		chatID:    chatID,
	}
}

// Watch blocks until ctx is done or events is closed.
func (n *Notifier) Watch(ctx context.Context, events <-chan jobs.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			n.Notify(ctx, ev)
		}
	}
}

func (n *Notifier) Notify(ctx context.Context, ev jobs.Event) {
	if !ev.Job.Status.Terminal() {
		return
	}

	lg := zerolog.Ctx(ctx).With().Str("job_id", ev.Job.ID).Logger()

	if err := n.sender.SendMessage(ctx, n.chatID, n.formatter.Details(&ev.Job)); err != nil {
		lg.Err(err).Msg("failed to send job notification")

		return
	}

	lg.Debug().Msg("job notification sent")
}
