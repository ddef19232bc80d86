package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/jobs"
)

// syncEvents are the provider events that mean new bank data is available.
var syncEvents = []string{
	"transactions.available",
	"sync.requested",
	"account.updated",
}

type Event struct {
	EventID      string `json:"event_id"`
	EventType    string `json:"event_type"`
	ConnectionID string `json:"connection_id"`
}

type Outcome struct {
	DeliveryID string `json:"delivery_id"`
	Duplicate  bool   `json:"duplicate"`
	JobID      string `json:"job_id,omitempty"`
}

type Handler struct {
	verifier  *Verifier
	inbox     Inbox
	submitter SyncSubmitter
	clock     func() time.Time

	mu sync.Mutex
	// followUps are connections that got a push while their sync was running
	followUps map[string]struct{}
}

func NewHandler(
	verifier *Verifier,
	inbox Inbox,
	submitter SyncSubmitter,
) *Handler {
	return &Handler{
		verifier:  verifier,
		inbox:     inbox,
		submitter: submitter,
		clock:     time.Now,
		followUps: map[string]struct{}{},
	}
}

// Handle verifies a push before anything else. Unverified payloads are
// logged without their body and dropped.
func (h *Handler) Handle(ctx context.Context, provider string, body []byte, signature string) (*Outcome, error) {
	lg := zerolog.Ctx(ctx).With().Str("provider", provider).Logger()

	if err := h.verifier.Verify(provider, body, signature); err != nil {
		lg.Warn().Err(err).Int("body_size", len(body)).Msg("webhook dropped")

		return nil, err
	}

	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "webhook payload is not json"), common.ErrMalformedRecord)
	}

	if ev.EventID == "" {
		return nil, errors.Wrap(common.ErrMalformedRecord, "webhook payload has no event_id")
	}

	digest := sha256.Sum256(body)

	delivery := &database.WebhookDelivery{
		ID:            ev.EventID,
		Provider:      provider,
		EventType:     ev.EventType,
		ConnectionID:  ev.ConnectionID,
		PayloadDigest: hex.EncodeToString(digest[:]),
		ReceivedAt:    h.clock().UTC(),
	}

	fresh, err := h.inbox.Record(ctx, delivery)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{DeliveryID: delivery.ID, Duplicate: !fresh}

	if !fresh {
		lg.Info().Str("delivery_id", delivery.ID).Msg("duplicate webhook delivery ignored")

		return outcome, nil
	}

	if err = h.submit(ctx, delivery); err != nil {
		return outcome, err
	}

	outcome.JobID = delivery.JobID

	if err = h.inbox.MarkProcessed(ctx, []*database.WebhookDelivery{delivery}); err != nil {
		return outcome, err
	}

	lg.Info().
		Str("delivery_id", delivery.ID).
		Str("event_type", delivery.EventType).
		Str("job_id", outcome.JobID).
		Msg("webhook accepted")

	return outcome, nil
}

// Replay finishes deliveries that were recorded but never processed, for
// example because the process died between recording and submitting.
func (h *Handler) Replay(ctx context.Context, provider string) (int, error) {
	pending, err := h.inbox.ListUnprocessed(ctx, provider)
	if err != nil {
		return 0, err
	}

	var done []*database.WebhookDelivery

	for _, delivery := range pending {
		if err = h.submit(ctx, delivery); err != nil {
			zerolog.Ctx(ctx).Err(err).Str("delivery_id", delivery.ID).Msg("failed to replay webhook")
			continue
		}

		done = append(done, delivery)
	}

	if len(done) == 0 {
		return 0, nil
	}

	if err = h.inbox.MarkProcessed(ctx, done); err != nil {
		return 0, err
	}

	return len(done), nil
}

func (h *Handler) submit(ctx context.Context, delivery *database.WebhookDelivery) error {
	if delivery.ConnectionID == "" || !lo.Contains(syncEvents, delivery.EventType) {
		return nil
	}

	job, err := h.submitter.SubmitSync(ctx, delivery.ConnectionID)
	if errors.Is(err, common.ErrSyncInProgress) {
		h.mu.Lock()
		h.followUps[delivery.ConnectionID] = struct{}{}
		h.mu.Unlock()

		// the running sync may have ended before the follow-up was noted
		job, err = h.submitter.SubmitSync(ctx, delivery.ConnectionID)
		if err == nil {
			h.mu.Lock()
			delete(h.followUps, delivery.ConnectionID)
			h.mu.Unlock()
		}
	}

	switch {
	case err == nil:
		delivery.JobID = job.ID
	case errors.Is(err, common.ErrSyncInProgress):
		zerolog.Ctx(ctx).Info().
			Str("connection_id", delivery.ConnectionID).
			Msg("sync already running, follow-up queued")
	default:
		return err
	}

	return nil
}

// Watch submits the follow-up syncs once the sync that blocked them ends.
func (h *Handler) Watch(ctx context.Context, events <-chan jobs.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			h.OnJobEvent(ctx, ev)
		}
	}
}

func (h *Handler) OnJobEvent(ctx context.Context, ev jobs.Event) {
	if ev.Job.JobType != database.JobTypeSync || !ev.Job.Status.Terminal() {
		return
	}

	h.mu.Lock()
	var connectionID string
	for id := range h.followUps {
		if jobs.SyncLockKey(id, database.SourceBankFeed) == ev.Job.LockKey {
			connectionID = id
			delete(h.followUps, id)

			break
		}
	}
	h.mu.Unlock()

	if connectionID == "" {
		return
	}

	lg := zerolog.Ctx(ctx).With().Str("connection_id", connectionID).Logger()

	job, err := h.submitter.SubmitSync(ctx, connectionID)
	switch {
	case err == nil:
		lg.Info().Str("job_id", job.ID).Str("after_job_id", ev.Job.ID).Msg("follow-up sync queued")
	case errors.Is(err, common.ErrSyncInProgress):
		lg.Info().Msg("another sync started meanwhile, follow-up dropped")
	default:
		lg.Err(err).Msg("failed to queue follow-up sync")
	}
}
