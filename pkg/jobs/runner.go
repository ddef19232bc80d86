package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

const DefaultWorkers = 4

type Runner struct {
	store    Store
	broker   *Broker
	pool     *workerpool.WorkerPool
	handlers map[database.JobType]Handler
	clock    func() time.Time
	baseCtx  context.Context
	mu       sync.Mutex
	cancels  map[string]context.CancelFunc
	closing  bool
}

// NewRunner executes jobs on a bounded pool. baseCtx carries the logger and
// outlives submitting requests.
func NewRunner(
	baseCtx context.Context,
	store Store,
	broker *Broker,
	workers int,
	opts ...Option,
) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	r := &Runner{
		store:    store,
		broker:   broker,
		pool:     workerpool.New(workers),
		handlers: map[database.JobType]Handler{},
		clock:    time.Now,
		baseCtx:  context.WithoutCancel(baseCtx),
		cancels:  map[string]context.CancelFunc{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Runner) Register(jobType database.JobType, handler Handler) {
	r.handlers[jobType] = handler
}

// Submit persists a queued job and hands it to a worker. A non empty lock key
// is rejected with common.ErrSyncInProgress while another job holding the
// same key is active.
func (r *Runner) Submit(ctx context.Context, req SubmitRequest) (*database.Job, error) {
	if _, ok := r.handlers[req.Type]; !ok {
		return nil, errors.Newf("no handler registered for job type %q", req.Type)
	}

	params, err := json.Marshal(req.Params)
	if err != nil {
		return nil, errors.Wrap(err, "can not encode job params")
	}

	now := r.clock().UTC()

	job := &database.Job{
		JobType:   req.Type,
		Status:    database.JobQueued,
		LockKey:   req.LockKey,
		Params:    datatypes.JSON(params),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err = r.store.Create(ctx, job); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("job_id", job.ID).
		Str("job_type", string(job.JobType)).
		Msg("job queued")

	r.publish(ctx, job.ID)
	r.dispatch(job.ID)

	return job, nil
}

func (r *Runner) Get(ctx context.Context, id string) (*database.Job, error) {
	return r.store.Get(ctx, id)
}

func (r *Runner) List(ctx context.Context, filter ListFilter) ([]*database.Job, error) {
	return r.store.List(ctx, filter)
}

// Cancel requests a cooperative stop. A queued job fails right away, a
// running one fails once its handler notices.
func (r *Runner) Cancel(ctx context.Context, id string) (*database.Job, error) {
	job, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if job.Status.Terminal() {
		return job, nil
	}

	if _, err = r.store.RequestCancel(ctx, id); err != nil {
		return nil, err
	}

	err = r.store.Transition(
		ctx,
		id,
		[]database.JobStatus{database.JobQueued},
		database.JobFailed,
		common.UserMessage(common.ErrJobCancelled),
		r.clock().UTC(),
	)
	switch {
	case err == nil:
		r.publish(ctx, id)
	case errors.Is(err, common.ErrInvalidTransition):
		r.mu.Lock()
		cancel, running := r.cancels[id]
		r.mu.Unlock()

		if running {
			cancel()
		}
	default:
		return nil, err
	}

	return r.store.Get(ctx, id)
}

// Recover runs once at startup. Jobs a dead process left running are failed,
// queued ones are dispatched again.
func (r *Runner) Recover(ctx context.Context) error {
	lg := zerolog.Ctx(ctx)

	running, err := r.store.List(ctx, ListFilter{Status: []database.JobStatus{database.JobRunning}, Limit: -1})
	if err != nil {
		return err
	}

	for _, job := range running {
		if err = r.finish(ctx, job.ID, database.JobRunning, common.ErrJobInterrupted); err != nil {
			return err
		}
	}

	queued, err := r.store.List(ctx, ListFilter{Status: []database.JobStatus{database.JobQueued}, Limit: -1})
	if err != nil {
		return err
	}

	for _, job := range queued {
		if job.CancelRequested {
			if err = r.finish(ctx, job.ID, database.JobQueued, common.ErrJobCancelled); err != nil {
				return err
			}

			continue
		}

		r.dispatch(job.ID)
	}

	lg.Info().
		Int("interrupted", len(running)).
		Int("requeued", len(queued)).
		Msg("jobs recovered")

	return nil
}

// Close interrupts running jobs and returns once their handlers exit. Queued
// jobs are left queued, Recover dispatches them on the next start.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closing = true
	for _, cancel := range r.cancels {
		cancel()
	}
	r.mu.Unlock()

	r.pool.Stop()
}

func (r *Runner) isClosing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closing
}

func (r *Runner) dispatch(id string) {
	if r.isClosing() {
		return
	}

	r.pool.Submit(func() {
		r.run(id)
	})
}

func (r *Runner) run(id string) {
	lg := zerolog.Ctx(r.baseCtx).With().Str("job_id", id).Logger()
	ctx := lg.WithContext(r.baseCtx)

	if r.isClosing() {
		return
	}

	if err := r.store.Transition(
		ctx,
		id,
		[]database.JobStatus{database.JobQueued},
		database.JobRunning,
		"",
		r.clock().UTC(),
	); err != nil {
		if !errors.Is(err, common.ErrInvalidTransition) {
			lg.Err(err).Msg("can not start job")
		}

		return
	}

	job, err := r.store.Get(ctx, id)
	if err != nil {
		lg.Err(err).Msg("can not load job")
		return
	}

	r.publish(ctx, id)

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	r.cancels[id] = cancel
	closing := r.closing
	r.mu.Unlock()

	if closing {
		cancel()
	}

	defer func() {
		r.mu.Lock()
		delete(r.cancels, id)
		r.mu.Unlock()
	}()

	handleErr := r.handle(jobCtx, job)

	if handleErr != nil && r.isClosing() {
		handleErr = errors.Wrap(common.ErrJobInterrupted, "server shut down mid-job")
	}

	if handleErr == nil {
		if requested, _ := r.store.CancelRequested(ctx, id); requested {
			handleErr = errors.Wrap(common.ErrJobCancelled, "cancel requested after the last item")
		}
	}

	if err = r.finish(ctx, id, database.JobRunning, handleErr); err != nil {
		lg.Err(err).Msg("can not finish job")
	}
}

func (r *Runner) handle(ctx context.Context, job *database.Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Newf("job handler panicked: %v", rec)
		}
	}()

	return r.handlers[job.JobType].Handle(ctx, job, newReporter(r.store, job.ID))
}

func (r *Runner) finish(ctx context.Context, id string, from database.JobStatus, jobErr error) error {
	lg := zerolog.Ctx(ctx)

	to := database.JobCompleted
	message := ""

	if jobErr != nil {
		to = database.JobFailed
		message = common.UserMessage(jobErr)

		lg.Warn().Err(jobErr).Str("job_id", id).Msg("job failed")
	} else {
		lg.Info().Str("job_id", id).Msg("job completed")
	}

	if err := r.store.Transition(
		ctx,
		id,
		[]database.JobStatus{from},
		to,
		message,
		r.clock().UTC(),
	); err != nil {
		return err
	}

	r.publish(ctx, id)

	return nil
}

func (r *Runner) publish(ctx context.Context, id string) {
	if r.broker == nil {
		return
	}

	job, err := r.store.Get(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Err(err).Str("job_id", id).Msg("can not load job for event")
		return
	}

	r.broker.Publish(Event{Job: *job})
}
