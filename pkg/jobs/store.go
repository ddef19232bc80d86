package jobs

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

// forward lists the states a job may move to from each state.
var forward = map[database.JobStatus][]database.JobStatus{
	database.JobQueued:  {database.JobRunning, database.JobFailed},
	database.JobRunning: {database.JobCompleted, database.JobFailed},
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

func (s *GormStore) Create(ctx context.Context, job *database.Job) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Mark(errors.Wrapf(err, "lock %s", job.LockKey), common.ErrSyncInProgress)
		}

		return errors.WithStack(err)
	}

	return nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*database.Job, error) {
	var job database.Job

	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(common.ErrNotFound, "job %s", id)
		}

		return nil, errors.WithStack(err)
	}

	return &job, nil
}

func (s *GormStore) List(ctx context.Context, filter ListFilter) ([]*database.Job, error) {
	q := s.db.WithContext(ctx).Model(&database.Job{})

	if filter.Type != "" {
		q = q.Where("job_type = ?", filter.Type)
	}

	if len(filter.Status) > 0 {
		q = q.Where("status IN ?", filter.Status)
	}

	// negative limit lists everything
	switch {
	case filter.Limit == 0:
		q = q.Limit(defaultListLimit)
	case filter.Limit > 0:
		q = q.Limit(filter.Limit)
	}

	var jobs []*database.Job
	if err := q.Order("created_at desc, id asc").Find(&jobs).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	return jobs, nil
}

// Transition moves the job to `to` only while its stored status is one of
// `from`. Backward moves are rejected before touching the database.
func (s *GormStore) Transition(
	ctx context.Context,
	id string,
	from []database.JobStatus,
	to database.JobStatus,
	message string,
	at time.Time,
) error {
	for _, f := range from {
		if !lo.Contains(forward[f], to) {
			return errors.Wrapf(common.ErrInvalidTransition, "%s -> %s", f, to)
		}
	}

	updates := map[string]any{
		"status":     to,
		"updated_at": at,
	}

	if to == database.JobRunning {
		updates["started_at"] = at
	}

	if to.Terminal() {
		updates["finished_at"] = at
		updates["error_message"] = message
	}

	res := s.db.WithContext(ctx).
		Model(&database.Job{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}

	if res.RowsAffected == 0 {
		return errors.Wrapf(common.ErrInvalidTransition, "job %s is not in %v", id, from)
	}

	return nil
}

// SetTotal only ever raises the total of a running job.
func (s *GormStore) SetTotal(ctx context.Context, id string, total int) error {
	return errors.WithStack(s.db.WithContext(ctx).
		Model(&database.Job{}).
		Where("id = ? AND status = ? AND total_items < ?", id, database.JobRunning, total).
		Update("total_items", total).Error)
}

func (s *GormStore) AddProgress(ctx context.Context, id string, delta common.Progress) error {
	return errors.WithStack(s.db.WithContext(ctx).
		Model(&database.Job{}).
		Where("id = ? AND status = ?", id, database.JobRunning).
		Updates(map[string]any{
			"processed_items": gorm.Expr("processed_items + ?", delta.Processed),
			"matched_items":   gorm.Expr("matched_items + ?", delta.Succeeded),
			"duplicate_items": gorm.Expr("duplicate_items + ?", delta.Duplicates),
			"failed_items":    gorm.Expr("failed_items + ?", delta.Failed),
		}).Error)
}

func (s *GormStore) RequestCancel(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&database.Job{}).
		Where("id = ? AND status IN ?", id, []database.JobStatus{database.JobQueued, database.JobRunning}).
		Update("cancel_requested", true)
	if res.Error != nil {
		return false, errors.WithStack(res.Error)
	}

	return res.RowsAffected == 1, nil
}

func (s *GormStore) CancelRequested(ctx context.Context, id string) (bool, error) {
	var job database.Job

	if err := s.db.WithContext(ctx).
		Select("cancel_requested").
		Where("id = ?", id).
		First(&job).Error; err != nil {
		return false, errors.WithStack(err)
	}

	return job.CancelRequested, nil
}
