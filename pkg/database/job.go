package database

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobType string

const (
	JobTypeSync   = JobType("sync")
	JobTypeImport = JobType("import")
	JobTypeMatch  = JobType("match")
	JobTypeEnrich = JobType("enrich")
)

type JobStatus string

const (
	JobQueued    = JobStatus("queued")
	JobRunning   = JobStatus("running")
	JobCompleted = JobStatus("completed")
	JobFailed    = JobStatus("failed")
)

func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is the durable handle of one asynchronous batch. MatchedItems counts
// inserted rows for sync/import jobs, links for match jobs and parsed items
// for enrich jobs.
type Job struct {
	ID              string    `gorm:"primaryKey;size:36"`
	JobType         JobType   `gorm:"size:32;index"`
	Status          JobStatus `gorm:"size:16;index"`
	LockKey         string    `gorm:"size:255"`
	Params          datatypes.JSON
	TotalItems      int
	ProcessedItems  int
	MatchedItems    int
	DuplicateItems  int
	FailedItems     int
	ErrorMessage    string
	CancelRequested bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(_ *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = JobQueued
	}

	return nil
}

func (j *Job) ProgressPercentage() float64 {
	if j.TotalItems <= 0 {
		if j.Status == JobCompleted {
			return 100
		}

		return 0
	}

	pct := float64(j.ProcessedItems) / float64(j.TotalItems) * 100

	return math.Round(math.Min(pct, 100)*10) / 10
}

// JobView is the polling contract shared by every job type.
type JobView struct {
	ID                 string    `json:"id"`
	JobType            JobType   `json:"job_type"`
	Status             JobStatus `json:"status"`
	TotalItems         int       `json:"total_items"`
	ProcessedItems     int       `json:"processed_items"`
	MatchedItems       *int      `json:"matched_items,omitempty"`
	ParsedItems        *int      `json:"parsed_items,omitempty"`
	InsertedItems      *int      `json:"inserted_items,omitempty"`
	DuplicateItems     *int      `json:"duplicate_items,omitempty"`
	FailedItems        int       `json:"failed_items"`
	ProgressPercentage float64   `json:"progress_percentage"`
	ErrorMessage       string    `json:"error_message,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (j *Job) View() JobView {
	view := JobView{
		ID:                 j.ID,
		JobType:            j.JobType,
		Status:             j.Status,
		TotalItems:         j.TotalItems,
		ProcessedItems:     j.ProcessedItems,
		FailedItems:        j.FailedItems,
		ProgressPercentage: j.ProgressPercentage(),
		ErrorMessage:       j.ErrorMessage,
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}

	matched := j.MatchedItems
	switch j.JobType {
	case JobTypeEnrich:
		view.ParsedItems = &matched
	case JobTypeSync, JobTypeImport:
		duplicates := j.DuplicateItems
		view.InsertedItems = &matched
		view.DuplicateItems = &duplicates
	default:
		view.MatchedItems = &matched
	}

	return view
}
