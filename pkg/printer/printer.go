package printer

import (
	"fmt"
	"strings"
	"time"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

type Printer struct {
}

func NewPrinter() *Printer {
	return &Printer{}
}

// JobSummary renders one line such as
// "sync completed: 180 processed, 168 inserted, 12 failed".
func (p *Printer) JobSummary(job *database.Job) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s %s: %v processed", job.JobType, job.Status, job.ProcessedItems))

	switch job.JobType {
	case database.JobTypeSync, database.JobTypeImport:
		sb.WriteString(fmt.Sprintf(", %v inserted, %v duplicate", job.MatchedItems, job.DuplicateItems))
	case database.JobTypeEnrich:
		sb.WriteString(fmt.Sprintf(", %v parsed", job.MatchedItems))
	default:
		sb.WriteString(fmt.Sprintf(", %v matched", job.MatchedItems))
	}

	sb.WriteString(fmt.Sprintf(", %v failed", job.FailedItems))

	return sb.String()
}

// Details is the multi-line message sent to chat notifications.
func (p *Printer) Details(job *database.Job) string {
	var sb strings.Builder

	switch job.Status {
	case database.JobCompleted:
		if job.FailedItems == 0 {
			sb.WriteString("Completed: ✅\n")
		} else {
			sb.WriteString("Completed with failures: ⚠️\n")
		}
	case database.JobFailed:
		sb.WriteString("Failed: ❌\n")
	default:
		sb.WriteString(fmt.Sprintf("Status: %s\n", job.Status))
	}

	sb.WriteString(p.JobSummary(job))
	sb.WriteString(fmt.Sprintf("\nJob: %s", job.ID))

	if job.TotalItems > 0 {
		sb.WriteString(fmt.Sprintf("\nProgress: %v/%v (%v%%)", job.ProcessedItems, job.TotalItems, job.ProgressPercentage()))
	}

	if job.StartedAt != nil && job.FinishedAt != nil {
		sb.WriteString(fmt.Sprintf("\nDuration: %s", job.FinishedAt.Sub(*job.StartedAt).Round(time.Second)))
	}

	if job.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("\nERROR: %s", job.ErrorMessage))
	}

	return sb.String()
}
