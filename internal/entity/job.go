package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending            JobStatus = "PENDING"
	JobProcessing         JobStatus = "PROCESSING"
	JobCompleted          JobStatus = "COMPLETED"
	JobFailed             JobStatus = "FAILED"
	JobPartiallyCompleted JobStatus = "PARTIALLY_COMPLETED"
)

type Job struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Tasks []Task `json:"tasks,omitempty"`
}

func (j *Job) TaskStatuses() []TaskStatus {
	out := make([]TaskStatus, 0, len(j.Tasks))
	for _, t := range j.Tasks {
		out = append(out, t.Status)
	}
	return out
}

// JobSummary is the list view of a job: counts instead of tasks.
type JobSummary struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	Status         JobStatus  `json:"status"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	TotalTasks     int        `json:"total_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	FailedTasks    int        `json:"failed_tasks"`
}
