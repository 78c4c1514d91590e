package entity

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskUploading TaskStatus = "UPLOADING"
	TaskRetrying  TaskStatus = "RETRYING"
	TaskPublished TaskStatus = "PUBLISHED"
	TaskFailed    TaskStatus = "FAILED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskUploading, TaskRetrying, TaskPublished, TaskFailed:
		return true
	}
	return false
}

// InFlight is true for statuses that still expect a worker to act.
func (s TaskStatus) InFlight() bool {
	return s == TaskPending || s == TaskUploading || s == TaskRetrying
}

type Task struct {
	ID                uuid.UUID  `json:"id"`
	JobID             uuid.UUID  `json:"job_id"`
	VideoID           uuid.UUID  `json:"video_id"`
	SocialAccountID   uuid.UUID  `json:"social_account_id"`
	Status            TaskStatus `json:"status"`
	PlatformPostID    *string    `json:"platform_post_id,omitempty"`
	ErrorMessage      *string    `json:"error_message,omitempty"`
	Attempts          int        `json:"attempts"`
	CustomTitle       *string    `json:"custom_title,omitempty"`
	CustomDescription *string    `json:"custom_description,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Display fields, filled when the task is loaded with its video and account.
	Video   *VideoRef   `json:"video,omitempty"`
	Account *AccountRef `json:"social_account,omitempty"`
}

type NewTask struct {
	VideoID           uuid.UUID
	SocialAccountID   uuid.UUID
	CustomTitle       *string
	CustomDescription *string
}

// TaskUpdate carries the fields written by an update-task-status call.
type TaskUpdate struct {
	Status         TaskStatus
	PlatformPostID *string
	ErrorMessage   *string
}

// TaskDetail is a task loaded with its video, account and the owning user.
type TaskDetail struct {
	Task
	UserID uuid.UUID
}
