package service

import (
	"context"

	"github.com/google/uuid"

	"video-publisher/internal/entity"
	"video-publisher/internal/queue"
)

// JobStore is the job persistence port (implementation: postgresql.JobRepository).
type JobStore interface {
	CreateWithTasks(ctx context.Context, job entity.Job, tasks []entity.NewTask) (*entity.Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*entity.Job, error)
	ListSummaries(ctx context.Context, userID uuid.UUID) ([]entity.JobSummary, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	ResetFailedTasks(ctx context.Context, jobID uuid.UUID) (int64, error)
}

// TaskStore is the task persistence port (implementation: postgresql.TaskRepository).
type TaskStore interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, upd entity.TaskUpdate) (*entity.Task, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*entity.TaskDetail, error)
}

//go:generate mockgen -destination=../mocks/lookup_mocks.go -package=mocks video-publisher/internal/service VideoLookup,AccountLookup

type VideoLookup interface {
	FindByID(ctx context.Context, userID, videoID uuid.UUID) (*entity.VideoRef, error)
}

// AccountLookup finds a connected social account owned by the user and
// hands out its access token.
type AccountLookup interface {
	FindByID(ctx context.Context, userID, accountID uuid.UUID) (*entity.AccountRef, error)
	GetAccessToken(ctx context.Context, userID, accountID uuid.UUID) (string, error)
}

// TaskPublisher is the enqueue side of the broker (implementation: queue.Broker).
type TaskPublisher interface {
	PublishTask(ctx context.Context, msg entity.TaskMessage) error
}

type QueueInspector interface {
	Stats(ctx context.Context) (queue.Stats, error)
}
