package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"video-publisher/internal/apperror"
	"video-publisher/internal/entity"
	"video-publisher/internal/queue"
	"video-publisher/internal/repository/postgresql"
)

type PublishingService struct {
	jobs       JobStore
	tasks      TaskStore
	videos     VideoLookup
	accounts   AccountLookup
	publisher  TaskPublisher
	inspector  QueueInspector
	reconciler *Reconciler
	logger     *zap.Logger
}

type Deps struct {
	Jobs      JobStore
	Tasks     TaskStore
	Videos    VideoLookup
	Accounts  AccountLookup
	Publisher TaskPublisher
	Inspector QueueInspector
	Logger    *zap.Logger
}

func NewPublishingService(d Deps) *PublishingService {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("publishing")
	return &PublishingService{
		jobs:       d.Jobs,
		tasks:      d.Tasks,
		videos:     d.Videos,
		accounts:   d.Accounts,
		publisher:  d.Publisher,
		inspector:  d.Inspector,
		reconciler: NewReconciler(d.Jobs, logger),
		logger:     logger,
	}
}

type TaskTarget struct {
	VideoID         uuid.UUID
	SocialAccountID uuid.UUID
}

type CreateJobRequest struct {
	Title       string
	Description *string
	ScheduledAt *time.Time
	Tasks       []TaskTarget
}

// CreateJob validates every (video, account) pair and persists the job with
// its PENDING tasks in one transaction. Nothing is enqueued; dispatch happens
// through ExecuteJob.
func (s *PublishingService) CreateJob(ctx context.Context, userID uuid.UUID, req CreateJobRequest) (*entity.Job, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, apperror.BadRequest("title is required")
	}
	if len(req.Tasks) == 0 {
		return nil, apperror.BadRequest("at least one task is required")
	}

	tasks := make([]entity.NewTask, 0, len(req.Tasks))
	for _, target := range req.Tasks {
		if _, err := s.findVideo(ctx, userID, target.VideoID); err != nil {
			return nil, err
		}
		if _, err := s.findAccount(ctx, userID, target.SocialAccountID); err != nil {
			return nil, err
		}
		tasks = append(tasks, entity.NewTask{VideoID: target.VideoID, SocialAccountID: target.SocialAccountID})
	}

	job, err := s.jobs.CreateWithTasks(ctx, entity.Job{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
	}, tasks)
	if err != nil {
		return nil, storeErr("create job", err)
	}

	s.logger.Info("job created",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("tasks", len(job.Tasks)),
	)
	return job, nil
}

func (s *PublishingService) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]entity.JobSummary, error) {
	list, err := s.jobs.ListSummaries(ctx, userID)
	if err != nil {
		return nil, storeErr("list jobs", err)
	}
	return list, nil
}

func (s *PublishingService) FindJobByID(ctx context.Context, userID, jobID uuid.UUID) (*entity.Job, error) {
	job, err := s.jobs.GetByIDForUser(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, postgresql.ErrNotFound) {
			return nil, apperror.NotFoundf("publishing job %s not found", jobID)
		}
		return nil, storeErr("get job", err)
	}
	return job, nil
}

// DeleteJob removes a job and its tasks unless the job is PROCESSING.
func (s *PublishingService) DeleteJob(ctx context.Context, userID, jobID uuid.UUID) error {
	job, err := s.FindJobByID(ctx, userID, jobID)
	if err != nil {
		return err
	}
	if job.Status == entity.JobProcessing {
		return apperror.BadRequest("cannot delete a job that is currently processing")
	}

	if err := s.jobs.Delete(ctx, jobID); err != nil {
		if errors.Is(err, postgresql.ErrNotFound) {
			return apperror.NotFoundf("publishing job %s not found", jobID)
		}
		return storeErr("delete job", err)
	}
	s.logger.Info("job deleted", zap.String("job_id", jobID.String()))
	return nil
}

// ExecuteJob marks the job PROCESSING and enqueues one attempts=0 message per
// task. The access token of each task's account is checked before its
// message is published.
func (s *PublishingService) ExecuteJob(ctx context.Context, userID, jobID uuid.UUID) (*entity.Job, error) {
	job, err := s.FindJobByID(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case entity.JobProcessing:
		return nil, apperror.BadRequest("job is already processing")
	case entity.JobCompleted:
		return nil, apperror.BadRequest("job is already completed")
	}

	if err := s.jobs.UpdateStatus(ctx, jobID, entity.JobProcessing); err != nil {
		return nil, storeErr("update job status", err)
	}
	job.Status = entity.JobProcessing

	for _, task := range job.Tasks {
		if _, err := s.accounts.GetAccessToken(ctx, userID, task.SocialAccountID); err != nil {
			s.logger.Error("access token unavailable",
				zap.String("job_id", jobID.String()),
				zap.String("task_id", task.ID.String()),
				zap.Error(err),
			)
			return nil, lookupErr("social account", task.SocialAccountID, err)
		}
		if err := s.publisher.PublishTask(ctx, entity.MessageForTask(task)); err != nil {
			return nil, apperror.Internal("enqueue task", err)
		}
	}

	s.logger.Info("job executed",
		zap.String("job_id", jobID.String()),
		zap.Int("tasks", len(job.Tasks)),
	)
	return job, nil
}

// RetryFailedTasks resets FAILED tasks to PENDING and, for a FAILED or
// PARTIALLY_COMPLETED job, the job itself. It does not enqueue anything; the
// caller follows up with ExecuteJob.
func (s *PublishingService) RetryFailedTasks(ctx context.Context, userID, jobID uuid.UUID) (*entity.Job, error) {
	job, err := s.FindJobByID(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	n, err := s.jobs.ResetFailedTasks(ctx, jobID)
	if err != nil {
		return nil, storeErr("reset failed tasks", err)
	}

	if job.Status == entity.JobFailed || job.Status == entity.JobPartiallyCompleted {
		if err := s.jobs.UpdateStatus(ctx, jobID, entity.JobPending); err != nil {
			return nil, storeErr("update job status", err)
		}
	}

	s.logger.Info("failed tasks reset",
		zap.String("job_id", jobID.String()),
		zap.Int64("tasks", n),
	)
	return s.FindJobByID(ctx, userID, jobID)
}

// UpdateTaskStatus records a worker outcome for a task, incrementing its
// attempts, then reconciles the parent job's status.
func (s *PublishingService) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, upd entity.TaskUpdate) (*entity.Task, error) {
	if !upd.Status.Valid() {
		return nil, apperror.BadRequestf("invalid task status %q", upd.Status)
	}

	task, err := s.tasks.UpdateStatus(ctx, taskID, upd)
	if err != nil {
		if errors.Is(err, postgresql.ErrNotFound) {
			return nil, apperror.NotFoundf("publishing task %s not found", taskID)
		}
		return nil, storeErr("update task status", err)
	}

	if _, err := s.reconciler.Reconcile(ctx, task.JobID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *PublishingService) TaskDetail(ctx context.Context, taskID uuid.UUID) (*entity.TaskDetail, error) {
	detail, err := s.tasks.GetDetail(ctx, taskID)
	if err != nil {
		if errors.Is(err, postgresql.ErrNotFound) {
			return nil, apperror.NotFoundf("publishing task %s not found", taskID)
		}
		return nil, storeErr("get task", err)
	}
	return detail, nil
}

func (s *PublishingService) QueueStatus(ctx context.Context) (queue.Stats, error) {
	stats, err := s.inspector.Stats(ctx)
	if err != nil {
		return queue.Stats{}, apperror.Internal("queue status", err)
	}
	return stats, nil
}

func (s *PublishingService) findVideo(ctx context.Context, userID, videoID uuid.UUID) (*entity.VideoRef, error) {
	v, err := s.videos.FindByID(ctx, userID, videoID)
	if err != nil {
		return nil, lookupErr("video", videoID, err)
	}
	return v, nil
}

func (s *PublishingService) findAccount(ctx context.Context, userID, accountID uuid.UUID) (*entity.AccountRef, error) {
	a, err := s.accounts.FindByID(ctx, userID, accountID)
	if err != nil {
		return nil, lookupErr("social account", accountID, err)
	}
	return a, nil
}

func lookupErr(what string, id uuid.UUID, err error) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, postgresql.ErrNotFound):
		return apperror.NotFoundf("%s %s not found", what, id)
	case errors.Is(err, postgresql.ErrAccountInactive), errors.Is(err, postgresql.ErrTokenExpired):
		return &apperror.AppError{
			Code:    apperror.CodeBadRequest,
			Message: fmt.Sprintf("%s %s cannot publish", what, id),
			Cause:   err,
		}
	}
	return apperror.Internal("lookup "+what, err)
}

func storeErr(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, postgresql.ErrForeignKey) {
		return apperror.NotFound("referenced video or social account not found")
	}
	return apperror.Internal(op, err)
}
