package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"video-publisher/internal/apperror"
	"video-publisher/internal/entity"
	"video-publisher/internal/repository/postgresql"
)

// Reconciler recomputes a job's status from its tasks' current statuses.
type Reconciler struct {
	jobs   JobStore
	logger *zap.Logger
}

func NewReconciler(jobs JobStore, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{jobs: jobs, logger: logger}
}

// Reconcile reloads the job with all sibling tasks and persists the derived
// status only when it differs from the stored one.
func (r *Reconciler) Reconcile(ctx context.Context, jobID uuid.UUID) (entity.JobStatus, error) {
	job, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, postgresql.ErrNotFound) {
			return "", apperror.NotFoundf("publishing job %s not found", jobID)
		}
		return "", apperror.Internal("reload job", err)
	}

	derived := entity.DeriveJobStatus(job.TaskStatuses())
	if derived == job.Status {
		return derived, nil
	}

	if err := r.jobs.UpdateStatus(ctx, jobID, derived); err != nil {
		return "", apperror.Internal("update job status", err)
	}
	r.logger.Info("job status changed",
		zap.String("job_id", jobID.String()),
		zap.String("from", string(job.Status)),
		zap.String("to", string(derived)),
	)
	return derived, nil
}
