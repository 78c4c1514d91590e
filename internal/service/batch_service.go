package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"video-publisher/internal/apperror"
	"video-publisher/internal/entity"
)

type BatchItem struct {
	VideoID           uuid.UUID
	SocialAccountIDs  []uuid.UUID
	CustomTitle       *string
	CustomDescription *string
}

type BatchJobRequest struct {
	Title       *string
	ScheduledAt *time.Time
	Items       []BatchItem
}

// BatchItemError reports the item that stopped a batch. Items before Index
// were fully created and enqueued.
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("batch item %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error {
	return e.Err
}

// CreateBatchJob creates one job per item and enqueues one message per task.
//
// Each item is validated, persisted and enqueued on its own; a failing item
// stops the loop without rolling back earlier items. The jobs created so far
// are returned together with a *BatchItemError.
func (s *PublishingService) CreateBatchJob(ctx context.Context, userID uuid.UUID, req BatchJobRequest) ([]*entity.Job, error) {
	if len(req.Items) == 0 {
		return nil, apperror.BadRequest("at least one batch item is required")
	}

	created := make([]*entity.Job, 0, len(req.Items))
	for i, item := range req.Items {
		job, err := s.createBatchItem(ctx, userID, req, i, item)
		if job != nil {
			created = append(created, job)
		}
		if err != nil {
			s.logger.Warn("batch stopped",
				zap.String("user_id", userID.String()),
				zap.Int("item", i),
				zap.Int("created", len(created)),
				zap.Error(err),
			)
			return created, &BatchItemError{Index: i, Err: err}
		}
	}

	s.logger.Info("batch created",
		zap.String("user_id", userID.String()),
		zap.Int("jobs", len(created)),
	)
	return created, nil
}

// createBatchItem returns the job whenever it was persisted, even if
// enqueueing its tasks failed afterwards.
func (s *PublishingService) createBatchItem(ctx context.Context, userID uuid.UUID, req BatchJobRequest, index int, item BatchItem) (*entity.Job, error) {
	if len(item.SocialAccountIDs) == 0 {
		return nil, apperror.BadRequest("at least one social account is required")
	}

	video, err := s.findVideo(ctx, userID, item.VideoID)
	if err != nil {
		return nil, err
	}
	for _, accountID := range item.SocialAccountIDs {
		if _, err := s.findAccount(ctx, userID, accountID); err != nil {
			return nil, err
		}
	}

	tasks := make([]entity.NewTask, 0, len(item.SocialAccountIDs))
	for _, accountID := range item.SocialAccountIDs {
		tasks = append(tasks, entity.NewTask{
			VideoID:           item.VideoID,
			SocialAccountID:   accountID,
			CustomTitle:       item.CustomTitle,
			CustomDescription: item.CustomDescription,
		})
	}

	description := "Batch publishing job for video: " + video.Title
	job, err := s.jobs.CreateWithTasks(ctx, entity.Job{
		UserID:      userID,
		Title:       batchJobTitle(req.Title, video.Title, index),
		Description: &description,
		ScheduledAt: req.ScheduledAt,
	}, tasks)
	if err != nil {
		return nil, storeErr("create batch job", err)
	}

	for _, task := range job.Tasks {
		if err := s.publisher.PublishTask(ctx, entity.MessageForTask(task)); err != nil {
			return job, apperror.Internal("enqueue task", err)
		}
	}
	return job, nil
}

func batchJobTitle(batchTitle *string, videoTitle string, index int) string {
	if batchTitle != nil && strings.TrimSpace(*batchTitle) != "" {
		return fmt.Sprintf("%s - Video %d", strings.TrimSpace(*batchTitle), index+1)
	}
	return videoTitle + " - Batch Job"
}
