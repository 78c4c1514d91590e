package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"video-publisher/internal/entity"
	"video-publisher/internal/repository/postgresql"
)

// TaskRepo is the slice of the publishing service the worker drives.
type TaskRepo interface {
	TaskDetail(ctx context.Context, taskID uuid.UUID) (*entity.TaskDetail, error)
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, upd entity.TaskUpdate) (*entity.Task, error)
}

type TokenSource interface {
	GetAccessToken(ctx context.Context, userID, accountID uuid.UUID) (string, error)
}

type Retrier interface {
	RetryTask(ctx context.Context, msg entity.TaskMessage) error
}

type RateLimiter interface {
	Allow(ctx context.Context, platform string) (bool, error)
}

type DeliveryGuard interface {
	Claim(ctx context.Context, messageID string) (bool, error)
	Release(ctx context.Context, messageID string) error
}

// ErrInterrupted is returned when the consumer context ends mid-delivery.
// The task is put back to its dispatchable status and the message requeued.
var ErrInterrupted = errors.New("delivery interrupted")

// status writes after an upload outlive the consumer context
const persistTimeout = 5 * time.Second

type Processor struct {
	tasks       TaskRepo
	tokens      TokenSource
	retrier     Retrier
	registry    *Registry
	limiter     RateLimiter
	guard       DeliveryGuard
	maxAttempts int
	logger      *zap.Logger
}

type ProcessorOption func(*Processor)

func WithRateLimiter(l RateLimiter) ProcessorOption {
	return func(p *Processor) { p.limiter = l }
}

// WithDeliveryGuard skips redelivered messages whose id was already claimed.
func WithDeliveryGuard(g DeliveryGuard) ProcessorOption {
	return func(p *Processor) { p.guard = g }
}

func WithMaxAttempts(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

func NewProcessor(tasks TaskRepo, tokens TokenSource, retrier Retrier, registry *Registry, logger *zap.Logger, opts ...ProcessorOption) *Processor {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		tasks:       tasks,
		tokens:      tokens,
		retrier:     retrier,
		registry:    registry,
		maxAttempts: 3,
		logger:      logger.Named("worker"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle processes one queue message. A nil return acks the delivery; an
// error dead-letters it, except ErrInterrupted.
func (p *Processor) Handle(ctx context.Context, msg entity.TaskMessage) (err error) {
	start := time.Now()
	log := p.logger.With(
		zap.String("task_id", msg.PublishingTaskID),
		zap.Int("attempts", msg.Attempts),
	)

	id, err := uuid.Parse(msg.PublishingTaskID)
	if err != nil {
		log.Error("parse task id", zap.Error(err))
		return fmt.Errorf("parse task id: %w", err)
	}

	messageID := msg.MessageID()
	if msg.Attempts > 0 {
		messageID = msg.RetryMessageID()
	}
	if p.guard != nil {
		first, claimErr := p.guard.Claim(ctx, messageID)
		switch {
		case claimErr != nil:
			log.Warn("delivery guard unavailable", zap.Error(claimErr))
		case !first:
			log.Info("duplicate delivery skipped", zap.String("message_id", messageID))
			return nil
		default:
			defer func() {
				if err != nil && ctx.Err() != nil {
					p.release(ctx, log, messageID)
				}
			}()
		}
	}

	detail, err := p.tasks.TaskDetail(ctx, id)
	if err != nil {
		log.Error("load task", zap.Error(err))
		return err
	}
	if detail.Status != entity.TaskPending && detail.Status != entity.TaskRetrying {
		log.Info("task not dispatchable, skipping", zap.String("status", string(detail.Status)))
		return nil
	}

	if _, err := p.tasks.UpdateTaskStatus(ctx, id, entity.TaskUpdate{Status: entity.TaskUploading}); err != nil {
		log.Error("update status", zap.String("status", string(entity.TaskUploading)), zap.Error(err))
		return err
	}

	postID, pubErr := p.publish(ctx, detail, msg)

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if pubErr != nil {
		if ctx.Err() != nil {
			return p.interrupt(wctx, log, id, detail.Status, pubErr)
		}
		return p.fail(wctx, log, id, msg, pubErr, start)
	}

	if _, err := p.tasks.UpdateTaskStatus(wctx, id, entity.TaskUpdate{
		Status:         entity.TaskPublished,
		PlatformPostID: &postID,
	}); err != nil {
		log.Error("update status", zap.String("status", string(entity.TaskPublished)), zap.Error(err))
		return err
	}
	log.Info("task published",
		zap.String("platform_post_id", postID),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// interrupt puts the task back to the status it was dispatched from so the
// requeued message is processed again.
func (p *Processor) interrupt(ctx context.Context, log *zap.Logger, id uuid.UUID, prev entity.TaskStatus, cause error) error {
	if _, err := p.tasks.UpdateTaskStatus(ctx, id, entity.TaskUpdate{Status: prev}); err != nil {
		log.Error("restore status", zap.String("status", string(prev)), zap.Error(err))
	}
	log.Warn("upload interrupted, task requeued", zap.Error(cause))
	return fmt.Errorf("%w: %v", ErrInterrupted, cause)
}

func (p *Processor) release(ctx context.Context, log *zap.Logger, messageID string) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := p.guard.Release(rctx, messageID); err != nil {
		log.Warn("release delivery claim", zap.String("message_id", messageID), zap.Error(err))
	}
}

// fail either schedules another attempt through the retry queue or marks the
// task FAILED and returns the cause so the delivery is dead-lettered.
func (p *Processor) fail(ctx context.Context, log *zap.Logger, id uuid.UUID, msg entity.TaskMessage, cause error, start time.Time) error {
	errText := cause.Error()
	next := msg.Attempts + 1

	if IsRetryable(cause) && next < p.maxAttempts {
		if _, err := p.tasks.UpdateTaskStatus(ctx, id, entity.TaskUpdate{
			Status:       entity.TaskRetrying,
			ErrorMessage: &errText,
		}); err != nil {
			log.Error("update status", zap.String("status", string(entity.TaskRetrying)), zap.Error(err))
			return err
		}

		retry := msg
		retry.Attempts = next
		err := p.retrier.RetryTask(ctx, retry)
		if err == nil {
			log.Warn("task scheduled for retry",
				zap.Int("next_attempt", next),
				zap.Int("max_attempts", p.maxAttempts),
				zap.String("error", errText),
			)
			return nil
		}
		log.Error("retry enqueue failed", zap.Error(err))
		cause = errors.Join(cause, err)
		errText = cause.Error()
	}

	if _, err := p.tasks.UpdateTaskStatus(ctx, id, entity.TaskUpdate{
		Status:       entity.TaskFailed,
		ErrorMessage: &errText,
	}); err != nil {
		log.Error("update status", zap.String("status", string(entity.TaskFailed)), zap.Error(err))
	}

	log.Error("task failed",
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Error(cause),
	)
	return cause
}

func (p *Processor) publish(ctx context.Context, detail *entity.TaskDetail, msg entity.TaskMessage) (string, error) {
	if detail.Video == nil || detail.Account == nil {
		return "", errors.New("task is missing its video or social account")
	}
	platform := detail.Account.Platform

	uploader, err := p.registry.Get(platform)
	if err != nil {
		return "", err
	}

	if p.limiter != nil {
		ok, err := p.limiter.Allow(ctx, platform.Key())
		if err != nil {
			p.logger.Warn("rate limiter unavailable", zap.String("platform", platform.Key()), zap.Error(err))
		} else if !ok {
			return "", ErrRateLimited(platform)
		}
	}

	token, err := p.tokens.GetAccessToken(ctx, detail.UserID, detail.SocialAccountID)
	if err != nil {
		if errors.Is(err, postgresql.ErrTokenExpired) {
			return "", ErrTokenExpired(platform, err)
		}
		return "", fmt.Errorf("access token: %w", err)
	}

	req := UploadRequest{
		Video:       *detail.Video,
		Account:     *detail.Account,
		Title:       detail.Video.Title,
		AccessToken: token,
	}
	if detail.Video.Description != nil {
		req.Description = *detail.Video.Description
	}
	if msg.CustomTitle != "" {
		req.Title = msg.CustomTitle
	}
	if msg.CustomDescription != "" {
		req.Description = msg.CustomDescription
	}

	res, err := uploader.Upload(ctx, req)
	if err != nil {
		return "", err
	}
	return res.PlatformPostID, nil
}
