package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"video-publisher/internal/apperror"
	"video-publisher/internal/auth"
	"video-publisher/internal/entity"
	"video-publisher/internal/queue"
	"video-publisher/internal/service"
)

// PublishingService is implemented by service.PublishingService.
type PublishingService interface {
	CreateJob(ctx context.Context, userID uuid.UUID, req service.CreateJobRequest) (*entity.Job, error)
	CreateBatchJob(ctx context.Context, userID uuid.UUID, req service.BatchJobRequest) ([]*entity.Job, error)
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]entity.JobSummary, error)
	FindJobByID(ctx context.Context, userID, jobID uuid.UUID) (*entity.Job, error)
	ExecuteJob(ctx context.Context, userID, jobID uuid.UUID) (*entity.Job, error)
	RetryFailedTasks(ctx context.Context, userID, jobID uuid.UUID) (*entity.Job, error)
	DeleteJob(ctx context.Context, userID, jobID uuid.UUID) error
	QueueStatus(ctx context.Context) (queue.Stats, error)
}

type HealthChecker interface {
	IsHealthy() bool
}

type Handler struct {
	svc      PublishingService
	health   HealthChecker
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(svc PublishingService, health HealthChecker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:      svc,
		health:   health,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Named("http"),
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeErr(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthenticated")
	}
	return id, ok
}

func jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// Health godoc
// @Summary Liveness of the broker connection
// @Tags health
// @Produce plain
// @Success 200 {string} string "ok"
// @Failure 503 {string} string "unavailable"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	if h.health != nil && !h.health.IsHealthy() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	_, _ = w.Write([]byte("ok"))
}

// CreateJob godoc
// @Summary Create a publishing job
// @Description Validates ownership of every video and account, then stores the job with PENDING tasks. Dispatch happens through execute.
// @Tags publishing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createJobDTO true "job payload"
// @Success 201 {object} jobResp
// @Failure 400 {object} apiError
// @Failure 401 {object} apiError
// @Failure 404 {object} apiError
// @Router /publishing/jobs [post]
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var dto createJobDTO
	if !h.decode(w, r, &dto) {
		return
	}
	req, err := dto.toRequest()
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid scheduledAt")
		return
	}

	job, err := h.svc.CreateJob(r.Context(), uid, req)
	if err != nil {
		writeAppErr(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobResp(job))
}

// CreateBatchJob godoc
// @Summary Create one publishing job per video and enqueue its tasks
// @Description Items are processed in order. A failing item stops the batch; jobs created before it are kept and returned with the error.
// @Tags publishing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createBatchJobDTO true "batch payload"
// @Success 201 {array} jobResp
// @Failure 400 {object} batchErrorResp
// @Failure 401 {object} apiError
// @Failure 404 {object} batchErrorResp
// @Failure 500 {object} batchErrorResp
// @Router /publishing/batch-jobs [post]
func (h *Handler) CreateBatchJob(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var dto createBatchJobDTO
	if !h.decode(w, r, &dto) {
		return
	}
	req, err := dto.toRequest()
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid scheduledAt")
		return
	}

	jobs, err := h.svc.CreateBatchJob(r.Context(), uid, req)
	if err != nil {
		var itemErr *service.BatchItemError
		if !errors.As(err, &itemErr) {
			writeAppErr(w, h.logger, err)
			return
		}
		code := statusOf(err)
		if code == http.StatusInternalServerError {
			h.logger.Error("batch item failed", zap.Int("item", itemErr.Index), zap.Error(err))
		}
		writeJSON(w, code, batchErrorResp{
			Message:     apperror.MessageOf(err),
			FailedIndex: itemErr.Index,
			Jobs:        toJobResps(jobs),
		})
		return
	}
	writeJSON(w, http.StatusCreated, toJobResps(jobs))
}

// ListJobs godoc
// @Summary List the caller's publishing jobs, newest first
// @Tags publishing
// @Produce json
// @Security BearerAuth
// @Success 200 {array} jobSummaryResp
// @Failure 401 {object} apiError
// @Router /publishing/jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	list, err := h.svc.FindAllByUser(r.Context(), uid)
	if err != nil {
		writeAppErr(w, h.logger, err)
		return
	}
	out := make([]jobSummaryResp, 0, len(list))
	for _, s := range list {
		out = append(out, toSummaryResp(s))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetJob godoc
// @Summary Get a publishing job with its tasks
// @Tags publishing
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} jobResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /publishing/jobs/{id} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := h.svc.FindJobByID(r.Context(), uid, id)
	if err != nil {
		writeAppErr(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResp(job))
}

// ExecuteJob godoc
// @Summary Start a publishing job
// @Description Moves the job to PROCESSING and enqueues one message per task.
// @Tags publishing
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} jobResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 500 {object} apiError
// @Router /publishing/jobs/{id}/execute [post]
func (h *Handler) ExecuteJob(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := h.svc.ExecuteJob(r.Context(), uid, id)
	if err != nil {
		writeAppErr(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResp(job))
}

// RetryJob godoc
// @Summary Reset failed tasks to PENDING
// @Description Does not enqueue; call execute afterwards to dispatch the reset tasks.
// @Tags publishing
// @Produce json
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 200 {object} jobResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /publishing/jobs/{id}/retry [post]
func (h *Handler) RetryJob(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := h.svc.RetryFailedTasks(r.Context(), uid, id)
	if err != nil {
		writeAppErr(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResp(job))
}

// DeleteJob godoc
// @Summary Delete a publishing job
// @Description Refused while the job is PROCESSING.
// @Tags publishing
// @Security BearerAuth
// @Param id path string true "job id (uuid)"
// @Success 204
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /publishing/jobs/{id} [delete]
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteJob(r.Context(), uid, id); err != nil {
		writeAppErr(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QueueStatus godoc
// @Summary Message counts of the publishing queues
// @Tags publishing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} queueStatusResp
// @Failure 500 {object} apiError
// @Router /publishing/queue/status [get]
func (h *Handler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.QueueStatus(r.Context())
	if err != nil {
		writeAppErr(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, queueStatusResp{RabbitMQ: queueStatsResp(stats)})
}
