package httptransport

import (
	"time"

	"github.com/google/uuid"

	"video-publisher/internal/entity"
	"video-publisher/internal/service"
)

type taskTargetDTO struct {
	VideoID         string `json:"videoId" validate:"required,uuid"`
	SocialAccountID string `json:"socialAccountId" validate:"required,uuid"`
}

type createJobDTO struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=5000"`
	ScheduledAt *string         `json:"scheduledAt,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Tasks       []taskTargetDTO `json:"tasks" validate:"required,min=1,dive"`
}

type batchTargetDTO struct {
	SocialAccountID string `json:"socialAccountId" validate:"required,uuid"`
}

type batchItemDTO struct {
	VideoID           string           `json:"videoId" validate:"required,uuid"`
	Targets           []batchTargetDTO `json:"targets" validate:"required,min=1,dive"`
	CustomTitle       *string          `json:"customTitle,omitempty" validate:"omitempty,max=255"`
	CustomDescription *string          `json:"customDescription,omitempty" validate:"omitempty,max=5000"`
}

type createBatchJobDTO struct {
	Jobs        []batchItemDTO `json:"jobs" validate:"required,min=1,dive"`
	ScheduledAt *string        `json:"scheduledAt,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	BatchTitle  *string        `json:"batchTitle,omitempty" validate:"omitempty,max=255"`
}

func parseScheduledAt(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// toRequest assumes the DTO already passed validation.
func (d createJobDTO) toRequest() (service.CreateJobRequest, error) {
	at, err := parseScheduledAt(d.ScheduledAt)
	if err != nil {
		return service.CreateJobRequest{}, err
	}
	req := service.CreateJobRequest{
		Title:       d.Title,
		Description: d.Description,
		ScheduledAt: at,
		Tasks:       make([]service.TaskTarget, 0, len(d.Tasks)),
	}
	for _, t := range d.Tasks {
		req.Tasks = append(req.Tasks, service.TaskTarget{
			VideoID:         uuid.MustParse(t.VideoID),
			SocialAccountID: uuid.MustParse(t.SocialAccountID),
		})
	}
	return req, nil
}

func (d createBatchJobDTO) toRequest() (service.BatchJobRequest, error) {
	at, err := parseScheduledAt(d.ScheduledAt)
	if err != nil {
		return service.BatchJobRequest{}, err
	}
	req := service.BatchJobRequest{
		Title:       d.BatchTitle,
		ScheduledAt: at,
		Items:       make([]service.BatchItem, 0, len(d.Jobs)),
	}
	for _, item := range d.Jobs {
		ids := make([]uuid.UUID, 0, len(item.Targets))
		for _, t := range item.Targets {
			ids = append(ids, uuid.MustParse(t.SocialAccountID))
		}
		req.Items = append(req.Items, service.BatchItem{
			VideoID:           uuid.MustParse(item.VideoID),
			SocialAccountIDs:  ids,
			CustomTitle:       item.CustomTitle,
			CustomDescription: item.CustomDescription,
		})
	}
	return req, nil
}

type videoResp struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type socialAccountResp struct {
	ID       string          `json:"id"`
	Platform entity.Platform `json:"platform"`
	Username string          `json:"username"`
}

type taskResp struct {
	ID             string            `json:"id"`
	Status         entity.TaskStatus `json:"status"`
	PlatformPostID *string           `json:"platformPostId,omitempty"`
	ErrorMessage   *string           `json:"errorMessage,omitempty"`
	Attempts       int               `json:"attempts"`
	CreatedAt      string            `json:"createdAt"`
	UpdatedAt      string            `json:"updatedAt"`
	Video          videoResp         `json:"video"`
	SocialAccount  socialAccountResp `json:"socialAccount"`
}

type jobResp struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	Status      entity.JobStatus `json:"status"`
	ScheduledAt *string          `json:"scheduledAt,omitempty"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
	Tasks       []taskResp       `json:"tasks"`
}

type jobSummaryResp struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    *string          `json:"description,omitempty"`
	Status         entity.JobStatus `json:"status"`
	ScheduledAt    *string          `json:"scheduledAt,omitempty"`
	CreatedAt      string           `json:"createdAt"`
	UpdatedAt      string           `json:"updatedAt"`
	TotalTasks     int              `json:"totalTasks"`
	CompletedTasks int              `json:"completedTasks"`
	FailedTasks    int              `json:"failedTasks"`
}

type queueStatsResp struct {
	Pending    int `json:"pending"`
	Retry      int `json:"retry"`
	DeadLetter int `json:"deadLetter"`
}

type queueStatusResp struct {
	RabbitMQ queueStatsResp `json:"rabbitmq"`
}

type batchErrorResp struct {
	Message     string    `json:"message"`
	FailedIndex int       `json:"failedIndex"`
	Jobs        []jobResp `json:"jobs"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func toJobResp(j *entity.Job) jobResp {
	resp := jobResp{
		ID:          j.ID.String(),
		Title:       j.Title,
		Description: j.Description,
		Status:      j.Status,
		ScheduledAt: formatTimePtr(j.ScheduledAt),
		CreatedAt:   formatTime(j.CreatedAt),
		UpdatedAt:   formatTime(j.UpdatedAt),
		Tasks:       make([]taskResp, 0, len(j.Tasks)),
	}
	for _, t := range j.Tasks {
		tr := taskResp{
			ID:             t.ID.String(),
			Status:         t.Status,
			PlatformPostID: t.PlatformPostID,
			ErrorMessage:   t.ErrorMessage,
			Attempts:       t.Attempts,
			CreatedAt:      formatTime(t.CreatedAt),
			UpdatedAt:      formatTime(t.UpdatedAt),
			Video:          videoResp{ID: t.VideoID.String()},
			SocialAccount:  socialAccountResp{ID: t.SocialAccountID.String()},
		}
		if t.Video != nil {
			tr.Video.Title = t.Video.Title
		}
		if t.Account != nil {
			tr.SocialAccount.Platform = t.Account.Platform
			tr.SocialAccount.Username = t.Account.AccountName
		}
		resp.Tasks = append(resp.Tasks, tr)
	}
	return resp
}

func toJobResps(jobs []*entity.Job) []jobResp {
	out := make([]jobResp, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResp(j))
	}
	return out
}

func toSummaryResp(s entity.JobSummary) jobSummaryResp {
	return jobSummaryResp{
		ID:             s.ID.String(),
		Title:          s.Title,
		Description:    s.Description,
		Status:         s.Status,
		ScheduledAt:    formatTimePtr(s.ScheduledAt),
		CreatedAt:      formatTime(s.CreatedAt),
		UpdatedAt:      formatTime(s.UpdatedAt),
		TotalTasks:     s.TotalTasks,
		CompletedTasks: s.CompletedTasks,
		FailedTasks:    s.FailedTasks,
	}
}
