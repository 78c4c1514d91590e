package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"video-publisher/internal/entity"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// UpdateStatus writes the new status and increments attempts on every call.
// A nil post id or error leaves the stored value unchanged.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, upd entity.TaskUpdate) (*entity.Task, error) {
	const q = `
UPDATE publishing_tasks
SET status = $2,
    platform_post_id = COALESCE($3, platform_post_id),
    error_message = COALESCE($4, error_message),
    attempts = attempts + 1,
    updated_at = now()
WHERE id = $1
RETURNING id, job_id, video_id, social_account_id, status, platform_post_id, error_message,
          attempts, custom_title, custom_description, created_at, updated_at;
`
	var (
		t          entity.Task
		statusText string
	)
	if err := r.pool.QueryRow(ctx, q, id, string(upd.Status), upd.PlatformPostID, upd.ErrorMessage).Scan(
		&t.ID,
		&t.JobID,
		&t.VideoID,
		&t.SocialAccountID,
		&statusText,
		&t.PlatformPostID,
		&t.ErrorMessage,
		&t.Attempts,
		&t.CustomTitle,
		&t.CustomDescription,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, classify(err)
	}
	t.Status = entity.TaskStatus(statusText)
	return &t, nil
}

func (r *TaskRepository) GetDetail(ctx context.Context, id uuid.UUID) (*entity.TaskDetail, error) {
	q := fmt.Sprintf(`
SELECT %s, j.user_id
FROM publishing_tasks t
JOIN publishing_jobs j ON j.id = t.job_id
JOIN videos v ON v.id = t.video_id
JOIN social_accounts a ON a.id = t.social_account_id
WHERE t.id = $1;
`, taskColumns)

	var userID uuid.UUID
	t, err := scanTask(r.pool.QueryRow(ctx, q, id), &userID)
	if err != nil {
		return nil, err
	}
	return &entity.TaskDetail{Task: *t, UserID: userID}, nil
}
