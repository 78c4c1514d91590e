package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"video-publisher/internal/entity"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

// CreateWithTasks inserts the job and its tasks in one transaction and returns
// the job with tasks, video and account display fields loaded.
func (r *JobRepository) CreateWithTasks(ctx context.Context, job entity.Job, tasks []entity.NewTask) (*entity.Job, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const qJob = `
INSERT INTO publishing_jobs (user_id, title, description, scheduled_at, status)
VALUES ($1, $2, $3, $4, 'PENDING')
RETURNING id, status, created_at, updated_at;
`
	var status string
	if err := tx.QueryRow(ctx, qJob, job.UserID, job.Title, job.Description, job.ScheduledAt).Scan(
		&job.ID,
		&status,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, classify(err)
	}
	job.Status = entity.JobStatus(status)

	const qTask = `
INSERT INTO publishing_tasks (job_id, video_id, social_account_id, status, custom_title, custom_description)
VALUES ($1, $2, $3, 'PENDING', $4, $5);
`
	batch := &pgx.Batch{}
	for _, t := range tasks {
		batch.Queue(qTask, job.ID, t.VideoID, t.SocialAccountID, t.CustomTitle, t.CustomDescription)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, classify(err)
	}

	job.Tasks, err = listTasks(ctx, tx, job.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	const q = `
SELECT id, user_id, title, description, scheduled_at, status, created_at, updated_at
FROM publishing_jobs
WHERE id = $1;
`
	return r.get(ctx, q, id)
}

// GetByIDForUser is GetByID restricted to jobs owned by userID.
func (r *JobRepository) GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*entity.Job, error) {
	const q = `
SELECT id, user_id, title, description, scheduled_at, status, created_at, updated_at
FROM publishing_jobs
WHERE id = $1 AND user_id = $2;
`
	return r.get(ctx, q, id, userID)
}

func (r *JobRepository) get(ctx context.Context, q string, args ...any) (*entity.Job, error) {
	var (
		job        entity.Job
		statusText string
	)
	if err := r.pool.QueryRow(ctx, q, args...).Scan(
		&job.ID,
		&job.UserID,
		&job.Title,
		&job.Description, // NULL => nil
		&job.ScheduledAt,
		&statusText,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, classify(err)
	}
	job.Status = entity.JobStatus(statusText)

	tasks, err := listTasks(ctx, r.pool, job.ID)
	if err != nil {
		return nil, err
	}
	job.Tasks = tasks
	return &job, nil
}

// ListSummaries returns the user's jobs, newest first, with per-status task counts.
func (r *JobRepository) ListSummaries(ctx context.Context, userID uuid.UUID) ([]entity.JobSummary, error) {
	const q = `
SELECT j.id, j.title, j.description, j.status, j.scheduled_at, j.created_at, j.updated_at,
       count(t.id),
       count(t.id) FILTER (WHERE t.status = 'PUBLISHED'),
       count(t.id) FILTER (WHERE t.status = 'FAILED')
FROM publishing_jobs j
LEFT JOIN publishing_tasks t ON t.job_id = j.id
WHERE j.user_id = $1
GROUP BY j.id
ORDER BY j.created_at DESC;
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.JobSummary, 0)
	for rows.Next() {
		var (
			s          entity.JobSummary
			statusText string
		)
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.Description,
			&statusText,
			&s.ScheduledAt,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.TotalTasks,
			&s.CompletedTasks,
			&s.FailedTasks,
		); err != nil {
			return nil, err
		}
		s.Status = entity.JobStatus(statusText)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error {
	const q = `UPDATE publishing_jobs SET status=$2, updated_at=now() WHERE id=$1;`

	tag, err := r.pool.Exec(ctx, q, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the job; its tasks go with it through the FK cascade.
func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM publishing_jobs WHERE id=$1;`

	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetFailedTasks moves every FAILED task of the job back to PENDING and
// clears its error. It returns the number of tasks reset.
func (r *JobRepository) ResetFailedTasks(ctx context.Context, jobID uuid.UUID) (int64, error) {
	const q = `
UPDATE publishing_tasks
SET status='PENDING', error_message=NULL, updated_at=now()
WHERE job_id=$1 AND status='FAILED';
`
	tag, err := r.pool.Exec(ctx, q, jobID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const taskColumns = `
t.id, t.job_id, t.video_id, t.social_account_id, t.status, t.platform_post_id, t.error_message,
t.attempts, t.custom_title, t.custom_description, t.created_at, t.updated_at,
v.title, v.original_file_name, v.file_path, v.description,
a.platform, a.account_name
`

func listTasks(ctx context.Context, db querier, jobID uuid.UUID) ([]entity.Task, error) {
	q := fmt.Sprintf(`
SELECT %s
FROM publishing_tasks t
JOIN videos v ON v.id = t.video_id
JOIN social_accounts a ON a.id = t.social_account_id
WHERE t.job_id = $1
ORDER BY t.created_at, t.id;
`, taskColumns)

	rows, err := db.Query(ctx, q, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row, extra ...any) (*entity.Task, error) {
	var (
		t          entity.Task
		statusText string
		video      entity.VideoRef
		account    entity.AccountRef
		platform   string
	)
	dest := []any{
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
		&video.Title,
		&video.OriginalFileName,
		&video.FilePath,
		&video.Description,
		&platform,
		&account.AccountName,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, classify(err)
	}

	t.Status = entity.TaskStatus(statusText)
	video.ID = t.VideoID
	account.ID = t.SocialAccountID
	account.Platform = entity.Platform(platform)
	t.Video = &video
	t.Account = &account
	return &t, nil
}
