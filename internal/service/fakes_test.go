package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"video-publisher/internal/entity"
	"video-publisher/internal/queue"
	"video-publisher/internal/repository/postgresql"
)

// memDB backs fakeJobs and fakeTasks with the same in-memory rows.
type memDB struct {
	mu sync.Mutex

	jobs  map[uuid.UUID]*entity.Job
	clock time.Time

	jobStatusWrites int
	createErr       error
}

func newMemDB() *memDB {
	return &memDB{
		jobs:  map[uuid.UUID]*entity.Job{},
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func cloneJob(j *entity.Job) *entity.Job {
	cp := *j
	cp.Tasks = append([]entity.Task(nil), j.Tasks...)
	return &cp
}

func (db *memDB) job(id uuid.UUID) *entity.Job {
	db.mu.Lock()
	defer db.mu.Unlock()
	j, ok := db.jobs[id]
	if !ok {
		return nil
	}
	return cloneJob(j)
}

func (db *memDB) count() (jobs, tasks int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, j := range db.jobs {
		jobs++
		tasks += len(j.Tasks)
	}
	return jobs, tasks
}

// setTaskStatus writes a status directly, bypassing attempts accounting.
func (db *memDB) setTaskStatus(jobID uuid.UUID, idx int, status entity.TaskStatus) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.jobs[jobID].Tasks[idx].Status = status
}

func (db *memDB) setJobStatus(jobID uuid.UUID, status entity.JobStatus) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.jobs[jobID].Status = status
}

type fakeJobs struct{ db *memDB }

func (f fakeJobs) CreateWithTasks(_ context.Context, job entity.Job, tasks []entity.NewTask) (*entity.Job, error) {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.createErr != nil {
		return nil, db.createErr
	}

	now := db.tick()
	job.ID = uuid.New()
	job.Status = entity.JobPending
	job.CreatedAt, job.UpdatedAt = now, now
	for _, nt := range tasks {
		job.Tasks = append(job.Tasks, entity.Task{
			ID:                uuid.New(),
			JobID:             job.ID,
			VideoID:           nt.VideoID,
			SocialAccountID:   nt.SocialAccountID,
			Status:            entity.TaskPending,
			CustomTitle:       nt.CustomTitle,
			CustomDescription: nt.CustomDescription,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	db.jobs[job.ID] = cloneJob(&job)
	return &job, nil
}

func (f fakeJobs) GetByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	j := f.db.job(id)
	if j == nil {
		return nil, postgresql.ErrNotFound
	}
	return j, nil
}

func (f fakeJobs) GetByIDForUser(_ context.Context, userID, id uuid.UUID) (*entity.Job, error) {
	j := f.db.job(id)
	if j == nil || j.UserID != userID {
		return nil, postgresql.ErrNotFound
	}
	return j, nil
}

func (f fakeJobs) ListSummaries(_ context.Context, userID uuid.UUID) ([]entity.JobSummary, error) {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]entity.JobSummary, 0)
	for _, j := range db.jobs {
		if j.UserID != userID {
			continue
		}
		c := entity.CountTasks(j.TaskStatuses())
		out = append(out, entity.JobSummary{
			ID:             j.ID,
			Title:          j.Title,
			Status:         j.Status,
			CreatedAt:      j.CreatedAt,
			TotalTasks:     c.Total,
			CompletedTasks: c.Completed,
			FailedTasks:    c.Failed,
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (f fakeJobs) UpdateStatus(_ context.Context, id uuid.UUID, status entity.JobStatus) error {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	j, ok := db.jobs[id]
	if !ok {
		return postgresql.ErrNotFound
	}
	j.Status = status
	db.jobStatusWrites++
	return nil
}

func (f fakeJobs) Delete(_ context.Context, id uuid.UUID) error {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.jobs[id]; !ok {
		return postgresql.ErrNotFound
	}
	delete(db.jobs, id)
	return nil
}

func (f fakeJobs) ResetFailedTasks(_ context.Context, jobID uuid.UUID) (int64, error) {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	j, ok := db.jobs[jobID]
	if !ok {
		return 0, nil
	}
	var n int64
	for i := range j.Tasks {
		if j.Tasks[i].Status == entity.TaskFailed {
			j.Tasks[i].Status = entity.TaskPending
			j.Tasks[i].ErrorMessage = nil
			n++
		}
	}
	return n, nil
}

type fakeTasks struct{ db *memDB }

func (f fakeTasks) UpdateStatus(_ context.Context, id uuid.UUID, upd entity.TaskUpdate) (*entity.Task, error) {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, j := range db.jobs {
		for i := range j.Tasks {
			t := &j.Tasks[i]
			if t.ID != id {
				continue
			}
			t.Status = upd.Status
			if upd.PlatformPostID != nil {
				t.PlatformPostID = upd.PlatformPostID
			}
			if upd.ErrorMessage != nil {
				t.ErrorMessage = upd.ErrorMessage
			}
			t.Attempts++
			t.UpdatedAt = db.tick()
			cp := *t
			return &cp, nil
		}
	}
	return nil, postgresql.ErrNotFound
}

func (f fakeTasks) GetDetail(_ context.Context, id uuid.UUID) (*entity.TaskDetail, error) {
	db := f.db
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, j := range db.jobs {
		for _, t := range j.Tasks {
			if t.ID == id {
				return &entity.TaskDetail{Task: t, UserID: j.UserID}, nil
			}
		}
	}
	return nil, postgresql.ErrNotFound
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []entity.TaskMessage
	failOn   int // 1-based publish index that fails; 0 never
	err      error
}

func (p *fakePublisher) PublishTask(_ context.Context, msg entity.TaskMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn > 0 && len(p.messages)+1 == p.failOn {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakePublisher) published() []entity.TaskMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.TaskMessage(nil), p.messages...)
}

type fakeInspector struct {
	stats queue.Stats
	err   error
}

func (i fakeInspector) Stats(context.Context) (queue.Stats, error) {
	return i.stats, i.err
}
