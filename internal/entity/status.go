package entity

// TaskCounts is the tally DeriveJobStatus works from.
type TaskCounts struct {
	Total     int
	Completed int
	Failed    int
	InFlight  int
}

func CountTasks(statuses []TaskStatus) TaskCounts {
	c := TaskCounts{Total: len(statuses)}
	for _, s := range statuses {
		switch {
		case s == TaskPublished:
			c.Completed++
		case s == TaskFailed:
			c.Failed++
		case s.InFlight():
			c.InFlight++
		}
	}
	return c
}

// DeriveJobStatus maps a multiset of task statuses to the job status.
// First match wins: in-flight work, all published, all failed, otherwise mixed.
// An empty job has completed == total and derives to COMPLETED.
func DeriveJobStatus(statuses []TaskStatus) JobStatus {
	c := CountTasks(statuses)
	switch {
	case c.InFlight > 0:
		return JobProcessing
	case c.Completed == c.Total:
		return JobCompleted
	case c.Failed == c.Total:
		return JobFailed
	default:
		return JobPartiallyCompleted
	}
}
