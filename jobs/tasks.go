package jobs

import "github.com/hibiken/asynq"

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDatasetRefresh reloads the record snapshot from the upstream feed.
	TaskDatasetRefresh = "dataset:refresh"
	// TaskSpendRefresh recomputes the month-to-date spend summary.
	TaskSpendRefresh = "spend:refresh"
)

// NewDatasetRefreshTask constructs a dataset refresh task. The task carries
// no payload; the worker always reloads the full feed.
func NewDatasetRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskDatasetRefresh, nil)
}

// NewSpendRefreshTask constructs a spend summary refresh task.
func NewSpendRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskSpendRefresh, nil)
}
