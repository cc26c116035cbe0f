package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeRunDueWorkflows = "workflow:run-due"

// RunDuePayload identifies what fired a scheduled-run batch.
type RunDuePayload struct {
	Source      string    `json:"source"`
	TriggeredAt time.Time `json:"triggeredAt"`
}

// NewRunDueTask builds the periodic batch task. Retries are off: the next tick picks up
// anything still due, and a retried batch could book twice.
func NewRunDueTask(payload RunDuePayload, timeout time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeRunDueWorkflows, b)
	opts := []asynq.Option{asynq.MaxRetry(0)}
	if timeout > 0 {
		opts = append(opts, asynq.Timeout(timeout), asynq.Unique(timeout))
	}

	return task, opts, nil
}

// ParseRunDuePayload tolerates an empty payload, which the scheduler may send.
func ParseRunDuePayload(task *asynq.Task) (RunDuePayload, error) {
	var p RunDuePayload
	if len(task.Payload()) == 0 {
		return p, nil
	}
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
