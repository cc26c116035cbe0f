package models

import "time"

// WorkflowStatus values.
const (
	WorkflowActive = "active"
	WorkflowPaused = "paused"
)

// Workflow is a persisted recurring task definition.
// NextRun is derived from LastRun (or CreatedAt) and Interval/Schedule; only the scheduler writes it.
type Workflow struct {
	ID         string     `bson:"id" json:"id"`
	UserID     string     `bson:"userId,omitempty" json:"userId,omitempty"`
	Type       TaskKind   `bson:"type" json:"type"`
	Category   string     `bson:"category" json:"category"`
	Interval   string     `bson:"interval,omitempty" json:"interval,omitempty"` // e.g. "P3M"
	Schedule   string     `bson:"schedule,omitempty" json:"schedule,omitempty"` // 5-field cron-like
	Label      string     `bson:"label,omitempty" json:"label,omitempty"`
	LastRun    *time.Time `bson:"lastRun,omitempty" json:"lastRun"`
	NextRun    *time.Time `bson:"nextRun,omitempty" json:"nextRun"`
	Status     string     `bson:"status" json:"status"`
	LastResult *bool      `bson:"lastResult,omitempty" json:"lastResult,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	UseProfile bool       `bson:"useProfile" json:"useProfile"`
}

// RunSummary is returned after the scheduler records a run.
type RunSummary struct {
	WorkflowID string     `json:"workflowId"`
	LastRun    time.Time  `json:"lastRun"`
	NextRun    *time.Time `json:"nextRun"`
	Status     string     `json:"status"`
}

// RunResult is one entry of a scheduled-run batch.
type RunResult struct {
	ID       string     `json:"id"`
	Category string     `json:"category"`
	RanAt    time.Time  `json:"ranAt"`
	Result   TaskResult `json:"result"`
}
