// File: models/execution.go
package models

import "time"

// MaxExecutions bounds the execution log; the oldest entries are evicted first.
const MaxExecutions = 100

// Execution is one append-only audit entry for a workflow run or a reported result.
type Execution struct {
	ID         string    `bson:"id" json:"id"`
	WorkflowID string    `bson:"workflowId" json:"workflowId"`
	UserID     string    `bson:"userId,omitempty" json:"userId,omitempty"`
	Type       string    `bson:"type" json:"type"`
	Result     string    `bson:"result" json:"result"`
	Success    bool      `bson:"success" json:"success"`
	ExecutedAt time.Time `bson:"executedAt" json:"executedAt"`
}
