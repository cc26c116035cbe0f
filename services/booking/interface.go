package booking

import (
	"context"
	"time"

	"voicetask/models"
	"voicetask/services/executor"
	"voicetask/services/profile"
	"voicetask/services/provider"
	"voicetask/services/scheduler"

	"go.uber.org/zap"
)

// DefaultSessionKey is used when a caller does not identify its conversation.
const DefaultSessionKey = "default"

// Orchestrator turns classified intents into replies, one conversation per session key.
type Orchestrator interface {
	Handle(ctx context.Context, key string, intent models.Intent) (*models.Reply, error)
	Snapshot(ctx context.Context, key string) (models.DialogContext, error)
}

// DefaultOrchestrator implements the booking dialog state machine.
type DefaultOrchestrator struct {
	Store     ConversationStore
	Catalog   provider.CatalogService
	Executor  executor.Executor
	Workflows scheduler.WorkflowService
	Profiles  profile.ProfileService
	Notifier  Notifier
	Logger    *zap.Logger
	Now       func() time.Time

	SessionTTL time.Duration
	PendingTTL time.Duration
}

func (o *DefaultOrchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *DefaultOrchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *DefaultOrchestrator) sessionTTL() time.Duration {
	if o.SessionTTL <= 0 {
		return 10 * time.Minute
	}
	return o.SessionTTL
}

func (o *DefaultOrchestrator) pendingTTL() time.Duration {
	if o.PendingTTL <= 0 {
		return 5 * time.Minute
	}
	return o.PendingTTL
}

var _ Orchestrator = (*DefaultOrchestrator)(nil)
