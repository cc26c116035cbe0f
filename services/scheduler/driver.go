package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voicetask/models"
	"voicetask/services/executor"

	"go.uber.org/zap"
)

// Driver runs due workflows through the executor. It is triggered externally.
type Driver struct {
	Workflows WorkflowService
	Executor  executor.Executor
	Logger    *zap.Logger
	Now       func() time.Time
}

func (d *Driver) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RunDue executes every workflow due at the moment of the call, one after another. A failing
// workflow yields a failed result and its schedule still advances. Only listing the due
// workflows can fail the batch.
func (d *Driver) RunDue(ctx context.Context) ([]models.RunResult, error) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	now := d.now()
	due, err := d.Workflows.DueWorkflows(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list due workflows: %w", err)
	}
	if len(due) > 0 {
		log.Info("running due workflows", zap.Int("count", len(due)))
	}

	results := make([]models.RunResult, 0, len(due))
	for _, w := range due {
		res := d.runOne(ctx, w, log)
		ranAt := d.now()

		summary := res.Message
		if res.ConfirmationText != "" {
			summary = res.ConfirmationText
		}
		if res.Error != "" {
			summary = res.Message + ": " + res.Error
		}
		if _, err := d.Workflows.MarkRun(ctx, w.ID, ranAt, res.Success, summary); err != nil {
			log.Warn("failed to record workflow run", zap.String("workflowId", w.ID), zap.Error(err))
		}

		results = append(results, models.RunResult{ID: w.ID, Category: w.Category, RanAt: ranAt, Result: res})
	}
	return results, nil
}

func (d *Driver) runOne(ctx context.Context, w models.Workflow, log *zap.Logger) (res models.TaskResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("workflow run panicked", zap.String("workflowId", w.ID), zap.Any("panic", r))
			res = models.FailedResult("Scheduled run failed", fmt.Errorf("panic: %v", r))
		}
	}()

	res, err := d.Executor.Execute(ctx, taskFor(w))
	if err != nil {
		log.Warn("scheduled run failed", zap.String("workflowId", w.ID), zap.Error(err))
		return models.FailedResult("Scheduled run failed", err)
	}
	return res
}

func taskFor(w models.Workflow) models.Task {
	t := models.Task{
		Kind:         w.Type,
		ProviderType: w.Category,
		UseProfile:   w.UseProfile,
		Label:        w.Label,
	}
	if w.Type == models.TaskKindFormFill && strings.HasPrefix(w.Category, "http") {
		t.ProviderType = ""
		t.TargetURL = w.Category
	}
	return t
}
