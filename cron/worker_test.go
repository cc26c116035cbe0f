package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"voicetask/models"
	"voicetask/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRunner struct {
	calls   atomic.Int32
	results []models.RunResult
	err     error
}

func (r *countingRunner) RunDue(context.Context) ([]models.RunResult, error) {
	r.calls.Add(1)
	return r.results, r.err
}

func TestHandleRunDueTask(t *testing.T) {
	runner := &countingRunner{results: []models.RunResult{
		{ID: "wf-1", Result: models.TaskResult{Success: true}},
		{ID: "wf-2", Result: models.TaskResult{Success: false}},
	}}
	task, _, err := tasks.NewRunDueTask(tasks.RunDuePayload{Source: "test"}, time.Minute)
	require.NoError(t, err)

	require.NoError(t, handleRunDueTask(runner, zap.NewNop())(context.Background(), task))
	assert.EqualValues(t, 1, runner.calls.Load())
}

func TestHandleRunDueTask_Errors(t *testing.T) {
	runner := &countingRunner{err: errors.New("store offline")}
	h := handleRunDueTask(runner, zap.NewNop())

	err := h(context.Background(), asynq.NewTask(tasks.TypeRunDueWorkflows, nil))
	assert.EqualError(t, err, "store offline")

	err = h(context.Background(), asynq.NewTask(tasks.TypeRunDueWorkflows, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.EqualValues(t, 1, runner.calls.Load())
}

func TestStartLocalScheduler(t *testing.T) {
	runner := &countingRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, StartLocalScheduler(ctx, runner, "@every 1s", zap.NewNop()))
	assert.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestStartLocalScheduler_BadSpec(t *testing.T) {
	err := StartLocalScheduler(context.Background(), &countingRunner{}, "every minute", zap.NewNop())
	assert.Error(t, err)
}
