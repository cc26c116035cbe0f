package cron

import (
	"context"
	"fmt"
	"time"

	"voicetask/config"
	"voicetask/models"
	"voicetask/services/tasks"
	"voicetask/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner executes every workflow that is due now.
type Runner interface {
	RunDue(ctx context.Context) ([]models.RunResult, error)
}

const batchTimeout = 10 * time.Minute

// InitWorkflowWorker starts the asynq worker and periodic scheduler that trigger scheduled
// runs. The returned func shuts both down.
func InitWorkflowWorker(ctx context.Context, runner Runner, spec string, logger *zap.Logger) (func(), error) {
	opts := utils.QueueRedisOpt()

	srv := asynq.NewServer(
		opts,
		asynq.Config{
			// One batch at a time; the driver itself runs workflows sequentially.
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRunDueWorkflows, handleRunDueTask(runner, logger))

	scheduler := asynq.NewScheduler(opts, &asynq.SchedulerOpts{Location: time.UTC})
	task, taskOpts, err := tasks.NewRunDueTask(tasks.RunDuePayload{Source: "asynq-scheduler"}, batchTimeout)
	if err != nil {
		return nil, err
	}
	entryID, err := scheduler.Register(spec, task, taskOpts...)
	if err != nil {
		return nil, fmt.Errorf("register run-due schedule %q: %w", spec, err)
	}
	logger.Info("[WorkflowWorker] run-due schedule registered", zap.String("spec", spec), zap.String("entry", entryID))

	go monitorRedisConnection(ctx, logger)

	const maxAttempts = 5
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = srv.Start(mux); err == nil {
			break
		}
		logger.Warn("[WorkflowWorker] failed to start worker",
			zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		if attempts == maxAttempts {
			return nil, fmt.Errorf("start workflow worker: %w", err)
		}
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}

	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("start run-due scheduler: %w", err)
	}
	logger.Info("[WorkflowWorker] started")

	return func() {
		scheduler.Shutdown()
		srv.Shutdown()
	}, nil
}

// StartLocalScheduler triggers the runner in-process on spec until ctx is done. Overlapping
// ticks are skipped.
func StartLocalScheduler(ctx context.Context, runner Runner, spec string, logger *zap.Logger) error {
	c := robfig.New(robfig.WithChain(robfig.SkipIfStillRunning(robfig.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		runBatch(ctx, runner, "local-scheduler", logger)
	})
	if err != nil {
		return fmt.Errorf("schedule run-due %q: %w", spec, err)
	}
	c.Start()
	logger.Info("[WorkflowScheduler] local scheduler started", zap.String("spec", spec))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}

func handleRunDueTask(runner Runner, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseRunDuePayload(task)
		if err != nil {
			logger.Error("[RunDueHandler] invalid payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		source := p.Source
		if source == "" {
			source = "asynq"
		}
		return runBatch(ctx, runner, source, logger)
	}
}

func runBatch(ctx context.Context, runner Runner, source string, logger *zap.Logger) error {
	results, err := runner.RunDue(ctx)
	if err != nil {
		logger.Error("[RunDue] batch failed", zap.String("source", source), zap.Error(err))
		return err
	}
	failed := 0
	for _, r := range results {
		if !r.Result.Success {
			failed++
		}
	}
	if len(results) > 0 {
		logger.Info("[RunDue] batch finished",
			zap.String("source", source), zap.Int("ran", len(results)), zap.Int("failed", failed))
	}
	return nil
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("[WorkflowWorker] Redis connection lost", zap.Error(err))
			}
		}
	}
}
