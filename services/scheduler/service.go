package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	recordsRepo "voicetask/database/repository/records"
	workflowRepo "voicetask/database/repository/workflow"
	"voicetask/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrMissingSchedule  = errors.New("an interval or a schedule is required")
	ErrMissingCategory  = errors.New("a category is required")
	ErrInvalidStatus    = errors.New("status must be active or paused")
)

// CreateParams describes a new recurring task.
type CreateParams struct {
	UserID     string          `json:"userId"`
	Type       models.TaskKind `json:"type"`
	Category   string          `json:"category"`
	Interval   string          `json:"interval"`
	Schedule   string          `json:"schedule"`
	Label      string          `json:"label"`
	UseProfile bool            `json:"useProfile"`
}

// ReportParams is a manually reported execution result.
type ReportParams struct {
	WorkflowID string `json:"workflowId"`
	UserID     string `json:"userId"`
	Type       string `json:"type"`
	Result     string `json:"result"`
	Success    bool   `json:"success"`
}

// WorkflowService stores recurring tasks and decides when they run.
type WorkflowService interface {
	Create(ctx context.Context, params CreateParams) (*models.Workflow, error)
	Get(ctx context.Context, id string) (*models.Workflow, error)
	List(ctx context.Context) ([]models.Workflow, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status string) (*models.Workflow, error)
	DueWorkflows(ctx context.Context, now time.Time) ([]models.Workflow, error)
	MarkRun(ctx context.Context, id string, executedAt time.Time, success bool, result string) (*models.RunSummary, error)
	ReportExecution(ctx context.Context, params ReportParams) (*models.Execution, error)
	Executions(ctx context.Context, limit int) ([]models.Execution, error)
	WorkflowExecutions(ctx context.Context, id string) ([]models.Execution, error)
}

// DefaultWorkflowService persists workflows and their execution log.
type DefaultWorkflowService struct {
	Workflows workflowRepo.WorkflowRepository
	Records   recordsRepo.ExecutionRepository
	Logger    *zap.Logger
	Now       func() time.Time
}

func (s *DefaultWorkflowService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultWorkflowService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultWorkflowService) Create(ctx context.Context, params CreateParams) (*models.Workflow, error) {
	params.Interval = strings.TrimSpace(params.Interval)
	params.Schedule = strings.TrimSpace(params.Schedule)
	params.Category = strings.TrimSpace(params.Category)
	if params.Interval == "" && params.Schedule == "" {
		return nil, ErrMissingSchedule
	}
	if params.Category == "" {
		return nil, ErrMissingCategory
	}
	if params.Type == "" {
		params.Type = models.TaskKindBooking
	}

	now := s.now()
	w := models.Workflow{
		ID:         uuid.New().String(),
		UserID:     params.UserID,
		Type:       params.Type,
		Category:   params.Category,
		Interval:   params.Interval,
		Schedule:   params.Schedule,
		Label:      params.Label,
		Status:     models.WorkflowActive,
		CreatedAt:  now,
		UseProfile: params.UseProfile,
	}
	next := s.nextRun(w, now, now)
	w.NextRun = &next

	if err := s.Workflows.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}
	s.logger().Info("workflow created",
		zap.String("workflowId", w.ID),
		zap.String("category", w.Category),
		zap.Time("nextRun", next))
	return &w, nil
}

func (s *DefaultWorkflowService) Get(ctx context.Context, id string) (*models.Workflow, error) {
	w, err := s.Workflows.GetByID(ctx, id)
	if errors.Is(err, workflowRepo.ErrNotFound) {
		return nil, ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load workflow %s: %w", id, err)
	}
	return w, nil
}

func (s *DefaultWorkflowService) List(ctx context.Context) ([]models.Workflow, error) {
	all, err := s.Workflows.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	return all, nil
}

func (s *DefaultWorkflowService) Delete(ctx context.Context, id string) error {
	err := s.Workflows.Delete(ctx, id)
	if errors.Is(err, workflowRepo.ErrNotFound) {
		return ErrWorkflowNotFound
	}
	if err != nil {
		return fmt.Errorf("delete workflow %s: %w", id, err)
	}
	s.logger().Info("workflow deleted", zap.String("workflowId", id))
	return nil
}

// SetStatus pauses or resumes a workflow. Paused workflows are never due.
func (s *DefaultWorkflowService) SetStatus(ctx context.Context, id, status string) (*models.Workflow, error) {
	if status != models.WorkflowActive && status != models.WorkflowPaused {
		return nil, ErrInvalidStatus
	}
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Status = status
	if err := s.Workflows.Update(ctx, *w); err != nil {
		return nil, fmt.Errorf("update workflow %s: %w", id, err)
	}
	return w, nil
}

// IsDue reports whether w should run at now: nextRun has passed, or the workflow never ran,
// or the interval since lastRun has elapsed.
func IsDue(w models.Workflow, now time.Time) bool {
	if w.NextRun != nil {
		return !now.Before(*w.NextRun)
	}
	if w.LastRun == nil {
		return true
	}
	period, _ := ParseInterval(w.Interval)
	return !now.Before(w.LastRun.Add(period))
}

// DueWorkflows returns active due workflows in storage order.
func (s *DefaultWorkflowService) DueWorkflows(ctx context.Context, now time.Time) ([]models.Workflow, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	due := make([]models.Workflow, 0, len(all))
	for _, w := range all {
		if w.Status == models.WorkflowPaused {
			continue
		}
		if IsDue(w, now) {
			due = append(due, w)
		}
	}
	return due, nil
}

// MarkRun records a run at executedAt, recomputes nextRun and appends to the execution log.
func (s *DefaultWorkflowService) MarkRun(ctx context.Context, id string, executedAt time.Time, success bool, result string) (*models.RunSummary, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := s.nextRun(*w, executedAt, executedAt)
	w.LastRun = &executedAt
	w.NextRun = &next
	w.LastResult = &success
	if err := s.Workflows.Update(ctx, *w); err != nil {
		if errors.Is(err, workflowRepo.ErrNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("update workflow %s: %w", id, err)
	}

	if _, err := s.Records.Append(ctx, models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: w.ID,
		UserID:     w.UserID,
		Type:       string(w.Type),
		Result:     result,
		Success:    success,
		ExecutedAt: executedAt,
	}); err != nil {
		return nil, fmt.Errorf("record execution for %s: %w", id, err)
	}

	return &models.RunSummary{
		WorkflowID: w.ID,
		LastRun:    executedAt,
		NextRun:    w.NextRun,
		Status:     w.Status,
	}, nil
}

// ReportExecution appends an externally reported result without touching the schedule.
func (s *DefaultWorkflowService) ReportExecution(ctx context.Context, params ReportParams) (*models.Execution, error) {
	exec := models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: params.WorkflowID,
		UserID:     params.UserID,
		Type:       params.Type,
		Result:     params.Result,
		Success:    params.Success,
		ExecutedAt: s.now(),
	}
	if params.WorkflowID != "" {
		w, err := s.Get(ctx, params.WorkflowID)
		if err != nil {
			return nil, err
		}
		if exec.UserID == "" {
			exec.UserID = w.UserID
		}
		if exec.Type == "" {
			exec.Type = string(w.Type)
		}
	}
	if _, err := s.Records.Append(ctx, exec); err != nil {
		return nil, fmt.Errorf("record execution: %w", err)
	}
	return &exec, nil
}

func (s *DefaultWorkflowService) Executions(ctx context.Context, limit int) ([]models.Execution, error) {
	if limit <= 0 || limit > models.MaxExecutions {
		limit = models.MaxExecutions
	}
	return s.Records.List(ctx, limit)
}

func (s *DefaultWorkflowService) WorkflowExecutions(ctx context.Context, id string) ([]models.Execution, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.Records.ListByWorkflow(ctx, id)
}

// nextRun applies schedule over interval over the default period. Unusable values fall back
// with a warning.
func (s *DefaultWorkflowService) nextRun(w models.Workflow, from, now time.Time) time.Time {
	log := s.logger().With(zap.String("workflowId", w.ID))
	if w.Schedule != "" {
		next, err := NextCronRun(w.Schedule, from, now)
		if err == nil {
			return next
		}
		log.Warn("malformed schedule, falling back to default period",
			zap.String("schedule", w.Schedule), zap.Error(err))
		return now.Add(DefaultPeriod)
	}
	if w.Interval != "" {
		period, ok := ParseInterval(w.Interval)
		if !ok {
			log.Warn("unknown interval, falling back to default period", zap.String("interval", w.Interval))
		}
		return from.Add(period)
	}
	return from.Add(DefaultPeriod)
}

var _ WorkflowService = (*DefaultWorkflowService)(nil)
