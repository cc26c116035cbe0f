package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voicetask/models"
	"voicetask/services/profile"
	"voicetask/services/provider"
	"voicetask/services/selection"

	"go.uber.org/zap"
)

// DefaultExecutor resolves a task against the catalog and profile and dispatches it to an Automation.
type DefaultExecutor struct {
	Profiles   profile.ProfileService
	Catalog    provider.CatalogService
	Automation Automation
	Logger     *zap.Logger
	Timeout    time.Duration
	Now        func() time.Time
}

func (e *DefaultExecutor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *DefaultExecutor) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Execute dispatches on task kind. A task without a kind but with a target URL is a legacy form fill.
func (e *DefaultExecutor) Execute(ctx context.Context, task models.Task) (models.TaskResult, error) {
	kind := task.Kind
	if kind == "" {
		if task.TargetURL != "" {
			kind = models.TaskKindFormFill
		} else {
			kind = models.TaskKindBooking
		}
	}

	var prof *models.Profile
	if task.UseProfile {
		p, err := e.Profiles.GetProfile(ctx)
		if err != nil {
			return models.TaskResult{}, fmt.Errorf("executor: load profile: %w", err)
		}
		prof = p
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	log := e.logger().With(zap.String("kind", string(kind)), zap.String("category", task.ProviderType))
	log.Info("executing task")

	switch kind {
	case models.TaskKindBooking:
		return e.book(ctx, task, prof, log), nil
	case models.TaskKindFormFill:
		return e.fillForm(ctx, task, prof, log), nil
	default:
		log.Warn("no automation for task kind")
		return models.FailedResult("This kind of task is not supported", fmt.Errorf("%w: %q", ErrUnknownKind, kind)), nil
	}
}

func (e *DefaultExecutor) book(ctx context.Context, task models.Task, prof *models.Profile, log *zap.Logger) models.TaskResult {
	p, err := e.resolveProvider(ctx, task)
	if err != nil {
		return models.FailedResult("No provider available to book", err)
	}

	date, clock := task.Date, task.Time
	if date == "" || clock == "" {
		picked, ok := selection.ResolveDateTime(e.Catalog.AvailableSlots(*p), task.DatetimePreference, clock, e.now())
		if !ok {
			return models.FailedResult(fmt.Sprintf("%s has no available times", p.Name), errors.New("no available slots"))
		}
		date, clock = picked.Date, picked.Time
	}

	out, err := e.Automation.Book(ctx, Request{
		Kind:     models.TaskKindBooking,
		URL:      p.BookingURL,
		Provider: p,
		Date:     date,
		Time:     clock,
		Label:    task.Label,
		Profile:  prof,
	})
	if err != nil {
		log.Warn("booking automation failed", zap.String("provider", p.ID), zap.Error(err))
		return models.FailedResult(fmt.Sprintf("Booking at %s could not be completed", p.Name), err)
	}

	log.Info("booking completed", zap.String("provider", p.ID), zap.String("date", date), zap.String("time", clock))
	return models.TaskResult{
		Success:          true,
		Message:          fmt.Sprintf("Booked %s on %s at %s", p.Name, date, clock),
		ConfirmationText: out.ConfirmationText,
	}
}

func (e *DefaultExecutor) fillForm(ctx context.Context, task models.Task, prof *models.Profile, log *zap.Logger) models.TaskResult {
	url := task.TargetURL
	var p *models.Provider
	if url == "" {
		resolved, err := e.resolveProvider(ctx, task)
		if err != nil {
			return models.FailedResult("No form to fill", err)
		}
		p, url = resolved, resolved.BookingURL
	}
	if !prof.IsComplete() {
		return models.FailedResult("Your profile is incomplete", errors.New("name and email are required to fill a form"))
	}

	out, err := e.Automation.FillForm(ctx, Request{
		Kind:     models.TaskKindFormFill,
		URL:      url,
		Provider: p,
		Label:    task.Label,
		Profile:  prof,
	})
	if err != nil {
		log.Warn("form automation failed", zap.String("url", url), zap.Error(err))
		return models.FailedResult("The form could not be submitted", err)
	}
	return models.TaskResult{
		Success:          true,
		Message:          "Form submitted",
		ConfirmationText: out.ConfirmationText,
	}
}

// resolveProvider prefers an explicit provider ID and otherwise takes the best match for the category.
func (e *DefaultExecutor) resolveProvider(ctx context.Context, task models.Task) (*models.Provider, error) {
	if task.ProviderID != "" {
		if p, ok := e.Catalog.FindByID(task.ProviderID); ok {
			return p, nil
		}
		return nil, fmt.Errorf("provider %s not found", task.ProviderID)
	}
	if task.ProviderType == "" {
		return nil, errors.New("task names neither a provider nor a category")
	}
	found, err := e.Catalog.Search(ctx, models.SearchParams{Category: task.ProviderType})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", task.ProviderType, err)
	}
	p, ok := selection.ResolveProvider(found, models.SelectText("beste"))
	if !ok {
		return nil, fmt.Errorf("no %s found", task.ProviderType)
	}
	return p, nil
}
