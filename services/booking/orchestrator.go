package booking

import (
	"context"
	"fmt"
	"strings"

	"voicetask/models"
	"voicetask/services/scheduler"
	"voicetask/services/selection"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handle applies one intent to the conversation stored under key.
func (o *DefaultOrchestrator) Handle(ctx context.Context, key string, intent models.Intent) (*models.Reply, error) {
	if key == "" {
		key = DefaultSessionKey
	}
	now := o.now()
	conv, err := o.Store.Get(ctx, key, now)
	if err != nil {
		return nil, err
	}

	log := o.logger().With(zap.String("session", key), zap.String("intent", string(intent.Type)), zap.String("state", string(conv.State())))
	log.Debug("handling intent")

	switch intent.Type {
	case models.IntentConversation:
		return &models.Reply{Message: intent.Response, State: conv.State()}, nil
	case models.IntentSearchProviders:
		return o.search(ctx, key, conv, intent)
	case models.IntentSelectProvider:
		return o.selectProvider(ctx, conv, intent)
	case models.IntentSelectDatetime:
		return o.selectDateTime(ctx, conv, intent)
	case models.IntentConfirmAction:
		return o.confirm(ctx, key, conv, log)
	case models.IntentCancelAction:
		return o.cancel(ctx, key, conv)
	default:
		log.Warn("unhandled intent type")
		return &models.Reply{Message: msgNotUnderstood, State: conv.State()}, nil
	}
}

// Snapshot describes the live conversation for the intent classifier.
func (o *DefaultOrchestrator) Snapshot(ctx context.Context, key string) (models.DialogContext, error) {
	if key == "" {
		key = DefaultSessionKey
	}
	conv, err := o.Store.Get(ctx, key, o.now())
	if err != nil {
		return models.DialogContext{}, err
	}
	dc := models.DialogContext{State: conv.State()}
	switch {
	case conv == nil:
	case conv.Booking != nil:
		b := conv.Booking
		dc.ProviderType = b.ProviderType
		for _, p := range b.Providers {
			dc.ProviderNames = append(dc.ProviderNames, p.Name)
		}
		if b.SelectedProvider != nil {
			dc.SelectedProvider = b.SelectedProvider.Name
		}
		dc.SelectedDateTime = b.SelectedDateTime
	case conv.Pending != nil:
		task := conv.Pending.Task
		dc.PendingTask = &task
	}
	return dc, nil
}

func (o *DefaultOrchestrator) search(ctx context.Context, key string, conv *models.Conversation, intent models.Intent) (*models.Reply, error) {
	task := intent.Task
	if task == nil {
		return &models.Reply{Message: msgAskCategory, State: conv.State()}, nil
	}
	if task.Kind == models.TaskKindFormFill || task.TargetURL != "" {
		return o.stagePending(ctx, key, task)
	}
	if strings.TrimSpace(task.ProviderType) == "" {
		return &models.Reply{Message: msgAskCategory, State: conv.State()}, nil
	}

	providers, err := o.Catalog.Search(ctx, models.SearchParams{
		Category: task.ProviderType,
		Query:    task.SearchQuery,
		Location: task.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("search providers: %w", err)
	}
	if len(providers) == 0 {
		// An existing conversation is left untouched.
		return &models.Reply{Message: noProvidersMessage(task.ProviderType), State: conv.State()}, nil
	}

	now := o.now()
	session := &models.BookingSession{
		ID:           uuid.New().String(),
		State:        models.StateProvidersListed,
		ProviderType: task.ProviderType,
		Providers:    providers,
		UseProfile:   task.WantsProfile(),
		Recurrence:   recurrenceOf(task),
		CreatedAt:    now,
		ExpiresAt:    now.Add(o.sessionTTL()),
	}
	if err := o.Store.Put(ctx, models.Conversation{Key: key, Kind: models.KindBooking, Booking: session}); err != nil {
		return nil, err
	}

	return &models.Reply{
		Message:   providersMessage(task.ProviderType, providers),
		State:     session.State,
		Providers: providers,
	}, nil
}

func (o *DefaultOrchestrator) selectProvider(ctx context.Context, conv *models.Conversation, intent models.Intent) (*models.Reply, error) {
	session := bookingOf(conv)
	if session == nil || len(session.Providers) == 0 {
		return &models.Reply{Message: msgNoProviderList, State: conv.State()}, nil
	}
	if session.State != models.StateProvidersListed {
		return &models.Reply{
			Message:          fmt.Sprintf("You already chose %s. Say cancel to start over.", session.SelectedProvider.Name),
			State:            session.State,
			SelectedProvider: session.SelectedProvider,
		}, nil
	}

	sel := intent.Selection
	if sel == nil && intent.Task != nil && intent.Task.ProviderID != "" {
		for i, p := range session.Providers {
			if p.ID == intent.Task.ProviderID {
				sel = models.SelectNumber(i + 1)
				break
			}
		}
	}
	chosen, ok := selection.ResolveProvider(session.Providers, sel)
	if !ok {
		return &models.Reply{
			Message:   selectionMissMessage(sel, session.Providers),
			State:     session.State,
			Providers: session.Providers,
		}, nil
	}

	session.SelectedProvider = chosen
	session.AvailableSlots = o.Catalog.AvailableSlots(*chosen)
	session.SelectedDateTime = nil
	session.State = models.StateProviderSelected
	if err := o.save(ctx, conv); err != nil {
		return nil, err
	}

	return &models.Reply{
		Message:          providerSelectedMessage(chosen, session.AvailableSlots),
		State:            session.State,
		SelectedProvider: chosen,
		AvailableSlots:   session.AvailableSlots,
	}, nil
}

func (o *DefaultOrchestrator) selectDateTime(ctx context.Context, conv *models.Conversation, intent models.Intent) (*models.Reply, error) {
	session := bookingOf(conv)
	if session == nil || session.SelectedProvider == nil {
		return &models.Reply{Message: msgPickTimeFirst, State: conv.State()}, nil
	}

	var preference, timeSlot string
	if intent.Selection != nil {
		preference = intent.Selection.String()
	}
	if intent.Task != nil {
		if preference == "" {
			preference = intent.Task.DatetimePreference
		}
		timeSlot = intent.Task.TimeSlot
	}

	picked, ok := selection.ResolveDateTime(session.AvailableSlots, preference, timeSlot, o.now())
	if !ok {
		return &models.Reply{
			Message:          fmt.Sprintf("%s has no free times right now. Say cancel to pick someone else.", session.SelectedProvider.Name),
			State:            session.State,
			SelectedProvider: session.SelectedProvider,
		}, nil
	}

	session.SelectedDateTime = &picked
	session.State = models.StateTimeSelected
	if err := o.save(ctx, conv); err != nil {
		return nil, err
	}

	return &models.Reply{
		Message:          timeSelectedMessage(session.SelectedProvider, picked),
		State:            session.State,
		SelectedProvider: session.SelectedProvider,
		SelectedDateTime: &picked,
	}, nil
}

func (o *DefaultOrchestrator) confirm(ctx context.Context, key string, conv *models.Conversation, log *zap.Logger) (*models.Reply, error) {
	switch {
	case conv == nil:
		return &models.Reply{Message: msgNothingToConfirm, State: models.StateEmpty}, nil
	case conv.Kind == models.KindPendingAction && conv.Pending != nil:
		return o.confirmPending(ctx, key, conv.Pending, log)
	case conv.Kind == models.KindBooking && conv.Booking != nil && conv.Booking.State == models.StateTimeSelected:
		return o.confirmBooking(ctx, key, conv.Booking, log)
	}
	return &models.Reply{Message: msgNothingToConfirm, State: conv.State()}, nil
}

func (o *DefaultOrchestrator) confirmBooking(ctx context.Context, key string, session *models.BookingSession, log *zap.Logger) (*models.Reply, error) {
	p := session.SelectedProvider
	task := models.Task{
		Kind:         models.TaskKindBooking,
		ProviderType: session.ProviderType,
		ProviderID:   p.ID,
		ProviderName: p.Name,
		Date:         session.SelectedDateTime.Date,
		Time:         session.SelectedDateTime.Time,
		UseProfile:   session.UseProfile,
	}
	if session.Recurrence != nil {
		task.Label = session.Recurrence.Label
	}

	res, err := o.Executor.Execute(ctx, task)
	if err != nil {
		res = models.FailedResult("Booking failed", err)
	}
	if !res.Success {
		log.Warn("booking failed, session kept for retry", zap.String("provider", p.ID), zap.String("error", res.Error))
		return &models.Reply{
			Message:          bookingFailedMessage(res),
			State:            models.StateTimeSelected,
			SelectedProvider: p,
			SelectedDateTime: session.SelectedDateTime,
			Result:           &res,
		}, nil
	}

	log.Info("booking confirmed", zap.String("provider", p.ID))

	reply := &models.Reply{
		Message:          res.Message + ".",
		State:            models.StateEmpty,
		SelectedProvider: p,
		SelectedDateTime: session.SelectedDateTime,
		Result:           &res,
	}
	if res.ConfirmationText != "" {
		reply.Message += " " + res.ConfirmationText
	}
	if warning := o.retire(ctx, key, log); warning != "" {
		reply.Warnings = append(reply.Warnings, warning)
	}

	if session.Recurrence != nil {
		w, err := o.createWorkflow(ctx, task, session.Recurrence)
		if err != nil {
			log.Error("booking succeeded but the repeat could not be scheduled", zap.Error(err))
			reply.Warnings = append(reply.Warnings, "repeat not scheduled: "+err.Error())
		} else {
			reply.Workflow = w
			reply.Message += " " + workflowMessage(w)
		}
	}

	if warning := o.notifyCalendar(ctx, p, *session.SelectedDateTime, res, log); warning != "" {
		reply.Warnings = append(reply.Warnings, warning)
	}
	return reply, nil
}

func (o *DefaultOrchestrator) confirmPending(ctx context.Context, key string, pending *models.PendingAction, log *zap.Logger) (*models.Reply, error) {
	if pending.Recurrence != nil {
		w, err := o.createWorkflow(ctx, pending.Task, pending.Recurrence)
		if err != nil {
			return nil, err
		}
		reply := &models.Reply{Message: "Done. " + workflowMessage(w), State: models.StateEmpty, Workflow: w}
		if warning := o.retire(ctx, key, log); warning != "" {
			reply.Warnings = append(reply.Warnings, warning)
		}
		return reply, nil
	}

	res, err := o.Executor.Execute(ctx, pending.Task)
	if err != nil {
		res = models.FailedResult("Task failed", err)
	}
	if !res.Success {
		log.Warn("pending action failed, kept for retry", zap.String("error", res.Error))
		return &models.Reply{
			Message: bookingFailedMessage(res),
			State:   models.StatePendingConfirmation,
			Result:  &res,
		}, nil
	}

	msg := res.Message + "."
	if res.ConfirmationText != "" {
		msg += " " + res.ConfirmationText
	}
	reply := &models.Reply{Message: msg, State: models.StateEmpty, Result: &res}
	if warning := o.retire(ctx, key, log); warning != "" {
		reply.Warnings = append(reply.Warnings, warning)
	}
	return reply, nil
}

// retire ends a conversation whose action already ran. The action is never undone, so a store
// failure here must not surface as an error: when Delete fails the entry is overwritten with a
// conversation that is already expired, and only if that fails too is a warning returned.
func (o *DefaultOrchestrator) retire(ctx context.Context, key string, log *zap.Logger) string {
	err := o.Store.Delete(ctx, key)
	if err == nil {
		return ""
	}
	log.Error("could not remove finished conversation", zap.String("key", key), zap.Error(err))
	if putErr := o.Store.Put(ctx, models.Conversation{Key: key}); putErr != nil {
		log.Error("could not expire finished conversation", zap.String("key", key), zap.Error(putErr))
		return "conversation not cleared: " + err.Error()
	}
	return ""
}

func (o *DefaultOrchestrator) cancel(ctx context.Context, key string, conv *models.Conversation) (*models.Reply, error) {
	if conv == nil {
		return &models.Reply{Message: msgNothingToCancel, State: models.StateEmpty}, nil
	}
	if err := o.Store.Delete(ctx, key); err != nil {
		return nil, err
	}
	return &models.Reply{Message: msgCancelled, State: models.StateEmpty}, nil
}

func (o *DefaultOrchestrator) stagePending(ctx context.Context, key string, it *models.IntentTask) (*models.Reply, error) {
	now := o.now()
	task := models.Task{
		Kind:               models.TaskKindFormFill,
		ProviderType:       it.ProviderType,
		TargetURL:          it.TargetURL,
		ProviderID:         it.ProviderID,
		DatetimePreference: it.DatetimePreference,
		UseProfile:         it.WantsProfile(),
		Label:              it.Label,
	}
	pending := &models.PendingAction{
		ID:         uuid.New().String(),
		Task:       task,
		Recurrence: recurrenceOf(it),
		CreatedAt:  now,
		ExpiresAt:  now.Add(o.pendingTTL()),
	}
	if err := o.Store.Put(ctx, models.Conversation{Key: key, Kind: models.KindPendingAction, Pending: pending}); err != nil {
		return nil, err
	}
	return &models.Reply{Message: pendingMessage(task, pending.Recurrence), State: models.StatePendingConfirmation}, nil
}

func (o *DefaultOrchestrator) createWorkflow(ctx context.Context, task models.Task, rec *models.Recurrence) (*models.Workflow, error) {
	if o.Workflows == nil {
		return nil, fmt.Errorf("recurring tasks are not enabled")
	}
	category := task.ProviderType
	if category == "" {
		category = task.TargetURL
	}
	return o.Workflows.Create(ctx, scheduler.CreateParams{
		Type:       task.Kind,
		Category:   category,
		Interval:   rec.Interval,
		Schedule:   rec.Schedule,
		Label:      rec.Label,
		UseProfile: task.UseProfile,
	})
}

// notifyCalendar offers the appointment to the user's calendar when a profile exists. Failures
// come back as a warning string and are otherwise ignored.
func (o *DefaultOrchestrator) notifyCalendar(ctx context.Context, p *models.Provider, dt models.SelectedDateTime, res models.TaskResult, log *zap.Logger) string {
	if o.Notifier == nil || o.Profiles == nil {
		return ""
	}
	prof, err := o.Profiles.GetProfile(ctx)
	if err != nil || !prof.IsComplete() {
		return ""
	}
	err = o.Notifier.Notify(ctx, CalendarEvent{
		Title:        "Appointment at " + p.Name,
		ProviderID:   p.ID,
		ProviderName: p.Name,
		Address:      strings.TrimSpace(p.Address + ", " + p.City),
		Date:         dt.Date,
		Time:         dt.Time,
		Attendee:     prof.Name,
		Email:        prof.Email,
		Confirmation: res.ConfirmationText,
	})
	if err != nil {
		log.Warn("calendar notification failed", zap.Error(err))
		return "calendar not updated: " + err.Error()
	}
	return ""
}

// save refreshes the expiry of a mutated booking session and stores it.
func (o *DefaultOrchestrator) save(ctx context.Context, conv *models.Conversation) error {
	conv.Booking.ExpiresAt = o.now().Add(o.sessionTTL())
	return o.Store.Put(ctx, *conv)
}

func bookingOf(conv *models.Conversation) *models.BookingSession {
	if conv == nil || conv.Kind != models.KindBooking {
		return nil
	}
	return conv.Booking
}

func recurrenceOf(t *models.IntentTask) *models.Recurrence {
	if t == nil || (!t.Recurring && t.Interval == "" && t.Schedule == "") {
		return nil
	}
	rec := &models.Recurrence{Interval: t.Interval, Schedule: t.Schedule, Label: t.Label}
	if rec.Interval == "" && rec.Schedule == "" {
		rec.Interval = "P3M"
	}
	return rec
}
