package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	profileRepo "voicetask/database/repository/profile"
	recordsRepo "voicetask/database/repository/records"
	workflowRepo "voicetask/database/repository/workflow"
	"voicetask/models"
	"voicetask/services/profile"
	"voicetask/services/provider"
	"voicetask/services/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var t0 = time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)

type fakeExecutor struct {
	calls  []models.Task
	result models.TaskResult
	err    error
}

func (f *fakeExecutor) Execute(_ context.Context, task models.Task) (models.TaskResult, error) {
	f.calls = append(f.calls, task)
	return f.result, f.err
}

type fakeNotifier struct {
	events []CalendarEvent
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, e CalendarEvent) error {
	f.events = append(f.events, e)
	return f.err
}

type harness struct {
	orch     *DefaultOrchestrator
	store    *MemoryStore
	exec     *fakeExecutor
	notifier *fakeNotifier
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	wf, err := workflowRepo.NewFileWorkflowRepo(dir)
	require.NoError(t, err)
	rec, err := recordsRepo.NewFileRecordRepo(dir)
	require.NoError(t, err)
	prof, err := profileRepo.NewFileProfileRepo(dir)
	require.NoError(t, err)

	h := &harness{
		store:    NewMemoryStore(),
		exec:     &fakeExecutor{result: models.TaskResult{Success: true, Message: "Booked", ConfirmationText: "Ref VT-1"}},
		notifier: &fakeNotifier{},
		now:      t0,
	}
	clock := func() time.Time { return h.now }
	h.orch = &DefaultOrchestrator{
		Store:      h.store,
		Catalog:    &provider.DefaultCatalogService{Now: clock},
		Executor:   h.exec,
		Workflows:  &scheduler.DefaultWorkflowService{Workflows: wf, Records: rec, Now: clock},
		Profiles:   &profile.DefaultProfileService{Repo: prof},
		Notifier:   h.notifier,
		Now:        clock,
		SessionTTL: 10 * time.Minute,
		PendingTTL: 5 * time.Minute,
	}
	return h
}

func (h *harness) handle(t *testing.T, intent models.Intent) *models.Reply {
	t.Helper()
	reply, err := h.orch.Handle(context.Background(), "s1", intent)
	require.NoError(t, err)
	require.NotNil(t, reply)
	return reply
}

func (h *harness) conversation(t *testing.T) *models.Conversation {
	t.Helper()
	conv, err := h.store.Get(context.Background(), "s1", h.now)
	require.NoError(t, err)
	return conv
}

func searchIntent(category string) models.Intent {
	return models.Intent{Type: models.IntentSearchProviders, Task: &models.IntentTask{Kind: models.TaskKindBooking, ProviderType: category}}
}

func (h *harness) bookThrough(t *testing.T) {
	t.Helper()
	h.handle(t, searchIntent("tandarts"))
	h.handle(t, models.Intent{Type: models.IntentSelectProvider, Selection: models.SelectText("beste")})
	reply := h.handle(t, models.Intent{Type: models.IntentSelectDatetime, Selection: models.SelectText("eerste")})
	require.Equal(t, models.StateTimeSelected, reply.State)
}

func TestSearch_CreatesSessionWithProviders(t *testing.T) {
	h := newHarness(t)

	reply := h.handle(t, searchIntent("tandarts"))
	assert.Equal(t, models.StateProvidersListed, reply.State)
	assert.NotEmpty(t, reply.Providers)
	assert.Contains(t, reply.Message, reply.Providers[0].Name)

	conv := h.conversation(t)
	require.NotNil(t, conv)
	assert.Equal(t, models.KindBooking, conv.Kind)
	assert.Equal(t, models.StateProvidersListed, conv.Booking.State)
	assert.Equal(t, reply.Providers, conv.Booking.Providers)
	assert.Equal(t, t0.Add(10*time.Minute), conv.Booking.ExpiresAt)
}

func TestSearch_NoResultsCreatesNoSession(t *testing.T) {
	h := newHarness(t)

	reply := h.handle(t, searchIntent("astronaut"))
	assert.Equal(t, models.StateEmpty, reply.State)
	assert.Contains(t, reply.Message, "astronaut")
	assert.Nil(t, h.conversation(t))
}

func TestSearch_NoResultsKeepsExistingSession(t *testing.T) {
	h := newHarness(t)
	h.handle(t, searchIntent("kapper"))

	reply := h.handle(t, searchIntent("astronaut"))
	assert.Equal(t, models.StateProvidersListed, reply.State)
	require.NotNil(t, h.conversation(t))
	assert.Equal(t, "kapper", h.conversation(t).Booking.ProviderType)
}

func TestSearch_WithoutCategoryAsks(t *testing.T) {
	h := newHarness(t)
	reply := h.handle(t, models.Intent{Type: models.IntentSearchProviders, Task: &models.IntentTask{}})
	assert.Equal(t, msgAskCategory, reply.Message)
	assert.Nil(t, h.conversation(t))
}

func TestSelectProvider_ByNumber(t *testing.T) {
	h := newHarness(t)
	listed := h.handle(t, searchIntent("kapper"))
	require.Len(t, listed.Providers, 3)

	reply := h.handle(t, models.Intent{Type: models.IntentSelectProvider, Selection: models.SelectNumber(2)})
	assert.Equal(t, models.StateProviderSelected, reply.State)
	require.NotNil(t, reply.SelectedProvider)
	assert.Equal(t, listed.Providers[1].ID, reply.SelectedProvider.ID)
	assert.NotEmpty(t, reply.AvailableSlots)

	conv := h.conversation(t)
	assert.Equal(t, models.StateProviderSelected, conv.Booking.State)
	assert.NotEmpty(t, conv.Booking.AvailableSlots)
}

func TestSelectProvider_MissRePrompts(t *testing.T) {
	h := newHarness(t)
	listed := h.handle(t, searchIntent("kapper"))

	for _, sel := range []*models.Selection{models.SelectNumber(len(listed.Providers) + 1), models.SelectText("onbekende salon")} {
		reply := h.handle(t, models.Intent{Type: models.IntentSelectProvider, Selection: sel})
		assert.Equal(t, models.StateProvidersListed, reply.State)
		assert.Nil(t, reply.SelectedProvider)
		assert.Equal(t, listed.Providers, reply.Providers)
	}
	assert.Equal(t, models.StateProvidersListed, h.conversation(t).Booking.State)
}

func TestSelectProvider_WithoutSession(t *testing.T) {
	h := newHarness(t)
	reply := h.handle(t, models.Intent{Type: models.IntentSelectProvider, Selection: models.SelectNumber(1)})
	assert.Equal(t, models.StateEmpty, reply.State)
	assert.Equal(t, msgNoProviderList, reply.Message)
}

func TestSelectDateTime_FirstSlot(t *testing.T) {
	h := newHarness(t)
	p := models.Provider{ID: "tandarts-zuidas", Name: "Tandartspraktijk Zuidas"}
	require.NoError(t, h.store.Put(context.Background(), models.Conversation{
		Key:  "s1",
		Kind: models.KindBooking,
		Booking: &models.BookingSession{
			ID:               "b1",
			State:            models.StateProviderSelected,
			ProviderType:     "tandarts",
			Providers:        []models.Provider{p},
			SelectedProvider: &p,
			AvailableSlots:   []models.TimeSlotDay{{Date: "2025-01-02", Slots: []string{"09:00", "09:30"}}},
			CreatedAt:        t0,
			ExpiresAt:        t0.Add(10 * time.Minute),
		},
	}))

	reply := h.handle(t, models.Intent{Type: models.IntentSelectDatetime, Selection: models.SelectText("eerste")})
	assert.Equal(t, models.StateTimeSelected, reply.State)
	assert.Equal(t, &models.SelectedDateTime{Date: "2025-01-02", Time: "09:00"}, reply.SelectedDateTime)
	assert.Equal(t, models.SelectedDateTime{Date: "2025-01-02", Time: "09:00"}, *h.conversation(t).Booking.SelectedDateTime)
}

func TestSelectDateTime_CanBeChanged(t *testing.T) {
	h := newHarness(t)
	h.bookThrough(t)

	reply := h.handle(t, models.Intent{Type: models.IntentSelectDatetime, Task: &models.IntentTask{DatetimePreference: "morgen", TimeSlot: "15:30"}})
	assert.Equal(t, models.StateTimeSelected, reply.State)
	assert.Equal(t, &models.SelectedDateTime{Date: "2025-01-02", Time: "15:30"}, reply.SelectedDateTime)
}

func TestSelectDateTime_BeforeProvider(t *testing.T) {
	h := newHarness(t)
	h.handle(t, searchIntent("kapper"))

	reply := h.handle(t, models.Intent{Type: models.IntentSelectDatetime, Selection: models.SelectText("morgen")})
	assert.Equal(t, models.StateProvidersListed, reply.State)
	assert.Equal(t, msgPickTimeFirst, reply.Message)
}

func TestConfirm_SuccessRemovesSessionAndNotifies(t *testing.T) {
	h := newHarness(t)
	_, err := h.orch.Profiles.UpdateProfile(context.Background(), models.Profile{Name: "Jan", Email: "jan@example.nl"})
	require.NoError(t, err)
	h.bookThrough(t)

	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, models.StateEmpty, reply.State)
	require.NotNil(t, reply.Result)
	assert.True(t, reply.Result.Success)
	assert.Contains(t, reply.Message, "Ref VT-1")
	assert.Empty(t, reply.Warnings)
	assert.Nil(t, h.conversation(t))

	require.Len(t, h.exec.calls, 1)
	task := h.exec.calls[0]
	assert.Equal(t, models.TaskKindBooking, task.Kind)
	assert.Equal(t, "tandarts-dom", task.ProviderID)
	assert.Equal(t, "2025-01-02", task.Date)
	assert.True(t, task.UseProfile)

	require.Len(t, h.notifier.events, 1)
	assert.Equal(t, "jan@example.nl", h.notifier.events[0].Email)
}

func TestConfirm_NotifierFailureIsOnlyAWarning(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("webhook down")
	_, err := h.orch.Profiles.UpdateProfile(context.Background(), models.Profile{Name: "Jan", Email: "jan@example.nl"})
	require.NoError(t, err)
	h.bookThrough(t)

	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.True(t, reply.Result.Success)
	assert.Equal(t, models.StateEmpty, reply.State)
	require.Len(t, reply.Warnings, 1)
	assert.Contains(t, reply.Warnings[0], "webhook down")
}

// flakyStore fails Delete, and Put too once failPut is set.
type flakyStore struct {
	*MemoryStore
	failPut bool
}

func (s *flakyStore) Delete(context.Context, string) error {
	return &StoreError{Op: "delete", Key: "s1", Err: errors.New("redis down")}
}

func (s *flakyStore) Put(ctx context.Context, conv models.Conversation) error {
	if s.failPut {
		return &StoreError{Op: "set", Key: conv.Key, Err: errors.New("redis down")}
	}
	return s.MemoryStore.Put(ctx, conv)
}

func TestConfirm_StoreDeleteFailureStillReportsBooking(t *testing.T) {
	h := newHarness(t)
	h.orch.Store = &flakyStore{MemoryStore: h.store}
	h.bookThrough(t)

	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	require.NotNil(t, reply.Result)
	assert.True(t, reply.Result.Success)
	assert.Equal(t, models.StateEmpty, reply.State)
	assert.Contains(t, reply.Message, "Ref VT-1")
	assert.Nil(t, h.conversation(t))

	again := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, msgNothingToConfirm, again.Message)
	assert.Len(t, h.exec.calls, 1)
}

func TestConfirm_StoreUnavailableIsAWarning(t *testing.T) {
	h := newHarness(t)
	store := &flakyStore{MemoryStore: h.store}
	h.orch.Store = store
	h.bookThrough(t)
	store.failPut = true

	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.True(t, reply.Result.Success)
	assert.Equal(t, models.StateEmpty, reply.State)
	require.Len(t, reply.Warnings, 1)
	assert.Contains(t, reply.Warnings[0], "redis down")
	assert.Len(t, h.exec.calls, 1)
}

func TestPendingConfirm_StoreDeleteFailureRunsOnce(t *testing.T) {
	h := newHarness(t)
	h.orch.Store = &flakyStore{MemoryStore: h.store}

	h.handle(t, models.Intent{Type: models.IntentSearchProviders, Task: &models.IntentTask{
		Kind:      models.TaskKindFormFill,
		TargetURL: "https://forms.example.nl/meterstand",
	}})
	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.True(t, reply.Result.Success)

	again := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, msgNothingToConfirm, again.Message)
	assert.Len(t, h.exec.calls, 1)
}

func TestConfirm_NoNotificationWithoutProfile(t *testing.T) {
	h := newHarness(t)
	h.bookThrough(t)

	h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Empty(t, h.notifier.events)
}

func TestConfirm_FailureKeepsSessionForRetry(t *testing.T) {
	h := newHarness(t)
	h.exec.result = models.TaskResult{Success: false, Message: "Booking failed", Error: "timeout"}
	h.bookThrough(t)

	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, models.StateTimeSelected, reply.State)
	assert.Contains(t, reply.Message, "timeout")
	require.NotNil(t, reply.Result)
	assert.False(t, reply.Result.Success)
	assert.Equal(t, models.StateTimeSelected, h.conversation(t).Booking.State)

	h.exec.result = models.TaskResult{Success: true, Message: "Booked"}
	retry := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, models.StateEmpty, retry.State)
	assert.Len(t, h.exec.calls, 2)
}

func TestConfirm_ExecutorErrorIsSurfaced(t *testing.T) {
	h := newHarness(t)
	h.exec.err = errors.New("profile store offline")
	h.bookThrough(t)

	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, models.StateTimeSelected, reply.State)
	assert.Contains(t, reply.Message, "profile store offline")
}

func TestConfirm_NothingToConfirm(t *testing.T) {
	h := newHarness(t)

	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, msgNothingToConfirm, reply.Message)

	h.handle(t, searchIntent("kapper"))
	reply = h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, msgNothingToConfirm, reply.Message)
	assert.Equal(t, models.StateProvidersListed, reply.State)
	assert.Empty(t, h.exec.calls)
}

func TestCancelThenConfirm(t *testing.T) {
	h := newHarness(t)
	h.bookThrough(t)

	reply := h.handle(t, models.Intent{Type: models.IntentCancelAction})
	assert.Equal(t, models.StateEmpty, reply.State)
	assert.Equal(t, msgCancelled, reply.Message)
	assert.Nil(t, h.conversation(t))

	reply = h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, msgNothingToConfirm, reply.Message)
	assert.Empty(t, h.exec.calls)
}

func TestCancel_WithoutSession(t *testing.T) {
	h := newHarness(t)
	reply := h.handle(t, models.Intent{Type: models.IntentCancelAction})
	assert.Equal(t, models.StateEmpty, reply.State)
	assert.Equal(t, msgNothingToCancel, reply.Message)
}

func TestConversation_PassesResponseThrough(t *testing.T) {
	h := newHarness(t)
	h.handle(t, searchIntent("kapper"))

	reply := h.handle(t, models.Intent{Type: models.IntentConversation, Response: "Graag gedaan!"})
	assert.Equal(t, "Graag gedaan!", reply.Message)
	assert.Equal(t, models.StateProvidersListed, reply.State)
}

func TestExpiredSessionIsAbsent(t *testing.T) {
	h := newHarness(t)
	h.bookThrough(t)

	h.now = h.now.Add(11 * time.Minute)
	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, msgNothingToConfirm, reply.Message)
	assert.Equal(t, models.StateEmpty, reply.State)
	assert.Empty(t, h.exec.calls)
}

func TestMutationRefreshesExpiry(t *testing.T) {
	h := newHarness(t)
	h.handle(t, searchIntent("kapper"))

	h.now = h.now.Add(8 * time.Minute)
	h.handle(t, models.Intent{Type: models.IntentSelectProvider, Selection: models.SelectNumber(1)})

	h.now = h.now.Add(8 * time.Minute)
	require.NotNil(t, h.conversation(t))
}

func TestSessionsAreIsolatedByKey(t *testing.T) {
	h := newHarness(t)
	h.handle(t, searchIntent("kapper"))

	reply, err := h.orch.Handle(context.Background(), "other", models.Intent{Type: models.IntentSelectProvider, Selection: models.SelectNumber(1)})
	require.NoError(t, err)
	assert.Equal(t, models.StateEmpty, reply.State)
	assert.Equal(t, models.StateProvidersListed, h.conversation(t).Booking.State)
}

func TestRecurringBookingCreatesWorkflow(t *testing.T) {
	h := newHarness(t)
	intent := searchIntent("tandarts")
	intent.Task.Recurring = true
	intent.Task.Interval = "P6M"
	intent.Task.Label = "halfjaarlijkse controle"
	h.handle(t, intent)
	h.handle(t, models.Intent{Type: models.IntentSelectProvider, Selection: models.SelectNumber(1)})
	h.handle(t, models.Intent{Type: models.IntentSelectDatetime, Selection: models.SelectText("eerste")})

	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	require.NotNil(t, reply.Workflow)
	assert.Equal(t, "tandarts", reply.Workflow.Category)
	assert.Equal(t, "P6M", reply.Workflow.Interval)
	assert.Equal(t, "halfjaarlijkse controle", reply.Workflow.Label)
	assert.Contains(t, reply.Message, "semiannual")

	all, err := h.orch.Workflows.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPendingFormFill(t *testing.T) {
	h := newHarness(t)

	reply := h.handle(t, models.Intent{Type: models.IntentSearchProviders, Task: &models.IntentTask{
		Kind:      models.TaskKindFormFill,
		TargetURL: "https://forms.example.nl/meterstand",
	}})
	assert.Equal(t, models.StatePendingConfirmation, reply.State)
	conv := h.conversation(t)
	require.NotNil(t, conv)
	assert.Equal(t, models.KindPendingAction, conv.Kind)
	assert.Equal(t, t0.Add(5*time.Minute), conv.Pending.ExpiresAt)

	dc, err := h.orch.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, dc.PendingTask)
	assert.Equal(t, "https://forms.example.nl/meterstand", dc.PendingTask.TargetURL)

	confirmed := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	assert.Equal(t, models.StateEmpty, confirmed.State)
	require.Len(t, h.exec.calls, 1)
	assert.Equal(t, models.TaskKindFormFill, h.exec.calls[0].Kind)
	assert.Nil(t, h.conversation(t))
}

func TestPendingRecurringCreatesWorkflowWithoutExecuting(t *testing.T) {
	h := newHarness(t)

	h.handle(t, models.Intent{Type: models.IntentSearchProviders, Task: &models.IntentTask{
		Kind:      models.TaskKindFormFill,
		TargetURL: "https://forms.example.nl/meterstand",
		Interval:  "P1M",
	}})
	reply := h.handle(t, models.Intent{Type: models.IntentConfirmAction})
	require.NotNil(t, reply.Workflow)
	assert.Equal(t, models.TaskKindFormFill, reply.Workflow.Type)
	assert.Equal(t, "https://forms.example.nl/meterstand", reply.Workflow.Category)
	assert.Empty(t, h.exec.calls)
}

func TestSnapshot_Booking(t *testing.T) {
	h := newHarness(t)
	h.bookThrough(t)

	dc, err := h.orch.Snapshot(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StateTimeSelected, dc.State)
	assert.Equal(t, "tandarts", dc.ProviderType)
	assert.Len(t, dc.ProviderNames, 4)
	assert.NotEmpty(t, dc.SelectedProvider)
	require.NotNil(t, dc.SelectedDateTime)
}
