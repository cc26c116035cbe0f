package models

import "time"

// ConversationState is the dialog state of one session key.
type ConversationState string

const (
	StateEmpty               ConversationState = "EMPTY"
	StateProvidersListed     ConversationState = "PROVIDERS_LISTED"
	StateProviderSelected    ConversationState = "PROVIDER_SELECTED"
	StateTimeSelected        ConversationState = "TIME_SELECTED"
	StatePendingConfirmation ConversationState = "PENDING_CONFIRMATION"
)

// ConversationKind discriminates which variant a Conversation carries.
type ConversationKind string

const (
	KindBooking       ConversationKind = "booking"
	KindPendingAction ConversationKind = "pending_action"
)

// SelectedDateTime is the slot the user picked.
type SelectedDateTime struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// BookingSession tracks a multi-step provider and time selection.
type BookingSession struct {
	ID               string            `json:"id"`
	State            ConversationState `json:"state"`
	ProviderType     string            `json:"providerType"`
	Providers        []Provider        `json:"providers,omitempty"`
	SelectedProvider *Provider         `json:"selectedProvider,omitempty"`
	AvailableSlots   []TimeSlotDay     `json:"availableSlots,omitempty"`
	SelectedDateTime *SelectedDateTime `json:"selectedDateTime,omitempty"`
	UseProfile       bool              `json:"useProfile"`
	Recurrence       *Recurrence       `json:"recurrence,omitempty"` // set when the booking should repeat
	CreatedAt        time.Time         `json:"createdAt"`
	ExpiresAt        time.Time         `json:"expiresAt"`
}

// Recurrence carries what is needed to turn a confirmed action into a workflow.
type Recurrence struct {
	Interval string `json:"interval,omitempty"`
	Schedule string `json:"schedule,omitempty"`
	Label    string `json:"label,omitempty"`
}

// PendingAction is a single task awaiting a yes/no.
type PendingAction struct {
	ID         string      `json:"id"`
	Task       Task        `json:"task"`
	Recurrence *Recurrence `json:"recurrence,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	ExpiresAt  time.Time   `json:"expiresAt"`
}

// Conversation is the tagged per-key dialog state. Exactly one of Booking or Pending is set, matching Kind.
type Conversation struct {
	Key     string           `json:"key"`
	Kind    ConversationKind `json:"kind"`
	Booking *BookingSession  `json:"booking,omitempty"`
	Pending *PendingAction   `json:"pending,omitempty"`
}

// State reports the dialog state, treating a nil conversation as EMPTY.
func (c *Conversation) State() ConversationState {
	if c == nil {
		return StateEmpty
	}
	switch c.Kind {
	case KindBooking:
		if c.Booking != nil {
			return c.Booking.State
		}
	case KindPendingAction:
		if c.Pending != nil {
			return StatePendingConfirmation
		}
	}
	return StateEmpty
}

// ExpiresAt returns the expiry of whichever variant is active.
func (c *Conversation) ExpiresAt() time.Time {
	switch {
	case c == nil:
		return time.Time{}
	case c.Kind == KindBooking && c.Booking != nil:
		return c.Booking.ExpiresAt
	case c.Kind == KindPendingAction && c.Pending != nil:
		return c.Pending.ExpiresAt
	}
	return time.Time{}
}

// Expired reports whether the conversation must be treated as absent at now.
func (c *Conversation) Expired(now time.Time) bool {
	exp := c.ExpiresAt()
	return exp.IsZero() || !now.Before(exp)
}

// DialogContext is what the classifier is told about the ongoing conversation.
type DialogContext struct {
	State            ConversationState `json:"state"`
	ProviderType     string            `json:"providerType,omitempty"`
	ProviderNames    []string          `json:"providerNames,omitempty"`
	SelectedProvider string            `json:"selectedProvider,omitempty"`
	SelectedDateTime *SelectedDateTime `json:"selectedDateTime,omitempty"`
	PendingTask      *Task             `json:"pendingTask,omitempty"`
}

// Reply is the orchestrator's answer to one intent.
type Reply struct {
	Message          string            `json:"message"`
	State            ConversationState `json:"state"`
	Providers        []Provider        `json:"providers,omitempty"`
	SelectedProvider *Provider         `json:"selectedProvider,omitempty"`
	AvailableSlots   []TimeSlotDay     `json:"availableSlots,omitempty"`
	SelectedDateTime *SelectedDateTime `json:"selectedDateTime,omitempty"`
	Result           *TaskResult       `json:"result,omitempty"`
	Workflow         *Workflow         `json:"workflow,omitempty"`
	Warnings         []string          `json:"warnings,omitempty"`
}
