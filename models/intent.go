package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IntentType is the classifier's verdict on an utterance.
type IntentType string

const (
	IntentConversation    IntentType = "conversation"
	IntentSearchProviders IntentType = "search_providers"
	IntentSelectProvider  IntentType = "select_provider"
	IntentSelectDatetime  IntentType = "select_datetime"
	IntentConfirmAction   IntentType = "confirm_action"
	IntentCancelAction    IntentType = "cancel_action"
)

// Valid reports whether t is one of the known intent types.
func (t IntentType) Valid() bool {
	switch t {
	case IntentConversation, IntentSearchProviders, IntentSelectProvider,
		IntentSelectDatetime, IntentConfirmAction, IntentCancelAction:
		return true
	}
	return false
}

// IntentTask is the structured payload the classifier extracts alongside an intent.
type IntentTask struct {
	Kind               TaskKind `json:"kind,omitempty"`
	ProviderType       string   `json:"provider_type,omitempty"`
	ProviderID         string   `json:"provider_id,omitempty"`
	SearchQuery        string   `json:"search_query,omitempty"`
	Location           string   `json:"location,omitempty"`
	Interval           string   `json:"interval,omitempty"`
	Schedule           string   `json:"schedule,omitempty"`
	UseProfile         *bool    `json:"use_profile,omitempty"`
	Label              string   `json:"label,omitempty"`
	DatetimePreference string   `json:"datetime_preference,omitempty"`
	TimeSlot           string   `json:"time_slot,omitempty"`
	Recurring          bool     `json:"recurring,omitempty"`
	TargetURL          string   `json:"target_url,omitempty"`
}

// WantsProfile defaults to true when the classifier did not say otherwise.
func (t *IntentTask) WantsProfile() bool {
	if t == nil || t.UseProfile == nil {
		return true
	}
	return *t.UseProfile
}

// Intent is the classified meaning of one utterance.
type Intent struct {
	Type      IntentType  `json:"type"`
	Task      *IntentTask `json:"task,omitempty"`
	Response  string      `json:"response,omitempty"`
	Topic     string      `json:"topic,omitempty"`
	Selection *Selection  `json:"selection,omitempty"`
}

// Selection is either a 1-based number or free text ("beste", a provider name, "eerste").
type Selection struct {
	Number int
	Text   string
}

func SelectNumber(n int) *Selection   { return &Selection{Number: n} }
func SelectText(s string) *Selection { return &Selection{Text: s} }

// IsNumber reports whether the selection was given as a position.
func (s *Selection) IsNumber() bool {
	return s != nil && s.Number > 0
}

func (s *Selection) String() string {
	if s == nil {
		return ""
	}
	if s.IsNumber() {
		return strconv.Itoa(s.Number)
	}
	return s.Text
}

func (s Selection) MarshalJSON() ([]byte, error) {
	if s.Number > 0 {
		return json.Marshal(s.Number)
	}
	return json.Marshal(s.Text)
}

// UnmarshalJSON accepts a JSON number or string. Numeric strings are kept as numbers.
func (s *Selection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = Selection{}
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if n, err := strconv.Atoi(text); err == nil && n > 0 {
			*s = Selection{Number: n}
			return nil
		}
		*s = Selection{Text: text}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("selection must be a string or number: %w", err)
	}
	*s = Selection{Number: int(f)}
	return nil
}
