package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CalendarEvent is a confirmed appointment offered to the user's calendar.
type CalendarEvent struct {
	Title        string `json:"title"`
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	Address      string `json:"address,omitempty"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Attendee     string `json:"attendee"`
	Email        string `json:"email"`
	Confirmation string `json:"confirmation,omitempty"`
}

// Notifier is a best-effort side channel. Its errors never change a booking outcome.
type Notifier interface {
	Notify(ctx context.Context, event CalendarEvent) error
}

// WebhookNotifier posts calendar events as JSON to a configured URL.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event CalendarEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode calendar event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calendar webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("calendar webhook returned %s", resp.Status)
	}
	return nil
}

// NopNotifier discards events.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, CalendarEvent) error { return nil }
