package executor

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
)

// SimulatedAutomation completes every request without touching the network. The confirmation
// code is derived from the request so repeated runs produce the same text.
type SimulatedAutomation struct {
	// FailProviders lists provider IDs whose bookings should be rejected.
	FailProviders map[string]bool
}

func (s *SimulatedAutomation) Book(ctx context.Context, req Request) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if req.Provider == nil {
		return Outcome{}, &AutomationError{Step: "book", Err: errors.New("no provider")}
	}
	if s.FailProviders[req.Provider.ID] {
		return Outcome{}, &AutomationError{Step: "submit", Err: errors.New("slot no longer available")}
	}
	code := confirmationCode(req.Provider.ID, req.Date, req.Time)
	text := fmt.Sprintf("Appointment confirmed at %s on %s at %s. Reference %s.", req.Provider.Name, req.Date, req.Time, code)
	if req.Profile.IsComplete() {
		text += fmt.Sprintf(" A confirmation was sent to %s.", req.Profile.Email)
	}
	return Outcome{ConfirmationText: text}, nil
}

func (s *SimulatedAutomation) FillForm(ctx context.Context, req Request) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if req.URL == "" {
		return Outcome{}, &AutomationError{Step: "open", Err: errors.New("no form url")}
	}
	email := ""
	if req.Profile != nil {
		email = req.Profile.Email
	}
	code := confirmationCode(req.URL, email)
	return Outcome{ConfirmationText: fmt.Sprintf("Form at %s submitted. Reference %s.", req.URL, code)}, nil
}

func confirmationCode(parts ...string) string {
	h := fnv.New32a()
	h.Write([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("VT-%06d", h.Sum32()%1000000)
}

var _ Automation = (*SimulatedAutomation)(nil)
