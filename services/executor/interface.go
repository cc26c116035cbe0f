package executor

import (
	"context"
	"errors"
	"fmt"

	"voicetask/models"
)

// Executor runs a resolved task. The returned error is reserved for infrastructure faults;
// automation failures come back as a TaskResult with Success=false.
type Executor interface {
	Execute(ctx context.Context, task models.Task) (models.TaskResult, error)
}

// Request is what an automation routine needs to act on the user's behalf.
type Request struct {
	Kind     models.TaskKind
	URL      string
	Provider *models.Provider
	Date     string
	Time     string
	Label    string
	Profile  *models.Profile
}

// Outcome is what an automation routine reports on success.
type Outcome struct {
	ConfirmationText string
}

// Automation drives an external booking or form page.
type Automation interface {
	Book(ctx context.Context, req Request) (Outcome, error)
	FillForm(ctx context.Context, req Request) (Outcome, error)
}

// ErrUnknownKind is reported for task kinds without an automation routine.
var ErrUnknownKind = errors.New("unknown task kind")

// AutomationError wraps a failure reported by the automated page.
type AutomationError struct {
	Step string
	Err  error
}

func (e *AutomationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *AutomationError) Unwrap() error {
	return e.Err
}
