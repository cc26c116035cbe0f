package ai

import (
	"context"
	"errors"
	"fmt"

	"voicetask/models"
)

var (
	ErrEmptyInput         = errors.New("empty input")
	ErrMissingCredentials = errors.New("classifier credentials are not configured")
)

// ClassificationError reports model output that could not be turned into an intent.
type ClassificationError struct {
	Raw string
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("malformed classifier output: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// IntentClassifier maps free text plus the live dialog context onto a typed intent.
type IntentClassifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (*models.Intent, error)
}

// ClassifyRequest is everything a classifier may look at.
type ClassifyRequest struct {
	Text    string
	Dialog  models.DialogContext
	History []Turn
}

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
