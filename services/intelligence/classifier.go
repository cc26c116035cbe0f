package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"voicetask/models"

	"go.uber.org/zap"
)

// GeminiClassifier asks a language model for a JSON intent.
type GeminiClassifier struct {
	Generator  TextGenerator
	Categories []string
	Logger     *zap.Logger
}

func (c *GeminiClassifier) Classify(ctx context.Context, req ClassifyRequest) (*models.Intent, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	if c.Generator == nil {
		return nil, ErrMissingCredentials
	}

	raw, err := c.Generator.GenerateContent(ctx, buildPrompt(text, req.Dialog, req.History, c.Categories))
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	intent, err := ParseIntent(raw)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Warn("classifier returned unusable output", zap.String("raw", raw), zap.Error(err))
		}
		return nil, err
	}
	return intent, nil
}

// ParseIntent decodes model output, tolerating markdown fences and surrounding prose.
func ParseIntent(raw string) (*models.Intent, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")

	start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return nil, &ClassificationError{Raw: raw, Err: errors.New("no JSON object found")}
	}

	var intent models.Intent
	if err := json.Unmarshal([]byte(body[start:end+1]), &intent); err != nil {
		return nil, &ClassificationError{Raw: raw, Err: err}
	}
	intent.Type = models.IntentType(strings.ToLower(strings.TrimSpace(string(intent.Type))))
	if !intent.Type.Valid() {
		return nil, &ClassificationError{Raw: raw, Err: fmt.Errorf("unknown intent type %q", intent.Type)}
	}
	return &intent, nil
}
