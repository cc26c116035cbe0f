package ai

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"voicetask/models"
)

// KeywordClassifier is an offline classifier driven by fixed word lists. It understands
// enough Dutch and English to walk through a booking without a language model.
type KeywordClassifier struct {
	// Categories are the catalog keys; Normalize maps spoken variants onto them.
	Categories []string
	Normalize  func(string) string
}

var (
	cancelWords  = []string{"annuleer", "annuleren", "cancel", "stop", "laat maar", "nee", "no"}
	confirmWords = []string{"ja", "yes", "bevestig", "confirm", "doe maar", "akkoord", "prima", "ok", "oké"}
	bestWords    = []string{"beste", "best"}
	dayWords     = []string{"eerste", "first", "morgen", "tomorrow", "overmorgen", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "uur"}

	recurringWords = []struct {
		phrase   string
		interval string
	}{
		{"elke dag", "P1D"}, {"dagelijks", "P1D"}, {"every day", "P1D"}, {"daily", "P1D"},
		{"om de week", "P2W"}, {"every other week", "P2W"},
		{"elke week", "P1W"}, {"wekelijks", "P1W"}, {"every week", "P1W"}, {"weekly", "P1W"},
		{"elk kwartaal", "P3M"}, {"elke drie maanden", "P3M"}, {"quarterly", "P3M"},
		{"elk half jaar", "P6M"}, {"halfjaarlijks", "P6M"}, {"every six months", "P6M"},
		{"elke maand", "P1M"}, {"maandelijks", "P1M"}, {"every month", "P1M"}, {"monthly", "P1M"},
		{"elk jaar", "P1Y"}, {"jaarlijks", "P1Y"}, {"every year", "P1Y"}, {"yearly", "P1Y"},
	}

	wordPattern  = regexp.MustCompile(`[\p{L}\d'-]+`)
	numberToken  = regexp.MustCompile(`\b(\d{1,2})\b`)
	clockPattern = regexp.MustCompile(`\b([01]?\d|2[0-3])[:.]([0-5]\d)\b`)
	locationTail = regexp.MustCompile(`\b(?:in|bij|near)\s+([\p{L}-]+)`)
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	ordinals     = map[string]int{"eerste": 1, "tweede": 2, "derde": 3, "vierde": 4, "first": 1, "second": 2, "third": 3, "fourth": 4}
)

const localHelp = "I can look up a dentist, GP, hairdresser, physiotherapist or garage and book it for you. What do you need?"

func (c *KeywordClassifier) Classify(_ context.Context, req ClassifyRequest) (*models.Intent, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	lower := strings.ToLower(text)
	words := wordPattern.FindAllString(lower, -1)
	state := req.Dialog.State
	if state == "" {
		state = models.StateEmpty
	}

	if hasAny(words, lower, cancelWords) && state != models.StateEmpty {
		return &models.Intent{Type: models.IntentCancelAction}, nil
	}

	if url := urlPattern.FindString(text); url != "" {
		task := &models.IntentTask{Kind: models.TaskKindFormFill, TargetURL: url}
		applyRecurrence(task, lower)
		return &models.Intent{Type: models.IntentSearchProviders, Task: task}, nil
	}

	if category := c.findCategory(words); category != "" {
		task := &models.IntentTask{Kind: models.TaskKindBooking, ProviderType: category}
		if m := locationTail.FindStringSubmatch(lower); m != nil {
			task.Location = m[1]
		}
		applyRecurrence(task, lower)
		return &models.Intent{Type: models.IntentSearchProviders, Task: task}, nil
	}

	switch state {
	case models.StateProvidersListed:
		if sel := providerSelection(words, lower, req.Dialog.ProviderNames); sel != nil {
			return &models.Intent{Type: models.IntentSelectProvider, Selection: sel}, nil
		}
	case models.StateProviderSelected, models.StateTimeSelected:
		if hasAny(words, lower, dayWords) || clockPattern.MatchString(lower) {
			intent := &models.Intent{Type: models.IntentSelectDatetime, Selection: models.SelectText(text)}
			if m := clockPattern.FindStringSubmatch(lower); m != nil {
				intent.Task = &models.IntentTask{TimeSlot: m[0]}
			}
			return intent, nil
		}
	}

	if hasAny(words, lower, confirmWords) {
		return &models.Intent{Type: models.IntentConfirmAction}, nil
	}
	return &models.Intent{Type: models.IntentConversation, Response: localHelp}, nil
}

func (c *KeywordClassifier) findCategory(words []string) string {
	known := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		known[cat] = true
	}
	for _, w := range words {
		candidate := w
		if c.Normalize != nil {
			candidate = c.Normalize(w)
		}
		if known[candidate] {
			return candidate
		}
	}
	return ""
}

func providerSelection(words []string, lower string, names []string) *models.Selection {
	if hasAny(words, lower, bestWords) {
		return models.SelectText("beste")
	}
	for _, w := range words {
		if n, ok := ordinals[w]; ok {
			return models.SelectNumber(n)
		}
	}
	if m := numberToken.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return models.SelectNumber(n)
	}
	for _, name := range names {
		if strings.Contains(lower, strings.ToLower(name)) {
			return models.SelectText(name)
		}
	}
	return nil
}

func applyRecurrence(task *models.IntentTask, lower string) {
	for _, r := range recurringWords {
		if strings.Contains(lower, r.phrase) {
			task.Recurring = true
			task.Interval = r.interval
			return
		}
	}
}

// hasAny matches single words against the word list and phrases against the whole text.
func hasAny(words []string, lower string, list []string) bool {
	for _, item := range list {
		if strings.Contains(item, " ") {
			if strings.Contains(lower, item) {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == item {
				return true
			}
		}
	}
	return false
}
