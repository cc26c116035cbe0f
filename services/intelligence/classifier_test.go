package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"voicetask/models"
	"voicetask/services/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	prompt string
	out    string
	err    error
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.out, s.err
}

func TestParseIntent(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		intent, err := ParseIntent(`{"type":"search_providers","task":{"kind":"booking","provider_type":"tandarts","recurring":true,"interval":"P6M"}}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentSearchProviders, intent.Type)
		require.NotNil(t, intent.Task)
		assert.Equal(t, "tandarts", intent.Task.ProviderType)
		assert.True(t, intent.Task.Recurring)
		assert.True(t, intent.Task.WantsProfile())
	})

	t.Run("fenced with prose", func(t *testing.T) {
		intent, err := ParseIntent("```json\nHere you go: {\"type\": \"Select_Provider\", \"selection\": 2}\n```")
		require.NoError(t, err)
		assert.Equal(t, models.IntentSelectProvider, intent.Type)
		assert.Equal(t, 2, intent.Selection.Number)
	})

	t.Run("text selection", func(t *testing.T) {
		intent, err := ParseIntent(`{"type":"select_datetime","selection":"eerste","task":{"time_slot":"09:30"}}`)
		require.NoError(t, err)
		assert.Equal(t, "eerste", intent.Selection.Text)
		assert.Equal(t, "09:30", intent.Task.TimeSlot)
	})

	for _, raw := range []string{"", "no json here", `{"type": "dance"}`, `{"type": `} {
		_, err := ParseIntent(raw)
		var cerr *ClassificationError
		assert.ErrorAs(t, err, &cerr, raw)
	}
}

func TestGeminiClassifier_BuildsPromptFromDialog(t *testing.T) {
	gen := &stubGenerator{out: `{"type":"select_provider","selection":"beste"}`}
	c := &GeminiClassifier{Generator: gen, Categories: []string{"kapper", "tandarts"}}

	intent, err := c.Classify(context.Background(), ClassifyRequest{
		Text:    "doe maar de beste",
		Dialog:  models.DialogContext{State: models.StateProvidersListed, ProviderNames: []string{"Salon Negen"}},
		History: []Turn{{Role: "assistant", Text: "I found 3 kapper options"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.IntentSelectProvider, intent.Type)

	assert.Contains(t, gen.prompt, "kapper, tandarts")
	assert.Contains(t, gen.prompt, "PROVIDERS_LISTED")
	assert.Contains(t, gen.prompt, "Salon Negen")
	assert.Contains(t, gen.prompt, "assistant: I found 3 kapper options")
	assert.Contains(t, gen.prompt, "User: doe maar de beste")
}

func TestGeminiClassifier_Errors(t *testing.T) {
	_, err := (&GeminiClassifier{Generator: &stubGenerator{}}).Classify(context.Background(), ClassifyRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = (&GeminiClassifier{}).Classify(context.Background(), ClassifyRequest{Text: "hallo"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	boom := errors.New("quota exceeded")
	_, err = (&GeminiClassifier{Generator: &stubGenerator{err: boom}}).Classify(context.Background(), ClassifyRequest{Text: "hallo"})
	assert.ErrorIs(t, err, boom)

	_, err = (&GeminiClassifier{Generator: &stubGenerator{out: "sorry"}}).Classify(context.Background(), ClassifyRequest{Text: "hallo"})
	var cerr *ClassificationError
	assert.ErrorAs(t, err, &cerr)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "gemini-1.5-flash")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func newKeywordClassifier() *KeywordClassifier {
	catalog := provider.NewCatalogService(nil)
	return &KeywordClassifier{Categories: catalog.Categories(), Normalize: provider.NormalizeCategory}
}

func TestKeywordClassifier(t *testing.T) {
	c := newKeywordClassifier()
	listed := models.DialogContext{State: models.StateProvidersListed, ProviderNames: []string{"Knipperlicht Kappers", "Salon Negen"}}
	picked := models.DialogContext{State: models.StateProviderSelected}

	cases := []struct {
		text   string
		dialog models.DialogContext
		want   models.IntentType
		check  func(t *testing.T, in *models.Intent)
	}{
		{"Ik zoek een tandarts in Utrecht", models.DialogContext{}, models.IntentSearchProviders, func(t *testing.T, in *models.Intent) {
			assert.Equal(t, "tandarts", in.Task.ProviderType)
			assert.Equal(t, "utrecht", in.Task.Location)
			assert.False(t, in.Task.Recurring)
		}},
		{"I need a dentist every six months", models.DialogContext{}, models.IntentSearchProviders, func(t *testing.T, in *models.Intent) {
			assert.Equal(t, "tandarts", in.Task.ProviderType)
			assert.Equal(t, "P6M", in.Task.Interval)
			assert.True(t, in.Task.Recurring)
		}},
		{"Vul https://forms.example.nl/meterstand elke maand in", models.DialogContext{}, models.IntentSearchProviders, func(t *testing.T, in *models.Intent) {
			assert.Equal(t, models.TaskKindFormFill, in.Task.Kind)
			assert.Equal(t, "https://forms.example.nl/meterstand", in.Task.TargetURL)
			assert.Equal(t, "P1M", in.Task.Interval)
		}},
		{"nummer 2 graag", listed, models.IntentSelectProvider, func(t *testing.T, in *models.Intent) {
			assert.Equal(t, 2, in.Selection.Number)
		}},
		{"de beste maar", listed, models.IntentSelectProvider, func(t *testing.T, in *models.Intent) {
			assert.Equal(t, "beste", in.Selection.Text)
		}},
		{"salon negen", listed, models.IntentSelectProvider, func(t *testing.T, in *models.Intent) {
			assert.Equal(t, "Salon Negen", in.Selection.Text)
		}},
		{"morgen om 10:30", picked, models.IntentSelectDatetime, func(t *testing.T, in *models.Intent) {
			assert.Equal(t, "morgen om 10:30", in.Selection.Text)
			assert.Equal(t, "10:30", in.Task.TimeSlot)
		}},
		{"ja", models.DialogContext{State: models.StateTimeSelected}, models.IntentConfirmAction, nil},
		{"laat maar", picked, models.IntentCancelAction, nil},
		{"hoe laat is het", models.DialogContext{}, models.IntentConversation, func(t *testing.T, in *models.Intent) {
			assert.Equal(t, localHelp, in.Response)
		}},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("%d_%s", i, tc.text), func(t *testing.T) {
			in, err := c.Classify(context.Background(), ClassifyRequest{Text: tc.text, Dialog: tc.dialog})
			require.NoError(t, err)
			assert.Equal(t, tc.want, in.Type)
			if tc.check != nil {
				tc.check(t, in)
			}
		})
	}
}

func TestKeywordClassifier_EmptyInput(t *testing.T) {
	_, err := newKeywordClassifier().Classify(context.Background(), ClassifyRequest{Text: ""})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMemoryHistoryStore_KeepsLastTurns(t *testing.T) {
	store := NewMemoryHistoryStore()
	ctx := context.Background()
	for i := 0; i < MaxTurns+3; i++ {
		require.NoError(t, store.Append(ctx, "s1", Turn{Role: "user", Text: fmt.Sprint(i)}))
	}

	turns, err := store.Recent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, MaxTurns)
	assert.Equal(t, "3", turns[0].Text)

	require.NoError(t, store.Clear(ctx, "s1"))
	turns, err = store.Recent(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}
