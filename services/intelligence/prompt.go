package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"voicetask/models"
)

const promptHeader = `You classify commands for a voice assistant that books appointments and fills in forms for one user.
Reply with a single JSON object and nothing else:
{"type": "conversation|search_providers|select_provider|select_datetime|confirm_action|cancel_action",
 "task": {"kind": "booking|form_fill", "provider_type": "", "provider_id": "", "search_query": "", "location": "",
          "interval": "", "schedule": "", "use_profile": true, "label": "", "datetime_preference": "",
          "time_slot": "HH:MM", "recurring": false, "target_url": ""},
 "response": "", "topic": "", "selection": "number or text"}

Rules:
- search_providers when the user wants a kind of provider; provider_type must be one of the known categories.
- select_provider when providers are listed and the user picks one: selection is the 1-based number, a name, or "beste".
- select_datetime when a provider is chosen and the user names a day or time: selection holds the user's words,
  time_slot the clock time if one was said.
- confirm_action for yes/confirm, cancel_action for no/stop/cancel.
- Recurring requests set recurring=true and interval to one of: %s.
- conversation for anything else, with a short friendly answer in response in the user's language.
`

func buildPrompt(text string, dialog models.DialogContext, history []Turn, categories []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptHeader, "P1D, P1W, P2W, P1M, P3M, P6M, P1Y")
	if len(categories) > 0 {
		fmt.Fprintf(&b, "\nKnown categories: %s\n", strings.Join(categories, ", "))
	}

	state, _ := json.Marshal(dialog)
	fmt.Fprintf(&b, "\nConversation state: %s\n", state)

	if len(history) > 0 {
		b.WriteString("\nRecent turns:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Text)
		}
	}
	fmt.Fprintf(&b, "\nUser: %s\n", text)
	return b.String()
}
