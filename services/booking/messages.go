package booking

import (
	"fmt"
	"strings"

	"voicetask/models"
	"voicetask/services/scheduler"
)

const (
	msgNothingToConfirm = "There is nothing to confirm right now."
	msgNothingToCancel  = "There was nothing to cancel."
	msgCancelled        = "Okay, I cancelled it."
	msgAskCategory      = "What kind of provider are you looking for? For example a dentist, a GP or a hairdresser."
	msgNoProviderList   = "I have no list of providers for you yet. What are you looking for?"
	msgNotUnderstood    = "Sorry, I did not catch that. Could you say it differently?"
	msgPickTimeFirst    = "Pick a provider first, then choose a time."
)

func providersMessage(category string, providers []models.Provider) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s options:", len(providers), category)
	for i, p := range providers {
		fmt.Fprintf(&b, " %d. %s in %s (rating %.1f).", i+1, p.Name, p.City, p.Rating)
	}
	b.WriteString(" Which one would you like?")
	return b.String()
}

func noProvidersMessage(category string) string {
	return fmt.Sprintf("I could not find any %s. Could you try another kind of provider or place?", category)
}

func selectionMissMessage(sel *models.Selection, providers []models.Provider) string {
	return fmt.Sprintf("I could not match %q to one of the %d options. Say a number between 1 and %d or a name.",
		sel.String(), len(providers), len(providers))
}

func providerSelectedMessage(p *models.Provider, slots []models.TimeSlotDay) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You chose %s.", p.Name)
	if len(slots) > 0 {
		first := slots[0]
		fmt.Fprintf(&b, " The first available day is %s with times %s.", first.Date, strings.Join(first.Slots, ", "))
	}
	b.WriteString(" When would you like to go?")
	return b.String()
}

func timeSelectedMessage(p *models.Provider, dt models.SelectedDateTime) string {
	return fmt.Sprintf("%s on %s at %s. Shall I book it?", p.Name, dt.Date, dt.Time)
}

func bookingFailedMessage(res models.TaskResult) string {
	detail := res.Error
	if detail == "" {
		detail = res.Message
	}
	return fmt.Sprintf("The booking did not go through: %s. Say confirm to try again or cancel to stop.", detail)
}

func pendingMessage(task models.Task, rec *models.Recurrence) string {
	what := "fill in the form"
	if task.TargetURL != "" {
		what = fmt.Sprintf("fill in the form at %s", task.TargetURL)
	}
	if task.UseProfile {
		what += " with your profile details"
	}
	if rec != nil {
		return fmt.Sprintf("I will %s %s. Shall I set that up?", what, recurrencePhrase(rec))
	}
	return fmt.Sprintf("I will %s. Shall I go ahead?", what)
}

func workflowMessage(w *models.Workflow) string {
	return fmt.Sprintf("I will repeat this %s.", recurrencePhrase(&models.Recurrence{Interval: w.Interval, Schedule: w.Schedule}))
}

func recurrencePhrase(rec *models.Recurrence) string {
	if rec.Schedule != "" {
		return fmt.Sprintf("on schedule %q", rec.Schedule)
	}
	if desc, ok := scheduler.DescribeInterval(rec.Interval); ok {
		return desc
	}
	return "every three months"
}
