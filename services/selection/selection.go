// Package selection resolves free-form provider and date/time choices against an explicit rule table.
package selection

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"voicetask/models"
)

// bestWords select the first (highest rated) provider.
var bestWords = []string{"beste", "best"}

// dayRule maps a spoken token onto a day. Rules are checked in order; the first hit wins,
// so "overmorgen" must precede "morgen".
type dayRule struct {
	tokens    []string
	firstSlot bool // first slot of the first available day, ignoring any time token
	offset    int  // days after today
}

var dayRules = []dayRule{
	{tokens: []string{"eerste", "first"}, firstSlot: true},
	{tokens: []string{"overmorgen"}, offset: 2},
	{tokens: []string{"morgen", "tomorrow"}, offset: 1},
}

var (
	clockToken = regexp.MustCompile(`\b([01]?\d|2[0-3])[:.]([0-5]\d)\b`)
	hourToken  = regexp.MustCompile(`\b([01]?\d|2[0-3])\s*uur\b`)
)

// ResolveProvider picks a provider from an already ranked list.
// Numbers are 1-based; text is "beste"/"best" or a case-insensitive name substring.
// A miss returns false, never panics.
func ResolveProvider(providers []models.Provider, sel *models.Selection) (*models.Provider, bool) {
	if sel == nil || len(providers) == 0 {
		return nil, false
	}

	n := sel.Number
	if n == 0 {
		if parsed, err := strconv.Atoi(strings.TrimSpace(sel.Text)); err == nil {
			n = parsed
		}
	}
	if n != 0 {
		if n < 1 || n > len(providers) {
			return nil, false
		}
		p := providers[n-1]
		return &p, true
	}

	text := strings.ToLower(strings.TrimSpace(sel.Text))
	if text == "" {
		return nil, false
	}
	for _, w := range bestWords {
		if text == w {
			p := providers[0]
			return &p, true
		}
	}
	for _, p := range providers {
		if strings.Contains(strings.ToLower(p.Name), text) {
			p := p
			return &p, true
		}
	}
	return nil, false
}

// ResolveDateTime turns a preference such as "morgen om 10:30" into a concrete slot.
// timeSlot, when set, is used as the time verbatim. As long as slots holds at least one
// time this never fails: anything unusable falls back to the first slot of the first day.
func ResolveDateTime(slots []models.TimeSlotDay, preference, timeSlot string, now time.Time) (models.SelectedDateTime, bool) {
	first, ok := firstSlot(slots)
	if !ok {
		return models.SelectedDateTime{}, false
	}

	pref := strings.ToLower(preference)
	date := ""
	for _, rule := range dayRules {
		if !containsAny(pref, rule.tokens) {
			continue
		}
		if rule.firstSlot {
			return first, true
		}
		date = now.AddDate(0, 0, rule.offset).Format("2006-01-02")
		break
	}

	day, found := dayFor(slots, date)
	if !found {
		return first, true
	}

	clock := strings.TrimSpace(timeSlot)
	if clock == "" {
		clock = timeFromText(pref)
	}
	if clock == "" {
		if len(day.Slots) == 0 {
			return first, true
		}
		clock = day.Slots[0]
	}
	return models.SelectedDateTime{Date: day.Date, Time: clock}, true
}

func firstSlot(slots []models.TimeSlotDay) (models.SelectedDateTime, bool) {
	for _, d := range slots {
		if len(d.Slots) > 0 {
			return models.SelectedDateTime{Date: d.Date, Time: d.Slots[0]}, true
		}
	}
	return models.SelectedDateTime{}, false
}

// dayFor finds the day for date, or the first available day when date is empty.
func dayFor(slots []models.TimeSlotDay, date string) (models.TimeSlotDay, bool) {
	if date == "" {
		for _, d := range slots {
			if len(d.Slots) > 0 {
				return d, true
			}
		}
		return models.TimeSlotDay{}, false
	}
	for _, d := range slots {
		if d.Date == date {
			return d, true
		}
	}
	return models.TimeSlotDay{}, false
}

func timeFromText(pref string) string {
	if m := clockToken.FindStringSubmatch(pref); m != nil {
		h, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s", h, m[2])
	}
	if m := hourToken.FindStringSubmatch(pref); m != nil {
		h, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:00", h)
	}
	return ""
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
