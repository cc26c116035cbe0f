package provider

import (
	"fmt"
	"hash/fnv"
	"time"

	"voicetask/models"
)

const (
	slotDays      = 5  // working days offered
	firstSlotHour = 9  // 09:00
	lastSlotHour  = 17 // last slot starts 16:30
	slotMinutes   = 30
)

// synthesizeSlots builds the next slotDays working days after now for one provider.
// Some slots are withheld deterministically per provider so availability differs between providers.
func synthesizeSlots(providerID string, now time.Time) []models.TimeSlotDay {
	days := make([]models.TimeSlotDay, 0, slotDays)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for len(days) < slotDays {
		day = day.AddDate(0, 0, 1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		date := day.Format("2006-01-02")

		var slots []string
		for m := firstSlotHour * 60; m < lastSlotHour*60; m += slotMinutes {
			label := fmt.Sprintf("%02d:%02d", m/60, m%60)
			if taken(providerID, date, label) {
				continue
			}
			slots = append(slots, label)
		}
		if len(slots) == 0 {
			slots = []string{fmt.Sprintf("%02d:00", firstSlotHour)}
		}
		days = append(days, models.TimeSlotDay{Date: date, Slots: slots})
	}
	return days
}

func taken(providerID, date, slot string) bool {
	h := fnv.New32a()
	_, _ = h.Write([]byte(providerID + "|" + date + "|" + slot))
	return h.Sum32()%3 == 0
}

func summarize(days []models.TimeSlotDay) (next string, summary string) {
	total := 0
	for _, d := range days {
		total += len(d.Slots)
	}
	if len(days) == 0 || total == 0 {
		return "", "no availability"
	}
	first := days[0]
	return first.Date + " " + first.Slots[0], fmt.Sprintf("%d slots over %d days", total, len(days))
}
