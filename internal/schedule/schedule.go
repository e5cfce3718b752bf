package schedule

import (
	"fmt"
	"time"

	"AnimalitoSentinel/internal/model"
)

// DefaultGrace absorbs publication lag before a slot without a known
// result is considered completed.
const DefaultGrace = 5 * time.Minute

// Build derives per-slot status from wall-clock time and known results.
// A slot is completed once its time-of-day is at least grace in the past,
// or as soon as a result for it is known, whichever comes first. Exactly
// one incomplete slot — the chronologically earliest future one — is
// flagged next.
func Build(slots []string, results map[string]*model.Animal, now time.Time, grace time.Duration) []model.SlotStatus {
	nowMinutes := now.Hour()*60 + now.Minute()

	statuses := make([]model.SlotStatus, 0, len(slots))
	nextFlagged := false
	for _, slot := range slots {
		mins, ok := slotMinutes(slot)
		if !ok {
			continue
		}
		animal := results[slot]
		completed := animal != nil || time.Duration(nowMinutes-mins)*time.Minute >= grace

		isNext := false
		if !nextFlagged && !completed && mins > nowMinutes {
			isNext = true
			nextFlagged = true
		}

		statuses = append(statuses, model.SlotStatus{
			Slot:        slot,
			Label:       Label(slot),
			Animal:      animal,
			IsCompleted: completed,
			IsNext:      isNext,
		})
	}
	return statuses
}

// Countdown formats the time remaining until the next slot: hours and
// minutes while more than an hour remains, minutes and seconds below
// that. When today's slots are done it points at tomorrow's first slot.
func Countdown(slots []string, now time.Time) string {
	if len(slots) == 0 {
		return ""
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	for _, slot := range slots {
		mins, ok := slotMinutes(slot)
		if !ok || mins <= nowMinutes {
			continue
		}
		target := time.Date(now.Year(), now.Month(), now.Day(), mins/60, mins%60, 0, 0, now.Location())
		d := target.Sub(now)
		if d > time.Hour {
			return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
		}
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return "Mañana " + Label(slots[0])
}

// Label renders a slot in 12-hour display form, e.g. "1:00 PM".
func Label(slot string) string {
	mins, ok := slotMinutes(slot)
	if !ok {
		return slot
	}
	h, m := mins/60, mins%60
	suffix := "AM"
	switch {
	case h == 0:
		h = 12
	case h == 12:
		suffix = "PM"
	case h > 12:
		h -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

func slotMinutes(slot string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(slot, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
