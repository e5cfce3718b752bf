package model

// SlotStatus is the per-slot view of today's draw schedule.
type SlotStatus struct {
	Slot        string // "HH:MM"
	Label       string // 12-hour display label, e.g. "1:00 PM"
	Animal      *Animal
	IsCompleted bool
	IsNext      bool
}
