package history

import (
	"fmt"
	"testing"

	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/registry"
)

func resultSet(prov model.Provenance, entries ...model.HistoryEntry) *model.ResultSet {
	return &model.ResultSet{LotteryID: "GUACHARO", Kind: model.RequestToday, Entries: entries, Provenance: prov}
}

func entry(reg *registry.Registry, date, slot, code string) model.HistoryEntry {
	a, _ := reg.ByCode(code)
	return model.HistoryEntry{Date: date, Slot: slot, Animal: a, Raw: a.Name}
}

func TestMerge_NewestFirstAndDedup(t *testing.T) {
	reg := registry.New()
	s := NewStore(0)

	added := s.Merge(resultSet(model.ProvenanceLive,
		entry(reg, "2026-08-28", "09:00", "05"),
		entry(reg, "2026-08-29", "10:00", "12"),
		entry(reg, "2026-08-29", "09:00", "07"),
		entry(reg, "2026-08-29", "09:00", "11"), // duplicate (date,slot), first wins
	))
	if added != 3 {
		t.Fatalf("added = %d, want 3", added)
	}

	snap := s.Snapshot()
	got := make([]string, len(snap))
	for i, e := range snap {
		got[i] = e.Date + " " + e.Slot
	}
	want := []string{"2026-08-29 10:00", "2026-08-29 09:00", "2026-08-28 09:00"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snapshot[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if a, ok := s.ResultFor("2026-08-29", "09:00"); !ok || a.Code != "07" {
		t.Errorf("first occurrence should win, got %v", a)
	}
}

func TestMerge_RealReplacesSynthetic(t *testing.T) {
	reg := registry.New()
	s := NewStore(0)

	s.Merge(resultSet(model.ProvenanceSynthetic, entry(reg, "2026-08-29", "09:00", "05")))
	s.Merge(resultSet(model.ProvenanceLive, entry(reg, "2026-08-29", "09:00", "12")))

	if a, ok := s.ResultFor("2026-08-29", "09:00"); !ok || a.Code != "12" {
		t.Errorf("live entry should replace synthetic placeholder, got %v", a)
	}

	// But synthetic must never displace real data.
	s.Merge(resultSet(model.ProvenanceSynthetic, entry(reg, "2026-08-29", "09:00", "30")))
	if a, _ := s.ResultFor("2026-08-29", "09:00"); a.Code != "12" {
		t.Errorf("synthetic entry displaced real data: %v", a)
	}
}

func TestMerge_DropsUnresolved(t *testing.T) {
	s := NewStore(0)
	added := s.Merge(resultSet(model.ProvenanceLive, model.HistoryEntry{Date: "2026-08-29", Slot: "09:00", Raw: "???"}))
	if added != 0 || s.Len() != 0 {
		t.Errorf("unresolved entry admitted: added=%d len=%d", added, s.Len())
	}
}

func TestMerge_CapEvictsOldest(t *testing.T) {
	reg := registry.New()
	s := NewStore(10)

	var entries []model.HistoryEntry
	for d := 1; d <= 15; d++ {
		entries = append(entries, entry(reg, fmt.Sprintf("2026-08-%02d", d), "09:00", "05"))
	}
	s.Merge(resultSet(model.ProvenanceLive, entries...))

	if s.Len() != 10 {
		t.Fatalf("len = %d, want capacity 10", s.Len())
	}
	snap := s.Snapshot()
	if snap[0].Date != "2026-08-15" {
		t.Errorf("newest entry = %s, want 2026-08-15", snap[0].Date)
	}
	if snap[len(snap)-1].Date != "2026-08-06" {
		t.Errorf("oldest retained = %s, want 2026-08-06 (older evicted)", snap[len(snap)-1].Date)
	}
}
