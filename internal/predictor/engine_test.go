package predictor

import (
	"math"
	"testing"

	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/registry"
)

func entryFor(reg *registry.Registry, code, date, slot string) model.HistoryEntry {
	a, ok := reg.ByCode(code)
	if !ok {
		panic("unknown code " + code)
	}
	return model.HistoryEntry{Date: date, Slot: slot, Animal: a, Raw: a.Name}
}

// alternating builds n entries flip-flopping between two codes,
// newest-first, with the newest being codeA.
func alternating(reg *registry.Registry, codeA, codeB string, n int) []model.HistoryEntry {
	entries := make([]model.HistoryEntry, n)
	for i := 0; i < n; i++ {
		code := codeA
		if i%2 == 1 {
			code = codeB
		}
		entries[i] = entryFor(reg, code, "2026-08-29", "09:00")
	}
	return entries
}

func TestFrequencies_SumToOne(t *testing.T) {
	reg := registry.New()
	var snapshot []model.HistoryEntry
	codes := []string{"05", "12", "36", "05", "00", "17", "12", "05", "23", "31"}
	for _, c := range codes {
		snapshot = append(snapshot, entryFor(reg, c, "2026-08-29", "09:00"))
	}
	e := NewEngine(reg, snapshot)

	sum := 0.0
	for _, a := range reg.Entries() {
		sum += e.freq[a.ID]
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("frequencies sum to %.12f, want 1", sum)
	}
}

func TestMarkov_FallbackAtLengthOne(t *testing.T) {
	reg := registry.New()
	e := NewEngine(reg, []model.HistoryEntry{entryFor(reg, "05", "2026-08-29", "09:00")})

	if e.markov != nil {
		t.Fatal("markov must be undefined with a single entry")
	}
	for _, a := range reg.Entries() {
		if got, want := e.markovScore(a.ID), e.freq[a.ID]; got != want {
			t.Errorf("markovScore(%s) = %v, want freq %v", a.ID, got, want)
		}
	}
}

func TestMarkov_UndefinedWhenLastNeverRecurs(t *testing.T) {
	reg := registry.New()
	// Newest entry is 36, which appears nowhere else, so no transition out
	// of it was ever observed.
	snapshot := []model.HistoryEntry{
		entryFor(reg, "36", "2026-08-29", "10:00"),
		entryFor(reg, "05", "2026-08-29", "09:00"),
		entryFor(reg, "12", "2026-08-28", "19:00"),
	}
	e := NewEngine(reg, snapshot)
	if e.markov != nil {
		t.Error("markov must be undefined when the last animal never recurs")
	}
}

func TestTop_AlternatingHistoryRanksFollower(t *testing.T) {
	reg := registry.New()
	// 20 draws alternating A=05, B=12, newest = A. Every observed
	// transition out of A leads to B.
	e := NewEngine(reg, alternating(reg, "05", "12", 20))

	if e.markov == nil {
		t.Fatal("markov should be defined")
	}
	if m := e.markov["12"]; m != 1.0 {
		t.Errorf("m(B) = %v, want 1.0", m)
	}

	top := e.Top(5)
	if len(top) != 5 {
		t.Fatalf("got %d predictions, want 5", len(top))
	}
	if top[0].Animal.Code != "12" {
		t.Errorf("rank 1 = %s (%s), want 12", top[0].Animal.Code, top[0].Animal.Name)
	}
	// f = t = 0.5 for both, so score(B) = 0.35 + 0.30, score(A) = 0.35.
	if top[0].Probability != 65.0 {
		t.Errorf("P(B) = %v, want 65.0", top[0].Probability)
	}
	if top[1].Animal.Code != "05" || top[1].Probability != 35.0 {
		t.Errorf("rank 2 = %s at %v, want 05 at 35.0", top[1].Animal.Code, top[1].Probability)
	}
	if top[0].Confidence != model.TierHigh {
		t.Errorf("confidence = %s, want HIGH", top[0].Confidence)
	}
}

func TestTop_EmptyHistory(t *testing.T) {
	reg := registry.New()
	e := NewEngine(reg, nil)
	if got := e.Top(5); len(got) != 0 {
		t.Errorf("empty history must yield no predictions, got %d", len(got))
	}
}

func TestTop_SingleEntryScoresPerfect(t *testing.T) {
	reg := registry.New()
	e := NewEngine(reg, []model.HistoryEntry{entryFor(reg, "10", "2026-08-29", "09:00")})

	top := e.Top(1)
	if len(top) != 1 {
		t.Fatalf("got %d predictions, want 1", len(top))
	}
	// f = t = 1 and markov falls back to f, so the composite is exactly 1.
	if top[0].Animal.Code != "10" || top[0].Probability != 100.0 {
		t.Errorf("got %s at %v, want 10 at 100.0", top[0].Animal.Code, top[0].Probability)
	}
	if top[0].Confidence != model.TierHigh {
		t.Errorf("confidence = %s, want HIGH", top[0].Confidence)
	}
}

func TestTop_TiesKeepRegistryOrder(t *testing.T) {
	reg := registry.New()
	// Two animals with identical statistics: declaration order decides.
	snapshot := []model.HistoryEntry{
		entryFor(reg, "12", "2026-08-29", "10:00"),
		entryFor(reg, "05", "2026-08-29", "09:00"),
		entryFor(reg, "12", "2026-08-28", "19:00"),
		entryFor(reg, "05", "2026-08-28", "18:00"),
	}
	e := NewEngine(reg, snapshot)
	first := e.Top(10)
	second := e.Top(10)
	for i := range first {
		if first[i].Animal.ID != second[i].Animal.ID {
			t.Fatalf("ranking not deterministic at %d: %s vs %s", i, first[i].Animal.ID, second[i].Animal.ID)
		}
	}
	// All zero-scored animals must appear in declaration order.
	var zeros []string
	for _, p := range first {
		if p.Animal.Code != "05" && p.Animal.Code != "12" {
			zeros = append(zeros, p.Animal.Code)
		}
	}
	for i := 1; i < len(zeros); i++ {
		if zeros[i-1] >= zeros[i] {
			t.Errorf("tied entries out of declaration order: %v", zeros)
			break
		}
	}
}

func TestNewEngine_ExcludesUnresolved(t *testing.T) {
	reg := registry.New()
	snapshot := []model.HistoryEntry{
		entryFor(reg, "05", "2026-08-29", "10:00"),
		{Date: "2026-08-29", Slot: "09:00", Raw: "ilegible"},
		entryFor(reg, "12", "2026-08-28", "19:00"),
	}
	e := NewEngine(reg, snapshot)
	if e.HistoryLen() != 2 {
		t.Errorf("history len = %d, want 2 (unresolved excluded)", e.HistoryLen())
	}
	sum := 0.0
	for _, a := range reg.Entries() {
		sum += e.freq[a.ID]
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("frequencies over resolved entries sum to %v, want 1", sum)
	}
}
