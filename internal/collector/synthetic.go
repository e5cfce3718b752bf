package collector

import (
	"hash/fnv"
	"math/rand"

	"AnimalitoSentinel/internal/model"
)

// syntheticDays is how far back the fabricated extended history reaches.
const syntheticDays = 21

// synthetic fabricates a plausible-shaped result set so downstream
// components always receive a well-formed, non-empty collection. Seeded
// per lottery and calendar day, so repeated calls are deterministic. The
// provenance flag is the only thing that distinguishes it from real data.
func (p *Pipeline) synthetic(kind model.RequestKind) *model.ResultSet {
	now := p.now()
	entries := []model.HistoryEntry{}

	days := 1
	if kind == model.RequestHistory {
		days = syntheticDays
	}
	for d := 0; d < days; d++ {
		date := now.AddDate(0, 0, -d).Format("2006-01-02")
		rng := rand.New(rand.NewSource(seedFor(p.cfg.LotteryID, date)))
		for _, slot := range p.cfg.Slots {
			animal := p.cfg.Registry.Entries()[rng.Intn(p.cfg.Registry.Len())]
			entries = append(entries, model.HistoryEntry{
				Date:   date,
				Slot:   slot,
				Animal: animal,
				Raw:    animal.Name,
			})
		}
	}

	return &model.ResultSet{
		LotteryID:  p.cfg.LotteryID,
		Kind:       kind,
		Entries:    entries,
		Source:     "synthetic",
		Provenance: model.ProvenanceSynthetic,
		FetchedAt:  now,
	}
}

func seedFor(lotteryID, date string) int64 {
	h := fnv.New64a()
	h.Write([]byte(lotteryID))
	h.Write([]byte(date))
	return int64(h.Sum64())
}
