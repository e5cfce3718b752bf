package predictor

import (
	"math"
	"sort"

	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/registry"
)

// Composite weights: trend dominates, per the hybrid model tuning.
const (
	alpha = 0.25 // global frequency
	beta  = 0.45 // windowed trend
	gamma = 0.30 // Markov transition
)

// Confidence thresholds on the composite score.
const (
	highThreshold = 0.09
	midThreshold  = 0.05
)

// maxHistory caps the snapshot the engine will consider.
const maxHistory = 200

// trendWindows weight recent momentum over the long run; weights sum to 1.
var trendWindows = []struct {
	size   int
	weight float64
}{
	{20, 0.40},
	{60, 0.35},
	{120, 0.25},
}

// Engine precomputes frequency, trend and Markov statistics over an
// immutable history snapshot (newest-first) and ranks the whole registry.
// It never fails: an empty history simply yields no predictions.
type Engine struct {
	reg     *registry.Registry
	history []model.HistoryEntry
	freq    map[string]float64
	trend   map[string]float64
	markov  map[string]float64 // nil when undefined; markovScore falls back to freq
	memo    map[int][]model.PredictionResult
}

// NewEngine builds an engine from a snapshot. Entries without a resolved
// animal are excluded from every statistic.
func NewEngine(reg *registry.Registry, snapshot []model.HistoryEntry) *Engine {
	filtered := make([]model.HistoryEntry, 0, len(snapshot))
	for _, e := range snapshot {
		if e.Animal == nil {
			continue
		}
		filtered = append(filtered, e)
		if len(filtered) == maxHistory {
			break
		}
	}

	e := &Engine{
		reg:     reg,
		history: filtered,
		memo:    make(map[int][]model.PredictionResult),
	}
	e.freq = e.globalFrequencies()
	e.trend = e.trendScores()
	e.markov = e.markovProbabilities()
	return e
}

// HistoryLen returns how many resolved entries back the statistics.
func (e *Engine) HistoryLen() int { return len(e.history) }

func (e *Engine) globalFrequencies() map[string]float64 {
	counts := make(map[string]int, e.reg.Len())
	for _, h := range e.history {
		counts[h.Animal.ID]++
	}
	total := float64(len(e.history))
	if total == 0 {
		total = 1
	}
	freq := make(map[string]float64, e.reg.Len())
	for _, a := range e.reg.Entries() {
		freq[a.ID] = float64(counts[a.ID]) / total
	}
	return freq
}

func (e *Engine) trendScores() map[string]float64 {
	scores := make(map[string]float64, e.reg.Len())
	for _, w := range trendWindows {
		size := w.size
		if size > len(e.history) {
			size = len(e.history)
		}
		if size == 0 {
			continue
		}
		counts := make(map[string]int, size)
		for _, h := range e.history[:size] {
			counts[h.Animal.ID]++
		}
		for _, a := range e.reg.Entries() {
			scores[a.ID] += float64(counts[a.ID]) / float64(size) * w.weight
		}
	}
	return scores
}

// markovProbabilities tallies what historically followed the most recent
// animal. Returns nil when fewer than 2 entries exist or the last animal
// never recurs; callers then degrade to the frequency distribution.
func (e *Engine) markovProbabilities() map[string]float64 {
	if len(e.history) < 2 {
		return nil
	}
	last := e.history[0].Animal.ID
	transitions := make(map[string]int)
	total := 0
	for i := len(e.history) - 2; i >= 0; i-- {
		older := e.history[i+1].Animal.ID // older-adjacent position
		if older != last {
			continue
		}
		transitions[e.history[i].Animal.ID]++
		total++
	}
	if total == 0 {
		return nil
	}
	probs := make(map[string]float64, e.reg.Len())
	for _, a := range e.reg.Entries() {
		probs[a.ID] = float64(transitions[a.ID]) / float64(total)
	}
	return probs
}

// markovScore degrades gracefully to frequency when the transition model
// is undefined.
func (e *Engine) markovScore(id string) float64 {
	if e.markov == nil {
		return e.freq[id]
	}
	return e.markov[id]
}

// Top returns the n highest-scoring registry entries, descending, ties
// broken by registry declaration order. Memoized per n for the lifetime of
// the engine (the snapshot never changes underneath it).
func (e *Engine) Top(n int) []model.PredictionResult {
	if len(e.history) == 0 || n <= 0 {
		return []model.PredictionResult{}
	}
	if cached, ok := e.memo[n]; ok {
		out := make([]model.PredictionResult, len(cached))
		copy(out, cached)
		return out
	}

	type scored struct {
		animal  *model.Animal
		score   float64
		f, t, m float64
	}
	ranked := make([]scored, 0, e.reg.Len())
	for _, a := range e.reg.Entries() {
		f := e.freq[a.ID]
		t := e.trend[a.ID]
		m := e.markovScore(a.ID)
		ranked = append(ranked, scored{animal: a, score: alpha*f + beta*t + gamma*m, f: f, t: t, m: m})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if n > len(ranked) {
		n = len(ranked)
	}
	results := make([]model.PredictionResult, n)
	for i := 0; i < n; i++ {
		r := ranked[i]
		results[i] = model.PredictionResult{
			Animal:      r.animal,
			Probability: math.Round(r.score*1000) / 10,
			Confidence:  tierFor(r.score),
			Rationale:   buildRationale(r.f, r.t, r.m, e.markov != nil),
		}
	}
	e.memo[n] = results

	out := make([]model.PredictionResult, len(results))
	copy(out, results)
	return out
}

func tierFor(score float64) model.ConfidenceTier {
	switch {
	case score > highThreshold:
		return model.TierHigh
	case score > midThreshold:
		return model.TierMedium
	default:
		return model.TierLow
	}
}

// buildRationale picks a short explanation from the relative magnitudes of
// the three statistics. Descriptive only, never an input to ranking.
func buildRationale(f, t, m float64, hasMarkov bool) string {
	switch {
	case t > f && m > 0.12:
		return "Alta probabilidad por transición directa y tendencia reciente."
	case t > f:
		return "Tendencia positiva detectada en la ventana móvil de corto plazo."
	case hasMarkov && m > 0.1:
		return "Fuerte correlación estadística con el último ganador."
	case f > 0.06:
		return "Animal con alta frecuencia histórica."
	default:
		return "Métrica base estable detectada por el modelo híbrido."
	}
}
