package model

// ConfidenceTier labels how strong a prediction's composite score is.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "HIGH"
	TierMedium ConfidenceTier = "MEDIUM"
	TierLow    ConfidenceTier = "LOW"
)

// PredictionResult is one ranked engine output. Created fresh per request,
// never mutated.
type PredictionResult struct {
	Animal      *Animal
	Probability float64 // 0-100 scale, one decimal
	Confidence  ConfidenceTier
	Rationale   string
}
