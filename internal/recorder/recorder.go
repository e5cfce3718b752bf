package recorder

import "AnimalitoSentinel/internal/model"

// AcquisitionEvent records one trip through the acquisition pipeline.
type AcquisitionEvent struct {
	LotteryID  string
	Kind       model.RequestKind
	Source     string
	Provenance model.Provenance
	Entries    int
	ElapsedMs  int64
}

// PredictionSnapshot records one published ranking.
type PredictionSnapshot struct {
	LotteryID  string
	HistoryLen int
	Refined    bool
	Top        []model.PredictionResult
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordAcquisition(evt *AcquisitionEvent) error
	RecordPrediction(snap *PredictionSnapshot) error
	Close() error
}
