package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"AnimalitoSentinel/internal/cache"
	"AnimalitoSentinel/internal/collector"
	"AnimalitoSentinel/internal/config"
	"AnimalitoSentinel/internal/history"
	"AnimalitoSentinel/internal/recorder"
	"AnimalitoSentinel/internal/registry"
)

// newTestScheduler builds a scheduler around a sourceless pipeline: every
// acquisition degrades straight to the synthetic generator, so no test
// ever touches the network.
func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	reg := registry.New()
	lot := config.Lottery{
		ID:    "GUACHARO",
		Name:  "Guácharo Activo",
		Slots: []string{"09:00", "10:00", "11:00"},
	}
	pipeline := collector.NewPipeline(collector.Config{
		LotteryID: lot.ID,
		Slots:     lot.Slots,
		Cache:     cache.NewMemoryStore(),
		Registry:  reg,
	})
	tracker := &Tracker{
		Lottery:  lot,
		Pipeline: pipeline,
		History:  history.NewStore(0),
	}
	return NewScheduler(context.Background(), []*Tracker{tracker}, reg, nil,
		recorder.NewNoopRecorder(), nil, 5*time.Minute, 5)
}

func TestHandleCommand_Predict(t *testing.T) {
	s := newTestScheduler(t)
	reply := s.HandleCommand("/predict")
	if !strings.Contains(reply, "Predicciones Guácharo Activo") {
		t.Errorf("predict reply missing header:\n%s", reply)
	}
	// Synthetic history is enough to produce a ranked list.
	if !strings.Contains(reply, "1.") || !strings.Contains(reply, "%") {
		t.Errorf("predict reply missing ranking:\n%s", reply)
	}
	if s.Trackers[0].History.Len() == 0 {
		t.Error("predict did not fold acquired results into history")
	}
}

func TestHandleCommand_PredictLabelsDegradedData(t *testing.T) {
	s := newTestScheduler(t)
	// The sourceless pipeline can only produce synthetic results, and the
	// digest must say so rather than claim live data.
	reply := s.HandleCommand("/predict")
	if !strings.Contains(reply, "datos simulados") {
		t.Errorf("synthetic acquisition not labelled:\n%s", reply)
	}
	if strings.Contains(reply, "datos en vivo") {
		t.Errorf("degraded acquisition announced as live:\n%s", reply)
	}
}

func TestHandleCommand_Today(t *testing.T) {
	s := newTestScheduler(t)
	reply := s.HandleCommand("/hoy")
	if !strings.Contains(reply, "Sorteos de hoy") || !strings.Contains(reply, "9:00 AM") {
		t.Errorf("today reply:\n%s", reply)
	}
}

func TestHandleCommand_Countdown(t *testing.T) {
	s := newTestScheduler(t)
	reply := s.HandleCommand("/countdown")
	if !strings.Contains(reply, "Guácharo Activo") {
		t.Errorf("countdown reply:\n%s", reply)
	}
}

func TestHandleCommand_UnknownLottery(t *testing.T) {
	s := newTestScheduler(t)
	reply := s.HandleCommand("/hoy TACHIRA")
	if !strings.Contains(reply, "desconocida") {
		t.Errorf("unknown lottery reply:\n%s", reply)
	}
}

func TestHandleCommand_ReportWithoutCommunity(t *testing.T) {
	s := newTestScheduler(t)
	reply := s.HandleCommand("/reportar GUACHARO 09:00 León")
	if !strings.Contains(reply, "comunitaria") {
		t.Errorf("report reply:\n%s", reply)
	}
	if reply := s.HandleCommand("/reportar"); !strings.Contains(reply, "Uso:") {
		t.Errorf("usage reply:\n%s", reply)
	}
}

func TestHandleCommand_Help(t *testing.T) {
	s := newTestScheduler(t)
	reply := s.HandleCommand("hola")
	if !strings.Contains(reply, "/predict") || !strings.Contains(reply, "/countdown") {
		t.Errorf("help reply:\n%s", reply)
	}
}
