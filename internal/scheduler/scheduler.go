package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"AnimalitoSentinel/internal/collector"
	"AnimalitoSentinel/internal/config"
	"AnimalitoSentinel/internal/history"
	"AnimalitoSentinel/internal/model"
	"AnimalitoSentinel/internal/notifier"
	"AnimalitoSentinel/internal/oracle"
	"AnimalitoSentinel/internal/predictor"
	"AnimalitoSentinel/internal/recorder"
	"AnimalitoSentinel/internal/registry"
	"AnimalitoSentinel/internal/schedule"
)

// Tracker bundles everything the scheduler needs for one lottery variant.
type Tracker struct {
	Lottery   config.Lottery
	Pipeline  *collector.Pipeline
	History   *history.Store
	Community *collector.CommunitySource // nil when the chain has none
}

// Scheduler manages all cron tasks and user commands.
type Scheduler struct {
	Cron     *cron.Cron
	Trackers []*Tracker
	Registry *registry.Registry
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Oracle   *oracle.Client
	Grace    time.Duration
	TopN     int
	Ctx      context.Context

	mu         sync.Mutex
	countdowns map[string]string // lottery ID -> last computed countdown
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, trackers []*Tracker, reg *registry.Registry, tn *notifier.TelegramNotifier, rec recorder.Recorder, oc *oracle.Client, grace time.Duration, topN int) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Trackers:   trackers,
		Registry:   reg,
		Notifier:   tn,
		Recorder:   rec,
		Oracle:     oc,
		Grace:      grace,
		TopN:       topN,
		Ctx:        ctx,
		countdowns: make(map[string]string),
	}
}

// RegisterAll registers the periodic refresh task and starts the countdown
// ticker goroutine.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshAll); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	go s.tickCountdowns()
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshAll()
}

func (s *Scheduler) refreshAll() {
	for _, t := range s.Trackers {
		s.refreshTracker(t, true)
	}
}

// refreshTracker acquires today's draws and the extended history in
// parallel, folds both into the tracker's history store and publishes a
// fresh prediction digest. Returns the today-set so callers can surface
// its provenance.
func (s *Scheduler) refreshTracker(t *Tracker, announce bool) *model.ResultSet {
	log.Printf("[INFO] refreshing %s", t.Lottery.ID)

	var wg sync.WaitGroup
	var todaySet, historySet *model.ResultSet
	wg.Add(2)
	go func() {
		defer wg.Done()
		todaySet = s.acquire(t, model.RequestToday)
	}()
	go func() {
		defer wg.Done()
		historySet = s.acquire(t, model.RequestHistory)
	}()
	wg.Wait()

	added := t.History.Merge(historySet) + t.History.Merge(todaySet)
	log.Printf("[INFO] %s: history now %d entries (%d new)", t.Lottery.ID, t.History.Len(), added)

	if !announce {
		return todaySet
	}
	preds, refined, historyLen := s.predict(t)
	digest := notifier.FormatPredictionDigest(t.Lottery.Name, preds, historyLen, refined, todaySet.Provenance)
	board := notifier.FormatScheduleBoard(t.Lottery.Name, s.boardFor(t))
	s.trySend(digest + "\n" + board)

	if err := s.Recorder.RecordPrediction(&recorder.PredictionSnapshot{
		LotteryID:  t.Lottery.ID,
		HistoryLen: historyLen,
		Refined:    refined,
		Top:        preds,
	}); err != nil {
		log.Printf("[ERROR] record prediction: %v", err)
	}
	return todaySet
}

func (s *Scheduler) acquire(t *Tracker, kind model.RequestKind) *model.ResultSet {
	start := time.Now()
	rs := t.Pipeline.Acquire(s.Ctx, kind)
	if err := s.Recorder.RecordAcquisition(&recorder.AcquisitionEvent{
		LotteryID:  t.Lottery.ID,
		Kind:       kind,
		Source:     rs.Source,
		Provenance: rs.Provenance,
		Entries:    len(rs.Entries),
		ElapsedMs:  time.Since(start).Milliseconds(),
	}); err != nil {
		log.Printf("[ERROR] record acquisition: %v", err)
	}
	return rs
}

// predict builds the statistical ranking and optionally refines it. A
// refinement failure is logged and discarded; the statistical ranking is
// always a valid answer.
func (s *Scheduler) predict(t *Tracker) ([]model.PredictionResult, bool, int) {
	engine := predictor.NewEngine(s.Registry, t.History.Snapshot())
	preds := engine.Top(s.TopN)
	if len(preds) == 0 || !s.Oracle.Enabled() {
		return preds, false, engine.HistoryLen()
	}

	refined, err := s.Oracle.Refine(s.Ctx, t.Lottery.Name, preds, engine.HistoryLen())
	if err != nil {
		log.Printf("[WARN] oracle refine %s: %v, keeping statistical ranking", t.Lottery.ID, err)
		return preds, false, engine.HistoryLen()
	}
	return refined, true, engine.HistoryLen()
}

func (s *Scheduler) boardFor(t *Tracker) []model.SlotStatus {
	now := time.Now()
	today := now.Format("2006-01-02")
	results := make(map[string]*model.Animal, len(t.Lottery.Slots))
	for _, slot := range t.Lottery.Slots {
		if a, ok := t.History.ResultFor(today, slot); ok {
			results[slot] = a
		}
	}
	return schedule.Build(t.Lottery.Slots, results, now, s.Grace)
}

// tickCountdowns keeps a per-lottery countdown string warm so command
// replies never have to compute anything.
func (s *Scheduler) tickCountdowns() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.Ctx.Done():
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for _, t := range s.Trackers {
				s.countdowns[t.Lottery.ID] = schedule.Countdown(t.Lottery.Slots, now)
			}
			s.mu.Unlock()
		}
	}
}

func (s *Scheduler) countdownFor(t *Tracker) string {
	s.mu.Lock()
	c := s.countdowns[t.Lottery.ID]
	s.mu.Unlock()
	if c == "" {
		c = schedule.Countdown(t.Lottery.Slots, time.Now())
	}
	return c
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}

	switch fields[0] {
	case "/predict", "/prediccion":
		t, err := s.trackerFor(fields, 1)
		if err != nil {
			return err.Error()
		}
		todaySet := s.refreshTracker(t, false)
		preds, refined, historyLen := s.predict(t)
		return notifier.FormatPredictionDigest(t.Lottery.Name, preds, historyLen, refined, todaySet.Provenance)

	case "/hoy", "/today":
		t, err := s.trackerFor(fields, 1)
		if err != nil {
			return err.Error()
		}
		return notifier.FormatScheduleBoard(t.Lottery.Name, s.boardFor(t))

	case "/countdown":
		var b strings.Builder
		for _, t := range s.Trackers {
			b.WriteString(notifier.FormatCountdown(t.Lottery.Name, s.countdownFor(t)))
			b.WriteString("\n")
		}
		return b.String()

	case "/reportar":
		// /reportar <lottery> <HH:MM> <animal>
		if len(fields) < 4 {
			return "Uso: /reportar LOTERIA HH:MM animal"
		}
		t, err := s.trackerFor(fields, 1)
		if err != nil {
			return err.Error()
		}
		if t.Community == nil {
			return fmt.Sprintf("%s no tiene API comunitaria configurada.", t.Lottery.Name)
		}
		animal, ok := s.Registry.Resolve(strings.Join(fields[3:], " "))
		if !ok {
			return fmt.Sprintf("No reconozco el animalito %q.", strings.Join(fields[3:], " "))
		}
		go t.Community.Report(s.Ctx, fields[2], animal)
		return fmt.Sprintf("Reportado: %s %s %s a las %s. ¡Gracias!", animal.Glyph, animal.Code, animal.Name, fields[2])

	default:
		return "Comandos disponibles:\n" +
			"• /predict [loteria]\n" +
			"• /hoy [loteria]\n" +
			"• /countdown\n" +
			"• /reportar LOTERIA HH:MM animal"
	}
}

// trackerFor picks the tracker named at fields[idx], defaulting to the
// first configured lottery when the argument is omitted.
func (s *Scheduler) trackerFor(fields []string, idx int) (*Tracker, error) {
	if len(fields) <= idx {
		return s.Trackers[0], nil
	}
	want := strings.ToUpper(fields[idx])
	for _, t := range s.Trackers {
		if strings.ToUpper(t.Lottery.ID) == want || strings.ToUpper(t.Lottery.Name) == want {
			return t, nil
		}
	}
	var known []string
	for _, t := range s.Trackers {
		known = append(known, t.Lottery.ID)
	}
	return nil, fmt.Errorf("Lotería desconocida %q. Disponibles: %s", fields[idx], strings.Join(known, ", "))
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
