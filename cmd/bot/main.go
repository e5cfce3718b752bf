package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AnimalitoSentinel/internal/cache"
	"AnimalitoSentinel/internal/collector"
	"AnimalitoSentinel/internal/config"
	"AnimalitoSentinel/internal/history"
	"AnimalitoSentinel/internal/notifier"
	"AnimalitoSentinel/internal/oracle"
	"AnimalitoSentinel/internal/recorder"
	"AnimalitoSentinel/internal/registry"
	"AnimalitoSentinel/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] AnimalitoSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init cache: Redis when reachable, in-process memory otherwise
	var store cache.Store
	if cfg.Cache.RedisAddr != "" {
		rs := cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		err := rs.Ping(pingCtx)
		pingCancel()
		if err != nil {
			log.Printf("[WARN] redis unreachable (%v), using in-memory cache", err)
			store = cache.NewMemoryStore()
		} else {
			log.Printf("[INFO] cache backend: redis at %s", cfg.Cache.RedisAddr)
			store = rs
			defer rs.Close()
		}
	} else {
		store = cache.NewMemoryStore()
	}

	reg := registry.New()
	httpClient := collector.NewHTTPClient(cfg.Proxy, time.Duration(cfg.Acquisition.TimeoutMs)*time.Millisecond)

	// One pipeline and history store per lottery variant
	trackers := make([]*scheduler.Tracker, 0, len(cfg.Lotteries))
	for _, lot := range cfg.Lotteries {
		sources := collector.BuildSources(lot.ID, lot.Sources, reg, cfg.Acquisition.Relays, httpClient)
		pipeline := collector.NewPipeline(collector.Config{
			LotteryID:    lot.ID,
			Slots:        lot.Slots,
			Sources:      sources,
			Cache:        store,
			Registry:     reg,
			RequestDelay: time.Duration(cfg.Acquisition.RequestDelayMs) * time.Millisecond,
			Timeout:      time.Duration(cfg.Acquisition.TimeoutMs) * time.Millisecond,
			TTL: collector.TTLPolicy{
				API:       time.Duration(cfg.Acquisition.TTL.APIMinutes) * time.Minute,
				Scraping:  time.Duration(cfg.Acquisition.TTL.ScrapingMinutes) * time.Minute,
				Community: time.Duration(cfg.Acquisition.TTL.CommunityMinutes) * time.Minute,
				History:   time.Duration(cfg.Acquisition.TTL.HistoryMinutes) * time.Minute,
			},
		})

		var community *collector.CommunitySource
		for _, src := range sources {
			if cs, ok := src.(*collector.CommunitySource); ok {
				community = cs
				break
			}
		}

		trackers = append(trackers, &scheduler.Tracker{
			Lottery:   lot,
			Pipeline:  pipeline,
			History:   history.NewStore(cfg.HistoryCapacity),
			Community: community,
		})
		log.Printf("[INFO] tracking %s: %d slots, %d sources", lot.ID, len(lot.Slots), len(sources))
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Optional LLM refinement
	oc := oracle.NewClient(cfg.Oracle.BaseURL, cfg.Oracle.APIKey, cfg.Oracle.Model, reg)
	if oc.Enabled() {
		log.Printf("[INFO] oracle refinement enabled: %s", cfg.Oracle.Model)
	}

	// Init scheduler
	grace := time.Duration(cfg.Schedule.GraceMinutes) * time.Minute
	sched := scheduler.NewScheduler(ctx, trackers, reg, tn, rec, oc, grace, cfg.Schedule.TopN)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing refresh now")
		go sched.RunRefreshNow()
	}

	log.Println("[INFO] AnimalitoSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] AnimalitoSentinel stopped")
}
