package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"AnimalitoSentinel/internal/model"
)

// Lottery configures one tracked lottery variant.
type Lottery struct {
	ID      string                   `yaml:"id"`
	Name    string                   `yaml:"name"`
	Slots   []string                 `yaml:"slots"`
	Sources []model.SourceDescriptor `yaml:"sources"`
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Lotteries   []Lottery `yaml:"lotteries"`
	Acquisition struct {
		RequestDelayMs int      `yaml:"request_delay_ms"`
		TimeoutMs      int      `yaml:"timeout_ms"`
		Relays         []string `yaml:"relays"`
		TTL            struct {
			APIMinutes       int `yaml:"api_minutes"`
			ScrapingMinutes  int `yaml:"scraping_minutes"`
			CommunityMinutes int `yaml:"community_minutes"`
			HistoryMinutes   int `yaml:"history_minutes"`
		} `yaml:"ttl"`
	} `yaml:"acquisition"`
	Cache struct {
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
	} `yaml:"cache"`
	Oracle struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
	} `yaml:"oracle"`
	Schedule struct {
		RefreshCron  string `yaml:"refresh_cron"`
		GraceMinutes int    `yaml:"grace_minutes"`
		TopN         int    `yaml:"top_n"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HistoryCapacity int    `yaml:"history_capacity"`
	Proxy           string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RedisDB = db
		}
	}
	if v := os.Getenv("ORACLE_BASE_URL"); v != "" {
		cfg.Oracle.BaseURL = v
	}
	if v := os.Getenv("ORACLE_API_KEY"); v != "" {
		cfg.Oracle.APIKey = v
	}
	if v := os.Getenv("ORACLE_MODEL"); v != "" {
		cfg.Oracle.Model = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if len(cfg.Lotteries) == 0 {
		cfg.Lotteries = defaultLotteries()
	}
	for i := range cfg.Lotteries {
		if len(cfg.Lotteries[i].Slots) == 0 {
			cfg.Lotteries[i].Slots = defaultSlots()
		}
		if cfg.Lotteries[i].Name == "" {
			cfg.Lotteries[i].Name = cfg.Lotteries[i].ID
		}
	}
	if cfg.Acquisition.RequestDelayMs == 0 {
		cfg.Acquisition.RequestDelayMs = 2000
	}
	if cfg.Acquisition.TimeoutMs == 0 {
		cfg.Acquisition.TimeoutMs = 10000
	}
	if len(cfg.Acquisition.Relays) == 0 {
		cfg.Acquisition.Relays = []string{
			"https://api.allorigins.win/get?url=",
			"https://api.codetabs.com/v1/proxy?quest=",
		}
	}
	if cfg.Acquisition.TTL.APIMinutes == 0 {
		cfg.Acquisition.TTL.APIMinutes = 10
	}
	if cfg.Acquisition.TTL.ScrapingMinutes == 0 {
		cfg.Acquisition.TTL.ScrapingMinutes = 5
	}
	if cfg.Acquisition.TTL.CommunityMinutes == 0 {
		cfg.Acquisition.TTL.CommunityMinutes = 2
	}
	if cfg.Acquisition.TTL.HistoryMinutes == 0 {
		cfg.Acquisition.TTL.HistoryMinutes = 15
	}
	if cfg.Schedule.RefreshCron == "" {
		// A few minutes past every hour with draws.
		cfg.Schedule.RefreshCron = "0 5 9-19 * * *"
	}
	if cfg.Schedule.GraceMinutes == 0 {
		cfg.Schedule.GraceMinutes = 5
	}
	if cfg.Schedule.TopN == 0 {
		cfg.Schedule.TopN = 5
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/animalito_sentinel.db"
	}
	if cfg.HistoryCapacity == 0 {
		cfg.HistoryCapacity = 200
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if len(c.Lotteries) == 0 {
		return fmt.Errorf("at least one lottery is required")
	}
	seen := make(map[string]bool, len(c.Lotteries))
	for _, l := range c.Lotteries {
		if l.ID == "" {
			return fmt.Errorf("lottery id is required")
		}
		if seen[l.ID] {
			return fmt.Errorf("duplicate lottery id %q", l.ID)
		}
		seen[l.ID] = true
		if len(l.Slots) == 0 {
			return fmt.Errorf("lottery %s: at least one slot is required", l.ID)
		}
	}
	if c.Schedule.TopN < 0 {
		return fmt.Errorf("schedule.top_n must be positive")
	}
	return nil
}

func defaultSlots() []string {
	return []string{
		"09:00", "10:00", "11:00", "12:00", "13:00",
		"16:00", "17:00", "18:00", "19:00",
	}
}

// defaultLotteries mirrors the acquisition chains the service launched
// with: official APIs first (inactive until available), public result
// sites next, the community API last.
func defaultLotteries() []Lottery {
	sourcesFor := func(apiSlug, webSlug, tripleSlug, avSlug string) []model.SourceDescriptor {
		return []model.SourceDescriptor{
			{
				Name:     "Lotería de Hoy - API",
				Endpoint: "https://api.loteriadehoy.com/v1/" + apiSlug + "/today",
				Kind:     model.SourceAPI,
				Priority: 1,
				IsActive: false,
				Headers: map[string]string{
					"Accept":     "application/json",
					"User-Agent": "AnimalitoSentinel/2.0",
				},
			},
			{
				Name:     "Lotería de Hoy - Web",
				Endpoint: "https://www.loteriadehoy.com/animalito/" + webSlug + "/resultados/",
				Kind:     model.SourceScraping,
				Priority: 2,
				IsActive: true,
			},
			{
				Name:     "Triple Caliente",
				Endpoint: "https://www.triplecaliente.com/" + tripleSlug,
				Kind:     model.SourceScraping,
				Priority: 3,
				IsActive: true,
			},
			{
				Name:     "Animalitos Venezuela",
				Endpoint: "https://www.animalitosvenezuela.com/" + avSlug,
				Kind:     model.SourceScraping,
				Priority: 4,
				IsActive: true,
			},
			{
				Name:     "Community API",
				Endpoint: "https://api.animalitos-community.com/v1/results",
				Kind:     model.SourceCommunity,
				Priority: 5,
				IsActive: false,
				Headers:  map[string]string{"Content-Type": "application/json"},
			},
		}
	}

	return []Lottery{
		{
			ID:      "GUACHARO",
			Name:    "Guácharo Activo",
			Slots:   defaultSlots(),
			Sources: sourcesFor("guacharo", "guacharoactivo", "guacharo-activo", "guacharo"),
		},
		{
			ID:      "LOTTO_ACTIVO",
			Name:    "Lotto Activo",
			Slots:   defaultSlots(),
			Sources: sourcesFor("lotto-activo", "lottoactivo", "lotto-activo", "lotto-activo"),
		},
	}
}
