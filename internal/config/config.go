// Package config loads golf-results settings from config.yaml, .env files and
// GOLF_* environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LastDefaultSeason caps the default season range.
const LastDefaultSeason = 2024

// envFiles are loaded in order; earlier files and the process environment win.
var envFiles = []string{".env.local", ".env"}

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig    `yaml:"store" mapstructure:"store"`
	Scrape  ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Backup  BackupConfig   `yaml:"backup" mapstructure:"backup"`
	Log     LogConfig      `yaml:"log" mapstructure:"log"`
	Players []PlayerConfig `yaml:"players" mapstructure:"players"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// ScrapeConfig configures the ESPN fetcher and the season range.
type ScrapeConfig struct {
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Delay       time.Duration `yaml:"delay" mapstructure:"delay"`
	FirstSeason int           `yaml:"first_season" mapstructure:"first_season"`
	LastSeason  int           `yaml:"last_season" mapstructure:"last_season"`
}

// BackupConfig configures where JSON backups are written.
type BackupConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// PlayerConfig is one roster entry.
type PlayerConfig struct {
	ID   int    `yaml:"id" mapstructure:"id"`
	Name string `yaml:"name" mapstructure:"name"`
}

// DefaultPlayers is the roster scraped when none is configured.
var DefaultPlayers = []PlayerConfig{
	{ID: 9478, Name: "Scottie Scheffler"},
	{ID: 8793, Name: "Rory McIlroy"},
	{ID: 5467, Name: "Jordan Spieth"},
	{ID: 6798, Name: "Justin Thomas"},
	{ID: 3448, Name: "Tiger Woods"},
	{ID: 1810, Name: "Phil Mickelson"},
	{ID: 9780, Name: "Collin Morikawa"},
	{ID: 11046, Name: "Viktor Hovland"},
	{ID: 10404, Name: "Xander Schauffele"},
	{ID: 9794, Name: "Bryson DeChambeau"},
}

// Load reads configuration from .env files, config.yaml and the environment.
func Load() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GOLF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("store.database_url", "GOLF_STORE_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, eris.Wrap(err, "config: bind database url")
	}

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.path", "data/golf.db")
	v.SetDefault("scrape.base_url", "https://www.espn.com")
	// empty keeps the scraper's browser User-Agent
	v.SetDefault("scrape.user_agent", "")
	v.SetDefault("scrape.timeout", 10*time.Second)
	v.SetDefault("scrape.delay", time.Second)
	v.SetDefault("scrape.first_season", 2015)
	v.SetDefault("scrape.last_season", min(time.Now().Year(), LastDefaultSeason))
	v.SetDefault("backup.dir", "data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if len(cfg.Players) == 0 {
		cfg.Players = append([]PlayerConfig(nil), DefaultPlayers...)
	}

	return &cfg, nil
}

func loadEnvFiles() error {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return eris.Wrapf(err, "config: load %s", path)
		}
	}
	return nil
}

// Validate checks the settings needed by the given command.
func (c *Config) Validate(command string) error {
	var errs []string

	if c.Scrape.FirstSeason > c.Scrape.LastSeason {
		errs = append(errs, "scrape.first_season must not be after scrape.last_season")
	}
	if c.Scrape.Delay < 0 {
		errs = append(errs, "scrape.delay must not be negative")
	}

	switch command {
	case "db":
		switch c.Store.Driver {
		case "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required (or set DATABASE_URL)")
			}
		case "sqlite":
			if c.Store.Path == "" {
				errs = append(errs, "store.path is required")
			}
		default:
			errs = append(errs, "store.driver must be postgres or sqlite, got "+strconv.Quote(c.Store.Driver))
		}
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

// Seasons returns the inclusive season range as a slice.
func (s ScrapeConfig) Seasons() []int {
	if s.LastSeason < s.FirstSeason {
		return nil
	}
	seasons := make([]int, 0, s.LastSeason-s.FirstSeason+1)
	for y := s.FirstSeason; y <= s.LastSeason; y++ {
		seasons = append(seasons, y)
	}
	return seasons
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
