// Package config provides YAML-based configuration loading for Groundwork.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // site timezones must resolve on minimal hosts

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// cronParser matches the 5-field parser the digest scheduler runs with.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Environment overrides for secrets that should not live in groundwork.yaml.
const (
	EnvAPIToken     = "GW_API_TOKEN"
	EnvDBPassword   = "GW_DB_PASSWORD"
	EnvSlackToken   = "GW_SLACK_BOT_TOKEN"
	EnvDiscordToken = "GW_DISCORD_BOT_TOKEN"
)

// Config is the top-level Groundwork configuration, loaded from groundwork.yaml.
type Config struct {
	ProjectID int64           `yaml:"project_id"`
	Database  DatabaseConfig  `yaml:"database"`
	API       APIConfig       `yaml:"api"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Notify    NotifyConfig    `yaml:"notify"`
}

// DatabaseConfig selects and addresses the task store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite, mysql, postgres
	Path     string `yaml:"path"`   // sqlite file
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// APIConfig addresses the remote construction-management server.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// ScheduleConfig tunes progress aggregation and risk evaluation.
type ScheduleConfig struct {
	StaleAfterDays int    `yaml:"stale_after_days"`
	Timezone       string `yaml:"timezone"`
	Aggregation    string `yaml:"aggregation"` // mean, duration_weighted
}

// DashboardConfig holds the JSON dashboard listener settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// NotifyConfig controls scheduled risk digests.
type NotifyConfig struct {
	DigestCron string        `yaml:"digest_cron"`
	Slack      ChannelConfig `yaml:"slack"`
	Discord    ChannelConfig `yaml:"discord"`
}

// ChannelConfig is a bot token plus the channel digests are posted to.
type ChannelConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether both token and channel are set.
func (c ChannelConfig) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// Load reads a YAML config file from path and returns a validated Config.
// A .env file next to the working directory, if present, is loaded first so
// its variables can override secrets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	// Missing .env is the normal case.
	_ = godotenv.Load()
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves Schedule.Timezone. It is only valid after Parse.
func (c *Config) Location() *time.Location {
	loc, err := loadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// applyEnv overrides secrets from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIToken); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvSlackToken); v != "" {
		c.Notify.Slack.BotToken = v
	}
	if v := os.Getenv(EnvDiscordToken); v != "" {
		c.Notify.Discord.BotToken = v
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			c.Database.Path = "groundwork.db"
		}
	case "mysql":
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
	case "postgres":
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.User == "" {
			c.Database.User = "postgres"
		}
	}
	if c.Database.Host == "" && c.Database.Driver != "sqlite" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Name == "" && c.Database.Driver != "sqlite" {
		c.Database.Name = "groundwork"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.Schedule.StaleAfterDays == 0 {
		c.Schedule.StaleAfterDays = 3
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "Local"
	}
	if c.Schedule.Aggregation == "" {
		c.Schedule.Aggregation = "mean"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Notify.DigestCron == "" {
		c.Notify.DigestCron = "0 7 * * 1-5"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.ProjectID <= 0 {
		errs = append(errs, "project_id is required")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not one of sqlite, mysql, postgres", c.Database.Driver))
	}
	if c.Schedule.StaleAfterDays < 0 {
		errs = append(errs, "schedule.stale_after_days must not be negative")
	}
	switch c.Schedule.Aggregation {
	case "mean", "duration_weighted":
	default:
		errs = append(errs, fmt.Sprintf("schedule.aggregation %q is not one of mean, duration_weighted", c.Schedule.Aggregation))
	}
	if _, err := loadLocation(c.Schedule.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("schedule.timezone %q: %v", c.Schedule.Timezone, err))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, "api.timeout must not be negative")
	}
	if _, err := cronParser.Parse(c.Notify.DigestCron); err != nil {
		errs = append(errs, fmt.Sprintf("notify.digest_cron %q: %v", c.Notify.DigestCron, err))
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		errs = append(errs, fmt.Sprintf("dashboard.port %d is out of range", c.Dashboard.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
