// config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type SourceConfig struct {
	// URL of the city page that publishes the weekly mobile camera schedule.
	URL               string `yaml:"url"`
	ContainerSelector string `yaml:"container_selector"`
	FetchTimeoutStr   string `yaml:"fetch_timeout"`
	FetchTimeout      time.Duration
}

type BoundsConfig struct {
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
}

type GeocodingConfig struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	City           string `yaml:"city"`
	County         string `yaml:"county"`
	State          string `yaml:"state"`
	TimeoutStr     string `yaml:"timeout"`
	Timeout        time.Duration
	MinIntervalStr string `yaml:"min_interval"`
	MinInterval    time.Duration
	Bounds         BoundsConfig `yaml:"bounds"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	UseTLS   bool   `yaml:"use_tls"`
}

type FCMConfig struct {
	Endpoint  string `yaml:"endpoint"`
	ServerKey string `yaml:"server_key"`
}

type NotificationsConfig struct {
	CooldownStr     string `yaml:"cooldown"`
	Cooldown        time.Duration
	SendIntervalStr string `yaml:"send_interval"`
	SendInterval    time.Duration
	SMTP            SMTPConfig `yaml:"smtp"`
	FCM             FCMConfig  `yaml:"fcm"`
}

type SchedulerConfig struct {
	// Cron spec for the periodic scrape-reconcile-notify cycle.
	RefreshSpec string `yaml:"refresh_spec"`
}

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Source        SourceConfig        `yaml:"source"`
	Geocoding     GeocodingConfig     `yaml:"geocoding"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
}

var AppConfig Config

// LoadConfig reads configuration from the YAML file at configPath, then
// overlays secrets from the environment (loaded from .env by main) so
// credentials never have to live in the checked-in config file.
func LoadConfig(configPath string) error {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(file, &AppConfig)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment overrides for secrets.
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		AppConfig.Database.Password = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		AppConfig.Notifications.SMTP.Password = v
	}
	if v := os.Getenv("FCM_SERVER_KEY"); v != "" {
		AppConfig.Notifications.FCM.ServerKey = v
	}

	// Parse durations, with defaults matching the deployed service.
	AppConfig.Source.FetchTimeout, err = parseDurationOrDefault(AppConfig.Source.FetchTimeoutStr, 20*time.Second)
	if err != nil {
		return fmt.Errorf("failed to parse source fetch_timeout: %w", err)
	}
	AppConfig.Geocoding.Timeout, err = parseDurationOrDefault(AppConfig.Geocoding.TimeoutStr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to parse geocoding timeout: %w", err)
	}
	AppConfig.Geocoding.MinInterval, err = parseDurationOrDefault(AppConfig.Geocoding.MinIntervalStr, time.Second)
	if err != nil {
		return fmt.Errorf("failed to parse geocoding min_interval: %w", err)
	}
	AppConfig.Notifications.Cooldown, err = parseDurationOrDefault(AppConfig.Notifications.CooldownStr, 4*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to parse notifications cooldown: %w", err)
	}
	AppConfig.Notifications.SendInterval, err = parseDurationOrDefault(AppConfig.Notifications.SendIntervalStr, 500*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to parse notifications send_interval: %w", err)
	}

	if AppConfig.Scheduler.RefreshSpec == "" {
		AppConfig.Scheduler.RefreshSpec = "@hourly"
	}

	return nil
}

func parseDurationOrDefault(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
