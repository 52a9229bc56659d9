package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the reconciliation engine needs at process start.
// Values come from the environment (optionally via a .env file loaded in main).
type Config struct {
	MongoURI     string
	DBName       string
	ReportDir    string
	StoreTimeout time.Duration
	Workers      int
	ServerPort   string
	MonitorCron  string
	MonitorDays  int
	LogLevel     string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	AlertEmailTo string
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("DB_NAME", "caresync")
	v.SetDefault("REPORT_DIR", "reports")
	v.SetDefault("STORE_TIMEOUT_SECONDS", 10)
	v.SetDefault("RECONCILE_WORKERS", 4)
	v.SetDefault("SERVER_PORT", "8080")
	// Daily at 00:05, same slot the hospital schedulers run in.
	v.SetDefault("MONITOR_CRON", "5 0 * * *")
	v.SetDefault("MONITOR_DAYS", 7)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SMTP_PORT", 587)

	uri := v.GetString("MONGODB_URI")
	if uri == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}

	cfg := &Config{
		MongoURI:     uri,
		DBName:       v.GetString("DB_NAME"),
		ReportDir:    v.GetString("REPORT_DIR"),
		StoreTimeout: time.Duration(v.GetInt("STORE_TIMEOUT_SECONDS")) * time.Second,
		Workers:      v.GetInt("RECONCILE_WORKERS"),
		ServerPort:   v.GetString("SERVER_PORT"),
		MonitorCron:  v.GetString("MONITOR_CRON"),
		MonitorDays:  v.GetInt("MONITOR_DAYS"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUser:     v.GetString("SMTP_USER"),
		SMTPPassword: v.GetString("SMTP_PASS"),
		AlertEmailTo: v.GetString("ALERT_EMAIL_TO"),
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MonitorDays < 1 {
		cfg.MonitorDays = 7
	}
	return cfg, nil
}
