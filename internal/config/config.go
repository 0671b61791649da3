package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPipefyURL       = "https://api.pipefy.com/graphql"
	DefaultCredentialsFile = "./google_credentials.json"
)

type Config struct {
	PipefyToken string
	PipefyURL   string
	HTTPTimeout time.Duration

	// Google Service-Account für Sheets und BigQuery
	CredentialsFile string

	// Job-Quelle: entweder JSON-Datei oder Konfigurations-Sheet
	TablesFile       string
	ConfigSheetID    string
	ConfigSheetIndex int
	ReportMode       bool

	DownloadMaxAttempts int
	DownloadRetryDelay  time.Duration
	ExportPollAttempts  int
	ExportPollInterval  time.Duration

	Schedule  string
	LogLevel  string
	LogFormat string
	Verbose   bool
}

func NewConfig() (*Config, error) {
	// .env laden (ignoriere Fehler wenn Datei nicht existiert)
	if os.Getenv("GODOTENV_DISABLE") == "" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("fehler beim Laden der .env: %w", err)
		}
	}

	cfg := &Config{
		PipefyToken:         getEnv("PIPEFY_TOKEN", ""),
		PipefyURL:           getEnv("PIPEFY_URL", DefaultPipefyURL),
		HTTPTimeout:         getDurationEnv("HTTP_TIMEOUT", 60*time.Second),
		CredentialsFile:     getEnv("GOOGLE_CREDENTIALS", DefaultCredentialsFile),
		TablesFile:          getEnv("TABLES_FILE", ""),
		ConfigSheetID:       getEnv("CONFIG_SHEET_ID", ""),
		ConfigSheetIndex:    getIntEnv("CONFIG_SHEET_INDEX", 1),
		ReportMode:          getBoolEnv("REPORT_MODE", false),
		DownloadMaxAttempts: getIntEnv("DOWNLOAD_MAX_ATTEMPTS", 10),
		DownloadRetryDelay:  getDurationEnv("DOWNLOAD_RETRY_DELAY", 10*time.Second),
		ExportPollAttempts:  getIntEnv("EXPORT_POLL_ATTEMPTS", 30),
		ExportPollInterval:  getDurationEnv("EXPORT_POLL_INTERVAL", 2*time.Second),
		Schedule:            getEnv("SCHEDULE", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "console"),
		Verbose:             getBoolEnv("VERBOSE", false),
	}

	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// Summary liefert die Konfiguration ohne Geheimnisse, z.B. fürs Logging
func (c *Config) Summary() map[string]interface{} {
	return map[string]interface{}{
		"pipefy_url":         c.PipefyURL,
		"has_pipefy_token":   c.PipefyToken != "",
		"credentials_file":   c.CredentialsFile,
		"tables_file":        c.TablesFile,
		"config_sheet_id":    c.ConfigSheetID,
		"config_sheet_index": c.ConfigSheetIndex,
		"report_mode":        c.ReportMode,
		"schedule":           c.Schedule,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.PipefyToken == "" {
		return errors.New("Pipefy Token fehlt (PIPEFY_TOKEN)")
	}
	if c.CredentialsFile == "" {
		return errors.New("Google Credentials fehlen (GOOGLE_CREDENTIALS)")
	}
	if c.TablesFile == "" && c.ConfigSheetID == "" {
		return errors.New("keine Job-Quelle: TABLES_FILE oder CONFIG_SHEET_ID setzen")
	}
	if c.TablesFile != "" && c.ConfigSheetID != "" {
		return errors.New("TABLES_FILE und CONFIG_SHEET_ID schliessen sich aus")
	}
	if c.ReportMode && c.ConfigSheetID == "" {
		return errors.New("report-Modus braucht ein Konfigurations-Sheet (CONFIG_SHEET_ID)")
	}
	if c.ConfigSheetIndex < 0 {
		return fmt.Errorf("ungültiger CONFIG_SHEET_INDEX: %d", c.ConfigSheetIndex)
	}
	if c.DownloadMaxAttempts < 1 {
		return fmt.Errorf("DOWNLOAD_MAX_ATTEMPTS muss >= 1 sein, ist %d", c.DownloadMaxAttempts)
	}
	if c.ExportPollAttempts < 1 {
		return fmt.Errorf("EXPORT_POLL_ATTEMPTS muss >= 1 sein, ist %d", c.ExportPollAttempts)
	}
	return nil
}

func (c *Config) GetPipefyURL() string {
	return strings.TrimSuffix(c.PipefyURL, "/")
}
