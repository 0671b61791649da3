package config

import (
	"testing"
	"time"
)

// helper to construct a config with a clean environment.
func newConfigWithEnv(t *testing.T, env map[string]string) *Config {
	t.Helper()

	// Ensure godotenv does not load a developer's local .env
	t.Setenv("GODOTENV_DISABLE", "1")

	// Clear all relevant variables first (empty → defaults will be used)
	keys := []string{
		"PIPEFY_TOKEN", "PIPEFY_URL", "HTTP_TIMEOUT", "GOOGLE_CREDENTIALS", "TABLES_FILE",
		"CONFIG_SHEET_ID", "CONFIG_SHEET_INDEX", "REPORT_MODE", "DOWNLOAD_MAX_ATTEMPTS",
		"DOWNLOAD_RETRY_DELAY", "EXPORT_POLL_ATTEMPTS", "EXPORT_POLL_INTERVAL", "SCHEDULE",
		"LOG_LEVEL", "LOG_FORMAT", "VERBOSE",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}

	// Apply overrides for this test
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	return cfg
}

func TestNewConfig_Defaults_NoEnv(t *testing.T) {
	cfg := newConfigWithEnv(t, map[string]string{})

	if cfg.PipefyToken != "" {
		t.Errorf("expected empty PipefyToken, got %q", cfg.PipefyToken)
	}
	if cfg.PipefyURL != DefaultPipefyURL {
		t.Errorf("expected default PipefyURL, got %q", cfg.PipefyURL)
	}
	if cfg.CredentialsFile != DefaultCredentialsFile {
		t.Errorf("expected default CredentialsFile, got %q", cfg.CredentialsFile)
	}
	if cfg.ConfigSheetIndex != 1 {
		t.Errorf("expected ConfigSheetIndex 1, got %d", cfg.ConfigSheetIndex)
	}
	if cfg.ReportMode {
		t.Errorf("expected ReportMode false by default")
	}
	if cfg.DownloadMaxAttempts != 10 {
		t.Errorf("expected 10 download attempts, got %d", cfg.DownloadMaxAttempts)
	}
	if cfg.DownloadRetryDelay != 10*time.Second {
		t.Errorf("expected 10s retry delay, got %v", cfg.DownloadRetryDelay)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected info log level, got %q", cfg.LogLevel)
	}
	if cfg.Schedule != "" {
		t.Errorf("expected no schedule, got %q", cfg.Schedule)
	}
}

func TestNewConfig_WithEnvValues(t *testing.T) {
	cfg := newConfigWithEnv(t, map[string]string{
		"PIPEFY_TOKEN":          "tok-123",
		"PIPEFY_URL":            "https://example.local/graphql/",
		"GOOGLE_CREDENTIALS":    "/secrets/sa.json",
		"CONFIG_SHEET_ID":       "sheet-abc",
		"CONFIG_SHEET_INDEX":    "2",
		"REPORT_MODE":           "true",
		"DOWNLOAD_MAX_ATTEMPTS": "3",
		"DOWNLOAD_RETRY_DELAY":  "250ms",
		"EXPORT_POLL_INTERVAL":  "1s",
		"SCHEDULE":              "0 6 * * *",
		"VERBOSE":               "true",
	})

	if cfg.PipefyToken != "tok-123" {
		t.Errorf("PipefyToken mismatch: %q", cfg.PipefyToken)
	}
	if cfg.GetPipefyURL() != "https://example.local/graphql" {
		t.Errorf("GetPipefyURL mismatch: %q", cfg.GetPipefyURL())
	}
	if cfg.CredentialsFile != "/secrets/sa.json" {
		t.Errorf("CredentialsFile mismatch: %q", cfg.CredentialsFile)
	}
	if cfg.ConfigSheetID != "sheet-abc" || cfg.ConfigSheetIndex != 2 {
		t.Errorf("config sheet mismatch: %q/%d", cfg.ConfigSheetID, cfg.ConfigSheetIndex)
	}
	if !cfg.ReportMode {
		t.Errorf("expected ReportMode true")
	}
	if cfg.DownloadMaxAttempts != 3 || cfg.DownloadRetryDelay != 250*time.Millisecond {
		t.Errorf("download settings mismatch: %d/%v", cfg.DownloadMaxAttempts, cfg.DownloadRetryDelay)
	}
	if cfg.ExportPollInterval != time.Second {
		t.Errorf("ExportPollInterval mismatch: %v", cfg.ExportPollInterval)
	}
	if cfg.Schedule != "0 6 * * *" {
		t.Errorf("Schedule mismatch: %q", cfg.Schedule)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected verbose to force debug, got %q", cfg.LogLevel)
	}
}

func TestNewConfig_InvalidNumbersFallBack(t *testing.T) {
	cfg := newConfigWithEnv(t, map[string]string{
		"DOWNLOAD_MAX_ATTEMPTS": "many",
		"DOWNLOAD_RETRY_DELAY":  "soon",
		"REPORT_MODE":           "vielleicht",
	})

	if cfg.DownloadMaxAttempts != 10 || cfg.DownloadRetryDelay != 10*time.Second || cfg.ReportMode {
		t.Fatalf("expected defaults, got %d/%v/%t", cfg.DownloadMaxAttempts, cfg.DownloadRetryDelay, cfg.ReportMode)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing token",
			env:     map[string]string{"TABLES_FILE": "tables.json"},
			wantErr: "Pipefy Token fehlt (PIPEFY_TOKEN)",
		},
		{
			name:    "no job source",
			env:     map[string]string{"PIPEFY_TOKEN": "t"},
			wantErr: "keine Job-Quelle: TABLES_FILE oder CONFIG_SHEET_ID setzen",
		},
		{
			name:    "both job sources",
			env:     map[string]string{"PIPEFY_TOKEN": "t", "TABLES_FILE": "x.json", "CONFIG_SHEET_ID": "s"},
			wantErr: "TABLES_FILE und CONFIG_SHEET_ID schliessen sich aus",
		},
		{
			name:    "report mode needs config sheet",
			env:     map[string]string{"PIPEFY_TOKEN": "t", "TABLES_FILE": "x.json", "REPORT_MODE": "true"},
			wantErr: "report-Modus braucht ein Konfigurations-Sheet (CONFIG_SHEET_ID)",
		},
		{
			name:    "zero download attempts",
			env:     map[string]string{"PIPEFY_TOKEN": "t", "TABLES_FILE": "x.json", "DOWNLOAD_MAX_ATTEMPTS": "0"},
			wantErr: "DOWNLOAD_MAX_ATTEMPTS muss >= 1 sein, ist 0",
		},
		{
			name: "valid tables file",
			env:  map[string]string{"PIPEFY_TOKEN": "t", "TABLES_FILE": "x.json"},
		},
		{
			name: "valid report mode",
			env:  map[string]string{"PIPEFY_TOKEN": "t", "CONFIG_SHEET_ID": "s", "REPORT_MODE": "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfigWithEnv(t, tt.env)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestSummary_HidesToken(t *testing.T) {
	cfg := newConfigWithEnv(t, map[string]string{"PIPEFY_TOKEN": "secret"})

	for k, v := range cfg.Summary() {
		if s, ok := v.(string); ok && s == "secret" {
			t.Fatalf("summary leaks token under %q", k)
		}
	}
	if cfg.Summary()["has_pipefy_token"] != true {
		t.Fatalf("expected has_pipefy_token=true")
	}
}
