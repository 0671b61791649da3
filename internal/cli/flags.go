package cli

import (
	"flag"
	"fmt"
	"os"

	"hufschlaeger.net/pipefy-exporter/internal/config"
)

// ParseFlags lädt die Konfiguration aus der Umgebung (.env) und überschreibt sie mit
// den angegebenen CLI-Flags. Validiert wird erst danach.
func ParseFlags() (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	flag.StringVar(&cfg.PipefyToken, "pipefy-token", cfg.PipefyToken, "Pipefy API Token")
	flag.StringVar(&cfg.PipefyURL, "pipefy-url", cfg.PipefyURL, "Pipefy GraphQL Endpoint")
	flag.StringVar(&cfg.CredentialsFile, "credentials", cfg.CredentialsFile, "Google Service-Account Datei")

	flag.StringVar(&cfg.TablesFile, "tables", cfg.TablesFile, "JSON-Datei {\"name\": [tableId, \"sheetKey\"]} (Ziel: Google Sheets)")
	flag.StringVar(&cfg.ConfigSheetID, "config-sheet", cfg.ConfigSheetID, "Konfigurations-Sheet (Ziel: BigQuery)")
	flag.IntVar(&cfg.ConfigSheetIndex, "config-sheet-index", cfg.ConfigSheetIndex, "Index des Arbeitsblatts im Konfigurations-Sheet")
	flag.BoolVar(&cfg.ReportMode, "report", cfg.ReportMode, "Pipe-Reports statt Tabellen exportieren")

	flag.IntVar(&cfg.DownloadMaxAttempts, "download-attempts", cfg.DownloadMaxAttempts, "Maximale Download-Versuche für Report-Dateien")
	flag.DurationVar(&cfg.DownloadRetryDelay, "download-delay", cfg.DownloadRetryDelay, "Pause zwischen Download-Versuchen")

	flag.StringVar(&cfg.Schedule, "schedule", cfg.Schedule, "Cron-Ausdruck; leer = einmal ausführen")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log-Level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log-Format (console, json)")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Debug-Ausgaben")

	flag.Parse()

	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		flag.Usage()
		return nil, err
	}

	return cfg, nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Pipefy Exporter

VERWENDUNG:
  %s [OPTIONEN]

BEISPIELE:
  # Tabellen aus tables.json nach Google Sheets
  %s -tables tables.json -pipefy-token "xxxx"

  # Tabellen laut Konfigurations-Sheet nach BigQuery, jede Nacht um 2 Uhr
  %s -config-sheet "1AbC..." -schedule "0 2 * * *"

  # Pipe-Reports laut Konfigurations-Sheet nach BigQuery
  %s -config-sheet "1AbC..." -report

CLI-OPTIONEN:
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
UMGEBUNGSVARIABLEN (auch aus .env):
  PIPEFY_TOKEN, PIPEFY_URL, GOOGLE_CREDENTIALS, TABLES_FILE, CONFIG_SHEET_ID,
  CONFIG_SHEET_INDEX, REPORT_MODE, DOWNLOAD_MAX_ATTEMPTS, DOWNLOAD_RETRY_DELAY,
  EXPORT_POLL_ATTEMPTS, EXPORT_POLL_INTERVAL, HTTP_TIMEOUT, SCHEDULE,
  LOG_LEVEL, LOG_FORMAT, VERBOSE
`)
	}
}
