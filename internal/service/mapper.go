package service

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"

	"hufschlaeger.net/pipefy-exporter/internal/config"
)

var ErrInvalidJob = errors.New("invalid job")

// Spalten des Konfigurations-Sheets
const (
	ColumnName      = "Nombre tabla"
	ColumnPipefy    = "Slug PIPEFY"
	ColumnReport    = "Slug INFORME"
	ColumnTableRef  = "Tabla_id BIGQUERY"
	ColumnProjectID = "Project_id BIGQUERY"
	ColumnValid     = "Valid"
)

type Mode int

const (
	ModeTable Mode = iota
	ModeReport
)

func (m Mode) String() string {
	if m == ModeReport {
		return "report"
	}
	return "table"
}

type Destination int

const (
	DestinationSheets Destination = iota
	DestinationBigQuery
)

func (d Destination) String() string {
	if d == DestinationBigQuery {
		return "bigquery"
	}
	return "sheets"
}

// Job beschreibt eine Quelle in Pipefy und ihr Ziel
type Job struct {
	Name string
	Mode Mode

	// ModeTable
	TableID int
	// ModeReport
	PipeID   int
	ReportID int

	Destination   Destination
	SpreadsheetID string
	ProjectID     string
	TableRef      string
}

type Mapper struct {
	config *config.Config
}

func NewMapper(cfg *config.Config) *Mapper {
	return &Mapper{config: cfg}
}

// LoadTableMap liest eine Datei der Form {"name": [tableId, "spreadsheetKey"]}
func LoadTableMap(path string) (map[string][]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tabellen-Datei lesen: %w", err)
	}

	var tables map[string][]interface{}
	if err := gojson.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("tabellen-Datei %s: %w", path, err)
	}
	return tables, nil
}

// JobsFromTableMap erzeugt Sheets-Jobs, sortiert nach Name
func (m *Mapper) JobsFromTableMap(tables map[string][]interface{}) ([]Job, error) {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	jobs := make([]Job, 0, len(names))
	for _, name := range names {
		entry := tables[name]
		if len(entry) != 2 {
			return nil, fmt.Errorf("%w: %q erwartet [tableId, spreadsheetKey], hat %d Elemente", ErrInvalidJob, name, len(entry))
		}

		tableID, err := toInt(entry[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %q table id: %v", ErrInvalidJob, name, err)
		}
		key, ok := entry[1].(string)
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q ohne spreadsheet key", ErrInvalidJob, name)
		}

		jobs = append(jobs, Job{
			Name:          name,
			Mode:          ModeTable,
			TableID:       tableID,
			Destination:   DestinationSheets,
			SpreadsheetID: strings.TrimSpace(key),
		})
	}
	return jobs, nil
}

// JobsFromConfigRows erzeugt BigQuery-Jobs aus dem Konfigurations-Sheet. Die erste
// Zeile ist der Header. Leere Zeilen und Zeilen mit nicht gesetztem Valid werden übersprungen.
func (m *Mapper) JobsFromConfigRows(rows [][]string) ([]Job, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: Konfigurations-Sheet ist leer", ErrInvalidJob)
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, dup := header[h]; !dup {
			header[h] = i
		}
	}

	required := []string{ColumnName, ColumnPipefy, ColumnTableRef, ColumnProjectID}
	if m.config.ReportMode {
		required = append(required, ColumnReport)
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("%w: Spalte %q fehlt im Konfigurations-Sheet", ErrInvalidJob, col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := header[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var jobs []Job
	for n, row := range rows[1:] {
		line := n + 2
		if isBlank(row) {
			continue
		}
		if _, ok := header[ColumnValid]; ok && !isTruthy(cell(row, ColumnValid)) {
			continue
		}

		job := Job{
			Name:        cell(row, ColumnName),
			Destination: DestinationBigQuery,
			ProjectID:   cell(row, ColumnProjectID),
			TableRef:    cell(row, ColumnTableRef),
		}
		if job.TableRef == "" {
			return nil, fmt.Errorf("%w: Zeile %d ohne %s", ErrInvalidJob, line, ColumnTableRef)
		}

		slug, err := strconv.Atoi(cell(row, ColumnPipefy))
		if err != nil {
			return nil, fmt.Errorf("%w: Zeile %d, %s: %v", ErrInvalidJob, line, ColumnPipefy, err)
		}

		if m.config.ReportMode {
			report, err := strconv.Atoi(cell(row, ColumnReport))
			if err != nil {
				return nil, fmt.Errorf("%w: Zeile %d, %s: %v", ErrInvalidJob, line, ColumnReport, err)
			}
			job.Mode = ModeReport
			job.PipeID = slug
			job.ReportID = report
		} else {
			job.Mode = ModeTable
			job.TableID = slug
		}

		if job.Name == "" {
			job.Name = job.TableRef
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func toInt(v interface{}) (int, error) {
	switch id := v.(type) {
	case float64:
		if id != float64(int(id)) {
			return 0, fmt.Errorf("keine ganze Zahl: %v", id)
		}
		return int(id), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(id))
	default:
		return 0, fmt.Errorf("unerwarteter Typ %T", v)
	}
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Checkboxen liefern TRUE/FALSE, manuell gepflegte Zeilen auch "x" oder "si"
func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "x", "yes", "si", "sí", "verdadero", "ja":
		return true
	default:
		return false
	}
}
